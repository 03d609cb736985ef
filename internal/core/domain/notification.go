package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
)

// NotificationType is what happened to the recipient.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
)

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow:
		return true
	}
	return false
}

// Notification is persisted before it is pushed; delivery is best effort.
type Notification struct {
	ID          uuid.UUID
	Type        NotificationType
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	ContentID   *uuid.UUID
	ContentKind ContentKind
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

// NotificationParams holds the input for NewNotification.
type NotificationParams struct {
	Type        NotificationType
	SenderID    uuid.UUID
	RecipientID uuid.UUID
	ContentID   *uuid.UUID
	ContentKind ContentKind
	Message     string
}

// NewNotification builds an unread notification.
func NewNotification(params NotificationParams) (*Notification, error) {
	if !params.Type.IsValid() {
		return nil, apperrors.ErrInvalidNotificationType
	}
	if params.RecipientID == uuid.Nil {
		return nil, apperrors.ErrUserNotFound
	}

	return &Notification{
		ID:          uuid.New(),
		Type:        params.Type,
		SenderID:    params.SenderID,
		RecipientID: params.RecipientID,
		ContentID:   params.ContentID,
		ContentKind: params.ContentKind,
		Message:     params.Message,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
