package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// NotificationService reads and acknowledges a user's notifications.
type NotificationService struct {
	notificationRepo ports.NotificationRepository
}

var _ ports.NotificationService = (*NotificationService)(nil)

func NewNotificationService(notificationRepo ports.NotificationRepository) ports.NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// List returns the user's notifications, most recent first.
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	return s.notificationRepo.ListByRecipient(ctx, userID)
}

// MarkAsRead flags the given notifications as read. Ids that belong to another
// recipient are ignored.
func (s *NotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.ErrNotificationIDsRequired
	}
	return s.notificationRepo.MarkAsRead(ctx, userID, ids)
}
