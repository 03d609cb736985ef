package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
)

// UserRepository defines persistence for user profiles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ContentRepository defines persistence for posts and loops, their likes and
// their comments. GetByID always returns the complete like and comment lists.
type ContentRepository interface {
	Create(ctx context.Context, content *domain.Content) (*domain.Content, error)
	GetByID(ctx context.Context, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error)
	ToggleLike(ctx context.Context, kind domain.ContentKind, contentID, userID uuid.UUID) (bool, error)
	AddComment(ctx context.Context, kind domain.ContentKind, comment *domain.Comment) (*domain.Comment, error)
}

// FollowRepository defines persistence for the follow graph.
type FollowRepository interface {
	Toggle(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
}

// NotificationRepository defines persistence for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error)
	MarkAsRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// MessageRepository defines persistence for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) (*domain.Message, error)
	ListConversation(ctx context.Context, userID, partnerID uuid.UUID) ([]*domain.Message, error)
	ListPartners(ctx context.Context, userID uuid.UUID) ([]*domain.User, error)
}
