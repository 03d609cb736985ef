package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
)

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Content *domain.Content
	Liked   bool
}

// ContentService defines the business operations on posts and loops.
type ContentService interface {
	GetContent(ctx context.Context, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error)
	ToggleLike(ctx context.Context, kind domain.ContentKind, contentID, actorID uuid.UUID) (*LikeResult, error)
	AddComment(ctx context.Context, params AddCommentParams) (*domain.Content, error)
}

// AddCommentParams defines the input for commenting on a post or loop.
type AddCommentParams struct {
	Kind      domain.ContentKind
	ContentID uuid.UUID
	ActorID   uuid.UUID
	Text      string
}

// FollowService defines the port for the follow graph.
type FollowService interface {
	ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (bool, error)
}

// NotificationService defines the port for reading and acknowledging notifications.
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

// SendMessageParams defines the input for sending a direct message.
type SendMessageParams struct {
	SenderID   uuid.UUID
	ReceiverID uuid.UUID
	Text       string
	ImageURL   string
}

// MessageService defines the port for direct messaging.
type MessageService interface {
	Send(ctx context.Context, params SendMessageParams) (*domain.Message, error)
	Conversation(ctx context.Context, userID, partnerID uuid.UUID) ([]*domain.Message, error)
	Partners(ctx context.Context, userID uuid.UUID) ([]*domain.User, error)
}

// PresenceReader exposes the current online identities.
type PresenceReader interface {
	Online() []string
}

// EventRouter pushes a real-time event to the live connections of the given
// users. Delivery is at-most-once: offline recipients are skipped silently.
// An error is returned only for events that fail validation.
type EventRouter interface {
	Route(event domain.Event, recipients ...uuid.UUID) error
}

// TransactionManager defines the port for running atomic operations.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
