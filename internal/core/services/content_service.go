package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// ContentService implements likes and comments on posts and loops.
type ContentService struct {
	contentRepo      ports.ContentRepository
	notificationRepo ports.NotificationRepository
	txManager        ports.TransactionManager
	router           ports.EventRouter
	logger           *slog.Logger
}

// Ensure implementation matches the interface.
var _ ports.ContentService = (*ContentService)(nil)

// NewContentService creates a new service for post and loop interactions.
func NewContentService(
	contentRepo ports.ContentRepository,
	notificationRepo ports.NotificationRepository,
	txManager ports.TransactionManager,
	router ports.EventRouter,
	logger *slog.Logger,
) ports.ContentService {
	return &ContentService{
		contentRepo:      contentRepo,
		notificationRepo: notificationRepo,
		txManager:        txManager,
		router:           router,
		logger:           logger.With("service", "content"),
	}
}

// GetContent returns a post or loop with its full like and comment lists.
func (s *ContentService) GetContent(ctx context.Context, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidContentKind
	}
	return s.contentRepo.GetByID(ctx, kind, id)
}

// ToggleLike likes or unlikes the subject, then pushes the new like list to
// its author. A fresh like by someone other than the author also produces a
// notification.
func (s *ContentService) ToggleLike(ctx context.Context, kind domain.ContentKind, contentID, actorID uuid.UUID) (*ports.LikeResult, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrInvalidContentKind
	}

	var (
		result       ports.LikeResult
		notification *domain.Notification
	)

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		liked, err := s.contentRepo.ToggleLike(ctx, kind, contentID, actorID)
		if err != nil {
			return err
		}

		content, err := s.contentRepo.GetByID(ctx, kind, contentID)
		if err != nil {
			return err
		}
		result = ports.LikeResult{Content: content, Liked: liked}

		if liked && content.AuthorID != actorID {
			notification, err = s.createNotification(ctx, domain.NotificationParams{
				Type:        domain.NotificationLike,
				SenderID:    actorID,
				RecipientID: content.AuthorID,
				ContentID:   &content.ID,
				ContentKind: kind,
				Message:     "liked your " + string(kind),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Routed only after commit. Events keep the order of Route calls, which
	// for concurrent toggles on one subject need not match commit order.
	s.route(ctx, domain.NewLikesChangedEvent(result.Content), result.Content.AuthorID)
	if notification != nil {
		s.route(ctx, domain.NewNotificationEvent(notification), notification.RecipientID)
	}

	return &result, nil
}

// AddComment stores a comment and pushes the complete comment list to the
// subject's author.
func (s *ContentService) AddComment(ctx context.Context, params ports.AddCommentParams) (*domain.Content, error) {
	if !params.Kind.IsValid() {
		return nil, apperrors.ErrInvalidContentKind
	}

	comment, err := domain.NewComment(domain.CommentParams{
		ContentID: params.ContentID,
		AuthorID:  params.ActorID,
		Text:      params.Text,
	})
	if err != nil {
		return nil, err
	}

	var (
		content      *domain.Content
		notification *domain.Notification
	)

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.contentRepo.AddComment(ctx, params.Kind, comment); err != nil {
			return err
		}

		var err error
		content, err = s.contentRepo.GetByID(ctx, params.Kind, params.ContentID)
		if err != nil {
			return err
		}

		if content.AuthorID != params.ActorID {
			notification, err = s.createNotification(ctx, domain.NotificationParams{
				Type:        domain.NotificationComment,
				SenderID:    params.ActorID,
				RecipientID: content.AuthorID,
				ContentID:   &content.ID,
				ContentKind: params.Kind,
				Message:     "commented on your " + string(params.Kind),
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.route(ctx, domain.NewCommentsChangedEvent(content), content.AuthorID)
	if notification != nil {
		s.route(ctx, domain.NewNotificationEvent(notification), notification.RecipientID)
	}

	return content, nil
}

func (s *ContentService) createNotification(ctx context.Context, params domain.NotificationParams) (*domain.Notification, error) {
	n, err := domain.NewNotification(params)
	if err != nil {
		return nil, err
	}
	return s.notificationRepo.Create(ctx, n)
}

func (s *ContentService) route(ctx context.Context, event domain.Event, recipients ...uuid.UUID) {
	routeEvent(ctx, s.router, s.logger, event, recipients...)
}
