package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// FollowService implements the follow graph.
type FollowService struct {
	userRepo         ports.UserRepository
	followRepo       ports.FollowRepository
	notificationRepo ports.NotificationRepository
	txManager        ports.TransactionManager
	router           ports.EventRouter
	logger           *slog.Logger
}

var _ ports.FollowService = (*FollowService)(nil)

// NewFollowService creates a new FollowService.
func NewFollowService(
	userRepo ports.UserRepository,
	followRepo ports.FollowRepository,
	notificationRepo ports.NotificationRepository,
	txManager ports.TransactionManager,
	router ports.EventRouter,
	logger *slog.Logger,
) ports.FollowService {
	return &FollowService{
		userRepo:         userRepo,
		followRepo:       followRepo,
		notificationRepo: notificationRepo,
		txManager:        txManager,
		router:           router,
		logger:           logger.With("service", "follow"),
	}
}

// ToggleFollow follows or unfollows target. Following notifies the target.
func (s *FollowService) ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	if actorID == targetID {
		return false, apperrors.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return false, err
	}

	var (
		following    bool
		notification *domain.Notification
	)

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		following, err = s.followRepo.Toggle(ctx, actorID, targetID)
		if err != nil {
			return err
		}
		if !following {
			return nil
		}

		n, err := domain.NewNotification(domain.NotificationParams{
			Type:        domain.NotificationFollow,
			SenderID:    actorID,
			RecipientID: targetID,
			Message:     "started following you",
		})
		if err != nil {
			return err
		}
		notification, err = s.notificationRepo.Create(ctx, n)
		return err
	})
	if err != nil {
		return false, err
	}

	if notification != nil {
		routeEvent(ctx, s.router, s.logger, domain.NewNotificationEvent(notification), targetID)
	}

	return following, nil
}
