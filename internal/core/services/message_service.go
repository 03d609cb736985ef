package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// MessageService implements direct messaging.
type MessageService struct {
	userRepo    ports.UserRepository
	messageRepo ports.MessageRepository
	router      ports.EventRouter
	logger      *slog.Logger
}

var _ ports.MessageService = (*MessageService)(nil)

// NewMessageService creates a new MessageService.
func NewMessageService(
	userRepo ports.UserRepository,
	messageRepo ports.MessageRepository,
	router ports.EventRouter,
	logger *slog.Logger,
) ports.MessageService {
	return &MessageService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		router:      router,
		logger:      logger.With("service", "message"),
	}
}

// Send stores a message and pushes it to the receiver only. The sender gets
// the stored copy back in the response.
func (s *MessageService) Send(ctx context.Context, params ports.SendMessageParams) (*domain.Message, error) {
	msg, err := domain.NewMessage(domain.MessageParams{
		SenderID:   params.SenderID,
		ReceiverID: params.ReceiverID,
		Text:       params.Text,
		ImageURL:   params.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, params.ReceiverID); err != nil {
		return nil, err
	}

	stored, err := s.messageRepo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}

	routeEvent(ctx, s.router, s.logger, domain.NewMessageEvent(stored), stored.ReceiverID)

	return stored, nil
}

// Conversation returns the messages between userID and partnerID, oldest first.
func (s *MessageService) Conversation(ctx context.Context, userID, partnerID uuid.UUID) ([]*domain.Message, error) {
	return s.messageRepo.ListConversation(ctx, userID, partnerID)
}

// Partners returns everyone userID has exchanged messages with.
func (s *MessageService) Partners(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	return s.messageRepo.ListPartners(ctx, userID)
}
