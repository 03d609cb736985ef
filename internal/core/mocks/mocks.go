package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockContentRepository is a mock implementation of ports.ContentRepository
type MockContentRepository struct {
	mock.Mock
}

func NewMockContentRepository() *MockContentRepository {
	return &MockContentRepository{}
}

func (m *MockContentRepository) Create(ctx context.Context, content *domain.Content) (*domain.Content, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentRepository) GetByID(ctx context.Context, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentRepository) ToggleLike(ctx context.Context, kind domain.ContentKind, contentID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, kind, contentID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockContentRepository) AddComment(ctx context.Context, kind domain.ContentKind, comment *domain.Comment) (*domain.Comment, error) {
	args := m.Called(ctx, kind, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Comment), args.Error(1)
}

// MockFollowRepository is a mock implementation of ports.FollowRepository
type MockFollowRepository struct {
	mock.Mock
}

func NewMockFollowRepository() *MockFollowRepository {
	return &MockFollowRepository{}
}

func (m *MockFollowRepository) Toggle(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

// MockNotificationRepository is a mock implementation of ports.NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{}
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, recipientID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageRepository is a mock implementation of ports.MessageRepository
type MockMessageRepository struct {
	mock.Mock
}

func NewMockMessageRepository() *MockMessageRepository {
	return &MockMessageRepository{}
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	args := m.Called(ctx, msg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListConversation(ctx context.Context, userID, partnerID uuid.UUID) ([]*domain.Message, error) {
	args := m.Called(ctx, userID, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageRepository) ListPartners(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockEventRouter is a mock implementation of ports.EventRouter
type MockEventRouter struct {
	mock.Mock
}

func NewMockEventRouter() *MockEventRouter {
	return &MockEventRouter{}
}

func (m *MockEventRouter) Route(event domain.Event, recipients ...uuid.UUID) error {
	args := m.Called(event, recipients)
	return args.Error(0)
}

// MockTransactionManager runs fn inline unless an error is configured.
type MockTransactionManager struct {
	mock.Mock
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

// MockContentService is a mock implementation of ports.ContentService
type MockContentService struct {
	mock.Mock
}

func NewMockContentService() *MockContentService {
	return &MockContentService{}
}

func (m *MockContentService) GetContent(ctx context.Context, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

func (m *MockContentService) ToggleLike(ctx context.Context, kind domain.ContentKind, contentID, actorID uuid.UUID) (*ports.LikeResult, error) {
	args := m.Called(ctx, kind, contentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.LikeResult), args.Error(1)
}

func (m *MockContentService) AddComment(ctx context.Context, params ports.AddCommentParams) (*domain.Content, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Content), args.Error(1)
}

// MockNotificationService is a mock implementation of ports.NotificationService
type MockNotificationService struct {
	mock.Mock
}

func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

func (m *MockNotificationService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, ids)
	return args.Get(0).(int64), args.Error(1)
}

// Compile-time interface checks
// MockFollowService is a mock implementation of ports.FollowService
type MockFollowService struct {
	mock.Mock
}

func NewMockFollowService() *MockFollowService {
	return &MockFollowService{}
}

func (m *MockFollowService) ToggleFollow(ctx context.Context, actorID, targetID uuid.UUID) (bool, error) {
	args := m.Called(ctx, actorID, targetID)
	return args.Bool(0), args.Error(1)
}

// MockMessageService is a mock implementation of ports.MessageService
type MockMessageService struct {
	mock.Mock
}

func NewMockMessageService() *MockMessageService {
	return &MockMessageService{}
}

func (m *MockMessageService) Send(ctx context.Context, params ports.SendMessageParams) (*domain.Message, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageService) Conversation(ctx context.Context, userID, partnerID uuid.UUID) ([]*domain.Message, error) {
	args := m.Called(ctx, userID, partnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Message), args.Error(1)
}

func (m *MockMessageService) Partners(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

// MockPresenceReader is a mock implementation of ports.PresenceReader
type MockPresenceReader struct {
	mock.Mock
}

func (m *MockPresenceReader) Online() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

var (
	_ ports.UserRepository         = (*MockUserRepository)(nil)
	_ ports.ContentRepository      = (*MockContentRepository)(nil)
	_ ports.FollowRepository       = (*MockFollowRepository)(nil)
	_ ports.NotificationRepository = (*MockNotificationRepository)(nil)
	_ ports.MessageRepository      = (*MockMessageRepository)(nil)
	_ ports.EventRouter            = (*MockEventRouter)(nil)
	_ ports.TransactionManager     = (*MockTransactionManager)(nil)
	_ ports.ContentService         = (*MockContentService)(nil)
	_ ports.NotificationService    = (*MockNotificationService)(nil)
	_ ports.FollowService          = (*MockFollowService)(nil)
	_ ports.MessageService         = (*MockMessageService)(nil)
	_ ports.PresenceReader         = (*MockPresenceReader)(nil)
)
