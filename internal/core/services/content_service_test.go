package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/lorrc/social-realtime/internal/core/mocks"
	"github.com/lorrc/social-realtime/internal/core/ports"
	"github.com/lorrc/social-realtime/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventOfType(t domain.EventType) interface{} {
	return mock.MatchedBy(func(e domain.Event) bool { return e.Type == t })
}

type contentDeps struct {
	contentRepo      *mocks.MockContentRepository
	notificationRepo *mocks.MockNotificationRepository
	tx               *mocks.MockTransactionManager
	router           *mocks.MockEventRouter
	svc              ports.ContentService
}

func newContentDeps() contentDeps {
	d := contentDeps{
		contentRepo:      mocks.NewMockContentRepository(),
		notificationRepo: mocks.NewMockNotificationRepository(),
		tx:               mocks.NewMockTransactionManager(),
		router:           mocks.NewMockEventRouter(),
	}
	d.svc = services.NewContentService(d.contentRepo, d.notificationRepo, d.tx, d.router, discardLogger())
	return d
}

func TestContentService_ToggleLike(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	actorID := uuid.New()
	postID := uuid.New()

	t.Run("like by another user routes likes and notification to author", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("ToggleLike", ctx, domain.ContentPost, postID, actorID).Return(true, nil)
		d.contentRepo.On("GetByID", ctx, domain.ContentPost, postID).Return(&domain.Content{
			ID: postID, Kind: domain.ContentPost, AuthorID: authorID, Likes: []uuid.UUID{actorID},
		}, nil)
		d.notificationRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.Type == domain.NotificationLike && n.RecipientID == authorID && n.SenderID == actorID
		})).Return(&domain.Notification{
			ID: uuid.New(), Type: domain.NotificationLike, SenderID: actorID, RecipientID: authorID,
		}, nil)

		var routed []domain.EventType
		d.router.On("Route", mock.Anything, []uuid.UUID{authorID}).
			Run(func(args mock.Arguments) { routed = append(routed, args.Get(0).(domain.Event).Type) }).
			Return(nil)

		result, err := d.svc.ToggleLike(ctx, domain.ContentPost, postID, actorID)

		require.NoError(t, err)
		assert.True(t, result.Liked)
		assert.Equal(t, []domain.EventType{domain.EventLikesChanged, domain.EventNotificationCreated}, routed)
		d.notificationRepo.AssertExpectations(t)
	})

	t.Run("self like routes likes without notification", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("ToggleLike", ctx, domain.ContentLoop, postID, authorID).Return(true, nil)
		d.contentRepo.On("GetByID", ctx, domain.ContentLoop, postID).Return(&domain.Content{
			ID: postID, Kind: domain.ContentLoop, AuthorID: authorID, Likes: []uuid.UUID{authorID},
		}, nil)
		d.router.On("Route", eventOfType(domain.EventLikesChanged), []uuid.UUID{authorID}).Return(nil)

		_, err := d.svc.ToggleLike(ctx, domain.ContentLoop, postID, authorID)

		require.NoError(t, err)
		d.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		d.router.AssertNumberOfCalls(t, "Route", 1)
	})

	t.Run("unlike routes the shrunk list without notification", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("ToggleLike", ctx, domain.ContentPost, postID, actorID).Return(false, nil)
		d.contentRepo.On("GetByID", ctx, domain.ContentPost, postID).Return(&domain.Content{
			ID: postID, Kind: domain.ContentPost, AuthorID: authorID, Likes: []uuid.UUID{},
		}, nil)
		d.router.On("Route", mock.MatchedBy(func(e domain.Event) bool {
			p, ok := e.Payload.(domain.LikesChangedPayload)
			return ok && len(p.Likes) == 0 && p.SubjectID == postID.String()
		}), []uuid.UUID{authorID}).Return(nil)

		result, err := d.svc.ToggleLike(ctx, domain.ContentPost, postID, actorID)

		require.NoError(t, err)
		assert.False(t, result.Liked)
		d.router.AssertExpectations(t)
		d.notificationRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing content routes nothing", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("ToggleLike", ctx, domain.ContentPost, postID, actorID).Return(false, apperrors.ErrContentNotFound)

		_, err := d.svc.ToggleLike(ctx, domain.ContentPost, postID, actorID)

		assert.ErrorIs(t, err, apperrors.ErrContentNotFound)
		d.router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
	})

	t.Run("rolled back like routes nothing", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("ToggleLike", ctx, domain.ContentPost, postID, actorID).Return(true, nil)
		d.contentRepo.On("GetByID", ctx, domain.ContentPost, postID).Return(&domain.Content{
			ID: postID, Kind: domain.ContentPost, AuthorID: authorID, Likes: []uuid.UUID{actorID},
		}, nil)
		d.notificationRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("insert failed"))

		_, err := d.svc.ToggleLike(ctx, domain.ContentPost, postID, actorID)

		require.Error(t, err)
		d.router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
	})

	t.Run("invalid kind", func(t *testing.T) {
		d := newContentDeps()

		_, err := d.svc.ToggleLike(ctx, "story", postID, actorID)

		assert.ErrorIs(t, err, apperrors.ErrInvalidContentKind)
	})

	t.Run("routing failure does not fail the request", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("ToggleLike", ctx, domain.ContentPost, postID, authorID).Return(true, nil)
		d.contentRepo.On("GetByID", ctx, domain.ContentPost, postID).Return(&domain.Content{
			ID: postID, Kind: domain.ContentPost, AuthorID: authorID,
		}, nil)
		d.router.On("Route", mock.Anything, mock.Anything).Return(apperrors.ErrMalformedEvent)

		_, err := d.svc.ToggleLike(ctx, domain.ContentPost, postID, authorID)

		assert.NoError(t, err)
	})
}

func TestContentService_AddComment(t *testing.T) {
	ctx := context.Background()
	authorID := uuid.New()
	actorID := uuid.New()
	loopID := uuid.New()

	t.Run("routes full comment list and notification", func(t *testing.T) {
		d := newContentDeps()
		existing := domain.Comment{ID: uuid.New(), ContentID: loopID, AuthorID: authorID, Text: "first"}
		added := domain.Comment{ID: uuid.New(), ContentID: loopID, AuthorID: actorID, Text: "second"}

		d.tx.On("WithTransaction", ctx).Return(nil)
		d.contentRepo.On("AddComment", ctx, domain.ContentLoop, mock.AnythingOfType("*domain.Comment")).Return(&added, nil)
		d.contentRepo.On("GetByID", ctx, domain.ContentLoop, loopID).Return(&domain.Content{
			ID: loopID, Kind: domain.ContentLoop, AuthorID: authorID, Comments: []domain.Comment{existing, added},
		}, nil)
		d.notificationRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(&domain.Notification{
			ID: uuid.New(), Type: domain.NotificationComment, SenderID: actorID, RecipientID: authorID,
		}, nil)
		d.router.On("Route", mock.MatchedBy(func(e domain.Event) bool {
			p, ok := e.Payload.(domain.CommentsChangedPayload)
			return ok && len(p.Comments) == 2 && p.SubjectKind == domain.ContentLoop
		}), []uuid.UUID{authorID}).Return(nil).Once()
		d.router.On("Route", eventOfType(domain.EventNotificationCreated), []uuid.UUID{authorID}).Return(nil).Once()

		content, err := d.svc.AddComment(ctx, ports.AddCommentParams{
			Kind: domain.ContentLoop, ContentID: loopID, ActorID: actorID, Text: "second",
		})

		require.NoError(t, err)
		assert.Len(t, content.Comments, 2)
		d.router.AssertExpectations(t)
	})

	t.Run("blank text is rejected before persistence", func(t *testing.T) {
		d := newContentDeps()

		_, err := d.svc.AddComment(ctx, ports.AddCommentParams{
			Kind: domain.ContentPost, ContentID: loopID, ActorID: actorID, Text: "  ",
		})

		assert.ErrorIs(t, err, apperrors.ErrCommentTextRequired)
		d.contentRepo.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transaction failure routes nothing", func(t *testing.T) {
		d := newContentDeps()
		d.tx.On("WithTransaction", ctx).Return(errors.New("db down"))

		_, err := d.svc.AddComment(ctx, ports.AddCommentParams{
			Kind: domain.ContentPost, ContentID: loopID, ActorID: actorID, Text: "hi",
		})

		assert.Error(t, err)
		d.router.AssertNotCalled(t, "Route", mock.Anything, mock.Anything)
	})
}
