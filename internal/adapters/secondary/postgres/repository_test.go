package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/adapters/primary/websocket"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/lorrc/social-realtime/internal/core/services"
	"github.com/lorrc/social-realtime/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to create a user with a unique username
func createTestUser(t *testing.T, ctx context.Context) *domain.User {
	t.Helper()
	user, err := domain.NewUser(domain.UserParams{
		Username: "user_" + uuid.NewString()[:8],
		FullName: "Test User",
	})
	require.NoError(t, err)

	created, err := NewUserRepository(testPool).Create(ctx, user)
	require.NoError(t, err)
	return created
}

func createTestContent(t *testing.T, ctx context.Context, kind domain.ContentKind, authorID uuid.UUID) *domain.Content {
	t.Helper()
	created, err := NewContentRepository(testPool).Create(ctx, &domain.Content{
		Kind:     kind,
		AuthorID: authorID,
		Caption:  "caption",
	})
	require.NoError(t, err)
	return created
}

func TestUserRepository_CreateGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testPool)

	user := createTestUser(t, ctx)

	found, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, found.Username)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = repo.Create(ctx, &domain.User{Username: user.Username})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestContentRepository_ToggleLike(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository(testPool)

	author := createTestUser(t, ctx)
	fan := createTestUser(t, ctx)
	post := createTestContent(t, ctx, domain.ContentPost, author.ID)

	liked, err := repo.ToggleLike(ctx, domain.ContentPost, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := repo.GetByID(ctx, domain.ContentPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{fan.ID}, got.Likes)

	liked, err = repo.ToggleLike(ctx, domain.ContentPost, post.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = repo.GetByID(ctx, domain.ContentPost, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Likes)
	assert.NotNil(t, got.Likes)
}

func TestContentRepository_KindIsPartOfIdentity(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository(testPool)

	author := createTestUser(t, ctx)
	loop := createTestContent(t, ctx, domain.ContentLoop, author.ID)

	_, err := repo.GetByID(ctx, domain.ContentPost, loop.ID)
	assert.ErrorIs(t, err, apperrors.ErrContentNotFound)

	_, err = repo.ToggleLike(ctx, domain.ContentPost, loop.ID, author.ID)
	assert.ErrorIs(t, err, apperrors.ErrContentNotFound)

	got, err := repo.GetByID(ctx, domain.ContentLoop, loop.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ContentLoop, got.Kind)
}

func TestContentRepository_AddCommentKeepsOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewContentRepository(testPool)

	author := createTestUser(t, ctx)
	post := createTestContent(t, ctx, domain.ContentPost, author.ID)

	for _, text := range []string{"first", "second", "third"} {
		c, err := domain.NewComment(domain.CommentParams{ContentID: post.ID, AuthorID: author.ID, Text: text})
		require.NoError(t, err)
		_, err = repo.AddComment(ctx, domain.ContentPost, c)
		require.NoError(t, err)
	}

	got, err := repo.GetByID(ctx, domain.ContentPost, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 3)
	assert.Equal(t, "first", got.Comments[0].Text)
	assert.Equal(t, "third", got.Comments[2].Text)

	_, err = repo.AddComment(ctx, domain.ContentPost, &domain.Comment{ContentID: uuid.New(), AuthorID: author.ID, Text: "x"})
	assert.ErrorIs(t, err, apperrors.ErrContentNotFound)
}

func TestFollowRepository_Toggle(t *testing.T) {
	ctx := context.Background()
	repo := NewFollowRepository(testPool)

	a := createTestUser(t, ctx)
	b := createTestUser(t, ctx)

	following, err := repo.Toggle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = repo.Toggle(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestNotificationRepository_ListAndMarkAsRead(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository(testPool)

	sender := createTestUser(t, ctx)
	recipient := createTestUser(t, ctx)
	other := createTestUser(t, ctx)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n, err := domain.NewNotification(domain.NotificationParams{
			Type:        domain.NotificationFollow,
			SenderID:    sender.ID,
			RecipientID: recipient.ID,
			Message:     "started following you",
		})
		require.NoError(t, err)
		created, err := repo.Create(ctx, n)
		require.NoError(t, err)
		ids = append(ids, created.ID)
		time.Sleep(5 * time.Millisecond)
	}

	list, err := repo.ListByRecipient(ctx, recipient.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, ids[2], list[0].ID, "most recent first")
	assert.Nil(t, list[0].ContentID)

	updated, err := repo.MarkAsRead(ctx, other.ID, ids)
	require.NoError(t, err)
	assert.Zero(t, updated, "scoped to the recipient")

	updated, err = repo.MarkAsRead(ctx, recipient.ID, ids[:2])
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	list, err = repo.ListByRecipient(ctx, recipient.ID)
	require.NoError(t, err)
	assert.False(t, list[0].IsRead)
	assert.True(t, list[1].IsRead)
	assert.True(t, list[2].IsRead)
}

func TestMessageRepository_ConversationAndPartners(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(testPool)

	me := createTestUser(t, ctx)
	p := createTestUser(t, ctx)
	q := createTestUser(t, ctx)

	send := func(from, to uuid.UUID, text string) {
		m, err := domain.NewMessage(domain.MessageParams{SenderID: from, ReceiverID: to, Text: text})
		require.NoError(t, err)
		_, err = repo.Create(ctx, m)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}

	send(me.ID, p.ID, "hi p")
	send(p.ID, me.ID, "hi back")
	send(q.ID, me.ID, "hello from q")

	conv, err := repo.ListConversation(ctx, me.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "hi p", *conv[0].Text)
	assert.Equal(t, "hi back", *conv[1].Text)
	assert.Nil(t, conv[0].ImageURL)

	partners, err := repo.ListPartners(ctx, me.ID)
	require.NoError(t, err)
	require.Len(t, partners, 2)
	assert.Equal(t, q.ID, partners[0].ID, "most recent partner first")
	assert.Equal(t, p.ID, partners[1].ID)
}

func TestTransactionManager_RollsBack(t *testing.T) {
	ctx := context.Background()
	tm := NewTransactionManager(testPool)
	users := NewUserRepository(testPool)

	var createdID uuid.UUID
	err := tm.WithTransaction(ctx, func(ctx context.Context) error {
		u := createTestUser(t, ctx)
		createdID = u.ID
		return apperrors.ErrConflict
	})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = users.GetByID(ctx, createdID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

// A like on an offline author's post is not pushed anywhere, but the
// notification it produced is still listed afterwards.
func TestOfflineRecipientStillSeesPersistedNotification(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	m := metrics.NewRealtime("test")
	hub := websocket.NewHub(websocket.NewRegistry(), m, websocket.Config{}, logger)
	hubCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-hub.Done()
	}()
	go hub.Run(hubCtx)

	notificationRepo := NewNotificationRepository(testPool)
	contentSvc := services.NewContentService(
		NewContentRepository(testPool),
		notificationRepo,
		NewTransactionManager(testPool),
		hub,
		logger,
	)
	notificationSvc := services.NewNotificationService(notificationRepo)

	author := createTestUser(t, ctx)
	fan := createTestUser(t, ctx)
	post := createTestContent(t, ctx, domain.ContentPost, author.ID)

	result, err := contentSvc.ToggleLike(ctx, domain.ContentPost, post.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, result.Liked)
	assert.Equal(t, []uuid.UUID{fan.ID}, result.Content.Likes)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(m.EventsDropped.WithLabelValues(string(domain.EventNotificationCreated), metrics.ReasonOffline)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	list, err := notificationSvc.List(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.NotificationLike, list[0].Type)
	assert.Equal(t, fan.ID, list[0].SenderID)
	assert.False(t, list[0].IsRead)
}
