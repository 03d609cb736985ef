package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContentKind(t *testing.T) {
	tests := []struct {
		input string
		want  domain.ContentKind
		ok    bool
	}{
		{"post", domain.ContentPost, true},
		{"posts", domain.ContentPost, true},
		{"Loops", domain.ContentLoop, true},
		{"story", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := domain.ParseContentKind(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, apperrors.ErrInvalidContentKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestNewComment(t *testing.T) {
	contentID := uuid.New()
	authorID := uuid.New()

	t.Run("trims text", func(t *testing.T) {
		c, err := domain.NewComment(domain.CommentParams{ContentID: contentID, AuthorID: authorID, Text: "  nice  "})
		require.NoError(t, err)
		assert.Equal(t, "nice", c.Text)
		assert.NotEqual(t, uuid.Nil, c.ID)
	})

	t.Run("rejects blank text", func(t *testing.T) {
		_, err := domain.NewComment(domain.CommentParams{ContentID: contentID, AuthorID: authorID, Text: "   "})
		assert.ErrorIs(t, err, apperrors.ErrCommentTextRequired)
	})

	t.Run("rejects long text", func(t *testing.T) {
		_, err := domain.NewComment(domain.CommentParams{
			ContentID: contentID,
			AuthorID:  authorID,
			Text:      strings.Repeat("x", domain.MaxCommentTextLength+1),
		})
		assert.ErrorIs(t, err, apperrors.ErrCommentTextTooLong)
	})
}

func TestNewMessage(t *testing.T) {
	alice := uuid.New()
	bob := uuid.New()

	t.Run("text only", func(t *testing.T) {
		m, err := domain.NewMessage(domain.MessageParams{SenderID: alice, ReceiverID: bob, Text: "hi"})
		require.NoError(t, err)
		require.NotNil(t, m.Text)
		assert.Equal(t, "hi", *m.Text)
		assert.Nil(t, m.ImageURL)
		assert.True(t, m.Involves(bob))
	})

	t.Run("image only", func(t *testing.T) {
		m, err := domain.NewMessage(domain.MessageParams{SenderID: alice, ReceiverID: bob, ImageURL: "https://cdn/x.png"})
		require.NoError(t, err)
		assert.Nil(t, m.Text)
		require.NotNil(t, m.ImageURL)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := domain.NewMessage(domain.MessageParams{SenderID: alice, ReceiverID: bob})
		assert.ErrorIs(t, err, apperrors.ErrMessageEmpty)
	})

	t.Run("to self", func(t *testing.T) {
		_, err := domain.NewMessage(domain.MessageParams{SenderID: alice, ReceiverID: alice, Text: "me"})
		assert.ErrorIs(t, err, apperrors.ErrCannotMessageSelf)
	})
}

func TestNewUser(t *testing.T) {
	u, err := domain.NewUser(domain.UserParams{Username: " loopfan ", FullName: "Loop Fan"})
	require.NoError(t, err)
	assert.Equal(t, "loopfan", u.Username)

	_, err = domain.NewUser(domain.UserParams{Username: ""})
	var verrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.Errors, "username")
}
