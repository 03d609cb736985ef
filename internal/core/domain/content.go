package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
)

// ContentKind distinguishes feed posts from short-video loops.
type ContentKind string

const (
	ContentPost ContentKind = "post"
	ContentLoop ContentKind = "loop"
)

// MaxCommentTextLength bounds a single comment.
const MaxCommentTextLength = 2000

// IsValid reports whether k is a known content kind.
func (k ContentKind) IsValid() bool {
	switch k {
	case ContentPost, ContentLoop:
		return true
	}
	return false
}

// ParseContentKind accepts both singular and plural forms ("post", "posts").
func ParseContentKind(s string) (ContentKind, error) {
	kind := ContentKind(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s"))
	if !kind.IsValid() {
		return "", apperrors.ErrInvalidContentKind
	}
	return kind, nil
}

// Content is a post or a loop. Likes and Comments are always the full
// current lists, never deltas.
type Content struct {
	ID        uuid.UUID
	Kind      ContentKind
	AuthorID  uuid.UUID
	Caption   string
	MediaURL  string
	Likes     []uuid.UUID
	Comments  []Comment
	CreatedAt time.Time
}

// LikedBy reports whether userID is in the like list.
func (c *Content) LikedBy(userID uuid.UUID) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a single comment on a post or loop.
type Comment struct {
	ID        uuid.UUID
	ContentID uuid.UUID
	AuthorID  uuid.UUID
	Text      string
	CreatedAt time.Time
}

// CommentParams holds the input for NewComment.
type CommentParams struct {
	ContentID uuid.UUID
	AuthorID  uuid.UUID
	Text      string
}

// NewComment validates params and builds a comment.
func NewComment(params CommentParams) (*Comment, error) {
	text := strings.TrimSpace(params.Text)
	if text == "" {
		return nil, apperrors.ErrCommentTextRequired
	}
	if len(text) > MaxCommentTextLength {
		return nil, apperrors.ErrCommentTextTooLong
	}

	return &Comment{
		ID:        uuid.New(),
		ContentID: params.ContentID,
		AuthorID:  params.AuthorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}, nil
}
