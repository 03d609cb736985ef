package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/social-realtime/internal/core/domain"
	apperrors "github.com/lorrc/social-realtime/internal/core/errors"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

// ContentRepository stores posts and loops in one table keyed by kind.
type ContentRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ContentRepository = (*ContentRepository)(nil)

func NewContentRepository(pool *pgxpool.Pool) ports.ContentRepository {
	return &ContentRepository{pool: pool}
}

func (r *ContentRepository) Create(ctx context.Context, content *domain.Content) (*domain.Content, error) {
	if !content.Kind.IsValid() {
		return nil, apperrors.ErrInvalidContentKind
	}

	const query = `
INSERT INTO contents (id, kind, author_id, caption, media_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, kind, author_id, caption, media_url, created_at`

	id := content.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var (
		created domain.Content
		kind    string
	)
	err := GetDBTX(ctx, r.pool).QueryRow(ctx, query, id, string(content.Kind), content.AuthorID, content.Caption, content.MediaURL).
		Scan(&created.ID, &kind, &created.AuthorID, &created.Caption, &created.MediaURL, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	created.Kind = domain.ContentKind(kind)
	created.Likes = []uuid.UUID{}
	created.Comments = []domain.Comment{}
	return &created, nil
}

// GetByID loads the content row with its full like and comment lists from a
// single snapshot.
func (r *ContentRepository) GetByID(ctx context.Context, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error) {
	var content *domain.Content
	err := withReadOnly(ctx, r.pool, func(q DBTX) error {
		c, err := r.fetchContent(ctx, q, kind, id)
		if err != nil {
			return err
		}
		if c.Likes, err = r.fetchLikes(ctx, q, id); err != nil {
			return err
		}
		if c.Comments, err = r.fetchComments(ctx, q, id); err != nil {
			return err
		}
		content = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return content, nil
}

// ToggleLike adds the like if absent or removes it if present and reports
// whether the user now likes the content.
func (r *ContentRepository) ToggleLike(ctx context.Context, kind domain.ContentKind, contentID, userID uuid.UUID) (bool, error) {
	q := GetDBTX(ctx, r.pool)
	if err := r.ensureExists(ctx, q, kind, contentID); err != nil {
		return false, err
	}

	tag, err := q.Exec(ctx, `DELETE FROM content_likes WHERE content_id = $1 AND user_id = $2`, contentID, userID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = q.Exec(ctx, `
INSERT INTO content_likes (content_id, user_id) VALUES ($1, $2)
ON CONFLICT (content_id, user_id) DO NOTHING`, contentID, userID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *ContentRepository) AddComment(ctx context.Context, kind domain.ContentKind, comment *domain.Comment) (*domain.Comment, error) {
	q := GetDBTX(ctx, r.pool)
	if err := r.ensureExists(ctx, q, kind, comment.ContentID); err != nil {
		return nil, err
	}

	const query = `
INSERT INTO content_comments (id, content_id, author_id, text)
VALUES ($1, $2, $3, $4)
RETURNING id, content_id, author_id, text, created_at`

	id := comment.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var created domain.Comment
	err := q.QueryRow(ctx, query, id, comment.ContentID, comment.AuthorID, comment.Text).
		Scan(&created.ID, &created.ContentID, &created.AuthorID, &created.Text, &created.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ContentRepository) ensureExists(ctx context.Context, q DBTX, kind domain.ContentKind, id uuid.UUID) error {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM contents WHERE id = $1 AND kind = $2)`, id, string(kind)).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrContentNotFound
	}
	return nil
}

func (r *ContentRepository) fetchContent(ctx context.Context, q DBTX, kind domain.ContentKind, id uuid.UUID) (*domain.Content, error) {
	const query = `
SELECT id, kind, author_id, caption, media_url, created_at
FROM contents
WHERE id = $1 AND kind = $2`

	var (
		c       domain.Content
		rawKind string
	)
	err := q.QueryRow(ctx, query, id, string(kind)).
		Scan(&c.ID, &rawKind, &c.AuthorID, &c.Caption, &c.MediaURL, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrContentNotFound
		}
		return nil, err
	}
	c.Kind = domain.ContentKind(rawKind)
	return &c, nil
}

func (r *ContentRepository) fetchLikes(ctx context.Context, q DBTX, contentID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.Query(ctx, `SELECT user_id FROM content_likes WHERE content_id = $1 ORDER BY created_at, user_id`, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	likes := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		likes = append(likes, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return likes, nil
}

func (r *ContentRepository) fetchComments(ctx context.Context, q DBTX, contentID uuid.UUID) ([]domain.Comment, error) {
	const query = `
SELECT id, content_id, author_id, text, created_at
FROM content_comments
WHERE content_id = $1
ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ContentID, &c.AuthorID, &c.Text, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}
