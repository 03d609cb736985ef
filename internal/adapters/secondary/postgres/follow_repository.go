package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/social-realtime/internal/core/ports"
)

type FollowRepository struct {
	pool *pgxpool.Pool
}

var _ ports.FollowRepository = (*FollowRepository)(nil)

func NewFollowRepository(pool *pgxpool.Pool) ports.FollowRepository {
	return &FollowRepository{pool: pool}
}

// Toggle follows or unfollows and reports whether followerID now follows
// followeeID.
func (r *FollowRepository) Toggle(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	q := GetDBTX(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`, followerID, followeeID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = q.Exec(ctx, `
INSERT INTO follows (follower_id, followee_id) VALUES ($1, $2)
ON CONFLICT (follower_id, followee_id) DO NOTHING`, followerID, followeeID)
	if err != nil {
		return false, err
	}
	return true, nil
}
