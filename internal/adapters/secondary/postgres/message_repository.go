package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lorrc/social-realtime/internal/core/domain"
	"github.com/lorrc/social-realtime/internal/core/ports"
	"github.com/lorrc/social-realtime/internal/core/utils"
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

var _ ports.MessageRepository = (*MessageRepository)(nil)

func NewMessageRepository(pool *pgxpool.Pool) ports.MessageRepository {
	return &MessageRepository{pool: pool}
}

const messageColumns = `id, sender_id, receiver_id, text, image_url, created_at`

func scanMessage(row pgx.Row) (*domain.Message, error) {
	var (
		m     domain.Message
		text  pgtype.Text
		image pgtype.Text
	)
	if err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &text, &image, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Text = utils.FromNullString(text)
	m.ImageURL = utils.FromNullString(image)
	return &m, nil
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) (*domain.Message, error) {
	const query = `
INSERT INTO messages (id, sender_id, receiver_id, text, image_url)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + messageColumns

	id := m.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return scanMessage(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		id,
		m.SenderID,
		m.ReceiverID,
		utils.ToNullString(m.Text),
		utils.ToNullString(m.ImageURL),
	))
}

// ListConversation returns both directions of the exchange, oldest first.
func (r *MessageRepository) ListConversation(ctx context.Context, userID, partnerID uuid.UUID) ([]*domain.Message, error) {
	const query = `
SELECT ` + messageColumns + `
FROM messages
WHERE (sender_id = $1 AND receiver_id = $2)
   OR (sender_id = $2 AND receiver_id = $1)
ORDER BY created_at, id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, userID, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}

// ListPartners returns everyone the user has exchanged messages with, most
// recently active first.
func (r *MessageRepository) ListPartners(ctx context.Context, userID uuid.UUID) ([]*domain.User, error) {
	const query = `
SELECT u.id, u.username, u.full_name, u.avatar_url, u.created_at
FROM users u
JOIN (
    SELECT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id,
           MAX(created_at) AS last_at
    FROM messages
    WHERE sender_id = $1 OR receiver_id = $1
    GROUP BY partner_id
) p ON p.partner_id = u.id
ORDER BY p.last_at DESC, u.id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return partners, nil
}
