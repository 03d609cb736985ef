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

// NotificationRepository handles persistence for notifications.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

var _ ports.NotificationRepository = (*NotificationRepository)(nil)

// NewNotificationRepository creates a new notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) ports.NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = `id, type, sender_id, recipient_id, content_id, content_kind, message, is_read, created_at`

func scanNotification(row pgx.Row) (*domain.Notification, error) {
	var (
		n         domain.Notification
		nType     string
		contentID pgtype.UUID
		kind      string
	)
	err := row.Scan(&n.ID, &nType, &n.SenderID, &n.RecipientID, &contentID, &kind, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = domain.NotificationType(nType)
	n.ContentID = utils.FromNullUUID(contentID)
	n.ContentKind = domain.ContentKind(kind)
	return &n, nil
}

// Create persists a new notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	const query = `
INSERT INTO notifications (id, type, sender_id, recipient_id, content_id, content_kind, message, is_read)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + notificationColumns

	id := n.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	return scanNotification(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		id,
		string(n.Type),
		n.SenderID,
		n.RecipientID,
		utils.ToNullUUID(n.ContentID),
		string(n.ContentKind),
		n.Message,
		n.IsRead,
	))
}

// ListByRecipient returns every notification for the recipient, most recent first.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uuid.UUID) ([]*domain.Notification, error) {
	const query = `
SELECT ` + notificationColumns + `
FROM notifications
WHERE recipient_id = $1
ORDER BY created_at DESC, id DESC`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead flags the given notifications as read. IDs that belong to a
// different recipient are ignored.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, recipientID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, `
UPDATE notifications
SET is_read = TRUE
WHERE recipient_id = $1 AND id = ANY($2) AND is_read = FALSE`, recipientID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
