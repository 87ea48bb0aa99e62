package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// NotificationRepo represents notification repository.
type NotificationRepo struct {
	db *pgxpool.Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Insert writes one notification record.
func (r *NotificationRepo) Insert(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO notifications
            (id, user_id, delivery_id, type, title, message, read, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, false, $7)
    `, n.ID, n.UserID, n.DeliveryID, string(n.Type), n.Title, n.Message, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification %q: %w", n.ID, err)
	}
	return nil
}

// MarkRead flips the read flag, the only mutation notifications allow.
// Returns false when the record does not exist, belongs to another user, or
// was already read.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	ct, err := r.db.Exec(ctx, `
        UPDATE notifications
        SET read = true
        WHERE id = $1
          AND user_id = $2
          AND read = false
    `, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification %q read: %w", id, err)
	}
	return ct.RowsAffected() > 0, nil
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	q := `
        SELECT id, user_id, delivery_id, type, title, message, read, created_at
        FROM notifications
        WHERE user_id = $1
    `
	if unreadOnly {
		q += ` AND read = false`
	}
	q += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications for %q: %w", userID, err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.DeliveryID, &n.Type,
			&n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}
