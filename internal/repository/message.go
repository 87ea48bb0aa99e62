package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// MessageRepo represents the delivery chat message repository.
type MessageRepo struct {
	db *pgxpool.Pool
}

// NewMessageRepo creates a new MessageRepo.
func NewMessageRepo(db *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{db: db}
}

// Insert writes one chat message.
func (r *MessageRepo) Insert(ctx context.Context, m *domain.Message) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO messages (id, delivery_id, sender_id, body, created_at)
        VALUES ($1, $2, $3, $4, $5)
    `, m.ID, m.DeliveryID, m.SenderID, m.Body, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message %q: %w", m.ID, err)
	}
	return nil
}
