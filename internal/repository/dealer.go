package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DealerRepo resolves dealer display data for alert synthesis.
type DealerRepo struct {
	db *pgxpool.Pool
}

// NewDealerRepo creates a new DealerRepo.
func NewDealerRepo(db *pgxpool.Pool) *DealerRepo {
	return &DealerRepo{db: db}
}

// Name returns the dealer's display name, or "" when unknown.
func (r *DealerRepo) Name(ctx context.Context, dealerID string) (string, error) {
	var name string
	err := r.db.QueryRow(ctx, `
        SELECT name FROM dealers WHERE id = $1
    `, dealerID).Scan(&name)
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("dealer name %q: %w", dealerID, err)
	}
	return name, nil
}
