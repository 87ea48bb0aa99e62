package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/apperr"
)

// ApprovalRepo represents the dealer→driver approval edge repository.
type ApprovalRepo struct {
	db *pgxpool.Pool
}

// NewApprovalRepo creates a new ApprovalRepo.
func NewApprovalRepo(db *pgxpool.Pool) *ApprovalRepo {
	return &ApprovalRepo{db: db}
}

// Approve records a dealer's approval of a driver. Edges are immutable;
// approving twice is a conflict.
func (r *ApprovalRepo) Approve(ctx context.Context, driverID, dealerID string, now time.Time) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO driver_dealer_approvals (driver_id, dealer_id, created_at)
        VALUES ($1, $2, $3)
    `, driverID, dealerID, now)
	if err != nil {
		if IsDuplicate(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("approve driver %q for dealer %q: %w", driverID, dealerID, err)
	}
	return nil
}

// ApprovedDealers returns the dealer ids the driver is approved for.
func (r *ApprovalRepo) ApprovedDealers(ctx context.Context, driverID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
        SELECT dealer_id
        FROM driver_dealer_approvals
        WHERE driver_id = $1
        ORDER BY dealer_id
    `, driverID)
	if err != nil {
		return nil, fmt.Errorf("approved dealers for driver %q: %w", driverID, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan dealer id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}
	return out, nil
}
