package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// deliveryColumns is the column list every delivery query scans.
const deliveryColumns = `id, dealer_id, driver_id, sales_id, status,
	pickup_address, dropoff_address, vehicle,
	scheduled_date, scheduled_time,
	accepted_at, chat_activated_at, created_at, updated_at`

// DeliveryRepo represents delivery repository.
type DeliveryRepo struct {
	db *pgxpool.Pool
}

// NewDeliveryRepo creates a new DeliveryRepo.
func NewDeliveryRepo(db *pgxpool.Pool) *DeliveryRepo {
	return &DeliveryRepo{db: db}
}

func scanDelivery(row pgx.Row) (*domain.Delivery, error) {
	var d domain.Delivery
	err := row.Scan(
		&d.ID, &d.DealerID, &d.DriverID, &d.SalesID, &d.Status,
		&d.PickupAddress, &d.DropoffAddress, &d.Vehicle,
		&d.ScheduledDate, &d.ScheduledTime,
		&d.AcceptedAt, &d.ChatActivatedAt, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a new delivery.
func (r *DeliveryRepo) Create(ctx context.Context, d *domain.Delivery) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO deliveries
            (id, dealer_id, driver_id, sales_id, status,
             pickup_address, dropoff_address, vehicle, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
    `, d.ID, d.DealerID, d.DriverID, d.SalesID, string(d.Status),
		d.PickupAddress, d.DropoffAddress, d.Vehicle, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert delivery %q: %w", d.ID, err)
	}
	return nil
}

// GetByID - get delivery by ID.
func (r *DeliveryRepo) GetByID(ctx context.Context, id string) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE id = $1
    `, id)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery %q: %w", id, err)
	}
	return d, nil
}

// ClaimSpecific accepts a delivery pre-assigned to the given driver. The
// predicate and the write are one statement so the store evaluates them
// atomically; a nil result means the row no longer matches.
func (r *DeliveryRepo) ClaimSpecific(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET status = 'accepted',
            accepted_at = $3,
            chat_activated_at = $3,
            updated_at = $3
        WHERE id = $1
          AND driver_id = $2
          AND status = 'pending_driver_acceptance'
        RETURNING `+deliveryColumns, deliveryID, driverID, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim specific %q: %w", deliveryID, err)
	}
	return d, nil
}

// ClaimOpen claims an unassigned pending delivery for the given driver. Same
// zero-row semantics as ClaimSpecific.
func (r *DeliveryRepo) ClaimOpen(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET driver_id = $2,
            status = 'accepted',
            accepted_at = $3,
            chat_activated_at = $3,
            updated_at = $3
        WHERE id = $1
          AND driver_id IS NULL
          AND status = 'pending'
        RETURNING `+deliveryColumns, deliveryID, driverID, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim open %q: %w", deliveryID, err)
	}
	return d, nil
}

// Decline resets a delivery held by the given driver back to the open pool.
// Zero rows matched is a no-op, not an error, so repeated declines are
// idempotent.
func (r *DeliveryRepo) Decline(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET driver_id = NULL,
            status = 'pending',
            accepted_at = NULL,
            chat_activated_at = NULL,
            updated_at = $3
        WHERE id = $1
          AND driver_id = $2
          AND status IN ('pending_driver_acceptance', 'accepted', 'assigned')
        RETURNING `+deliveryColumns, deliveryID, driverID, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("decline %q: %w", deliveryID, err)
	}
	return d, nil
}

// Start moves an accepted or scheduled delivery into in_progress.
func (r *DeliveryRepo) Start(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET status = 'in_progress',
            updated_at = $3
        WHERE id = $1
          AND driver_id = $2
          AND status IN ('accepted', 'assigned')
        RETURNING `+deliveryColumns, deliveryID, driverID, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("start %q: %w", deliveryID, err)
	}
	return d, nil
}

// Complete moves an in-progress delivery into completed.
func (r *DeliveryRepo) Complete(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET status = 'completed',
            updated_at = $3
        WHERE id = $1
          AND driver_id = $2
          AND status = 'in_progress'
        RETURNING `+deliveryColumns, deliveryID, driverID, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("complete %q: %w", deliveryID, err)
	}
	return d, nil
}

// ConfirmSchedule sets the scheduled date and time once, after acceptance.
func (r *DeliveryRepo) ConfirmSchedule(ctx context.Context, deliveryID, date, tm string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET scheduled_date = $2,
            scheduled_time = $3,
            status = 'assigned',
            updated_at = $4
        WHERE id = $1
          AND status = 'accepted'
          AND scheduled_date IS NULL
        RETURNING `+deliveryColumns, deliveryID, date, tm, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("confirm schedule %q: %w", deliveryID, err)
	}
	return d, nil
}

// Cancel moves any non-terminal delivery into cancelled.
func (r *DeliveryRepo) Cancel(ctx context.Context, deliveryID string, now time.Time) (*domain.Delivery, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE deliveries
        SET status = 'cancelled',
            updated_at = $2
        WHERE id = $1
          AND status NOT IN ('completed', 'cancelled')
        RETURNING `+deliveryColumns, deliveryID, now)

	d, err := scanDelivery(row)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cancel %q: %w", deliveryID, err)
	}
	return d, nil
}

// OpenForDriver returns deliveries the driver can claim: unassigned pending
// rows from approved dealers plus direct requests addressed to the driver.
func (r *DeliveryRepo) OpenForDriver(ctx context.Context, driverID string, dealerIDs []string) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE (status = 'pending' AND driver_id IS NULL AND dealer_id = ANY($2))
           OR (status = 'pending_driver_acceptance' AND driver_id = $1)
        ORDER BY created_at DESC
    `, driverID, dealerIDs)
	if err != nil {
		return nil, fmt.Errorf("open deliveries for driver %q: %w", driverID, err)
	}
	return collectDeliveries(rows)
}

// ActiveForDriver returns the driver's claimed, not yet finished deliveries.
func (r *DeliveryRepo) ActiveForDriver(ctx context.Context, driverID string) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE driver_id = $1
          AND status IN ('accepted', 'assigned', 'in_progress')
        ORDER BY updated_at DESC
    `, driverID)
	if err != nil {
		return nil, fmt.Errorf("active deliveries for driver %q: %w", driverID, err)
	}
	return collectDeliveries(rows)
}

// RecentForDriver returns the driver's finished deliveries, newest first.
func (r *DeliveryRepo) RecentForDriver(ctx context.Context, driverID string, limit int) ([]domain.Delivery, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+deliveryColumns+`
        FROM deliveries
        WHERE driver_id = $1
          AND status IN ('completed', 'cancelled')
        ORDER BY updated_at DESC
        LIMIT $2
    `, driverID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent deliveries for driver %q: %w", driverID, err)
	}
	return collectDeliveries(rows)
}

func collectDeliveries(rows pgx.Rows) ([]domain.Delivery, error) {
	defer rows.Close()
	out := make([]domain.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}
	return out, nil
}
