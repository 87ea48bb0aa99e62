package arbiter

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/apperr"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// Service arbitrates delivery state transitions. Every mutation is a single
// conditional statement at the store; conflicting writers fail fast instead
// of blocking each other.
type Service struct {
	deliveries       deliveryStore
	approvals        approvalStore
	publisher        changePublisher
	notifier         notifier
	lostRaces        counter
	logger           logx.Logger
	operationTimeout time.Duration
	now              func() time.Time
}

// NewService - creates a new arbiter Service.
func NewService(
	deliveries deliveryStore,
	approvals approvalStore,
	publisher changePublisher,
	n notifier,
	lostRaces counter,
	timeout time.Duration,
	logger logx.Logger,
) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		deliveries:       deliveries,
		approvals:        approvals,
		publisher:        publisher,
		notifier:         n,
		lostRaces:        lostRaces,
		logger:           logger,
		operationTimeout: timeout,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// CreateInput carries the dispatcher's new delivery request.
type CreateInput struct {
	DealerID       string
	SalesID        *string
	DriverID       *string
	PickupAddress  string
	DropoffAddress string
	Vehicle        string
}

// Create records a new delivery. With a pre-assigned driver it starts in
// pending_driver_acceptance, otherwise open in pending.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*domain.Delivery, error) {
	if strings.TrimSpace(in.DealerID) == "" {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	status := domain.StatusPending
	if in.DriverID != nil {
		if strings.TrimSpace(*in.DriverID) == "" {
			return nil, apperr.ErrInvalid
		}
		status = domain.StatusPendingDriverAcceptance
	}

	d := &domain.Delivery{
		ID:             uuid.NewString(),
		DealerID:       in.DealerID,
		DriverID:       in.DriverID,
		SalesID:        in.SalesID,
		Status:         status,
		PickupAddress:  in.PickupAddress,
		DropoffAddress: in.DropoffAddress,
		Vehicle:        in.Vehicle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.deliveries.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("delivery created",
		logx.String("event", "delivery_created"),
		logx.String("delivery_id", d.ID),
		logx.String("dealer_id", d.DealerID),
		logx.String("status", string(d.Status)),
	)
	s.afterTransition(ctx, bus.OpInsert, d, actorID, s.notifier.DeliveryCreated)
	return d, nil
}

// Claim transitions a delivery into accepted for the given driver, exactly
// once per delivery. A pre-assigned request is confirmed first; failing that
// the open pool is tried. Matching zero rows both times means somebody else
// already resolved it.
func (s *Service) Claim(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error) {
	deliveryID, driverID, err := validateIDs(deliveryID, driverID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.authorizeDriver(ctx, deliveryID, driverID); err != nil {
		return nil, err
	}

	now := s.now()
	d, err := s.deliveries.ClaimSpecific(ctx, deliveryID, driverID, now)
	if err != nil {
		return nil, err
	}
	if d == nil {
		d, err = s.deliveries.ClaimOpen(ctx, deliveryID, driverID, now)
		if err != nil {
			return nil, err
		}
	}
	if d == nil {
		if s.lostRaces != nil {
			s.lostRaces.Inc()
		}
		s.logger.Info("claim lost race",
			logx.String("delivery_id", deliveryID),
			logx.String("driver_id", driverID),
		)
		return nil, apperr.ErrGone
	}

	s.logger.Info("delivery claimed",
		logx.String("event", "delivery_claimed"),
		logx.String("delivery_id", d.ID),
		logx.String("driver_id", driverID),
	)
	s.afterTransition(ctx, bus.OpUpdate, d, driverID, s.notifier.DeliveryAccepted)
	return d, nil
}

// Decline releases a delivery held by the driver back to the open pool.
// Repeated declines are no-ops, never errors.
func (s *Service) Decline(ctx context.Context, deliveryID, driverID string) error {
	deliveryID, driverID, err := validateIDs(deliveryID, driverID)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.deliveries.Decline(ctx, deliveryID, driverID, s.now())
	if err != nil {
		return err
	}
	if d == nil {
		// Already released, or never held by this driver.
		return nil
	}

	s.logger.Info("delivery declined",
		logx.String("event", "delivery_declined"),
		logx.String("delivery_id", d.ID),
		logx.String("driver_id", driverID),
	)
	s.afterTransition(ctx, bus.OpUpdate, d, driverID, s.notifier.DeliveryDeclined)
	return nil
}

// Start moves the driver's claimed delivery into in_progress.
func (s *Service) Start(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error) {
	return s.advance(ctx, deliveryID, driverID, s.deliveries.Start)
}

// Complete moves the driver's in-progress delivery into completed.
func (s *Service) Complete(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error) {
	return s.advance(ctx, deliveryID, driverID, s.deliveries.Complete)
}

func (s *Service) advance(
	ctx context.Context,
	deliveryID, driverID string,
	op func(context.Context, string, string, time.Time) (*domain.Delivery, error),
) (*domain.Delivery, error) {
	deliveryID, driverID, err := validateIDs(deliveryID, driverID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := op(ctx, deliveryID, driverID, s.now())
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrConflict
	}

	s.logger.Info("delivery status updated",
		logx.String("event", "status_updated"),
		logx.String("delivery_id", d.ID),
		logx.String("status", string(d.Status)),
	)
	s.afterTransition(ctx, bus.OpUpdate, d, driverID, s.notifier.StatusUpdated)
	return d, nil
}

// ConfirmSchedule sets the delivery's date and time once, by the dispatcher.
func (s *Service) ConfirmSchedule(ctx context.Context, deliveryID, date, tm, actorID string) (*domain.Delivery, error) {
	if strings.TrimSpace(deliveryID) == "" ||
		strings.TrimSpace(date) == "" || strings.TrimSpace(tm) == "" {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.deliveries.ConfirmSchedule(ctx, deliveryID, date, tm, s.now())
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrConflict
	}

	s.logger.Info("schedule confirmed",
		logx.String("event", "schedule_confirmed"),
		logx.String("delivery_id", d.ID),
		logx.String("date", date),
		logx.String("time", tm),
	)
	s.afterTransition(ctx, bus.OpUpdate, d, actorID, s.notifier.ScheduleConfirmed)
	return d, nil
}

// Cancel moves a non-terminal delivery into cancelled, by the dispatcher.
func (s *Service) Cancel(ctx context.Context, deliveryID, actorID string) (*domain.Delivery, error) {
	if strings.TrimSpace(deliveryID) == "" {
		return nil, apperr.ErrInvalid
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	d, err := s.deliveries.Cancel(ctx, deliveryID, s.now())
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, apperr.ErrConflict
	}

	s.logger.Info("delivery cancelled",
		logx.String("event", "delivery_cancelled"),
		logx.String("delivery_id", d.ID),
	)
	s.afterTransition(ctx, bus.OpUpdate, d, actorID, s.notifier.DeliveryCancelled)
	return d, nil
}

// authorizeDriver rejects a claim on a delivery outside the driver's approved
// dealer set before any write is attempted. A pre-assignment to the driver
// counts as authorization.
func (s *Service) authorizeDriver(ctx context.Context, deliveryID, driverID string) error {
	d, err := s.deliveries.GetByID(ctx, deliveryID)
	if err != nil {
		return err
	}
	if d == nil {
		return apperr.ErrNotFound
	}
	if d.AssignedTo(driverID) {
		return nil
	}

	dealers, err := s.approvals.ApprovedDealers(ctx, driverID)
	if err != nil {
		return err
	}
	if !slices.Contains(dealers, d.DealerID) {
		s.logger.Error("authorization violation",
			logx.String("delivery_id", deliveryID),
			logx.String("driver_id", driverID),
			logx.String("dealer_id", d.DealerID),
		)
		return apperr.ErrForbidden
	}
	return nil
}

// fanoutTimeout bounds the post-commit publish and fan-out. It must cover the
// notifier's full retry schedule, which the arbitration deadline cannot.
const fanoutTimeout = 15 * time.Second

// afterTransition publishes the change event and runs fan-out. Both are
// best-effort: the primary state change already committed, so failures are
// logged and never rolled back. The work runs detached from the arbitration
// deadline, under its own budget, so a slow claim write cannot eat into the
// fan-out retries.
func (s *Service) afterTransition(
	ctx context.Context,
	op bus.Op,
	d *domain.Delivery,
	actorID string,
	notify func(context.Context, *domain.Delivery, string) error,
) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fanoutTimeout)
	defer cancel()

	if err := s.publisher.PublishDeliveryChange(ctx, bus.ChangeEvent{Op: op, Delivery: *d}); err != nil {
		s.logger.Warn("change publish failed, pollers will catch up",
			logx.String("delivery_id", d.ID),
			logx.Err(err),
		)
	}
	if err := notify(ctx, d, actorID); err != nil {
		s.logger.Warn("notification fan-out incomplete",
			logx.String("delivery_id", d.ID),
			logx.Err(err),
		)
	}
}

func validateIDs(deliveryID, driverID string) (string, string, error) {
	deliveryID = strings.TrimSpace(deliveryID)
	driverID = strings.TrimSpace(driverID)
	if deliveryID == "" || driverID == "" {
		return "", "", apperr.ErrInvalid
	}
	return deliveryID, driverID, nil
}
