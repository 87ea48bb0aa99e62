package arbiter

import (
	"context"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

type deliveryStore interface {
	Create(ctx context.Context, d *domain.Delivery) error
	GetByID(ctx context.Context, id string) (*domain.Delivery, error)
	ClaimSpecific(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error)
	ClaimOpen(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error)
	Decline(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error)
	Start(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error)
	Complete(ctx context.Context, deliveryID, driverID string, now time.Time) (*domain.Delivery, error)
	ConfirmSchedule(ctx context.Context, deliveryID, date, tm string, now time.Time) (*domain.Delivery, error)
	Cancel(ctx context.Context, deliveryID string, now time.Time) (*domain.Delivery, error)
}

type approvalStore interface {
	ApprovedDealers(ctx context.Context, driverID string) ([]string, error)
}

type changePublisher interface {
	PublishDeliveryChange(ctx context.Context, ev bus.ChangeEvent) error
}

// notifier is the best-effort fan-out seam. Errors are soft: the primary
// transition already stands when these run.
type notifier interface {
	DeliveryCreated(ctx context.Context, d *domain.Delivery, actorID string) error
	DeliveryAccepted(ctx context.Context, d *domain.Delivery, actorID string) error
	DeliveryDeclined(ctx context.Context, d *domain.Delivery, actorID string) error
	StatusUpdated(ctx context.Context, d *domain.Delivery, actorID string) error
	ScheduleConfirmed(ctx context.Context, d *domain.Delivery, actorID string) error
	DeliveryCancelled(ctx context.Context, d *domain.Delivery, actorID string) error
}

type counter interface {
	Inc()
}
