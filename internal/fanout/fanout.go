package fanout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/retry"
)

type notificationStore interface {
	Insert(ctx context.Context, n *domain.Notification) error
}

type messageStore interface {
	Insert(ctx context.Context, m *domain.Message) error
}

type pushSink interface {
	Send(ctx context.Context, e push.Event) error
}

type counter interface {
	Inc()
}

// Service computes recipient sets for delivery transitions and emits
// notification records, chat messages and push events. Everything here is
// best-effort: the primary state change already committed, so failures are
// logged, counted and returned as soft errors the caller only logs.
type Service struct {
	notifications notificationStore
	messages      messageStore
	sink          pushSink
	retrier       *retry.Retrier
	failures      counter
	logger        logx.Logger
	now           func() time.Time
}

// NewService - creates a new fan-out Service. The sink may be nil when push
// transport is not configured.
func NewService(
	notifications notificationStore,
	messages messageStore,
	sink pushSink,
	retrier *retry.Retrier,
	failures counter,
	logger logx.Logger,
) *Service {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		notifications: notifications,
		messages:      messages,
		sink:          sink,
		retrier:       retrier,
		failures:      failures,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// DeliveryCreated notifies a pre-assigned driver of a direct request. Open
// deliveries produce no records here; connected listeners synthesize their
// own alerts from the insert event.
func (s *Service) DeliveryCreated(ctx context.Context, d *domain.Delivery, actorID string) error {
	if d.Status != domain.StatusPendingDriverAcceptance {
		return nil
	}
	return s.emit(ctx, d, actorID, domain.TypeDeliveryAssigned,
		"New delivery request",
		fmt.Sprintf("You have been requested for a delivery: %s → %s", d.PickupAddress, d.DropoffAddress))
}

// DeliveryAccepted notifies the dispatching side and opens the chat with a
// first message.
func (s *Service) DeliveryAccepted(ctx context.Context, d *domain.Delivery, actorID string) error {
	err := s.emit(ctx, d, actorID, domain.TypeDeliveryAccepted,
		"Delivery accepted",
		fmt.Sprintf("Your delivery of %s has been accepted by a driver", d.Vehicle))

	m := &domain.Message{
		ID:         uuid.NewString(),
		DeliveryID: d.ID,
		SenderID:   actorID,
		Body:       "I've accepted this delivery. Chat is now active.",
		CreatedAt:  s.now(),
	}
	if msgErr := s.retrier.Do(ctx, "chat message insert", func(ctx context.Context) error {
		return s.messages.Insert(ctx, m)
	}); msgErr != nil {
		s.countFailure("chat message insert", d.ID, msgErr)
		err = errors.Join(err, msgErr)
	}
	return err
}

// DeliveryDeclined notifies the dispatching side that the delivery reopened.
func (s *Service) DeliveryDeclined(ctx context.Context, d *domain.Delivery, actorID string) error {
	return s.emit(ctx, d, actorID, domain.TypeDeliveryDeclined,
		"Delivery declined",
		"The driver declined the delivery; it is open for other drivers again")
}

// StatusUpdated notifies the other parties of driver progress.
func (s *Service) StatusUpdated(ctx context.Context, d *domain.Delivery, actorID string) error {
	return s.emit(ctx, d, actorID, domain.TypeStatusUpdate,
		"Delivery status updated",
		fmt.Sprintf("Delivery status is now %s", d.Status))
}

// ScheduleConfirmed notifies the driver of the confirmed pickup slot.
func (s *Service) ScheduleConfirmed(ctx context.Context, d *domain.Delivery, actorID string) error {
	body := "Delivery schedule confirmed"
	if d.ScheduledDate != nil && d.ScheduledTime != nil {
		body = fmt.Sprintf("Delivery scheduled for %s at %s", *d.ScheduledDate, *d.ScheduledTime)
	}
	return s.emit(ctx, d, actorID, domain.TypeScheduleConfirmed, "Schedule confirmed", body)
}

// DeliveryCancelled notifies the assigned driver (or originator) of the
// cancellation.
func (s *Service) DeliveryCancelled(ctx context.Context, d *domain.Delivery, actorID string) error {
	return s.emit(ctx, d, actorID, domain.TypeDeliveryCancelled,
		"Delivery cancelled",
		fmt.Sprintf("The delivery of %s has been cancelled", d.Vehicle))
}

// emit writes one notification record per recipient and hands each one to
// the push sink. The type tag plus delivery id fully determine the client
// deep link.
func (s *Service) emit(ctx context.Context, d *domain.Delivery, actorID string, t domain.NotificationType, title, body string) error {
	if _, ok := t.Route(d.ID); !ok {
		// Unknown tag would be unroutable on the client; refuse loudly.
		return fmt.Errorf("unroutable notification type %q", t)
	}

	var errs []error
	for _, userID := range Recipients(d, actorID) {
		n := &domain.Notification{
			ID:         uuid.NewString(),
			UserID:     userID,
			DeliveryID: &d.ID,
			Type:       t,
			Title:      title,
			Message:    body,
			CreatedAt:  s.now(),
		}
		if err := s.retrier.Do(ctx, "notification insert", func(ctx context.Context) error {
			return s.notifications.Insert(ctx, n)
		}); err != nil {
			s.countFailure("notification insert", d.ID, err)
			errs = append(errs, err)
			continue
		}
		s.pushOut(ctx, push.Event{
			UserID:     userID,
			DeliveryID: d.ID,
			Type:       t,
			Title:      title,
			Body:       body,
			CreatedAt:  s.now(),
		})
	}
	return errors.Join(errs...)
}

// pushOut is fire-and-forget: a push miss only costs immediacy, the
// notification record is already durable.
func (s *Service) pushOut(ctx context.Context, e push.Event) {
	if s.sink == nil {
		return
	}
	if err := s.sink.Send(ctx, e); err != nil {
		s.logger.Warn("push send failed",
			logx.String("user_id", e.UserID),
			logx.String("delivery_id", e.DeliveryID),
			logx.Err(err),
		)
	}
}

func (s *Service) countFailure(op, deliveryID string, err error) {
	if s.failures != nil {
		s.failures.Inc()
	}
	s.logger.Error("fan-out write failed",
		logx.String("op", op),
		logx.String("delivery_id", deliveryID),
		logx.Err(err),
	)
}
