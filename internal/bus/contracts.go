package bus

import (
	"context"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// Op classifies a change event.
type Op string

// List of change event classes
const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// ChangeEvent is emitted for every delivery mutation, carrying the new row.
// Delivery is at-least-once and unordered across rows.
type ChangeEvent struct {
	Op       Op              `json:"op"`
	Delivery domain.Delivery `json:"delivery"`
}

// Subscription is a live change-event stream. Events and Errs close after
// Close; a value on Errs means the stream is dead and must be resubscribed.
type Subscription interface {
	Events() <-chan ChangeEvent
	Errs() <-chan error
	Close() error
}

// Feed hands out delivery change subscriptions scoped server-side to a
// driver's identity and approved dealer set. The scoping is part of the
// subscription itself; clients never see events outside their set.
type Feed interface {
	SubscribeDeliveries(ctx context.Context, driverID string, dealerIDs []string) (Subscription, error)
}

// Publisher emits delivery change events after the underlying mutation
// committed.
type Publisher interface {
	PublishDeliveryChange(ctx context.Context, ev ChangeEvent) error
}

// TypingSubscription is a live presence stream for one conversation.
type TypingSubscription interface {
	Entries() <-chan domain.PresenceEntry
	Close() error
}

// Presence is the ephemeral typing broadcast, layered on the same transport
// as the change feed. Nothing is persisted; delivery is best-effort.
type Presence interface {
	BroadcastTyping(ctx context.Context, deliveryID string, e domain.PresenceEntry) error
	SubscribeTyping(ctx context.Context, deliveryID string) (TypingSubscription, error)
}
