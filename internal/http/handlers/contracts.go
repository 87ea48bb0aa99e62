package handlers

import (
	"context"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/arbiter"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/feed"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/presence"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/repository"
)

type dispatchUsecase interface {
	Create(ctx context.Context, in arbiter.CreateInput, actorID string) (*domain.Delivery, error)
	Claim(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error)
	Decline(ctx context.Context, deliveryID, driverID string) error
	Start(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error)
	Complete(ctx context.Context, deliveryID, driverID string) (*domain.Delivery, error)
	ConfirmSchedule(ctx context.Context, deliveryID, date, tm, actorID string) (*domain.Delivery, error)
	Cancel(ctx context.Context, deliveryID, actorID string) (*domain.Delivery, error)
}

// NewDispatchUsecase wires the arbiter Service into a dispatchUsecase.
func NewDispatchUsecase(svc *arbiter.Service) dispatchUsecase {
	return svc
}

type feedUsecase interface {
	Open(ctx context.Context, driverID string) (*feed.Session, error)
	Fetch(ctx context.Context, driverID string) (feed.Snapshot, error)
}

// NewFeedUsecase wires the feed Manager into a feedUsecase.
func NewFeedUsecase(m *feed.Manager) feedUsecase {
	return m
}

type notificationUsecase interface {
	ListForUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
}

// NewNotificationUsecase wires the notification repository into a notificationUsecase.
func NewNotificationUsecase(repo *repository.NotificationRepo) notificationUsecase {
	return repo
}

type presenceUsecase interface {
	Touch(ctx context.Context, deliveryID, userID string)
	SubscribeTyping(ctx context.Context, deliveryID string) (bus.TypingSubscription, error)
}

type presencePorts struct {
	*presence.Hub
	bus.Presence
}

// NewPresenceUsecase joins the typer hub with the bus subscription side.
func NewPresenceUsecase(hub *presence.Hub, b bus.Presence) presenceUsecase {
	return presencePorts{Hub: hub, Presence: b}
}
