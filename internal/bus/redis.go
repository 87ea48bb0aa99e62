package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// Compile-time interface checks.
var (
	_ Feed      = (*RedisBus)(nil)
	_ Publisher = (*RedisBus)(nil)
	_ Presence  = (*RedisBus)(nil)
)

// RedisBus implements Feed, Publisher and Presence over Redis pub/sub.
// Channel names carry the scoping: one channel per dealer and one per driver,
// so a subscriber only ever receives rows for identities it subscribed to.
type RedisBus struct {
	client *redis.Client
	logger logx.Logger
}

// NewRedisBus creates a bus over the given client.
func NewRedisBus(client *redis.Client, logger logx.Logger) *RedisBus {
	if logger == nil {
		logger = logx.Nop()
	}
	return &RedisBus{client: client, logger: logger}
}

// DealerChannel returns the change channel for a dealer's deliveries.
func DealerChannel(dealerID string) string {
	return "deliveries:dealer:" + dealerID
}

// DriverChannel returns the change channel for rows assigned to a driver.
func DriverChannel(driverID string) string {
	return "deliveries:driver:" + driverID
}

// TypingChannel returns the presence channel for a delivery conversation.
func TypingChannel(deliveryID string) string {
	return "typing:delivery:" + deliveryID
}

// PublishDeliveryChange emits the event on the dealer channel and, when the
// row has an assigned driver, on that driver's channel too.
func (b *RedisBus) PublishDeliveryChange(ctx context.Context, ev ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}

	channels := []string{DealerChannel(ev.Delivery.DealerID)}
	if ev.Delivery.DriverID != nil {
		channels = append(channels, DriverChannel(*ev.Delivery.DriverID))
	}
	for _, ch := range channels {
		if err := b.client.Publish(ctx, ch, payload).Err(); err != nil {
			return fmt.Errorf("publish change to %s: %w", ch, err)
		}
	}
	return nil
}

// SubscribeDeliveries subscribes to the driver's own channel plus one channel
// per approved dealer. The subscribe handshake is confirmed before returning
// so a broken bus degrades immediately instead of silently dropping events.
func (b *RedisBus) SubscribeDeliveries(ctx context.Context, driverID string, dealerIDs []string) (Subscription, error) {
	channels := make([]string, 0, len(dealerIDs)+1)
	channels = append(channels, DriverChannel(driverID))
	for _, id := range dealerIDs {
		channels = append(channels, DealerChannel(id))
	}

	ps := b.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe deliveries for driver %q: %w", driverID, err)
	}

	sub := &redisSubscription{
		ps:     ps,
		events: make(chan ChangeEvent, 64),
		errs:   make(chan error, 1),
	}
	go sub.loop(ctx, b.logger)
	return sub, nil
}

type redisSubscription struct {
	ps        *redis.PubSub
	events    chan ChangeEvent
	errs      chan error
	closeOnce sync.Once
}

func (s *redisSubscription) Events() <-chan ChangeEvent { return s.events }
func (s *redisSubscription) Errs() <-chan error         { return s.errs }

func (s *redisSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.ps.Close() })
	return err
}

func (s *redisSubscription) loop(ctx context.Context, logger logx.Logger) {
	defer close(s.events)
	defer close(s.errs)

	for {
		msg, err := s.ps.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.errs <- err
			}
			return
		}
		var ev ChangeEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			logger.Warn("bus: bad change event payload",
				logx.String("channel", msg.Channel),
				logx.Err(err),
			)
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// BroadcastTyping publishes one presence entry on the conversation channel.
func (b *RedisBus) BroadcastTyping(ctx context.Context, deliveryID string, e domain.PresenceEntry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal presence entry: %w", err)
	}
	if err := b.client.Publish(ctx, TypingChannel(deliveryID), payload).Err(); err != nil {
		return fmt.Errorf("broadcast typing for %q: %w", deliveryID, err)
	}
	return nil
}

// SubscribeTyping subscribes to the conversation's presence channel.
func (b *RedisBus) SubscribeTyping(ctx context.Context, deliveryID string) (TypingSubscription, error) {
	ps := b.client.Subscribe(ctx, TypingChannel(deliveryID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe typing for %q: %w", deliveryID, err)
	}

	sub := &typingSubscription{
		ps:      ps,
		entries: make(chan domain.PresenceEntry, 16),
	}
	go sub.loop(ctx, b.logger)
	return sub, nil
}

type typingSubscription struct {
	ps        *redis.PubSub
	entries   chan domain.PresenceEntry
	closeOnce sync.Once
}

func (s *typingSubscription) Entries() <-chan domain.PresenceEntry { return s.entries }

func (s *typingSubscription) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.ps.Close() })
	return err
}

func (s *typingSubscription) loop(ctx context.Context, logger logx.Logger) {
	defer close(s.entries)

	for {
		msg, err := s.ps.ReceiveMessage(ctx)
		if err != nil {
			return
		}
		var e domain.PresenceEntry
		if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
			logger.Warn("bus: bad presence payload",
				logx.String("channel", msg.Channel),
				logx.Err(err),
			)
			continue
		}
		select {
		case s.entries <- e:
		case <-ctx.Done():
			return
		}
	}
}

// NewRedisClient builds a client from config values. The connection is lazy;
// the first subscribe or publish surfaces connectivity errors.
func NewRedisClient(addr, pass string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})
}
