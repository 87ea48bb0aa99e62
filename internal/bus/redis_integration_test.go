//go:build integration

package bus_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

func newTestBus(t *testing.T) *bus.RedisBus {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set, skipping integration tests")
	}

	client := bus.NewRedisClient(addr, "", 0)
	t.Cleanup(func() { _ = client.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, client.Ping(ctx).Err(), "redis must be reachable")

	return bus.NewRedisBus(client, logx.Nop())
}

func waitForEvent(t *testing.T, sub bus.Subscription) bus.ChangeEvent {
	t.Helper()
	select {
	case ev := <-sub.Events():
		return ev
	case err := <-sub.Errs():
		t.Fatalf("subscription died: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("no event within 3s")
	}
	return bus.ChangeEvent{}
}

func TestPublishDeliveryChange_ReachesDealerSubscriber(t *testing.T) {
	b := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := b.SubscribeDeliveries(ctx, "driver-5", []string{"dealer-1"})
	require.NoError(t, err)
	defer sub.Close()

	ev := bus.ChangeEvent{
		Op: bus.OpInsert,
		Delivery: domain.Delivery{
			ID:       "del-1",
			DealerID: "dealer-1",
			Status:   domain.StatusPending,
		},
	}
	require.NoError(t, b.PublishDeliveryChange(ctx, ev))

	got := waitForEvent(t, sub)
	require.Equal(t, bus.OpInsert, got.Op)
	require.Equal(t, "del-1", got.Delivery.ID)
	require.Equal(t, domain.StatusPending, got.Delivery.Status)
}

func TestPublishDeliveryChange_AssignedRowReachesDriverChannel(t *testing.T) {
	b := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Subscriber is not approved for dealer-9; only the driver channel can
	// deliver this row.
	sub, err := b.SubscribeDeliveries(ctx, "driver-5", nil)
	require.NoError(t, err)
	defer sub.Close()

	driver := "driver-5"
	ev := bus.ChangeEvent{
		Op: bus.OpUpdate,
		Delivery: domain.Delivery{
			ID:       "del-2",
			DealerID: "dealer-9",
			DriverID: &driver,
			Status:   domain.StatusPendingDriverAcceptance,
		},
	}
	require.NoError(t, b.PublishDeliveryChange(ctx, ev))

	got := waitForEvent(t, sub)
	require.Equal(t, "del-2", got.Delivery.ID)
}

func TestPublishDeliveryChange_OutsideScopeNotDelivered(t *testing.T) {
	b := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := b.SubscribeDeliveries(ctx, "driver-5", []string{"dealer-1"})
	require.NoError(t, err)
	defer sub.Close()

	ev := bus.ChangeEvent{
		Op: bus.OpInsert,
		Delivery: domain.Delivery{
			ID:       "del-3",
			DealerID: "dealer-9",
			Status:   domain.StatusPending,
		},
	}
	require.NoError(t, b.PublishDeliveryChange(ctx, ev))

	select {
	case got := <-sub.Events():
		t.Fatalf("received event outside subscribed scope: %+v", got)
	case <-time.After(500 * time.Millisecond):
	}
}

func TestTyping_BroadcastReachesSubscriber(t *testing.T) {
	b := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := b.SubscribeTyping(ctx, "del-1")
	require.NoError(t, err)
	defer sub.Close()

	in := domain.PresenceEntry{UserID: "dealer-1", Typing: true}
	require.NoError(t, b.BroadcastTyping(ctx, "del-1", in))

	select {
	case got := <-sub.Entries():
		require.Equal(t, in, got)
	case <-time.After(3 * time.Second):
		t.Fatal("no presence entry within 3s")
	}
}

func TestSubscription_CloseEndsStream(t *testing.T) {
	b := newTestBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := b.SubscribeDeliveries(ctx, "driver-5", []string{"dealer-1"})
	require.NoError(t, err)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "close is idempotent")

	select {
	case _, ok := <-sub.Events():
		require.False(t, ok, "events channel must close")
	case <-time.After(3 * time.Second):
		t.Fatal("events channel did not close after Close")
	}
}
