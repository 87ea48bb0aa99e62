package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	testlog "github.com/Ltancreti7/swaprunn-dispatch/internal/testutil"
)

type stubBroadcaster struct {
	mu   sync.Mutex
	sent []domain.PresenceEntry
	err  error
}

func (s *stubBroadcaster) BroadcastTyping(_ context.Context, _ string, e domain.PresenceEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, e)
	return nil
}

func (s *stubBroadcaster) Sent() []domain.PresenceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PresenceEntry(nil), s.sent...)
}

func TestTyper_TouchBroadcastsTyping(t *testing.T) {
	t.Parallel()

	b := &stubBroadcaster{}
	typer := NewTyper("d-1", "user-1", b, time.Hour, nil)
	t.Cleanup(typer.Stop)

	typer.Touch(context.Background())
	typer.Touch(context.Background())

	sent := b.Sent()
	require.Len(t, sent, 2)
	for _, e := range sent {
		require.Equal(t, "user-1", e.UserID)
		require.True(t, e.Typing)
	}
}

func TestTyper_InactivityBroadcastsFalse(t *testing.T) {
	t.Parallel()

	b := &stubBroadcaster{}
	typer := NewTyper("d-1", "user-1", b, 10*time.Millisecond, nil)
	t.Cleanup(typer.Stop)

	typer.Touch(context.Background())

	require.Eventually(t, func() bool {
		sent := b.Sent()
		return len(sent) == 2 && !sent[1].Typing
	}, time.Second, time.Millisecond)
}

func TestTyper_TouchResetsTimer(t *testing.T) {
	t.Parallel()

	b := &stubBroadcaster{}
	typer := NewTyper("d-1", "user-1", b, 50*time.Millisecond, nil)
	t.Cleanup(typer.Stop)

	typer.Touch(context.Background())
	time.Sleep(30 * time.Millisecond)
	typer.Touch(context.Background())
	time.Sleep(30 * time.Millisecond)

	// 60ms elapsed but only 30ms since the last keystroke.
	for _, e := range b.Sent() {
		require.True(t, e.Typing)
	}
}

func TestTyper_StaleExpiryDropped(t *testing.T) {
	t.Parallel()

	b := &stubBroadcaster{}
	typer := NewTyper("d-1", "user-1", b, time.Hour, nil)
	t.Cleanup(typer.Stop)

	typer.Touch(context.Background())
	typer.Touch(context.Background())

	// A firing armed by the first keystroke loses the race with the second:
	// its typing=false must not blank the indicator mid-typing.
	typer.expire(1)

	sent := b.Sent()
	require.Len(t, sent, 2)
	for _, e := range sent {
		require.True(t, e.Typing)
	}
	require.True(t, typer.Touch(context.Background()))
}

func TestTyper_IdleExpiryStopsTyper(t *testing.T) {
	t.Parallel()

	b := &stubBroadcaster{}
	typer := NewTyper("d-1", "user-1", b, 10*time.Millisecond, nil)
	idled := make(chan struct{})
	typer.onIdle = func() { close(idled) }

	require.True(t, typer.Touch(context.Background()))

	select {
	case <-idled:
	case <-time.After(time.Second):
		t.Fatal("typer never went idle")
	}
	require.False(t, typer.Touch(context.Background()))

	sent := b.Sent()
	require.Len(t, sent, 2)
	require.False(t, sent[1].Typing)
}

func TestTyper_StopSendsFinalFalseOnce(t *testing.T) {
	t.Parallel()

	b := &stubBroadcaster{}
	typer := NewTyper("d-1", "user-1", b, time.Hour, nil)

	typer.Touch(context.Background())
	typer.Stop()
	typer.Stop()

	sent := b.Sent()
	require.Len(t, sent, 2)
	require.True(t, sent[0].Typing)
	require.False(t, sent[1].Typing)

	// Touch after Stop is ignored.
	typer.Touch(context.Background())
	require.Len(t, b.Sent(), 2)
}

func TestTyper_BroadcastFailureOnlyLogs(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	b := &stubBroadcaster{err: errors.New("bus down")}
	typer := NewTyper("d-1", "user-1", b, time.Hour, rec.Logger())
	t.Cleanup(typer.Stop)

	typer.Touch(context.Background())

	entries := rec.Entries()
	require.NotEmpty(t, entries)
	require.Equal(t, "warn", entries[0].Level)
	require.Equal(t, "typing broadcast failed", entries[0].Msg)
}
