package presence

import (
	"context"
	"sync"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

type broadcaster interface {
	BroadcastTyping(ctx context.Context, deliveryID string, e domain.PresenceEntry) error
}

// Typer is the sending half of the typing indicator. Every keystroke
// re-broadcasts typing=true and re-arms the inactivity timer; when the timer
// fires without further keystrokes a typing=false follows and the typer stops
// for good. Broadcasts are best-effort.
type Typer struct {
	deliveryID string
	userID     string
	b          broadcaster
	timeout    time.Duration
	logger     logx.Logger
	onIdle     func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewTyper creates a Typer for one participant in one conversation.
func NewTyper(deliveryID, userID string, b broadcaster, timeout time.Duration, logger logx.Logger) *Typer {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Typer{
		deliveryID: deliveryID,
		userID:     userID,
		b:          b,
		timeout:    timeout,
		logger:     logger,
	}
}

// Touch records a keystroke: broadcast typing=true and re-arm the inactivity
// timer. Returns false when the typer already went idle or was stopped; the
// keystroke was not recorded and the caller needs a fresh typer.
func (t *Typer) Touch(ctx context.Context) bool {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return false
	}
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.timeout, func() { t.expire(gen) })
	t.mu.Unlock()

	t.broadcast(ctx, true)
	return true
}

// expire fires on inactivity. The generation guard drops a firing that lost a
// race with a concurrent Touch: its typing=false would land after the fresh
// typing=true and blank the indicator mid-typing. A real expiry stops the
// typer for good; the owner replaces it on the next keystroke.
func (t *Typer) expire(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	t.broadcast(ctx, false)

	if t.onIdle != nil {
		t.onIdle()
	}
}

// Stop cancels the timer and sends a final typing=false. Safe to call more
// than once; only the first call broadcasts.
func (t *Typer) Stop() {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	t.broadcast(ctx, false)
}

func (t *Typer) broadcast(ctx context.Context, typing bool) {
	err := t.b.BroadcastTyping(ctx, t.deliveryID, domain.PresenceEntry{
		UserID: t.userID,
		Typing: typing,
	})
	if err != nil {
		// A lost broadcast self-heals on the receiver's staleness window.
		t.logger.Warn("typing broadcast failed",
			logx.String("delivery_id", t.deliveryID),
			logx.Bool("typing", typing),
			logx.Err(err),
		)
	}
}
