package presence

import (
	"context"
	"sync"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// Hub owns one Typer per (delivery, participant) pair so keystroke reports
// arriving over HTTP share the inactivity timer. An idle typer evicts itself,
// so the map only holds participants who typed within the timeout.
type Hub struct {
	b       broadcaster
	timeout time.Duration
	logger  logx.Logger

	mu     sync.Mutex
	typers map[string]*Typer
}

// NewHub creates a Hub.
func NewHub(b broadcaster, timeout time.Duration, logger logx.Logger) *Hub {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Hub{
		b:       b,
		timeout: timeout,
		logger:  logger,
		typers:  make(map[string]*Typer),
	}
}

// Touch reports a keystroke from userID in deliveryID's conversation.
func (h *Hub) Touch(ctx context.Context, deliveryID, userID string) {
	key := deliveryID + "/" + userID

	for {
		h.mu.Lock()
		t, ok := h.typers[key]
		if !ok {
			t = NewTyper(deliveryID, userID, h.b, h.timeout, h.logger)
			t.onIdle = func() { h.evict(key, t) }
			h.typers[key] = t
		}
		h.mu.Unlock()

		if t.Touch(ctx) {
			return
		}
		// Went idle between lookup and touch; replace it.
		h.evict(key, t)
	}
}

// evict removes the typer from the map unless it was already replaced.
func (h *Hub) evict(key string, t *Typer) {
	h.mu.Lock()
	if h.typers[key] == t {
		delete(h.typers, key)
	}
	h.mu.Unlock()
}

// Close stops every typer, broadcasting a final typing=false for each.
func (h *Hub) Close() {
	h.mu.Lock()
	typers := make([]*Typer, 0, len(h.typers))
	for _, t := range h.typers {
		typers = append(typers, t)
	}
	h.typers = make(map[string]*Typer)
	h.mu.Unlock()

	for _, t := range typers {
		t.Stop()
	}
}
