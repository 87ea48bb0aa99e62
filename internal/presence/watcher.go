package presence

import (
	"context"
	"sync"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// Watcher is the receiving half of the typing indicator. It keeps only the
// latest broadcast per participant, no history, and treats anything older
// than the staleness window as not typing, so a lost typing=false clears
// itself within that window.
type Watcher struct {
	selfID    string
	staleness time.Duration
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]observation
}

type observation struct {
	typing bool
	at     time.Time
}

// NewWatcher creates a Watcher for one participant's view of a conversation.
func NewWatcher(selfID string, staleness time.Duration) *Watcher {
	return &Watcher{
		selfID:    selfID,
		staleness: staleness,
		now:       time.Now,
		entries:   make(map[string]observation),
	}
}

// Observe records one broadcast, superseding the participant's previous one.
func (w *Watcher) Observe(e domain.PresenceEntry) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[e.UserID] = observation{typing: e.Typing, at: w.now()}
}

// OthersTyping reports whether any participant other than self is typing,
// ignoring observations past the staleness window.
func (w *Watcher) OthersTyping() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := w.now().Add(-w.staleness)
	for userID, obs := range w.entries {
		if userID == w.selfID {
			continue
		}
		if obs.typing && obs.at.After(cutoff) {
			return true
		}
	}
	return false
}

// Watch consumes a typing subscription until ctx is cancelled or the stream
// closes.
func (w *Watcher) Watch(ctx context.Context, sub bus.TypingSubscription) {
	defer func() { _ = sub.Close() }()
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-sub.Entries():
			if !ok {
				return
			}
			w.Observe(e)
		}
	}
}
