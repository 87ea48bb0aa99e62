package feed

import (
	"sync"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

// Snapshot is one consistent read of a driver's three working views.
// Refreshed is the time the fetch began. Against a single store, fetch order
// equals data order, so comparing stamps is comparing data freshness.
type Snapshot struct {
	Open      []domain.Delivery `json:"open"`
	Active    []domain.Delivery `json:"active"`
	Recent    []domain.Delivery `json:"recent"`
	Refreshed time.Time         `json:"refreshed"`
}

// ViewSet is the reconciliation-owned local state. Listener reconciliations
// and poller refreshes both land here; the monotonic Refreshed guard makes
// their ordering irrelevant: stale data is discarded no matter which path
// delivered it.
type ViewSet struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewViewSet creates an empty ViewSet.
func NewViewSet() *ViewSet {
	return &ViewSet{}
}

// Apply replaces the views with s if its data is newer than what is held.
// Returns false when s was discarded as stale.
func (v *ViewSet) Apply(s Snapshot) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !s.Refreshed.After(v.current.Refreshed) {
		return false
	}
	v.current = s
	return true
}

// AppendOpen adds a newly inserted row to the open view. Events may arrive
// more than once; an id collision is a no-op and returns false. Refreshed is
// left alone: it belongs to the fetch clock, and the next refresh carries the
// row anyway.
func (v *ViewSet) AppendOpen(d domain.Delivery) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, have := range v.current.Open {
		if have.ID == d.ID {
			return false
		}
	}
	v.current.Open = append(v.current.Open, d)
	return true
}

// Snapshot returns a copy of the current views.
func (v *ViewSet) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		Open:      append([]domain.Delivery(nil), v.current.Open...),
		Active:    append([]domain.Delivery(nil), v.current.Active...),
		Recent:    append([]domain.Delivery(nil), v.current.Recent...),
		Refreshed: v.current.Refreshed,
	}
}
