package feed

import (
	"context"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

const recentLimit = 20

type viewQueries interface {
	OpenForDriver(ctx context.Context, driverID string, dealerIDs []string) ([]domain.Delivery, error)
	ActiveForDriver(ctx context.Context, driverID string) ([]domain.Delivery, error)
	RecentForDriver(ctx context.Context, driverID string, limit int) ([]domain.Delivery, error)
}

// StoreFetcher reads the three views from the durable store.
type StoreFetcher struct {
	store viewQueries
	now   func() time.Time
}

// NewStoreFetcher creates a StoreFetcher.
func NewStoreFetcher(store viewQueries) *StoreFetcher {
	return &StoreFetcher{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// FetchViews runs the three view queries and stamps the snapshot with the
// fetch start time. The stamp must come from the fetch, not the rows: a later
// fetch can hold strictly older rows when a delivery left the driver's views,
// and that emptier result still supersedes what the driver holds.
func (f *StoreFetcher) FetchViews(ctx context.Context, driverID string, dealerIDs []string) (Snapshot, error) {
	started := f.now()

	open, err := f.store.OpenForDriver(ctx, driverID, dealerIDs)
	if err != nil {
		return Snapshot{}, err
	}
	active, err := f.store.ActiveForDriver(ctx, driverID)
	if err != nil {
		return Snapshot{}, err
	}
	recent, err := f.store.RecentForDriver(ctx, driverID, recentLimit)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Open: open, Active: active, Recent: recent, Refreshed: started}, nil
}

var _ Fetcher = (*StoreFetcher)(nil)
