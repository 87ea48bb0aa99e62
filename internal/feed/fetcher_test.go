package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

type stubViewQueries struct {
	openFn   func(ctx context.Context, driverID string, dealerIDs []string) ([]domain.Delivery, error)
	activeFn func(ctx context.Context, driverID string) ([]domain.Delivery, error)
	recentFn func(ctx context.Context, driverID string, limit int) ([]domain.Delivery, error)
}

func (s *stubViewQueries) OpenForDriver(ctx context.Context, driverID string, dealerIDs []string) ([]domain.Delivery, error) {
	if s.openFn == nil {
		return nil, nil
	}
	return s.openFn(ctx, driverID, dealerIDs)
}

func (s *stubViewQueries) ActiveForDriver(ctx context.Context, driverID string) ([]domain.Delivery, error) {
	if s.activeFn == nil {
		return nil, nil
	}
	return s.activeFn(ctx, driverID)
}

func (s *stubViewQueries) RecentForDriver(ctx context.Context, driverID string, limit int) ([]domain.Delivery, error) {
	if s.recentFn == nil {
		return nil, nil
	}
	return s.recentFn(ctx, driverID, limit)
}

func TestStoreFetcher_StampsFetchStartTime(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	started := base.Add(5 * time.Minute)
	store := &stubViewQueries{
		openFn: func(context.Context, string, []string) ([]domain.Delivery, error) {
			return []domain.Delivery{{ID: "d-1", UpdatedAt: base}}, nil
		},
		activeFn: func(context.Context, string) ([]domain.Delivery, error) {
			return []domain.Delivery{{ID: "d-2", UpdatedAt: base.Add(2 * time.Minute)}}, nil
		},
		recentFn: func(context.Context, string, int) ([]domain.Delivery, error) {
			return []domain.Delivery{{ID: "d-3", UpdatedAt: base.Add(time.Minute)}}, nil
		},
	}

	f := NewStoreFetcher(store)
	f.now = func() time.Time { return started }

	snap, err := f.FetchViews(context.Background(), "driver-1", []string{"dealer-1"})
	require.NoError(t, err)
	require.Equal(t, started, snap.Refreshed)
	require.Len(t, snap.Open, 1)
	require.Len(t, snap.Active, 1)
	require.Len(t, snap.Recent, 1)
}

func TestStoreFetcher_EmptyViewsStampedWithFetchTime(t *testing.T) {
	t.Parallel()

	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := NewStoreFetcher(&stubViewQueries{})
	f.now = func() time.Time { return started }

	snap, err := f.FetchViews(context.Background(), "driver-1", nil)
	require.NoError(t, err)
	require.Equal(t, started, snap.Refreshed)
	require.Empty(t, snap.Open)
}

func TestStoreFetcher_RefetchAfterClaimSupersedesHeldViews(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	open := []domain.Delivery{
		{ID: "d-taken", UpdatedAt: base.Add(time.Minute)},
		{ID: "d-still-open", UpdatedAt: base},
	}
	clock := base.Add(2 * time.Minute)

	f := NewStoreFetcher(&stubViewQueries{
		openFn: func(context.Context, string, []string) ([]domain.Delivery, error) {
			return open, nil
		},
	})
	f.now = func() time.Time {
		clock = clock.Add(30 * time.Second)
		return clock
	}

	v := NewViewSet()
	first, err := f.FetchViews(context.Background(), "driver-1", nil)
	require.NoError(t, err)
	require.True(t, v.Apply(first))

	// d-taken was claimed by another driver between fetches. The second
	// fetch returns only rows older than anything in the first, yet it must
	// still win: the stamp tracks the fetch, not the rows.
	open = open[1:]
	second, err := f.FetchViews(context.Background(), "driver-1", nil)
	require.NoError(t, err)
	require.True(t, v.Apply(second), "reconciliation after the claim must be applied")

	got := v.Snapshot()
	require.Len(t, got.Open, 1)
	require.Equal(t, "d-still-open", got.Open[0].ID)
}

func TestStoreFetcher_PropagatesQueryErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("db down")
	f := NewStoreFetcher(&stubViewQueries{
		activeFn: func(context.Context, string) ([]domain.Delivery, error) {
			return nil, boom
		},
	})

	_, err := f.FetchViews(context.Background(), "driver-1", nil)
	require.ErrorIs(t, err, boom)
}

func TestStoreFetcher_RecentLimit(t *testing.T) {
	t.Parallel()

	var gotLimit int
	f := NewStoreFetcher(&stubViewQueries{
		recentFn: func(_ context.Context, _ string, limit int) ([]domain.Delivery, error) {
			gotLimit = limit
			return nil, nil
		},
	})

	_, err := f.FetchViews(context.Background(), "driver-1", nil)
	require.NoError(t, err)
	require.Equal(t, recentLimit, gotLimit)
}
