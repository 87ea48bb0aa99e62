package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
)

func TestViewSet_ApplyDiscardsStale(t *testing.T) {
	t.Parallel()

	v := NewViewSet()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	newer := Snapshot{
		Open:      []domain.Delivery{{ID: "d-1"}},
		Refreshed: base.Add(time.Minute),
	}
	require.True(t, v.Apply(newer))

	stale := Snapshot{
		Open:      []domain.Delivery{{ID: "d-old"}},
		Refreshed: base,
	}
	require.False(t, v.Apply(stale))

	got := v.Snapshot()
	require.Len(t, got.Open, 1)
	assert.Equal(t, "d-1", got.Open[0].ID)
	assert.Equal(t, base.Add(time.Minute), got.Refreshed)
}

func TestViewSet_ApplyEqualTimestampDiscarded(t *testing.T) {
	t.Parallel()

	v := NewViewSet()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, v.Apply(Snapshot{Refreshed: at}))
	require.False(t, v.Apply(Snapshot{Refreshed: at}))
}

func TestViewSet_AppendOpenDeduplicates(t *testing.T) {
	t.Parallel()

	v := NewViewSet()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	d := domain.Delivery{ID: "d-1", UpdatedAt: at}
	require.True(t, v.AppendOpen(d))
	require.False(t, v.AppendOpen(d))

	got := v.Snapshot()
	require.Len(t, got.Open, 1)
}

func TestViewSet_AppendOpenKeepsRefreshed(t *testing.T) {
	t.Parallel()

	v := NewViewSet()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.True(t, v.Apply(Snapshot{Refreshed: at}))
	require.True(t, v.AppendOpen(domain.Delivery{ID: "d-1", UpdatedAt: at.Add(time.Hour)}))

	// The appended row's updated_at comes from the store clock and must not
	// advance the fetch-clock stamp.
	got := v.Snapshot()
	assert.Equal(t, at, got.Refreshed)
	require.True(t, v.Apply(Snapshot{Refreshed: at.Add(time.Second)}))
}

func TestViewSet_RefreshAppliesAfterRowLeavesOpenView(t *testing.T) {
	t.Parallel()

	v := NewViewSet()
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	require.True(t, v.Apply(Snapshot{
		Open: []domain.Delivery{
			{ID: "d-taken", UpdatedAt: t1},
			{ID: "d-still-open", UpdatedAt: t0},
		},
		Refreshed: t1.Add(time.Second),
	}))

	// Another driver claimed d-taken: the next fetch holds only older rows,
	// but its fetch-time stamp is newer, so it must replace the held views.
	after := Snapshot{
		Open:      []domain.Delivery{{ID: "d-still-open", UpdatedAt: t0}},
		Refreshed: t1.Add(31 * time.Second),
	}
	require.True(t, v.Apply(after), "refresh after a claim removed a row must be applied")

	got := v.Snapshot()
	require.Len(t, got.Open, 1)
	assert.Equal(t, "d-still-open", got.Open[0].ID)
}

func TestViewSet_SnapshotIsACopy(t *testing.T) {
	t.Parallel()

	v := NewViewSet()
	require.True(t, v.Apply(Snapshot{
		Open:      []domain.Delivery{{ID: "d-1"}},
		Refreshed: time.Now(),
	}))

	got := v.Snapshot()
	got.Open[0].ID = "mutated"

	again := v.Snapshot()
	require.Equal(t, "d-1", again.Open[0].ID)
}
