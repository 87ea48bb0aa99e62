package feed

import (
	"context"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
)

// Fetcher produces a fresh Snapshot of the three driver views. Both the
// listener's reconciliation and the fallback poller call it.
type Fetcher interface {
	FetchViews(ctx context.Context, driverID string, dealerIDs []string) (Snapshot, error)
}

// alertSink receives the user-facing alerts a session synthesizes for newly
// relevant deliveries. Best-effort.
type alertSink interface {
	Send(ctx context.Context, e push.Event) error
}

type dealerNames interface {
	Name(ctx context.Context, dealerID string) (string, error)
}

type approvalStore interface {
	ApprovedDealers(ctx context.Context, driverID string) ([]string, error)
}

type counter interface {
	Inc()
}
