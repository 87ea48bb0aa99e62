package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// Manager opens listener sessions for connected drivers, resolving each
// driver's approved dealer scope before subscribing.
type Manager struct {
	feed            bus.Feed
	fetcher         Fetcher
	alerts          alertSink
	names           dealerNames
	approvals       approvalStore
	pollInterval    time.Duration
	reconnectDelay  time.Duration
	reconciliations counter
	pollTicks       counter
	logger          logx.Logger
}

// ManagerConfig carries the manager's collaborators and tuning.
type ManagerConfig struct {
	Feed            bus.Feed
	Fetcher         Fetcher
	Alerts          alertSink
	Names           dealerNames
	Approvals       approvalStore
	PollInterval    time.Duration
	ReconnectDelay  time.Duration
	Reconciliations counter
	PollTicks       counter
	Logger          logx.Logger
}

// NewManager creates a session Manager.
func NewManager(cfg ManagerConfig) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	return &Manager{
		feed:            cfg.Feed,
		fetcher:         cfg.Fetcher,
		alerts:          cfg.Alerts,
		names:           cfg.Names,
		approvals:       cfg.Approvals,
		pollInterval:    cfg.PollInterval,
		reconnectDelay:  cfg.ReconnectDelay,
		reconciliations: cfg.Reconciliations,
		pollTicks:       cfg.PollTicks,
		logger:          logger,
	}
}

// Open resolves the driver's approved dealers, builds a session and starts
// it. The caller owns the session and must Close it on teardown.
func (m *Manager) Open(ctx context.Context, driverID string) (*Session, error) {
	dealers, err := m.approvals.ApprovedDealers(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("resolve approved dealers for %q: %w", driverID, err)
	}

	s := NewSession(SessionConfig{
		DriverID:        driverID,
		Dealers:         dealers,
		Feed:            m.feed,
		Fetcher:         m.fetcher,
		Alerts:          m.alerts,
		Names:           m.names,
		PollInterval:    m.pollInterval,
		ReconnectDelay:  m.reconnectDelay,
		Reconciliations: m.reconciliations,
		PollTicks:       m.pollTicks,
		Logger:          m.logger,
	})
	s.Start(ctx)
	return s, nil
}

// Fetch performs a one-shot view read for a driver without opening a
// session, for plain request/response callers.
func (m *Manager) Fetch(ctx context.Context, driverID string) (Snapshot, error) {
	dealers, err := m.approvals.ApprovedDealers(ctx, driverID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolve approved dealers for %q: %w", driverID, err)
	}
	return m.fetcher.FetchViews(ctx, driverID, dealers)
}
