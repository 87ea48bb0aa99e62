package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/bus"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/push"
)

// State is the listener session lifecycle state.
type State int32

// Session states
const (
	StateConnecting State = iota
	StateConnected
	StateDegraded
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateDegraded:
		return "degraded"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session maintains one driver's working set of deliveries in near-real-time.
// It owns its subscription handle, its fallback poll timer and any attached
// presence timers; Close tears all of them down. Nothing here relies on
// garbage collection to release a subscription.
type Session struct {
	driverID string
	dealers  []string

	feed    bus.Feed
	fetcher Fetcher
	alerts  alertSink
	names   dealerNames
	logger  logx.Logger

	views           *ViewSet
	poller          *Poller
	reconciliations counter
	reconnectDelay  time.Duration

	state   atomic.Int32
	updates chan Snapshot

	mu       sync.Mutex
	cleanups []func()
	cancel   context.CancelFunc
	done     chan struct{}
}

// SessionConfig carries the session's collaborators and tuning.
type SessionConfig struct {
	DriverID        string
	Dealers         []string
	Feed            bus.Feed
	Fetcher         Fetcher
	Alerts          alertSink
	Names           dealerNames
	PollInterval    time.Duration
	ReconnectDelay  time.Duration
	Reconciliations counter
	PollTicks       counter
	Logger          logx.Logger
}

// NewSession creates a stopped session. Call Start to begin listening.
func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logx.Nop()
	}
	logger = logger.With(logx.String("driver_id", cfg.DriverID))

	s := &Session{
		driverID:        cfg.DriverID,
		dealers:         cfg.Dealers,
		feed:            cfg.Feed,
		fetcher:         cfg.Fetcher,
		alerts:          cfg.Alerts,
		names:           cfg.Names,
		logger:          logger,
		views:           NewViewSet(),
		reconciliations: cfg.Reconciliations,
		reconnectDelay:  cfg.ReconnectDelay,
		updates:         make(chan Snapshot, 1),
	}
	s.poller = NewPoller(cfg.PollInterval, s.refresh, cfg.PollTicks, logger)
	s.state.Store(int32(StateConnecting))
	return s
}

// Start launches the listen loop. It returns immediately.
func (s *Session) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	go func() {
		defer close(done)
		s.run(ctx)
	}()
}

// Close tears the session down: subscription, poll timer and any registered
// cleanups are all cancelled by this one call.
func (s *Session) Close() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	cleanups := s.cleanups
	s.cancel, s.done, s.cleanups = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	s.poller.Stop()
	for _, fn := range cleanups {
		fn()
	}
	s.setState(StateClosed)
}

// RegisterCleanup attaches a teardown hook (e.g. a typing timer's Stop) to
// the session's Close.
func (s *Session) RegisterCleanup(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanups = append(s.cleanups, fn)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Views returns a copy of the current working set.
func (s *Session) Views() Snapshot {
	return s.views.Snapshot()
}

// Updates returns a coalescing channel that yields the latest snapshot after
// each applied refresh.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

func (s *Session) run(ctx context.Context) {
	for {
		s.setState(StateConnecting)
		sub, err := s.feed.SubscribeDeliveries(ctx, s.driverID, s.dealers)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("feed subscribe failed, degrading to polling", logx.Err(err))
			s.degrade(ctx)
			if !sleepWithContext(ctx, s.reconnectDelay) {
				return
			}
			continue
		}

		s.setState(StateConnected)
		s.poller.Stop()
		s.logger.Info("feed connected")
		s.refresh(ctx)

		err = s.consume(ctx, sub)
		_ = sub.Close()
		if ctx.Err() != nil {
			return
		}

		s.logger.Warn("feed channel lost, degrading to polling", logx.Err(err))
		s.degrade(ctx)
		if !sleepWithContext(ctx, s.reconnectDelay) {
			return
		}
	}
}

func (s *Session) consume(ctx context.Context, sub bus.Subscription) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.Events():
			if !ok {
				return errors.New("event stream closed")
			}
			s.handleEvent(ctx, ev)
		case err := <-sub.Errs():
			if err == nil {
				err = errors.New("event stream closed")
			}
			return err
		}
	}
}

func (s *Session) degrade(ctx context.Context) {
	s.setState(StateDegraded)
	s.poller.Start(ctx)
}

// handleEvent classifies one change event. Inserts newly relevant to this
// driver are appended and alerted; anything else that touches the working
// set triggers full reconciliation, because mutations can move a row between
// views and incremental patching risks divergence.
func (s *Session) handleEvent(ctx context.Context, ev bus.ChangeEvent) {
	d := ev.Delivery
	if !s.authorized(&d) {
		s.logger.Error("authorization violation: event outside approved dealer set",
			logx.String("delivery_id", d.ID),
			logx.String("dealer_id", d.DealerID),
		)
		return
	}

	switch ev.Op {
	case bus.OpInsert:
		switch {
		case d.Open():
			if s.views.AppendOpen(d) {
				s.alert(ctx, &d, false)
				s.notifyUpdated()
			}
		case d.DirectRequestFor(s.driverID):
			if s.views.AppendOpen(d) {
				s.alert(ctx, &d, true)
				s.notifyUpdated()
			}
		}
	case bus.OpUpdate, bus.OpDelete:
		s.refresh(ctx)
	}
}

// authorized accepts events from approved dealers or rows assigned to this
// driver. The subscription is already server-side scoped; this narrows event
// types only and double-checks the boundary.
func (s *Session) authorized(d *domain.Delivery) bool {
	return slices.Contains(s.dealers, d.DealerID) || d.AssignedTo(s.driverID)
}

// refresh re-fetches the three views and applies them under the monotonic
// guard. Used by event reconciliation and the fallback poller alike, so the
// two can never apply stale results out of order.
func (s *Session) refresh(ctx context.Context) {
	snap, err := s.fetcher.FetchViews(ctx, s.driverID, s.dealers)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("view refresh failed", logx.Err(err))
		}
		return
	}
	if s.reconciliations != nil {
		s.reconciliations.Inc()
	}
	if s.views.Apply(snap) {
		s.notifyUpdated()
	} else {
		s.logger.Debug("stale refresh discarded",
			logx.Time("refreshed", snap.Refreshed),
		)
	}
}

// alert synthesizes the user-facing notification for a newly relevant row.
func (s *Session) alert(ctx context.Context, d *domain.Delivery, direct bool) {
	if s.alerts == nil {
		return
	}

	dealer := d.DealerID
	if s.names != nil {
		if name, err := s.names.Name(ctx, d.DealerID); err != nil {
			s.logger.Warn("dealer name lookup failed", logx.Err(err))
		} else if name != "" {
			dealer = name
		}
	}

	title := "New delivery available"
	alertType := domain.TypeNewDeliveryAvailable
	if direct {
		title = "New delivery request for you"
		alertType = domain.TypeDeliveryAssigned
	}
	body := fmt.Sprintf("%s: %s → %s", dealer, d.PickupAddress, d.DropoffAddress)
	if d.ScheduledDate != nil && d.ScheduledTime != nil {
		body = fmt.Sprintf("%s: %s at %s", dealer, *d.ScheduledDate, *d.ScheduledTime)
	}

	if err := s.alerts.Send(ctx, push.Event{
		UserID:     s.driverID,
		DeliveryID: d.ID,
		Type:       alertType,
		Title:      title,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}); err != nil {
		s.logger.Warn("alert send failed",
			logx.String("delivery_id", d.ID),
			logx.Err(err),
		)
	}
}

// notifyUpdated publishes the latest snapshot, dropping the previous pending
// one so slow consumers only ever see the newest state.
func (s *Session) notifyUpdated() {
	snap := s.views.Snapshot()
	for {
		select {
		case s.updates <- snap:
			return
		default:
		}
		select {
		case <-s.updates:
		default:
		}
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
