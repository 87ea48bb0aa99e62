package feed

import (
	"context"
	"sync"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// Poller backstops the listener with fixed-interval refreshes while the push
// channel is down. It runs at most one loop; Start while running and Stop
// while stopped are no-ops.
type Poller struct {
	interval time.Duration
	refresh  func(context.Context)
	ticks    counter
	logger   logx.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller creates a stopped Poller. refresh is invoked on every tick.
func NewPoller(interval time.Duration, refresh func(context.Context), ticks counter, logger logx.Logger) *Poller {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Poller{
		interval: interval,
		refresh:  refresh,
		ticks:    ticks,
		logger:   logger,
	}
}

// Start begins ticking until Stop or ctx cancellation.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	p.logger.Info("fallback poller started", logx.Duration("interval", p.interval))
	go p.run(ctx, p.done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if p.ticks != nil {
				p.ticks.Inc()
			}
			p.refresh(ctx)
		}
	}
}

// Stop cancels the tick loop and waits for it to exit, so no refresh can be
// applied after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("fallback poller stopped")
}

// Running reports whether the tick loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
