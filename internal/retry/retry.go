package retry

import (
	"context"
	"errors"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

type counter interface {
	Inc()
}

// Policy describes the bounded exponential backoff shared by every
// best-effort write path.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Retrier runs operations under a Policy. A zero-value Retrier is not usable;
// construct with New.
type Retrier struct {
	policy   Policy
	logger   logx.Logger
	attempts counter
}

// New returns a Retrier with the given policy. A nil attempts counter is
// allowed.
func New(policy Policy, logger logx.Logger, attempts counter) *Retrier {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Retrier{policy: policy, logger: logger, attempts: attempts}
}

// Do runs fn until it succeeds, returns a permanent error, the context is
// cancelled, or attempts are exhausted. The last error is returned.
func (r *Retrier) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == r.policy.MaxAttempts || IsPermanent(err) {
			break
		}

		delay := backoff(r.policy.BaseDelay, r.policy.MaxDelay, attempt)
		if r.attempts != nil {
			r.attempts.Inc()
		}
		r.logger.Warn("retrying",
			logx.String("op", op),
			logx.Int("attempt", attempt),
			logx.Duration("delay", delay),
			logx.Err(err),
		)
		if !sleepWithContext(ctx, delay) {
			break
		}
	}
	return lastErr
}

// PermanentError marks an error as not worth retrying.
type PermanentError struct {
	Err error
}

func (e PermanentError) Error() string {
	if e.Err == nil {
		return "permanent error"
	}
	return e.Err.Error()
}

func (e PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the Retrier stops immediately.
func Permanent(err error) error {
	return PermanentError{Err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var pe PermanentError
	return errors.As(err, &pe)
}

// backoff computes the retry delay: base doubled per attempt, capped at max.
func backoff(base, max time.Duration, attempt int) time.Duration {
	d := base << (attempt - 1)
	if max > 0 && d > max {
		return max
	}
	return d
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
