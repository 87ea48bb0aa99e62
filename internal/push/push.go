package push

import (
	"context"
	"time"

	"github.com/Ltancreti7/swaprunn-dispatch/internal/domain"
	"github.com/Ltancreti7/swaprunn-dispatch/internal/logx"
)

// Event is one push notification bound for a user's device.
type Event struct {
	UserID     string
	DeliveryID string
	Type       domain.NotificationType
	Title      string
	Body       string
	CreatedAt  time.Time
}

// Sink delivers push events. Implementations are fire-and-forget from the
// caller's point of view.
type Sink interface {
	Send(ctx context.Context, e Event) error
}

// LogSink writes push events to the log. It stands in for the device bridge
// on the worker side.
type LogSink struct {
	logger logx.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(logger logx.Logger) *LogSink {
	if logger == nil {
		logger = logx.Nop()
	}
	return &LogSink{logger: logger}
}

// Send logs the push event.
func (s *LogSink) Send(_ context.Context, e Event) error {
	s.logger.Info("push delivered",
		logx.String("user_id", e.UserID),
		logx.String("delivery_id", e.DeliveryID),
		logx.String("type", string(e.Type)),
		logx.String("title", e.Title),
	)
	return nil
}

var _ Sink = (*LogSink)(nil)
