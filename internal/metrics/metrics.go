package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewClaimLostRacesTotal returns a Prometheus counter for claim attempts that lost the race
func NewClaimLostRacesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "claim_lost_races_total",
		Help: "Total number of claim attempts that matched zero rows",
	})
}

// NewFeedReconciliationsTotal returns a Prometheus counter for full view reconciliations
func NewFeedReconciliationsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_reconciliations_total",
		Help: "Total number of full view re-fetches triggered by change events",
	})
}

// NewFeedPollTicksTotal returns a Prometheus counter for fallback poller ticks
func NewFeedPollTicksTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_poll_ticks_total",
		Help: "Total number of fallback poller refresh ticks",
	})
}

// NewFanoutFailuresTotal returns a Prometheus counter for best-effort fan-out write failures
func NewFanoutFailuresTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fanout_failures_total",
		Help: "Total number of notification fan-out writes that failed after retries",
	})
}

// NewRetryAttemptsTotal returns a Prometheus counter for backoff retry attempts
func NewRetryAttemptsTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "retry_attempts_total",
		Help: "Total number of retry attempts performed by write paths",
	})
}
