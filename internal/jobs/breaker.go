package jobs

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerEnqueuer wraps an Enqueuer in a circuit breaker. The job queue
// is an external system; when it misbehaves, warm submissions fail fast
// instead of piling up behind the debounce timer. A skipped warm pass
// only costs cold-cache latency, never correctness.
type BreakerEnqueuer struct {
	inner   Enqueuer
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerEnqueuer creates the circuit-breaking decorator.
func NewBreakerEnqueuer(inner Enqueuer, logger *zap.Logger) *BreakerEnqueuer {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings := gobreaker.Settings{
		Name:     "warm-job-enqueue",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &BreakerEnqueuer{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
	}
}

// EnqueueWarm submits the warm job through the breaker.
func (e *BreakerEnqueuer) EnqueueWarm(ctx context.Context, job WarmJob) error {
	_, err := e.breaker.Execute(func() (interface{}, error) {
		return nil, e.inner.EnqueueWarm(ctx, job)
	})
	return err
}
