package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"inkpress-backend/internal/jobs"
	"inkpress-backend/internal/observability"
)

// WarmTrigger coalesces bursts of invalidation into a single delayed
// "warm the cache" job. Fire may be called many times in quick
// succession (a bulk edit produces dozens of events); each call resets
// the debounce timer, and when the window elapses without further calls
// exactly one warm request is handed to the job queue.
type WarmTrigger struct {
	mu      sync.Mutex
	timer   *time.Timer
	reasons []string
	closed  bool

	window   time.Duration
	enqueuer jobs.Enqueuer
	metrics  *observability.Collector
	logger   *zap.Logger
}

// NewWarmTrigger creates the debounced trigger. A window of zero or
// less falls back to one second.
func NewWarmTrigger(window time.Duration, enqueuer jobs.Enqueuer, metrics *observability.Collector, logger *zap.Logger) *WarmTrigger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Second
	}
	return &WarmTrigger{
		window:   window,
		enqueuer: enqueuer,
		metrics:  metrics,
		logger:   logger,
	}
}

// Fire requests a warm pass. The reason is coalesced with any reasons
// already pending in the current debounce window; an empty reason is
// allowed.
func (t *WarmTrigger) Fire(reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if reason != "" {
		t.reasons = append(t.reasons, reason)
	}
	if t.metrics != nil {
		t.metrics.WarmTriggers.Inc()
	}

	if t.timer != nil {
		t.timer.Reset(t.window)
		return
	}
	t.timer = time.AfterFunc(t.window, t.dispatch)
}

// dispatch runs once per elapsed debounce window.
func (t *WarmTrigger) dispatch() {
	t.mu.Lock()
	reasons := t.reasons
	t.reasons = nil
	t.timer = nil
	closed := t.closed
	t.mu.Unlock()

	if closed || t.enqueuer == nil {
		return
	}

	start := time.Now()
	job := jobs.WarmJob{Reasons: reasons, RequestedAt: start}
	err := t.enqueuer.EnqueueWarm(context.Background(), job)
	elapsed := time.Since(start)

	if t.metrics != nil {
		t.metrics.WarmDispatchTime.Observe(elapsed.Seconds())
	}
	if err != nil {
		// A missed warm pass only costs cold-cache latency.
		t.logger.Warn("Failed to enqueue cache warm job",
			zap.Strings("reasons", reasons),
			zap.Error(err))
		return
	}
	if t.metrics != nil {
		t.metrics.WarmDispatches.Inc()
	}
	t.logger.Debug("Cache warm job enqueued",
		zap.Strings("reasons", reasons),
		zap.Duration("duration", elapsed))
}

// Close stops the trigger; a pending timer is cancelled and later Fire
// calls are ignored.
func (t *WarmTrigger) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.reasons = nil
}
