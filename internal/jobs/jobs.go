// Package jobs defines the boundary to the persistent job queue. The
// queue and its workers live outside this core; the cache subsystem
// only hands warm requests across this interface.
package jobs

import (
	"context"
	"time"
)

// WarmJob asks the job system to pre-render popular pages after a burst
// of invalidation.
type WarmJob struct {
	// Reasons carries the coalesced trigger reasons, for observability.
	Reasons     []string  `json:"reasons,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// Enqueuer submits jobs to the external job queue.
type Enqueuer interface {
	EnqueueWarm(ctx context.Context, job WarmJob) error
}

// EnqueuerFunc adapts a function to the Enqueuer interface.
type EnqueuerFunc func(ctx context.Context, job WarmJob) error

func (f EnqueuerFunc) EnqueueWarm(ctx context.Context, job WarmJob) error {
	return f(ctx, job)
}
