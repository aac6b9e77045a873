package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerEnqueuer_PassesThroughSuccess(t *testing.T) {
	var got WarmJob
	inner := EnqueuerFunc(func(ctx context.Context, job WarmJob) error {
		got = job
		return nil
	})
	breaker := NewBreakerEnqueuer(inner, nil)

	err := breaker.EnqueueWarm(context.Background(), WarmJob{Reasons: []string{"manual"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"manual"}, got.Reasons)
}

func TestBreakerEnqueuer_PropagatesFailure(t *testing.T) {
	wantErr := errors.New("queue down")
	breaker := NewBreakerEnqueuer(EnqueuerFunc(func(ctx context.Context, job WarmJob) error {
		return wantErr
	}), nil)

	err := breaker.EnqueueWarm(context.Background(), WarmJob{})

	assert.ErrorIs(t, err, wantErr)
}

func TestBreakerEnqueuer_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	breaker := NewBreakerEnqueuer(EnqueuerFunc(func(ctx context.Context, job WarmJob) error {
		calls++
		return errors.New("queue down")
	}), nil)

	for i := 0; i < 5; i++ {
		_ = breaker.EnqueueWarm(context.Background(), WarmJob{})
	}

	// The sixth attempt fails fast without reaching the queue.
	err := breaker.EnqueueWarm(context.Background(), WarmJob{})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 5, calls)
}
