package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
)

// DefaultPollInterval is the waiter's poll delay when none is configured.
const DefaultPollInterval = time.Second

// Waiter suspends until a submitted unit completes, polling on a fixed interval.
type Waiter struct {
	interval time.Duration
}

// NewWaiter creates a waiter. A non-positive interval uses DefaultPollInterval.
func NewWaiter(interval time.Duration) *Waiter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Waiter{interval: interval}
}

// Interval returns the poll delay.
func (w *Waiter) Interval() time.Duration {
	return w.interval
}

// Wait polls the handle until it reports completion, then fetches the result
// exactly once. Cancelling ctx detaches the waiter; the unit keeps running.
func (w *Waiter) Wait(ctx context.Context, handle driven.TaskHandle) (*domain.Outcome, error) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		done, err := handle.Completed(ctx)
		if err != nil {
			return nil, fmt.Errorf("polling %s task %s: %w", handle.Function(), handle.ID(), err)
		}
		if done {
			return handle.Result(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
