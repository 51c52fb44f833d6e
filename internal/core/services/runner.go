package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// Ensure Runner implements the interface.
var _ driving.TaskRunner = (*Runner)(nil)

// Runner answers dashboard requests: from the cache when possible,
// otherwise by submitting to the substrate and waiting for completion.
type Runner struct {
	registry  driving.FunctionRegistry
	cache     *ResultCache
	substrate driven.Substrate
	waiter    *Waiter
}

// NewRunner creates a runner.
func NewRunner(
	registry driving.FunctionRegistry,
	store driven.HistoryStore,
	substrate driven.Substrate,
	waiter *Waiter,
) *Runner {
	if waiter == nil {
		waiter = NewWaiter(DefaultPollInterval)
	}
	return &Runner{
		registry:  registry,
		cache:     NewResultCache(store),
		substrate: substrate,
		waiter:    waiter,
	}
}

// Run returns the function's result for args.
// A cache hit here writes no record; a submitted call is recorded by the
// executor on the worker side, and its record ID, warning and cache flag
// come back through the handle.
func (r *Runner) Run(ctx context.Context, function string, args []any) (*domain.Outcome, error) {
	if _, err := r.registry.Get(function); err != nil {
		return nil, err
	}

	key, err := domain.ArgumentKey(args)
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", function, err)
	}

	if cached, ok := r.cache.Lookup(ctx, function, key); ok {
		return &domain.Outcome{
			Function:    function,
			ArgumentKey: key,
			Result:      cached,
			Cached:      true,
		}, nil
	}

	handle, err := r.substrate.Submit(ctx, function, args)
	if err != nil {
		return nil, fmt.Errorf("submitting %s: %w", function, err)
	}

	outcome, err := r.waiter.Wait(ctx, handle)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		outcome = &domain.Outcome{}
	}
	outcome.Function = function
	outcome.ArgumentKey = key
	return outcome, nil
}
