package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Ensure Executor implements the interface.
var _ driving.TaskExecutor = (*Executor)(nil)

// ExecutorConfig holds optional bounds on waiting and running.
type ExecutorConfig struct {
	// LockTimeout bounds the wait for a function's lock. Zero waits forever.
	LockTimeout time.Duration

	// ExecTimeout bounds a single execution. Zero means no timeout.
	ExecTimeout time.Duration
}

// Executor runs registered functions with single-flight locking,
// result caching and an audited history of every attempt.
type Executor struct {
	registry driving.FunctionRegistry
	store    driven.HistoryStore
	cache    *ResultCache
	locks    *LockTable
	metrics  driven.Metrics
	config   ExecutorConfig

	now func() time.Time
}

// NewExecutor creates an executor. metrics may be nil.
func NewExecutor(
	registry driving.FunctionRegistry,
	store driven.HistoryStore,
	metrics driven.Metrics,
	config ExecutorConfig,
) *Executor {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Executor{
		registry: registry,
		store:    store,
		cache:    NewResultCache(store),
		locks:    NewLockTable(),
		metrics:  metrics,
		config:   config,
		now:      time.Now,
	}
}

// Invoke executes the function or returns its cached result.
//
// The function's lock is held from the start record to the completion record,
// and the cache is checked again under the lock so a caller that waited behind
// an identical call reuses its result instead of running twice.
func (e *Executor) Invoke(ctx context.Context, function string, args []any) (*domain.Outcome, error) {
	fn, err := e.registry.Get(function)
	if err != nil {
		return nil, err
	}

	key, err := domain.ArgumentKey(args)
	if err != nil {
		return nil, fmt.Errorf("invoking %s: %w", function, err)
	}

	var outcome *domain.Outcome
	err = e.locks.WithLock(ctx, fn.Name, e.config.LockTimeout, func() error {
		var invokeErr error
		outcome, invokeErr = e.invokeLocked(ctx, fn, key, args)
		return invokeErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// invokeLocked runs with the function's lock held.
func (e *Executor) invokeLocked(ctx context.Context, fn domain.Function, key string, args []any) (*domain.Outcome, error) {
	start := e.now()

	id, err := e.store.Append(ctx, fn.Name, key, start)
	if err != nil {
		return nil, storageError(fmt.Sprintf("recording start of %s", fn.Name), err)
	}

	outcome := &domain.Outcome{
		RecordID:    id,
		Function:    fn.Name,
		ArgumentKey: key,
	}

	if cached, ok := e.cache.Lookup(ctx, fn.Name, key); ok {
		end := e.now()
		outcome.Result = cached
		outcome.Cached = true
		outcome.Warning = e.complete(ctx, fn.Name, key, domain.Completion{
			Status:   domain.StatusSuccess,
			EndTime:  end,
			Duration: end.Sub(start),
			Result:   cached,
		})
		e.metrics.CacheHit(ctx, fn.Name)
		return outcome, nil
	}

	logger.Debug("executing %s%s", fn.Name, key)
	guard := &attemptGuard{}
	value, runErr := e.run(ctx, fn, args, e.progressReporter(fn.Name, key, guard))
	guard.finish()

	var payload []byte
	if runErr == nil {
		payload, runErr = domain.EncodeResult(value)
	}

	end := e.now()
	duration := end.Sub(start)
	e.metrics.Executed(ctx, fn.Name, duration, runErr != nil)

	if runErr != nil {
		if warn := e.complete(ctx, fn.Name, key, domain.Completion{
			Status:       domain.StatusFailed,
			EndTime:      end,
			Duration:     duration,
			ErrorMessage: runErr.Error(),
		}); warn != nil {
			logger.Warn("failure of %s%s was not recorded: %v", fn.Name, key, warn)
		}
		return nil, runErr
	}

	outcome.Result = payload
	outcome.Warning = e.complete(ctx, fn.Name, key, domain.Completion{
		Status:   domain.StatusSuccess,
		EndTime:  end,
		Duration: duration,
		Result:   payload,
	})
	return outcome, nil
}

// run calls the user function, converting a panic or an exceeded
// execution timeout into an error.
func (e *Executor) run(ctx context.Context, fn domain.Function, args []any, report domain.ProgressFunc) (any, error) {
	runCtx := ctx
	if e.config.ExecTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.config.ExecTimeout)
		defer cancel()
	}

	type result struct {
		value any
		err   error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("panic in %s: %v", fn.Name, r)}
			}
		}()
		value, err := fn.Func(runCtx, args, report)
		done <- result{value: value, err: err}
	}()

	select {
	case r := <-done:
		return r.value, e.timeoutError(ctx, runCtx, fn.Name, r.err)
	case <-runCtx.Done():
		select {
		case r := <-done:
			return r.value, e.timeoutError(ctx, runCtx, fn.Name, r.err)
		default:
		}
		return nil, e.timeoutError(ctx, runCtx, fn.Name, runCtx.Err())
	}
}

// timeoutError reports ErrTaskTimeout when the execution deadline, not the
// caller, ended the run.
func (e *Executor) timeoutError(ctx, runCtx context.Context, function string, err error) error {
	if err == nil || ctx.Err() != nil || !errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("%w: %s after %s", domain.ErrTaskTimeout, function, e.config.ExecTimeout)
}

// progressReporter binds progress updates to the running record. Once the
// attempt has finished, for example after its execution timeout, reports are
// rejected so an abandoned run cannot touch a later attempt's record.
func (e *Executor) progressReporter(function, key string, guard *attemptGuard) domain.ProgressFunc {
	return func(ctx context.Context, progress int) error {
		guard.mu.RLock()
		defer guard.mu.RUnlock()
		if guard.finished {
			return fmt.Errorf("%w: %s%s", domain.ErrAttemptFinished, function, key)
		}
		if err := e.store.UpdateProgress(ctx, function, key, progress); err != nil {
			return storageError(fmt.Sprintf("recording progress of %s", function), err)
		}
		return nil
	}
}

// attemptGuard closes an attempt to progress reports. finish waits for any
// report already writing, so none can land after the record is completed.
type attemptGuard struct {
	mu       sync.RWMutex
	finished bool
}

func (g *attemptGuard) finish() {
	g.mu.Lock()
	g.finished = true
	g.mu.Unlock()
}

// complete writes the terminal state. It survives caller cancellation so an
// abandoned attempt is never left IN_PROGRESS. The returned error is a warning.
func (e *Executor) complete(ctx context.Context, function, key string, completion domain.Completion) error {
	if err := e.store.Complete(context.WithoutCancel(ctx), function, key, completion); err != nil {
		warn := storageError(fmt.Sprintf("recording completion of %s", function), err)
		logger.Warn("%v", warn)
		return warn
	}
	return nil
}

// storageError guarantees errors.Is(err, domain.ErrStorage).
func storageError(op string, err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

type noopMetrics struct{}

func (noopMetrics) CacheHit(context.Context, string)                      {}
func (noopMetrics) Executed(context.Context, string, time.Duration, bool) {}
