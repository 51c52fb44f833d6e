package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// LockTable holds one exclusive lock per function name.
// Locks are created lazily and never removed; the table is bounded by the
// number of registered functions. Two calls for the same function serialise
// regardless of their arguments.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewLockTable creates an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{
		locks: make(map[string]chan struct{}),
	}
}

func (t *LockTable) lockFor(function string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[function]
	if !ok {
		lock = make(chan struct{}, 1)
		t.locks[function] = lock
	}
	return lock
}

// Acquire blocks until the function's lock is held.
// A positive timeout bounds the wait and fails with domain.ErrLockTimeout.
// The returned release func is safe to call more than once.
func (t *LockTable) Acquire(ctx context.Context, function string, timeout time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lock := t.lockFor(function)

	var expired <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expired = timer.C
	}

	select {
	case lock <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() { <-lock })
		}, nil
	case <-expired:
		return nil, fmt.Errorf("%w: %s after %s", domain.ErrLockTimeout, function, timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WithLock runs body while holding the function's lock.
// The lock is released on every exit path, including a panic in body.
func (t *LockTable) WithLock(ctx context.Context, function string, timeout time.Duration, body func() error) error {
	release, err := t.Acquire(ctx, function, timeout)
	if err != nil {
		return err
	}
	defer release()

	return body()
}
