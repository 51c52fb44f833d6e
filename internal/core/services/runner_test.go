package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func newTestRunner(t *testing.T, fns ...domain.Function) (*Runner, *mockSubstrate, *memory.HistoryStore) {
	t.Helper()
	registry, err := NewRegistry(fns...)
	require.NoError(t, err)
	store := memory.NewHistoryStore()
	substrate := &mockSubstrate{executor: NewExecutor(registry, store, nil, ExecutorConfig{})}
	return NewRunner(registry, store, substrate, NewWaiter(time.Millisecond)), substrate, store
}

func TestRunner_Run_SubmitsThenServesFromCache(t *testing.T) {
	var calls atomic.Int32
	runner, substrate, store := newTestRunner(t, squareFunc(&calls))
	ctx := context.Background()

	first, err := runner.Run(ctx, "square", []any{4})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.JSONEq(t, "16", string(first.Result))

	second, err := runner.Run(ctx, "square", []any{4})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.JSONEq(t, "16", string(second.Result))

	// The front-door hit neither submitted nor wrote a record.
	assert.Len(t, substrate.submitted, 1)
	records, err := store.List(ctx, "square", 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunner_Run_PropagatesFunctionError(t *testing.T) {
	errBoom := errors.New("boom")
	fn := domain.Function{
		Name: "fail",
		Func: func(context.Context, []any, domain.ProgressFunc) (any, error) { return nil, errBoom },
	}
	runner, _, _ := newTestRunner(t, fn)

	_, err := runner.Run(context.Background(), "fail", nil)
	assert.ErrorIs(t, err, errBoom)
}

func TestRunner_Run_SubmitError(t *testing.T) {
	var calls atomic.Int32
	runner, substrate, _ := newTestRunner(t, squareFunc(&calls))
	substrate.submitErr = errors.New("queue offline")

	_, err := runner.Run(context.Background(), "square", []any{2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue offline")
}

func TestRunner_Run_UnknownFunction(t *testing.T) {
	runner, substrate, _ := newTestRunner(t)

	_, err := runner.Run(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownFunction)
	assert.Empty(t, substrate.submitted)
}

func TestRunner_Run_UnencodableArgs(t *testing.T) {
	var calls atomic.Int32
	runner, substrate, _ := newTestRunner(t, squareFunc(&calls))

	_, err := runner.Run(context.Background(), "square", []any{func() {}})
	assert.ErrorIs(t, err, domain.ErrArgumentEncoding)
	assert.Empty(t, substrate.submitted)
}

func TestRunner_Run_SurfacesWorkerWarningAndRecordID(t *testing.T) {
	var calls atomic.Int32
	registry, err := NewRegistry(squareFunc(&calls))
	require.NoError(t, err)
	store := newFlakyStore()
	store.completeErr = errDiskFull
	substrate := &mockSubstrate{executor: NewExecutor(registry, store, nil, ExecutorConfig{})}
	runner := NewRunner(registry, store, substrate, NewWaiter(time.Millisecond))

	outcome, err := runner.Run(context.Background(), "square", []any{4})
	require.NoError(t, err)
	assert.JSONEq(t, "16", string(outcome.Result))
	assert.Equal(t, "square", outcome.Function)
	assert.Equal(t, "[4]", outcome.ArgumentKey)
	assert.False(t, outcome.Cached)
	assert.NotZero(t, outcome.RecordID)
	require.Error(t, outcome.Warning)
	assert.ErrorIs(t, outcome.Warning, domain.ErrStorage)
	assert.ErrorIs(t, outcome.Warning, errDiskFull)
}

func TestRunner_Run_ReportsWorkerSideCacheHit(t *testing.T) {
	var calls atomic.Int32
	runner, substrate, _ := newTestRunner(t, squareFunc(&calls))
	handle := &mockHandle{
		id:       "h-9",
		function: "square",
		outcome:  &domain.Outcome{Result: []byte("16"), RecordID: 9, Cached: true},
	}
	substrate.handle = handle

	outcome, err := runner.Run(context.Background(), "square", []any{4})
	require.NoError(t, err)
	assert.True(t, outcome.Cached)
	assert.Equal(t, int64(9), outcome.RecordID)
	assert.Equal(t, "square", outcome.Function)
	assert.Equal(t, int32(0), calls.Load())
}
