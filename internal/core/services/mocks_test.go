package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/taskdash/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
)

// --- Mock implementations for engine testing ---

var errDiskFull = errors.New("disk full")

// flakyStore wraps the memory store and injects failures per operation.
type flakyStore struct {
	*memory.HistoryStore

	mu          sync.Mutex
	appendErr   error
	completeErr error
	progressErr error
	latestErr   error
}

var _ driven.HistoryStore = (*flakyStore)(nil)

func newFlakyStore() *flakyStore {
	return &flakyStore{HistoryStore: memory.NewHistoryStore()}
}

func (s *flakyStore) Append(ctx context.Context, function, key string, start time.Time) (int64, error) {
	s.mu.Lock()
	err := s.appendErr
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}
	return s.HistoryStore.Append(ctx, function, key, start)
}

func (s *flakyStore) Complete(ctx context.Context, function, key string, c domain.Completion) error {
	s.mu.Lock()
	err := s.completeErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.HistoryStore.Complete(ctx, function, key, c)
}

func (s *flakyStore) UpdateProgress(ctx context.Context, function, key string, progress int) error {
	s.mu.Lock()
	err := s.progressErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.HistoryStore.UpdateProgress(ctx, function, key, progress)
}

func (s *flakyStore) LatestSuccess(ctx context.Context, function, key string) ([]byte, bool, error) {
	s.mu.Lock()
	err := s.latestErr
	s.mu.Unlock()
	if err != nil {
		return nil, false, err
	}
	return s.HistoryStore.LatestSuccess(ctx, function, key)
}

// mockHandle is a TaskHandle that completes after a number of polls.
type mockHandle struct {
	mu           sync.Mutex
	id           string
	function     string
	pollsLeft    int
	polls        int
	resultCalls  int
	outcome      *domain.Outcome
	err          error
	completedErr error
}

func (h *mockHandle) ID() string       { return h.id }
func (h *mockHandle) Function() string { return h.function }

func (h *mockHandle) Completed(_ context.Context) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	if h.completedErr != nil {
		return false, h.completedErr
	}
	if h.pollsLeft > 0 {
		h.pollsLeft--
		return false, nil
	}
	return true, nil
}

func (h *mockHandle) Result(_ context.Context) (*domain.Outcome, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.resultCalls++
	if h.err != nil {
		return nil, h.err
	}
	return h.outcome, nil
}

// mockSubstrate runs submissions synchronously through an executor.
type mockSubstrate struct {
	mu        sync.Mutex
	executor  *Executor
	submitted []string
	pending   []domain.PendingTask
	pendErr   error
	submitErr error
	handle    *mockHandle // returned as-is when set, skipping the executor
}

var _ driven.Substrate = (*mockSubstrate)(nil)

func (m *mockSubstrate) Submit(ctx context.Context, function string, args []any) (driven.TaskHandle, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, function)
	m.mu.Unlock()
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.handle != nil {
		return m.handle, nil
	}

	h := &mockHandle{id: "h-1", function: function}
	outcome, err := m.executor.Invoke(ctx, function, args)
	if err != nil {
		h.err = err
		return h, nil
	}
	h.outcome = outcome
	return h, nil
}

func (m *mockSubstrate) Pending(_ context.Context) ([]domain.PendingTask, error) {
	if m.pendErr != nil {
		return nil, m.pendErr
	}
	return m.pending, nil
}

func (m *mockSubstrate) Close() error { return nil }

// recordingMetrics counts executor metric calls.
type recordingMetrics struct {
	mu        sync.Mutex
	cacheHits int
	executed  int
	failed    int
}

func (m *recordingMetrics) CacheHit(_ context.Context, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *recordingMetrics) Executed(_ context.Context, _ string, _ time.Duration, failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executed++
	if failed {
		m.failed++
	}
}
