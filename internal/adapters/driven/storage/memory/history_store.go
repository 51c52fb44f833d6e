package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
)

// Ensure HistoryStore implements the interface.
var _ driven.HistoryStore = (*HistoryStore)(nil)

// HistoryStore is an in-memory implementation of driven.HistoryStore.
// Records are kept in insertion order; IDs start at 1.
type HistoryStore struct {
	mu      sync.RWMutex
	records []domain.TaskRecord
}

// NewHistoryStore creates a new in-memory history store.
func NewHistoryStore() *HistoryStore {
	return &HistoryStore{}
}

// Append creates a new IN_PROGRESS record.
func (s *HistoryStore) Append(_ context.Context, function, argumentKey string, start time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := int64(len(s.records) + 1)
	s.records = append(s.records, domain.TaskRecord{
		ID:          id,
		Function:    function,
		ArgumentKey: argumentKey,
		StartTime:   start,
		Status:      domain.StatusInProgress,
	})
	return id, nil
}

// Complete moves the most recent active record for the pair into a terminal state.
func (s *HistoryStore) Complete(_ context.Context, function, argumentKey string, completion domain.Completion) error {
	if err := completion.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.latestActive(function, argumentKey)
	if i < 0 {
		return nil
	}

	rec := &s.records[i]
	rec.Status = completion.Status
	rec.EndTime = completion.EndTime
	rec.Duration = completion.Duration
	if completion.Status == domain.StatusFailed {
		rec.ErrorMessage = completion.ErrorMessage
	} else {
		rec.Result = append([]byte(nil), completion.Result...)
	}
	return nil
}

// UpdateProgress raises progress on the IN_PROGRESS record for the pair.
func (s *HistoryStore) UpdateProgress(_ context.Context, function, argumentKey string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		rec := &s.records[i]
		if rec.Function == function && rec.ArgumentKey == argumentKey &&
			rec.Status == domain.StatusInProgress && progress >= rec.Progress {
			rec.Progress = progress
			return nil
		}
	}
	return nil
}

// LatestSuccess returns the result of the most recent SUCCESS record.
func (s *HistoryStore) LatestSuccess(_ context.Context, function, argumentKey string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if rec.Function == function && rec.ArgumentKey == argumentKey && rec.Status == domain.StatusSuccess {
			return append([]byte(nil), rec.Result...), true, nil
		}
	}
	return nil, false, nil
}

// Get retrieves a record by ID.
func (s *HistoryStore) Get(_ context.Context, id int64) (*domain.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id < 1 || id > int64(len(s.records)) {
		return nil, domain.ErrNotFound
	}
	rec := s.records[id-1]
	return &rec, nil
}

// List returns recent records, most recent first.
func (s *HistoryStore) List(_ context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TaskRecord //nolint:prealloc // filtered size unknown
	for i := len(s.records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		if function != "" && s.records[i].Function != function {
			continue
		}
		out = append(out, s.records[i])
	}
	return out, nil
}

// latestActive returns the index of the newest PENDING/IN_PROGRESS record
// for the pair, or -1. Caller must hold the lock.
func (s *HistoryStore) latestActive(function, argumentKey string) int {
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if rec.Function == function && rec.ArgumentKey == argumentKey && rec.Status.IsActive() {
			return i
		}
	}
	return -1
}
