package services

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// DefaultHistoryLimit is used when a caller asks for a non-positive limit.
const DefaultHistoryLimit = 20

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService exposes the audit trail.
type HistoryService struct {
	store driven.HistoryStore
}

// NewHistoryService creates a history service.
func NewHistoryService(store driven.HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Recent returns the most recent records, newest first.
func (h *HistoryService) Recent(ctx context.Context, function string, limit int) ([]domain.TaskRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return h.store.List(ctx, function, limit)
}

// Get returns a single record.
func (h *HistoryService) Get(ctx context.Context, id int64) (*domain.TaskRecord, error) {
	return h.store.Get(ctx, id)
}
