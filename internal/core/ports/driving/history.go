package driving

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// HistoryService exposes the audit trail to presentation adapters.
type HistoryService interface {
	// Recent returns the most recent records for a function, newest first.
	// An empty function returns records of every function.
	Recent(ctx context.Context, function string, limit int) ([]domain.TaskRecord, error)

	// Get returns a single record.
	Get(ctx context.Context, id int64) (*domain.TaskRecord, error)
}
