package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// HistoryStore persists every task attempt.
// It holds no business logic. Every mutation is durable before the call returns.
// Implementations must be safe for concurrent use.
type HistoryStore interface {
	// Append creates a new IN_PROGRESS record and returns its ID.
	// Returns an error wrapping domain.ErrStorage on I/O failure.
	Append(ctx context.Context, function, argumentKey string, start time.Time) (int64, error)

	// Complete moves the most recent PENDING or IN_PROGRESS record for the
	// pair into a terminal state. It is a no-op when no such record exists.
	Complete(ctx context.Context, function, argumentKey string, completion domain.Completion) error

	// UpdateProgress sets progress on the IN_PROGRESS record for the pair.
	// Updates to finished records, or lower than the stored value, are ignored.
	UpdateProgress(ctx context.Context, function, argumentKey string, progress int) error

	// LatestSuccess returns the result of the most recent SUCCESS record.
	LatestSuccess(ctx context.Context, function, argumentKey string) ([]byte, bool, error)

	// Get retrieves a record by ID.
	// Returns domain.ErrNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.TaskRecord, error)

	// List returns recent records, most recent first.
	// An empty function lists records of every function.
	List(ctx context.Context, function string, limit int) ([]domain.TaskRecord, error)
}
