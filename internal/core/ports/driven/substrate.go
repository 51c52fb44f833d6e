package driven

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// Substrate runs submitted functions asynchronously.
// Implementations decide whether that is a goroutine pool or a remote queue.
type Substrate interface {
	// Submit queues a function call and returns a handle to observe it.
	Submit(ctx context.Context, function string, args []any) (TaskHandle, error)

	// Pending lists the units currently queued or running.
	Pending(ctx context.Context) ([]domain.PendingTask, error)

	// Close releases substrate resources.
	Close() error
}

// TaskHandle observes one submitted unit.
type TaskHandle interface {
	// ID is the substrate's identifier for the unit.
	ID() string

	// Function is the function name the unit was submitted for.
	Function() string

	// Completed reports whether the unit has finished. It never blocks.
	Completed(ctx context.Context) (bool, error)

	// Result returns the outcome or the error the unit finished with.
	// The outcome keeps the executor's record ID and any warning.
	// Only meaningful once Completed reports true.
	Result(ctx context.Context) (*domain.Outcome, error)
}
