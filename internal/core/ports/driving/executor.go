package driving

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// TaskExecutor runs a registered function under its single-flight lock,
// reusing a cached result when one exists, and records the attempt.
type TaskExecutor interface {
	// Invoke executes the function or returns its cached result.
	// The user function's error is returned unchanged after being recorded.
	Invoke(ctx context.Context, function string, args []any) (*domain.Outcome, error)
}

// TaskRunner is the dashboard's entry point: it answers from the cache
// when it can, otherwise submits to the substrate and waits.
type TaskRunner interface {
	// Run returns the result of the function for the given arguments.
	Run(ctx context.Context, function string, args []any) (*domain.Outcome, error)
}
