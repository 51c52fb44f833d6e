package services

import (
	"context"

	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
	"github.com/custodia-labs/taskdash/internal/logger"
)

// Ensure QueueReporter implements the interface.
var _ driving.QueueReporter = (*QueueReporter)(nil)

// QueueReporter counts queued and running units per function.
type QueueReporter struct {
	substrate driven.Substrate
}

// NewQueueReporter creates a reporter over the given substrate.
func NewQueueReporter(substrate driven.Substrate) *QueueReporter {
	return &QueueReporter{substrate: substrate}
}

// Depth returns the count for one function.
func (q *QueueReporter) Depth(ctx context.Context, function string) int {
	return q.Snapshot(ctx)[function]
}

// Snapshot returns counts keyed by function name.
// A substrate failure yields an empty snapshot.
func (q *QueueReporter) Snapshot(ctx context.Context) map[string]int {
	counts := make(map[string]int)

	pending, err := q.substrate.Pending(ctx)
	if err != nil {
		logger.Warn("listing pending tasks failed: %v", err)
		return counts
	}

	for _, p := range pending {
		counts[p.Function]++
	}
	return counts
}
