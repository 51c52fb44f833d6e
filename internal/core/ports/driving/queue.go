package driving

import "context"

// QueueReporter reports how many invocations are queued or running.
// Values are advisory snapshots for display.
type QueueReporter interface {
	// Depth returns the count for one function.
	Depth(ctx context.Context, function string) int

	// Snapshot returns the count for every function with pending work.
	Snapshot(ctx context.Context) map[string]int
}
