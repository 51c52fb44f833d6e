package driven

import (
	"context"
	"time"
)

// Metrics records executor activity. Implementations must be safe for
// concurrent use; the executor falls back to a no-op when none is given.
type Metrics interface {
	// CacheHit counts an invocation answered without running the function.
	CacheHit(ctx context.Context, function string)

	// Executed records one run of a function body.
	Executed(ctx context.Context, function string, duration time.Duration, failed bool)
}
