package domain

import (
	"context"
	"strings"
)

// ProgressFunc records the latest progress of the running attempt.
// Values lower than the stored progress are ignored.
type ProgressFunc func(ctx context.Context, progress int) error

// TaskFunc is a registered task-producing function.
// The returned value must be JSON-serialisable; it becomes the cached payload.
type TaskFunc func(ctx context.Context, args []any, report ProgressFunc) (any, error)

// Function is a registry entry: the callable plus presentation metadata.
type Function struct {
	// Name is the function identity used for locking, caching and queueing.
	Name string

	// Description is shown next to the function's button.
	Description string

	// Color is a lipgloss colour string for the button ("" means default).
	Color string

	// Params names the positional arguments the dashboard prompts for.
	Params []string

	// Func is the callable.
	Func TaskFunc

	// Format renders a result payload for display. Nil means raw JSON.
	Format func(payload []byte) string
}

// Validate checks the registration is usable.
func (f Function) Validate() error {
	if strings.TrimSpace(f.Name) == "" || f.Func == nil {
		return ErrInvalidInput
	}
	return nil
}

// Render formats a payload with Format, falling back to the raw JSON.
func (f Function) Render(payload []byte) string {
	if f.Format != nil {
		return f.Format(payload)
	}
	return string(payload)
}
