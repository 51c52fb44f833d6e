// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"time"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewFunctions is the function list, the home view.
	ViewFunctions ViewType = iota
	// ViewHistory lists the invocation records of one function.
	ViewHistory
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewFunctions:
		return "functions"
	case ViewHistory:
		return "history"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// RefreshTick fires on the refresh interval to re-query queue depths.
type RefreshTick struct {
	Time time.Time
}

// QueueRefreshed carries a queue depth snapshot and the status of the
// latest record of each function.
type QueueRefreshed struct {
	Depths map[string]int
	Latest map[string]domain.TaskStatus
}

// TaskStarted signals an invocation was submitted from the dashboard.
type TaskStarted struct {
	Function string
	Args     []any
}

// TaskFinished carries the outcome of a dashboard invocation.
type TaskFinished struct {
	Function string
	Outcome  *domain.Outcome
	Err      error
}

// FunctionSelected asks for the history of a function.
type FunctionSelected struct {
	Function domain.Function
}

// HistoryLoaded carries the records of a function.
type HistoryLoaded struct {
	Function string
	Records  []domain.TaskRecord
	Err      error
}

// RefreshIntervalChanged signals a configuration reload changed the
// refresh interval.
type RefreshIntervalChanged struct {
	Interval time.Duration
}
