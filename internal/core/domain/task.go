package domain

import "time"

// TaskStatus is the lifecycle state of a task record.
type TaskStatus string

const (
	// StatusPending means the attempt is registered but not yet running.
	StatusPending TaskStatus = "PENDING"

	// StatusInProgress means the attempt holds its function's lock.
	StatusInProgress TaskStatus = "IN_PROGRESS"

	// StatusSuccess means the function returned and its result was stored.
	StatusSuccess TaskStatus = "SUCCESS"

	// StatusFailed means the function returned an error. Terminal.
	StatusFailed TaskStatus = "FAILED"
)

// IsValid returns true if the status is recognised.
func (s TaskStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for SUCCESS and FAILED.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// IsActive returns true for PENDING and IN_PROGRESS.
func (s TaskStatus) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// String returns the string representation.
func (s TaskStatus) String() string {
	return string(s)
}

// TaskRecord is one audited invocation attempt.
// Records are created by the executor and never deleted.
type TaskRecord struct {
	// ID is the store-assigned identifier.
	ID int64

	// Function is the registered function name.
	Function string

	// ArgumentKey is the canonical encoding of the positional arguments.
	ArgumentKey string

	// StartTime is when the attempt acquired its lock.
	StartTime time.Time

	// EndTime is when the attempt finished. Zero while running.
	EndTime time.Time

	// Duration is computed once on completion.
	Duration time.Duration

	// Status is the lifecycle state.
	Status TaskStatus

	// ErrorMessage is set iff Status is FAILED.
	ErrorMessage string

	// Result is the opaque JSON payload. Set iff Status is SUCCESS.
	Result []byte

	// Progress is the latest reported progress value.
	Progress int
}

// Completion carries the terminal state written to a running record.
type Completion struct {
	Status       TaskStatus
	EndTime      time.Time
	Duration     time.Duration
	ErrorMessage string
	Result       []byte
}

// Validate checks that the completion describes a terminal state.
func (c Completion) Validate() error {
	if !c.Status.IsTerminal() {
		return ErrInvalidInput
	}
	return nil
}

// Outcome is what an invocation returns to its caller.
type Outcome struct {
	// RecordID identifies the history record written for this attempt.
	// Zero when the result came from a front-door cache hit.
	RecordID int64

	Function    string
	ArgumentKey string

	// Result is the opaque JSON payload. Decode it with DecodeResult.
	Result []byte

	// Cached is true when the function body was not executed.
	Cached bool

	// Warning is a non-fatal problem, such as a completion record that
	// could not be written after the function succeeded.
	Warning error
}

// PendingTask is a unit queued or running in the execution substrate.
type PendingTask struct {
	ID       string
	Function string
	Running  bool
}
