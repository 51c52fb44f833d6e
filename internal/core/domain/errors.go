package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownFunction indicates no function is registered under the given name.
	ErrUnknownFunction = errors.New("unknown function")

	// Engine Errors.

	// ErrArgumentEncoding indicates the arguments cannot be canonicalised.
	// The invocation is aborted before any state change.
	ErrArgumentEncoding = errors.New("argument encoding failed")

	// ErrStorage indicates a history store operation failed.
	ErrStorage = errors.New("storage failure")

	// ErrLockTimeout indicates the caller gave up waiting for the function's lock.
	// No record is created.
	ErrLockTimeout = errors.New("timed out waiting for function lock")

	// ErrTaskTimeout indicates the user function exceeded its execution timeout.
	ErrTaskTimeout = errors.New("task execution timed out")

	// ErrAttemptFinished is returned to a progress report made after its
	// attempt was completed, typically by a run that outlived its timeout.
	ErrAttemptFinished = errors.New("attempt already finished")

	// Substrate Errors.

	// ErrSubstrateClosed indicates a submission after the substrate was closed.
	ErrSubstrateClosed = errors.New("substrate closed")

	// ErrResultExpired indicates a submitted unit's result is no longer retained.
	ErrResultExpired = errors.New("task result no longer available")
)

// ExecutionError is a user function failure observed across a process
// boundary, where only the function name and message survive.
type ExecutionError struct {
	Function string
	Message  string
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Function == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Function, e.Message)
}
