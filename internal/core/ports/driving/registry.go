package driving

import "github.com/custodia-labs/taskdash/internal/core/domain"

// FunctionRegistry maps function names to callables and display metadata.
type FunctionRegistry interface {
	// Register adds a function.
	// Returns domain.ErrAlreadyExists for a duplicate name.
	Register(fn domain.Function) error

	// Get retrieves a function by name.
	// Returns domain.ErrUnknownFunction if it is not registered.
	Get(name string) (domain.Function, error)

	// List returns all functions sorted by name.
	List() []domain.Function
}
