package services

import (
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/taskdash/internal/core/domain"
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// Ensure Registry implements the interface.
var _ driving.FunctionRegistry = (*Registry)(nil)

// Registry holds the registered functions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]domain.Function
}

// NewRegistry creates a registry with the given functions.
func NewRegistry(fns ...domain.Function) (*Registry, error) {
	r := &Registry{
		functions: make(map[string]domain.Function),
	}
	for _, fn := range fns {
		if err := r.Register(fn); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a function.
func (r *Registry) Register(fn domain.Function) error {
	if err := fn.Validate(); err != nil {
		return fmt.Errorf("registering %q: %w", fn.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.functions[fn.Name]; exists {
		return fmt.Errorf("registering %q: %w", fn.Name, domain.ErrAlreadyExists)
	}
	r.functions[fn.Name] = fn
	return nil
}

// Get retrieves a function by name.
func (r *Registry) Get(name string) (domain.Function, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.functions[name]
	if !ok {
		return domain.Function{}, fmt.Errorf("%w: %s", domain.ErrUnknownFunction, name)
	}
	return fn, nil
}

// List returns all functions sorted by name.
func (r *Registry) List() []domain.Function {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fns := make([]domain.Function, 0, len(r.functions))
	for _, fn := range r.functions {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool {
		return fns[i].Name < fns[j].Name
	})
	return fns
}
