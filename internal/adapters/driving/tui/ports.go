// Package tui provides the interactive task dashboard for taskdash.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the dashboard.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Runner runs functions, answering from the cache when possible.
	Runner driving.TaskRunner

	// Registry lists the functions shown as buttons.
	Registry driving.FunctionRegistry

	// Queue reports per-function queue depth.
	Queue driving.QueueReporter

	// History exposes invocation records.
	History driving.HistoryService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	runner driving.TaskRunner,
	registry driving.FunctionRegistry,
	queue driving.QueueReporter,
	history driving.HistoryService,
) *Ports {
	return &Ports{
		Runner:   runner,
		Registry: registry,
		Queue:    queue,
		History:  history,
	}
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Runner == nil {
		return ErrMissingRunner
	}
	if p.Registry == nil {
		return ErrMissingRegistry
	}
	if p.Queue == nil {
		return ErrMissingQueueReporter
	}
	if p.History == nil {
		return ErrMissingHistoryService
	}
	return nil
}
