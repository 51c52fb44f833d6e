package mcp

import (
	"github.com/custodia-labs/taskdash/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Runner runs functions, answering from the cache when possible.
	Runner driving.TaskRunner

	// Registry lists and resolves functions.
	Registry driving.FunctionRegistry

	// Queue reports per-function queue depth. Optional.
	Queue driving.QueueReporter

	// History exposes invocation records. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Runner == nil {
		return ErrMissingRunner
	}
	if p.Registry == nil {
		return ErrMissingRegistry
	}
	return nil
}
