// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The task engine lives here: the function Registry, the per-function
// LockTable, the ResultCache view over history, the Executor that ties them
// together, and the Runner, Waiter and QueueReporter the dashboard drives.
//
// Services are pure Go with no CGO or external dependencies.
package services
