// Package domain defines the core business entities for taskdash.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - TaskRecord: One audited invocation attempt of a registered function
//   - Function: A registered task-producing function and its presentation metadata
//   - Completion: The terminal state written when an attempt finishes
//   - Outcome: What an invocation hands back to its caller
//   - Settings: Runtime configuration for storage, substrate and dashboard
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
