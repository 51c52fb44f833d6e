package tui

import "errors"

// ErrMissingRunner is returned when the task runner is not provided.
var ErrMissingRunner = errors.New("tui: task runner is required")

// ErrMissingRegistry is returned when the function registry is not provided.
var ErrMissingRegistry = errors.New("tui: function registry is required")

// ErrMissingQueueReporter is returned when the queue reporter is not provided.
var ErrMissingQueueReporter = errors.New("tui: queue reporter is required")

// ErrMissingHistoryService is returned when the history service is not provided.
var ErrMissingHistoryService = errors.New("tui: history service is required")
