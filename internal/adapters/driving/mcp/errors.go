// Package mcp provides an MCP (Model Context Protocol) server adapter for taskdash.
// It lets AI assistants run registered functions and inspect their queue and history.
package mcp

import "errors"

// ErrMissingRunner is returned when the task runner is not provided.
var ErrMissingRunner = errors.New("mcp: task runner is required")

// ErrMissingRegistry is returned when the function registry is not provided.
var ErrMissingRegistry = errors.New("mcp: function registry is required")

// errUnavailable is returned by tools whose optional port is not configured.
var errUnavailable = errors.New("mcp: service not available")
