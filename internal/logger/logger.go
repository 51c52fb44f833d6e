// Package logger provides leveled logging for taskdash.
// Debug, Info and Section output appears only in verbose mode (--verbose).
// Warnings and errors are always written: they report degraded behaviour
// such as a cache lookup treated as a miss.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the severity of a log line.
type Level int

// Log levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag written before each line.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

var (
	mu      sync.Mutex
	verbose bool
	output  io.Writer = os.Stderr
)

// SetVerbose enables or disables Debug, Info and Section output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetOutput redirects all log output. Defaults to os.Stderr.
// The TUI sets io.Discard while it owns the terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Enabled reports whether a line at level would be written.
func Enabled(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled(level)
}

func enabled(level Level) bool {
	return verbose || level >= LevelWarn
}

func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if !enabled(level) {
		return
	}
	fmt.Fprintf(output, "["+level.String()+"] "+format+"\n", args...)
}

// Debug logs execution detail in verbose mode.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info logs lifecycle events in verbose mode.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn logs degraded behaviour.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error logs a failure.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a header grouping the verbose lines that follow.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
