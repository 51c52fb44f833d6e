package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects output to a buffer for the duration of the test.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

func TestEnabled(t *testing.T) {
	capture(t, false)
	assert.False(t, Enabled(LevelDebug))
	assert.False(t, Enabled(LevelInfo))
	assert.True(t, Enabled(LevelWarn))
	assert.True(t, Enabled(LevelError))

	SetVerbose(true)
	assert.True(t, Enabled(LevelDebug))
	assert.True(t, Enabled(LevelInfo))
}

func TestLogLines(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    string
	}{
		{"debug verbose", true, func() { Debug("cache hit for %s", "square[4]") }, "[DEBUG] cache hit for square[4]\n"},
		{"debug quiet", false, func() { Debug("cache hit") }, ""},
		{"info verbose", true, func() { Info("registered %d functions", 5) }, "[INFO] registered 5 functions\n"},
		{"info quiet", false, func() { Info("registered") }, ""},
		{"warn quiet", false, func() { Warn("cache lookup for %s failed", "square") }, "[WARN] cache lookup for square failed\n"},
		{"error quiet", false, func() { Error("worker stopped: %v", "redis unavailable") }, "[ERROR] worker stopped: redis unavailable\n"},
		{"section verbose", true, func() { Section("Worker") }, "\n=== Worker ===\n"},
		{"section quiet", false, func() { Section("Worker") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			Warn("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
