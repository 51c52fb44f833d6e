package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func TestServer_handleRun(t *testing.T) {
	ctx := context.Background()

	t.Run("runs function and decodes result", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, output, err := server.handleRun(ctx, nil, RunInput{Function: "square", Args: []any{float64(4)}})

		require.NoError(t, err)
		assert.Equal(t, "square", output.Function)
		assert.Equal(t, "[4]", output.Args)
		assert.Equal(t, float64(16), output.Result)
		assert.Equal(t, "squared: 16", output.Display)
		assert.Equal(t, int64(1), output.RecordID)
		assert.False(t, output.Cached)
	})

	t.Run("nil args become empty", func(t *testing.T) {
		runner := &mockRunner{}
		ports := testPorts()
		ports.Runner = runner
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleRun(ctx, nil, RunInput{Function: "sleep"})

		require.NoError(t, err)
		assert.NotNil(t, runner.lastArgs)
		assert.Empty(t, runner.lastArgs)
		assert.Equal(t, "[]", output.Args)
	})

	t.Run("reports cache hit and warning", func(t *testing.T) {
		ports := testPorts()
		ports.Runner = &mockRunner{outcome: &domain.Outcome{
			Function: "sleep", ArgumentKey: "[1]", Result: []byte("1"),
			Cached: true, Warning: errors.New("completion not recorded"),
		}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleRun(ctx, nil, RunInput{Function: "sleep", Args: []any{float64(1)}})

		require.NoError(t, err)
		assert.True(t, output.Cached)
		assert.Equal(t, "completion not recorded", output.Warning)
		assert.Equal(t, "1", output.Display)
	})

	t.Run("unknown function", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, _, err = server.handleRun(ctx, nil, RunInput{Function: "cube"})

		assert.ErrorIs(t, err, domain.ErrUnknownFunction)
	})

	t.Run("function failure is returned", func(t *testing.T) {
		ports := testPorts()
		ports.Runner = &mockRunner{err: &domain.ExecutionError{Function: "sleep", Message: "boom"}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleRun(ctx, nil, RunInput{Function: "sleep"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})
}

func TestServer_handleQueueDepth(t *testing.T) {
	ctx := context.Background()

	t.Run("reports every registered function", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, output, err := server.handleQueueDepth(ctx, nil, QueueInput{})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"sleep": 2, "square": 0}, output.Depths)
		assert.Equal(t, 2, output.Total)
	})

	t.Run("single function", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, output, err := server.handleQueueDepth(ctx, nil, QueueInput{Function: "sleep"})

		require.NoError(t, err)
		assert.Equal(t, map[string]int{"sleep": 2}, output.Depths)
		assert.Equal(t, 2, output.Total)
	})

	t.Run("unknown function", func(t *testing.T) {
		server, err := NewServer(testPorts())
		require.NoError(t, err)

		_, _, err = server.handleQueueDepth(ctx, nil, QueueInput{Function: "gone"})

		assert.ErrorIs(t, err, domain.ErrUnknownFunction)
	})

	t.Run("no queue reporter", func(t *testing.T) {
		ports := testPorts()
		ports.Queue = nil
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleQueueDepth(ctx, nil, QueueInput{})

		assert.ErrorIs(t, err, errUnavailable)
	})
}

func TestServer_handleHistory(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	history := &mockHistory{records: []domain.TaskRecord{
		{
			ID: 2, Function: "square", ArgumentKey: "[4]", Status: domain.StatusSuccess,
			StartTime: start, EndTime: start.Add(1500 * time.Millisecond), Duration: 1500 * time.Millisecond,
			Result: []byte("16"),
		},
		{ID: 1, Function: "sleep", ArgumentKey: "[9]", Status: domain.StatusInProgress, StartTime: start, Progress: 30},
	}}

	t.Run("lists records with default limit", func(t *testing.T) {
		ports := testPorts()
		ports.History = history
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{})

		require.NoError(t, err)
		assert.Equal(t, DefaultHistoryLimit, history.lastLimit)
		require.Equal(t, 2, output.Count)

		done := output.Records[0]
		assert.Equal(t, int64(2), done.ID)
		assert.Equal(t, "SUCCESS", done.Status)
		assert.Equal(t, "2026-03-04T05:06:07Z", done.StartTime)
		assert.Equal(t, "2026-03-04T05:06:08.5Z", done.EndTime)
		assert.Equal(t, int64(1500), done.DurationMS)
		assert.Equal(t, float64(16), done.Result)

		running := output.Records[1]
		assert.Equal(t, "IN_PROGRESS", running.Status)
		assert.Equal(t, 30, running.Progress)
		assert.Empty(t, running.EndTime)
		assert.Nil(t, running.Result)
	})

	t.Run("filters by function with limit", func(t *testing.T) {
		ports := testPorts()
		ports.History = history
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleHistory(ctx, nil, HistoryInput{Function: "sleep", Limit: 5})

		require.NoError(t, err)
		assert.Equal(t, 5, history.lastLimit)
		require.Equal(t, 1, output.Count)
		assert.Equal(t, "sleep", output.Records[0].Function)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		ports := testPorts()
		ports.History = &mockHistory{err: errors.New("database error")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleHistory(ctx, nil, HistoryInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database error")
	})

	t.Run("no history service", func(t *testing.T) {
		ports := testPorts()
		ports.History = nil
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleHistory(ctx, nil, HistoryInput{})

		assert.ErrorIs(t, err, errUnavailable)
	})
}

func TestDecodePayload(t *testing.T) {
	assert.Nil(t, decodePayload(nil))
	assert.Equal(t, float64(16), decodePayload([]byte("16")))
	assert.Equal(t, map[string]any{"a": "b"}, decodePayload([]byte(`{"a":"b"}`)))
	assert.Equal(t, "not json", decodePayload([]byte("not json")))
}
