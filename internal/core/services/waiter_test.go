package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func TestNewWaiter_DefaultInterval(t *testing.T) {
	assert.Equal(t, DefaultPollInterval, NewWaiter(0).Interval())
	assert.Equal(t, time.Millisecond, NewWaiter(time.Millisecond).Interval())
}

func TestWaiter_Wait_PollsUntilComplete(t *testing.T) {
	handle := &mockHandle{
		id:        "t1",
		function:  "square",
		pollsLeft: 3,
		outcome:   &domain.Outcome{Result: []byte("16"), RecordID: 5},
	}

	outcome, err := NewWaiter(time.Millisecond).Wait(context.Background(), handle)
	require.NoError(t, err)
	assert.Equal(t, []byte("16"), outcome.Result)
	assert.Equal(t, int64(5), outcome.RecordID)
	assert.Equal(t, 4, handle.polls)
	assert.Equal(t, 1, handle.resultCalls)
}

func TestWaiter_Wait_PropagatesTaskError(t *testing.T) {
	errBoom := errors.New("boom")
	handle := &mockHandle{id: "t1", function: "fail", err: errBoom}

	_, err := NewWaiter(time.Millisecond).Wait(context.Background(), handle)
	assert.ErrorIs(t, err, errBoom)
}

func TestWaiter_Wait_PollError(t *testing.T) {
	errGone := errors.New("connection refused")
	handle := &mockHandle{id: "t1", function: "square", completedErr: errGone}

	_, err := NewWaiter(time.Millisecond).Wait(context.Background(), handle)
	assert.ErrorIs(t, err, errGone)
	assert.Contains(t, err.Error(), "t1")
	assert.Equal(t, 0, handle.resultCalls)
}

func TestWaiter_Wait_ContextCancelled(t *testing.T) {
	handle := &mockHandle{id: "t1", function: "square", pollsLeft: 1 << 30}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := NewWaiter(time.Millisecond).Wait(ctx, handle)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, handle.resultCalls)
}
