package messages

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewFunctions, "functions"},
		{ViewHistory, "history"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_FunctionsIsZeroValue(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewFunctions, v)
}

func TestTaskFinished(t *testing.T) {
	t.Run("with outcome", func(t *testing.T) {
		outcome := &domain.Outcome{Function: "square", Result: []byte("16"), Cached: true}
		msg := TaskFinished{Function: "square", Outcome: outcome}

		assert.Equal(t, "square", msg.Function)
		assert.True(t, msg.Outcome.Cached)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := TaskFinished{Function: "fail", Err: errors.New("boom")}

		assert.Nil(t, msg.Outcome)
		assert.EqualError(t, msg.Err, "boom")
	})
}

func TestQueueRefreshed(t *testing.T) {
	msg := QueueRefreshed{
		Depths: map[string]int{"sleep": 2},
		Latest: map[string]domain.TaskStatus{"sleep": domain.StatusInProgress},
	}

	assert.Equal(t, 2, msg.Depths["sleep"])
	assert.Equal(t, 0, msg.Depths["square"])
	assert.Equal(t, domain.StatusInProgress, msg.Latest["sleep"])
}

func TestRefreshIntervalChanged(t *testing.T) {
	msg := RefreshIntervalChanged{Interval: 2 * time.Second}
	assert.Equal(t, 2*time.Second, msg.Interval)
}
