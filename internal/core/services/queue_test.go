package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func TestQueueReporter_Snapshot(t *testing.T) {
	substrate := &mockSubstrate{pending: []domain.PendingTask{
		{ID: "1", Function: "sleep", Running: true},
		{ID: "2", Function: "sleep"},
		{ID: "3", Function: "square"},
	}}
	reporter := NewQueueReporter(substrate)

	snapshot := reporter.Snapshot(context.Background())
	assert.Equal(t, map[string]int{"sleep": 2, "square": 1}, snapshot)
	assert.Equal(t, 2, reporter.Depth(context.Background(), "sleep"))
	assert.Equal(t, 0, reporter.Depth(context.Background(), "count"))
}

func TestQueueReporter_SubstrateErrorIsZero(t *testing.T) {
	substrate := &mockSubstrate{pendErr: errDiskFull}
	reporter := NewQueueReporter(substrate)

	assert.Empty(t, reporter.Snapshot(context.Background()))
	assert.Equal(t, 0, reporter.Depth(context.Background(), "sleep"))
}
