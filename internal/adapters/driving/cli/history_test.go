package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func TestHistoryCmd_NotConfigured(t *testing.T) {
	Configure(Services{})

	_, _, err := execute(t, "history")
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestHistoryCmd_Empty(t *testing.T) {
	defer setupTestServices(t)()

	out, _, err := execute(t, "history")

	require.NoError(t, err)
	assert.Equal(t, "No invocations recorded.\n", out)
}

func TestHistoryCmd_ListsRecords(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "run", "square", "3")
	require.NoError(t, err)
	_, _, err = execute(t, "run", "fail", "oops")
	require.Error(t, err)

	out, _, err := execute(t, "history")

	require.NoError(t, err)
	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, out, "square[3]")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, `fail["oops"]`)
}

func TestHistoryCmd_FiltersByFunction(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "run", "square", "3")
	require.NoError(t, err)
	_, _, err = execute(t, "run", "echo", "x")
	require.NoError(t, err)

	out, _, err := execute(t, "history", "echo")

	require.NoError(t, err)
	assert.Contains(t, out, "echo")
	assert.NotContains(t, out, "square")
}

func TestHistoryCmd_JSON(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "run", "square", "7")
	require.NoError(t, err)

	out, _, err := execute(t, "history", "--json")
	require.NoError(t, err)

	var records []recordOutput
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "square", records[0].Function)
	assert.Equal(t, "[7]", records[0].Args)
	assert.Equal(t, "SUCCESS", records[0].Status)
	assert.JSONEq(t, "49", string(records[0].Result))
	assert.NotNil(t, records[0].EndTime)
}

func TestHistoryShowCmd_PrintsRecord(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "run", "square", "2")
	require.NoError(t, err)

	out, _, err := execute(t, "history", "show", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "Record:    #1")
	assert.Contains(t, out, "Function:  square")
	assert.Contains(t, out, "Arguments: [2]")
	assert.Contains(t, out, "Status:    SUCCESS")
	assert.Contains(t, out, "Result:    4")
}

func TestHistoryShowCmd_InvalidID(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "history", "show", "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHistoryShowCmd_NotFound(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "history", "show", "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordDetail(t *testing.T) {
	tests := []struct {
		name   string
		record domain.TaskRecord
		want   string
	}{
		{"success", domain.TaskRecord{Status: domain.StatusSuccess, Duration: 1500 * time.Microsecond}, "2ms"},
		{"failed", domain.TaskRecord{Status: domain.StatusFailed, ErrorMessage: "boom"}, "boom"},
		{"running", domain.TaskRecord{Status: domain.StatusInProgress, Progress: 40}, "40%"},
		{"pending", domain.TaskRecord{Status: domain.StatusPending}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordDetail(&tt.record))
		})
	}
}
