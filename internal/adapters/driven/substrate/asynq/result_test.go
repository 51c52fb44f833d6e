package asynq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/taskdash/internal/core/domain"
)

func TestResult_CarriesWarningAndRecordID(t *testing.T) {
	warning := fmt.Errorf("%w: completing square(4): disk full", domain.ErrStorage)
	payload, err := encodeResult(&domain.Outcome{
		Function: "square",
		Result:   []byte("16"),
		RecordID: 42,
		Cached:   true,
		Warning:  warning,
	})
	require.NoError(t, err)

	outcome, err := decodeResult("square", payload)
	require.NoError(t, err)
	assert.JSONEq(t, "16", string(outcome.Result))
	assert.Equal(t, int64(42), outcome.RecordID)
	assert.True(t, outcome.Cached)
	require.Error(t, outcome.Warning)
	assert.ErrorIs(t, outcome.Warning, domain.ErrStorage)
	assert.Equal(t, warning.Error(), outcome.Warning.Error())
}

func TestResult_EmptyPayloadEncodesNull(t *testing.T) {
	payload, err := encodeResult(&domain.Outcome{Function: "noop", RecordID: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":null,"record_id":1}`, string(payload))

	outcome, err := decodeResult("noop", payload)
	require.NoError(t, err)
	assert.JSONEq(t, "null", string(outcome.Result))
	assert.NoError(t, outcome.Warning)
}

func TestResult_DecodeRejectsGarbage(t *testing.T) {
	_, err := decodeResult("square", []byte("16 apples"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrStorage))
	assert.Contains(t, err.Error(), "square")
}
