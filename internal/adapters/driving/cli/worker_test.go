package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	err error
	ran bool
}

func (w *fakeWorker) Run(_ context.Context) error {
	w.ran = true
	return w.err
}

func TestWorkerCmd_NoWorker(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "worker")
	assert.ErrorIs(t, err, errNoWorker)
}

func TestWorkerCmd_RunsWorker(t *testing.T) {
	defer setupTestServices(t)()
	w := &fakeWorker{}
	worker = w

	out, _, err := execute(t, "worker")

	require.NoError(t, err)
	assert.True(t, w.ran)
	assert.Contains(t, out, "Worker started.")
}

func TestWorkerCmd_PropagatesError(t *testing.T) {
	defer setupTestServices(t)()
	worker = &fakeWorker{err: errors.New("redis down")}

	_, _, err := execute(t, "worker")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
}

func TestWorkerCmd_Flags(t *testing.T) {
	assert.NotNil(t, workerCmd.Flags().Lookup("metrics"))
	assert.NotNil(t, workerCmd.Flags().Lookup("metrics-interval"))
}
