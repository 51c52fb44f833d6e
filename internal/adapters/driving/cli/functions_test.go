package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionsCmd_NotConfigured(t *testing.T) {
	Configure(Services{})

	_, _, err := execute(t, "functions")
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestFunctionsCmd_ListsBuiltins(t *testing.T) {
	defer setupTestServices(t)()

	out, _, err := execute(t, "functions")

	require.NoError(t, err)
	assert.Contains(t, out, "Functions:")
	assert.Contains(t, out, "square")
	assert.Contains(t, out, "Square an integer")
	assert.Contains(t, out, "sleep")
	assert.Contains(t, out, "seconds")
}

func TestFunctionsCmd_RejectsArgs(t *testing.T) {
	defer setupTestServices(t)()

	_, _, err := execute(t, "functions", "extra")
	assert.Error(t, err)
}
