package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func setupTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(provider)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sum(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	data, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range data.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMetrics_Recording(t *testing.T) {
	m, reader := setupTestMetrics(t)
	ctx := context.Background()

	m.Executed(ctx, "square", 10*time.Millisecond, false)
	m.Executed(ctx, "fail", time.Millisecond, true)
	m.CacheHit(ctx, "square")

	metrics := collect(t, reader)
	assert.Equal(t, int64(3), sum(t, metrics[InvocationsMetric]))
	assert.Equal(t, int64(1), sum(t, metrics[CacheHitsMetric]))
	assert.Equal(t, int64(1), sum(t, metrics[FailuresMetric]))

	hist, ok := metrics[DurationMetric].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestMetrics_FunctionAttribute(t *testing.T) {
	m, reader := setupTestMetrics(t)
	ctx := context.Background()

	m.CacheHit(ctx, "square")
	m.CacheHit(ctx, "sleep")
	m.CacheHit(ctx, "square")

	data := collect(t, reader)[CacheHitsMetric].Data.(metricdata.Sum[int64])
	byFunction := make(map[string]int64)
	for _, dp := range data.DataPoints {
		fn, ok := dp.Attributes.Value(functionKey)
		require.True(t, ok)
		byFunction[fn.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"square": 2, "sleep": 1}, byFunction)
}

func TestSetupStdout_FlushesMetricsOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	provider, shutdown, err := SetupStdout(&buf, time.Hour)
	require.NoError(t, err)

	m, err := NewMetrics(provider)
	require.NoError(t, err)
	m.Executed(context.Background(), "square", time.Millisecond, false)

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), InvocationsMetric)
}
