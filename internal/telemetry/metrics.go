// Package telemetry records executor metrics with OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/custodia-labs/taskdash/internal/core/ports/driven"
	"github.com/custodia-labs/taskdash/internal/logger"
)

const instrumentationName = "github.com/custodia-labs/taskdash"

// Metric names.
const (
	InvocationsMetric = "taskdash.invocations"
	CacheHitsMetric   = "taskdash.cache_hits"
	FailuresMetric    = "taskdash.failures"
	DurationMetric    = "taskdash.duration"
)

var functionKey = attribute.Key("function")

var _ driven.Metrics = (*Metrics)(nil)

// Metrics implements driven.Metrics on an OpenTelemetry meter.
type Metrics struct {
	invocations metric.Int64Counter
	cacheHits   metric.Int64Counter
	failures    metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics creates the executor instruments on the given provider.
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	meter := provider.Meter(instrumentationName)

	invocations, err := meter.Int64Counter(InvocationsMetric,
		metric.WithDescription("Executor invocations, including cache hits"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", InvocationsMetric, err)
	}

	cacheHits, err := meter.Int64Counter(CacheHitsMetric,
		metric.WithDescription("Invocations answered from the result cache"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", CacheHitsMetric, err)
	}

	failures, err := meter.Int64Counter(FailuresMetric,
		metric.WithDescription("Executions that ended FAILED"),
		metric.WithUnit("{call}"))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", FailuresMetric, err)
	}

	duration, err := meter.Float64Histogram(DurationMetric,
		metric.WithDescription("Wall-clock duration of executed functions"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", DurationMetric, err)
	}

	return &Metrics{
		invocations: invocations,
		cacheHits:   cacheHits,
		failures:    failures,
		duration:    duration,
	}, nil
}

// CacheHit records an invocation answered from the cache.
func (m *Metrics) CacheHit(ctx context.Context, function string) {
	attrs := metric.WithAttributes(functionKey.String(function))
	m.invocations.Add(ctx, 1, attrs)
	m.cacheHits.Add(ctx, 1, attrs)
}

// Executed records an invocation that ran the user function.
func (m *Metrics) Executed(ctx context.Context, function string, duration time.Duration, failed bool) {
	attrs := metric.WithAttributes(functionKey.String(function))
	m.invocations.Add(ctx, 1, attrs)
	m.duration.Record(ctx, duration.Seconds(), attrs)
	if failed {
		m.failures.Add(ctx, 1, attrs)
	}
	logger.Debug("%s ran in %s (failed=%t)", function, duration, failed)
}
