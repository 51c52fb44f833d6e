package telemetry

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultExportInterval is how often the stdout exporter writes.
const DefaultExportInterval = 30 * time.Second

// ShutdownFunc flushes and stops a meter provider.
type ShutdownFunc func(ctx context.Context) error

// SetupStdout installs a global meter provider that periodically writes
// metrics as JSON to w.
func SetupStdout(w io.Writer, interval time.Duration) (*sdkmetric.MeterProvider, ShutdownFunc, error) {
	if interval <= 0 {
		interval = DefaultExportInterval
	}

	exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, nil, fmt.Errorf("creating stdout metric exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(provider)

	return provider, provider.Shutdown, nil
}
