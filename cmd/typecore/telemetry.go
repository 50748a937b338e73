package main

import (
	"context"
	"fmt"
	"io"

	"github.com/funvibe/typecore/internal/config"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// newMeterProvider creates the provider for the configured exporter. The
// returned shutdown flushes collected counters.
func newMeterProvider(cfg config.MetricsConfig, out io.Writer) (metric.MeterProvider, func(context.Context) error, error) {
	switch cfg.Exporter {
	case config.MetricsStdout:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(out))
		if err != nil {
			return nil, nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)))
		return mp, mp.Shutdown, nil
	default:
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	}
}
