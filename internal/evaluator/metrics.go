package evaluator

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "typecore.evaluator"

const (
	pathNumeric  = "numeric"
	pathConcat   = "concat"
	pathOverload = "overload"
	pathNull     = "null"
)

type metrics struct {
	evaluations metric.Int64Counter
	failures    metric.Int64Counter
}

// newMetrics creates the evaluator instruments from mp, falling back to
// no-op instruments when the provider rejects them.
func newMetrics(mp metric.MeterProvider) *metrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	evaluations, err := meter.Int64Counter(
		"evaluator_operations_total",
		metric.WithDescription("Additive operations evaluated, by path"),
	)
	if err != nil {
		return noopMetrics()
	}
	failures, err := meter.Int64Counter(
		"evaluator_failures_total",
		metric.WithDescription("Additive operations rejected by the evaluator"),
	)
	if err != nil {
		return noopMetrics()
	}
	return &metrics{evaluations: evaluations, failures: failures}
}

func noopMetrics() *metrics {
	meter := noop.NewMeterProvider().Meter(meterName)
	evaluations, _ := meter.Int64Counter("evaluator_operations_total")
	failures, _ := meter.Int64Counter("evaluator_failures_total")
	return &metrics{evaluations: evaluations, failures: failures}
}

func (m *metrics) recordEvaluation(path string) {
	if m == nil {
		return
	}
	m.evaluations.Add(context.Background(), 1, metric.WithAttributes(attribute.String("path", path)))
}

func (m *metrics) recordFailure(err error) {
	if m == nil {
		return
	}
	reason := "other"
	switch {
	case errors.Is(err, ErrInvalidOperand):
		reason = "invalid_operand"
	case errors.Is(err, ErrUnsupportedNumericType):
		reason = "unsupported_numeric_type"
	}
	m.failures.Add(context.Background(), 1, metric.WithAttributes(attribute.String("reason", reason)))
}
