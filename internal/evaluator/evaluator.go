// Package evaluator evaluates additive binary expressions: numeric promotion
// across the numeric lattice, unit-carrying operands, runtime operator
// overloads, the null-operand policy and string concatenation.
package evaluator

import (
	"log/slog"

	"github.com/funvibe/typecore/internal/coercion"
	"github.com/funvibe/typecore/internal/typesystem"
	"go.opentelemetry.io/otel/metric"
)

// TypeSystem is the part of the type system the evaluator consults.
type TypeSystem interface {
	// TypeOf reports the runtime type of a value (nil reports typesystem.Nil).
	TypeOf(v any) typesystem.Type
	// IsNumeric reports whether t is computed numerically.
	IsNumeric(t typesystem.Type) bool
	// ResolveOperator returns the result type of lhs op rhs and, if one
	// exists for exactly these operand types, the user-defined overload.
	ResolveOperator(lhs typesystem.Type, op rune, rhs typesystem.Type) (typesystem.Type, *typesystem.Method, error)
	// CoerceArgs converts args to the parameter types of m.
	CoerceArgs(m *typesystem.Method, args []any) ([]any, error)
}

// Evaluator evaluates additive operations. It holds no mutable state and is
// safe for concurrent use.
type Evaluator struct {
	// Types resolves runtime types and operator overloads.
	Types TypeSystem
	// Coercion converts operands to the representation of the result kind.
	Coercion coercion.Manager
	// Logger receives debug output about overload dispatch.
	Logger *slog.Logger

	meterProvider metric.MeterProvider
	metrics       *metrics
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the evaluator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.Logger = logger
	}
}

// WithMeterProvider sets the provider for the evaluation counters. The
// global provider is used by default.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Evaluator) {
		e.meterProvider = mp
	}
}

func New(types TypeSystem, cm coercion.Manager, opts ...Option) *Evaluator {
	e := &Evaluator{
		Types:    types,
		Coercion: cm,
		Logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.metrics = newMetrics(e.meterProvider)
	return e
}

// Operation is a single additive expression ready for evaluation.
type Operation struct {
	// ResultType is the statically known result type, or a placeholder.
	ResultType typesystem.Type

	Lhs     any
	Rhs     any
	LhsType typesystem.Type
	RhsType typesystem.Type

	// Additive selects + over -.
	Additive bool
	// NullSafe makes an absent numeric operand produce an absent result
	// instead of an InvalidOperandError.
	NullSafe bool
	// Numeric is set when ResultType is computed numerically; otherwise the
	// operands are concatenated as strings.
	Numeric bool
}
