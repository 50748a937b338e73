// Package coercion converts arbitrary runtime values into the canonical
// representation of each numeric kind, and into strings.
//
// Canonical representations:
//
//	Int        int32
//	Long       int64
//	Float      float32
//	Double     float64
//	BigInteger *big.Int
//	BigDecimal *apd.Decimal
//	Rational   *big.Rat
//
// Narrowing follows the usual two's complement rules: integers keep their low
// bits, floating point values are truncated toward zero and saturate at the
// target range (NaN becomes zero).
package coercion

import (
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
)

// Manager converts values to canonical numeric representations.
// Conversions never alias their input: big values are always copied.
type Manager interface {
	MakeIntegerFrom(v any) (int32, error)
	MakeLongFrom(v any) (int64, error)
	MakeFloatFrom(v any) (float32, error)
	MakeDoubleFrom(v any) (float64, error)
	MakeBigIntegerFrom(v any) (*big.Int, error)
	MakeBigDecimalFrom(v any) (*apd.Decimal, error)
	MakeRationalFrom(v any) (*big.Rat, error)

	// MakeStringFrom never fails; nil becomes config.NullToken.
	MakeStringFrom(v any) string
}

// Number is implemented by wrapper values (e.g. unit-carrying quantities)
// that can expose their raw numeric value.
type Number interface {
	ToNumber() any
}

// ConversionError indicates a value has no representation in the target kind.
type ConversionError struct {
	Value  any
	Target string
	Reason string
}

func (e *ConversionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot convert %v (%T) to %s: %s", e.Value, e.Value, e.Target, e.Reason)
	}
	return fmt.Sprintf("cannot convert %v (%T) to %s", e.Value, e.Value, e.Target)
}

func NewConversionError(value any, target, reason string) *ConversionError {
	return &ConversionError{Value: value, Target: target, Reason: reason}
}
