package evaluator

import (
	"errors"
	"fmt"

	"github.com/funvibe/typecore/internal/typesystem"
)

var (
	// ErrInvalidOperand matches every InvalidOperandError.
	ErrInvalidOperand = errors.New("invalid operand")
	// ErrUnsupportedNumericType matches every UnsupportedNumericTypeError.
	ErrUnsupportedNumericType = errors.New("unsupported numeric type")
)

// Side identifies an operand.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// InvalidOperandError indicates an absent operand in a numeric, non
// null-safe operation.
type InvalidOperandError struct {
	Side Side
}

func (e *InvalidOperandError) Error() string {
	return fmt.Sprintf("%s-hand operand was null", e.Side)
}

func (e *InvalidOperandError) Is(target error) bool {
	return target == ErrInvalidOperand
}

func NewInvalidOperandError(side Side) *InvalidOperandError {
	return &InvalidOperandError{Side: side}
}

// UnsupportedNumericTypeError indicates a numeric result type outside the
// numeric lattice.
type UnsupportedNumericTypeError struct {
	Type typesystem.Type
}

func (e *UnsupportedNumericTypeError) Error() string {
	return fmt.Sprintf("unsupported numeric type: %v", e.Type)
}

func (e *UnsupportedNumericTypeError) Is(target error) bool {
	return target == ErrUnsupportedNumericType
}

func NewUnsupportedNumericTypeError(t typesystem.Type) *UnsupportedNumericTypeError {
	return &UnsupportedNumericTypeError{Type: t}
}
