package typesystem

import "fmt"

// SymbolNotFoundError indicates a symbol was not found
type SymbolNotFoundError struct {
	Name string
}

func (e *SymbolNotFoundError) Error() string {
	return fmt.Sprintf("symbol not found: %s", e.Name)
}

func NewSymbolNotFoundError(name string) *SymbolNotFoundError {
	return &SymbolNotFoundError{Name: name}
}

// UnsupportedOperatorError indicates no result type exists for an operator
// applied to the given operand types.
type UnsupportedOperatorError struct {
	Left     Type
	Operator rune
	Right    Type
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %c not supported for %s and %s", e.Operator, e.Left, e.Right)
}

func NewUnsupportedOperatorError(left Type, op rune, right Type) *UnsupportedOperatorError {
	return &UnsupportedOperatorError{Left: left, Operator: op, Right: right}
}
