// Package dimension implements unit-carrying numeric values and the resolver
// that re-bases dimension operands onto their raw numeric representation.
package dimension

import (
	"errors"
	"fmt"

	"github.com/funvibe/typecore/internal/typesystem"
)

// ErrNoDimensionOperand is returned by Resolve when neither operand carries
// a unit that could re-wrap the result.
var ErrNoDimensionOperand = errors.New("no dimension operand")

// Dimension is a value tagged with a unit. ToNumber exposes the raw value,
// FromNumber wraps a raw value in the receiver's unit.
type Dimension interface {
	typesystem.Typed
	ToNumber() any
	FromNumber(n any) Dimension
}

// Unit describes a dimension type and how its values are displayed.
type Unit struct {
	Type   typesystem.TDimension
	Symbol string
}

// NewUnit creates the unit of a dimension type named fqn computed in raw.
func NewUnit(fqn string, raw typesystem.TCon, symbol string) Unit {
	return Unit{Type: typesystem.TDimension{FQN: fqn, Raw: raw}, Symbol: symbol}
}

// Of wraps a raw value in the unit.
func (u Unit) Of(value any) Quantity {
	return Quantity{Value: value, Unit: u}
}

// Quantity is the standard Dimension: a raw value and its unit.
type Quantity struct {
	Value any
	Unit  Unit
}

var _ Dimension = Quantity{}

func (q Quantity) RuntimeType() typesystem.Type { return q.Unit.Type }
func (q Quantity) ToNumber() any                { return q.Value }

func (q Quantity) FromNumber(n any) Dimension {
	return Quantity{Value: n, Unit: q.Unit}
}

func (q Quantity) String() string {
	if q.Unit.Symbol == "" {
		return fmt.Sprintf("%v %s", q.Value, typesystem.SimpleName(q.Unit.Type))
	}
	return fmt.Sprintf("%v%s", q.Value, q.Unit.Symbol)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// RawType is the builtin numeric type the operation is computed in.
	RawType typesystem.TCon
	// Lhs and Rhs are the operands with any unit stripped.
	Lhs, Rhs any
	// Base re-wraps the raw result.
	Base Dimension
}

// Wrap re-applies the captured unit to a raw result.
func (r *Resolution) Wrap(raw any) Dimension {
	return r.Base.FromNumber(raw)
}

// Resolve prepares an operation whose result type is the dimension
// resultType. Dimension operands are replaced by their raw values; plain
// numbers pass through unchanged. The base is the operand whose type is
// resultType, preferring the left, or failing that any dimension operand.
func Resolve(resultType typesystem.TDimension, lhsType typesystem.Type, lhs any, rhsType typesystem.Type, rhs any) (*Resolution, error) {
	ld, lok := lhs.(Dimension)
	rd, rok := rhs.(Dimension)

	res := &Resolution{RawType: resultType.Raw, Lhs: lhs, Rhs: rhs}
	if lok {
		res.Lhs = ld.ToNumber()
	}
	if rok {
		res.Rhs = rd.ToNumber()
	}

	switch {
	case lok && lhsType == typesystem.Type(resultType):
		res.Base = ld
	case rok && rhsType == typesystem.Type(resultType):
		res.Base = rd
	case lok:
		res.Base = ld
	case rok:
		res.Base = rd
	default:
		return nil, fmt.Errorf("resolve %s: %w", resultType, ErrNoDimensionOperand)
	}
	return res, nil
}
