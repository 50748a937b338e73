package numeric

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	"github.com/funvibe/typecore/internal/coercion"
)

// ErrNotComputable is returned for kinds that have no arithmetic of their
// own (Invalid and Quantity).
var ErrNotComputable = errors.New("kind is not computable")

// Op is an additive operator.
type Op uint8

const (
	Add Op = iota
	Subtract
)

func (op Op) String() string {
	if op == Subtract {
		return "-"
	}
	return "+"
}

// Rune returns the operator symbol.
func (op Op) Rune() rune {
	if op == Subtract {
		return '-'
	}
	return '+'
}

// Convert converts v to the canonical representation of k.
// Byte and Short values are narrowed from their Int conversion.
func Convert(k Kind, cm coercion.Manager, v any) (any, error) {
	switch k {
	case Byte:
		i, err := cm.MakeIntegerFrom(v)
		return int8(i), err
	case Short:
		i, err := cm.MakeIntegerFrom(v)
		return int16(i), err
	case Int:
		return cm.MakeIntegerFrom(v)
	case Long:
		return cm.MakeLongFrom(v)
	case Float:
		return cm.MakeFloatFrom(v)
	case Double:
		return cm.MakeDoubleFrom(v)
	case BigInteger:
		return cm.MakeBigIntegerFrom(v)
	case BigDecimal:
		return cm.MakeBigDecimalFrom(v)
	case Rational:
		return cm.MakeRationalFrom(v)
	}
	return nil, fmt.Errorf("convert to %s: %w", k, ErrNotComputable)
}

// Compute converts both operands to k and applies op.
//
// Fixed-width integers wrap on overflow. Byte and Short are computed with Int
// arithmetic and then narrowed. Decimal results are exact.
func Compute(k Kind, op Op, cm coercion.Manager, lhs, rhs any) (any, error) {
	switch k {
	case Rational:
		l, err := cm.MakeRationalFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeRationalFrom(rhs)
		if err != nil {
			return nil, err
		}
		if op == Subtract {
			return new(big.Rat).Sub(l, r), nil
		}
		return new(big.Rat).Add(l, r), nil

	case BigDecimal:
		l, err := cm.MakeBigDecimalFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeBigDecimalFrom(rhs)
		if err != nil {
			return nil, err
		}
		var res apd.Decimal
		if op == Subtract {
			_, err = apd.BaseContext.Sub(&res, l, r)
		} else {
			_, err = apd.BaseContext.Add(&res, l, r)
		}
		if err != nil {
			return nil, err
		}
		return &res, nil

	case BigInteger:
		l, err := cm.MakeBigIntegerFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeBigIntegerFrom(rhs)
		if err != nil {
			return nil, err
		}
		if op == Subtract {
			return new(big.Int).Sub(l, r), nil
		}
		return new(big.Int).Add(l, r), nil

	case Int, Short, Byte:
		l, err := cm.MakeIntegerFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeIntegerFrom(rhs)
		if err != nil {
			return nil, err
		}
		res := l + r
		if op == Subtract {
			res = l - r
		}
		switch k {
		case Short:
			return int16(res), nil
		case Byte:
			return int8(res), nil
		}
		return res, nil

	case Long:
		l, err := cm.MakeLongFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeLongFrom(rhs)
		if err != nil {
			return nil, err
		}
		if op == Subtract {
			return l - r, nil
		}
		return l + r, nil

	case Double:
		l, err := cm.MakeDoubleFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeDoubleFrom(rhs)
		if err != nil {
			return nil, err
		}
		if op == Subtract {
			return l - r, nil
		}
		return l + r, nil

	case Float:
		l, err := cm.MakeFloatFrom(lhs)
		if err != nil {
			return nil, err
		}
		r, err := cm.MakeFloatFrom(rhs)
		if err != nil {
			return nil, err
		}
		if op == Subtract {
			return l - r, nil
		}
		return l + r, nil
	}
	return nil, fmt.Errorf("compute %s: %w", k, ErrNotComputable)
}
