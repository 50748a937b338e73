// Package numeric defines the closed lattice of numeric kinds, the promotion
// rules between them and the add/subtract operation of each kind.
package numeric

import (
	"github.com/funvibe/typecore/internal/typesystem"
)

// Kind is a numeric representation. Kinds are ordered by width within the
// primitive range (Byte through Double).
type Kind uint8

const (
	Invalid Kind = iota
	Byte
	Short
	Int
	Long
	Float
	Double
	BigInteger
	BigDecimal
	Rational
	// Quantity is a unit-carrying value over one of the kinds above.
	Quantity
)

var kindNames = [...]string{
	Invalid:    "invalid",
	Byte:       "byte",
	Short:      "short",
	Int:        "int",
	Long:       "long",
	Float:      "float",
	Double:     "double",
	BigInteger: "biginteger",
	BigDecimal: "bigdecimal",
	Rational:   "rational",
	Quantity:   "quantity",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "invalid"
}

var byType = map[typesystem.TCon]Kind{
	typesystem.Byte:       Byte,
	typesystem.Short:      Short,
	typesystem.Int:        Int,
	typesystem.Long:       Long,
	typesystem.Float:      Float,
	typesystem.Double:     Double,
	typesystem.BigInt:     BigInteger,
	typesystem.BigDecimal: BigDecimal,
	typesystem.Rational:   Rational,
}

// KindOf returns the numeric kind of t. Dimension types report Quantity.
func KindOf(t typesystem.Type) (Kind, bool) {
	switch t := t.(type) {
	case typesystem.TCon:
		k, ok := byType[t]
		return k, ok
	case typesystem.TDimension:
		return Quantity, true
	}
	return Invalid, false
}

// IsNumeric reports whether t belongs to the lattice.
func IsNumeric(t typesystem.Type) bool {
	_, ok := KindOf(t)
	return ok
}

// Type returns the builtin type of a computable kind.
func (k Kind) Type() (typesystem.TCon, bool) {
	for t, kind := range byType {
		if kind == k {
			return t, true
		}
	}
	return typesystem.TCon{}, false
}

// IsIntegral reports whether k holds whole numbers only.
func (k Kind) IsIntegral() bool {
	switch k {
	case Byte, Short, Int, Long, BigInteger:
		return true
	}
	return false
}

// IsPrimitive reports whether k is a fixed-width kind.
func (k Kind) IsPrimitive() bool {
	return k >= Byte && k <= Double
}

// Promote selects the kind a binary operation over a and b is computed in.
//
//   - Rational absorbs every other kind.
//   - BigDecimal absorbs everything but Rational; BigInteger meeting a
//     floating point kind also yields BigDecimal.
//   - BigInteger absorbs the integral primitives.
//   - Otherwise the wider primitive wins.
//
// Quantity and Invalid do not promote; the caller resolves dimensions first.
func Promote(a, b Kind) Kind {
	switch {
	case a == Invalid || b == Invalid || a == Quantity || b == Quantity:
		return Invalid
	case a == Rational || b == Rational:
		return Rational
	case a == BigDecimal || b == BigDecimal:
		return BigDecimal
	case a == BigInteger || b == BigInteger:
		if a == Float || a == Double || b == Float || b == Double {
			return BigDecimal
		}
		return BigInteger
	}
	return max(a, b)
}
