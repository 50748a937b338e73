package main

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/numeric"
	"github.com/funvibe/typecore/internal/typesystem"
)

const decimalSuffix = "bd"

// resolveType finds a type by builtin name, registered FQN or "dynamic".
func resolveType(a *app, name string) (typesystem.Type, error) {
	if name == "dynamic" {
		return typesystem.Dynamic, nil
	}
	if t, ok := typesystem.Lookup(name); ok {
		return t, nil
	}
	e, err := a.reg.Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.Type, nil
}

// inferLiteral types a literal the way source code would:
//
//	null  "text"  true  42  9000000000  1e3  0.5  1/3  1.10bd  123456789012345678901
//
// Anything else is taken as an unquoted string.
func inferLiteral(text string) (any, typesystem.Type) {
	switch {
	case text == config.NullToken:
		return nil, typesystem.Nil
	case len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`):
		return text[1 : len(text)-1], typesystem.String
	case text == "true" || text == "false":
		return text == "true", typesystem.Bool
	}

	if i, err := strconv.ParseInt(text, 10, 32); err == nil {
		return int32(i), typesystem.Int
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, typesystem.Long
	}
	if i, ok := new(big.Int).SetString(text, 10); ok {
		return i, typesystem.BigInt
	}
	if s, ok := strings.CutSuffix(text, decimalSuffix); ok {
		if d, _, err := apd.NewFromString(s); err == nil {
			return d, typesystem.BigDecimal
		}
	}
	if strings.Contains(text, "/") {
		if r, ok := new(big.Rat).SetString(text); ok {
			return r, typesystem.Rational
		}
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, typesystem.Double
	}
	return text, typesystem.String
}

// parseOperand converts an operand literal to a value of the named type, or
// infers both when typeName is empty.
func parseOperand(a *app, text, typeName string) (any, typesystem.Type, error) {
	if typeName == "" {
		v, t := inferLiteral(text)
		return v, t, nil
	}
	t, err := resolveType(a, typeName)
	if err != nil {
		return nil, nil, err
	}
	if typesystem.IsPlaceholder(t) {
		v, _ := inferLiteral(text)
		return v, t, nil
	}
	if text == config.NullToken {
		return nil, t, nil
	}

	// Numeric conversions parse the literal text themselves, except for
	// fractions which only the rational parser understands.
	var raw any = text
	if strings.Contains(text, "/") {
		raw, _ = inferLiteral(text)
	}

	if dim, ok := t.(typesystem.TDimension); ok {
		unit, _ := a.reg.Unit(dim.FQN)
		k, _ := numeric.KindOf(dim.Raw)
		v, err := numeric.Convert(k, a.cm, raw)
		if err != nil {
			return nil, nil, err
		}
		return unit.Of(v), t, nil
	}
	if k, ok := numeric.KindOf(t); ok {
		v, err := numeric.Convert(k, a.cm, raw)
		if err != nil {
			return nil, nil, err
		}
		return v, t, nil
	}

	switch t {
	case typesystem.Type(typesystem.String):
		v, _ := inferLiteral(text)
		if s, ok := v.(string); ok {
			return s, t, nil
		}
		return text, t, nil
	case typesystem.Type(typesystem.Bool):
		b, err := strconv.ParseBool(text)
		if err != nil {
			return nil, nil, err
		}
		return b, t, nil
	}
	v, _ := inferLiteral(text)
	return v, t, nil
}
