package typesystem

import (
	"strings"

	"github.com/funvibe/typecore/internal/config"
)

// Type is the interface for all types known to the runtime.
// Types are comparable values: two types are the same type iff they are ==.
type Type interface {
	String() string
	// Name returns the fully-qualified name used to register the type.
	Name() string
}

// Placeholder is implemented by types that may stand in for a type that is
// only known once a value exists (dynamic/untyped slots).
type Placeholder interface {
	IsPlaceholder() bool
}

// Typed is implemented by runtime values that report their own type.
type Typed interface {
	RuntimeType() Type
}

// TCon represents a nominal type constant (e.g. lang.Int, acme.Money).
type TCon struct {
	FQN string
}

func (t TCon) String() string { return t.FQN }
func (t TCon) Name() string   { return t.FQN }

// TDimension represents a unit-carrying numeric type. Raw is the numeric
// representation its values are computed in.
type TDimension struct {
	FQN string
	Raw TCon
}

func (t TDimension) String() string { return t.FQN + "<" + t.Raw.FQN + ">" }
func (t TDimension) Name() string   { return t.FQN }

// TDynamic is the placeholder type of an untyped slot.
type TDynamic struct{}

func (t TDynamic) String() string      { return "dynamic" }
func (t TDynamic) Name() string        { return config.LangPackage + config.FqnDelimiter + "dynamic" }
func (t TDynamic) IsPlaceholder() bool { return true }

// Builtin types.
var (
	Byte       = builtin("Byte")
	Short      = builtin("Short")
	Int        = builtin("Int")
	Long       = builtin("Long")
	Float      = builtin("Float")
	Double     = builtin("Double")
	BigInt     = builtin("BigInt")
	BigDecimal = builtin("BigDecimal")
	Rational   = builtin("Rational")
	String     = builtin("String")
	Bool       = builtin("Bool")
	Nil        = builtin("Nil")
	Object     = builtin("Object")

	Dynamic Type = TDynamic{}
)

func builtin(simple string) TCon {
	return TCon{FQN: config.LangPackage + config.FqnDelimiter + simple}
}

// Builtins lists every builtin type constant in declaration order.
func Builtins() []TCon {
	return []TCon{Byte, Short, Int, Long, Float, Double, BigInt, BigDecimal, Rational, String, Bool, Nil, Object}
}

// IsPlaceholder reports whether t stands in for a type discovered at runtime.
func IsPlaceholder(t Type) bool {
	p, ok := t.(Placeholder)
	return ok && p.IsPlaceholder()
}

// IsDimension reports whether t is a unit-carrying type.
func IsDimension(t Type) bool {
	_, ok := t.(TDimension)
	return ok
}

// SimpleName returns the last segment of a type's fully-qualified name.
func SimpleName(t Type) string {
	name := t.Name()
	if i := strings.LastIndex(name, config.FqnDelimiter); i >= 0 {
		return name[i+1:]
	}
	return name
}

// Lookup resolves a builtin type by simple or fully-qualified name.
func Lookup(name string) (TCon, bool) {
	for _, b := range Builtins() {
		if b.FQN == name || SimpleName(b) == name {
			return b, true
		}
	}
	return TCon{}, false
}
