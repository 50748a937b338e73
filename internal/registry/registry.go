// Package registry is the default type system consulted by the evaluator.
//
// Type definitions are kept by name; the Entry materialized for a definition
// is cached in an fqncache.FqnCache and rebuilt on demand whenever the cache
// no longer holds it (for example after the garbage collector reclaimed a
// weakly held entry, or after a TTL expired).
package registry

import (
	"fmt"
	"log/slog"
	"math/big"
	"runtime"
	"strings"
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/funvibe/typecore/internal/coercion"
	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/dimension"
	"github.com/funvibe/typecore/internal/fqncache"
	"github.com/funvibe/typecore/internal/numeric"
	"github.com/funvibe/typecore/internal/typesystem"
	"github.com/hashicorp/go-set/v3"
)

// Entry is the materialized view of a registered type.
type Entry struct {
	Type    typesystem.Type
	Numeric bool
	// Unit is set for dimension types.
	Unit *dimension.Unit
	// Operators are the overloads whose receiver is Type.
	Operators []*typesystem.Method
}

type opKey struct {
	lhs string
	op  rune
	rhs string
}

// Registry maps fully-qualified names to types and operator overloads.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	defs      map[string]typesystem.Type
	units     map[string]dimension.Unit
	operators map[opKey]*typesystem.Method
	entries   fqncache.FqnCache[Entry]
	cm        coercion.Manager
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithCache replaces the default weak entry cache.
func WithCache(c fqncache.FqnCache[Entry]) Option {
	return func(r *Registry) {
		r.entries = c
	}
}

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New creates a registry with every builtin type defined.
func New(cm coercion.Manager, opts ...Option) *Registry {
	r := &Registry{
		defs:      make(map[string]typesystem.Type),
		units:     make(map[string]dimension.Unit),
		operators: make(map[opKey]*typesystem.Method),
		cm:        cm,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.entries == nil {
		r.entries = fqncache.NewWeak[Entry](fqncache.WithLogger(r.logger))
	}
	for _, b := range typesystem.Builtins() {
		r.define(b)
	}
	return r
}

// Define registers t under its fully-qualified name, replacing any previous
// definition.
func (r *Registry) Define(t typesystem.Type) error {
	if err := fqncache.Validate(t.Name()); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.define(t)
	return nil
}

func (r *Registry) define(t typesystem.Type) {
	r.defs[t.Name()] = t
	// Register the path; the entry itself is materialized on first lookup.
	r.entries.Add(t.Name(), nil)
}

// DefineUnit registers a dimension type together with its unit.
func (r *Registry) DefineUnit(u dimension.Unit) error {
	if _, ok := numeric.KindOf(u.Type.Raw); !ok {
		return fmt.Errorf("unit %s: raw type %s is not numeric", u.Type.FQN, u.Type.Raw)
	}
	if err := r.Define(u.Type); err != nil {
		return err
	}
	r.mu.Lock()
	r.units[u.Type.FQN] = u
	r.mu.Unlock()
	return nil
}

// DefineUnits registers the unit declarations of a configuration.
func (r *Registry) DefineUnits(decls []config.UnitDecl) error {
	for _, d := range decls {
		raw, ok := typesystem.Lookup(d.Raw)
		if !ok {
			return fmt.Errorf("unit %s: %w", d.Name, typesystem.NewSymbolNotFoundError(d.Raw))
		}
		if err := r.DefineUnit(dimension.NewUnit(d.Name, raw, d.Symbol)); err != nil {
			return err
		}
	}
	return nil
}

// Unit returns the unit of a dimension type.
func (r *Registry) Unit(fqn string) (dimension.Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[fqn]
	return u, ok
}

// DefineOperator registers a user-defined operator for lhs op rhs. The
// handler receives the left operand as receiver and the right operand
// coerced to rhs.
func (r *Registry) DefineOperator(lhs typesystem.Type, op rune, rhs, result typesystem.Type, handler typesystem.CallHandler) (*typesystem.Method, error) {
	if handler == nil {
		return nil, fmt.Errorf("operator %s %c %s: nil handler", lhs, op, rhs)
	}
	m := &typesystem.Method{
		Name:    typesystem.OperatorMethodName(op),
		Owner:   lhs,
		Params:  []typesystem.Type{rhs},
		Return:  result,
		Handler: handler,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.defs[lhs.Name()]; !ok {
		return nil, typesystem.NewSymbolNotFoundError(lhs.Name())
	}
	r.operators[opKey{lhs.Name(), op, rhs.Name()}] = m
	// The owner's entry lists its operators; force a rebuild.
	r.entries.Add(lhs.Name(), nil)
	return m, nil
}

// Lookup returns the entry for fqn, materializing it if the cache no longer
// holds one.
func (r *Registry) Lookup(fqn string) (*Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e := r.entries.Get(fqn); e != nil {
		return e, nil
	}
	t, ok := r.defs[fqn]
	if !ok {
		return nil, typesystem.NewSymbolNotFoundError(fqn)
	}
	e := r.materialize(t)
	r.entries.Add(fqn, e)
	r.logger.Debug("materialized type entry", slog.String("fqn", fqn))
	return e, nil
}

func (r *Registry) materialize(t typesystem.Type) *Entry {
	e := &Entry{Type: t, Numeric: numeric.IsNumeric(t)}
	if u, ok := r.units[t.Name()]; ok {
		e.Unit = &u
	}
	for key, m := range r.operators {
		if key.lhs == t.Name() {
			e.Operators = append(e.Operators, m)
		}
	}
	return e
}

// Unload removes fqn and every name below it, together with the operators
// they own. It reports whether a node existed at fqn.
func (r *Registry) Unload(fqn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	prefix := fqn + config.FqnDelimiter
	for name := range r.defs {
		if name == fqn || strings.HasPrefix(name, prefix) {
			delete(r.defs, name)
			delete(r.units, name)
		}
	}
	for key := range r.operators {
		if key.lhs == fqn || strings.HasPrefix(key.lhs, prefix) {
			delete(r.operators, key)
		}
	}
	return r.entries.Remove(fqn)
}

// Fqns returns every registered name.
func (r *Registry) Fqns() *set.Set[string] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries.Fqns()
}

// Visit walks the registered namespace depth first, or breadth first when
// breadthFirst is set, calling visit with each name until it returns false.
// The walk runs over a snapshot taken under the registry lock, so visit may
// call back into the registry.
func (r *Registry) Visit(breadthFirst bool, visit func(fqn string, registered bool) bool) {
	for _, n := range r.snapshot(breadthFirst) {
		if !visit(n.fqn, n.registered) {
			return
		}
	}
}

type visited struct {
	fqn        string
	registered bool
}

func (r *Registry) snapshot(breadthFirst bool) []visited {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []visited
	if !breadthFirst {
		r.entries.VisitNodeDepthFirst(func(n *fqncache.Node[Entry]) bool {
			out = append(out, visited{fqn: n.FQN(), registered: n.IsRegistered()})
			return true
		})
		return out
	}
	// Breadth-first visits by payload; materialize so every registered name
	// has one to report, and keep them reachable for the walk.
	live := make([]*Entry, 0, len(r.defs))
	for name, t := range r.defs {
		e := r.entries.Get(name)
		if e == nil {
			e = r.materialize(t)
			r.entries.Add(name, e)
		}
		live = append(live, e)
	}
	r.entries.VisitBreadthFirst(func(e *Entry) bool {
		if e != nil {
			out = append(out, visited{fqn: e.Type.Name(), registered: true})
		}
		return true
	})
	runtime.KeepAlive(live)
	return out
}

// TypeOf reports the runtime type of a value.
func (r *Registry) TypeOf(v any) typesystem.Type {
	switch v := v.(type) {
	case nil:
		return typesystem.Nil
	case int8:
		return typesystem.Byte
	case int16:
		return typesystem.Short
	case int32:
		return typesystem.Int
	case int, int64:
		return typesystem.Long
	// Unsigned values take the narrowest signed kind holding their range.
	case uint8:
		return typesystem.Short
	case uint16:
		return typesystem.Int
	case uint32:
		return typesystem.Long
	case uint, uint64, uintptr:
		return typesystem.BigInt
	case float32:
		return typesystem.Float
	case float64:
		return typesystem.Double
	case *big.Int:
		return typesystem.BigInt
	case *apd.Decimal:
		return typesystem.BigDecimal
	case *big.Rat:
		return typesystem.Rational
	case string:
		return typesystem.String
	case bool:
		return typesystem.Bool
	case typesystem.Typed:
		return v.RuntimeType()
	}
	return typesystem.Object
}

// IsNumeric reports whether t is part of the numeric lattice.
func (r *Registry) IsNumeric(t typesystem.Type) bool {
	return numeric.IsNumeric(t)
}

// ResolveOperator determines the result type of lhs op rhs. A user-defined
// overload for the exact operand types wins and is returned alongside the
// result type; otherwise:
//
//   - a String operand makes the result String (concatenation)
//   - two numbers promote through numeric.Promote; Nil adopts the other side
//   - a dimension with the same dimension or a plain number stays the dimension
//   - Nil with Nil concatenates
func (r *Registry) ResolveOperator(lhs typesystem.Type, op rune, rhs typesystem.Type) (typesystem.Type, *typesystem.Method, error) {
	r.mu.Lock()
	m, ok := r.operators[opKey{lhs.Name(), op, rhs.Name()}]
	r.mu.Unlock()
	if ok {
		return m.Return, m, nil
	}

	if lhs == typesystem.Type(typesystem.String) || rhs == typesystem.Type(typesystem.String) {
		return typesystem.String, nil, nil
	}

	lk, lnum := numeric.KindOf(lhs)
	rk, rnum := numeric.KindOf(rhs)
	lnil := lhs == typesystem.Type(typesystem.Nil)
	rnil := rhs == typesystem.Type(typesystem.Nil)

	switch {
	case lnum && rnum && lk != numeric.Quantity && rk != numeric.Quantity:
		t, _ := numeric.Promote(lk, rk).Type()
		return t, nil, nil
	case lk == numeric.Quantity && (rhs == lhs || (rnum && rk != numeric.Quantity) || rnil):
		return lhs, nil, nil
	case rk == numeric.Quantity && ((lnum && lk != numeric.Quantity) || lnil):
		return rhs, nil, nil
	case lnum && rnil:
		return lhs, nil, nil
	case lnil && rnum:
		return rhs, nil, nil
	case lnil && rnil:
		return typesystem.String, nil, nil
	}
	return nil, nil, typesystem.NewUnsupportedOperatorError(lhs, op, rhs)
}

// CoerceArgs converts args to the parameter types of m.
func (r *Registry) CoerceArgs(m *typesystem.Method, args []any) ([]any, error) {
	if len(args) != len(m.Params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", m, len(m.Params), len(args))
	}
	out := make([]any, len(args))
	for i, p := range m.Params {
		switch k, ok := numeric.KindOf(p); {
		case p == typesystem.Type(typesystem.String):
			out[i] = r.cm.MakeStringFrom(args[i])
		case ok && k != numeric.Quantity && args[i] != nil:
			v, err := numeric.Convert(k, r.cm, args[i])
			if err != nil {
				return nil, err
			}
			out[i] = v
		default:
			out[i] = args[i]
		}
	}
	return out, nil
}
