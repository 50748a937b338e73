package typesystem

import (
	"fmt"
	"strings"
)

// CallHandler invokes a method on receiver with already-coerced arguments.
type CallHandler func(receiver any, args ...any) (any, error)

// Method describes a callable member, e.g. a user-defined operator overload.
type Method struct {
	Name    string
	Owner   Type
	Params  []Type
	Return  Type
	Handler CallHandler
}

// Call dispatches to the method's handler.
func (m *Method) Call(receiver any, args ...any) (any, error) {
	if m.Handler == nil {
		return nil, fmt.Errorf("method %s has no call handler", m)
	}
	return m.Handler(receiver, args...)
}

func (m *Method) String() string {
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.String()
	}
	owner := ""
	if m.Owner != nil {
		owner = m.Owner.String() + "."
	}
	return fmt.Sprintf("%s%s(%s)", owner, m.Name, strings.Join(params, ", "))
}

// OperatorMethodName returns the method name under which an overload for op
// is registered, e.g. "(+)".
func OperatorMethodName(op rune) string {
	return "(" + string(op) + ")"
}
