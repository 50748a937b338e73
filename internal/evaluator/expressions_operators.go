package evaluator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/funvibe/typecore/internal/config"
	"github.com/funvibe/typecore/internal/dimension"
	"github.com/funvibe/typecore/internal/numeric"
	"github.com/funvibe/typecore/internal/typesystem"
)

// ErrUnknownOperator is returned by ParseOperator for non-additive operators.
var ErrUnknownOperator = errors.New("unknown additive operator")

// ParseOperator classifies additive operator text. Compound assignments
// evaluate like their binary forms; "?+" and "?-" are the null-safe forms.
func ParseOperator(sym string) (additive, nullSafe bool, err error) {
	switch sym {
	case config.OpAdd, config.OpAddAssign:
		return true, false, nil
	case config.OpSubtract, config.OpSubAssign:
		return false, false, nil
	case config.OpNullSafeAdd:
		return true, true, nil
	case config.OpNullSafeSub:
		return false, true, nil
	}
	return false, false, fmt.Errorf("%w: %q", ErrUnknownOperator, sym)
}

// Evaluate computes op.
//
// When either declared operand type is a placeholder, the runtime types of
// the values replace it and the result type is resolved again; a
// user-defined overload for the resolved operand types is called with the
// left operand as receiver and its result returned as is.
//
// Numeric results reject absent operands (left first) unless op.NullSafe is
// set, unwrap dimension operands, compute in the result kind and re-wrap.
// Any other result is the concatenation of both operands' string forms.
//
// Errors returned by the type system, the coercion manager or an overload
// are returned unchanged.
func (e *Evaluator) Evaluate(op Operation) (any, error) {
	resultType := op.ResultType
	lhsType, rhsType := op.LhsType, op.RhsType
	isNumeric := op.Numeric
	arith := numeric.Subtract
	if op.Additive {
		arith = numeric.Add
	}

	dynamic := false
	if typesystem.IsPlaceholder(lhsType) {
		dynamic = true
		lhsType = e.Types.TypeOf(op.Lhs)
	}
	if typesystem.IsPlaceholder(rhsType) {
		dynamic = true
		rhsType = e.Types.TypeOf(op.Rhs)
	}
	if dynamic {
		t, m, err := e.Types.ResolveOperator(lhsType, arith.Rune(), rhsType)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return e.callOverload(m, op.Lhs, op.Rhs)
		}
		resultType = t
		isNumeric = e.Types.IsNumeric(t)
	}

	if !isNumeric {
		e.metrics.recordEvaluation(pathConcat)
		return e.Coercion.MakeStringFrom(op.Lhs) + e.Coercion.MakeStringFrom(op.Rhs), nil
	}

	if isAbsent(op.Lhs) {
		return e.absent(op, Left)
	}
	if isAbsent(op.Rhs) {
		return e.absent(op, Right)
	}

	lhs, rhs := op.Lhs, op.Rhs
	var unit *dimension.Resolution
	if dim, ok := resultType.(typesystem.TDimension); ok {
		res, err := dimension.Resolve(dim, lhsType, lhs, rhsType, rhs)
		if err != nil {
			return nil, err
		}
		unit = res
		resultType = res.RawType
		lhs, rhs = res.Lhs, res.Rhs
	}

	kind, ok := numeric.KindOf(resultType)
	if !ok || kind == numeric.Quantity {
		e.metrics.recordFailure(ErrUnsupportedNumericType)
		return nil, NewUnsupportedNumericTypeError(resultType)
	}
	out, err := numeric.Compute(kind, arith, e.Coercion, lhs, rhs)
	if err != nil {
		return nil, err
	}
	e.metrics.recordEvaluation(pathNumeric)
	if unit != nil {
		return unit.Wrap(out), nil
	}
	return out, nil
}

// Apply evaluates lhs sym rhs, resolving the static result type the way a
// compiler would before calling Evaluate. Static overloads are called
// directly; placeholder operand types defer everything to Evaluate.
func (e *Evaluator) Apply(sym string, lhs any, lhsType typesystem.Type, rhs any, rhsType typesystem.Type) (any, error) {
	additive, nullSafe, err := ParseOperator(sym)
	if err != nil {
		return nil, err
	}
	op := Operation{
		ResultType: typesystem.Dynamic,
		Lhs:        lhs,
		Rhs:        rhs,
		LhsType:    lhsType,
		RhsType:    rhsType,
		Additive:   additive,
		NullSafe:   nullSafe,
	}
	if !typesystem.IsPlaceholder(lhsType) && !typesystem.IsPlaceholder(rhsType) {
		r := '-'
		if additive {
			r = '+'
		}
		t, m, err := e.Types.ResolveOperator(lhsType, r, rhsType)
		if err != nil {
			return nil, err
		}
		if m != nil {
			return e.callOverload(m, lhs, rhs)
		}
		op.ResultType = t
		op.Numeric = e.Types.IsNumeric(t)
	}
	return e.Evaluate(op)
}

func (e *Evaluator) callOverload(m *typesystem.Method, lhs, rhs any) (any, error) {
	args, err := e.Types.CoerceArgs(m, []any{rhs})
	if err != nil {
		return nil, err
	}
	e.Logger.Debug("dispatching operator overload", slog.String("method", m.String()))
	e.metrics.recordEvaluation(pathOverload)
	return m.Call(lhs, args...)
}

func (e *Evaluator) absent(op Operation, side Side) (any, error) {
	if op.NullSafe {
		e.metrics.recordEvaluation(pathNull)
		return nil, nil
	}
	e.metrics.recordFailure(ErrInvalidOperand)
	return nil, NewInvalidOperandError(side)
}
