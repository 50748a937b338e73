package evaluator

import (
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/funvibe/typecore/internal/coercion"
	"github.com/funvibe/typecore/internal/dimension"
	"github.com/funvibe/typecore/internal/fqncache"
	"github.com/funvibe/typecore/internal/registry"
	"github.com/funvibe/typecore/internal/typesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	money  = typesystem.TCon{FQN: "acme.money.Money"}
	length = dimension.NewUnit("acme.units.Length", typesystem.Long, "m")
)

type moneyValue struct {
	cents int64
}

func (m moneyValue) RuntimeType() typesystem.Type { return money }

func setup(t *testing.T) (*Evaluator, *registry.Registry) {
	t.Helper()
	cm := coercion.NewStandard(0)
	reg := registry.New(cm, registry.WithCache(fqncache.NewStrong[registry.Entry]()))
	require.NoError(t, reg.Define(money))
	require.NoError(t, reg.DefineUnit(length))
	return New(reg, cm), reg
}

// assertNumber compares arbitrary-precision values by value.
func assertNumber(t *testing.T, want, got any) {
	t.Helper()
	switch w := want.(type) {
	case *big.Int:
		g, ok := got.(*big.Int)
		require.True(t, ok, "got %T", got)
		assert.Zero(t, w.Cmp(g), "got %s, want %s", g, w)
	case *big.Rat:
		g, ok := got.(*big.Rat)
		require.True(t, ok, "got %T", got)
		assert.Zero(t, w.Cmp(g), "got %s, want %s", g, w)
	default:
		assert.Equal(t, want, got)
	}
}

func intOp(lhs, rhs any, additive bool) Operation {
	return Operation{
		ResultType: typesystem.Int,
		Lhs:        lhs,
		Rhs:        rhs,
		LhsType:    typesystem.Int,
		RhsType:    typesystem.Int,
		Additive:   additive,
		Numeric:    true,
	}
}

func TestEvaluate_Int(t *testing.T) {
	e, _ := setup(t)

	got, err := e.Evaluate(intOp(int32(3), int32(4), true))
	require.NoError(t, err)
	assert.Equal(t, int32(7), got)

	got, err = e.Evaluate(intOp(int32(3), int32(4), false))
	require.NoError(t, err)
	assert.Equal(t, int32(-1), got)
}

func TestEvaluate_Kinds(t *testing.T) {
	e, _ := setup(t)
	dec := func(s string) *apd.Decimal {
		d, _, err := apd.NewFromString(s)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name       string
		resultType typesystem.Type
		lhs, rhs   any
		additive   bool
		want       any
	}{
		{"byte wraps", typesystem.Byte, int8(120), int8(10), true, int8(-126)},
		{"short narrows", typesystem.Short, int16(-32768), int16(1), false, int16(32767)},
		{"long", typesystem.Long, int64(1) << 40, int32(1), true, int64(1)<<40 + 1},
		{"float", typesystem.Float, float32(0.5), float32(0.25), true, float32(0.75)},
		{"double from ints", typesystem.Double, int32(1), int64(2), false, -1.0},
		{"big integer", typesystem.BigInt, big.NewInt(10), int64(5), false, big.NewInt(5)},
		{"rational", typesystem.Rational, big.NewRat(1, 3), big.NewRat(1, 6), true, big.NewRat(1, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(Operation{
				ResultType: tt.resultType,
				Lhs:        tt.lhs,
				Rhs:        tt.rhs,
				LhsType:    tt.resultType,
				RhsType:    tt.resultType,
				Additive:   tt.additive,
				Numeric:    true,
			})
			require.NoError(t, err)
			assertNumber(t, tt.want, got)
		})
	}

	got, err := e.Evaluate(Operation{
		ResultType: typesystem.BigDecimal,
		Lhs:        dec("1.10"),
		Rhs:        dec("2.205"),
		LhsType:    typesystem.BigDecimal,
		RhsType:    typesystem.BigDecimal,
		Additive:   true,
		Numeric:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "3.305", got.(*apd.Decimal).String())
}

func TestEvaluate_NullPolicy(t *testing.T) {
	e, _ := setup(t)

	_, err := e.Evaluate(intOp(nil, int32(1), true))
	var ioe *InvalidOperandError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, Left, ioe.Side)
	assert.ErrorIs(t, err, ErrInvalidOperand)
	assert.Equal(t, "left-hand operand was null", err.Error())

	_, err = e.Evaluate(intOp(int32(1), nil, true))
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, Right, ioe.Side)

	// Both absent: the left side is reported.
	_, err = e.Evaluate(intOp(nil, nil, false))
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, Left, ioe.Side)

	// A typed nil reference counts as absent.
	op := intOp(int32(1), (*big.Int)(nil), true)
	op.ResultType, op.LhsType, op.RhsType = typesystem.BigInt, typesystem.BigInt, typesystem.BigInt
	_, err = e.Evaluate(op)
	assert.ErrorIs(t, err, ErrInvalidOperand)

	op = intOp(nil, int32(1), true)
	op.NullSafe = true
	got, err := e.Evaluate(op)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvaluate_Concatenation(t *testing.T) {
	e, _ := setup(t)
	for _, nullSafe := range []bool{false, true} {
		op := Operation{
			ResultType: typesystem.String,
			Lhs:        "a",
			Rhs:        "b",
			LhsType:    typesystem.String,
			RhsType:    typesystem.String,
			Additive:   true,
			NullSafe:   nullSafe,
		}
		got, err := e.Evaluate(op)
		require.NoError(t, err)
		assert.Equal(t, "ab", got)

		op.Rhs = nil
		got, err = e.Evaluate(op)
		require.NoError(t, err)
		assert.Equal(t, "anull", got)

		op.Lhs, op.Rhs = nil, 1.5
		got, err = e.Evaluate(op)
		require.NoError(t, err)
		assert.Equal(t, "null1.5", got)

		op.Lhs, op.Rhs = "a", (*dimension.Quantity)(nil)
		got, err = e.Evaluate(op)
		require.NoError(t, err)
		assert.Equal(t, "anull", got)

		op.Lhs, op.Rhs = length.Of(int64(5)), "!"
		got, err = e.Evaluate(op)
		require.NoError(t, err)
		assert.Equal(t, "5m!", got)
	}
}

func TestEvaluate_Dimension(t *testing.T) {
	e, _ := setup(t)

	got, err := e.Evaluate(Operation{
		ResultType: length.Type,
		Lhs:        length.Of(int64(2)),
		Rhs:        length.Of(int64(3)),
		LhsType:    length.Type,
		RhsType:    length.Type,
		Additive:   true,
		Numeric:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, length.Of(int64(5)), got)

	got, err = e.Evaluate(Operation{
		ResultType: length.Type,
		Lhs:        length.Of(int64(10)),
		Rhs:        int32(4),
		LhsType:    length.Type,
		RhsType:    typesystem.Int,
		Additive:   false,
		Numeric:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, length.Of(int64(6)), got)

	_, err = e.Evaluate(Operation{
		ResultType: length.Type,
		Lhs:        int32(1),
		Rhs:        int32(2),
		LhsType:    typesystem.Int,
		RhsType:    typesystem.Int,
		Additive:   true,
		Numeric:    true,
	})
	assert.ErrorIs(t, err, dimension.ErrNoDimensionOperand)
}

func TestEvaluate_UnsupportedNumericType(t *testing.T) {
	e, _ := setup(t)
	op := Operation{
		ResultType: money,
		Lhs:        int32(1),
		Rhs:        int32(2),
		LhsType:    money,
		RhsType:    money,
		Additive:   true,
		Numeric:    true,
	}

	_, err := e.Evaluate(op)
	var unt *UnsupportedNumericTypeError
	require.ErrorAs(t, err, &unt)
	assert.Equal(t, typesystem.Type(money), unt.Type)
	assert.ErrorIs(t, err, ErrUnsupportedNumericType)
}

func TestEvaluate_DynamicUnsigned(t *testing.T) {
	e, _ := setup(t)
	tests := []struct {
		name string
		lhs  any
		rhs  any
		want any
	}{
		{"byte widens to short", uint8(1), int32(2), int32(3)},
		{"byte with byte", uint8(200), uint8(100), int16(300)},
		{"uint32 widens to long", uint32(math.MaxUint32), int32(1), int64(math.MaxUint32 + 1)},
		{"uint64 widens to big int", uint64(math.MaxUint64), int32(1), new(big.Int).Lsh(big.NewInt(1), 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(Operation{
				ResultType: typesystem.Dynamic,
				Lhs:        tt.lhs,
				Rhs:        tt.rhs,
				LhsType:    typesystem.Dynamic,
				RhsType:    typesystem.Dynamic,
				Additive:   true,
			})
			require.NoError(t, err)
			assertNumber(t, tt.want, got)
		})
	}
}

func TestEvaluate_DynamicResolution(t *testing.T) {
	e, _ := setup(t)

	got, err := e.Evaluate(Operation{
		ResultType: typesystem.Dynamic,
		Lhs:        int32(3),
		Rhs:        int64(4),
		LhsType:    typesystem.Dynamic,
		RhsType:    typesystem.Long,
		Additive:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), got, "runtime types promote to Long")

	got, err = e.Evaluate(Operation{
		ResultType: typesystem.Dynamic,
		Lhs:        "n=",
		Rhs:        int32(4),
		LhsType:    typesystem.Dynamic,
		RhsType:    typesystem.Dynamic,
		Additive:   true,
		Numeric:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, "n=4", got, "numeric flag is recomputed from the runtime result type")

	_, err = e.Evaluate(Operation{
		ResultType: typesystem.Dynamic,
		Lhs:        nil,
		Rhs:        int32(4),
		LhsType:    typesystem.Dynamic,
		RhsType:    typesystem.Int,
		Additive:   true,
	})
	assert.ErrorIs(t, err, ErrInvalidOperand)
}

func TestEvaluate_DynamicOverload(t *testing.T) {
	e, reg := setup(t)
	var gotArgs []any
	_, err := reg.DefineOperator(money, '+', typesystem.Long, money, func(recv any, args ...any) (any, error) {
		gotArgs = args
		return moneyValue{cents: recv.(moneyValue).cents + args[0].(int64)}, nil
	})
	require.NoError(t, err)

	got, err := e.Evaluate(Operation{
		ResultType: typesystem.Dynamic,
		Lhs:        moneyValue{cents: 100},
		Rhs:        int64(25),
		LhsType:    typesystem.Dynamic,
		RhsType:    typesystem.Long,
		Additive:   true,
		Numeric:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, moneyValue{cents: 125}, got)
	assert.Equal(t, []any{int64(25)}, gotArgs)

	// Statically typed operands never consult overloads.
	_, err = e.Evaluate(Operation{
		ResultType: money,
		Lhs:        moneyValue{cents: 100},
		Rhs:        int64(25),
		LhsType:    money,
		RhsType:    typesystem.Long,
		Additive:   true,
		Numeric:    true,
	})
	assert.ErrorIs(t, err, ErrUnsupportedNumericType)
}

func TestEvaluate_CollaboratorErrorsPropagate(t *testing.T) {
	e, reg := setup(t)
	boom := errors.New("boom")
	_, err := reg.DefineOperator(money, '-', typesystem.Long, money, func(any, ...any) (any, error) {
		return nil, boom
	})
	require.NoError(t, err)

	dyn := Operation{
		ResultType: typesystem.Dynamic,
		Lhs:        moneyValue{},
		Rhs:        int64(1),
		LhsType:    typesystem.Dynamic,
		RhsType:    typesystem.Long,
	}
	_, err = e.Evaluate(dyn)
	assert.Same(t, boom, err)

	dyn.Rhs, dyn.RhsType = true, typesystem.Dynamic
	_, err = e.Evaluate(dyn)
	var uoe *typesystem.UnsupportedOperatorError
	assert.ErrorAs(t, err, &uoe)

	_, err = e.Evaluate(intOp("x", int32(1), true))
	var ce *coercion.ConversionError
	assert.ErrorAs(t, err, &ce)
}

func TestApply(t *testing.T) {
	e, reg := setup(t)
	_, err := reg.DefineOperator(money, '+', money, money, func(recv any, args ...any) (any, error) {
		return moneyValue{cents: recv.(moneyValue).cents + args[0].(moneyValue).cents}, nil
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		sym      string
		lhs      any
		lhsType  typesystem.Type
		rhs      any
		rhsType  typesystem.Type
		want     any
		checkErr func(error) bool
	}{
		{"int", "+", int32(2), typesystem.Int, int32(3), typesystem.Int, int32(5), nil},
		{"compound", "-=", int64(2), typesystem.Long, int32(3), typesystem.Int, int64(-1), nil},
		{"promotes", "+", int32(1), typesystem.Int, 0.5, typesystem.Double, 1.5, nil},
		{"concat", "+", "x", typesystem.String, int32(1), typesystem.Int, "x1", nil},
		{"null safe", "?+", nil, typesystem.Int, int32(1), typesystem.Int, nil, nil},
		{"null safe subtract", "?-", int32(1), typesystem.Int, nil, typesystem.Nil, nil, nil},
		{"static overload", "+", moneyValue{1}, money, moneyValue{2}, money, moneyValue{3}, nil},
		{"dynamic", "+", int8(1), typesystem.Dynamic, int8(2), typesystem.Dynamic, int8(3), nil},
		{"null", "+", nil, typesystem.Int, int32(1), typesystem.Int, nil,
			func(err error) bool { return errors.Is(err, ErrInvalidOperand) }},
		{"unknown operator", "*", int32(1), typesystem.Int, int32(1), typesystem.Int, nil,
			func(err error) bool { return errors.Is(err, ErrUnknownOperator) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Apply(tt.sym, tt.lhs, tt.lhsType, tt.rhs, tt.rhsType)
			if tt.checkErr != nil {
				assert.True(t, tt.checkErr(err), "unexpected error %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		sym                string
		additive, nullSafe bool
	}{
		{"+", true, false},
		{"+=", true, false},
		{"-", false, false},
		{"-=", false, false},
		{"?+", true, true},
		{"?-", false, true},
	}
	for _, tt := range tests {
		additive, nullSafe, err := ParseOperator(tt.sym)
		require.NoError(t, err)
		assert.Equal(t, tt.additive, additive, tt.sym)
		assert.Equal(t, tt.nullSafe, nullSafe, tt.sym)
	}

	_, _, err := ParseOperator("/")
	assert.ErrorIs(t, err, ErrUnknownOperator)
}
