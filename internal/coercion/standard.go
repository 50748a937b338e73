package coercion

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"github.com/funvibe/typecore/internal/config"
)

var maxUint64 = new(big.Int).SetUint64(math.MaxUint64)

// Standard is the default Manager. Its decimal context is only used for
// conversions that cannot be exact, such as a rational with a repeating
// decimal expansion.
type Standard struct {
	ctx *apd.Context
}

var _ Manager = (*Standard)(nil)

// NewStandard creates a manager that rounds inexact decimal conversions to
// precision significant digits. Zero selects config.DefaultDecimalPrecision.
func NewStandard(precision uint32) *Standard {
	if precision == 0 {
		precision = config.DefaultDecimalPrecision
	}
	return &Standard{ctx: apd.BaseContext.WithPrecision(precision)}
}

// Precision returns the number of significant digits kept by inexact
// decimal conversions.
func (s *Standard) Precision() uint32 {
	return s.ctx.Precision
}

// normalize reduces v to one of int64, uint64, float64, *big.Int, *big.Rat,
// *apd.Decimal or string.
func normalize(v any) (any, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return uint64(x), true
	case uint8:
		return uint64(x), true
	case uint16:
		return uint64(x), true
	case uint32:
		return uint64(x), true
	case uint64:
		return x, true
	case uintptr:
		return uint64(x), true
	case float32:
		return float64(x), true
	case float64:
		return x, true
	case bool:
		if x {
			return int64(1), true
		}
		return int64(0), true
	case *big.Int:
		return x, x != nil
	case *big.Rat:
		return x, x != nil
	case *apd.Decimal:
		return x, x != nil
	case string:
		return x, true
	case Number:
		return normalize(x.ToNumber())
	}
	return nil, false
}

func (s *Standard) MakeIntegerFrom(v any) (int32, error) {
	n, ok := normalize(v)
	if !ok {
		return 0, NewConversionError(v, "Int", "")
	}
	if f, isFloat := n.(float64); isFloat {
		return saturate32(f), nil
	}
	l, err := s.MakeLongFrom(n)
	if err != nil {
		return 0, NewConversionError(v, "Int", err.Error())
	}
	return int32(l), nil
}

func (s *Standard) MakeLongFrom(v any) (int64, error) {
	n, ok := normalize(v)
	if !ok {
		return 0, NewConversionError(v, "Long", "")
	}
	switch x := n.(type) {
	case int64:
		return x, nil
	case uint64:
		return int64(x), nil
	case float64:
		return saturate64(x), nil
	}
	bi, err := s.MakeBigIntegerFrom(n)
	if err != nil {
		return 0, NewConversionError(v, "Long", err.Error())
	}
	return low64(bi), nil
}

func (s *Standard) MakeFloatFrom(v any) (float32, error) {
	if f, ok := v.(float32); ok {
		return f, nil
	}
	d, err := s.MakeDoubleFrom(v)
	if err != nil {
		return 0, NewConversionError(v, "Float", err.Error())
	}
	return float32(d), nil
}

func (s *Standard) MakeDoubleFrom(v any) (float64, error) {
	n, ok := normalize(v)
	if !ok {
		return 0, NewConversionError(v, "Double", "")
	}
	switch x := n.(type) {
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, nil
	case *big.Rat:
		f, _ := x.Float64()
		return f, nil
	case *apd.Decimal:
		f, err := x.Float64()
		if err != nil {
			return 0, NewConversionError(v, "Double", err.Error())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, NewConversionError(v, "Double", "not a number")
		}
		return f, nil
	}
	return 0, NewConversionError(v, "Double", "")
}

func (s *Standard) MakeBigIntegerFrom(v any) (*big.Int, error) {
	n, ok := normalize(v)
	if !ok {
		return nil, NewConversionError(v, "BigInteger", "")
	}
	switch x := n.(type) {
	case int64:
		return big.NewInt(x), nil
	case uint64:
		return new(big.Int).SetUint64(x), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, NewConversionError(v, "BigInteger", "not finite")
		}
		i, _ := big.NewFloat(x).Int(nil)
		return i, nil
	case *big.Int:
		return new(big.Int).Set(x), nil
	case *big.Rat:
		return new(big.Int).Quo(x.Num(), x.Denom()), nil
	case *apd.Decimal:
		return integralPart(v, x)
	case string:
		d, err := parseDecimal(v, x, "BigInteger")
		if err != nil {
			return nil, err
		}
		return integralPart(v, d)
	}
	return nil, NewConversionError(v, "BigInteger", "")
}

func (s *Standard) MakeBigDecimalFrom(v any) (*apd.Decimal, error) {
	n, ok := normalize(v)
	if !ok {
		return nil, NewConversionError(v, "BigDecimal", "")
	}
	switch x := n.(type) {
	case int64:
		return apd.New(x, 0), nil
	case uint64:
		return decimalFromBigInt(new(big.Int).SetUint64(x)), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, NewConversionError(v, "BigDecimal", "not finite")
		}
		d, err := new(apd.Decimal).SetFloat64(x)
		if err != nil {
			return nil, NewConversionError(v, "BigDecimal", err.Error())
		}
		return d, nil
	case *big.Int:
		return decimalFromBigInt(x), nil
	case *big.Rat:
		if x.IsInt() {
			return decimalFromBigInt(x.Num()), nil
		}
		var d apd.Decimal
		cond, err := s.ctx.Quo(&d, decimalFromBigInt(x.Num()), decimalFromBigInt(x.Denom()))
		if err != nil {
			return nil, NewConversionError(v, "BigDecimal", err.Error())
		}
		if !cond.Inexact() {
			// Exact quotients come back padded to the context precision.
			d.Reduce(&d)
		}
		return &d, nil
	case *apd.Decimal:
		return new(apd.Decimal).Set(x), nil
	case string:
		return parseDecimal(v, x, "BigDecimal")
	}
	return nil, NewConversionError(v, "BigDecimal", "")
}

func (s *Standard) MakeRationalFrom(v any) (*big.Rat, error) {
	n, ok := normalize(v)
	if !ok {
		return nil, NewConversionError(v, "Rational", "")
	}
	switch x := n.(type) {
	case int64:
		return new(big.Rat).SetInt64(x), nil
	case uint64:
		return new(big.Rat).SetInt(new(big.Int).SetUint64(x)), nil
	case float64:
		r := new(big.Rat).SetFloat64(x)
		if r == nil {
			return nil, NewConversionError(v, "Rational", "not finite")
		}
		return r, nil
	case *big.Int:
		return new(big.Rat).SetInt(x), nil
	case *big.Rat:
		return new(big.Rat).Set(x), nil
	case *apd.Decimal:
		if x.Form != apd.Finite {
			return nil, NewConversionError(v, "Rational", "not finite")
		}
		r, ok := new(big.Rat).SetString(x.Text('f'))
		if !ok {
			return nil, NewConversionError(v, "Rational", "")
		}
		return r, nil
	case string:
		r, ok := new(big.Rat).SetString(x)
		if !ok {
			return nil, NewConversionError(v, "Rational", "not a number")
		}
		return r, nil
	}
	return nil, NewConversionError(v, "Rational", "")
}

func (s *Standard) MakeStringFrom(v any) string {
	switch x := v.(type) {
	case nil:
		return config.NullToken
	case string:
		return x
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *big.Int:
		if x == nil {
			return config.NullToken
		}
		return x.String()
	case *big.Rat:
		if x == nil {
			return config.NullToken
		}
		return x.RatString()
	case *apd.Decimal:
		if x == nil {
			return config.NullToken
		}
		return x.String()
	}
	if isNilRef(v) {
		return config.NullToken
	}
	if x, ok := v.(fmt.Stringer); ok {
		return x.String()
	}
	return fmt.Sprint(v)
}

func parseDecimal(orig any, s, target string) (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, NewConversionError(orig, target, "not a number")
	}
	return d, nil
}

func integralPart(orig any, d *apd.Decimal) (*big.Int, error) {
	if d.Form != apd.Finite {
		return nil, NewConversionError(orig, "BigInteger", "not finite")
	}
	var integ, frac apd.Decimal
	d.Modf(&integ, &frac)
	i, ok := new(big.Int).SetString(integ.Text('f'), 10)
	if !ok {
		return nil, NewConversionError(orig, "BigInteger", "")
	}
	return i, nil
}

func decimalFromBigInt(x *big.Int) *apd.Decimal {
	return apd.NewWithBigInt(new(apd.BigInt).SetMathBigInt(x), 0)
}

// low64 keeps the low 64 bits of x in two's complement.
func low64(x *big.Int) int64 {
	return int64(new(big.Int).And(x, maxUint64).Uint64())
}

func saturate64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func saturate32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// isNilRef reports whether v holds a typed nil reference.
func isNilRef(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
