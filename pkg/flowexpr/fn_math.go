package flowexpr

import (
	"errors"
	"fmt"
	"math"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

var errDivideByZero = errors.New("cannot divide by zero")

// maxRange bounds the length of range() results.
const maxRange = 1 << 20

func mathBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("+", ReturnNumber|ReturnString,
			ApplySequenceWithError(addValues, nil),
			ValidateArityAndAnyType(2, MaxArity, ReturnNumber, ReturnString)), "add"),
		fn(NewEvaluator("-", ReturnNumber|ReturnString,
			ApplySequenceWithError(subtractValues, nil),
			ValidateArityAndAnyType(2, MaxArity, ReturnNumber, ReturnString)), "sub"),
		fn(NewEvaluator("*", ReturnNumber,
			ApplySequenceWithError(multiplyValues, VerifyNumber),
			ValidateTwoOrMoreNumbers), "mul"),
		fn(NewEvaluator("/", ReturnNumber,
			ApplySequenceWithError(divideValues, VerifyNumber),
			ValidateTwoOrMoreNumbers), "div"),
		fn(NewEvaluator("%", ReturnNumber,
			ApplySequenceWithError(modValues, VerifyNumber),
			ValidateBinaryNumber), "mod"),
		fn(NewEvaluator("^", ReturnNumber,
			ApplySequenceWithError(powValues, VerifyNumber),
			ValidateBinaryNumber), "exp"),
		fn(NewEvaluator("min", ReturnNumber, extremum(func(a, b float64) bool { return a < b }),
			ValidateArityAndAnyType(1, MaxArity, ReturnNumber, ReturnArray))),
		fn(NewEvaluator("max", ReturnNumber, extremum(func(a, b float64) bool { return a > b }),
			ValidateArityAndAnyType(1, MaxArity, ReturnNumber, ReturnArray))),
		fn(NewEvaluator("sum", ReturnNumber, ApplyWithError(sum, VerifyList), ValidateUnaryArray)),
		fn(NewEvaluator("average", ReturnNumber, ApplyWithError(average, VerifyList), ValidateUnaryArray)),
		fn(NewEvaluator("abs", ReturnNumber, Apply(abs, VerifyNumber), ValidateUnaryNumber)),
		fn(NewEvaluator("floor", ReturnNumber, Apply(func(args []value.Value) value.Value {
			return roundWith(args[0], math.Floor)
		}, VerifyNumber), ValidateUnaryNumber)),
		fn(NewEvaluator("ceiling", ReturnNumber, Apply(func(args []value.Value) value.Value {
			return roundWith(args[0], math.Ceil)
		}, VerifyNumber), ValidateUnaryNumber)),
		fn(NewEvaluator("round", ReturnNumber, ApplyWithError(round, VerifyNumber),
			ValidateOrder([]ReturnType{ReturnNumber}, ReturnNumber))),
		fn(NewEvaluator("range", ReturnArray, ApplyWithError(numberRange, VerifyInteger),
			ValidateBinaryNumber)),
	}
}

// numericPair classifies two operands. ints is true when both are Int.
func numericPair(a, b value.Value) (x, y int64, fx, fy float64, ints, ok bool) {
	ai, aInt := a.(value.Int)
	bi, bInt := b.(value.Int)
	if aInt && bInt {
		return int64(ai), int64(bi), 0, 0, true, true
	}
	fx, okA := value.AsFloat(a)
	fy, okB := value.AsFloat(b)
	return 0, 0, fx, fy, false, okA && okB
}

// missingNumber reports the error for a missing operand next to a number.
func missingNumber(op string, a, b value.Value) error {
	if (value.IsMissing(a) && value.IsNumber(b)) || (value.IsNumber(a) && value.IsMissing(b)) {
		return fmt.Errorf("operator '%s' cannot be applied to operands of type 'number' and null", op)
	}
	return nil
}

func addValues(a, b value.Value) (value.Value, error) {
	if err := missingNumber("+", a, b); err != nil {
		return nil, err
	}
	x, y, fx, fy, ints, ok := numericPair(a, b)
	switch {
	case ints:
		s := x + y
		if (s > x) != (y > 0) {
			return value.Float(float64(x) + float64(y)), nil
		}
		return value.Int(s), nil
	case ok:
		return value.Float(fx + fy), nil
	}
	return value.String(value.Text(a) + value.Text(b)), nil
}

func subtractValues(a, b value.Value) (value.Value, error) {
	if err := missingNumber("-", a, b); err != nil {
		return nil, err
	}
	x, y, fx, fy, ints, ok := numericPair(a, b)
	switch {
	case ints:
		d := x - y
		if (d < x) != (y > 0) {
			return value.Float(float64(x) - float64(y)), nil
		}
		return value.Int(d), nil
	case ok:
		return value.Float(fx - fy), nil
	}
	return value.String(value.Text(a) + value.Text(b)), nil
}

func multiplyValues(a, b value.Value) (value.Value, error) {
	x, y, fx, fy, ints, _ := numericPair(a, b)
	if !ints {
		return value.Float(fx * fy), nil
	}
	p := x * y
	if x != 0 && (p/x != y || (x == -1 && y == math.MinInt64)) {
		return value.Float(float64(x) * float64(y)), nil
	}
	return value.Int(p), nil
}

// divideValues performs integer division when both operands are Int.
func divideValues(a, b value.Value) (value.Value, error) {
	x, y, fx, fy, ints, _ := numericPair(a, b)
	if !ints {
		if fy == 0 {
			return nil, errDivideByZero
		}
		return value.Float(fx / fy), nil
	}
	switch {
	case y == 0:
		return nil, errDivideByZero
	case x == math.MinInt64 && y == -1:
		return value.Float(-float64(x)), nil
	}
	return value.Int(x / y), nil
}

func modValues(a, b value.Value) (value.Value, error) {
	x, y, fx, fy, ints, _ := numericPair(a, b)
	if !ints {
		if fy == 0 {
			return nil, errDivideByZero
		}
		return value.Float(math.Mod(fx, fy)), nil
	}
	switch {
	case y == 0:
		return nil, errDivideByZero
	case y == -1:
		return value.Int(0), nil
	}
	return value.Int(x % y), nil
}

func powValues(a, b value.Value) (value.Value, error) {
	x, _ := value.AsFloat(a)
	y, _ := value.AsFloat(b)
	return value.Float(math.Pow(x, y)), nil
}

// extremum returns the smallest or largest argument, or of the single array
// argument, keeping its original numeric kind.
func extremum(better func(a, b float64) bool) EvalFunc {
	return ApplyWithError(func(args []value.Value) (value.Value, error) {
		if len(args) == 1 {
			if arr, ok := args[0].(value.Array); ok {
				args = arr
			}
		}
		if len(args) == 0 {
			return nil, errors.New("expected at least one number")
		}
		var best value.Value
		var bestF float64
		for _, v := range args {
			f, ok := value.AsFloat(v)
			if !ok {
				return nil, fmt.Errorf("%s is not a number", value.Literal(v))
			}
			if best == nil || better(f, bestF) {
				best, bestF = v, f
			}
		}
		return best, nil
	}, nil)
}

func sum(args []value.Value) (value.Value, error) {
	var acc value.Value = value.Int(0)
	for _, v := range args[0].(value.Array) {
		if !value.IsNumber(v) {
			return nil, fmt.Errorf("%s is not a number", value.Literal(v))
		}
		acc, _ = addValues(acc, v)
	}
	return acc, nil
}

func average(args []value.Value) (value.Value, error) {
	arr := args[0].(value.Array)
	if len(arr) == 0 {
		return nil, errors.New("cannot average an empty list")
	}
	total, err := sum(args)
	if err != nil {
		return nil, err
	}
	f, _ := value.AsFloat(total)
	return value.Float(f / float64(len(arr))), nil
}

func abs(args []value.Value) value.Value {
	switch v := args[0].(type) {
	case value.Int:
		switch {
		case v == math.MinInt64:
			return value.Float(-float64(v))
		case v < 0:
			return -v
		}
		return v
	case value.Float:
		return value.Float(math.Abs(float64(v)))
	}
	return args[0]
}

func roundWith(v value.Value, op func(float64) float64) value.Value {
	if f, ok := v.(value.Float); ok {
		return value.Float(op(float64(f)))
	}
	return v
}

// round rounds half to even, optionally to a number of fractional digits.
func round(args []value.Value) (value.Value, error) {
	digits := int64(0)
	if len(args) == 2 {
		d, ok := value.AsInt(args[1])
		if !ok || d < 0 || d > 15 {
			return nil, fmt.Errorf("the number of digits %s must be an integer between 0 and 15", value.Literal(args[1]))
		}
		digits = d
	}
	f, ok := args[0].(value.Float)
	if !ok {
		return args[0], nil
	}
	if digits == 0 {
		return value.Float(math.RoundToEven(float64(f))), nil
	}
	scale := math.Pow(10, float64(digits))
	return value.Float(math.RoundToEven(float64(f)*scale) / scale), nil
}

// numberRange returns count consecutive integers starting at start.
func numberRange(args []value.Value) (value.Value, error) {
	start, _ := value.AsInt(args[0])
	count, _ := value.AsInt(args[1])
	if count <= 0 || count > maxRange {
		return nil, fmt.Errorf("the count %d must be between 1 and %d", count, maxRange)
	}
	out := make(value.Array, count)
	for i := range out {
		out[i] = value.Int(start + int64(i))
	}
	return out, nil
}
