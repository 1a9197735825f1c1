package flowexpr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func convertBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("int", ReturnNumber, ApplyWithError(toInt, nil), ValidateUnary)),
		fn(NewEvaluator("float", ReturnNumber, ApplyWithError(toFloat, nil), ValidateUnary)),
		fn(NewEvaluator("string", ReturnString, Apply(func(args []value.Value) value.Value {
			return value.String(value.Text(args[0]))
		}, nil), ValidateUnary)),
		fn(NewEvaluator("bool", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			return value.Bool(value.IsTruthy(args[0]))
		}, nil), ValidateUnary)),
		typeTest("isString", func(v value.Value) bool { return v.Kind() == value.KindString }),
		typeTest("isInteger", value.IsInteger),
		typeTest("isFloat", func(v value.Value) bool { return value.IsNumber(v) && !value.IsInteger(v) }),
		typeTest("isBoolean", func(v value.Value) bool { return v.Kind() == value.KindBool }),
		typeTest("isArray", func(v value.Value) bool { return v.Kind() == value.KindArray }),
		typeTest("isObject", func(v value.Value) bool { return v.Kind() == value.KindObject }),
		fn(NewEvaluator("coalesce", ReturnAny, Apply(func(args []value.Value) value.Value {
			for _, v := range args {
				if !value.IsMissing(v) {
					return v
				}
			}
			return value.Null
		}, nil), ValidateAtLeastOne)),
	}
}

func typeTest(name string, test func(value.Value) bool) builtin {
	return fn(NewEvaluator(name, ReturnBoolean, Apply(func(args []value.Value) value.Value {
		return value.Bool(test(args[0]))
	}, nil), ValidateUnary))
}

// toInt truncates floats toward zero and parses numeric strings.
func toInt(args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Int:
		return v, nil
	case value.Float:
		return truncate(float64(v), args[0])
	case value.Bool:
		if v {
			return value.Int(1), nil
		}
		return value.Int(0), nil
	case value.String:
		s := strings.TrimSpace(string(v))
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.Int(i), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return truncate(f, args[0])
		}
	}
	return nil, fmt.Errorf("%s can't be converted to an int", value.Literal(args[0]))
}

func truncate(f float64, orig value.Value) (value.Value, error) {
	t := math.Trunc(f)
	if math.IsNaN(t) || t >= math.MaxInt64 || t < math.MinInt64 {
		return nil, fmt.Errorf("%s is out of range for an int", value.Literal(orig))
	}
	return value.Int(int64(t)), nil
}

func toFloat(args []value.Value) (value.Value, error) {
	switch v := args[0].(type) {
	case value.Int:
		return value.Float(v), nil
	case value.Float:
		return v, nil
	case value.String:
		if f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64); err == nil {
			return value.Float(f), nil
		}
	}
	return nil, fmt.Errorf("%s can't be converted to a float", value.Literal(args[0]))
}
