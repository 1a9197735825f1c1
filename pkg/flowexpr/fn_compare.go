package flowexpr

import (
	"cmp"
	"fmt"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func compareBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("==", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			return value.Bool(value.Equal(args[0], args[1]))
		}, nil), ValidateBinary), "equals"),
		fn(NewEvaluator("!=", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			return value.Bool(!value.Equal(args[0], args[1]))
		}, nil), ValidateBinary), "notEquals"),
		fn(ordering("<", func(c int) bool { return c < 0 }), "less"),
		fn(ordering("<=", func(c int) bool { return c <= 0 }), "lessOrEquals"),
		fn(ordering(">", func(c int) bool { return c > 0 }), "greater"),
		fn(ordering(">=", func(c int) bool { return c >= 0 }), "greaterOrEquals"),
		fn(NewEvaluator("exists", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			return value.Bool(!value.IsMissing(args[0]))
		}, nil), ValidateUnary)),
	}
}

// ordering builds a comparison operator over two numbers or two strings.
func ordering(op string, accept func(int) bool) *Evaluator {
	return NewEvaluator(op, ReturnBoolean, ApplyWithError(func(args []value.Value) (value.Value, error) {
		c, err := compareValues(args[0], args[1])
		if err != nil {
			return nil, fmt.Errorf("operator '%s': %w", op, err)
		}
		return value.Bool(accept(c)), nil
	}, verifyOrderable), ValidateArityAndAnyType(2, 2, ReturnNumber, ReturnString))
}

func verifyOrderable(v value.Value, child *Expression, i int) error {
	if err := VerifyNotNull(v, child, i); err != nil {
		return err
	}
	return VerifyNumberOrString(v, child, i)
}

func compareValues(a, b value.Value) (int, error) {
	if ai, ok := a.(value.Int); ok {
		if bi, ok := b.(value.Int); ok {
			return cmp.Compare(ai, bi), nil
		}
	}
	if fa, ok := value.AsFloat(a); ok {
		if fb, ok := value.AsFloat(b); ok {
			return cmp.Compare(fa, fb), nil
		}
	}
	if sa, ok := a.(value.String); ok {
		if sb, ok := b.(value.String); ok {
			return cmp.Compare(sa, sb), nil
		}
	}
	return 0, fmt.Errorf("%s and %s must both be numbers or both be strings", value.Literal(a), value.Literal(b))
}
