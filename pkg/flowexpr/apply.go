package flowexpr

import (
	"fmt"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// VerifyFunc checks an evaluated child value at runtime. child is the
// expression that produced v and index its position.
type VerifyFunc func(v value.Value, child *Expression, index int) error

// EvaluateChildren evaluates every child left to right. The first child
// error, or the first verify failure, stops evaluation and is returned.
func EvaluateChildren(e *Expression, mem memory.Memory, opts *Options, verify VerifyFunc) ([]value.Value, error) {
	args := make([]value.Value, len(e.children))
	for i, c := range e.children {
		v, err := c.TryEvaluate(mem, opts).Unwrap()
		if err != nil {
			return nil, err
		}
		if verify != nil {
			if err := verify(v, c, i); err != nil {
				return nil, err
			}
		}
		args[i] = v
	}
	return args, nil
}

// Apply builds an EvalFunc from a function that cannot fail.
func Apply(fn func(args []value.Value) value.Value, verify VerifyFunc) EvalFunc {
	return func(e *Expression, mem memory.Memory, opts *Options) Result {
		args, err := EvaluateChildren(e, mem, opts, verify)
		if err != nil {
			return FailErr(err)
		}
		return Ok(fn(args))
	}
}

// ApplyWithError builds an EvalFunc from a function that may fail.
func ApplyWithError(fn func(args []value.Value) (value.Value, error), verify VerifyFunc) EvalFunc {
	return ApplyWithOptions(func(args []value.Value, _ *Options) (value.Value, error) {
		return fn(args)
	}, verify)
}

// ApplyWithOptions builds an EvalFunc from a function that also needs the
// evaluation options, e.g. for the locale.
func ApplyWithOptions(fn func(args []value.Value, opts *Options) (value.Value, error), verify VerifyFunc) EvalFunc {
	return func(e *Expression, mem memory.Memory, opts *Options) Result {
		args, err := EvaluateChildren(e, mem, opts, verify)
		if err != nil {
			return FailErr(err)
		}
		v, err := fn(args, opts)
		if err != nil {
			return FailErr(err)
		}
		return Ok(v)
	}
}

// ApplySequenceWithError folds the evaluated children pairwise, left to
// right: the first argument seeds the accumulator and each combine result
// replaces it. The first error stops the fold.
func ApplySequenceWithError(fn func(acc, next value.Value) (value.Value, error), verify VerifyFunc) EvalFunc {
	return ApplyWithError(func(args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return value.Null, nil
		}
		acc := args[0]
		for _, next := range args[1:] {
			var err error
			acc, err = fn(acc, next)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	}, verify)
}

// VerifyNumber requires a number.
func VerifyNumber(v value.Value, child *Expression, _ int) error {
	if !value.IsNumber(v) {
		return fmt.Errorf("%s is not a number", child)
	}
	return nil
}

// VerifyInteger requires an integral number.
func VerifyInteger(v value.Value, child *Expression, _ int) error {
	if !value.IsInteger(v) {
		return fmt.Errorf("%s is not an integer", child)
	}
	return nil
}

// VerifyString requires a string.
func VerifyString(v value.Value, child *Expression, _ int) error {
	if _, ok := v.(value.String); !ok {
		return fmt.Errorf("%s is not a string", child)
	}
	return nil
}

// VerifyStringOrNull requires a string or a missing value.
func VerifyStringOrNull(v value.Value, child *Expression, _ int) error {
	switch v.(type) {
	case value.String, value.Missing:
		return nil
	}
	return fmt.Errorf("%s is neither a string nor null", child)
}

// VerifyNotNull rejects missing values.
func VerifyNotNull(v value.Value, child *Expression, _ int) error {
	if value.IsMissing(v) {
		return fmt.Errorf("%s is null", child)
	}
	return nil
}

// VerifyList requires an array.
func VerifyList(v value.Value, child *Expression, _ int) error {
	if _, ok := v.(value.Array); !ok {
		return fmt.Errorf("%s is not a list", child)
	}
	return nil
}

// VerifyContainer requires a string, array or object.
func VerifyContainer(v value.Value, child *Expression, _ int) error {
	switch v.(type) {
	case value.String, value.Array, value.Object:
		return nil
	}
	return fmt.Errorf("%s must be a string, list or object", child)
}

// VerifyNumberOrString requires a number or a string.
func VerifyNumberOrString(v value.Value, child *Expression, _ int) error {
	if value.IsNumber(v) {
		return nil
	}
	if _, ok := v.(value.String); ok {
		return nil
	}
	return fmt.Errorf("%s is neither a number nor a string", child)
}
