package flowexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func TestLogic(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "and operator", expr: "true && true", want: value.Bool(true)},
		{name: "and single child", expr: "and(1)", want: value.Bool(true)},
		{name: "and swallows errors", expr: "true && 1 / 0 > 0", want: value.Bool(false)},
		{name: "or operator", expr: "false || 1", want: value.Bool(true)},
		{name: "or swallows errors", expr: "false || 1 / 0 > 0", want: value.Bool(false)},
		{name: "or short circuits", expr: "1 / 0 > 0 || true", want: value.Bool(true)},
		{name: "or alias", expr: "or(false, '', 0, null)", want: value.Bool(false)},
		{name: "not operator", expr: "!0", want: value.Bool(true)},
		{name: "not string", expr: "!'x'", want: value.Bool(false)},
		{name: "not missing", expr: "!missing", want: value.Bool(true)},
		{name: "not error", expr: "!(1 / 0)", want: value.Bool(true)},
		{name: "empty array is truthy", expr: "not([])", want: value.Bool(false)},
		{name: "memory truthiness", expr: "user.age > 18 && contains(user.tags, 'admin')", want: value.Bool(true)},
		{name: "if true branch", expr: "if(1 > 0, 'yes', 1 / 0)", want: value.String("yes")},
		{name: "if false branch", expr: "if(0, 1 / 0, 'no')", want: value.String("no")},
		{name: "if condition error is false", expr: "if(1 / 0, 'yes', 'no')", want: value.String("no")},
		{name: "if branch error surfaces", expr: "if(true, 1 / 0, 'no')", errMsg: "cannot divide by zero"},
		{name: "or without children", expr: "or()", invalid: true, errMsg: "should have at least 1 children"},
		{name: "if arity", expr: "if(true, 1)", invalid: true, errMsg: "should have 3 children"},
	})
}

// panicking evaluates to an evaluator that panics when reached.
func panicking(t *testing.T) *FunctionTable {
	t.Helper()
	boom := NewEvaluator("boom", ReturnAny, func(*Expression, memory.Memory, *Options) Result {
		panic("kaboom")
	}, nil)
	return StandardFunctions().With("boom", boom)
}

func TestLogic_ShortCircuit(t *testing.T) {
	table := panicking(t)

	tests := []struct {
		src  string
		want bool
	}{
		{src: "false && boom()", want: false},
		{src: "true || boom()", want: true},
		{src: "and(0, boom())", want: false},
		{src: "if(true, 1, boom())", want: true},
		// A panic inside a child is an error, and errors are false.
		{src: "boom() || true", want: true},
		{src: "!boom()", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			expr, err := Parse(tt.src, table.Lookup)
			require.NoError(t, err)
			res := Evaluate(expr, nil, nil)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, value.IsTruthy(res.Value))
		})
	}
}

func TestLogic_SuppressesNullSubstitution(t *testing.T) {
	opts := &Options{
		Locale:           "en-US",
		NullSubstitution: func(string) value.Value { return value.String("substituted") },
	}

	tests := []struct {
		src  string
		want value.Value
	}{
		{src: "missing", want: value.String("substituted")},
		{src: "!missing", want: value.Bool(true)},
		{src: "missing && true", want: value.Bool(false)},
		{src: "missing || false", want: value.Bool(false)},
		{src: "if(missing, 'yes', 'no')", want: value.String("no")},
		{src: "if(false, 1, missing)", want: value.String("substituted")},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res := mustEval(t, tt.src, nil, opts)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Value)
		})
	}
}

func TestCompare(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "less", expr: "1 < 2", want: value.Bool(true)},
		{name: "less or equal", expr: "2 <= 2", want: value.Bool(true)},
		{name: "greater", expr: "1.5 > 1", want: value.Bool(true)},
		{name: "greater or equal", expr: "3 >= 4", want: value.Bool(false)},
		{name: "strings", expr: "'a' < 'b'", want: value.Bool(true)},
		{name: "aliases", expr: "less(1, 2) && lessOrEquals(1, 1) && greater(2, 1) && greaterOrEquals(2, 2)", want: value.Bool(true)},
		{name: "int equals float", expr: "1 == 1.0", want: value.Bool(true)},
		{name: "not equal", expr: "'a' != 'b'", want: value.Bool(true)},
		{name: "angle not equal", expr: "1 <> 2", want: value.Bool(true)},
		{name: "equals alias", expr: "equals([1, 2], [1, 2])", want: value.Bool(true)},
		{name: "notEquals alias", expr: "notEquals({a: 1}, {a: 1})", want: value.Bool(false)},
		{name: "missing equals null", expr: "missing == null", want: value.Bool(true)},
		{name: "memory", expr: "user.name == 'ada'", want: value.Bool(true)},
		{name: "exists", expr: "exists(user.name)", want: value.Bool(true)},
		{name: "exists null", expr: "exists(user.email)", want: value.Bool(false)},
		{name: "mixed kinds", expr: "1 < 'a'", errMsg: "operator '<': 1 and 'a' must both be numbers or both be strings"},
		{name: "null operand", expr: "missing < 1", errMsg: "missing is null"},
		{name: "array operand", expr: "json('[1]') >= 2", errMsg: "json('[1]') is neither a number nor a string"},
		{name: "object operand", expr: "1 <= user", errMsg: "user is neither a number nor a string"},
		{name: "array literal", expr: "[1] < 2", invalid: true},
	})
}
