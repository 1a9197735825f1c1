package flowexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func ints(ns ...int64) value.Array {
	out := make(value.Array, len(ns))
	for i, n := range ns {
		out[i] = value.Int(n)
	}
	return out
}

func TestCollection_Functions(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "array literal", expr: "[1, 'a', null]", want: value.Array{value.Int(1), value.String("a"), value.Null}},
		{name: "createArray", expr: "createArray(1, 2)", want: ints(1, 2)},
		{name: "createArray empty", expr: "createArray()", want: value.Array{}},
		{name: "count array", expr: "count([1, 2, 3])", want: value.Int(3)},
		{name: "count string", expr: "count('héllo')", want: value.Int(5)},
		{name: "count object", expr: "count(user)", want: value.Int(4)},
		{name: "count missing", expr: "count(missing)", errMsg: "must be a string, list or object"},
		{name: "contains array", expr: "contains([1, 2], 2.0)", want: value.Bool(true)},
		{name: "contains string", expr: "contains('abc', 'b')", want: value.Bool(true)},
		{name: "contains object key", expr: "contains(user, 'age')", want: value.Bool(true)},
		{name: "contains nothing", expr: "contains(1, 1)", want: value.Bool(false)},
		{name: "first", expr: "first(user.tags)", want: value.String("admin")},
		{name: "last string", expr: "last('abc')", want: value.String("c")},
		{name: "first empty", expr: "first([])", want: value.Null},
		{name: "first of number", expr: "first(1)", want: value.Null},
		{name: "join", expr: "join([1, 2, 3], ', ')", want: value.String("1, 2, 3")},
		{name: "join last separator", expr: "join([1, 2, 3], ', ', ' and ')", want: value.String("1, 2 and 3")},
		{name: "join single with last separator", expr: "join(['a'], ', ', ' and ')", want: value.String("a")},
		{name: "join non list", expr: "join(user.name, ',')", errMsg: "is not a list"},
		{name: "empty array", expr: "empty([])", want: value.Bool(true)},
		{name: "empty string", expr: "empty('')", want: value.Bool(true)},
		{name: "empty missing", expr: "empty(missing)", want: value.Bool(true)},
		{name: "not empty", expr: "empty([0])", want: value.Bool(false)},
		{name: "union", expr: "union([1, 2], [2, 3], [3, 1])", want: ints(1, 2, 3)},
		{name: "intersection", expr: "intersection([1, 2, 2, 3], [2, 3, 4])", want: ints(2, 3)},
		{name: "intersection of one", expr: "intersection([1, 1])", want: ints(1)},
		{name: "union of non list", expr: "union([1], user)", errMsg: "is not a list"},
		{name: "take", expr: "take([1, 2, 3], 2)", want: ints(1, 2)},
		{name: "take clamps", expr: "take('héllo', 10)", want: value.String("héllo")},
		{name: "skip", expr: "skip([1, 2, 3], 2)", want: ints(3)},
		{name: "skip string", expr: "skip('héllo', 1)", want: value.String("éllo")},
		{name: "skip everything", expr: "skip([1], 5)", want: value.Array{}},
		{name: "take negative", expr: "take([1], -1)", errMsg: "must be a non-negative integer"},
		{name: "take from number", expr: "take(user.age, 1)", errMsg: "is not a string or list"},
		{name: "union of literal", expr: "union('a')", invalid: true},
	})
}

func TestCollection_Lambdas(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "foreach", expr: "foreach([1, 2, 3], x => x * 2)", want: ints(2, 4, 6)},
		{name: "select alias", expr: "select(items, x => x.name)", want: strs("pen", "book")},
		{name: "explicit iterator form", expr: "foreach(items, x, x.price)", want: ints(2, 12)},
		{name: "outer scope visible", expr: "foreach([1, 2], x => x + offset)", want: ints(11, 12)},
		{name: "iterator shadows memory", expr: "foreach([5], offset => offset)", want: ints(5)},
		{name: "nested lambdas", expr: "foreach([1, 2], x => foreach([10], y => x + y))", want: value.Array{ints(11), ints(12)}},
		{name: "where", expr: "where([1, 2, 3, 4], x => x % 2 == 0)", want: ints(2, 4)},
		{name: "where none", expr: "where([1, 3], x => x > 5)", want: value.Array{}},
		{name: "where object", expr: "where({a: 1, b: 2}, p => p.value > 1)", want: value.Object{"b": value.Int(2)}},
		{name: "foreach object", expr: "foreach({b: 2, a: 1}, p => p.key)", want: strs("a", "b")},
		{name: "any", expr: "any(items, x => x.price > 10)", want: value.Bool(true)},
		{name: "any empty", expr: "any([], x => true)", want: value.Bool(false)},
		{name: "all", expr: "all([1, 2], x => x > 1)", want: value.Bool(false)},
		{name: "all empty", expr: "all([], x => false)", want: value.Bool(true)},
		{name: "body error", expr: "foreach([1, 0], x => 1 / x)", errMsg: "cannot divide by zero"},
		{name: "not a collection", expr: "foreach(user.name, x => x)", errMsg: "is not a collection"},
		{name: "iterator must be a name", expr: "foreach(items, 1, 2)", invalid: true, errMsg: "is not an identifier"},
		{name: "iterator must be bare", expr: "foreach(items, a.b, 2)", invalid: true, errMsg: "is not an identifier"},
		{name: "lambda arity", expr: "where(items)", invalid: true, errMsg: "should have 3 children"},
	})
}

func TestCollection_LambdaStopsEarly(t *testing.T) {
	table := panicking(t)
	expr, err := Parse("any([1, 2], x => if(x == 1, true, boom()))", table.Lookup)
	require.NoError(t, err)

	res := Evaluate(expr, nil, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, value.Bool(true), res.Value)
}

func TestCollection_LambdaLeavesMemoryUntouched(t *testing.T) {
	mem := memory.New(map[string]any{"x": "outer"})
	res := Evaluate(MustParse("foreach([1], x => x) & x"), mem, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, value.String("[1]outer"), res.Value)

	v, err := mem.GetValue("x")
	require.NoError(t, err)
	assert.Equal(t, value.String("outer"), v)
}
