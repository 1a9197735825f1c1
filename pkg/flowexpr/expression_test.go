package flowexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func TestExpression_StringRoundTrip(t *testing.T) {
	sources := []string{
		"1 + 2 * 3",
		"(1 + 2) * 3",
		"-user.age + 7.0 / 2",
		"'it\\'s' & \"a\\\\b\"",
		"!(a && b) || c",
		"foreach(items, x => x.price * 2)",
		"where({a: 1, b: [1, 2]}, p => p.key != 'z')",
		"`hi ${user.name}!`",
		"user.tags[i]",
		"{a: 1}.a",
		"if(exists(user.email), user.email, null)",
		"2 ^ 3 ^ 2",
		"1 <> 2",
		"and(user.age > 30)",
		"or(exists(nope))",
		"!and(true)",
	}
	mem := memory.New(testData())
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			expr, err := Parse(src, nil)
			require.NoError(t, err)

			rendered := expr.String()
			again, err := Parse(rendered, nil)
			require.NoError(t, err, "re-parse %q", rendered)
			assert.Equal(t, rendered, again.String())

			assert.Equal(t, Evaluate(expr, mem, nil), Evaluate(again, mem, nil))
		})
	}
}

func TestExpression_References(t *testing.T) {
	tests := []struct {
		src  string
		want []string
	}{
		{src: "1 + 2", want: nil},
		{src: "user.name + user.name", want: []string{"user.name"}},
		{src: "user.tags[0] & user['first name']", want: []string{"user.tags[0]", "user['first name']"}},
		{src: "a[i]", want: []string{"a", "i"}},
		{src: "user.name + foreach(items, x => x.price + tax)", want: []string{"user.name", "items", "tax"}},
		{src: "foreach(xs, x => foreach(x.ys, y => x.k + y + z))", want: []string{"xs", "z"}},
		{src: "{a: 1}.a", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.src).References())
		})
	}
}

func TestExpression_PanicRecovery(t *testing.T) {
	table := panicking(t)
	expr, err := Parse("1 + boom()", table.Lookup)
	require.NoError(t, err)

	res := Evaluate(expr, nil, nil)
	require.Error(t, res.Err)
	var panicErr *PanicError
	require.ErrorAs(t, res.Err, &panicErr)
	assert.Equal(t, "boom", panicErr.Function)
	assert.Equal(t, "kaboom", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
	assert.Equal(t, "boom panicked: kaboom", panicErr.Error())
}

func TestExpression_Construction(t *testing.T) {
	t.Run("nil evaluator", func(t *testing.T) {
		_, err := NewExpression(nil)
		assert.ErrorIs(t, err, ErrNilEvaluator)
	})

	t.Run("nil child", func(t *testing.T) {
		not, _ := StandardFunctions().Lookup("!")
		_, err := NewExpression(not, nil)
		assert.ErrorIs(t, err, ErrValidation)
		assert.Contains(t, err.Error(), "child 0 is nil")
	})

	t.Run("validator runs once against final children", func(t *testing.T) {
		calls := 0
		ev := NewEvaluator("counted", ReturnNumber, Apply(func([]value.Value) value.Value {
			return value.Int(1)
		}, nil), func(e *Expression) error {
			calls++
			return ValidateBinaryNumber(e)
		})
		_, err := NewExpression(ev, NewConstant(value.Int(1)), NewConstant(value.Int(2)))
		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("plain validator error is wrapped", func(t *testing.T) {
		ev := NewEvaluator("never", ReturnAny, nil, func(*Expression) error {
			return assert.AnError
		})
		_, err := NewExpression(ev)
		var invalid *ValidationError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "never", invalid.Function)
		assert.Equal(t, "never()", invalid.Expression)
		assert.Equal(t, assert.AnError.Error(), invalid.Reason)
	})

	t.Run("children are owned", func(t *testing.T) {
		plus, _ := StandardFunctions().Lookup("+")
		children := []*Expression{NewConstant(value.Int(1)), NewConstant(value.Int(2))}
		expr, err := NewExpression(plus, children...)
		require.NoError(t, err)

		children[0] = NewConstant(value.Int(100))
		got := expr.Children()
		got[1] = nil

		assert.Equal(t, "(1 + 2)", expr.String())
		assert.NotNil(t, expr.Child(1))
		assert.Nil(t, expr.Child(2))
		assert.Nil(t, expr.Child(-1))
	})

	t.Run("validate tree", func(t *testing.T) {
		expr := MustParse("add(1, mul(2, 3))")
		assert.NoError(t, expr.ValidateTree())
		assert.Equal(t, "+", expr.Evaluator().Type)
	})
}

func TestExpression_Accessors(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "path", expr: "user.name", want: value.String("ada")},
		{name: "nested index", expr: "user.tags[1]", want: value.String("dev")},
		{name: "bracket key", expr: "user['name']", want: value.String("ada")},
		{name: "dynamic index", expr: "user.tags[i]", want: value.String("dev")},
		{name: "computed key", expr: "user['na' & 'me']", want: value.String("ada")},
		{name: "array of objects", expr: "items[1].name", want: value.String("book")},
		{name: "missing path", expr: "user.missing.deep", want: value.Null},
		{name: "index past end of memory", expr: "user.tags[9]", errMsg: "9 index out of range for user.tags"},
		{name: "negative memory index", expr: "user.tags[-1]", errMsg: "-1 index out of range"},
		{name: "dynamic memory index out of range", expr: "user.tags[i + 8]", errMsg: "9 index out of range for user.tags"},
		{name: "string key into memory array", expr: "user.tags['x']", errMsg: "could not coerce 'x' to an int"},
		{name: "index into memory string", expr: "user.name[0]", errMsg: "user.name is not an array or object"},
		{name: "bad index before property", expr: "items[5].name", errMsg: "5 index out of range for items"},
		{name: "index below missing parent", expr: "user.missing[3]", want: value.Null},
		{name: "index below missing root", expr: "nope[0].x", want: value.Null},
		{name: "memory object numeric key", expr: "user[0]", want: value.Null},
		{name: "instance property", expr: "{a: {b: 2}}.a.b", want: value.Int(2)},
		{name: "instance index", expr: "[10, 20][1]", want: value.Int(20)},
		{name: "instance object key", expr: "{a: 1}['a']", want: value.Int(1)},
		{name: "instance numeric key", expr: "{'1': 'one'}[1]", want: value.String("one")},
		{name: "property of missing instance", expr: "json('null').a", want: value.Null},
		{name: "index of missing instance", expr: "json('null')[0]", want: value.Null},
		{name: "instance index out of range", expr: "[1, 2][5]", errMsg: "5 index out of range"},
		{name: "instance non integer index", expr: "[1, 2]['a']", errMsg: "could not coerce 'a' to an int"},
		{name: "instance bad key", expr: "{a: 1}[[1]]", errMsg: "to a property name"},
		{name: "index into string", expr: "'abc'[0]", errMsg: "is not an array or object"},
		{name: "index error propagates", expr: "user.tags[1 / 0]", errMsg: "cannot divide by zero"},
	})
}

func TestExpression_NullSubstitution(t *testing.T) {
	opts := &Options{NullSubstitution: func(path string) value.Value {
		return value.String("<" + path + ">")
	}}

	tests := []struct {
		src  string
		want value.Value
	}{
		{src: "missing", want: value.String("<missing>")},
		{src: "user.nope", want: value.String("<user.nope>")},
		{src: "user.nope[5]", want: value.String("<user.nope[5]>")},
		{src: "items[0].nope", want: value.String("<items[0].nope>")},
		{src: "concat('x', missing)", want: value.String("x<missing>")},
		{src: "getProperty('a.b')", want: value.String("<a.b>")},
		{src: "user.name", want: value.String("ada")},
		{src: "exists(nope)", want: value.Bool(true)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res := mustEval(t, tt.src, testData(), opts)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Value)
		})
	}

	t.Run("hook does not supply indexes", func(t *testing.T) {
		ones := &Options{NullSubstitution: func(string) value.Value { return value.Int(1) }}
		for _, src := range []string{"user.tags[nope]", "createArray('a', 'b')[nope]"} {
			res := mustEval(t, src, testData(), ones)
			require.Error(t, res.Err, src)
			assert.Contains(t, res.Err.Error(), "could not coerce nope to an int")
		}
	})

	t.Run("hook returning nil is missing", func(t *testing.T) {
		res := mustEval(t, "missing", nil, &Options{NullSubstitution: func(string) value.Value { return nil }})
		require.NoError(t, res.Err)
		assert.Equal(t, value.Null, res.Value)
	})
}

func TestExpression_OddMemoryKeys(t *testing.T) {
	data := map[string]any{
		"x": map[string]any{
			"a]b":      1,
			"it's":     2,
			`it's "q"`: map[string]any{"c": 3},
		},
	}

	tests := []struct {
		src  string
		want value.Value
	}{
		{src: "x['a]b']", want: value.Int(1)},
		{src: `x["it's"]`, want: value.Int(2)},
		{src: `x['it\'s "q"'].c`, want: value.Int(3)},
		{src: "x['a]' & 'b']", want: value.Int(1)},
		{src: `getProperty("x['a]b']")`, want: value.Int(1)},
		{src: `getProperty('x["it\'s"]')`, want: value.Int(2)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			res := mustEval(t, tt.src, data, nil)
			require.NoError(t, res.Err)
			assert.Equal(t, tt.want, res.Value)
		})
	}

	expr := MustParse(`x['a]b'] + x['it\'s "q"'].c`)
	refs := expr.References()
	require.Len(t, refs, 2)
	mem := memory.New(data)
	for _, ref := range refs {
		got, err := mem.GetValue(ref)
		require.NoError(t, err, ref)
		assert.False(t, value.IsMissing(got), ref)
	}
}

// failingMemory fails every read.
type failingMemory struct{}

func (failingMemory) GetValue(string) (value.Value, error) { return nil, assert.AnError }
func (failingMemory) SetValue(string, value.Value) error { return assert.AnError }
func (failingMemory) Version() string { return "" }

func TestExpression_MemoryErrors(t *testing.T) {
	res := Evaluate(MustParse("a + 1"), failingMemory{}, nil)
	assert.ErrorIs(t, res.Err, assert.AnError)

	res = Evaluate(MustParse("!a"), failingMemory{}, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, value.Bool(true), res.Value)
}
