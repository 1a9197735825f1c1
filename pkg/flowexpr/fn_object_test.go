package flowexpr

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func TestObject_Functions(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "object literal", expr: "{a: 1, 'b c': 'x', \"d\": [true]}", want: value.Object{
			"a":   value.Int(1),
			"b c": value.String("x"),
			"d":   value.Array{value.Bool(true)},
		}},
		{name: "empty object", expr: "{}", want: value.Object{}},
		{name: "json", expr: `json('{"a": [1, 2.5], "b": null}')`, want: value.Object{
			"a": value.Array{value.Int(1), value.Float(2.5)},
			"b": value.Null,
		}},
		{name: "json scalar", expr: "json('3')", want: value.Int(3)},
		{name: "json invalid", expr: "json('{')", errMsg: "parse json"},
		{name: "setProperty", expr: "setProperty({a: 1}, 'b', 2)", want: value.Object{"a": value.Int(1), "b": value.Int(2)}},
		{name: "setProperty replaces", expr: "setProperty({a: 1}, 'a', 'x')", want: value.Object{"a": value.String("x")}},
		{name: "setProperty on missing", expr: "setProperty(missing, 'a', 1)", want: value.Object{"a": value.Int(1)}},
		{name: "setProperty on string", expr: "setProperty(user.name, 'a', 1)", errMsg: "'ada' is not an object"},
		{name: "removeProperty", expr: "removeProperty({a: 1, b: 2}, 'a')", want: value.Object{"b": value.Int(2)}},
		{name: "removeProperty absent", expr: "removeProperty({a: 1}, 'z')", want: value.Object{"a": value.Int(1)}},
		{name: "getProperty", expr: "getProperty({a: 1}, 'a')", want: value.Int(1)},
		{name: "getProperty absent", expr: "getProperty({a: 1}, 'b')", want: value.Null},
		{name: "getProperty of missing", expr: "getProperty(missing, 'b')", want: value.Null},
		{name: "getProperty from memory", expr: "getProperty('user.tags[1]')", want: value.String("dev")},
		{name: "getProperty computed path", expr: "getProperty('user.' & 'name')", want: value.String("ada")},
		{name: "getProperty bad path", expr: "getProperty('a[')", errMsg: "invalid memory path"},
		{name: "getProperty of string", expr: "getProperty(user.name, 'x')", errMsg: "user.name is not an object"},
		{name: "getProperty numeric key", expr: "getProperty({a: 1}, user.age)", errMsg: "user.age is not a property name"},
		{name: "setProperty key type", expr: "setProperty({}, 1, 2)", invalid: true},
	})
}

func TestObject_CopiesInput(t *testing.T) {
	data := map[string]any{"obj": map[string]any{"a": 1}}
	res := mustEval(t, "setProperty(obj, 'b', 2)", data, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, value.Object{"a": value.Int(1), "b": value.Int(2)}, res.Value)

	res = mustEval(t, "obj", data, nil)
	require.NoError(t, res.Err)
	assert.Equal(t, value.Object{"a": value.Int(1)}, res.Value)
}

func TestConvert_Functions(t *testing.T) {
	runEvalCases(t, []evalCase{
		{name: "int from string", expr: "int(' 42 ')", want: value.Int(42)},
		{name: "int from float string", expr: "int('3.9')", want: value.Int(3)},
		{name: "int truncates", expr: "int(-3.9)", want: value.Int(-3)},
		{name: "int from bool", expr: "int(true)", want: value.Int(1)},
		{name: "int from int", expr: "int(7)", want: value.Int(7)},
		{name: "int from text", expr: "int('x')", errMsg: "'x' can't be converted to an int"},
		{name: "int out of range", expr: "int(1e300)", errMsg: "is out of range"},
		{name: "float from int", expr: "float(1)", want: value.Float(1)},
		{name: "float from string", expr: "float('2.5')", want: value.Float(2.5)},
		{name: "float from array", expr: "float([])", errMsg: "can't be converted to a float"},
		{name: "string of number", expr: "string(12)", want: value.String("12")},
		{name: "string of array", expr: "string([1])", want: value.String("[1]")},
		{name: "string of missing", expr: "string(missing)", want: value.String("")},
		{name: "bool zero", expr: "bool(0)", want: value.Bool(false)},
		{name: "bool text", expr: "bool('a')", want: value.Bool(true)},
		{name: "bool empty array", expr: "bool([])", want: value.Bool(true)},
		{name: "isString", expr: "isString('a')", want: value.Bool(true)},
		{name: "isInteger", expr: "isInteger(1)", want: value.Bool(true)},
		{name: "isInteger float", expr: "isInteger(1.5)", want: value.Bool(false)},
		{name: "isFloat", expr: "isFloat(ratio)", want: value.Bool(true)},
		{name: "isBoolean", expr: "isBoolean(false)", want: value.Bool(true)},
		{name: "isArray", expr: "isArray(user.tags)", want: value.Bool(true)},
		{name: "isObject", expr: "isObject({})", want: value.Bool(true)},
		{name: "isObject missing", expr: "isObject(missing)", want: value.Bool(false)},
		{name: "coalesce", expr: "coalesce(missing, null, 'x', 'y')", want: value.String("x")},
		{name: "coalesce all missing", expr: "coalesce(null)", want: value.Null},
		{name: "coalesce keeps falsy", expr: "coalesce(0, 1)", want: value.Int(0)},
	})
}

func TestMisc_Functions(t *testing.T) {
	res := mustEval(t, "newGuid()", nil, nil)
	require.NoError(t, res.Err)
	s, ok := res.Value.(value.String)
	require.True(t, ok)
	_, err := uuid.Parse(string(s))
	assert.NoError(t, err)

	other := mustEval(t, "newGuid()", nil, nil)
	assert.NotEqual(t, res.Value, other.Value)

	_, err = Parse("newGuid(1)", nil)
	assert.ErrorIs(t, err, ErrValidation)

	runEvalCases(t, []evalCase{
		{name: "jsonStringify object", expr: "jsonStringify({b: [1, 'x'], a: null})", want: value.String(`{"a":null,"b":[1,"x"]}`)},
		{name: "jsonStringify string", expr: "jsonStringify('a\"b')", want: value.String(`"a\"b"`)},
	})
}
