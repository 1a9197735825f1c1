package flowexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func TestStandardFunctions(t *testing.T) {
	table := StandardFunctions()
	assert.Same(t, table, StandardFunctions())

	names := []string{
		"+", "-", "*", "/", "%", "^", "add", "sub", "mul", "div", "mod", "exp",
		"&&", "||", "!", "and", "or", "not", "if",
		"==", "!=", "<", "<=", ">", ">=", "equals", "notEquals", "exists",
		"concat", "&", "length", "toUpper", "toLower", "substring", "indexOf",
		"createArray", "count", "foreach", "select", "where", "any", "all",
		"json", "setProperty", "getProperty", "removeProperty",
		"int", "float", "string", "bool", "coalesce", "newGuid", "jsonStringify",
	}
	for _, name := range names {
		ev, ok := table.Lookup(name)
		assert.True(t, ok, "missing %q", name)
		assert.NotNil(t, ev)
	}

	add, _ := table.Lookup("add")
	plus, _ := table.Lookup("+")
	assert.Same(t, plus, add, "aliases share one evaluator")

	all := table.Names()
	assert.IsIncreasing(t, all)
	assert.Equal(t, len(all), table.Len())
}

func TestFunctionTable_Synonyms(t *testing.T) {
	table := StandardFunctions()
	assert.Equal(t, []string{"+", "add"}, table.Synonyms("add"))
	assert.Equal(t, []string{"&&", "and"}, table.Synonyms("&&"))
	assert.Equal(t, []string{"newGuid"}, table.Synonyms("newGuid"))
	assert.Nil(t, table.Synonyms("nope"))

	aliased, err := table.Alias("plus", "+")
	require.NoError(t, err)
	assert.Equal(t, []string{"+", "add", "plus"}, aliased.Synonyms("plus"))
	assert.Equal(t, []string{"+", "plus"}, aliased.Without("add").Synonyms("+"))

	var empty *FunctionTable
	assert.Nil(t, empty.Synonyms("+"))
}

func TestFunctionTable_Immutable(t *testing.T) {
	double := NewEvaluator("double", ReturnNumber, Apply(func(args []value.Value) value.Value {
		n, _ := value.AsInt(args[0])
		return value.Int(2 * n)
	}, VerifyInteger), ValidateUnaryNumber)

	base := StandardFunctions()
	extended := base.With("double", double)

	_, ok := base.Lookup("double")
	assert.False(t, ok, "With must not modify the receiver")
	assert.Equal(t, base.Len()+1, extended.Len())

	expr, err := Parse("double(21) + 0", extended.Lookup)
	require.NoError(t, err)
	assert.Equal(t, value.Int(42), Evaluate(expr, nil, nil).Value)

	_, err = Parse("double(21)", nil)
	assert.ErrorIs(t, err, ErrUnknownFunction)

	reduced := extended.Without("+")
	_, err = Parse("1 + 2", reduced.Lookup)
	assert.ErrorIs(t, err, ErrUnknownFunction)
	_, err = Parse("add(1, 2)", reduced.Lookup)
	assert.NoError(t, err, "other names of the evaluator stay registered")
	_, ok = extended.Lookup("+")
	assert.True(t, ok)
}

func TestFunctionTable_Alias(t *testing.T) {
	table, err := StandardFunctions().Alias("upper", "toUpper")
	require.NoError(t, err)

	res := mustEvalWith(t, table, "upper('abc')")
	assert.Equal(t, value.String("ABC"), res.Value)

	_, err = StandardFunctions().Alias("x", "nope")
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.Contains(t, err.Error(), `alias "x"`)
}

func TestFunctionTable_Custom(t *testing.T) {
	minus, _ := StandardFunctions().Lookup("-")
	table := NewFunctionTable(minus, nil)
	assert.Equal(t, []string{"-"}, table.Names())

	res := mustEvalWith(t, table, "10 - 4 - -1")
	assert.Equal(t, value.Int(7), res.Value)

	_, err := Parse("sub(1, 2)", table.Lookup)
	assert.ErrorIs(t, err, ErrUnknownFunction)
}

func TestFunctionTable_Nil(t *testing.T) {
	var table *FunctionTable
	_, ok := table.Lookup("+")
	assert.False(t, ok)
	assert.Nil(t, table.Names())
	assert.Equal(t, 0, table.Len())

	withOne := table.With("one", NewEvaluator("one", ReturnNumber, Apply(func([]value.Value) value.Value {
		return value.Int(1)
	}, nil), ValidateNoChildren))
	assert.Equal(t, 1, withOne.Len())
	assert.Equal(t, 0, table.Without("x").Len())
}

func mustEvalWith(t *testing.T, table *FunctionTable, src string) Result {
	t.Helper()
	expr, err := Parse(src, table.Lookup)
	require.NoError(t, err)
	res := Evaluate(expr, nil, nil)
	require.NoError(t, res.Err)
	return res
}

func TestValidators(t *testing.T) {
	num := NewConstant(value.Int(1))
	str := NewConstant(value.String("a"))
	arr, err := NewExpression(mustLookup(t, "createArray"), num)
	require.NoError(t, err)
	obj := NewConstant(value.Null)

	node := func(children ...*Expression) *Expression {
		return &Expression{evaluator: &Evaluator{Type: "node"}, children: children}
	}

	tests := []struct {
		name     string
		validate ValidateFunc
		children []*Expression
		errMsg   string
	}{
		{name: "no children ok", validate: ValidateNoChildren},
		{name: "no children rejects", validate: ValidateNoChildren, children: []*Expression{num}, errMsg: "should have 0 children"},
		{name: "unary", validate: ValidateUnary, children: []*Expression{str}},
		{name: "binary too few", validate: ValidateBinary, children: []*Expression{str}, errMsg: "should have 2 children"},
		{name: "at least one", validate: ValidateAtLeastOne, errMsg: "should have at least 1 children"},
		{name: "bounded", validate: ValidateArityAndAnyType(1, 2), children: []*Expression{num, num, num}, errMsg: "can't have more than 2 children"},
		{name: "number", validate: ValidateNumber, children: []*Expression{num, num}},
		{name: "number rejects string", validate: ValidateNumber, children: []*Expression{num, str}, errMsg: "'a' is not a number expression"},
		{name: "object passes any type", validate: ValidateUnaryNumber, children: []*Expression{obj}},
		{name: "two or more", validate: ValidateTwoOrMoreNumbers, children: []*Expression{num}, errMsg: "should have at least 2 children"},
		{name: "binary number", validate: ValidateBinaryNumber, children: []*Expression{num, num}},
		{name: "unary string", validate: ValidateUnaryString, children: []*Expression{num}, errMsg: "is not a string expression"},
		{name: "binary string", validate: ValidateBinaryString, children: []*Expression{str, str}},
		{name: "unary array", validate: ValidateUnaryArray, children: []*Expression{arr}},
		{name: "unary array rejects", validate: ValidateUnaryArray, children: []*Expression{str}, errMsg: "is not a array expression"},
		{name: "order", validate: ValidateOrder([]ReturnType{ReturnNumber}, ReturnString), children: []*Expression{str, num}},
		{name: "order required only", validate: ValidateOrder([]ReturnType{ReturnNumber}, ReturnString), children: []*Expression{str}},
		{name: "order wrong position", validate: ValidateOrder(nil, ReturnString, ReturnNumber), children: []*Expression{num, str}, errMsg: "1 is not a string expression"},
		{name: "order too many", validate: ValidateOrder(nil, ReturnString), children: []*Expression{str, str}, errMsg: "should have 1 children"},
		{name: "order range", validate: ValidateOrder([]ReturnType{ReturnAny}, ReturnAny), errMsg: "should have at least 1 children"},
		{name: "union type", validate: ValidateArityAndAnyType(1, 1, ReturnNumber, ReturnString), children: []*Expression{str}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.validate(node(tt.children...))
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func mustLookup(t *testing.T, name string) *Evaluator {
	t.Helper()
	ev, ok := StandardFunctions().Lookup(name)
	require.True(t, ok, name)
	return ev
}

func TestReturnType(t *testing.T) {
	assert.Equal(t, "none", ReturnType(0).String())
	assert.Equal(t, "boolean|string", (ReturnBoolean | ReturnString).String())
	assert.Equal(t, "boolean|number|object|string|array", ReturnAny.String())
	assert.True(t, ReturnAny.Overlaps(ReturnArray))
	assert.False(t, ReturnNumber.Overlaps(ReturnString))

	assert.Equal(t, ReturnNumber, ReturnTypeOf(value.Float(1)))
	assert.Equal(t, ReturnArray, ReturnTypeOf(value.Array{}))
	assert.Equal(t, ReturnObject, ReturnTypeOf(value.Object{}))
	assert.Equal(t, ReturnObject, ReturnTypeOf(nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "function", KindFunction.String())
	assert.Equal(t, "constant", KindConstant.String())
	assert.Equal(t, "accessor", KindAccessor.String())
	assert.Equal(t, "element", KindElement.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
