package flowexpr

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func collectionBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("createArray", ReturnArray, Apply(func(args []value.Value) value.Value {
			return value.Array(args)
		}, nil), nil)),
		fn(NewEvaluator("count", ReturnNumber, Apply(func(args []value.Value) value.Value {
			n, _ := value.Length(args[0])
			return value.Int(n)
		}, VerifyContainer), ValidateArityAndAnyType(1, 1, ReturnString, ReturnArray))),
		fn(NewEvaluator("contains", ReturnBoolean, Apply(contains, nil), ValidateBinary)),
		fn(NewEvaluator("first", ReturnAny, Apply(func(args []value.Value) value.Value {
			return nth(args[0], 0)
		}, nil), ValidateUnary)),
		fn(NewEvaluator("last", ReturnAny, Apply(func(args []value.Value) value.Value {
			return nth(args[0], -1)
		}, nil), ValidateUnary)),
		fn(NewEvaluator("join", ReturnString, ApplyWithError(join, nil),
			ValidateOrder([]ReturnType{ReturnString}, ReturnArray, ReturnString))),
		fn(NewEvaluator("empty", ReturnBoolean, Apply(func(args []value.Value) value.Value {
			n, ok := value.Length(args[0])
			return value.Bool(value.IsMissing(args[0]) || (ok && n == 0))
		}, nil), ValidateUnary)),
		fn(newLambdaEvaluator("foreach", ReturnArray, evalForeach), "select"),
		fn(newLambdaEvaluator("where", ReturnArray|ReturnObject, evalWhere)),
		fn(newLambdaEvaluator("any", ReturnBoolean, evalAny)),
		fn(newLambdaEvaluator("all", ReturnBoolean, evalAll)),
		fn(NewEvaluator("union", ReturnArray, Apply(union, VerifyList),
			ValidateArityAndAnyType(1, MaxArity, ReturnArray))),
		fn(NewEvaluator("intersection", ReturnArray, Apply(intersection, VerifyList),
			ValidateArityAndAnyType(1, MaxArity, ReturnArray))),
		fn(NewEvaluator("take", ReturnArray|ReturnString, ApplyWithError(func(args []value.Value) (value.Value, error) {
			return slice(args, true)
		}, nil), ValidateOrder(nil, ReturnArray|ReturnString, ReturnNumber))),
		fn(NewEvaluator("skip", ReturnArray|ReturnString, ApplyWithError(func(args []value.Value) (value.Value, error) {
			return slice(args, false)
		}, nil), ValidateOrder(nil, ReturnArray|ReturnString, ReturnNumber))),
	}
}

// contains tests substrings, array membership and object keys.
func contains(args []value.Value) value.Value {
	switch coll := args[0].(type) {
	case value.String:
		s, ok := args[1].(value.String)
		return value.Bool(ok && strings.Contains(string(coll), string(s)))
	case value.Array:
		for _, v := range coll {
			if value.Equal(v, args[1]) {
				return value.Bool(true)
			}
		}
	case value.Object:
		if key, ok := args[1].(value.String); ok {
			_, found := coll[string(key)]
			return value.Bool(found)
		}
	}
	return value.Bool(false)
}

// nth returns the i-th character or element; negative i counts from the end.
func nth(v value.Value, i int) value.Value {
	switch coll := v.(type) {
	case value.String:
		runes := []rune(string(coll))
		if len(runes) == 0 {
			return value.Null
		}
		if i < 0 {
			i += len(runes)
		}
		return value.String(string(runes[i]))
	case value.Array:
		if len(coll) == 0 {
			return value.Null
		}
		if i < 0 {
			i += len(coll)
		}
		return value.OrMissing(coll[i])
	}
	return value.Null
}

func join(args []value.Value) (value.Value, error) {
	arr, ok := args[0].(value.Array)
	if !ok {
		return nil, fmt.Errorf("%s is not a list", value.Literal(args[0]))
	}
	sep := value.Text(args[1])
	parts := make([]string, len(arr))
	for i, v := range arr {
		parts[i] = value.Text(v)
	}
	if len(args) == 3 && len(parts) > 1 {
		head := strings.Join(parts[:len(parts)-1], sep)
		return value.String(head + value.Text(args[2]) + parts[len(parts)-1]), nil
	}
	return value.String(strings.Join(parts, sep)), nil
}

// lambdaItems evaluates the collection of a lambda function. Objects
// iterate as {key, value} pairs in key order.
func lambdaItems(e *Expression, mem memory.Memory, opts *Options) (value.Array, value.Value, error) {
	coll, err := e.children[0].TryEvaluate(mem, opts).Unwrap()
	if err != nil {
		return nil, nil, err
	}
	switch c := coll.(type) {
	case value.Array:
		return c, coll, nil
	case value.Object:
		items := make(value.Array, 0, len(c))
		for _, k := range c.Keys() {
			items = append(items, value.Object{"key": value.String(k), "value": c[k]})
		}
		return items, coll, nil
	}
	return nil, nil, fmt.Errorf("%s is not a collection or structure object", e.children[0])
}

// iterate evaluates the lambda body once per item, with the iterator name
// bound in a scope layered over mem. visit returns false to stop early.
func iterate(e *Expression, mem memory.Memory, opts *Options, visit func(item, result value.Value) bool) (value.Value, error) {
	items, coll, err := lambdaItems(e, mem, opts)
	if err != nil {
		return nil, err
	}
	name, err := lambdaName(e)
	if err != nil {
		return nil, err
	}
	if mem == nil {
		mem = memory.New(nil)
	}
	scope := memory.Wrap(mem)
	body := e.children[2]
	for _, item := range items {
		scope.Push(memory.FromObject(value.Object{name: item}))
		res, err := body.TryEvaluate(scope, opts).Unwrap()
		if popErr := scope.Pop(); popErr != nil {
			return nil, popErr
		}
		if err != nil {
			return nil, err
		}
		if !visit(item, res) {
			break
		}
	}
	return coll, nil
}

func evalForeach(e *Expression, mem memory.Memory, opts *Options) Result {
	out := value.Array{}
	if _, err := iterate(e, mem, opts, func(_, res value.Value) bool {
		out = append(out, res)
		return true
	}); err != nil {
		return FailErr(err)
	}
	return Ok(out)
}

// evalWhere keeps the items whose body is truthy. Objects filter to objects.
func evalWhere(e *Expression, mem memory.Memory, opts *Options) Result {
	var kept value.Array
	coll, err := iterate(e, mem, opts, func(item, res value.Value) bool {
		if value.IsTruthy(res) {
			kept = append(kept, item)
		}
		return true
	})
	if err != nil {
		return FailErr(err)
	}
	if _, ok := coll.(value.Object); ok {
		obj := value.Object{}
		for _, pair := range kept {
			kv := pair.(value.Object)
			obj[string(kv["key"].(value.String))] = kv["value"]
		}
		return Ok(obj)
	}
	if kept == nil {
		kept = value.Array{}
	}
	return Ok(kept)
}

func evalAny(e *Expression, mem memory.Memory, opts *Options) Result {
	found := false
	if _, err := iterate(e, mem, opts, func(_, res value.Value) bool {
		found = value.IsTruthy(res)
		return !found
	}); err != nil {
		return FailErr(err)
	}
	return Ok(value.Bool(found))
}

func evalAll(e *Expression, mem memory.Memory, opts *Options) Result {
	all := true
	if _, err := iterate(e, mem, opts, func(_, res value.Value) bool {
		all = value.IsTruthy(res)
		return all
	}); err != nil {
		return FailErr(err)
	}
	return Ok(value.Bool(all))
}

// union concatenates lists, dropping duplicates.
func union(args []value.Value) value.Value {
	out := value.Array{}
	for _, arg := range args {
		for _, v := range arg.(value.Array) {
			if !containsValue(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

// intersection keeps the distinct elements of the first list present in
// every other list.
func intersection(args []value.Value) value.Value {
	out := value.Array{}
	for _, v := range args[0].(value.Array) {
		if containsValue(out, v) {
			continue
		}
		inAll := true
		for _, other := range args[1:] {
			if !containsValue(other.(value.Array), v) {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, v)
		}
	}
	return out
}

func containsValue(arr value.Array, v value.Value) bool {
	for _, x := range arr {
		if value.Equal(x, v) {
			return true
		}
	}
	return false
}

// slice implements take (head) and skip (tail). Counts beyond the length
// are clamped.
func slice(args []value.Value, head bool) (value.Value, error) {
	n, ok := value.AsInt(args[1])
	if !ok || n < 0 {
		return nil, fmt.Errorf("%s must be a non-negative integer", value.Literal(args[1]))
	}
	cut := func(length int) (int, int) {
		k := int(min(n, int64(length)))
		if head {
			return 0, k
		}
		return k, length
	}
	switch coll := args[0].(type) {
	case value.Array:
		from, to := cut(len(coll))
		out := make(value.Array, to-from)
		copy(out, coll[from:to])
		return out, nil
	case value.String:
		runes := []rune(string(coll))
		from, to := cut(len(runes))
		return value.String(string(runes[from:to])), nil
	}
	return nil, fmt.Errorf("%s is not a string or list", value.Literal(args[0]))
}
