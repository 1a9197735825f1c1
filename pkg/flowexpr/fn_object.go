package flowexpr

import (
	"fmt"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

func objectBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("json", ReturnObject, ApplyWithError(func(args []value.Value) (value.Value, error) {
			return value.FromJSON([]byte(value.Text(args[0])))
		}, VerifyString), ValidateUnaryString)),
		fn(NewEvaluator("setProperty", ReturnObject, ApplyWithError(setProperty, nil),
			ValidateOrder(nil, ReturnObject, ReturnString, ReturnAny))),
		fn(NewEvaluator("getProperty", ReturnAny, evalGetProperty,
			ValidateOrder([]ReturnType{ReturnString}, ReturnAny))),
		fn(NewEvaluator("removeProperty", ReturnObject, ApplyWithError(removeProperty, nil),
			ValidateOrder(nil, ReturnObject, ReturnString))),
	}
}

func objectArg(v value.Value) (value.Object, error) {
	switch obj := v.(type) {
	case value.Object:
		return obj, nil
	case value.Missing:
		return value.Object{}, nil
	}
	return nil, fmt.Errorf("%s is not an object", value.Literal(v))
}

// setProperty returns a copy of the object with the property set.
func setProperty(args []value.Value) (value.Value, error) {
	obj, err := objectArg(args[0])
	if err != nil {
		return nil, err
	}
	key, ok := args[1].(value.String)
	if !ok {
		return nil, fmt.Errorf("%s is not a property name", value.Literal(args[1]))
	}
	out := obj.Clone()
	out[string(key)] = args[2]
	return out, nil
}

func removeProperty(args []value.Value) (value.Value, error) {
	obj, err := objectArg(args[0])
	if err != nil {
		return nil, err
	}
	key, ok := args[1].(value.String)
	if !ok {
		return nil, fmt.Errorf("%s is not a property name", value.Literal(args[1]))
	}
	out := obj.Clone()
	delete(out, string(key))
	return out, nil
}

// evalGetProperty reads a property of an object, or with a single argument,
// a path from memory.
func evalGetProperty(e *Expression, mem memory.Memory, opts *Options) Result {
	args, err := EvaluateChildren(e, mem, opts, nil)
	if err != nil {
		return FailErr(err)
	}

	if len(args) == 1 {
		path, ok := args[0].(value.String)
		if !ok {
			return Fail("%s is not a property name", e.children[0])
		}
		segs, err := memory.ParsePath(string(path))
		if err != nil {
			return FailErr(err)
		}
		return lookupMemory(segs, mem, opts)
	}

	key, ok := args[1].(value.String)
	if !ok {
		return Fail("%s is not a property name", e.children[1])
	}
	switch obj := args[0].(type) {
	case value.Missing:
		return Ok(value.Null)
	case value.Object:
		return Ok(obj[string(key)])
	}
	return Fail("%s is not an object", e.children[0])
}
