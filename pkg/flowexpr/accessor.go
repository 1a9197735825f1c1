package flowexpr

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Accessor and element nodes read from memory, never from a function table.
//
// Accessor children: (name constant) or (name constant, instance).
// Element children: (instance, index).
//
// A chain of accessors and elements that bottoms out at a bare name is
// resolved as a single memory path, e.g. user.tags[0]. A chain rooted in any
// other expression evaluates that expression and steps into its value.
var (
	accessorEvaluator = &Evaluator{
		Type:       "accessor",
		ReturnType: ReturnAny,
		Kind:       KindAccessor,
		Eval:       evalPath,
		Validate:   validateAccessor,
	}

	elementEvaluator = &Evaluator{
		Type:       "element",
		ReturnType: ReturnAny,
		Kind:       KindElement,
		Eval:       evalPath,
		Validate:   ValidateArityAndAnyType(2, 2),
	}
)

// NewAccessor builds a property read. A nil instance reads name from memory.
func NewAccessor(name string, instance *Expression) (*Expression, error) {
	children := []*Expression{NewConstant(value.String(name))}
	if instance != nil {
		children = append(children, instance)
	}
	return NewExpression(accessorEvaluator, children...)
}

// NewElement builds an index read, instance[index].
func NewElement(instance, index *Expression) (*Expression, error) {
	return NewExpression(elementEvaluator, instance, index)
}

func validateAccessor(e *Expression) error {
	if err := ValidateArityAndAnyType(1, 2)(e); err != nil {
		return err
	}
	if _, ok := accessorName(e); !ok {
		return errors.New("accessor name must be a constant string")
	}
	return nil
}

// accessorName returns the property name of an accessor node.
func accessorName(e *Expression) (string, bool) {
	if e.Kind() != KindAccessor {
		return "", false
	}
	c := e.Child(0)
	if c == nil {
		return "", false
	}
	v, ok := c.Constant()
	if !ok {
		return "", false
	}
	s, ok := v.(value.String)
	return string(s), ok
}

// staticPath returns the memory path of a chain whose indexes are all
// constants and whose root is a bare name.
func staticPath(e *Expression) ([]memory.Segment, bool) {
	switch e.Kind() {
	case KindAccessor:
		name, ok := accessorName(e)
		if !ok {
			return nil, false
		}
		inst := e.Child(1)
		if inst == nil {
			return []memory.Segment{{Key: name}}, true
		}
		prefix, ok := staticPath(inst)
		if !ok {
			return nil, false
		}
		return append(prefix, memory.Segment{Key: name}), true
	case KindElement:
		prefix, ok := staticPath(e.children[0])
		if !ok {
			return nil, false
		}
		idx, ok := e.children[1].Constant()
		if !ok {
			return nil, false
		}
		seg, ok := indexSegment(idx)
		if !ok {
			return nil, false
		}
		return append(prefix, seg), true
	}
	return nil, false
}

func indexSegment(v value.Value) (memory.Segment, bool) {
	switch idx := v.(type) {
	case value.String:
		return memory.Segment{Key: string(idx)}, true
	case value.Int, value.Float:
		n, ok := value.AsInt(idx)
		if !ok {
			return memory.Segment{}, false
		}
		return memory.Segment{Index: int(n), IsIndex: true}, true
	}
	return memory.Segment{}, false
}

// pathStep is one segment of a memory-rooted chain. elem is the element node
// that produced it, nil for property steps.
type pathStep struct {
	seg  memory.Segment
	elem *Expression
}

// memoryPath evaluates any non-constant indexes of a chain rooted at a bare
// name and returns the full path. ok is false when the chain is rooted in
// another expression or an index is neither integral nor a string.
func memoryPath(e *Expression, mem memory.Memory, opts *Options) (steps []pathStep, ok bool, err error) {
	switch e.Kind() {
	case KindAccessor:
		name, _ := accessorName(e)
		inst := e.Child(1)
		if inst == nil {
			return []pathStep{{seg: memory.Segment{Key: name}}}, true, nil
		}
		prefix, ok, err := memoryPath(inst, mem, opts)
		if !ok || err != nil {
			return nil, ok, err
		}
		return append(prefix, pathStep{seg: memory.Segment{Key: name}}), true, nil
	case KindElement:
		prefix, ok, err := memoryPath(e.children[0], mem, opts)
		if !ok || err != nil {
			return nil, ok, err
		}
		idx, err := e.children[1].TryEvaluate(mem, opts.LocaleOnly()).Unwrap()
		if err != nil {
			return nil, true, err
		}
		seg, ok := indexSegment(idx)
		if !ok {
			return nil, false, nil
		}
		return append(prefix, pathStep{seg: seg, elem: e}), true, nil
	}
	return nil, false, nil
}

func evalPath(e *Expression, mem memory.Memory, opts *Options) Result {
	steps, ok, err := memoryPath(e, mem, opts)
	if err != nil {
		return FailErr(err)
	}
	if ok {
		return lookupSteps(steps, mem, opts)
	}
	if e.Kind() == KindAccessor {
		return evalProperty(e, mem, opts)
	}
	return evalElement(e, mem, opts)
}

// lookupSteps resolves a memory-rooted chain. The prefix before the first
// element step is read from memory as one path; every element step after
// that is checked the same way evalElement checks an evaluated instance.
// A missing root or parent still yields Missing.
func lookupSteps(steps []pathStep, mem memory.Memory, opts *Options) Result {
	segs := make([]memory.Segment, len(steps))
	first := len(steps)
	for i, st := range steps {
		segs[i] = st.seg
		if st.elem != nil && i < first {
			first = i
		}
	}
	if first == len(steps) {
		return lookupMemory(segs, mem, opts)
	}

	v := value.Null
	if mem != nil {
		got, err := mem.GetValue(memory.JoinPath(segs[:first]))
		if err != nil {
			return FailErr(err)
		}
		v = value.OrMissing(got)
	}
	for _, st := range steps[first:] {
		if value.IsMissing(v) {
			break
		}
		if st.elem == nil {
			v = memory.Walk(v, []memory.Segment{st.seg})
			continue
		}
		idx := value.Value(value.String(st.seg.Key))
		if st.seg.IsIndex {
			idx = value.Int(st.seg.Index)
		}
		res := indexInto(st.elem, v, idx)
		if res.Failed() {
			return res
		}
		v = res.Value
	}
	if value.IsMissing(v) {
		if sub, ok := opts.substitute(memory.JoinPath(segs)); ok {
			return Ok(sub)
		}
	}
	return Ok(v)
}

// lookupMemory reads a path from memory, applying null substitution when the
// path is missing.
func lookupMemory(segs []memory.Segment, mem memory.Memory, opts *Options) Result {
	path := memory.JoinPath(segs)
	v := value.Null
	if mem != nil {
		got, err := mem.GetValue(path)
		if err != nil {
			return FailErr(err)
		}
		v = value.OrMissing(got)
	}
	if value.IsMissing(v) {
		if sub, ok := opts.substitute(path); ok {
			return Ok(sub)
		}
	}
	return Ok(v)
}

// evalProperty reads a property of an evaluated instance.
func evalProperty(e *Expression, mem memory.Memory, opts *Options) Result {
	name, _ := accessorName(e)
	inst, err := e.children[1].TryEvaluate(mem, opts).Unwrap()
	if err != nil {
		return FailErr(err)
	}
	return Ok(memory.Walk(inst, []memory.Segment{{Key: name}}))
}

// evalElement indexes an evaluated instance.
func evalElement(e *Expression, mem memory.Memory, opts *Options) Result {
	inst, err := e.children[0].TryEvaluate(mem, opts).Unwrap()
	if err != nil {
		return FailErr(err)
	}
	idx, err := e.children[1].TryEvaluate(mem, opts.LocaleOnly()).Unwrap()
	if err != nil {
		return FailErr(err)
	}
	return indexInto(e, inst, idx)
}

// indexInto applies idx to inst for the element node e. Bad indexes into
// arrays and objects are errors; a missing instance reads as Missing.
func indexInto(e *Expression, inst, idx value.Value) Result {
	switch coll := inst.(type) {
	case value.Missing:
		return Ok(value.Null)
	case value.Array:
		n, ok := value.AsInt(idx)
		if !ok {
			return Fail("could not coerce %s to an int", e.children[1])
		}
		if n < 0 || n >= int64(len(coll)) {
			return Fail("%d index out of range for %s", n, e.children[0])
		}
		return Ok(coll[n])
	case value.Object:
		switch key := idx.(type) {
		case value.String:
			return Ok(coll[string(key)])
		case value.Int:
			return Ok(coll[strconv.FormatInt(int64(key), 10)])
		}
		return Fail("could not coerce %s to a property name", e.children[1])
	}
	return Fail("%s is not an array or object", e.children[0])
}

// lambdaName returns the iterator variable name of a lambda function node.
func lambdaName(e *Expression) (string, error) {
	name, ok := accessorName(e.children[1])
	if !ok || e.children[1].ChildCount() != 1 {
		return "", fmt.Errorf("second parameter of %s is not an identifier", e.Type())
	}
	return name, nil
}
