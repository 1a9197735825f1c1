package flowexpr

import (
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// The boolean family evaluates its children without null substitution and
// treats a child error as false. Errors never escape these functions.
func logicBuiltins() []builtin {
	return []builtin{
		fn(NewEvaluator("&&", ReturnBoolean, evalAnd, ValidateAtLeastOne), "and"),
		fn(NewEvaluator("||", ReturnBoolean, evalOr, ValidateAtLeastOne), "or"),
		fn(NewEvaluator("!", ReturnBoolean, evalNot, ValidateUnary), "not"),
		fn(NewEvaluator("if", ReturnAny, evalIf, ValidateArityAndAnyType(3, 3))),
	}
}

// isTrue evaluates e and reports whether it produced a truthy value.
// A failed evaluation counts as false.
func isTrue(e *Expression, mem memory.Memory, opts *Options) bool {
	v, err := e.TryEvaluate(mem, opts).Unwrap()
	return err == nil && value.IsTruthy(v)
}

func evalAnd(e *Expression, mem memory.Memory, opts *Options) Result {
	child := opts.LocaleOnly()
	for _, c := range e.children {
		if !isTrue(c, mem, child) {
			return Ok(value.Bool(false))
		}
	}
	return Ok(value.Bool(true))
}

func evalOr(e *Expression, mem memory.Memory, opts *Options) Result {
	child := opts.LocaleOnly()
	for _, c := range e.children {
		if isTrue(c, mem, child) {
			return Ok(value.Bool(true))
		}
	}
	return Ok(value.Bool(false))
}

func evalNot(e *Expression, mem memory.Memory, opts *Options) Result {
	return Ok(value.Bool(!isTrue(e.children[0], mem, opts.LocaleOnly())))
}

// evalIf evaluates only the selected branch.
func evalIf(e *Expression, mem memory.Memory, opts *Options) Result {
	if isTrue(e.children[0], mem, opts.LocaleOnly()) {
		return e.children[1].TryEvaluate(mem, opts)
	}
	return e.children[2].TryEvaluate(mem, opts)
}
