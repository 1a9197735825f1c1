package flowexpr

import "github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"

// Kind is the closed set of node behaviors.
type Kind uint8

const (
	// KindFunction is a named function or operator resolved through a lookup.
	KindFunction Kind = iota
	// KindConstant is a literal value.
	KindConstant
	// KindAccessor reads a property from memory or from an instance.
	KindAccessor
	// KindElement indexes into an array or object.
	KindElement
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindConstant:
		return "constant"
	case KindAccessor:
		return "accessor"
	case KindElement:
		return "element"
	default:
		return "unknown"
	}
}

// EvalFunc computes the value of expr. It must evaluate any children it
// needs itself, in left to right order.
type EvalFunc func(expr *Expression, mem memory.Memory, opts *Options) Result

// ValidateFunc checks expr's arity and child types once, at construction.
type ValidateFunc func(expr *Expression) error

// Evaluator is the named behavior bound to an expression node. Evaluators
// are built once, never modified, and shared by every node that uses them.
type Evaluator struct {
	// Type is the canonical name or operator symbol, e.g. "+" or "concat".
	Type string
	// ReturnType declares what evaluation may produce.
	ReturnType ReturnType
	// Kind selects how the node participates in path resolution and rendering.
	Kind Kind
	// Eval computes the node's value.
	Eval EvalFunc
	// Validate checks the node at construction. Nil means no constraints.
	Validate ValidateFunc
	// Lambda marks functions whose second child names an iterator variable
	// scoped to the third child, e.g. foreach(items, x, x.name).
	Lambda bool
}

// NewEvaluator creates a function evaluator.
func NewEvaluator(typ string, returnType ReturnType, eval EvalFunc, validate ValidateFunc) *Evaluator {
	return &Evaluator{
		Type:       typ,
		ReturnType: returnType,
		Kind:       KindFunction,
		Eval:       eval,
		Validate:   validate,
	}
}

// newLambdaEvaluator creates a function evaluator whose children are
// (collection, iterator, body).
func newLambdaEvaluator(typ string, returnType ReturnType, eval EvalFunc) *Evaluator {
	ev := NewEvaluator(typ, returnType, eval, validateLambda)
	ev.Lambda = true
	return ev
}
