package flowexpr

import (
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Expression is an immutable AST node: an evaluator plus the children it
// exclusively owns. Expressions are validated when built and are safe to
// evaluate concurrently.
type Expression struct {
	evaluator  *Evaluator
	children   []*Expression
	returnType ReturnType
	value      value.Value // constants only
}

// NewExpression builds a node and runs the evaluator's validator exactly once
// against the final child list. On failure no expression is returned.
func NewExpression(ev *Evaluator, children ...*Expression) (*Expression, error) {
	if ev == nil {
		return nil, ErrNilEvaluator
	}
	for i, c := range children {
		if c == nil {
			return nil, &ValidationError{
				Function:   ev.Type,
				Expression: ev.Type,
				Reason:     fmt.Sprintf("child %d is nil", i),
			}
		}
	}

	e := &Expression{
		evaluator:  ev,
		children:   slices.Clone(children),
		returnType: ev.ReturnType,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

var constantEvaluator = &Evaluator{
	Type:       "constant",
	ReturnType: ReturnObject,
	Kind:       KindConstant,
	Eval: func(e *Expression, _ memory.Memory, _ *Options) Result {
		return Ok(e.value)
	},
}

// NewConstant returns a leaf node that always evaluates to v. Its declared
// return type is inferred from v.
func NewConstant(v value.Value) *Expression {
	v = value.OrMissing(v)
	return &Expression{
		evaluator:  constantEvaluator,
		returnType: ReturnTypeOf(v),
		value:      v,
	}
}

// Type returns the evaluator's canonical name.
func (e *Expression) Type() string { return e.evaluator.Type }

// ReturnType returns the declared result type.
func (e *Expression) ReturnType() ReturnType { return e.returnType }

// Kind returns the node kind.
func (e *Expression) Kind() Kind { return e.evaluator.Kind }

// Evaluator returns the bound evaluator.
func (e *Expression) Evaluator() *Evaluator { return e.evaluator }

// ChildCount returns the number of children.
func (e *Expression) ChildCount() int { return len(e.children) }

// Child returns the i-th child, or nil if i is out of range.
func (e *Expression) Child(i int) *Expression {
	if i < 0 || i >= len(e.children) {
		return nil
	}
	return e.children[i]
}

// Children returns a copy of the child list.
func (e *Expression) Children() []*Expression {
	return slices.Clone(e.children)
}

// Constant returns the literal value of a constant node.
func (e *Expression) Constant() (value.Value, bool) {
	if e.evaluator.Kind != KindConstant {
		return nil, false
	}
	return e.value, true
}

// Validate runs the evaluator's validator against this node.
func (e *Expression) Validate() error {
	if e.evaluator.Validate == nil {
		return nil
	}
	err := e.evaluator.Validate(e)
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &ValidationError{
		Function:   e.Type(),
		Expression: e.String(),
		Reason:     err.Error(),
	}
}

// ValidateTree validates this node and all of its descendants, depth first.
func (e *Expression) ValidateTree() error {
	for _, c := range e.children {
		if err := c.ValidateTree(); err != nil {
			return err
		}
	}
	return e.Validate()
}

// TryEvaluate evaluates the node. A panic inside the evaluator is recovered
// and returned as a *PanicError result. A successful result never carries a
// nil value.
func (e *Expression) TryEvaluate(mem memory.Memory, opts *Options) (res Result) {
	if e == nil {
		return FailErr(ErrNilExpression)
	}
	defer func() {
		if r := recover(); r != nil {
			res = FailErr(&PanicError{
				Function: e.Type(),
				Value:    r,
				Stack:    string(debug.Stack()),
			})
		}
	}()
	res = e.evaluator.Eval(e, mem, opts)
	if res.Err == nil {
		res.Value = value.OrMissing(res.Value)
	}
	return res
}

// infixOperators render between their operands.
var infixOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "^": true,
	"==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "&": true,
}

// wordForms name the logical operators when they have a single operand,
// which has no infix spelling.
var wordForms = map[string]string{"&&": "and", "||": "or"}

// String renders the expression as source text that parses back to an
// equivalent tree.
func (e *Expression) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expression) write(b *strings.Builder) {
	switch e.evaluator.Kind {
	case KindConstant:
		b.WriteString(value.Literal(e.value))
		return
	case KindAccessor:
		name, _ := accessorName(e)
		if inst := e.Child(1); inst != nil {
			inst.write(b)
			b.WriteByte('.')
		}
		b.WriteString(name)
		return
	case KindElement:
		e.children[0].write(b)
		b.WriteByte('[')
		e.children[1].write(b)
		b.WriteByte(']')
		return
	}

	typ := e.Type()
	switch {
	case infixOperators[typ] && len(e.children) >= 2:
		b.WriteByte('(')
		for i, c := range e.children {
			if i > 0 {
				b.WriteString(" " + typ + " ")
			}
			c.write(b)
		}
		b.WriteByte(')')
	case typ == "!" && len(e.children) == 1:
		b.WriteByte('!')
		e.children[0].write(b)
	default:
		if word, ok := wordForms[typ]; ok {
			typ = word
		}
		b.WriteString(typ)
		b.WriteByte('(')
		for i, c := range e.children {
			if i > 0 {
				b.WriteString(", ")
			}
			c.write(b)
		}
		b.WriteByte(')')
	}
}

// References returns the distinct memory paths this expression reads through
// accessors with constant indexes, in first-seen order. Lambda iterator
// variables are excluded.
func (e *Expression) References() []string {
	seen := make(map[string]bool)
	var refs []string
	e.collectReferences(nil, func(path string) {
		if !seen[path] {
			seen[path] = true
			refs = append(refs, path)
		}
	})
	return refs
}

func (e *Expression) collectReferences(bound map[string]bool, add func(string)) {
	switch e.evaluator.Kind {
	case KindConstant:
		return
	case KindAccessor, KindElement:
		if segs, ok := staticPath(e); ok {
			if !bound[segs[0].Key] {
				add(memory.JoinPath(segs))
			}
			return
		}
	}

	if e.evaluator.Lambda && len(e.children) == 3 {
		e.children[0].collectReferences(bound, add)
		inner := make(map[string]bool, len(bound)+1)
		for k := range bound {
			inner[k] = true
		}
		if name, ok := accessorName(e.children[1]); ok {
			inner[name] = true
		}
		e.children[2].collectReferences(inner, add)
		return
	}

	for i, c := range e.children {
		// An accessor's first child is its property name, not a read.
		if e.evaluator.Kind == KindAccessor && i == 0 {
			continue
		}
		c.collectReferences(bound, add)
	}
}
