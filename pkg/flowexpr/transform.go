package flowexpr

import (
	"strconv"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/parser"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Transform builds an expression tree from a parse tree, resolving every
// function and operator name through lookup. Each node is validated as it
// is built, so a returned expression is always well formed.
func Transform(node *parser.Node, lookup Lookup) (*Expression, error) {
	if lookup == nil {
		lookup = StandardFunctions().Lookup
	}
	t := &transformer{lookup: lookup}
	return t.transform(node)
}

type transformer struct {
	lookup Lookup
}

func (t *transformer) transform(n *parser.Node) (*Expression, error) {
	switch n.Type {
	case parser.NodeNumber:
		return numberConstant(n)
	case parser.NodeString:
		return NewConstant(value.String(unquote(n.Value))), nil
	case parser.NodeText:
		return NewConstant(value.String(n.Value)), nil
	case parser.NodeName:
		return t.name(n)
	case parser.NodeMember:
		inst, err := t.transform(n.Operands[0])
		if err != nil {
			return nil, err
		}
		return NewAccessor(n.Value, inst)
	case parser.NodeIndex:
		children, err := t.transformAll(n.Operands)
		if err != nil {
			return nil, err
		}
		return NewElement(children[0], children[1])
	case parser.NodeUnary:
		return t.unary(n)
	case parser.NodeBinary:
		children, err := t.transformAll(n.Operands)
		if err != nil {
			return nil, err
		}
		return t.call(n.Value, n.Position, children...)
	case parser.NodeCall:
		children, err := t.arguments(n.Operands)
		if err != nil {
			return nil, err
		}
		return t.call(n.Value+n.Suffix, n.Position, children...)
	case parser.NodeArray:
		children, err := t.transformAll(n.Operands)
		if err != nil {
			return nil, err
		}
		return t.call("createArray", n.Position, children...)
	case parser.NodeObject:
		return t.object(n)
	case parser.NodeTemplate:
		return t.template(n)
	case parser.NodeLambda:
		return nil, &parser.SyntaxError{
			Position: n.Position,
			Token:    n.Value,
			Message:  "lambda is only allowed as a function argument",
		}
	}
	return nil, &parser.SyntaxError{Position: n.Position, Message: "unsupported node " + n.Type.String()}
}

func (t *transformer) transformAll(nodes []*parser.Node) ([]*Expression, error) {
	out := make([]*Expression, 0, len(nodes))
	for _, n := range nodes {
		e, err := t.transform(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// arguments transforms call arguments. A lambda `x => body` contributes an
// iterator accessor and its body as two separate children.
func (t *transformer) arguments(nodes []*parser.Node) ([]*Expression, error) {
	out := make([]*Expression, 0, len(nodes)+1)
	for _, n := range nodes {
		if n.Type == parser.NodeLambda {
			iter, err := NewAccessor(n.Value, nil)
			if err != nil {
				return nil, err
			}
			body, err := t.transform(n.Operands[0])
			if err != nil {
				return nil, err
			}
			out = append(out, iter, body)
			continue
		}
		e, err := t.transform(n)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (t *transformer) call(name string, pos int, children ...*Expression) (*Expression, error) {
	ev, ok := t.lookup(name)
	if !ok || ev == nil {
		return nil, &UnknownFunctionError{Name: name, Position: pos}
	}
	return NewExpression(ev, children...)
}

func (t *transformer) name(n *parser.Node) (*Expression, error) {
	switch strings.ToLower(n.Value) {
	case "true":
		return NewConstant(value.Bool(true)), nil
	case "false":
		return NewConstant(value.Bool(false)), nil
	case "null":
		return NewConstant(value.Null), nil
	}
	return NewAccessor(n.Value, nil)
}

// unary rewrites -x as 0 - x, +x as 0 + x and !x as a call to "!".
func (t *transformer) unary(n *parser.Node) (*Expression, error) {
	operand, err := t.transform(n.Operands[0])
	if err != nil {
		return nil, err
	}
	if n.Value == "!" {
		return t.call("!", n.Position, operand)
	}
	return t.call(n.Value, n.Position, NewConstant(value.Int(0)), operand)
}

// object rewrites {k: v, ...} as setProperty(...setProperty(json("{}"), k, v)...).
func (t *transformer) object(n *parser.Node) (*Expression, error) {
	obj, err := t.call("json", n.Position, NewConstant(value.String("{}")))
	if err != nil {
		return nil, err
	}
	for i, key := range n.Keys {
		val, err := t.transform(n.Operands[i])
		if err != nil {
			return nil, err
		}
		obj, err = t.call("setProperty", n.Position, obj, NewConstant(value.String(unquote(key))), val)
		if err != nil {
			return nil, err
		}
	}
	return obj, nil
}

func (t *transformer) template(n *parser.Node) (*Expression, error) {
	if len(n.Operands) == 0 {
		return NewConstant(value.String("")), nil
	}
	parts, err := t.transformAll(n.Operands)
	if err != nil {
		return nil, err
	}
	return t.call("concat", n.Position, parts...)
}

// numberConstant tries an int64 and then a float64 reading of the literal.
func numberConstant(n *parser.Node) (*Expression, error) {
	if i, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
		return NewConstant(value.Int(i)), nil
	}
	if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
		return NewConstant(value.Float(f)), nil
	}
	return nil, &InvalidNumberError{Literal: n.Value, Position: n.Position}
}

// unquote strips the quotes of a string literal and resolves its escapes.
// Unknown escapes are kept verbatim. Bare names pass through unchanged.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '\'' && q != '"') || s[len(s)-1] != q {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.Contains(body, `\`) {
		return body
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 == len(body) {
			b.WriteByte(c)
			continue
		}
		i++
		switch next := body[i]; next {
		case q:
			b.WriteByte(q)
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(next)
		}
	}
	return b.String()
}
