package parser

import "strings"

// NodeType identifies the shape of a parse tree node.
type NodeType uint8

const (
	// NodeNumber is a numeric literal. Value holds the source text.
	NodeNumber NodeType = iota
	// NodeString is a quoted string literal. Value holds the source text
	// including quotes and escapes.
	NodeString
	// NodeTemplate is a backtick template. Operands alternate between
	// NodeText chunks and embedded expressions.
	NodeTemplate
	// NodeText is a literal chunk of a template, already unescaped.
	NodeText
	// NodeName is a bare identifier.
	NodeName
	// NodeUnary is a prefix operator. Value is the operator symbol.
	NodeUnary
	// NodeBinary is an infix operator. Value is the operator symbol.
	NodeBinary
	// NodeMember is `Operands[0].Value`.
	NodeMember
	// NodeIndex is `Operands[0][Operands[1]]`.
	NodeIndex
	// NodeCall is a function invocation. Value is the (possibly dotted)
	// callee name, Suffix is "!" for the negated form, Operands are the arguments.
	NodeCall
	// NodeArray is an array literal.
	NodeArray
	// NodeObject is an object literal. Keys[i] pairs with Operands[i]; keys
	// keep their source spelling (bare or quoted).
	NodeObject
	// NodeLambda is `Value => Operands[0]`, only valid as a call argument.
	NodeLambda
)

var nodeTypeNames = [...]string{
	NodeNumber:   "number",
	NodeString:   "string",
	NodeTemplate: "template",
	NodeText:     "text",
	NodeName:     "name",
	NodeUnary:    "unary",
	NodeBinary:   "binary",
	NodeMember:   "member",
	NodeIndex:    "index",
	NodeCall:     "call",
	NodeArray:    "array",
	NodeObject:   "object",
	NodeLambda:   "lambda",
}

// String returns the node type name.
func (t NodeType) String() string {
	if int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "unknown"
}

// Node is one node of the concrete parse tree. Precedence and associativity
// are already resolved by its shape.
type Node struct {
	Type     NodeType
	Value    string
	Position int
	Operands []*Node
	Keys     []string
	Suffix   string
}

// String renders the node as an s-expression, mainly for tests and debugging.
func (n *Node) String() string {
	var b strings.Builder
	n.write(&b)
	return b.String()
}

func (n *Node) write(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	switch n.Type {
	case NodeNumber, NodeString, NodeName:
		b.WriteString(n.Value)
		return
	case NodeText:
		b.WriteString(`"`)
		b.WriteString(n.Value)
		b.WriteString(`"`)
		return
	}

	b.WriteByte('(')
	b.WriteString(n.Type.String())
	if n.Value != "" {
		b.WriteByte(' ')
		b.WriteString(n.Value + n.Suffix)
	}
	for i, op := range n.Operands {
		b.WriteByte(' ')
		if n.Type == NodeObject {
			b.WriteString(n.Keys[i])
			b.WriteByte(':')
		}
		op.write(b)
	}
	b.WriteByte(')')
}
