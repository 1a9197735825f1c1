// Package parser turns expression source text into a concrete parse tree.
//
// The lexer follows Rob Pike's "Lexical Scanning in Go" design and the
// parser is a Pratt (top down operator precedence) parser. The tree it
// produces has precedence and associativity resolved; turning it into an
// evaluable expression is the job of the flowexpr package.
//
// Precedence, tightest first:
//
//	unary + - !
//	^            (right associative)
//	* / %
//	+ -
//	== != <>
//	&
//	< > <= >=
//	&&
//	||
package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxDepth bounds parser recursion.
const DefaultMaxDepth = 256

// Options holds parser configuration.
type Options struct {
	// MaxDepth limits recursion depth to prevent stack overflow.
	MaxDepth int
}

// Option configures parsing behavior.
type Option func(*Options)

// WithMaxDepth sets the maximum parsing depth.
func WithMaxDepth(depth int) Option {
	return func(opts *Options) {
		opts.MaxDepth = depth
	}
}

// Parse parses source and returns the root of its parse tree.
func Parse(source string, opts ...Option) (*Node, error) {
	return NewParser(source, opts...).Parse()
}

// Parser builds a parse tree from a token stream.
type Parser struct {
	lexer   *Lexer
	current Token
	base    int // offset of the input within the outermost source
	depth   int
	opts    Options
}

// NewParser creates a parser for source.
func NewParser(source string, opts ...Option) *Parser {
	options := Options{MaxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&options)
	}
	return newParser(source, 0, 0, options)
}

func newParser(source string, base, depth int, opts Options) *Parser {
	p := &Parser{
		lexer: NewLexer(source),
		base:  base,
		depth: depth,
		opts:  opts,
	}
	p.advance()
	return p
}

// Parse parses the entire input. Trailing tokens are an error.
func (p *Parser) Parse() (*Node, error) {
	if p.current.Type == TokenEOF {
		return nil, p.error("empty expression")
	}

	node, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.error("unexpected token")
	}
	return node, nil
}

// Binding powers. Higher values bind more tightly.
const (
	bpUnary   = 90
	bpPostfix = 100
)

var precedence = map[TokenType]int{
	TokenOr:           10,
	TokenAnd:          20,
	TokenLess:         30,
	TokenLessEqual:    30,
	TokenGreater:      30,
	TokenGreaterEqual: 30,
	TokenConcat:       40,
	TokenEqual:        50,
	TokenNotEqual:     50,
	TokenPlus:         60,
	TokenMinus:        60,
	TokenMult:         70,
	TokenDiv:          70,
	TokenMod:          70,
	TokenPow:          80,
	TokenDot:          bpPostfix,
	TokenBracketOpen:  bpPostfix,
	TokenParenOpen:    bpPostfix,
}

// getPrecedence returns the left binding power of the current token.
func (p *Parser) getPrecedence() int {
	// '!' in infix position is only the negated call form `name!(args)`.
	if p.current.Type == TokenNot {
		if p.peek().Type == TokenParenOpen {
			return bpPostfix
		}
		return 0
	}
	return precedence[p.current.Type]
}

func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

// peek returns the token after the current one without consuming it.
func (p *Parser) peek() Token {
	saved := *p.lexer
	t := p.lexer.Next()
	*p.lexer = saved
	return t
}

// expect checks that the current token has type tt and advances.
func (p *Parser) expect(tt TokenType) error {
	if p.current.Type != tt {
		return p.error(fmt.Sprintf("expected %s but got %s", tt, p.current.Type))
	}
	p.advance()
	return nil
}

// error creates a syntax error at the current token. A lexer error takes
// precedence since it explains why the token stream went wrong.
func (p *Parser) error(message string) error {
	var lexErr *SyntaxError
	if p.current.Type == TokenError && errors.As(p.lexer.Error(), &lexErr) {
		return &SyntaxError{
			Position: p.base + lexErr.Position,
			Token:    lexErr.Token,
			Message:  lexErr.Message,
		}
	}
	return &SyntaxError{
		Position: p.base + p.current.Position,
		Token:    p.current.Value,
		Message:  message,
	}
}

func (p *Parser) node(t NodeType, tok Token) *Node {
	return &Node{Type: t, Value: tok.Value, Position: p.base + tok.Position}
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error("expression nested too deeply")
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < p.getPrecedence() {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parsePrefix parses an expression that does not need a left-hand side.
func (p *Parser) parsePrefix() (*Node, error) {
	tok := p.current

	switch tok.Type {
	case TokenNumber:
		p.advance()
		return p.node(NodeNumber, tok), nil
	case TokenString:
		p.advance()
		return p.node(NodeString, tok), nil
	case TokenTemplate:
		p.advance()
		return p.parseTemplate(tok)
	case TokenName:
		p.advance()
		return p.node(NodeName, tok), nil
	case TokenPlus, TokenMinus, TokenNot:
		p.advance()
		operand, err := p.parseExpression(bpUnary)
		if err != nil {
			return nil, err
		}
		n := p.node(NodeUnary, tok)
		n.Operands = []*Node{operand}
		return n, nil
	case TokenParenOpen:
		p.advance()
		inner, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenParenClose); err != nil {
			return nil, err
		}
		return inner, nil
	case TokenBracketOpen:
		return p.parseArray()
	case TokenBraceOpen:
		return p.parseObject()
	}

	return nil, p.error("unexpected token")
}

// parseInfix parses an operator or postfix form applied to left.
func (p *Parser) parseInfix(left *Node) (*Node, error) {
	tok := p.current

	switch tok.Type {
	case TokenDot:
		p.advance()
		name := p.current
		if name.Type != TokenName {
			return nil, p.error("expected property name after '.'")
		}
		p.advance()
		n := p.node(NodeMember, name)
		n.Position = left.Position
		n.Operands = []*Node{left}
		return n, nil

	case TokenBracketOpen:
		p.advance()
		index, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expect(TokenBracketClose); err != nil {
			return nil, err
		}
		return &Node{Type: NodeIndex, Position: left.Position, Operands: []*Node{left, index}}, nil

	case TokenParenOpen:
		return p.parseCall(left, "")

	case TokenNot:
		p.advance()
		return p.parseCall(left, "!")
	}

	prec := precedence[tok.Type]
	p.advance()

	// '^' is right associative.
	if tok.Type == TokenPow {
		prec--
	}
	right, err := p.parseExpression(prec)
	if err != nil {
		return nil, err
	}

	return &Node{
		Type:     NodeBinary,
		Value:    tok.Type.String(),
		Position: p.base + tok.Position,
		Operands: []*Node{left, right},
	}, nil
}

// parseCall parses an argument list. The current token is '('.
func (p *Parser) parseCall(callee *Node, suffix string) (*Node, error) {
	name, ok := calleeName(callee)
	if !ok {
		return nil, &SyntaxError{
			Position: callee.Position,
			Token:    p.current.Value,
			Message:  "only named functions can be called",
		}
	}

	n := &Node{Type: NodeCall, Value: name, Suffix: suffix, Position: callee.Position}
	if err := p.expect(TokenParenOpen); err != nil {
		return nil, err
	}

	if p.current.Type != TokenParenClose {
		for {
			arg, err := p.parseArgument()
			if err != nil {
				return nil, err
			}
			n.Operands = append(n.Operands, arg)
			if p.current.Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if err := p.expect(TokenParenClose); err != nil {
		return nil, err
	}
	return n, nil
}

// parseArgument parses a call argument, which may be a lambda `x => body`.
func (p *Parser) parseArgument() (*Node, error) {
	if p.current.Type == TokenName && p.peek().Type == TokenArrow {
		param := p.current
		p.advance()
		p.advance()
		body, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		n := p.node(NodeLambda, param)
		n.Operands = []*Node{body}
		return n, nil
	}
	return p.parseExpression(0)
}

// calleeName flattens a name or member chain (`a.b.c`) into a dotted name.
func calleeName(n *Node) (string, bool) {
	switch n.Type {
	case NodeName:
		return n.Value, true
	case NodeMember:
		prefix, ok := calleeName(n.Operands[0])
		if !ok {
			return "", false
		}
		return prefix + "." + n.Value, true
	}
	return "", false
}

// parseArray parses `[a, b, ...]`. The current token is '['.
func (p *Parser) parseArray() (*Node, error) {
	n := p.node(NodeArray, p.current)
	n.Value = ""
	p.advance()

	if p.current.Type != TokenBracketClose {
		for {
			item, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			n.Operands = append(n.Operands, item)
			if p.current.Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if err := p.expect(TokenBracketClose); err != nil {
		return nil, err
	}
	return n, nil
}

// parseObject parses `{key: value, ...}`. Keys are bare names or quoted strings.
func (p *Parser) parseObject() (*Node, error) {
	n := p.node(NodeObject, p.current)
	n.Value = ""
	p.advance()

	if p.current.Type != TokenBraceClose {
		for {
			key := p.current
			if key.Type != TokenName && key.Type != TokenString {
				return nil, p.error("expected property name")
			}
			p.advance()
			if err := p.expect(TokenColon); err != nil {
				return nil, err
			}
			val, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			n.Keys = append(n.Keys, key.Value)
			n.Operands = append(n.Operands, val)
			if p.current.Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if err := p.expect(TokenBraceClose); err != nil {
		return nil, err
	}
	return n, nil
}

// parseTemplate splits a backtick template into text chunks and parsed
// ${...} expressions.
func (p *Parser) parseTemplate(tok Token) (*Node, error) {
	n := p.node(NodeTemplate, tok)
	n.Value = ""

	body := tok.Value[1 : len(tok.Value)-1]
	base := p.base + tok.Position + 1

	var text strings.Builder
	textStart := 0
	flush := func() {
		if text.Len() > 0 {
			n.Operands = append(n.Operands, &Node{Type: NodeText, Value: text.String(), Position: base + textStart})
			text.Reset()
		}
	}

	for i := 0; i < len(body); {
		switch {
		case body[i] == '\\' && i+1 < len(body):
			if text.Len() == 0 {
				textStart = i
			}
			r, w := utf8.DecodeRuneInString(body[i+1:])
			text.WriteString(unescapeTemplate(r))
			i += 1 + w

		case body[i] == '$' && i+1 < len(body) && body[i+1] == '{':
			flush()
			end := blockEnd(body, i+2)
			if end < 0 {
				return nil, &SyntaxError{Position: base + i, Token: "${", Message: "unterminated ${ block in template"}
			}
			src := body[i+2 : end]
			if strings.TrimSpace(src) == "" {
				return nil, &SyntaxError{Position: base + i, Token: "${}", Message: "empty ${} block in template"}
			}
			expr, err := newParser(src, base+i+2, p.depth, p.opts).Parse()
			if err != nil {
				return nil, err
			}
			n.Operands = append(n.Operands, expr)
			i = end + 1

		default:
			if text.Len() == 0 {
				textStart = i
			}
			text.WriteByte(body[i])
			i++
		}
	}
	flush()
	return n, nil
}

func unescapeTemplate(r rune) string {
	switch r {
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	}
	return string(r)
}
