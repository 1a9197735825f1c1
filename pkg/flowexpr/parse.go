package flowexpr

import (
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/parser"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// Parse compiles source into a validated expression. Leading '=' characters
// are ignored. An empty source yields the empty string constant. A nil lookup
// resolves names through StandardFunctions.
func Parse(source string, lookup Lookup) (*Expression, error) {
	return NewParser(lookup).Parse(source)
}

// MustParse is like Parse but panics on error.
// Use it only for expressions known to be valid, such as in tests.
func MustParse(source string) *Expression {
	e, err := Parse(source, nil)
	if err != nil {
		panic(err)
	}
	return e
}

// Evaluate evaluates expr against mem. A nil mem is an empty memory and nil
// opts means no locale and no null substitution.
func Evaluate(expr *Expression, mem memory.Memory, opts *Options) Result {
	if expr == nil {
		return FailErr(ErrNilExpression)
	}
	if mem == nil {
		mem = memory.New(nil)
	}
	return expr.TryEvaluate(mem, opts)
}

// Parser compiles expressions against a fixed function lookup.
// It holds no mutable state and is safe for concurrent use.
type Parser struct {
	lookup Lookup
	opts   []parser.Option
}

// NewParser returns a parser that resolves names through lookup, or through
// StandardFunctions when lookup is nil.
func NewParser(lookup Lookup, opts ...parser.Option) *Parser {
	if lookup == nil {
		lookup = StandardFunctions().Lookup
	}
	return &Parser{lookup: lookup, opts: opts}
}

// Parse compiles source.
func (p *Parser) Parse(source string) (*Expression, error) {
	source = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(source), "="))
	if source == "" {
		return NewConstant(value.String("")), nil
	}
	node, err := parser.Parse(source, p.opts...)
	if err != nil {
		return nil, err
	}
	return Transform(node, p.lookup)
}
