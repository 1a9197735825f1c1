package template

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// dollarPattern matches $name and $name.field.sub. The name must be followed
// by a non-word character or end of string, so $port does not match inside
// $portNumber.
var dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*(?:\.[a-zA-Z_][a-zA-Z0-9_]*)*)\b`)

var (
	// ErrUnterminatedBlock is returned when a ${ has no matching }.
	ErrUnterminatedBlock = errors.New("unterminated ${ block")

	// ErrMissingValue marks a block that evaluated to a missing value.
	ErrMissingValue = errors.New("value is missing")
)

// BlockError reports a block that failed to compile, or that failed to
// evaluate under MissingError.
type BlockError struct {
	// Source is the block as written, including ${ and }.
	Source string
	// Offset is the byte offset of the block in the template.
	Offset int
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("template: %s at offset %d: %v", e.Source, e.Offset, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}

// Renderer expands ${expr} blocks in text by evaluating each block as an
// expression. Renderer is safe for concurrent use after construction.
type Renderer struct {
	parser        *flowexpr.Parser
	engine        *flowexpr.Engine
	opts          *flowexpr.Options
	missingAction MissingAction
	dollarStyle   bool
}

// NewRenderer creates a Renderer with the given options.
//
// Default configuration:
//   - MissingAction: MissingKeep
//   - Parser: standard function table
//   - DollarStyle: enabled ($path)
//
// Example:
//
//	r := template.NewRenderer(template.WithMissingAction(template.MissingEmpty))
//	out, err := r.Render("Total: ${sum(items) * 1.2}", mem)
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		parser:        flowexpr.NewParser(nil),
		missingAction: MissingKeep,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// segment is a run of literal text or the body of one ${...} block.
type segment struct {
	text   string
	block  bool
	offset int
	raw    string
}

// split cuts src into literal and block segments. Braces inside quoted
// strings in a block do not count toward nesting.
func split(src string) ([]segment, error) {
	var segs []segment
	i := 0
	for i < len(src) {
		idx := strings.Index(src[i:], "${")
		if idx < 0 {
			break
		}
		start := i + idx
		if start > i {
			segs = append(segs, segment{text: src[i:start], offset: i})
		}
		end, ok := blockEnd(src, start+2)
		if !ok {
			return nil, &BlockError{Source: src[start:], Offset: start, Err: ErrUnterminatedBlock}
		}
		segs = append(segs, segment{
			text:   src[start+2 : end],
			block:  true,
			offset: start,
			raw:    src[start : end+1],
		})
		i = end + 1
	}
	if i < len(src) {
		segs = append(segs, segment{text: src[i:], offset: i})
	}
	return segs, nil
}

// blockEnd returns the index of the } closing a block whose body starts at j.
func blockEnd(src string, j int) (int, bool) {
	depth := 0
	var quote byte
	for ; j < len(src); j++ {
		c := src[j]
		if quote != 0 {
			switch c {
			case '\\':
				j++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return j, true
			}
			depth--
		}
	}
	return 0, false
}

// Render expands every block in src against mem. A nil mem is empty.
//
// A block that fails to compile always fails the render. A block that
// evaluates to a missing value or an error is handled by the MissingAction.
//
// Example:
//
//	r := template.NewRenderer()
//	out, _ := r.Render("Hello ${toUpper(name)}", memory.New(map[string]any{"name": "ada"}))
//	// out: "Hello ADA"
func (r *Renderer) Render(src string, mem memory.Memory) (string, error) {
	return r.RenderContext(context.Background(), src, mem)
}

// RenderContext is Render with a context passed to the engine, if one is set.
func (r *Renderer) RenderContext(ctx context.Context, src string, mem memory.Memory) (string, error) {
	if src == "" {
		return "", nil
	}
	segs, err := split(src)
	if err != nil {
		return "", err
	}
	if mem == nil {
		mem = memory.New(nil)
	}

	var b strings.Builder
	for _, seg := range segs {
		var (
			out string
			err error
		)
		if seg.block {
			out, err = r.renderBlock(ctx, seg, mem)
		} else {
			out, err = r.renderLiteral(seg, mem)
		}
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

func (r *Renderer) renderBlock(ctx context.Context, seg segment, mem memory.Memory) (string, error) {
	var (
		expr *flowexpr.Expression
		err  error
	)
	if r.engine != nil {
		expr, err = r.engine.Parse(ctx, seg.text)
	} else {
		expr, err = r.parser.Parse(seg.text)
	}
	if err != nil {
		return "", &BlockError{Source: seg.raw, Offset: seg.offset, Err: err}
	}

	var res flowexpr.Result
	if r.engine != nil {
		res = r.engine.Evaluate(ctx, expr, mem)
	} else {
		res = flowexpr.Evaluate(expr, mem, r.opts)
	}
	return r.resolve(seg, res)
}

// renderLiteral expands $path references in literal text.
func (r *Renderer) renderLiteral(seg segment, mem memory.Memory) (string, error) {
	if !r.dollarStyle || !strings.Contains(seg.text, "$") {
		return seg.text, nil
	}
	matches := dollarPattern.FindAllStringSubmatchIndex(seg.text, -1)
	if matches == nil {
		return seg.text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(seg.text[last:m[0]])
		v, err := mem.GetValue(seg.text[m[2]:m[3]])
		ref := segment{raw: seg.text[m[0]:m[1]], offset: seg.offset + m[0]}
		out, err := r.resolve(ref, flowexpr.Result{Value: v, Err: err})
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		last = m[1]
	}
	b.WriteString(seg.text[last:])
	return b.String(), nil
}

// resolve turns a block result into text, applying the MissingAction when
// the result is an error or a missing value.
func (r *Renderer) resolve(seg segment, res flowexpr.Result) (string, error) {
	err := res.Err
	if err == nil {
		if _, missing := value.OrMissing(res.Value).(value.Missing); !missing {
			return value.Text(res.Value), nil
		}
		err = ErrMissingValue
	}
	switch r.missingAction {
	case MissingEmpty:
		return "", nil
	case MissingError:
		return "", &BlockError{Source: seg.raw, Offset: seg.offset, Err: err}
	default:
		return seg.raw, nil
	}
}

// MustRender is like Render but panics on error.
func (r *Renderer) MustRender(src string, mem memory.Memory) string {
	out, err := r.Render(src, mem)
	if err != nil {
		panic(err)
	}
	return out
}

// RenderAll renders every string in ss. On error it returns nil and the
// first error.
func (r *Renderer) RenderAll(ss []string, mem memory.Memory) ([]string, error) {
	if ss == nil {
		return nil, nil
	}
	out := make([]string, len(ss))
	for i, s := range ss {
		rendered, err := r.Render(s, mem)
		if err != nil {
			return nil, err
		}
		out[i] = rendered
	}
	return out, nil
}

// RenderMap renders every string value of m, recursing into nested maps and
// slices. Other values are copied as-is.
//
// Example:
//
//	out, _ := r.RenderMap(map[string]any{
//	    "url":  "https://${env}.api.com",
//	    "port": 8080,
//	}, mem)
func (r *Renderer) RenderMap(m map[string]any, mem memory.Memory) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		rendered, err := r.renderValue(v, mem)
		if err != nil {
			return nil, err
		}
		out[k] = rendered
	}
	return out, nil
}

func (r *Renderer) renderValue(v any, mem memory.Memory) (any, error) {
	switch val := v.(type) {
	case string:
		return r.Render(val, mem)
	case map[string]any:
		return r.RenderMap(val, mem)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			rendered, err := r.renderValue(item, mem)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}

var defaultRenderer = NewRenderer()

// Render renders src against vars with the default renderer (MissingKeep).
// Only block compile errors are returned.
//
// Example:
//
//	out, _ := template.Render("${a + b}", map[string]any{"a": 1, "b": 2})
//	// out: "3"
func Render(src string, vars map[string]any) (string, error) {
	return defaultRenderer.Render(src, memory.New(vars))
}

// RenderMap renders every string value of m against vars with the default
// renderer.
func RenderMap(m map[string]any, vars map[string]any) (map[string]any, error) {
	return defaultRenderer.RenderMap(m, memory.New(vars))
}
