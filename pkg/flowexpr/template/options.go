package template

import "github.com/randalmurphal/flowexpr/pkg/flowexpr"

// MissingAction specifies what happens when a block evaluates to a missing
// value or an evaluation error.
type MissingAction int

const (
	// MissingKeep keeps the block text as-is. This is the default.
	MissingKeep MissingAction = iota

	// MissingEmpty replaces the block with an empty string.
	MissingEmpty

	// MissingError fails the render with a *BlockError.
	MissingError
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithMissingAction sets how failed blocks are handled.
//
// Default: MissingKeep
//
// Example:
//
//	r := template.NewRenderer(template.WithMissingAction(template.MissingError))
//	_, err := r.Render("${missing}", nil)
//	// err: template: ${missing} at offset 0: value is missing
func WithMissingAction(action MissingAction) Option {
	return func(r *Renderer) {
		r.missingAction = action
	}
}

// WithParser compiles blocks with p instead of the standard function table.
func WithParser(p *flowexpr.Parser) Option {
	return func(r *Renderer) {
		if p != nil {
			r.parser = p
		}
	}
}

// WithEngine compiles and evaluates blocks through engine, so block parses and
// evaluations are logged, traced and measured like any other.
// It takes precedence over WithParser and WithOptions.
func WithEngine(engine *flowexpr.Engine) Option {
	return func(r *Renderer) {
		r.engine = engine
	}
}

// WithOptions sets the evaluation options used when no engine is configured.
func WithOptions(opts *flowexpr.Options) Option {
	return func(r *Renderer) {
		r.opts = opts
	}
}

// WithDollarStyle enables or disables bare $path references such as
// $user.name outside ${...} blocks.
//
// Default: true
func WithDollarStyle(enabled bool) Option {
	return func(r *Renderer) {
		r.dollarStyle = enabled
	}
}
