/*
Package template renders text containing ${expr} blocks, where each block is
a flowexpr expression evaluated against a memory.

# Basic Usage

	out, err := template.Render("Hello ${toUpper(name)}!", map[string]any{"name": "ada"})
	// out: "Hello ADA!"

Blocks may contain any expression, including nested braces and quoted
strings:

	template.Render("${join(where(tags, t => t != '}'), ', ')}", vars)

Bare $path references are expanded too:

	template.Render("https://$host:$port/api", vars)

# Missing Values

A block whose result is missing, or whose evaluation fails, is kept as-is by
default. Configure this with WithMissingAction:

	r := template.NewRenderer(template.WithMissingAction(template.MissingError))
	_, err := r.Render("Hello ${missing}", nil)
	// err: template: ${missing} at offset 6: value is missing

A block that does not compile (syntax error, unknown function) always fails
the render with a *BlockError.

# Engines

WithEngine routes block parsing and evaluation through a flowexpr.Engine so
its function table, locale, null substitution and observability apply.

# Thread Safety

Renderer is safe for concurrent use after construction.
*/
package template
