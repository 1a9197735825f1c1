package flowexpr

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/memory"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/observability"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/parser"
)

// Engine pairs a function table and default options with logging, metrics
// and tracing. It is immutable after NewEngine and safe for concurrent use.
type Engine struct {
	parser    *Parser
	functions *FunctionTable
	opts      *Options
	cfg       engineConfig
}

// NewEngine builds an engine. It fails when an option is invalid, for
// example an alias whose target does not exist.
//
// Example:
//
//	engine, err := flowexpr.NewEngine(
//	    flowexpr.WithLogger(logger),
//	    flowexpr.WithMetrics(true),
//	    flowexpr.WithDefaultLocale("de-DE"),
//	)
func NewEngine(opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	table := cfg.functions
	if table == nil {
		table = StandardFunctions()
	}
	aliases := make([]string, 0, len(cfg.aliases))
	for alias := range cfg.aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	for _, alias := range aliases {
		next, err := table.Alias(alias, cfg.aliases[alias])
		if err != nil {
			return nil, err
		}
		table = next
	}
	for _, name := range cfg.excluded {
		table = table.Without(name)
	}

	return &Engine{
		parser:    NewParser(table.Lookup, parser.WithMaxDepth(cfg.maxDepth)),
		functions: table,
		opts: &Options{
			Locale:           cfg.locale,
			NullSubstitution: cfg.nullSubstitution,
		},
		cfg: cfg,
	}, nil
}

// Functions returns the engine's function table.
func (e *Engine) Functions() *FunctionTable {
	return e.functions
}

// Options returns a copy of the options every evaluation receives.
func (e *Engine) Options() Options {
	return *e.opts
}

// Parse compiles source against the engine's function table.
func (e *Engine) Parse(ctx context.Context, source string) (*Expression, error) {
	ctx, span := e.cfg.spans.StartParseSpan(ctx, source)

	start := time.Now()
	expr, err := e.parser.Parse(source)
	duration := time.Since(start)

	e.cfg.spans.EndSpanWithError(span, err)
	e.cfg.metrics.RecordParse(ctx, duration, err)
	if err != nil {
		observability.LogParseError(e.cfg.logger, source, err)
		return nil, err
	}
	observability.LogParse(e.cfg.logger, source, observability.DurationMs(duration))
	return expr, nil
}

// Evaluate evaluates expr with the engine's options. A canceled ctx fails
// the evaluation before it starts; a running evaluation is not interrupted.
func (e *Engine) Evaluate(ctx context.Context, expr *Expression, mem memory.Memory) Result {
	if expr == nil {
		return FailErr(ErrNilExpression)
	}
	if err := ctx.Err(); err != nil {
		return FailErr(err)
	}

	evalID := uuid.NewString()
	rendered := expr.String()
	logger := observability.EnrichLogger(e.cfg.logger, evalID, rendered)
	ctx, span := e.cfg.spans.StartEvaluateSpan(ctx, evalID, rendered)

	start := time.Now()
	res := Evaluate(expr, mem, e.opts)
	duration := time.Since(start)

	e.cfg.spans.EndSpanWithError(span, res.Err)
	if res.Failed() {
		category := Categorize(res.Err)
		e.cfg.metrics.RecordEvaluation(ctx, category.String(), duration, res.Err)
		if category == CategoryMemory {
			observability.LogMemoryError(logger, "read", res.Err)
		}
		observability.LogEvaluateError(logger, res.Err, observability.DurationMs(duration))
		return res
	}
	kind := res.Value.Kind().String()
	e.cfg.metrics.RecordEvaluation(ctx, kind, duration, nil)
	observability.LogEvaluate(logger, kind, observability.DurationMs(duration))
	return res
}

// ParseAndEvaluate compiles and evaluates source in one call. A construction
// failure is returned as the error; evaluation failures stay in the Result.
func (e *Engine) ParseAndEvaluate(ctx context.Context, source string, mem memory.Memory) (Result, error) {
	expr, err := e.Parse(ctx, source)
	if err != nil {
		return Result{}, err
	}
	return e.Evaluate(ctx, expr, mem), nil
}
