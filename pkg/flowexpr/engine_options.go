package flowexpr

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/flowexpr/pkg/flowexpr/config"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/observability"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/parser"
	"github.com/randalmurphal/flowexpr/pkg/flowexpr/value"
)

// engineConfig holds Engine settings.
type engineConfig struct {
	functions        *FunctionTable
	logger           *slog.Logger
	metricsEnabled   bool
	metrics          observability.MetricsRecorder
	tracingEnabled   bool
	spans            observability.SpanManager
	locale           string
	nullSubstitution func(path string) value.Value
	maxDepth         int
	aliases          map[string]string
	excluded         []string
	err              error
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
		maxDepth: parser.DefaultMaxDepth,
	}
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithFunctions sets the function table. Default: StandardFunctions().
func WithFunctions(table *FunctionTable) EngineOption {
	return func(c *engineConfig) {
		c.functions = table
	}
}

// WithLogger sets the logger for parse and evaluation events.
// Default: no logging.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
//
// Example:
//
//	engine, err := flowexpr.NewEngine(flowexpr.WithMetrics(true))
func WithMetrics(enabled bool) EngineOption {
	return func(c *engineConfig) {
		c.metricsEnabled = enabled
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder enables metrics with a specific recorder.
func WithMetricsRecorder(recorder observability.MetricsRecorder) EngineOption {
	return func(c *engineConfig) {
		if recorder == nil {
			return
		}
		c.metricsEnabled = true
		c.metrics = recorder
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider.
func WithTracing(enabled bool) EngineOption {
	return func(c *engineConfig) {
		c.tracingEnabled = enabled
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager enables tracing with a specific span manager.
func WithSpanManager(spans observability.SpanManager) EngineOption {
	return func(c *engineConfig) {
		if spans == nil {
			return
		}
		c.tracingEnabled = true
		c.spans = spans
	}
}

// WithDefaultLocale sets the locale passed to every evaluation.
func WithDefaultLocale(locale string) EngineOption {
	return func(c *engineConfig) {
		c.locale = locale
	}
}

// WithNullSubstitution sets the hook used when a memory path is missing.
func WithNullSubstitution(fn func(path string) value.Value) EngineOption {
	return func(c *engineConfig) {
		c.nullSubstitution = fn
	}
}

// WithMaxDepth limits expression nesting. Default: parser.DefaultMaxDepth.
func WithMaxDepth(depth int) EngineOption {
	return func(c *engineConfig) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithAlias makes alias resolve to the same function as target.
func WithAlias(alias, target string) EngineOption {
	return func(c *engineConfig) {
		if c.aliases == nil {
			c.aliases = make(map[string]string)
		}
		c.aliases[alias] = target
	}
}

// WithoutFunctions removes names from the engine's table after aliases are
// added. Expressions calling a removed name fail to parse.
func WithoutFunctions(names ...string) EngineOption {
	return func(c *engineConfig) {
		c.excluded = append(c.excluded, names...)
	}
}

// Null substitution modes accepted by WithConfig.
const (
	NullSubstitutionNone     = "none"
	NullSubstitutionEmpty    = "empty"
	NullSubstitutionPath     = "path"
	NullSubstitutionConstant = "constant"
)

// WithConfig applies settings from a config.Config.
//
// Keys:
//   - locale: default locale tag
//   - null_substitution: "none", "empty" (missing paths read as '') or
//     "path" (missing paths read as their own path text); or a section
//     {mode: constant, value: <any>} substituting a fixed value
//   - metrics, tracing: enable OpenTelemetry instrumentation
//   - max_depth: maximum expression nesting
//   - aliases: map of alias name to function name
//   - exclude_functions: list of function names to remove
func WithConfig(cfg config.Config) EngineOption {
	return func(c *engineConfig) {
		if cfg.Has("locale") {
			c.locale = cfg.String("locale", c.locale)
		}

		section := cfg.Sub("null_substitution")
		mode := cfg.String("null_substitution", section.String("mode", NullSubstitutionNone))
		switch mode {
		case NullSubstitutionNone:
		case NullSubstitutionEmpty:
			c.nullSubstitution = func(string) value.Value { return value.String("") }
		case NullSubstitutionPath:
			c.nullSubstitution = func(path string) value.Value { return value.String(path) }
		case NullSubstitutionConstant:
			raw := section.Any("value", nil)
			if raw == nil {
				c.err = fmt.Errorf("config: null_substitution %q needs a value", mode)
				return
			}
			fixed := value.FromAny(raw)
			c.nullSubstitution = func(string) value.Value { return fixed }
		default:
			c.err = fmt.Errorf("config: unknown null_substitution %q", mode)
		}

		if cfg.Has("metrics") {
			WithMetrics(cfg.Bool("metrics", false))(c)
		}
		if cfg.Has("tracing") {
			WithTracing(cfg.Bool("tracing", false))(c)
		}
		if cfg.Has("max_depth") {
			WithMaxDepth(cfg.Int("max_depth", c.maxDepth))(c)
		}
		for alias, target := range cfg.StringMap("aliases", nil) {
			WithAlias(alias, target)(c)
		}
		WithoutFunctions(cfg.StringSlice("exclude_functions", nil)...)(c)
	}
}
