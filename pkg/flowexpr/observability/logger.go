// Package observability provides logging, metrics and tracing for flowexpr:
// structured logging via slog, metrics and spans via OpenTelemetry.
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds evaluation context to a logger.
// Returns a new logger with eval_id and expression fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "3f1c...", "user.age >= 18")
//	enriched.Info("evaluating") // includes eval_id, expression
func EnrichLogger(logger *slog.Logger, evalID, expression string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("eval_id", evalID),
		slog.String("expression", expression),
	)
}

// LogParse logs a successful parse.
func LogParse(logger *slog.Logger, source string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("expression parsed",
		slog.String("source", source),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogParseError logs a construction failure.
func LogParseError(logger *slog.Logger, source string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("expression parse failed",
		slog.String("source", source),
		slog.String("error", err.Error()),
	)
}

// LogEvaluate logs a successful evaluation.
func LogEvaluate(logger *slog.Logger, kind string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("expression evaluated",
		slog.String("result_kind", kind),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluateError logs an evaluation that produced an error result.
func LogEvaluateError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("expression evaluation failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogMemoryError logs a failure of the backing memory (non-fatal).
func LogMemoryError(logger *slog.Logger, op string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("memory operation failed",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
}

// DurationMs converts d to fractional milliseconds for log and metric fields.
func DurationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
