package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records flowexpr metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordParse records one parse with its duration and error status.
	RecordParse(ctx context.Context, duration time.Duration, err error)

	// RecordEvaluation records one evaluation. kind is the result value kind,
	// or the error category when err is set.
	RecordEvaluation(ctx context.Context, kind string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	parseCount   metric.Int64Counter
	parseErrors  metric.Int64Counter
	parseLatency metric.Float64Histogram
	evalCount    metric.Int64Counter
	evalErrors   metric.Int64Counter
	evalLatency  metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.GetMeterProvider())
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates the instruments on provider's flowexpr meter.
func newOtelMetrics(provider metric.MeterProvider) (*otelMetrics, error) {
	meter := provider.Meter("flowexpr")

	parseCount, err := meter.Int64Counter("flowexpr.parse.count",
		metric.WithDescription("Number of expressions parsed"),
	)
	if err != nil {
		return nil, err
	}

	parseErrors, err := meter.Int64Counter("flowexpr.parse.errors",
		metric.WithDescription("Number of expressions rejected at construction"),
	)
	if err != nil {
		return nil, err
	}

	parseLatency, err := meter.Float64Histogram("flowexpr.parse.latency_ms",
		metric.WithDescription("Parse latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	evalCount, err := meter.Int64Counter("flowexpr.eval.count",
		metric.WithDescription("Number of evaluations"),
	)
	if err != nil {
		return nil, err
	}

	evalErrors, err := meter.Int64Counter("flowexpr.eval.errors",
		metric.WithDescription("Number of evaluations that produced an error result"),
	)
	if err != nil {
		return nil, err
	}

	evalLatency, err := meter.Float64Histogram("flowexpr.eval.latency_ms",
		metric.WithDescription("Evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		parseCount:   parseCount,
		parseErrors:  parseErrors,
		parseLatency: parseLatency,
		evalCount:    evalCount,
		evalErrors:   evalErrors,
		evalLatency:  evalLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderFor returns a MetricsRecorder bound to a specific provider.
func NewMetricsRecorderFor(provider metric.MeterProvider) (MetricsRecorder, error) {
	m, err := newOtelMetrics(provider)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordParse records a parse.
func (m *otelMetrics) RecordParse(ctx context.Context, duration time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.Bool("success", err == nil))
	m.parseCount.Add(ctx, 1, attrs)
	m.parseLatency.Record(ctx, DurationMs(duration), attrs)
	if err != nil {
		m.parseErrors.Add(ctx, 1)
	}
}

// RecordEvaluation records an evaluation.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, kind string, duration time.Duration, err error) {
	if err == nil {
		attrs := metric.WithAttributes(attribute.String("result_kind", kind))
		m.evalCount.Add(ctx, 1, attrs)
		m.evalLatency.Record(ctx, DurationMs(duration), attrs)
		return
	}

	if kind == "" {
		kind = "unknown"
	}
	attrs := metric.WithAttributes(
		attribute.String("result_kind", "error"),
		attribute.String("error_category", kind),
	)
	m.evalCount.Add(ctx, 1, attrs)
	m.evalLatency.Record(ctx, DurationMs(duration), attrs)
	m.evalErrors.Add(ctx, 1, attrs)
}
