package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a meter provider backed by a manual reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	return reader, provider
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterTotal(t *testing.T, rm *metricdata.ResourceMetrics, name string) int64 {
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type for %s", name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	_, provider := setupMetricsTest(t)
	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	defer otel.SetMeterProvider(original)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)
	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordParse(t *testing.T) {
	reader, provider := setupMetricsTest(t)
	m, err := NewMetricsRecorderFor(provider)
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordParse(ctx, 2*time.Millisecond, nil)
	m.RecordParse(ctx, time.Millisecond, errors.New("syntax"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), counterTotal(t, rm, "flowexpr.parse.count"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "flowexpr.parse.errors"))

	latency := findMetric(rm, "flowexpr.parse.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	assert.NotEmpty(t, hist.DataPoints)
}

func TestRecordEvaluation(t *testing.T) {
	reader, provider := setupMetricsTest(t)
	m, err := NewMetricsRecorderFor(provider)
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordEvaluation(ctx, "int", time.Millisecond, nil)
	m.RecordEvaluation(ctx, "string", time.Millisecond, nil)
	m.RecordEvaluation(ctx, "runtime", time.Millisecond, errors.New("divide by zero"))

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(3), counterTotal(t, rm, "flowexpr.eval.count"))
	assert.Equal(t, int64(1), counterTotal(t, rm, "flowexpr.eval.errors"))

	count := findMetric(rm, "flowexpr.eval.count")
	require.NotNil(t, count)
	kinds := map[string]int64{}
	for _, dp := range count.Data.(metricdata.Sum[int64]).DataPoints {
		v, ok := dp.Attributes.Value("result_kind")
		require.True(t, ok)
		kinds[v.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"int": 1, "string": 1, "error": 1}, kinds)

	errs := findMetric(rm, "flowexpr.eval.errors")
	require.NotNil(t, errs)
	dps := errs.Data.(metricdata.Sum[int64]).DataPoints
	require.Len(t, dps, 1)
	category, ok := dps[0].Attributes.Value("error_category")
	require.True(t, ok)
	assert.Equal(t, "runtime", category.AsString())

	assert.NotNil(t, findMetric(rm, "flowexpr.eval.latency_ms"))
}
