package stealpool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	sp "github.com/Andrej220/go-utils/stealpool"
)

func newTestOTelMetrics(t *testing.T) (*sp.OTelMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := sp.NewOTelMetrics(mp)
	require.NoError(t, err)
	return m, reader
}

// sums collects every int64 counter as name -> queue attribute -> value.
func sums(t *testing.T, reader *sdkmetric.ManualReader) map[string]map[string]int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			data, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			byQueue := make(map[string]int64)
			for _, dp := range data.DataPoints {
				q, _ := dp.Attributes.Value(attribute.Key("queue"))
				byQueue[q.AsString()] += dp.Value
			}
			out[m.Name] = byQueue
		}
	}
	return out
}

func TestNewOTelMetrics_NilProvider(t *testing.T) {
	m, err := sp.NewOTelMetrics(nil)
	assert.Error(t, err)
	assert.Nil(t, m)
}

func TestOTelMetrics_RecordsPoolActivity(t *testing.T) {
	metrics, reader := newTestOTelMetrics(t)

	p, err := sp.NewPoolFromOptions(sp.Options{Workers: 2, Metrics: metrics})
	require.NoError(t, err)

	for range 5 {
		require.NoError(t, p.Submit(context.Background(), func(ctx context.Context) {
			_ = p.Submit(ctx, func(context.Context) {})
		}))
	}
	require.NoError(t, p.Submit(context.Background(), sp.Func(func() { panic("boom") })))
	waitIdle(t, p)
	require.NoError(t, p.Close())

	got := sums(t, reader)

	assert.Equal(t, int64(6), got["stealpool.tasks.submitted"]["overflow"])
	assert.Equal(t, int64(5), got["stealpool.tasks.submitted"]["local"])

	executed := int64(0)
	for _, v := range got["stealpool.tasks.executed"] {
		executed += v
	}
	assert.Equal(t, int64(11), executed)
	assert.Equal(t, int64(1), got["stealpool.tasks.panicked"][""])
}
