package fqncache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newReader() (*sdkmetric.ManualReader, *sdkmetric.MeterProvider) {
	reader := sdkmetric.NewManualReader()
	return reader, sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
}

// counter sums the data points of the named counter that carry attrs.
func counter(t *testing.T, reader *sdkmetric.ManualReader, name string, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is %T", name, m.Data)
		points:
			for _, dp := range sum.DataPoints {
				for _, kv := range attrs {
					v, ok := dp.Attributes.Value(kv.Key)
					if !ok || v.Emit() != kv.Value.Emit() {
						continue points
					}
				}
				total += dp.Value
			}
		}
	}
	return total
}

func TestMetrics_Lookups(t *testing.T) {
	reader, mp := newReader()
	c := NewStrong[typeInfo](WithMeterProvider(mp))
	c.Add("a.b", info("b"))

	c.Get("a.b")
	c.Get("a.b")
	c.Get("a")       // structural, no payload
	c.Get("missing") // no node

	id := attribute.String("cache", c.ID())
	assert.Equal(t, int64(2), counter(t, reader, "fqncache_hits_total", id))
	assert.Equal(t, int64(2), counter(t, reader, "fqncache_misses_total", id))
}

func TestMetrics_LookupsPerCache(t *testing.T) {
	reader, mp := newReader()
	first := NewStrong[typeInfo](WithMeterProvider(mp))
	second := NewStrong[typeInfo](WithMeterProvider(mp))
	first.Add("a", info("a"))

	first.Get("a")
	second.Get("a")

	assert.Equal(t, int64(1), counter(t, reader, "fqncache_hits_total", attribute.String("cache", first.ID())))
	assert.Zero(t, counter(t, reader, "fqncache_hits_total", attribute.String("cache", second.ID())))
	assert.Equal(t, int64(1), counter(t, reader, "fqncache_misses_total", attribute.String("cache", second.ID())))
}

func TestMetrics_ExpiringEvictions(t *testing.T) {
	reader, mp := newReader()
	c, err := NewExpiring[typeInfo](ExpiringOptions{TTL: time.Hour, MaxEntries: 100}, WithMeterProvider(mp))
	require.NoError(t, err)
	defer c.Close()

	c.Add("a.b", info("b"))
	c.Add("a.c", info("c"))
	c.Add("a.d", nil)
	assert.Zero(t, counter(t, reader, "fqncache_evictions_total"))

	// Clearing evicts every stored payload; the nil payload was never stored.
	c.Clear()

	assert.Equal(t, int64(2), counter(t, reader, "fqncache_evictions_total"))
}
