package fqncache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "typecore.fqncache"

type cacheMetrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	evictions metric.Int64Counter
}

// newCacheMetrics creates the cache instruments from mp, falling back to
// no-op instruments when the provider rejects them.
func newCacheMetrics(mp metric.MeterProvider) *cacheMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m, err := createCacheMetrics(mp.Meter(meterName))
	if err != nil {
		m, _ = createCacheMetrics(noop.NewMeterProvider().Meter(meterName))
	}
	return m
}

func createCacheMetrics(meter metric.Meter) (*cacheMetrics, error) {
	var (
		m   cacheMetrics
		err error
	)

	m.hits, err = meter.Int64Counter(
		"fqncache_hits_total",
		metric.WithDescription("Lookups that found a live payload"),
	)
	if err != nil {
		return nil, err
	}

	m.misses, err = meter.Int64Counter(
		"fqncache_misses_total",
		metric.WithDescription("Lookups with no node or a reclaimed payload"),
	)
	if err != nil {
		return nil, err
	}

	m.evictions, err = meter.Int64Counter(
		"fqncache_evictions_total",
		metric.WithDescription("Payloads evicted by the expiring strategy"),
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *cacheMetrics) recordLookup(ctx context.Context, cacheID string, hit bool) {
	attrs := metric.WithAttributes(attribute.String("cache", cacheID))
	if hit {
		m.hits.Add(ctx, 1, attrs)
		return
	}
	m.misses.Add(ctx, 1, attrs)
}

func (m *cacheMetrics) recordEviction(ctx context.Context) {
	m.evictions.Add(ctx, 1)
}
