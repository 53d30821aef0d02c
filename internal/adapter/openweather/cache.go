package openweather

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
)

// CachedProvider wraps a WeatherProvider with a per-coordinate TTL cache.
// Forecasts go stale, so entries expire rather than being evicted by use.
type CachedProvider struct {
	inner   domain.WeatherProvider
	ttl     time.Duration
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	snapshot  domain.WeatherSnapshot
	expiresAt time.Time
}

// NewCachedProvider creates a TTL cache decorator around a weather provider.
func NewCachedProvider(inner domain.WeatherProvider, ttl time.Duration, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		ttl:     ttl,
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedProvider) Forecast(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	// Three decimals is roughly a 100 m grid, well inside one forecast cell.
	key := fmt.Sprintf("%.3f,%.3f", lat, lon)
	now := domain.Now()

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()
	if ok && now.Before(e.expiresAt) {
		c.metrics.WeatherCache.WithLabelValues("hit").Inc()
		return e.snapshot, nil
	}
	c.metrics.WeatherCache.WithLabelValues("miss").Inc()

	snapshot, err := c.inner.Forecast(ctx, lat, lon)
	if err != nil {
		return snapshot, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{snapshot: snapshot, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return snapshot, nil
}
