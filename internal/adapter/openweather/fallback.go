package openweather

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
)

// Simulated is a deterministic stand-in provider for development and for
// environments without an API key. It returns seasonally plausible, calm
// conditions so assessments stay meaningful without fabricating storms.
type Simulated struct{}

// monthlyTemp is a mid-latitude monthly mean temperature curve in °C.
var monthlyTemp = [13]float64{0, -4, -3, 2, 9, 15, 20, 23, 22, 17, 10, 4, -2}

func (Simulated) Forecast(_ context.Context, _, _ float64) (domain.WeatherSnapshot, error) {
	humidity := 65.0
	return domain.WeatherSnapshot{
		Temp:          monthlyTemp[domain.Now().Month()],
		WindSpeed:     15,
		Precipitation: 1,
		Humidity:      &humidity,
	}, nil
}

// FallbackProvider serves simulated conditions when the real provider fails,
// so a provider outage degrades scores instead of taking the service down.
type FallbackProvider struct {
	inner   domain.WeatherProvider
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFallbackProvider creates a fallback decorator around a weather provider.
func NewFallbackProvider(inner domain.WeatherProvider, logger *slog.Logger, metrics *observability.Metrics) *FallbackProvider {
	return &FallbackProvider{inner: inner, logger: logger, metrics: metrics}
}

func (f *FallbackProvider) Forecast(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	snapshot, err := f.inner.Forecast(ctx, lat, lon)
	if err == nil {
		return snapshot, nil
	}

	f.metrics.WeatherRequests.WithLabelValues("fallback").Inc()
	f.logger.WarnContext(ctx, "weather provider failed, serving simulated conditions",
		"error", err,
		"lat", lat,
		"lon", lon,
	)
	return Simulated{}.Forecast(ctx, lat, lon)
}
