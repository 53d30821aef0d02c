package domain

import "context"

// WeatherProvider supplies a snapshot of current or near-term forecast
// conditions for a coordinate. Implemented by the OpenWeatherMap adapter;
// the engine itself never performs weather retrieval.
type WeatherProvider interface {
	Forecast(ctx context.Context, lat, lon float64) (WeatherSnapshot, error)
}

// Explainer turns a completed assessment's structured factors into prose for
// end users. The engine only emits the structured factor list; explanation
// text is attached by the caller.
type Explainer interface {
	Explain(ctx context.Context, assessment RiskAssessment) (string, error)
}
