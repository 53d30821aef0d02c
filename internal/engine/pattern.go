package engine

import (
	"math"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
)

// Per-dimension distance scales, chosen so one scale unit is a meteorologically
// comparable step: 10°C of temperature, 15 km/h of wind, 5 mm of rain.
const (
	tempScale   = 10.0
	windScale   = 15.0
	precipScale = 5.0
)

// similarityTieEpsilon treats similarities closer than this as tied, breaking
// the tie toward the more severe pattern.
const similarityTieEpsilon = 1e-9

// Matcher compares snapshots against a neighborhood's historical pre-outage
// pattern library.
type Matcher struct {
	weights DimensionWeights
}

// NewMatcher creates a Matcher with the given dimension weights.
func NewMatcher(weights DimensionWeights) *Matcher {
	return &Matcher{weights: weights}
}

// Match returns the best-matching historical pattern and its similarity score
// in [0,1]. Per pattern, similarity is the inverse-distance transform
// Weight / (1 + d) where d is the weighted Euclidean distance over the scaled
// core dimensions; the pattern's recency/severity weight caps how strongly an
// old or mild outage can pull the score up. An empty library yields similarity
// 0 and no pattern, never an error.
func (m *Matcher) Match(snapshot domain.WeatherSnapshot, baseline domain.BaselineEntry) domain.PatternResult {
	var result domain.PatternResult

	for i := range baseline.Patterns {
		p := baseline.Patterns[i]
		sim := p.Weight / (1 + m.distance(snapshot, p.Conditions))

		switch {
		case result.Best == nil || sim > result.Similarity+similarityTieEpsilon:
			best := p
			result.Best = &best
			result.Similarity = sim
		case math.Abs(sim-result.Similarity) <= similarityTieEpsilon && p.Severity > result.Best.Severity:
			best := p
			result.Best = &best
		}
	}

	result.Similarity = clamp(result.Similarity, 0, 1)
	return result
}

// distance is the weighted Euclidean distance between a snapshot and a stored
// pattern over the scaled core dimensions, with weights normalized so the
// metric is independent of how the raw weights were tuned.
func (m *Matcher) distance(s domain.WeatherSnapshot, c domain.PatternConditions) float64 {
	wSum := m.weights.Temperature + m.weights.Wind + m.weights.Precipitation

	dt := (s.Temp - c.Temp) / tempScale
	dw := (s.WindSpeed - c.WindSpeed) / windScale
	dp := (s.Precipitation - c.Precipitation) / precipScale

	return math.Sqrt((m.weights.Temperature*dt*dt + m.weights.Wind*dw*dw + m.weights.Precipitation*dp*dp) / wSum)
}
