package engine

import (
	"math"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
)

// stdDevEpsilon guards the z-score denominator. Loaders floor standard
// deviations well above this; it only matters for hand-built fixtures.
const stdDevEpsilon = 1e-9

// Detector scores how unusual a snapshot is against a neighborhood baseline.
type Detector struct {
	weights DimensionWeights
}

// NewDetector creates a Detector with the given dimension weights.
func NewDetector(weights DimensionWeights) *Detector {
	return &Detector{weights: weights}
}

// Score computes per-dimension z-scores and the weighted aggregate anomaly
// magnitude.
//
// The aggregate is the weighted root-mean-square of effective z-scores.
// Temperature counts deviations in both directions (cold snaps and heat waves
// both stress the grid); wind, precipitation, and humidity count only
// above-baseline deviations, so calmer-than-usual conditions never register
// as anomalous. Dimensions without evidence (missing optional snapshot field
// or baseline stats) are excluded and the remaining weights renormalized.
func (d *Detector) Score(snapshot domain.WeatherSnapshot, baseline domain.BaselineEntry) domain.AnomalyResult {
	result := domain.AnomalyResult{
		Temperature:   zScore(snapshot.Temp, baseline.Temperature),
		Wind:          zScore(snapshot.WindSpeed, baseline.Wind),
		Precipitation: zScore(snapshot.Precipitation, baseline.Precipitation),
	}

	type contribution struct {
		weight    float64
		effective float64
	}
	contributions := []contribution{
		{d.weights.Temperature, math.Abs(result.Temperature)},
		{d.weights.Wind, positivePart(result.Wind)},
		{d.weights.Precipitation, positivePart(result.Precipitation)},
	}

	if snapshot.Humidity != nil && baseline.Humidity != nil {
		z := zScore(*snapshot.Humidity, *baseline.Humidity)
		result.Humidity = &z
		contributions = append(contributions, contribution{d.weights.Humidity, positivePart(z)})
	}

	var weightSum, squareSum float64
	for _, c := range contributions {
		weightSum += c.weight
		squareSum += c.weight * c.effective * c.effective
	}
	if weightSum > 0 {
		result.Aggregate = math.Sqrt(squareSum / weightSum)
	}

	return result
}

// zScore is the number of standard deviations a value lies from the mean.
func zScore(value float64, stats domain.DimensionStats) float64 {
	return (value - stats.Mean) / math.Max(stats.StdDev, stdDevEpsilon)
}

func positivePart(z float64) float64 {
	if z > 0 {
		return z
	}
	return 0
}
