// Package engine implements the risk assessment core: statistical anomaly
// detection against per-neighborhood baselines, similarity matching against
// historical pre-outage patterns, and fusion of both signals with static
// vulnerability into a 0-100 risk score.
package engine

import (
	"github.com/couchcryptid/outage-risk-service/internal/config"
	"github.com/couchcryptid/outage-risk-service/internal/domain"
)

// DimensionWeights set each weather dimension's share of the anomaly aggregate
// and the pattern distance. Wind and precipitation outweigh temperature: they
// are the conditions that bring lines down. Weights need not sum to 1; they
// are normalized over the dimensions that carry evidence.
type DimensionWeights struct {
	Temperature   float64
	Wind          float64
	Precipitation float64
	Humidity      float64
}

// FusionWeights set the convex split between the three risk signals. The split
// is a tuning constant chosen here, not derived at runtime; the defaults lean
// on anomaly and pattern evidence with a smaller static component.
type FusionWeights struct {
	Anomaly       float64
	Pattern       float64
	Vulnerability float64
}

// Params bundles every engine tunable.
type Params struct {
	Dimensions DimensionWeights
	Fusion     FusionWeights

	// SaturationK shapes the bounded transform 1-exp(-k*aggregate) applied to
	// the unbounded anomaly aggregate before blending. Larger k saturates
	// sooner; the default maps an aggregate of ~3 standard deviations to ~0.8.
	SaturationK float64
}

// DefaultParams returns the documented default tunables.
func DefaultParams() Params {
	return Params{
		Dimensions: DimensionWeights{
			Temperature:   0.20,
			Wind:          0.40,
			Precipitation: 0.30,
			Humidity:      0.10,
		},
		Fusion: FusionWeights{
			Anomaly:       0.45,
			Pattern:       0.35,
			Vulnerability: 0.20,
		},
		SaturationK: 0.55,
	}
}

// ParamsFromConfig maps service configuration onto engine parameters.
// config.Load has already validated ranges.
func ParamsFromConfig(cfg *config.Config) Params {
	return Params{
		Dimensions: DimensionWeights{
			Temperature:   cfg.DimWeightTemp,
			Wind:          cfg.DimWeightWind,
			Precipitation: cfg.DimWeightPrecip,
			Humidity:      cfg.DimWeightHumidity,
		},
		Fusion: FusionWeights{
			Anomaly:       cfg.FusionAnomalyWeight,
			Pattern:       cfg.FusionPatternWeight,
			Vulnerability: cfg.FusionVulnerabilityWeight,
		},
		SaturationK: cfg.AnomalySaturation,
	}
}

// Validate rejects parameter sets the engine cannot score with.
func (p Params) Validate() error {
	for name, w := range map[string]float64{
		"temperature": p.Dimensions.Temperature,
		"wind":        p.Dimensions.Wind,
		"precip":      p.Dimensions.Precipitation,
		"humidity":    p.Dimensions.Humidity,
	} {
		if w < 0 {
			return &domain.ConfigurationError{Detail: "dimension weight " + name + " is negative"}
		}
	}
	if p.Dimensions.Temperature+p.Dimensions.Wind+p.Dimensions.Precipitation <= 0 {
		return &domain.ConfigurationError{Detail: "core dimension weights sum to zero"}
	}
	if p.Fusion.Anomaly < 0 || p.Fusion.Pattern < 0 || p.Fusion.Vulnerability < 0 {
		return &domain.ConfigurationError{Detail: "fusion weights must not be negative"}
	}
	if p.Fusion.Anomaly+p.Fusion.Pattern+p.Fusion.Vulnerability <= 0 {
		return &domain.ConfigurationError{Detail: "fusion weights sum to zero"}
	}
	if p.SaturationK <= 0 {
		return &domain.ConfigurationError{Detail: "anomaly saturation constant must be positive"}
	}
	return nil
}

// normalized returns fusion weights scaled to sum to exactly 1, keeping the
// combination convex regardless of how the operator tuned the raw values.
func (w FusionWeights) normalized() FusionWeights {
	sum := w.Anomaly + w.Pattern + w.Vulnerability
	return FusionWeights{
		Anomaly:       w.Anomaly / sum,
		Pattern:       w.Pattern / sum,
		Vulnerability: w.Vulnerability / sum,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
