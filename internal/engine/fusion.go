package engine

import (
	"math"
	"sort"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
)

// Factor labels consumed by the explanation collaborator. Labels are cause
// tags, not prose; the engine never generates natural-language text.
const (
	factorVulnerability = "infrastructure vulnerability"
	factorNoPattern     = "no matching outage pattern"
	factorCalmWeather   = "weather within historical norms"
)

// Fuser combines the anomaly, pattern, and vulnerability signals into the
// final score and factor list.
type Fuser struct {
	dimensions DimensionWeights
	fusion     FusionWeights
	saturation float64
}

// NewFuser creates a Fuser from validated parameters.
func NewFuser(params Params) *Fuser {
	return &Fuser{
		dimensions: params.Dimensions,
		fusion:     params.Fusion.normalized(),
		saturation: params.SaturationK,
	}
}

// Fuse blends the three signals into a [0,100] score and the ordered factor
// list. The unbounded anomaly aggregate is saturated through 1-exp(-k*a) so a
// single extreme reading cannot dominate; pattern similarity and vulnerability
// are already bounded. Factors come out in descending weighted-contribution
// order with a deterministic name tie-break, so identical inputs always
// produce identical output.
func (f *Fuser) Fuse(anomaly domain.AnomalyResult, pattern domain.PatternResult, vulnerability float64) (float64, []domain.Factor) {
	anomalyNorm := 1 - math.Exp(-f.saturation*anomaly.Aggregate)
	patternNorm := clamp(pattern.Similarity, 0, 1)
	vulnNorm := clamp(vulnerability, 0, 1)

	anomalyContribution := f.fusion.Anomaly * anomalyNorm * 100
	patternContribution := f.fusion.Pattern * patternNorm * 100
	vulnContribution := f.fusion.Vulnerability * vulnNorm * 100

	score := clamp(anomalyContribution+patternContribution+vulnContribution, 0, 100)

	anomalyName, anomalyDirection := f.anomalyLabel(anomaly)
	patternName, patternDirection := patternLabel(pattern)

	factors := []domain.Factor{
		{Name: anomalyName, Magnitude: anomalyContribution, Direction: anomalyDirection},
		{Name: patternName, Magnitude: patternContribution, Direction: patternDirection},
		{Name: factorVulnerability, Magnitude: vulnContribution, Direction: domain.DirectionNeutral},
	}

	sort.SliceStable(factors, func(i, j int) bool {
		if factors[i].Magnitude != factors[j].Magnitude {
			return factors[i].Magnitude > factors[j].Magnitude
		}
		return factors[i].Name < factors[j].Name
	})

	return score, factors
}

// AnomalyComponent exposes the saturated, weighted anomaly contribution on the
// score scale. Used by the orchestrator for metrics and by property tests.
func (f *Fuser) AnomalyComponent(anomaly domain.AnomalyResult) float64 {
	return f.fusion.Anomaly * (1 - math.Exp(-f.saturation*anomaly.Aggregate)) * 100
}

// anomalyLabel names the dominant anomalous dimension, using the same
// weighting the detector aggregates with.
func (f *Fuser) anomalyLabel(anomaly domain.AnomalyResult) (string, string) {
	type candidate struct {
		name      string
		weighted  float64
		direction string
	}

	tempName := "unusually hot temperature"
	if anomaly.Temperature < 0 {
		tempName = "unusually cold temperature"
	}

	candidates := []candidate{
		{tempName, f.dimensions.Temperature * math.Abs(anomaly.Temperature), directionOf(anomaly.Temperature)},
		{"high wind anomaly", f.dimensions.Wind * positivePart(anomaly.Wind), domain.DirectionUp},
		{"heavy precipitation anomaly", f.dimensions.Precipitation * positivePart(anomaly.Precipitation), domain.DirectionUp},
	}
	if anomaly.Humidity != nil {
		candidates = append(candidates, candidate{
			"abnormal humidity", f.dimensions.Humidity * positivePart(*anomaly.Humidity), domain.DirectionUp,
		})
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.weighted > best.weighted {
			best = c
		}
	}

	if best.weighted == 0 {
		return factorCalmWeather, domain.DirectionNeutral
	}
	return best.name, best.direction
}

func patternLabel(pattern domain.PatternResult) (string, string) {
	if pattern.Best == nil || pattern.Similarity == 0 {
		return factorNoPattern, domain.DirectionNeutral
	}
	return "matches historical " + pattern.Best.Label + " pattern", domain.DirectionUp
}

func directionOf(z float64) string {
	switch {
	case z > 0:
		return domain.DirectionUp
	case z < 0:
		return domain.DirectionDown
	default:
		return domain.DirectionNeutral
	}
}
