package domain

import "time"

// RiskTier is the coarse categorical bucket derived from the numeric score.
type RiskTier string

const (
	TierLow      RiskTier = "Low"
	TierModerate RiskTier = "Moderate"
	TierHigh     RiskTier = "High"
)

// Tier thresholds, inclusive on the lower edge.
const (
	moderateThreshold = 40.0
	highThreshold     = 70.0
)

// TierForScore maps a risk score to its tier. Total over all reals: scores
// below the moderate threshold (including any negative input) are Low,
// everything from the high threshold up is High.
func TierForScore(score float64) RiskTier {
	switch {
	case score >= highThreshold:
		return TierHigh
	case score >= moderateThreshold:
		return TierModerate
	default:
		return TierLow
	}
}

// Weather dimensions scored by the anomaly detector.
const (
	DimTemperature   = "temperature"
	DimWind          = "wind"
	DimPrecipitation = "precipitation"
	DimHumidity      = "humidity"
)

// Factor direction values. Up means the underlying reading sits above the
// historical baseline, down below it; neutral marks static or pattern signals
// with no baseline direction.
const (
	DirectionUp      = "up"
	DirectionDown    = "down"
	DirectionNeutral = "neutral"
)

// Factor is one contributing risk signal, ordered by weighted contribution in
// the assessment output. Name is a short cause label for the explanation
// collaborator; the engine never produces prose beyond these labels.
type Factor struct {
	Name      string  `json:"name"`
	Magnitude float64 `json:"magnitude"` // weighted contribution on the 0-100 score scale
	Direction string  `json:"direction"`
}

// AnomalyResult holds per-dimension signed z-scores and the weighted aggregate
// anomaly magnitude. The aggregate is unbounded; fusion saturates it before
// blending so a single extreme reading cannot dominate the final score alone.
type AnomalyResult struct {
	Temperature   float64  `json:"temperature_z"`
	Wind          float64  `json:"wind_z"`
	Precipitation float64  `json:"precipitation_z"`
	Humidity      *float64 `json:"humidity_z,omitempty"`

	Aggregate float64 `json:"aggregate"`
}

// PatternResult is the outcome of matching a snapshot against a neighborhood's
// historical pattern library. Best is nil and Similarity 0 when the library is
// empty, which is an expected condition rather than an error.
type PatternResult struct {
	Best       *HistoricalPattern `json:"best,omitempty"`
	Similarity float64            `json:"similarity"` // [0,1]
}

// RiskAssessment is the engine's complete output for one request. Created
// fresh per call, never mutated afterwards, and not persisted by the engine;
// callers may cache, publish, or enrich it (e.g. attach generated prose).
type RiskAssessment struct {
	NeighborhoodID   string          `json:"neighborhood_id"`
	NeighborhoodName string          `json:"neighborhood_name"`
	RiskScore        float64         `json:"risk_score"` // clamped to [0,100]
	RiskLevel        RiskTier        `json:"risk_level"`
	Weather          WeatherSnapshot `json:"weather"`
	Factors          []Factor        `json:"factors"`

	Anomaly AnomalyResult `json:"anomaly"`
	Pattern PatternResult `json:"pattern"`

	AssessedAt time.Time `json:"timestamp"`
}
