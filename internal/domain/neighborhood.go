package domain

import "time"

// NeighborhoodProfile is the static metadata for one monitored neighborhood.
// Loaded once at process start; read-only thereafter.
type NeighborhoodProfile struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lng"`
	Population int     `json:"population"`

	// VulnerabilityScore is the 0-10 survey score used as a proxy for
	// medical-device density and outage sensitivity. InfrastructureAge is the
	// approximate age of the local distribution equipment in years.
	VulnerabilityScore float64 `json:"vulnerability_score"`
	InfrastructureAge  float64 `json:"infrastructure_age"`

	// VulnerabilityWeight is the [0,1] static risk component derived from the
	// two fields above at load time.
	VulnerabilityWeight float64 `json:"vulnerability_weight"`
}

// DimensionStats holds the historical mean and standard deviation for one
// weather dimension. StdDev is strictly positive: loaders substitute a
// configured floor for zero or undersampled variance, never zero itself.
type DimensionStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// PatternConditions is the weather configuration recorded for a historical
// pre-outage pattern. Only the three core dimensions are stored; humidity and
// pressure were not tracked in the outage record.
type PatternConditions struct {
	Temp          float64 `json:"temp"`
	WindSpeed     float64 `json:"wind_speed"`
	Precipitation float64 `json:"precipitation"`
}

// HistoricalPattern is one recorded weather configuration known to have
// preceded a past outage in a neighborhood.
type HistoricalPattern struct {
	// Label is a short cause description derived from the dominant condition,
	// e.g. "windstorm" or "deep freeze". Used in factor labels.
	Label      string            `json:"label"`
	Conditions PatternConditions `json:"conditions"`

	// Weight in (0,1] scales the pattern's match similarity. It combines
	// recency decay (old outages count less) with outage severity
	// (long, wide outages count more).
	Weight float64 `json:"weight"`

	// Severity in [0,1] breaks similarity ties toward the worse outage.
	Severity float64 `json:"severity"`

	ObservedAt time.Time `json:"observed_at"`
}

// BaselineEntry is a neighborhood's historical statistical reference: the
// per-dimension distribution parameters the anomaly detector scores against,
// and the pattern library the matcher searches. One entry per neighborhood,
// immutable after load.
type BaselineEntry struct {
	Temperature   DimensionStats  `json:"temperature"`
	Wind          DimensionStats  `json:"wind"`
	Precipitation DimensionStats  `json:"precipitation"`
	Humidity      *DimensionStats `json:"humidity,omitempty"`

	Patterns []HistoricalPattern `json:"patterns"`

	// SampleCount is the number of historical records the statistics were
	// computed from. Informational; exposed by the validate tool.
	SampleCount int `json:"sample_count"`
}
