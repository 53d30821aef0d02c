package refdata

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/config"
	"github.com/couchcryptid/outage-risk-service/internal/domain"
)

// Reference file names inside the data directory.
const (
	neighborhoodsFile = "neighborhoods.json"
	outagesFile       = "historical_outages.json"
)

// Fallback statistics for neighborhoods with too little history to estimate a
// distribution (fewer than two records). Means are mild mid-latitude
// conditions; the standard deviations are deliberately wide so sparse history
// never manufactures anomalies.
var fallbackStats = map[string]domain.DimensionStats{
	domain.DimTemperature:   {Mean: 10, StdDev: 10},
	domain.DimWind:          {Mean: 20, StdDev: 15},
	domain.DimPrecipitation: {Mean: 2, StdDev: 1},
}

// Pattern recency decay time constant: an outage three years old carries
// roughly 37% of the weight of one that happened today.
const recencyTimeConstantYears = 3.0

// Severity normalization caps: a 12-hour outage or 5000 affected customers
// each saturate their share of the severity term.
const (
	severityDurationCapMinutes = 720.0
	severityCustomersCap       = 5000.0
)

// Floors are the minimum standard deviations per dimension, substituted when a
// neighborhood's history has degenerate variance. All values must be positive.
type Floors struct {
	Temp     float64
	Wind     float64
	Precip   float64
	Humidity float64
}

// FloorsFromConfig maps service configuration onto loader floors.
func FloorsFromConfig(cfg *config.Config) Floors {
	return Floors{
		Temp:     cfg.StdDevFloorTemp,
		Wind:     cfg.StdDevFloorWind,
		Precip:   cfg.StdDevFloorPrecip,
		Humidity: cfg.StdDevFloorHumidity,
	}
}

// neighborhoodRecord mirrors one entry of neighborhoods.json.
type neighborhoodRecord struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lng"`
	Population         int     `json:"population"`
	VulnerabilityScore float64 `json:"vulnerability_score"`
	InfrastructureAge  float64 `json:"infrastructure_age"`
}

// outageRecord mirrors one entry of historical_outages.json.
type outageRecord struct {
	NeighborhoodID    string             `json:"neighborhood_id"`
	Date              string             `json:"date"` // YYYY-MM-DD
	OutageOccurred    bool               `json:"outage_occurred"`
	DurationMinutes   float64            `json:"duration_minutes"`
	CustomersAffected float64            `json:"customers_affected"`
	Conditions        recordedConditions `json:"weather_conditions"`
}

type recordedConditions struct {
	Temp          float64  `json:"temp"`
	WindSpeed     float64  `json:"wind_speed"`
	Precipitation float64  `json:"precipitation"`
	Humidity      *float64 `json:"humidity,omitempty"`
}

// Load reads the reference files from dir and builds the immutable Store.
// All validation failures are *domain.ConfigurationError: malformed reference
// data must prevent the engine from serving requests.
func Load(dir string, floors Floors) (*Store, error) {
	if err := floors.validate(); err != nil {
		return nil, err
	}

	neighborhoods, err := loadJSON[neighborhoodRecord](filepath.Join(dir, neighborhoodsFile))
	if err != nil {
		return nil, err
	}
	if len(neighborhoods) == 0 {
		return nil, &domain.ConfigurationError{Detail: neighborhoodsFile + " contains no neighborhoods"}
	}

	outages, err := loadJSON[outageRecord](filepath.Join(dir, outagesFile))
	if err != nil {
		return nil, err
	}

	entries := make(map[string]Entry, len(neighborhoods))
	for _, rec := range neighborhoods {
		profile, err := buildProfile(rec)
		if err != nil {
			return nil, err
		}
		if _, dup := entries[profile.ID]; dup {
			return nil, &domain.ConfigurationError{Detail: "duplicate neighborhood id " + profile.ID}
		}
		entries[profile.ID] = Entry{Profile: profile}
	}

	history := make(map[string][]outageRecord, len(entries))
	for i, rec := range outages {
		if _, ok := entries[rec.NeighborhoodID]; !ok {
			return nil, &domain.ConfigurationError{
				Detail: fmt.Sprintf("%s record %d references unknown neighborhood %q", outagesFile, i, rec.NeighborhoodID),
			}
		}
		history[rec.NeighborhoodID] = append(history[rec.NeighborhoodID], rec)
	}

	now := domain.Now()
	for id, e := range entries {
		baseline, err := buildBaseline(id, history[id], floors, now)
		if err != nil {
			return nil, err
		}
		e.Baseline = baseline
		entries[id] = e
	}

	return newStore(entries), nil
}

func (f Floors) validate() error {
	for name, v := range map[string]float64{
		"temperature": f.Temp, "wind": f.Wind, "precipitation": f.Precip, "humidity": f.Humidity,
	} {
		if v <= 0 {
			return &domain.ConfigurationError{Detail: "stddev floor for " + name + " must be positive"}
		}
	}
	return nil
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigurationError{Detail: "read " + filepath.Base(path), Err: err}
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &domain.ConfigurationError{Detail: "parse " + filepath.Base(path), Err: err}
	}
	return out, nil
}

func buildProfile(rec neighborhoodRecord) (domain.NeighborhoodProfile, error) {
	switch {
	case rec.ID == "":
		return domain.NeighborhoodProfile{}, &domain.ConfigurationError{Detail: "neighborhood with empty id"}
	case rec.Name == "":
		return domain.NeighborhoodProfile{}, &domain.ConfigurationError{Detail: "neighborhood " + rec.ID + " has no name"}
	case rec.Population <= 0:
		return domain.NeighborhoodProfile{}, &domain.ConfigurationError{Detail: "neighborhood " + rec.ID + " has non-positive population"}
	case rec.Lat < -90 || rec.Lat > 90 || rec.Lon < -180 || rec.Lon > 180:
		return domain.NeighborhoodProfile{}, &domain.ConfigurationError{Detail: "neighborhood " + rec.ID + " has invalid coordinates"}
	case rec.VulnerabilityScore < 0 || rec.VulnerabilityScore > 10:
		return domain.NeighborhoodProfile{}, &domain.ConfigurationError{Detail: "neighborhood " + rec.ID + " vulnerability score outside 0-10"}
	case rec.InfrastructureAge < 0:
		return domain.NeighborhoodProfile{}, &domain.ConfigurationError{Detail: "neighborhood " + rec.ID + " has negative infrastructure age"}
	}

	return domain.NeighborhoodProfile{
		ID:                  rec.ID,
		Name:                rec.Name,
		Lat:                 rec.Lat,
		Lon:                 rec.Lon,
		Population:          rec.Population,
		VulnerabilityScore:  rec.VulnerabilityScore,
		InfrastructureAge:   rec.InfrastructureAge,
		VulnerabilityWeight: vulnerabilityWeight(rec.VulnerabilityScore, rec.InfrastructureAge),
	}, nil
}

// vulnerabilityWeight derives the [0,1] static risk component: 60% from the
// vulnerability survey score, 40% from equipment age, which saturates at 50
// years (past that, age stops adding information).
func vulnerabilityWeight(score, ageYears float64) float64 {
	age := math.Min(ageYears, 50) / 50
	w := 0.6*(score/10) + 0.4*age
	return math.Min(math.Max(w, 0), 1)
}

func buildBaseline(id string, records []outageRecord, floors Floors, now time.Time) (domain.BaselineEntry, error) {
	baseline := domain.BaselineEntry{SampleCount: len(records)}

	temps := make([]float64, 0, len(records))
	winds := make([]float64, 0, len(records))
	precips := make([]float64, 0, len(records))
	var humidities []float64
	for _, r := range records {
		temps = append(temps, r.Conditions.Temp)
		winds = append(winds, r.Conditions.WindSpeed)
		precips = append(precips, r.Conditions.Precipitation)
		if r.Conditions.Humidity != nil {
			humidities = append(humidities, *r.Conditions.Humidity)
		}
	}

	baseline.Temperature = dimensionStats(temps, floors.Temp, fallbackStats[domain.DimTemperature])
	baseline.Wind = dimensionStats(winds, floors.Wind, fallbackStats[domain.DimWind])
	baseline.Precipitation = dimensionStats(precips, floors.Precip, fallbackStats[domain.DimPrecipitation])
	if len(humidities) >= 2 {
		stats := dimensionStats(humidities, floors.Humidity, domain.DimensionStats{})
		baseline.Humidity = &stats
	}

	for i, r := range records {
		if !r.OutageOccurred {
			continue
		}
		pattern, err := buildPattern(id, i, r, now)
		if err != nil {
			return domain.BaselineEntry{}, err
		}
		baseline.Patterns = append(baseline.Patterns, pattern)
	}

	return baseline, nil
}

// dimensionStats computes mean and population standard deviation, substituting
// fallback statistics for undersampled dimensions and flooring degenerate
// variance. The returned StdDev is always positive.
func dimensionStats(values []float64, floor float64, fallback domain.DimensionStats) domain.DimensionStats {
	switch len(values) {
	case 0:
		return fallback
	case 1:
		return domain.DimensionStats{Mean: values[0], StdDev: math.Max(fallback.StdDev, floor)}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))

	return domain.DimensionStats{Mean: mean, StdDev: math.Max(math.Sqrt(variance), floor)}
}

func buildPattern(id string, index int, rec outageRecord, now time.Time) (domain.HistoricalPattern, error) {
	observedAt, err := time.Parse("2006-01-02", rec.Date)
	if err != nil {
		return domain.HistoricalPattern{}, &domain.ConfigurationError{
			Detail: fmt.Sprintf("neighborhood %s outage record %d has invalid date %q", id, index, rec.Date),
			Err:    err,
		}
	}
	if rec.DurationMinutes < 0 || rec.CustomersAffected < 0 {
		return domain.HistoricalPattern{}, &domain.ConfigurationError{
			Detail: fmt.Sprintf("neighborhood %s outage record %d has negative impact fields", id, index),
		}
	}

	severity := severityNorm(rec.DurationMinutes, rec.CustomersAffected)

	ageYears := now.Sub(observedAt).Hours() / (24 * 365.25)
	if ageYears < 0 {
		ageYears = 0
	}
	recency := math.Exp(-ageYears / recencyTimeConstantYears)

	// Weight in (0,1]: recency decays the whole pattern, severity scales the
	// portion above the floor so even a mild recent outage keeps some pull.
	weight := math.Min(math.Max(recency*(0.4+0.6*severity), 0.05), 1)

	return domain.HistoricalPattern{
		Label: patternLabel(rec.Conditions),
		Conditions: domain.PatternConditions{
			Temp:          rec.Conditions.Temp,
			WindSpeed:     rec.Conditions.WindSpeed,
			Precipitation: rec.Conditions.Precipitation,
		},
		Weight:     weight,
		Severity:   severity,
		ObservedAt: observedAt,
	}, nil
}

func severityNorm(durationMinutes, customersAffected float64) float64 {
	d := math.Min(durationMinutes/severityDurationCapMinutes, 1)
	c := math.Min(customersAffected/severityCustomersCap, 1)
	return 0.6*d + 0.4*c
}

// patternLabel names a pre-outage weather configuration by its dominant
// condition. Thresholds follow the hazard levels the fusion factor labels
// describe: damaging wind first, then flooding rain, then thermal extremes.
func patternLabel(c recordedConditions) string {
	switch {
	case c.WindSpeed >= 60:
		return "windstorm"
	case c.Precipitation >= 10:
		return "heavy rain"
	case c.Temp <= -5:
		return "deep freeze"
	case c.Temp >= 32:
		return "heat wave"
	default:
		return "severe weather"
	}
}
