// Command validate performs integrity checks on a reference data directory:
// schema and range checks on the raw JSON, cross-references between files,
// loader acceptance, and an engine sanity pass that scores each neighborhood
// against its own baseline means.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/engine"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
	"github.com/couchcryptid/outage-risk-service/internal/refdata"
	"github.com/jonboulle/clockwork"
)

type neighborhoodRecord struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Lat                float64 `json:"lat"`
	Lon                float64 `json:"lng"`
	Population         int     `json:"population"`
	VulnerabilityScore float64 `json:"vulnerability_score"`
	InfrastructureAge  float64 `json:"infrastructure_age"`
}

type outageRecord struct {
	NeighborhoodID    string  `json:"neighborhood_id"`
	Date              string  `json:"date"`
	OutageOccurred    bool    `json:"outage_occurred"`
	DurationMinutes   float64 `json:"duration_minutes"`
	CustomersAffected float64 `json:"customers_affected"`
	Conditions        struct {
		Temp          float64  `json:"temp"`
		WindSpeed     float64  `json:"wind_speed"`
		Precipitation float64  `json:"precipitation"`
		Humidity      *float64 `json:"humidity,omitempty"`
	} `json:"weather_conditions"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing neighborhoods.json and historical_outages.json")
	flag.Parse()

	if code := run(*dataDir); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir string) int {
	// Pin the clock so pattern weights are reproducible across runs.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	fmt.Println("=== Reference Data Integrity Validation ===")
	fmt.Println()

	neighborhoods, err := loadJSON[neighborhoodRecord](filepath.Join(dataDir, "neighborhoods.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load neighborhoods: %v\n", err)
		return 1
	}
	outages, err := loadJSON[outageRecord](filepath.Join(dataDir, "historical_outages.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load outage history: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateNeighborhoodSchema(neighborhoods),
		validateOutageSchema(outages, neighborhoods),
		validateLoaderAcceptance(dataDir, len(neighborhoods)),
		validateEngineSanity(dataDir),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d neighborhoods, %d history records\n", len(neighborhoods), len(outages))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i >= 20 {
				fmt.Printf("  ... and %d more\n", len(p.errors)-i)
				break
			}
			fmt.Printf("  %s\n", e)
		}
	}

	if !allPassed {
		return 1
	}
	fmt.Println("\nAll phases passed.")
	return 0
}

func validateNeighborhoodSchema(records []neighborhoodRecord) *phase {
	p := &phase{name: "Neighborhood schema"}

	if len(records) == 0 {
		p.errorf("no neighborhoods defined")
		return p
	}

	seen := map[string]bool{}
	for i, n := range records {
		if n.ID == "" {
			p.errorf("record %d: empty id", i)
		}
		if seen[n.ID] {
			p.errorf("record %d: duplicate id %q", i, n.ID)
		}
		seen[n.ID] = true
		if n.Name == "" {
			p.errorf("%s: empty name", n.ID)
		}
		if n.Population <= 0 {
			p.errorf("%s: non-positive population %d", n.ID, n.Population)
		}
		if n.Lat < -90 || n.Lat > 90 || n.Lon < -180 || n.Lon > 180 {
			p.errorf("%s: invalid coordinates (%f, %f)", n.ID, n.Lat, n.Lon)
		}
		if n.VulnerabilityScore < 0 || n.VulnerabilityScore > 10 {
			p.errorf("%s: vulnerability score %.1f outside 0-10", n.ID, n.VulnerabilityScore)
		}
		if n.InfrastructureAge < 0 {
			p.errorf("%s: negative infrastructure age", n.ID)
		}
	}
	return p
}

func validateOutageSchema(records []outageRecord, neighborhoods []neighborhoodRecord) *phase {
	p := &phase{name: "Outage history schema"}

	known := map[string]bool{}
	for _, n := range neighborhoods {
		known[n.ID] = true
	}

	for i, r := range records {
		if !known[r.NeighborhoodID] {
			p.errorf("record %d: unknown neighborhood %q", i, r.NeighborhoodID)
		}
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			p.errorf("record %d: invalid date %q", i, r.Date)
		}
		if r.DurationMinutes < 0 || r.CustomersAffected < 0 {
			p.errorf("record %d: negative impact fields", i)
		}
		if !r.OutageOccurred && (r.DurationMinutes > 0 || r.CustomersAffected > 0) {
			p.errorf("record %d: impact fields set without an outage", i)
		}
		c := r.Conditions
		if c.Temp < -90 || c.Temp > 60 {
			p.errorf("record %d: implausible temperature %.1f", i, c.Temp)
		}
		if c.WindSpeed < 0 || c.WindSpeed > 500 {
			p.errorf("record %d: implausible wind speed %.1f", i, c.WindSpeed)
		}
		if c.Precipitation < 0 || c.Precipitation > 2000 {
			p.errorf("record %d: implausible precipitation %.1f", i, c.Precipitation)
		}
		if c.Humidity != nil && (*c.Humidity < 0 || *c.Humidity > 100) {
			p.errorf("record %d: implausible humidity %.1f", i, *c.Humidity)
		}
	}
	return p
}

func validateLoaderAcceptance(dataDir string, want int) *phase {
	p := &phase{name: "Loader acceptance"}

	store, err := refdata.Load(dataDir, defaultFloors())
	if err != nil {
		p.errorf("loader rejected data: %v", err)
		return p
	}
	if store.Len() != want {
		p.errorf("loader built %d entries, expected %d", store.Len(), want)
	}
	for _, profile := range store.All() {
		if profile.VulnerabilityWeight < 0 || profile.VulnerabilityWeight > 1 {
			p.errorf("%s: vulnerability weight %.3f outside [0,1]", profile.ID, profile.VulnerabilityWeight)
		}
		_, baseline, err := store.Get(profile.ID)
		if err != nil {
			p.errorf("%s: %v", profile.ID, err)
			continue
		}
		for dim, stats := range map[string]domain.DimensionStats{
			domain.DimTemperature:   baseline.Temperature,
			domain.DimWind:          baseline.Wind,
			domain.DimPrecipitation: baseline.Precipitation,
		} {
			if stats.StdDev <= 0 {
				p.errorf("%s: non-positive %s stddev", profile.ID, dim)
			}
		}
		for j, pat := range baseline.Patterns {
			if pat.Weight <= 0 || pat.Weight > 1 {
				p.errorf("%s: pattern %d weight %.3f outside (0,1]", profile.ID, j, pat.Weight)
			}
			if pat.Label == "" {
				p.errorf("%s: pattern %d has no label", profile.ID, j)
			}
		}
	}
	return p
}

// validateEngineSanity assesses every neighborhood at its own baseline means.
// Typical conditions must never score High; if they do, the data encodes a
// permanent alarm.
func validateEngineSanity(dataDir string) *phase {
	p := &phase{name: "Engine sanity"}

	store, err := refdata.Load(dataDir, defaultFloors())
	if err != nil {
		p.errorf("loader rejected data: %v", err)
		return p
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	assessor, err := engine.NewAssessor(store, engine.DefaultParams(), logger, observability.NewMetricsForTesting())
	if err != nil {
		p.errorf("build assessor: %v", err)
		return p
	}

	ctx := context.Background()
	for _, profile := range store.All() {
		_, baseline, err := store.Get(profile.ID)
		if err != nil {
			p.errorf("%s: %v", profile.ID, err)
			continue
		}
		snapshot := domain.WeatherSnapshot{
			Temp:          baseline.Temperature.Mean,
			WindSpeed:     baseline.Wind.Mean,
			Precipitation: baseline.Precipitation.Mean,
		}
		result, err := assessor.Assess(ctx, profile.ID, snapshot)
		if err != nil {
			p.errorf("%s: assessment failed: %v", profile.ID, err)
			continue
		}
		if result.RiskScore < 0 || result.RiskScore > 100 {
			p.errorf("%s: score %.1f outside [0,100]", profile.ID, result.RiskScore)
		}
		if result.RiskLevel == domain.TierHigh {
			p.errorf("%s: baseline conditions scored High (%.1f)", profile.ID, result.RiskScore)
		}
	}
	return p
}

func defaultFloors() refdata.Floors {
	return refdata.Floors{Temp: 1.0, Wind: 2.0, Precip: 0.5, Humidity: 5.0}
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return out, nil
}
