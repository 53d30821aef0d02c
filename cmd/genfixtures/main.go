// Command genfixtures generates synthetic reference data for the risk
// service: a set of neighborhood profiles and several years of weather/outage
// history with seasonal structure. Output is deterministic for a given seed so
// fixtures can be regenerated without churning diffs.
//
// Usage:
//
//	go run ./cmd/genfixtures -out data -neighborhoods 6 -years 3 -seed 42
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// baseDate anchors the generated history; records run backwards from here.
var baseDate = time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)

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
	NeighborhoodID    string     `json:"neighborhood_id"`
	Date              string     `json:"date"`
	OutageOccurred    bool       `json:"outage_occurred"`
	DurationMinutes   float64    `json:"duration_minutes"`
	CustomersAffected float64    `json:"customers_affected"`
	Conditions        conditions `json:"weather_conditions"`
}

type conditions struct {
	Temp          float64  `json:"temp"`
	WindSpeed     float64  `json:"wind_speed"`
	Precipitation float64  `json:"precipitation"`
	Humidity      *float64 `json:"humidity,omitempty"`
}

var names = []struct {
	id   string
	name string
}{
	{"downtown", "Downtown"},
	{"riverside", "Riverside"},
	{"lakeview", "Lakeview"},
	{"hillcrest", "Hillcrest"},
	{"old-mill", "Old Mill"},
	{"harbourfront", "Harbourfront"},
	{"maplewood", "Maplewood"},
	{"cedar-heights", "Cedar Heights"},
}

// monthlyTemp is the seasonal mean temperature curve in °C (index 1-12).
var monthlyTemp = [13]float64{0, -4, -3, 2, 9, 15, 20, 23, 22, 17, 10, 4, -2}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data", "output directory for neighborhoods.json and historical_outages.json")
	count := flag.Int("neighborhoods", 6, "number of neighborhoods to generate")
	years := flag.Int("years", 3, "years of history per neighborhood")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if *count < 1 || *count > len(names) {
		return fmt.Errorf("-neighborhoods must be between 1 and %d", len(names))
	}
	if *years < 1 {
		return fmt.Errorf("-years must be at least 1")
	}

	rng := rand.New(rand.NewSource(*seed))

	neighborhoods := make([]neighborhoodRecord, 0, *count)
	for i := 0; i < *count; i++ {
		neighborhoods = append(neighborhoods, neighborhoodRecord{
			ID:   names[i].id,
			Name: names[i].name,
			// Clustered around the Toronto waterfront.
			Lat:                43.60 + rng.Float64()*0.15,
			Lon:                -79.50 + rng.Float64()*0.25,
			Population:         2000 + rng.Intn(30000),
			VulnerabilityScore: math.Round(rng.Float64()*100) / 10,
			InfrastructureAge:  math.Round(rng.Float64() * 60),
		})
	}

	var outages []outageRecord
	for _, n := range neighborhoods {
		outages = append(outages, generateHistory(rng, n, *years)...)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := writeJSON(filepath.Join(*out, "neighborhoods.json"), neighborhoods); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(*out, "historical_outages.json"), outages); err != nil {
		return err
	}

	outageCount := 0
	for _, r := range outages {
		if r.OutageOccurred {
			outageCount++
		}
	}
	fmt.Printf("wrote %d neighborhoods, %d history records (%d outages) to %s\n",
		len(neighborhoods), len(outages), outageCount, *out)
	return nil
}

// generateHistory produces roughly one record per month per neighborhood with
// seasonal weather. Severe conditions raise the outage chance, and outage
// impact scales with how severe the triggering weather was.
func generateHistory(rng *rand.Rand, n neighborhoodRecord, years int) []outageRecord {
	months := years * 12
	records := make([]outageRecord, 0, months)

	for m := 0; m < months; m++ {
		date := baseDate.AddDate(0, -m, -rng.Intn(27))
		c := sampleConditions(rng, date.Month())

		severity := windSeverity(c.WindSpeed) + precipSeverity(c.Precipitation) + tempSeverity(c.Temp)
		// Aging infrastructure fails under less provocation.
		threshold := 0.9 - 0.3*math.Min(n.InfrastructureAge, 50)/50

		rec := outageRecord{
			NeighborhoodID: n.ID,
			Date:           date.Format("2006-01-02"),
			Conditions:     c,
		}
		if severity > threshold {
			rec.OutageOccurred = true
			rec.DurationMinutes = math.Round(30 + severity*rng.Float64()*600)
			rec.CustomersAffected = math.Round(float64(n.Population) * severity * rng.Float64() * 0.4)
		}
		records = append(records, rec)
	}
	return records
}

func sampleConditions(rng *rand.Rand, month time.Month) conditions {
	temp := monthlyTemp[month] + rng.NormFloat64()*6
	wind := 12 + rng.ExpFloat64()*12
	precip := rng.ExpFloat64() * 3
	humidity := math.Min(math.Max(55+rng.NormFloat64()*15, 20), 100)

	// Occasional storm: wind and rain spike together.
	if rng.Float64() < 0.12 {
		wind += 30 + rng.Float64()*60
		precip += 5 + rng.Float64()*30
	}

	return conditions{
		Temp:          round1(temp),
		WindSpeed:     round1(wind),
		Precipitation: round1(precip),
		Humidity:      &humidity,
	}
}

func windSeverity(v float64) float64   { return math.Min(math.Max(v-40, 0)/60, 1) * 0.6 }
func precipSeverity(v float64) float64 { return math.Min(v/40, 1) * 0.3 }
func tempSeverity(v float64) float64 {
	if v < -10 || v > 32 {
		return 0.2
	}
	return 0
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
