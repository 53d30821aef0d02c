package engine

import (
	"testing"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePattern(label string, temp, wind, precip, weight, severity float64) domain.HistoricalPattern {
	return domain.HistoricalPattern{
		Label:      label,
		Conditions: domain.PatternConditions{Temp: temp, WindSpeed: wind, Precipitation: precip},
		Weight:     weight,
		Severity:   severity,
		ObservedAt: time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestMatcherMatch_EmptyLibrary(t *testing.T) {
	m := NewMatcher(DefaultParams().Dimensions)

	result := m.Match(domain.WeatherSnapshot{Temp: 5, WindSpeed: 95, Precipitation: 40}, testBaseline())

	assert.Nil(t, result.Best)
	assert.Equal(t, 0.0, result.Similarity)
}

func TestMatcherMatch_ExactConditionsScoreWeight(t *testing.T) {
	m := NewMatcher(DefaultParams().Dimensions)

	base := testBaseline()
	base.Patterns = []domain.HistoricalPattern{
		makePattern("windstorm", 5, 95, 40, 0.8, 0.9),
	}

	result := m.Match(domain.WeatherSnapshot{Temp: 5, WindSpeed: 95, Precipitation: 40}, base)

	require.NotNil(t, result.Best)
	// Zero distance leaves similarity equal to the pattern weight.
	assert.InDelta(t, 0.8, result.Similarity, 1e-9)
	assert.Equal(t, "windstorm", result.Best.Label)
}

func TestMatcherMatch_ClosestPatternWins(t *testing.T) {
	m := NewMatcher(DefaultParams().Dimensions)

	base := testBaseline()
	base.Patterns = []domain.HistoricalPattern{
		makePattern("deep freeze", -15, 30, 2, 1.0, 0.5),
		makePattern("windstorm", 6, 90, 35, 1.0, 0.8),
	}

	result := m.Match(domain.WeatherSnapshot{Temp: 5, WindSpeed: 95, Precipitation: 40}, base)

	require.NotNil(t, result.Best)
	assert.Equal(t, "windstorm", result.Best.Label)
}

func TestMatcherMatch_WeightScalesSimilarity(t *testing.T) {
	m := NewMatcher(DefaultParams().Dimensions)

	strong := testBaseline()
	strong.Patterns = []domain.HistoricalPattern{makePattern("windstorm", 6, 90, 35, 1.0, 0.8)}

	faded := testBaseline()
	faded.Patterns = []domain.HistoricalPattern{makePattern("windstorm", 6, 90, 35, 0.3, 0.8)}

	snapshot := domain.WeatherSnapshot{Temp: 5, WindSpeed: 95, Precipitation: 40}
	strongResult := m.Match(snapshot, strong)
	fadedResult := m.Match(snapshot, faded)

	assert.Greater(t, strongResult.Similarity, fadedResult.Similarity,
		"recency/severity weight must scale the match")
}

func TestMatcherMatch_TiePrefersMoreSevere(t *testing.T) {
	m := NewMatcher(DefaultParams().Dimensions)

	base := testBaseline()
	base.Patterns = []domain.HistoricalPattern{
		makePattern("windstorm", 6, 90, 35, 0.7, 0.3),
		makePattern("heavy rain", 6, 90, 35, 0.7, 0.9),
	}

	result := m.Match(domain.WeatherSnapshot{Temp: 5, WindSpeed: 95, Precipitation: 40}, base)

	require.NotNil(t, result.Best)
	assert.Equal(t, "heavy rain", result.Best.Label)
}

func TestMatcherMatch_SimilarityBounded(t *testing.T) {
	m := NewMatcher(DefaultParams().Dimensions)

	base := testBaseline()
	base.Patterns = []domain.HistoricalPattern{
		makePattern("severe weather", 10, 25, 1, 1.0, 0.2),
	}

	snapshots := []domain.WeatherSnapshot{
		{Temp: 10, WindSpeed: 25, Precipitation: 1},
		{Temp: -40, WindSpeed: 300, Precipitation: 500},
		{Temp: 55, WindSpeed: 0, Precipitation: 0},
	}
	for _, s := range snapshots {
		result := m.Match(s, base)
		assert.GreaterOrEqual(t, result.Similarity, 0.0)
		assert.LessOrEqual(t, result.Similarity, 1.0)
	}
}
