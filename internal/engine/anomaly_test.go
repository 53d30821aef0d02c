package engine

import (
	"math"
	"testing"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBaseline() domain.BaselineEntry {
	return domain.BaselineEntry{
		Temperature:   domain.DimensionStats{Mean: 12, StdDev: 8},
		Wind:          domain.DimensionStats{Mean: 20, StdDev: 8},
		Precipitation: domain.DimensionStats{Mean: 2, StdDev: 3},
	}
}

func f64(v float64) *float64 { return &v }

func TestDetectorScore_ZScores(t *testing.T) {
	d := NewDetector(DefaultParams().Dimensions)

	snapshot := domain.WeatherSnapshot{Temp: 4, WindSpeed: 44, Precipitation: 2}
	result := d.Score(snapshot, testBaseline())

	assert.InDelta(t, -1.0, result.Temperature, 1e-9)
	assert.InDelta(t, 3.0, result.Wind, 1e-9)
	assert.InDelta(t, 0.0, result.Precipitation, 1e-9)
	assert.Nil(t, result.Humidity)
	assert.Greater(t, result.Aggregate, 0.0)
}

func TestDetectorScore_BaselineConditionsAreNotAnomalous(t *testing.T) {
	d := NewDetector(DefaultParams().Dimensions)

	snapshot := domain.WeatherSnapshot{Temp: 12, WindSpeed: 20, Precipitation: 2}
	result := d.Score(snapshot, testBaseline())

	assert.Zero(t, result.Aggregate)
}

func TestDetectorScore_CalmWindCarriesNoEvidence(t *testing.T) {
	d := NewDetector(DimensionWeights{Wind: 1})

	// Dead calm is three standard deviations below the mean, but an unusually
	// quiet day is not an outage signal.
	snapshot := domain.WeatherSnapshot{Temp: 12, WindSpeed: 0, Precipitation: 2}
	result := d.Score(snapshot, testBaseline())

	assert.InDelta(t, -2.5, result.Wind, 1e-9)
	assert.Zero(t, result.Aggregate)
}

func TestDetectorScore_ColdAndHotBothCount(t *testing.T) {
	d := NewDetector(DimensionWeights{Temperature: 1})
	base := testBaseline()

	cold := d.Score(domain.WeatherSnapshot{Temp: -12, WindSpeed: 20, Precipitation: 2}, base)
	hot := d.Score(domain.WeatherSnapshot{Temp: 36, WindSpeed: 20, Precipitation: 2}, base)

	assert.InDelta(t, 3.0, cold.Aggregate, 1e-9)
	assert.InDelta(t, 3.0, hot.Aggregate, 1e-9)
}

func TestDetectorScore_WindMonotonicity(t *testing.T) {
	d := NewDetector(DefaultParams().Dimensions)
	base := testBaseline()

	prev := -1.0
	for wind := 0.0; wind <= 160; wind += 2.5 {
		result := d.Score(domain.WeatherSnapshot{Temp: 12, WindSpeed: wind, Precipitation: 2}, base)
		require.GreaterOrEqual(t, result.Aggregate, prev,
			"aggregate must never decrease as wind rises (wind=%g)", wind)
		prev = result.Aggregate
	}
}

func TestDetectorScore_HumidityOnlyWithEvidence(t *testing.T) {
	d := NewDetector(DefaultParams().Dimensions)

	base := testBaseline()
	base.Humidity = &domain.DimensionStats{Mean: 60, StdDev: 10}

	t.Run("snapshot missing humidity", func(t *testing.T) {
		result := d.Score(domain.WeatherSnapshot{Temp: 12, WindSpeed: 20, Precipitation: 2}, base)
		assert.Nil(t, result.Humidity)
		assert.Zero(t, result.Aggregate)
	})

	t.Run("baseline missing humidity stats", func(t *testing.T) {
		noHumidity := testBaseline()
		snapshot := domain.WeatherSnapshot{Temp: 12, WindSpeed: 20, Precipitation: 2, Humidity: f64(95)}
		result := d.Score(snapshot, noHumidity)
		assert.Nil(t, result.Humidity)
		assert.Zero(t, result.Aggregate)
	})

	t.Run("both present", func(t *testing.T) {
		snapshot := domain.WeatherSnapshot{Temp: 12, WindSpeed: 20, Precipitation: 2, Humidity: f64(90)}
		result := d.Score(snapshot, base)
		require.NotNil(t, result.Humidity)
		assert.InDelta(t, 3.0, *result.Humidity, 1e-9)
		assert.Greater(t, result.Aggregate, 0.0)
	})
}

func TestDetectorScore_FlooredStdDevNeverDividesByZero(t *testing.T) {
	d := NewDetector(DefaultParams().Dimensions)

	degenerate := domain.BaselineEntry{
		Temperature:   domain.DimensionStats{Mean: 12, StdDev: 1},
		Wind:          domain.DimensionStats{Mean: 20, StdDev: 2},
		Precipitation: domain.DimensionStats{Mean: 0, StdDev: 0.5},
	}
	result := d.Score(domain.WeatherSnapshot{Temp: 5, WindSpeed: 95, Precipitation: 40}, degenerate)

	assert.False(t, math.IsNaN(result.Aggregate))
	assert.False(t, math.IsInf(result.Aggregate, 1))
}
