package openweather

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-api-key"

func testMetrics() *observability.Metrics {
	return observability.NewMetricsForTesting()
}

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     testAPIKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    testMetrics(),
	}
}

// forecastResponse builds an API payload with the given per-interval values.
// All intervals share humidity 80 and pressure 1010 for simplicity.
func forecastResponse(temps, windsMS, rains []float64) response {
	var resp response
	for i := range temps {
		var iv interval
		iv.Main.Temp = temps[i]
		iv.Main.Humidity = 80
		iv.Main.Pressure = 1010
		iv.Wind.Speed = windsMS[i]
		iv.Rain.ThreeHours = rains[i]
		resp.List = append(resp.List, iv)
	}
	return resp
}

func TestClient_Forecast_AveragesWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, testAPIKey, r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.Equal(t, "8", r.URL.Query().Get("cnt"))
		assert.Equal(t, "43.6500", r.URL.Query().Get("lat"))

		resp := forecastResponse(
			[]float64{10, 12, 14, 16, 14, 12, 10, 8},     // mean 12
			[]float64{5, 5, 10, 10, 5, 5, 10, 10},        // mean 7.5 m/s = 27 km/h
			[]float64{0, 0.5, 1, 0.5, 0, 0, 1, 1},        // total 4 mm
		)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	snapshot, err := testClient(srv.URL).Forecast(context.Background(), 43.65, -79.38)
	require.NoError(t, err)

	assert.InDelta(t, 12.0, snapshot.Temp, 1e-9)
	assert.InDelta(t, 27.0, snapshot.WindSpeed, 1e-9)
	assert.InDelta(t, 4.0, snapshot.Precipitation, 1e-9)
	require.NotNil(t, snapshot.Humidity)
	assert.InDelta(t, 80.0, *snapshot.Humidity, 1e-9)
	require.NotNil(t, snapshot.Pressure)
	assert.InDelta(t, 1010.0, *snapshot.Pressure, 1e-9)
}

func TestClient_Forecast_TruncatesLongResponse(t *testing.T) {
	// Twelve intervals returned; only the first eight count.
	temps := []float64{10, 10, 10, 10, 10, 10, 10, 10, 50, 50, 50, 50}
	winds := make([]float64, 12)
	rains := make([]float64, 12)
	rains[9] = 100 // beyond the window, must be ignored

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(forecastResponse(temps, winds, rains)))
	}))
	defer srv.Close()

	snapshot, err := testClient(srv.URL).Forecast(context.Background(), 43.65, -79.38)
	require.NoError(t, err)

	assert.InDelta(t, 10.0, snapshot.Temp, 1e-9)
	assert.Zero(t, snapshot.Precipitation)
}

func TestClient_Forecast_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"cod":401,"message":"Invalid API key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), 43.65, -79.38)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_Forecast_EmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Forecast(context.Background(), 43.65, -79.38)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no forecast intervals")
}

func TestClient_Forecast_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, json.NewEncoder(w).Encode(response{}))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(srv.URL).Forecast(ctx, 43.65, -79.38)
	assert.Error(t, err)
}
