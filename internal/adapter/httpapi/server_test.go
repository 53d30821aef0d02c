package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/adapter/httpapi"
	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/engine"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
	"github.com/couchcryptid/outage-risk-service/internal/refdata"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const neighborhoodsJSON = `[
  {"id": "downtown", "name": "Downtown", "lat": 43.65, "lng": -79.38, "population": 25000, "vulnerability_score": 7.5, "infrastructure_age": 45},
  {"id": "lakeview", "name": "Lakeview", "lat": 43.63, "lng": -79.30, "population": 8000, "vulnerability_score": 2.0, "infrastructure_age": 10}
]`

const outagesJSON = `[
  {"neighborhood_id": "downtown", "date": "2025-11-03", "outage_occurred": true, "duration_minutes": 720, "customers_affected": 5000,
   "weather_conditions": {"temp": 4, "wind_speed": 90, "precipitation": 38}},
  {"neighborhood_id": "downtown", "date": "2025-06-12", "outage_occurred": false, "duration_minutes": 0, "customers_affected": 0,
   "weather_conditions": {"temp": 10, "wind_speed": 18, "precipitation": 0}},
  {"neighborhood_id": "downtown", "date": "2025-04-02", "outage_occurred": false, "duration_minutes": 0, "customers_affected": 0,
   "weather_conditions": {"temp": 12, "wind_speed": 20, "precipitation": 1}},
  {"neighborhood_id": "downtown", "date": "2024-09-30", "outage_occurred": false, "duration_minutes": 0, "customers_affected": 0,
   "weather_conditions": {"temp": 14, "wind_speed": 22, "precipitation": 2}},
  {"neighborhood_id": "downtown", "date": "2024-07-14", "outage_occurred": false, "duration_minutes": 0, "customers_affected": 0,
   "weather_conditions": {"temp": 18, "wind_speed": 24, "precipitation": 3}},
  {"neighborhood_id": "downtown", "date": "2024-05-08", "outage_occurred": false, "duration_minutes": 0, "customers_affected": 0,
   "weather_conditions": {"temp": 16, "wind_speed": 19, "precipitation": 1}},
  {"neighborhood_id": "downtown", "date": "2023-10-21", "outage_occurred": false, "duration_minutes": 0, "customers_affected": 0,
   "weather_conditions": {"temp": 11, "wind_speed": 21, "precipitation": 2}}
]`

type stubWeather struct {
	snapshot domain.WeatherSnapshot
	err      error
}

func (s *stubWeather) Forecast(_ context.Context, _, _ float64) (domain.WeatherSnapshot, error) {
	return s.snapshot, s.err
}

type stubExplainer struct {
	text string
	err  error
}

func (s *stubExplainer) Explain(_ context.Context, _ domain.RiskAssessment) (string, error) {
	return s.text, s.err
}

type capturingPublisher struct {
	published []domain.RiskAssessment
	err       error
}

func (p *capturingPublisher) Publish(_ context.Context, a domain.RiskAssessment) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, a)
	return nil
}

func testStore(t *testing.T) *refdata.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "neighborhoods.json"), []byte(neighborhoodsJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "historical_outages.json"), []byte(outagesJSON), 0o644))

	store, err := refdata.Load(dir, refdata.Floors{Temp: 1, Wind: 2, Precip: 0.5, Humidity: 5})
	require.NoError(t, err)
	return store
}

type serverDeps struct {
	weather   *stubWeather
	explainer domain.Explainer
	publisher httpapi.Publisher
}

func newTestServer(t *testing.T, deps serverDeps) *httpapi.Server {
	t.Helper()
	store := testStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assessor, err := engine.NewAssessor(store, engine.DefaultParams(), logger, observability.NewMetricsForTesting())
	require.NoError(t, err)

	if deps.weather == nil {
		deps.weather = &stubWeather{snapshot: domain.WeatherSnapshot{Temp: 15, WindSpeed: 20, Precipitation: 1}}
	}
	return httpapi.NewServer(":0", store, assessor, deps.weather, deps.explainer, deps.publisher, logger)
}

func doRequest(srv *httpapi.Server, method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(newTestServer(t, serverDeps{}), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	rec := doRequest(newTestServer(t, serverDeps{}), http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNeighborhoods(t *testing.T) {
	rec := doRequest(newTestServer(t, serverDeps{}), http.MethodGet, "/api/v1/neighborhoods", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Neighborhoods []domain.NeighborhoodProfile `json:"neighborhoods"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Neighborhoods, 2)
	assert.Equal(t, "downtown", body.Neighborhoods[0].ID)
	assert.Equal(t, "Lakeview", body.Neighborhoods[1].Name)
}

func TestRisk_StormForecast(t *testing.T) {
	// Pattern weights decay with outage age, so pin the clock before the
	// reference data is loaded.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	publisher := &capturingPublisher{}
	srv := newTestServer(t, serverDeps{
		// A forecast matching the recorded pre-outage storm conditions.
		weather:   &stubWeather{snapshot: domain.WeatherSnapshot{Temp: 4, WindSpeed: 90, Precipitation: 38}},
		explainer: &stubExplainer{text: "Strong winds are expected."},
		publisher: publisher,
	})

	rec := doRequest(srv, http.MethodGet, "/api/v1/risk?neighborhood_id=downtown", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		domain.RiskAssessment
		Explanation string `json:"explanation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "downtown", body.NeighborhoodID)
	assert.Equal(t, domain.TierHigh, body.RiskLevel)
	assert.Equal(t, "Strong winds are expected.", body.Explanation)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "downtown", publisher.published[0].NeighborhoodID)
}

func TestRisk_UnknownNeighborhood(t *testing.T) {
	rec := doRequest(newTestServer(t, serverDeps{}), http.MethodGet, "/api/v1/risk?neighborhood_id=atlantis", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRisk_MissingID(t *testing.T) {
	rec := doRequest(newTestServer(t, serverDeps{}), http.MethodGet, "/api/v1/risk", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRisk_WeatherProviderDown(t *testing.T) {
	srv := newTestServer(t, serverDeps{
		weather: &stubWeather{err: errors.New("connection refused")},
	})

	rec := doRequest(srv, http.MethodGet, "/api/v1/risk?neighborhood_id=downtown", "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRiskNearby(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	// Just east of Lakeview.
	rec := doRequest(srv, http.MethodGet, "/api/v1/risk/nearby?lat=43.63&lon=-79.29", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "lakeview", body.NeighborhoodID)
}

func TestRiskNearby_InvalidCoordinates(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	for _, target := range []string{
		"/api/v1/risk/nearby",
		"/api/v1/risk/nearby?lat=43.63",
		"/api/v1/risk/nearby?lat=91&lon=0",
		"/api/v1/risk/nearby?lat=abc&lon=0",
	} {
		rec := doRequest(srv, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestAssess_ExplicitSnapshot(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	rec := doRequest(srv, http.MethodPost, "/api/v1/assess",
		`{"neighborhood_id": "downtown", "weather": {"temp": 15, "wind_speed": 20, "precipitation": 1}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var body domain.RiskAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.TierLow, body.RiskLevel)
}

func TestAssess_InvalidBody(t *testing.T) {
	srv := newTestServer(t, serverDeps{})

	for name, body := range map[string]string{
		"malformed json":   `{not json`,
		"missing id":       `{"weather": {"temp": 15, "wind_speed": 20, "precipitation": 1}}`,
		"invalid snapshot": `{"neighborhood_id": "downtown", "weather": {"temp": 15, "wind_speed": -5, "precipitation": 1}}`,
	} {
		rec := doRequest(srv, http.MethodPost, "/api/v1/assess", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestAssess_ExplainerFailureStillServes(t *testing.T) {
	srv := newTestServer(t, serverDeps{
		explainer: &stubExplainer{err: errors.New("model unavailable")},
	})

	rec := doRequest(srv, http.MethodPost, "/api/v1/assess",
		`{"neighborhood_id": "downtown", "weather": {"temp": 15, "wind_speed": 20, "precipitation": 1}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "explanation")
}

func TestAssess_PublisherFailureStillServes(t *testing.T) {
	srv := newTestServer(t, serverDeps{
		publisher: &capturingPublisher{err: errors.New("broker down")},
	})

	rec := doRequest(srv, http.MethodPost, "/api/v1/assess",
		`{"neighborhood_id": "downtown", "weather": {"temp": 15, "wind_speed": 20, "precipitation": 1}}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}
