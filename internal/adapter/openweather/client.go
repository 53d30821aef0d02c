// Package openweather implements domain.WeatherProvider on the OpenWeatherMap
// 5-day/3-hour forecast API, condensing the next 24 hours of intervals into a
// single snapshot for the risk engine.
package openweather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
)

// forecastWindow is how many 3-hour forecast intervals feed one snapshot.
// Eight intervals cover the next 24 hours.
const forecastWindow = 8

// Client calls the OpenWeatherMap forecast endpoint.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates an OpenWeatherMap forecast client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.openweathermap.org/data/2.5",
		logger:  logger,
		metrics: metrics,
	}
}

// Forecast fetches the next 24 hours of forecast intervals for a coordinate
// and averages them into one snapshot. Temperatures and humidity are interval
// means, wind is the mean converted from m/s to km/h, and precipitation is the
// total expected rainfall across the window.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) (domain.WeatherSnapshot, error) {
	params := url.Values{
		"lat":   {fmt.Sprintf("%.4f", lat)},
		"lon":   {fmt.Sprintf("%.4f", lon)},
		"appid": {c.apiKey},
		"units": {"metric"},
		"cnt":   {fmt.Sprintf("%d", forecastWindow)},
	}
	fullURL := c.baseURL + "/forecast?" + params.Encode()

	start := time.Now()
	snapshot, err := c.doRequest(ctx, fullURL)
	c.metrics.WeatherDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.WeatherRequests.WithLabelValues("error").Inc()
		return domain.WeatherSnapshot{}, err
	}
	c.metrics.WeatherRequests.WithLabelValues("success").Inc()
	return snapshot, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.WeatherSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.WeatherSnapshot{}, fmt.Errorf("openweathermap API error: status %d: %s", resp.StatusCode, body)
	}

	var forecast response
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return domain.WeatherSnapshot{}, fmt.Errorf("decode response: %w", err)
	}

	if len(forecast.List) == 0 {
		return domain.WeatherSnapshot{}, fmt.Errorf("openweathermap returned no forecast intervals")
	}

	return condense(forecast.List), nil
}

// condense averages forecast intervals into one snapshot.
func condense(intervals []interval) domain.WeatherSnapshot {
	n := len(intervals)
	if n > forecastWindow {
		intervals = intervals[:forecastWindow]
		n = forecastWindow
	}

	var temp, wind, rain, humidity, pressure float64
	for _, iv := range intervals {
		temp += iv.Main.Temp
		wind += iv.Wind.Speed
		rain += iv.Rain.ThreeHours
		humidity += iv.Main.Humidity
		pressure += iv.Main.Pressure
	}

	h := humidity / float64(n)
	p := pressure / float64(n)
	return domain.WeatherSnapshot{
		Temp: temp / float64(n),
		// The API reports wind in m/s with metric units; the engine works in km/h.
		WindSpeed:     wind / float64(n) * 3.6,
		Precipitation: rain,
		Humidity:      &h,
		Pressure:      &p,
	}
}

// OpenWeatherMap API response types.

type response struct {
	List []interval `json:"list"`
}

type interval struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
		Pressure float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Rain struct {
		ThreeHours float64 `json:"3h"` // mm over the interval
	} `json:"rain"`
}
