package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// DataDir holds the static reference files: neighborhoods.json and
	// historical_outages.json.
	DataDir string

	// OpenWeatherMap forecast retrieval.
	WeatherAPIKey   string
	WeatherEnabled  bool
	WeatherTimeout  time.Duration
	WeatherCacheTTL time.Duration
	// WeatherFallback serves a canned snapshot when the provider is disabled
	// or unreachable. Development convenience; off by default so production
	// failures surface as 502s instead of fabricated scores.
	WeatherFallback bool

	// Explanation generation (GitHub Models chat completions).
	ExplainerToken   string
	ExplainerEnabled bool
	ExplainerModel   string
	ExplainerTimeout time.Duration

	// Optional assessment publishing for downstream alerting.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Engine tunables. The fusion split between the three risk signals is a
	// deliberate configuration constant, not derived at runtime.
	FusionAnomalyWeight       float64
	FusionPatternWeight       float64
	FusionVulnerabilityWeight float64
	AnomalySaturation         float64

	// Per-dimension anomaly weights; wind and precipitation dominate because
	// they are the primary outage drivers.
	DimWeightTemp     float64
	DimWeightWind     float64
	DimWeightPrecip   float64
	DimWeightHumidity float64

	// Standard deviation floors applied when a neighborhood's history has
	// zero or undersampled variance in a dimension.
	StdDevFloorTemp     float64
	StdDevFloorWind     float64
	StdDevFloorPrecip   float64
	StdDevFloorHumidity float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherCacheTTL, err := parseDuration("WEATHER_CACHE_TTL", "10m")
	if err != nil {
		return nil, err
	}
	explainerTimeout, err := parseDuration("EXPLAINER_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	weatherAPIKey := os.Getenv("WEATHER_API_KEY")
	weatherEnabled := weatherAPIKey != ""
	if v := os.Getenv("WEATHER_ENABLED"); v != "" {
		weatherEnabled = v == "true"
	}

	explainerToken := os.Getenv("EXPLAINER_TOKEN")
	explainerEnabled := explainerToken != ""
	if v := os.Getenv("EXPLAINER_ENABLED"); v != "" {
		explainerEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		DataDir:         sharedcfg.EnvOrDefault("DATA_DIR", "data"),

		WeatherAPIKey:   weatherAPIKey,
		WeatherEnabled:  weatherEnabled,
		WeatherTimeout:  weatherTimeout,
		WeatherCacheTTL: weatherCacheTTL,
		WeatherFallback: os.Getenv("WEATHER_FALLBACK") == "true",

		ExplainerToken:   explainerToken,
		ExplainerEnabled: explainerEnabled,
		ExplainerModel:   sharedcfg.EnvOrDefault("EXPLAINER_MODEL", "gpt-4o-mini"),
		ExplainerTimeout: explainerTimeout,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "risk-assessments"),
	}

	floats := []struct {
		dst  *float64
		name string
		def  float64
	}{
		{&cfg.FusionAnomalyWeight, "FUSION_ANOMALY_WEIGHT", 0.45},
		{&cfg.FusionPatternWeight, "FUSION_PATTERN_WEIGHT", 0.35},
		{&cfg.FusionVulnerabilityWeight, "FUSION_VULNERABILITY_WEIGHT", 0.20},
		{&cfg.AnomalySaturation, "ANOMALY_SATURATION", 0.55},
		{&cfg.DimWeightTemp, "DIM_WEIGHT_TEMP", 0.20},
		{&cfg.DimWeightWind, "DIM_WEIGHT_WIND", 0.40},
		{&cfg.DimWeightPrecip, "DIM_WEIGHT_PRECIP", 0.30},
		{&cfg.DimWeightHumidity, "DIM_WEIGHT_HUMIDITY", 0.10},
		{&cfg.StdDevFloorTemp, "STDDEV_FLOOR_TEMP", 1.0},
		{&cfg.StdDevFloorWind, "STDDEV_FLOOR_WIND", 2.0},
		{&cfg.StdDevFloorPrecip, "STDDEV_FLOOR_PRECIP", 0.5},
		{&cfg.StdDevFloorHumidity, "STDDEV_FLOOR_HUMIDITY", 5.0},
	}
	for _, f := range floats {
		v, err := parseFloat(f.name, f.def)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return errors.New("DATA_DIR is required")
	}
	if c.WeatherEnabled && c.WeatherAPIKey == "" {
		return errors.New("WEATHER_ENABLED is true but WEATHER_API_KEY is not set")
	}
	if c.ExplainerEnabled && c.ExplainerToken == "" {
		return errors.New("EXPLAINER_ENABLED is true but EXPLAINER_TOKEN is not set")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if c.KafkaSinkTopic == "" {
			return errors.New("KAFKA_ENABLED is true but KAFKA_SINK_TOPIC is empty")
		}
	}

	weights := map[string]float64{
		"FUSION_ANOMALY_WEIGHT":       c.FusionAnomalyWeight,
		"FUSION_PATTERN_WEIGHT":       c.FusionPatternWeight,
		"FUSION_VULNERABILITY_WEIGHT": c.FusionVulnerabilityWeight,
		"DIM_WEIGHT_TEMP":             c.DimWeightTemp,
		"DIM_WEIGHT_WIND":             c.DimWeightWind,
		"DIM_WEIGHT_PRECIP":           c.DimWeightPrecip,
		"DIM_WEIGHT_HUMIDITY":         c.DimWeightHumidity,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.FusionAnomalyWeight+c.FusionPatternWeight+c.FusionVulnerabilityWeight <= 0 {
		return errors.New("fusion weights must sum to a positive value")
	}
	if c.DimWeightTemp+c.DimWeightWind+c.DimWeightPrecip <= 0 {
		return errors.New("core dimension weights must sum to a positive value")
	}
	if c.AnomalySaturation <= 0 {
		return errors.New("ANOMALY_SATURATION must be positive")
	}

	floors := map[string]float64{
		"STDDEV_FLOOR_TEMP":     c.StdDevFloorTemp,
		"STDDEV_FLOOR_WIND":     c.StdDevFloorWind,
		"STDDEV_FLOOR_PRECIP":   c.StdDevFloorPrecip,
		"STDDEV_FLOOR_HUMIDITY": c.StdDevFloorHumidity,
	}
	for name, floor := range floors {
		if floor <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}

func parseDuration(name, def string) (time.Duration, error) {
	s := sharedcfg.EnvOrDefault(name, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return d, nil
}

func parseFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, s)
	}
	return v, nil
}
