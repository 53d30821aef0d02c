// Command riskd serves power outage risk assessments over HTTP. It scores
// current or hypothetical weather against per-neighborhood historical
// baselines and pre-outage patterns, with optional live forecasts, generated
// explanations, and Kafka publishing.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/outage-risk-service/internal/adapter/explain"
	"github.com/couchcryptid/outage-risk-service/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/outage-risk-service/internal/adapter/kafka"
	"github.com/couchcryptid/outage-risk-service/internal/adapter/openweather"
	"github.com/couchcryptid/outage-risk-service/internal/config"
	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/engine"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
	"github.com/couchcryptid/outage-risk-service/internal/refdata"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	store, err := refdata.Load(cfg.DataDir, refdata.FloorsFromConfig(cfg))
	if err != nil {
		logger.Error("failed to load reference data", "error", err, "dir", cfg.DataDir)
		os.Exit(1)
	}
	logger.Info("reference data loaded", "neighborhoods", store.Len())

	assessor, err := engine.NewAssessor(store, engine.ParamsFromConfig(cfg), logger, metrics)
	if err != nil {
		logger.Error("invalid engine parameters", "error", err)
		os.Exit(1)
	}

	// Weather provider (feature-flagged via WEATHER_ENABLED / WEATHER_API_KEY).
	var weather domain.WeatherProvider
	if cfg.WeatherEnabled {
		client := openweather.NewClient(cfg.WeatherAPIKey, cfg.WeatherTimeout, logger, metrics)
		weather = openweather.NewCachedProvider(client, cfg.WeatherCacheTTL, metrics)
		if cfg.WeatherFallback {
			weather = openweather.NewFallbackProvider(weather, logger, metrics)
		}
		logger.Info("live forecasts enabled", "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		weather = openweather.Simulated{}
		logger.Info("live forecasts disabled, serving simulated conditions")
	}

	// Explainer (feature-flagged via EXPLAINER_ENABLED / EXPLAINER_TOKEN).
	var explainer domain.Explainer
	if cfg.ExplainerEnabled {
		client := explain.NewClient(cfg.ExplainerToken, cfg.ExplainerModel, cfg.ExplainerTimeout, logger, metrics)
		explainer = explain.NewFallbackExplainer(client, logger, metrics)
		logger.Info("model explanations enabled", "model", cfg.ExplainerModel)
	} else {
		explainer = explain.RuleBased{}
		logger.Info("model explanations disabled, using rule-based text")
	}

	// Assessment publishing (feature-flagged via KAFKA_ENABLED).
	var publisher httpapi.Publisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		publisher = kafkaPublisher
		logger.Info("assessment publishing enabled", "topic", cfg.KafkaSinkTopic)
	}

	srv := httpapi.NewServer(cfg.HTTPAddr, store, assessor, weather, explainer, publisher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()
	metrics.ServiceReady.Set(1)

	<-ctx.Done()
	logger.Info("shutting down")
	metrics.ServiceReady.Set(0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
