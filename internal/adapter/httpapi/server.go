// Package httpapi exposes the risk engine over HTTP: assessment and
// neighborhood routes for callers, plus health, readiness, and metrics
// endpoints for the platform.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/engine"
	"github.com/couchcryptid/outage-risk-service/internal/refdata"
)

// Publisher forwards finished assessments to downstream consumers.
// Implemented by kafka.Publisher.
type Publisher interface {
	Publish(ctx context.Context, assessment domain.RiskAssessment) error
}

// Server exposes the assessment API.
type Server struct {
	httpServer *http.Server

	store     *refdata.Store
	assessor  *engine.Assessor
	weather   domain.WeatherProvider
	explainer domain.Explainer // nil disables explanations
	publisher Publisher        // nil disables publishing
	logger    *slog.Logger
}

// NewServer creates the HTTP server and registers all routes. The explainer
// and publisher are optional; pass nil to leave those features off.
func NewServer(
	addr string,
	store *refdata.Store,
	assessor *engine.Assessor,
	weather domain.WeatherProvider,
	explainer domain.Explainer,
	publisher Publisher,
	logger *slog.Logger,
) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:     store,
		assessor:  assessor,
		weather:   weather,
		explainer: explainer,
		publisher: publisher,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(store))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/neighborhoods", s.handleNeighborhoods)
	mux.HandleFunc("GET /api/v1/risk", s.handleRisk)
	mux.HandleFunc("GET /api/v1/risk/nearby", s.handleRiskNearby)
	mux.HandleFunc("POST /api/v1/assess", s.handleAssess)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
