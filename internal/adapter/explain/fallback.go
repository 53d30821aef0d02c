package explain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
)

// RuleBased generates explanations from tier-specific templates. It is the
// default explainer when no API token is configured.
type RuleBased struct{}

func (RuleBased) Explain(_ context.Context, a domain.RiskAssessment) (string, error) {
	name := a.NeighborhoodName
	if name == "" {
		name = "your area"
	}
	w := a.Weather

	switch a.RiskLevel {
	case domain.TierLow:
		return fmt.Sprintf(
			"Low risk of power outage in %s. Weather conditions are within normal range with %.1f°C and %.0f km/h winds. "+
				"No immediate preparation needed, but it's always good to have flashlights and charged devices ready.",
			name, w.Temp, w.WindSpeed), nil

	case domain.TierModerate:
		concern := "concerning weather patterns"
		switch {
		case w.WindSpeed > 40:
			concern = fmt.Sprintf("high winds of %.0f km/h", w.WindSpeed)
		case w.Temp < 0:
			concern = fmt.Sprintf("freezing temperatures of %.1f°C", w.Temp)
		case w.Precipitation > 2:
			concern = fmt.Sprintf("heavy precipitation of %.1f mm", w.Precipitation)
		}
		return fmt.Sprintf(
			"Moderate risk of power outage in %s. Our analysis detected %s that may affect power lines. "+
				"Consider charging essential devices, having flashlights ready, and keeping emergency contacts accessible.",
			name, concern), nil

	default:
		concern := "severe weather conditions"
		action := "Take immediate preparatory measures"
		switch {
		case w.WindSpeed > 50:
			concern = fmt.Sprintf("dangerous wind speeds of %.0f km/h", w.WindSpeed)
			action = "Secure loose outdoor items and stay indoors"
		case w.Temp < -5:
			concern = fmt.Sprintf("extreme cold of %.1f°C", w.Temp)
			action = "Prepare extra blankets and heating alternatives"
		case w.Precipitation > 3:
			concern = fmt.Sprintf("severe precipitation of %.1f mm", w.Precipitation)
			action = "Prepare for possible flooding and power disruptions"
		}
		return fmt.Sprintf(
			"High risk of power outage in %s. Weather analysis shows %s that significantly increases outage probability. "+
				"%s. Charge all essential medical devices immediately, prepare backup power sources, and have emergency supplies ready.",
			name, concern, action), nil
	}
}

// FallbackExplainer serves a rule-based explanation when the model call fails,
// so the assessment response never loses its narrative to a provider outage.
type FallbackExplainer struct {
	inner   domain.Explainer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewFallbackExplainer creates a fallback decorator around an explainer.
func NewFallbackExplainer(inner domain.Explainer, logger *slog.Logger, metrics *observability.Metrics) *FallbackExplainer {
	return &FallbackExplainer{inner: inner, logger: logger, metrics: metrics}
}

func (f *FallbackExplainer) Explain(ctx context.Context, assessment domain.RiskAssessment) (string, error) {
	text, err := f.inner.Explain(ctx, assessment)
	if err == nil {
		return text, nil
	}

	f.metrics.ExplainerRequests.WithLabelValues("fallback").Inc()
	f.logger.WarnContext(ctx, "explanation model failed, serving rule-based text",
		"error", err,
		"neighborhood_id", assessment.NeighborhoodID,
	)
	return RuleBased{}.Explain(ctx, assessment)
}
