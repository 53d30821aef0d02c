package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/outage-risk-service/internal/domain"
	"github.com/couchcryptid/outage-risk-service/internal/observability"
)

// BaselineSource resolves a neighborhood id to its profile and statistical
// baseline. Implemented by refdata.Store.
type BaselineSource interface {
	Get(id string) (domain.NeighborhoodProfile, domain.BaselineEntry, error)
}

// Assessor is the engine's public entry point: it sequences validation,
// baseline lookup, the two independent scorers, and fusion.
type Assessor struct {
	baselines BaselineSource
	detector  *Detector
	matcher   *Matcher
	fuser     *Fuser
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewAssessor wires the engine components from one parameter set.
func NewAssessor(baselines BaselineSource, params Params, logger *slog.Logger, metrics *observability.Metrics) (*Assessor, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Assessor{
		baselines: baselines,
		detector:  NewDetector(params.Dimensions),
		matcher:   NewMatcher(params.Dimensions),
		fuser:     NewFuser(params),
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Assess produces a risk assessment for one neighborhood and snapshot.
//
// This is the single validation choke point: snapshots are range-checked here
// and nowhere else, so the numeric core below operates on total functions over
// validated inputs. Each call reads only immutable reference data and its own
// arguments; any number of assessments may run concurrently.
func (a *Assessor) Assess(ctx context.Context, neighborhoodID string, snapshot domain.WeatherSnapshot) (domain.RiskAssessment, error) {
	start := time.Now()

	if err := snapshot.Validate(); err != nil {
		a.metrics.AssessmentErrors.WithLabelValues("invalid_input").Inc()
		return domain.RiskAssessment{}, fmt.Errorf("validate snapshot: %w", err)
	}

	profile, baseline, err := a.baselines.Get(neighborhoodID)
	if err != nil {
		a.metrics.AssessmentErrors.WithLabelValues("not_found").Inc()
		return domain.RiskAssessment{}, err
	}

	// The two scorers are independent; order is irrelevant.
	anomaly := a.detector.Score(snapshot, baseline)
	pattern := a.matcher.Match(snapshot, baseline)

	score, factors := a.fuser.Fuse(anomaly, pattern, profile.VulnerabilityWeight)
	tier := domain.TierForScore(score)

	a.metrics.AssessmentsTotal.WithLabelValues(string(tier)).Inc()
	a.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	a.metrics.AnomalyAggregate.Observe(anomaly.Aggregate)
	a.metrics.RiskScore.Observe(score)

	a.logger.DebugContext(ctx, "assessment complete",
		"neighborhood_id", profile.ID,
		"risk_score", score,
		"tier", tier,
		"anomaly_aggregate", anomaly.Aggregate,
		"pattern_similarity", pattern.Similarity,
	)

	return domain.RiskAssessment{
		NeighborhoodID:   profile.ID,
		NeighborhoodName: profile.Name,
		RiskScore:        score,
		RiskLevel:        tier,
		Weather:          snapshot,
		Factors:          factors,
		Anomaly:          anomaly,
		Pattern:          pattern,
		AssessedAt:       domain.Now(),
	}, nil
}
