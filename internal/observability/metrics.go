package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the risk service.
type Metrics struct {
	AssessmentsTotal   *prometheus.CounterVec // labels: tier={Low,Moderate,High}
	AssessmentErrors   *prometheus.CounterVec // labels: reason={not_found,invalid_input,internal}
	AssessmentDuration prometheus.Histogram
	AnomalyAggregate   prometheus.Histogram
	RiskScore          prometheus.Histogram

	// Weather provider metrics.
	WeatherRequests *prometheus.CounterVec // labels: outcome={success,error,fallback}
	WeatherCache    *prometheus.CounterVec // labels: result={hit,miss}
	WeatherDuration prometheus.Histogram

	// Explanation generation metrics.
	ExplainerRequests *prometheus.CounterVec // labels: outcome={success,error,fallback}

	// Assessment publishing metrics.
	AssessmentsPublished prometheus.Counter
	PublishErrors        prometheus.Counter

	ServiceReady prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.AssessmentsTotal,
		m.AssessmentErrors,
		m.AssessmentDuration,
		m.AnomalyAggregate,
		m.RiskScore,
		m.WeatherRequests,
		m.WeatherCache,
		m.WeatherDuration,
		m.ExplainerRequests,
		m.AssessmentsPublished,
		m.PublishErrors,
		m.ServiceReady,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		AssessmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "assessments_total",
			Help:      "Completed risk assessments by tier.",
		}, []string{"tier"}),
		AssessmentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "assessment_errors_total",
			Help:      "Failed assessment requests by reason.",
		}, []string{"reason"}),
		AssessmentDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "assessment_duration_seconds",
			Help:      "Duration of a complete engine assessment.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		AnomalyAggregate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "anomaly_aggregate",
			Help:      "Weighted aggregate anomaly magnitude per assessment.",
			Buckets:   []float64{0.25, 0.5, 1, 1.5, 2, 3, 4, 6, 8},
		}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "risk_score",
			Help:      "Final fused risk score per assessment.",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90},
		}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "weather_requests_total",
			Help:      "Weather provider requests by outcome.",
		}, []string{"outcome"}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "weather_cache_total",
			Help:      "Weather forecast cache lookups by result.",
		}, []string{"result"}),
		WeatherDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outage_risk",
			Name:      "weather_request_duration_seconds",
			Help:      "OpenWeatherMap API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ExplainerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "explainer_requests_total",
			Help:      "Explanation generation requests by outcome.",
		}, []string{"outcome"}),
		AssessmentsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "assessments_published_total",
			Help:      "Assessments published to the sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "outage_risk",
			Name:      "publish_errors_total",
			Help:      "Failed assessment publish attempts.",
		}),
		ServiceReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "outage_risk",
			Name:      "service_ready",
			Help:      "1 when reference data is loaded and the engine is serving, 0 otherwise.",
		}),
	}
}
