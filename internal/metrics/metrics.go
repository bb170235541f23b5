// Package metrics provides centralized Prometheus metrics registry for the matchup engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "matchup_engine"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Prediction metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "predictions_total",
		Help:      "Total number of matchup predictions by sport and model path",
	}, []string{"sport", "path"})
	PredictionOverridesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "prediction_overrides_total",
		Help:      "Predictions where schedule-adjusted efficiency overrode the Four Factors score",
	}, []string{"sport"})
)

// Rating cache gauges
var (
	RatingCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "rating_cache_hit_ratio",
		Help:      "Hit ratio of the opponent rating cache",
	})
	RatingCacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "rating_cache_entries",
		Help:      "Number of team ratings held in the cache",
	})
)

// Scheduler metrics
var (
	ScheduledJobRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "scheduled_job_runs_total",
		Help:      "Scheduled job executions by job and status",
	}, []string{"job", "status"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionOverridesTotal)
		registry.MustRegister(RatingCacheHitRatio)
		registry.MustRegister(RatingCacheEntries)
		registry.MustRegister(ScheduledJobRunsTotal)

		// Line monitor
		registry.MustRegister(MonitorSweepsTotal)
		registry.MustRegister(MonitorSweepDuration)
		registry.MustRegister(LineMovementsTotal)
		registry.MustRegister(OddsFetchErrorsTotal)
		registry.MustRegister(MonitorSportsSkippedTotal)

		// Optimizer
		registry.MustRegister(OptimizerRunsTotal)
		registry.MustRegister(OptimizerDuration)
		registry.MustRegister(OptimizerGridPointsTotal)
		registry.MustRegister(OptimizerBestMAE)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records one prediction and whether the override fired.
func RecordPrediction(sport, path string, override bool) {
	PredictionsTotal.WithLabelValues(sport, path).Inc()
	if override {
		PredictionOverridesTotal.WithLabelValues(sport).Inc()
	}
}

// RecordScheduledJob records a scheduled job execution.
// status should be one of: "success", "failure"
func RecordScheduledJob(job, status string) {
	ScheduledJobRunsTotal.WithLabelValues(job, status).Inc()
}
