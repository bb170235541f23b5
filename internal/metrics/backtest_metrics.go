package metrics

import "github.com/prometheus/client_golang/prometheus"

// Coefficient optimizer metrics
var (
	OptimizerRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "optimizer_runs_total",
		Help:      "Coefficient optimizer runs by mode and status",
	}, []string{"mode", "status"})
	OptimizerDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "optimizer_duration_seconds",
		Help:      "Duration of optimizer runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	OptimizerGridPointsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "optimizer_grid_points_total",
		Help:      "Coefficient sets evaluated by the optimizer",
	})
	OptimizerBestMAE = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "optimizer_best_mae",
		Help:      "Mean absolute score error of the latest optimizer result",
	})
)

// RecordOptimizerRun records an optimizer run.
// mode should be one of: "optimize", "validate", "compare"
// status should be one of: "success", "failure"
func RecordOptimizerRun(mode, status string, durationSeconds float64) {
	OptimizerRunsTotal.WithLabelValues(mode, status).Inc()
	OptimizerDuration.Observe(durationSeconds)
}

// RecordGridPoint records one evaluated coefficient set.
func RecordGridPoint() {
	OptimizerGridPointsTotal.Inc()
}

// UpdateBestMAE sets the best MAE gauge.
func UpdateBestMAE(mae float64) {
	OptimizerBestMAE.Set(mae)
}
