package metrics

import "github.com/prometheus/client_golang/prometheus"

// Line monitor metrics
var (
	MonitorSweepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "monitor_sweeps_total",
		Help:      "Line monitor sweeps by status",
	}, []string{"status"})
	MonitorSweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "monitor_sweep_duration_seconds",
		Help:      "Duration of line monitor sweeps in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	LineMovementsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "line_movements_total",
		Help:      "Analyzed line movements by sport and resulting state",
	}, []string{"sport", "state"})
	OddsFetchErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "odds_fetch_errors_total",
		Help:      "Consensus odds fetch failures by sport",
	}, []string{"sport"})
	MonitorSportsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "monitor_sports_skipped_total",
		Help:      "Sports skipped because another sweep held the lease",
	}, []string{"sport"})
)

// RecordSweep records a completed sweep.
// status should be one of: "success", "partial", "failure"
func RecordSweep(status string, durationSeconds float64) {
	MonitorSweepsTotal.WithLabelValues(status).Inc()
	MonitorSweepDuration.Observe(durationSeconds)
}

// RecordLineMovement records one analyzed movement.
func RecordLineMovement(sport, state string) {
	LineMovementsTotal.WithLabelValues(sport, state).Inc()
}

// RecordOddsFetchError records a failed consensus fetch.
func RecordOddsFetchError(sport string) {
	OddsFetchErrorsTotal.WithLabelValues(sport).Inc()
}

// RecordSportSkipped records a sport skipped for lack of a lease.
func RecordSportSkipped(sport string) {
	MonitorSportsSkippedTotal.WithLabelValues(sport).Inc()
}
