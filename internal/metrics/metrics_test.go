package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordPrediction(t *testing.T) {
	InitRegistry()

	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("basketball_nba", "four_factors"))
	overrides := testutil.ToFloat64(PredictionOverridesTotal.WithLabelValues("basketball_nba"))

	RecordPrediction("basketball_nba", "four_factors", true)
	RecordPrediction("basketball_nba", "four_factors", false)

	assert.Equal(t, before+2, testutil.ToFloat64(PredictionsTotal.WithLabelValues("basketball_nba", "four_factors")))
	assert.Equal(t, overrides+1, testutil.ToFloat64(PredictionOverridesTotal.WithLabelValues("basketball_nba")))
}

func TestMonitorMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSweep("success", 0.25)
		RecordLineMovement("basketball_ncaab", "eligible")
		RecordOddsFetchError("basketball_ncaab")
		RecordSportSkipped("basketball_ncaab")
	})
	assert.GreaterOrEqual(t, testutil.ToFloat64(OddsFetchErrorsTotal.WithLabelValues("basketball_ncaab")), 1.0)
}

func TestOptimizerMetrics(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name string
		mae  float64
	}{
		{name: "typical", mae: 8.4},
		{name: "zero", mae: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordOptimizerRun("optimize", "success", 12)
			RecordGridPoint()
			UpdateBestMAE(tt.mae)
			assert.Equal(t, tt.mae, testutil.ToFloat64(OptimizerBestMAE))
		})
	}
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordScheduledJob("line_monitor", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "matchup_engine_scheduled_job_runs_total")
}
