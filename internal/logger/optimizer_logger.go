package logger

import (
	"github.com/sirupsen/logrus"
)

// OptimizerLogger provides audit logging for coefficient tuning.
type OptimizerLogger struct {
	*logrus.Entry
}

// NewOptimizerLogger creates a new optimizer logger.
func NewOptimizerLogger(baseLogger *logrus.Logger) *OptimizerLogger {
	return &OptimizerLogger{
		Entry: baseLogger.WithField("component", "optimizer"),
	}
}

// LogOptimizationResult logs the outcome of a grid search.
func (ol *OptimizerLogger) LogOptimizationResult(runID, sport, version string, games, evaluated int, baselineMAE, bestMAE float64, improved bool) {
	ol.WithFields(logrus.Fields{
		"run_id":       runID,
		"sport":        sport,
		"version":      version,
		"games":        games,
		"evaluated":    evaluated,
		"baseline_mae": baselineMAE,
		"best_mae":     bestMAE,
		"improved":     improved,
	}).Info("Coefficient optimization recorded")
}

// LogCoefficientChange logs a coefficient that differs from the incumbent.
func (ol *OptimizerLogger) LogCoefficientChange(name string, oldValue, newValue float64, version string) {
	ol.WithFields(logrus.Fields{
		"event_type": "coefficient_change",
		"name":       name,
		"old_value":  oldValue,
		"new_value":  newValue,
		"version":    version,
	}).Info("Coefficient changed")
}

// LogValidation logs a single-set validation.
func (ol *OptimizerLogger) LogValidation(version string, games int, mae, marginMAE, winnerAccuracy float64) {
	ol.WithFields(logrus.Fields{
		"version":         version,
		"games":           games,
		"mae":             mae,
		"margin_mae":      marginMAE,
		"winner_accuracy": winnerAccuracy,
	}).Info("Coefficient validation completed")
}

// LogComparison logs a pairwise comparison.
func (ol *OptimizerLogger) LogComparison(versionA, versionB string, maeDelta, winnerAccuracyDelta float64) {
	ol.WithFields(logrus.Fields{
		"version_a":             versionA,
		"version_b":             versionB,
		"mae_delta":             maeDelta,
		"winner_accuracy_delta": winnerAccuracyDelta,
	}).Info("Coefficient comparison completed")
}
