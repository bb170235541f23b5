package logger

import (
	"github.com/sirupsen/logrus"
)

// MonitorLogger provides dedicated logging for line movement sweeps.
type MonitorLogger struct {
	*logrus.Entry
}

// NewMonitorLogger creates a new monitor logger.
func NewMonitorLogger(baseLogger *logrus.Logger) *MonitorLogger {
	return &MonitorLogger{
		Entry: baseLogger.WithField("component", "line_monitor"),
	}
}

// LogSweepStarted logs the start of a sweep.
func (ml *MonitorLogger) LogSweepStarted(sweepID string, sports []string) {
	ml.WithFields(logrus.Fields{
		"sweep_id": sweepID,
		"sports":   sports,
	}).Info("Line movement sweep started")
}

// LogSignificantMove logs a line movement that crossed a threshold.
func (ml *MonitorLogger) LogSignificantMove(predictionID, gameID, sport, state string, spreadMove, totalMove, homeMLChange, awayMLChange float64, reasons []string) {
	ml.WithFields(logrus.Fields{
		"prediction_id":  predictionID,
		"game_id":        gameID,
		"sport":          sport,
		"state":          state,
		"spread_move":    spreadMove,
		"total_move":     totalMove,
		"home_ml_change": homeMLChange,
		"away_ml_change": awayMLChange,
		"reasons":        reasons,
	}).Info("Significant line movement detected")
}

// LogQuietMove logs a checked prediction whose lines stayed inside every
// threshold.
func (ml *MonitorLogger) LogQuietMove(predictionID, gameID, sport string, reasons []string) {
	ml.WithFields(logrus.Fields{
		"prediction_id": predictionID,
		"game_id":       gameID,
		"sport":         sport,
		"reasons":       reasons,
	}).Debug("No significant line movement")
}

// LogRepredictionTriggered logs a hand-off to the re-prediction collaborator.
func (ml *MonitorLogger) LogRepredictionTriggered(predictionID, gameID string, count int) {
	ml.WithFields(logrus.Fields{
		"prediction_id":      predictionID,
		"game_id":            gameID,
		"event_type":         "reprediction",
		"reprediction_count": count,
	}).Info("Re-prediction triggered")
}

// LogSportError logs a per-sport failure that did not abort the sweep.
func (ml *MonitorLogger) LogSportError(sport, stage string, err error) {
	ml.WithError(err).WithFields(logrus.Fields{
		"sport": sport,
		"stage": stage,
	}).Warn("Sport skipped during sweep")
}

// LogSportLocked logs a sport skipped because another sweep holds it.
func (ml *MonitorLogger) LogSportLocked(sport string) {
	ml.WithField("sport", sport).Info("Sport already being swept, skipping")
}

// LogSweepCompleted logs sweep totals.
func (ml *MonitorLogger) LogSweepCompleted(sweepID string, checked, significant, repredicted, errors int, durationMs float64) {
	ml.WithFields(logrus.Fields{
		"sweep_id":    sweepID,
		"checked":     checked,
		"significant": significant,
		"repredicted": repredicted,
		"errors":      errors,
		"duration_ms": durationMs,
	}).Info("Line movement sweep completed")
}
