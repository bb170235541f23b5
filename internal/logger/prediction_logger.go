package logger

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchup-engine/internal/models"
)

// PredictionLogger provides dedicated logging for matchup predictions.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogPrediction logs a completed prediction with its audit trace.
func (pl *PredictionLogger) LogPrediction(pred models.MatchupPrediction, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"home_team":            pred.HomeTeam,
		"away_team":            pred.AwayTeam,
		"sport":                pred.Sport,
		"model_path":           pred.Trace.Model,
		"home_win_probability": pred.WinProbability.Home,
		"raw_win_probability":  pred.Trace.RawWinProbability,
		"calibration_applied":  pred.Trace.CalibrationApplied,
		"predicted_spread":     pred.PredictedSpread,
		"predicted_total":      pred.PredictedTotal,
		"confidence":           pred.Confidence,
		"coefficients_version": pred.Trace.CoefficientsVersion,
		"value_bets":           len(pred.ValueBets),
		"duration_ms":          durationMs,
	}).Info("Matchup prediction completed")
}

// LogMissingStats logs a team that fell back to partial stats.
func (pl *PredictionLogger) LogMissingStats(team, sport string, fourFactors bool) {
	pl.WithFields(logrus.Fields{
		"team":         team,
		"sport":        sport,
		"four_factors": fourFactors,
	}).Debug("Team stats incomplete, fallback terms in use")
}

// LogRatingsRefresh logs a ratings cache refresh.
func (pl *PredictionLogger) LogRatingsRefresh(sport string, ratings int, hitRatio float64) {
	pl.WithFields(logrus.Fields{
		"sport":     sport,
		"ratings":   ratings,
		"hit_ratio": hitRatio,
	}).Info("Opponent ratings refreshed")
}

// LogCalibrationUpdate logs a change of Platt parameters.
func (pl *PredictionLogger) LogCalibrationUpdate(version string, a, b float64, samples int) {
	pl.WithFields(logrus.Fields{
		"event_type": "calibration_update",
		"version":    version,
		"a":          a,
		"b":          b,
		"samples":    samples,
	}).Info("Probability calibration updated")
}
