package backtest

import (
	"context"
	"math"

	"github.com/yourusername/matchup-engine/internal/analytics"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/predictor"
)

// Metrics aggregates prediction error over a set of games.
type Metrics struct {
	Games          int     `json:"games"`
	Skipped        int     `json:"skipped"`
	MAE            float64 `json:"mae"`
	MarginMAE      float64 `json:"margin_mae"`
	WinnerAccuracy float64 `json:"winner_accuracy"`
}

// evaluator replays the analytics and prediction pipeline over resolved cases.
type evaluator struct {
	calc      *analytics.Calculator
	predictor *predictor.Predictor
	sport     string
}

// gameError is the mean absolute error of the two predicted scores.
func gameError(pred models.PredictedScore, actual models.GameResult) float64 {
	return (math.Abs(float64(pred.Home-actual.HomeScore)) + math.Abs(float64(pred.Away-actual.AwayScore))) / 2
}

func (e evaluator) predict(c evalCase, coeffs models.CalibrationCoefficients) models.MatchupPrediction {
	home := e.calc.Compute(analytics.Input{
		Stats:        c.homeStats,
		RecentGames:  c.homeRecent,
		IsHome:       true,
		Sport:        e.sport,
		Coefficients: coeffs,
	})
	away := e.calc.Compute(analytics.Input{
		Stats:        c.awayStats,
		RecentGames:  c.awayRecent,
		Sport:        e.sport,
		Coefficients: coeffs,
	})
	return e.predictor.Predict(predictor.Input{
		Home:         home,
		Away:         away,
		HomeStats:    c.homeStats,
		AwayStats:    c.awayStats,
		Sport:        e.sport,
		Coefficients: coeffs,
	})
}

// evaluate scores one coefficient set. coeffs is passed by value so
// concurrent trials never share it.
func (e evaluator) evaluate(ctx context.Context, cases []evalCase, coeffs models.CalibrationCoefficients) (Metrics, error) {
	var m Metrics
	var totalErr, marginErr float64
	var correct int
	for _, c := range cases {
		if err := ctx.Err(); err != nil {
			return Metrics{}, err
		}
		pred := e.predict(c, coeffs)
		actual := c.game.GameResult

		totalErr += gameError(pred.PredictedScore, actual)
		actualMargin := actual.HomeScore - actual.AwayScore
		marginErr += math.Abs(float64(pred.PredictedSpread - actualMargin))
		if predictedHomeWin := pred.PredictedScore.Home > pred.PredictedScore.Away; predictedHomeWin == (actualMargin > 0) && actualMargin != 0 {
			correct++
		}
		m.Games++
	}
	if m.Games == 0 {
		return m, nil
	}
	n := float64(m.Games)
	m.MAE = totalErr / n
	m.MarginMAE = marginErr / n
	m.WinnerAccuracy = float64(correct) / n
	return m, nil
}
