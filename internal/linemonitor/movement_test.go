package linemonitor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchup-engine/internal/models"
)

var now = time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func tracked(gameIn time.Duration) models.TrackedPrediction {
	return models.TrackedPrediction{
		ID:             uuid.MustParse("6f1d2c4e-8a39-4a1f-9d1e-2b7c3a5e9f01"),
		GameID:         "evt-1",
		Sport:          "basketball_nba",
		HomeTeam:       "Boston Celtics",
		AwayTeam:       "Miami Heat",
		GameTime:       now.Add(gameIn),
		OriginalSpread: f(-3),
		OriginalTotal:  f(220.5),
		OriginalHomeML: models.Int(-150),
		OriginalAwayML: models.Int(130),
		PredictedAt:    now.Add(-6 * time.Hour),
	}
}

func oddsFor(p models.TrackedPrediction) models.GameOdds {
	return models.GameOdds{
		GameID:        p.GameID,
		Sport:         p.Sport,
		HomeTeam:      p.HomeTeam,
		AwayTeam:      p.AwayTeam,
		Spread:        p.OriginalSpread,
		Total:         p.OriginalTotal,
		HomeMoneyline: p.OriginalHomeML,
		AwayMoneyline: p.OriginalAwayML,
	}
}

func TestAnalyzeSpreadMove(t *testing.T) {
	p := tracked(4 * time.Hour)
	odds := oddsFor(p)
	odds.Spread = f(-6)

	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{}, Thresholds{SpreadThreshold: 2.5}.WithDefaults(), now)

	assert.Equal(t, 3.0, mv.SpreadMovement)
	assert.True(t, mv.SignificantSpreadMove)
	assert.True(t, mv.SignificantMove)
	assert.True(t, mv.ShouldRepredict)
	assert.Equal(t, StateEligible, mv.State)
	assert.Contains(t, mv.Reasons[0], "Spread moved 3.0 points")
}

func TestAnalyzeMoneylineMoveInImpliedProbability(t *testing.T) {
	p := tracked(4 * time.Hour)
	odds := oddsFor(p)
	odds.HomeMoneyline = models.Int(-400)
	odds.AwayMoneyline = nil

	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{}, Thresholds{MoneylineThreshold: 20}.WithDefaults(), now)

	assert.InDelta(t, 20, mv.HomeMLChangePercent, 1e-6)
	assert.True(t, mv.SignificantMLMove)
	assert.False(t, mv.SignificantSpreadMove)
	assert.Zero(t, mv.AwayMLChangePercent)
}

func TestAnalyzeSmallRawMoveNearEvenIsNotSignificant(t *testing.T) {
	p := tracked(4 * time.Hour)
	p.OriginalHomeML = models.Int(-110)
	odds := oddsFor(p)
	odds.HomeMoneyline = models.Int(-120)

	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{}, DefaultThresholds(), now)

	assert.InDelta(t, 2.17, mv.HomeMLChangePercent, 0.01)
	assert.False(t, mv.SignificantMove)
	assert.Equal(t, StateNoMove, mv.State)
	require.Len(t, mv.Reasons, 1)
	assert.Contains(t, mv.Reasons[0], "No significant movement")
}

func TestAnalyzeLiveGameGuardrail(t *testing.T) {
	for _, start := range []time.Duration{0, -10 * time.Minute} {
		p := tracked(start)
		odds := oddsFor(p)
		odds.Spread = f(-9)

		mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{}, DefaultThresholds(), now)

		assert.True(t, mv.SignificantMove)
		assert.False(t, mv.ShouldRepredict)
		assert.Equal(t, StateExpired, mv.State)
		assert.Contains(t, mv.Reasons, ReasonGameStarted)
	}
}

func TestAnalyzeMaxRepredictions(t *testing.T) {
	p := tracked(4 * time.Hour)
	odds := oddsFor(p)
	odds.Total = f(225)

	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{Count: 3}, DefaultThresholds(), now)

	assert.True(t, mv.SignificantTotalMove)
	assert.False(t, mv.ShouldRepredict)
	assert.Equal(t, StateMaxReached, mv.State)
	assert.Contains(t, mv.Reasons[len(mv.Reasons)-1], "3/3")
}

func TestAnalyzeCooldown(t *testing.T) {
	p := tracked(4 * time.Hour)
	odds := oddsFor(p)
	odds.Spread = f(-5)

	recent := now.Add(-20 * time.Minute)
	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{Count: 1, LastRepredictedAt: &recent}, DefaultThresholds(), now)
	assert.Equal(t, StateCooldown, mv.State)
	assert.False(t, mv.ShouldRepredict)
	assert.Contains(t, mv.Reasons[len(mv.Reasons)-1], "40 minutes remaining")

	earlier := now.Add(-90 * time.Minute)
	mv = AnalyzeLineMovement(p, odds, models.RepredictionHistory{Count: 1, LastRepredictedAt: &earlier}, DefaultThresholds(), now)
	assert.Equal(t, StateEligible, mv.State)
	assert.True(t, mv.ShouldRepredict)
}

func TestAnalyzeHonorsExplicitZeroLimits(t *testing.T) {
	p := tracked(4 * time.Hour)
	odds := oddsFor(p)
	odds.Spread = f(-5)

	noCooldown := DefaultThresholds()
	noCooldown.Cooldown = 0
	recent := now.Add(-1 * time.Minute)
	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{Count: 1, LastRepredictedAt: &recent}, noCooldown, now)
	assert.Equal(t, StateEligible, mv.State)
	assert.True(t, mv.ShouldRepredict)

	disabled := DefaultThresholds()
	disabled.MaxRepredictions = 0
	mv = AnalyzeLineMovement(p, odds, models.RepredictionHistory{}, disabled, now)
	assert.Equal(t, StateMaxReached, mv.State)
	assert.False(t, mv.ShouldRepredict)
}

func TestThresholdsOrDefault(t *testing.T) {
	assert.Equal(t, DefaultThresholds(), Thresholds{}.OrDefault())

	partial := Thresholds{SpreadThreshold: 2, HoursBeforeGame: 12}
	assert.Equal(t, partial, partial.OrDefault())
}

func TestAnalyzeMissingLines(t *testing.T) {
	p := tracked(4 * time.Hour)
	p.OriginalSpread = nil
	p.OriginalHomeML = models.Int(50) // invalid American price
	odds := oddsFor(p)
	odds.Spread = f(-12)

	mv := AnalyzeLineMovement(p, odds, models.RepredictionHistory{}, DefaultThresholds(), now)

	assert.Zero(t, mv.SpreadMovement)
	assert.Zero(t, mv.HomeMLChangePercent)
	assert.False(t, mv.SignificantMove)
	assert.NotEmpty(t, mv.Reasons)
}

func TestThresholdWindow(t *testing.T) {
	th := DefaultThresholds()

	assert.False(t, th.inWindow(now.Add(30*time.Minute), now))
	assert.True(t, th.inWindow(now.Add(31*time.Minute), now))
	assert.True(t, th.inWindow(now.Add(23*time.Hour), now))
	assert.False(t, th.inWindow(now.Add(24*time.Hour), now))
}

func TestThresholdDefaults(t *testing.T) {
	th := Thresholds{SpreadThreshold: 2.5}.WithDefaults()
	assert.Equal(t, 2.5, th.SpreadThreshold)
	assert.Equal(t, 2.0, th.TotalThreshold)
	assert.Equal(t, 5.0, th.MoneylineThreshold)
	assert.Equal(t, 3, th.MaxRepredictions)
	assert.Equal(t, time.Hour, th.Cooldown)
}
