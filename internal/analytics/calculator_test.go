package analytics

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
)

// game builds a result for "Duke" against opponent; Duke is at home when home is true.
func game(opponent string, dukeScore, oppScore int, home bool) models.GameResult {
	g := models.GameResult{
		GameID:    fmt.Sprintf("%s-%d-%d", opponent, dukeScore, oppScore),
		Date:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		HomeTeam:  "Duke Blue Devils",
		AwayTeam:  opponent,
		HomeScore: dukeScore,
		AwayScore: oppScore,
	}
	if !home {
		g.HomeTeam, g.AwayTeam = opponent, "Duke Blue Devils"
		g.HomeScore, g.AwayScore = oppScore, dukeScore
	}
	return g
}

func dukeStats() models.TeamStats {
	return models.TeamStats{
		TeamKey:              "",
		TeamName:             "Duke",
		Wins:                 20,
		Losses:               5,
		PointsPerGame:        models.Float(78),
		PointsAllowedPerGame: models.Float(66),
		FieldGoalPct:         models.Float(0.47),
		ThreePointPct:        models.Float(36),
		FreeThrowPct:         models.Float(0.75),
		Pace:                 models.Float(68),
	}
}

func TestComputeWithNoRecentGames(t *testing.T) {
	calc := NewCalculator(nil)
	got := calc.Compute(Input{Stats: dukeStats(), IsHome: true})

	assert.Equal(t, 0.0, got.Momentum)
	assert.Equal(t, "", got.RecentForm)
	assert.Equal(t, models.Record{}, got.Last5Record)
	assert.Equal(t, 50.0, got.Consistency)
	assert.Equal(t, 0, got.Streak)
	assert.Equal(t, 0.0, got.StrengthOfSchedule)
	assert.False(t, got.RecentFormApplied)

	assert.Equal(t, got.OffensiveEfficiency, got.SOSAdjustedOffensiveEfficiency)
	assert.Equal(t, got.OffensiveEfficiency, got.TierAdjustedOffensiveEfficiency)
	assert.InDelta(t, got.OffensiveEfficiency, got.AdjustedOffensiveEfficiency, 1e-9)
}

func TestSeasonEfficiencyFallbacks(t *testing.T) {
	ncaab := sport.Lookup(sport.NCAAB)

	t.Run("explicit fields win", func(t *testing.T) {
		s := models.TeamStats{OffensiveEfficiency: models.Float(112), DefensiveEfficiency: models.Float(96), PointsPerGame: models.Float(50)}
		off, def := seasonEfficiency(s, ncaab, 68)
		assert.Equal(t, 112.0, off)
		assert.Equal(t, 96.0, def)
	})

	t.Run("points over pace", func(t *testing.T) {
		s := models.TeamStats{PointsPerGame: models.Float(68), PointsAllowedPerGame: models.Float(61.2)}
		off, def := seasonEfficiency(s, ncaab, 68)
		assert.InDelta(t, 100.0, off, 1e-9)
		assert.InDelta(t, 90.0, def, 1e-9)
	})

	t.Run("league average when nothing reported", func(t *testing.T) {
		off, def := seasonEfficiency(models.TeamStats{}, ncaab, 68)
		assert.Equal(t, ncaab.LeagueEfficiency(), off)
		assert.Equal(t, ncaab.LeagueEfficiency(), def)
	})

	t.Run("zero pace uses league pace", func(t *testing.T) {
		s := models.TeamStats{Pace: models.Float(0), PointsPerGame: models.Float(68)}
		pace := teamPace(s, ncaab)
		assert.Equal(t, ncaab.LeaguePace, pace)
	})
}

func TestMomentum(t *testing.T) {
	calc := NewCalculator(nil)

	single := calc.Compute(Input{Stats: dukeStats(), RecentGames: []models.GameResult{game("Kansas", 80, 70, true)}})
	assert.InDelta(t, 30.0, single.Momentum, 1e-9)

	loss := calc.Compute(Input{Stats: dukeStats(), RecentGames: []models.GameResult{game("Kansas", 60, 90, false)}})
	assert.InDelta(t, -40.0, loss.Momentum, 1e-9)

	var blowouts []models.GameResult
	for i := 0; i < 8; i++ {
		blowouts = append(blowouts, game(fmt.Sprintf("Team %d", i), 100, 60, true))
	}
	capped := calc.Compute(Input{Stats: dukeStats(), RecentGames: blowouts})
	assert.Equal(t, 100.0, capped.Momentum)
}

func TestFormStreakAndRecord(t *testing.T) {
	games := []models.GameResult{
		game("Kansas", 70, 65, true),
		game("Kentucky", 72, 70, false),
		game("Gonzaga", 60, 75, true),
		game("Baylor", 81, 79, false),
		game("Houston", 55, 60, true),
		game("Purdue", 90, 60, true),
	}
	got := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: games})

	assert.Equal(t, "W-W-L-W-L", got.RecentForm)
	assert.Equal(t, 2, got.Streak)
	assert.Equal(t, models.Record{Wins: 3, Losses: 2}, got.Last5Record)
	assert.Equal(t, 6, got.GamesAnalyzed)
}

func TestLosingStreakIsNegative(t *testing.T) {
	games := []models.GameResult{
		game("Kansas", 60, 65, true),
		game("Kentucky", 62, 70, false),
		game("Gonzaga", 80, 75, true),
	}
	got := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: games})
	assert.Equal(t, -2, got.Streak)
}

func TestUnattributableGamesAreSkipped(t *testing.T) {
	games := []models.GameResult{
		{HomeTeam: "Kansas", AwayTeam: "Kentucky", HomeScore: 70, AwayScore: 60},
		game("Gonzaga", 80, 75, true),
	}
	got := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: games})
	assert.Equal(t, "W", got.RecentForm)
	assert.Equal(t, 1, got.GamesAnalyzed)
}

func TestConsistency(t *testing.T) {
	steady := []models.GameResult{
		game("A", 70, 60, true),
		game("B", 70, 60, true),
		game("C", 60, 70, true),
	}
	got := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: steady})
	assert.Equal(t, 100.0, got.Consistency)

	wild := []models.GameResult{
		game("A", 100, 50, true),
		game("B", 61, 60, true),
		game("C", 100, 50, true),
		game("D", 61, 60, true),
	}
	got = NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: wild})
	// margins 50,1,50,1: stddev 24.5 -> 100 - 122.5 clamps to 0
	assert.Equal(t, 0.0, got.Consistency)
}

func TestShootingComposite(t *testing.T) {
	avg := models.TeamStats{FieldGoalPct: models.Float(45), ThreePointPct: models.Float(0.34), FreeThrowPct: models.Float(72)}
	assert.InDelta(t, 100.0, shootingComposite(avg), 1e-9)

	assert.InDelta(t, 100.0, shootingComposite(models.TeamStats{}), 1e-9)

	hot := models.TeamStats{FieldGoalPct: models.Float(0.495)}
	assert.InDelta(t, 105.0, shootingComposite(hot), 1e-9)
}

func TestRecentFormBlend(t *testing.T) {
	games := []models.GameResult{
		game("A", 75, 65, true),
		game("B", 75, 65, false),
		game("C", 75, 65, true),
	}
	stats := dukeStats()
	got := NewCalculator(nil).Compute(Input{Stats: stats, RecentGames: games})
	require.True(t, got.RecentFormApplied)

	recentOff := 75.0 / 68 * 100
	seasonOff := 78.0 / 68 * 100
	assert.InDelta(t, 0.6*recentOff+0.4*seasonOff, got.WeightedOffensiveEfficiency, 1e-9)

	custom := models.DefaultCoefficients().WithRecentFormWeight(1)
	got = NewCalculator(nil).Compute(Input{Stats: stats, RecentGames: games, Coefficients: custom})
	assert.InDelta(t, recentOff, got.WeightedOffensiveEfficiency, 1e-9)
}

func TestRecentFormBlendReachesAdjustedEfficiencyBelowScheduleMinimum(t *testing.T) {
	games := []models.GameResult{
		game("A", 82, 60, true),
		game("B", 82, 60, false),
		game("C", 82, 60, true),
		game("D", 82, 60, false),
	}
	coeffs := models.DefaultCoefficients()
	got := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: games, Coefficients: coeffs})
	require.True(t, got.RecentFormApplied)
	require.Equal(t, 4, got.GamesAnalyzed)

	assert.Equal(t, 0.0, got.StrengthOfSchedule)
	assert.NotEqual(t, got.OffensiveEfficiency, got.WeightedOffensiveEfficiency)
	assert.Equal(t, got.WeightedOffensiveEfficiency, got.SOSAdjustedOffensiveEfficiency)
	assert.Equal(t, got.WeightedDefensiveEfficiency, got.SOSAdjustedDefensiveEfficiency)

	wantOff := coeffs.WeightedEffWeight*got.WeightedOffensiveEfficiency + coeffs.TierAdjustedWeight*got.TierAdjustedOffensiveEfficiency
	wantDef := coeffs.WeightedEffWeight*got.WeightedDefensiveEfficiency + coeffs.TierAdjustedWeight*got.TierAdjustedDefensiveEfficiency
	assert.InDelta(t, wantOff, got.AdjustedOffensiveEfficiency, 1e-9)
	assert.InDelta(t, wantDef, got.AdjustedDefensiveEfficiency, 1e-9)
}

func TestRecentFormDiscardsImplausibleEstimates(t *testing.T) {
	games := []models.GameResult{
		game("A", 140, 40, true),
		game("B", 140, 40, true),
		game("C", 140, 40, true),
	}
	got := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: games})
	assert.False(t, got.RecentFormApplied)
}

func TestComputeBoundsHoldForExtremeInputs(t *testing.T) {
	inputs := []Input{
		{Stats: models.TeamStats{TeamName: "Duke", Pace: models.Float(math.NaN()), PointsPerGame: models.Float(math.Inf(1))}},
		{Stats: models.TeamStats{TeamName: "Duke", Pace: models.Float(-5)}, RecentGames: []models.GameResult{game("A", 0, 0, true)}},
		{Stats: dukeStats(), RecentGames: []models.GameResult{game("A", 200, 0, true), game("B", 0, 200, true), game("C", 150, 10, false)}},
	}
	for i, in := range inputs {
		got := NewCalculator(nil).Compute(in)
		assert.GreaterOrEqual(t, got.Momentum, -100.0, "case %d", i)
		assert.LessOrEqual(t, got.Momentum, 100.0, "case %d", i)
		assert.GreaterOrEqual(t, got.Consistency, 0.0, "case %d", i)
		assert.LessOrEqual(t, got.Consistency, 100.0, "case %d", i)
		assert.False(t, math.IsNaN(got.AdjustedOffensiveEfficiency), "case %d", i)
		assert.False(t, math.IsInf(got.AdjustedDefensiveEfficiency, 0), "case %d", i)
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	var games []models.GameResult
	for i := 0; i < 15; i++ {
		games = append(games, game(fmt.Sprintf("Opp %d", i), 60+i, 70-i/2, i%2 == 0))
	}
	calc := NewCalculator(nil)
	in := Input{Stats: dukeStats(), RecentGames: games, IsHome: true}

	first := calc.Compute(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, calc.Compute(in))
	}
}
