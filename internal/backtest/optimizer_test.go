package backtest

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchup-engine/internal/metrics"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

func f(v float64) *float64 { return &v }

func stats(key, name string, off, def float64) models.TeamStats {
	return models.TeamStats{
		TeamKey:              key,
		TeamName:             name,
		Season:               2024,
		Wins:                 20,
		Losses:               10,
		PointsPerGame:        f(off * 0.68),
		PointsAllowedPerGame: f(def * 0.68),
		EffectiveFGPct:       f(50 + (off-100)/2),
		TurnoverPct:          f(17),
		OffensiveReboundPct:  f(29),
		FreeThrowRate:        f(32),
		Pace:                 f(68),
		OffensiveEfficiency:  f(off),
		DefensiveEfficiency:  f(def),
	}
}

func hgame(id string, day int, home, away string, hs, as int) models.HistoricalGame {
	return models.HistoricalGame{
		GameResult: models.GameResult{
			GameID:      id,
			Date:        time.Date(2024, 1, day, 19, 0, 0, 0, time.UTC),
			HomeTeam:    home,
			AwayTeam:    away,
			HomeScore:   hs,
			AwayScore:   as,
			HomeTeamKey: home,
			AwayTeamKey: away,
		},
		Sport:  "basketball_ncaab",
		Season: 2024,
	}
}

func snapshots(teams ...models.TeamStats) map[models.SnapshotKey]models.TeamStats {
	out := make(map[models.SnapshotKey]models.TeamStats, len(teams))
	for _, t := range teams {
		out[models.SnapshotKey{Season: 2024, TeamKey: t.TeamKey}] = t
	}
	return out
}

func newTestOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Workers = 4
	opt, err := NewOptimizer(cfg, nil, nil)
	require.NoError(t, err)
	return opt
}

func season() Dataset {
	teams := []models.TeamStats{
		stats("duke", "Duke", 118, 94),
		stats("unc", "North Carolina", 112, 98),
		stats("wake", "Wake Forest", 104, 103),
		stats("bc", "Boston College", 96, 108),
	}
	games := []models.HistoricalGame{
		hgame("g01", 2, "duke", "bc", 84, 61),
		hgame("g02", 3, "unc", "wake", 77, 72),
		hgame("g03", 5, "wake", "duke", 68, 79),
		hgame("g04", 6, "bc", "unc", 63, 80),
		hgame("g05", 8, "duke", "unc", 75, 70),
		hgame("g06", 9, "wake", "bc", 74, 66),
		hgame("g07", 11, "unc", "duke", 73, 76),
		hgame("g08", 12, "bc", "wake", 65, 71),
		hgame("g09", 14, "duke", "wake", 82, 69),
		hgame("g10", 15, "unc", "bc", 81, 64),
		hgame("g11", 17, "bc", "duke", 60, 83),
		hgame("g12", 18, "wake", "unc", 70, 74),
	}
	return Dataset{Sport: "basketball_ncaab", Games: games, Snapshots: snapshots(teams...)}
}

func TestOptimizeKeepsDefaultsWhenTheyAreExact(t *testing.T) {
	opt := newTestOptimizer(t)
	ds := Dataset{
		Sport:     "basketball_ncaab",
		Games:     []models.HistoricalGame{hgame("only", 10, "duke", "unc", 0, 0)},
		Snapshots: snapshots(stats("duke", "Duke", 115, 95), stats("unc", "North Carolina", 108, 99)),
	}

	cases, skipped := ds.buildCases(0)
	require.Len(t, cases, 1)
	require.Zero(t, skipped)
	pred := opt.evaluator(ds.Sport).predict(cases[0], models.DefaultCoefficients())
	ds.Games[0].HomeScore = pred.PredictedScore.Home
	ds.Games[0].AwayScore = pred.PredictedScore.Away

	result, err := opt.Optimize(context.Background(), ds, 1)
	require.NoError(t, err)

	assert.Equal(t, models.DefaultCoefficients(), result.Coefficients)
	assert.False(t, result.Improved)
	assert.Zero(t, result.Best.MAE)
	assert.Equal(t, 1, result.Best.Games)
	assert.Equal(t, 101, result.Evaluated)
}

func TestOptimizeEmptyDatasetReturnsDefaults(t *testing.T) {
	opt := newTestOptimizer(t)

	result, err := opt.Optimize(context.Background(), Dataset{Sport: "basketball_ncaab"}, 10)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCoefficients(), result.Coefficients)
	assert.Zero(t, result.Evaluated)
}

func TestOptimizeNeverWorseThanDefaults(t *testing.T) {
	opt := newTestOptimizer(t)
	ds := season()

	result, err := opt.Optimize(context.Background(), ds, 0)
	require.NoError(t, err)

	assert.LessOrEqual(t, result.Best.MAE, result.Baseline.MAE)
	assert.NoError(t, result.Coefficients.Validate())
	if result.Improved {
		assert.NotEqual(t, models.DefaultCoefficientsVersion, result.Coefficients.Version)
	}

	again, err := opt.Optimize(context.Background(), ds, 0)
	require.NoError(t, err)
	assert.Equal(t, result.Coefficients, again.Coefficients)
	assert.Equal(t, result.Best, again.Best)
}

func TestOptimizeStaysOutOfLivePredictionMetrics(t *testing.T) {
	counted := func() float64 {
		return testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("basketball_ncaab", models.PathFourFactors)) +
			testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("basketball_ncaab", models.PathFallback))
	}
	before := counted()

	result, err := newTestOptimizer(t).Optimize(context.Background(), season(), 0)
	require.NoError(t, err)
	require.Positive(t, result.Evaluated)

	assert.Equal(t, before, counted())
}

func TestOptimizeHonorsCancellation(t *testing.T) {
	opt := newTestOptimizer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := opt.Optimize(ctx, season(), 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateSkipsGamesWithoutSnapshots(t *testing.T) {
	opt := newTestOptimizer(t)
	ds := season()
	ds.Games = append(ds.Games, hgame("g13", 20, "duke", "unknown", 90, 50))

	m, err := opt.Validate(context.Background(), ds, models.CalibrationCoefficients{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 12, m.Games)
	assert.Equal(t, 1, m.Skipped)
	assert.Greater(t, m.MAE, 0.0)
	assert.InDelta(t, 0.5, m.WinnerAccuracy, 0.5)
}

func TestValidateEmptyDataset(t *testing.T) {
	opt := newTestOptimizer(t)
	_, err := opt.Validate(context.Background(), Dataset{}, models.DefaultCoefficients(), 10)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestCompare(t *testing.T) {
	opt := newTestOptimizer(t)
	ds := season()

	same, err := opt.Compare(context.Background(), ds, models.DefaultCoefficients(), models.DefaultCoefficients(), 0)
	require.NoError(t, err)
	assert.Zero(t, same.MAEDelta)
	assert.Zero(t, same.WinnerAccuracyDelta)

	alt := models.DefaultCoefficients().WithRecentFormWeight(0.8)
	alt.DefensiveAdjustmentBase = 1.5
	alt.Version = "alt"
	cmp, err := opt.Compare(context.Background(), ds, models.DefaultCoefficients(), alt, 0)
	require.NoError(t, err)
	assert.Equal(t, "alt", cmp.VersionB)
	assert.InDelta(t, cmp.B.MAE-cmp.A.MAE, cmp.MAEDelta, 1e-12)
	assert.Contains(t, GenerateComparisonReport(cmp), "MAE Delta")

	_, err = opt.Compare(context.Background(), Dataset{}, alt, alt, 0)
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestSampleGamesStride(t *testing.T) {
	games := season().sortedGames()

	sampled := sampleGames(games, 4)
	require.Len(t, sampled, 4)
	assert.Equal(t, "g01", sampled[0].GameID)
	assert.Equal(t, "g04", sampled[1].GameID)
	assert.Equal(t, "g07", sampled[2].GameID)
	assert.Equal(t, "g10", sampled[3].GameID)

	assert.Len(t, sampleGames(games, 0), len(games))
	assert.Len(t, sampleGames(games, 100), len(games))
}

func TestRecentGamesStrictlyBefore(t *testing.T) {
	games := season().sortedGames()
	target := games[8] // g09, Jan 14

	recent := recentGames(games, target, teammatch.Identity{Name: "duke", Key: "duke"})
	require.Len(t, recent, 4)
	assert.Equal(t, "g07", recent[0].GameID)
	assert.Equal(t, "g01", recent[3].GameID)
	for _, g := range recent {
		assert.True(t, g.Date.Before(target.Date))
	}
}

func TestGridPoints(t *testing.T) {
	points := DefaultGrid().points(models.DefaultCoefficients())
	require.Len(t, points, 100)

	first := points[0]
	assert.Equal(t, 0.4, first.RecentFormWeight)
	assert.InDelta(t, 0.6, first.SeasonAvgWeight, 1e-9)
	assert.Equal(t, 0.2, first.SOSAdjustmentFactor)
	assert.Equal(t, 0.5, first.DefensiveAdjustmentBase)

	last := points[len(points)-1]
	assert.Equal(t, 0.8, last.RecentFormWeight)
	assert.Equal(t, 0.8, last.SOSAdjustmentFactor)
	assert.Equal(t, 1.5, last.DefensiveAdjustmentBase)

	for _, p := range points {
		assert.NoError(t, p.Validate())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "zero step", mutate: func(c *Config) { c.Grid.SOSAdjustmentFactor.Step = 0 }, wantErr: true},
		{name: "inverted range", mutate: func(c *Config) { c.Grid.DefensiveAdjustmentBase.Min = 2 }, wantErr: true},
		{name: "weight above one", mutate: func(c *Config) { c.Grid.RecentFormWeight.Max = 1.2 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConsoleReport(t *testing.T) {
	report := GenerateConsoleReport(Result{Sport: "basketball_nba", Coefficients: models.DefaultCoefficients()})
	assert.Contains(t, report, "Coefficient Optimization Report")
	assert.Contains(t, report, "Defaults retained")
	assert.Contains(t, report, models.DefaultCoefficientsVersion)
}
