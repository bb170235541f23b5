package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchup-engine/internal/models"
)

func ptr(v float64) *float64 { return &v }

func TestMonteCarloDeterministic(t *testing.T) {
	sim := NewMonteCarlo(Config{Iterations: 2000})
	req := models.SimulationRequest{Sport: "basketball_ncaab", ExpectedMargin: 6, ExpectedTotal: 140, SpreadLine: ptr(-5.5), TotalLine: ptr(141.5)}

	first, err := sim.Simulate(req)
	require.NoError(t, err)
	second, err := sim.Simulate(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2000, first.Iterations)
	assert.NotZero(t, first.Seed)
}

func TestMonteCarloDistribution(t *testing.T) {
	sim := NewMonteCarlo(Config{Iterations: 20000, Seed: 42})
	result, err := sim.Simulate(models.SimulationRequest{
		Sport:          "basketball_nba",
		ExpectedMargin: 8,
		ExpectedTotal:  226,
		SpreadLine:     ptr(-8),
		TotalLine:      ptr(226),
	})
	require.NoError(t, err)

	// NBA margin sd 12: P(margin > 0) = Phi(8/12) ~ 74.8%
	assert.InDelta(t, 74.8, result.HomeWinPct, 1.5)
	assert.InDelta(t, 50, result.HomeCoverPct, 1.5)
	assert.InDelta(t, 50, result.OverPct, 1.5)
	assert.InDelta(t, 8, result.MarginP50, 0.5)
	assert.Less(t, result.MarginP10, result.MarginP50)
	assert.Less(t, result.MarginP50, result.MarginP90)
	assert.Less(t, result.TotalP10, result.TotalP90)
	assert.Equal(t, int64(42), result.Seed)
}

func TestMonteCarloWithoutMarket(t *testing.T) {
	sim := NewMonteCarlo(Config{Iterations: 500})
	result, err := sim.Simulate(models.SimulationRequest{ExpectedMargin: -3, ExpectedTotal: 138})
	require.NoError(t, err)

	assert.Zero(t, result.HomeCoverPct)
	assert.Zero(t, result.OverPct)
	assert.Less(t, result.HomeWinPct, 50.0)
}

func TestMonteCarloRejectsNonFinite(t *testing.T) {
	sim := NewMonteCarlo(Config{})
	_, err := sim.Simulate(models.SimulationRequest{ExpectedMargin: math.NaN(), ExpectedTotal: 140})
	assert.Error(t, err)
}

func TestPercentile(t *testing.T) {
	values := []float64{5, 1, 4, 2, 3}
	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 3.0, percentile(values, 0.5))
	assert.Equal(t, 5.0, percentile(values, 1))
	assert.Equal(t, 0.0, percentile(nil, 0.5))
}
