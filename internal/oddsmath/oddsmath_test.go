package oddsmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmericanToImpliedProbability(t *testing.T) {
	tests := []struct {
		american int
		want     float64
	}{
		{-150, 0.60},
		{-400, 0.80},
		{150, 0.40},
		{100, 0.50},
		{-110, 110.0 / 210.0},
	}
	for _, tt := range tests {
		got, err := AmericanToImpliedProbability(tt.american)
		require.NoError(t, err)
		assert.InDelta(t, tt.want, got, 1e-9, "american %d", tt.american)
	}
}

func TestAmericanToDecimalRejectsInvalid(t *testing.T) {
	for _, a := range []int{0, 50, -99} {
		_, err := AmericanToDecimal(a)
		assert.ErrorIs(t, err, ErrInvalidOdds)
	}
}

func TestProbabilityRoundTrip(t *testing.T) {
	american, err := ProbabilityToAmerican(0.6)
	require.NoError(t, err)
	assert.Equal(t, -150, american)

	american, err = ProbabilityToAmerican(0.4)
	require.NoError(t, err)
	assert.Equal(t, 150, american)

	_, err = ProbabilityToAmerican(1)
	assert.Error(t, err)
}

func TestNoVigProbabilities(t *testing.T) {
	h, a, err := NoVigProbabilities(-110, -110)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, h, 1e-9)
	assert.InDelta(t, 0.5, a, 1e-9)

	h, a, err = NoVigProbabilities(-200, 170)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, h+a, 1e-9)
	assert.Greater(t, h, a)
}

func TestConsensusLine(t *testing.T) {
	line, ok := ConsensusLine([]float64{-3, -3.5, -2.5})
	assert.True(t, ok)
	assert.Equal(t, -3.0, line)

	_, ok = ConsensusLine(nil)
	assert.False(t, ok)
}

func TestConsensusPrice(t *testing.T) {
	price, ok := ConsensusPrice([]int{-150, -150, 0})
	assert.True(t, ok)
	assert.Equal(t, -150, price)

	_, ok = ConsensusPrice([]int{0})
	assert.False(t, ok)
}

func TestRoundToHalfPoint(t *testing.T) {
	assert.Equal(t, 3.5, RoundToHalfPoint(3.4))
	assert.Equal(t, 3.0, RoundToHalfPoint(3.2))
	assert.Equal(t, -7.5, RoundToHalfPoint(-7.6))
	assert.Equal(t, 0.0, RoundToHalfPoint(0.1))
}
