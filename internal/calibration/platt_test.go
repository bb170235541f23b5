package calibration

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalibrateIdentity(t *testing.T) {
	for _, p := range []float64{0.02, 0.1, 0.25, 0.5, 0.6, 0.77, 0.98} {
		assert.InDelta(t, p, Calibrate(p, Identity()), 1e-12, "p=%v", p)
	}
	assert.Equal(t, MinProbability, Calibrate(0.001, Identity()))
	assert.Equal(t, MaxProbability, Calibrate(0.999, Identity()))
}

func TestCalibrateShrinksOverconfidence(t *testing.T) {
	params := Params{A: 0.8, B: 0}
	got := Calibrate(0.8, params)
	assert.Less(t, got, 0.8)
	assert.Greater(t, got, 0.5)

	assert.InDelta(t, 0.5, Calibrate(0.5, params), 1e-12)
}

func TestCalibrateShiftsWithIntercept(t *testing.T) {
	assert.Greater(t, Calibrate(0.5, Params{A: 1, B: 0.3}), 0.5)
}

func TestCalibrateHandlesDegenerateInput(t *testing.T) {
	for _, p := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -3, 7} {
		got := Calibrate(p, Params{A: 1e6, B: -1e6})
		assert.GreaterOrEqual(t, got, MinProbability)
		assert.LessOrEqual(t, got, MaxProbability)
	}
}

func TestStore(t *testing.T) {
	var empty Store
	assert.True(t, empty.Params().IsIdentity())

	s := NewStore(Params{A: 0.9, B: 0.1})
	assert.Equal(t, 0.9, s.Params().A)

	s.Set(Identity())
	assert.True(t, s.Params().IsIdentity())
}

func TestSaveAndLoadParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platt.json")
	require.NoError(t, SaveParams(path, Params{A: 0.85, B: -0.05, Version: "2025-03"}))

	got, err := LoadParams(path)
	require.NoError(t, err)
	assert.Equal(t, 0.85, got.A)
	assert.Equal(t, -0.05, got.B)
	assert.Equal(t, "2025-03", got.Version)

	_, err = LoadParams(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFitRequiresSamples(t *testing.T) {
	_, err := Fit([]Sample{{Probability: 0.6, Won: true}}, FitOptions{})
	assert.ErrorIs(t, err, ErrInsufficientSamples)
}

func TestFitCorrectsOverconfidence(t *testing.T) {
	// The model says 80% but the side wins only 60% of the time.
	var samples []Sample
	for i := 0; i < 100; i++ {
		samples = append(samples, Sample{Probability: 0.8, Won: i%5 < 3})
		samples = append(samples, Sample{Probability: 0.2, Won: i%5 >= 3})
	}

	params, err := Fit(samples, FitOptions{})
	require.NoError(t, err)
	assert.Less(t, params.A, 1.0)
	assert.Less(t, LogLoss(samples, params), LogLoss(samples, Identity()))
	assert.InDelta(t, 0.6, Calibrate(0.8, params), 0.01)
	assert.InDelta(t, 0.4, Calibrate(0.2, params), 0.01)
	assert.Equal(t, len(samples), params.Samples)
}

func TestFitKeepsCalibratedModelNearIdentity(t *testing.T) {
	// Wins match the stated probability, so the fit should barely move.
	var samples []Sample
	for i := 0; i < 100; i++ {
		samples = append(samples, Sample{Probability: 0.7, Won: i%10 < 7})
		samples = append(samples, Sample{Probability: 0.3, Won: i%10 < 3})
	}

	params, err := Fit(samples, FitOptions{MaxEvaluations: 200})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, params.A, 0.01)
	assert.InDelta(t, 0.0, params.B, 0.01)
}
