package analytics

import "math"

// Plausible band for any per-100-possession efficiency estimate.
const (
	minEfficiency = 70.0
	maxEfficiency = 130.0
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	return mean / float64(len(values))
}

// stddev is the population standard deviation.
func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := average(values)
	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteOr returns v, or fallback when v is NaN or infinite.
func finiteOr(v, fallback float64) float64 {
	if isFinite(v) {
		return v
	}
	return fallback
}

// positive returns *p when it is present, finite and above zero.
func positive(p *float64) (float64, bool) {
	if p == nil || !isFinite(*p) || *p <= 0 {
		return 0, false
	}
	return *p, true
}

func inEfficiencyBand(v float64) bool {
	return v >= minEfficiency && v <= maxEfficiency
}

// perHundred converts a game score to points per 100 possessions.
func perHundred(points int, pace float64) float64 {
	if pace <= 0 {
		return 0
	}
	return float64(points) / pace * 100
}
