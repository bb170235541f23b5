// Package oddsmath converts between American odds, decimal odds and implied
// probability, and builds consensus lines across bookmakers.
package oddsmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidOdds is returned for prices that do not describe a bet.
var ErrInvalidOdds = errors.New("invalid odds")

// AmericanToDecimal converts American odds to decimal odds.
// +150 -> 2.50, -150 -> 1.67
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 || (american > -100 && american < 100) {
		return 0, fmt.Errorf("american odds %d: %w", american, ErrInvalidOdds)
	}
	if american > 0 {
		return float64(american)/100 + 1, nil
	}
	return 100/float64(-american) + 1, nil
}

// DecimalToAmerican converts decimal odds to American odds.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1 || math.IsNaN(decimal) || math.IsInf(decimal, 0) {
		return 0, fmt.Errorf("decimal odds %.4f: %w", decimal, ErrInvalidOdds)
	}
	if decimal >= 2 {
		return int(math.Round((decimal - 1) * 100)), nil
	}
	return int(math.Round(-100 / (decimal - 1))), nil
}

// AmericanToImpliedProbability returns the probability (0-1) encoded by an
// American price, vig included.
// -150 -> 0.60, +150 -> 0.40
func AmericanToImpliedProbability(american int) (float64, error) {
	d, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1 / d, nil
}

// ProbabilityToAmerican converts a probability (0-1) to a fair American price.
func ProbabilityToAmerican(p float64) (int, error) {
	if p <= 0 || p >= 1 || math.IsNaN(p) {
		return 0, fmt.Errorf("probability %.4f: %w", p, ErrInvalidOdds)
	}
	return DecimalToAmerican(1 / p)
}

// RemoveVigMultiplicative normalises a two-way market so both sides sum to 1.
func RemoveVigMultiplicative(p1, p2 float64) (fair1, fair2 float64, err error) {
	if p1 <= 0 || p1 >= 1 || p2 <= 0 || p2 >= 1 {
		return 0, 0, fmt.Errorf("probabilities must be between 0 and 1: %w", ErrInvalidOdds)
	}
	total := p1 + p2
	return p1 / total, p2 / total, nil
}

// NoVigProbabilities returns the vig-free probabilities of both sides of a
// moneyline.
func NoVigProbabilities(home, away int) (homeP, awayP float64, err error) {
	h, err := AmericanToImpliedProbability(home)
	if err != nil {
		return 0, 0, err
	}
	a, err := AmericanToImpliedProbability(away)
	if err != nil {
		return 0, 0, err
	}
	return RemoveVigMultiplicative(h, a)
}
