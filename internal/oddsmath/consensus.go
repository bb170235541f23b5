package oddsmath

import (
	"github.com/shopspring/decimal"
)

var half = decimal.NewFromFloat(0.5)

// ConsensusLine is the mean of the quoted points, rounded to two decimals.
// ok is false when no quotes are given.
func ConsensusLine(points []float64) (line float64, ok bool) {
	if len(points) == 0 {
		return 0, false
	}
	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(decimal.NewFromFloat(p))
	}
	mean := sum.Div(decimal.NewFromInt(int64(len(points)))).Round(2)
	return mean.InexactFloat64(), true
}

// ConsensusPrice averages American prices in implied-probability space and
// converts the mean back to an American price. Invalid prices are skipped.
func ConsensusPrice(prices []int) (price int, ok bool) {
	sum := decimal.Zero
	n := 0
	for _, p := range prices {
		prob, err := AmericanToImpliedProbability(p)
		if err != nil {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(prob))
		n++
	}
	if n == 0 {
		return 0, false
	}
	mean := sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64()
	american, err := ProbabilityToAmerican(mean)
	if err != nil {
		return 0, false
	}
	return american, true
}

// RoundToHalfPoint rounds v to the nearest 0.5, the granularity books quote
// spreads and totals in.
func RoundToHalfPoint(v float64) float64 {
	d := decimal.NewFromFloat(v)
	return d.Div(half).Round(0).Mul(half).InexactFloat64()
}
