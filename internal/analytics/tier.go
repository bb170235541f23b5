package analytics

import (
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

// Opponent tiers
const (
	TierElite   = "elite"
	TierAverage = "average"
	TierWeak    = "weak"
)

const (
	eliteThreshold   = 105.0
	averageThreshold = 95.0
	tierWindow       = 20
	maxTierSamples   = 10
)

// Fixed iteration order keeps the floating-point sums reproducible.
var tierOrder = []string{TierElite, TierAverage, TierWeak}

var tierWeights = map[string]float64{
	TierElite:   1.2,
	TierAverage: 1.0,
	TierWeak:    0.8,
}

// TierInput is everything the opponent-tier adjuster reads.
type TierInput struct {
	Team          teammatch.Identity
	RecentGames   []models.GameResult
	SeasonOffense float64
	SeasonDefense float64
	Pace          float64
}

// TierAdjustment is the adjuster's output.
type TierAdjustment struct {
	Offense float64
	Defense float64
	Applied bool
	Games   map[string]int
}

type tierTotals struct {
	offense float64
	defense float64
	games   int
}

// ClassifyOpponent buckets an opponent efficiency estimate.
func ClassifyOpponent(efficiency float64) string {
	switch {
	case efficiency >= eliteThreshold:
		return TierElite
	case efficiency >= averageThreshold:
		return TierAverage
	default:
		return TierWeak
	}
}

// AdjustForOpponentTier re-rates a team by how it performed against elite,
// average and weak opponents, weighting results against better opponents
// more heavily.
func AdjustForOpponentTier(in TierInput) TierAdjustment {
	return adjustForOpponentTier(attributeGames(in.Team, in.RecentGames), in)
}

func adjustForOpponentTier(games []teamGame, in TierInput) TierAdjustment {
	out := TierAdjustment{Offense: in.SeasonOffense, Defense: in.SeasonDefense, Games: map[string]int{}}

	totals := map[string]*tierTotals{
		TierElite:   {},
		TierAverage: {},
		TierWeak:    {},
	}
	for _, g := range firstN(games, tierWindow) {
		quality := perHundred(g.oppScore, in.Pace)
		if !inEfficiencyBand(quality) {
			continue
		}
		t := totals[ClassifyOpponent(quality)]
		if t.games >= maxTierSamples {
			continue
		}
		t.offense += perHundred(g.teamScore, in.Pace)
		t.defense += quality
		t.games++
	}

	var offSum, defSum, weightSum float64
	for _, tier := range tierOrder {
		t := totals[tier]
		out.Games[tier] = t.games
		if t.games == 0 {
			continue
		}
		w := tierWeights[tier] * float64(t.games)
		offSum += w * t.offense / float64(t.games)
		defSum += w * t.defense / float64(t.games)
		weightSum += w
	}
	if weightSum == 0 {
		return out
	}

	out.Offense = clamp(offSum/weightSum, minEfficiency, maxEfficiency)
	out.Defense = clamp(defSum/weightSum, minEfficiency, maxEfficiency)
	out.Applied = true
	return out
}
