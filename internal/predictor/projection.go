package predictor

import (
	"math"

	"github.com/yourusername/matchup-engine/internal/calibration"
)

// Defensive percentile tiers
const (
	DefenseElite        = "elite"
	DefenseGood         = "good"
	DefenseAverage      = "average"
	DefenseBelowAverage = "below_average"
	DefensePoor         = "poor"
)

// Spread of defensive ratings around the league mean, in points per 100.
const defensiveRatingSpread = 5.0

type projection struct {
	home, away  int
	total       float64
	pace        float64
	spread      float64
	rawMargin   float64
	homeDefTier string
	awayDefTier string
}

// project builds the scoreboard. The expected total comes from tempo-free
// efficiency; the margin is then rebuilt from the win probability so the
// projected winner always matches the probability favorite.
func (m matchup) project(p float64) projection {
	pace := m.expectedPace()
	homeTier := DefensiveTier(DefensivePercentile(m.home.defense, m.league))
	awayTier := DefensiveTier(DefensivePercentile(m.away.defense, m.league))

	homePoints := m.home.offense / 100 * pace * m.defensiveMultiplier(awayTier)
	awayPoints := m.away.offense / 100 * pace * m.defensiveMultiplier(homeTier)
	fallbackTotal := 2 * m.profile.LeaguePPG
	total := finiteOr(homePoints+awayPoints, fallbackTotal)
	if total <= 0 {
		total = fallbackTotal
	}

	spread := clamp(spreadPerLogit*calibration.Logit(p), -maxSpread, maxSpread)
	home := int(math.Round((total + spread) / 2))
	away := int(math.Round((total - spread) / 2))
	if home == away {
		if p >= 0.5 {
			home++
		} else {
			away++
		}
	}

	return projection{
		home:        home,
		away:        away,
		total:       total,
		pace:        pace,
		spread:      spread,
		rawMargin:   finiteOr(homePoints-awayPoints, 0),
		homeDefTier: homeTier,
		awayDefTier: awayTier,
	}
}

// expectedPace averages the reported team paces, falling back to the sport's
// expected pace when neither team reports one.
func (m matchup) expectedPace() float64 {
	switch {
	case m.home.hasPace && m.away.hasPace:
		return (m.home.pace + m.away.pace) / 2
	case m.home.hasPace:
		return m.home.pace
	case m.away.hasPace:
		return m.away.pace
	}
	return m.profile.ExpectedPace
}

// DefensivePercentile places a defensive rating (points allowed per 100, lower
// is better) on a 0-100 scale around the league mean.
func DefensivePercentile(rating, league float64) float64 {
	z := (league - rating) / defensiveRatingSpread
	return 100 * 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// DefensiveTier buckets a percentile.
func DefensiveTier(percentile float64) string {
	switch {
	case percentile >= 80:
		return DefenseElite
	case percentile >= 60:
		return DefenseGood
	case percentile >= 40:
		return DefenseAverage
	case percentile >= 20:
		return DefenseBelowAverage
	default:
		return DefensePoor
	}
}

// defensiveMultiplier scales points scored against a defense of the given
// tier. DefensiveAdjustmentBase interpolates between no adjustment (0) and
// the full configured multiplier (1).
func (m matchup) defensiveMultiplier(tier string) float64 {
	pm := m.coeffs.PercentileMultipliers
	var mult float64
	switch tier {
	case DefenseElite:
		mult = pm.Elite
	case DefenseGood:
		mult = pm.Good
	case DefenseAverage:
		mult = pm.Average
	case DefenseBelowAverage:
		mult = pm.BelowAverage
	default:
		mult = pm.Poor
	}
	if !isFinite(mult) || mult <= 0 {
		mult = 1
	}
	eff := 1 + (mult-1)*m.coeffs.DefensiveAdjustmentBase
	if !isFinite(eff) || eff <= 0 {
		return 1
	}
	return eff
}

func tierLabel(tier string) string {
	switch tier {
	case DefenseBelowAverage:
		return "below-average"
	default:
		return tier
	}
}
