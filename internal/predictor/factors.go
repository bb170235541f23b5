package predictor

import (
	"fmt"
	"math"

	"github.com/yourusername/matchup-engine/internal/models"
)

const (
	efgFactorGap      = 3.0
	tovFactorGap      = 2.0
	orbFactorGap      = 3.0
	paceBand          = 3.0
	netRatingGap      = 3.0
	momentumGap       = 20.0
	shootingFactorGap = 5.0
)

// keyFactors lists the drivers of a prediction in Four Factors priority order.
func (m matchup) keyFactors(path models.ModelPath) []string {
	var factors []string

	switch p := path.(type) {
	case models.FourFactorsPath:
		d := m.factorDeltas()
		h, a := m.home.stats, m.away.stats
		if math.Abs(d.efg) > efgFactorGap {
			team := m.leader(d.efg)
			factors = append(factors, fmt.Sprintf("%s shooting edge: eFG%% %.1f vs %.1f",
				team, pct(h.EffectiveFGPct), pct(a.EffectiveFGPct)))
		}
		if math.Abs(d.tov) > tovFactorGap {
			team := m.leader(d.tov)
			factors = append(factors, fmt.Sprintf("%s protects the ball better: TOV%% %.1f vs %.1f",
				team, pct(h.TurnoverPct), pct(a.TurnoverPct)))
		}
		if math.Abs(d.orb) > orbFactorGap {
			team := m.leader(d.orb)
			factors = append(factors, fmt.Sprintf("%s controls the offensive glass: ORB%% %.1f vs %.1f",
				team, pct(h.OffensiveReboundPct), pct(a.OffensiveReboundPct)))
		}
		factors = append(factors, m.paceDescription())
		if p.Override {
			factors = append(factors, fmt.Sprintf("Schedule-adjusted efficiency overrides Four Factors (efficiency %+.1f vs factors %+.1f)",
				p.EfficiencyScore, p.UnblendedScore))
		}
		if p.HomeDampingFactor < 1 {
			factors = append(factors, fmt.Sprintf("Home-court edge reduced to %.0f%% against a stronger opponent",
				p.HomeDampingFactor*100))
		}
	case models.FallbackPath:
		if math.Abs(p.NetRatingDiff) > netRatingGap {
			factors = append(factors, fmt.Sprintf("%s net rating edge: %.1f points per 100 possessions",
				m.leader(p.NetRatingDiff), math.Abs(p.NetRatingDiff)))
		}
		if math.Abs(p.MomentumDelta) > momentumGap {
			factors = append(factors, fmt.Sprintf("%s carries stronger momentum (%.0f vs %.0f)",
				m.leader(p.MomentumDelta), m.home.momentum, m.away.momentum))
		}
		if math.Abs(p.ShootingDelta) > shootingFactorGap {
			factors = append(factors, fmt.Sprintf("%s is the more efficient shooting team", m.leader(p.ShootingDelta)))
		}
		factors = append(factors, m.paceDescription())
		factors = append(factors, "Four Factors incomplete: efficiency model used")
	}

	if tier := DefensiveTier(DefensivePercentile(m.home.defense, m.league)); tier == DefenseElite || tier == DefensePoor {
		factors = append(factors, fmt.Sprintf("%s defense rates %s", m.home.name, tierLabel(tier)))
	}
	if tier := DefensiveTier(DefensivePercentile(m.away.defense, m.league)); tier == DefenseElite || tier == DefensePoor {
		factors = append(factors, fmt.Sprintf("%s defense rates %s", m.away.name, tierLabel(tier)))
	}
	return factors
}

func (m matchup) leader(delta float64) string {
	if delta >= 0 {
		return m.home.name
	}
	return m.away.name
}

func (m matchup) paceDescription() string {
	pace := m.expectedPace()
	switch {
	case pace > m.profile.LeaguePace+paceBand:
		return fmt.Sprintf("Up-tempo matchup: %.1f possessions projected", pace)
	case pace < m.profile.LeaguePace-paceBand:
		return fmt.Sprintf("Slow-paced matchup: %.1f possessions projected", pace)
	default:
		return fmt.Sprintf("Average tempo: %.1f possessions projected", pace)
	}
}

func pct(p *float64) float64 {
	return models.NormalizePct(models.ValueOr(p, 0))
}
