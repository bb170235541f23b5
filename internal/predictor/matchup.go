package predictor

import (
	"math"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
)

// Four Factors weights (Oliver): shooting, turnovers, rebounding, free throws.
const (
	weightEFG = 0.40
	weightTOV = 0.25
	weightORB = 0.20
	weightFTR = 0.15

	fourFactorsScale = 2.0
	tempoWeight      = 0.15
	momentumWeight   = 0.02

	// Home bonus damping: full bonus while the raw score is above
	// -dampingStart, shrinking linearly to dampingFloor at -dampingEnd.
	dampingStart = 3.0
	dampingEnd   = 9.0
	dampingFloor = 0.4

	overrideThreshold  = 2.0
	overrideEfficiency = 0.7

	fallbackNetWeight      = 0.35
	fallbackCrossWeight    = 0.15
	fallbackMomentumWeight = 0.03
	fallbackShootingWeight = 0.10
)

// side is one team's sanitised inputs.
type side struct {
	name        string
	offense     float64
	defense     float64
	momentum    float64
	consistency float64
	shooting    float64
	pace        float64
	hasPace     bool
	stats       models.TeamStats
}

func (s side) net() float64 {
	return s.offense - s.defense
}

// matchup holds the sanitised view of both teams for one prediction.
type matchup struct {
	home, away side
	profile    sport.Profile
	coeffs     models.CalibrationCoefficients
	league     float64
	paceAvg    float64
	homeBase   float64
}

func newMatchup(in Input, profile sport.Profile, coeffs models.CalibrationCoefficients) matchup {
	league := profile.LeagueEfficiency()
	m := matchup{
		home:    newSide(teamName(in.Home, in.HomeStats), in.Home, in.HomeStats, profile, league),
		away:    newSide(teamName(in.Away, in.AwayStats), in.Away, in.AwayStats, profile, league),
		profile: profile,
		coeffs:  coeffs,
		league:  league,
	}
	m.paceAvg = (m.home.pace + m.away.pace) / 2
	m.homeBase = finiteOr(profile.HomeAdvantage*coeffs.HomeAdvantageScale, profile.HomeAdvantage)
	return m
}

func newSide(name string, a models.TeamAnalytics, s models.TeamStats, profile sport.Profile, league float64) side {
	out := side{
		name:        name,
		offense:     plausible(a.AdjustedOffensiveEfficiency, league),
		defense:     plausible(a.AdjustedDefensiveEfficiency, league),
		momentum:    clamp(finiteOr(a.Momentum, 0), -100, 100),
		consistency: clamp(finiteOr(a.Consistency, 50), 0, 100),
		shooting:    finiteOr(a.ShootingEfficiency, 100),
		pace:        profile.LeaguePace,
		stats:       s,
	}
	if out.shooting == 0 {
		out.shooting = 100
	}
	if s.Pace != nil && isFinite(*s.Pace) && *s.Pace > 0 {
		out.pace = *s.Pace
		out.hasPace = true
	}
	return out
}

// plausible replaces missing or non-finite efficiencies with the league mean.
func plausible(v, league float64) float64 {
	if !isFinite(v) || v <= 0 {
		return league
	}
	return v
}

func (m matchup) hasFourFactors() bool {
	return m.home.stats.HasFourFactors() && m.away.stats.HasFourFactors()
}

// crossEfficiency pits each offense against the points the opposing
// defense allows. Defensive efficiency is points conceded, so lower is better.
func (m matchup) crossEfficiency() float64 {
	return (m.home.offense + m.away.defense) - (m.away.offense + m.home.defense)
}

// efficiencyScore is the schedule-aware cross-check computed on every path.
func (m matchup) efficiencyScore() float64 {
	return (m.home.net()-m.away.net())*m.paceAvg/100/2 + m.homeBase
}

// factorDeltas are home-minus-away percentage point gaps. Turnovers are
// reversed so a positive value always favors the home side.
type factorDeltas struct {
	efg, tov, orb, ftr float64
}

func (m matchup) factorDeltas() factorDeltas {
	h, a := m.home.stats, m.away.stats
	pct := func(p *float64) float64 {
		return models.NormalizePct(finiteOr(models.ValueOr(p, 0), 0))
	}
	return factorDeltas{
		efg: pct(h.EffectiveFGPct) - pct(a.EffectiveFGPct),
		tov: pct(a.TurnoverPct) - pct(h.TurnoverPct),
		orb: pct(h.OffensiveReboundPct) - pct(a.OffensiveReboundPct),
		ftr: pct(h.FreeThrowRate) - pct(a.FreeThrowRate),
	}
}

func (m matchup) score() models.ModelPath {
	if m.hasFourFactors() {
		return m.fourFactors()
	}
	return m.fallback()
}

func (m matchup) fourFactors() models.FourFactorsPath {
	d := m.factorDeltas()
	factor := fourFactorsScale * (weightEFG*d.efg + weightTOV*d.tov + weightORB*d.orb + weightFTR*d.ftr)
	tempo := tempoWeight * m.crossEfficiency() * m.paceAvg / 100
	raw := finiteOr(factor+tempo, 0)

	damping := homeDamping(raw)
	path := models.FourFactorsPath{
		FactorScore:        factor,
		TempoAdjustment:    tempo,
		HomeDampingFactor:  damping,
		HomeBonus:          m.homeBase * damping,
		MomentumAdjustment: momentumWeight * (m.home.momentum - m.away.momentum),
		EfficiencyScore:    finiteOr(m.efficiencyScore(), m.homeBase),
	}
	ff := raw + path.HomeBonus + path.MomentumAdjustment

	path.UnblendedScore = ff
	path.FinalScore = ff
	if disagree(ff, path.EfficiencyScore) && math.Abs(path.EfficiencyScore) >= overrideThreshold {
		path.Override = true
		path.FinalScore = overrideEfficiency*path.EfficiencyScore + (1-overrideEfficiency)*ff
	}
	path.FinalScore = finiteOr(path.FinalScore, 0)
	return path
}

// homeDamping shrinks the home bonus when the raw score already favors the
// away side by more than three points.
func homeDamping(raw float64) float64 {
	if raw >= -dampingStart {
		return 1
	}
	if raw <= -dampingEnd {
		return dampingFloor
	}
	return 1 - (1-dampingFloor)*(-dampingStart-raw)/(dampingEnd-dampingStart)
}

func disagree(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

func (m matchup) fallback() models.FallbackPath {
	path := models.FallbackPath{
		NetRatingDiff:   m.home.net() - m.away.net(),
		CrossTerm:       m.crossEfficiency(),
		MomentumDelta:   m.home.momentum - m.away.momentum,
		ShootingDelta:   m.home.shooting - m.away.shooting,
		HomeBonus:       m.homeBase,
		EfficiencyScore: finiteOr(m.efficiencyScore(), m.homeBase),
	}
	score := fallbackNetWeight*path.NetRatingDiff +
		fallbackCrossWeight*path.CrossTerm +
		fallbackMomentumWeight*path.MomentumDelta +
		fallbackShootingWeight*path.ShootingDelta +
		path.HomeBonus
	path.FinalScore = finiteOr(score, m.homeBase)
	return path
}

func (m matchup) dataQuality() float64 {
	if m.hasFourFactors() {
		return fourFactorsQuality
	}
	return fallbackQuality
}

// confidence averages data quality, team consistency and certainty.
func (m matchup) confidence(p float64) float64 {
	consistency := (m.home.consistency + m.away.consistency) / 2
	certainty := 200 * math.Abs(p-0.5)
	c := (m.dataQuality() + consistency + certainty) / 3
	return round1(clamp(finiteOr(c, minConfidence), minConfidence, maxConfidence))
}
