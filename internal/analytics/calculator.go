// Package analytics derives per-team form and efficiency metrics from season
// stats and recent game history.
package analytics

import (
	"math"
	"strings"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

const (
	formGames          = 5
	consistencyGames   = 10
	minConsistency     = 3
	neutralConsistency = 50.0
	minRecentGames     = 3
	momentumCap        = 100.0
	marginCap          = 20.0

	// League-average shooting used to normalise the composite.
	leagueFGPct    = 45.0
	leagueThreePct = 34.0
	leagueFTPct    = 72.0
)

// Input is one team's data for a single calculation.
type Input struct {
	Stats       models.TeamStats
	RecentGames []models.GameResult
	IsHome      bool
	// Sport selects league constants; empty means NCAAB.
	Sport string
	// Coefficients default when zero.
	Coefficients models.CalibrationCoefficients
}

// Calculator computes TeamAnalytics. It is safe for concurrent use; the only
// shared state is the read-only rating lookup.
type Calculator struct {
	ratings RatingLookup
}

// NewCalculator creates a calculator. ratings may be nil, in which case the
// schedule adjuster always estimates opponents from game scores.
func NewCalculator(ratings RatingLookup) *Calculator {
	return &Calculator{ratings: ratings}
}

// Compute derives the analytics snapshot for one team.
func (c *Calculator) Compute(in Input) models.TeamAnalytics {
	profile := sport.Lookup(in.Sport)
	coeffs := in.Coefficients.OrDefault()
	team := teammatch.Identity{Name: in.Stats.TeamName, Key: in.Stats.TeamKey, Abbreviation: in.Stats.Abbreviation}
	games := attributeGames(team, in.RecentGames)

	pace := teamPace(in.Stats, profile)
	seasonOff, seasonDef := seasonEfficiency(in.Stats, profile, pace)

	out := models.TeamAnalytics{
		TeamName:            in.Stats.TeamName,
		IsHome:              in.IsHome,
		Momentum:            momentum(games),
		Streak:              streak(games),
		RecentForm:          recentForm(games),
		Last5Record:         lastFive(games),
		Consistency:         consistency(games),
		ShootingEfficiency:  shootingComposite(in.Stats),
		GamesAnalyzed:       len(games),
		OffensiveEfficiency: seasonOff,
		DefensiveEfficiency: seasonDef,
	}

	weightedOff, weightedDef := seasonOff, seasonDef
	if recentOff, recentDef, ok := recentEfficiency(games, pace); ok {
		weightedOff = coeffs.RecentFormWeight*recentOff + coeffs.SeasonAvgWeight*seasonOff
		weightedDef = coeffs.RecentFormWeight*recentDef + coeffs.SeasonAvgWeight*seasonDef
		out.RecentFormApplied = true
	}
	out.WeightedOffensiveEfficiency = weightedOff
	out.WeightedDefensiveEfficiency = weightedDef

	var ratings RatingLookup
	if c != nil {
		ratings = c.ratings
	}
	sos := adjustForSchedule(games, ScheduleInput{
		Offense:       weightedOff,
		Defense:       weightedDef,
		SeasonOffense: seasonOff,
		SeasonDefense: seasonDef,
		Pace:          pace,
		Sport:         profile,
		Factor:        coeffs.SOSAdjustmentFactor,
		Ratings:       ratings,
	})
	out.StrengthOfSchedule = sos.StrengthOfSchedule
	out.SOSAdjustedOffensiveEfficiency = sos.Offense
	out.SOSAdjustedDefensiveEfficiency = sos.Defense

	tier := adjustForOpponentTier(games, TierInput{
		SeasonOffense: seasonOff,
		SeasonDefense: seasonDef,
		Pace:          pace,
	})
	out.TierAdjustedOffensiveEfficiency = tier.Offense
	out.TierAdjustedDefensiveEfficiency = tier.Defense

	out.AdjustedOffensiveEfficiency = finiteOr(coeffs.WeightedEffWeight*sos.Offense+coeffs.TierAdjustedWeight*tier.Offense, seasonOff)
	out.AdjustedDefensiveEfficiency = finiteOr(coeffs.WeightedEffWeight*sos.Defense+coeffs.TierAdjustedWeight*tier.Defense, seasonDef)
	return out
}

// teamPace is the team's reported pace, or the league pace.
func teamPace(stats models.TeamStats, profile sport.Profile) float64 {
	if p, ok := positive(stats.Pace); ok {
		return p
	}
	return profile.LeaguePace
}

// seasonEfficiency prefers reported efficiencies, then points per game over
// pace, then the league average.
func seasonEfficiency(stats models.TeamStats, profile sport.Profile, pace float64) (off, def float64) {
	league := profile.LeagueEfficiency()
	off, def = league, league

	if v, ok := positive(stats.OffensiveEfficiency); ok {
		off = v
	} else if ppg, ok := positive(stats.PointsPerGame); ok && pace > 0 {
		off = ppg / pace * 100
	}
	if v, ok := positive(stats.DefensiveEfficiency); ok {
		def = v
	} else if papg, ok := positive(stats.PointsAllowedPerGame); ok && pace > 0 {
		def = papg / pace * 100
	}
	return off, def
}

// momentum weights the last five results 1.0, 0.8, ... 0.2. A win is worth
// 20 to 40 points depending on the margin, capped at 20.
func momentum(games []teamGame) float64 {
	var score float64
	for i, g := range firstN(games, formGames) {
		weight := float64(formGames-i) / formGames
		margin := math.Min(math.Abs(float64(g.margin())), marginCap)
		contribution := 20 + 20*margin/marginCap
		if !g.won {
			contribution = -contribution
		}
		score += weight * contribution
	}
	return clamp(score, -momentumCap, momentumCap)
}

// streak is positive for a winning run and negative for a losing run.
func streak(games []teamGame) int {
	if len(games) == 0 {
		return 0
	}
	run := 0
	for _, g := range games {
		if g.won != games[0].won {
			break
		}
		run++
	}
	if !games[0].won {
		return -run
	}
	return run
}

func recentForm(games []teamGame) string {
	results := make([]string, 0, formGames)
	for _, g := range firstN(games, formGames) {
		if g.won {
			results = append(results, "W")
		} else {
			results = append(results, "L")
		}
	}
	return strings.Join(results, "-")
}

func lastFive(games []teamGame) models.Record {
	var rec models.Record
	for _, g := range firstN(games, formGames) {
		if g.won {
			rec.Wins++
		} else {
			rec.Losses++
		}
	}
	return rec
}

// consistency falls by five points per point of standard deviation in the
// absolute margin of the last ten games.
func consistency(games []teamGame) float64 {
	window := firstN(games, consistencyGames)
	if len(window) < minConsistency {
		return neutralConsistency
	}
	margins := make([]float64, len(window))
	for i, g := range window {
		margins[i] = math.Abs(float64(g.margin()))
	}
	return clamp(100-5*stddev(margins), 0, 100)
}

// shootingComposite is 100 for a league-average shooting team.
func shootingComposite(stats models.TeamStats) float64 {
	ratio := func(p *float64, league float64) float64 {
		v, ok := positive(p)
		if !ok {
			return 1
		}
		return models.NormalizePct(v) / league
	}
	composite := 0.5*ratio(stats.FieldGoalPct, leagueFGPct) +
		0.3*ratio(stats.ThreePointPct, leagueThreePct) +
		0.2*ratio(stats.FreeThrowPct, leagueFTPct)
	return finiteOr(composite*100, 100)
}

// recentEfficiency converts the last five games into per-100 efficiencies.
// ok is false with fewer than three games or an implausible estimate.
func recentEfficiency(games []teamGame, pace float64) (off, def float64, ok bool) {
	window := firstN(games, formGames)
	if len(window) < minRecentGames || pace <= 0 {
		return 0, 0, false
	}
	var scored, allowed float64
	for _, g := range window {
		scored += float64(g.teamScore)
		allowed += float64(g.oppScore)
	}
	n := float64(len(window))
	off = scored / n / pace * 100
	def = allowed / n / pace * 100
	if !inEfficiencyBand(off) || !inEfficiencyBand(def) {
		return 0, 0, false
	}
	return off, def, true
}
