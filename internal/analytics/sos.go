package analytics

import (
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

const (
	minScheduleGames   = 5
	scheduleWindow     = 20
	minCachedOpponents = 3
	oldestGameWeight   = 0.5
)

// RatingLookup is a synchronous, best-effort opponent rating source. It must
// not block on I/O.
type RatingLookup interface {
	Lookup(teamKey string) (models.TeamRating, bool)
}

// ScheduleInput is everything the strength-of-schedule adjuster reads.
type ScheduleInput struct {
	Team        teammatch.Identity
	RecentGames []models.GameResult
	// Offense and Defense are the efficiencies being adjusted.
	Offense float64
	Defense float64
	// SeasonOffense and SeasonDefense are what AdjustForSchedule returns
	// when there is not enough history.
	SeasonOffense float64
	SeasonDefense float64
	Pace          float64
	Sport         sport.Profile
	Factor        float64
	Ratings       RatingLookup
}

// ScheduleAdjustment is the adjuster's output.
type ScheduleAdjustment struct {
	StrengthOfSchedule float64
	Offense            float64
	Defense            float64
	Applied            bool
	Samples            int
	CachedHits         int
}

type opponentSample struct {
	offense float64
	defense float64
	weight  float64
}

// AdjustForSchedule re-rates a team's efficiency by the quality of the
// opponents it actually faced. With fewer than five attributable games it
// returns the season values and a zero strength of schedule.
func AdjustForSchedule(in ScheduleInput) ScheduleAdjustment {
	adj := adjustForSchedule(attributeGames(in.Team, in.RecentGames), in)
	if !adj.Applied {
		return ScheduleAdjustment{Offense: in.SeasonOffense, Defense: in.SeasonDefense}
	}
	return adj
}

// adjustForSchedule passes Offense and Defense through unchanged when it
// cannot rate the schedule, so a recent-form blend computed upstream
// survives the no-op.
func adjustForSchedule(games []teamGame, in ScheduleInput) ScheduleAdjustment {
	noop := ScheduleAdjustment{Offense: in.Offense, Defense: in.Defense}
	if len(games) < minScheduleGames {
		return noop
	}
	window := firstN(games, scheduleWindow)

	samples, hits := cachedOpponents(window, in.Ratings)
	if hits < minCachedOpponents {
		samples = estimatedOpponents(window, in.Pace)
	}
	if len(samples) == 0 {
		return noop
	}

	var offSum, defSum, weightSum float64
	for _, s := range samples {
		offSum += s.offense * s.weight
		defSum += s.defense * s.weight
		weightSum += s.weight
	}
	if weightSum <= 0 {
		return noop
	}
	oppOffense := offSum / weightSum
	oppDefense := defSum / weightSum

	league := in.Sport.LeagueEfficiency()
	offenseComponent := league - oppDefense
	defenseComponent := oppOffense - league

	adj := ScheduleAdjustment{
		StrengthOfSchedule: (defenseComponent + offenseComponent) / 2,
		Offense:            clamp(in.Offense+offenseComponent*in.Factor, minEfficiency, maxEfficiency),
		Defense:            clamp(in.Defense-defenseComponent*in.Factor, minEfficiency, maxEfficiency),
		Applied:            true,
		Samples:            len(samples),
	}
	if hits >= minCachedOpponents {
		adj.CachedHits = hits
	}
	if !isFinite(adj.StrengthOfSchedule) || !isFinite(adj.Offense) || !isFinite(adj.Defense) {
		return noop
	}
	return adj
}

// recencyWeight decays linearly from 1.0 for the latest game to 0.5 for the
// oldest game in the window.
func recencyWeight(i, n int) float64 {
	if n <= 1 {
		return 1
	}
	return 1 - (1-oldestGameWeight)*float64(i)/float64(n-1)
}

func cachedOpponents(window []teamGame, ratings RatingLookup) ([]opponentSample, int) {
	if ratings == nil {
		return nil, 0
	}
	var samples []opponentSample
	for i, g := range window {
		r, ok := ratings.Lookup(g.ratingKey())
		if !ok || !inEfficiencyBand(r.OffensiveEfficiency) || !inEfficiencyBand(r.DefensiveEfficiency) {
			continue
		}
		samples = append(samples, opponentSample{
			offense: r.OffensiveEfficiency,
			defense: r.DefensiveEfficiency,
			weight:  recencyWeight(i, len(window)),
		})
	}
	return samples, len(samples)
}

// estimatedOpponents rates each opponent from the single game played: what
// it scored is its offense, what it conceded is its defense.
func estimatedOpponents(window []teamGame, pace float64) []opponentSample {
	var samples []opponentSample
	for i, g := range window {
		off := perHundred(g.oppScore, pace)
		def := perHundred(g.teamScore, pace)
		if !inEfficiencyBand(off) || !inEfficiencyBand(def) {
			continue
		}
		samples = append(samples, opponentSample{
			offense: off,
			defense: def,
			weight:  recencyWeight(i, len(window)),
		})
	}
	return samples
}
