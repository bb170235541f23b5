package analytics

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

type mapLookup map[string]models.TeamRating

func (m mapLookup) Lookup(teamKey string) (models.TeamRating, bool) {
	r, ok := m[strings.ToLower(teamKey)]
	return r, ok
}

var duke = teammatch.Identity{Name: "Duke"}

func repeatGames(n, dukeScore, oppScore int) []models.GameResult {
	games := make([]models.GameResult, n)
	for i := range games {
		games[i] = game(fmt.Sprintf("Opponent %d", i), dukeScore, oppScore, i%2 == 0)
	}
	return games
}

func scheduleInput(games []models.GameResult, ratings RatingLookup) ScheduleInput {
	return ScheduleInput{
		Team:          duke,
		RecentGames:   games,
		Offense:       110,
		Defense:       98,
		SeasonOffense: 108,
		SeasonDefense: 99,
		Pace:          68,
		Sport:         sport.Lookup(sport.NCAAB),
		Factor:        0.4,
		Ratings:       ratings,
	}
}

func TestScheduleNoOpWithFewerThanFiveGames(t *testing.T) {
	for n := 0; n < 5; n++ {
		got := AdjustForSchedule(scheduleInput(repeatGames(n, 75, 70), nil))
		assert.False(t, got.Applied)
		assert.Equal(t, 0.0, got.StrengthOfSchedule)
		assert.Equal(t, 108.0, got.Offense)
		assert.Equal(t, 99.0, got.Defense)
	}
}

func TestScheduleUsesCachedRatings(t *testing.T) {
	lookup := mapLookup{}
	for i := 0; i < 6; i++ {
		lookup[fmt.Sprintf("opponent %d", i)] = models.TeamRating{OffensiveEfficiency: 110, DefensiveEfficiency: 100}
	}
	in := scheduleInput(repeatGames(6, 75, 70), lookup)
	got := AdjustForSchedule(in)

	require.True(t, got.Applied)
	league := in.Sport.LeagueEfficiency()
	assert.Equal(t, 6, got.CachedHits)
	assert.InDelta(t, ((110-league)+(league-100))/2, got.StrengthOfSchedule, 1e-9)
	assert.InDelta(t, 110+(league-100)*0.4, got.Offense, 1e-9)
	assert.InDelta(t, 98-(110-league)*0.4, got.Defense, 1e-9)
}

func TestScheduleFallsBackToEstimatesWithFewCacheHits(t *testing.T) {
	lookup := mapLookup{
		"opponent 0": {OffensiveEfficiency: 125, DefensiveEfficiency: 80},
		"opponent 1": {OffensiveEfficiency: 125, DefensiveEfficiency: 80},
	}
	in := scheduleInput(repeatGames(6, 70, 68), lookup)
	got := AdjustForSchedule(in)

	require.True(t, got.Applied)
	assert.Equal(t, 0, got.CachedHits)

	league := in.Sport.LeagueEfficiency()
	oppOff := 68.0 / 68 * 100
	oppDef := 70.0 / 68 * 100
	assert.InDelta(t, ((oppOff-league)+(league-oppDef))/2, got.StrengthOfSchedule, 1e-9)
	assert.Equal(t, 6, got.Samples)
}

func TestScheduleDiscardsImplausibleEstimates(t *testing.T) {
	got := AdjustForSchedule(scheduleInput(repeatGames(8, 150, 20), nil))
	assert.False(t, got.Applied)
	assert.Equal(t, 108.0, got.Offense)
}

func TestScheduleClampsAdjustedEfficiency(t *testing.T) {
	lookup := mapLookup{}
	for i := 0; i < 6; i++ {
		lookup[fmt.Sprintf("opponent %d", i)] = models.TeamRating{OffensiveEfficiency: 130, DefensiveEfficiency: 70}
	}
	in := scheduleInput(repeatGames(6, 75, 70), lookup)
	in.Offense = 129
	in.Factor = 2
	got := AdjustForSchedule(in)
	assert.Equal(t, 130.0, got.Offense)
	assert.GreaterOrEqual(t, got.Defense, 70.0)
}

func TestRecencyWeight(t *testing.T) {
	assert.Equal(t, 1.0, recencyWeight(0, 1))
	assert.Equal(t, 1.0, recencyWeight(0, 20))
	assert.InDelta(t, 0.5, recencyWeight(19, 20), 1e-12)
	assert.InDelta(t, 0.75, recencyWeight(2, 5), 1e-12)
}

func TestClassifyOpponent(t *testing.T) {
	assert.Equal(t, TierElite, ClassifyOpponent(105))
	assert.Equal(t, TierAverage, ClassifyOpponent(104.9))
	assert.Equal(t, TierAverage, ClassifyOpponent(95))
	assert.Equal(t, TierWeak, ClassifyOpponent(94.9))
}

func TestOpponentTierWeighting(t *testing.T) {
	games := []models.GameResult{
		game("Elite U", 80, 75, true),  // 110.3 elite
		game("Middle U", 70, 68, true), // 100 average
		game("Weak U", 90, 60, false),  // 88.2 weak
	}
	got := AdjustForOpponentTier(TierInput{Team: duke, RecentGames: games, SeasonOffense: 100, SeasonDefense: 100, Pace: 68})
	require.True(t, got.Applied)

	per := func(p float64) float64 { return p / 68 * 100 }
	wantOff := (1.2*per(80) + 1.0*per(70) + 0.8*per(90)) / 3.0
	wantDef := (1.2*per(75) + 1.0*per(68) + 0.8*per(60)) / 3.0
	assert.InDelta(t, wantOff, got.Offense, 1e-9)
	assert.InDelta(t, wantDef, got.Defense, 1e-9)
	assert.Equal(t, map[string]int{TierElite: 1, TierAverage: 1, TierWeak: 1}, got.Games)
}

func TestOpponentTierCapsSamples(t *testing.T) {
	got := AdjustForOpponentTier(TierInput{Team: duke, RecentGames: repeatGames(15, 80, 75), SeasonOffense: 100, SeasonDefense: 100, Pace: 68})
	assert.Equal(t, 10, got.Games[TierElite])
}

func TestOpponentTierNoSamples(t *testing.T) {
	got := AdjustForOpponentTier(TierInput{Team: duke, SeasonOffense: 104, SeasonDefense: 97, Pace: 68})
	assert.False(t, got.Applied)
	assert.Equal(t, 104.0, got.Offense)
	assert.Equal(t, 97.0, got.Defense)
}

func TestCalculatorUsesInjectedRatings(t *testing.T) {
	lookup := mapLookup{}
	for i := 0; i < 6; i++ {
		lookup[fmt.Sprintf("opponent %d", i)] = models.TeamRating{OffensiveEfficiency: 115, DefensiveEfficiency: 95}
	}
	games := repeatGames(6, 75, 70)

	withCache := NewCalculator(lookup).Compute(Input{Stats: dukeStats(), RecentGames: games})
	without := NewCalculator(nil).Compute(Input{Stats: dukeStats(), RecentGames: games})

	assert.NotEqual(t, withCache.StrengthOfSchedule, without.StrengthOfSchedule)
	assert.Greater(t, withCache.StrengthOfSchedule, 0.0)
}
