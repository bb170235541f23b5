package backtest

import (
	"context"
	"errors"
	"sort"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

const maxRecentGames = 10

// ErrEmptyDataset is returned when no game in a dataset can be evaluated.
var ErrEmptyDataset = errors.New("no evaluable games in dataset")

// Dataset is a historical window: finished games plus the per-season team
// stats snapshot each side carried into them.
type Dataset struct {
	Sport     string
	Games     []models.HistoricalGame
	Snapshots map[models.SnapshotKey]models.TeamStats
}

// DatasetProvider loads historical datasets.
type DatasetProvider interface {
	LoadDataset(ctx context.Context, sport string, seasons []int) (Dataset, error)
}

// evalCase is one game with everything the pipeline reads, resolved once and
// shared read-only by every trial.
type evalCase struct {
	game       models.HistoricalGame
	homeStats  models.TeamStats
	awayStats  models.TeamStats
	homeRecent []models.GameResult
	awayRecent []models.GameResult
}

// teamKey identifies a side for snapshot lookup, preferring the stable key.
func teamKey(name, key string) string {
	if key != "" {
		return key
	}
	return name
}

func (d Dataset) snapshot(season int, name, key string) (models.TeamStats, bool) {
	stats, ok := d.Snapshots[models.SnapshotKey{Season: season, TeamKey: teamKey(name, key)}]
	if !ok {
		return models.TeamStats{}, false
	}
	if stats.TeamName == "" {
		stats.TeamName = name
	}
	if stats.TeamKey == "" {
		stats.TeamKey = key
	}
	return stats, true
}

// sortedGames returns the games ordered by date, ties broken by id.
func (d Dataset) sortedGames() []models.HistoricalGame {
	games := append([]models.HistoricalGame(nil), d.Games...)
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Date.Equal(games[j].Date) {
			return games[i].GameID < games[j].GameID
		}
		return games[i].Date.Before(games[j].Date)
	})
	return games
}

// sampleGames picks up to n games by a fixed stride over the date-sorted
// list. n <= 0 or n >= len keeps every game.
func sampleGames(games []models.HistoricalGame, n int) []models.HistoricalGame {
	if n <= 0 || n >= len(games) {
		return games
	}
	stride := float64(len(games)) / float64(n)
	sampled := make([]models.HistoricalGame, 0, n)
	for i := 0; i < n; i++ {
		sampled = append(sampled, games[int(float64(i)*stride)])
	}
	return sampled
}

// recentGames returns the team's games strictly before the target game,
// most-recent-first. sorted must be in ascending date order.
func recentGames(sorted []models.HistoricalGame, target models.HistoricalGame, team teammatch.Identity) []models.GameResult {
	recent := make([]models.GameResult, 0, maxRecentGames)
	for i := len(sorted) - 1; i >= 0 && len(recent) < maxRecentGames; i-- {
		g := sorted[i]
		if !g.Date.Before(target.Date) {
			continue
		}
		if teammatch.SideOf(team, g.GameResult) == teammatch.SideNone {
			continue
		}
		recent = append(recent, g.GameResult)
	}
	return recent
}

// buildCases resolves snapshots and recent history for the sampled games.
// Games missing a snapshot for either side are skipped.
func (d Dataset) buildCases(sampleSize int) (cases []evalCase, skipped int) {
	sorted := d.sortedGames()
	for _, g := range sampleGames(sorted, sampleSize) {
		home, okHome := d.snapshot(g.Season, g.HomeTeam, g.HomeTeamKey)
		away, okAway := d.snapshot(g.Season, g.AwayTeam, g.AwayTeamKey)
		if !okHome || !okAway {
			skipped++
			continue
		}
		cases = append(cases, evalCase{
			game:       g,
			homeStats:  home,
			awayStats:  away,
			homeRecent: recentGames(sorted, g, teammatch.Identity{Name: g.HomeTeam, Key: g.HomeTeamKey, Abbreviation: home.Abbreviation}),
			awayRecent: recentGames(sorted, g, teammatch.Identity{Name: g.AwayTeam, Key: g.AwayTeamKey, Abbreviation: away.Abbreviation}),
		})
	}
	return cases, skipped
}
