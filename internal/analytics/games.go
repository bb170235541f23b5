package analytics

import (
	"strings"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

// teamGame is a game result seen from one team's side.
type teamGame struct {
	teamScore    int
	oppScore     int
	won          bool
	opponentName string
	opponentKey  string
}

func (g teamGame) margin() int {
	return g.teamScore - g.oppScore
}

// ratingKey is the key used to look the opponent up in the rating cache.
func (g teamGame) ratingKey() string {
	if g.opponentKey != "" {
		return g.opponentKey
	}
	return strings.ToLower(strings.TrimSpace(g.opponentName))
}

// attributeGames keeps the games the matcher can place the team in, in the
// original most-recent-first order.
func attributeGames(team teammatch.Identity, games []models.GameResult) []teamGame {
	out := make([]teamGame, 0, len(games))
	for _, g := range games {
		teamScore, oppScore, ok := teammatch.TeamScores(team, g)
		if !ok {
			continue
		}
		won, ok := teammatch.Won(team, g)
		if !ok {
			continue
		}
		name, key, _ := teammatch.Opponent(team, g)
		out = append(out, teamGame{
			teamScore:    teamScore,
			oppScore:     oppScore,
			won:          won,
			opponentName: name,
			opponentKey:  key,
		})
	}
	return out
}

func firstN(games []teamGame, n int) []teamGame {
	if len(games) > n {
		return games[:n]
	}
	return games
}
