package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/matchup-engine/internal/models"
)

const errScanGame = "failed to scan game: %w"

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db Conn
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db Conn) *PostgresGameRepository {
	return &PostgresGameRepository{db: db}
}

// ListCompletedGames retrieves final scores for the given seasons ordered by date
func (r *PostgresGameRepository) ListCompletedGames(ctx context.Context, sport string, seasons []int) ([]models.HistoricalGame, error) {
	query := `
		SELECT game_id, game_date, home_team, away_team, home_score, away_score,
		       COALESCE(home_team_key, ''), COALESCE(away_team_key, ''), sport, season
		FROM games
		WHERE sport = $1 AND season = ANY($2) AND status = 'final'
		ORDER BY game_date ASC, game_id ASC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sport, seasons)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed games: %w", err)
	}
	defer rows.Close()

	var games []models.HistoricalGame
	for rows.Next() {
		var g models.HistoricalGame
		if err := rows.Scan(
			&g.GameID, &g.Date, &g.HomeTeam, &g.AwayTeam, &g.HomeScore, &g.AwayScore,
			&g.HomeTeamKey, &g.AwayTeamKey, &g.Sport, &g.Season,
		); err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		g.Winner = winner(g.GameResult)
		games = append(games, g)
	}

	return games, rows.Err()
}

// RecentGames retrieves a team's completed games before a cutoff, most recent first
func (r *PostgresGameRepository) RecentGames(ctx context.Context, sport, teamKey string, before time.Time, limit int) ([]models.GameResult, error) {
	if teamKey == "" {
		return nil, models.ErrTeamKeyRequired
	}

	query := `
		SELECT game_id, game_date, home_team, away_team, home_score, away_score,
		       COALESCE(home_team_key, ''), COALESCE(away_team_key, '')
		FROM games
		WHERE sport = $1 AND (home_team_key = $2 OR away_team_key = $2)
		  AND game_date < $3 AND status = 'final'
		ORDER BY game_date DESC
		LIMIT $4
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sport, teamKey, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent games: %w", err)
	}
	defer rows.Close()

	var games []models.GameResult
	for rows.Next() {
		var g models.GameResult
		if err := rows.Scan(
			&g.GameID, &g.Date, &g.HomeTeam, &g.AwayTeam, &g.HomeScore, &g.AwayScore,
			&g.HomeTeamKey, &g.AwayTeamKey,
		); err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		g.Winner = winner(g)
		games = append(games, g)
	}

	return games, rows.Err()
}

func winner(g models.GameResult) string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeam
	case g.AwayScore > g.HomeScore:
		return g.AwayTeam
	default:
		return ""
	}
}
