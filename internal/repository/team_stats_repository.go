package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/matchup-engine/internal/models"
)

const (
	teamStatsColumns = `team_key, team_name, abbreviation, season, wins, losses,
		points_per_game, points_allowed_per_game, field_goal_pct, three_point_pct, free_throw_pct,
		effective_fg_pct, turnover_pct, offensive_rebound_pct, free_throw_rate,
		pace, offensive_efficiency, defensive_efficiency`
	errScanTeamStats = "failed to scan team stats: %w"
)

// PostgresTeamStatsRepository implements TeamStatsRepository for PostgreSQL
type PostgresTeamStatsRepository struct {
	db Conn
}

// NewPostgresTeamStatsRepository creates a new team stats repository
func NewPostgresTeamStatsRepository(db Conn) *PostgresTeamStatsRepository {
	return &PostgresTeamStatsRepository{db: db}
}

// GetTeamStats retrieves one team's aggregate for a season
func (r *PostgresTeamStatsRepository) GetTeamStats(ctx context.Context, sport string, season int, teamKey string) (*models.TeamStats, error) {
	if teamKey == "" {
		return nil, models.ErrTeamKeyRequired
	}

	query := `SELECT ` + teamStatsColumns + `
		FROM team_season_stats
		WHERE sport = $1 AND season = $2 AND team_key = $3`

	stats, err := scanTeamStats(r.db.Conn(ctx).QueryRow(ctx, query, sport, season, teamKey))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team stats: %w", err)
	}
	return &stats, nil
}

// ListSeasonStats retrieves every team's aggregate for the given seasons,
// keyed by season and team key
func (r *PostgresTeamStatsRepository) ListSeasonStats(ctx context.Context, sport string, seasons []int) (map[models.SnapshotKey]models.TeamStats, error) {
	query := `SELECT ` + teamStatsColumns + `
		FROM team_season_stats
		WHERE sport = $1 AND season = ANY($2)`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sport, seasons)
	if err != nil {
		return nil, fmt.Errorf("failed to query season stats: %w", err)
	}
	defer rows.Close()

	out := make(map[models.SnapshotKey]models.TeamStats)
	for rows.Next() {
		stats, err := scanTeamStats(rows)
		if err != nil {
			return nil, fmt.Errorf(errScanTeamStats, err)
		}
		out[models.SnapshotKey{Season: stats.Season, TeamKey: stats.TeamKey}] = stats
	}

	return out, rows.Err()
}

func scanTeamStats(row pgx.Row) (models.TeamStats, error) {
	var s models.TeamStats
	err := row.Scan(
		&s.TeamKey, &s.TeamName, &s.Abbreviation, &s.Season, &s.Wins, &s.Losses,
		&s.PointsPerGame, &s.PointsAllowedPerGame, &s.FieldGoalPct, &s.ThreePointPct, &s.FreeThrowPct,
		&s.EffectiveFGPct, &s.TurnoverPct, &s.OffensiveReboundPct, &s.FreeThrowRate,
		&s.Pace, &s.OffensiveEfficiency, &s.DefensiveEfficiency,
	)
	return s, err
}
