package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/matchup-engine/internal/models"
)

// PostgresTeamRatingRepository implements TeamRatingRepository for PostgreSQL
type PostgresTeamRatingRepository struct {
	db Conn
}

// NewPostgresTeamRatingRepository creates a new team rating repository
func NewPostgresTeamRatingRepository(db Conn) *PostgresTeamRatingRepository {
	return &PostgresTeamRatingRepository{db: db}
}

// ListTeamRatings returns the latest season's rating for every team in sport
func (r *PostgresTeamRatingRepository) ListTeamRatings(ctx context.Context, sport string) ([]models.TeamRating, error) {
	query := `
		SELECT DISTINCT ON (team_key)
		       team_key, sport, season, offensive_efficiency, defensive_efficiency, updated_at
		FROM team_ratings
		WHERE sport = $1
		ORDER BY team_key, season DESC, updated_at DESC
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.TeamRating
	for rows.Next() {
		var tr models.TeamRating
		if err := rows.Scan(
			&tr.TeamKey, &tr.Sport, &tr.Season, &tr.OffensiveEfficiency, &tr.DefensiveEfficiency, &tr.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team rating: %w", err)
		}
		ratings = append(ratings, tr)
	}

	return ratings, rows.Err()
}
