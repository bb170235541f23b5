package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/matchup-engine/internal/models"
)

const trackedPredictionColumns = `id, game_id, sport, home_team, away_team, game_time,
		original_spread, original_total, original_home_ml, original_away_ml, predicted_at, validated`

// PostgresTrackedPredictionRepository implements TrackedPredictionRepository for PostgreSQL
type PostgresTrackedPredictionRepository struct {
	db Conn
}

// NewPostgresTrackedPredictionRepository creates a new tracked prediction repository
func NewPostgresTrackedPredictionRepository(db Conn) *PostgresTrackedPredictionRepository {
	return &PostgresTrackedPredictionRepository{db: db}
}

// GetByID retrieves a tracked prediction by ID
func (r *PostgresTrackedPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrediction, error) {
	query := `SELECT ` + trackedPredictionColumns + ` FROM tracked_predictions WHERE id = $1`

	tp, err := scanTrackedPrediction(r.db.Conn(ctx).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tracked prediction: %w", err)
	}
	return &tp, nil
}

// ListTrackedPredictions retrieves unvalidated predictions for sport whose
// game starts inside (from, to)
func (r *PostgresTrackedPredictionRepository) ListTrackedPredictions(ctx context.Context, sport string, from, to time.Time) ([]models.TrackedPrediction, error) {
	query := `SELECT ` + trackedPredictionColumns + `
		FROM tracked_predictions
		WHERE sport = $1 AND validated = FALSE AND game_time > $2 AND game_time < $3
		ORDER BY game_time ASC`

	rows, err := r.db.Conn(ctx).Query(ctx, query, sport, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracked predictions: %w", err)
	}
	defer rows.Close()

	var out []models.TrackedPrediction
	for rows.Next() {
		tp, err := scanTrackedPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracked prediction: %w", err)
		}
		out = append(out, tp)
	}

	return out, rows.Err()
}

func scanTrackedPrediction(row pgx.Row) (models.TrackedPrediction, error) {
	var tp models.TrackedPrediction
	err := row.Scan(
		&tp.ID, &tp.GameID, &tp.Sport, &tp.HomeTeam, &tp.AwayTeam, &tp.GameTime,
		&tp.OriginalSpread, &tp.OriginalTotal, &tp.OriginalHomeML, &tp.OriginalAwayML,
		&tp.PredictedAt, &tp.Validated,
	)
	return tp, err
}
