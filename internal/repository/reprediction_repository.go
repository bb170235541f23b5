package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/matchup-engine/internal/models"
)

// PostgresRepredictionRepository implements RepredictionRepository for PostgreSQL
type PostgresRepredictionRepository struct {
	db Conn
}

// NewPostgresRepredictionRepository creates a new reprediction repository
func NewPostgresRepredictionRepository(db Conn) *PostgresRepredictionRepository {
	return &PostgresRepredictionRepository{db: db}
}

// GetRepredictionHistory returns the count and latest timestamp per
// prediction. Every requested id is present in the result; ids with no
// re-predictions map to a zero count.
func (r *PostgresRepredictionRepository) GetRepredictionHistory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RepredictionHistory, error) {
	out := make(map[uuid.UUID]models.RepredictionHistory, len(ids))
	for _, id := range ids {
		out[id] = models.RepredictionHistory{PredictionID: id}
	}
	if len(ids) == 0 {
		return out, nil
	}

	query := `
		SELECT prediction_id, COUNT(*), MAX(repredicted_at)
		FROM repredictions
		WHERE prediction_id = ANY($1)
		GROUP BY prediction_id
	`

	rows, err := r.db.Conn(ctx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query reprediction history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id    uuid.UUID
			count int
			last  *time.Time
		)
		if err := rows.Scan(&id, &count, &last); err != nil {
			return nil, fmt.Errorf("failed to scan reprediction history: %w", err)
		}
		out[id] = models.RepredictionHistory{PredictionID: id, Count: count, LastRepredictedAt: last}
	}

	return out, rows.Err()
}
