package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/matchup-engine/internal/database"
)

// Conn hands out a query surface bound to ctx. *database.DB implements it.
type Conn interface {
	Conn(ctx context.Context) database.Querier
}

// Repositories holds all repository implementations
type Repositories struct {
	TeamStats     TeamStatsRepository
	TeamRatings   TeamRatingRepository
	Games         GameRepository
	Predictions   TrackedPredictionRepository
	Repredictions RepredictionRepository
	Datasets      DatasetRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db Conn) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	stats := NewPostgresTeamStatsRepository(db)
	games := NewPostgresGameRepository(db)

	return &Repositories{
		TeamStats:     stats,
		TeamRatings:   NewPostgresTeamRatingRepository(db),
		Games:         games,
		Predictions:   NewPostgresTrackedPredictionRepository(db),
		Repredictions: NewPostgresRepredictionRepository(db),
		Datasets:      NewDatasetRepository(games, stats),
	}, nil
}
