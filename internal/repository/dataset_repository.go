package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/matchup-engine/internal/backtest"
)

// PostgresDatasetRepository builds optimizer datasets from the game and
// season stats tables.
type PostgresDatasetRepository struct {
	games GameRepository
	stats TeamStatsRepository
}

// NewDatasetRepository creates a dataset repository over games and stats
func NewDatasetRepository(games GameRepository, stats TeamStatsRepository) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{games: games, stats: stats}
}

// LoadDataset loads completed games and the season snapshots for sport.
// Games whose sides have no snapshot are kept; the optimizer skips them.
func (r *PostgresDatasetRepository) LoadDataset(ctx context.Context, sport string, seasons []int) (backtest.Dataset, error) {
	if len(seasons) == 0 {
		return backtest.Dataset{}, fmt.Errorf("at least one season is required")
	}

	games, err := r.games.ListCompletedGames(ctx, sport, seasons)
	if err != nil {
		return backtest.Dataset{}, fmt.Errorf("load dataset games: %w", err)
	}

	snapshots, err := r.stats.ListSeasonStats(ctx, sport, seasons)
	if err != nil {
		return backtest.Dataset{}, fmt.Errorf("load dataset snapshots: %w", err)
	}

	return backtest.Dataset{Sport: sport, Games: games, Snapshots: snapshots}, nil
}
