package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/matchup-engine/internal/backtest"
	"github.com/yourusername/matchup-engine/internal/models"
)

// TeamStatsRepository defines read access to season aggregates
type TeamStatsRepository interface {
	GetTeamStats(ctx context.Context, sport string, season int, teamKey string) (*models.TeamStats, error)
	ListSeasonStats(ctx context.Context, sport string, seasons []int) (map[models.SnapshotKey]models.TeamStats, error)
}

// TeamRatingRepository defines read access to opponent efficiency ratings
type TeamRatingRepository interface {
	ListTeamRatings(ctx context.Context, sport string) ([]models.TeamRating, error)
}

// GameRepository defines read access to completed games
type GameRepository interface {
	ListCompletedGames(ctx context.Context, sport string, seasons []int) ([]models.HistoricalGame, error)
	RecentGames(ctx context.Context, sport, teamKey string, before time.Time, limit int) ([]models.GameResult, error)
}

// TrackedPredictionRepository defines read access to stored predictions
type TrackedPredictionRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.TrackedPrediction, error)
	ListTrackedPredictions(ctx context.Context, sport string, from, to time.Time) ([]models.TrackedPrediction, error)
}

// RepredictionRepository defines read access to re-prediction counters
type RepredictionRepository interface {
	GetRepredictionHistory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RepredictionHistory, error)
}

// DatasetRepository assembles optimizer datasets
type DatasetRepository interface {
	LoadDataset(ctx context.Context, sport string, seasons []int) (backtest.Dataset, error)
}
