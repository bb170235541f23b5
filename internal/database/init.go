package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchup-engine/internal/config"
)

// RequiredTables are read by the repositories. Migrations live with the
// upstream services that write them.
var RequiredTables = []string{
	"team_season_stats",
	"team_ratings",
	"games",
	"tracked_predictions",
	"repredictions",
}

// Initialize creates a database connection pool and verifies the tables the
// engine reads are present.
func Initialize(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	missing, err := db.missingTables(ctx, RequiredTables)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if len(missing) > 0 {
		db.Close()
		return nil, fmt.Errorf("database %s is missing tables: %s", cfg.Database.Name, strings.Join(missing, ", "))
	}

	logger.WithFields(logrus.Fields{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Name,
	}).Info("Database connection established")

	return db, nil
}

func (db *DB) missingTables(ctx context.Context, tables []string) ([]string, error) {
	var missing []string
	for _, table := range tables {
		var exists bool
		if err := db.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
