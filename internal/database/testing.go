package database

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/yourusername/matchup-engine/internal/config"
)

// TestConfigEnv names the config file used by integration tests.
const TestConfigEnv = "MATCHUP_ENGINE_TEST_CONFIG"

// SetupTestDB connects to the database described by $MATCHUP_ENGINE_TEST_CONFIG.
// The test is skipped when the variable is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	path := os.Getenv(TestConfigEnv)
	if path == "" {
		t.Skipf("%s not set; skipping integration test", TestConfigEnv)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("failed to load test config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}
