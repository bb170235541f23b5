package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/matchup-engine/internal/linemonitor"
)

const (
	envPrefix         = "MATCHUP_ENGINE"
	defaultConfigPath = "config/config.yaml"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = defaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// ReloadFromEnv reloads the configuration from MATCHUP_ENGINE_CONFIG_PATH
// when it is set.
func ReloadFromEnv(cfg *Config) error {
	envPath := os.Getenv(envPrefix + "_CONFIG_PATH")
	if envPath == "" {
		return nil
	}
	newCfg, err := Load(envPath)
	if err != nil {
		return err
	}
	*cfg = *newCfg
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setThresholdDefaults(v)
	return v
}

// setThresholdDefaults defaults each monitor threshold key on its own, so an
// explicit zero in the file survives while omitted keys are filled.
func setThresholdDefaults(v *viper.Viper) {
	th := linemonitor.DefaultThresholds()
	v.SetDefault("monitor.thresholds.spread_threshold", th.SpreadThreshold)
	v.SetDefault("monitor.thresholds.total_threshold", th.TotalThreshold)
	v.SetDefault("monitor.thresholds.moneyline_threshold", th.MoneylineThreshold)
	v.SetDefault("monitor.thresholds.max_repredictions", th.MaxRepredictions)
	v.SetDefault("monitor.thresholds.cooldown", th.Cooldown)
	v.SetDefault("monitor.thresholds.hours_before_game", th.HoursBeforeGame)
	v.SetDefault("monitor.thresholds.min_minutes_before_game", th.MinMinutesBeforeGame)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "matchup-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "text")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "matchup_engine")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("engine.default_sport", "basketball_nba")
	v.SetDefault("ratings.ttl", "6h")
	v.SetDefault("ratings.refresh_schedule", "0 */6 * * *")
	v.SetDefault("monitor.schedule", "*/15 * * * *")
	v.SetDefault("monitor.sports", []string{"basketball_ncaab", "basketball_nba", "basketball_wnba"})
	v.SetDefault("monitor.lease_ttl", "5m")
	v.SetDefault("monitor.sweep_timeout", "2m")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 8080)
}

// unmarshal decodes into Config and fills the coefficient block when it was
// left out of the file. Thresholds default per key in setDefaults.
func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Engine.Coefficients = cfg.Engine.Coefficients.OrDefault()
	return cfg, nil
}
