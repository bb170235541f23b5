// Package config provides configuration management for the matchup engine.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/matchup-engine/internal/linemonitor"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/oddsfeed"
	"github.com/yourusername/matchup-engine/internal/simulation"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig         `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig    `mapstructure:"database" validate:"required"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Engine     EngineConfig      `mapstructure:"engine" validate:"required"`
	Ratings    RatingsConfig     `mapstructure:"ratings"`
	Optimizer  OptimizerConfig   `mapstructure:"optimizer"`
	Monitor    MonitorConfig     `mapstructure:"monitor"`
	OddsFeed   oddsfeed.Config   `mapstructure:"odds_feed"`
	Simulation simulation.Config `mapstructure:"simulation"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
	Secrets    SecretsConfig     `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	LogFormat   string `mapstructure:"log_format" validate:"omitempty,oneof=json text"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// RedisConfig is the connection used by the odds feed and the sweep lease.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0,lte=15"`
}

// EngineConfig configures the prediction path.
type EngineConfig struct {
	DefaultSport          string                         `mapstructure:"default_sport" validate:"required,sport"`
	Coefficients          models.CalibrationCoefficients `mapstructure:"coefficients"`
	CalibrationParamsPath string                         `mapstructure:"calibration_params_path"`
}

// RatingsConfig configures the team ratings cache.
type RatingsConfig struct {
	Sports          []string      `mapstructure:"sports" validate:"dive,sport"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshSchedule string        `mapstructure:"refresh_schedule" validate:"omitempty,cron"`
}

// OptimizerConfig configures coefficient grid searches.
type OptimizerConfig struct {
	SampleSize int    `mapstructure:"sample_size" validate:"gte=0"`
	Workers    int    `mapstructure:"workers" validate:"gte=0,lte=64"`
	Seasons    []int  `mapstructure:"seasons" validate:"dive,gte=2000,lte=2100"`
	OutputPath string `mapstructure:"output_path"`
}

// MonitorConfig configures the line movement monitor.
type MonitorConfig struct {
	Schedule     string                 `mapstructure:"schedule" validate:"omitempty,cron"`
	Sports       []string               `mapstructure:"sports" validate:"dive,sport"`
	Thresholds   linemonitor.Thresholds `mapstructure:"thresholds"`
	LeaseTTL     time.Duration          `mapstructure:"lease_ttl"`
	UseRedisLock bool                   `mapstructure:"use_redis_lock"`
	SweepTimeout time.Duration          `mapstructure:"sweep_timeout"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret.
type SecretsConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Coefficients returns the configured coefficients, or the defaults when
// the config leaves them unset.
func (c *Config) Coefficients() models.CalibrationCoefficients {
	return c.Engine.Coefficients.OrDefault()
}

// Thresholds returns the monitor thresholds, or the defaults when the block
// was never populated.
func (c *Config) Thresholds() linemonitor.Thresholds {
	return c.Monitor.Thresholds.OrDefault()
}
