// Package main provides the line movement monitor service.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchup-engine/internal/calibration"
	"github.com/yourusername/matchup-engine/internal/config"
	"github.com/yourusername/matchup-engine/internal/database"
	"github.com/yourusername/matchup-engine/internal/health"
	"github.com/yourusername/matchup-engine/internal/linemonitor"
	"github.com/yourusername/matchup-engine/internal/logger"
	"github.com/yourusername/matchup-engine/internal/metrics"
	"github.com/yourusername/matchup-engine/internal/oddsfeed"
	"github.com/yourusername/matchup-engine/internal/predictor"
	"github.com/yourusername/matchup-engine/internal/ratings"
	"github.com/yourusername/matchup-engine/internal/repository"
	"github.com/yourusername/matchup-engine/internal/scheduler"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	once       bool
	dryRun     bool
)

func init() {
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&once, "once", false, "Run a single sweep, print the result and exit")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Analyze movements without publishing re-predictions")
}

var rootCmd = &cobra.Command{
	Use:   "line-monitor",
	Short: "Watch bookmaker lines for movement against tracked predictions",
	Long: `Periodically compares current consensus odds with the lines captured when
predictions were made and re-predicts games whose lines moved significantly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	appLog := logger.NewLoggerWithFormat(cfg.App.LogLevel, cfg.App.LogFormat)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
		"sports":      cfg.Monitor.Sports,
	}).Info("Line monitor starting")

	metrics.InitRegistry()

	db, err := database.Initialize(ctx, cfg, appLog)
	if err != nil {
		return err
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}

	cache := ratings.NewCache(cfg.Ratings.TTL)
	ratingSports := cfg.Ratings.Sports
	if len(ratingSports) == 0 {
		ratingSports = cfg.Monitor.Sports
	}
	refresher := ratings.NewRefresher(cache, repos.TeamRatings, ratingSports, appLog)
	if err := refresher.Run(ctx); err != nil {
		appLog.WithError(err).Warn("Initial ratings refresh failed")
	}

	repredictor, err := buildRepredictor(cfg, repos, cache, rdb, appLog)
	if err != nil {
		return err
	}

	opts := []linemonitor.Option{linemonitor.WithRepredictor(repredictor)}
	if cfg.Monitor.UseRedisLock {
		opts = append(opts, linemonitor.WithLocker(linemonitor.NewRedisLocker(rdb, ""), cfg.Monitor.LeaseTTL))
	}
	monitor := linemonitor.NewMonitor(
		oddsfeed.NewRedisProvider(rdb, cfg.OddsFeed, appLog),
		repos.Predictions,
		repos.Repredictions,
		appLog,
		opts...,
	)

	if once {
		result, err := monitor.MonitorOddsMovement(ctx, cfg.Monitor.Sports, cfg.Thresholds())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	sched := scheduler.NewScheduler(appLog)
	if err := sched.ScheduleLineMonitor(cfg.Monitor.Schedule, monitor, cfg.Monitor.Sports, cfg.Thresholds(), cfg.Monitor.SweepTimeout); err != nil {
		return err
	}
	if cfg.Ratings.RefreshSchedule != "" {
		if err := sched.ScheduleRatingsRefresh(cfg.Ratings.RefreshSchedule, refresher, time.Minute); err != nil {
			return err
		}
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: "line-monitor",
		Version:     Version,
		Commit:      GitCommit,
		Port:        strconv.Itoa(cfg.Metrics.Port),
		Logger:      appLog,
		Checks: map[string]health.Checker{
			"postgres": health.CheckerFunc(db.HealthCheck),
			"redis":    health.RedisChecker(rdb),
		},
	})
	if cfg.Metrics.Enabled {
		if err := healthServer.Start(ctx); err != nil {
			return err
		}
	}

	if err := sched.Start(); err != nil {
		return err
	}
	healthServer.SetReady(true)
	appLog.WithField("next_run", sched.GetNextRun()).Info("Line monitor running")

	// First sweep without waiting for the cron cadence.
	if err := sched.RunNow(ctx, scheduler.JobLineMonitor); err != nil {
		appLog.WithError(err).Warn("Initial sweep did not complete")
	}

	<-ctx.Done()
	appLog.Info("Shutdown signal received")
	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Scheduler did not stop cleanly")
	}
	return nil
}

func buildRepredictor(cfg *config.Config, repos *repository.Repositories, cache *ratings.Cache, rdb *redis.Client, appLog *logrus.Logger) (linemonitor.Repredictor, error) {
	if dryRun {
		return dryRunRepredictor{log: appLog}, nil
	}

	var opts []predictor.Option
	if path := cfg.Engine.CalibrationParamsPath; path != "" {
		params, err := calibration.LoadParams(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, predictor.WithCalibration(calibration.NewStore(params)))
	}

	return &predictingRepredictor{
		repos:     repos,
		ratings:   cache,
		predictor: predictor.New(opts...),
		coeffs:    cfg.Coefficients(),
		publisher: linemonitor.NewStreamRepredictor(rdb, ""),
		log:       logger.NewPredictionLogger(appLog),
	}, nil
}

type dryRunRepredictor struct {
	log *logrus.Logger
}

func (d dryRunRepredictor) Repredict(_ context.Context, mv linemonitor.LineMovement) error {
	d.log.WithFields(logrus.Fields{
		"prediction_id": mv.PredictionID,
		"game_id":       mv.GameID,
	}).Info("Dry run, re-prediction not published")
	return nil
}
