// Package main provides the coefficient optimization CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchup-engine/internal/backtest"
	"github.com/yourusername/matchup-engine/internal/config"
	"github.com/yourusername/matchup-engine/internal/database"
	"github.com/yourusername/matchup-engine/internal/logger"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/ratings"
	"github.com/yourusername/matchup-engine/internal/repository"
	"github.com/yourusername/matchup-engine/internal/sport"
)

var (
	configFile string
	sportKey   string
	seasons    []int
	sampleSize int
	timeout    time.Duration

	cfg       *config.Config
	appLog    *logrus.Logger
	optLog    *logger.OptimizerLogger
	db        *database.DB
	repos     *repository.Repositories
	optimizer *backtest.Optimizer
	dataset   backtest.Dataset
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&sportKey, "sport", "s", "", "Sport key (defaults to engine.default_sport)")
	rootCmd.PersistentFlags().IntSliceVar(&seasons, "seasons", nil, "Seasons to load (defaults to optimizer.seasons)")
	rootCmd.PersistentFlags().IntVarP(&sampleSize, "sample", "n", 0, "Games to evaluate (defaults to optimizer.sample_size)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Minute, "Overall run timeout")

	runCmd.Flags().StringP("output", "o", "", "Write the result JSON here (defaults to optimizer.output_path)")
	validateCmd.Flags().String("coefficients", "", "Coefficients JSON to validate (defaults to engine.coefficients)")

	rootCmd.AddCommand(runCmd, validateCmd, compareCmd)
}

var rootCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Tune prediction coefficients against historical games",
	Long:  `Grid-searches calibration coefficients over completed games and reports accuracy.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd.Context()); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := setupDependencies(cmd.Context()); err != nil {
			return fmt.Errorf("failed to setup dependencies: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Search the coefficient grid and report the best set",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		result, err := optimizer.Optimize(ctx, dataset, sampleSize)
		if err != nil {
			return err
		}

		optLog.LogOptimizationResult(result.RunID.String(), result.Sport, result.Coefficients.Version,
			result.Best.Games, result.Evaluated, result.Baseline.MAE, result.Best.MAE, result.Improved)
		logChanges(models.DefaultCoefficients(), result.Coefficients)
		fmt.Print(backtest.GenerateConsoleReport(result))

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.Optimizer.OutputPath
		}
		if output == "" {
			return nil
		}
		if err := backtest.ExportCoefficients(result, output); err != nil {
			return fmt.Errorf("failed to export coefficients: %w", err)
		}
		appLog.WithField("path", output).Info("Coefficients exported")
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Measure one coefficient set on held-out games",
	RunE: func(cmd *cobra.Command, args []string) error {
		coeffs := cfg.Coefficients()
		if path, _ := cmd.Flags().GetString("coefficients"); path != "" {
			var err error
			if coeffs, err = backtest.LoadCoefficients(path); err != nil {
				return err
			}
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		m, err := optimizer.Validate(ctx, dataset, coeffs, sampleSize)
		if err != nil {
			return err
		}
		optLog.LogValidation(coeffs.Version, m.Games, m.MAE, m.MarginMAE, m.WinnerAccuracy)
		fmt.Printf("%s: %d games, MAE %.3f, margin MAE %.3f, winner accuracy %.2f%% (%d skipped)\n",
			coeffs.Version, m.Games, m.MAE, m.MarginMAE, m.WinnerAccuracy*100, m.Skipped)
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare <a.json> <b.json>",
	Short: "Compare two coefficient sets on the same games",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := backtest.LoadCoefficients(args[0])
		if err != nil {
			return err
		}
		b, err := backtest.LoadCoefficients(args[1])
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		cmp, err := optimizer.Compare(ctx, dataset, a, b, sampleSize)
		if err != nil {
			return err
		}
		optLog.LogComparison(cmp.VersionA, cmp.VersionB, cmp.MAEDelta, cmp.WinnerAccuracyDelta)
		fmt.Print(backtest.GenerateComparisonReport(cmp))
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig(ctx context.Context) error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
		return err
	}
	return config.Validate(cfg)
}

func setupDependencies(ctx context.Context) error {
	appLog = logger.NewLoggerWithFormat(cfg.App.LogLevel, cfg.App.LogFormat)
	optLog = logger.NewOptimizerLogger(appLog)

	if sportKey == "" {
		sportKey = cfg.Engine.DefaultSport
	}
	sportKey = sport.Lookup(sportKey).Key
	if len(seasons) == 0 {
		seasons = cfg.Optimizer.Seasons
	}
	if len(seasons) == 0 {
		seasons = []int{time.Now().Year()}
	}

	btConfig, err := backtest.FromConfig(&cfg.Optimizer)
	if err != nil {
		return err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	db, err = database.NewDB(loadCtx, &cfg.Database)
	if err != nil {
		return err
	}
	repos, err = repository.NewRepositories(db)
	if err != nil {
		return err
	}

	cache := ratings.NewCache(cfg.Ratings.TTL)
	if _, err := cache.Refresh(loadCtx, repos.TeamRatings, sportKey); err != nil {
		appLog.WithError(err).Warn("Opponent ratings unavailable, estimating from scores")
	}

	optimizer, err = backtest.NewOptimizer(btConfig, cache.ForSport(sportKey), appLog)
	if err != nil {
		return err
	}

	dataset, err = repos.Datasets.LoadDataset(loadCtx, sportKey, seasons)
	if err != nil {
		return err
	}
	appLog.WithFields(logrus.Fields{
		"sport":     sportKey,
		"seasons":   seasons,
		"games":     len(dataset.Games),
		"snapshots": len(dataset.Snapshots),
	}).Info("Dataset loaded")
	return nil
}

func logChanges(before, after models.CalibrationCoefficients) {
	changes := []struct {
		name     string
		from, to float64
	}{
		{"recent_form_weight", before.RecentFormWeight, after.RecentFormWeight},
		{"sos_adjustment_factor", before.SOSAdjustmentFactor, after.SOSAdjustmentFactor},
		{"defensive_adjustment_base", before.DefensiveAdjustmentBase, after.DefensiveAdjustmentBase},
	}
	for _, c := range changes {
		if c.from != c.to {
			optLog.LogCoefficientChange(c.name, c.from, c.to, after.Version)
		}
	}
}
