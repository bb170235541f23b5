// Package main provides the matchup prediction CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/matchup-engine/internal/analytics"
	"github.com/yourusername/matchup-engine/internal/calibration"
	"github.com/yourusername/matchup-engine/internal/config"
	"github.com/yourusername/matchup-engine/internal/database"
	"github.com/yourusername/matchup-engine/internal/logger"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/predictor"
	"github.com/yourusername/matchup-engine/internal/ratings"
	"github.com/yourusername/matchup-engine/internal/repository"
	"github.com/yourusername/matchup-engine/internal/simulation"
	"github.com/yourusername/matchup-engine/internal/sport"
)

const recentGamesLimit = 10

var (
	configFile string
	simulate   bool
	pretty     bool

	cfg    *config.Config
	appLog *logrus.Logger
)

// TeamInput is one side of a prediction request file.
type TeamInput struct {
	Stats       models.TeamStats    `json:"stats"`
	RecentGames []models.GameResult `json:"recent_games"`
}

// Request is the JSON document read by "predict file".
type Request struct {
	Sport        string                          `json:"sport"`
	Home         TeamInput                       `json:"home"`
	Away         TeamInput                       `json:"away"`
	Market       *models.GameOdds                `json:"market,omitempty"`
	Coefficients *models.CalibrationCoefficients `json:"coefficients,omitempty"`
	Ratings      []models.TeamRating             `json:"ratings,omitempty"`
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Attach a Monte Carlo simulation summary")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", true, "Indent JSON output")

	teamsCmd.Flags().String("sport", "", "Sport key (defaults to engine.default_sport)")
	teamsCmd.Flags().String("home", "", "Home team key")
	teamsCmd.Flags().String("away", "", "Away team key")
	teamsCmd.Flags().Int("season", time.Now().Year(), "Season of the stats snapshot")
	_ = teamsCmd.MarkFlagRequired("home")
	_ = teamsCmd.MarkFlagRequired("away")

	rootCmd.AddCommand(fileCmd, teamsCmd)
}

var rootCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the outcome of a matchup",
	Long:  `Computes team analytics for both sides and prints the matchup prediction as JSON.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		appLog = logger.NewLoggerWithFormat(cfg.App.LogLevel, cfg.App.LogFormat)
		appLog.SetOutput(os.Stderr)
		return nil
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <request.json>",
	Short: "Predict from a JSON request file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := readRequest(args[0])
		if err != nil {
			return err
		}

		cache := ratings.NewCache(cfg.Ratings.TTL)
		cache.Store(req.Ratings)

		coeffs := cfg.Coefficients()
		if req.Coefficients != nil {
			coeffs = *req.Coefficients
		}
		s := req.Sport
		if s == "" {
			s = cfg.Engine.DefaultSport
		}

		return run(s, req.Home, req.Away, req.Market, coeffs, cache.ForSport(sport.Lookup(s).Key))
	},
}

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Predict from stored season stats and recent games",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _ := cmd.Flags().GetString("sport")
		home, _ := cmd.Flags().GetString("home")
		away, _ := cmd.Flags().GetString("away")
		season, _ := cmd.Flags().GetInt("season")
		if s == "" {
			s = cfg.Engine.DefaultSport
		}
		s = sport.Lookup(s).Key

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := config.LoadSecretsFromAWS(ctx, cfg); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return err
		}

		cache := ratings.NewCache(cfg.Ratings.TTL)
		n, err := cache.Refresh(ctx, repos.TeamRatings, s)
		if err != nil {
			appLog.WithError(err).Warn("Opponent ratings unavailable, estimating from scores")
		}
		_, _, ratio := cache.Stats()
		logger.NewPredictionLogger(appLog).LogRatingsRefresh(s, n, ratio)

		homeIn, err := loadTeam(ctx, repos, s, season, home)
		if err != nil {
			return err
		}
		awayIn, err := loadTeam(ctx, repos, s, season, away)
		if err != nil {
			return err
		}

		return run(s, homeIn, awayIn, nil, cfg.Coefficients(), cache.ForSport(s))
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func readRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("failed to read request: %w", err)
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

func loadTeam(ctx context.Context, repos *repository.Repositories, s string, season int, teamKey string) (TeamInput, error) {
	stats, err := repos.TeamStats.GetTeamStats(ctx, s, season, teamKey)
	if err != nil {
		return TeamInput{}, fmt.Errorf("stats for %s: %w", teamKey, err)
	}
	games, err := repos.Games.RecentGames(ctx, s, teamKey, time.Now(), recentGamesLimit)
	if err != nil {
		return TeamInput{}, fmt.Errorf("recent games for %s: %w", teamKey, err)
	}
	return TeamInput{Stats: *stats, RecentGames: games}, nil
}

func buildPredictor() (*predictor.Predictor, error) {
	var opts []predictor.Option
	if path := cfg.Engine.CalibrationParamsPath; path != "" {
		params, err := calibration.LoadParams(path)
		if err != nil {
			return nil, err
		}
		opts = append(opts, predictor.WithCalibration(calibration.NewStore(params)))
	}
	if simulate {
		opts = append(opts, predictor.WithSimulator(simulation.NewMonteCarlo(cfg.Simulation)))
	}
	return predictor.New(opts...), nil
}

func run(s string, home, away TeamInput, market *models.GameOdds, coeffs models.CalibrationCoefficients, lookup analytics.RatingLookup) error {
	predLog := logger.NewPredictionLogger(appLog)
	for _, t := range []TeamInput{home, away} {
		if !t.Stats.HasFourFactors() {
			predLog.LogMissingStats(t.Stats.TeamName, s, false)
		}
	}

	p, err := buildPredictor()
	if err != nil {
		return err
	}

	start := time.Now()
	calc := analytics.NewCalculator(lookup)
	pred := p.Predict(predictor.Input{
		Home:         calc.Compute(analytics.Input{Stats: home.Stats, RecentGames: home.RecentGames, IsHome: true, Sport: s, Coefficients: coeffs}),
		Away:         calc.Compute(analytics.Input{Stats: away.Stats, RecentGames: away.RecentGames, Sport: s, Coefficients: coeffs}),
		HomeStats:    home.Stats,
		AwayStats:    away.Stats,
		Sport:        s,
		Coefficients: coeffs,
		Market:       market,
	})
	predLog.LogPrediction(pred, float64(time.Since(start).Microseconds())/1000)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(pred)
}
