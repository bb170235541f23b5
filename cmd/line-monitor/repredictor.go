package main

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/matchup-engine/internal/analytics"
	"github.com/yourusername/matchup-engine/internal/linemonitor"
	"github.com/yourusername/matchup-engine/internal/logger"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/predictor"
	"github.com/yourusername/matchup-engine/internal/ratings"
	"github.com/yourusername/matchup-engine/internal/repository"
	"github.com/yourusername/matchup-engine/internal/sport"
)

const recentGamesLimit = 10

// predictingRepredictor recomputes the matchup against the moved line and
// publishes movement and prediction together.
type predictingRepredictor struct {
	repos     *repository.Repositories
	ratings   *ratings.Cache
	predictor *predictor.Predictor
	coeffs    models.CalibrationCoefficients
	publisher *linemonitor.StreamRepredictor
	log       *logger.PredictionLogger
}

func (r *predictingRepredictor) Repredict(ctx context.Context, mv linemonitor.LineMovement) error {
	s := sport.Lookup(mv.Sport).Key
	season := seasonOf(s, mv.GameTime)

	home, err := r.team(ctx, s, season, mv.HomeTeam, mv.GameTime)
	if err != nil {
		return err
	}
	away, err := r.team(ctx, s, season, mv.AwayTeam, mv.GameTime)
	if err != nil {
		return err
	}

	market := &models.GameOdds{
		GameID:        mv.GameID,
		Sport:         s,
		HomeTeam:      mv.HomeTeam,
		AwayTeam:      mv.AwayTeam,
		Spread:        mv.CurrentSpread,
		Total:         mv.CurrentTotal,
		HomeMoneyline: mv.CurrentHomeML,
		AwayMoneyline: mv.CurrentAwayML,
	}

	start := time.Now()
	calc := analytics.NewCalculator(r.ratings.ForSport(s))
	pred := r.predictor.Predict(predictor.Input{
		Home:         calc.Compute(analytics.Input{Stats: home.stats, RecentGames: home.games, IsHome: true, Sport: s, Coefficients: r.coeffs}),
		Away:         calc.Compute(analytics.Input{Stats: away.stats, RecentGames: away.games, Sport: s, Coefficients: r.coeffs}),
		HomeStats:    home.stats,
		AwayStats:    away.stats,
		Sport:        s,
		Coefficients: r.coeffs,
		Market:       market,
	})
	r.log.LogPrediction(pred, float64(time.Since(start).Microseconds())/1000)

	return r.publisher.Publish(ctx, mv, pred)
}

type teamData struct {
	stats models.TeamStats
	games []models.GameResult
}

// team loads stats by the tracked team name, which the prediction service
// stores as the team key.
func (r *predictingRepredictor) team(ctx context.Context, s string, season int, teamKey string, before time.Time) (teamData, error) {
	stats, err := r.repos.TeamStats.GetTeamStats(ctx, s, season, teamKey)
	if err != nil {
		return teamData{}, fmt.Errorf("stats for %s: %w", teamKey, err)
	}
	games, err := r.repos.Games.RecentGames(ctx, s, teamKey, before, recentGamesLimit)
	if err != nil {
		return teamData{}, fmt.Errorf("recent games for %s: %w", teamKey, err)
	}
	return teamData{stats: *stats, games: games}, nil
}

// seasonOf labels college and NBA seasons by the year they end in. WNBA
// seasons sit inside one calendar year.
func seasonOf(sportKey string, gameTime time.Time) int {
	if sportKey != sport.WNBA && gameTime.Month() >= time.August {
		return gameTime.Year() + 1
	}
	return gameTime.Year()
}
