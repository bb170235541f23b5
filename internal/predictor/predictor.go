// Package predictor combines two teams' analytics into a full matchup
// forecast: win probability, projected score and spread, an alternate line
// suggestion, confidence and the key factors behind it.
package predictor

import (
	"math"

	"github.com/yourusername/matchup-engine/internal/calibration"
	"github.com/yourusername/matchup-engine/internal/metrics"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
)

const (
	// Logistic scale: a score of 8 points maps to ~73%.
	probabilityScale = 8.0
	// spread = spreadPerLogit * logit(p)
	spreadPerLogit = 5.0
	maxSpread      = 25.0

	fourFactorsQuality = 85.0
	fallbackQuality    = 70.0
	minConfidence      = 60.0
	maxConfidence      = 95.0
)

// Simulator is an optional Monte Carlo collaborator. Implementations must be
// deterministic for identical requests.
type Simulator interface {
	Simulate(req models.SimulationRequest) (models.SimulationSummary, error)
}

// Input is everything a single prediction reads.
type Input struct {
	Home      models.TeamAnalytics
	Away      models.TeamAnalytics
	HomeStats models.TeamStats
	AwayStats models.TeamStats
	// Sport selects league constants; empty means NCAAB.
	Sport string
	// Coefficients default when zero.
	Coefficients models.CalibrationCoefficients
	// Market is the current consensus line, used only for value bets and
	// simulation cover rates.
	Market *models.GameOdds
}

// Predictor produces MatchupPredictions. It holds no mutable state and is
// safe for concurrent use.
type Predictor struct {
	calibration calibration.ParamsSource
	simulator   Simulator
	noMetrics   bool
}

// Option configures a Predictor.
type Option func(*Predictor)

// WithCalibration applies Platt scaling from src to every raw probability.
func WithCalibration(src calibration.ParamsSource) Option {
	return func(p *Predictor) {
		p.calibration = src
	}
}

// WithSimulator embeds a simulation summary in every prediction.
func WithSimulator(s Simulator) Option {
	return func(p *Predictor) {
		p.simulator = s
	}
}

// WithoutMetrics stops Predict from counting into the live prediction
// metrics. Backtests use it so replayed games stay out of production counters.
func WithoutMetrics() Option {
	return func(p *Predictor) {
		p.noMetrics = true
	}
}

// New creates a predictor.
func New(opts ...Option) *Predictor {
	p := &Predictor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Predict forecasts one game. It never fails: missing stats fall back to
// simpler terms and every number in the result is finite.
func (p *Predictor) Predict(in Input) models.MatchupPrediction {
	profile := sport.Lookup(in.Sport)
	coeffs := in.Coefficients.OrDefault()
	m := newMatchup(in, profile, coeffs)

	path := m.score()
	rawProb := clamp(sigmoid(path.Score()/probabilityScale), calibration.MinProbability, calibration.MaxProbability)
	prob := rawProb
	applied := false
	if p != nil && p.calibration != nil {
		if params := p.calibration.Params(); !params.IsIdentity() {
			prob = calibration.Calibrate(rawProb, params)
			applied = true
		}
	}

	proj := m.project(prob)
	confidence := m.confidence(prob)

	pred := models.MatchupPrediction{
		HomeTeam:        teamName(in.Home, in.HomeStats),
		AwayTeam:        teamName(in.Away, in.AwayStats),
		Sport:           profile.Key,
		WinProbability:  winProbability(prob),
		PredictedScore:  models.PredictedScore{Home: proj.home, Away: proj.away},
		PredictedSpread: proj.home - proj.away,
		PredictedTotal:  proj.home + proj.away,
		Confidence:      confidence,
		Trace: models.PredictionTrace{
			Model:                    path.Name(),
			Path:                     path,
			RawWinProbability:        rawProb,
			CalibratedWinProbability: prob,
			CalibrationApplied:       applied,
			ExpectedTotal:            proj.total,
			ExpectedPace:             proj.pace,
			DiscardedMargin:          proj.rawMargin,
			HomeDefensiveTier:        proj.homeDefTier,
			AwayDefensiveTier:        proj.awayDefTier,
			DataQuality:              m.dataQuality(),
			CoefficientsVersion:      coeffs.Version,
		},
	}
	pred.AlternateSpread = alternateSpread(pred, float64(pred.PredictedSpread), profile)
	pred.KeyFactors = m.keyFactors(path)
	pred.ValueBets = valueBets(pred, prob, proj.spread, in.Market)

	if p != nil && p.simulator != nil {
		req := models.SimulationRequest{
			Sport:          profile.Key,
			ExpectedMargin: proj.spread,
			ExpectedTotal:  proj.total,
		}
		if in.Market != nil {
			req.SpreadLine = in.Market.Spread
			req.TotalLine = in.Market.Total
		}
		if summary, err := p.simulator.Simulate(req); err == nil {
			pred.Simulation = &summary
		}
	}

	if !p.noMetrics {
		override := false
		if ff, ok := path.(models.FourFactorsPath); ok {
			override = ff.Override
		}
		metrics.RecordPrediction(profile.Key, path.Name(), override)
	}
	return pred
}

func teamName(a models.TeamAnalytics, s models.TeamStats) string {
	if s.TeamName != "" {
		return s.TeamName
	}
	return a.TeamName
}

// winProbability rounds to one decimal and keeps the pair summing to 100.
func winProbability(p float64) models.WinProbability {
	home := math.Round(p*1000) / 10
	away := math.Round((100-home)*10) / 10
	return models.WinProbability{Home: home, Away: away}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOr(v, fallback float64) float64 {
	if isFinite(v) {
		return v
	}
	return fallback
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
