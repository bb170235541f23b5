// Package backtest replays the prediction pipeline over historical games to
// score and tune calibration coefficients.
package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/matchup-engine/internal/analytics"
	"github.com/yourusername/matchup-engine/internal/metrics"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/predictor"
)

// minImprovement is how much lower a grid point's MAE must be to replace
// the incumbent.
const minImprovement = 1e-9

// BatchOptimizer searches for coefficients minimizing prediction error.
type BatchOptimizer interface {
	Optimize(ctx context.Context, ds Dataset, sampleSize int) (Result, error)
}

// Result is the outcome of an optimization run.
type Result struct {
	RunID        uuid.UUID                      `json:"run_id"`
	Sport        string                         `json:"sport"`
	Coefficients models.CalibrationCoefficients `json:"coefficients"`
	Baseline     Metrics                        `json:"baseline"`
	Best         Metrics                        `json:"best"`
	Evaluated    int                            `json:"evaluated"`
	Improved     bool                           `json:"improved"`
	Duration     time.Duration                  `json:"duration"`
}

// Comparison contrasts two coefficient sets on the same games. Deltas are
// B minus A, so a negative MAEDelta means B is more accurate.
type Comparison struct {
	A                   Metrics `json:"a"`
	B                   Metrics `json:"b"`
	VersionA            string  `json:"version_a"`
	VersionB            string  `json:"version_b"`
	MAEDelta            float64 `json:"mae_delta"`
	WinnerAccuracyDelta float64 `json:"winner_accuracy_delta"`
}

// Optimizer runs a deterministic grid search over coefficients.
type Optimizer struct {
	config Config
	calc   *analytics.Calculator
	logger *logrus.Logger
}

var _ BatchOptimizer = (*Optimizer)(nil)

// NewOptimizer creates an optimizer. ratings may be nil.
func NewOptimizer(cfg Config, ratings analytics.RatingLookup, logger *logrus.Logger) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid optimizer config: %w", err)
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Optimizer{
		config: cfg,
		calc:   analytics.NewCalculator(ratings),
		logger: logger,
	}, nil
}

func (o *Optimizer) evaluator(sport string) evaluator {
	return evaluator{calc: o.calc, predictor: predictor.New(predictor.WithoutMetrics()), sport: sport}
}

// Optimize returns the grid point with the lowest MAE. Defaults are
// evaluated first and are replaced only by a strictly better point. An
// empty dataset returns the defaults.
func (o *Optimizer) Optimize(ctx context.Context, ds Dataset, sampleSize int) (Result, error) {
	start := time.Now()
	result := Result{
		RunID:        uuid.New(),
		Sport:        ds.Sport,
		Coefficients: models.DefaultCoefficients(),
	}
	log := o.logger.WithFields(logrus.Fields{"run_id": result.RunID, "sport": ds.Sport})

	if sampleSize <= 0 {
		sampleSize = o.config.SampleSize
	}
	cases, skipped := ds.buildCases(sampleSize)
	if len(cases) == 0 {
		log.WithField("skipped", skipped).Warn("No evaluable games, keeping default coefficients")
		result.Duration = time.Since(start)
		metrics.RecordOptimizerRun("optimize", "success", result.Duration.Seconds())
		return result, nil
	}

	ev := o.evaluator(ds.Sport)
	baseline, err := ev.evaluate(ctx, cases, result.Coefficients)
	if err != nil {
		metrics.RecordOptimizerRun("optimize", "failure", time.Since(start).Seconds())
		return Result{}, err
	}
	baseline.Skipped = skipped
	result.Baseline = baseline
	result.Best = baseline

	points := o.config.Grid.points(models.DefaultCoefficients())
	scores := make([]Metrics, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.config.Workers)
	for i := range points {
		i := i
		g.Go(func() error {
			m, err := ev.evaluate(gctx, cases, points[i])
			if err != nil {
				return err
			}
			scores[i] = m
			metrics.RecordGridPoint()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordOptimizerRun("optimize", "failure", time.Since(start).Seconds())
		return Result{}, fmt.Errorf("grid search: %w", err)
	}

	for i, m := range scores {
		if m.MAE < result.Best.MAE-minImprovement {
			m.Skipped = skipped
			result.Best = m
			result.Coefficients = points[i]
			result.Improved = true
		}
	}
	result.Evaluated = len(points) + 1
	result.Duration = time.Since(start)

	metrics.UpdateBestMAE(result.Best.MAE)
	metrics.RecordOptimizerRun("optimize", "success", result.Duration.Seconds())
	log.WithFields(logrus.Fields{
		"games":        result.Best.Games,
		"skipped":      skipped,
		"evaluated":    result.Evaluated,
		"baseline_mae": baseline.MAE,
		"best_mae":     result.Best.MAE,
		"version":      result.Coefficients.Version,
		"duration":     result.Duration,
	}).Info("Coefficient optimization complete")
	return result, nil
}

// Validate scores one coefficient set over up to sampleSize games.
func (o *Optimizer) Validate(ctx context.Context, ds Dataset, coeffs models.CalibrationCoefficients, sampleSize int) (Metrics, error) {
	start := time.Now()
	m, err := o.validate(ctx, ds, coeffs.OrDefault(), sampleSize)
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RecordOptimizerRun("validate", status, time.Since(start).Seconds())
	return m, err
}

func (o *Optimizer) validate(ctx context.Context, ds Dataset, coeffs models.CalibrationCoefficients, sampleSize int) (Metrics, error) {
	if sampleSize <= 0 {
		sampleSize = o.config.SampleSize
	}
	cases, skipped := ds.buildCases(sampleSize)
	if len(cases) == 0 {
		return Metrics{Skipped: skipped}, ErrEmptyDataset
	}
	m, err := o.evaluator(ds.Sport).evaluate(ctx, cases, coeffs)
	if err != nil {
		return Metrics{}, err
	}
	m.Skipped = skipped
	return m, nil
}

// Compare scores a and b over the same sampled games.
func (o *Optimizer) Compare(ctx context.Context, ds Dataset, a, b models.CalibrationCoefficients, sampleSize int) (Comparison, error) {
	start := time.Now()
	a, b = a.OrDefault(), b.OrDefault()
	cmp := Comparison{VersionA: a.Version, VersionB: b.Version}

	var err error
	if cmp.A, err = o.validate(ctx, ds, a, sampleSize); err == nil {
		cmp.B, err = o.validate(ctx, ds, b, sampleSize)
	}
	if err != nil {
		metrics.RecordOptimizerRun("compare", "failure", time.Since(start).Seconds())
		return Comparison{}, fmt.Errorf("compare coefficients: %w", err)
	}
	cmp.MAEDelta = cmp.B.MAE - cmp.A.MAE
	cmp.WinnerAccuracyDelta = cmp.B.WinnerAccuracy - cmp.A.WinnerAccuracy
	metrics.RecordOptimizerRun("compare", "success", time.Since(start).Seconds())
	return cmp, nil
}
