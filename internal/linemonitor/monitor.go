package linemonitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/matchup-engine/internal/logger"
	"github.com/yourusername/matchup-engine/internal/metrics"
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/teammatch"
)

const defaultLeaseTTL = 5 * time.Minute

// OddsProvider returns current consensus odds for every listed game of a sport.
type OddsProvider interface {
	FetchConsensus(ctx context.Context, sport string) ([]models.GameOdds, error)
}

// PredictionSource lists unvalidated tracked predictions whose games start
// strictly between from and to.
type PredictionSource interface {
	ListTrackedPredictions(ctx context.Context, sport string, from, to time.Time) ([]models.TrackedPrediction, error)
}

// HistoryStore reads re-prediction history. Missing ids mean no history.
type HistoryStore interface {
	GetRepredictionHistory(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.RepredictionHistory, error)
}

// Repredictor receives actionable movements. Persisting the new prediction
// is its concern.
type Repredictor interface {
	Repredict(ctx context.Context, movement LineMovement) error
}

// SportError records a per-sport failure that did not abort the sweep.
type SportError struct {
	Sport string `json:"sport"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// MonitoringResult summarises one sweep.
type MonitoringResult struct {
	SweepID          uuid.UUID      `json:"sweep_id"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      time.Time      `json:"completed_at"`
	Sports           []string       `json:"sports"`
	Checked          int            `json:"checked"`
	Unmatched        int            `json:"unmatched"`
	SignificantMoves int            `json:"significant_moves"`
	Repredicted      int            `json:"repredicted"`
	Movements        []LineMovement `json:"movements"`
	Errors           []SportError   `json:"errors"`
	SkippedSports    []string       `json:"skipped_sports"`
}

// Monitor runs line movement sweeps.
type Monitor struct {
	odds        OddsProvider
	predictions PredictionSource
	history     HistoryStore
	repredictor Repredictor
	locker      Locker
	leaseTTL    time.Duration
	logger      *logger.MonitorLogger
	now         func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRepredictor hands eligible movements to r.
func WithRepredictor(r Repredictor) Option {
	return func(m *Monitor) { m.repredictor = r }
}

// WithLocker replaces the in-process locker.
func WithLocker(l Locker, ttl time.Duration) Option {
	return func(m *Monitor) {
		m.locker = l
		if ttl > 0 {
			m.leaseTTL = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// NewMonitor creates a line movement monitor.
func NewMonitor(odds OddsProvider, predictions PredictionSource, history HistoryStore, log *logrus.Logger, opts ...Option) *Monitor {
	if log == nil {
		log = logrus.New()
	}
	m := &Monitor{
		odds:        odds,
		predictions: predictions,
		history:     history,
		locker:      NewMemoryLocker(),
		leaseTTL:    defaultLeaseTTL,
		logger:      logger.NewMonitorLogger(log),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MonitorOddsMovement sweeps each sport once: one odds fetch per sport,
// every tracked prediction in the window analyzed against it. A failing
// sport is recorded in Errors and the sweep moves on.
func (m *Monitor) MonitorOddsMovement(ctx context.Context, sports []string, th Thresholds) (MonitoringResult, error) {
	th = th.OrDefault()
	result := MonitoringResult{
		SweepID:       uuid.New(),
		StartedAt:     m.now(),
		Sports:        sports,
		Movements:     []LineMovement{},
		Errors:        []SportError{},
		SkippedSports: []string{},
	}
	m.logger.LogSweepStarted(result.SweepID.String(), sports)

	for _, sport := range sports {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		m.sweepSport(ctx, sport, th, &result)
	}

	result.CompletedAt = m.now()
	duration := result.CompletedAt.Sub(result.StartedAt)
	status := "success"
	switch {
	case len(result.Errors) > 0 && len(result.Errors) >= len(sports):
		status = "failure"
	case len(result.Errors) > 0:
		status = "partial"
	}
	metrics.RecordSweep(status, duration.Seconds())
	m.logger.LogSweepCompleted(result.SweepID.String(), result.Checked, result.SignificantMoves, result.Repredicted,
		len(result.Errors), float64(duration.Microseconds())/1000)
	return result, nil
}

func (m *Monitor) sweepSport(ctx context.Context, sport string, th Thresholds, result *MonitoringResult) {
	fail := func(stage string, err error) {
		m.logger.LogSportError(sport, stage, err)
		result.Errors = append(result.Errors, SportError{Sport: sport, Stage: stage, Error: err.Error()})
	}

	release, err := m.locker.Acquire(ctx, sport, m.leaseTTL)
	if errors.Is(err, ErrSweepInProgress) {
		m.logger.LogSportLocked(sport)
		metrics.RecordSportSkipped(sport)
		result.SkippedSports = append(result.SkippedSports, sport)
		return
	}
	if err != nil {
		fail("lease", err)
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			m.logger.WithError(err).WithField("sport", sport).Warn("Failed to release sweep lease")
		}
	}()

	now := m.now()
	from, to := th.window(now)
	tracked, err := m.predictions.ListTrackedPredictions(ctx, sport, from, to)
	if err != nil {
		fail("list_predictions", err)
		return
	}
	candidates := tracked[:0:0]
	for _, p := range tracked {
		if !p.Validated && th.inWindow(p.GameTime, now) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return
	}

	odds, err := m.odds.FetchConsensus(ctx, sport)
	if err != nil {
		metrics.RecordOddsFetchError(sport)
		fail("fetch_odds", err)
		return
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, p := range candidates {
		ids = append(ids, p.ID)
	}
	history, err := m.history.GetRepredictionHistory(ctx, ids)
	if err != nil {
		fail("history", err)
		return
	}

	for _, p := range candidates {
		current, ok := matchOdds(p, odds)
		if !ok {
			result.Unmatched++
			continue
		}
		result.Checked++
		mv := AnalyzeLineMovement(p, current, history[p.ID], th, now)
		metrics.RecordLineMovement(sport, mv.State)
		if !mv.SignificantMove {
			m.logger.LogQuietMove(p.ID.String(), p.GameID, sport, mv.Reasons)
			result.Movements = append(result.Movements, mv)
			continue
		}
		result.SignificantMoves++
		m.logger.LogSignificantMove(p.ID.String(), p.GameID, sport, mv.State, mv.SpreadMovement, mv.TotalMovement,
			mv.HomeMLChangePercent, mv.AwayMLChangePercent, mv.Reasons)

		if mv.ShouldRepredict && m.repredictor != nil {
			if err := m.repredictor.Repredict(ctx, mv); err != nil {
				fail("repredict", fmt.Errorf("prediction %s: %w", p.ID, err))
			} else {
				mv.State = StateRepredicted
				result.Repredicted++
				m.logger.LogRepredictionTriggered(p.ID.String(), p.GameID, mv.RepredictionCount+1)
			}
		}
		result.Movements = append(result.Movements, mv)
	}
}

// matchOdds finds the consensus line for a tracked prediction, by game id
// first and then by team names.
func matchOdds(p models.TrackedPrediction, odds []models.GameOdds) (models.GameOdds, bool) {
	if p.GameID != "" {
		for _, o := range odds {
			if o.GameID == p.GameID {
				return o, true
			}
		}
	}
	home := teammatch.Identity{Name: p.HomeTeam}
	away := teammatch.Identity{Name: p.AwayTeam}
	for _, o := range odds {
		if teammatch.Matches(home, o.HomeTeam, "") && teammatch.Matches(away, o.AwayTeam, "") {
			return o, true
		}
	}
	return models.GameOdds{}, false
}
