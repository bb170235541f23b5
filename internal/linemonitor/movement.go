// Package linemonitor compares tracked predictions against live consensus
// odds and decides which ones have moved enough to be re-predicted.
package linemonitor

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/oddsmath"
)

// Movement states. A tracked prediction starts active and lands in exactly
// one of these after analysis.
const (
	StateNoMove      = "no_move"
	StateEligible    = "eligible"
	StateCooldown    = "cooldown"
	StateMaxReached  = "max_reached"
	StateRepredicted = "repredicted"
	StateExpired     = "expired"
)

// ReasonGameStarted is attached to every movement for a game already under way.
const ReasonGameStarted = "Game has already started - live games are excluded from re-prediction"

// Thresholds control significance, eligibility and the monitoring window.
type Thresholds struct {
	SpreadThreshold      float64       `mapstructure:"spread_threshold" validate:"gte=0"`
	TotalThreshold       float64       `mapstructure:"total_threshold" validate:"gte=0"`
	MoneylineThreshold   float64       `mapstructure:"moneyline_threshold" validate:"gte=0,lte=100"`
	MaxRepredictions     int           `mapstructure:"max_repredictions" validate:"gte=0"`
	Cooldown             time.Duration `mapstructure:"cooldown"`
	HoursBeforeGame      float64       `mapstructure:"hours_before_game" validate:"gte=0"`
	MinMinutesBeforeGame float64       `mapstructure:"min_minutes_before_game" validate:"gte=0"`
}

// DefaultThresholds returns the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SpreadThreshold:      1.5,
		TotalThreshold:       2.0,
		MoneylineThreshold:   5,
		MaxRepredictions:     3,
		Cooldown:             60 * time.Minute,
		HoursBeforeGame:      24,
		MinMinutesBeforeGame: 30,
	}
}

// OrDefault returns DefaultThresholds when t is entirely unset. A partly set
// value is used as is, so an explicit zero cooldown or max_repredictions holds.
func (t Thresholds) OrDefault() Thresholds {
	if t == (Thresholds{}) {
		return DefaultThresholds()
	}
	return t
}

// WithDefaults fills every zero field from DefaultThresholds. Use it only
// where zero means "not set".
func (t Thresholds) WithDefaults() Thresholds {
	d := DefaultThresholds()
	if t.SpreadThreshold == 0 {
		t.SpreadThreshold = d.SpreadThreshold
	}
	if t.TotalThreshold == 0 {
		t.TotalThreshold = d.TotalThreshold
	}
	if t.MoneylineThreshold == 0 {
		t.MoneylineThreshold = d.MoneylineThreshold
	}
	if t.MaxRepredictions == 0 {
		t.MaxRepredictions = d.MaxRepredictions
	}
	if t.Cooldown == 0 {
		t.Cooldown = d.Cooldown
	}
	if t.HoursBeforeGame == 0 {
		t.HoursBeforeGame = d.HoursBeforeGame
	}
	if t.MinMinutesBeforeGame == 0 {
		t.MinMinutesBeforeGame = d.MinMinutesBeforeGame
	}
	return t
}

// window returns the open interval of game start times worth monitoring.
func (t Thresholds) window(now time.Time) (from, to time.Time) {
	from = now.Add(time.Duration(t.MinMinutesBeforeGame * float64(time.Minute)))
	to = now.Add(time.Duration(t.HoursBeforeGame * float64(time.Hour)))
	return from, to
}

// inWindow reports whether gameTime lies strictly inside the window.
func (t Thresholds) inWindow(gameTime, now time.Time) bool {
	from, to := t.window(now)
	return gameTime.After(from) && gameTime.Before(to)
}

// LineMovement compares one tracked prediction against current odds.
type LineMovement struct {
	PredictionID   uuid.UUID `json:"prediction_id"`
	GameID         string    `json:"game_id"`
	Sport          string    `json:"sport"`
	HomeTeam       string    `json:"home_team"`
	AwayTeam       string    `json:"away_team"`
	GameTime       time.Time `json:"game_time"`
	MinutesToStart float64   `json:"minutes_to_start"`

	OriginalSpread *float64 `json:"original_spread,omitempty"`
	CurrentSpread  *float64 `json:"current_spread,omitempty"`
	SpreadMovement float64  `json:"spread_movement"`

	OriginalTotal *float64 `json:"original_total,omitempty"`
	CurrentTotal  *float64 `json:"current_total,omitempty"`
	TotalMovement float64  `json:"total_movement"`

	OriginalHomeML      *int    `json:"original_home_ml,omitempty"`
	CurrentHomeML       *int    `json:"current_home_ml,omitempty"`
	OriginalAwayML      *int    `json:"original_away_ml,omitempty"`
	CurrentAwayML       *int    `json:"current_away_ml,omitempty"`
	HomeMLChangePercent float64 `json:"home_ml_change_percent"`
	AwayMLChangePercent float64 `json:"away_ml_change_percent"`

	SignificantSpreadMove bool `json:"significant_spread_move"`
	SignificantTotalMove  bool `json:"significant_total_move"`
	SignificantMLMove     bool `json:"significant_ml_move"`
	SignificantMove       bool `json:"significant_move"`

	RepredictionCount int        `json:"reprediction_count"`
	LastRepredictedAt *time.Time `json:"last_repredicted_at,omitempty"`

	ShouldRepredict bool     `json:"should_repredict"`
	State           string   `json:"state"`
	Reasons         []string `json:"reasons"`
}

// AnalyzeLineMovement diffs the captured line against current odds and
// decides eligibility. It is pure: now is supplied by the caller.
func AnalyzeLineMovement(pred models.TrackedPrediction, odds models.GameOdds, history models.RepredictionHistory, th Thresholds, now time.Time) LineMovement {
	th = th.OrDefault()
	m := LineMovement{
		PredictionID:      pred.ID,
		GameID:            pred.GameID,
		Sport:             pred.Sport,
		HomeTeam:          pred.HomeTeam,
		AwayTeam:          pred.AwayTeam,
		GameTime:          pred.GameTime,
		MinutesToStart:    pred.GameTime.Sub(now).Minutes(),
		OriginalSpread:    pred.OriginalSpread,
		CurrentSpread:     odds.Spread,
		OriginalTotal:     pred.OriginalTotal,
		CurrentTotal:      odds.Total,
		OriginalHomeML:    pred.OriginalHomeML,
		CurrentHomeML:     odds.HomeMoneyline,
		OriginalAwayML:    pred.OriginalAwayML,
		CurrentAwayML:     odds.AwayMoneyline,
		RepredictionCount: history.Count,
		LastRepredictedAt: history.LastRepredictedAt,
		Reasons:           []string{},
	}

	if d, ok := lineDelta(pred.OriginalSpread, odds.Spread); ok {
		m.SpreadMovement = d
		m.SignificantSpreadMove = d >= th.SpreadThreshold
	}
	if d, ok := lineDelta(pred.OriginalTotal, odds.Total); ok {
		m.TotalMovement = d
		m.SignificantTotalMove = d >= th.TotalThreshold
	}
	homeChange, homeOK := impliedDelta(pred.OriginalHomeML, odds.HomeMoneyline)
	awayChange, awayOK := impliedDelta(pred.OriginalAwayML, odds.AwayMoneyline)
	m.HomeMLChangePercent = homeChange
	m.AwayMLChangePercent = awayChange
	m.SignificantMLMove = (homeOK && homeChange >= th.MoneylineThreshold) || (awayOK && awayChange >= th.MoneylineThreshold)
	m.SignificantMove = m.SignificantSpreadMove || m.SignificantTotalMove || m.SignificantMLMove

	if m.SignificantSpreadMove {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Spread moved %.1f points (%s -> %s)", m.SpreadMovement, fmtLine(pred.OriginalSpread), fmtLine(odds.Spread)))
	}
	if m.SignificantTotalMove {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Total moved %.1f points (%s -> %s)", m.TotalMovement, fmtLine(pred.OriginalTotal), fmtLine(odds.Total)))
	}
	if m.SignificantMLMove {
		m.Reasons = append(m.Reasons, fmt.Sprintf("Moneyline implied probability moved %.1f%% home / %.1f%% away", homeChange, awayChange))
	}

	switch {
	case m.MinutesToStart <= 0:
		m.State = StateExpired
		m.Reasons = append(m.Reasons, ReasonGameStarted)
	case !m.SignificantMove:
		m.State = StateNoMove
		m.Reasons = append(m.Reasons, fmt.Sprintf("No significant movement (spread %.1f, total %.1f, moneyline %.1f%%/%.1f%%)",
			m.SpreadMovement, m.TotalMovement, homeChange, awayChange))
	case history.Count >= th.MaxRepredictions:
		m.State = StateMaxReached
		m.Reasons = append(m.Reasons, fmt.Sprintf("Maximum re-predictions reached (%d/%d)", history.Count, th.MaxRepredictions))
	case history.LastRepredictedAt != nil && now.Sub(*history.LastRepredictedAt) < th.Cooldown:
		remaining := th.Cooldown - now.Sub(*history.LastRepredictedAt)
		m.State = StateCooldown
		m.Reasons = append(m.Reasons, fmt.Sprintf("Cooldown active, %d minutes remaining", int(math.Ceil(remaining.Minutes()))))
	default:
		m.State = StateEligible
		m.ShouldRepredict = true
		m.Reasons = append(m.Reasons, fmt.Sprintf("Eligible for re-prediction (%d/%d used)", history.Count, th.MaxRepredictions))
	}
	return m
}

func lineDelta(original, current *float64) (float64, bool) {
	if original == nil || current == nil {
		return 0, false
	}
	d := math.Abs(*current - *original)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

// impliedDelta is the absolute change in implied probability, in
// percentage points.
func impliedDelta(original, current *int) (float64, bool) {
	if original == nil || current == nil {
		return 0, false
	}
	before, err := oddsmath.AmericanToImpliedProbability(*original)
	if err != nil {
		return 0, false
	}
	after, err := oddsmath.AmericanToImpliedProbability(*current)
	if err != nil {
		return 0, false
	}
	// rounded so a 60% -> 80% move compares equal to a 20 point threshold
	return math.Round(math.Abs(after-before)*100*1e6) / 1e6, true
}

func fmtLine(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f", *v)
}
