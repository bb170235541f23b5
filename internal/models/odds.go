package models

import (
	"time"

	"github.com/google/uuid"
)

// GameOdds is the bookmaker consensus for one game at one point in time.
// Spread is quoted for the home side (negative when home is favored).
type GameOdds struct {
	GameID        string    `json:"game_id"`
	Sport         string    `json:"sport"`
	HomeTeam      string    `json:"home_team"`
	AwayTeam      string    `json:"away_team"`
	Spread        *float64  `json:"spread,omitempty"`
	Total         *float64  `json:"total,omitempty"`
	HomeMoneyline *int      `json:"home_moneyline,omitempty"`
	AwayMoneyline *int      `json:"away_moneyline,omitempty"`
	Bookmakers    int       `json:"bookmakers"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TrackedPrediction is a stored prediction together with the market line
// captured when it was made.
type TrackedPrediction struct {
	ID             uuid.UUID `db:"id" json:"id"`
	GameID         string    `db:"game_id" json:"game_id"`
	Sport          string    `db:"sport" json:"sport"`
	HomeTeam       string    `db:"home_team" json:"home_team"`
	AwayTeam       string    `db:"away_team" json:"away_team"`
	GameTime       time.Time `db:"game_time" json:"game_time"`
	OriginalSpread *float64  `db:"original_spread" json:"original_spread,omitempty"`
	OriginalTotal  *float64  `db:"original_total" json:"original_total,omitempty"`
	OriginalHomeML *int      `db:"original_home_ml" json:"original_home_ml,omitempty"`
	OriginalAwayML *int      `db:"original_away_ml" json:"original_away_ml,omitempty"`
	PredictedAt    time.Time `db:"predicted_at" json:"predicted_at"`
	Validated      bool      `db:"validated" json:"validated"`
}

// RepredictionHistory summarises earlier re-predictions of one tracked prediction.
type RepredictionHistory struct {
	PredictionID      uuid.UUID  `db:"prediction_id" json:"prediction_id"`
	Count             int        `db:"count" json:"count"`
	LastRepredictedAt *time.Time `db:"last_repredicted_at" json:"last_repredicted_at,omitempty"`
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
