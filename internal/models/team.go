package models

// TeamStats is one team's season aggregate. Every optional field is nil when
// the stats provider did not report it. Percentages may arrive either as
// fractions (0.55) or as percentages (55.0); use NormalizePct before comparing.
type TeamStats struct {
	TeamKey      string `db:"team_key" json:"team_key"`
	TeamName     string `db:"team_name" json:"team_name"`
	Abbreviation string `db:"abbreviation" json:"abbreviation,omitempty"`
	Season       int    `db:"season" json:"season,omitempty"`
	Wins         int    `db:"wins" json:"wins"`
	Losses       int    `db:"losses" json:"losses"`

	PointsPerGame        *float64 `db:"points_per_game" json:"points_per_game,omitempty"`
	PointsAllowedPerGame *float64 `db:"points_allowed_per_game" json:"points_allowed_per_game,omitempty"`
	FieldGoalPct         *float64 `db:"field_goal_pct" json:"field_goal_pct,omitempty"`
	ThreePointPct        *float64 `db:"three_point_pct" json:"three_point_pct,omitempty"`
	FreeThrowPct         *float64 `db:"free_throw_pct" json:"free_throw_pct,omitempty"`

	// Four Factors
	EffectiveFGPct      *float64 `db:"effective_fg_pct" json:"effective_fg_pct,omitempty"`
	TurnoverPct         *float64 `db:"turnover_pct" json:"turnover_pct,omitempty"`
	OffensiveReboundPct *float64 `db:"offensive_rebound_pct" json:"offensive_rebound_pct,omitempty"`
	FreeThrowRate       *float64 `db:"free_throw_rate" json:"free_throw_rate,omitempty"`

	Pace                *float64 `db:"pace" json:"pace,omitempty"`
	OffensiveEfficiency *float64 `db:"offensive_efficiency" json:"offensive_efficiency,omitempty"`
	DefensiveEfficiency *float64 `db:"defensive_efficiency" json:"defensive_efficiency,omitempty"`
}

// HasFourFactors reports whether all four Four Factors fields are present.
func (s TeamStats) HasFourFactors() bool {
	return s.EffectiveFGPct != nil && s.TurnoverPct != nil &&
		s.OffensiveReboundPct != nil && s.FreeThrowRate != nil
}

// GamesPlayed returns wins plus losses
func (s TeamStats) GamesPlayed() int {
	return s.Wins + s.Losses
}

// NormalizePct returns v on a 0-100 scale. Values at or below 1 are treated
// as fractions.
func NormalizePct(v float64) float64 {
	if v <= 1 {
		return v * 100
	}
	return v
}

// Float returns a pointer to v. Handy for optional stat fields.
func Float(v float64) *float64 {
	return &v
}

// ValueOr returns *p, or fallback when p is nil.
func ValueOr(p *float64, fallback float64) float64 {
	if p == nil {
		return fallback
	}
	return *p
}
