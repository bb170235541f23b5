package models

// Record is a wins/losses pair.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}

// TeamAnalytics is a per-call snapshot of one team's form and efficiency.
// It has no identity and is never persisted.
type TeamAnalytics struct {
	TeamName string `json:"team_name"`
	IsHome   bool   `json:"is_home"`

	Momentum           float64 `json:"momentum"`
	Streak             int     `json:"streak"`
	RecentForm         string  `json:"recent_form"`
	Last5Record        Record  `json:"last5_record"`
	Consistency        float64 `json:"consistency"`
	ShootingEfficiency float64 `json:"shooting_efficiency"`
	GamesAnalyzed      int     `json:"games_analyzed"`

	// Season-level efficiency before any adjustment.
	OffensiveEfficiency float64 `json:"offensive_efficiency"`
	DefensiveEfficiency float64 `json:"defensive_efficiency"`

	RecentFormApplied           bool    `json:"recent_form_applied"`
	WeightedOffensiveEfficiency float64 `json:"weighted_offensive_efficiency"`
	WeightedDefensiveEfficiency float64 `json:"weighted_defensive_efficiency"`

	StrengthOfSchedule             float64 `json:"strength_of_schedule"`
	SOSAdjustedOffensiveEfficiency float64 `json:"sos_adjusted_offensive_efficiency"`
	SOSAdjustedDefensiveEfficiency float64 `json:"sos_adjusted_defensive_efficiency"`

	TierAdjustedOffensiveEfficiency float64 `json:"tier_adjusted_offensive_efficiency"`
	TierAdjustedDefensiveEfficiency float64 `json:"tier_adjusted_defensive_efficiency"`

	AdjustedOffensiveEfficiency float64 `json:"adjusted_offensive_efficiency"`
	AdjustedDefensiveEfficiency float64 `json:"adjusted_defensive_efficiency"`
}

// NetRating is adjusted offense minus adjusted defense.
func (a TeamAnalytics) NetRating() float64 {
	return a.AdjustedOffensiveEfficiency - a.AdjustedDefensiveEfficiency
}
