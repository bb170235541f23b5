package models

import "time"

// GameResult is one completed game. Slices of results are ordered
// most-recent-first.
type GameResult struct {
	GameID      string    `db:"game_id" json:"game_id"`
	Date        time.Time `db:"game_date" json:"date"`
	HomeTeam    string    `db:"home_team" json:"home_team"`
	AwayTeam    string    `db:"away_team" json:"away_team"`
	HomeScore   int       `db:"home_score" json:"home_score"`
	AwayScore   int       `db:"away_score" json:"away_score"`
	Winner      string    `db:"winner" json:"winner,omitempty"`
	HomeTeamKey string    `db:"home_team_key" json:"home_team_key,omitempty"`
	AwayTeamKey string    `db:"away_team_key" json:"away_team_key,omitempty"`
}

// HistoricalGame is a completed game tagged with the season whose stats
// snapshots describe both teams.
type HistoricalGame struct {
	GameResult
	Sport  string `db:"sport" json:"sport"`
	Season int    `db:"season" json:"season"`
}

// SnapshotKey identifies one team's stats snapshot in a historical dataset.
type SnapshotKey struct {
	Season  int
	TeamKey string
}

// TeamRating is an opponent rating served by the rating cache.
type TeamRating struct {
	TeamKey             string    `db:"team_key" json:"team_key"`
	Sport               string    `db:"sport" json:"sport"`
	Season              int       `db:"season" json:"season"`
	OffensiveEfficiency float64   `db:"offensive_efficiency" json:"offensive_efficiency"`
	DefensiveEfficiency float64   `db:"defensive_efficiency" json:"defensive_efficiency"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}
