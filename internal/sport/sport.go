// Package sport holds per-league constants used by the analytics and
// prediction components.
package sport

import "strings"

// Sport keys
const (
	NCAAB = "basketball_ncaab"
	NBA   = "basketball_nba"
	WNBA  = "basketball_wnba"
)

// Profile describes league-wide averages for one sport.
type Profile struct {
	Key           string
	Name          string
	LeaguePace    float64
	LeaguePPG     float64
	HomeAdvantage float64
	// ExpectedPace is used for score projection when neither team reports pace.
	ExpectedPace float64
	KeyNumbers   []float64
	SpreadStdDev float64
	TotalStdDev  float64
}

// LeagueEfficiency is points per 100 possessions for an average team.
func (p Profile) LeagueEfficiency() float64 {
	if p.LeaguePace <= 0 {
		return 100
	}
	return p.LeaguePPG / p.LeaguePace * 100
}

var profiles = map[string]Profile{
	NCAAB: {
		Key:           NCAAB,
		Name:          "NCAA Men's Basketball",
		LeaguePace:    68,
		LeaguePPG:     72,
		HomeAdvantage: 3.5,
		ExpectedPace:  68,
		KeyNumbers:    []float64{3, 4, 7, 10},
		SpreadStdDev:  11,
		TotalStdDev:   14,
	},
	NBA: {
		Key:           NBA,
		Name:          "NBA",
		LeaguePace:    99,
		LeaguePPG:     114,
		HomeAdvantage: 2.5,
		ExpectedPace:  99,
		KeyNumbers:    []float64{3, 5, 7, 10},
		SpreadStdDev:  12,
		TotalStdDev:   18,
	},
	WNBA: {
		Key:           WNBA,
		Name:          "WNBA",
		LeaguePace:    80,
		LeaguePPG:     82,
		HomeAdvantage: 2.5,
		ExpectedPace:  80,
		KeyNumbers:    []float64{3, 5, 7, 10},
		SpreadStdDev:  11,
		TotalStdDev:   14,
	},
}

var aliases = map[string]string{
	"ncaab":                   NCAAB,
	"cbb":                     NCAAB,
	"mens-college-basketball": NCAAB,
	"nba":                     NBA,
	"wnba":                    WNBA,
}

// Lookup returns the profile for key. Empty and unknown keys resolve to NCAAB.
func Lookup(key string) Profile {
	p, _ := Find(key)
	return p
}

// Find is Lookup plus a flag reporting whether key was recognised.
func Find(key string) (Profile, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := aliases[k]; ok {
		k = alias
	}
	if p, ok := profiles[k]; ok {
		return p, true
	}
	return profiles[NCAAB], false
}

// Keys returns every supported sport key.
func Keys() []string {
	return []string{NCAAB, NBA, WNBA}
}
