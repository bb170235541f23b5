// Package teammatch decides whether a team name seen in a game result refers
// to a known team. Providers disagree on naming ("Duke" vs "Duke Blue Devils",
// "UNC" vs "North Carolina"), so matching is fuzzy but deterministic and
// total: every input produces an answer and nothing panics.
package teammatch

import (
	"strings"
	"unicode"

	"github.com/yourusername/matchup-engine/internal/models"
)

// Identity is everything known about the team being matched.
type Identity struct {
	Name         string
	Key          string
	Abbreviation string
}

// Side is the team's side in a game.
type Side int

// Sides
const (
	SideNone Side = iota
	SideHome
	SideAway
)

// Tokens that, when left over after a leading-name match, turn the longer
// name into a different school ("Colorado" vs "Colorado State").
var institutionalQualifiers = map[string]bool{
	"state": true, "st": true, "tech": true, "am": true, "a": true, "and": true,
	"christian": true, "baptist": true, "methodist": true, "college": true,
	"southern": true, "poly": true, "polytechnic": true, "international": true,
	"wesleyan": true, "pacific": true, "atlantic": true, "central": true,
	"oh": true, "fl": true,
}

// Prefixes that turn a trailing-name match into a different school
// ("Colorado" vs "Northern Colorado").
var directionalQualifiers = map[string]bool{
	"north": true, "northern": true, "south": true, "southern": true,
	"east": true, "eastern": true, "west": true, "western": true,
	"central": true, "middle": true, "northeast": true, "northeastern": true,
	"northwest": true, "northwestern": true, "southeast": true, "southeastern": true,
	"southwest": true, "southwestern": true, "new": true, "upper": true,
}

// Matches reports whether name (and optional key) from a game result refers to team.
func Matches(team Identity, name, key string) bool {
	if team.Key != "" && key != "" {
		return normalizeKey(team.Key) == normalizeKey(key)
	}

	target := normalize(team.Name)
	candidate := normalize(name)

	if candidate != "" && isCode(candidate) {
		if candidate == normalizeKey(team.Key) || candidate == normalizeKey(team.Abbreviation) {
			return true
		}
	}
	if key != "" && team.Key == "" && normalizeKey(key) == normalizeKey(team.Abbreviation) {
		return true
	}
	if target == "" || candidate == "" {
		return false
	}
	if target == candidate {
		return true
	}

	return tokensMatch(strings.Fields(target), strings.Fields(candidate))
}

// SideOf returns the side team played in game, or SideNone.
func SideOf(team Identity, game models.GameResult) Side {
	home := Matches(team, game.HomeTeam, game.HomeTeamKey)
	away := Matches(team, game.AwayTeam, game.AwayTeamKey)
	switch {
	case home && !away:
		return SideHome
	case away && !home:
		return SideAway
	case home && away:
		// Both fuzzy-match; prefer an exact name hit.
		n := normalize(team.Name)
		if n == normalize(game.HomeTeam) {
			return SideHome
		}
		if n == normalize(game.AwayTeam) {
			return SideAway
		}
	}
	return SideNone
}

// TeamScores returns the team's and the opponent's points in game. ok is
// false when the team cannot be placed on either side.
func TeamScores(team Identity, game models.GameResult) (teamScore, oppScore int, ok bool) {
	switch SideOf(team, game) {
	case SideHome:
		return game.HomeScore, game.AwayScore, true
	case SideAway:
		return game.AwayScore, game.HomeScore, true
	}
	return 0, 0, false
}

// Opponent returns the opponent's name and key in game.
func Opponent(team Identity, game models.GameResult) (name, key string, ok bool) {
	switch SideOf(team, game) {
	case SideHome:
		return game.AwayTeam, game.AwayTeamKey, true
	case SideAway:
		return game.HomeTeam, game.HomeTeamKey, true
	}
	return "", "", false
}

// Won reports whether team won game. Scores decide; the Winner field is only
// consulted when scores are level.
func Won(team Identity, game models.GameResult) (won bool, ok bool) {
	teamScore, oppScore, ok := TeamScores(team, game)
	if !ok {
		return false, false
	}
	if teamScore != oppScore {
		return teamScore > oppScore, true
	}
	if game.Winner == "" {
		return false, false
	}
	return Matches(team, game.Winner, ""), true
}

func tokensMatch(a, b []string) bool {
	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 || len(short) == len(long) {
		return false
	}

	if hasPrefix(long, short) {
		return !institutionalQualifiers[long[len(short)]]
	}
	if hasSuffix(long, short) {
		for _, tok := range long[:len(long)-len(short)] {
			if !directionalQualifiers[tok] {
				return true
			}
		}
		return false
	}
	return false
}

func hasPrefix(long, short []string) bool {
	for i := range short {
		if long[i] != short[i] {
			return false
		}
	}
	return true
}

func hasSuffix(long, short []string) bool {
	off := len(long) - len(short)
	for i := range short {
		if long[off+i] != short[i] {
			return false
		}
	}
	return true
}

// normalize lowercases, folds "&" and strips punctuation.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "a&m", "am")
	s = strings.ReplaceAll(s, "&", " and ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '/':
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func normalizeKey(s string) string {
	return strings.ReplaceAll(normalize(s), " ", "")
}

// isCode reports whether s looks like a short team code such as "unc".
func isCode(s string) bool {
	return len(s) <= 5 && !strings.Contains(s, " ")
}
