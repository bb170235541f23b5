package predictor

import (
	"fmt"
	"math"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/oddsmath"
	"github.com/yourusername/matchup-engine/internal/sport"
)

const (
	keyNumberWindow     = 0.5
	tightKeyWindow      = 0.25
	aggressiveThreshold = 85.0
	safeThreshold       = 65.0
	// Confidence gained per half point moved in the bettor's favor.
	confidencePerHalfPoint = 3.0
)

// alternateSpread suggests buying or selling past a key number when the
// projected margin lands within half a point of one. It returns nil otherwise.
func alternateSpread(pred models.MatchupPrediction, spread float64, profile sport.Profile) *models.AlternateSpread {
	margin := math.Abs(spread)
	key, ok := nearestKeyNumber(margin, profile.KeyNumbers)
	if !ok {
		return nil
	}

	favorite, underdog := pred.HomeTeam, pred.AwayTeam
	if spread < 0 {
		favorite, underdog = underdog, favorite
	}
	bookLine := oddsmath.RoundToHalfPoint(margin)
	conf := pred.Confidence

	switch {
	case conf >= aggressiveThreshold:
		line := oddsmath.RoundToHalfPoint(-(key - 0.5))
		return &models.AlternateSpread{
			Spread:             line,
			Direction:          models.DirectionBuy,
			Team:               favorite,
			KeyNumber:          key,
			Reason:             fmt.Sprintf("High confidence: buy %s through %g (%+.1f instead of %+.1f)", favorite, key, line, -bookLine),
			AdjustedConfidence: adjustConfidence(conf, line-(-bookLine)),
			Risk:               models.RiskAggressive,
		}
	case conf <= safeThreshold:
		line := oddsmath.RoundToHalfPoint(key + 0.5)
		return &models.AlternateSpread{
			Spread:             line,
			Direction:          models.DirectionSell,
			Team:               underdog,
			KeyNumber:          key,
			Reason:             fmt.Sprintf("Low confidence: take %s %+.1f to get past %g", underdog, line, key),
			AdjustedConfidence: adjustConfidence(conf, line-bookLine),
			Risk:               models.RiskConservative,
		}
	default:
		adj := 1.0
		if math.Abs(margin-key) <= tightKeyWindow {
			adj = 1.5
		}
		line := oddsmath.RoundToHalfPoint(-bookLine + adj)
		return &models.AlternateSpread{
			Spread:             line,
			Direction:          models.DirectionStandard,
			Team:               favorite,
			KeyNumber:          key,
			Reason:             fmt.Sprintf("Projected margin sits on %g: %s %+.1f protects against a push", key, favorite, line),
			AdjustedConfidence: adjustConfidence(conf, adj),
			Risk:               models.RiskModerate,
		}
	}
}

// nearestKeyNumber returns the key number closest to margin, if any is within
// half a point.
func nearestKeyNumber(margin float64, keys []float64) (float64, bool) {
	best, found := 0.0, false
	bestDist := math.Inf(1)
	for _, k := range keys {
		d := math.Abs(margin - k)
		if d <= keyNumberWindow && d < bestDist {
			best, bestDist, found = k, d, true
		}
	}
	return best, found
}

func adjustConfidence(conf, pointsGained float64) float64 {
	halfPoints := math.Max(0, pointsGained/0.5)
	return round1(clamp(conf+confidencePerHalfPoint*halfPoints, minConfidence, maxConfidence))
}
