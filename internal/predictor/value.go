package predictor

import (
	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/oddsmath"
)

const (
	// Minimum gap between model and vig-free market probability, in points.
	moneylineEdge = 3.0
	// Minimum gap between projected margin and the market spread.
	spreadEdge = 2.0
)

// valueBets compares the prediction against the market consensus.
func valueBets(pred models.MatchupPrediction, p, modelMargin float64, market *models.GameOdds) []models.ValueBet {
	if market == nil {
		return nil
	}
	var bets []models.ValueBet

	if market.HomeMoneyline != nil && market.AwayMoneyline != nil {
		fairHome, fairAway, err := oddsmath.NoVigProbabilities(*market.HomeMoneyline, *market.AwayMoneyline)
		if err == nil {
			if edge := (p - fairHome) * 100; edge >= moneylineEdge {
				bets = append(bets, models.ValueBet{
					Market:     models.MarketMoneyline,
					Team:       pred.HomeTeam,
					Price:      *market.HomeMoneyline,
					ModelValue: round1(p * 100),
					FairValue:  round1(fairHome * 100),
					Edge:       round1(edge),
				})
			}
			if edge := ((1 - p) - fairAway) * 100; edge >= moneylineEdge {
				bets = append(bets, models.ValueBet{
					Market:     models.MarketMoneyline,
					Team:       pred.AwayTeam,
					Price:      *market.AwayMoneyline,
					ModelValue: round1((1 - p) * 100),
					FairValue:  round1(fairAway * 100),
					Edge:       round1(edge),
				})
			}
		}
	}

	if market.Spread != nil && isFinite(*market.Spread) {
		// A home line of -3 is covered when the home margin exceeds 3.
		edge := modelMargin + *market.Spread
		switch {
		case edge >= spreadEdge:
			bets = append(bets, models.ValueBet{
				Market:     models.MarketSpread,
				Team:       pred.HomeTeam,
				Line:       *market.Spread,
				ModelValue: round1(modelMargin),
				FairValue:  round1(-*market.Spread),
				Edge:       round1(edge),
			})
		case edge <= -spreadEdge:
			bets = append(bets, models.ValueBet{
				Market:     models.MarketSpread,
				Team:       pred.AwayTeam,
				Line:       -*market.Spread,
				ModelValue: round1(-modelMargin),
				FairValue:  round1(*market.Spread),
				Edge:       round1(-edge),
			})
		}
	}
	return bets
}
