package models

// WinProbability holds percentages rounded to one decimal. Home + Away == 100.
type WinProbability struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// PredictedScore is never tied.
type PredictedScore struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// AlternateSpread is a suggested line that buys onto or sells off a key number.
// Spread is in book notation for Team (negative when Team is favored).
type AlternateSpread struct {
	Spread             float64 `json:"spread"`
	Direction          string  `json:"direction"`
	Team               string  `json:"team"`
	KeyNumber          float64 `json:"key_number"`
	Reason             string  `json:"reason"`
	AdjustedConfidence float64 `json:"adjusted_confidence"`
	Risk               string  `json:"risk"`
}

// Alternate spread directions and risk tiers
const (
	DirectionBuy      = "buy"
	DirectionSell     = "sell"
	DirectionStandard = "standard"

	RiskAggressive   = "aggressive"
	RiskConservative = "conservative"
	RiskModerate     = "moderate"
)

// ValueBet is a market price the model disagrees with.
type ValueBet struct {
	Market     string  `json:"market"`
	Team       string  `json:"team"`
	Line       float64 `json:"line,omitempty"`
	Price      int     `json:"price,omitempty"`
	ModelValue float64 `json:"model_value"`
	FairValue  float64 `json:"fair_value"`
	Edge       float64 `json:"edge"`
}

// Value bet markets
const (
	MarketMoneyline = "moneyline"
	MarketSpread    = "spread"
)

// SimulationSummary is the optional Monte Carlo output embedded in a prediction.
type SimulationSummary struct {
	Iterations   int     `json:"iterations"`
	HomeWinPct   float64 `json:"home_win_pct"`
	HomeCoverPct float64 `json:"home_cover_pct,omitempty"`
	OverPct      float64 `json:"over_pct,omitempty"`
	MarginP10    float64 `json:"margin_p10"`
	MarginP50    float64 `json:"margin_p50"`
	MarginP90    float64 `json:"margin_p90"`
	TotalP10     float64 `json:"total_p10"`
	TotalP90     float64 `json:"total_p90"`
	Seed         int64   `json:"seed"`
}

// ModelPath records which scoring path produced a prediction together with
// the terms that path computed. Exactly one of FourFactorsPath or
// FallbackPath implements it.
type ModelPath interface {
	Name() string
	Score() float64
	modelPath()
}

// FourFactorsPath is taken when both teams report all four Four Factors.
type FourFactorsPath struct {
	FactorScore        float64 `json:"factor_score"`
	TempoAdjustment    float64 `json:"tempo_adjustment"`
	HomeBonus          float64 `json:"home_bonus"`
	HomeDampingFactor  float64 `json:"home_damping_factor"`
	MomentumAdjustment float64 `json:"momentum_adjustment"`
	UnblendedScore     float64 `json:"unblended_score"`
	EfficiencyScore    float64 `json:"efficiency_score"`
	Override           bool    `json:"override"`
	FinalScore         float64 `json:"final_score"`
}

// FallbackPath is taken when either team is missing a Four Factors field.
type FallbackPath struct {
	NetRatingDiff   float64 `json:"net_rating_diff"`
	CrossTerm       float64 `json:"cross_term"`
	MomentumDelta   float64 `json:"momentum_delta"`
	ShootingDelta   float64 `json:"shooting_delta"`
	HomeBonus       float64 `json:"home_bonus"`
	EfficiencyScore float64 `json:"efficiency_score"`
	FinalScore      float64 `json:"final_score"`
}

// Model path names
const (
	PathFourFactors = "four_factors"
	PathFallback    = "fallback"
)

func (FourFactorsPath) Name() string     { return PathFourFactors }
func (p FourFactorsPath) Score() float64 { return p.FinalScore }
func (FourFactorsPath) modelPath()       {}

func (FallbackPath) Name() string     { return PathFallback }
func (p FallbackPath) Score() float64 { return p.FinalScore }
func (FallbackPath) modelPath()       {}

// PredictionTrace keeps the intermediate values behind a prediction.
type PredictionTrace struct {
	Model                    string    `json:"model"`
	Path                     ModelPath `json:"path"`
	RawWinProbability        float64   `json:"raw_win_probability"`
	CalibratedWinProbability float64   `json:"calibrated_win_probability"`
	CalibrationApplied       bool      `json:"calibration_applied"`
	ExpectedTotal            float64   `json:"expected_total"`
	ExpectedPace             float64   `json:"expected_pace"`
	DiscardedMargin          float64   `json:"discarded_margin"`
	HomeDefensiveTier        string    `json:"home_defensive_tier"`
	AwayDefensiveTier        string    `json:"away_defensive_tier"`
	DataQuality              float64   `json:"data_quality"`
	CoefficientsVersion      string    `json:"coefficients_version"`
}

// MatchupPrediction is the engine's forecast for one game.
type MatchupPrediction struct {
	HomeTeam        string             `json:"home_team"`
	AwayTeam        string             `json:"away_team"`
	Sport           string             `json:"sport"`
	WinProbability  WinProbability     `json:"win_probability"`
	PredictedScore  PredictedScore     `json:"predicted_score"`
	PredictedSpread int                `json:"predicted_spread"`
	PredictedTotal  int                `json:"predicted_total"`
	AlternateSpread *AlternateSpread   `json:"alternate_spread,omitempty"`
	Confidence      float64            `json:"confidence"`
	KeyFactors      []string           `json:"key_factors"`
	ValueBets       []ValueBet         `json:"value_bets,omitempty"`
	Simulation      *SimulationSummary `json:"simulation,omitempty"`
	Trace           PredictionTrace    `json:"trace"`
}

// Favorite returns the team with the higher win probability. Home wins ties.
func (p MatchupPrediction) Favorite() string {
	if p.WinProbability.Home >= p.WinProbability.Away {
		return p.HomeTeam
	}
	return p.AwayTeam
}

// SimulationRequest is what the predictor hands an optional simulator.
// ExpectedMargin is home minus away.
type SimulationRequest struct {
	Sport          string   `json:"sport"`
	ExpectedMargin float64  `json:"expected_margin"`
	ExpectedTotal  float64  `json:"expected_total"`
	SpreadLine     *float64 `json:"spread_line,omitempty"`
	TotalLine      *float64 `json:"total_line,omitempty"`
}
