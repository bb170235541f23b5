package models

import (
	"fmt"
	"math"
)

// DefaultCoefficientsVersion labels the hand-tuned defaults.
const DefaultCoefficientsVersion = "default-v1"

const pairTolerance = 1e-6

// PercentileMultipliers scale a side's expected points by the opponent's
// defensive percentile tier.
type PercentileMultipliers struct {
	Elite        float64 `mapstructure:"elite" json:"elite" validate:"gt=0"`
	Good         float64 `mapstructure:"good" json:"good" validate:"gt=0"`
	Average      float64 `mapstructure:"average" json:"average" validate:"gt=0"`
	BelowAverage float64 `mapstructure:"below_average" json:"below_average" validate:"gt=0"`
	Poor         float64 `mapstructure:"poor" json:"poor" validate:"gt=0"`
}

// CalibrationCoefficients are the tunable weights consumed by the analytics
// calculator and the predictor. Values are copied, never mutated in place.
//
// Complementary pairs (RecentFormWeight/SeasonAvgWeight and
// WeightedEffWeight/TierAdjustedWeight) must each sum to 1. The engine does
// not enforce this; Validate is available to callers that want to.
type CalibrationCoefficients struct {
	Version                 string                `mapstructure:"version" json:"version"`
	HomeAdvantageScale      float64               `mapstructure:"home_advantage_scale" json:"home_advantage_scale" validate:"gte=0,lte=3"`
	RecentFormWeight        float64               `mapstructure:"recent_form_weight" json:"recent_form_weight" validate:"gte=0,lte=1"`
	SeasonAvgWeight         float64               `mapstructure:"season_avg_weight" json:"season_avg_weight" validate:"gte=0,lte=1"`
	SOSAdjustmentFactor     float64               `mapstructure:"sos_adjustment_factor" json:"sos_adjustment_factor" validate:"gte=0,lte=2"`
	WeightedEffWeight       float64               `mapstructure:"weighted_eff_weight" json:"weighted_eff_weight" validate:"gte=0,lte=1"`
	TierAdjustedWeight      float64               `mapstructure:"tier_adjusted_weight" json:"tier_adjusted_weight" validate:"gte=0,lte=1"`
	DefensiveAdjustmentBase float64               `mapstructure:"defensive_adjustment_base" json:"defensive_adjustment_base" validate:"gte=0,lte=3"`
	PercentileMultipliers   PercentileMultipliers `mapstructure:"percentile_multipliers" json:"percentile_multipliers"`
}

// DefaultCoefficients returns the documented defaults.
func DefaultCoefficients() CalibrationCoefficients {
	return CalibrationCoefficients{
		Version:                 DefaultCoefficientsVersion,
		HomeAdvantageScale:      1.0,
		RecentFormWeight:        0.6,
		SeasonAvgWeight:         0.4,
		SOSAdjustmentFactor:     0.4,
		WeightedEffWeight:       0.3,
		TierAdjustedWeight:      0.7,
		DefensiveAdjustmentBase: 1.0,
		PercentileMultipliers: PercentileMultipliers{
			Elite:        0.94,
			Good:         0.97,
			Average:      1.00,
			BelowAverage: 1.03,
			Poor:         1.06,
		},
	}
}

// IsZero reports whether c was never populated.
func (c CalibrationCoefficients) IsZero() bool {
	return c == CalibrationCoefficients{}
}

// OrDefault returns c, or the defaults when c is the zero value.
func (c CalibrationCoefficients) OrDefault() CalibrationCoefficients {
	if c.IsZero() {
		return DefaultCoefficients()
	}
	return c
}

// Validate checks the caller contract on complementary pairs and ranges.
func (c CalibrationCoefficients) Validate() error {
	if math.Abs(c.RecentFormWeight+c.SeasonAvgWeight-1) > pairTolerance {
		return fmt.Errorf("recent_form_weight + season_avg_weight = %.4f: %w",
			c.RecentFormWeight+c.SeasonAvgWeight, ErrCoefficientPair)
	}
	if math.Abs(c.WeightedEffWeight+c.TierAdjustedWeight-1) > pairTolerance {
		return fmt.Errorf("weighted_eff_weight + tier_adjusted_weight = %.4f: %w",
			c.WeightedEffWeight+c.TierAdjustedWeight, ErrCoefficientPair)
	}
	if c.HomeAdvantageScale < 0 || c.SOSAdjustmentFactor < 0 || c.DefensiveAdjustmentBase < 0 {
		return fmt.Errorf("negative scale factor: %w", ErrCoefficientRange)
	}
	return nil
}

// WithRecentFormWeight returns a copy with the recent/season pair set to w/1-w.
func (c CalibrationCoefficients) WithRecentFormWeight(w float64) CalibrationCoefficients {
	c.RecentFormWeight = w
	c.SeasonAvgWeight = 1 - w
	return c
}
