package backtest

import (
	"fmt"
	"runtime"

	"github.com/yourusername/matchup-engine/internal/config"
	"github.com/yourusername/matchup-engine/internal/models"
)

// Config configures an optimizer run.
type Config struct {
	SampleSize int
	Workers    int
	Grid       Grid
}

// Range is an inclusive parameter sweep.
type Range struct {
	Min  float64
	Max  float64
	Step float64
}

// Grid bounds the three searched coefficients.
type Grid struct {
	RecentFormWeight        Range
	SOSAdjustmentFactor     Range
	DefensiveAdjustmentBase Range
}

// DefaultGrid returns the documented search bounds.
func DefaultGrid() Grid {
	return Grid{
		RecentFormWeight:        Range{Min: 0.4, Max: 0.8, Step: 0.1},
		SOSAdjustmentFactor:     Range{Min: 0.2, Max: 0.8, Step: 0.2},
		DefensiveAdjustmentBase: Range{Min: 0.5, Max: 1.5, Step: 0.25},
	}
}

// DefaultConfig returns a config with the default grid.
func DefaultConfig() Config {
	return Config{SampleSize: 500, Workers: runtime.NumCPU(), Grid: DefaultGrid()}
}

// FromConfig converts app config to optimizer config
func FromConfig(cfg *config.OptimizerConfig) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("optimizer config is required")
	}
	out := DefaultConfig()
	if cfg.SampleSize > 0 {
		out.SampleSize = cfg.SampleSize
	}
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	return out, out.Validate()
}

// Validate validates optimizer config parameters
func (c Config) Validate() error {
	if c.SampleSize < 0 {
		return fmt.Errorf("sample size cannot be negative")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	for name, r := range map[string]Range{
		"recent_form_weight":        c.Grid.RecentFormWeight,
		"sos_adjustment_factor":     c.Grid.SOSAdjustmentFactor,
		"defensive_adjustment_base": c.Grid.DefensiveAdjustmentBase,
	} {
		if r.Step <= 0 {
			return fmt.Errorf("%s step must be positive", name)
		}
		if r.Min > r.Max {
			return fmt.Errorf("%s min must not exceed max", name)
		}
	}
	if c.Grid.RecentFormWeight.Min < 0 || c.Grid.RecentFormWeight.Max > 1 {
		return fmt.Errorf("recent_form_weight must stay within [0,1]")
	}
	return nil
}

// values expands the range, rounding away float drift.
func (r Range) values() []float64 {
	steps := int((r.Max-r.Min)/r.Step + 1e-9)
	out := make([]float64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		v := r.Min + float64(i)*r.Step
		out = append(out, float64(int64(v*1e6+0.5))/1e6)
	}
	return out
}

// points enumerates every coefficient set in the grid, in a fixed order,
// each built as its own value from base.
func (g Grid) points(base models.CalibrationCoefficients) []models.CalibrationCoefficients {
	var out []models.CalibrationCoefficients
	for _, recent := range g.RecentFormWeight.values() {
		for _, sos := range g.SOSAdjustmentFactor.values() {
			for _, def := range g.DefensiveAdjustmentBase.values() {
				c := base.WithRecentFormWeight(recent)
				c.SOSAdjustmentFactor = sos
				c.DefensiveAdjustmentBase = def
				c.Version = fmt.Sprintf("grid-r%.2f-s%.2f-d%.2f", recent, sos, def)
				out = append(out, c)
			}
		}
	}
	return out
}
