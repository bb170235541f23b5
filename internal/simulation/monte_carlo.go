// Package simulation runs Monte Carlo draws around a projected margin and
// total. It implements predictor.Simulator.
package simulation

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/yourusername/matchup-engine/internal/models"
	"github.com/yourusername/matchup-engine/internal/sport"
)

const defaultIterations = 10000

// Config configures monte carlo simulation
type Config struct {
	Iterations int   `mapstructure:"iterations" validate:"omitempty,min=100,max=1000000"`
	Seed       int64 `mapstructure:"seed"`
}

// MonteCarlo draws margin ~ N(expected margin, sport spread sd) and
// total ~ N(expected total, sport total sd).
type MonteCarlo struct {
	iterations int
	seed       int64
}

// NewMonteCarlo creates a simulator. A zero seed derives one from each
// request so identical requests always produce identical summaries.
func NewMonteCarlo(cfg Config) *MonteCarlo {
	if cfg.Iterations <= 0 {
		cfg.Iterations = defaultIterations
	}
	return &MonteCarlo{iterations: cfg.Iterations, seed: cfg.Seed}
}

// Simulate runs the draws for one matchup.
func (m *MonteCarlo) Simulate(req models.SimulationRequest) (models.SimulationSummary, error) {
	if !finite(req.ExpectedMargin) || !finite(req.ExpectedTotal) {
		return models.SimulationSummary{}, fmt.Errorf("simulate: non-finite projection (margin=%v total=%v)", req.ExpectedMargin, req.ExpectedTotal)
	}
	profile := sport.Lookup(req.Sport)

	seed := m.seed
	if seed == 0 {
		seed = requestSeed(req)
	}
	rng := rand.New(rand.NewSource(seed))

	margins := make([]float64, m.iterations)
	totals := make([]float64, m.iterations)
	var homeWins, homeCovers, overs, pushes int

	for i := 0; i < m.iterations; i++ {
		margin := req.ExpectedMargin + rng.NormFloat64()*profile.SpreadStdDev
		total := req.ExpectedTotal + rng.NormFloat64()*profile.TotalStdDev
		margins[i] = margin
		totals[i] = total

		if margin > 0 {
			homeWins++
		}
		if req.SpreadLine != nil {
			switch covered := margin + *req.SpreadLine; {
			case covered > 0:
				homeCovers++
			case covered == 0:
				pushes++
			}
		}
		if req.TotalLine != nil && total > *req.TotalLine {
			overs++
		}
	}

	n := float64(m.iterations)
	summary := models.SimulationSummary{
		Iterations: m.iterations,
		HomeWinPct: round1(float64(homeWins) / n * 100),
		MarginP10:  round1(percentile(margins, 0.10)),
		MarginP50:  round1(percentile(margins, 0.50)),
		MarginP90:  round1(percentile(margins, 0.90)),
		TotalP10:   round1(percentile(totals, 0.10)),
		TotalP90:   round1(percentile(totals, 0.90)),
		Seed:       seed,
	}
	if req.SpreadLine != nil && pushes < m.iterations {
		summary.HomeCoverPct = round1(float64(homeCovers) / (n - float64(pushes)) * 100)
	}
	if req.TotalLine != nil {
		summary.OverPct = round1(float64(overs) / n * 100)
	}
	return summary, nil
}

// requestSeed hashes the request so the seed is stable across runs.
func requestSeed(req models.SimulationRequest) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%.4f|%.4f", req.Sport, req.ExpectedMargin, req.ExpectedTotal)
	if req.SpreadLine != nil {
		fmt.Fprintf(h, "|s%.2f", *req.SpreadLine)
	}
	if req.TotalLine != nil {
		fmt.Fprintf(h, "|t%.2f", *req.TotalLine)
	}
	seed := int64(h.Sum64() & math.MaxInt64)
	if seed == 0 {
		seed = 1
	}
	return seed
}

// percentile sorts values in place.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	idx := int(math.Floor(p * float64(len(values)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(values) {
		idx = len(values) - 1
	}
	return values[idx]
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
