// Package calibration applies Platt scaling to raw win probabilities and fits
// the scaling parameters offline.
package calibration

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sync/atomic"
	"time"
)

// Output bounds for any calibrated probability.
const (
	MinProbability = 0.02
	MaxProbability = 0.98

	logitEpsilon = 1e-9
)

// Params are the Platt scaling coefficients: p' = sigmoid(A*logit(p) + B).
type Params struct {
	A        float64   `json:"a" mapstructure:"a"`
	B        float64   `json:"b" mapstructure:"b"`
	Version  string    `json:"version,omitempty" mapstructure:"version"`
	Samples  int       `json:"samples,omitempty"`
	FittedAt time.Time `json:"fitted_at,omitempty"`
}

// Identity leaves probabilities unchanged apart from the output clamp.
func Identity() Params {
	return Params{A: 1, B: 0, Version: "identity"}
}

// IsIdentity reports whether p is a no-op.
func (p Params) IsIdentity() bool {
	return p.A == 1 && p.B == 0
}

// Calibrate applies Platt scaling and clamps the result to [0.02, 0.98].
func Calibrate(p float64, params Params) float64 {
	if math.IsNaN(p) {
		p = 0.5
	}
	z := params.A*Logit(p) + params.B
	out := Sigmoid(z)
	if math.IsNaN(out) {
		out = 0.5
	}
	return clamp(out, MinProbability, MaxProbability)
}

// Logit is log(p/(1-p)) with p held away from 0 and 1.
func Logit(p float64) float64 {
	p = clamp(p, logitEpsilon, 1-logitEpsilon)
	return math.Log(p / (1 - p))
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParamsSource serves the current parameters. Reads must be cheap.
type ParamsSource interface {
	Params() Params
}

// Store holds the live parameters and allows them to be swapped atomically.
type Store struct {
	current atomic.Pointer[Params]
}

// NewStore creates a store seeded with params.
func NewStore(params Params) *Store {
	s := &Store{}
	s.Set(params)
	return s
}

// Params returns the current parameters.
func (s *Store) Params() Params {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return Identity()
}

// Set replaces the current parameters.
func (s *Store) Set(params Params) {
	s.current.Store(&params)
}

// LoadParams reads parameters from a JSON file.
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Params{}, fmt.Errorf("failed to read calibration file: %w", err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("failed to parse calibration file: %w", err)
	}
	if math.IsNaN(p.A) || math.IsNaN(p.B) {
		return Params{}, fmt.Errorf("calibration file %s has invalid coefficients", path)
	}
	return p, nil
}

// SaveParams writes parameters as indented JSON.
func SaveParams(path string, p Params) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode calibration params: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write calibration file: %w", err)
	}
	return nil
}
