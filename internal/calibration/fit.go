package calibration

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// ErrInsufficientSamples is returned when there is too little history to fit.
var ErrInsufficientSamples = errors.New("insufficient samples for calibration fit")

const (
	defaultMaxEvaluations    = 1000
	defaultGradientThreshold = 1e-8
	minFitSamples            = 20
)

// Sample is one past prediction and whether the predicted side won.
type Sample struct {
	Probability float64
	Won         bool
}

// FitOptions bound the minimizer. Zero values take the defaults.
type FitOptions struct {
	MaxEvaluations    int
	GradientThreshold float64
}

// Fit estimates Platt parameters by minimizing mean log-loss with L-BFGS,
// starting from the identity.
func Fit(samples []Sample, opts FitOptions) (Params, error) {
	if len(samples) < minFitSamples {
		return Params{}, ErrInsufficientSamples
	}
	if opts.MaxEvaluations <= 0 {
		opts.MaxEvaluations = defaultMaxEvaluations
	}
	if opts.GradientThreshold <= 0 {
		opts.GradientThreshold = defaultGradientThreshold
	}

	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	for i, s := range samples {
		x[i] = Logit(s.Probability)
		if s.Won {
			y[i] = 1
		}
	}
	n := float64(len(samples))

	problem := optimize.Problem{
		// Mean of log(1+e^z) - y*z, the log-loss of sigmoid(z).
		Func: func(p []float64) float64 {
			var loss float64
			for i := range x {
				z := p[0]*x[i] + p[1]
				loss += softplus(z) - y[i]*z
			}
			return loss / n
		},
		Grad: func(grad, p []float64) {
			grad[0], grad[1] = 0, 0
			for i := range x {
				r := Sigmoid(p[0]*x[i]+p[1]) - y[i]
				grad[0] += r * x[i]
				grad[1] += r
			}
			grad[0] /= n
			grad[1] /= n
		},
	}
	settings := optimize.Settings{
		FuncEvaluations:   opts.MaxEvaluations,
		GradientThreshold: opts.GradientThreshold,
	}

	result, err := optimize.Minimize(problem, []float64{1, 0}, &settings, &optimize.LBFGS{})
	if err != nil {
		return Params{}, fmt.Errorf("failed to fit calibration: %w", err)
	}
	a, b := result.X[0], result.X[1]
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return Identity(), nil
	}
	return Params{A: a, B: b, Samples: len(samples)}, nil
}

// softplus is log(1+e^z) without overflow for large z.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}

// LogLoss is the mean negative log-likelihood of samples under params.
func LogLoss(samples []Sample, params Params) float64 {
	if len(samples) == 0 {
		return 0
	}
	var loss float64
	for _, s := range samples {
		p := clamp(Sigmoid(params.A*Logit(s.Probability)+params.B), logitEpsilon, 1-logitEpsilon)
		if s.Won {
			loss -= math.Log(p)
		} else {
			loss -= math.Log(1 - p)
		}
	}
	return loss / float64(len(samples))
}
