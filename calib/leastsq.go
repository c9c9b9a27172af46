package calib

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/marc-henrard/murisq-ir-models/market"
	"github.com/marc-henrard/murisq-ir-models/model"
)

// LSConfig holds the Levenberg-Marquardt settings. Weights are per-instrument
// residual weights; nil means unweighted. StepFraction bounds the first steps
// relative to the starting point's magnitude.
type LSConfig struct {
	Tol          float64
	MaxSteps     int
	StepFraction float64
	Weights      []float64
}

// DefaultLSConfig returns the standard least-squares settings.
func DefaultLSConfig() LSConfig {
	return LSConfig{Tol: 1.0e-9, MaxSteps: 250, StepFraction: 0.05}
}

// CalibrateLeastSquares fits the free parameters by weighted nonlinear least
// squares. The instrument count need not match the free parameter count.
// Bounded parameters are searched in unconstrained space through the
// template's transform, so domain constraints hold at every iterate.
func CalibrateLeastSquares(tpl model.Template, instruments []Instrument, mkt *market.Curve, price Pricer, cfg LSConfig) (model.Parameters, error) {
	guess := tpl.InitialGuess()
	fixed := tpl.Fixed()
	if cfg.Weights != nil && len(cfg.Weights) != len(instruments) {
		return nil, fmt.Errorf("calib: %d weights for %d instruments", len(cfg.Weights), len(instruments))
	}
	freeTransform := tpl.Transform().FreeSubset(fixed)

	residuals := func(y []float64) ([]float64, error) {
		free := freeTransform.FromUnconstrained(y)
		if !tpl.Constraints(free) {
			return nil, fmt.Errorf("calib: constraint violated at free point %v", free)
		}
		full, err := model.ExpandFreeToFull(free, guess, fixed)
		if err != nil {
			return nil, err
		}
		params, err := tpl.Generate(full)
		if err != nil {
			return nil, err
		}
		r := make([]float64, len(instruments))
		for i, instr := range instruments {
			r[i], err = price(instr, mkt, params)
			if err != nil {
				return nil, err
			}
			if cfg.Weights != nil {
				r[i] *= cfg.Weights[i]
			}
		}
		return r, nil
	}

	freeStart, err := model.CollapseFullToFree(guess, fixed)
	if err != nil {
		return nil, err
	}
	y, err := levenbergMarquardt(residuals, freeTransform.ToUnconstrained(freeStart), len(instruments), cfg)
	if err != nil {
		return nil, err
	}
	full, err := model.ExpandFreeToFull(freeTransform.FromUnconstrained(y), guess, fixed)
	if err != nil {
		return nil, err
	}
	return tpl.Generate(full)
}

// levenbergMarquardt minimizes the residual sum of squares with damped
// Gauss-Newton steps. The damping multiplies the diagonal of the normal
// matrix; steps are additionally bounded by a trust radius that starts at
// StepFraction times the starting point's magnitude, doubles after a full
// accepted step and halves on rejection.
func levenbergMarquardt(f Objective, y0 []float64, m int, cfg LSConfig) ([]float64, error) {
	n := len(y0)
	y := append([]float64(nil), y0...)
	r, err := f(y)
	if err != nil {
		return nil, err
	}
	ssr := floats.Dot(r, r)
	stepBound := cfg.StepFraction * math.Max(1.0, floats.Norm(y, 2))

	lambda := 1.0e-3
	recompute := true
	var jac *mat.Dense
	grad := mat.NewVecDense(n, nil)
	normal := mat.NewSymDense(n, nil)

	for step := 0; step < cfg.MaxSteps; step++ {
		if recompute {
			jac, err = jacobian(f, y, m)
			if err != nil {
				return nil, err
			}
			rv := mat.NewVecDense(m, append([]float64(nil), r...))
			grad.MulVec(jac.T(), rv)
			var jtj mat.Dense
			jtj.Mul(jac.T(), jac)
			for i := 0; i < n; i++ {
				for j := i; j < n; j++ {
					normal.SetSym(i, j, jtj.At(i, j))
				}
			}
			recompute = false
		}

		damped := mat.NewSymDense(n, nil)
		damped.CopySym(normal)
		for i := 0; i < n; i++ {
			damped.SetSym(i, i, normal.At(i, i)*(1.0+lambda))
		}
		var chol mat.Cholesky
		if ok := chol.Factorize(damped); !ok {
			return nil, fmt.Errorf("%w: normal equations decomposition failed", ErrSingularJacobian)
		}
		dy := mat.NewVecDense(n, nil)
		negGrad := mat.NewVecDense(n, nil)
		negGrad.ScaleVec(-1.0, grad)
		if err := chol.SolveVecTo(dy, negGrad); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
		}
		clipped := false
		if norm := mat.Norm(dy, 2); norm > stepBound {
			dy.ScaleVec(stepBound/norm, dy)
			clipped = true
		}

		trial := make([]float64, n)
		for i := range y {
			trial[i] = y[i] + dy.AtVec(i)
		}
		rTrial, err := f(trial)
		if err != nil {
			return nil, err
		}
		ssrTrial := floats.Dot(rTrial, rTrial)

		logrus.WithFields(logrus.Fields{
			"step":   step,
			"ssr":    ssrTrial,
			"lambda": lambda,
		}).Debug("least squares step")

		if ssrTrial < ssr {
			improvement := ssr - ssrTrial
			y, r, ssr = trial, rTrial, ssrTrial
			lambda = math.Max(lambda*0.3, 1.0e-12)
			if clipped {
				stepBound *= 2.0
			}
			recompute = true
			if improvement < cfg.Tol*(1.0+ssr) {
				return y, nil
			}
		} else {
			lambda *= 10.0
			stepBound = math.Max(stepBound*0.5, 1.0e-12)
			if lambda > 1.0e14 {
				return nil, fmt.Errorf("%w: damping overflow at step %d", ErrNonConvergence, step)
			}
		}
	}
	return nil, fmt.Errorf("%w: after %d steps", ErrNonConvergence, cfg.MaxSteps)
}
