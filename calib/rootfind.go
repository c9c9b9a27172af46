// Package calib calibrates a model parameter template to a set of priced
// instruments through an external pricer. Two variants are provided: exact
// root finding when the instrument count equals the free parameter count, and
// weighted least squares otherwise. Both share the same finite-difference
// Jacobian machinery.
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

// Instrument is an opaque priced trade. The pricer closes over the concrete
// product types it understands; the calibrators only count and order
// instruments. The premium is embedded in the instrument, so the calibration
// target for every instrument is a model price of zero.
type Instrument interface{}

// Pricer converts an instrument into a scalar model price. It must be
// deterministic and side-effect free for a fixed input triple: Jacobian
// columns are evaluated concurrently.
type Pricer func(instrument Instrument, mkt *market.Curve, params model.Parameters) (float64, error)

// RootConfig holds the quasi-Newton root finder settings. The absolute
// tolerance is on the instrument price scale.
type RootConfig struct {
	AbsTol   float64
	RelTol   float64
	MaxSteps int
}

// DefaultRootConfig returns the standard root finder settings.
func DefaultRootConfig() RootConfig {
	return RootConfig{AbsTol: 0.1, RelTol: 1.0e-4, MaxSteps: 250}
}

// CalibrateExact finds free parameters such that every instrument's model
// price is zero, then expands them to a full parameter set. The number of
// instruments must equal the number of free parameters; the dimension check
// runs before any pricer call.
func CalibrateExact(tpl model.Template, instruments []Instrument, mkt *market.Curve, price Pricer, cfg RootConfig) (model.Parameters, error) {
	guess := tpl.InitialGuess()
	fixed := tpl.Fixed()
	nFree := model.FreeCount(fixed)
	if len(instruments) != nFree {
		return nil, fmt.Errorf("%w: %d instruments for %d free parameters", ErrDimensionMismatch, len(instruments), nFree)
	}

	objective := func(x []float64) ([]float64, error) {
		full, err := model.ExpandFreeToFull(x, guess, fixed)
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
		}
		return r, nil
	}

	x, err := model.CollapseFullToFree(guess, fixed)
	if err != nil {
		return nil, err
	}
	x, err = broyden(objective, x, cfg)
	if err != nil {
		return nil, err
	}
	full, err := model.ExpandFreeToFull(x, guess, fixed)
	if err != nil {
		return nil, err
	}
	return tpl.Generate(full)
}

// broyden runs a quasi-Newton vector root finder: a finite-difference
// Jacobian at the start, then rank-one secant updates at each accepted step.
func broyden(f Objective, x0 []float64, cfg RootConfig) ([]float64, error) {
	n := len(x0)
	x := append([]float64(nil), x0...)
	fx, err := f(x)
	if err != nil {
		return nil, err
	}
	if floats.Norm(fx, math.Inf(1)) < cfg.AbsTol {
		return x, nil
	}
	jac, err := jacobian(f, x, n)
	if err != nil {
		return nil, err
	}

	dx := mat.NewVecDense(n, nil)
	for step := 0; step < cfg.MaxSteps; step++ {
		var lu mat.LU
		lu.Factorize(jac)
		b := mat.NewVecDense(n, nil)
		for i, v := range fx {
			b.SetVec(i, -v)
		}
		if err := lu.SolveVecTo(dx, false, b); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSingularJacobian, err)
		}

		xNew := make([]float64, n)
		for i := range x {
			xNew[i] = x[i] + dx.AtVec(i)
		}
		fNew, err := f(xNew)
		if err != nil {
			return nil, err
		}

		residual := floats.Norm(fNew, math.Inf(1))
		logrus.WithFields(logrus.Fields{
			"step":     step,
			"residual": residual,
		}).Debug("root finder step")

		if residual < cfg.AbsTol {
			return xNew, nil
		}
		// A vanishing step with the residual still above tolerance is a
		// stall, not a root.
		if mat.Norm(dx, 2) < cfg.RelTol*(1.0+floats.Norm(x, 2)) {
			return nil, fmt.Errorf("%w: stalled at residual %v", ErrNonConvergence, residual)
		}

		// Broyden rank-one secant update: J += (df - J dx) dx' / (dx' dx).
		df := mat.NewVecDense(n, nil)
		for i := range fx {
			df.SetVec(i, fNew[i]-fx[i])
		}
		jdx := mat.NewVecDense(n, nil)
		jdx.MulVec(jac, dx)
		denom := mat.Dot(dx, dx)
		if denom > 0 {
			upd := mat.NewVecDense(n, nil)
			upd.SubVec(df, jdx)
			var outer mat.Dense
			outer.Outer(1.0/denom, upd, dx)
			jac.Add(jac, &outer)
		}

		x, fx = xNew, fNew
	}
	return nil, fmt.Errorf("%w: after %d steps", ErrNonConvergence, cfg.MaxSteps)
}
