package payoff

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"

	"github.com/marc-henrard/murisq-ir-models/market"
	"github.com/marc-henrard/murisq-ir-models/mc"
	"github.com/marc-henrard/murisq-ir-models/model"
	"github.com/marc-henrard/murisq-ir-models/schedule"
)

const gridTol = 1.0e-8

// Result is a Monte Carlo present value estimate in currency units with its
// standard error. No variance reduction is applied, so the error shrinks
// like 1/sqrt(Paths).
type Result struct {
	Value  float64
	StdErr float64
	Paths  int
}

// PresentValueMonteCarlo prices a ratchet leg under a displaced-diffusion
// Libor Market Model. For each path the coupon rates follow the ratchet
// recursion on the spread-adjusted index fixings; each coupon amount is
// rebased to the terminal date through the product of (1 + forward*accrual)
// factors read off the same path's state, then the path average is scaled by
// the market discount factor to the terminal date.
func PresentValueMonteCarlo(product Ratchet, mkt *market.Curve, params *model.LMMParameters, engine mc.Engine, src rand.Source, pathCount int) (Result, error) {
	if pathCount <= 0 {
		return Result{}, fmt.Errorf("payoff: path count must be positive, got %d", pathCount)
	}
	ev, err := mc.NewLMMEvolver(params)
	if err != nil {
		return Result{}, err
	}
	grid := params.Times()
	accruals := params.Accruals()
	spread := params.Spread()
	nFwd := len(accruals)

	fixingIdx := make([]int, len(product.Coupons))
	paymentIdx := make([]int, len(product.Coupons))
	for i, c := range product.Coupons {
		fixingIdx[i], err = gridIndex(grid, c.FixingTime)
		if err != nil {
			return Result{}, fmt.Errorf("coupon %d fixing: %w", i, err)
		}
		if fixingIdx[i] >= nFwd {
			return Result{}, fmt.Errorf("%w: coupon %d fixes on the terminal date", schedule.ErrUnsupportedConfiguration, i)
		}
		paymentIdx[i], err = gridIndex(grid, c.PaymentTime)
		if err != nil {
			return Result{}, fmt.Errorf("coupon %d payment: %w", i, err)
		}
	}

	times := product.FixingTimes()
	pathValues := make([]float64, pathCount)
	err = engine.EvolvePaths(ev, times, src, pathCount, func(path int, states [][]float64) error {
		prev := 0.0
		total := 0.0
		for i, c := range product.Coupons {
			state := states[i]
			index := spread * state[fixingIdx[i]]
			rate := c.Rate(prev, index)
			prev = rate
			amount := product.Notional * c.Accrual * rate

			rebase := 1.0
			for j := paymentIdx[i]; j < nFwd; j++ {
				factor := 1.0 + accruals[j]*state[j]
				if factor <= 0 {
					return fmt.Errorf("%w: non-positive compounding factor at grid index %d", mc.ErrNumericalDomain, j)
				}
				rebase *= factor
			}
			total += amount * rebase
		}
		pathValues[path] = total
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	numeraire := mkt.NumeraireValue(params.TerminalTime())
	mean := stat.Mean(pathValues, nil)
	stderr := 0.0
	if pathCount > 1 {
		stderr = stat.StdDev(pathValues, nil) / math.Sqrt(float64(pathCount))
	}
	return Result{
		Value:  numeraire * mean,
		StdErr: numeraire * stderr,
		Paths:  pathCount,
	}, nil
}

func gridIndex(grid []float64, t float64) (int, error) {
	for i, g := range grid {
		if math.Abs(g-t) < gridTol {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: time %v is not on the model grid", schedule.ErrUnsupportedConfiguration, t)
}
