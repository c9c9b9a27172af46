package mc

import (
	"errors"
	"fmt"
	"math"

	"github.com/marc-henrard/murisq-ir-models/model"
)

// HullWhiteEvolver advances the one-factor short-rate deviation with the
// exact Ornstein-Uhlenbeck conditional distribution, so step sizes do not
// introduce discretization error.
type HullWhiteEvolver struct {
	p *model.HullWhiteParameters
}

func NewHullWhiteEvolver(p *model.HullWhiteParameters) (*HullWhiteEvolver, error) {
	if p == nil {
		return nil, errors.New("mc: nil hull-white parameters")
	}
	return &HullWhiteEvolver{p: p}, nil
}

func (e *HullWhiteEvolver) FactorCount() int { return 1 }

func (e *HullWhiteEvolver) InitialState() []float64 { return []float64{0.0} }

func (e *HullWhiteEvolver) Evolve(dst, state []float64, t0, t1 float64, z []float64) error {
	next := state[0]*e.p.DecayFactor(t0, t1) + math.Sqrt(e.p.ConditionalVariance(t0, t1))*z[0]
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return fmt.Errorf("%w: non-finite short-rate factor", ErrNumericalDomain)
	}
	dst[0] = next
	return nil
}
