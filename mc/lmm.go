package mc

import (
	"errors"
	"fmt"
	"math"

	"github.com/marc-henrard/murisq-ir-models/model"
)

// LMMEvolver advances the discrete forward rates of a displaced-diffusion
// Libor Market Model under the terminal measure. One driver moves all
// forwards; the drift of each forward comes from freezing the later forwards
// at their start-of-step values.
type LMMEvolver struct {
	times        []float64
	accruals     []float64
	initial      []float64
	vols         []float64
	displacement float64
}

func NewLMMEvolver(p *model.LMMParameters) (*LMMEvolver, error) {
	if p == nil {
		return nil, errors.New("mc: nil lmm parameters")
	}
	return &LMMEvolver{
		times:        p.Times(),
		accruals:     p.Accruals(),
		initial:      p.InitialForwards(),
		vols:         p.Volatilities(),
		displacement: p.Displacement(),
	}, nil
}

func (e *LMMEvolver) FactorCount() int { return 1 }

func (e *LMMEvolver) InitialState() []float64 {
	return append([]float64(nil), e.initial...)
}

// Evolve applies a log-Euler displaced-diffusion step from t0 to t1. A
// forward whose fixing time has passed is dead and carried unchanged.
func (e *LMMEvolver) Evolve(dst, state []float64, t0, t1 float64, z []float64) error {
	n := len(state)
	dt := t1 - t0
	sq := math.Sqrt(dt)
	delta := e.displacement
	for j := 0; j < n; j++ {
		if e.times[j] <= t0+1e-12 {
			dst[j] = state[j]
			continue
		}
		drift := 0.0
		for k := j + 1; k < n; k++ {
			drift -= e.vols[j] * e.vols[k] * e.accruals[k] * (state[k] + delta) / (1.0 + e.accruals[k]*state[k])
		}
		shifted := state[j] + delta
		if shifted <= 0 {
			return fmt.Errorf("%w: negative displaced forward %v at index %d", ErrNumericalDomain, shifted, j)
		}
		next := shifted*math.Exp((drift-0.5*e.vols[j]*e.vols[j])*dt+e.vols[j]*sq*z[0]) - delta
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return fmt.Errorf("%w: non-finite forward at index %d", ErrNumericalDomain, j)
		}
		dst[j] = next
	}
	return nil
}
