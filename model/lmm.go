package model

import (
	"fmt"
	"time"

	"github.com/marc-henrard/murisq-ir-models/market"
)

// LMMParameters is a displaced-diffusion Libor Market Model over a fixed grid
// of discrete forward rates, with a deterministic multiplicative spread
// between the discounting forwards and the index forwards.
//
// The grid has n+1 times; forward i accrues over [times[i], times[i+1]].
// The last grid time is the model's terminal (numeraire) date.
type LMMParameters struct {
	currency        string
	valuation       time.Time
	times           []float64
	accruals        []float64
	initialForwards []float64
	volatilities    []float64
	displacement    float64
	spread          float64
}

func (p *LMMParameters) Count() int           { return len(p.volatilities) + 2 }
func (p *LMMParameters) Currency() string     { return p.currency }
func (p *LMMParameters) Valuation() time.Time { return p.valuation }

func (p *LMMParameters) RelativeTime(d time.Time) float64 {
	t, _ := market.YearFraction(p.valuation, d, market.Act365F)
	return t
}

// Times returns the grid times, including the terminal date.
func (p *LMMParameters) Times() []float64 {
	return append([]float64(nil), p.times...)
}

func (p *LMMParameters) Accruals() []float64 {
	return append([]float64(nil), p.accruals...)
}

// InitialForwards returns the curve-implied discounting forwards at the
// valuation date, one per grid period.
func (p *LMMParameters) InitialForwards() []float64 {
	return append([]float64(nil), p.initialForwards...)
}

func (p *LMMParameters) Volatilities() []float64 {
	return append([]float64(nil), p.volatilities...)
}

func (p *LMMParameters) Displacement() float64 { return p.displacement }

// Spread is the deterministic multiplicative spread applied to a discounting
// forward to obtain the index forward fixing.
func (p *LMMParameters) Spread() float64 { return p.spread }

// TerminalTime is the numeraire date, the last grid time.
func (p *LMMParameters) TerminalTime() float64 { return p.times[len(p.times)-1] }

// LMMTemplate calibrates one volatility per grid forward plus the
// displacement and the spread. The full vector layout is
// [vol_0 .. vol_{n-1}, displacement, spread]; displacement and spread are
// typically fixed.
type LMMTemplate struct {
	curve     *market.Curve
	gridTimes []float64
	guess     []float64
	fixed     []bool
}

func NewLMMTemplate(curve *market.Curve, gridTimes []float64, guess []float64, fixed []bool) (*LMMTemplate, error) {
	if len(gridTimes) < 2 {
		return nil, fmt.Errorf("model: lmm grid requires at least 2 times, got %d", len(gridTimes))
	}
	for i := 1; i < len(gridTimes); i++ {
		if gridTimes[i] <= gridTimes[i-1] {
			return nil, fmt.Errorf("model: lmm grid times must be strictly increasing at index %d", i)
		}
	}
	n := len(gridTimes) - 1
	if len(guess) != n+2 || len(fixed) != n+2 {
		return nil, fmt.Errorf("model: lmm template requires %d parameters, got %d/%d", n+2, len(guess), len(fixed))
	}
	return &LMMTemplate{
		curve:     curve,
		gridTimes: append([]float64(nil), gridTimes...),
		guess:     append([]float64(nil), guess...),
		fixed:     append([]bool(nil), fixed...),
	}, nil
}

func (t *LMMTemplate) ParametersCount() int { return len(t.guess) }

func (t *LMMTemplate) InitialGuess() []float64 {
	return append([]float64(nil), t.guess...)
}

func (t *LMMTemplate) Fixed() []bool {
	return append([]bool(nil), t.fixed...)
}

func (t *LMMTemplate) Generate(full []float64) (Parameters, error) {
	if len(full) != len(t.guess) {
		return nil, fmt.Errorf("model: lmm expects %d parameters, got %d", len(t.guess), len(full))
	}
	n := len(t.gridTimes) - 1
	accruals := make([]float64, n)
	forwards := make([]float64, n)
	for i := 0; i < n; i++ {
		accruals[i] = t.gridTimes[i+1] - t.gridTimes[i]
		forwards[i] = t.curve.ForwardRate(t.gridTimes[i], t.gridTimes[i+1])
	}
	return &LMMParameters{
		currency:        t.curve.Currency(),
		valuation:       t.curve.Valuation(),
		times:           append([]float64(nil), t.gridTimes...),
		accruals:        accruals,
		initialForwards: forwards,
		volatilities:    append([]float64(nil), full[:n]...),
		displacement:    full[n],
		spread:          full[n+1],
	}, nil
}

func (t *LMMTemplate) Constraints(free []float64) bool {
	for _, v := range free {
		if v <= 0 {
			return false
		}
	}
	return true
}

func (t *LMMTemplate) Transform() Transform {
	tr := make(Transform, len(t.guess))
	for i := range tr {
		tr[i] = Positive{}
	}
	return tr
}
