package model

import (
	"fmt"
	"time"

	"github.com/marc-henrard/murisq-ir-models/market"
)

// RationalParameters is a rational two-factor multi-curve model: two
// log-normal martingale drivers with correlated noise entering the pricing
// kernel rationally.
type RationalParameters struct {
	a1          float64
	a2          float64
	correlation float64
	currency    string
	valuation   time.Time
}

func (p *RationalParameters) Count() int           { return 3 }
func (p *RationalParameters) Currency() string     { return p.currency }
func (p *RationalParameters) Valuation() time.Time { return p.valuation }

func (p *RationalParameters) RelativeTime(d time.Time) float64 {
	t, _ := market.YearFraction(p.valuation, d, market.Act365F)
	return t
}

func (p *RationalParameters) A1() float64          { return p.a1 }
func (p *RationalParameters) A2() float64          { return p.a2 }
func (p *RationalParameters) Correlation() float64 { return p.correlation }

// RationalTemplate calibrates [a1, a2, rho].
type RationalTemplate struct {
	currency  string
	valuation time.Time
	guess     []float64
	fixed     []bool
}

func NewRationalTemplate(currency string, valuation time.Time, guess []float64, fixed []bool) (*RationalTemplate, error) {
	if len(guess) != 3 || len(fixed) != 3 {
		return nil, fmt.Errorf("model: rational template requires 3 parameters, got %d/%d", len(guess), len(fixed))
	}
	return &RationalTemplate{
		currency:  currency,
		valuation: valuation,
		guess:     append([]float64(nil), guess...),
		fixed:     append([]bool(nil), fixed...),
	}, nil
}

func (t *RationalTemplate) ParametersCount() int { return 3 }

func (t *RationalTemplate) InitialGuess() []float64 {
	return append([]float64(nil), t.guess...)
}

func (t *RationalTemplate) Fixed() []bool {
	return append([]bool(nil), t.fixed...)
}

func (t *RationalTemplate) Generate(full []float64) (Parameters, error) {
	if len(full) != 3 {
		return nil, fmt.Errorf("model: rational expects 3 parameters, got %d", len(full))
	}
	return &RationalParameters{
		a1:          full[0],
		a2:          full[1],
		correlation: full[2],
		currency:    t.currency,
		valuation:   t.valuation,
	}, nil
}

func (t *RationalTemplate) Constraints(free []float64) bool {
	full, err := ExpandFreeToFull(free, t.guess, t.fixed)
	if err != nil {
		return false
	}
	return full[0] > 0 && full[1] > 0 && full[2] > -1 && full[2] < 1
}

func (t *RationalTemplate) Transform() Transform {
	return Transform{Positive{}, Positive{}, Correlation{}}
}
