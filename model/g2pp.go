package model

import (
	"fmt"
	"time"

	"github.com/marc-henrard/murisq-ir-models/market"
)

// G2ppParameters is a two-factor Gaussian short-rate model: two mean-reverting
// factors with correlated drivers.
type G2ppParameters struct {
	meanReversion1 float64
	volatility1    float64
	meanReversion2 float64
	volatility2    float64
	correlation    float64
	currency       string
	valuation      time.Time
}

func (p *G2ppParameters) Count() int           { return 5 }
func (p *G2ppParameters) Currency() string     { return p.currency }
func (p *G2ppParameters) Valuation() time.Time { return p.valuation }

func (p *G2ppParameters) RelativeTime(d time.Time) float64 {
	t, _ := market.YearFraction(p.valuation, d, market.Act365F)
	return t
}

func (p *G2ppParameters) MeanReversions() (float64, float64) {
	return p.meanReversion1, p.meanReversion2
}

func (p *G2ppParameters) Volatilities() (float64, float64) {
	return p.volatility1, p.volatility2
}

func (p *G2ppParameters) Correlation() float64 { return p.correlation }

// G2ppTemplate calibrates [a1, sigma1, a2, sigma2, rho]. The correlation is
// searched through an atanh transform so it stays inside (-1, 1).
type G2ppTemplate struct {
	currency  string
	valuation time.Time
	guess     []float64
	fixed     []bool
}

func NewG2ppTemplate(currency string, valuation time.Time, guess []float64, fixed []bool) (*G2ppTemplate, error) {
	if len(guess) != 5 || len(fixed) != 5 {
		return nil, fmt.Errorf("model: g2++ template requires 5 parameters, got %d/%d", len(guess), len(fixed))
	}
	return &G2ppTemplate{
		currency:  currency,
		valuation: valuation,
		guess:     append([]float64(nil), guess...),
		fixed:     append([]bool(nil), fixed...),
	}, nil
}

func (t *G2ppTemplate) ParametersCount() int { return 5 }

func (t *G2ppTemplate) InitialGuess() []float64 {
	return append([]float64(nil), t.guess...)
}

func (t *G2ppTemplate) Fixed() []bool {
	return append([]bool(nil), t.fixed...)
}

func (t *G2ppTemplate) Generate(full []float64) (Parameters, error) {
	if len(full) != 5 {
		return nil, fmt.Errorf("model: g2++ expects 5 parameters, got %d", len(full))
	}
	return &G2ppParameters{
		meanReversion1: full[0],
		volatility1:    full[1],
		meanReversion2: full[2],
		volatility2:    full[3],
		correlation:    full[4],
		currency:       t.currency,
		valuation:      t.valuation,
	}, nil
}

func (t *G2ppTemplate) Constraints(free []float64) bool {
	full, err := ExpandFreeToFull(free, t.guess, t.fixed)
	if err != nil {
		return false
	}
	return full[0] > 0 && full[1] > 0 && full[2] > 0 && full[3] > 0 && full[4] > -1 && full[4] < 1
}

func (t *G2ppTemplate) Transform() Transform {
	return Transform{Positive{}, Positive{}, Positive{}, Positive{}, Correlation{}}
}
