package model

import (
	"fmt"
	"math"
	"time"

	"github.com/marc-henrard/murisq-ir-models/market"
)

// HullWhiteParameters is a one-factor short-rate model with constant mean
// reversion and volatility.
type HullWhiteParameters struct {
	meanReversion float64
	volatility    float64
	currency      string
	valuation     time.Time
}

func (p *HullWhiteParameters) Count() int           { return 2 }
func (p *HullWhiteParameters) Currency() string     { return p.currency }
func (p *HullWhiteParameters) Valuation() time.Time { return p.valuation }

func (p *HullWhiteParameters) RelativeTime(d time.Time) float64 {
	t, _ := market.YearFraction(p.valuation, d, market.Act365F)
	return t
}

func (p *HullWhiteParameters) MeanReversion() float64 { return p.meanReversion }
func (p *HullWhiteParameters) Volatility() float64    { return p.volatility }

// DecayFactor is exp(-a (t1-t0)), the deterministic short-rate factor decay.
func (p *HullWhiteParameters) DecayFactor(t0, t1 float64) float64 {
	return math.Exp(-p.meanReversion * (t1 - t0))
}

// ConditionalVariance is the variance of the short-rate factor at t1 given
// its value at t0.
func (p *HullWhiteParameters) ConditionalVariance(t0, t1 float64) float64 {
	a := p.meanReversion
	dt := t1 - t0
	if math.Abs(a) < 1e-12 {
		return p.volatility * p.volatility * dt
	}
	return p.volatility * p.volatility * (1.0 - math.Exp(-2.0*a*dt)) / (2.0 * a)
}

// Alpha is the volatility of the zero-coupon bond maturing at u, as seen from
// today up to the option expiry. It drives the explicit swaption formula.
func (p *HullWhiteParameters) Alpha(expiry, u float64) float64 {
	a := p.meanReversion
	if math.Abs(a) < 1e-12 {
		return p.volatility * (u - expiry) * math.Sqrt(expiry)
	}
	return p.volatility / a * (1.0 - math.Exp(-a*(u-expiry))) * math.Sqrt((1.0-math.Exp(-2.0*a*expiry))/(2.0*a))
}

// HullWhiteTemplate calibrates [mean reversion, volatility]; either entry may
// be fixed, most commonly the mean reversion.
type HullWhiteTemplate struct {
	currency  string
	valuation time.Time
	guess     []float64
	fixed     []bool
}

func NewHullWhiteTemplate(currency string, valuation time.Time, guess []float64, fixed []bool) (*HullWhiteTemplate, error) {
	if len(guess) != 2 || len(fixed) != 2 {
		return nil, fmt.Errorf("model: hull-white template requires 2 parameters, got %d/%d", len(guess), len(fixed))
	}
	return &HullWhiteTemplate{
		currency:  currency,
		valuation: valuation,
		guess:     append([]float64(nil), guess...),
		fixed:     append([]bool(nil), fixed...),
	}, nil
}

func (t *HullWhiteTemplate) ParametersCount() int { return 2 }

func (t *HullWhiteTemplate) InitialGuess() []float64 {
	return append([]float64(nil), t.guess...)
}

func (t *HullWhiteTemplate) Fixed() []bool {
	return append([]bool(nil), t.fixed...)
}

func (t *HullWhiteTemplate) Generate(full []float64) (Parameters, error) {
	if len(full) != 2 {
		return nil, fmt.Errorf("model: hull-white expects 2 parameters, got %d", len(full))
	}
	return &HullWhiteParameters{
		meanReversion: full[0],
		volatility:    full[1],
		currency:      t.currency,
		valuation:     t.valuation,
	}, nil
}

func (t *HullWhiteTemplate) Constraints(free []float64) bool {
	for _, v := range free {
		if v <= 0 {
			return false
		}
	}
	return true
}

func (t *HullWhiteTemplate) Transform() Transform {
	return Transform{Positive{}, Positive{}}
}
