// Package market provides the discount curve and day count machinery shared
// by the calibrators and the Monte Carlo engine. Curves are immutable once
// built; all time arguments are year fractions from the valuation date on an
// ACT/365F axis.
package market

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

const Layout = "2006-01-02"

// Curve holds continuously compounded zero rates on an ordered time grid.
// Discount factors between nodes come from linear interpolation of the zero
// rates; beyond the last node the last zero rate is held flat.
type Curve struct {
	valuation time.Time
	currency  string
	times     []float64
	zeros     []float64
}

// NewCurve builds a curve from zero rate nodes keyed by time in years.
func NewCurve(valuation time.Time, currency string, nodes map[float64]float64) (*Curve, error) {
	if len(nodes) == 0 {
		return nil, errors.New("market: curve requires at least one node")
	}
	times := make([]float64, 0, len(nodes))
	for t := range nodes {
		if t <= 0 {
			return nil, fmt.Errorf("market: curve node time %v must be positive", t)
		}
		times = append(times, t)
	}
	sort.Float64s(times)
	zeros := make([]float64, len(times))
	for i, t := range times {
		zeros[i] = nodes[t]
	}
	return &Curve{valuation: valuation, currency: currency, times: times, zeros: zeros}, nil
}

// Flat builds a curve with a single constant zero rate.
func Flat(valuation time.Time, currency string, rate float64) *Curve {
	return &Curve{valuation: valuation, currency: currency, times: []float64{1.0}, zeros: []float64{rate}}
}

func (c *Curve) Valuation() time.Time { return c.valuation }

func (c *Curve) Currency() string { return c.currency }

// RelativeTime maps a date to a year fraction from the valuation date.
func (c *Curve) RelativeTime(d time.Time) float64 {
	t, _ := YearFraction(c.valuation, d, Act365F)
	return t
}

// ZeroRate returns the interpolated continuously compounded zero rate.
func (c *Curve) ZeroRate(t float64) float64 {
	n := len(c.times)
	if t <= c.times[0] {
		return c.zeros[0]
	}
	if t >= c.times[n-1] {
		return c.zeros[n-1]
	}
	i := sort.SearchFloat64s(c.times, t)
	w := (t - c.times[i-1]) / (c.times[i] - c.times[i-1])
	return (1-w)*c.zeros[i-1] + w*c.zeros[i]
}

// DiscountFactor returns the discount factor to time t.
func (c *Curve) DiscountFactor(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	return math.Exp(-c.ZeroRate(t) * t)
}

// ForwardRate returns the simply compounded forward rate over [t1, t2].
func (c *Curve) ForwardRate(t1, t2 float64) float64 {
	if t2 <= t1 {
		return 0
	}
	return (c.DiscountFactor(t1)/c.DiscountFactor(t2) - 1.0) / (t2 - t1)
}

// NumeraireValue returns the market discount factor to the model's terminal
// date, used to convert terminal-measure Monte Carlo averages into currency
// units.
func (c *Curve) NumeraireValue(terminal float64) float64 {
	return c.DiscountFactor(terminal)
}
