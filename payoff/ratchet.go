// Package payoff computes path-dependent coupon amounts and aggregates them
// into a Monte Carlo present value with numeraire-rebased discounting.
package payoff

import (
	"fmt"
	"math"

	"github.com/marc-henrard/murisq-ir-models/market"
	"github.com/marc-henrard/murisq-ir-models/schedule"
)

// Coefficients combine the previous coupon rate and the current index fixing
// into a rate: Previous*prev + Index*index + Constant.
type Coefficients struct {
	Previous float64
	Index    float64
	Constant float64
}

func (c Coefficients) Rate(prev, index float64) float64 {
	return c.Previous*prev + c.Index*index + c.Constant
}

// RatchetCoupon is one period of a ratchet leg. The rate is the main
// combination clamped between the floor and cap combinations, all three
// driven by the previous coupon rate and the period's index fixing. The
// first coupon of a leg may instead be fixed at a known rate.
type RatchetCoupon struct {
	FixingTime  float64
	PaymentTime float64
	Accrual     float64
	Main        Coefficients
	Floor       Coefficients
	Cap         Coefficients
	FixedRate   float64
	IsFixed     bool
}

// Rate applies the ratchet recursion for this coupon.
func (c RatchetCoupon) Rate(prev, index float64) float64 {
	if c.IsFixed {
		return c.FixedRate
	}
	rate := c.Main.Rate(prev, index)
	floor := c.Floor.Rate(prev, index)
	cap := c.Cap.Rate(prev, index)
	return math.Min(math.Max(rate, floor), cap)
}

// Ratchet is a single-leg ratchet product: one fixing per coupon.
type Ratchet struct {
	Notional float64
	Coupons  []RatchetCoupon
}

// FixingTimes returns the ordered event times the simulation must visit.
func (r Ratchet) FixingTimes() []float64 {
	out := make([]float64, len(r.Coupons))
	for i, c := range r.Coupons {
		out[i] = c.FixingTime
	}
	return out
}

// NewRatchetFromSchedule builds a ratchet leg on a cashflow schedule with the
// same coefficient triple for every floating coupon. When firstFixed is true
// the first coupon pays firstRate regardless of the fixing.
func NewRatchetFromSchedule(s schedule.Schedule, c *market.Curve, notional float64, main, floor, cap Coefficients, firstFixed bool, firstRate float64) (Ratchet, error) {
	if len(s.Entries) == 0 {
		return Ratchet{}, fmt.Errorf("payoff: empty schedule")
	}
	fixings, payments, accruals := s.Times(c)
	coupons := make([]RatchetCoupon, len(s.Entries))
	for i := range s.Entries {
		coupons[i] = RatchetCoupon{
			FixingTime:  fixings[i],
			PaymentTime: payments[i],
			Accrual:     accruals[i],
			Main:        main,
			Floor:       floor,
			Cap:         cap,
		}
	}
	if firstFixed {
		coupons[0].IsFixed = true
		coupons[0].FixedRate = firstRate
	}
	return Ratchet{Notional: notional, Coupons: coupons}, nil
}
