package pricer

import (
	"errors"
	"fmt"
	"math"

	"github.com/marc-henrard/murisq-ir-models/calib"
	"github.com/marc-henrard/murisq-ir-models/market"
	"github.com/marc-henrard/murisq-ir-models/model"
)

// Swaption is a European swaption on a fixed-vs-floating swap settling at
// the expiry. PaymentTimes and Accruals describe the fixed leg. Premium is
// the market premium embedded for calibration; the calibration pricer
// returns model price minus premium.
type Swaption struct {
	Expiry       float64
	PaymentTimes []float64
	Accruals     []float64
	Strike       float64
	Notional     float64
	Payer        bool
	Premium      float64
}

// HullWhiteSwaptionPrice is the explicit Hull-White swaption price: the
// exercise boundary kappa solves the one-dimensional cashflow-equivalent
// equation, and the price is a sum of cashflows weighted by normal
// probabilities shifted by the bond volatilities alpha.
func HullWhiteSwaptionPrice(s Swaption, mkt *market.Curve, p *model.HullWhiteParameters) (float64, error) {
	n := len(s.PaymentTimes)
	if n == 0 || len(s.Accruals) != n {
		return 0, fmt.Errorf("pricer: swaption has %d payment times and %d accruals", n, len(s.Accruals))
	}
	if s.Expiry <= 0 {
		return 0, errors.New("pricer: swaption expiry must be positive")
	}

	// Cashflow equivalent of the receiver swap exercised at expiry:
	// -1 at expiry, K*tau at each fixed payment, +1 at the last one.
	d := make([]float64, n+1)
	alpha := make([]float64, n+1)
	d[0] = -mkt.DiscountFactor(s.Expiry)
	alpha[0] = 0
	for i := 1; i <= n; i++ {
		c := s.Strike * s.Accruals[i-1]
		if i == n {
			c += 1.0
		}
		d[i] = c * mkt.DiscountFactor(s.PaymentTimes[i-1])
		alpha[i] = p.Alpha(s.Expiry, s.PaymentTimes[i-1])
	}

	maxAlpha := 0.0
	for _, a := range alpha {
		maxAlpha = math.Max(maxAlpha, a)
	}
	if maxAlpha < 1e-12 {
		// Degenerate volatility: the option is worth its intrinsic value.
		sum := 0.0
		for _, v := range d {
			sum += v
		}
		if s.Payer {
			sum = -sum
		}
		return s.Notional * math.Max(sum, 0), nil
	}

	kappa, err := exerciseBoundary(d, alpha)
	if err != nil {
		return 0, err
	}

	pv := 0.0
	if s.Payer {
		for i := range d {
			pv -= d[i] * stdNormal.CDF(-kappa-alpha[i])
		}
	} else {
		for i := range d {
			pv += d[i] * stdNormal.CDF(kappa+alpha[i])
		}
	}
	return s.Notional * pv, nil
}

// exerciseBoundary solves sum_i d_i exp(-alpha_i kappa - alpha_i^2/2) = 0 by
// Newton iteration. d has one negative leading entry and positive tail
// entries, so the function is strictly decreasing with a unique root.
func exerciseBoundary(d, alpha []float64) (float64, error) {
	kappa := 0.0
	for iter := 0; iter < 100; iter++ {
		g := 0.0
		dg := 0.0
		for i := range d {
			e := d[i] * math.Exp(-alpha[i]*kappa-0.5*alpha[i]*alpha[i])
			g += e
			dg -= alpha[i] * e
		}
		if math.Abs(dg) < 1e-300 {
			return 0, errors.New("pricer: flat exercise equation")
		}
		next := kappa - g/dg
		if math.Abs(next-kappa) < 1e-12 {
			return next, nil
		}
		kappa = next
	}
	return 0, errors.New("pricer: exercise boundary search did not converge")
}

// HullWhiteSwaptionPricer adapts the explicit formula to the calibration
// contract: the returned price is the model premium minus the instrument's
// embedded premium, so the calibration target is zero.
func HullWhiteSwaptionPricer() calib.Pricer {
	return func(instrument calib.Instrument, mkt *market.Curve, params model.Parameters) (float64, error) {
		s, ok := instrument.(Swaption)
		if !ok {
			return 0, fmt.Errorf("pricer: unsupported instrument %T", instrument)
		}
		hw, ok := params.(*model.HullWhiteParameters)
		if !ok {
			return 0, fmt.Errorf("pricer: expected hull-white parameters, got %T", params)
		}
		pv, err := HullWhiteSwaptionPrice(s, mkt, hw)
		if err != nil {
			return 0, err
		}
		return pv - s.Premium, nil
	}
}
