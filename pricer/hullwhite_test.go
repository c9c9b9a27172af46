package pricer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marc-henrard/murisq-ir-models/calib"
	"github.com/marc-henrard/murisq-ir-models/market"
	"github.com/marc-henrard/murisq-ir-models/model"
)

func hwFixture(t *testing.T, vol float64) (*market.Curve, *model.HullWhiteParameters) {
	t.Helper()
	valuation, _ := time.Parse(market.Layout, "2026-08-18")
	curve := market.Flat(valuation, "EUR", 0.02)
	tpl, err := model.NewHullWhiteTemplate("EUR", valuation, []float64{0.03, vol}, []bool{true, false})
	require.NoError(t, err)
	params, err := tpl.Generate([]float64{0.03, vol})
	require.NoError(t, err)
	return curve, params.(*model.HullWhiteParameters)
}

func atmSwaption(curve *market.Curve, payer bool) Swaption {
	payments := []float64{2.0, 3.0}
	accruals := []float64{1.0, 1.0}
	// Par rate of the underlying swap, so payer and receiver have equal value.
	annuity := 0.0
	for i, p := range payments {
		annuity += accruals[i] * curve.DiscountFactor(p)
	}
	par := (curve.DiscountFactor(1.0) - curve.DiscountFactor(3.0)) / annuity
	return Swaption{
		Expiry:       1.0,
		PaymentTimes: payments,
		Accruals:     accruals,
		Strike:       par,
		Notional:     1.0e6,
		Payer:        payer,
	}
}

func TestHullWhiteSwaptionParity(t *testing.T) {
	curve, params := hwFixture(t, 0.01)

	receiver, err := HullWhiteSwaptionPrice(atmSwaption(curve, false), curve, params)
	require.NoError(t, err)
	payer, err := HullWhiteSwaptionPrice(atmSwaption(curve, true), curve, params)
	require.NoError(t, err)

	require.Greater(t, receiver, 0.0)
	require.Greater(t, payer, 0.0)
	// At the par strike the receiver and payer prices coincide.
	require.InDelta(t, receiver, payer, 1e-6*receiver)
}

func TestHullWhiteSwaptionZeroVolIsIntrinsic(t *testing.T) {
	curve, params := hwFixture(t, 0.0)

	s := atmSwaption(curve, false)
	price, err := HullWhiteSwaptionPrice(s, curve, params)
	require.NoError(t, err)
	require.InDelta(t, 0.0, price, 1e-9)

	// In-the-money receiver: strike well above the par rate.
	s.Strike = 0.05
	price, err = HullWhiteSwaptionPrice(s, curve, params)
	require.NoError(t, err)
	intrinsic := 0.0
	for i, p := range s.PaymentTimes {
		intrinsic += s.Strike * s.Accruals[i] * curve.DiscountFactor(p)
	}
	intrinsic += curve.DiscountFactor(3.0) - curve.DiscountFactor(1.0)
	require.InDelta(t, s.Notional*intrinsic, price, 1e-6)
}

func TestHullWhiteSwaptionMonotonicInVol(t *testing.T) {
	curve, low := hwFixture(t, 0.005)
	_, high := hwFixture(t, 0.015)

	s := atmSwaption(curve, true)
	priceLow, err := HullWhiteSwaptionPrice(s, curve, low)
	require.NoError(t, err)
	priceHigh, err := HullWhiteSwaptionPrice(s, curve, high)
	require.NoError(t, err)
	require.Greater(t, priceHigh, priceLow)
}

func TestHullWhiteSwaptionValidation(t *testing.T) {
	curve, params := hwFixture(t, 0.01)

	_, err := HullWhiteSwaptionPrice(Swaption{Expiry: 1.0}, curve, params)
	require.Error(t, err)

	s := atmSwaption(curve, false)
	s.Expiry = 0.0
	_, err = HullWhiteSwaptionPrice(s, curve, params)
	require.Error(t, err)
}

// Calibrating the volatility to a single swaption premium and repricing
// recovers the premium: the full round trip through template, root finder and
// explicit formula.
func TestCalibrateVolatilityToSwaptionPremium(t *testing.T) {
	curve, trueParams := hwFixture(t, 0.012)

	s := atmSwaption(curve, false)
	premium, err := HullWhiteSwaptionPrice(s, curve, trueParams)
	require.NoError(t, err)
	require.Greater(t, premium, 0.0)
	s.Premium = premium

	valuation, _ := time.Parse(market.Layout, "2026-08-18")
	tpl, err := model.NewHullWhiteTemplate("EUR", valuation, []float64{0.03, 0.006}, []bool{true, false})
	require.NoError(t, err)

	fitted, err := calib.CalibrateExact(tpl, []calib.Instrument{s}, curve, HullWhiteSwaptionPricer(), calib.DefaultRootConfig())
	require.NoError(t, err)

	hw := fitted.(*model.HullWhiteParameters)
	require.Equal(t, 0.03, hw.MeanReversion(), "fixed parameter must be untouched")
	require.InDelta(t, 0.012, hw.Volatility(), 1e-4)

	repriced, err := HullWhiteSwaptionPrice(s, curve, hw)
	require.NoError(t, err)
	require.InDelta(t, premium, repriced, 1.0)
}

func TestCalibrateLeastSquaresRecoversVolatility(t *testing.T) {
	curve, trueParams := hwFixture(t, 0.012)

	payerTrade := atmSwaption(curve, true)
	receiverTrade := atmSwaption(curve, false)
	for _, trade := range []*Swaption{&payerTrade, &receiverTrade} {
		premium, err := HullWhiteSwaptionPrice(*trade, curve, trueParams)
		require.NoError(t, err)
		trade.Premium = premium
	}

	valuation, _ := time.Parse(market.Layout, "2026-08-18")
	tpl, err := model.NewHullWhiteTemplate("EUR", valuation, []float64{0.03, 0.008}, []bool{true, false})
	require.NoError(t, err)

	// Two instruments, one free parameter: the least squares variant accepts
	// the overdetermined system.
	fitted, err := calib.CalibrateLeastSquares(tpl, []calib.Instrument{payerTrade, receiverTrade}, curve, HullWhiteSwaptionPricer(), calib.DefaultLSConfig())
	require.NoError(t, err)

	hw := fitted.(*model.HullWhiteParameters)
	require.InDelta(t, 0.012, hw.Volatility(), 1e-3)
}
