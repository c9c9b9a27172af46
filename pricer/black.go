// Package pricer provides the closed-form collaborators consumed by the
// calibrators: Black and Bachelier option formulas and an explicit Hull-White
// swaption price. Calibration instruments embed their premium so the model
// price handed to a calibrator is zero at the solution.
package pricer

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var stdNormal = distuv.UnitNormal

// BlackPrice is the undiscounted Black-76 option price on a forward.
func BlackPrice(forward, strike, vol, expiry float64, call bool) float64 {
	if vol <= 0 || expiry <= 0 {
		return blackIntrinsic(forward, strike, call)
	}
	sd := vol * math.Sqrt(expiry)
	d1 := (math.Log(forward/strike) + 0.5*sd*sd) / sd
	d2 := d1 - sd
	if call {
		return forward*stdNormal.CDF(d1) - strike*stdNormal.CDF(d2)
	}
	return strike*stdNormal.CDF(-d2) - forward*stdNormal.CDF(-d1)
}

// BachelierPrice is the undiscounted normal-model option price on a forward.
func BachelierPrice(forward, strike, vol, expiry float64, call bool) float64 {
	if vol <= 0 || expiry <= 0 {
		return blackIntrinsic(forward, strike, call)
	}
	sd := vol * math.Sqrt(expiry)
	d := (forward - strike) / sd
	if call {
		return (forward-strike)*stdNormal.CDF(d) + sd*stdNormal.Prob(d)
	}
	return (strike-forward)*stdNormal.CDF(-d) + sd*stdNormal.Prob(d)
}

func blackIntrinsic(forward, strike float64, call bool) float64 {
	if call {
		return math.Max(forward-strike, 0)
	}
	return math.Max(strike-forward, 0)
}
