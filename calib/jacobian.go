package calib

import (
	"sync"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// Objective evaluates the length-m residual vector at a free-parameter point.
type Objective func(x []float64) ([]float64, error)

// jacobian approximates dF/dx by forward finite differences. The objective is
// the dominant cost of a calibration, so the per-dimension evaluations run
// concurrently; the pricer contract requires them to be deterministic and
// side-effect free.
// TODO: improve with an analytic Jacobian where the pricer can supply one.
func jacobian(f Objective, x []float64, m int) (*mat.Dense, error) {
	var mu sync.Mutex
	var evalErr error
	wrapped := func(y, x []float64) {
		r, err := f(x)
		if err != nil {
			mu.Lock()
			if evalErr == nil {
				evalErr = err
			}
			mu.Unlock()
			for i := range y {
				y[i] = 0
			}
			return
		}
		copy(y, r)
	}
	j := mat.NewDense(m, len(x), nil)
	fd.Jacobian(j, wrapped, x, &fd.JacobianSettings{Formula: fd.Forward, Concurrent: true})
	if evalErr != nil {
		return nil, evalErr
	}
	return j, nil
}
