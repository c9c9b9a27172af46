// Package model defines the parameter template contract shared by the
// calibrators and the immutable parameter sets consumed by pricers and the
// Monte Carlo engine. A template describes a full parameter vector with a
// fixed/free partition; calibrators search over the free sub-vector only and
// expand it back to full length before generating parameters.
package model

import (
	"fmt"
	"time"
)

// Parameters is a calibrated, immutable parameter set for one model variant.
type Parameters interface {
	// Count is the full parameter vector length.
	Count() int
	Currency() string
	Valuation() time.Time
	// RelativeTime maps a date to a year fraction from the valuation date.
	RelativeTime(d time.Time) float64
}

// Template describes one model's parameter vector and how to search it.
type Template interface {
	ParametersCount() int
	InitialGuess() []float64
	// Fixed marks parameters held at the initial guess instead of calibrated.
	Fixed() []bool
	// Generate builds parameters from a full-length vector. It fails only on
	// a length mismatch; domain validity is the transform's concern.
	Generate(full []float64) (Parameters, error)
	// Constraints reports whether a free sub-vector is admissible.
	Constraints(free []float64) bool
	Transform() Transform
}

// FreeCount returns the number of calibrated parameters under a fixed mask.
func FreeCount(fixed []bool) int {
	n := 0
	for _, f := range fixed {
		if !f {
			n++
		}
	}
	return n
}

// ExpandFreeToFull inserts free values into the non-fixed positions, holding
// fixed positions at the initial guess.
func ExpandFreeToFull(free, guess []float64, fixed []bool) ([]float64, error) {
	if len(guess) != len(fixed) {
		return nil, fmt.Errorf("model: guess length %d does not match mask length %d", len(guess), len(fixed))
	}
	if len(free) != FreeCount(fixed) {
		return nil, fmt.Errorf("model: free vector length %d does not match free count %d", len(free), FreeCount(fixed))
	}
	full := make([]float64, len(guess))
	j := 0
	for i := range guess {
		if fixed[i] {
			full[i] = guess[i]
		} else {
			full[i] = free[j]
			j++
		}
	}
	return full, nil
}

// CollapseFullToFree extracts the non-fixed positions, the inverse of
// ExpandFreeToFull. It builds the starting point for a calibration search.
func CollapseFullToFree(full []float64, fixed []bool) ([]float64, error) {
	if len(full) != len(fixed) {
		return nil, fmt.Errorf("model: vector length %d does not match mask length %d", len(full), len(fixed))
	}
	free := make([]float64, 0, FreeCount(fixed))
	for i, v := range full {
		if !fixed[i] {
			free = append(free, v)
		}
	}
	return free, nil
}
