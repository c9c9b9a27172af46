package model

import "math"

// Mapping converts a single bounded model parameter to an unconstrained
// optimizer variable and back. The round trip is the identity on the
// parameter's domain.
type Mapping interface {
	ToUnconstrained(v float64) float64
	FromUnconstrained(u float64) float64
}

// Identity leaves an already unbounded parameter untouched.
type Identity struct{}

func (Identity) ToUnconstrained(v float64) float64   { return v }
func (Identity) FromUnconstrained(u float64) float64 { return u }

// Positive maps a parameter on (0, Inf) through log/exp.
type Positive struct{}

func (Positive) ToUnconstrained(v float64) float64   { return math.Log(v) }
func (Positive) FromUnconstrained(u float64) float64 { return math.Exp(u) }

// Correlation maps a parameter on (-1, 1) through atanh/tanh.
type Correlation struct{}

func (Correlation) ToUnconstrained(v float64) float64   { return math.Atanh(v) }
func (Correlation) FromUnconstrained(u float64) float64 { return math.Tanh(u) }

// Transform holds one mapping per full parameter vector entry.
type Transform []Mapping

// FreeSubset keeps the mappings of the non-fixed positions, in order.
func (t Transform) FreeSubset(fixed []bool) Transform {
	out := make(Transform, 0, len(t))
	for i, m := range t {
		if !fixed[i] {
			out = append(out, m)
		}
	}
	return out
}

// ToUnconstrained maps a vector elementwise into optimizer space.
func (t Transform) ToUnconstrained(x []float64) []float64 {
	u := make([]float64, len(x))
	for i, m := range t {
		u[i] = m.ToUnconstrained(x[i])
	}
	return u
}

// FromUnconstrained maps an optimizer-space vector back to the parameter
// domain.
func (t Transform) FromUnconstrained(u []float64) []float64 {
	x := make([]float64, len(u))
	for i, m := range t {
		x[i] = m.FromUnconstrained(u[i])
	}
	return x
}
