package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExpandCollapseRoundTrip(t *testing.T) {
	guess := []float64{0.01, 0.2, 0.03, 0.5}
	fixed := []bool{true, false, true, false}

	require.Equal(t, 2, FreeCount(fixed))

	free := []float64{0.25, 0.4}
	full, err := ExpandFreeToFull(free, guess, fixed)
	require.NoError(t, err)
	require.Equal(t, []float64{0.01, 0.25, 0.03, 0.4}, full)

	back, err := CollapseFullToFree(full, fixed)
	require.NoError(t, err)
	require.Equal(t, free, back)
}

func TestExpandDimensionChecks(t *testing.T) {
	_, err := ExpandFreeToFull([]float64{1.0}, []float64{1, 2}, []bool{false, false})
	require.Error(t, err)

	_, err = CollapseFullToFree([]float64{1.0}, []bool{false, false})
	require.Error(t, err)
}

func TestTransformRoundTrip(t *testing.T) {
	tr := Transform{Positive{}, Correlation{}, Identity{}}
	x := []float64{0.25, -0.6, 1.7}

	u := tr.ToUnconstrained(x)
	back := tr.FromUnconstrained(u)
	for i := range x {
		require.InDelta(t, x[i], back[i], 1e-14)
	}
}

func TestTransformFreeSubset(t *testing.T) {
	tr := Transform{Positive{}, Correlation{}, Identity{}}
	sub := tr.FreeSubset([]bool{true, false, false})
	require.Len(t, sub, 2)
	require.IsType(t, Correlation{}, sub[0])
	require.IsType(t, Identity{}, sub[1])
}

func TestHullWhiteTemplate(t *testing.T) {
	valuation, _ := time.Parse("2006-01-02", "2026-08-18")
	tpl, err := NewHullWhiteTemplate("EUR", valuation, []float64{0.03, 0.01}, []bool{true, false})
	require.NoError(t, err)

	require.Equal(t, 2, tpl.ParametersCount())
	require.Equal(t, []bool{true, false}, tpl.Fixed())
	require.True(t, tpl.Constraints([]float64{0.02}))
	require.False(t, tpl.Constraints([]float64{-0.02}))

	params, err := tpl.Generate([]float64{0.03, 0.015})
	require.NoError(t, err)
	hw := params.(*HullWhiteParameters)
	require.Equal(t, 0.03, hw.MeanReversion())
	require.Equal(t, 0.015, hw.Volatility())
	require.Equal(t, "EUR", hw.Currency())
	require.InDelta(t, 1.0, hw.RelativeTime(valuation.AddDate(1, 0, 0)), 0.002)

	_, err = tpl.Generate([]float64{0.03})
	require.Error(t, err)
}

func TestG2ppTemplate(t *testing.T) {
	valuation, _ := time.Parse("2006-01-02", "2026-08-18")
	tpl, err := NewG2ppTemplate("EUR", valuation, []float64{0.03, 0.01, 0.1, 0.008, -0.7}, []bool{false, false, false, false, false})
	require.NoError(t, err)

	params, err := tpl.Generate(tpl.InitialGuess())
	require.NoError(t, err)
	g2 := params.(*G2ppParameters)
	require.Equal(t, -0.7, g2.Correlation())

	require.True(t, tpl.Constraints([]float64{0.03, 0.01, 0.1, 0.008, -0.7}))
	require.False(t, tpl.Constraints([]float64{0.03, 0.01, 0.1, 0.008, -1.2}))
}

func TestRationalTemplate(t *testing.T) {
	valuation, _ := time.Parse("2006-01-02", "2026-08-18")
	tpl, err := NewRationalTemplate("GBP", valuation, []float64{0.5, 0.3, 0.2}, []bool{false, false, true})
	require.NoError(t, err)

	params, err := tpl.Generate([]float64{0.6, 0.25, 0.2})
	require.NoError(t, err)
	r := params.(*RationalParameters)
	require.Equal(t, 0.6, r.A1())
	require.Equal(t, 0.2, r.Correlation())
	require.Equal(t, 3, r.Count())
}
