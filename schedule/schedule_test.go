package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marc-henrard/murisq-ir-models/market"
)

func TestBuildQuarterlySchedule(t *testing.T) {
	start, _ := time.Parse(market.Layout, "2026-08-18")

	s, err := Build(start, 12, 3, Following, nil)
	require.NoError(t, err)
	require.Len(t, s.Entries, 4)

	for i, e := range s.Entries {
		require.True(t, e.Payment.After(e.Fixing))
		require.Greater(t, e.Accrual, 0.20)
		require.Less(t, e.Accrual, 0.30)
		if i > 0 {
			require.Equal(t, s.Entries[i-1].Payment, e.Fixing)
		}
	}
}

func TestBuildAdjustsWeekends(t *testing.T) {
	// 2026-10-17 is a Saturday; one month later periods land on weekends too.
	start, _ := time.Parse(market.Layout, "2026-10-17")

	s, err := Build(start, 2, 1, Following, nil)
	require.NoError(t, err)
	for _, e := range s.Entries {
		require.NotEqual(t, time.Saturday, e.Fixing.Weekday())
		require.NotEqual(t, time.Sunday, e.Fixing.Weekday())
		require.NotEqual(t, time.Saturday, e.Payment.Weekday())
		require.NotEqual(t, time.Sunday, e.Payment.Weekday())
	}
}

func TestBuildAdjustsHolidays(t *testing.T) {
	start, _ := time.Parse(market.Layout, "2026-08-18")
	holiday, _ := time.Parse(market.Layout, "2026-11-18")

	s, err := Build(start, 6, 3, Following, []time.Time{holiday})
	require.NoError(t, err)
	require.Equal(t, holiday.AddDate(0, 0, 1), s.Entries[0].Payment)
}

func TestModifiedFollowingRollsBack(t *testing.T) {
	// 2027-01-30 is a Saturday; Following would cross into February.
	start, _ := time.Parse(market.Layout, "2026-12-30")

	s, err := Build(start, 1, 1, ModifiedFollowing, nil)
	require.NoError(t, err)
	require.Equal(t, time.January, s.Entries[0].Payment.Month())
	require.Equal(t, 29, s.Entries[0].Payment.Day())
}

func TestBuildRejectsUnsupportedConfigurations(t *testing.T) {
	start, _ := time.Parse(market.Layout, "2026-08-18")

	type testCases struct {
		name  string
		tenor int
		freq  int
		conv  Convention
	}

	for _, test := range []testCases{
		{name: "PRECEDING_CONVENTION", tenor: 12, freq: 3, conv: Preceding},
		{name: "UNKNOWN_CONVENTION", tenor: 12, freq: 3, conv: Convention("NEAREST")},
		{name: "ZERO_FREQUENCY", tenor: 12, freq: 0, conv: Following},
		{name: "TENOR_NOT_MULTIPLE", tenor: 10, freq: 3, conv: Following},
		{name: "TENOR_BELOW_FREQUENCY", tenor: 1, freq: 3, conv: Following},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Build(start, test.tenor, test.freq, test.conv, nil)
			require.ErrorIs(t, err, ErrUnsupportedConfiguration)
		})
	}
}

func TestScheduleTimes(t *testing.T) {
	start, _ := time.Parse(market.Layout, "2026-08-18")
	curve := market.Flat(start, "EUR", 0.02)

	s, err := Build(start, 12, 6, Following, nil)
	require.NoError(t, err)

	fixings, payments, accruals := s.Times(curve)
	require.Len(t, fixings, 2)
	require.InDelta(t, 0.0, fixings[0], 0.01)
	require.InDelta(t, 0.5, payments[0], 0.02)
	require.InDelta(t, 1.0, payments[1], 0.02)
	require.InDelta(t, s.Entries[0].Accrual, accruals[0], 1e-12)
}
