// Package schedule builds the fixing/payment date schedule consumed by the
// path aggregator, decoupled from the originating product type.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/marc-henrard/murisq-ir-models/market"
)

// ErrUnsupportedConfiguration reports a requested date convention that is not
// implemented. The caller gets an immediate failure instead of a silent
// default.
var ErrUnsupportedConfiguration = errors.New("schedule: unsupported configuration")

// Convention is a business day adjustment rule.
type Convention string

const (
	Following         Convention = "FOLLOWING"
	ModifiedFollowing Convention = "MODIFIED_FOLLOWING"
	// Preceding is recognized but not implemented.
	Preceding Convention = "PRECEDING"
)

// Entry is one coupon period: a single fixing, a payment date and the
// accrual fraction of the period.
type Entry struct {
	Fixing  time.Time
	Payment time.Time
	Accrual float64
}

type Schedule struct {
	Entries []Entry
}

// Build generates a periodic schedule from a start date. Tenor and frequency
// are in months; period end dates are adjusted with the given convention over
// the holiday calendar. The fixing of each period is its adjusted start date
// and the payment its adjusted end date; accruals use ACT/360.
func Build(start time.Time, tenorMonths, freqMonths int, conv Convention, hols []time.Time) (Schedule, error) {
	if freqMonths <= 0 || tenorMonths < freqMonths || tenorMonths%freqMonths != 0 {
		return Schedule{}, fmt.Errorf("%w: tenor %dM with frequency %dM", ErrUnsupportedConfiguration, tenorMonths, freqMonths)
	}
	if conv != Following && conv != ModifiedFollowing {
		return Schedule{}, fmt.Errorf("%w: convention %q", ErrUnsupportedConfiguration, conv)
	}
	n := tenorMonths / freqMonths
	entries := make([]Entry, n)
	prev, err := adjust(start, conv, hols)
	if err != nil {
		return Schedule{}, err
	}
	for i := 0; i < n; i++ {
		end, err := adjust(start.AddDate(0, (i+1)*freqMonths, 0), conv, hols)
		if err != nil {
			return Schedule{}, err
		}
		accrual, err := market.YearFraction(prev, end, market.Act360)
		if err != nil {
			return Schedule{}, err
		}
		entries[i] = Entry{Fixing: prev, Payment: end, Accrual: accrual}
		prev = end
	}
	return Schedule{Entries: entries}, nil
}

// Times maps the schedule to year fractions on the curve's time axis.
func (s Schedule) Times(c *market.Curve) (fixings, payments, accruals []float64) {
	fixings = make([]float64, len(s.Entries))
	payments = make([]float64, len(s.Entries))
	accruals = make([]float64, len(s.Entries))
	for i, e := range s.Entries {
		fixings[i] = c.RelativeTime(e.Fixing)
		payments[i] = c.RelativeTime(e.Payment)
		accruals[i] = e.Accrual
	}
	return fixings, payments, accruals
}

func adjust(d time.Time, conv Convention, hols []time.Time) (time.Time, error) {
	switch conv {
	case Following:
		return adjustFollowing(d, hols), nil
	case ModifiedFollowing:
		adjusted := adjustFollowing(d, hols)
		if adjusted.Month() != d.Month() {
			for {
				d = d.AddDate(0, 0, -1)
				if isBusinessDay(d, hols) {
					return d, nil
				}
			}
		}
		return adjusted, nil
	}
	return time.Time{}, fmt.Errorf("%w: convention %q", ErrUnsupportedConfiguration, conv)
}

func adjustFollowing(d time.Time, hols []time.Time) time.Time {
	for {
		if isBusinessDay(d, hols) {
			return d
		}
		d = d.AddDate(0, 0, 1)
	}
}

func isBusinessDay(d time.Time, hols []time.Time) bool {
	if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		return false
	}
	for _, h := range hols {
		if d.Equal(h) {
			return false
		}
	}
	return true
}
