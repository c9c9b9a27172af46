package market

import "time"

// Supported day count conventions for accrual and curve time fractions.
const (
	Act365F   = "ACT/365F"
	Act360    = "ACT/360"
	Thirty360 = "30/360"
)

// YearFraction computes the day count fraction between two dates under the
// given convention. The curve time axis always uses ACT/365F; leg accruals
// use the convention of the index.
func YearFraction(start, end time.Time, convention string) (float64, error) {
	switch convention {
	case Act365F:
		return end.Sub(start).Hours() / (365.0 * 24.0), nil
	case Act360:
		return end.Sub(start).Hours() / (360.0 * 24.0), nil
	case Thirty360:
		d1, d2 := start.Day(), end.Day()
		if d1 == 31 {
			d1 = 30
		}
		if d2 == 31 && d1 == 30 {
			d2 = 30
		}
		days := 360*(end.Year()-start.Year()) + 30*(int(end.Month())-int(start.Month())) + d2 - d1
		return float64(days) / 360.0, nil
	}
	return 0, errUnknownDayCount(convention)
}

type errUnknownDayCount string

func (e errUnknownDayCount) Error() string {
	return "market: unknown day count convention " + string(e)
}
