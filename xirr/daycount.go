package xirr

import (
	"fmt"
	"strings"
	"time"
)

// DayCount converts the distance between two dates into a fraction of a year.
type DayCount interface {
	// YearFraction returns the signed number of years from start to end.
	YearFraction(start, end time.Time) float64
	String() string
}

// Thirty360US is the 30/360 US (bond basis) convention: every month counts
// 30 days and every year 360 days.
//
// End-of-month rules, applied in order:
//   - start on the last day of February: if end is also the last day of
//     February, end becomes 30; start becomes 30
//   - end on the 31st while start is on the 30th or 31st: end becomes 30
//   - start on the 31st: start becomes 30
type Thirty360US struct{}

// Days returns the 30/360 US day count between start and end.
func (Thirty360US) Days(start, end time.Time) int {
	y1, m1, d1 := start.Date()
	y2, m2, d2 := end.Date()

	if isLastDayOfFebruary(start) {
		if isLastDayOfFebruary(end) {
			d2 = 30
		}
		d1 = 30
	}
	if d2 == 31 && d1 >= 30 {
		d2 = 30
	}
	if d1 == 31 {
		d1 = 30
	}

	return 360*(y2-y1) + 30*(int(m2)-int(m1)) + (d2 - d1)
}

func (c Thirty360US) YearFraction(start, end time.Time) float64 {
	return float64(c.Days(start, end)) / 360
}

func (Thirty360US) String() string {
	return "30/360us"
}

// Actual365Fixed counts calendar days over a 365 day year.
type Actual365Fixed struct{}

func (Actual365Fixed) YearFraction(start, end time.Time) float64 {
	return float64(daysBetween(start, end)) / 365
}

func (Actual365Fixed) String() string {
	return "act/365f"
}

// ParseDayCount returns the convention for a name as printed by String.
func ParseDayCount(name string) (DayCount, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "30/360us", "30/360", "30u/360":
		return Thirty360US{}, nil
	case "act/365f", "actual/365", "act/365":
		return Actual365Fixed{}, nil
	default:
		return nil, fmt.Errorf("unknown day count convention %q, expected 30/360us or act/365f", name)
	}
}

func isLastDayOfFebruary(t time.Time) bool {
	return t.Month() == time.February && t.AddDate(0, 0, 1).Month() == time.March
}

// daysBetween counts calendar days, ignoring the time of day and location.
func daysBetween(start, end time.Time) int {
	y1, m1, d1 := start.Date()
	y2, m2, d2 := end.Date()
	a := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	b := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
