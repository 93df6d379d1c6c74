package xirr

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	assert.NoError(t, err)
	return d
}

func assertNear(t *testing.T, want, got, tolerance float64) {
	t.Helper()
	assert.True(t, math.Abs(want-got) <= tolerance, "want %v, got %v (tolerance %v)", want, got, tolerance)
}

func TestSolve(t *testing.T) {
	t.Run("OneYearTenPercent", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2020-01-01"), Amount: -1000},
			{Date: date(t, "2021-01-01"), Amount: 1100},
		})
		assert.NoError(t, err)
		assertNear(t, 0.10, rate, 1e-4)
	})

	t.Run("FlowOrderDoesNotMatter", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2021-01-01"), Amount: 1100},
			{Date: date(t, "2020-01-01"), Amount: -1000},
		})
		assert.NoError(t, err)
		assertNear(t, 0.10, rate, 1e-4)
	})

	t.Run("Loss", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2020-01-01"), Amount: -1000},
			{Date: date(t, "2022-01-01"), Amount: 810},
		})
		assert.NoError(t, err)
		assertNear(t, -0.10, rate, 1e-6)
	})

	t.Run("SeveralPurchases", func(t *testing.T) {
		flows := []CashFlow{
			{Date: date(t, "2020-01-01"), Amount: -50},
			{Date: date(t, "2020-06-01"), Amount: -60},
			{Date: date(t, "2021-01-01"), Amount: 150},
		}
		rate, err := Solve(flows)
		assert.NoError(t, err)

		// The net present value at the returned rate is zero.
		var npv float64
		dc := Thirty360US{}
		for _, f := range flows {
			npv += f.Amount / math.Pow(1+rate, dc.YearFraction(flows[0].Date, f.Date))
		}
		assertNear(t, 0, npv, 1e-6)
		assert.True(t, rate > 0)
	})

	t.Run("ActualDayCountMatchesSpreadsheets", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2008-01-01"), Amount: -10000},
			{Date: date(t, "2008-03-01"), Amount: 2750},
			{Date: date(t, "2008-10-30"), Amount: 4250},
			{Date: date(t, "2009-02-15"), Amount: 3250},
			{Date: date(t, "2009-04-01"), Amount: 2750},
		}, WithDayCount(Actual365Fixed{}))
		assert.NoError(t, err)
		assertNear(t, 0.373362535, rate, 1e-4)
	})

	t.Run("BadGuessFallsBackToBisection", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2020-01-01"), Amount: -1000},
			{Date: date(t, "2021-01-01"), Amount: 1100},
		}, WithGuess(-5))
		assert.NoError(t, err)
		assertNear(t, 0.10, rate, 1e-4)
	})

	t.Run("LargeAmounts", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2020-01-01"), Amount: -1e9},
			{Date: date(t, "2021-01-01"), Amount: 1.25e9},
		})
		assert.NoError(t, err)
		assertNear(t, 0.25, rate, 1e-6)
	})

	t.Run("TinyAmounts", func(t *testing.T) {
		rate, err := Solve([]CashFlow{
			{Date: date(t, "2020-01-01"), Amount: -1e-9},
			{Date: date(t, "2021-01-01"), Amount: 2e-9},
		})
		assert.NoError(t, err)
		assertNear(t, 1.0, rate, 1e-6)
	})
}

func TestSolveNoConvergence(t *testing.T) {
	tests := []struct {
		name  string
		flows []CashFlow
	}{
		{
			name:  "Empty",
			flows: nil,
		},
		{
			name: "SingleFlow",
			flows: []CashFlow{
				{Date: date(t, "2020-01-01"), Amount: -1000},
			},
		},
		{
			name: "AllNegative",
			flows: []CashFlow{
				{Date: date(t, "2020-01-01"), Amount: -1000},
				{Date: date(t, "2021-01-01"), Amount: -100},
			},
		},
		{
			name: "AllPositive",
			flows: []CashFlow{
				{Date: date(t, "2020-01-01"), Amount: 1000},
				{Date: date(t, "2021-01-01"), Amount: 100},
			},
		},
		{
			name: "SameDayNonZeroNet",
			flows: []CashFlow{
				{Date: date(t, "2020-01-01"), Amount: -1000},
				{Date: date(t, "2020-01-01"), Amount: 1100},
			},
		},
		{
			name: "SameDayZeroNet",
			flows: []CashFlow{
				{Date: date(t, "2020-01-01"), Amount: -1000},
				{Date: date(t, "2020-01-01"), Amount: 1000},
			},
		},
		{
			name: "SameDayUnderThirty360",
			flows: []CashFlow{
				{Date: date(t, "2020-01-30"), Amount: -1000},
				{Date: date(t, "2020-01-31"), Amount: 1000},
			},
		},
		{
			name: "NotANumber",
			flows: []CashFlow{
				{Date: date(t, "2020-01-01"), Amount: -1000},
				{Date: date(t, "2021-01-01"), Amount: math.NaN()},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Solve(test.flows)
			assert.Error(t, err)

			var noConvergence *NoConvergenceError
			assert.True(t, errors.As(err, &noConvergence), "got %T", err)
			assert.Contains(t, err.Error(), "did not converge")
		})
	}
}

func TestThirty360US(t *testing.T) {
	tests := []struct {
		start, end string
		want       int
	}{
		{"2020-01-01", "2021-01-01", 360},
		{"2020-01-15", "2020-02-15", 30},
		{"2020-01-31", "2020-03-31", 60},
		{"2020-01-30", "2020-03-31", 60},
		{"2020-01-29", "2020-03-31", 62},
		{"2020-02-29", "2020-03-31", 30},
		{"2021-02-28", "2022-02-28", 360},
		{"2020-02-29", "2021-02-28", 360},
		{"2021-02-28", "2021-03-01", 1},
		{"2020-06-01", "2021-01-01", 210},
	}

	dc := Thirty360US{}
	for _, test := range tests {
		t.Run(test.start+"_"+test.end, func(t *testing.T) {
			assert.Equal(t, test.want, dc.Days(date(t, test.start), date(t, test.end)))
		})
	}
}

func TestActual365Fixed(t *testing.T) {
	dc := Actual365Fixed{}
	assertNear(t, 1, dc.YearFraction(date(t, "2021-01-01"), date(t, "2022-01-01")), 1e-12)
	assertNear(t, 366.0/365.0, dc.YearFraction(date(t, "2020-01-01"), date(t, "2021-01-01")), 1e-12)
}

func TestParseDayCount(t *testing.T) {
	for _, name := range []string{"", "30/360us", "30/360", "30U/360"} {
		dc, err := ParseDayCount(name)
		assert.NoError(t, err)
		assert.Equal(t, "30/360us", dc.String())
	}

	dc, err := ParseDayCount("ACT/365F")
	assert.NoError(t, err)
	assert.Equal(t, "act/365f", dc.String())

	_, err = ParseDayCount("act/act")
	assert.Error(t, err)
}
