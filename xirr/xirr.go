// Package xirr computes the annualized internal rate of return of an
// irregular cash flow schedule.
//
// The rate r solves
//
//	Σ amountᵢ / (1 + r)^tᵢ = 0
//
// where tᵢ is the year fraction between the earliest flow and flow i under a
// day count convention (30/360 US unless configured otherwise). Investments
// are negative amounts, returns positive ones.
//
// Example usage:
//
//	rate, err := xirr.Solve([]xirr.CashFlow{
//	    {Date: bought, Amount: -1000},
//	    {Date: valued, Amount: 1100},
//	})
package xirr

import (
	"math"
	"time"
)

const (
	// DefaultGuess is the starting rate of the Newton-Raphson iteration.
	DefaultGuess = 0.1

	// DefaultTolerance bounds the net present value at the returned rate,
	// relative to the largest absolute amount in the schedule.
	DefaultTolerance = 1e-7

	// DefaultMaxIterations caps the Newton-Raphson iteration.
	DefaultMaxIterations = 100

	// stepTolerance ends the iteration once the rate stops moving, which is
	// what happens first when amounts are large.
	stepTolerance = 1e-12

	// bisectionIterations caps the fallback bracketing search.
	bisectionIterations = 300

	// lowestRate keeps 1 + r positive during the fallback search.
	lowestRate  = -0.9999
	highestRate = 1e6
)

// CashFlow is one dated amount.
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// Option configures Solve.
type Option func(*solver)

// WithDayCount selects the day count convention.
func WithDayCount(dc DayCount) Option {
	return func(s *solver) {
		s.dayCount = dc
	}
}

// WithGuess sets the starting rate.
func WithGuess(guess float64) Option {
	return func(s *solver) {
		s.guess = guess
	}
}

// WithTolerance sets the accepted net present value relative to the largest
// absolute amount.
func WithTolerance(tolerance float64) Option {
	return func(s *solver) {
		s.tolerance = tolerance
	}
}

// WithMaxIterations caps the Newton-Raphson iteration.
func WithMaxIterations(n int) Option {
	return func(s *solver) {
		s.maxIterations = n
	}
}

type solver struct {
	dayCount      DayCount
	guess         float64
	tolerance     float64
	maxIterations int

	times   []float64
	amounts []float64

	// threshold is tolerance scaled by the largest absolute amount.
	threshold float64
}

// Solve returns the annualized rate of return of flows.
//
// It runs Newton-Raphson from the configured guess. When Newton leaves the
// domain (1 + r ≤ 0), hits a flat derivative or runs out of iterations, a
// bisection over a sign-changing bracket takes over. A *NoConvergenceError is
// returned when neither finds a root, including schedules whose amounts never
// change sign.
func Solve(flows []CashFlow, opts ...Option) (float64, error) {
	s := &solver{
		dayCount:      Thirty360US{},
		guess:         DefaultGuess,
		tolerance:     DefaultTolerance,
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(flows); err != nil {
		return 0, err
	}

	if rate, ok := s.newton(); ok {
		return rate, nil
	}
	if rate, ok := s.bisect(); ok {
		return rate, nil
	}

	return 0, &NoConvergenceError{
		Reason:     "no root found",
		Iterations: s.maxIterations,
		Flows:      len(flows),
	}
}

// load converts dates into year fractions from the earliest flow.
func (s *solver) load(flows []CashFlow) error {
	if len(flows) < 2 {
		return &NoConvergenceError{Reason: "at least two cash flows are required", Flows: len(flows)}
	}

	var positive, negative bool
	first := flows[0].Date
	for _, f := range flows {
		if math.IsNaN(f.Amount) || math.IsInf(f.Amount, 0) {
			return &NoConvergenceError{Reason: "cash flow amount is not a number", Flows: len(flows)}
		}
		if f.Amount > 0 {
			positive = true
		}
		if f.Amount < 0 {
			negative = true
		}
		if f.Date.Before(first) {
			first = f.Date
		}
	}
	if !positive || !negative {
		return &NoConvergenceError{Reason: "cash flows do not change sign", Flows: len(flows)}
	}

	s.times = make([]float64, len(flows))
	s.amounts = make([]float64, len(flows))
	var largest float64
	spread := false
	for i, f := range flows {
		s.times[i] = s.dayCount.YearFraction(first, f.Date)
		s.amounts[i] = f.Amount
		largest = math.Max(largest, math.Abs(f.Amount))
		if s.times[i] != 0 {
			spread = true
		}
	}
	// With every year fraction at zero the net present value does not depend
	// on the rate.
	if !spread {
		return &NoConvergenceError{Reason: "all cash flows fall on the same day", Flows: len(flows)}
	}
	s.threshold = s.tolerance * largest
	return nil
}

// npv returns the net present value at rate and its derivative.
func (s *solver) npv(rate float64) (value, derivative float64) {
	base := 1 + rate
	for i, t := range s.times {
		discount := math.Pow(base, -t)
		value += s.amounts[i] * discount
		derivative -= t * s.amounts[i] * discount / base
	}
	return value, derivative
}

func (s *solver) newton() (float64, bool) {
	rate := s.guess
	for i := 0; i < s.maxIterations; i++ {
		if rate <= -1 {
			return 0, false
		}

		value, derivative := s.npv(rate)
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		if math.Abs(value) < s.threshold {
			return rate, true
		}
		if derivative == 0 || math.IsNaN(derivative) || math.IsInf(derivative, 0) {
			return 0, false
		}

		step := value / derivative
		rate -= step
		if math.Abs(step) <= stepTolerance*(1+math.Abs(rate)) {
			if rate <= -1 {
				return 0, false
			}
			return rate, true
		}
	}
	return 0, false
}

func (s *solver) bisect() (float64, bool) {
	lo, hi := lowestRate, 1.0
	flo, _ := s.npv(lo)
	fhi, _ := s.npv(hi)

	for sameSign(flo, fhi) && hi < highestRate {
		hi *= 2
		fhi, _ = s.npv(hi)
	}
	if sameSign(flo, fhi) || math.IsNaN(flo) || math.IsNaN(fhi) {
		return 0, false
	}

	for i := 0; i < bisectionIterations; i++ {
		mid := lo + (hi-lo)/2
		fmid, _ := s.npv(mid)
		if math.Abs(fmid) < s.threshold || (hi-lo)/2 <= stepTolerance*(1+math.Abs(mid)) {
			return mid, true
		}
		if sameSign(fmid, flo) {
			lo, flo = mid, fmid
		} else {
			hi = mid
		}
	}
	return 0, false
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
