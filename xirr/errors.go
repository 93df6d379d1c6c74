package xirr

import "fmt"

// NoConvergenceError is returned when no rate of return can be found for a
// cash flow schedule.
type NoConvergenceError struct {
	Reason     string
	Iterations int
	Flows      int
}

func (e *NoConvergenceError) Error() string {
	if e.Iterations > 0 {
		return fmt.Sprintf("xirr did not converge after %d iterations over %d cash flows: %s", e.Iterations, e.Flows, e.Reason)
	}
	return fmt.Sprintf("xirr did not converge over %d cash flows: %s", e.Flows, e.Reason)
}
