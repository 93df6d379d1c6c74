package indicator

import "fmt"

// NoOpenLotsError is returned when a commodity has nothing left to report.
type NoOpenLotsError struct {
	Commodity string
}

func (e *NoOpenLotsError) Error() string {
	return fmt.Sprintf("no open lots for %s", e.Commodity)
}
