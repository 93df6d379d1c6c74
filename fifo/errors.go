package fifo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// InsufficientLotsError is returned when a sale asks for more units than the
// open lots hold at that point. During a replay this usually means the
// history is incomplete (missing purchases, wrong commodity filter).
type InsufficientLotsError struct {
	Commodity string
	Date      time.Time // Date of the offending sale (zero for a simulated sale)
	Requested decimal.Decimal
	Available decimal.Decimal
	Open      []Lot // Lots open when the sale was attempted
}

func (e *InsufficientLotsError) Error() string {
	commodity := e.Commodity
	if commodity == "" {
		commodity = "units"
	}

	msg := fmt.Sprintf("insufficient lots to sell %s %s: only %s open", e.Requested, commodity, e.Available)
	if e.Date.IsZero() {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Date.Format(DateLayout), msg)
}

// Shortfall returns how many units are missing to complete the sale.
func (e *InsufficientLotsError) Shortfall() decimal.Decimal {
	return e.Requested.Sub(e.Available)
}

func (e *InsufficientLotsError) GetDate() time.Time {
	return e.Date
}

func (e *InsufficientLotsError) GetLots() []Lot {
	return e.Open
}

// InvalidQuantityError is returned when a simulated sale is asked for a
// quantity that is not strictly positive.
type InvalidQuantityError struct {
	Quantity decimal.Decimal
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("sale quantity must be positive, got %s", e.Quantity)
}
