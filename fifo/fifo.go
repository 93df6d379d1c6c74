// Package fifo applies first-in-first-out lot accounting to the purchase and
// sale history of a single commodity.
//
// A purchase opens a lot that keeps its unit cost for its whole life. A sale
// consumes the oldest open lots first, splitting the last lot it touches when
// that lot is larger than what remains to be sold. The package never reads a
// journal itself: callers hand it a commodity-scoped slice of Transaction
// values, usually produced by the hledger package.
//
// Example usage:
//
//	lots, err := fifo.BuildOpenLots(txns)
//	if err != nil {
//	    var insufficient *fifo.InsufficientLotsError
//	    if errors.As(err, &insufficient) {
//	        // history sells more than it ever bought
//	    }
//	}
//
//	consumed, err := fifo.MatchSale(lots, decimal.NewFromInt(5))
//
// All quantities and costs use decimal arithmetic so that replaying a long
// history does not accumulate floating point drift.
package fifo

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// DateLayout is the layout used for every date rendered by this package.
const DateLayout = "2006-01-02"

// Transaction is one purchase or sale of a commodity.
// A positive Quantity is a purchase, a negative one a sale.
type Transaction struct {
	Date     time.Time
	Quantity decimal.Decimal
	// UnitCost is the price paid per unit for purchases. For sales it is the
	// sale price, which never overrides the FIFO cost basis.
	UnitCost    decimal.Decimal
	Description string

	// Account, Commodity and CostCommodity are carried through to lots so
	// that generated journal entries can reference them.
	Account       string
	Commodity     string
	CostCommodity string
}

// IsPurchase reports whether the transaction adds units.
func (t Transaction) IsPurchase() bool {
	return t.Quantity.IsPositive()
}

// IsSale reports whether the transaction removes units.
func (t Transaction) IsSale() bool {
	return t.Quantity.IsNegative()
}

func (t Transaction) String() string {
	return fmt.Sprintf("%s %s %s @ %s %s", t.Date.Format(DateLayout), t.Quantity, t.Commodity, t.UnitCost, t.CostCommodity)
}

// Lot is the remaining, unsold part of a purchase.
type Lot struct {
	Date          time.Time
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Account       string
	Commodity     string
	CostCommodity string
}

// newLot opens a lot for a purchase transaction.
func newLot(t Transaction) Lot {
	return Lot{
		Date:          t.Date,
		Quantity:      t.Quantity,
		UnitCost:      t.UnitCost,
		Account:       t.Account,
		Commodity:     t.Commodity,
		CostCommodity: t.CostCommodity,
	}
}

// Cost returns the total cost of the units left in the lot.
func (l Lot) Cost() decimal.Decimal {
	return l.Quantity.Mul(l.UnitCost)
}

func (l Lot) String() string {
	return fmt.Sprintf("%s %s %s @ %s %s", l.Date.Format(DateLayout), l.Quantity, l.Commodity, l.UnitCost, l.CostCommodity)
}

// TotalQuantity sums the quantity of all lots.
func TotalQuantity(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return total
}

// TotalCost sums the cost of all lots.
func TotalCost(lots []Lot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Cost())
	}
	return total
}

// SortTransactions returns a copy of txns ordered by date. Transactions
// sharing a date keep their original relative order.
func SortTransactions(txns []Transaction) []Transaction {
	sorted := slices.Clone(txns)
	slices.SortStableFunc(sorted, func(a, b Transaction) int {
		return a.Date.Compare(b.Date)
	})
	return sorted
}

// Until returns the transactions dated on or before the given day, in their
// original order.
func Until(txns []Transaction, day time.Time) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Date.After(day) {
			continue
		}
		out = append(out, t)
	}
	return out
}
