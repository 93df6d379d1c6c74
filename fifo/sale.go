package fifo

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Consumption is the part of one lot taken by a sale.
type Consumption struct {
	Lot      Lot             // The lot as it was before the sale
	Quantity decimal.Decimal // Units taken, never more than Lot.Quantity
}

// Cost returns the cost basis of the consumed units.
func (c Consumption) Cost() decimal.Decimal {
	return c.Quantity.Mul(c.Lot.UnitCost)
}

// Partial reports whether the sale left units in the lot.
func (c Consumption) Partial() bool {
	return c.Quantity.LessThan(c.Lot.Quantity)
}

// MatchSale consumes quantity from lots oldest-first and returns one
// Consumption per lot touched. lots is not modified.
//
// Lots sharing a purchase date are consumed in slice order. When quantity
// exceeds the open total an *InsufficientLotsError is returned and no
// consumption is produced.
func MatchSale(lots []Lot, quantity decimal.Decimal) ([]Consumption, error) {
	if !quantity.IsPositive() {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}

	var commodity string
	if len(lots) > 0 {
		commodity = lots[0].Commodity
	}

	q := newQueue(lots)
	consumed := make([]Consumption, 0, len(lots))
	err := q.sell(commodity, time.Time{}, quantity, func(l Lot, taken decimal.Decimal) {
		consumed = append(consumed, Consumption{Lot: l, Quantity: taken})
	})
	if err != nil {
		return nil, err
	}

	return consumed, nil
}

// Sale is a simulated sale matched against the open lots.
type Sale struct {
	Commodity    string
	Date         time.Time
	Quantity     decimal.Decimal
	Consumptions []Consumption
}

// Sell replays the transactions dated on or before the sale date and matches
// quantity against the lots left open.
func Sell(txns []Transaction, on time.Time, quantity decimal.Decimal) (*Sale, error) {
	lots, err := BuildOpenLots(Until(txns, on))
	if err != nil {
		return nil, err
	}

	consumed, err := MatchSale(lots, quantity)
	if err != nil {
		var insufficient *InsufficientLotsError
		if errors.As(err, &insufficient) {
			insufficient.Date = on
			if insufficient.Commodity == "" && len(txns) > 0 {
				insufficient.Commodity = txns[0].Commodity
			}
		}
		return nil, err
	}

	sale := &Sale{
		Date:         on,
		Quantity:     quantity,
		Consumptions: consumed,
	}
	if len(consumed) > 0 {
		sale.Commodity = consumed[0].Lot.Commodity
	}
	return sale, nil
}

// CostBasis returns the FIFO cost of the units sold.
func (s *Sale) CostBasis() decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Consumptions {
		total = total.Add(c.Cost())
	}
	return total
}

// AverageCost returns the FIFO cost per unit sold.
func (s *Sale) AverageCost() decimal.Decimal {
	if s.Quantity.IsZero() {
		return decimal.Zero
	}
	return s.CostBasis().Div(s.Quantity)
}

// Gain returns the realized gain (negative for a loss) for a sale that
// brought in value.
func (s *Sale) Gain(value decimal.Decimal) decimal.Decimal {
	return value.Sub(s.CostBasis())
}

// CostCommodity returns the commodity every consumed lot was paid in. It
// reports false when the lots were paid in different commodities.
func (s *Sale) CostCommodity() (string, bool) {
	var commodity string
	for i, c := range s.Consumptions {
		if i == 0 {
			commodity = c.Lot.CostCommodity
			continue
		}
		if c.Lot.CostCommodity != commodity {
			return "", false
		}
	}
	return commodity, true
}
