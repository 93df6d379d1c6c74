// Package indicator aggregates the open lots of a commodity into a report
// record and, when a recent market price is known, values the position and
// computes its annualized return.
package indicator

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/xirr"
)

// MarketPrice is the latest known price of a commodity.
type MarketPrice struct {
	Price decimal.Decimal
	Date  time.Time
	Quote string // commodity the price is expressed in, empty if unknown
}

// PriceLookup returns the latest market price of a commodity, if any.
type PriceLookup func(commodity string) (MarketPrice, bool)

// Record is the aggregated view of one commodity's open lots.
type Record struct {
	Commodity     string
	CostCommodity string
	Quantity      decimal.Decimal
	Amount        decimal.Decimal
	AverageCost   decimal.Decimal
	LastPurchase  time.Time

	// Market is nil unless a price dated after the last purchase exists and
	// is quoted in the cost commodity.
	Market *Market
}

// Market holds the fields derived from a market price.
type Market struct {
	Price  decimal.Decimal
	Date   time.Time
	Amount decimal.Decimal
	Profit decimal.Decimal

	// XIRR is only meaningful when XIRRErr is nil.
	XIRR    float64
	XIRRErr error
}

// XIRR returns the annualized return of the record. The second value is false
// when there is no market price or when no rate could be solved for.
func (r Record) XIRR() (float64, bool) {
	if r.Market == nil || r.Market.XIRRErr != nil {
		return 0, false
	}
	return r.Market.XIRR, true
}

// Option configures Compute.
type Option func(*options)

type options struct {
	solver []xirr.Option
}

// WithDayCount sets the day count used for the return calculation.
func WithDayCount(dc xirr.DayCount) Option {
	return func(o *options) {
		o.solver = append(o.solver, xirr.WithDayCount(dc))
	}
}

// WithSolverOptions passes options through to xirr.Solve.
func WithSolverOptions(opts ...xirr.Option) Option {
	return func(o *options) {
		o.solver = append(o.solver, opts...)
	}
}

// Compute aggregates lots into a Record. A nil lookup means no market data.
//
// A *NoOpenLotsError is returned when the lots hold no units. A failing rate
// calculation is not an error of Compute: it is kept in Market.XIRRErr.
func Compute(commodity string, lots []fifo.Lot, lookup PriceLookup, opts ...Option) (Record, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	quantity := fifo.TotalQuantity(lots)
	if quantity.IsZero() {
		return Record{}, &NoOpenLotsError{Commodity: commodity}
	}

	amount := fifo.TotalCost(lots)
	record := Record{
		Commodity:   commodity,
		Quantity:    quantity,
		Amount:      amount,
		AverageCost: amount.Div(quantity),
	}
	for _, l := range lots {
		if l.Date.After(record.LastPurchase) {
			record.LastPurchase = l.Date
		}
		if record.CostCommodity == "" {
			record.CostCommodity = l.CostCommodity
		}
	}

	if lookup == nil {
		return record, nil
	}
	price, ok := lookup(commodity)
	if !ok || !price.Date.After(record.LastPurchase) {
		return record, nil
	}
	if price.Quote != "" && record.CostCommodity != "" && price.Quote != record.CostCommodity {
		return record, nil
	}

	market := &Market{
		Price:  price.Price,
		Date:   price.Date,
		Amount: quantity.Mul(price.Price),
	}
	market.Profit = market.Amount.Sub(amount)
	market.XIRR, market.XIRRErr = xirr.Solve(cashFlows(lots, market), o.solver...)
	record.Market = market

	return record, nil
}

// cashFlows models every lot as an investment on its purchase date and the
// whole position as sold at the market price on the market date.
func cashFlows(lots []fifo.Lot, market *Market) []xirr.CashFlow {
	flows := make([]xirr.CashFlow, 0, len(lots)+1)
	for _, l := range lots {
		flows = append(flows, xirr.CashFlow{
			Date:   l.Date,
			Amount: l.Cost().Neg().InexactFloat64(),
		})
	}
	return append(flows, xirr.CashFlow{
		Date:   market.Date,
		Amount: market.Amount.InexactFloat64(),
	})
}
