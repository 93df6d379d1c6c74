package hledger

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
)

// Entries is the output of "hledger print -O json".
type Entries []Entry

// Entry is one journal transaction.
type Entry struct {
	Index       int       `json:"tindex"`
	Date        string    `json:"tdate"`
	Description string    `json:"tdescription"`
	Postings    []Posting `json:"tpostings"`
}

// Posting is one posting of an entry. A posting may hold several amounts.
type Posting struct {
	Account string   `json:"paccount"`
	Amounts []Amount `json:"pamount"`
}

// Amount is a quantity of one commodity with an optional cost.
type Amount struct {
	Commodity string   `json:"acommodity"`
	Quantity  Quantity `json:"aquantity"`

	// hledger 1.40 renamed "aprice" to "acost"; both are accepted.
	Cost  *Cost `json:"acost,omitempty"`
	Price *Cost `json:"aprice,omitempty"`
}

// Quantity is hledger's decimal encoding: mantissa × 10^-places.
type Quantity struct {
	Mantissa json.Number `json:"decimalMantissa"`
	Places   int32       `json:"decimalPlaces"`
}

// Decimal returns the quantity as a decimal.
func (q Quantity) Decimal() (decimal.Decimal, error) {
	if q.Mantissa == "" {
		return decimal.Zero, nil
	}
	m, err := decimal.NewFromString(q.Mantissa.String())
	if err != nil {
		return decimal.Zero, &DecodeError{Text: q.Mantissa.String(), Err: err}
	}
	return m.Shift(-q.Places), nil
}

// Cost is the "@" (unit) or "@@" (total) cost of an amount.
type Cost struct {
	Tag      string `json:"tag"`
	Contents Amount `json:"contents"`
}

// IsTotal reports whether the cost applies to the whole amount.
func (c *Cost) IsTotal() bool {
	return c.Tag == "TotalCost" || c.Tag == "TotalPrice"
}

// cost returns the cost of the amount, preferring the current field name.
func (a Amount) cost() *Cost {
	if a.Cost != nil {
		return a.Cost
	}
	return a.Price
}

// TotalCost returns the cost of the whole amount, always positive, and the
// commodity it is expressed in. ok is false for amounts without a cost.
func (a Amount) TotalCost() (total decimal.Decimal, commodity string, ok bool, err error) {
	c := a.cost()
	if c == nil {
		return decimal.Zero, "", false, nil
	}

	quantity, err := a.Quantity.Decimal()
	if err != nil {
		return decimal.Zero, "", false, err
	}
	price, err := c.Contents.Quantity.Decimal()
	if err != nil {
		return decimal.Zero, "", false, err
	}

	if c.IsTotal() {
		return price.Abs(), c.Contents.Commodity, true, nil
	}
	return quantity.Abs().Mul(price.Abs()), c.Contents.Commodity, true, nil
}

// Day parses the entry date.
func (e Entry) Day() (time.Time, error) {
	d, err := time.Parse(fifo.DateLayout, e.Date)
	if err != nil {
		return time.Time{}, &DecodeError{Text: e.Date, Err: err}
	}
	return d, nil
}

// Transactions turns the entries into the transaction stream of commodity.
//
// Each entry contributes its net quantity of the commodity, so transfers
// between two accounts cancel out. The unit cost is the cost of the postings
// on the net side divided by their quantity, zero when they carry no cost.
// Entries keep the order hledger printed them in.
func (es Entries) Transactions(commodity string) ([]fifo.Transaction, error) {
	var txns []fifo.Transaction
	for _, e := range es {
		txn, ok, err := e.transaction(commodity)
		if err != nil {
			return nil, fmt.Errorf("transaction %d (%s %s): %w", e.Index, e.Date, e.Description, err)
		}
		if ok {
			txns = append(txns, txn)
		}
	}
	return txns, nil
}

type legAmount struct {
	account  string
	quantity decimal.Decimal
	amount   Amount
}

func (e Entry) transaction(commodity string) (fifo.Transaction, bool, error) {
	var legs []legAmount
	net := decimal.Zero
	for _, p := range e.Postings {
		for _, a := range p.Amounts {
			if a.Commodity != commodity {
				continue
			}
			q, err := a.Quantity.Decimal()
			if err != nil {
				return fifo.Transaction{}, false, err
			}
			net = net.Add(q)
			legs = append(legs, legAmount{account: p.Account, quantity: q, amount: a})
		}
	}
	if net.IsZero() {
		return fifo.Transaction{}, false, nil
	}

	date, err := e.Day()
	if err != nil {
		return fifo.Transaction{}, false, err
	}

	txn := fifo.Transaction{
		Date:        date,
		Quantity:    net,
		UnitCost:    decimal.Zero,
		Description: e.Description,
		Commodity:   commodity,
	}

	priced, cost := decimal.Zero, decimal.Zero
	for _, leg := range legs {
		if leg.quantity.Sign() != net.Sign() {
			continue
		}
		if txn.Account == "" {
			txn.Account = leg.account
		}

		total, costCommodity, ok, err := leg.amount.TotalCost()
		if err != nil {
			return fifo.Transaction{}, false, err
		}
		if !ok {
			continue
		}
		if txn.CostCommodity == "" {
			txn.CostCommodity = costCommodity
		} else if txn.CostCommodity != costCommodity {
			return fifo.Transaction{}, false, fmt.Errorf("mixed cost commodities %s and %s", txn.CostCommodity, costCommodity)
		}
		priced = priced.Add(leg.quantity.Abs())
		cost = cost.Add(total)
	}
	if !priced.IsZero() {
		txn.UnitCost = cost.Div(priced)
	}

	return txn, true, nil
}

// Commodities returns, sorted, the commodities that appear with a cost.
func (es Entries) Commodities() []string {
	seen := map[string]bool{}
	for _, e := range es {
		for _, p := range e.Postings {
			for _, a := range p.Amounts {
				if a.cost() != nil {
					seen[a.Commodity] = true
				}
			}
		}
	}

	commodities := make([]string, 0, len(seen))
	for c := range seen {
		commodities = append(commodities, c)
	}
	slices.Sort(commodities)
	return commodities
}
