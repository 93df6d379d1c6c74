package formatter

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
)

// ErrMixedCostCommodities is returned for a sale whose lots were bought in
// different commodities; such a sale has no single base commodity.
var ErrMixedCostCommodities = errors.New("lots were bought in different cost commodities")

// SaleOptions describes the accounts and price of a sale entry.
type SaleOptions struct {
	CashAccount    string
	RevenueAccount string
	Price          decimal.Decimal
	// Description defaults to "Sell <commodity>".
	Description string
}

// SaleEntry builds the journal entry of a simulated sale:
//
//	2021-06-01 Sell AAPL  ; commodity:AAPL, quantity:5, fifo_cost:6
//	    Assets:Cash                     $45
//	    Assets:Broker     -5 AAPL @ $6  ; lot:2020-06-01
//	    Income:Gains                   -$15
//
// The cash posting receives quantity × price, every consumed lot leaves at
// its purchase cost and the revenue posting takes the difference, negative
// for a gain.
func (f *Formatter) SaleEntry(sale *fifo.Sale, opts SaleOptions) (Entry, error) {
	if sale == nil || len(sale.Consumptions) == 0 {
		return Entry{}, errors.New("sale consumes no lots")
	}
	base, ok := sale.CostCommodity()
	if !ok {
		return Entry{}, ErrMixedCostCommodities
	}

	value := sale.Quantity.Mul(opts.Price)

	description := opts.Description
	if description == "" {
		description = "Sell " + sale.Commodity
	}

	entry := Entry{
		Date:        sale.Date,
		Description: description,
		Comment:     f.saleTags(sale),
	}

	entry.Postings = append(entry.Postings, Posting{
		Account: opts.CashAccount,
		Amount:  &Amount{Quantity: value, Commodity: base},
	})
	for _, c := range sale.Consumptions {
		account := c.Lot.Account
		if account == "" {
			account = opts.CashAccount
		}
		entry.Postings = append(entry.Postings, Posting{
			Account: account,
			Amount:  &Amount{Quantity: c.Quantity.Neg(), Commodity: sale.Commodity},
			Price:   &Amount{Quantity: c.Lot.UnitCost, Commodity: base},
			Comment: "lot:" + c.Lot.Date.Format(fifo.DateLayout),
		})
	}
	entry.Postings = append(entry.Postings, Posting{
		Account: opts.RevenueAccount,
		Amount:  &Amount{Quantity: sale.Gain(value).Neg(), Commodity: base},
	})

	return entry, nil
}

func (f *Formatter) saleTags(sale *fifo.Sale) string {
	tags := []string{
		"commodity:" + sale.Commodity,
		"quantity:" + sale.Quantity.String(),
		"fifo_cost:" + sale.AverageCost().Round(f.TagPrecision).String(),
	}
	return strings.Join(tags, ", ")
}

// FormatSale builds and writes the entry of a sale.
func (f *Formatter) FormatSale(w io.Writer, sale *fifo.Sale, opts SaleOptions) error {
	entry, err := f.SaleEntry(sale, opts)
	if err != nil {
		return fmt.Errorf("building sale entry: %w", err)
	}
	return f.Format(w, entry)
}
