package report

import (
	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/indicator"
)

const (
	quantityFormat = "#,###.####"
	moneyFormat    = "#,###.##"

	// NotAvailable is printed for a return that could not be computed.
	NotAvailable = "N/A"
)

func quantityCell(d decimal.Decimal) Cell {
	f := d.InexactFloat64()
	return Cell{Text: humanize.FormatFloat(quantityFormat, f), Value: f}
}

func moneyCell(d decimal.Decimal) Cell {
	f := d.InexactFloat64()
	return Cell{Text: humanize.FormatFloat(moneyFormat, f), Value: f}
}

func textCell(s string) Cell {
	return Cell{Text: s, Value: s}
}

func emptyCell() Cell {
	return Cell{}
}

// FormatRate prints a rate of return as a percentage.
func FormatRate(rate float64) string {
	return humanize.FormatFloat(moneyFormat, rate*100) + "%"
}

// LotsTable lists open lots oldest-first.
func LotsTable(commodity string, lots []fifo.Lot) *Table {
	t := &Table{
		Title: "Open lots: " + commodity,
		Columns: []Column{
			{Header: "Date"},
			{Header: "Quantity", Numeric: true},
			{Header: "Unit Cost", Numeric: true},
			{Header: "Cost", Numeric: true},
			{Header: "Account"},
		},
	}
	for _, l := range lots {
		t.Rows = append(t.Rows, []Cell{
			textCell(l.Date.Format(fifo.DateLayout)),
			quantityCell(l.Quantity),
			quantityCell(l.UnitCost),
			moneyCell(l.Cost()),
			textCell(l.Account),
		})
	}
	return t
}

// InfoTable lists indicator records in the given order. Market columns stay
// empty for records without a market price.
func InfoTable(records []indicator.Record) *Table {
	t := &Table{
		Title: "Indicators",
		Columns: []Column{
			{Header: "Commodity"},
			{Header: "Quantity", Numeric: true},
			{Header: "Amount", Numeric: true},
			{Header: "Average Cost", Numeric: true},
			{Header: "Market Price", Numeric: true},
			{Header: "Market Date"},
			{Header: "Market Amount", Numeric: true},
			{Header: "Profit", Numeric: true},
			{Header: "XIRR", Numeric: true},
		},
	}

	for _, r := range records {
		row := []Cell{
			textCell(r.Commodity),
			quantityCell(r.Quantity),
			moneyCell(r.Amount),
			quantityCell(r.AverageCost),
		}
		if r.Market == nil {
			row = append(row, emptyCell(), emptyCell(), emptyCell(), emptyCell(), emptyCell())
		} else {
			row = append(row,
				quantityCell(r.Market.Price),
				textCell(r.Market.Date.Format(fifo.DateLayout)),
				moneyCell(r.Market.Amount),
				moneyCell(r.Market.Profit),
				rateCell(r),
			)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func rateCell(r indicator.Record) Cell {
	rate, ok := r.XIRR()
	if !ok {
		return textCell(NotAvailable)
	}
	return Cell{Text: FormatRate(rate), Value: rate}
}
