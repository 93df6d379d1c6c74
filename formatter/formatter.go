// Package formatter writes hledger journal entries with aligned amounts.
package formatter

import (
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
)

const (
	// DefaultIndentation is the default indentation for postings.
	DefaultIndentation = 4

	// MinimumSpacing is the minimum number of spaces between account and amount.
	MinimumSpacing = 2

	// DefaultTagPrecision is the number of decimals of computed tag values.
	DefaultTagPrecision = 4
)

// Amount is a quantity of a commodity.
type Amount struct {
	Quantity  decimal.Decimal
	Commodity string
}

func (a Amount) String() string {
	if isSymbol(a.Commodity) {
		if a.Quantity.IsNegative() {
			return "-" + a.Commodity + a.Quantity.Neg().String()
		}
		return a.Commodity + a.Quantity.String()
	}
	if a.Commodity == "" {
		return a.Quantity.String()
	}
	return a.Quantity.String() + " " + quoteCommodity(a.Commodity)
}

// Posting is one line of an Entry. A nil Amount leaves the amount for hledger
// to infer.
type Posting struct {
	Account string
	Amount  *Amount
	// Price is the "@" unit price of Amount.
	Price   *Amount
	Comment string
}

// Entry is a journal transaction.
type Entry struct {
	Date        time.Time
	Description string
	Comment     string
	Postings    []Posting
}

// Formatter renders entries.
type Formatter struct {
	// AmountColumn is the column at which amounts end. If 0, it is derived
	// from the longest posting of each entry.
	AmountColumn int

	// Indentation is the number of spaces before each posting.
	Indentation int

	// TagPrecision rounds decimal values written into tags.
	TagPrecision int32
}

// Option is a functional option for configuring a Formatter.
type Option func(*Formatter)

// WithAmountColumn sets the column at which amounts end.
func WithAmountColumn(col int) Option {
	return func(f *Formatter) {
		f.AmountColumn = col
	}
}

// WithIndentation sets the posting indentation.
func WithIndentation(spaces int) Option {
	return func(f *Formatter) {
		f.Indentation = spaces
	}
}

// WithTagPrecision sets the number of decimals of computed tag values.
func WithTagPrecision(places int32) Option {
	return func(f *Formatter) {
		f.TagPrecision = places
	}
}

// New creates a new Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		Indentation:  DefaultIndentation,
		TagPrecision: DefaultTagPrecision,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format writes e followed by a newline.
func (f *Formatter) Format(w io.Writer, e Entry) error {
	var buf strings.Builder

	buf.WriteString(e.Date.Format(fifo.DateLayout))
	if e.Description != "" {
		buf.WriteByte(' ')
		buf.WriteString(sanitizeText(e.Description))
	}
	if e.Comment != "" {
		buf.WriteString("  ; ")
		buf.WriteString(sanitizeText(e.Comment))
	}
	buf.WriteByte('\n')

	column := f.amountColumn(e)
	for _, p := range e.Postings {
		f.formatPosting(p, column, &buf)
	}

	_, err := io.WriteString(w, buf.String())
	return err
}

// amountColumn returns the configured column, widened when a posting would
// not fit.
func (f *Formatter) amountColumn(e Entry) int {
	column := f.AmountColumn
	for _, p := range e.Postings {
		if p.Amount == nil {
			continue
		}
		width := f.Indentation + runewidth.StringWidth(p.Account) + MinimumSpacing + runewidth.StringWidth(p.Amount.String())
		column = max(column, width)
	}
	return column
}

func (f *Formatter) formatPosting(p Posting, column int, buf *strings.Builder) {
	buf.WriteString(strings.Repeat(" ", f.Indentation))
	buf.WriteString(p.Account)

	if p.Amount != nil {
		amount := p.Amount.String()
		width := f.Indentation + runewidth.StringWidth(p.Account)
		padding := max(column-width-runewidth.StringWidth(amount), MinimumSpacing)
		buf.WriteString(strings.Repeat(" ", padding))
		buf.WriteString(amount)

		if p.Price != nil {
			buf.WriteString(" @ ")
			buf.WriteString(p.Price.String())
		}
	}

	if p.Comment != "" {
		buf.WriteString("  ; ")
		buf.WriteString(sanitizeText(p.Comment))
	}
	buf.WriteByte('\n')
}
