package hledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/indicator"
)

// PriceBook keeps the latest market price of every commodity.
type PriceBook struct {
	latest map[string]Price
}

// Price is one "P" directive.
type Price struct {
	Date      time.Time
	Commodity string
	Amount    decimal.Decimal
	Quote     string // commodity the price is expressed in
}

// numberPattern matches a quantity with optional sign, digit group marks and
// exponent. Unquoted commodity symbols never contain digits.
var numberPattern = regexp.MustCompile(`^[-+]?[0-9][0-9.,]*([eE][-+]?[0-9]+)?`)

// ParsePrices reads the output of "hledger prices":
//
//	P 2024-01-02 AAPL $185.64
//	P 2024-01-02 "VANGUARD 2050" 41.20 EUR
//
// Lines that are not P directives are skipped. For every commodity the price
// with the latest date wins; on equal dates the later line wins.
func ParsePrices(r io.Reader) (*PriceBook, error) {
	book := &PriceBook{latest: map[string]Price{}}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(text, "P ") {
			continue
		}

		p, err := parsePrice(text)
		if err != nil {
			return nil, &DecodeError{Line: line, Text: text, Err: err}
		}
		book.Add(p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return book, nil
}

func parsePrice(text string) (Price, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(text, "P "))

	date, rest, _ := strings.Cut(rest, " ")
	day, err := time.Parse(fifo.DateLayout, date)
	if err != nil {
		return Price{}, err
	}

	commodity, rest, err := cutCommodity(strings.TrimSpace(rest))
	if err != nil {
		return Price{}, err
	}

	amount, quote, err := parseAmount(strings.TrimSpace(rest))
	if err != nil {
		return Price{}, err
	}

	return Price{Date: day, Commodity: commodity, Amount: amount, Quote: quote}, nil
}

// parseAmount reads an amount in any commodity style hledger prints:
// "$1,234.56", "-$5", "38,50 BRL", "R$1.234,56", `10 "X2"` or "1.5E3 USD".
func parseAmount(s string) (decimal.Decimal, string, error) {
	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	var prefix string
	switch {
	case strings.HasPrefix(s, `"`):
		symbol, rest, err := cutQuoted(s)
		if err != nil {
			return decimal.Decimal{}, "", err
		}
		prefix, s = symbol, strings.TrimSpace(rest)
	default:
		end := strings.IndexFunc(s, func(r rune) bool {
			return unicode.IsDigit(r) || unicode.IsSpace(r) || r == '-' || r == '+'
		})
		if end < 0 {
			end = len(s)
		}
		prefix, s = s[:end], strings.TrimSpace(s[end:])
	}

	number := numberPattern.FindString(s)
	if number == "" {
		return decimal.Decimal{}, "", errors.New("missing price amount")
	}
	amount, err := decimal.NewFromString(normalizeNumber(number))
	if err != nil {
		return decimal.Decimal{}, "", err
	}
	if negative {
		amount = amount.Neg()
	}

	suffix := strings.TrimSpace(s[len(number):])
	if strings.HasPrefix(suffix, `"`) {
		symbol, rest, err := cutQuoted(suffix)
		if err != nil {
			return decimal.Decimal{}, "", err
		}
		if strings.TrimSpace(rest) != "" {
			return decimal.Decimal{}, "", fmt.Errorf("unexpected %q after price amount", rest)
		}
		suffix = symbol
	}

	switch {
	case prefix != "" && suffix != "", strings.ContainsFunc(suffix, unicode.IsSpace):
		return decimal.Decimal{}, "", fmt.Errorf("unexpected %q after price amount", suffix)
	case prefix != "":
		return amount, prefix, nil
	default:
		return amount, suffix, nil
	}
}

// normalizeNumber rewrites digit group and decimal marks to the plain form
// decimal parses. When both "." and "," appear the last one is the decimal
// mark. A lone mark followed by exactly three digits groups thousands only
// when it is ","; several identical marks always group.
func normalizeNumber(s string) string {
	mantissa, exponent := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mantissa, exponent = s[:i], s[i:]
	}

	dot, comma := strings.LastIndex(mantissa, "."), strings.LastIndex(mantissa, ",")
	var decimalMark byte
	switch {
	case dot >= 0 && comma >= 0:
		if dot > comma {
			decimalMark = '.'
		} else {
			decimalMark = ','
		}
	case comma >= 0:
		if strings.Count(mantissa, ",") == 1 && len(mantissa)-comma-1 != 3 {
			decimalMark = ','
		}
	case dot >= 0:
		if strings.Count(mantissa, ".") == 1 {
			decimalMark = '.'
		}
	}

	var b strings.Builder
	for i := 0; i < len(mantissa); i++ {
		switch c := mantissa[i]; {
		case c == decimalMark:
			b.WriteByte('.')
		case c == '.' || c == ',':
		default:
			b.WriteByte(c)
		}
	}
	return b.String() + exponent
}

// cutCommodity splits off a plain or double-quoted commodity symbol.
func cutCommodity(s string) (commodity, rest string, err error) {
	if strings.HasPrefix(s, `"`) {
		return cutQuoted(s)
	}

	commodity, rest, found := strings.Cut(s, " ")
	if !found || commodity == "" {
		return "", "", errors.New("missing commodity")
	}
	return commodity, rest, nil
}

func cutQuoted(s string) (symbol, rest string, err error) {
	end := strings.Index(s[1:], `"`)
	if end < 0 {
		return "", "", errors.New("unterminated quoted commodity")
	}
	return s[1 : end+1], s[end+2:], nil
}

// Add records p unless a later price is already known.
func (b *PriceBook) Add(p Price) {
	if b.latest == nil {
		b.latest = map[string]Price{}
	}
	if current, ok := b.latest[p.Commodity]; ok && current.Date.After(p.Date) {
		return
	}
	b.latest[p.Commodity] = p
}

// Latest returns the most recent price of commodity.
func (b *PriceBook) Latest(commodity string) (Price, bool) {
	p, ok := b.latest[commodity]
	return p, ok
}

// Len returns the number of priced commodities.
func (b *PriceBook) Len() int {
	return len(b.latest)
}

// Lookup implements indicator.PriceLookup.
func (b *PriceBook) Lookup(commodity string) (indicator.MarketPrice, bool) {
	p, ok := b.Latest(commodity)
	if !ok {
		return indicator.MarketPrice{}, false
	}
	return indicator.MarketPrice{Price: p.Amount, Date: p.Date, Quote: p.Quote}, true
}
