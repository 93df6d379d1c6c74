package hledger

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"
)

// printOutput is trimmed "hledger print -O json" output of:
//
//	2020-01-01 Buy
//	    Assets:Broker      10 AAPL @ $5
//	    Assets:Cash
//
//	2020-06-01 Buy more
//	    Assets:Broker      10 AAPL @@ $60
//	    Assets:Cash
//
//	2020-09-01 Transfer
//	    Assets:Broker      -3 AAPL
//	    Assets:Other        3 AAPL
//
//	2021-01-01 Sell
//	    Assets:Broker     -15 AAPL @ $7.50
//	    Assets:Cash
const printOutput = `[
  {
    "tindex": 1, "tdate": "2020-01-01", "tdescription": "Buy",
    "tpostings": [
      {"paccount": "Assets:Broker", "pamount": [{"acommodity": "AAPL",
        "aquantity": {"decimalMantissa": 10, "decimalPlaces": 0, "floatingPoint": 10},
        "aprice": {"tag": "UnitPrice", "contents": {"acommodity": "$", "aquantity": {"decimalMantissa": 5, "decimalPlaces": 0}, "aprice": null}}}]},
      {"paccount": "Assets:Cash", "pamount": [{"acommodity": "$",
        "aquantity": {"decimalMantissa": -50, "decimalPlaces": 0}, "aprice": null}]}
    ]
  },
  {
    "tindex": 2, "tdate": "2020-06-01", "tdescription": "Buy more",
    "tpostings": [
      {"paccount": "Assets:Broker", "pamount": [{"acommodity": "AAPL",
        "aquantity": {"decimalMantissa": 10, "decimalPlaces": 0},
        "acost": {"tag": "TotalCost", "contents": {"acommodity": "$", "aquantity": {"decimalMantissa": 60, "decimalPlaces": 0}}}}]},
      {"paccount": "Assets:Cash", "pamount": [{"acommodity": "$",
        "aquantity": {"decimalMantissa": -60, "decimalPlaces": 0}}]}
    ]
  },
  {
    "tindex": 3, "tdate": "2020-09-01", "tdescription": "Transfer",
    "tpostings": [
      {"paccount": "Assets:Broker", "pamount": [{"acommodity": "AAPL",
        "aquantity": {"decimalMantissa": -3, "decimalPlaces": 0}}]},
      {"paccount": "Assets:Other", "pamount": [{"acommodity": "AAPL",
        "aquantity": {"decimalMantissa": 3, "decimalPlaces": 0}}]}
    ]
  },
  {
    "tindex": 4, "tdate": "2021-01-01", "tdescription": "Sell",
    "tpostings": [
      {"paccount": "Assets:Broker", "pamount": [{"acommodity": "AAPL",
        "aquantity": {"decimalMantissa": -15, "decimalPlaces": 0},
        "aprice": {"tag": "UnitPrice", "contents": {"acommodity": "$", "aquantity": {"decimalMantissa": 750, "decimalPlaces": 2}}}}]},
      {"paccount": "Assets:Cash", "pamount": [{"acommodity": "$",
        "aquantity": {"decimalMantissa": 11250, "decimalPlaces": 2}}]}
    ]
  }
]`

type call struct {
	stdin []byte
	args  []string
}

type fakeRunner struct {
	out   map[string]string
	err   error
	calls []call
}

func (f *fakeRunner) Run(_ context.Context, stdin []byte, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{stdin: stdin, args: args})
	if f.err != nil {
		return nil, f.err
	}
	for _, a := range args {
		if out, ok := f.out[a]; ok {
			return []byte(out), nil
		}
	}
	return nil, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestQueryArgs(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"Empty", Query{}, nil},
		{"Commodity", Query{Commodity: "AAPL"}, []string{"cur:^AAPL$"}},
		{"SymbolIsQuoted", Query{Commodity: "$"}, []string{`cur:^\$$`}},
		{"ExcludeDescription", Query{Commodity: "EUR", ExcludeDescription: "opening|closing balances"},
			[]string{"cur:^EUR$", "not:desc:opening|closing balances"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.query.Args())
		})
	}
}

func TestClientPrint(t *testing.T) {
	runner := &fakeRunner{out: map[string]string{"print": printOutput}}
	client := New([]string{"a.journal", "b.journal"}, WithRunner(runner))

	entries, err := client.Print(context.Background(), Query{Commodity: "AAPL", ExcludeDescription: "closing"})
	assert.NoError(t, err)
	assert.Equal(t, 4, len(entries))

	assert.Equal(t, 1, len(runner.calls))
	assert.Equal(t, []string{
		"-f", "a.journal", "-f", "b.journal",
		"print", "-O", "json", "cur:^AAPL$", "not:desc:closing",
	}, runner.calls[0].args)
	assert.Zero(t, runner.calls[0].stdin)
}

func TestClientReplaysStdin(t *testing.T) {
	runner := &fakeRunner{out: map[string]string{"print": "[]", "prices": ""}}
	client := New([]string{StdinFile}, WithRunner(runner), WithStdin([]byte("journal")))

	_, err := client.Print(context.Background(), Query{})
	assert.NoError(t, err)
	_, err = client.Prices(context.Background())
	assert.NoError(t, err)

	assert.Equal(t, 2, len(runner.calls))
	for _, c := range runner.calls {
		assert.Equal(t, "journal", string(c.stdin))
	}
}

func TestClientPrintErrors(t *testing.T) {
	t.Run("ExecFailure", func(t *testing.T) {
		failure := &ExecError{Args: []string{"hledger"}, Stderr: "hledger: file not found\n", Err: errors.New("exit status 1")}
		client := New(nil, WithRunner(&fakeRunner{err: failure}))

		_, err := client.Print(context.Background(), Query{})
		var execErr *ExecError
		assert.True(t, errors.As(err, &execErr))
		assert.Equal(t, []string{"hledger: file not found"}, execErr.StderrLines())
		assert.Contains(t, err.Error(), "file not found")
	})

	t.Run("BadJSON", func(t *testing.T) {
		client := New(nil, WithRunner(&fakeRunner{out: map[string]string{"print": "not json"}}))
		_, err := client.Print(context.Background(), Query{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "decoding hledger print output")
	})
}

func TestExecRunnerMissingBinary(t *testing.T) {
	_, err := ExecRunner{Binary: "hledger-fifo-test-missing-binary"}.Run(context.Background(), nil, "print")
	var execErr *ExecError
	assert.True(t, errors.As(err, &execErr))

	var notFound *exec.Error
	assert.True(t, errors.As(err, &notFound))
}

func TestEntriesTransactions(t *testing.T) {
	runner := &fakeRunner{out: map[string]string{"print": printOutput}}
	entries, err := New(nil, WithRunner(runner)).Print(context.Background(), Query{})
	assert.NoError(t, err)

	txns, err := entries.Transactions("AAPL")
	assert.NoError(t, err)

	// The transfer nets to zero and is skipped.
	assert.Equal(t, 3, len(txns))

	assert.Equal(t, "2020-01-01", txns[0].Date.Format("2006-01-02"))
	assert.True(t, txns[0].Quantity.Equal(dec("10")))
	assert.True(t, txns[0].UnitCost.Equal(dec("5")))
	assert.Equal(t, "Assets:Broker", txns[0].Account)
	assert.Equal(t, "$", txns[0].CostCommodity)
	assert.Equal(t, "AAPL", txns[0].Commodity)
	assert.Equal(t, "Buy", txns[0].Description)

	// A total cost is spread over the units.
	assert.True(t, txns[1].UnitCost.Equal(dec("6")))

	assert.True(t, txns[2].IsSale())
	assert.True(t, txns[2].Quantity.Equal(dec("-15")))
	assert.True(t, txns[2].UnitCost.Equal(dec("7.5")))
}

func TestEntriesTransactionsOtherCommodity(t *testing.T) {
	runner := &fakeRunner{out: map[string]string{"print": printOutput}}
	entries, err := New(nil, WithRunner(runner)).Print(context.Background(), Query{})
	assert.NoError(t, err)

	txns, err := entries.Transactions("$")
	assert.NoError(t, err)
	assert.Equal(t, 3, len(txns))
	assert.True(t, txns[0].UnitCost.IsZero())
	assert.Equal(t, "Assets:Cash", txns[0].Account)
}

func TestEntriesTransactionsBadDate(t *testing.T) {
	entries := Entries{{
		Index: 7, Date: "01/02/2020", Description: "odd",
		Postings: []Posting{{Account: "A", Amounts: []Amount{{Commodity: "X", Quantity: Quantity{Mantissa: "1"}}}}},
	}}
	_, err := entries.Transactions("X")
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, err.Error(), "transaction 7")
}

func TestEntriesCommodities(t *testing.T) {
	runner := &fakeRunner{out: map[string]string{"print": printOutput}}
	entries, err := New(nil, WithRunner(runner)).Print(context.Background(), Query{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"AAPL"}, entries.Commodities())
}

func TestParsePrices(t *testing.T) {
	input := strings.Join([]string{
		"P 2020-12-01 AAPL $6.00",
		"P 2021-01-01 AAPL $7.50",
		"P 2020-06-01 AAPL $1.00",
		`P 2021-02-01 "VANGUARD 2050" 1,041.20 EUR`,
		"",
		"; not a price",
	}, "\n")

	book, err := ParsePrices(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, 2, book.Len())

	p, ok := book.Latest("AAPL")
	assert.True(t, ok)
	assert.Equal(t, "2021-01-01", p.Date.Format("2006-01-02"))
	assert.True(t, p.Amount.Equal(dec("7.5")))
	assert.Equal(t, "$", p.Quote)

	p, ok = book.Latest("VANGUARD 2050")
	assert.True(t, ok)
	assert.True(t, p.Amount.Equal(dec("1041.20")))
	assert.Equal(t, "EUR", p.Quote)

	mp, ok := book.Lookup("AAPL")
	assert.True(t, ok)
	assert.True(t, mp.Price.Equal(dec("7.5")))
	assert.Equal(t, "$", mp.Quote)

	_, ok = book.Lookup("GOOG")
	assert.False(t, ok)
}

func TestParsePricesCommodityStyles(t *testing.T) {
	tests := []struct {
		line   string
		amount string
		quote  string
	}{
		{"P 2024-01-02 PETR4 38,50 BRL", "38.50", "BRL"},
		{"P 2024-01-02 PETR4 R$1.234,56", "1234.56", "R$"},
		{"P 2024-01-02 AAPL $1,234.56", "1234.56", "$"},
		{"P 2024-01-02 AAPL 1.234.567 EUR", "1234567", "EUR"},
		{"P 2024-01-02 AAPL 1,234 EUR", "1234", "EUR"},
		{`P 2024-01-02 AAPL "X2" 10`, "10", "X2"},
		{`P 2024-01-02 AAPL 10 "X2"`, "10", "X2"},
		{"P 2024-01-02 AAPL 1.5E3 USD", "1500", "USD"},
		{"P 2024-01-02 AAPL 10EUR", "10", "EUR"},
		{"P 2024-01-02 AAPL -$5", "-5", "$"},
		{"P 2024-01-02 AAPL $-5", "-5", "$"},
		{"P 2024-01-02 AAPL 7", "7", ""},
	}

	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			book, err := ParsePrices(strings.NewReader(test.line))
			assert.NoError(t, err)

			p, ok := book.Latest("AAPL")
			if !ok {
				p, ok = book.Latest("PETR4")
			}
			assert.True(t, ok)
			assert.True(t, p.Amount.Equal(dec(test.amount)), "got %s", p.Amount)
			assert.Equal(t, test.quote, p.Quote)
		})
	}
}

func TestParsePricesErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"BadDate", "P 2021/13/01 AAPL $1"},
		{"MissingAmount", "P 2021-01-01 AAPL $"},
		{"MissingCommodity", "P 2021-01-01"},
		{"UnterminatedQuote", `P 2021-01-01 "AAPL 1`},
		{"UnterminatedPriceQuote", `P 2021-01-01 AAPL 10 "X2`},
		{"SymbolOnBothSides", "P 2021-01-01 AAPL $10 EUR"},
		{"SpaceGroupedDigits", "P 2021-01-01 AAPL 1 234,56 EUR"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParsePrices(strings.NewReader("\n" + test.input))
			var decodeErr *DecodeError
			assert.True(t, errors.As(err, &decodeErr), "got %v", err)
			assert.Equal(t, 2, decodeErr.Line)
		})
	}
}
