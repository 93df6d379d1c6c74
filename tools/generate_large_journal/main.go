// Large hledger Journal Generator
//
// This tool generates a large hledger journal for performance testing and
// profiling of the info command. It writes purchases, sales that never exceed
// the units held, unrelated expenses and P price directives.
//
// Usage:
//
//	go run main.go > large.journal
//	go run main.go 20000000 > large.journal  # Specify target size in bytes
package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/formatter"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
	baseCommodity     = "$"
	cashAccount       = "Assets:Brokerage:Cash"
)

var (
	stocks   = []string{"AAPL", "MSFT", "GOOGL", "TSLA", "AMZN", "VTI", "VXUS"}
	expenses = []string{
		"Expenses:Food:Groceries",
		"Expenses:Food:Restaurant",
		"Expenses:Housing:Rent",
		"Expenses:Transport:Gas",
		"Expenses:Commissions",
	}
	payees = []string{
		"Whole Foods", "Trader Joe's", "Shell Gas", "Landlord", "Fidelity", "Vanguard",
	}
)

// countingWriter counts the bytes written through it.
type countingWriter struct {
	w *bufio.Writer
	n int
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += n
	return n, err
}

// generator keeps holdings and prices so that the journal replays cleanly.
type generator struct {
	out      *countingWriter
	format   *formatter.Formatter
	holdings map[string]decimal.Decimal
	prices   map[string]decimal.Decimal
}

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}

	buf := bufio.NewWriter(os.Stdout)
	g := &generator{
		out:      &countingWriter{w: buf},
		format:   formatter.New(formatter.WithAmountColumn(52)),
		holdings: make(map[string]decimal.Decimal),
		prices:   make(map[string]decimal.Decimal),
	}
	for _, s := range stocks {
		g.prices[s] = randDecimal(50, 500)
	}

	_, _ = fmt.Fprintf(g.out, "; Large hledger journal for performance testing\n; Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))

	currentDate := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	transactionCount := 0

	for g.out.n < targetSize {
		var err error
		switch rand.Intn(10) {
		case 0, 1, 2, 3: // 40% - Purchase
			err = g.buy(currentDate)
			transactionCount++
		case 4, 5: // 20% - Sale of part of a holding
			err = g.sell(currentDate)
			transactionCount++
		case 6, 7: // 20% - Unrelated expense
			err = g.expense(currentDate)
			transactionCount++
		default: // 20% - Market price
			err = g.price(currentDate)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Advance date by 1-5 days
		currentDate = currentDate.AddDate(0, 0, rand.Intn(5)+1)
	}

	if err := buf.Flush(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d transactions\n", g.out.n, transactionCount)
}

func (g *generator) buy(date time.Time) error {
	stock := stocks[rand.Intn(len(stocks))]
	shares := decimal.NewFromInt(int64(rand.Intn(50) + 1))
	g.holdings[stock] = g.holdings[stock].Add(shares)

	return g.write(formatter.Entry{
		Date:        date,
		Description: "Buy " + stock,
		Postings: []formatter.Posting{
			{
				Account: "Assets:Brokerage:" + stock,
				Amount:  &formatter.Amount{Quantity: shares, Commodity: stock},
				Price:   &formatter.Amount{Quantity: g.prices[stock], Commodity: baseCommodity},
			},
			{Account: cashAccount},
		},
	})
}

func (g *generator) sell(date time.Time) error {
	stock := stocks[rand.Intn(len(stocks))]
	held := g.holdings[stock].IntPart()
	if held == 0 {
		return g.buy(date)
	}
	shares := decimal.NewFromInt(rand.Int63n(held) + 1)
	g.holdings[stock] = g.holdings[stock].Sub(shares)

	return g.write(formatter.Entry{
		Date:        date,
		Description: "Sell " + stock,
		Postings: []formatter.Posting{
			{
				Account: "Assets:Brokerage:" + stock,
				Amount:  &formatter.Amount{Quantity: shares.Neg(), Commodity: stock},
				Price:   &formatter.Amount{Quantity: g.prices[stock], Commodity: baseCommodity},
			},
			{Account: cashAccount},
		},
	})
}

func (g *generator) expense(date time.Time) error {
	amount := randDecimal(10, 500)

	return g.write(formatter.Entry{
		Date:        date,
		Description: payees[rand.Intn(len(payees))],
		Postings: []formatter.Posting{
			{
				Account: expenses[rand.Intn(len(expenses))],
				Amount:  &formatter.Amount{Quantity: amount, Commodity: baseCommodity},
			},
			{Account: "Assets:Bank:Checking"},
		},
	})
}

// price moves a stock by up to 5% and declares the new price.
func (g *generator) price(date time.Time) error {
	stock := stocks[rand.Intn(len(stocks))]
	change := decimal.NewFromFloat(0.95 + rand.Float64()*0.1)
	g.prices[stock] = g.prices[stock].Mul(change).Round(2)

	amount := formatter.Amount{Quantity: g.prices[stock], Commodity: baseCommodity}
	_, err := fmt.Fprintf(g.out, "P %s %s %s\n\n", date.Format("2006-01-02"), stock, amount)
	return err
}

func (g *generator) write(e formatter.Entry) error {
	if err := g.format.Format(g.out, e); err != nil {
		return err
	}
	_, err := fmt.Fprintln(g.out)
	return err
}

// Helper functions

func randDecimal(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + rand.Float64()*(max-min)).Round(2)
}
