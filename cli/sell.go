package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/hledger-fifo/config"
	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/formatter"
	"github.com/robinvdvleuten/hledger-fifo/hledger"
	"github.com/robinvdvleuten/hledger-fifo/telemetry"
)

type SellCmd struct {
	Commodity      string `help:"Commodity to sell." short:"c"`
	CashAccount    string `help:"Account receiving the sale proceeds." short:"a"`
	RevenueAccount string `help:"Account booking the realized gain or loss." short:"r"`
	Date           string `help:"Sale date (YYYY-MM-DD)." short:"d"`
	Quantity       string `help:"Units to sell." short:"q"`
	Price          string `help:"Sale price per unit." short:"p"`
	NoDesc         string `help:"Skip transactions whose description matches this regular expression." short:"n" name:"no-desc"`
	Description    string `help:"Description of the generated transaction."`
}

// sellOrder is a sale with its flags parsed.
type sellOrder struct {
	date     time.Time
	quantity decimal.Decimal
	price    decimal.Decimal
}

func (cmd *SellCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config) error {
	if err := cmd.prompt(); err != nil {
		return err
	}
	order, err := cmd.parse()
	if err != nil {
		return err
	}

	in, err := OpenJournals(globals, cfg, os.Stdin)
	if err != nil {
		return err
	}
	client := in.Client(cfg)

	return runCommand(ctx.Stderr, globals, in, false, "sell "+cmd.Commodity, func(runCtx context.Context) error {
		return cmd.execute(runCtx, client, cfg, order, ctx.Stdout)
	})
}

// prompt asks for every required flag that was not given.
func (cmd *SellCmd) prompt() error {
	fields := []struct {
		flag, title string
		value       *string
		validate    func(string) error
	}{
		{"commodity", "Commodity", &cmd.Commodity, nil},
		{"cash-account", "Cash account", &cmd.CashAccount, nil},
		{"revenue-account", "Revenue account", &cmd.RevenueAccount, nil},
		{"date", "Sale date (YYYY-MM-DD)", &cmd.Date, validateDate},
		{"quantity", "Quantity", &cmd.Quantity, validatePositive},
		{"price", "Price per unit", &cmd.Price, validatePositive},
	}
	for _, f := range fields {
		if err := promptValue(f.flag, f.title, f.value, f.validate); err != nil {
			return err
		}
	}
	return nil
}

func (cmd *SellCmd) parse() (sellOrder, error) {
	var order sellOrder
	if err := validateDate(cmd.Date); err != nil {
		return order, fmt.Errorf("--date: %w", err)
	}
	if err := validatePositive(cmd.Quantity); err != nil {
		return order, fmt.Errorf("--quantity: %w", err)
	}
	if err := validatePositive(cmd.Price); err != nil {
		return order, fmt.Errorf("--price: %w", err)
	}

	order.date, _ = time.Parse(fifo.DateLayout, cmd.Date)
	order.quantity = decimal.RequireFromString(cmd.Quantity)
	order.price = decimal.RequireFromString(cmd.Price)
	return order, nil
}

// execute replays the commodity up to the sale date and prints the sale
// transaction.
func (cmd *SellCmd) execute(ctx context.Context, client *hledger.Client, cfg *config.Config, order sellOrder, w io.Writer) error {
	entries, err := client.Print(ctx, hledger.Query{
		Commodity:          cmd.Commodity,
		ExcludeDescription: noDescription(cmd.NoDesc, cfg),
	})
	if err != nil {
		return err
	}
	txns, err := entries.Transactions(cmd.Commodity)
	if err != nil {
		return err
	}

	timer := telemetry.StartTimer(ctx, "lot replay")
	sale, err := fifo.Sell(txns, order.date, order.quantity)
	timer.End()
	if err != nil {
		var insufficient *fifo.InsufficientLotsError
		if errors.As(err, &insufficient) && insufficient.Commodity == "" {
			insufficient.Commodity = cmd.Commodity
		}
		return err
	}

	return formatter.New().FormatSale(w, sale, formatter.SaleOptions{
		CashAccount:    cmd.CashAccount,
		RevenueAccount: cmd.RevenueAccount,
		Price:          order.price,
		Description:    cmd.Description,
	})
}

func validateDate(s string) error {
	if _, err := time.Parse(fifo.DateLayout, s); err != nil {
		return fmt.Errorf("expected a date like 2024-01-31, got %q", s)
	}
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("expected a number, got %q", s)
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive, got %s", s)
	}
	return nil
}
