package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/hledger-fifo/config"
	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/hledger"
	"github.com/robinvdvleuten/hledger-fifo/indicator"
	"github.com/robinvdvleuten/hledger-fifo/report"
	"github.com/robinvdvleuten/hledger-fifo/telemetry"
)

type LotsCmd struct {
	Commodity string `help:"Commodity to replay." short:"c"`
	NoDesc    string `help:"Skip transactions whose description matches this regular expression." short:"n" name:"no-desc"`
	Output    string `help:"Output format: plain, pretty or csv. Defaults to $HLEDGER_FIFO_OUTPUT." short:"o"`
	Watch     bool   `help:"Re-run whenever a journal file changes."`
}

func (cmd *LotsCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config) error {
	if err := promptValue("commodity", "Commodity", &cmd.Commodity, nil); err != nil {
		return err
	}
	format, err := outputFormat(cmd.Output, cfg)
	if err != nil {
		return err
	}
	if format.Binary() {
		return fmt.Errorf("lots cannot write %s output", format)
	}

	in, err := OpenJournals(globals, cfg, os.Stdin)
	if err != nil {
		return err
	}
	client := in.Client(cfg)

	return runCommand(ctx.Stderr, globals, in, cmd.Watch, "lots "+cmd.Commodity, func(runCtx context.Context) error {
		return cmd.execute(runCtx, client, cfg, format, ctx.Stdout)
	})
}

// execute prints the open lots of the commodity followed by its indicator
// summary.
func (cmd *LotsCmd) execute(ctx context.Context, client *hledger.Client, cfg *config.Config, format report.Format, w io.Writer) error {
	dayCount, err := cfg.DayCountConvention()
	if err != nil {
		return err
	}

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
	lots, err := fifo.BuildOpenLots(txns)
	timer.End()
	if err != nil {
		return err
	}

	prices, err := client.Prices(ctx)
	if err != nil {
		return err
	}

	tables := []*report.Table{report.LotsTable(cmd.Commodity, lots)}
	record, err := indicator.Compute(cmd.Commodity, lots, prices.Lookup, indicator.WithDayCount(dayCount))
	var noLots *indicator.NoOpenLotsError
	switch {
	case errors.As(err, &noLots):
	case err != nil:
		return err
	default:
		tables = append(tables, report.InfoTable([]indicator.Record{record}))
	}

	renderTimer := telemetry.StartTimer(ctx, "render "+format.String())
	defer renderTimer.End()
	return report.Render(w, format, tables...)
}

// outputFormat parses the --output flag, falling back to the config.
func outputFormat(flag string, cfg *config.Config) (report.Format, error) {
	if flag == "" {
		flag = cfg.Output
	}
	return report.ParseFormat(flag)
}
