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
	"github.com/robinvdvleuten/hledger-fifo/xirr"
)

type InfoCmd struct {
	Output     string `help:"Output format: plain, pretty, csv or xlsx. Defaults to $HLEDGER_FIFO_OUTPUT." short:"o"`
	OutputFile string `help:"Write the report to this file instead of stdout." type:"path"`
	Force      bool   `help:"Overwrite --output-file without asking."`
	NoDesc     string `help:"Skip transactions whose description matches this regular expression." short:"n" name:"no-desc"`
	DayCount   string `help:"Day count convention for XIRR: 30/360us or act/365f. Defaults to $HLEDGER_FIFO_DAY_COUNT."`
	Watch      bool   `help:"Re-run whenever a journal file changes."`
}

func (cmd *InfoCmd) Run(ctx *kong.Context, globals *Globals, cfg *config.Config) error {
	format, err := outputFormat(cmd.Output, cfg)
	if err != nil {
		return err
	}
	dayCount, err := cmd.dayCount(cfg)
	if err != nil {
		return err
	}
	if format.Binary() && cmd.OutputFile == "" && isTerminalWriter(ctx.Stdout) {
		return fmt.Errorf("%s output needs --output-file or a redirected stdout", format)
	}
	if err := cmd.confirmOverwrite(); err != nil {
		return err
	}

	in, err := OpenJournals(globals, cfg, os.Stdin)
	if err != nil {
		return err
	}
	client := in.Client(cfg)

	return runCommand(ctx.Stderr, globals, in, cmd.Watch, "info", func(runCtx context.Context) error {
		if cmd.OutputFile == "" {
			return cmd.execute(runCtx, client, cfg, format, dayCount, ctx.Stdout, ctx.Stderr)
		}
		return cmd.writeFile(runCtx, client, cfg, format, dayCount, ctx.Stderr)
	})
}

func (cmd *InfoCmd) dayCount(cfg *config.Config) (xirr.DayCount, error) {
	if cmd.DayCount == "" {
		return cfg.DayCountConvention()
	}
	dc, err := xirr.ParseDayCount(cmd.DayCount)
	if err != nil {
		return nil, fmt.Errorf("--day-count: %w", err)
	}
	return dc, nil
}

func (cmd *InfoCmd) confirmOverwrite() error {
	if cmd.OutputFile == "" || cmd.Force {
		return nil
	}
	if _, err := os.Stat(cmd.OutputFile); err != nil {
		return nil
	}

	confirmed, err := promptYesNo(fmt.Sprintf("File %q exists. Overwrite it?", cmd.OutputFile))
	if err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("%s exists, pass --force to overwrite it", cmd.OutputFile)
	}
	return nil
}

func (cmd *InfoCmd) writeFile(ctx context.Context, client *hledger.Client, cfg *config.Config, format report.Format, dayCount xirr.DayCount, stderr io.Writer) error {
	f, err := os.Create(cmd.OutputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := cmd.execute(ctx, client, cfg, format, dayCount, f, stderr); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	printSuccess(stderr, "Wrote "+pathStyle.Render(cmd.OutputFile))
	return nil
}

// execute reports every commodity held at cost, best XIRR first. Commodities
// that fail are listed on stderr and left out of the report.
func (cmd *InfoCmd) execute(ctx context.Context, client *hledger.Client, cfg *config.Config, format report.Format, dayCount xirr.DayCount, w, stderr io.Writer) error {
	entries, err := client.Print(ctx, hledger.Query{
		ExcludeDescription: noDescription(cmd.NoDesc, cfg),
	})
	if err != nil {
		return err
	}

	lots, skipped := openLots(ctx, entries)

	prices, err := client.Prices(ctx)
	if err != nil {
		return err
	}

	results, err := indicator.ComputeAll(ctx, lots, prices.Lookup, indicator.WithDayCount(dayCount))
	if err != nil {
		return err
	}
	for _, r := range results {
		var noLots *indicator.NoOpenLotsError
		if r.Err != nil && !errors.As(r.Err, &noLots) {
			skipped = append(skipped, fmt.Errorf("%s: %w", r.Commodity, r.Err))
		}
	}
	if len(skipped) > 0 {
		_, _ = fmt.Fprintln(stderr, NewErrorRenderer().RenderAll(skipped))
		printError(stderr, fmt.Sprintf("%d commodity(ies) skipped", len(skipped)))
	}

	records := indicator.Records(results)
	indicator.SortByXIRR(records)

	renderTimer := telemetry.StartTimer(ctx, "render "+format.String())
	defer renderTimer.End()
	return report.Render(w, format, report.InfoTable(records))
}

// openLots replays every commodity that carries a cost in entries. Commodities
// whose history cannot be replayed are returned as errors instead.
func openLots(ctx context.Context, entries hledger.Entries) (map[string][]fifo.Lot, []error) {
	timer := telemetry.StartTimer(ctx, "lot replay")
	defer timer.End()

	lots := make(map[string][]fifo.Lot)
	var errs []error
	for _, commodity := range entries.Commodities() {
		child := timer.Child(commodity)
		txns, err := entries.Transactions(commodity)
		if err == nil {
			lots[commodity], err = fifo.BuildOpenLots(txns)
		}
		child.End()

		if err != nil {
			delete(lots, commodity)
			errs = append(errs, fmt.Errorf("%s: %w", commodity, err))
		}
	}
	return lots, errs
}
