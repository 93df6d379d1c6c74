package indicator

import (
	"context"
	"runtime"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/telemetry"
)

// Result is the outcome of computing one commodity in ComputeAll.
type Result struct {
	Commodity string
	Record    Record
	Err       error
}

// ComputeAll computes every commodity concurrently. Failures stay local to
// their commodity and are reported in its Result; the returned error is only
// set when ctx is cancelled. Results follow the sorted commodity names.
func ComputeAll(ctx context.Context, lots map[string][]fifo.Lot, lookup PriceLookup, opts ...Option) ([]Result, error) {
	timer := telemetry.StartTimer(ctx, "indicators")
	defer timer.End()

	commodities := make([]string, 0, len(lots))
	for c := range lots {
		commodities = append(commodities, c)
	}
	slices.Sort(commodities)

	results := make([]Result, len(commodities))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, commodity := range commodities {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			record, err := Compute(commodity, lots[commodity], lookup, opts...)
			results[i] = Result{Commodity: commodity, Record: record, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// Records keeps the successful results.
func Records(results []Result) []Record {
	records := make([]Record, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		records = append(records, r.Record)
	}
	return records
}

// SortByXIRR orders records from the highest to the lowest return. Records
// without a return come last; ties are ordered by commodity.
func SortByXIRR(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		ra, okA := a.XIRR()
		rb, okB := b.XIRR()
		switch {
		case okA && !okB:
			return -1
		case !okA && okB:
			return 1
		case okA && okB && ra > rb:
			return -1
		case okA && okB && ra < rb:
			return 1
		}
		return strings.Compare(a.Commodity, b.Commodity)
	})
}
