// Package telemetry collects hierarchical timings of a command run.
//
// A collector travels through the context, so instrumented code never needs
// an extra parameter. Without a collector every call is a no-op.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "hledger print")
//	// ... run hledger ...
//	timer.End()
//
//	collector.Report(os.Stderr, output.NewStyles(os.Stderr))
package telemetry

import (
	"context"
	"io"

	"github.com/robinvdvleuten/hledger-fifo/output"
)

type contextKey struct{}

var collectorKey = contextKey{}

// Collector gathers timings.
type Collector interface {
	// Start begins timing an operation nested under the operation that is
	// currently running, if any.
	Start(name string) Timer

	// Report writes the collected timings. styles may be nil for plain text.
	Report(w io.Writer, styles *output.Styles)
}

// Timer tracks one operation.
type Timer interface {
	End()

	// Child starts a timer nested under this one.
	Child(name string) Timer
}

// WithCollector returns a context carrying collector.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext returns the collector of ctx, or a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}

// StartTimer starts a timer on the collector carried by ctx.
func StartTimer(ctx context.Context, name string) Timer {
	return FromContext(ctx).Start(name)
}
