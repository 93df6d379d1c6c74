// Package hledger talks to the hledger binary. Journals are never parsed
// here: hledger prints them as JSON and this package turns the postings of
// one commodity into a fifo transaction stream.
//
// Example usage:
//
//	client := hledger.New([]string{"main.journal"})
//	entries, err := client.Print(ctx, hledger.Query{Commodity: "AAPL"})
//	txns, err := entries.Transactions("AAPL")
package hledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"

	"github.com/robinvdvleuten/hledger-fifo/telemetry"
)

// DefaultBinary is the hledger executable looked up on PATH.
const DefaultBinary = "hledger"

// StdinFile is the journal name that makes hledger read standard input.
const StdinFile = "-"

// Runner executes hledger with the given arguments and returns its standard
// output.
type Runner interface {
	Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error)
}

// ExecRunner runs a local hledger binary.
type ExecRunner struct {
	Binary string
}

func (r ExecRunner) Run(ctx context.Context, stdin []byte, args ...string) ([]byte, error) {
	binary := r.Binary
	if binary == "" {
		binary = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, &ExecError{Args: append([]string{binary}, args...), Stderr: stderr.String(), Err: err}
	}
	return out, nil
}

// Client runs hledger queries against a fixed set of journal files.
type Client struct {
	files  []string
	stdin  []byte
	runner Runner
}

// Option configures a Client.
type Option func(*Client)

// WithBinary runs the given hledger executable.
func WithBinary(binary string) Option {
	return func(c *Client) {
		c.runner = ExecRunner{Binary: binary}
	}
}

// WithRunner replaces the process runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(c *Client) {
		c.runner = r
	}
}

// WithStdin supplies the contents of the "-" journal. Standard input can only
// be read once, so the contents are replayed to every hledger invocation.
func WithStdin(contents []byte) Option {
	return func(c *Client) {
		c.stdin = contents
	}
}

// New creates a client for files.
func New(files []string, opts ...Option) *Client {
	c := &Client{
		files:  files,
		runner: ExecRunner{Binary: DefaultBinary},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query narrows the transactions printed by hledger.
type Query struct {
	// Commodity keeps transactions with a posting in exactly this commodity.
	Commodity string
	// ExcludeDescription drops transactions whose description matches this
	// regular expression, e.g. "opening|closing balances".
	ExcludeDescription string
}

// Args renders the query in hledger's query language.
func (q Query) Args() []string {
	var args []string
	if q.Commodity != "" {
		args = append(args, "cur:^"+regexp.QuoteMeta(q.Commodity)+"$")
	}
	if q.ExcludeDescription != "" {
		args = append(args, "not:desc:"+q.ExcludeDescription)
	}
	return args
}

// Print returns the journal entries matching q.
func (c *Client) Print(ctx context.Context, q Query) (Entries, error) {
	timer := telemetry.StartTimer(ctx, "hledger print")
	defer timer.End()

	args := append(c.fileArgs(), "print", "-O", "json")
	out, err := c.run(ctx, append(args, q.Args()...)...)
	if err != nil {
		return nil, err
	}

	var entries Entries
	if err := json.Unmarshal(out, &entries); err != nil {
		return nil, fmt.Errorf("decoding hledger print output: %w", err)
	}
	return entries, nil
}

// Prices returns the market prices declared in the journal.
func (c *Client) Prices(ctx context.Context) (*PriceBook, error) {
	timer := telemetry.StartTimer(ctx, "hledger prices")
	defer timer.End()

	out, err := c.run(ctx, append(c.fileArgs(), "prices")...)
	if err != nil {
		return nil, err
	}
	return ParsePrices(bytes.NewReader(out))
}

func (c *Client) fileArgs() []string {
	args := make([]string, 0, 2*len(c.files))
	for _, f := range c.files {
		args = append(args, "-f", f)
	}
	return args
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	var stdin []byte
	for _, f := range c.files {
		if f == StdinFile {
			stdin = c.stdin
			if stdin == nil {
				stdin = []byte{}
			}
			break
		}
	}
	return c.runner.Run(ctx, stdin, args...)
}
