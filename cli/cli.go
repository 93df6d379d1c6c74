// Package cli provides the hledger-fifo commands and their shared helpers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/robinvdvleuten/hledger-fifo/config"
	"github.com/robinvdvleuten/hledger-fifo/hledger"
	"github.com/robinvdvleuten/hledger-fifo/output"
	"github.com/robinvdvleuten/hledger-fifo/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

// reportError renders err with context on w and returns the CommandError
// that makes main exit non-zero.
func reportError(w io.Writer, err error, summary string) error {
	_, _ = fmt.Fprintln(w, NewErrorRenderer().Render(err))
	_, _ = fmt.Fprintln(w)
	printError(w, summary)
	return NewCommandError(1)
}

// promptYesNo prompts the user with a yes/no question.
// Returns false by default if stdin is not a terminal.
func promptYesNo(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}

	var confirm bool

	form := huh.NewConfirm().
		Title(question).
		WithButtonAlignment(lipgloss.Left).
		Value(&confirm)

	err := form.Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}

	return confirm, nil
}

// promptValue asks for a flag that was left empty. Without a terminal the
// flag is simply missing.
func promptValue(flag, title string, value *string, validate func(string) error) error {
	if *value != "" {
		return nil
	}
	if !isTerminal() {
		return fmt.Errorf("missing flag --%s", flag)
	}

	input := huh.NewInput().
		Title(title).
		Value(value)
	if validate != nil {
		input = input.Validate(validate)
	}

	if err := input.Run(); err != nil {
		return fmt.Errorf("failed to read --%s: %w", flag, err)
	}
	return nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// isTerminalWriter reports whether w writes to a terminal.
func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// JournalInput is the set of journals a command reads. When one of them is
// "-", standard input is read once and replayed to every hledger call.
type JournalInput struct {
	Files []string
	Stdin []byte
}

// OpenJournals resolves the journal files from the -f flags and cfg, reading
// stdin when it is one of them.
func OpenJournals(globals *Globals, cfg *config.Config, stdin io.Reader) (*JournalInput, error) {
	in := &JournalInput{Files: cfg.JournalFiles(globals.File)}
	if !in.UsesStdin() {
		return in, nil
	}

	contents, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	in.Stdin = contents
	return in, nil
}

// UsesStdin reports whether one of the journals is standard input.
func (in *JournalInput) UsesStdin() bool {
	for _, f := range in.Files {
		if f == hledger.StdinFile {
			return true
		}
	}
	return false
}

// Client returns an hledger client for the journals.
func (in *JournalInput) Client(cfg *config.Config, opts ...hledger.Option) *hledger.Client {
	base := []hledger.Option{
		hledger.WithBinary(cfg.HledgerBinary),
		hledger.WithStdin(in.Stdin),
	}
	return hledger.New(in.Files, append(base, opts...)...)
}

// startTelemetry installs a timing collector under name when enabled. The
// returned func ends the root timer and prints the report once.
func startTelemetry(parent context.Context, stderr io.Writer, enabled bool, name string) (context.Context, func()) {
	if !enabled {
		return parent, func() {}
	}

	collector := telemetry.NewTimingCollector()
	ctx := telemetry.WithCollector(parent, collector)
	timer := collector.Start(name)

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			timer.End()
			_, _ = fmt.Fprintln(stderr)
			collector.Report(stderr, output.NewStyles(stderr))
		})
	}
}

// noDescription picks the description filter: the flag, then the config.
func noDescription(flag string, cfg *config.Config) string {
	if flag != "" {
		return flag
	}
	return cfg.NoDesc
}

// runCommand runs fn once, or on every journal change with watch. Errors of
// a single run are rendered on stderr and turned into exit code 1.
func runCommand(stderr io.Writer, globals *Globals, in *JournalInput, watch bool, name string, fn func(context.Context) error) error {
	parent := context.Background()
	if watch {
		if in.UsesStdin() {
			return errors.New("--watch cannot follow a journal read from stdin")
		}
		var stop context.CancelFunc
		parent, stop = signal.NotifyContext(parent, os.Interrupt)
		defer stop()
	}

	ctx, report := startTelemetry(parent, stderr, globals.Telemetry, name)
	defer report()

	if watch {
		return watchJournals(ctx, in.Files, stderr, fn)
	}
	if err := fn(ctx); err != nil {
		return reportError(stderr, err, name+" failed")
	}
	return nil
}
