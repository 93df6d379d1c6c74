package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/robinvdvleuten/hledger-fifo/fifo"
	"github.com/robinvdvleuten/hledger-fifo/formatter"
	"github.com/robinvdvleuten/hledger-fifo/hledger"
)

var (
	errCaretStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	errContextStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

// ErrorRenderer renders errors with terminal styling and the context that
// explains them: the open lots of a failed sale, or what hledger printed.
type ErrorRenderer struct {
	indent string
}

// NewErrorRenderer creates a renderer that indents context by three spaces.
func NewErrorRenderer() *ErrorRenderer {
	return &ErrorRenderer{indent: "   "}
}

// Render formats a single error with styling and context.
func (r *ErrorRenderer) Render(err error) string {
	var insufficient *fifo.InsufficientLotsError
	if errors.As(err, &insufficient) {
		return r.renderWithContext(err.Error(), r.lotLines(insufficient))
	}

	var execErr *hledger.ExecError
	if errors.As(err, &execErr) {
		return r.renderWithContext(err.Error(), execErr.StderrLines())
	}

	var decodeErr *hledger.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Text != "" {
		return r.renderWithCaret(err.Error(), decodeErr.Text)
	}

	return err.Error()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (r *ErrorRenderer) lotLines(e *fifo.InsufficientLotsError) []string {
	if len(e.Open) == 0 {
		return []string{"no open lots"}
	}

	lines := make([]string, 0, len(e.Open)+1)
	for _, l := range e.Open {
		amount := formatter.Amount{Quantity: l.Quantity, Commodity: l.Commodity}
		cost := formatter.Amount{Quantity: l.UnitCost, Commodity: l.CostCommodity}
		line := fmt.Sprintf("%s %s @ %s", l.Date.Format(fifo.DateLayout), amount, cost)
		if l.Account != "" {
			line += "  " + l.Account
		}
		lines = append(lines, line)
	}
	lines = append(lines, fmt.Sprintf("short by %s", e.Shortfall()))
	return lines
}

func (r *ErrorRenderer) renderWithContext(message string, lines []string) string {
	if len(lines) == 0 {
		return message
	}

	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")

	for _, line := range lines {
		buf.WriteString(r.indent)
		buf.WriteString(errContextStyle.Render(line))
		buf.WriteByte('\n')
	}

	return buf.String()
}

// renderWithCaret shows text with a caret under its first character.
func (r *ErrorRenderer) renderWithCaret(message, text string) string {
	var buf strings.Builder

	buf.WriteString(errorStyle.Render(message))
	buf.WriteString("\n\n")
	buf.WriteString(r.indent)
	buf.WriteString(errContextStyle.Render(text))
	buf.WriteByte('\n')
	buf.WriteString(r.indent)
	buf.WriteString(errCaretStyle.Render("^"))
	buf.WriteByte('\n')

	return buf.String()
}
