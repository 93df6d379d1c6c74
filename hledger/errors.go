package hledger

import (
	"fmt"
	"strings"
)

// ExecError is returned when the hledger process fails.
type ExecError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("running %s: %v", strings.Join(e.Args, " "), e.Err)
	if first := e.firstLine(); first != "" {
		msg += ": " + first
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// StderrLines returns the non-empty lines hledger wrote to standard error.
func (e *ExecError) StderrLines() []string {
	var lines []string
	for _, line := range strings.Split(e.Stderr, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimRight(line, "\r"))
		}
	}
	return lines
}

func (e *ExecError) firstLine() string {
	if lines := e.StderrLines(); len(lines) > 0 {
		return strings.TrimSpace(lines[0])
	}
	return ""
}

// DecodeError is returned for hledger output that cannot be understood.
type DecodeError struct {
	Line int // 1-based line of the output, 0 when unknown
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: cannot decode %q: %v", e.Line, e.Text, e.Err)
	}
	return fmt.Sprintf("cannot decode %q: %v", e.Text, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
