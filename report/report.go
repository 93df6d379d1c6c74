// Package report renders lots and indicator records as tables in several
// output formats.
//
// Example usage:
//
//	table := report.InfoTable(records)
//	err := report.Render(os.Stdout, report.Pretty, table)
package report

import (
	"fmt"
	"strings"
)

// Format is an output format.
type Format int

const (
	Plain Format = iota
	Pretty
	CSV
	XLSX
)

var formatNames = map[Format]string{
	Plain:  "plain",
	Pretty: "pretty",
	CSV:    "csv",
	XLSX:   "xlsx",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Binary reports whether the format is not meant for a terminal.
func (f Format) Binary() bool {
	return f == XLSX
}

// ParseFormat returns the format named s.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if strings.EqualFold(s, name) {
			return f, nil
		}
	}
	return Plain, fmt.Errorf("unknown output format %q, expected plain, pretty, csv or xlsx", s)
}

// Column describes one table column.
type Column struct {
	Header  string
	Numeric bool
}

// Cell is one table value. Text is what text formats print; Value is the
// typed value spreadsheets store (float64, string or nil for an empty cell).
type Cell struct {
	Text  string
	Value any
}

// Table is a titled grid of cells.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]Cell
}

// Headers returns the column headers.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		headers[i] = c.Header
	}
	return headers
}

// Texts returns the text of every row.
func (t *Table) Texts() [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, c := range row {
			rows[i][j] = c.Text
		}
	}
	return rows
}
