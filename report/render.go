package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"
)

// columnGap separates columns of the plain format.
const columnGap = "  "

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#5C5C5C"})
)

// Render writes tables to w in format f. Spreadsheets get one sheet per table.
func Render(w io.Writer, f Format, tables ...*Table) error {
	switch f {
	case Plain:
		return renderEach(w, tables, renderPlain)
	case Pretty:
		return renderEach(w, tables, renderPretty)
	case CSV:
		return renderEach(w, tables, renderCSV)
	case XLSX:
		return renderXLSX(w, tables)
	}
	return fmt.Errorf("unsupported output format %s", f)
}

func renderEach(w io.Writer, tables []*Table, render func(io.Writer, *Table) error) error {
	for i, t := range tables {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := render(w, t); err != nil {
			return err
		}
	}
	return nil
}

// renderPlain writes a borderless table with a dashed rule under the headers.
// Numeric columns are right-aligned.
func renderPlain(w io.Writer, t *Table) error {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = runewidth.StringWidth(c.Header)
	}
	for _, row := range t.Rows {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c.Text))
		}
	}

	var b strings.Builder
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, text := range cells {
			if t.Columns[i].Numeric {
				parts[i] = runewidth.FillLeft(text, widths[i])
			} else {
				parts[i] = runewidth.FillRight(text, widths[i])
			}
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, columnGap), " "))
		b.WriteByte('\n')
	}

	writeLine(t.Headers())
	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	writeLine(rule)
	for _, row := range t.Texts() {
		writeLine(row)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func renderPretty(w io.Writer, t *Table) error {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Headers()...).
		Rows(t.Texts()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := cellStyle
			if row == table.HeaderRow {
				style = headerStyle
			}
			if col < len(t.Columns) && t.Columns[col].Numeric {
				return style.Align(lipgloss.Right)
			}
			return style
		})

	title := lipgloss.NewStyle().Bold(true).Render(t.Title)
	_, err := fmt.Fprintf(w, "%s\n%s\n", title, tbl.String())
	return err
}

func renderCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Texts()); err != nil {
		return err
	}
	return cw.Error()
}

func renderXLSX(w io.Writer, tables []*Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	used := map[string]bool{}
	for i, t := range tables {
		sheet := sheetName(t, i)
		for n := 2; used[sheet]; n++ {
			sheet = fmt.Sprintf("%s %d", sheetName(t, i), n)
		}
		used[sheet] = true

		index, err := f.NewSheet(sheet)
		if err != nil {
			return fmt.Errorf("creating sheet %s: %w", sheet, err)
		}
		if i == 0 {
			f.SetActiveSheet(index)
		}
		if err := writeSheet(f, sheet, t); err != nil {
			return err
		}
	}
	if len(tables) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, t *Table) error {
	for col, header := range t.Headers() {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for r, row := range t.Rows {
		for col, c := range row {
			if c.Value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, c.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// sheetName derives a valid sheet name from the table title.
func sheetName(t *Table, index int) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '-'
		}
		return r
	}, t.Title)
	name = strings.TrimSpace(name)
	if name == "" || name == "Sheet1" {
		name = fmt.Sprintf("Table %d", index+1)
	}
	if runes := []rune(name); len(runes) > 28 {
		name = string(runes[:28])
	}
	return name
}
