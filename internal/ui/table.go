package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Column defines a table column. Right aligns cells to the right edge,
// which suits token amounts and counts.
type Column struct {
	Title string
	Width int
	Right bool
}

// Row is a slice of cell values. Cells may already carry styling.
type Row []string

// Table is a fixed-width, lipgloss-styled table. SelIdx highlights one
// row; -1 highlights none.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int
}

// NewTable returns an empty table with no row selected.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

var (
	tableHead = lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	tableCell = lipgloss.NewStyle().Foreground(ColorValue)
	tableRule = lipgloss.NewStyle().Foreground(ColorMeta)
)

// Render returns the full table as a string. Widths are measured in
// terminal cells, ignoring ANSI styling, so pre-styled cells line up.
func (t *Table) Render() string {
	lines := make([]string, 0, len(t.Rows)+2)
	lines = append(lines, t.line(func(_ int, c Column) string {
		return tableHead.Render(fit(c.Title, c.Width, c.Right))
	}))
	lines = append(lines, t.line(func(_ int, c Column) string {
		return tableRule.Render(strings.Repeat("-", c.Width))
	}))
	for i, row := range t.Rows {
		selected := i == t.SelIdx
		lines = append(lines, t.line(func(j int, c Column) string {
			var v string
			if j < len(row) {
				v = row[j]
			}
			if selected {
				return StyleSelected.Render(fit(ansi.Strip(v), c.Width, c.Right))
			}
			return tableCell.Render(fit(v, c.Width, c.Right))
		}))
	}
	return strings.Join(lines, "\n") + "\n"
}

// line joins one rendered cell per column.
func (t *Table) line(cell func(int, Column) string) string {
	cells := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		cells[j] = cell(j, c)
	}
	return strings.Join(cells, " ")
}

// fit pads or truncates s to exactly width cells.
func fit(s string, width int, right bool) string {
	if width <= 0 {
		return ""
	}
	w := lipgloss.Width(s)
	if w > width {
		return ansi.Truncate(s, width, "…")
	}
	pad := strings.Repeat(" ", width-w)
	if right {
		return pad + s
	}
	return s + pad
}

// KeyValueBlock renders a set of key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(StyleTitle.Render(title) + "\n")
	}
	for _, kv := range pairs {
		fmt.Fprintf(&b, "  %s %s\n", StyleMeta.Render(fmt.Sprintf("%-20s", kv[0]+":")), StyleValue.Render(kv[1]))
	}
	return StyleBorder.Render(b.String())
}
