package model

import (
	"fmt"
	"strings"
)

// Table is a table with resolved rows and cells.
type Table struct {
	StyleID      string
	Properties   TableProperties
	ColumnWidths []float64 // points
	Rows         []*Row
}

func (t *Table) Type() BlockType { return BlockTypeTable }

// GetText returns cell text separated by tabs, rows separated by newlines.
func (t *Table) GetText() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for j, cell := range row.Cells {
			sb.WriteString(strings.ReplaceAll(cell.GetText(), "\n", " "))
			if j < len(row.Cells)-1 {
				sb.WriteString("\t")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// RowCount returns the number of rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColCount returns the number of grid columns. When no grid is known it is
// derived from the widest row, counting column spans.
func (t *Table) ColCount() int {
	if len(t.ColumnWidths) > 0 {
		return len(t.ColumnWidths)
	}
	widest := 0
	for _, row := range t.Rows {
		if n := row.Span(); n > widest {
			widest = n
		}
	}
	return widest
}

// GetCell returns the cell at (row, index) or nil. index counts cells, not
// grid columns.
func (t *Table) GetCell(row, index int) *Cell {
	if row < 0 || row >= len(t.Rows) {
		return nil
	}
	cells := t.Rows[row].Cells
	if index < 0 || index >= len(cells) {
		return nil
	}
	return cells[index]
}

// ToMarkdown converts the table to markdown format
func (t *Table) ToMarkdown() string {
	if len(t.Rows) == 0 {
		return ""
	}
	cols := t.ColCount()

	var sb strings.Builder
	for i, row := range t.Rows {
		sb.WriteString("|")
		n := 0
		for _, cell := range row.Cells {
			text := strings.ReplaceAll(cell.GetText(), "\n", " ")
			text = strings.ReplaceAll(text, "|", "\\|")
			if cell.Merged {
				text = ""
			}
			sb.WriteString(fmt.Sprintf(" %s |", strings.TrimSpace(text)))
			n++
			for s := 1; s < cell.ColSpan(); s++ {
				sb.WriteString(" |")
				n++
			}
		}
		for ; n < cols; n++ {
			sb.WriteString(" |")
		}
		sb.WriteString("\n")

		if i == 0 {
			sb.WriteString("|")
			for j := 0; j < cols; j++ {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Row is a table row.
type Row struct {
	Properties RowProperties
	Cells      []*Cell
}

// Span returns the number of grid columns covered by the row.
func (r *Row) Span() int {
	n := 0
	for _, c := range r.Cells {
		n += c.ColSpan()
	}
	return n
}

// Cell is a table cell holding paragraphs and nested tables.
type Cell struct {
	Properties CellProperties
	Children   []Block
	RowSpan    int  // rows covered by a vertical merge starting here
	Merged     bool // continuation of a vertical merge from the row above
}

// ColSpan returns the number of grid columns the cell spans.
func (c *Cell) ColSpan() int {
	if n, ok := c.Properties.GridSpan.Get(); ok && n > 0 {
		return n
	}
	return 1
}

// GetText returns the text of all child blocks separated by newlines.
func (c *Cell) GetText() string {
	parts := make([]string, 0, len(c.Children))
	for _, b := range c.Children {
		if s := strings.TrimRight(b.GetText(), "\n"); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}
