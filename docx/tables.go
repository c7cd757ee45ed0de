package docx

import (
	"strings"

	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// defaultColumnWidth is used for grid back-fill when a cell has no usable
// width: one inch, in points.
const defaultColumnWidth = 72.0

// ParsedBlock is a block-level element inside a body or table cell.
// Exactly one of Paragraph and Table is set.
type ParsedBlock struct {
	Paragraph *ParsedParagraph
	Table     *ParsedTable
}

// ParsedTable is a table with its local properties and parsed content.
type ParsedTable struct {
	StyleID    string
	Properties model.TableProperties
	Grid       []float64 // column widths in points
	Rows       []ParsedTableRow
}

// ParsedTableRow is a parsed table row.
type ParsedTableRow struct {
	Properties model.RowProperties
	Cells      []ParsedTableCell
}

// ParsedTableCell is a parsed table cell.
type ParsedTableCell struct {
	Properties model.CellProperties
	Content    []ParsedBlock
}

// ParseTable parses a <w:tbl> element. It tolerates "flattened" tables whose
// cells appear without row wrappers: they are gathered into one synthesized
// row. A missing grid is back-filled from the first row's cell widths.
func ParseTable(n *xmlnode.Node, c *Collector) ParsedTable {
	parsed := ParsedTable{}

	if tblPr := n.Child("tblPr"); tblPr != nil {
		parsed.StyleID = tblPr.Child("tblStyle").AttrOr("val", "")
		parsed.Properties = parseTableProperties(tblPr, c)
	}

	grid, missing := parseTableGrid(n.Child("tblGrid"), c)
	parsed.Grid = grid

	var stray []ParsedTableCell
	for _, child := range tableRowNodes(n) {
		switch child.Name() {
		case "tr":
			parsed.Rows = append(parsed.Rows, parseRow(child, c))
		case "tc":
			stray = append(stray, parseCell(child, c))
		}
	}

	if len(stray) > 0 {
		c.Add(WarnStructuralFallback, n,
			"%d table cells without a row wrapper; synthesized one row", len(stray))
		parsed.Rows = append(parsed.Rows, ParsedTableRow{Cells: stray})
	}

	switch {
	case len(parsed.Grid) == 0 && len(parsed.Rows) > 0:
		parsed.Grid = backfillGrid(parsed.Rows[0])
		c.Add(WarnStructuralFallback, n,
			"table has no column grid; derived %d column widths from the first row", len(parsed.Grid))
	case len(missing) > 0:
		var derived []float64
		if len(parsed.Rows) > 0 {
			derived = backfillGrid(parsed.Rows[0])
		}
		for _, i := range missing {
			parsed.Grid[i] = defaultColumnWidth
			if i < len(derived) {
				parsed.Grid[i] = derived[i]
			}
		}
		c.Add(WarnStructuralFallback, n,
			"%d grid columns without a width; derived them from the first row", len(missing))
	}

	return parsed
}

// tableRowNodes returns the row-level children of a table, looking through
// content controls and custom XML wrappers.
func tableRowNodes(n *xmlnode.Node) []*xmlnode.Node {
	var out []*xmlnode.Node
	for _, child := range n.Elements() {
		switch child.Name() {
		case "tr", "tc":
			out = append(out, child)
		case "sdt":
			out = append(out, tableRowNodes(child.Child("sdtContent"))...)
		case "customXml":
			out = append(out, tableRowNodes(child)...)
		}
	}
	return out
}

// parseTableGrid extracts column widths from the table grid. Columns without
// a usable width are left at zero and reported in missing.
func parseTableGrid(grid *xmlnode.Node, c *Collector) (widths []float64, missing []int) {
	cols := grid.Children("gridCol")
	if len(cols) == 0 {
		return nil, nil
	}
	widths = make([]float64, len(cols))
	for i, col := range cols {
		if w, ok := twipsAttr(col, "w", c).Get(); ok && w > 0 {
			widths[i] = w
		} else {
			missing = append(missing, i)
		}
	}
	return widths, missing
}

// backfillGrid derives column widths from a row's cells. A cell spanning
// several columns contributes its width split evenly across them.
func backfillGrid(row ParsedTableRow) []float64 {
	var widths []float64
	for _, cell := range row.Cells {
		span := cell.Properties.GridSpan.Or(1)
		if span < 1 {
			span = 1
		}
		w := defaultColumnWidth * float64(span)
		if cw, ok := cell.Properties.Width.Get(); ok && cw.Unit == model.WidthPoints && cw.Value > 0 {
			w = cw.Value
		}
		for i := 0; i < span; i++ {
			widths = append(widths, w/float64(span))
		}
	}
	return widths
}

func parseTableProperties(tblPr *xmlnode.Node, c *Collector) model.TableProperties {
	var props model.TableProperties
	props.Width = parseWidth(tblPr.Child("tblW"), c)

	if jc := tblPr.Child("jc"); jc != nil {
		v := jc.AttrOr("val", "")
		if a, ok := model.ParseAlignment(v); ok {
			props.Alignment = model.Some(a)
		} else {
			c.Add(WarnRecoverable, jc, "unknown table justification %q", v)
		}
	}
	if ind := tblPr.Child("tblInd"); ind != nil {
		if w, ok := parseWidth(ind, c).Get(); ok && w.Unit == model.WidthPoints {
			props.Indent = model.Some(w.Value)
		}
	}
	if layout := tblPr.Child("tblLayout"); layout != nil {
		switch v := layout.AttrOr("type", ""); v {
		case "fixed", "autofit":
			props.Layout = model.Some(v)
		default:
			c.Add(WarnRecoverable, layout, "unknown table layout %q", v)
		}
	}
	props.Borders = parseBorders(tblPr.Child("tblBorders"), c)
	props.Shading = parseShading(tblPr.Child("shd"), c)
	return props
}

// parseWidth reads a ST_TblWidth element (tblW, tcW, tblInd).
func parseWidth(n *xmlnode.Node, c *Collector) model.Opt[model.Width] {
	if n == nil {
		return model.Opt[model.Width]{}
	}
	typ := n.AttrOr("type", "dxa")
	raw := n.AttrOr("w", "")

	switch typ {
	case "auto":
		return model.Some(model.Width{Unit: model.WidthAuto})
	case "nil":
		return model.Some(model.Width{Unit: model.WidthNil})
	case "pct":
		if strings.HasSuffix(raw, "%") {
			if v, err := parseFinite(strings.TrimSuffix(raw, "%")); err == nil {
				return model.Some(model.Width{Value: v, Unit: model.WidthPercent})
			}
		} else if v, err := parseFinite(raw); err == nil {
			// fiftieths of a percent
			return model.Some(model.Width{Value: v / 50, Unit: model.WidthPercent})
		}
	case "dxa":
		if v, err := parseTwips(raw); err == nil {
			return model.Some(model.Width{Value: v, Unit: model.WidthPoints})
		}
	default:
		c.Add(WarnRecoverable, n, "unknown width type %q", typ)
		return model.Opt[model.Width]{}
	}
	c.Add(WarnRecoverable, n, "invalid width %q", raw)
	return model.Opt[model.Width]{}
}

// parseRow parses a table row.
func parseRow(row *xmlnode.Node, c *Collector) ParsedTableRow {
	parsed := ParsedTableRow{}

	if trPr := row.Child("trPr"); trPr != nil {
		if h := trPr.Child("trHeight"); h != nil {
			parsed.Properties.Height = twipsAttr(h, "val", c)
			if rule, ok := h.Attr("hRule"); ok {
				switch rule {
				case "auto", "exact", "atLeast":
					parsed.Properties.HeightRule = model.Some(rule)
				default:
					c.Add(WarnRecoverable, h, "unknown height rule %q", rule)
				}
			}
		}
		parsed.Properties.Header = onOff(trPr.Child("tblHeader"), c)
		parsed.Properties.CantSplit = onOff(trPr.Child("cantSplit"), c)
	}

	for _, child := range row.Elements() {
		switch child.Name() {
		case "tc":
			parsed.Cells = append(parsed.Cells, parseCell(child, c))
		case "sdt":
			for _, tc := range child.Child("sdtContent").Children("tc") {
				parsed.Cells = append(parsed.Cells, parseCell(tc, c))
			}
		}
	}
	return parsed
}

// parseCell parses a table cell and its block content.
func parseCell(cell *xmlnode.Node, c *Collector) ParsedTableCell {
	parsed := ParsedTableCell{}

	if tcPr := cell.Child("tcPr"); tcPr != nil {
		props := &parsed.Properties
		props.Width = parseWidth(tcPr.Child("tcW"), c)

		if gs := tcPr.Child("gridSpan"); gs != nil {
			if span, ok := intAttr(gs, "val", c).Get(); ok {
				if span > 0 {
					props.GridSpan = model.Some(span)
				} else {
					c.Add(WarnRecoverable, gs, "invalid grid span %d", span)
				}
			}
		}

		if vm := tcPr.Child("vMerge"); vm != nil {
			switch v := vm.AttrOr("val", "continue"); v {
			case "restart":
				props.VMerge = model.Some(model.VMergeRestart)
			case "continue", "":
				props.VMerge = model.Some(model.VMergeContinue)
			default:
				c.Add(WarnRecoverable, vm, "unknown vertical merge %q", v)
			}
		}

		if va := tcPr.Child("vAlign"); va != nil {
			v := va.AttrOr("val", "")
			if a, ok := model.ParseCellAlign(v); ok {
				props.VAlign = model.Some(a)
			} else {
				c.Add(WarnRecoverable, va, "unknown vertical alignment %q", v)
			}
		}

		props.Shading = parseShading(tcPr.Child("shd"), c)
		props.Borders = parseBorders(tcPr.Child("tcBorders"), c)
		props.NoWrap = onOff(tcPr.Child("noWrap"), c)
	}

	parsed.Content = parseBlocks(cell, c)
	return parsed
}

// parseBlocks parses the paragraphs and tables directly under n.
func parseBlocks(n *xmlnode.Node, c *Collector) []ParsedBlock {
	var blocks []ParsedBlock
	for _, child := range n.Elements() {
		switch child.Name() {
		case "p":
			p := ParseParagraph(child, c)
			blocks = append(blocks, ParsedBlock{Paragraph: &p})
		case "tbl":
			t := ParseTable(child, c)
			blocks = append(blocks, ParsedBlock{Table: &t})
		case "sdt":
			blocks = append(blocks, parseBlocks(child.Child("sdtContent"), c)...)
		case "customXml":
			blocks = append(blocks, parseBlocks(child, c)...)
		}
	}
	return blocks
}

// processVerticalMerges calculates row spans for vertically merged cells.
// A restarting cell gets RowSpan covering each continuation below it in the
// same grid column; continuations are marked Merged.
func processVerticalMerges(table *model.Table) {
	if len(table.Rows) == 0 {
		return
	}

	// Track merge starts for each grid column: the cell that restarted it.
	mergeStarts := make(map[int]*model.Cell)

	for _, row := range table.Rows {
		colIdx := 0
		for _, cell := range row.Cells {
			cell.RowSpan = max(cell.RowSpan, 1)
			switch cell.Properties.VMerge.Or(model.VMergeNone) {
			case model.VMergeRestart:
				mergeStarts[colIdx] = cell
			case model.VMergeContinue:
				if start, ok := mergeStarts[colIdx]; ok {
					start.RowSpan++
					cell.Merged = true
				}
			default:
				delete(mergeStarts, colIdx)
			}
			colIdx += cell.ColSpan()
		}
	}
}
