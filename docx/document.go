package docx

import (
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// assembler turns parsed body content into the resolved document model.
type assembler struct {
	styles    *StyleResolver
	numbering *NumberingEngine
	c         *Collector
}

// Assemble walks the children of a <w:body> in document order and produces
// the resolved document. Paragraph properties layer as document defaults,
// then the enclosing table's style, then the paragraph style chain, then the
// list level's indentation, then direct formatting. Run properties layer the
// paragraph's run properties, the character style chain, then direct
// formatting. NextLabel is called once per numbered paragraph.
//
// Any of styles, numbering and c may be nil. The returned warnings are every
// warning held by c, including those recorded before Assemble was called;
// they are also copied into Document.Warnings.
func Assemble(body *xmlnode.Node, styles *StyleResolver, numbering *NumberingEngine, c *Collector) (*model.Document, []Warning) {
	if c == nil {
		c = NewCollector(nil)
	}
	if styles == nil {
		styles = NewStyleResolver(nil, c)
	}
	if numbering == nil {
		numbering = NewNumberingEngine(nil, nil)
	}

	a := &assembler{styles: styles, numbering: numbering, c: c}
	doc := model.NewDocument()
	for _, block := range a.blocks(parseBlocks(body, c), "") {
		doc.AddBlock(block)
	}

	warnings := c.Warnings()
	doc.Warnings = Strings(warnings)
	return doc, warnings
}

// blocks assembles parsed blocks. tableStyle is the style of the enclosing
// table, empty at body level.
func (a *assembler) blocks(parsed []ParsedBlock, tableStyle string) []model.Block {
	out := make([]model.Block, 0, len(parsed))
	for _, pb := range parsed {
		switch {
		case pb.Paragraph != nil:
			out = append(out, a.paragraph(pb.Paragraph, tableStyle))
		case pb.Table != nil:
			out = append(out, a.table(pb.Table))
		}
	}
	return out
}

func (a *assembler) paragraph(pp *ParsedParagraph, tableStyle string) *model.Paragraph {
	base := a.styles.Defaults()
	props := base.ParagraphProperties
	runBase := base.RunProperties

	if tableStyle != "" {
		if ts, ok := a.styles.ChainProperties(tableStyle); ok {
			props = props.Merge(ts.ParagraphProperties)
			runBase = runBase.Merge(ts.RunProperties)
		}
	}

	styleID := pp.StyleID
	if styleID == "" {
		styleID = a.styles.DefaultStyleID(StyleParagraph)
	}

	headingLevel := 0
	if styleID != "" {
		if ps, ok := a.styles.ChainProperties(styleID); ok {
			props = props.Merge(ps.ParagraphProperties)
			runBase = runBase.Merge(ps.RunProperties)
			headingLevel = ps.HeadingLevel
		} else {
			a.c.Add(WarnUnresolvedReference, nil, "paragraph style %q not found, using defaults", styleID)
			styleID = ""
		}
	}

	para := &model.Paragraph{StyleID: styleID}

	ref := props.Numbering.Merge(pp.Properties.Numbering)
	if ref.Active() {
		listID, _ := ref.ListID.Get()
		level := ref.Level.Or(0)
		if def, ok := a.numbering.Level(listID, level); ok {
			props.Indentation = props.Indentation.Merge(def.Indent)
		}
		label := a.numbering.NextLabel(listID, level)
		if label.Fallback {
			a.c.Add(WarnUnresolvedReference, nil,
				"list %q level %d not defined, using label %q", listID, label.Level, label.Text)
		}
		para.Numbering = &label
	}

	props = props.Merge(pp.Properties)
	para.Properties = props

	if headingLevel == 0 {
		if lvl, ok := props.OutlineLevel.Get(); ok && lvl >= 0 && lvl < MaxLevels {
			headingLevel = lvl + 1
		}
	}
	para.HeadingLevel = headingLevel

	para.Runs = make([]*model.Run, 0, len(pp.Runs))
	for i := range pp.Runs {
		para.Runs = append(para.Runs, a.run(&pp.Runs[i], runBase))
	}
	return para
}

func (a *assembler) run(pr *ParsedRun, base model.RunProperties) *model.Run {
	props := base
	styleID := pr.StyleID
	if styleID != "" {
		if cs, ok := a.styles.ChainProperties(styleID); ok {
			props = props.Merge(cs.RunProperties)
		} else {
			a.c.Add(WarnUnresolvedReference, nil, "character style %q not found", styleID)
			styleID = ""
		}
	}

	return &model.Run{
		StyleID:    styleID,
		Properties: props.Merge(pr.Properties),
		Contents:   pr.Contents,
	}
}

func (a *assembler) table(pt *ParsedTable) *model.Table {
	styleID := pt.StyleID
	if styleID == "" {
		styleID = a.styles.DefaultStyleID(StyleTable)
	}

	var props model.TableProperties
	if styleID != "" {
		if ts, ok := a.styles.ChainProperties(styleID); ok {
			props = ts.TableProperties
		} else {
			a.c.Add(WarnUnresolvedReference, nil, "table style %q not found", styleID)
			styleID = ""
		}
	}

	table := &model.Table{
		StyleID:      styleID,
		Properties:   props.Merge(pt.Properties),
		ColumnWidths: pt.Grid,
		Rows:         make([]*model.Row, 0, len(pt.Rows)),
	}

	for _, pr := range pt.Rows {
		row := &model.Row{
			Properties: pr.Properties,
			Cells:      make([]*model.Cell, 0, len(pr.Cells)),
		}
		for _, pc := range pr.Cells {
			row.Cells = append(row.Cells, &model.Cell{
				Properties: pc.Properties,
				Children:   a.blocks(pc.Content, styleID),
				RowSpan:    1,
			})
		}
		table.Rows = append(table.Rows, row)
	}

	processVerticalMerges(table)
	return table
}
