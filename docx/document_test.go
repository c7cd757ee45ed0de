package docx

import (
	"strings"
	"testing"

	"github.com/tsawler/wordml/model"
)

func numbered(text, listID, level string) string {
	return `<w:p><w:pPr><w:numPr><w:ilvl w:val="` + level + `"/><w:numId w:val="` + listID + `"/></w:numPr></w:pPr>` +
		`<w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

func assemble(t *testing.T, body, styles, numbering string) (*model.Document, []Warning) {
	t.Helper()
	c := NewCollector(nil)
	sr := NewStyleResolver(ParseStyles(part(t, "styles", styles), c), c)
	engine := NewNumberingEngine(ParseNumbering(part(t, "numbering", numbering), c), NewCounterState())
	return Assemble(part(t, "body", body), sr, engine, c)
}

func TestAssemble_NumberedList(t *testing.T) {
	body := numbered("one", "5", "0") +
		numbered("one.one", "5", "1") +
		numbered("one.two", "5", "1") +
		numbered("two", "5", "0") +
		`<w:sectPr/>`

	doc, warnings := assemble(t, body, cascadeStyles, testNumbering)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}

	paras := doc.Paragraphs()
	if len(paras) != 4 {
		t.Fatalf("paragraphs = %d, want 4", len(paras))
	}
	want := []string{"1.", "1.1.", "1.2.", "2."}
	for i, p := range paras {
		if p.Numbering == nil {
			t.Fatalf("paragraph %d has no label", i)
		}
		if p.Numbering.Text != want[i] {
			t.Errorf("paragraph %d label = %q, want %q", i, p.Numbering.Text, want[i])
		}
	}

	// The list level's indentation applies beneath direct formatting.
	floatOpt(t, "Indentation.Left", paras[1].Properties.Indentation.Left, 72)
	floatOpt(t, "Indentation.FirstLine", paras[1].Properties.Indentation.FirstLine, -18)
}

func TestAssemble_CascadeLayers(t *testing.T) {
	body := `
		<w:p><w:r><w:t>plain</w:t></w:r></w:p>
		<w:p>
			<w:pPr><w:pStyle w:val="B"/><w:spacing w:before="0"/></w:pPr>
			<w:r><w:rPr><w:rStyle w:val="Strong"/><w:i/></w:rPr><w:t>styled</w:t></w:r>
			<w:r><w:rPr><w:b w:val="0"/></w:rPr><w:t> unbold</w:t></w:r>
		</w:p>`

	doc, _ := assemble(t, body, cascadeStyles, "")
	paras := doc.Paragraphs()
	if len(paras) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(paras))
	}

	plain := paras[0]
	if plain.StyleID != "Normal" {
		t.Errorf("plain StyleID = %q, want default Normal", plain.StyleID)
	}
	floatOpt(t, "plain Spacing.After", plain.Properties.Spacing.After, 8)
	floatOpt(t, "plain run Size", plain.Runs[0].Properties.Size, 11)

	styled := paras[1]
	floatOpt(t, "styled Spacing.Before", styled.Properties.Spacing.Before, 0)
	floatOpt(t, "styled Spacing.After", styled.Properties.Spacing.After, 6)

	r0 := styled.Runs[0].Properties
	floatOpt(t, "run 0 Size", r0.Size, 14)
	if v, _ := r0.Bold.Get(); !v {
		t.Error("run 0 should be bold")
	}
	if v, _ := r0.Italic.Get(); !v {
		t.Error("run 0 should be italic from direct formatting")
	}
	if styled.Runs[0].StyleID != "Strong" {
		t.Errorf("run 0 StyleID = %q", styled.Runs[0].StyleID)
	}
	if v, ok := styled.Runs[1].Properties.Bold.Get(); !ok || v {
		t.Error("direct b=0 should override the paragraph style's bold")
	}
	if styled.GetText() != "styled unbold" {
		t.Errorf("text = %q", styled.GetText())
	}
}

func TestAssemble_UnknownStyleFallsBackToDefaults(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Ghost"/></w:pPr><w:r><w:rPr><w:rStyle w:val="Phantom"/></w:rPr><w:t>x</w:t></w:r></w:p>`

	doc, warnings := assemble(t, body, cascadeStyles, "")
	p := doc.Paragraphs()[0]
	if p.StyleID != "" {
		t.Errorf("StyleID = %q, want empty for unresolved style", p.StyleID)
	}
	floatOpt(t, "Spacing.After", p.Properties.Spacing.After, 8)
	if !hasWarning(warnings, WarnUnresolvedReference) {
		t.Error("expected an unresolved reference warning")
	}
	if len(doc.Warnings) != len(warnings) {
		t.Errorf("Document.Warnings = %d, want %d", len(doc.Warnings), len(warnings))
	}
}

func TestAssemble_FallbackLabelWarns(t *testing.T) {
	doc, warnings := assemble(t, numbered("orphan", "404", "2"), "", testNumbering)

	label := doc.Paragraphs()[0].Numbering
	if label == nil || label.Text != "1.1.1." || !label.Fallback {
		t.Fatalf("label = %+v, want fallback 1.1.1.", label)
	}
	if !hasWarning(warnings, WarnUnresolvedReference) {
		t.Error("expected an unresolved reference warning for the missing list")
	}
}

func TestAssemble_NumberingRemovedByListZero(t *testing.T) {
	styles := `<w:style w:type="paragraph" w:styleId="ListPara">
		<w:pPr><w:numPr><w:numId w:val="5"/></w:numPr></w:pPr>
	</w:style>`
	body := `<w:p><w:pPr><w:pStyle w:val="ListPara"/></w:pPr><w:r><w:t>a</w:t></w:r></w:p>
		<w:p><w:pPr><w:pStyle w:val="ListPara"/><w:numPr><w:numId w:val="0"/></w:numPr></w:pPr><w:r><w:t>b</w:t></w:r></w:p>`

	doc, _ := assemble(t, body, styles, testNumbering)
	paras := doc.Paragraphs()
	if paras[0].Numbering == nil || paras[0].Numbering.Text != "1." {
		t.Errorf("style-linked numbering = %+v, want 1.", paras[0].Numbering)
	}
	if paras[1].Numbering != nil {
		t.Errorf("numId 0 should remove numbering, got %+v", paras[1].Numbering)
	}
}

func TestAssemble_Headings(t *testing.T) {
	body := `<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr><w:r><w:t>H</w:t></w:r></w:p>
		<w:p><w:pPr><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>Direct</w:t></w:r></w:p>
		<w:p><w:r><w:t>Body</w:t></w:r></w:p>`

	doc, _ := assemble(t, body, cascadeStyles, "")
	got := []int{}
	for _, p := range doc.Paragraphs() {
		got = append(got, p.HeadingLevel)
	}
	if want := []int{2, 1, 0}; len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("heading levels = %v, want %v", got, want)
	}
}

func TestAssemble_Tables(t *testing.T) {
	styles := cascadeStyles + `
		<w:style w:type="table" w:styleId="Fancy">
			<w:pPr><w:jc w:val="center"/></w:pPr>
			<w:rPr><w:color w:val="336699"/></w:rPr>
			<w:tblPr><w:jc w:val="right"/></w:tblPr>
		</w:style>`
	body := `
		<w:p><w:r><w:t>before</w:t></w:r></w:p>
		<w:tbl>
			<w:tblPr><w:tblStyle w:val="Fancy"/></w:tblPr>
			<w:tblGrid><w:gridCol w:w="1440"/><w:gridCol w:w="1440"/></w:tblGrid>
			<w:tr>
				<w:tc><w:tcPr><w:vMerge w:val="restart"/></w:tcPr><w:p><w:r><w:t>tall</w:t></w:r></w:p></w:tc>
				<w:tc><w:p><w:pPr><w:pStyle w:val="A"/></w:pPr><w:r><w:t>r1</w:t></w:r></w:p></w:tc>
			</w:tr>
			<w:tr>
				<w:tc><w:tcPr><w:vMerge/></w:tcPr><w:p/></w:tc>
				<w:tc>
					<w:tbl>
						<w:tblGrid><w:gridCol w:w="720"/></w:tblGrid>
						<w:tr><w:tc><w:p><w:r><w:t>inner</w:t></w:r></w:p></w:tc></w:tr>
					</w:tbl>
					<w:p/>
				</w:tc>
			</w:tr>
		</w:tbl>
		<w:p><w:r><w:t>after</w:t></w:r></w:p>`

	doc, _ := assemble(t, body, styles, "")
	if len(doc.Blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(doc.Blocks))
	}
	table, ok := doc.Blocks[1].(*model.Table)
	if !ok {
		t.Fatalf("block 1 is %T, want *model.Table", doc.Blocks[1])
	}
	if table.StyleID != "Fancy" {
		t.Errorf("StyleID = %q", table.StyleID)
	}
	if a, _ := table.Properties.Alignment.Get(); a != model.AlignRight {
		t.Errorf("table alignment = %v, want right from table style", a)
	}
	if len(table.ColumnWidths) != 2 || table.ColumnWidths[0] != 72 {
		t.Errorf("ColumnWidths = %v", table.ColumnWidths)
	}

	tall := table.Rows[0].Cells[0]
	if tall.RowSpan != 2 || !table.Rows[1].Cells[0].Merged {
		t.Errorf("vertical merge: RowSpan = %d, continuation merged = %v", tall.RowSpan, table.Rows[1].Cells[0].Merged)
	}

	inCell := tall.Children[0].(*model.Paragraph)
	if a, _ := inCell.Properties.Alignment.Get(); a != model.AlignCenter {
		t.Errorf("cell paragraph alignment = %v, want center from table style", a)
	}
	if col, _ := inCell.Runs[0].Properties.Color.Get(); col != "336699" {
		t.Errorf("cell run color = %q, want table style color", col)
	}
	styled := table.Rows[0].Cells[1].Children[0].(*model.Paragraph)
	floatOpt(t, "styled cell Spacing.After", styled.Properties.Spacing.After, 6)

	nested, ok := table.Rows[1].Cells[1].Children[0].(*model.Table)
	if !ok {
		t.Fatalf("nested block is %T, want *model.Table", table.Rows[1].Cells[1].Children[0])
	}
	if got := nested.GetCell(0, 0).GetText(); got != "inner" {
		t.Errorf("nested text = %q", got)
	}

	var texts []string
	doc.Walk(func(p *model.Paragraph) {
		if s := p.GetText(); s != "" {
			texts = append(texts, s)
		}
	})
	if got := strings.Join(texts, ","); got != "before,tall,r1,inner,after" {
		t.Errorf("document order = %q", got)
	}
}

func TestAssemble_ContentControlsKeepOrder(t *testing.T) {
	body := `<w:p><w:r><w:t>1</w:t></w:r></w:p>
		<w:sdt><w:sdtContent>
			<w:p><w:r><w:t>2</w:t></w:r></w:p>
			<w:p><w:r><w:t>3</w:t></w:r></w:p>
		</w:sdtContent></w:sdt>
		<w:customXml><w:p><w:r><w:t>4</w:t></w:r></w:p></w:customXml>`

	doc, _ := assemble(t, body, "", "")
	if got := doc.ExtractText(); got != "1\n2\n3\n4" {
		t.Errorf("ExtractText() = %q", got)
	}
}

func TestAssemble_NilInputs(t *testing.T) {
	doc, warnings := Assemble(nil, nil, nil, nil)
	if doc == nil || len(doc.Blocks) != 0 || len(warnings) != 0 {
		t.Errorf("Assemble(nil) = %+v, %v", doc, warnings)
	}
}
