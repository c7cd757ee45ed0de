package render

import (
	"bufio"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/wordml/model"
)

// TextRenderer writes plain text: one line per paragraph, list labels
// indented by level, table rows as tab-separated cells. Output is NFC
// normalized.
type TextRenderer struct {
	// IncludeLabels prefixes numbered paragraphs with their list label.
	IncludeLabels bool
	// ShowHidden includes runs marked as hidden text.
	ShowHidden bool
	// Indent is repeated once per list level. Defaults to two spaces.
	Indent string
}

// Render writes doc to w.
func (tr *TextRenderer) Render(w io.Writer, doc *model.Document) error {
	bw := bufio.NewWriter(w)
	for i, block := range doc.Blocks {
		if i > 0 {
			bw.WriteString("\n")
			if p, ok := block.(*model.Paragraph); ok && p.IsHeading() {
				bw.WriteString("\n") // Extra blank line before headings
			}
		}
		bw.WriteString(norm.NFC.String(tr.block(block)))
	}
	if len(doc.Blocks) > 0 {
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func (tr *TextRenderer) block(b model.Block) string {
	switch v := b.(type) {
	case *model.Paragraph:
		return tr.paragraph(v)
	case *model.Table:
		return tr.table(v)
	}
	return ""
}

// Paragraph renders a single paragraph without a trailing newline.
func (tr *TextRenderer) Paragraph(p *model.Paragraph) string {
	return norm.NFC.String(tr.paragraph(p))
}

func (tr *TextRenderer) paragraph(p *model.Paragraph) string {
	var sb strings.Builder
	if tr.IncludeLabels && p.Numbering != nil {
		indent := tr.Indent
		if indent == "" {
			indent = "  "
		}
		sb.WriteString(strings.Repeat(indent, p.Numbering.Level))
		sb.WriteString(p.Numbering.Text)
		sb.WriteString(labelSeparator(p.Numbering))
	}
	for _, r := range p.Runs {
		if visible(r, tr.ShowHidden) {
			sb.WriteString(runText(r))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// runText returns the text of a run with caps applied.
func runText(r *model.Run) string {
	text := r.GetText()
	if r.Properties.Caps.Or(false) || r.Properties.SmallCaps.Or(false) {
		text = cases.Upper(language.Und).String(text)
	}
	return text
}

func (tr *TextRenderer) table(t *model.Table) string {
	var lines []string
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			if cell.Merged {
				cells = append(cells, "")
				continue
			}
			var parts []string
			for _, child := range cell.Children {
				if s := tr.block(child); s != "" {
					parts = append(parts, s)
				}
			}
			text := strings.Join(parts, " ")
			text = strings.NewReplacer("\n", " ", "\t", " ").Replace(text)
			cells = append(cells, text)
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}
