package model

import "strings"

// BlockType represents the type of a body-level block
type BlockType int

const (
	BlockTypeUnknown BlockType = iota
	BlockTypeParagraph
	BlockTypeTable
)

func (bt BlockType) String() string {
	switch bt {
	case BlockTypeParagraph:
		return "Paragraph"
	case BlockTypeTable:
		return "Table"
	default:
		return "Unknown"
	}
}

// Block is the interface for body-level content: paragraphs and tables.
type Block interface {
	Type() BlockType
	GetText() string
}

// NumberFormat is a list level numbering format.
type NumberFormat int

const (
	NumFmtDecimal NumberFormat = iota
	NumFmtDecimalZero
	NumFmtUpperRoman
	NumFmtLowerRoman
	NumFmtUpperLetter
	NumFmtLowerLetter
	NumFmtBullet
	NumFmtNone
)

func (f NumberFormat) String() string {
	switch f {
	case NumFmtDecimalZero:
		return "decimalZero"
	case NumFmtUpperRoman:
		return "upperRoman"
	case NumFmtLowerRoman:
		return "lowerRoman"
	case NumFmtUpperLetter:
		return "upperLetter"
	case NumFmtLowerLetter:
		return "lowerLetter"
	case NumFmtBullet:
		return "bullet"
	case NumFmtNone:
		return "none"
	default:
		return "decimal"
	}
}

// ParseNumberFormat maps a w:numFmt value.
func ParseNumberFormat(s string) (NumberFormat, bool) {
	switch s {
	case "decimal":
		return NumFmtDecimal, true
	case "decimalZero":
		return NumFmtDecimalZero, true
	case "upperRoman":
		return NumFmtUpperRoman, true
	case "lowerRoman":
		return NumFmtLowerRoman, true
	case "upperLetter":
		return NumFmtUpperLetter, true
	case "lowerLetter":
		return NumFmtLowerLetter, true
	case "bullet":
		return NumFmtBullet, true
	case "none":
		return NumFmtNone, true
	}
	return NumFmtDecimal, false
}

// NumberingLabel is the rendered list label of a numbered paragraph.
type NumberingLabel struct {
	ListID   string
	Level    int // 0-8
	Text     string
	Format   NumberFormat
	Padding  float64 // points between the label and the paragraph text
	Fallback bool    // true when the list definition could not be resolved
}

// Paragraph is a paragraph with fully resolved formatting.
type Paragraph struct {
	StyleID    string
	Properties ParagraphProperties
	Runs       []*Run
	Numbering  *NumberingLabel

	// HeadingLevel is 1-9 for headings, 0 for body text.
	HeadingLevel int
}

// IsHeading reports whether the paragraph is a heading.
func (p *Paragraph) IsHeading() bool { return p.HeadingLevel > 0 }

func (p *Paragraph) Type() BlockType { return BlockTypeParagraph }

// GetText returns the paragraph text without its list label.
func (p *Paragraph) GetText() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.GetText())
	}
	return sb.String()
}

// ContentKind identifies run content.
type ContentKind int

const (
	ContentText ContentKind = iota
	ContentTab
	ContentBreak
)

// BreakKind is the kind of a break content item.
type BreakKind int

const (
	BreakLine BreakKind = iota
	BreakPage
	BreakColumn
)

// RunContent is one item of run content: text, a tab or a break.
type RunContent struct {
	Kind  ContentKind
	Text  string    // ContentText only
	Break BreakKind // ContentBreak only
}

// Text returns a text content item.
func Text(s string) RunContent { return RunContent{Kind: ContentText, Text: s} }

// Tab returns a tab content item.
func Tab() RunContent { return RunContent{Kind: ContentTab} }

// Break returns a break content item.
func Break(k BreakKind) RunContent { return RunContent{Kind: ContentBreak, Break: k} }

// Run is a run of text sharing one set of resolved properties.
type Run struct {
	StyleID    string
	Properties RunProperties
	Contents   []RunContent
}

// GetText returns the run text with tabs as '\t' and breaks as '\n'.
func (r *Run) GetText() string {
	var sb strings.Builder
	for _, c := range r.Contents {
		switch c.Kind {
		case ContentText:
			sb.WriteString(c.Text)
		case ContentTab:
			sb.WriteByte('\t')
		case ContentBreak:
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
