package model

// TextAlignment represents paragraph alignment.
type TextAlignment int

const (
	AlignLeft TextAlignment = iota
	AlignCenter
	AlignRight
	AlignJustify
	AlignDistribute
)

func (a TextAlignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	case AlignJustify:
		return "justify"
	case AlignDistribute:
		return "distribute"
	default:
		return "left"
	}
}

// ParseAlignment maps a w:jc value to a TextAlignment.
func ParseAlignment(s string) (TextAlignment, bool) {
	switch s {
	case "left", "start":
		return AlignLeft, true
	case "center":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	case "both", "justify":
		return AlignJustify, true
	case "distribute":
		return AlignDistribute, true
	}
	return AlignLeft, false
}

// LineRule controls how Spacing.Line is interpreted.
type LineRule int

const (
	// LineAuto means Line is a multiple of single line spacing (1.0 = single).
	LineAuto LineRule = iota
	// LineExact means Line is an exact height in points.
	LineExact
	// LineAtLeast means Line is a minimum height in points.
	LineAtLeast
)

// ParseLineRule maps a w:spacing/@lineRule value.
func ParseLineRule(s string) (LineRule, bool) {
	switch s {
	case "auto":
		return LineAuto, true
	case "exact":
		return LineExact, true
	case "atLeast":
		return LineAtLeast, true
	}
	return LineAuto, false
}

// VerticalAlign is the run vertical alignment (superscript/subscript).
type VerticalAlign int

const (
	VertBaseline VerticalAlign = iota
	VertSuperscript
	VertSubscript
)

// ParseVerticalAlign maps a w:vertAlign value.
func ParseVerticalAlign(s string) (VerticalAlign, bool) {
	switch s {
	case "baseline":
		return VertBaseline, true
	case "superscript":
		return VertSuperscript, true
	case "subscript":
		return VertSubscript, true
	}
	return VertBaseline, false
}

var underlineStyles = map[string]bool{
	"none": true, "single": true, "words": true, "double": true, "thick": true,
	"dotted": true, "dottedHeavy": true, "dash": true, "dashedHeavy": true,
	"dashLong": true, "dashLongHeavy": true, "dotDash": true, "dashDotHeavy": true,
	"dotDotDash": true, "dashDotDotHeavy": true, "wave": true, "wavyHeavy": true,
	"wavyDouble": true,
}

// ValidUnderline reports whether s is a known w:u value.
func ValidUnderline(s string) bool { return underlineStyles[s] }

var highlightColors = map[string]bool{
	"black": true, "blue": true, "cyan": true, "green": true, "magenta": true,
	"red": true, "yellow": true, "white": true, "darkBlue": true, "darkCyan": true,
	"darkGreen": true, "darkMagenta": true, "darkRed": true, "darkYellow": true,
	"darkGray": true, "lightGray": true, "none": true,
}

// ValidHighlight reports whether s is a known w:highlight value.
func ValidHighlight(s string) bool { return highlightColors[s] }

// Spacing is paragraph spacing in points.
type Spacing struct {
	Before   Opt[float64]
	After    Opt[float64]
	Line     Opt[float64] // multiple of single spacing for LineAuto, points otherwise
	LineRule Opt[LineRule]
}

// Merge merges over into s field by field.
func (s Spacing) Merge(over Spacing) Spacing {
	return Spacing{
		Before:   s.Before.Merge(over.Before),
		After:    s.After.Merge(over.After),
		Line:     s.Line.Merge(over.Line),
		LineRule: s.LineRule.Merge(over.LineRule),
	}
}

// Indentation is paragraph indentation in points. A hanging indent is
// stored as a negative FirstLine.
type Indentation struct {
	Left      Opt[float64]
	Right     Opt[float64]
	FirstLine Opt[float64]
}

// Merge merges over into i field by field.
func (i Indentation) Merge(over Indentation) Indentation {
	return Indentation{
		Left:      i.Left.Merge(over.Left),
		Right:     i.Right.Merge(over.Right),
		FirstLine: i.FirstLine.Merge(over.FirstLine),
	}
}

// Fonts holds the per-script font slots of w:rFonts.
type Fonts struct {
	ASCII    Opt[string]
	HAnsi    Opt[string]
	EastAsia Opt[string]
	CS       Opt[string]
}

// Merge merges over into f field by field.
func (f Fonts) Merge(over Fonts) Fonts {
	return Fonts{
		ASCII:    f.ASCII.Merge(over.ASCII),
		HAnsi:    f.HAnsi.Merge(over.HAnsi),
		EastAsia: f.EastAsia.Merge(over.EastAsia),
		CS:       f.CS.Merge(over.CS),
	}
}

// Primary returns the font used for Latin text.
func (f Fonts) Primary() string {
	if v, ok := f.ASCII.Get(); ok {
		return v
	}
	return f.HAnsi.Or("")
}

// Border is a single border edge.
type Border struct {
	Style string  // single, double, nil, ...
	Size  float64 // points
	Space float64 // points
	Color string  // hex or "auto"
}

// Visible reports whether the border draws anything.
func (b Border) Visible() bool {
	return b.Style != "" && b.Style != "nil" && b.Style != "none"
}

// Borders holds the edges of a paragraph, table or cell.
type Borders struct {
	Top     Opt[Border]
	Bottom  Opt[Border]
	Left    Opt[Border]
	Right   Opt[Border]
	Between Opt[Border] // paragraphs only
	InsideH Opt[Border] // tables only
	InsideV Opt[Border] // tables only
}

// Merge merges over into b edge by edge.
func (b Borders) Merge(over Borders) Borders {
	return Borders{
		Top:     b.Top.Merge(over.Top),
		Bottom:  b.Bottom.Merge(over.Bottom),
		Left:    b.Left.Merge(over.Left),
		Right:   b.Right.Merge(over.Right),
		Between: b.Between.Merge(over.Between),
		InsideH: b.InsideH.Merge(over.InsideH),
		InsideV: b.InsideV.Merge(over.InsideV),
	}
}

// Any reports whether any edge is visible.
func (b Borders) Any() bool {
	for _, e := range []Opt[Border]{b.Top, b.Bottom, b.Left, b.Right, b.Between, b.InsideH, b.InsideV} {
		if v, ok := e.Get(); ok && v.Visible() {
			return true
		}
	}
	return false
}

// Shading is a background fill.
type Shading struct {
	Pattern string
	Color   string
	Fill    string
}

// TabAlignment is the alignment of a tab stop.
type TabAlignment int

const (
	TabLeft TabAlignment = iota
	TabCenter
	TabRight
	TabDecimal
	TabBar
	TabNumber
)

// ParseTabAlignment maps a w:tab/@val value. ok is false for unknown values;
// "clear" is reported separately by the caller.
func ParseTabAlignment(s string) (TabAlignment, bool) {
	switch s {
	case "left", "start":
		return TabLeft, true
	case "center":
		return TabCenter, true
	case "right", "end":
		return TabRight, true
	case "decimal":
		return TabDecimal, true
	case "bar":
		return TabBar, true
	case "num":
		return TabNumber, true
	}
	return TabLeft, false
}

// TabStop is a custom tab stop. Clear removes an inherited stop at Position.
type TabStop struct {
	Position float64 // points
	Align    TabAlignment
	Leader   string
	Clear    bool
}

// MergeTabs layers over onto base. Stops are keyed by position: a stop in
// over replaces the inherited stop at the same position, and a Clear stop
// removes it. The result is sorted by position and holds no Clear stops.
func MergeTabs(base, over []TabStop) []TabStop {
	if len(base) == 0 && len(over) == 0 {
		return nil
	}
	out := make([]TabStop, 0, len(base)+len(over))
	for _, t := range base {
		if !t.Clear {
			out = append(out, t)
		}
	}
	for _, t := range over {
		idx := -1
		for i := range out {
			if out[i].Position == t.Position {
				idx = i
				break
			}
		}
		switch {
		case t.Clear && idx >= 0:
			out = append(out[:idx], out[idx+1:]...)
		case t.Clear:
		case idx >= 0:
			out[idx] = t
		default:
			out = append(out, t)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Position < out[j-1].Position; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// NumberingRef points a paragraph at a list. ListID "0" explicitly removes
// inherited numbering.
type NumberingRef struct {
	ListID Opt[string]
	Level  Opt[int]
}

// Merge merges over into n field by field.
func (n NumberingRef) Merge(over NumberingRef) NumberingRef {
	return NumberingRef{
		ListID: n.ListID.Merge(over.ListID),
		Level:  n.Level.Merge(over.Level),
	}
}

// Active reports whether the reference names a real list.
func (n NumberingRef) Active() bool {
	id, ok := n.ListID.Get()
	return ok && id != "" && id != "0"
}

// ParagraphProperties are paragraph formatting properties. Every field is
// optional; an unset field inherits from lower-precedence sources.
type ParagraphProperties struct {
	Alignment         Opt[TextAlignment]
	Spacing           Spacing
	Indentation       Indentation
	KeepNext          Opt[bool]
	KeepLines         Opt[bool]
	PageBreakBefore   Opt[bool]
	WidowControl      Opt[bool]
	ContextualSpacing Opt[bool]
	Bidi              Opt[bool]
	OutlineLevel      Opt[int] // 0-8
	Tabs              []TabStop
	Borders           Borders
	Shading           Opt[Shading]
	Numbering         NumberingRef
}

// Merge returns p with every field set in over taking precedence. Nested
// records merge recursively so setting one sub-field never erases the others.
func (p ParagraphProperties) Merge(over ParagraphProperties) ParagraphProperties {
	return ParagraphProperties{
		Alignment:         p.Alignment.Merge(over.Alignment),
		Spacing:           p.Spacing.Merge(over.Spacing),
		Indentation:       p.Indentation.Merge(over.Indentation),
		KeepNext:          p.KeepNext.Merge(over.KeepNext),
		KeepLines:         p.KeepLines.Merge(over.KeepLines),
		PageBreakBefore:   p.PageBreakBefore.Merge(over.PageBreakBefore),
		WidowControl:      p.WidowControl.Merge(over.WidowControl),
		ContextualSpacing: p.ContextualSpacing.Merge(over.ContextualSpacing),
		Bidi:              p.Bidi.Merge(over.Bidi),
		OutlineLevel:      p.OutlineLevel.Merge(over.OutlineLevel),
		Tabs:              MergeTabs(p.Tabs, over.Tabs),
		Borders:           p.Borders.Merge(over.Borders),
		Shading:           p.Shading.Merge(over.Shading),
		Numbering:         p.Numbering.Merge(over.Numbering),
	}
}

// RunProperties are character formatting properties.
type RunProperties struct {
	Fonts        Fonts
	Size         Opt[float64] // points
	Color        Opt[string]
	Highlight    Opt[string]
	Bold         Opt[bool]
	Italic       Opt[bool]
	Underline    Opt[string]
	Strike       Opt[bool]
	DoubleStrike Opt[bool]
	Caps         Opt[bool]
	SmallCaps    Opt[bool]
	Vanish       Opt[bool]
	VertAlign    Opt[VerticalAlign]
	CharSpacing  Opt[float64] // points
	Shading      Opt[Shading]
}

// Merge returns r with every field set in over taking precedence.
func (r RunProperties) Merge(over RunProperties) RunProperties {
	return RunProperties{
		Fonts:        r.Fonts.Merge(over.Fonts),
		Size:         r.Size.Merge(over.Size),
		Color:        r.Color.Merge(over.Color),
		Highlight:    r.Highlight.Merge(over.Highlight),
		Bold:         r.Bold.Merge(over.Bold),
		Italic:       r.Italic.Merge(over.Italic),
		Underline:    r.Underline.Merge(over.Underline),
		Strike:       r.Strike.Merge(over.Strike),
		DoubleStrike: r.DoubleStrike.Merge(over.DoubleStrike),
		Caps:         r.Caps.Merge(over.Caps),
		SmallCaps:    r.SmallCaps.Merge(over.SmallCaps),
		Vanish:       r.Vanish.Merge(over.Vanish),
		VertAlign:    r.VertAlign.Merge(over.VertAlign),
		CharSpacing:  r.CharSpacing.Merge(over.CharSpacing),
		Shading:      r.Shading.Merge(over.Shading),
	}
}

// IsUnderlined reports whether the run draws an underline.
func (r RunProperties) IsUnderlined() bool {
	u, ok := r.Underline.Get()
	return ok && u != "none"
}

// WidthUnit is the unit of a table or cell width.
type WidthUnit int

const (
	WidthAuto WidthUnit = iota
	WidthPoints
	WidthPercent
	WidthNil
)

// Width is a table or cell width.
type Width struct {
	Value float64 // points or percent
	Unit  WidthUnit
}

// TableProperties are table-level properties.
type TableProperties struct {
	Width     Opt[Width]
	Alignment Opt[TextAlignment]
	Indent    Opt[float64]
	Layout    Opt[string] // fixed, autofit
	Borders   Borders
	Shading   Opt[Shading]
}

// Merge returns t with every field set in over taking precedence.
func (t TableProperties) Merge(over TableProperties) TableProperties {
	return TableProperties{
		Width:     t.Width.Merge(over.Width),
		Alignment: t.Alignment.Merge(over.Alignment),
		Indent:    t.Indent.Merge(over.Indent),
		Layout:    t.Layout.Merge(over.Layout),
		Borders:   t.Borders.Merge(over.Borders),
		Shading:   t.Shading.Merge(over.Shading),
	}
}

// RowProperties are table row properties.
type RowProperties struct {
	Height     Opt[float64] // points
	HeightRule Opt[string]  // auto, exact, atLeast
	Header     Opt[bool]
	CantSplit  Opt[bool]
}

// VMerge is the vertical merge state of a cell.
type VMerge int

const (
	VMergeNone VMerge = iota
	VMergeRestart
	VMergeContinue
)

// CellAlign is the vertical alignment of cell content.
type CellAlign int

const (
	CellAlignTop CellAlign = iota
	CellAlignCenter
	CellAlignBottom
)

// ParseCellAlign maps a w:vAlign value.
func ParseCellAlign(s string) (CellAlign, bool) {
	switch s {
	case "top":
		return CellAlignTop, true
	case "center", "both":
		return CellAlignCenter, true
	case "bottom":
		return CellAlignBottom, true
	}
	return CellAlignTop, false
}

// CellProperties are table cell properties.
type CellProperties struct {
	Width    Opt[Width]
	GridSpan Opt[int]
	VMerge   Opt[VMerge]
	VAlign   Opt[CellAlign]
	Shading  Opt[Shading]
	Borders  Borders
	NoWrap   Opt[bool]
}
