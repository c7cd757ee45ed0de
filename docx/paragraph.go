package docx

import (
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// ParsedParagraph is a paragraph with only its local (direct) formatting.
// No inheritance has been resolved.
type ParsedParagraph struct {
	StyleID    string
	Properties model.ParagraphProperties
	Runs       []ParsedRun
}

// ParseParagraph parses a <w:p> element. Runs nested in hyperlinks, smart
// tags, content controls, simple fields and tracked insertions are flattened
// into Runs in document order; tracked deletions are dropped.
func ParseParagraph(n *xmlnode.Node, c *Collector) ParsedParagraph {
	parsed := ParsedParagraph{}

	if pPr := n.Child("pPr"); pPr != nil {
		parsed.StyleID = pPr.Child("pStyle").AttrOr("val", "")
		parsed.Properties = ParseParagraphProperties(pPr, c)
	}

	parsed.Runs = collectRuns(n, c, parsed.Runs)
	return parsed
}

// collectRuns appends the runs found under n, descending into inline
// wrappers.
func collectRuns(n *xmlnode.Node, c *Collector, runs []ParsedRun) []ParsedRun {
	for _, child := range n.Elements() {
		switch child.Name() {
		case "r":
			runs = append(runs, ParseRun(child, c))
		case "hyperlink", "smartTag", "ins", "fldSimple", "customXml", "moveTo", "dir", "bdo":
			runs = collectRuns(child, c, runs)
		case "sdt":
			runs = collectRuns(child.Child("sdtContent"), c, runs)
		}
	}
	return runs
}

// ParseParagraphProperties parses a <w:pPr> element into a local record
// holding only the properties explicitly present.
func ParseParagraphProperties(pPr *xmlnode.Node, c *Collector) model.ParagraphProperties {
	var props model.ParagraphProperties
	if pPr == nil {
		return props
	}

	if jc := pPr.Child("jc"); jc != nil {
		v := jc.AttrOr("val", "")
		if a, ok := model.ParseAlignment(v); ok {
			props.Alignment = model.Some(a)
		} else {
			c.Add(WarnRecoverable, jc, "unknown justification %q", v)
		}
	}

	props.Spacing = parseSpacing(pPr.Child("spacing"), c)
	props.Indentation = parseIndentation(pPr.Child("ind"), c)

	props.KeepNext = onOff(pPr.Child("keepNext"), c)
	props.KeepLines = onOff(pPr.Child("keepLines"), c)
	props.PageBreakBefore = onOff(pPr.Child("pageBreakBefore"), c)
	props.WidowControl = onOff(pPr.Child("widowControl"), c)
	props.ContextualSpacing = onOff(pPr.Child("contextualSpacing"), c)
	props.Bidi = onOff(pPr.Child("bidi"), c)

	if ol := pPr.Child("outlineLvl"); ol != nil {
		if lvl, ok := intAttr(ol, "val", c).Get(); ok {
			switch {
			case lvl >= 0 && lvl <= 8:
				props.OutlineLevel = model.Some(lvl)
			case lvl == 9:
				// body text level
			default:
				c.Add(WarnRecoverable, ol, "outline level %d out of range", lvl)
			}
		}
	}

	props.Tabs = parseTabs(pPr.Child("tabs"), c)
	props.Borders = parseBorders(pPr.Child("pBdr"), c)
	props.Shading = parseShading(pPr.Child("shd"), c)
	props.Numbering = parseNumberingRef(pPr.Child("numPr"), c)

	return props
}

func parseSpacing(n *xmlnode.Node, c *Collector) model.Spacing {
	var sp model.Spacing
	if n == nil {
		return sp
	}
	sp.Before = twipsAttr(n, "before", c)
	sp.After = twipsAttr(n, "after", c)

	if s, ok := n.Attr("lineRule"); ok {
		if rule, ok := model.ParseLineRule(s); ok {
			sp.LineRule = model.Some(rule)
		} else {
			c.Add(WarnRecoverable, n, "unknown line rule %q", s)
		}
	}

	if s, ok := n.Attr("line"); ok {
		rule := sp.LineRule.Or(model.LineAuto)
		v, err := parseTwips(s)
		switch {
		case err != nil:
			c.Add(WarnRecoverable, n, "invalid line spacing %q", s)
		case rule == model.LineAuto:
			// 240ths of a line; parseTwips already divided by 20.
			sp.Line = model.Some(v / 12)
			sp.LineRule = model.Some(model.LineAuto)
		default:
			sp.Line = model.Some(v)
		}
	}
	return sp
}

func parseIndentation(n *xmlnode.Node, c *Collector) model.Indentation {
	var ind model.Indentation
	if n == nil {
		return ind
	}
	ind.Left = twipsAttr(n, "left", c)
	if !ind.Left.IsSet() {
		ind.Left = twipsAttr(n, "start", c)
	}
	ind.Right = twipsAttr(n, "right", c)
	if !ind.Right.IsSet() {
		ind.Right = twipsAttr(n, "end", c)
	}
	ind.FirstLine = twipsAttr(n, "firstLine", c)
	// A hanging indent takes precedence over firstLine.
	if h, ok := twipsAttr(n, "hanging", c).Get(); ok {
		ind.FirstLine = model.Some(-h)
	}
	return ind
}

func parseTabs(n *xmlnode.Node, c *Collector) []model.TabStop {
	var tabs []model.TabStop
	for _, tab := range n.Children("tab") {
		pos, ok := twipsAttr(tab, "pos", c).Get()
		if !ok {
			c.Add(WarnRecoverable, tab, "tab stop without position")
			continue
		}
		stop := model.TabStop{Position: pos}
		val := tab.AttrOr("val", "left")
		if val == "clear" {
			stop.Clear = true
		} else if a, ok := model.ParseTabAlignment(val); ok {
			stop.Align = a
		} else {
			c.Add(WarnRecoverable, tab, "unknown tab alignment %q", val)
			continue
		}
		if leader, ok := tab.Attr("leader"); ok && leader != "none" {
			stop.Leader = leader
		}
		tabs = append(tabs, stop)
	}
	return tabs
}

// parseBorders reads the edges of pBdr, tblBorders or tcBorders.
func parseBorders(n *xmlnode.Node, c *Collector) model.Borders {
	var b model.Borders
	if n == nil {
		return b
	}
	b.Top = parseBorder(n.Child("top"), c)
	b.Bottom = parseBorder(n.Child("bottom"), c)
	b.Left = parseBorder(n.Child("left"), c)
	if !b.Left.IsSet() {
		b.Left = parseBorder(n.Child("start"), c)
	}
	b.Right = parseBorder(n.Child("right"), c)
	if !b.Right.IsSet() {
		b.Right = parseBorder(n.Child("end"), c)
	}
	b.Between = parseBorder(n.Child("between"), c)
	b.InsideH = parseBorder(n.Child("insideH"), c)
	b.InsideV = parseBorder(n.Child("insideV"), c)
	return b
}

func parseBorder(n *xmlnode.Node, c *Collector) model.Opt[model.Border] {
	if n == nil {
		return model.Opt[model.Border]{}
	}
	style, ok := n.Attr("val")
	if !ok || style == "" {
		c.Add(WarnRecoverable, n, "border without style")
		return model.Opt[model.Border]{}
	}
	border := model.Border{Style: style}
	if s, ok := n.Attr("sz"); ok {
		if v, err := parseEighthPoints(s); err == nil {
			border.Size = v
		} else {
			c.Add(WarnRecoverable, n, "invalid border size %q", s)
		}
	}
	if s, ok := n.Attr("space"); ok {
		if v, err := parseUnitlessPoints(s); err == nil {
			border.Space = v
		} else {
			c.Add(WarnRecoverable, n, "invalid border spacing %q", s)
		}
	}
	border.Color = colorAttr(n, "color", c).Or("")
	return model.Some(border)
}

func parseShading(n *xmlnode.Node, c *Collector) model.Opt[model.Shading] {
	if n == nil {
		return model.Opt[model.Shading]{}
	}
	shd := model.Shading{
		Pattern: n.AttrOr("val", ""),
		Color:   colorAttr(n, "color", c).Or(""),
		Fill:    colorAttr(n, "fill", c).Or(""),
	}
	if shd == (model.Shading{}) {
		return model.Opt[model.Shading]{}
	}
	return model.Some(shd)
}

func parseNumberingRef(n *xmlnode.Node, c *Collector) model.NumberingRef {
	var ref model.NumberingRef
	if n == nil {
		return ref
	}
	if id := n.Child("numId"); id != nil {
		if v, ok := id.Attr("val"); ok && v != "" {
			ref.ListID = model.Some(v)
		} else {
			c.Add(WarnRecoverable, id, "numId without value")
		}
	}
	if ilvl := n.Child("ilvl"); ilvl != nil {
		ref.Level = intAttr(ilvl, "val", c)
	}
	return ref
}
