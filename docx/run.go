package docx

import (
	"fmt"
	"strconv"

	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// ParsedRun is a run with only its direct formatting.
type ParsedRun struct {
	StyleID    string
	Properties model.RunProperties
	Contents   []model.RunContent
}

// ParseRun parses a <w:r> element. Malformed properties and contents are
// dropped one by one with a warning, so a damaged run still keeps whatever
// text it carries.
func ParseRun(n *xmlnode.Node, c *Collector) ParsedRun {
	var run ParsedRun
	if rPr := n.Child("rPr"); rPr != nil {
		run.StyleID = rPr.Child("rStyle").AttrOr("val", "")
		run.Properties = ParseRunProperties(rPr, c)
	}

	for _, child := range n.Elements() {
		switch child.Name() {
		case "t":
			if s := child.Text(); s != "" {
				run.Contents = appendText(run.Contents, s)
			}
		case "tab", "ptab":
			run.Contents = append(run.Contents, model.Tab())
		case "br":
			run.Contents = append(run.Contents, parseBreak(child, c))
		case "cr":
			run.Contents = append(run.Contents, model.Break(model.BreakLine))
		case "noBreakHyphen":
			run.Contents = appendText(run.Contents, "\u2011")
		case "softHyphen":
			run.Contents = appendText(run.Contents, "\u00ad")
		case "sym":
			if s, err := parseSymbol(child); err == nil {
				run.Contents = appendText(run.Contents, s)
			} else {
				c.Add(WarnRecoverable, child, "%v", err)
			}
		case "AlternateContent":
			// Word writes emoji and shapes with a text fallback.
			for _, t := range child.Child("Fallback").Children("t") {
				run.Contents = appendText(run.Contents, t.Text())
			}
		}
	}
	return run
}

// appendText merges adjacent text items.
func appendText(contents []model.RunContent, s string) []model.RunContent {
	if n := len(contents); n > 0 && contents[n-1].Kind == model.ContentText {
		contents[n-1].Text += s
		return contents
	}
	return append(contents, model.Text(s))
}

func parseBreak(n *xmlnode.Node, c *Collector) model.RunContent {
	switch t := n.AttrOr("type", "textWrapping"); t {
	case "page":
		return model.Break(model.BreakPage)
	case "column":
		return model.Break(model.BreakColumn)
	case "textWrapping":
		return model.Break(model.BreakLine)
	default:
		c.Add(WarnRecoverable, n, "unknown break type %q, using line break", t)
		return model.Break(model.BreakLine)
	}
}

// parseSymbol decodes <w:sym w:char="F0B7"/>. Symbol fonts map their glyphs
// into the private use area at U+F000; those are shifted back to the ASCII
// range so the character is at least meaningful without the font.
func parseSymbol(n *xmlnode.Node) (string, error) {
	s, ok := n.Attr("char")
	if !ok {
		return "", fmt.Errorf("symbol without char attribute")
	}
	code, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return "", fmt.Errorf("invalid symbol char %q", s)
	}
	if code >= 0xF020 && code <= 0xF0FF {
		code -= 0xF000
	}
	return string(rune(code)), nil
}

// ParseRunProperties parses a <w:rPr> element into a local record.
func ParseRunProperties(rPr *xmlnode.Node, c *Collector) model.RunProperties {
	var props model.RunProperties
	if rPr == nil {
		return props
	}

	if f := rPr.Child("rFonts"); f != nil {
		props.Fonts = model.Fonts{
			ASCII:    stringAttr(f, "ascii"),
			HAnsi:    stringAttr(f, "hAnsi"),
			EastAsia: stringAttr(f, "eastAsia"),
			CS:       stringAttr(f, "cs"),
		}
	}

	if sz := rPr.Child("sz"); sz != nil {
		if s, ok := sz.Attr("val"); ok {
			if v, err := parseHalfPoints(s); err == nil && v > 0 {
				props.Size = model.Some(v)
			} else {
				c.Add(WarnRecoverable, sz, "invalid font size %q", s)
			}
		}
	}

	if color := rPr.Child("color"); color != nil {
		props.Color = colorAttr(color, "val", c)
	}

	if hl := rPr.Child("highlight"); hl != nil {
		v := hl.AttrOr("val", "")
		if model.ValidHighlight(v) {
			props.Highlight = model.Some(v)
		} else {
			c.Add(WarnRecoverable, hl, "unknown highlight color %q", v)
		}
	}

	props.Bold = onOff(rPr.Child("b"), c)
	props.Italic = onOff(rPr.Child("i"), c)
	props.Strike = onOff(rPr.Child("strike"), c)
	props.DoubleStrike = onOff(rPr.Child("dstrike"), c)
	props.Caps = onOff(rPr.Child("caps"), c)
	props.SmallCaps = onOff(rPr.Child("smallCaps"), c)
	props.Vanish = onOff(rPr.Child("vanish"), c)

	if u := rPr.Child("u"); u != nil {
		v := u.AttrOr("val", "single")
		if model.ValidUnderline(v) {
			props.Underline = model.Some(v)
		} else {
			c.Add(WarnRecoverable, u, "unknown underline style %q", v)
		}
	}

	if va := rPr.Child("vertAlign"); va != nil {
		v := va.AttrOr("val", "")
		if a, ok := model.ParseVerticalAlign(v); ok {
			props.VertAlign = model.Some(a)
		} else {
			c.Add(WarnRecoverable, va, "unknown vertical alignment %q", v)
		}
	}

	if sp := rPr.Child("spacing"); sp != nil {
		props.CharSpacing = twipsAttr(sp, "val", c)
	}
	props.Shading = parseShading(rPr.Child("shd"), c)

	return props
}
