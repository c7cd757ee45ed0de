package docx

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// parseFinite parses a decimal number, rejecting NaN and infinities, which
// strconv accepts but no OOXML measure allows.
func parseFinite(s string) (float64, error) {
	val, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return val, nil
}

// parseTwips parses a length in twentieths of a point and returns points.
// Universal measures such as "0.5in" or "12pt" are accepted as well.
func parseTwips(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, ok, err := parseUniversalMeasure(s); ok {
		return v, err
	}
	val, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	return val / 20, nil
}

// parseHalfPoints parses a size in half-points to points.
// Word uses half-points for font sizes (e.g., "24" = 12pt).
func parseHalfPoints(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if v, ok, err := parseUniversalMeasure(s); ok {
		return v, err
	}
	val, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	if val < 0 {
		return 0, fmt.Errorf("negative size %q", s)
	}
	return val / 2, nil
}

// parseEighthPoints parses a border width in eighths of a point.
func parseEighthPoints(s string) (float64, error) {
	val, err := parseFinite(s)
	if err != nil {
		return 0, err
	}
	return val / 8, nil
}

var measureUnits = map[string]float64{
	"pt": 1,
	"pc": 12,
	"pi": 12,
	"in": 72,
	"cm": 72 / 2.54,
	"mm": 72 / 25.4,
}

// parseUniversalMeasure handles ST_UniversalMeasure values like "1.5cm".
// ok is false when s carries no unit suffix.
func parseUniversalMeasure(s string) (float64, bool, error) {
	if len(s) < 3 {
		return 0, false, nil
	}
	factor, ok := measureUnits[s[len(s)-2:]]
	if !ok {
		return 0, false, nil
	}
	val, err := parseFinite(s[:len(s)-2])
	if err != nil {
		return 0, true, err
	}
	return val * factor, true, nil
}

// twipsAttr reads a twips attribute as points. Invalid values are dropped
// with a warning.
func twipsAttr(n *xmlnode.Node, attr string, c *Collector) model.Opt[float64] {
	s, ok := n.Attr(attr)
	if !ok {
		return model.Opt[float64]{}
	}
	v, err := parseTwips(s)
	if err != nil {
		c.Add(WarnRecoverable, n, "invalid length %s=%q", attr, s)
		return model.Opt[float64]{}
	}
	return model.Some(v)
}

// intAttr reads an integer attribute. Invalid values are dropped with a
// warning.
func intAttr(n *xmlnode.Node, attr string, c *Collector) model.Opt[int] {
	s, ok := n.Attr(attr)
	if !ok {
		return model.Opt[int]{}
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		c.Add(WarnRecoverable, n, "invalid integer %s=%q", attr, s)
		return model.Opt[int]{}
	}
	return model.Some(v)
}

// stringAttr reads a non-empty attribute verbatim.
func stringAttr(n *xmlnode.Node, attr string) model.Opt[string] {
	if s, ok := n.Attr(attr); ok && s != "" {
		return model.Some(s)
	}
	return model.Opt[string]{}
}

// onOff reads an ST_OnOff toggle element such as <w:b/> or
// <w:b w:val="false"/>. A missing element is unset.
func onOff(n *xmlnode.Node, c *Collector) model.Opt[bool] {
	if n == nil {
		return model.Opt[bool]{}
	}
	s, ok := n.Attr("val")
	if !ok {
		return model.Some(true)
	}
	switch strings.TrimSpace(s) {
	case "", "1", "true", "on":
		return model.Some(true)
	case "0", "false", "off", "none":
		return model.Some(false)
	}
	c.Add(WarnRecoverable, n, "invalid on/off value %q", s)
	return model.Opt[bool]{}
}

// isHexColor reports whether s is a six digit hex color.
func isHexColor(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// colorAttr reads a color attribute, accepting hex values and "auto".
func colorAttr(n *xmlnode.Node, attr string, c *Collector) model.Opt[string] {
	s, ok := n.Attr(attr)
	if !ok || s == "" {
		return model.Opt[string]{}
	}
	if s == "auto" || isHexColor(s) {
		return model.Some(s)
	}
	c.Add(WarnRecoverable, n, "invalid color %s=%q", attr, s)
	return model.Opt[string]{}
}

// parseUnitlessPoints parses a value already expressed in points.
func parseUnitlessPoints(s string) (float64, error) {
	return parseFinite(s)
}
