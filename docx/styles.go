package docx

import (
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// StyleKind is the w:type of a style definition.
type StyleKind int

const (
	StyleParagraph StyleKind = iota
	StyleCharacter
	StyleTable
	StyleNumbering
)

func (k StyleKind) String() string {
	switch k {
	case StyleCharacter:
		return "character"
	case StyleTable:
		return "table"
	case StyleNumbering:
		return "numbering"
	default:
		return "paragraph"
	}
}

func parseStyleKind(s string) (StyleKind, bool) {
	switch s {
	case "paragraph", "":
		return StyleParagraph, true
	case "character":
		return StyleCharacter, true
	case "table":
		return StyleTable, true
	case "numbering":
		return StyleNumbering, true
	}
	return StyleParagraph, false
}

// StyleDefinition is one <w:style> with its local properties.
type StyleDefinition struct {
	ID                  string
	Name                string
	Kind                StyleKind
	BasedOn             string
	IsDefault           bool
	ParagraphProperties model.ParagraphProperties
	RunProperties       model.RunProperties
	TableProperties     model.TableProperties
}

// Styles is the parsed content of word/styles.xml. It is immutable once
// parsed.
type Styles struct {
	Definitions      map[string]*StyleDefinition
	Order            []string // style ids in document order
	DefaultParagraph model.ParagraphProperties
	DefaultRun       model.RunProperties
	defaults         map[StyleKind]string
}

// ParseStyles parses a <w:styles> root. A nil root yields empty styles.
func ParseStyles(root *xmlnode.Node, c *Collector) *Styles {
	s := &Styles{
		Definitions: make(map[string]*StyleDefinition),
		defaults:    make(map[StyleKind]string),
	}
	if root == nil {
		return s
	}

	if dd := root.Child("docDefaults"); dd != nil {
		s.DefaultParagraph = ParseParagraphProperties(dd.Child("pPrDefault").Child("pPr"), c)
		s.DefaultRun = ParseRunProperties(dd.Child("rPrDefault").Child("rPr"), c)
	}

	for _, n := range root.Children("style") {
		def, ok := parseStyleDefinition(n, c)
		if !ok {
			continue
		}
		if _, dup := s.Definitions[def.ID]; dup {
			c.Add(WarnRecoverable, n, "duplicate style id %q ignored", def.ID)
			continue
		}
		s.Definitions[def.ID] = def
		s.Order = append(s.Order, def.ID)
		if def.IsDefault {
			if _, seen := s.defaults[def.Kind]; !seen {
				s.defaults[def.Kind] = def.ID
			}
		}
	}
	return s
}

func parseStyleDefinition(n *xmlnode.Node, c *Collector) (*StyleDefinition, bool) {
	id, ok := n.Attr("styleId")
	if !ok || id == "" {
		c.Add(WarnRecoverable, n, "style without styleId skipped")
		return nil, false
	}

	def := &StyleDefinition{
		ID:      id,
		Name:    n.Child("name").AttrOr("val", ""),
		BasedOn: n.Child("basedOn").AttrOr("val", ""),
	}

	typ := n.AttrOr("type", "")
	if kind, ok := parseStyleKind(typ); ok {
		def.Kind = kind
	} else {
		c.Add(WarnRecoverable, n, "style %q has unknown type %q, treating as paragraph", id, typ)
	}

	if v, ok := onOffAttr(n, "default"); ok {
		def.IsDefault = v
	}

	def.ParagraphProperties = ParseParagraphProperties(n.Child("pPr"), c)
	def.RunProperties = ParseRunProperties(n.Child("rPr"), c)
	if tblPr := n.Child("tblPr"); tblPr != nil {
		def.TableProperties = parseTableProperties(tblPr, c)
	}
	return def, true
}

// onOffAttr reads an ST_OnOff attribute such as w:default="1".
func onOffAttr(n *xmlnode.Node, attr string) (bool, bool) {
	s, ok := n.Attr(attr)
	if !ok {
		return false, false
	}
	switch s {
	case "1", "true", "on":
		return true, true
	case "0", "false", "off":
		return false, true
	}
	return false, false
}

// Get returns the definition for id.
func (s *Styles) Get(id string) (*StyleDefinition, bool) {
	if s == nil {
		return nil, false
	}
	def, ok := s.Definitions[id]
	return def, ok
}

// DefaultStyleID returns the id of the default style of the given kind, or
// "" when none is marked default.
func (s *Styles) DefaultStyleID(kind StyleKind) string {
	if s == nil {
		return ""
	}
	return s.defaults[kind]
}
