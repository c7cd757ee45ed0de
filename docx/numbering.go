package docx

import (
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// MaxLevels is the number of list levels OOXML supports (0-8).
const MaxLevels = 9

// NumberingLevel is one <w:lvl> of an abstract numbering definition.
type NumberingLevel struct {
	Level         int
	Start         int
	Format        model.NumberFormat
	LabelTemplate string // e.g. "%1.%2."
	Justification model.TextAlignment
	Indent        model.Indentation
	TabPosition   model.Opt[float64] // points
	Suffix        string             // tab, space or nothing
	Fonts         model.Fonts
	RunProperties model.RunProperties
}

// NumberingAbstractDefinition is a <w:abstractNum>.
type NumberingAbstractDefinition struct {
	ID     string
	Levels [MaxLevels]*NumberingLevel
	// StyleLink names the numbering style this definition implements;
	// NumStyleLink names a numbering style whose definition should be used
	// instead of this one.
	StyleLink    string
	NumStyleLink string
}

// NumberingInstance is a <w:num>, a concrete list pointing at an abstract
// definition, optionally overriding start values or whole levels.
type NumberingInstance struct {
	ListID         string
	AbstractID     string
	StartOverrides map[int]int
	LevelOverrides map[int]*NumberingLevel
}

// Numbering is the parsed content of word/numbering.xml. It is immutable
// once parsed.
type Numbering struct {
	Abstracts map[string]*NumberingAbstractDefinition
	Instances map[string]*NumberingInstance
}

// ParseNumbering parses a <w:numbering> root. A nil root yields empty
// definitions.
func ParseNumbering(root *xmlnode.Node, c *Collector) *Numbering {
	num := &Numbering{
		Abstracts: make(map[string]*NumberingAbstractDefinition),
		Instances: make(map[string]*NumberingInstance),
	}
	if root == nil {
		return num
	}

	for _, n := range root.Children("abstractNum") {
		id, ok := n.Attr("abstractNumId")
		if !ok || id == "" {
			c.Add(WarnRecoverable, n, "abstractNum without id skipped")
			continue
		}
		def := &NumberingAbstractDefinition{
			ID:           id,
			StyleLink:    n.Child("styleLink").AttrOr("val", ""),
			NumStyleLink: n.Child("numStyleLink").AttrOr("val", ""),
		}
		for _, lvl := range n.Children("lvl") {
			if level, ok := parseLevel(lvl, c); ok {
				def.Levels[level.Level] = level
			}
		}
		num.Abstracts[id] = def
	}

	for _, n := range root.Children("num") {
		id, ok := n.Attr("numId")
		if !ok || id == "" {
			c.Add(WarnRecoverable, n, "num without numId skipped")
			continue
		}
		inst := &NumberingInstance{
			ListID:     id,
			AbstractID: n.Child("abstractNumId").AttrOr("val", ""),
		}
		if inst.AbstractID == "" {
			c.Add(WarnRecoverable, n, "num %q has no abstractNumId", id)
		}
		for _, ov := range n.Children("lvlOverride") {
			lvl, ok := intAttr(ov, "ilvl", c).Get()
			if !ok || lvl < 0 || lvl >= MaxLevels {
				c.Add(WarnRecoverable, ov, "level override without valid ilvl")
				continue
			}
			if so := ov.Child("startOverride"); so != nil {
				if start, ok := intAttr(so, "val", c).Get(); ok {
					if inst.StartOverrides == nil {
						inst.StartOverrides = make(map[int]int)
					}
					inst.StartOverrides[lvl] = start
				}
			}
			if lvlNode := ov.Child("lvl"); lvlNode != nil {
				if level, ok := parseLevel(lvlNode, c); ok {
					level.Level = lvl
					if inst.LevelOverrides == nil {
						inst.LevelOverrides = make(map[int]*NumberingLevel)
					}
					inst.LevelOverrides[lvl] = level
				}
			}
		}
		num.Instances[id] = inst
	}

	return num
}

// parseLevel parses a <w:lvl>. Unknown formats fall back to decimal with a
// warning.
func parseLevel(n *xmlnode.Node, c *Collector) (*NumberingLevel, bool) {
	idx, ok := intAttr(n, "ilvl", c).Get()
	if !ok || idx < 0 || idx >= MaxLevels {
		c.Add(WarnRecoverable, n, "numbering level with invalid ilvl skipped")
		return nil, false
	}

	level := &NumberingLevel{
		Level:  idx,
		Start:  1,
		Suffix: "tab",
	}

	if start := n.Child("start"); start != nil {
		if v, ok := intAttr(start, "val", c).Get(); ok && v >= 0 {
			level.Start = v
		}
	}

	if f := n.Child("numFmt"); f != nil {
		v := f.AttrOr("val", "")
		if format, ok := model.ParseNumberFormat(v); ok {
			level.Format = format
		} else {
			c.Add(WarnRecoverable, f, "unknown number format %q, using decimal", v)
		}
	}

	if t := n.Child("lvlText"); t != nil {
		level.LabelTemplate = t.AttrOr("val", "")
	} else if level.Format != model.NumFmtBullet {
		level.LabelTemplate = "%" + string(rune('1'+idx)) + "."
	}

	if jc := n.Child("lvlJc"); jc != nil {
		v := jc.AttrOr("val", "")
		if a, ok := model.ParseAlignment(v); ok {
			level.Justification = a
		} else {
			c.Add(WarnRecoverable, jc, "unknown level justification %q", v)
		}
	}

	if sfx := n.Child("suff"); sfx != nil {
		switch v := sfx.AttrOr("val", ""); v {
		case "tab", "space", "nothing":
			level.Suffix = v
		default:
			c.Add(WarnRecoverable, sfx, "unknown level suffix %q", v)
		}
	}

	if pPr := n.Child("pPr"); pPr != nil {
		props := ParseParagraphProperties(pPr, c)
		level.Indent = props.Indentation
		for _, tab := range props.Tabs {
			if !tab.Clear {
				level.TabPosition = model.Some(tab.Position)
				break
			}
		}
	}

	if rPr := n.Child("rPr"); rPr != nil {
		level.RunProperties = ParseRunProperties(rPr, c)
		level.Fonts = level.RunProperties.Fonts
	}

	return level, true
}

// Instance returns the numbering instance for listID.
func (n *Numbering) Instance(listID string) (*NumberingInstance, bool) {
	if n == nil {
		return nil, false
	}
	inst, ok := n.Instances[listID]
	return inst, ok
}

// Abstract returns the abstract definition an instance points to, following
// a numStyleLink to the definition that implements the linked style.
func (n *Numbering) Abstract(inst *NumberingInstance) (*NumberingAbstractDefinition, bool) {
	if n == nil || inst == nil {
		return nil, false
	}
	def, ok := n.Abstracts[inst.AbstractID]
	if !ok {
		return nil, false
	}
	if def.NumStyleLink == "" {
		return def, true
	}
	var linked *NumberingAbstractDefinition
	for _, other := range n.Abstracts {
		if other == def || other.StyleLink != def.NumStyleLink {
			continue
		}
		if linked == nil || other.ID < linked.ID {
			linked = other
		}
	}
	if linked != nil {
		return linked, true
	}
	return def, true
}

// Level resolves listID → abstract definition → level, applying instance
// overrides. ok is false when any step is missing.
func (n *Numbering) Level(listID string, level int) (*NumberingLevel, bool) {
	if level < 0 || level >= MaxLevels {
		return nil, false
	}
	inst, ok := n.Instance(listID)
	if !ok {
		return nil, false
	}
	if lvl, ok := inst.LevelOverrides[level]; ok {
		return lvl, true
	}
	def, ok := n.Abstract(inst)
	if !ok {
		return nil, false
	}
	lvl := def.Levels[level]
	if lvl == nil {
		return nil, false
	}
	if start, ok := inst.StartOverrides[level]; ok {
		overridden := *lvl
		overridden.Start = start
		return &overridden, true
	}
	return lvl, true
}
