package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/wordml/model"
)

const (
	// BulletGlyph is the label text of every bullet level.
	BulletGlyph = "•"

	// Label padding in points when a level declares no tab position.
	defaultTopLevelPadding = 18.0
	defaultNestedPadding   = 12.0
	minLabelPadding        = 3.0

	// Estimated glyph advances in points.
	wideGlyphWidth   = 6.0
	narrowGlyphWidth = 3.0
)

// listCounters holds the counters of one list.
type listCounters struct {
	values  [MaxLevels]int
	started [MaxLevels]bool
}

// CounterState is the numbering state of one conversion. Counters are
// scoped per list id. Create one per conversion; it is not safe for
// concurrent use.
type CounterState struct {
	lists map[string]*listCounters
}

// NewCounterState returns an empty counter state.
func NewCounterState() *CounterState {
	return &CounterState{lists: make(map[string]*listCounters)}
}

// Reset zeroes every counter of every list.
func (s *CounterState) Reset() {
	s.lists = make(map[string]*listCounters)
}

// Snapshot returns a copy of the counters of listID.
func (s *CounterState) Snapshot(listID string) [MaxLevels]int {
	if lc, ok := s.lists[listID]; ok {
		return lc.values
	}
	return [MaxLevels]int{}
}

// advance increments counters[level] and zeroes every deeper counter. The
// first increment of a fresh level jumps to start.
func (s *CounterState) advance(listID string, level, start int) [MaxLevels]int {
	lc, ok := s.lists[listID]
	if !ok {
		lc = &listCounters{}
		s.lists[listID] = lc
	}

	if lc.started[level] {
		lc.values[level]++
	} else {
		lc.values[level] = start
		lc.started[level] = true
	}

	for k := level + 1; k < MaxLevels; k++ {
		lc.values[k] = 0
		lc.started[k] = false
	}
	return lc.values
}

// NumberingEngine produces list labels in document order.
type NumberingEngine struct {
	defs  *Numbering
	state *CounterState
}

// NewNumberingEngine creates an engine over parsed definitions. A nil state
// gets a fresh one; a nil defs makes every label a fallback label.
func NewNumberingEngine(defs *Numbering, state *CounterState) *NumberingEngine {
	if state == nil {
		state = NewCounterState()
	}
	return &NumberingEngine{defs: defs, state: state}
}

// State returns the engine's counter state.
func (e *NumberingEngine) State() *CounterState {
	return e.state
}

// Level returns the resolved level definition for listID, if any.
func (e *NumberingEngine) Level(listID string, level int) (*NumberingLevel, bool) {
	return e.defs.Level(listID, clampLevel(level))
}

// NextLabel returns the label of the next paragraph of listID at level and
// advances the counters. Call it exactly once per numbered paragraph, in
// document order. An unresolvable list yields a fallback label built from
// the nesting depth alone and leaves the counters untouched.
func (e *NumberingEngine) NextLabel(listID string, level int) model.NumberingLabel {
	level = clampLevel(level)

	def, ok := e.defs.Level(listID, level)
	if !ok {
		text := FallbackLabel(level)
		return model.NumberingLabel{
			ListID:   listID,
			Level:    level,
			Text:     text,
			Format:   model.NumFmtDecimal,
			Padding:  labelPadding(nil, level, text),
			Fallback: true,
		}
	}

	counters := e.state.advance(listID, level, def.Start)

	var text string
	switch def.Format {
	case model.NumFmtBullet:
		text = BulletGlyph
	case model.NumFmtNone:
		text = ""
	default:
		text = renderTemplate(def.LabelTemplate, counters, level, def.Format)
	}

	return model.NumberingLabel{
		ListID:  listID,
		Level:   level,
		Text:    text,
		Format:  def.Format,
		Padding: labelPadding(def, level, text),
	}
}

// FallbackLabel returns the depth-only label used when a list cannot be
// resolved: "1." for level 0, "1.1." for level 1 and so on.
func FallbackLabel(level int) string {
	return strings.Repeat("1.", clampLevel(level)+1)
}

func clampLevel(level int) int {
	return min(max(level, 0), MaxLevels-1)
}

// renderTemplate substitutes %1..%9. Placeholder i refers to level i-1; the
// current level uses its own format and ancestors render as decimal.
// Placeholders deeper than the current level render empty.
func renderTemplate(tmpl string, counters [MaxLevels]int, level int, format model.NumberFormat) string {
	var sb strings.Builder
	for i := 0; i < len(tmpl); i++ {
		ch := tmpl[i]
		if ch != '%' || i+1 >= len(tmpl) || tmpl[i+1] < '1' || tmpl[i+1] > '9' {
			sb.WriteByte(ch)
			continue
		}
		ref := int(tmpl[i+1]-'1')
		i++
		switch {
		case ref == level:
			sb.WriteString(FormatNumber(counters[ref], format))
		case ref < level:
			sb.WriteString(strconv.Itoa(counters[ref]))
		}
	}
	return sb.String()
}

// FormatNumber renders n in the given numbering format.
func FormatNumber(n int, format model.NumberFormat) string {
	switch format {
	case model.NumFmtDecimalZero:
		if n >= 0 && n < 10 {
			return "0" + strconv.Itoa(n)
		}
		return strconv.Itoa(n)
	case model.NumFmtUpperRoman:
		return toUpperRoman(n)
	case model.NumFmtLowerRoman:
		return toLowerRoman(n)
	case model.NumFmtUpperLetter:
		return toUpperLetter(n)
	case model.NumFmtLowerLetter:
		return toLowerLetter(n)
	case model.NumFmtBullet:
		return BulletGlyph
	case model.NumFmtNone:
		return ""
	default:
		return strconv.Itoa(n)
	}
}

// toLowerLetter converts a number to a lowercase letter label: a..z, then
// aa..zz, aaa.. (the letter repeats once per pass through the alphabet).
func toLowerLetter(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	letter := string(rune('a' + (n-1)%26))
	return strings.Repeat(letter, (n-1)/26+1)
}

// toUpperLetter converts a number to an uppercase letter label.
func toUpperLetter(n int) string {
	return strings.ToUpper(toLowerLetter(n))
}

// toLowerRoman converts a number to lowercase Roman numerals.
func toLowerRoman(n int) string {
	return strings.ToLower(toUpperRoman(n))
}

// toUpperRoman converts a number to uppercase Roman numerals.
func toUpperRoman(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}

	romanNumerals := []struct {
		value  int
		symbol string
	}{
		{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
		{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
		{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
	}

	var sb strings.Builder
	for _, rn := range romanNumerals {
		for n >= rn.value {
			sb.WriteString(rn.symbol)
			n -= rn.value
		}
	}
	return sb.String()
}

// estimateLabelWidth approximates the rendered width of a label in points.
func estimateLabelWidth(text string) float64 {
	var w float64
	for _, r := range text {
		switch r {
		case '.', ',', ':', ';', '(', ')', '[', ']', '\'', '|', '!', ' ':
			w += narrowGlyphWidth
		default:
			w += wideGlyphWidth
		}
	}
	return w
}

// labelPadding returns the gap between the label and the paragraph text.
func labelPadding(def *NumberingLevel, level int, text string) float64 {
	if def != nil {
		tab, hasTab := def.TabPosition.Get()
		left, hasLeft := def.Indent.Left.Get()
		if hasTab && hasLeft {
			start := left + def.Indent.FirstLine.Or(0)
			return max(tab-start-estimateLabelWidth(text), minLabelPadding)
		}
	}
	if level == 0 {
		return defaultTopLevelPadding
	}
	return defaultNestedPadding
}
