package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/wordml/model"
)

// MergedStyle contains the effective properties of a style: its basedOn chain
// merged root to leaf, optionally on top of the document defaults.
type MergedStyle struct {
	// Identity
	ID   string
	Name string
	Kind StyleKind

	ParagraphProperties model.ParagraphProperties
	RunProperties       model.RunProperties
	TableProperties     model.TableProperties

	// Chain lists the style ids that were merged, root first.
	Chain []string

	// HeadingLevel is 1-9 for heading styles, 0 otherwise.
	HeadingLevel int
}

// StyleResolver resolves styles with inheritance support. Results are
// memoized per style id for the resolver's lifetime.
type StyleResolver struct {
	styles   *Styles
	chains   map[string]*MergedStyle // chain only, no defaults
	resolved map[string]*MergedStyle // chain over defaults
	c        *Collector
}

// NewStyleResolver creates a new style resolver from parsed styles. A nil
// styles value resolves every id as unknown.
func NewStyleResolver(styles *Styles, c *Collector) *StyleResolver {
	if styles == nil {
		styles = ParseStyles(nil, nil)
	}
	return &StyleResolver{
		styles:   styles,
		chains:   make(map[string]*MergedStyle),
		resolved: make(map[string]*MergedStyle),
		c:        c,
	}
}

// Resolve returns the effective properties for styleID: document defaults
// beneath the style's basedOn chain. ok is false for an unknown id; callers
// then fall back to Defaults.
func (sr *StyleResolver) Resolve(styleID string) (MergedStyle, bool) {
	if cached, ok := sr.resolved[styleID]; ok {
		return *cached, true
	}

	chain, ok := sr.ChainProperties(styleID)
	if !ok {
		return MergedStyle{}, false
	}

	resolved := chain
	resolved.ParagraphProperties = sr.styles.DefaultParagraph.Merge(chain.ParagraphProperties)
	resolved.RunProperties = sr.styles.DefaultRun.Merge(chain.RunProperties)

	sr.resolved[styleID] = &resolved
	return resolved, true
}

// Defaults returns the document-wide default properties alone.
func (sr *StyleResolver) Defaults() MergedStyle {
	return MergedStyle{
		ParagraphProperties: sr.styles.DefaultParagraph,
		RunProperties:       sr.styles.DefaultRun,
	}
}

// ChainProperties returns the merge of the basedOn chain of styleID without
// the document defaults. It is the layer used when several styles stack,
// such as a table style beneath a paragraph style.
func (sr *StyleResolver) ChainProperties(styleID string) (MergedStyle, bool) {
	if styleID == "" {
		return MergedStyle{}, false
	}
	if cached, ok := sr.chains[styleID]; ok {
		return *cached, true
	}

	styleDef, ok := sr.styles.Get(styleID)
	if !ok {
		return MergedStyle{}, false
	}

	merged := MergedStyle{
		ID:    styleID,
		Name:  styleDef.Name,
		Kind:  styleDef.Kind,
		Chain: sr.buildInheritanceChain(styleID),
	}

	// Apply properties from base to derived
	for _, sid := range merged.Chain {
		def, _ := sr.styles.Get(sid)
		merged.ParagraphProperties = merged.ParagraphProperties.Merge(def.ParagraphProperties)
		merged.RunProperties = merged.RunProperties.Merge(def.RunProperties)
		merged.TableProperties = merged.TableProperties.Merge(def.TableProperties)
	}

	merged.HeadingLevel = sr.detectHeading(merged)

	sr.chains[styleID] = &merged
	return merged, true
}

// ClearCache drops all memoized results.
func (sr *StyleResolver) ClearCache() {
	sr.chains = make(map[string]*MergedStyle)
	sr.resolved = make(map[string]*MergedStyle)
}

// DefaultStyleID returns the default style id of the given kind.
func (sr *StyleResolver) DefaultStyleID(kind StyleKind) string {
	return sr.styles.DefaultStyleID(kind)
}

// Has reports whether styleID is defined.
func (sr *StyleResolver) Has(styleID string) bool {
	_, ok := sr.styles.Get(styleID)
	return ok
}

// buildInheritanceChain returns style IDs from base to derived. The walk
// stops at the first id already visited, so a basedOn cycle yields the ids
// up to the repeat.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" {
		if visited[current] {
			sr.c.Add(WarnStructuralFallback, nil,
				"style %q: basedOn cycle at %q, chain truncated", styleID, current)
			break
		}
		def, ok := sr.styles.Get(current)
		if !ok {
			sr.c.Add(WarnUnresolvedReference, nil,
				"style %q: basedOn style %q not found", styleID, current)
			break
		}
		visited[current] = true
		chain = append(chain, current)
		current = def.BasedOn
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// detectHeading determines if a merged style represents a heading.
func (sr *StyleResolver) detectHeading(merged MergedStyle) int {
	if merged.Kind != StyleParagraph {
		return 0
	}

	// Check for built-in heading style IDs or names, leaf first
	for i := len(merged.Chain) - 1; i >= 0; i-- {
		id := merged.Chain[i]
		if level := detectBuiltInHeading(id); level > 0 {
			return level
		}
		if def, ok := sr.styles.Get(id); ok {
			if level := detectBuiltInHeading(def.Name); level > 0 {
				return level
			}
		}
	}

	// Check outline level
	if level, ok := merged.ParagraphProperties.OutlineLevel.Get(); ok {
		return level + 1 // OutlineLvl is 0-based
	}

	return 0
}

// detectBuiltInHeading checks for Word's built-in heading style IDs and
// names ("Heading1", "heading 1", "Title").
func detectBuiltInHeading(styleID string) int {
	id := strings.ToLower(strings.ReplaceAll(styleID, " ", ""))

	switch id {
	case "title":
		return 1
	case "subtitle":
		return 2
	}

	if rest, ok := strings.CutPrefix(id, "heading"); ok && len(rest) == 1 {
		if level, err := strconv.Atoi(rest); err == nil && level >= 1 && level <= 9 {
			return level
		}
	}
	return 0
}
