package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tsawler/wordml/model"
)

// HTMLRenderer writes an HTML document. Headings become h1-h6, consecutive
// numbered paragraphs become nested ol/ul lists carrying their computed
// labels, and tables keep their row and column spans.
type HTMLRenderer struct {
	// IncludeLabels writes each list label in a span.label before the item.
	IncludeLabels bool
	// ShowHidden includes runs marked as hidden text.
	ShowHidden bool
	// Fragment writes only the body content, without html/head/body.
	Fragment bool
	// InlineStyles writes paragraph and run formatting as style attributes.
	InlineStyles bool
}

// Render writes doc to w.
func (hr *HTMLRenderer) Render(w io.Writer, doc *model.Document) error {
	container := element(atom.Body)
	hr.appendBlocks(container, doc.Blocks)

	if hr.Fragment {
		for c := container.FirstChild; c != nil; {
			next := c.NextSibling
			container.RemoveChild(c)
			if err := html.Render(w, c); err != nil {
				return fmt.Errorf("rendering HTML: %w", err)
			}
			c = next
		}
		return nil
	}

	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	htmlEl := element(atom.Html)
	head := element(atom.Head)
	meta := element(atom.Meta)
	meta.Attr = []html.Attribute{{Key: "charset", Val: "utf-8"}}
	head.AppendChild(meta)
	if doc.Metadata.Title != "" {
		title := element(atom.Title)
		title.AppendChild(text(doc.Metadata.Title))
		head.AppendChild(title)
	}
	if doc.Metadata.Author != "" {
		author := element(atom.Meta)
		author.Attr = []html.Attribute{{Key: "name", Val: "author"}, {Key: "content", Val: doc.Metadata.Author}}
		head.AppendChild(author)
	}
	htmlEl.AppendChild(head)
	htmlEl.AppendChild(container)
	root.AppendChild(htmlEl)

	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}

func element(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// listFrame is an open list at one nesting level.
type listFrame struct {
	level int
	list  *html.Node
	item  *html.Node // last li, parent for deeper lists
}

// appendBlocks renders blocks into parent, grouping runs of numbered
// paragraphs into nested lists.
func (hr *HTMLRenderer) appendBlocks(parent *html.Node, blocks []model.Block) {
	var stack []listFrame

	for _, b := range blocks {
		p, isPara := b.(*model.Paragraph)
		if !isPara || p.Numbering == nil {
			stack = nil
			switch v := b.(type) {
			case *model.Paragraph:
				parent.AppendChild(hr.paragraph(v))
			case *model.Table:
				parent.AppendChild(hr.table(v))
			}
			continue
		}

		level := p.Numbering.Level
		for len(stack) > 0 && stack[len(stack)-1].level > level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 && stack[len(stack)-1].level == level &&
			stack[len(stack)-1].list.Data != listTag(p.Numbering).String() {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 || stack[len(stack)-1].level < level {
			list := element(listTag(p.Numbering))
			setAttr(list, "data-list", p.Numbering.ListID)
			if len(stack) == 0 {
				parent.AppendChild(list)
			} else {
				stack[len(stack)-1].item.AppendChild(list)
			}
			stack = append(stack, listFrame{level: level, list: list})
		}

		top := &stack[len(stack)-1]
		li := element(atom.Li)
		if hr.IncludeLabels && p.Numbering.Text != "" {
			label := element(atom.Span)
			setAttr(label, "class", "label")
			label.AppendChild(text(p.Numbering.Text))
			li.AppendChild(label)
			li.AppendChild(text(labelSeparator(p.Numbering)))
		}
		hr.appendRuns(li, p)
		if hr.InlineStyles {
			if style := paragraphStyle(p.Properties); style != "" {
				setAttr(li, "style", style)
			}
		}
		top.list.AppendChild(li)
		top.item = li
	}
}

func listTag(label *model.NumberingLabel) atom.Atom {
	if label.Format == model.NumFmtBullet {
		return atom.Ul
	}
	return atom.Ol
}

var headingAtoms = []atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func (hr *HTMLRenderer) paragraph(p *model.Paragraph) *html.Node {
	var n *html.Node
	if p.HeadingLevel > 0 {
		n = element(headingAtoms[min(p.HeadingLevel, len(headingAtoms))-1])
	} else {
		n = element(atom.P)
	}
	if p.StyleID != "" {
		setAttr(n, "class", p.StyleID)
	}
	if hr.InlineStyles {
		if style := paragraphStyle(p.Properties); style != "" {
			setAttr(n, "style", style)
		}
	}
	hr.appendRuns(n, p)
	return n
}

// appendRuns renders the runs of p into n.
func (hr *HTMLRenderer) appendRuns(n *html.Node, p *model.Paragraph) {
	for _, r := range p.Runs {
		if !visible(r, hr.ShowHidden) {
			continue
		}
		if node := hr.run(r); node != nil {
			n.AppendChild(node)
		}
	}
}

// run renders a run, wrapping its content in the inline elements its
// formatting calls for. Empty runs render nothing.
func (hr *HTMLRenderer) run(r *model.Run) *html.Node {
	nodes := hr.runNodes(r)
	if len(nodes) == 0 {
		return nil
	}
	props := r.Properties

	var attrs []html.Attribute
	if r.StyleID != "" {
		attrs = append(attrs, html.Attribute{Key: "class", Val: r.StyleID})
	}
	if hr.InlineStyles {
		if style := runStyle(props); style != "" {
			attrs = append(attrs, html.Attribute{Key: "style", Val: style})
		}
	}

	// Outermost first.
	var tags []atom.Atom
	if props.Bold.Or(false) {
		tags = append(tags, atom.Strong)
	}
	if props.Italic.Or(false) {
		tags = append(tags, atom.Em)
	}
	if props.IsUnderlined() {
		tags = append(tags, atom.U)
	}
	if props.Strike.Or(false) || props.DoubleStrike.Or(false) {
		tags = append(tags, atom.S)
	}
	switch props.VertAlign.Or(model.VertBaseline) {
	case model.VertSuperscript:
		tags = append(tags, atom.Sup)
	case model.VertSubscript:
		tags = append(tags, atom.Sub)
	}
	if len(attrs) > 0 || (len(tags) == 0 && len(nodes) > 1) {
		tags = append(tags, atom.Span)
	}

	if len(tags) == 0 {
		return nodes[0]
	}
	outer := element(tags[0])
	inner := outer
	for _, a := range tags[1:] {
		el := element(a)
		inner.AppendChild(el)
		inner = el
	}
	if len(attrs) > 0 {
		inner.Attr = attrs
	}
	for _, n := range nodes {
		inner.AppendChild(n)
	}
	return outer
}

// runNodes returns the text, tab and break nodes of a run.
func (hr *HTMLRenderer) runNodes(r *model.Run) []*html.Node {
	upper := !hr.InlineStyles && (r.Properties.Caps.Or(false) || r.Properties.SmallCaps.Or(false))

	var nodes []*html.Node
	for _, c := range r.Contents {
		switch c.Kind {
		case model.ContentText:
			s := c.Text
			if upper {
				s = cases.Upper(language.Und).String(s)
			}
			nodes = append(nodes, text(s))
		case model.ContentTab:
			nodes = append(nodes, text("\t"))
		case model.ContentBreak:
			br := element(atom.Br)
			if c.Break == model.BreakPage {
				setAttr(br, "class", "page-break")
			}
			nodes = append(nodes, br)
		}
	}
	return nodes
}

func (hr *HTMLRenderer) table(t *model.Table) *html.Node {
	table := element(atom.Table)
	if t.StyleID != "" {
		setAttr(table, "class", t.StyleID)
	}

	var thead, tbody *html.Node
	for _, row := range t.Rows {
		header := row.Properties.Header.Or(false)
		tr := element(atom.Tr)
		for _, cell := range row.Cells {
			if cell.Merged {
				continue
			}
			tag := atom.Td
			if header {
				tag = atom.Th
			}
			td := element(tag)
			if span := cell.ColSpan(); span > 1 {
				setAttr(td, "colspan", strconv.Itoa(span))
			}
			if cell.RowSpan > 1 {
				setAttr(td, "rowspan", strconv.Itoa(cell.RowSpan))
			}
			hr.appendBlocks(td, cell.Children)
			tr.AppendChild(td)
		}

		if header && tbody == nil {
			if thead == nil {
				thead = element(atom.Thead)
				table.AppendChild(thead)
			}
			thead.AppendChild(tr)
			continue
		}
		if tbody == nil {
			tbody = element(atom.Tbody)
			table.AppendChild(tbody)
		}
		tbody.AppendChild(tr)
	}
	return table
}

// paragraphStyle returns CSS for the explicitly resolved paragraph
// properties.
func paragraphStyle(p model.ParagraphProperties) string {
	var decls []string
	if a, ok := p.Alignment.Get(); ok {
		switch a {
		case model.AlignJustify, model.AlignDistribute:
			decls = append(decls, "text-align:justify")
		default:
			decls = append(decls, "text-align:"+a.String())
		}
	}
	if v, ok := p.Spacing.Before.Get(); ok {
		decls = append(decls, "margin-top:"+points(v))
	}
	if v, ok := p.Spacing.After.Get(); ok {
		decls = append(decls, "margin-bottom:"+points(v))
	}
	if v, ok := p.Indentation.Left.Get(); ok {
		decls = append(decls, "margin-left:"+points(v))
	}
	if v, ok := p.Indentation.Right.Get(); ok {
		decls = append(decls, "margin-right:"+points(v))
	}
	if v, ok := p.Indentation.FirstLine.Get(); ok {
		decls = append(decls, "text-indent:"+points(v))
	}
	if p.Bidi.Or(false) {
		decls = append(decls, "direction:rtl")
	}
	return strings.Join(decls, ";")
}

// runStyle returns CSS for the run properties that have no element form.
func runStyle(r model.RunProperties) string {
	var decls []string
	if f := r.Fonts.Primary(); f != "" {
		decls = append(decls, "font-family:'"+f+"'")
	}
	if v, ok := r.Size.Get(); ok {
		decls = append(decls, "font-size:"+points(v))
	}
	if c, ok := r.Color.Get(); ok && c != "auto" {
		decls = append(decls, "color:#"+c)
	}
	if h, ok := r.Highlight.Get(); ok && h != "none" {
		decls = append(decls, "background-color:"+strings.ToLower(h))
	}
	if r.Caps.Or(false) {
		decls = append(decls, "text-transform:uppercase")
	}
	if r.SmallCaps.Or(false) {
		decls = append(decls, "font-variant:small-caps")
	}
	if v, ok := r.CharSpacing.Get(); ok {
		decls = append(decls, "letter-spacing:"+points(v))
	}
	return strings.Join(decls, ";")
}

func points(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "pt"
}
