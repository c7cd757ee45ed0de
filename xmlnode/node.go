// Package xmlnode provides a uniform, read-only view over a parsed XML
// element tree.
//
// Word-processing parts mix namespace prefixes freely ("w:val", "val",
// "w14:paraId") and optional children appear zero, one or many times. Node
// hides both quirks behind four accessors: first child by name, all children
// by name, attribute by name and text content. Every accessor is safe to call
// on a nil *Node and reports absence instead of failing, so parsers can chain
// lookups without guarding each step:
//
//	size, ok := rPr.Child("sz").Attr("val")
package xmlnode

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Node is a read-only view of one XML element.
type Node struct {
	el *etree.Element
}

// Parse parses an XML document and returns its root element.
func Parse(data []byte) (*Node, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("parsing XML: document has no root element")
	}
	return &Node{el: root}, nil
}

// MustParse is like Parse but panics on error. It is intended for tests and
// fixtures.
func MustParse(s string) *Node {
	n, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

// Wrap returns a Node for an existing etree element.
func Wrap(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

// Name returns the local name of the element, without any namespace prefix.
func (n *Node) Name() string {
	if n == nil || n.el == nil {
		return ""
	}
	return n.el.Tag
}

// Prefix returns the namespace prefix of the element ("w" for <w:p>).
func (n *Node) Prefix() string {
	if n == nil || n.el == nil {
		return ""
	}
	return n.el.Space
}

// Child returns the first child element with the given local name, or nil.
func (n *Node) Child(name string) *Node {
	if n == nil || n.el == nil {
		return nil
	}
	for _, c := range n.el.ChildElements() {
		if c.Tag == localName(name) {
			return &Node{el: c}
		}
	}
	return nil
}

// HasChild reports whether a child element with the given local name exists.
func (n *Node) HasChild(name string) bool {
	return n.Child(name) != nil
}

// Children returns all child elements with the given local name, in document
// order. It returns nil when there are none.
func (n *Node) Children(name string) []*Node {
	if n == nil || n.el == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.el.ChildElements() {
		if c.Tag == localName(name) {
			out = append(out, &Node{el: c})
		}
	}
	return out
}

// Elements returns every child element in document order.
func (n *Node) Elements() []*Node {
	if n == nil || n.el == nil {
		return nil
	}
	children := n.el.ChildElements()
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		out = append(out, &Node{el: c})
	}
	return out
}

// Attr returns the value of the attribute with the given local name. A
// prefixed name ("w:val") and a bare name ("val") both match either form in
// the document.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.el == nil {
		return "", false
	}
	key := localName(name)
	for _, a := range n.el.Attr {
		if a.Key == key && a.Space != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when the attribute is absent.
func (n *Node) AttrOr(name, def string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return def
}

// Text returns the concatenated character data directly inside the element.
// Whitespace is preserved.
func (n *Node) Text() string {
	if n == nil || n.el == nil {
		return ""
	}
	var sb strings.Builder
	for _, tok := range n.el.Child {
		if cd, ok := tok.(*etree.CharData); ok {
			sb.WriteString(cd.Data)
		}
	}
	return sb.String()
}

// Path returns a slash separated path of local names from the root to this
// element, for diagnostics.
func (n *Node) Path() string {
	if n == nil || n.el == nil {
		return ""
	}
	var parts []string
	for el := n.el; el != nil; el = el.Parent() {
		if el.Tag == "" {
			break
		}
		parts = append(parts, el.Tag)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func localName(name string) string {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[i+1:]
	}
	return name
}
