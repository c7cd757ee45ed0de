// Package render writes resolved documents as plain text or HTML. Renderers
// only read the document model; all formatting has already been resolved.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/tsawler/wordml/model"
)

// Renderer writes a document to w.
type Renderer interface {
	Render(w io.Writer, doc *model.Document) error
}

// Format is an output format.
type Format int

const (
	// FormatText is plain UTF-8 text.
	FormatText Format = iota
	// FormatHTML is an HTML document.
	FormatHTML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatHTML:
		return "html"
	default:
		return "text"
	}
}

// Extension returns the file extension for the format.
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return ".html"
	default:
		return ".txt"
	}
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return FormatText, fmt.Errorf("unknown output format %q", s)
}

// New returns a renderer with default options for f.
func New(f Format) Renderer {
	switch f {
	case FormatHTML:
		return &HTMLRenderer{IncludeLabels: true}
	default:
		return &TextRenderer{IncludeLabels: true}
	}
}

// visible reports whether a run should be rendered.
func visible(r *model.Run, showHidden bool) bool {
	return showHidden || !r.Properties.Vanish.Or(false)
}

// labelSeparator returns the text between a list label and the paragraph.
func labelSeparator(label *model.NumberingLabel) string {
	if label.Text == "" {
		return ""
	}
	return " "
}
