package wordml

import (
	"bytes"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/tsawler/wordml/docx"
	"github.com/tsawler/wordml/format"
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/render"
)

// Converter provides a fluent interface for converting .docx packages.
// Each configuration method returns a new Converter instance, making it
// safe to share a partially configured Converter and chain from it.
type Converter struct {
	// Source: a file name or in-memory bytes
	filename string
	data     []byte

	reader *docx.Reader

	// Lifecycle
	ownsReader   bool // true if we opened the reader and should close it
	readerOpened bool

	options ConvertOptions
}

// clone creates a shallow copy of the Converter with a copy of options.
func (c *Converter) clone() *Converter {
	return &Converter{
		filename:     c.filename,
		data:         c.data,
		reader:       c.reader,
		ownsReader:   c.ownsReader,
		readerOpened: c.readerOpened,
		options:      c.options.clone(),
	}
}

// ensureReader opens the reader if not already open.
func (c *Converter) ensureReader() error {
	if c.readerOpened {
		return nil
	}

	opts := []docx.Option{docx.WithLogger(c.options.logger)}
	var (
		r   *docx.Reader
		err error
	)
	switch {
	case c.data != nil:
		r, err = docx.OpenBytes(c.data, opts...)
	case c.filename != "":
		if f := format.Detect(c.filename); f != format.Unknown && !f.IsWordprocessing() {
			return fmt.Errorf("unsupported file format: %s", f)
		}
		r, err = docx.Open(c.filename, opts...)
	default:
		return fmt.Errorf("no filename specified")
	}
	if err != nil {
		return fmt.Errorf("failed to open DOCX: %w", err)
	}

	c.reader = r
	c.ownsReader = true
	c.readerOpened = true
	return nil
}

// Close releases resources associated with the Converter.
// It is safe to call Close multiple times.
func (c *Converter) Close() error {
	if c.ownsReader && c.reader != nil {
		err := c.reader.Close()
		c.reader = nil
		c.ownsReader = false
		c.readerOpened = false
		return err
	}
	return nil
}

// ============================================================================
// Configuration Methods (return new Converter instance)
// ============================================================================

// ShowHidden includes runs marked as hidden text in rendered output.
//
// Example:
//
//	text, _, err := wordml.Open("draft.docx").ShowHidden().Text()
func (c *Converter) ShowHidden() *Converter {
	n := c.clone()
	n.options.showHidden = true
	return n
}

// WithoutLabels omits list labels from rendered output. The labels are
// still computed and available on the document model.
func (c *Converter) WithoutLabels() *Converter {
	n := c.clone()
	n.options.noLabels = true
	return n
}

// Fragment makes HTML() return only the body content.
//
// Example:
//
//	html, _, err := wordml.Open("report.docx").Fragment().HTML()
func (c *Converter) Fragment() *Converter {
	n := c.clone()
	n.options.fragment = true
	return n
}

// InlineStyles makes HTML() write resolved formatting as style attributes.
func (c *Converter) InlineStyles() *Converter {
	n := c.clone()
	n.options.inlineStyles = true
	return n
}

// WithLogger sets the logger that receives conversion warnings.
func (c *Converter) WithLogger(logger *zap.Logger) *Converter {
	n := c.clone()
	if logger != nil {
		n.options.logger = logger
	}
	return n
}

// ============================================================================
// Terminal Methods
// ============================================================================

// Document returns the resolved document model.
//
// Example:
//
//	doc, warnings, err := wordml.Open("report.docx").Document()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, p := range doc.Paragraphs() {
//	    if p.Numbering != nil {
//	        fmt.Println(p.Numbering.Text, p.GetText())
//	    }
//	}
func (c *Converter) Document() (*model.Document, []Warning, error) {
	if err := c.ensureReader(); err != nil {
		return nil, nil, err
	}
	defer c.Close()

	return c.reader.Convert()
}

// Text returns the document as plain text with list labels.
//
// Example:
//
//	text, warnings, err := wordml.Open("report.docx").Text()
func (c *Converter) Text() (string, []Warning, error) {
	return c.renderString(render.FormatText)
}

// HTML returns the document as HTML.
//
// Example:
//
//	html, warnings, err := wordml.Open("report.docx").HTML()
func (c *Converter) HTML() (string, []Warning, error) {
	return c.renderString(render.FormatHTML)
}

// Render writes the document to w in format f.
func (c *Converter) Render(w io.Writer, f render.Format) ([]Warning, error) {
	doc, warnings, err := c.Document()
	if err != nil {
		return warnings, err
	}
	if err := c.renderer(f).Render(w, doc); err != nil {
		return warnings, fmt.Errorf("failed to render %s: %w", f, err)
	}
	return warnings, nil
}

func (c *Converter) renderString(f render.Format) (string, []Warning, error) {
	var buf bytes.Buffer
	warnings, err := c.Render(&buf, f)
	if err != nil {
		return "", warnings, err
	}
	return buf.String(), warnings, nil
}

func (c *Converter) renderer(f render.Format) render.Renderer {
	o := c.options
	if f == render.FormatHTML {
		return &render.HTMLRenderer{
			IncludeLabels: !o.noLabels,
			ShowHidden:    o.showHidden,
			Fragment:      o.fragment,
			InlineStyles:  o.inlineStyles,
		}
	}
	return &render.TextRenderer{IncludeLabels: !o.noLabels, ShowHidden: o.showHidden}
}

// Metadata returns the package metadata without converting the body.
// The reader remains open; call Close when done.
//
// Example:
//
//	conv := wordml.Open("report.docx")
//	defer conv.Close()
//	meta, err := conv.Metadata()
func (c *Converter) Metadata() (model.Metadata, error) {
	if err := c.ensureReader(); err != nil {
		return model.Metadata{}, err
	}
	return c.reader.Metadata(), nil
}

// Format returns the detected package format. The reader remains open.
func (c *Converter) Format() (format.Format, error) {
	if err := c.ensureReader(); err != nil {
		return format.Unknown, err
	}
	return c.reader.Format(), nil
}

// Parts lists the part names in the package. The reader remains open.
func (c *Converter) Parts() ([]string, error) {
	if err := c.ensureReader(); err != nil {
		return nil, err
	}
	return c.reader.Parts(), nil
}
