// Package docx parses WordprocessingML (.docx) packages into the resolved
// document model: structural parsers, the style cascade, the numbering
// engine and the document assembler.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tsawler/wordml/format"
	"github.com/tsawler/wordml/model"
	"github.com/tsawler/wordml/xmlnode"
)

// Well-known part names, used when relationships do not name a part.
const (
	PartDocument  = "word/document.xml"
	PartStyles    = "word/styles.xml"
	PartNumbering = "word/numbering.xml"
	PartCoreProps = "docProps/core.xml"
	PartAppProps  = "docProps/app.xml"

	partRootRels = "_rels/.rels"

	relOfficeDocument = "/officeDocument"
	relStyles         = "/styles"
	relNumbering      = "/numbering"
)

// maxPartSize bounds the decompressed size of a single part.
const maxPartSize = 64 << 20

var (
	errNotWordprocessing = errors.New("not a WordprocessingML package")
	errMissingPart       = errors.New("part not found")
	errMissingBody       = errors.New("document has no body")
	errPartTooLarge      = errors.New("part exceeds size limit")
)

// Option configures a Reader or a conversion.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger that receives warnings. The default discards
// them.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Source holds the parsed XML parts a conversion reads. Styles and
// Numbering may be nil.
type Source struct {
	Document  *xmlnode.Node
	Styles    *xmlnode.Node
	Numbering *xmlnode.Node
}

// Convert builds the resolved document from already parsed parts. Each call
// uses a fresh style resolver and numbering counter state. The only error is
// a *FatalInputError for a missing document root or body.
func Convert(src Source, opts ...Option) (*model.Document, []Warning, error) {
	o := applyOptions(opts)
	return convert(src, NewCollector(o.logger))
}

func convert(src Source, c *Collector) (*model.Document, []Warning, error) {
	body := bodyOf(src.Document)
	if body == nil {
		return nil, nil, fatal(PartDocument, errMissingBody)
	}

	styles := NewStyleResolver(ParseStyles(src.Styles, c), c)
	numbering := NewNumberingEngine(ParseNumbering(src.Numbering, c), NewCounterState())

	doc, warnings := Assemble(body, styles, numbering, c)
	return doc, warnings, nil
}

// bodyOf accepts either a <w:document> root or a <w:body> element.
func bodyOf(n *xmlnode.Node) *xmlnode.Node {
	switch n.Name() {
	case "body":
		return n
	case "document":
		return n.Child("body")
	}
	return nil
}

// Reader provides access to the content of a .docx package. Parts are read
// and parsed when the Reader is opened; Convert may be called repeatedly.
type Reader struct {
	file      *os.File
	zipReader *zip.Reader
	files     map[string]*zip.File
	format    format.Format
	src       Source
	meta      model.Metadata
	warnings  []Warning // found while opening
	logger    *zap.Logger
}

// Open opens a .docx file for reading.
func Open(filename string, opts ...Option) (*Reader, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}

	r, err := newReader(f, info.Size(), opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.file = f
	return r, nil
}

// OpenBytes opens an in-memory .docx package.
func OpenBytes(data []byte, opts ...Option) (*Reader, error) {
	return newReader(bytes.NewReader(data), int64(len(data)), opts)
}

// OpenReader opens a .docx package from r.
func OpenReader(r io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	return newReader(r, size, opts)
}

func newReader(ra io.ReaderAt, size int64, opts []Option) (*Reader, error) {
	o := applyOptions(opts)

	detected, err := format.DetectFromReader(ra, size)
	if err != nil {
		return nil, fatal("package", err)
	}
	if !detected.IsWordprocessing() {
		return nil, fatal("package", fmt.Errorf("%w: detected %s", errNotWordprocessing, detected))
	}

	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fatal("package", fmt.Errorf("opening ZIP archive: %w", err))
	}

	r := &Reader{
		zipReader: zr,
		files:     make(map[string]*zip.File, len(zr.File)),
		format:    detected,
		logger:    o.logger,
	}
	for _, f := range zr.File {
		r.files[f.Name] = f
	}

	c := NewCollector(o.logger)
	if err := r.load(c); err != nil {
		return nil, err
	}
	r.warnings = c.Warnings()
	return r, nil
}

// load locates and parses the parts of the package.
func (r *Reader) load(c *Collector) error {
	mainPart := r.mainPartName()
	if _, ok := r.files[mainPart]; !ok {
		return fatal(mainPart, errMissingPart)
	}

	doc, err := r.parsePart(mainPart)
	if err != nil {
		return fatal(mainPart, err)
	}
	if bodyOf(doc) == nil {
		return fatal(mainPart, errMissingBody)
	}
	r.src.Document = doc

	rels := r.relationships(mainPart)
	stylesPart := firstNonEmpty(rels[relStyles], PartStyles)
	numberingPart := firstNonEmpty(rels[relNumbering], PartNumbering)

	if _, ok := r.files[stylesPart]; ok {
		if r.src.Styles, err = r.parsePart(stylesPart); err != nil {
			return fatal(stylesPart, err)
		}
	}
	if _, ok := r.files[numberingPart]; ok {
		if r.src.Numbering, err = r.parsePart(numberingPart); err != nil {
			return fatal(numberingPart, err)
		}
	}

	r.meta = model.Metadata{Custom: make(map[string]string)}
	r.parseCoreProperties(c)
	r.parseAppProperties(c)
	return nil
}

// mainPartName follows the package relationship to the main document part.
func (r *Reader) mainPartName() string {
	root, err := r.parsePart(partRootRels)
	if err != nil {
		return PartDocument
	}
	for _, rel := range root.Children("Relationship") {
		if strings.HasSuffix(rel.AttrOr("Type", ""), relOfficeDocument) {
			if target := rel.AttrOr("Target", ""); target != "" {
				return resolveTarget("", target)
			}
		}
	}
	return PartDocument
}

// relationships maps relationship type suffixes to part names for the
// relationships of part.
func (r *Reader) relationships(part string) map[string]string {
	dir, file := path.Split(part)
	relsPart := path.Join(dir, "_rels", file+".rels")

	out := make(map[string]string)
	root, err := r.parsePart(relsPart)
	if err != nil {
		return out
	}
	for _, rel := range root.Children("Relationship") {
		if rel.AttrOr("TargetMode", "") == "External" {
			continue
		}
		typ := rel.AttrOr("Type", "")
		target := rel.AttrOr("Target", "")
		if i := strings.LastIndex(typ, "/"); i >= 0 && target != "" {
			if _, seen := out[typ[i:]]; !seen {
				out[typ[i:]] = resolveTarget(dir, target)
			}
		}
	}
	return out
}

// resolveTarget resolves a relationship target against the directory of the
// source part. Absolute targets are relative to the package root.
func resolveTarget(dir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join("/", dir, target), "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// readPart returns the decompressed content of a part.
func (r *Reader) readPart(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errMissingPart, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("%w: %s", errPartTooLarge, name)
	}
	return data, nil
}

// parsePart reads and parses an XML part.
func (r *Reader) parsePart(name string) (*xmlnode.Node, error) {
	data, err := r.readPart(name)
	if err != nil {
		return nil, err
	}
	return xmlnode.Parse(data)
}

// parseCoreProperties parses Dublin Core metadata.
func (r *Reader) parseCoreProperties(c *Collector) {
	if _, ok := r.files[PartCoreProps]; !ok {
		return
	}
	root, err := r.parsePart(PartCoreProps)
	if err != nil {
		c.Add(WarnRecoverable, nil, "%s skipped: %v", PartCoreProps, err)
		return
	}

	r.meta.Title = strings.TrimSpace(root.Child("title").Text())
	r.meta.Author = strings.TrimSpace(root.Child("creator").Text())
	r.meta.Subject = strings.TrimSpace(root.Child("subject").Text())
	if kw := root.Child("keywords").Text(); kw != "" {
		r.meta.Keywords = splitKeywords(kw)
	}
	r.meta.CreationDate = parseW3CDate(root.Child("created"), c)
	r.meta.ModDate = parseW3CDate(root.Child("modified"), c)

	for _, name := range []string{"description", "lastModifiedBy", "category", "revision"} {
		if v := strings.TrimSpace(root.Child(name).Text()); v != "" {
			r.meta.Custom[name] = v
		}
	}
}

// parseAppProperties parses application metadata.
func (r *Reader) parseAppProperties(c *Collector) {
	if _, ok := r.files[PartAppProps]; !ok {
		return
	}
	root, err := r.parsePart(PartAppProps)
	if err != nil {
		c.Add(WarnRecoverable, nil, "%s skipped: %v", PartAppProps, err)
		return
	}

	r.meta.Creator = strings.TrimSpace(root.Child("Application").Text())
	for _, name := range []string{"Company", "Manager", "Template"} {
		if v := strings.TrimSpace(root.Child(name).Text()); v != "" {
			r.meta.Custom[strings.ToLower(name)] = v
		}
	}
}

func splitKeywords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func parseW3CDate(n *xmlnode.Node, c *Collector) time.Time {
	s := strings.TrimSpace(n.Text())
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	c.Add(WarnRecoverable, n, "invalid date %q", s)
	return time.Time{}
}

// Close releases resources associated with the Reader.
func (r *Reader) Close() error {
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Format returns the detected package format.
func (r *Reader) Format() format.Format {
	return r.format
}

// Parts returns the part names of the package, sorted.
func (r *Reader) Parts() []string {
	names := make([]string, 0, len(r.files))
	for name := range r.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source returns the parsed parts.
func (r *Reader) Source() Source {
	return r.src
}

// Metadata returns document metadata.
func (r *Reader) Metadata() model.Metadata {
	meta := r.meta
	meta.Custom = make(map[string]string, len(r.meta.Custom))
	for k, v := range r.meta.Custom {
		meta.Custom[k] = v
	}
	return meta
}

// Convert builds the resolved document. Warnings found while opening the
// package come first.
func (r *Reader) Convert() (*model.Document, []Warning, error) {
	c := NewCollector(r.logger)
	c.warnings = append(c.warnings, r.warnings...)

	doc, warnings, err := convert(r.src, c)
	if err != nil {
		return nil, nil, err
	}
	doc.Metadata = r.Metadata()
	return doc, warnings, nil
}

// Text returns the plain text of the document, one paragraph per line.
func (r *Reader) Text() (string, error) {
	doc, _, err := r.Convert()
	if err != nil {
		return "", err
	}
	return doc.ExtractText(), nil
}
