// Package docxtest builds small .docx packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

// NS is the WordprocessingML main namespace.
const NS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const (
	contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

	rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`
)

// Document wraps body content in a w:document part.
func Document(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + NS + `"><w:body>` + body + `</w:body></w:document>`
}

// Styles wraps style definitions in a w:styles part.
func Styles(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + NS + `">` + inner + `</w:styles>`
}

// Numbering wraps numbering definitions in a w:numbering part.
func Numbering(inner string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:numbering xmlns:w="` + NS + `">` + inner + `</w:numbering>`
}

// Paragraph returns a paragraph with a single text run.
func Paragraph(text string) string {
	return `<w:p><w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// ListItem returns a paragraph in list numID at level ilvl.
func ListItem(text, numID, ilvl string) string {
	return `<w:p><w:pPr><w:numPr><w:ilvl w:val="` + ilvl + `"/><w:numId w:val="` + numID +
		`"/></w:numPr></w:pPr><w:r><w:t>` + text + `</w:t></w:r></w:p>`
}

// SimpleList is a numbering part with one decimal list, numId 1, whose
// levels render "%1." and "%1.%2.".
var SimpleList = Numbering(`
<w:abstractNum w:abstractNumId="0">
  <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl>
  <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1.%2."/></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>`)

// Build returns a package holding body plus the extra parts, which may
// replace the defaults.
func Build(tb testing.TB, body string, extra map[string]string) []byte {
	tb.Helper()

	files := map[string]string{
		"[Content_Types].xml": contentTypes,
		"_rels/.rels":         rootRels,
		"word/document.xml":   Document(body),
	}
	for name, content := range extra {
		files[name] = content
	}
	return Zip(tb, files)
}

// Zip returns the bytes of a ZIP archive holding files, written in name
// order.
func Zip(tb testing.TB, files map[string]string) []byte {
	tb.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			tb.Fatalf("creating %s: %v", name, err)
		}
		if _, err := w.Write([]byte(files[name])); err != nil {
			tb.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("closing zip: %v", err)
	}
	return buf.Bytes()
}

// WriteFile writes data to name inside a fresh temp dir and returns the path.
func WriteFile(tb testing.TB, name string, data []byte) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
	return path
}
