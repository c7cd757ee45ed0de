// Package format detects Office Open XML package types.
package format

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tsawler/wordml/xmlnode"
)

// Format represents a package format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// DOCX indicates a Word document (.docx).
	DOCX
	// DOCM indicates a macro-enabled Word document (.docm).
	DOCM
	// DOTX indicates a Word template (.dotx).
	DOTX
	// DOTM indicates a macro-enabled Word template (.dotm).
	DOTM
	// XLSX indicates an Excel workbook (.xlsx).
	XLSX
	// PPTX indicates a PowerPoint presentation (.pptx).
	PPTX
	// ODT indicates an OpenDocument Text document (.odt).
	ODT
)

// Main part content types of WordprocessingML packages.
const (
	contentTypeDocument      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	contentTypeTemplate      = "application/vnd.openxmlformats-officedocument.wordprocessingml.template.main+xml"
	contentTypeMacroDocument = "application/vnd.ms-word.document.macroEnabled.main+xml"
	contentTypeMacroTemplate = "application/vnd.ms-word.template.macroEnabledTemplate.main+xml"
	contentTypesPart         = "[Content_Types].xml"
	odtMimeType              = "application/vnd.oasis.opendocument.text"
)

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case DOCX:
		return "DOCX"
	case DOCM:
		return "DOCM"
	case DOTX:
		return "DOTX"
	case DOTM:
		return "DOTM"
	case XLSX:
		return "XLSX"
	case PPTX:
		return "PPTX"
	case ODT:
		return "ODT"
	default:
		return "Unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case DOCX:
		return ".docx"
	case DOCM:
		return ".docm"
	case DOTX:
		return ".dotx"
	case DOTM:
		return ".dotm"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case ODT:
		return ".odt"
	default:
		return ""
	}
}

// IsWordprocessing reports whether the format carries a WordprocessingML
// main document part.
func (f Format) IsWordprocessing() bool {
	switch f {
	case DOCX, DOCM, DOTX, DOTM:
		return true
	}
	return false
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return DOCX
	case ".docm":
		return DOCM
	case ".dotx":
		return DOTX
	case ".dotm":
		return DOTM
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".odt":
		return ODT
	default:
		return Unknown
	}
}

// IsZip reports whether data starts with a ZIP local file header.
func IsZip(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// DetectFromReader inspects the package content to determine its format.
// Content that is not a ZIP archive is Unknown with a nil error; a ZIP
// archive that cannot be read returns an error.
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, len(zipMagic))
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	if !IsZip(magic[:n]) {
		return Unknown, nil
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, fmt.Errorf("reading ZIP archive: %w", err)
	}
	return DetectFromZip(zr)
}

// DetectFromZip determines the format of an open ZIP archive. The content
// type of the main document part decides between the Word variants; part
// name prefixes are the fallback when [Content_Types].xml is missing or
// unhelpful.
func DetectFromZip(zr *zip.Reader) (Format, error) {
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	if f, ok := files["mimetype"]; ok {
		data, err := readPart(f, 256)
		if err == nil && strings.Contains(string(data), odtMimeType) {
			return ODT, nil
		}
	}

	if f, ok := files[contentTypesPart]; ok {
		data, err := readPart(f, 1<<20)
		if err != nil {
			return Unknown, fmt.Errorf("reading %s: %w", contentTypesPart, err)
		}
		if format := detectFromContentTypes(data); format != Unknown {
			return format, nil
		}
	}

	for _, f := range zr.File {
		switch {
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}

	return Unknown, nil
}

// detectFromContentTypes maps the Override content types of a
// [Content_Types].xml part to a Word format.
func detectFromContentTypes(data []byte) Format {
	root, err := xmlnode.Parse(data)
	if err != nil {
		return Unknown
	}
	for _, o := range root.Children("Override") {
		switch o.AttrOr("ContentType", "") {
		case contentTypeDocument:
			return DOCX
		case contentTypeTemplate:
			return DOTX
		case contentTypeMacroDocument:
			return DOCM
		case contentTypeMacroTemplate:
			return DOTM
		}
	}
	return Unknown
}

func readPart(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, limit))
}
