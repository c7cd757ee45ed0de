// Package wordml provides a fluent API for converting Word (.docx) documents
// into a resolved document model, plain text or HTML.
//
// Basic usage:
//
//	text, warnings, err := wordml.Open("report.docx").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", wordml.FormatWarnings(warnings))
//	}
//
// With options:
//
//	html, _, err := wordml.Open("report.docx").
//	    ShowHidden().
//	    InlineStyles().
//	    HTML()
//
// For lower-level access, the docx package exposes the parsers, the style
// resolver and the numbering engine directly.
package wordml

import (
	"github.com/tsawler/wordml/docx"
)

// Open opens a .docx file and returns a Converter for fluent configuration.
// The file is read on the first terminal operation, such as Text(), and
// closed when that operation returns.
//
// Example:
//
//	doc, warnings, err := wordml.Open("report.docx").Document()
func Open(filename string) *Converter {
	return &Converter{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes returns a Converter over an in-memory .docx package.
//
// Example:
//
//	text, _, err := wordml.FromBytes(data).Text()
func FromBytes(data []byte) *Converter {
	return &Converter{
		data:    data,
		options: defaultOptions(),
	}
}

// FromReader creates a Converter from an already-opened docx.Reader.
// The caller is responsible for closing the reader.
//
// Example:
//
//	r, err := docx.Open("report.docx")
//	if err != nil {
//	    // handle error
//	}
//	defer r.Close()
//	text, warnings, err := wordml.FromReader(r).Text()
func FromReader(r *docx.Reader) *Converter {
	return &Converter{
		reader:       r,
		ownsReader:   false,
		readerOpened: true,
		options:      defaultOptions(),
	}
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	meta := wordml.Must(wordml.Open("report.docx").Metadata())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text(), HTML() or Document()
// and panics if the error is non-nil. It discards warnings and returns just
// the value.
//
// Example:
//
//	text := wordml.MustText(wordml.Open("report.docx").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
