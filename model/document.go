package model

import (
	"strings"
	"time"
)

// Document represents a complete word-processing document with resolved
// structure. It is read-only once assembled.
type Document struct {
	Metadata Metadata
	Blocks   []Block
	// Warnings lists non-fatal problems found while building the document.
	Warnings []string
}

// Metadata contains document-level information
type Metadata struct {
	Title        string
	Author       string
	Subject      string
	Keywords     []string
	Creator      string
	CreationDate time.Time
	ModDate      time.Time
	// Custom metadata
	Custom map[string]string
}

// NewDocument creates a new empty document
func NewDocument() *Document {
	return &Document{
		Metadata: Metadata{
			Custom: make(map[string]string),
		},
		Blocks: make([]Block, 0),
	}
}

// AddBlock appends a block to the document body
func (d *Document) AddBlock(b Block) {
	d.Blocks = append(d.Blocks, b)
}

// ExtractText returns all text content, one block per line. List labels
// are not included.
func (d *Document) ExtractText() string {
	var sb strings.Builder
	for i, b := range d.Blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(strings.TrimRight(b.GetText(), "\n"))
	}
	return sb.String()
}

// Paragraphs returns all body-level paragraphs in order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.Blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns all body-level tables in order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.Blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Walk visits every paragraph in document order, descending into table
// cells and nested tables.
func (d *Document) Walk(fn func(p *Paragraph)) {
	walkBlocks(d.Blocks, fn)
}

func walkBlocks(blocks []Block, fn func(p *Paragraph)) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Paragraph:
			fn(v)
		case *Table:
			for _, row := range v.Rows {
				for _, cell := range row.Cells {
					walkBlocks(cell.Children, fn)
				}
			}
		}
	}
}
