// Package model provides the resolved document tree produced by the docx
// package and consumed by renderers.
//
// # Document Structure
//
// A [Document] holds metadata and an ordered list of [Block] values, each a
// [*Paragraph] or a [*Table]. Tables contain [*Row] values whose [*Cell]
// children are again paragraphs and nested tables.
//
// # Properties
//
// [ParagraphProperties] and [RunProperties] are collections of independently
// optional fields. Each field is an [Opt], which distinguishes "unset, inherit
// from below" from an explicit value such as false or 0. Merge combines two
// records field by field with the argument taking precedence, recursing into
// nested records like [Spacing], [Indentation] and [Fonts]:
//
//	effective := defaults.Merge(styleProps).Merge(directProps)
//
// Properties stored on an assembled document are already final. Renderers
// read them and never re-resolve styles or numbering.
package model
