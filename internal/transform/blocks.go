// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

import "strings"

// =============================================================================
// BLOCK TYPES
// =============================================================================

// Kind tags the variant held by a Block.
type Kind int

const (
	KindParagraph Kind = iota
	KindHeading
	KindListItem
	KindCode
	KindTable
	KindRule
	KindBlank
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindParagraph:
		return "paragraph"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindCode:
		return "code"
	case KindTable:
		return "table"
	case KindRule:
		return "rule"
	case KindBlank:
		return "blank"
	default:
		return "unknown"
	}
}

// Block is one structured unit of display text. Which fields are meaningful
// depends on Kind:
//
//	KindHeading    Level, Spans
//	KindParagraph  Spans
//	KindListItem   Depth, Marker, Spans
//	KindCode       Lang, Lines, Unterminated
//	KindTable      Rows, HeaderRows
type Block struct {
	Kind Kind

	Level  int
	Depth  int
	Marker string
	Spans  []Span

	Lang         string
	Lines        []string
	Unterminated bool

	Rows       [][]string
	HeaderRows int
}

// Text returns the block's plain text without styling.
func (b Block) Text() string {
	switch b.Kind {
	case KindCode:
		return strings.Join(b.Lines, "\n")
	case KindTable:
		rows := make([]string, 0, len(b.Rows))
		for _, r := range b.Rows {
			rows = append(rows, strings.Join(r, " | "))
		}
		return strings.Join(rows, "\n")
	default:
		return SpansText(b.Spans)
	}
}

// =============================================================================
// INLINE SPANS
// =============================================================================

// Style is the inline emphasis applied to a Span.
type Style int

const (
	StylePlain Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
	StyleCode
	StyleLink
)

// Span is a run of text with a single inline style.
type Span struct {
	Text  string
	Style Style
	URL   string // only for StyleLink
}

// SpansText concatenates the text of spans.
func SpansText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
