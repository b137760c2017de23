// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

import (
	"strings"
	"unicode"
)

// =============================================================================
// INLINE PARSER
// =============================================================================

// inlineParser splits a single line of paragraph text into styled spans.
// Unterminated markers are emitted as literal text and flag degraded.
type inlineParser struct {
	src      []rune
	spans    []Span
	plain    strings.Builder
	degraded bool
}

// ParseInline splits text into emphasis, inline code, and link spans.
// The second result reports whether any marker was left unterminated.
func ParseInline(text string) ([]Span, bool) {
	p := &inlineParser{src: []rune(text)}
	p.run()
	return p.spans, p.degraded
}

func (p *inlineParser) run() {
	src := p.src
	for i := 0; i < len(src); {
		switch r := src[i]; r {
		case '`':
			j := indexRune(src, i+1, '`')
			if j < 0 {
				p.degraded = true
				p.plain.WriteString(string(src[i:]))
				i = len(src)
				continue
			}
			p.emit(Span{Text: string(src[i+1 : j]), Style: StyleCode})
			i = j + 1

		case '*', '_':
			n := runLength(src, i, r)
			if n > 3 || !p.canOpen(i, n, r) {
				p.plain.WriteString(string(src[i : i+n]))
				i += n
				continue
			}
			j := p.findClose(i+n, n, r)
			if j < 0 {
				p.degraded = true
				p.plain.WriteString(string(src[i : i+n]))
				i += n
				continue
			}
			p.emit(Span{Text: string(src[i+n : j]), Style: emphasisStyle(n)})
			i = j + n

		case '[':
			if span, end, ok := parseLink(src, i); ok {
				p.emit(span)
				i = end
				continue
			}
			p.plain.WriteRune(r)
			i++

		default:
			p.plain.WriteRune(r)
			i++
		}
	}
	p.flush()
}

func (p *inlineParser) emit(s Span) {
	p.flush()
	p.spans = append(p.spans, s)
}

func (p *inlineParser) flush() {
	if p.plain.Len() == 0 {
		return
	}
	p.spans = append(p.spans, Span{Text: p.plain.String()})
	p.plain.Reset()
}

// canOpen reports whether a delimiter run of length n at i may start
// emphasis: it must be followed by non-space, and underscores must not sit
// inside a word (snake_case stays literal).
func (p *inlineParser) canOpen(i, n int, r rune) bool {
	next := i + n
	if next >= len(p.src) || unicode.IsSpace(p.src[next]) {
		return false
	}
	if r == '_' && i > 0 && isWordRune(p.src[i-1]) {
		return false
	}
	return true
}

// findClose returns the index of a closing run of exactly n delimiters, or -1.
func (p *inlineParser) findClose(from, n int, r rune) int {
	src := p.src
	for k := from; k < len(src); {
		if src[k] != r {
			k++
			continue
		}
		run := runLength(src, k, r)
		if run == n && k > from && !unicode.IsSpace(src[k-1]) {
			after := k + n
			if r != '_' || after >= len(src) || !isWordRune(src[after]) {
				return k
			}
		}
		k += run
	}
	return -1
}

func emphasisStyle(n int) Style {
	switch n {
	case 1:
		return StyleItalic
	case 2:
		return StyleBold
	default:
		return StyleBoldItalic
	}
}

// parseLink matches [text](url) starting at i.
func parseLink(src []rune, i int) (Span, int, bool) {
	closeText := indexRune(src, i+1, ']')
	if closeText < 0 || closeText+1 >= len(src) || src[closeText+1] != '(' {
		return Span{}, 0, false
	}
	if indexRune(src[:closeText], i+1, '[') >= 0 {
		return Span{}, 0, false
	}
	closeURL := indexRune(src, closeText+2, ')')
	if closeURL < 0 {
		return Span{}, 0, false
	}
	url := string(src[closeText+2 : closeURL])
	if url == "" || strings.ContainsAny(url, " \t") {
		return Span{}, 0, false
	}
	text := string(src[i+1 : closeText])
	if text == "" {
		text = url
	}
	return Span{Text: text, Style: StyleLink, URL: url}, closeURL + 1, true
}

func indexRune(src []rune, from int, r rune) int {
	for k := from; k < len(src); k++ {
		if src[k] == r {
			return k
		}
	}
	return -1
}

func runLength(src []rune, i int, r rune) int {
	n := 0
	for i+n < len(src) && src[i+n] == r {
		n++
	}
	return n
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
