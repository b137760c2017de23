// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// =============================================================================
// STYLED WORD WRAP
// =============================================================================

// piece is a run of text rendered with one style.
type piece struct {
	text  string
	style lipgloss.Style
}

// token is a word or a run of spaces belonging to piece index p.
type token struct {
	text  string
	p     int
	space bool
}

// wrapPieces word-wraps styled text to width cells and returns one rendered
// string per output line. Words longer than width are split by cell width.
func wrapPieces(pieces []piece, width int) []string {
	if width < 1 {
		width = 1
	}

	var (
		lines   [][]token
		current []token
		used    int
	)
	newline := func() {
		lines = append(lines, trimTrailingSpace(current))
		current = nil
		used = 0
	}

	for _, tok := range tokenize(pieces) {
		w := runewidth.StringWidth(tok.text)
		if tok.space {
			if used == 0 {
				continue
			}
			if used+w > width {
				newline()
				continue
			}
		} else if used+w > width {
			if used > 0 {
				newline()
			}
			for w > width {
				head, tail := splitAtWidth(tok.text, width)
				current = append(current, token{text: head, p: tok.p})
				newline()
				tok.text = tail
				w = runewidth.StringWidth(tail)
			}
		}
		current = append(current, tok)
		used += w
	}
	if len(current) > 0 || len(lines) == 0 {
		newline()
	}

	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = renderTokens(line, pieces)
	}
	return out
}

func tokenize(pieces []piece) []token {
	var toks []token
	for i, pc := range pieces {
		var b strings.Builder
		inSpace := false
		flush := func() {
			if b.Len() > 0 {
				toks = append(toks, token{text: b.String(), p: i, space: inSpace})
				b.Reset()
			}
		}
		for _, r := range pc.text {
			isSpace := unicode.IsSpace(r)
			if isSpace != inSpace {
				flush()
				inSpace = isSpace
			}
			if isSpace {
				r = ' '
			}
			b.WriteRune(r)
		}
		flush()
	}
	return toks
}

// renderTokens merges adjacent tokens of the same piece and styles them.
func renderTokens(toks []token, pieces []piece) string {
	var out strings.Builder
	for i := 0; i < len(toks); {
		j := i
		var run strings.Builder
		for j < len(toks) && toks[j].p == toks[i].p {
			run.WriteString(toks[j].text)
			j++
		}
		out.WriteString(pieces[toks[i].p].style.Render(run.String()))
		i = j
	}
	return out.String()
}

func trimTrailingSpace(toks []token) []token {
	for len(toks) > 0 && toks[len(toks)-1].space {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// splitAtWidth cuts s after at most width cells; the head is never empty.
func splitAtWidth(s string, width int) (string, string) {
	used := 0
	for i, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > width && i > 0 {
			return s[:i], s[i:]
		}
		used += w
	}
	return s, ""
}

// WrapPlain wraps unstyled text, preserving explicit newlines.
func WrapPlain(text string, width int, style lipgloss.Style) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			out = append(out, "")
			continue
		}
		body := strings.TrimLeft(line, " \t")
		indent := strings.ReplaceAll(line[:len(line)-len(body)], "\t", "    ")
		iw := runewidth.StringWidth(indent)
		if iw >= width/2 {
			indent, iw = "", 0
		}
		for _, wrapped := range wrapPieces([]piece{{text: body, style: style}}, width-iw) {
			out = append(out, indent+wrapped)
		}
	}
	return out
}

// padRight pads s with spaces to width display cells.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
