// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

import (
	"regexp"
	"strings"
)

// IndentWidth is the number of leading columns that make up one level of
// list nesting. Tabs count as TabWidth columns.
const (
	IndentWidth = 2
	TabWidth    = 4
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})(?:[ \t]+(.*?))?(?:[ \t]+#+)?[ \t]*$`)
	listPattern    = regexp.MustCompile(`^([ \t]*)([-*+]|\d{1,9}[.)])[ \t]+(.*)$`)
	rulePattern    = regexp.MustCompile(`^[ \t]*(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	tableSepCell   = regexp.MustCompile(`^:?-+:?$`)
)

// =============================================================================
// BLOCK PARSER
// =============================================================================

// Parse segments markdown-like text into blocks with a single line-oriented
// pass. It never fails: malformed markup is returned as literal text and the
// second result reports that degradation happened.
func Parse(text string) ([]Block, bool) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var (
		blocks   []Block
		para     []string
		degraded bool
	)

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		spans, bad := ParseInline(strings.Join(para, " "))
		degraded = degraded || bad
		blocks = append(blocks, Block{Kind: KindParagraph, Spans: spans})
		para = nil
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			flushPara()
			blocks = append(blocks, Block{Kind: KindBlank})

		case strings.HasPrefix(trimmed, "```"):
			flushPara()
			code := Block{Kind: KindCode, Lang: strings.TrimSpace(strings.TrimLeft(trimmed, "`"))}
			closed := false
			for i++; i < len(lines); i++ {
				if strings.TrimSpace(lines[i]) == "```" {
					closed = true
					break
				}
				code.Lines = append(code.Lines, lines[i])
			}
			if !closed {
				code.Unterminated = true
				degraded = true
			}
			blocks = append(blocks, code)

		case isTableLine(trimmed):
			flushPara()
			start := i
			for i+1 < len(lines) && isTableLine(strings.TrimSpace(lines[i+1])) {
				i++
			}
			blocks = append(blocks, parseTable(lines[start:i+1]))

		case rulePattern.MatchString(line):
			flushPara()
			blocks = append(blocks, Block{Kind: KindRule})

		default:
			if m := headingPattern.FindStringSubmatch(trimmed); m != nil && isHeading(line, trimmed, m[1]) {
				flushPara()
				spans, bad := ParseInline(m[2])
				degraded = degraded || bad
				blocks = append(blocks, Block{Kind: KindHeading, Level: len(m[1]), Spans: spans})
				continue
			}
			if m := listPattern.FindStringSubmatch(line); m != nil {
				flushPara()
				spans, bad := ParseInline(m[3])
				degraded = degraded || bad
				blocks = append(blocks, Block{
					Kind:   KindListItem,
					Depth:  indentColumns(m[1]) / IndentWidth,
					Marker: m[2],
					Spans:  spans,
				})
				continue
			}
			para = append(para, trimmed)
		}
	}
	flushPara()

	return collapseBlanks(blocks), degraded
}

// collapseBlanks merges runs of blank blocks and trims them at both ends.
func collapseBlanks(blocks []Block) []Block {
	out := blocks[:0]
	for _, b := range blocks {
		if b.Kind == KindBlank && (len(out) == 0 || out[len(out)-1].Kind == KindBlank) {
			continue
		}
		out = append(out, b)
	}
	for len(out) > 0 && out[len(out)-1].Kind == KindBlank {
		out = out[:len(out)-1]
	}
	return out
}

// isHeading rejects indented lines and runs of more than six '#'.
func isHeading(line, trimmed, hashes string) bool {
	if strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
		return false
	}
	return !strings.HasPrefix(trimmed[len(hashes):], "#")
}

func indentColumns(prefix string) int {
	cols := 0
	for _, r := range prefix {
		if r == '\t' {
			cols += TabWidth
		} else {
			cols++
		}
	}
	return cols
}

// =============================================================================
// TABLES
// =============================================================================

func isTableLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "|") && strings.Count(trimmed, "|") >= 2
}

func parseTable(lines []string) Block {
	table := Block{Kind: KindTable}
	for _, line := range lines {
		cells := splitTableRow(line)
		if isSeparatorRow(cells) {
			if table.HeaderRows == 0 {
				table.HeaderRows = len(table.Rows)
			}
			continue
		}
		table.Rows = append(table.Rows, cells)
	}
	return table
}

func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if !tableSepCell.MatchString(c) {
			return false
		}
	}
	return len(cells) > 0
}
