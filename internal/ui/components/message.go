// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/transform"
	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// ReasoningHiddenHint replaces the reasoning section when it is toggled off.
const ReasoningHiddenHint = "[Thinking hidden - press 't' to show]"

// bodyIndent prefixes every body and reasoning line.
const bodyIndent = "  "

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer turns conversation history into display lines. Rendered
// messages are cached by ID; the cache is dropped whenever width, theme or
// reasoning visibility changes.
type MessageRenderer struct {
	theme         *styles.Theme
	width         int
	showReasoning bool
	cache         map[string][]string
}

// NewMessageRenderer creates a renderer for the given theme.
func NewMessageRenderer(theme *styles.Theme) *MessageRenderer {
	return &MessageRenderer{
		theme:         theme,
		width:         80,
		showReasoning: true,
		cache:         make(map[string][]string),
	}
}

// SetWidth sets the width of the message area in cells.
func (r *MessageRenderer) SetWidth(width int) {
	if width != r.width {
		r.width = width
		r.invalidate()
	}
}

// SetShowReasoning toggles reasoning sections.
func (r *MessageRenderer) SetShowReasoning(show bool) {
	if show != r.showReasoning {
		r.showReasoning = show
		r.invalidate()
	}
}

// ShowReasoning reports whether reasoning sections are visible.
func (r *MessageRenderer) ShowReasoning() bool { return r.showReasoning }

// SetTheme swaps the theme, for example after a code theme reload.
func (r *MessageRenderer) SetTheme(theme *styles.Theme) {
	r.theme = theme
	r.invalidate()
}

func (r *MessageRenderer) invalidate() {
	r.cache = make(map[string][]string)
}

// Render flattens all messages into display lines tagged with their
// message index. Each message ends with one blank separator line.
func (r *MessageRenderer) Render(msgs []model.Message) []Line {
	next := make(map[string][]string, len(msgs))
	var out []Line
	for i, msg := range msgs {
		rendered, ok := r.cache[msg.ID]
		if !ok || msg.ID == "" {
			rendered = r.renderMessage(msg)
		}
		if msg.ID != "" {
			next[msg.ID] = rendered
		}
		for _, text := range rendered {
			out = append(out, Line{Text: text, Message: i})
		}
	}
	r.cache = next
	return out
}

func (r *MessageRenderer) renderMessage(msg model.Message) []string {
	t := r.theme
	label := t.AssistantLabel
	if msg.Role == model.RoleUser {
		label = t.UserLabel
	}

	lines := []string{
		label.Render(msg.Role.DisplayName()) + t.Timestamp.Render(" ["+msg.Clock()+"]") + label.Render(":"),
	}

	inner := maxInt0(1, r.width-len(bodyIndent))

	if msg.HasReasoning() {
		if r.showReasoning {
			lines = append(lines, bodyIndent+t.ReasoningLabel.Render("🤔 [Thinking Process]"))
			for _, l := range WrapPlain(msg.Reasoning, maxInt0(1, inner-2), t.Reasoning) {
				lines = append(lines, bodyIndent+"  "+l)
			}
			lines = append(lines, bodyIndent+t.Rule.Render(strings.Repeat("═", minInt(20, inner))))
		} else {
			lines = append(lines, bodyIndent+t.Hint.Render("🤔 "+ReasoningHiddenHint))
		}
	}

	var body []string
	if msg.Role == model.RoleAssistant {
		blocks, _ := transform.Parse(msg.Content)
		body = r.renderBlocks(blocks, inner)
	} else {
		body = WrapPlain(msg.Content, inner, t.Body)
	}
	for _, l := range body {
		if l == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, bodyIndent+l)
	}

	return append(lines, "")
}

// =============================================================================
// BLOCK RENDERING
// =============================================================================

func (r *MessageRenderer) renderBlocks(blocks []transform.Block, width int) []string {
	t := r.theme
	var out []string
	for _, b := range blocks {
		switch b.Kind {
		case transform.KindHeading:
			marker := strings.Repeat("#", b.Level) + " "
			pieces := append([]piece{{text: marker, style: t.Heading}}, r.spanPieces(b.Spans, true)...)
			out = append(out, wrapPieces(pieces, width)...)

		case transform.KindParagraph:
			out = append(out, wrapPieces(r.spanPieces(b.Spans, false), width)...)

		case transform.KindListItem:
			out = append(out, r.renderListItem(b, width)...)

		case transform.KindCode:
			out = append(out, RenderCodeBlock(t, b.Lang, b.Lines, width)...)

		case transform.KindTable:
			out = append(out, r.renderTable(b, width)...)

		case transform.KindRule:
			out = append(out, t.Rule.Render(strings.Repeat("─", minInt(40, width))))

		case transform.KindBlank:
			out = append(out, "")
		}
	}
	return out
}

func (r *MessageRenderer) spanPieces(spans []transform.Span, heading bool) []piece {
	t := r.theme
	pieces := make([]piece, 0, len(spans))
	for _, s := range spans {
		style := t.Body
		switch s.Style {
		case transform.StyleBold:
			style = t.Bold
		case transform.StyleItalic:
			style = t.Italic
		case transform.StyleBoldItalic:
			style = t.BoldItalic
		case transform.StyleCode:
			style = t.InlineCode
		case transform.StyleLink:
			style = t.Link
		}
		if heading && s.Style != transform.StyleCode {
			style = t.Heading
		}
		pieces = append(pieces, piece{text: s.Text, style: style})
		if s.Style == transform.StyleLink && s.URL != s.Text {
			pieces = append(pieces, piece{text: " <" + s.URL + ">", style: t.LinkURL})
		}
	}
	return pieces
}

func (r *MessageRenderer) renderListItem(b transform.Block, width int) []string {
	bullet := "• "
	if b.Marker != "-" && b.Marker != "*" && b.Marker != "+" {
		bullet = b.Marker + " "
	}
	indent := strings.Repeat("  ", b.Depth)
	prefixWidth := runewidth.StringWidth(indent + bullet)
	if prefixWidth >= width/2 {
		indent = strings.Repeat(" ", maxInt0(0, width/2-runewidth.StringWidth(bullet)))
		prefixWidth = runewidth.StringWidth(indent + bullet)
	}

	wrapped := wrapPieces(r.spanPieces(b.Spans, false), maxInt0(1, width-prefixWidth))
	out := make([]string, len(wrapped))
	for i, l := range wrapped {
		if i == 0 {
			out[i] = indent + r.theme.ListMarker.Render(bullet) + l
		} else {
			out[i] = strings.Repeat(" ", prefixWidth) + l
		}
	}
	return out
}

func (r *MessageRenderer) renderTable(b transform.Block, width int) []string {
	t := r.theme
	cols := 0
	for _, row := range b.Rows {
		cols = maxInt0(cols, len(row))
	}
	widths := make([]int, cols)
	for _, row := range b.Rows {
		for i, cell := range row {
			widths[i] = maxInt0(widths[i], runewidth.StringWidth(cell))
		}
	}

	clip := lipgloss.NewStyle().MaxWidth(maxInt0(1, width))
	var out []string
	for idx, row := range b.Rows {
		cells := make([]string, cols)
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padRight(cell, widths[i])
		}
		style := t.Body
		if idx < b.HeaderRows {
			style = t.TableHeader
		}
		out = append(out, clip.Render(style.Render(strings.Join(cells, " | "))))

		if idx+1 == b.HeaderRows {
			seps := make([]string, cols)
			for i, w := range widths {
				seps[i] = strings.Repeat("-", maxInt0(1, w))
			}
			out = append(out, clip.Render(t.TableRule.Render(strings.Join(seps, "-+-"))))
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
