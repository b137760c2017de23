// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/hfchat-tui/internal/ui/components"
	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the full screen: header, message area, optional loading
// line, status line and input box.
func (m Model) View() string {
	width := m.width
	if width < minWidth {
		width = minWidth
	}

	parts := []string{
		m.renderHeader(width),
		m.renderMessageTitle(),
		m.renderMessageArea(width),
	}
	if m.orch.Busy() {
		state := m.orch.State()
		parts = append(parts, components.RenderLoading(m.theme, state.Frame, state.Elapsed(m.now())))
	}
	parts = append(parts,
		m.renderStatus(width),
		m.renderInputTitle(),
		m.renderInput(width),
	)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(width int) string {
	title := m.theme.HeaderTitle.Render("hfchat")
	meta := m.theme.HeaderMeta.Render(fmt.Sprintf("%s · %d messages", m.cfg.Endpoint.Model, m.conv.Len()))
	return m.theme.Header.Width(width).MaxHeight(1).Render(title + "  " + meta)
}

func (m Model) renderMessageTitle() string {
	if m.showHelp {
		hint := "  ↑/↓ scroll, Esc or ? to close"
		if !m.helpPort.AtBottom() {
			hint += "  [more ↓]"
		}
		return m.theme.BorderTitle.Render("Help") + m.theme.Hint.Render(hint)
	}
	return m.theme.BorderTitle.Render("Conversation") + m.theme.HeaderMeta.Render(m.viewport.Indicator())
}

func (m Model) renderMessageArea(width int) string {
	if m.showHelp {
		return m.theme.HelpBox.Width(width - 2).Render(m.helpPort.View())
	}
	return m.theme.Border.Width(width - 2).Render(m.viewport.View())
}

func (m Model) renderStatus(width int) string {
	var style lipgloss.Style
	var symbol string
	switch m.status.Severity {
	case SeveritySuccess:
		style, symbol = m.theme.StatusSuccess, styles.SymbolSuccess
	case SeverityWarning:
		style, symbol = m.theme.StatusWarning, styles.SymbolWarning
	case SeverityError:
		style, symbol = m.theme.StatusError, styles.SymbolError
	default:
		style, symbol = m.theme.StatusInfo, styles.SymbolInfo
	}
	return style.MaxWidth(width).Render(symbol + " " + firstLine(m.status.Text))
}

func (m Model) renderInputTitle() string {
	if m.mode == ModeEditing {
		return m.theme.BorderTitle.Render(fmt.Sprintf("Input (%d chars)", utf8.RuneCountInString(m.input.Value())))
	}
	return m.theme.Hint.Render("Press 'i' to edit")
}

func (m Model) renderInput(width int) string {
	style := m.theme.InputBlurred
	if m.mode == ModeEditing {
		style = m.theme.InputFocused
	}
	return style.Width(width - 2).Render(m.input.View())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
