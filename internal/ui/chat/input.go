// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/hfchat-tui/internal/orchestrator"
)

// =============================================================================
// KEY DISPATCH
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m.quit()
	case key.Matches(msg, m.keys.QuickSave):
		m.save("")
		return m, nil
	}

	if m.mode == ModeEditing {
		return m.handleEditingKey(msg)
	}
	return m.handleNormalKey(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.orch.Close()
	return m, tea.Quit
}

// =============================================================================
// NORMAL MODE
// =============================================================================

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.showHelp && key.Matches(msg, m.keys.CloseHelp):
		m.showHelp = false
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Edit):
		return m.startEditing()
	case key.Matches(msg, m.keys.Help):
		m.toggleHelp()
	case key.Matches(msg, m.keys.ToggleThinking):
		m.toggleThinking()
	case key.Matches(msg, m.keys.Up):
		m.scrollTarget().ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.scrollTarget().ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollTarget().PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.scrollTarget().PageDown()
	case key.Matches(msg, m.keys.Home):
		m.scrollTarget().Top()
	case key.Matches(msg, m.keys.End):
		m.scrollTarget().ToBottom()
	case key.Matches(msg, m.keys.Copy):
		m.copyLastResponse()
	}
	return m, nil
}

func (m Model) startEditing() (tea.Model, tea.Cmd) {
	m.mode = ModeEditing
	m.input.Reset()
	cmd := m.input.Focus()
	return m, cmd
}

func (m *Model) stopEditing() {
	m.mode = ModeNormal
	m.input.Reset()
	m.input.Blur()
	m.completion.Clear()
}

func (m *Model) toggleThinking() {
	show := !m.renderer.ShowReasoning()
	m.renderer.SetShowReasoning(show)
	m.refresh()
	if show {
		m.status = info(statusThinkingShown)
	} else {
		m.status = info(statusThinkingHide)
	}
}

// =============================================================================
// EDITING MODE
// =============================================================================

func (m Model) handleEditingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return m, nil
	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		m.completion.Clear()
		return m, nil
	case key.Matches(msg, m.keys.Send):
		return m.submit()
	case key.Matches(msg, m.keys.Complete):
		m.complete()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.completion.Clear()
	return m, cmd
}

// submit handles enter in Editing mode: commands are dispatched, text is
// sent to the model.
func (m Model) submit() (tea.Model, tea.Cmd) {
	result := m.parser.Parse(m.input.Value())

	if result.IsCommand {
		m.stopEditing()
		m.runCommand(result)
		return m, nil
	}

	if err := m.orch.Send(strings.TrimSpace(result.Text)); err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrBusy):
			m.status = warning(statusBusy)
		case Classify(err) == KindEmptyInput:
			m.status = ErrorStatus(err)
		default:
			m.status = ErrorStatus(err)
			m.logger.Error("send failed", "err", err)
		}
		return m, nil
	}

	m.stopEditing()
	m.status = info(statusSending)
	m.viewport.ToBottom()
	m.layout()
	return m, nil
}

// complete cycles through completions for the current input.
func (m *Model) complete() {
	value := m.input.Value()
	if m.completion.Active() && value == m.completion.Accept() {
		m.completion.Next()
	} else {
		m.completion.Update(value, m.completer.Complete(value))
	}

	next := m.completion.Accept()
	if next == "" {
		return
	}
	m.input.SetValue(next)
	m.input.CursorEnd()

	if len(m.completion.Completions) > 1 {
		names := make([]string, 0, len(m.completion.Completions))
		for _, c := range m.completion.Completions {
			names = append(names, c.Display)
		}
		m.status = info(strings.Join(names, "  "))
	}
}
