// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/jeranaias/hfchat-tui/internal/commands"
	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/storage"
)

// errNoStore is reported by /save and /load when persistence is disabled.
var errNoStore = errors.New("no conversation store configured")

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// runCommand executes a parsed slash command. Unknown commands and bad
// arguments only set a warning.
func (m *Model) runCommand(result commands.ParseResult) {
	if result.Unknown() {
		m.status = warning("Unknown command: " + result.CommandName)
		return
	}
	if result.Error != nil {
		m.status = warning(result.Error.Error())
		return
	}

	switch result.Command.ID {
	case commands.IDHelp:
		m.toggleHelp()
	case commands.IDClear:
		m.clearConversation()
	case commands.IDStats:
		m.status = info(m.conv.Stats().String())
	case commands.IDSave:
		m.save(result.Arg(0))
	case commands.IDLoad:
		m.load(result.Arg(0))
	}
}

func (m *Model) toggleHelp() {
	m.showHelp = !m.showHelp
	if m.showHelp {
		m.refreshHelp()
		m.helpPort.Top()
	}
	m.status = info(statusHelpToggled)
}

func (m *Model) clearConversation() {
	if m.orch.Busy() {
		m.status = warning("Cannot clear while waiting for a response")
		return
	}
	m.conv.Clear()
	m.viewport.ToBottom()
	m.refresh()
	m.status = success(statusCleared)
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// committed returns the history without a pending provisional message.
func (m *Model) committed() []model.Message {
	msgs := m.conv.Messages()
	if m.conv.Pending() && len(msgs) > 0 {
		msgs = msgs[:len(msgs)-1]
	}
	return msgs
}

// save writes the conversation under name, or the default file when name
// is empty.
func (m *Model) save(name string) {
	if name == "" {
		name = storage.DefaultName
	}
	if m.store == nil {
		m.status = failure("Failed to save: " + errNoStore.Error())
		return
	}

	msgs := m.committed()
	path, err := m.store.Save(name, msgs)
	if err != nil {
		m.status = failure("Failed to save: " + err.Error())
		m.logger.Warn("save failed", "kind", Classify(err).String(), "err", err)
		return
	}

	m.status = success("Saved conversation to " + filepath.Base(path))
	m.logger.Info("conversation saved", "file", path, "messages", len(msgs))
}

// load replaces the history with a saved conversation.
func (m *Model) load(name string) {
	if name == "" {
		name = storage.DefaultName
	}
	if m.orch.Busy() {
		m.status = warning("Cannot load while waiting for a response")
		return
	}
	if m.store == nil {
		m.status = failure("Failed to load: " + errNoStore.Error())
		return
	}

	msgs, err := m.store.Load(name)
	if err == nil {
		err = m.conv.Replace(msgs)
	}
	if err != nil {
		m.status = failure("Failed to load: " + err.Error())
		m.logger.Warn("load failed", "kind", Classify(err).String(), "err", err)
		return
	}

	m.viewport.ToBottom()
	m.refresh()
	m.status = success("Loaded conversation from " + filepath.Base(nameWithExt(name)))
	m.logger.Info("conversation loaded", "file", name, "messages", len(msgs))
}

func nameWithExt(name string) string {
	if normalized, err := storage.NormalizeName(name); err == nil {
		return normalized
	}
	return name
}

// =============================================================================
// CLIPBOARD
// =============================================================================

// copyLastResponse copies the last assistant answer to the clipboard.
func (m *Model) copyLastResponse() {
	msg, ok := m.conv.LastOf(model.RoleAssistant)
	if !ok || msg.Content == "" {
		m.status = warning("No response to copy")
		return
	}
	if m.clipboard == nil {
		m.status = failure("Failed to copy: clipboard unavailable")
		return
	}
	if err := m.clipboard(msg.Content); err != nil {
		m.status = failure("Failed to copy: " + err.Error())
		return
	}

	n := len([]rune(msg.Content))
	size := fmt.Sprintf("%d chars", n)
	if n >= 1000 {
		size = fmt.Sprintf("%.1fK chars", float64(n)/1000)
	}
	m.status = success("Copied response to clipboard (" + size + ")")
}
