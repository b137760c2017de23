// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/hfchat-tui/internal/config"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// TickMsg drives polling and the loading animation.
type TickMsg time.Time

// ConfigReloadedMsg is posted by the config watcher after the file
// changed. Err is set when the new file could not be loaded.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// tickCmd schedules the next TickMsg.
func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
