// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
// Normal-mode and Editing-mode bindings share keys (enter, esc), so the
// handler checks the mode before matching.
type KeyMap struct {
	// Any mode
	ForceQuit key.Binding
	QuickSave key.Binding

	// Normal mode
	Quit           key.Binding
	Edit           key.Binding
	Help           key.Binding
	CloseHelp      key.Binding
	ToggleThinking key.Binding
	Up             key.Binding
	Down           key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
	Home           key.Binding
	End            key.Binding
	Copy           key.Binding

	// Editing mode
	Send     key.Binding
	Newline  key.Binding
	Cancel   key.Binding
	Complete key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
		QuickSave: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("C-s", "quick save"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Edit: key.NewBinding(
			key.WithKeys("i", "enter"),
			key.WithHelp("i/Enter", "start typing"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "h"),
			key.WithHelp("?/h", "toggle help"),
		),
		CloseHelp: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "close help"),
		),
		ToggleThinking: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "show/hide thinking"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("Home/g", "go to top"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("End/G", "go to bottom"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy last answer"),
		),
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("M-Enter/C-j", "new line"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "cancel input"),
		),
		Complete: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "complete command"),
		),
	}
}

// =============================================================================
// HELP TEXT
// =============================================================================

// ShortHelp returns the bindings shown in the compact hint.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Edit, k.Help, k.ToggleThinking, k.Quit}
}

// FullHelp returns bindings grouped as Normal mode, Editing mode.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{
			k.Edit, k.Help, k.CloseHelp, k.ToggleThinking,
			k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End,
			k.Copy, k.QuickSave, k.Quit, k.ForceQuit,
		},
		{
			k.Send, k.Newline, k.Cancel, k.Complete, k.QuickSave, k.ForceQuit,
		},
	}
}
