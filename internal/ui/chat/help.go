// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"

	"github.com/jeranaias/hfchat-tui/internal/commands"
	uistyles "github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// HELP OVERLAY
// =============================================================================

// helpView renders the key and command reference as markdown. Output is
// cached per width.
type helpView struct {
	markdown string
	dark     bool
	width    int
	rendered string
}

func newHelpView(theme *uistyles.Theme, registry *commands.Registry, keys KeyMap) *helpView {
	return &helpView{
		markdown: helpMarkdown(registry, keys),
		dark:     theme.IsDark,
	}
}

// Render returns the help text wrapped to width.
func (h *helpView) Render(width int) string {
	if width == h.width && h.rendered != "" {
		return h.rendered
	}

	style := styles.LightStyle
	if h.dark {
		style = styles.DarkStyle
	}
	out := h.markdown
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err == nil {
		if rendered, err := r.Render(h.markdown); err == nil {
			out = rendered
		}
	}

	h.width = width
	h.rendered = strings.Trim(out, "\n")
	return h.rendered
}

// helpMarkdown builds the reference from the key map and registry, so the
// overlay cannot drift from the actual bindings.
func helpMarkdown(registry *commands.Registry, keys KeyMap) string {
	var sb strings.Builder
	sb.WriteString("# hfchat help\n\n")

	groups := keys.FullHelp()
	writeKeyTable(&sb, "Normal mode", groups[0])
	writeKeyTable(&sb, "Editing mode", groups[1])

	sb.WriteString("## Commands\n\n")
	sb.WriteString("| Command | Aliases | Description |\n|---|---|---|\n")
	for _, cmd := range registry.All() {
		if cmd.Hidden {
			continue
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		sb.WriteString("| `" + usage + "` | " + strings.Join(cmd.Aliases, ", ") + " | " + cmd.Description + " |\n")
	}
	sb.WriteString("\nStart a message with `//` to send a literal leading `/`.\n")
	return sb.String()
}

func writeKeyTable(sb *strings.Builder, title string, bindings []key.Binding) {
	sb.WriteString("## " + title + "\n\n| Key | Action |\n|---|---|\n")
	for _, b := range bindings {
		h := b.Help()
		sb.WriteString("| " + h.Key + " | " + h.Desc + " |\n")
	}
	sb.WriteString("\n")
}
