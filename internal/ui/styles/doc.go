// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the hfchat TUI.

# Color System (colors.go)

All colors are Lip Gloss AdaptiveColor values so the palette follows the
terminal's light or dark background:

  - Cyan - brand color, user labels, headings
  - Emerald - assistant labels, success status
  - Amber - warnings, the loading spinner, inline code
  - Rose - error status
  - Purple - reasoning labels, list markers, the help box

# Theme (theme.go)

NewTheme probes the terminal through termenv once and builds every
lipgloss.Style the renderer needs. Code blocks are highlighted by chroma
using the style named in Theme.CodeTheme.
*/
package styles
