// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the rendering pieces of the hfchat chat screen.

# Components

MessageRenderer (message.go) - Turns a conversation into styled, wrapped lines.
CodeBlock (codeblock.go) - Syntax-highlighted code blocks using Chroma.
Viewport (viewport.go) - Scrollable window over the rendered lines with
bottom-anchored or fixed positioning.
RenderLoading (spinner.go) - The Braille spinner line shown while waiting.

Components are plain values rather than Bubble Tea models; the chat model
owns input handling and calls into them from Update and View:

	r := components.NewMessageRenderer(styles.NewTheme())
	r.SetWidth(78)
	vp.SetLines(r.Render(conv.Messages()), conv.Len())
	view := vp.View()
*/
package components
