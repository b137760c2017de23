// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the hfchat TUI.
package components

import (
	"fmt"
	"strings"
)

// PageStep is the number of lines moved by page-up and page-down.
const PageStep = 10

// =============================================================================
// SCROLL STATE
// =============================================================================

// ScrollMode selects how the viewport picks its visible slice.
type ScrollMode int

const (
	// ScrollBottom always shows the tail of the content.
	ScrollBottom ScrollMode = iota
	// ScrollFixed pins the viewport to an explicit line offset.
	ScrollFixed
)

// ScrollState is either Bottom or Fixed(Offset). Offset is meaningful only
// in ScrollFixed mode.
type ScrollState struct {
	Mode   ScrollMode
	Offset int
}

// Bottom returns the auto-following scroll state.
func Bottom() ScrollState {
	return ScrollState{Mode: ScrollBottom}
}

// Fixed returns a scroll state pinned to offset.
func Fixed(offset int) ScrollState {
	return ScrollState{Mode: ScrollFixed, Offset: offset}
}

// String implements fmt.Stringer.
func (s ScrollState) String() string {
	if s.Mode == ScrollBottom {
		return "Bottom"
	}
	return fmt.Sprintf("Fixed(%d)", s.Offset)
}

// ClampOffset limits offset to [0, max(0, total-height)].
func ClampOffset(total, height, offset int) int {
	limit := maxInt0(0, total-height)
	if offset > limit {
		return limit
	}
	if offset < 0 {
		return 0
	}
	return offset
}

// =============================================================================
// VIEWPORT
// =============================================================================

// Line is one rendered display line, tagged with the index of the message
// it came from.
type Line struct {
	Text    string
	Message int
}

// Viewport maps an unbounded sequence of display lines onto a fixed number
// of terminal rows.
type Viewport struct {
	lines    []Line
	messages int
	height   int
	state    ScrollState
}

// NewViewport creates an empty viewport in Bottom mode.
func NewViewport(height int) *Viewport {
	return &Viewport{height: maxInt0(0, height), state: Bottom()}
}

// SetLines replaces the rendered content. messages is the total message
// count used by the position indicator. Bottom mode keeps following the
// tail; a Fixed offset is preserved, only re-clamped.
func (v *Viewport) SetLines(lines []Line, messages int) {
	v.lines = lines
	v.messages = messages
	v.clamp()
}

// SetHeight updates the number of visible rows.
func (v *Viewport) SetHeight(height int) {
	v.height = maxInt0(0, height)
	v.clamp()
}

// Height returns the number of visible rows.
func (v *Viewport) Height() int { return v.height }

// TotalLines returns the number of content lines.
func (v *Viewport) TotalLines() int { return len(v.lines) }

// State returns the current scroll state.
func (v *Viewport) State() ScrollState { return v.state }

// SetState replaces the scroll state, clamping a Fixed offset.
func (v *Viewport) SetState(s ScrollState) {
	v.state = s
	v.clamp()
}

// MaxOffset returns the largest valid offset for the current content.
func (v *Viewport) MaxOffset() int {
	return maxInt0(0, len(v.lines)-v.height)
}

// Offset returns the index of the first visible line.
func (v *Viewport) Offset() int {
	if v.state.Mode == ScrollBottom {
		return v.MaxOffset()
	}
	return v.state.Offset
}

func (v *Viewport) clamp() {
	if v.state.Mode == ScrollFixed {
		v.state.Offset = ClampOffset(len(v.lines), v.height, v.state.Offset)
	}
}

// =============================================================================
// SCROLL OPERATIONS
// =============================================================================

// ScrollUp moves n lines toward the top. The first upward step from Bottom
// switches to Fixed.
func (v *Viewport) ScrollUp(n int) {
	v.state = Fixed(v.Offset() - n)
	v.clamp()
}

// ScrollDown moves n lines toward the bottom. It is a no-op in Bottom mode;
// in Fixed mode it stops at the last page without re-entering Bottom.
func (v *Viewport) ScrollDown(n int) {
	if v.state.Mode == ScrollBottom {
		return
	}
	v.state.Offset += n
	v.clamp()
}

// PageUp scrolls up by PageStep lines.
func (v *Viewport) PageUp() { v.ScrollUp(PageStep) }

// PageDown scrolls down by PageStep lines.
func (v *Viewport) PageDown() { v.ScrollDown(PageStep) }

// Top pins the viewport to the first line.
func (v *Viewport) Top() { v.state = Fixed(0) }

// ToBottom returns to auto-following mode.
func (v *Viewport) ToBottom() { v.state = Bottom() }

// AtBottom reports whether the tail of the content is visible.
func (v *Viewport) AtBottom() bool {
	return v.state.Mode == ScrollBottom || v.state.Offset >= v.MaxOffset()
}

// =============================================================================
// RENDERING
// =============================================================================

// Visible returns the slice of lines currently on screen.
func (v *Viewport) Visible() []Line {
	start := v.Offset()
	end := start + v.height
	if end > len(v.lines) {
		end = len(v.lines)
	}
	if start >= end {
		return nil
	}
	return v.lines[start:end]
}

// Indicator describes the scroll position for the message area title.
func (v *Viewport) Indicator() string {
	if v.state.Mode == ScrollBottom {
		return " [BOTTOM ↓] "
	}
	current := 0
	if off := v.Offset(); off < len(v.lines) {
		current = v.lines[off].Message + 1
	}
	return fmt.Sprintf(" [MSG %d/%d] ", current, v.messages)
}

// View joins the visible lines, padding with empty rows up to the height.
func (v *Viewport) View() string {
	visible := v.Visible()
	rows := make([]string, 0, v.height)
	for _, l := range visible {
		rows = append(rows, l.Text)
	}
	for len(rows) < v.height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

func maxInt0(a, b int) int {
	if a > b {
		return a
	}
	return b
}
