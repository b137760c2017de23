// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"
	"testing"
)

// numberedLines builds n lines "1".."n", one message per five lines.
func numberedLines(n int) []Line {
	lines := make([]Line, n)
	for i := range lines {
		lines[i] = Line{Text: strconv.Itoa(i + 1), Message: i / 5}
	}
	return lines
}

func visibleTexts(v *Viewport) []string {
	var out []string
	for _, l := range v.Visible() {
		out = append(out, l.Text)
	}
	return out
}

func TestClampOffset_Invariant(t *testing.T) {
	for total := 0; total <= 30; total++ {
		for height := 0; height <= 12; height++ {
			for offset := -5; offset <= 40; offset++ {
				got := ClampOffset(total, height, offset)
				limit := total - height
				if limit < 0 {
					limit = 0
				}
				if got < 0 || got > limit {
					t.Fatalf("ClampOffset(%d, %d, %d) = %d, want within [0, %d]", total, height, offset, got, limit)
				}
				if offset >= 0 && offset <= limit && got != offset {
					t.Fatalf("ClampOffset(%d, %d, %d) = %d, in-range offsets must be unchanged", total, height, offset, got)
				}
			}
		}
	}
}

func TestViewport_BottomShowsTail(t *testing.T) {
	v := NewViewport(10)
	v.SetLines(numberedLines(25), 5)

	got := visibleTexts(v)
	if len(got) != 10 || got[0] != "16" || got[9] != "25" {
		t.Errorf("Bottom visible = %v, want 16..25", got)
	}
	if v.Indicator() != " [BOTTOM ↓] " {
		t.Errorf("Indicator() = %q", v.Indicator())
	}
}

func TestViewport_TopThenPageDown(t *testing.T) {
	v := NewViewport(10)
	v.SetLines(numberedLines(25), 5)

	v.Top()
	v.PageDown()

	if v.State() != Fixed(10) {
		t.Fatalf("State() = %v, want Fixed(10)", v.State())
	}
	got := visibleTexts(v)
	if got[0] != "11" || got[len(got)-1] != "20" {
		t.Errorf("visible = %v, want 11..20", got)
	}
	if v.Indicator() != " [MSG 3/5] " {
		t.Errorf("Indicator() = %q, want \" [MSG 3/5] \"", v.Indicator())
	}
}

func TestViewport_ScrollOperations(t *testing.T) {
	tests := []struct {
		name string
		ops  func(v *Viewport)
		want ScrollState
	}{
		{"step up from bottom enters fixed", func(v *Viewport) { v.ScrollUp(1) }, Fixed(14)},
		{"page up from bottom", func(v *Viewport) { v.PageUp() }, Fixed(5)},
		{"page up clamps at zero", func(v *Viewport) { v.PageUp(); v.PageUp() }, Fixed(0)},
		{"scroll down in bottom is noop", func(v *Viewport) { v.ScrollDown(3) }, Bottom()},
		{"scroll down stops at max", func(v *Viewport) { v.Top(); v.ScrollDown(100) }, Fixed(15)},
		{"end returns to bottom", func(v *Viewport) { v.Top(); v.ToBottom() }, Bottom()},
		{"up then down", func(v *Viewport) { v.Top(); v.ScrollDown(2); v.ScrollUp(1) }, Fixed(1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := NewViewport(10)
			v.SetLines(numberedLines(25), 5)
			tc.ops(v)
			if v.State() != tc.want {
				t.Errorf("State() = %v, want %v", v.State(), tc.want)
			}
		})
	}
}

func TestViewport_AppendKeepsMode(t *testing.T) {
	v := NewViewport(10)
	v.SetLines(numberedLines(25), 5)

	v.SetLines(numberedLines(30), 6)
	if got := visibleTexts(v); got[9] != "30" {
		t.Errorf("Bottom should follow appended lines, last visible = %s", got[9])
	}

	v.Top()
	v.ScrollDown(3)
	v.SetLines(numberedLines(40), 8)
	if v.State() != Fixed(3) {
		t.Errorf("Fixed offset changed on append: %v", v.State())
	}
}

func TestViewport_ShortContent(t *testing.T) {
	v := NewViewport(10)
	v.SetLines(numberedLines(4), 1)

	if v.MaxOffset() != 0 {
		t.Errorf("MaxOffset() = %d, want 0", v.MaxOffset())
	}
	if got := visibleTexts(v); len(got) != 4 {
		t.Errorf("visible = %v, want all 4 lines", got)
	}

	v.ScrollUp(1)
	if v.State() != Fixed(0) {
		t.Errorf("State() = %v, want Fixed(0)", v.State())
	}

	rows := strings.Split(v.View(), "\n")
	if len(rows) != 10 {
		t.Errorf("View() rows = %d, want padding to 10", len(rows))
	}
}

func TestViewport_ShrinkReclamps(t *testing.T) {
	v := NewViewport(10)
	v.SetLines(numberedLines(25), 5)
	v.Top()
	v.ScrollDown(15)

	v.SetLines(numberedLines(12), 3)
	if v.State() != Fixed(2) {
		t.Errorf("State() = %v, want Fixed(2) after content shrank", v.State())
	}

	v.SetHeight(20)
	if v.State() != Fixed(0) {
		t.Errorf("State() = %v, want Fixed(0) after resize", v.State())
	}
}

func TestViewport_EmptyIndicator(t *testing.T) {
	v := NewViewport(5)
	v.Top()
	if got := v.Indicator(); got != " [MSG 0/0] " {
		t.Errorf("Indicator() = %q", got)
	}
	if v.Visible() != nil {
		t.Error("Visible() on empty viewport should be nil")
	}
}

func TestViewport_AtBottom(t *testing.T) {
	v := NewViewport(10)
	v.SetLines(numberedLines(25), 5)
	if !v.AtBottom() {
		t.Fatal("Bottom mode should report AtBottom")
	}

	v.Top()
	if v.AtBottom() {
		t.Error("Fixed(0) over 25 lines is not at the bottom")
	}

	v.ScrollDown(100)
	if !v.AtBottom() || v.State() != Fixed(15) {
		t.Errorf("after scrolling past the end: AtBottom=%v state=%v, want true Fixed(15)", v.AtBottom(), v.State())
	}

	short := NewViewport(10)
	short.SetLines(numberedLines(3), 1)
	short.Top()
	if !short.AtBottom() {
		t.Error("content shorter than the viewport is always at the bottom")
	}
}
