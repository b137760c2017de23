// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

func TestRenderLoading(t *testing.T) {
	theme := styles.NewTheme()

	tests := []struct {
		name    string
		frame   int
		elapsed time.Duration
		glyph   string
		clock   string
	}{
		{"first frame", 0, 0, "⣾", "(0s)"},
		{"wraps", FrameCount + 1, 1500 * time.Millisecond, "⣽", "(1s)"},
		{"negative frame", -1, 59 * time.Second, "⣷", "(59s)"},
		{"minutes", 3, 125 * time.Second, "⢿", "(2m05s)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := RenderLoading(theme, tc.frame, tc.elapsed)
			if !strings.Contains(got, tc.glyph) {
				t.Errorf("RenderLoading() = %q, want glyph %q", got, tc.glyph)
			}
			if !strings.Contains(got, LoadingText) {
				t.Errorf("RenderLoading() = %q, missing %q", got, LoadingText)
			}
			if !strings.Contains(got, tc.clock) {
				t.Errorf("RenderLoading() = %q, want elapsed %q", got, tc.clock)
			}
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := map[time.Duration]string{
		0:                      "0s",
		999 * time.Millisecond: "0s",
		3 * time.Second:        "3s",
		75 * time.Second:       "1m15s",
		605 * time.Second:      "10m05s",
	}
	for d, want := range tests {
		if got := formatElapsed(d); got != want {
			t.Errorf("formatElapsed(%s) = %q, want %q", d, got, want)
		}
	}
}

func TestBraille_FrameCount(t *testing.T) {
	if FrameCount != 8 {
		t.Errorf("FrameCount = %d, want 8", FrameCount)
	}
}
