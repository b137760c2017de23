// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"

	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// LOADING INDICATOR
// =============================================================================

// Braille is the loading animation. Its frames are advanced by the event
// loop tick rather than by the spinner's own timer, so FPS only documents
// the intended cadence.
var Braille = spinner.Spinner{
	Frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
	FPS:    time.Second / 10,
}

// FrameCount is the number of animation frames.
var FrameCount = len(Braille.Frames)

// LoadingText is shown next to the spinner while a response is pending.
const LoadingText = "Loading response..."

// RenderLoading renders the spinner line for animation frame and elapsed
// wait time.
func RenderLoading(theme *styles.Theme, frame int, elapsed time.Duration) string {
	glyph := Braille.Frames[((frame%FrameCount)+FrameCount)%FrameCount]
	return theme.Spinner.Render(glyph) + " " +
		theme.LoadingText.Render(fmt.Sprintf("%s (%s)", LoadingText, formatElapsed(elapsed)))
}

// formatElapsed formats a duration as whole seconds, or minutes and seconds.
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return fmt.Sprintf("%ds", secs)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}
