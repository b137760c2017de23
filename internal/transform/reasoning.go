// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

import (
	"regexp"
	"strings"
)

// =============================================================================
// REASONING MARKERS
// =============================================================================

// Marker identifies which reasoning notation a response used.
type Marker int

const (
	// MarkerNone means no reasoning segment was found.
	MarkerNone Marker = iota
	// MarkerXML is <thinking>...</thinking>.
	MarkerXML
	// MarkerBracket is [THINKING]...[/THINKING].
	MarkerBracket
	// MarkerEmoji is a single "🤔 Thinking: ..." line.
	MarkerEmoji
)

// String returns the marker name.
func (m Marker) String() string {
	switch m {
	case MarkerXML:
		return "xml"
	case MarkerBracket:
		return "bracket"
	case MarkerEmoji:
		return "emoji"
	default:
		return "none"
	}
}

const emojiPrefix = "🤔 Thinking:"

// Patterns are tried in this order; the first kind that matches anywhere in
// the text wins, regardless of position.
var reasoningPatterns = []struct {
	marker  Marker
	pattern *regexp.Regexp
}{
	{MarkerXML, regexp.MustCompile(`(?s)<thinking>(.*?)</thinking>`)},
	{MarkerBracket, regexp.MustCompile(`(?s)\[THINKING\](.*?)\[/THINKING\]`)},
	{MarkerEmoji, regexp.MustCompile(`(?m)^[ \t]*🤔[ \t]*Thinking:([^\n]*)$`)},
}

// Extract splits raw model output into a reasoning segment and the remaining
// answer text. Only the first occurrence of the highest-priority marker kind
// is extracted, and an empty segment still strips its marker. When no marker
// is present, or removing it would leave no answer at all, the whole text is
// returned as the body with MarkerNone.
//
// Extract never fails.
func Extract(raw string) (reasoning, body string, marker Marker) {
	for _, p := range reasoningPatterns {
		loc := p.pattern.FindStringSubmatchIndex(raw)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])
		if rest == "" {
			break
		}
		return strings.TrimSpace(raw[loc[2]:loc[3]]), rest, p.marker
	}
	return "", raw, MarkerNone
}

// Embed re-wraps a reasoning segment in the notation of marker and prepends
// it to body. Extract(Embed(m, r, b)) yields r again for any trimmed r that
// does not contain the marker's closing token (or a newline, for the emoji
// form) and any non-empty body.
func Embed(marker Marker, reasoning, body string) string {
	switch marker {
	case MarkerXML:
		return "<thinking>" + reasoning + "</thinking>\n\n" + body
	case MarkerBracket:
		return "[THINKING]" + reasoning + "[/THINKING]\n\n" + body
	case MarkerEmoji:
		return emojiPrefix + " " + reasoning + "\n\n" + body
	default:
		return body
	}
}
