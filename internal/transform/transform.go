// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

// Result is the output of Transform.
type Result struct {
	// Reasoning is the extracted reasoning segment, empty when Marker is
	// MarkerNone.
	Reasoning string
	Marker    Marker

	// Body is the answer text with the reasoning segment removed.
	Body   string
	Blocks []Block

	// Degraded is set when malformed markup was rendered as literal text.
	Degraded bool
}

// HasReasoning reports whether a reasoning segment was extracted.
func (r Result) HasReasoning() bool {
	return r.Marker != MarkerNone
}

// Transform extracts the reasoning segment from raw and segments the rest
// into blocks. It is a pure function of its input.
func Transform(raw string) Result {
	reasoning, body, marker := Extract(raw)
	blocks, degraded := Parse(body)
	return Result{
		Reasoning: reasoning,
		Marker:    marker,
		Body:      body,
		Blocks:    blocks,
		Degraded:  degraded,
	}
}
