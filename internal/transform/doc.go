// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transform turns raw model output into a reasoning segment and a
// sequence of structured blocks ready for styling.
//
// Reasoning is recognized in three notations, tried in this order:
//
//	<thinking>...</thinking>
//	[THINKING]...[/THINKING]
//	🤔 Thinking: ...            (single line)
//
// The remaining text is segmented line by line into headings, paragraphs
// with inline emphasis, list items, fenced code blocks, tables, and rules.
// Nothing in this package returns an error; malformed markup degrades to
// literal text and is reported through Result.Degraded.
package transform
