// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// RenderCodeBlock renders fenced code as a bordered, line-numbered block:
//
//	╭─ go
//	│  1 package main
//	╰─
//
// Lines wider than width are truncated rather than wrapped.
func RenderCodeBlock(theme *styles.Theme, lang string, code []string, width int) []string {
	label := lang
	if label == "" {
		label = "code"
	}

	highlighted := highlightLines(strings.Join(code, "\n"), lang, theme)
	if len(code) == 0 {
		highlighted = []string{""}
	}
	numWidth := len(fmt.Sprint(len(highlighted)))
	if numWidth < 2 {
		numWidth = 2
	}

	clip := lipgloss.NewStyle().MaxWidth(maxInt0(1, width))
	out := make([]string, 0, len(highlighted)+2)
	out = append(out, theme.CodeBorder.Render("╭─ "+label))
	for i, line := range highlighted {
		prefix := theme.CodeBorder.Render("│ ") +
			theme.CodeLineNum.Render(fmt.Sprintf("%*d ", numWidth, i+1))
		out = append(out, clip.Render(prefix+line))
	}
	out = append(out, theme.CodeBorder.Render("╰─"))
	return out
}

// highlightLines applies chroma highlighting for the terminal's color
// profile and splits the result into lines. Plain-text terminals and
// highlighting failures get the code back unchanged.
func highlightLines(code, language string, theme *styles.Theme) []string {
	plain := strings.Split(code, "\n")

	formatterName := formatterFor(theme.ColorProfile)
	if formatterName == "" {
		return plain
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(theme.CodeTheme)
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get(formatterName)
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return plain
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != len(plain) {
		return plain
	}
	return lines
}

func formatterFor(profile termenv.Profile) string {
	switch profile {
	case termenv.TrueColor:
		return "terminal16m"
	case termenv.ANSI256:
		return "terminal256"
	case termenv.ANSI:
		return "terminal16"
	default:
		return ""
	}
}
