// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the hfchat TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DefaultCodeTheme is the chroma style used for fenced code.
const DefaultCodeTheme = "monokai"

// Theme holds all the styled components for the application.
// It detects the terminal's color capability and adjusts accordingly.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// CodeTheme names the chroma style for code blocks.
	CodeTheme string

	// ==========================================================================
	// FRAME
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style
	Border      lipgloss.Style
	BorderTitle lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	Body           lipgloss.Style
	Reasoning      lipgloss.Style
	ReasoningLabel lipgloss.Style
	Hint           lipgloss.Style

	// ==========================================================================
	// MARKDOWN
	// ==========================================================================

	Heading     lipgloss.Style
	Bold        lipgloss.Style
	Italic      lipgloss.Style
	BoldItalic  lipgloss.Style
	InlineCode  lipgloss.Style
	Link        lipgloss.Style
	LinkURL     lipgloss.Style
	ListMarker  lipgloss.Style
	CodeBorder  lipgloss.Style
	CodeLineNum lipgloss.Style
	TableHeader lipgloss.Style
	TableRule   lipgloss.Style
	Rule        lipgloss.Style

	// ==========================================================================
	// INPUT, STATUS, OVERLAYS
	// ==========================================================================

	InputFocused lipgloss.Style
	InputBlurred lipgloss.Style

	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style

	Spinner     lipgloss.Style
	LoadingText lipgloss.Style

	HelpBox lipgloss.Style
}

// NewTheme creates a theme matched to the current terminal.
func NewTheme() *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
		CodeTheme:    DefaultCodeTheme,
	}

	t.initStyles()
	return t
}

// WithCodeTheme returns the theme with a different chroma style name.
// An empty name keeps the current one.
func (t *Theme) WithCodeTheme(name string) *Theme {
	if name != "" {
		t.CodeTheme = name
	}
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Border = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay)
	t.BorderTitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.UserLabel = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.AssistantLabel = lipgloss.NewStyle().Foreground(Emerald).Bold(true)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Reasoning = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.ReasoningLabel = lipgloss.NewStyle().Foreground(Purple).Bold(true)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

	t.Heading = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.Bold = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)
	t.Italic = lipgloss.NewStyle().Foreground(TextPrimary).Italic(true)
	t.BoldItalic = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true).Italic(true)
	t.InlineCode = lipgloss.NewStyle().Foreground(Amber).Background(SurfaceDim)
	t.Link = lipgloss.NewStyle().Foreground(Blue).Underline(true)
	t.LinkURL = lipgloss.NewStyle().Foreground(TextMuted)
	t.ListMarker = lipgloss.NewStyle().Foreground(Purple)
	t.CodeBorder = lipgloss.NewStyle().Foreground(OverlayDim)
	t.CodeLineNum = lipgloss.NewStyle().Foreground(TextMuted)
	t.TableHeader = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.TableRule = lipgloss.NewStyle().Foreground(OverlayDim)
	t.Rule = lipgloss.NewStyle().Foreground(OverlayDim)

	t.InputFocused = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber)
	t.InputBlurred = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim)

	t.StatusInfo = lipgloss.NewStyle().Foreground(TextSecondary)
	t.StatusSuccess = lipgloss.NewStyle().Foreground(Emerald)
	t.StatusWarning = lipgloss.NewStyle().Foreground(Amber)
	t.StatusError = lipgloss.NewStyle().Foreground(Rose).Bold(true)

	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.LoadingText = lipgloss.NewStyle().Foreground(Amber).Italic(true)

	t.HelpBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)
}
