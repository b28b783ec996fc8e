// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/inkstand/inkstand/lib/render"
)

// Theme defines the colors of the article browser. All colors are ANSI
// 256-color codes.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Publish state markers.
	Published lipgloss.Color
	Draft     lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color
	ErrorText        lipgloss.Color

	// Background tint for characters matched by the filter.
	MatchHighlightBackground lipgloss.Color

	// Markdown is passed to render.Terminal for the preview pane.
	Markdown render.Palette
}

// PublishColor returns the marker color for a publish state.
func (theme Theme) PublishColor(published bool) lipgloss.Color {
	if published {
		return theme.Published
	}
	return theme.Draft
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	Published: lipgloss.Color("114"), // green
	Draft:     lipgloss.Color("220"), // amber

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),
	ErrorText:        lipgloss.Color("196"),

	MatchHighlightBackground: lipgloss.Color("58"),

	Markdown: render.DefaultPalette,
}
