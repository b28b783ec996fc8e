// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// View renders the browser.
func (model Model) View() string {
	if model.width == 0 || model.height == 0 {
		return "loading…"
	}

	header := model.renderHeader()
	footer := model.renderFooter()

	bodyHeight := model.bodyHeight()
	if bodyHeight == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, header, footer)
	}

	var body string
	if len(model.entries) == 0 {
		body = model.renderEmpty(bodyHeight)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			model.renderList(bodyHeight),
			model.renderDivider(bodyHeight),
			model.renderPreviewPane(bodyHeight),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (model Model) renderHeader() string {
	published := 0
	for _, item := range model.articles {
		if item.Published {
			published++
		}
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("inkstand")
	counts := fmt.Sprintf("%d articles, %d published", len(model.articles), published)
	if model.filter.Input != "" {
		counts = fmt.Sprintf("%d of %s", len(model.entries), counts)
	}
	line := title + "  " + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(counts)
	return ansi.Truncate(line, model.width, "…")
}

func (model Model) renderList(height int) string {
	width := model.listWidth()
	rows := make([]string, 0, height)
	for index := model.offset; index < len(model.entries) && len(rows) < height; index++ {
		rows = append(rows, model.renderRow(index, width))
	}
	for len(rows) < height {
		rows = append(rows, strings.Repeat(" ", width))
	}
	return strings.Join(rows, "\n")
}

// renderRow draws one list row: publish marker, key, title with the
// filter's matched characters highlighted.
func (model Model) renderRow(index, width int) string {
	entry := model.entries[index]
	selected := index == model.cursor

	base := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	if selected {
		base = base.Background(model.theme.SelectedBackground).Foreground(model.theme.SelectedForeground)
		faint = faint.Background(model.theme.SelectedBackground)
	}
	marker := base.Foreground(model.theme.PublishColor(entry.article.Published)).Render(publishMarker(entry.article.Published))
	highlight := base.Background(model.theme.MatchHighlightBackground)

	var title strings.Builder
	matched := make(map[int]bool, len(entry.positions))
	for _, position := range entry.positions {
		matched[position] = true
	}
	for position, r := range []rune(entry.article.DisplayTitle()) {
		if matched[position] {
			title.WriteString(highlight.Render(string(r)))
		} else {
			title.WriteString(base.Render(string(r)))
		}
	}

	row := marker + base.Render(" ") + faint.Render(entry.article.Key) + base.Render(" ") + title.String()
	row = ansi.Truncate(row, width, "…")
	if gap := width - ansi.StringWidth(row); gap > 0 {
		row += base.Render(strings.Repeat(" ", gap))
	}
	return row
}

func publishMarker(published bool) string {
	if published {
		return "●"
	}
	return "○"
}

func (model Model) renderDivider(height int) string {
	style := lipgloss.NewStyle().Foreground(model.theme.BorderColor)
	if model.focus == FocusPreview {
		style = style.Foreground(model.theme.HeaderForeground)
	}
	lines := make([]string, height)
	for index := range lines {
		lines[index] = style.Render(" │")
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderPreviewPane(height int) string {
	content := lipgloss.NewStyle().Width(model.previewWidth()).Height(height).MaxHeight(height).Render(model.preview.View())
	scrollbar := renderScrollbar(model.theme, height,
		model.preview.TotalLineCount(), model.preview.Height, model.preview.YOffset,
		model.focus == FocusPreview)
	return lipgloss.JoinHorizontal(lipgloss.Top, content, scrollbar)
}

func (model Model) renderEmpty(height int) string {
	message := "No articles yet. Create one with: inkstand create --title TITLE"
	if !model.loaded {
		message = "Loading articles…"
	} else if model.filter.Input != "" {
		message = fmt.Sprintf("No articles match %q", model.filter.Input)
	}
	return lipgloss.Place(model.width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(message))
}

func (model Model) renderFooter() string {
	if model.focus == FocusFilter || model.filter.Input != "" {
		prompt := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Render("/")
		line := prompt + model.filter.Input
		if model.focus == FocusFilter {
			line += "█"
		}
		return ansi.Truncate(line, model.width, "…")
	}
	if model.status != "" {
		color := model.theme.FaintText
		if model.statusError {
			color = model.theme.ErrorText
		}
		return ansi.Truncate(lipgloss.NewStyle().Foreground(color).Render(model.status), model.width, "…")
	}

	help := make([]string, 0, 8)
	for _, binding := range model.keys.helpBindings() {
		info := binding.Help()
		help = append(help, info.Key+" "+info.Desc)
	}
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	return ansi.Truncate(style.Render(strings.Join(help, "  ")), model.width, "…")
}

// renderScrollbar draws a one-column track with a thumb proportional to
// the visible share of the content. The thumb spans the full height
// when everything fits.
func renderScrollbar(theme Theme, height, total, visible, offset int, focused bool) string {
	if height <= 0 {
		return ""
	}
	track := lipgloss.NewStyle().Foreground(theme.BorderColor)
	thumb := track
	if focused {
		thumb = lipgloss.NewStyle().Foreground(theme.HeaderForeground)
	}

	thumbSize, thumbOffset := height, 0
	if total > visible && total > 0 {
		thumbSize = max(height*visible/total, 1)
		if scrollable, room := total-visible, height-thumbSize; scrollable > 0 && room > 0 {
			thumbOffset = min(offset*room/scrollable, room)
		}
	}

	lines := make([]string, height)
	for index := range lines {
		if index >= thumbOffset && index < thumbOffset+thumbSize {
			lines[index] = thumb.Render("┃")
		} else {
			lines[index] = track.Render("│")
		}
	}
	return strings.Join(lines, "\n")
}
