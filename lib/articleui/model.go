// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/junegunn/fzf/src/util"

	"github.com/inkstand/inkstand/lib/article"
	"github.com/inkstand/inkstand/lib/render"
)

// Source is the data the browser reads and mutates. *article.Service
// satisfies it.
type Source interface {
	List(ctx context.Context) ([]article.Article, error)
	TogglePublish(ctx context.Context, key string) (bool, error)
}

// FocusRegion identifies which part of the browser receives keys.
type FocusRegion int

const (
	// FocusList means navigation keys move the list cursor.
	FocusList FocusRegion = iota
	// FocusPreview means navigation keys scroll the preview.
	FocusPreview
	// FocusFilter means keystrokes edit the filter query.
	FocusFilter
)

// articlesLoadedMsg carries the result of Source.List.
type articlesLoadedMsg struct {
	articles []article.Article
	err      error
}

// publishToggledMsg carries the result of Source.TogglePublish.
type publishToggledMsg struct {
	key       string
	published bool
	err       error
}

// Model is the bubbletea model of the article browser.
type Model struct {
	ctx    context.Context
	source Source
	theme  Theme
	keys   KeyMap

	articles []article.Article
	entries  []listEntry
	cursor   int
	offset   int
	loaded   bool

	focus  FocusRegion
	filter FilterModel
	slab   *util.Slab

	preview       viewport.Model
	previewKey    string
	renderedWidth int

	width  int
	height int

	status      string
	statusError bool
}

// NewModel creates a browser over source. ctx bounds every source
// call the browser makes.
func NewModel(ctx context.Context, source Source) Model {
	return Model{
		ctx:     ctx,
		source:  source,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap,
		slab:    newSlab(),
		preview: viewport.New(0, 0),
	}
}

// Run starts the browser on the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, source Source, options ...tea.ProgramOption) error {
	options = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, options...)
	if _, err := tea.NewProgram(NewModel(ctx, source), options...).Run(); err != nil {
		return fmt.Errorf("running article browser: %w", err)
	}
	return nil
}

// Init loads the article list.
func (model Model) Init() tea.Cmd {
	return model.loadArticles()
}

func (model Model) loadArticles() tea.Cmd {
	ctx, source := model.ctx, model.source
	return func() tea.Msg {
		articles, err := source.List(ctx)
		return articlesLoadedMsg{articles: articles, err: err}
	}
}

func (model Model) togglePublish(key string) tea.Cmd {
	ctx, source := model.ctx, model.source
	return func() tea.Msg {
		published, err := source.TogglePublish(ctx, key)
		return publishToggledMsg{key: key, published: published, err: err}
	}
}

// Update handles messages.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.updatePaneSizes()
		model.ensureCursorVisible()
		model.syncPreview()
		return model, nil

	case articlesLoadedMsg:
		if message.err != nil {
			model.setError(fmt.Sprintf("loading articles: %v", message.err))
			return model, nil
		}
		model.articles = message.articles
		model.loaded = true
		model.clearStatus()
		model.applyFilter()
		return model, nil

	case publishToggledMsg:
		if message.err != nil {
			model.setError(fmt.Sprintf("toggling %s: %v", message.key, message.err))
			return model, nil
		}
		model.setPublished(message.key, message.published)
		state := "unpublished"
		if message.published {
			state = "published"
		}
		model.status = fmt.Sprintf("%s %s", message.key, state)
		model.statusError = false
		return model, nil

	case tea.KeyMsg:
		if model.focus == FocusFilter {
			return model.handleFilterKeys(message)
		}
		return model.handleKeys(message)
	}
	return model, nil
}

func (model Model) handleKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterActivate):
		model.filter.Active = true
		model.focus = FocusFilter
		return model, nil

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		}
		return model, nil

	case key.Matches(message, model.keys.FocusToggle):
		if model.focus == FocusList {
			model.focus = FocusPreview
		} else {
			model.focus = FocusList
		}
		return model, nil

	case key.Matches(message, model.keys.TogglePublish):
		selected, ok := model.Selected()
		if !ok {
			return model, nil
		}
		return model, model.togglePublish(selected.Key)

	case key.Matches(message, model.keys.Refresh):
		return model, model.loadArticles()
	}

	if model.focus == FocusPreview {
		model.handlePreviewKeys(message)
	} else {
		model.handleListKeys(message)
	}
	return model, nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit
	case tea.KeyEsc:
		model.filter.Clear()
		model.focus = FocusList
	case tea.KeyEnter:
		model.filter.Active = false
		model.focus = FocusList
		return model, nil
	case tea.KeyBackspace:
		model.filter.HandleBackspace()
	case tea.KeySpace:
		model.filter.HandleRune(' ')
	case tea.KeyRunes:
		for _, r := range message.Runes {
			model.filter.HandleRune(r)
		}
	default:
		return model, nil
	}
	model.applyFilter()
	return model, nil
}

func (model *Model) handleListKeys(message tea.KeyMsg) {
	page := max(model.listHeight()-1, 1)
	switch {
	case key.Matches(message, model.keys.Up):
		model.moveCursor(model.cursor - 1)
	case key.Matches(message, model.keys.Down):
		model.moveCursor(model.cursor + 1)
	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(model.cursor - page)
	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(model.cursor + page)
	case key.Matches(message, model.keys.Home):
		model.moveCursor(0)
	case key.Matches(message, model.keys.End):
		model.moveCursor(len(model.entries) - 1)
	}
}

func (model *Model) handlePreviewKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.preview.LineUp(1)
	case key.Matches(message, model.keys.Down):
		model.preview.LineDown(1)
	case key.Matches(message, model.keys.PageUp):
		model.preview.HalfViewUp()
	case key.Matches(message, model.keys.PageDown):
		model.preview.HalfViewDown()
	case key.Matches(message, model.keys.Home):
		model.preview.GotoTop()
	case key.Matches(message, model.keys.End):
		model.preview.GotoBottom()
	}
}

// Selected returns the article under the cursor.
func (model Model) Selected() (article.Article, bool) {
	if model.cursor < 0 || model.cursor >= len(model.entries) {
		return article.Article{}, false
	}
	return model.entries[model.cursor].article, true
}

// Focus returns the region receiving keys.
func (model Model) Focus() FocusRegion {
	return model.focus
}

// Filter returns the current filter state.
func (model Model) Filter() FilterModel {
	return model.filter
}

// Visible returns the keys of the listed articles, in display order.
func (model Model) Visible() []string {
	keys := make([]string, len(model.entries))
	for index, entry := range model.entries {
		keys[index] = entry.article.Key
	}
	return keys
}

// applyFilter rebuilds the visible entries and keeps the cursor on the
// same article when it is still listed.
func (model *Model) applyFilter() {
	selected, hadSelection := model.Selected()
	model.entries = model.filter.Apply(model.articles, model.slab)

	model.cursor = 0
	if hadSelection {
		for index, entry := range model.entries {
			if entry.article.Key == selected.Key {
				model.cursor = index
				break
			}
		}
	}
	model.offset = 0
	model.ensureCursorVisible()
	model.syncPreview()
}

func (model *Model) setPublished(articleKey string, published bool) {
	for index := range model.articles {
		if model.articles[index].Key == articleKey {
			model.articles[index].Published = published
		}
	}
	for index := range model.entries {
		if model.entries[index].article.Key == articleKey {
			model.entries[index].article.Published = published
		}
	}
	if model.previewKey == articleKey {
		model.previewKey = ""
		model.syncPreview()
	}
}

func (model *Model) moveCursor(position int) {
	if len(model.entries) == 0 {
		model.cursor = 0
		return
	}
	model.cursor = min(max(position, 0), len(model.entries)-1)
	model.ensureCursorVisible()
	model.syncPreview()
}

func (model *Model) ensureCursorVisible() {
	height := model.listHeight()
	if height <= 0 {
		return
	}
	if model.cursor < model.offset {
		model.offset = model.cursor
	}
	if model.cursor >= model.offset+height {
		model.offset = model.cursor - height + 1
	}
}

func (model *Model) setError(status string) {
	model.status = status
	model.statusError = true
}

func (model *Model) clearStatus() {
	model.status = ""
	model.statusError = false
}

// Layout: one header row, the panes, one footer row.
func (model Model) bodyHeight() int {
	return max(model.height-2, 0)
}

func (model Model) listHeight() int {
	return model.bodyHeight()
}

func (model Model) listWidth() int {
	return max(model.width*2/5, 20)
}

// previewWidth excludes the divider and the scrollbar column.
func (model Model) previewWidth() int {
	return max(model.width-model.listWidth()-3, 10)
}

func (model *Model) updatePaneSizes() {
	model.preview.Width = model.previewWidth()
	model.preview.Height = model.bodyHeight()
}

// syncPreview re-renders the preview when the selection or its width
// changed.
func (model *Model) syncPreview() {
	selected, ok := model.Selected()
	if !ok {
		model.previewKey = ""
		model.preview.SetContent("")
		return
	}
	width := model.previewWidth()
	if selected.Key == model.previewKey && width == model.renderedWidth {
		return
	}
	model.previewKey = selected.Key
	model.renderedWidth = width
	model.preview.SetContent(model.renderPreview(selected, width))
	model.preview.GotoTop()
}

func (model Model) renderPreview(item article.Article, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	state := lipgloss.NewStyle().Foreground(model.theme.PublishColor(item.Published))

	var builder strings.Builder
	builder.WriteString(title.Render(ansi.Wordwrap(item.DisplayTitle(), width, "")))
	builder.WriteString("\n")

	meta := []string{item.Key, state.Render(publishLabel(item.Published))}
	if !item.CreateDate.IsZero() {
		meta = append(meta, "created "+item.CreateDate.Local().Format("2006-01-02 15:04"))
	}
	if !item.EditDate.IsZero() && !item.EditDate.Equal(item.CreateDate) {
		meta = append(meta, "edited "+item.EditDate.Local().Format("2006-01-02 15:04"))
	}
	builder.WriteString(faint.Render(strings.Join(meta, " · ")))
	builder.WriteString("\n")

	if len(item.Tags) > 0 {
		tags := make([]string, len(item.Tags))
		for index, tag := range item.Tags {
			tags[index] = "#" + tag
		}
		builder.WriteString(faint.Render(ansi.Wordwrap(strings.Join(tags, " "), width, "")))
		builder.WriteString("\n")
	}

	if item.Introduction != "" {
		builder.WriteString("\n")
		builder.WriteString(faint.Italic(true).Render(ansi.Wordwrap(item.Introduction, width, "")))
		builder.WriteString("\n")
	}

	if body := render.Terminal(item.Content, render.TerminalOptions{
		Width:   width,
		Palette: model.theme.Markdown,
	}); body != "" {
		builder.WriteString("\n")
		builder.WriteString(body)
	}
	return builder.String()
}

func publishLabel(published bool) string {
	if published {
		return "published"
	}
	return "draft"
}
