// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/inkstand/inkstand/lib/article"
)

// fakeSource is an in-memory Source.
type fakeSource struct {
	articles []article.Article
	listErr  error
	toggled  []string
}

func (source *fakeSource) List(context.Context) ([]article.Article, error) {
	if source.listErr != nil {
		return nil, source.listErr
	}
	return slices.Clone(source.articles), nil
}

func (source *fakeSource) TogglePublish(_ context.Context, key string) (bool, error) {
	for index := range source.articles {
		if source.articles[index].Key == key {
			source.articles[index].Published = !source.articles[index].Published
			source.toggled = append(source.toggled, key)
			return source.articles[index].Published, nil
		}
	}
	return false, article.ErrNotFound
}

func testArticles() []article.Article {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []article.Article{
		{Key: "aaaaaa", Title: "Go tips", Content: "# Tips\n\nUse `gofmt`.", Tags: []string{"golang"}, CreateDate: created, EditDate: created},
		{Key: "bbbbbb", Title: "Cooking", Content: "Boil water.", Published: true, CreateDate: created, EditDate: created},
		{Key: "cccccc", Title: "Gardening outdoors", Content: "Dig.", CreateDate: created, EditDate: created},
	}
}

// update applies a message and runs any command it returns, feeding the
// resulting message back in. Quit and batch commands are not followed.
func update(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	next, command := model.Update(message)
	model = next.(Model)
	if command == nil {
		return model
	}
	result := command()
	switch result.(type) {
	case articlesLoadedMsg, publishToggledMsg:
		return update(t, model, result)
	}
	return model
}

func startModel(t *testing.T, source Source) Model {
	t.Helper()
	model := NewModel(context.Background(), source)
	model = update(t, model, model.Init()())
	return update(t, model, tea.WindowSizeMsg{Width: 100, Height: 20})
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_LoadAndNavigate(t *testing.T) {
	model := startModel(t, &fakeSource{articles: testArticles()})

	if got := model.Visible(); !slices.Equal(got, []string{"aaaaaa", "bbbbbb", "cccccc"}) {
		t.Fatalf("Visible() = %v", got)
	}
	selected, ok := model.Selected()
	if !ok || selected.Key != "aaaaaa" {
		t.Fatalf("initial selection = %v, %v", selected.Key, ok)
	}

	model = update(t, model, runes("j"))
	model = update(t, model, runes("j"))
	model = update(t, model, runes("j"))
	if selected, _ := model.Selected(); selected.Key != "cccccc" {
		t.Errorf("cursor should stop at the last row, selected %s", selected.Key)
	}

	model = update(t, model, runes("g"))
	if selected, _ := model.Selected(); selected.Key != "aaaaaa" {
		t.Errorf("home should select the first row, selected %s", selected.Key)
	}

	view := model.View()
	for _, want := range []string{"Go tips", "Cooking", "3 articles, 1 published", "Tips"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_Filter(t *testing.T) {
	model := startModel(t, &fakeSource{articles: testArticles()})

	model = update(t, model, runes("/"))
	if model.Focus() != FocusFilter {
		t.Fatalf("focus = %v, want FocusFilter", model.Focus())
	}
	model = update(t, model, runes("cook"))
	if got := model.Visible(); !slices.Equal(got, []string{"bbbbbb"}) {
		t.Errorf("Visible() after filter = %v", got)
	}
	if selected, _ := model.Selected(); selected.Key != "bbbbbb" {
		t.Errorf("selection should follow the filter, got %s", selected.Key)
	}

	// q types into the filter rather than quitting.
	model = update(t, model, runes("q"))
	if model.Filter().Input != "cookq" {
		t.Errorf("filter input = %q", model.Filter().Input)
	}
	model = update(t, model, tea.KeyMsg{Type: tea.KeyBackspace})

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.Focus() != FocusList || model.Filter().Input != "cook" {
		t.Errorf("enter should keep the query and return to the list: focus %v, input %q",
			model.Focus(), model.Filter().Input)
	}

	model = update(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if got := model.Visible(); len(got) != 3 {
		t.Errorf("esc should clear the filter, visible %v", got)
	}
	if selected, _ := model.Selected(); selected.Key != "bbbbbb" {
		t.Errorf("clearing should keep the selection, got %s", selected.Key)
	}
}

func TestModel_TogglePublish(t *testing.T) {
	source := &fakeSource{articles: testArticles()}
	model := startModel(t, source)

	model = update(t, model, runes("p"))
	if !slices.Equal(source.toggled, []string{"aaaaaa"}) {
		t.Fatalf("toggled = %v", source.toggled)
	}
	if selected, _ := model.Selected(); !selected.Published {
		t.Error("selected article should now be published")
	}
	if !strings.Contains(model.View(), "aaaaaa published") {
		t.Error("status line should report the new state")
	}
	if !strings.Contains(model.View(), "3 articles, 2 published") {
		t.Error("header count should include the toggled article")
	}

	model = update(t, model, runes("p"))
	if selected, _ := model.Selected(); selected.Published {
		t.Error("second toggle should restore draft")
	}
}

func TestModel_ToggleError(t *testing.T) {
	source := &fakeSource{articles: testArticles()}
	model := startModel(t, source)
	source.articles = nil

	model = update(t, model, runes("p"))
	if !strings.Contains(model.View(), "toggling aaaaaa") {
		t.Errorf("view should show the toggle error:\n%s", model.View())
	}
}

func TestModel_LoadError(t *testing.T) {
	model := startModel(t, &fakeSource{listErr: errors.New("store closed")})
	if !strings.Contains(model.View(), "loading articles: store closed") {
		t.Errorf("view should show the load error:\n%s", model.View())
	}
}

func TestModel_Empty(t *testing.T) {
	model := startModel(t, &fakeSource{})
	if _, ok := model.Selected(); ok {
		t.Error("empty list should have no selection")
	}
	model = update(t, model, runes("p"))
	if !strings.Contains(model.View(), "No articles yet") {
		t.Errorf("view should show the empty message:\n%s", model.View())
	}
}

func TestModel_FocusAndQuit(t *testing.T) {
	model := startModel(t, &fakeSource{articles: testArticles()})

	model = update(t, model, tea.KeyMsg{Type: tea.KeyTab})
	if model.Focus() != FocusPreview {
		t.Fatalf("focus = %v, want FocusPreview", model.Focus())
	}
	model = update(t, model, runes("j"))
	if selected, _ := model.Selected(); selected.Key != "aaaaaa" {
		t.Errorf("navigation in the preview should not move the list, selected %s", selected.Key)
	}

	_, command := model.Update(runes("q"))
	if command == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := command().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestRenderScrollbar(t *testing.T) {
	bar := renderScrollbar(DefaultTheme, 4, 8, 4, 4, false)
	lines := strings.Split(bar, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "│") || !strings.Contains(lines[3], "┃") {
		t.Errorf("thumb should sit at the bottom half: %q", lines)
	}
	if renderScrollbar(DefaultTheme, 0, 1, 1, 0, false) != "" {
		t.Error("zero height should render nothing")
	}
}
