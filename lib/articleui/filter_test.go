// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"slices"
	"testing"

	"github.com/inkstand/inkstand/lib/article"
)

func filterKeys(entries []listEntry) []string {
	keys := make([]string, len(entries))
	for index, entry := range entries {
		keys[index] = entry.article.Key
	}
	return keys
}

func TestFilterModel_Apply(t *testing.T) {
	articles := []article.Article{
		{Key: "aaaaaa", Title: "Gardening outdoors"},
		{Key: "bbbbbb", Title: "Go tips", Tags: []string{"golang"}},
		{Key: "cccccc", Title: "Cooking", Tags: []string{"food"}},
		{Key: "dddddd", Title: ""},
	}
	slab := newSlab()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty keeps order", "", []string{"aaaaaa", "bbbbbb", "cccccc", "dddddd"}},
		{"best score first", "go", []string{"bbbbbb", "aaaaaa"}},
		{"tag match", "food", []string{"cccccc"}},
		{"key match", "ccc", []string{"cccccc"}},
		{"untitled fallback", "untitled", []string{"dddddd"}},
		{"no match", "zzz", []string{}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			filter := FilterModel{Input: test.input}
			got := filterKeys(filter.Apply(articles, slab))
			if !slices.Equal(got, test.want) {
				t.Errorf("Apply(%q) = %v, want %v", test.input, got, test.want)
			}
		})
	}
}

func TestFilterModel_TitlePositions(t *testing.T) {
	filter := FilterModel{Input: "tips"}
	entries := filter.Apply([]article.Article{{Key: "bbbbbb", Title: "Go tips"}}, newSlab())
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if !slices.Equal(entries[0].positions, []int{3, 4, 5, 6}) {
		t.Errorf("positions = %v, want [3 4 5 6]", entries[0].positions)
	}
}

func TestFilterModel_Editing(t *testing.T) {
	var filter FilterModel
	filter.HandleRune('é')
	filter.HandleRune('t')
	filter.HandleBackspace()
	if filter.Input != "é" {
		t.Errorf("Input = %q, want %q", filter.Input, "é")
	}
	filter.HandleBackspace()
	filter.HandleBackspace()
	if filter.Input != "" {
		t.Errorf("Input = %q, want empty", filter.Input)
	}

	filter.Input = "query"
	filter.Active = true
	filter.Clear()
	if filter.Input != "" || filter.Active {
		t.Errorf("Clear left %+v", filter)
	}
}
