// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"slices"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestHistoryRecordPrependsSnapshot(t *testing.T) {
	older := Revision{Title: "v0", Tags: []string{}, EditDate: epoch}
	previous := Article{
		Key:            "abc123",
		Title:          "v1",
		Content:        "body",
		Introduction:   "intro",
		Tags:           []string{"go"},
		HistoryContent: []Revision{older},
	}

	history := HistoryManager{MaxHistory: 5}.Record(previous, []Field{FieldTitle}, epoch.Add(time.Hour))

	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	head := history[0]
	if head.Title != "v1" || head.Content != "body" || head.Introduction != "intro" {
		t.Errorf("head = %+v, want snapshot of previous", head)
	}
	if !slices.Equal(head.Tags, []string{"go"}) {
		t.Errorf("head.Tags = %v, want [go]", head.Tags)
	}
	if !slices.Equal(head.Changed, []Field{FieldTitle}) {
		t.Errorf("head.Changed = %v, want [title]", head.Changed)
	}
	if !head.EditDate.Equal(epoch.Add(time.Hour)) {
		t.Errorf("head.EditDate = %v, want %v", head.EditDate, epoch.Add(time.Hour))
	}
	if history[1].Title != "v0" {
		t.Errorf("history[1].Title = %q, want v0", history[1].Title)
	}
}

func TestHistoryRecordTruncates(t *testing.T) {
	var previous Article
	for i := range 5 {
		previous.HistoryContent = append(previous.HistoryContent, Revision{Title: string(rune('a' + i))})
	}

	tests := []struct {
		max    int
		titles []string
	}{
		{0, []string{}},
		{1, []string{"new"}},
		{3, []string{"new", "a", "b"}},
		{6, []string{"new", "a", "b", "c", "d", "e"}},
		{10, []string{"new", "a", "b", "c", "d", "e"}},
	}
	previous.Title = "new"
	for _, test := range tests {
		history := HistoryManager{MaxHistory: test.max}.Record(previous, []Field{FieldTitle}, epoch)
		titles := make([]string, 0, len(history))
		for _, revision := range history {
			titles = append(titles, revision.Title)
		}
		if !slices.Equal(titles, test.titles) {
			t.Errorf("MaxHistory=%d: titles = %v, want %v", test.max, titles, test.titles)
		}
	}
}

func TestHistoryRecordDoesNotMutatePrevious(t *testing.T) {
	existing := make([]Revision, 2, 8)
	existing[0].Title = "first"
	existing[1].Title = "second"
	previous := Article{Title: "current", Tags: []string{"go"}, HistoryContent: existing}
	changed := []Field{FieldTags}

	history := HistoryManager{MaxHistory: 8}.Record(previous, changed, epoch)
	history[0].Tags[0] = "mutated"
	history[0].Changed[0] = FieldTitle
	history[1].Title = "mutated"

	if previous.Tags[0] != "go" {
		t.Errorf("previous.Tags mutated to %v", previous.Tags)
	}
	if changed[0] != FieldTags {
		t.Errorf("changed mutated to %v", changed)
	}
	if existing[0].Title != "first" || existing[1].Title != "second" {
		t.Errorf("previous.HistoryContent mutated to %+v", existing)
	}
	if len(previous.HistoryContent) != 2 {
		t.Errorf("len(previous.HistoryContent) = %d, want 2", len(previous.HistoryContent))
	}
}
