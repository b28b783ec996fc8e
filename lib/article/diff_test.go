// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"slices"
	"testing"
)

func TestDiff(t *testing.T) {
	base := Fields{Title: "A", Content: "x", Introduction: "intro", Tags: []string{"go", "rust"}}

	tests := []struct {
		name string
		next Fields
		want []Field
	}{
		{"identical", base, nil},
		{"introduction only", Fields{Title: "A", Content: "x", Introduction: "other", Tags: []string{"go", "rust"}}, nil},
		{"title", Fields{Title: "B", Content: "x", Tags: []string{"go", "rust"}}, []Field{FieldTitle}},
		{"content", Fields{Title: "A", Content: "y", Tags: []string{"go", "rust"}}, []Field{FieldContent}},
		{"tags reordered", Fields{Title: "A", Content: "x", Tags: []string{"rust", "go"}}, nil},
		{"tag added", Fields{Title: "A", Content: "x", Tags: []string{"go", "rust", "zig"}}, []Field{FieldTags}},
		{"tag removed", Fields{Title: "A", Content: "x", Tags: []string{"go"}}, []Field{FieldTags}},
		{"tag replaced", Fields{Title: "A", Content: "x", Tags: []string{"go", "zig"}}, []Field{FieldTags}},
		{"all fields in order", Fields{Title: "B", Content: "y", Tags: nil}, []Field{FieldTitle, FieldContent, FieldTags}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Diff(base, test.next)
			if !slices.Equal(got, test.want) {
				t.Errorf("Diff = %v, want %v", got, test.want)
			}
		})
	}
}

func TestDiffTagRuleIsAsymmetric(t *testing.T) {
	// Only tags present in the new list are looked up in the old one, so
	// a duplicate in the new list can hide a removal.
	withDuplicates := Fields{Tags: []string{"a", "a"}}
	distinct := Fields{Tags: []string{"a", "b"}}

	if got := Diff(distinct, withDuplicates); len(got) != 0 {
		t.Errorf("Diff([a b] -> [a a]) = %v, want unchanged", got)
	}
	if got := Diff(withDuplicates, distinct); !slices.Equal(got, []Field{FieldTags}) {
		t.Errorf("Diff([a a] -> [a b]) = %v, want [tags]", got)
	}
}

func TestDiffNilAndEmptyTagsAreEqual(t *testing.T) {
	if got := Diff(Fields{Tags: nil}, Fields{Tags: []string{}}); len(got) != 0 {
		t.Errorf("Diff(nil -> []) = %v, want unchanged", got)
	}
}
