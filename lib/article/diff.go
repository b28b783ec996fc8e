// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import "slices"

// Diff reports which of title, content, and tags differ between
// previous and next, in that order. Introduction is not tracked.
//
// Tags count as changed when the lengths differ, or when next holds a
// tag that previous does not. Equal-length lists that differ only in
// order are unchanged. Duplicates are not counted: replacing [a b]
// with [a a] is unchanged, replacing [a a] with [a b] is changed.
func Diff(previous, next Fields) []Field {
	var changed []Field
	if previous.Title != next.Title {
		changed = append(changed, FieldTitle)
	}
	if previous.Content != next.Content {
		changed = append(changed, FieldContent)
	}
	if tagsChanged(previous.Tags, next.Tags) {
		changed = append(changed, FieldTags)
	}
	return changed
}

func tagsChanged(previous, next []string) bool {
	if len(previous) != len(next) {
		return true
	}
	for _, tag := range next {
		if !slices.Contains(previous, tag) {
			return true
		}
	}
	return false
}
