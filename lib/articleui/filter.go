// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/junegunn/fzf/src/util"

	"github.com/inkstand/inkstand/lib/article"
)

// FilterModel holds the filter query typed after /. Matching is fuzzy
// against the display title, the key, and each tag; an article matches
// when any of them does and ranks by its best score.
type FilterModel struct {
	// Input is the current query text.
	Input string

	// Active is true while the filter input has keyboard focus.
	Active bool
}

// listEntry is one visible row: an article and the title positions the
// filter matched, for highlighting.
type listEntry struct {
	article   article.Article
	score     int
	positions []int
}

// HandleRune appends a typed character to the query.
func (filter *FilterModel) HandleRune(r rune) {
	filter.Input += string(r)
}

// HandleBackspace removes the last character of the query.
func (filter *FilterModel) HandleBackspace() {
	if filter.Input == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(filter.Input)
	filter.Input = filter.Input[:len(filter.Input)-size]
}

// Clear resets the query and releases focus.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// Apply returns the articles the query selects. With an empty query
// every article is returned in its given order; otherwise matches are
// ordered by descending score, ties keeping the given order.
func (filter *FilterModel) Apply(articles []article.Article, slab *util.Slab) []listEntry {
	query := strings.TrimSpace(filter.Input)
	entries := make([]listEntry, 0, len(articles))
	if query == "" {
		for _, item := range articles {
			entries = append(entries, listEntry{article: item})
		}
		return entries
	}

	pattern := []rune(strings.ToLower(query))
	for _, item := range articles {
		entry, matched := matchArticle(item, pattern, slab)
		if matched {
			entries = append(entries, entry)
		}
	}
	slices.SortStableFunc(entries, func(a, b listEntry) int {
		return b.score - a.score
	})
	return entries
}

func matchArticle(item article.Article, pattern []rune, slab *util.Slab) (listEntry, bool) {
	entry := listEntry{article: item}
	matched := false

	if title := fuzzyMatch(item.DisplayTitle(), pattern, slab); title.Matched {
		entry.score = title.Score
		entry.positions = title.Positions
		matched = true
	}

	others := append([]string{item.Key}, item.Tags...)
	for _, field := range others {
		result := fuzzyMatch(field, pattern, slab)
		if !result.Matched {
			continue
		}
		if !matched || result.Score > entry.score {
			entry.score = result.Score
			// Positions index the title only; a better key or tag match
			// leaves the title unhighlighted.
			entry.positions = nil
		}
		matched = true
	}
	return entry, matched
}
