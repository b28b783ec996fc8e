// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"slices"
	"time"
)

// HistoryManager maintains an article's bounded revision list.
type HistoryManager struct {
	// MaxHistory is the most revisions kept. Zero keeps none.
	MaxHistory int
}

// Record returns a new revision list: a snapshot of previous's mutable
// fields tagged with changed and editDate, followed by previous's
// existing revisions, truncated to MaxHistory. previous is not
// modified.
func (m HistoryManager) Record(previous Article, changed []Field, editDate time.Time) []Revision {
	if m.MaxHistory <= 0 {
		return []Revision{}
	}

	revision := Revision{
		Title:        previous.Title,
		Content:      previous.Content,
		Introduction: previous.Introduction,
		Tags:         normalizeTags(previous.Tags),
		Changed:      slices.Clone(changed),
		EditDate:     editDate,
	}

	keep := min(len(previous.HistoryContent), m.MaxHistory-1)
	history := make([]Revision, 0, keep+1)
	history = append(history, revision)
	history = append(history, previous.HistoryContent[:keep]...)
	return history
}
