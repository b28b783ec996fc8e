// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package article

import (
	"slices"
	"time"
)

// TypeArticle is the value of the "type" field on every article record.
// It distinguishes articles from other record kinds sharing a store.
const TypeArticle = "article"

// untitled is shown in logs and listings for articles with an empty title.
const untitled = "Untitled Article"

// Field names a mutable article field tracked by change detection.
type Field string

const (
	FieldTitle   Field = "title"
	FieldContent Field = "content"
	FieldTags    Field = "tags"
)

// Article is the persisted content document. Field names in JSON and
// in the store are the camelCase names in the tags.
type Article struct {
	// Key is the six-character identifier assigned at creation. Never
	// changes.
	Key string `json:"key"`

	// Type is always TypeArticle.
	Type string `json:"type"`

	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Introduction string   `json:"introduction"`
	Tags         []string `json:"tags"`

	Published bool `json:"published"`

	// CreateDate is set once by Create.
	CreateDate time.Time `json:"createDate"`

	// EditDate is updated by every edit that changes something.
	EditDate time.Time `json:"editDate"`

	// HistoryContent holds prior revisions, most recent first, never
	// longer than the service's MaxHistory.
	HistoryContent []Revision `json:"historyContent"`
}

// Revision is a snapshot of an article's mutable fields as they were
// before an edit.
type Revision struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Introduction string   `json:"introduction"`
	Tags         []string `json:"tags"`

	// Changed lists the fields that differ between this revision and
	// the version that replaced it.
	Changed []Field `json:"changed"`

	// EditDate is when the replacing edit happened.
	EditDate time.Time `json:"editDate"`
}

// Fields are the caller-supplied content of an article.
type Fields struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Introduction string   `json:"introduction"`
	Tags         []string `json:"tags"`
}

// CreateInput is the input to Service.Create.
type CreateInput struct {
	Fields
}

// EditInput is the input to Service.Edit. Title, content,
// introduction, and tags replace the stored values wholesale.
type EditInput struct {
	Key string `json:"key"`
	Fields

	// CreateDate, when set, must equal the stored creation date; it
	// exists so callers can round-trip a full record.
	CreateDate *time.Time `json:"createDate,omitempty"`

	// Published, when set, replaces the stored publish state.
	Published *bool `json:"published,omitempty"`
}

// EditResult is the outcome of a successful Service.Edit.
type EditResult struct {
	// Article is the stored record after the edit, or the unchanged
	// record when NoOp is set.
	Article Article

	// Changed lists the fields the edit changed. Empty when NoOp.
	Changed []Field

	// NoOp is set when the edit changed none of title, content, or
	// tags and nothing was written.
	NoOp bool
}

// Match is the result of Service.Get.
type Match struct {
	// Articles holds every matching article, possibly none.
	Articles []Article

	// Single points at the only match when there is exactly one.
	Single *Article
}

// Statistics summarizes the collection.
type Statistics struct {
	ArticleCount     int `json:"articleCount"`
	DistinctTagCount int `json:"distinctTagCount"`
}

// Fields returns the article's mutable content.
func (a Article) Fields() Fields {
	return Fields{
		Title:        a.Title,
		Content:      a.Content,
		Introduction: a.Introduction,
		Tags:         slices.Clone(a.Tags),
	}
}

// DisplayTitle returns the title, or "Untitled Article" when empty.
func (a Article) DisplayTitle() string {
	if a.Title == "" {
		return untitled
	}
	return a.Title
}

// normalizeTags returns a copy of tags that is never nil, so stored
// records always carry an array.
func normalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return slices.Clone(tags)
}
