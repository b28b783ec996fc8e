// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package article is the article lifecycle and versioning engine.
//
// [Service] is the single entry point. It assigns every new article a
// short unique key ([KeyGenerator]), detects which fields an edit
// changes ([Diff]), keeps a bounded most-recent-first list of prior
// revisions ([HistoryManager]), and flips publish state. Persistence
// goes through a [DocumentStore], normally a lib/docstore collection.
//
// # Lifecycle
//
//	Create ──► draft ◄──TogglePublish──► published
//	             │                          │
//	             └────────── Delete ◄───────┘
//
// Edits never change publish state unless the input says so
// explicitly. An edit that changes none of title, content, or tags is
// a no-op: the stored record is returned untouched and
// [EditResult.NoOp] is set.
//
// # Concurrency
//
// Service methods are safe to call concurrently, but operations are
// not composed into transactions. Two concurrent edits of the same key
// both read the same previous record; the later write wins and the
// earlier edit's revision is lost. Callers that need stronger
// guarantees serialize edits per key themselves.
package article
