// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns article markdown into the forms the front ends
// show: HTML for publishing ([HTML]), styled terminal text for `show`
// and the browser preview ([Terminal]), and short plain-text excerpts
// for listings ([Excerpt]).
//
// All three share one goldmark parser configured with the GitHub
// Flavored Markdown extensions, so tables, strikethrough, task lists,
// and autolinks behave the same everywhere.
package render
