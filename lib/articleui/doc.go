// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

// Package articleui implements the interactive article browser behind
// "inkstand browse".
//
// The browser is a bubbletea program with two panes: the article list
// on the left and a rendered preview of the selected article on the
// right. Pressing / filters the list by fuzzy match against titles,
// keys, and tags (fzf's matching algorithm, case-insensitive). The
// selected article's publish state can be toggled in place.
//
// All data access goes through a [Source], which *article.Service
// satisfies. Source calls run as tea.Cmds off the update loop; their
// results come back as messages, so Update never blocks on the store.
package articleui
