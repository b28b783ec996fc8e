// Copyright 2026 The Inkstand Authors
// SPDX-License-Identifier: Apache-2.0

package articleui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the article browser.
type KeyMap struct {
	// Navigation: list movement or preview scrolling depending on
	// focus.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	FocusToggle key.Binding

	FilterActivate key.Binding
	FilterClear    key.Binding

	TogglePublish key.Binding
	Refresh       key.Binding

	Quit key.Binding
}

// DefaultKeyMap uses vim-style navigation alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	FocusToggle: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch pane"),
	),
	FilterActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "filter"),
	),
	FilterClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
	TogglePublish: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "publish/unpublish"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpBindings are the bindings listed in the footer, in order.
func (keys KeyMap) helpBindings() []key.Binding {
	return []key.Binding{
		keys.Down, keys.Up, keys.FocusToggle, keys.FilterActivate,
		keys.TogglePublish, keys.Refresh, keys.Quit,
	}
}
