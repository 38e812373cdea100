// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the chat screen key bindings.
type keyMap struct {
	Send            key.Binding
	Cancel          key.Binding
	NewChat         key.Binding
	PickModel       key.Binding
	Browse          key.Binding
	ToggleReasoning key.Binding
	ExpandReasoning key.Binding
	Quit            key.Binding
}

var keys = keyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "send"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel response"),
	),
	NewChat: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "new chat"),
	),
	PickModel: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "pick model"),
	),
	Browse: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "conversations"),
	),
	ToggleReasoning: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "reasoning mode"),
	),
	ExpandReasoning: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "show reasoning"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// browserKeyMap defines extra bindings inside the conversation browser.
type browserKeyMap struct {
	Delete    key.Binding
	DeleteAll key.Binding
	Sort      key.Binding
}

var browserKeys = browserKeyMap{
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete"),
	),
	DeleteAll: key.NewBinding(
		key.WithKeys("X"),
		key.WithHelp("X", "delete all others"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort order"),
	),
}

// browserHelpKeys surfaces the browser bindings in the list help line.
func browserHelpKeys() []key.Binding {
	return []key.Binding{browserKeys.Delete, browserKeys.DeleteAll, browserKeys.Sort}
}
