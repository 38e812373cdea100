// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/storage"
)

// =============================================================================
// CONVERSATION BROWSER
// =============================================================================

// convItem adapts a stored conversation to the list component. The
// list's built-in filter covers titles; message-content search goes
// through the storage layer's Search from the CLI.
type convItem struct {
	meta model.ConversationMeta
}

func (i convItem) Title() string { return i.meta.Title }

func (i convItem) Description() string {
	return fmt.Sprintf("%d messages · %s", i.meta.MessageCount, i.meta.UpdatedAt.Format("Jan 2 15:04"))
}

func (i convItem) FilterValue() string { return i.meta.Title }

// loadBrowser fills the conversation browser from storage.
func (m *Model) loadBrowser() error {
	conversations, err := m.store.LoadAll(context.Background(), m.sortOrder)
	if err != nil {
		return err
	}

	items := make([]list.Item, 0, len(conversations))
	for _, conv := range conversations {
		items = append(items, convItem{meta: conv.GetMeta()})
	}

	l := list.New(items, list.NewDefaultDelegate(), m.width, m.height-2)
	l.Title = browserTitle(m.sortOrder)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = browserHelpKeys
	m.browser = l
	return nil
}

func browserTitle(order storage.SortOrder) string {
	if order == storage.SortOldestFirst {
		return "Conversations (oldest first)"
	}
	return "Conversations (newest first)"
}

// toggleSortOrder flips the browser ordering and persists the choice.
func (m *Model) toggleSortOrder() error {
	if m.sortOrder == storage.SortNewestFirst {
		m.sortOrder = storage.SortOldestFirst
	} else {
		m.sortOrder = storage.SortNewestFirst
	}
	if err := m.store.SetPref(context.Background(), storage.PrefSortOrder, string(m.sortOrder)); err != nil {
		return err
	}
	return m.loadBrowser()
}

// selectedConversationID returns the highlighted conversation, or "".
func (m *Model) selectedConversationID() string {
	item, ok := m.browser.SelectedItem().(convItem)
	if !ok {
		return ""
	}
	return item.meta.ID
}
