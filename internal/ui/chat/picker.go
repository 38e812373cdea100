// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/jeranaias/openchat-tui/internal/catalog"
)

// =============================================================================
// MODEL PICKER
// =============================================================================

// modelItem adapts a catalog entry to the list component.
type modelItem struct {
	info catalog.ModelInfo
}

func (i modelItem) Title() string { return i.info.Name }

func (i modelItem) Description() string {
	desc := fmt.Sprintf("%s · %dK context · %s", i.info.ID, i.info.ContextSize/1024, i.info.Category)
	if i.info.Capabilities.Reasoning {
		desc += " · reasoning"
	}
	if i.info.Capabilities.Vision {
		desc += " · vision"
	}
	return desc
}

func (i modelItem) FilterValue() string { return i.info.Name + " " + i.info.ID }

// newModelPicker builds the model selection list, grouped by the
// catalog's category order with the active model selected.
func newModelPicker(activeID string) list.Model {
	var items []list.Item
	selected := 0
	for _, category := range catalog.Categories() {
		for _, info := range catalog.ByCategory(category) {
			if info.ID == activeID {
				selected = len(items)
			}
			items = append(items, modelItem{info: info})
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select Model"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Select(selected)
	return l
}
