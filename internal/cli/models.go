// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/jeranaias/openchat-tui/internal/catalog"
)

// runModels prints the model catalog, optionally limited to a category.
func runModels(args []string) int {
	categories := catalog.Categories()
	if len(args) > 0 {
		if len(catalog.ByCategory(args[0])) == 0 {
			fmt.Printf("unknown category %q (available: %v)\n", args[0], categories)
			return 2
		}
		categories = args[0:1]
	}

	for _, category := range categories {
		fmt.Printf("%s:\n", category)
		for _, info := range catalog.ByCategory(category) {
			caps := ""
			if info.Capabilities.Reasoning {
				caps += " [reasoning]"
			}
			if info.Capabilities.Code {
				caps += " [code]"
			}
			if info.Capabilities.Vision {
				caps += " [vision]"
			}
			marker := " "
			if info.ID == catalog.DefaultModelID {
				marker = "*"
			}
			fmt.Printf("  %s %-50s %-28s %dK%s\n", marker, info.ID, info.Name, info.ContextSize/1024, caps)
		}
		fmt.Println()
	}
	return 0
}
