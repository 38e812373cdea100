// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/storage"
	"github.com/jeranaias/openchat-tui/internal/util"
)

// runSessions dispatches the `sessions` subcommands.
func runSessions(cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Println("usage: openchat sessions list|search|delete|clear|export")
		return 2
	}

	store, kv, err := openStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer kv.Close()

	ctx := context.Background()
	switch args[0] {
	case "list":
		return sessionsList(ctx, store)
	case "search":
		if len(args) < 2 {
			fmt.Println("usage: openchat sessions search <query>")
			return 2
		}
		return sessionsSearch(ctx, store, strings.Join(args[1:], " "))
	case "delete":
		if len(args) < 2 {
			fmt.Println("usage: openchat sessions delete <id>")
			return 2
		}
		return sessionsDelete(ctx, store, args[1])
	case "clear":
		return sessionsClear(ctx, store)
	case "export":
		if len(args) < 2 {
			fmt.Println("usage: openchat sessions export <id> [--json]")
			return 2
		}
		return sessionsExport(ctx, store, args[1], len(args) > 2 && args[2] == "--json")
	default:
		fmt.Printf("unknown sessions command: %s\n", args[0])
		return 2
	}
}

func sessionsList(ctx context.Context, store *storage.ConversationStore) int {
	order := storage.SortNewestFirst
	if pref, err := store.Pref(ctx, storage.PrefSortOrder); err == nil && pref == string(storage.SortOldestFirst) {
		order = storage.SortOldestFirst
	}

	conversations, err := store.LoadAll(ctx, order)
	if err != nil {
		return fail(err)
	}
	printConversations(ctx, store, conversations)
	return 0
}

func sessionsSearch(ctx context.Context, store *storage.ConversationStore, query string) int {
	conversations, err := store.Search(ctx, query)
	if err != nil {
		return fail(err)
	}
	if len(conversations) == 0 {
		fmt.Printf("no conversations match %q\n", query)
		return 0
	}
	printConversations(ctx, store, conversations)
	return 0
}

func sessionsDelete(ctx context.Context, store *storage.ConversationStore, id string) int {
	if _, err := store.Load(ctx, id); errors.Is(err, storage.ErrConversationNotFound) {
		fmt.Printf("no conversation with ID %s\n", id)
		return 1
	}
	if err := store.Delete(ctx, id); err != nil {
		return fail(err)
	}
	fmt.Println("deleted", id)
	return 0
}

func sessionsClear(ctx context.Context, store *storage.ConversationStore) int {
	if err := store.DeleteAllExcept(ctx, ""); err != nil {
		return fail(err)
	}
	fmt.Println("all conversations deleted")
	return 0
}

// sessionsExport writes one conversation to stdout as markdown, or as
// JSON with --json.
func sessionsExport(ctx context.Context, store *storage.ConversationStore, id string, asJSON bool) int {
	conv, err := store.Load(ctx, id)
	if errors.Is(err, storage.ErrConversationNotFound) {
		fmt.Printf("no conversation with ID %s\n", id)
		return 1
	}
	if err != nil {
		return fail(err)
	}

	if asJSON {
		data, err := json.MarshalIndent(conv, "", "  ")
		if err != nil {
			return fail(err)
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Print(ExportMarkdown(conv))
	return 0
}

// ExportMarkdown renders a conversation as a markdown transcript.
func ExportMarkdown(conv *model.Conversation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", conv.GetTitle())
	fmt.Fprintf(&b, "- ID: %s\n", conv.ID)
	if conv.Model != "" {
		fmt.Fprintf(&b, "- Model: %s\n", conv.Model)
	}
	fmt.Fprintf(&b, "- Updated: %s\n\n", conv.UpdatedAt.Format("2006-01-02 15:04"))

	for _, msg := range conv.Messages {
		fmt.Fprintf(&b, "## %s (%s)\n\n", msg.Role.DisplayName(), msg.Timestamp.Format("15:04"))
		if msg.HasReasoning() {
			fmt.Fprintf(&b, "> Reasoning:\n")
			for _, line := range strings.Split(msg.ReasoningSteps, "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
			b.WriteString("\n")
		}
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

func printConversations(ctx context.Context, store *storage.ConversationStore, conversations []*model.Conversation) {
	if len(conversations) == 0 {
		fmt.Println("no saved conversations")
		return
	}

	currentID, _ := store.Current(ctx)
	for _, conv := range conversations {
		marker := " "
		if conv.ID == currentID {
			marker = "*"
		}
		title := util.TruncateRunes(conv.GetTitle(), 40)
		fmt.Printf("%s %s  %-43s %3d msgs  %s\n",
			marker, conv.ID, title, conv.MessageCount(),
			conv.UpdatedAt.Format("2006-01-02 15:04"))
	}
}
