// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jeranaias/openchat-tui/internal/catalog"
	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/openrouter"
	"github.com/jeranaias/openchat-tui/internal/reasoning"
	"github.com/jeranaias/openchat-tui/internal/session"
)

// askTimeout bounds one-shot requests; the TUI streams without one.
const askTimeout = 2 * time.Minute

// askOptions holds parsed `ask` flags.
type askOptions struct {
	modelID       string
	wantReasoning bool
	question      string
}

// parseAskArgs parses flags and joins the remaining words into the
// question text.
func parseAskArgs(cfg *config.Config, args []string) (askOptions, error) {
	opts := askOptions{
		modelID:       cfg.Chat.Model,
		wantReasoning: cfg.Chat.ReasoningMode,
	}

	var words []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-m", "--model":
			if i+1 >= len(args) {
				return opts, errors.New("missing value for " + args[i])
			}
			i++
			opts.modelID = args[i]
		case "-r", "--reasoning":
			opts.wantReasoning = true
		default:
			words = append(words, args[i])
		}
	}

	opts.question = strings.TrimSpace(strings.Join(words, " "))
	if opts.question == "" {
		return opts, errors.New("nothing to ask")
	}
	if opts.modelID == "" {
		opts.modelID = catalog.DefaultModelID
	}
	if _, ok := catalog.ByID(opts.modelID); !ok {
		return opts, fmt.Errorf("unknown model %q (see: openchat models)", opts.modelID)
	}
	if opts.wantReasoning && !catalog.SupportsReasoning(opts.modelID) {
		return opts, fmt.Errorf("model %q does not support reasoning", opts.modelID)
	}
	return opts, nil
}

// runAsk sends a single question and prints the answer. With reasoning
// requested, the steps print to stderr and the answer to stdout so the
// answer stays pipeable.
func runAsk(cfg *config.Config, args []string) int {
	opts, err := parseAskArgs(cfg, args)
	if err != nil {
		return fail(err)
	}

	systemPrompt := reasoning.SystemPrompt
	temperature := session.TemperatureDefault
	if opts.wantReasoning {
		systemPrompt += reasoning.ReasoningPrompt
		temperature = session.TemperatureReasoning
	}

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	client := newClient(cfg)
	resp, err := client.Chat(ctx, openrouter.ChatRequest{
		Model: opts.modelID,
		Messages: []openrouter.ChatMessage{
			openrouter.NewSystemMessage(systemPrompt),
			openrouter.NewUserMessage(opts.question),
		},
		Temperature: temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
	})
	if err != nil {
		return fail(err)
	}

	raw := resp.GetContent()
	if opts.wantReasoning {
		content, steps := reasoning.Split(raw)
		if steps != "" {
			fmt.Fprintln(os.Stderr, "Reasoning:")
			fmt.Fprintln(os.Stderr, steps)
			fmt.Fprintln(os.Stderr)
		}
		fmt.Println(content)
		return 0
	}

	fmt.Println(raw)
	return 0
}
