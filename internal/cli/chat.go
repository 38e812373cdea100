// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/ui/styles"
)

// runChat runs the line-mode REPL for terminals where the full TUI is
// unwanted (ssh sessions, scripts driving a pty, screen readers).
func runChat(cfg *config.Config) int {
	store, kv, err := openStore(cfg)
	if err != nil {
		return fail(err)
	}
	defer kv.Close()

	done := make(chan error, 1)
	sess := session.NewChatSession(newClient(cfg), store, cfg.Chat.Model, cfg.Chat.ReasoningMode, cfg.Chat.MaxTokens, session.Events{
		OnToken:    func(_, token string) { fmt.Print(token) },
		OnComplete: func(string) { done <- nil },
		OnError:    func(_ string, err error) { done <- err },
	})
	defer sess.Close()

	ctx := context.Background()
	if err := sess.Restore(ctx); err != nil {
		return fail(err)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := replHistoryPath()
	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}
	defer saveReplHistory(line, historyPath)

	fmt.Printf("openchat %s - model %s (type /help for commands)\n", Version, sess.ModelID())

	for {
		input, err := line.Prompt("you> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Println()
			return 0
		}
		if err != nil {
			return fail(err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := handleReplCommand(ctx, sess, input); quit {
				return 0
			}
			continue
		}

		if _, asstID, err := sess.SubmitUserMessage(input); err != nil {
			fmt.Println(styles.RenderError(err.Error()))
		} else {
			waitForResponse(sess, asstID, done)
		}
	}
}

// waitForResponse blocks until the streamed response finishes, then
// prints any reasoning section that arrived with it.
func waitForResponse(sess *session.ChatSession, asstID string, done chan error) {
	err := <-done
	fmt.Println()
	if err != nil {
		fmt.Println(styles.RenderError(err.Error()))
		return
	}

	snap := sess.Snapshot()
	if msg := snap.GetMessageByID(asstID); msg != nil && msg.HasReasoning() {
		fmt.Println()
		fmt.Println(styles.RenderInfo("Reasoning:"))
		fmt.Println(msg.ReasoningSteps)
	}
}

// handleReplCommand dispatches a /command. Returns true to exit.
func handleReplCommand(ctx context.Context, sess *session.ChatSession, input string) bool {
	parts := strings.Fields(input)
	switch parts[0] {
	case "/quit", "/exit":
		return true

	case "/clear":
		sess.Clear()
		fmt.Println(styles.RenderSuccess("Started a new conversation"))

	case "/model":
		if len(parts) < 2 {
			fmt.Printf("current model: %s\n", sess.ModelID())
			fmt.Println("usage: /model <id> (see: openchat models)")
			break
		}
		if err := sess.SelectModel(ctx, parts[1]); err != nil {
			fmt.Println(styles.RenderError(err.Error()))
			break
		}
		fmt.Println(styles.RenderSuccess("Model set to " + parts[1]))

	case "/reasoning":
		if len(parts) < 2 || (parts[1] != "on" && parts[1] != "off") {
			fmt.Println("usage: /reasoning on|off")
			break
		}
		if err := sess.SetReasoningMode(ctx, parts[1] == "on"); err != nil {
			fmt.Println(styles.RenderError(err.Error()))
			break
		}
		fmt.Println(styles.RenderSuccess("Reasoning " + parts[1]))

	case "/help":
		fmt.Print(`/model [id]       show or switch the model
/reasoning on|off toggle step-by-step reasoning
/clear            start a new conversation
/quit             exit
`)

	default:
		fmt.Println(styles.RenderError("unknown command " + parts[0]))
	}
	return false
}

func replHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "repl_history")
}

func saveReplHistory(line *liner.State, path string) {
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	line.WriteHistory(f)
}
