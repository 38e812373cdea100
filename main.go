// openchat TUI - a terminal client for OpenRouter chat models.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/openchat-tui/internal/cli"
	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/openrouter"
	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/storage"
	"github.com/jeranaias/openchat-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming. Session events fire on
// the request goroutine; p.Send is the only safe bridge into the
// Bubble Tea loop.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse(os.Args[1:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	if cmd != cli.CmdTUI {
		os.Exit(cli.Execute(cfg, cmd, args))
	}
	os.Exit(runTUI(cfg))
}

// sendToProgram forwards a message into the running program, if any.
func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	defer programMu.Unlock()
	if programRef != nil {
		programRef.Send(msg)
	}
}

func runTUI(cfg *config.Config) int {
	// The TUI owns the terminal; route the standard logger to a file.
	if closeLog := setupLogging(); closeLog != nil {
		defer closeLog()
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	kv, err := storage.OpenKV(dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer kv.Close()
	store := storage.NewConversationStore(kv)

	client := openrouter.NewClient(cfg.API.Key).
		WithBaseURL(cfg.API.BaseURL).
		WithSiteURL(cfg.API.SiteURL).
		WithSiteName(cfg.API.SiteName).
		WithRateLimit(cfg.API.RequestsPerMinute)

	sess := session.NewChatSession(client, store, cfg.Chat.Model, cfg.Chat.ReasoningMode, cfg.Chat.MaxTokens, session.Events{
		OnToken: func(messageID, token string) {
			sendToProgram(chat.StreamTokenMsg{MessageID: messageID, Token: token})
		},
		OnComplete: func(messageID string) {
			sendToProgram(chat.StreamCompleteMsg{MessageID: messageID})
		},
		OnError: func(messageID string, err error) {
			sendToProgram(chat.StreamErrorMsg{MessageID: messageID, Err: err})
		},
	})
	defer sess.Close()

	if err := sess.Restore(context.Background()); err != nil {
		log.Printf("could not restore previous session: %v", err)
	}

	p := tea.NewProgram(chat.New(sess, store, cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	programMu.Lock()
	programRef = p
	programMu.Unlock()

	// Hot-reload the config file so rate limit changes apply without a
	// restart. Structural settings still need one.
	if cfgPath, err := config.ConfigPath(); err == nil {
		watcher, werr := config.NewWatcher(cfgPath, func(newCfg *config.Config) {
			client.WithRateLimit(newCfg.API.RequestsPerMinute)
			log.Printf("configuration reloaded")
		})
		if werr == nil {
			if werr := watcher.Watch(); werr == nil {
				defer watcher.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}

	programMu.Lock()
	programRef = nil
	programMu.Unlock()
	return 0
}

// setupLogging sends the standard logger to ~/.openchat/openchat.log.
// Returns a cleanup func, or nil when the file could not be opened.
func setupLogging() func() {
	dir, err := config.ConfigDir()
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "openchat.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.SetOutput(io.Discard)
		return nil
	}
	log.SetOutput(f)
	return func() { f.Close() }
}
