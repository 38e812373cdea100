// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"os"

	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/openrouter"
	"github.com/jeranaias/openchat-tui/internal/storage"
)

// Version information, synced from main at startup.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command is a parsed top-level CLI command.
type Command string

const (
	CmdTUI      Command = ""
	CmdAsk      Command = "ask"
	CmdChat     Command = "chat"
	CmdSessions Command = "sessions"
	CmdModels   Command = "models"
	CmdVersion  Command = "version"
	CmdHelp     Command = "help"
)

// Parse splits os.Args style arguments into a command and its
// remaining arguments. No arguments means launch the TUI.
func Parse(args []string) (Command, []string) {
	if len(args) == 0 {
		return CmdTUI, nil
	}
	switch args[0] {
	case "ask":
		return CmdAsk, args[1:]
	case "chat", "repl":
		return CmdChat, args[1:]
	case "sessions":
		return CmdSessions, args[1:]
	case "models":
		return CmdModels, args[1:]
	case "version", "--version", "-v":
		return CmdVersion, nil
	case "help", "--help", "-h":
		return CmdHelp, nil
	default:
		return CmdHelp, args
	}
}

// Execute runs a non-TUI command and returns the process exit code.
func Execute(cfg *config.Config, cmd Command, args []string) int {
	switch cmd {
	case CmdAsk:
		return runAsk(cfg, args)
	case CmdChat:
		return runChat(cfg)
	case CmdSessions:
		return runSessions(cfg, args)
	case CmdModels:
		return runModels(args)
	case CmdVersion:
		fmt.Printf("openchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return 0
	default:
		printUsage()
		if cmd == CmdHelp && len(args) > 0 {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
			return 2
		}
		return 0
	}
}

func printUsage() {
	fmt.Print(`openchat - terminal client for OpenRouter chat models

Usage:
  openchat                      launch the interactive TUI
  openchat ask [flags] <text>   one-shot question, answer to stdout
      -m, --model <id>          model to use
      -r, --reasoning           request step-by-step reasoning
  openchat chat                 line-mode REPL (no TUI); alias: repl
  openchat sessions list        list saved conversations
  openchat sessions search <q>  search titles and message content
  openchat sessions delete <id> delete one conversation
  openchat sessions clear       delete all conversations
  openchat sessions export <id> print a conversation (markdown; --json)
  openchat models [category]    list available models
  openchat version              print version

Environment:
  OPENROUTER_API_KEY            API key (overrides config file)
`)
}

// newClient builds an API client from configuration.
func newClient(cfg *config.Config) *openrouter.Client {
	return openrouter.NewClient(cfg.API.Key).
		WithBaseURL(cfg.API.BaseURL).
		WithSiteURL(cfg.API.SiteURL).
		WithSiteName(cfg.API.SiteName).
		WithRateLimit(cfg.API.RequestsPerMinute)
}

// openStore opens the conversation database from configuration.
func openStore(cfg *config.Config) (*storage.ConversationStore, *storage.KV, error) {
	path, err := cfg.DatabasePath()
	if err != nil {
		return nil, nil, err
	}
	kv, err := storage.OpenKV(path)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewConversationStore(kv), kv, nil
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}
