// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"
	"testing"

	"github.com/jeranaias/openchat-tui/internal/catalog"
	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCmd  Command
		wantRest int
	}{
		{"no args launches TUI", nil, CmdTUI, 0},
		{"ask with question", []string{"ask", "2+2?"}, CmdAsk, 1},
		{"chat", []string{"chat"}, CmdChat, 0},
		{"repl alias", []string{"repl"}, CmdChat, 0},
		{"sessions list", []string{"sessions", "list"}, CmdSessions, 1},
		{"models", []string{"models"}, CmdModels, 0},
		{"version flag", []string{"--version"}, CmdVersion, 0},
		{"help", []string{"help"}, CmdHelp, 0},
		{"unknown falls to help", []string{"frobnicate"}, CmdHelp, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, rest := Parse(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %q, want %q", cmd, tt.wantCmd)
			}
			if len(rest) != tt.wantRest {
				t.Errorf("rest = %v, want %d args", rest, tt.wantRest)
			}
		})
	}
}

func TestParseAskArgs(t *testing.T) {
	cfg := config.Default()

	t.Run("defaults from config", func(t *testing.T) {
		opts, err := parseAskArgs(cfg, []string{"what", "is", "2+2?"})
		if err != nil {
			t.Fatalf("parseAskArgs failed: %v", err)
		}
		if opts.question != "what is 2+2?" {
			t.Errorf("question = %q", opts.question)
		}
		if opts.modelID != cfg.Chat.Model {
			t.Errorf("model = %q, want config default", opts.modelID)
		}
	})

	t.Run("model flag", func(t *testing.T) {
		opts, err := parseAskArgs(cfg, []string{"-m", "deepseek/deepseek-r1:free", "-r", "why?"})
		if err != nil {
			t.Fatalf("parseAskArgs failed: %v", err)
		}
		if opts.modelID != "deepseek/deepseek-r1:free" {
			t.Errorf("model = %q", opts.modelID)
		}
		if !opts.wantReasoning {
			t.Error("reasoning flag not picked up")
		}
	})

	t.Run("empty question", func(t *testing.T) {
		if _, err := parseAskArgs(cfg, []string{"-r"}); err == nil {
			t.Error("empty question should error")
		}
	})

	t.Run("missing flag value", func(t *testing.T) {
		if _, err := parseAskArgs(cfg, []string{"hello", "--model"}); err == nil {
			t.Error("dangling --model should error")
		}
	})

	t.Run("unknown model", func(t *testing.T) {
		if _, err := parseAskArgs(cfg, []string{"-m", "bogus/model", "hi"}); err == nil {
			t.Error("unknown model should error")
		}
	})

	t.Run("reasoning on incapable model", func(t *testing.T) {
		if _, err := parseAskArgs(cfg, []string{"-m", catalog.DefaultModelID, "-r", "hi"}); err == nil {
			t.Error("reasoning flag should be rejected for incapable model")
		}
	})
}

func TestExportMarkdown(t *testing.T) {
	conv := model.NewConversation()
	conv.AddUserMessage("why is the sky blue?")
	msg := conv.AddAssistantMessage(true)
	msg.FinalizeStream("Rayleigh scattering.", "Step A\nStep B")

	out := ExportMarkdown(conv)

	for _, want := range []string{
		"# why is the sky blue?",
		"## You",
		"## Assistant",
		"> Step A",
		"> Step B",
		"Rayleigh scattering.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q\n%s", want, out)
		}
	}
}
