// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package typing

import (
	"testing"
	"time"
)

func TestPlaybackRevealsInChunks(t *testing.T) {
	p := NewPlayback(3)

	cmd := p.Start("hello world")
	if cmd == nil {
		t.Fatal("Start should schedule a tick")
	}
	if p.Visible() != "" {
		t.Errorf("nothing revealed yet, got %q", p.Visible())
	}

	steps := []string{"hel", "hello ", "hello wor", "hello world"}
	for i, want := range steps {
		cmd = p.Advance(TickMsg{Gen: 1})
		if p.Visible() != want {
			t.Errorf("step %d: visible = %q, want %q", i, p.Visible(), want)
		}
	}
	if cmd != nil {
		t.Error("final tick should not schedule another")
	}
	if p.Active() {
		t.Error("playback should be done")
	}
}

func TestPlaybackStaleTicksIgnored(t *testing.T) {
	p := NewPlayback(2)
	p.Start("first")
	p.Advance(TickMsg{Gen: 1})

	// Restarting supersedes the first playback.
	p.Start("second")
	if p.Visible() != "" {
		t.Errorf("restart should reset reveal, got %q", p.Visible())
	}

	// A tick from the old playback must not advance the new one.
	p.Advance(TickMsg{Gen: 1})
	if p.Visible() != "" {
		t.Errorf("stale tick advanced playback to %q", p.Visible())
	}

	p.Advance(TickMsg{Gen: 2})
	if p.Visible() != "se" {
		t.Errorf("visible = %q, want %q", p.Visible(), "se")
	}
}

func TestPlaybackSkip(t *testing.T) {
	p := NewPlayback(1)
	p.Start("abcdef")
	p.Advance(TickMsg{Gen: 1})

	p.Skip()
	if p.Visible() != "abcdef" {
		t.Errorf("visible = %q, want full text", p.Visible())
	}
	if p.Active() {
		t.Error("skipped playback should be inactive")
	}
}

func TestPlaybackCancel(t *testing.T) {
	p := NewPlayback(2)
	p.Start("abcdef")
	p.Advance(TickMsg{Gen: 1})

	p.Cancel()
	if p.Active() {
		t.Error("canceled playback should be inactive")
	}
	if p.Visible() != "ab" {
		t.Errorf("cancel should freeze reveal, got %q", p.Visible())
	}

	// Ticks from the canceled playback are dropped.
	if cmd := p.Advance(TickMsg{Gen: 1}); cmd != nil {
		t.Error("tick after cancel should be ignored")
	}
	if p.Visible() != "ab" {
		t.Errorf("visible = %q after canceled tick", p.Visible())
	}
}

func TestPlaybackEmptyText(t *testing.T) {
	p := NewPlayback(3)
	if cmd := p.Start(""); cmd != nil {
		t.Error("empty text needs no ticks")
	}
	if p.Active() {
		t.Error("empty playback should finish immediately")
	}
}

func TestPlaybackClampsRate(t *testing.T) {
	p := NewPlayback(0).WithInterval(time.Millisecond)
	p.Start("ab")
	p.Advance(TickMsg{Gen: 1})
	if p.Visible() != "a" {
		t.Errorf("rate should clamp to 1, visible = %q", p.Visible())
	}
}

func TestPlaybackUnicode(t *testing.T) {
	p := NewPlayback(2)
	p.Start("日本語テスト")
	p.Advance(TickMsg{Gen: 1})
	if p.Visible() != "日本" {
		t.Errorf("visible = %q, want %q", p.Visible(), "日本")
	}
}
