// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package typing animates text reveal at a fixed characters-per-tick
// rate, for the typewriter effect on greeting and canned messages.
package typing

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultInterval is the delay between reveal ticks.
const DefaultInterval = 30 * time.Millisecond

// TickMsg advances a playback. It carries the generation that scheduled
// it so ticks from a superseded playback are ignored instead of driving
// the new one at double speed.
type TickMsg struct {
	Gen int
}

// =============================================================================
// PLAYBACK
// =============================================================================

// Playback reveals text a few characters at a time. Starting a new
// playback bumps the generation, which implicitly cancels any ticks
// still in flight from the previous one.
type Playback struct {
	text         []rune
	pos          int
	charsPerTick int
	interval     time.Duration
	gen          int
	active       bool
}

// NewPlayback creates a playback revealing charsPerTick runes per tick.
// Values below 1 are clamped to 1.
func NewPlayback(charsPerTick int) *Playback {
	if charsPerTick < 1 {
		charsPerTick = 1
	}
	return &Playback{
		charsPerTick: charsPerTick,
		interval:     DefaultInterval,
	}
}

// WithInterval overrides the tick interval.
func (p *Playback) WithInterval(d time.Duration) *Playback {
	if d > 0 {
		p.interval = d
	}
	return p
}

// Start begins revealing text and returns the command that schedules
// the first tick. Any previous playback is superseded.
func (p *Playback) Start(text string) tea.Cmd {
	p.gen++
	p.text = []rune(text)
	p.pos = 0
	p.active = true
	if len(p.text) == 0 {
		p.active = false
		return nil
	}
	return p.tick()
}

// Advance processes a tick. Stale ticks (from a superseded playback)
// and ticks after cancellation are ignored. The returned command is nil
// once the full text is visible.
func (p *Playback) Advance(msg TickMsg) tea.Cmd {
	if !p.active || msg.Gen != p.gen {
		return nil
	}
	p.pos += p.charsPerTick
	if p.pos >= len(p.text) {
		p.pos = len(p.text)
		p.active = false
		return nil
	}
	return p.tick()
}

// Skip reveals the remaining text immediately.
func (p *Playback) Skip() {
	p.pos = len(p.text)
	p.active = false
}

// Cancel stops the playback, freezing the text at its current reveal
// point. In-flight ticks become stale and are dropped by Advance.
func (p *Playback) Cancel() {
	p.gen++
	p.active = false
}

// Visible returns the revealed portion of the text.
func (p *Playback) Visible() string {
	return string(p.text[:p.pos])
}

// Active reports whether a playback is still revealing text.
func (p *Playback) Active() bool {
	return p.active
}

func (p *Playback) tick() tea.Cmd {
	gen := p.gen
	return tea.Tick(p.interval, func(time.Time) tea.Msg {
		return TickMsg{Gen: gen}
	})
}
