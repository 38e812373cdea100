// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Animation cadence for the waiting indicator.
const (
	dotInterval   = 400 * time.Millisecond
	labelInterval = 2 * time.Second
)

// thinkingLabels cycle while waiting for the first token.
var thinkingLabels = []string{"Analyzing", "Reasoning", "Connecting", "Synthesizing"}

// thinkingTickMsg advances the indicator. It carries the generation
// that scheduled it; ticks from a stopped indicator are dropped.
type thinkingTickMsg struct {
	gen int
}

// =============================================================================
// THINKING INDICATOR
// =============================================================================

// thinkingIndicator animates a "Analyzing..." line between submitting a
// message and the first streamed token. Dots cycle every 400ms, the
// label advances every 2s. Stopping bumps the generation so in-flight
// ticks are ignored instead of reviving the animation.
type thinkingIndicator struct {
	gen     int
	active  bool
	dots    int
	started time.Time
}

// start activates the indicator and schedules the first tick.
func (ti *thinkingIndicator) start() tea.Cmd {
	ti.gen++
	ti.active = true
	ti.dots = 0
	ti.started = time.Now()
	return ti.tick()
}

// stop deactivates the indicator. In-flight ticks go stale.
func (ti *thinkingIndicator) stop() {
	ti.gen++
	ti.active = false
}

// advance processes a tick, returning the next tick command or nil for
// stale ticks.
func (ti *thinkingIndicator) advance(msg thinkingTickMsg) tea.Cmd {
	if !ti.active || msg.gen != ti.gen {
		return nil
	}
	ti.dots = (ti.dots + 1) % 4
	return ti.tick()
}

// view renders the current indicator line, or "" when inactive.
func (ti *thinkingIndicator) view() string {
	if !ti.active {
		return ""
	}
	label := thinkingLabels[int(time.Since(ti.started)/labelInterval)%len(thinkingLabels)]
	dots := ""
	for i := 0; i < ti.dots; i++ {
		dots += "."
	}
	return label + dots
}

func (ti *thinkingIndicator) tick() tea.Cmd {
	gen := ti.gen
	return tea.Tick(dotInterval, func(time.Time) tea.Msg {
		return thinkingTickMsg{gen: gen}
	})
}
