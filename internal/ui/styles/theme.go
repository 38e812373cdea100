// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// CHROME
// =============================================================================

// Header is the bar across the top of the chat view.
var Header = lipgloss.NewStyle().
	Foreground(Cyan).
	Bold(true).
	Padding(0, 1)

// HeaderHint renders muted key hints inside the header.
var HeaderHint = lipgloss.NewStyle().
	Foreground(TextMuted)

// StatusBar is the bar across the bottom, above the input.
var StatusBar = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Background(SurfaceDim).
	Padding(0, 1)

// StatusModel highlights the active model name in the status bar.
var StatusModel = lipgloss.NewStyle().
	Foreground(Purple).
	Background(SurfaceDim).
	Bold(true)

// StatusReasoningOn marks reasoning mode enabled.
var StatusReasoningOn = lipgloss.NewStyle().
	Foreground(Emerald).
	Background(SurfaceDim).
	Bold(true)

// StatusStreaming marks a response in flight.
var StatusStreaming = lipgloss.NewStyle().
	Foreground(Amber).
	Background(SurfaceDim)

// InputBox frames the message input.
var InputBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputBoxFocused frames the input when it has focus.
var InputBoxFocused = InputBox.
	BorderForeground(Cyan)

// =============================================================================
// MESSAGES
// =============================================================================

// UserLabel renders the "You" speaker line.
var UserLabel = lipgloss.NewStyle().
	Foreground(UserBubbleFg).
	Bold(true)

// AssistantLabel renders the "Assistant" speaker line.
var AssistantLabel = lipgloss.NewStyle().
	Foreground(AssistantBubbleFg).
	Bold(true)

// UserMessage frames user message content.
var UserMessage = lipgloss.NewStyle().
	BorderStyle(lipgloss.ThickBorder()).
	BorderLeft(true).
	BorderForeground(UserBubbleBorder).
	PaddingLeft(1)

// AssistantMessage frames assistant message content.
var AssistantMessage = lipgloss.NewStyle().
	BorderStyle(lipgloss.ThickBorder()).
	BorderLeft(true).
	BorderForeground(AssistantBubbleBorder).
	PaddingLeft(1)

// Reasoning frames the expanded reasoning section.
var Reasoning = lipgloss.NewStyle().
	Foreground(ReasoningFg).
	BorderStyle(lipgloss.NormalBorder()).
	BorderLeft(true).
	BorderForeground(ReasoningBorder).
	PaddingLeft(1)

// ReasoningHint renders the collapsed reasoning toggle line.
var ReasoningHint = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// Timestamp renders message times.
var Timestamp = lipgloss.NewStyle().
	Foreground(TextMuted)

// Thinking renders the animated waiting indicator.
var Thinking = lipgloss.NewStyle().
	Foreground(TextMuted).
	Italic(true)

// Greeting renders the typed-out welcome message.
var Greeting = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Italic(true)

// =============================================================================
// FEEDBACK
// =============================================================================

// ToastInfo renders transient informational notices.
var ToastInfo = lipgloss.NewStyle().
	Foreground(Cyan).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Cyan).
	Padding(0, 1)

// ToastError renders transient error notices.
var ToastError = lipgloss.NewStyle().
	Foreground(Rose).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Rose).
	Padding(0, 1)

// ConfirmPrompt renders destructive-action confirmations.
var ConfirmPrompt = lipgloss.NewStyle().
	Foreground(Amber).
	Bold(true)
