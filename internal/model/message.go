// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a conversation.
type Message struct {
	// Identity
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Content. For reasoning responses Content holds the final answer and
	// ReasoningSteps holds the chain-of-thought section.
	Content        string `json:"content"`
	ReasoningSteps string `json:"reasoningSteps,omitempty"`

	// Reasoning display state
	ReasoningRequested  bool `json:"reasoningRequested,omitempty"`
	IsReasoningExpanded bool `json:"isReasoningExpanded,omitempty"`

	// Streaming state (not persisted)
	// PERFORMANCE: strings.Builder avoids quadratic allocations during streaming
	IsStreaming   bool            `json:"-"`
	streamContent strings.Builder `json:"-"`

	// Parsed view of the accumulator while streaming. The raw text stays
	// in streamContent; the display content and ReasoningSteps track the
	// latest split.
	streamView    string `json:"-"`
	hasStreamView bool   `json:"-"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) *Message {
	return &Message{
		ID:        generateMessageID(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) *Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new streaming assistant placeholder.
// ReasoningRequested records whether the request that produced this
// message asked for structured reasoning.
func NewAssistantMessage(reasoningRequested bool) *Message {
	return &Message{
		ID:                 generateMessageID(),
		Role:               RoleAssistant,
		Timestamp:          time.Now(),
		IsStreaming:        true,
		ReasoningRequested: reasoningRequested,
	}
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// AppendToken appends a token to a streaming message.
func (m *Message) AppendToken(token string) {
	if m.IsStreaming {
		m.streamContent.WriteString(token)
	}
}

// StreamedContent returns the text accumulated so far during streaming.
func (m *Message) StreamedContent() string {
	return m.streamContent.String()
}

// SetStreamSections updates the parsed view of a streaming response.
// ReasoningSteps may appear mid-stream once both section headings have
// arrived, and the display content retroactively narrows from the full
// accumulation to the post-answer portion.
func (m *Message) SetStreamSections(content, reasoningSteps string) {
	if !m.IsStreaming {
		return
	}
	m.streamView = content
	m.ReasoningSteps = reasoningSteps
	m.hasStreamView = true
}

// FinalizeStream completes streaming, storing the final answer and the
// reasoning section (empty when the response carried no reasoning markers).
func (m *Message) FinalizeStream(content, reasoningSteps string) {
	if !m.IsStreaming {
		return
	}
	m.Content = content
	m.ReasoningSteps = reasoningSteps
	m.streamContent.Reset()
	m.streamView = ""
	m.hasStreamView = false
	m.IsStreaming = false
}

// GetDisplayContent returns the content to display (streaming or final).
func (m *Message) GetDisplayContent() string {
	if m.IsStreaming {
		if m.hasStreamView {
			return m.streamView
		}
		return m.streamContent.String()
	}
	return m.Content
}

// HasReasoning reports whether the message carries a reasoning section.
func (m *Message) HasReasoning() bool {
	return m.ReasoningSteps != ""
}

// ToggleReasoning flips the expansion state of the reasoning section.
func (m *Message) ToggleReasoning() {
	m.IsReasoningExpanded = !m.IsReasoningExpanded
}

// Preview returns a truncated preview of the message content.
// Uses rune-based truncation to handle Unicode correctly.
func (m *Message) Preview(maxLen int) string {
	content := m.GetDisplayContent()
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsEmpty returns true if the message has no content.
func (m *Message) IsEmpty() bool {
	return len(m.Content) == 0 && m.streamContent.Len() == 0
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return "msg_" + uuid.NewString()
}
