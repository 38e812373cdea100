// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewMessageIDs(t *testing.T) {
	m1 := NewUserMessage("hello")
	m2 := NewUserMessage("hello")
	if m1.ID == m2.ID {
		t.Error("message IDs must be unique")
	}
	if !strings.HasPrefix(m1.ID, "msg_") {
		t.Errorf("message ID %q missing msg_ prefix", m1.ID)
	}
	if m1.Role != RoleUser {
		t.Errorf("role = %q, want user", m1.Role)
	}
}

func TestMessageStreaming(t *testing.T) {
	m := NewAssistantMessage(false)
	if !m.IsStreaming {
		t.Fatal("new assistant message should be streaming")
	}

	m.AppendToken("Hel")
	m.AppendToken("lo")
	if got := m.GetDisplayContent(); got != "Hello" {
		t.Errorf("display content during stream = %q, want %q", got, "Hello")
	}

	m.FinalizeStream("Hello", "")
	if m.IsStreaming {
		t.Error("IsStreaming should be cleared after finalize")
	}
	if m.Content != "Hello" {
		t.Errorf("Content = %q", m.Content)
	}

	// Tokens after finalize are ignored.
	m.AppendToken("!")
	if m.GetDisplayContent() != "Hello" {
		t.Error("AppendToken after finalize should be a no-op")
	}
}

func TestMessageFinalizeWithReasoning(t *testing.T) {
	m := NewAssistantMessage(true)
	m.AppendToken("### My Reasoning Process:\nStep A\n### Answer:\n42")
	m.FinalizeStream("42", "Step A")

	if m.Content != "42" {
		t.Errorf("Content = %q, want %q", m.Content, "42")
	}
	if m.ReasoningSteps != "Step A" {
		t.Errorf("ReasoningSteps = %q", m.ReasoningSteps)
	}
	if !m.HasReasoning() {
		t.Error("HasReasoning should be true")
	}
	if m.IsReasoningExpanded {
		t.Error("reasoning should start collapsed")
	}
	m.ToggleReasoning()
	if !m.IsReasoningExpanded {
		t.Error("toggle should expand reasoning")
	}
	m.ToggleReasoning()
	if m.IsReasoningExpanded {
		t.Error("second toggle should collapse reasoning")
	}
}

func TestMessageStreamSections(t *testing.T) {
	m := NewAssistantMessage(true)

	// Before a split is applied the raw accumulation shows through.
	m.AppendToken("### My Reasoning Process:\nStep A\n")
	if got := m.GetDisplayContent(); got != "### My Reasoning Process:\nStep A\n" {
		t.Errorf("display before split = %q", got)
	}

	// Only the reasoning heading so far: the split passes raw through.
	m.SetStreamSections("### My Reasoning Process:\nStep A\n", "")
	if m.HasReasoning() {
		t.Error("no reasoning section before the answer heading arrives")
	}

	// Both headings arrived: content narrows, steps surface mid-stream.
	m.AppendToken("### Answer:\n42")
	m.SetStreamSections("42", "Step A")
	if got := m.GetDisplayContent(); got != "42" {
		t.Errorf("display after split = %q, want %q", got, "42")
	}
	if m.ReasoningSteps != "Step A" {
		t.Errorf("steps = %q, want %q", m.ReasoningSteps, "Step A")
	}
	if !m.IsStreaming {
		t.Error("message should still be streaming")
	}

	m.FinalizeStream("42", "Step A")
	if m.GetDisplayContent() != "42" || m.ReasoningSteps != "Step A" {
		t.Error("finalize should keep the last split")
	}

	// Updates after finalize are ignored.
	m.SetStreamSections("other", "other")
	if m.GetDisplayContent() != "42" {
		t.Error("SetStreamSections after finalize should be a no-op")
	}
}

func TestMessagePreview(t *testing.T) {
	m := NewUserMessage("a long message that should be truncated for display purposes")
	p := m.Preview(20)
	if len([]rune(p)) > 20 {
		t.Errorf("preview too long: %q", p)
	}
	if !strings.HasSuffix(p, "...") {
		t.Errorf("preview missing ellipsis: %q", p)
	}

	short := NewUserMessage("hi")
	if short.Preview(20) != "hi" {
		t.Errorf("short preview = %q", short.Preview(20))
	}
}

func TestConversationAddMessage(t *testing.T) {
	c := NewConversation()
	if !c.IsEmpty() {
		t.Fatal("new conversation should be empty")
	}

	before := c.UpdatedAt
	c.AddUserMessage("what is the answer to everything?")
	if c.MessageCount() != 1 {
		t.Fatalf("count = %d", c.MessageCount())
	}
	if c.UpdatedAt.Before(before) {
		t.Error("UpdatedAt should advance on AddMessage")
	}
}

func TestConversationTitleFromFirstUserMessage(t *testing.T) {
	c := NewConversation()
	c.AddAssistantMessage(false) // greeting placeholder, no title yet
	if c.Title != "" {
		t.Errorf("title should be empty before first user message, got %q", c.Title)
	}

	c.AddUserMessage("this user message is definitely longer than thirty runes total")
	if c.Title == "" {
		t.Fatal("title should be derived from first user message")
	}
	if n := len([]rune(c.Title)); n > TitleMaxRunes {
		t.Errorf("title length %d exceeds %d", n, TitleMaxRunes)
	}

	// Title sticks once set.
	c.AddUserMessage("another message")
	if !strings.HasPrefix(c.Title, "this user message") {
		t.Errorf("title changed unexpectedly: %q", c.Title)
	}
}

func TestConversationLookupAndRemove(t *testing.T) {
	c := NewConversation()
	u := c.AddUserMessage("q")
	a := c.AddAssistantMessage(false)

	if got := c.GetMessageByID(u.ID); got != u {
		t.Error("GetMessageByID failed for user message")
	}
	if got := c.GetLastAssistantMessage(); got != a {
		t.Error("GetLastAssistantMessage mismatch")
	}
	if got := c.GetLastMessage(); got != a {
		t.Error("GetLastMessage mismatch")
	}

	if !c.RemoveMessage(a.ID) {
		t.Fatal("RemoveMessage should report removal")
	}
	if c.MessageCount() != 1 {
		t.Errorf("count after removal = %d", c.MessageCount())
	}
	if c.RemoveMessage("missing") {
		t.Error("removing a missing ID should report false")
	}
}

func TestConversationClone(t *testing.T) {
	c := NewConversation()
	c.AddUserMessage("original")
	clone := c.Clone()

	clone.Messages[0].Content = "mutated"
	if c.Messages[0].Content != "original" {
		t.Error("clone should deep-copy messages")
	}
	if clone.ID != c.ID {
		t.Error("clone should preserve ID")
	}
}
