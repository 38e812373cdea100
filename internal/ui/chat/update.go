// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/typing"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case typing.TickMsg:
		cmd := m.greeting.Advance(msg)
		m.refreshViewport(false)
		return m, cmd

	case thinkingTickMsg:
		cmd := m.thinking.advance(msg)
		if cmd != nil {
			m.refreshViewport(true)
		}
		return m, cmd

	case StreamTokenMsg:
		if msg.MessageID != m.streamingID {
			return m, nil
		}
		m.thinking.stop()
		m.buffer.Write(msg.Token)
		return m, nil

	case StreamTickMsg:
		if m.streamingID == "" {
			return m, nil
		}
		if _, ok := m.buffer.Flush(); ok {
			m.refreshViewport(true)
		}
		return m, streamTickCmd()

	case StreamCompleteMsg:
		if msg.MessageID == m.streamingID {
			m.streamingID = ""
		}
		m.thinking.stop()
		m.buffer.Reset()
		m.refreshViewport(true)
		return m, nil

	case StreamErrorMsg:
		if msg.MessageID == m.streamingID {
			m.streamingID = ""
		}
		m.thinking.stop()
		m.buffer.Reset()
		m.refreshViewport(true)
		if errors.Is(msg.Err, context.Canceled) {
			return m, m.showToast("Response canceled", false)
		}
		return m, m.showToast(msg.Err.Error(), true)

	case toastExpireMsg:
		if msg.gen == m.toastGen {
			m.toastText = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case statePicker:
			return m.updatePicker(msg)
		case stateBrowser:
			return m.updateBrowser(msg)
		default:
			return m.updateChat(msg)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// =============================================================================
// CHAT KEYS
// =============================================================================

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Send):
		return m.submit()

	case key.Matches(msg, keys.Cancel):
		if m.session.CancelInflight() {
			return m, nil
		}
		return m, nil

	case key.Matches(msg, keys.NewChat):
		m.session.Clear()
		m.streamingID = ""
		m.buffer.Reset()
		m.thinking.stop()
		m.refreshViewport(true)
		return m, m.greeting.Start(greetingText)

	case key.Matches(msg, keys.PickModel):
		m.picker = newModelPicker(m.session.ModelID())
		m.picker.SetSize(m.width, m.height-2)
		m.state = statePicker
		return m, nil

	case key.Matches(msg, keys.Browse):
		if err := m.loadBrowser(); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		m.state = stateBrowser
		m.confirm = confirmNone
		return m, nil

	case key.Matches(msg, keys.ToggleReasoning):
		return m.toggleReasoningMode()

	case key.Matches(msg, keys.ExpandReasoning):
		return m.expandLastReasoning()
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	content := strings.TrimSpace(m.textarea.Value())
	if content == "" {
		return m, nil
	}

	_, asstID, err := m.session.SubmitUserMessage(content)
	if errors.Is(err, session.ErrBusy) {
		return m, m.showToast("Wait for the current response to finish", true)
	}
	if err != nil {
		return m, m.showToast(err.Error(), true)
	}

	m.textarea.Reset()
	m.greeting.Cancel()
	m.streamingID = asstID
	m.buffer.Reset()
	m.refreshViewport(true)
	return m, tea.Batch(m.thinking.start(), streamTickCmd())
}

func (m *Model) toggleReasoningMode() (tea.Model, tea.Cmd) {
	target := !m.session.ReasoningMode()
	err := m.session.SetReasoningMode(context.Background(), target)
	if errors.Is(err, session.ErrReasoningUnsupported) {
		return m, m.showToast("This model does not support reasoning", true)
	}
	if err != nil {
		return m, m.showToast(err.Error(), true)
	}
	if target {
		return m, m.showToast("Reasoning mode on", false)
	}
	return m, m.showToast("Reasoning mode off", false)
}

func (m *Model) expandLastReasoning() (tea.Model, tea.Cmd) {
	snap := m.session.Snapshot()
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		msg := snap.Messages[i]
		if msg.HasReasoning() {
			if _, err := m.session.ToggleReasoningExpansion(msg.ID); err != nil {
				return m, m.showToast(err.Error(), true)
			}
			m.refreshViewport(false)
			return m, nil
		}
	}
	return m, nil
}

// =============================================================================
// PICKER KEYS
// =============================================================================

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Let the list's filter input consume keys while typing a filter.
	if m.picker.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "esc":
		m.state = stateChat
		return m, nil
	case "enter":
		item, ok := m.picker.SelectedItem().(modelItem)
		if !ok {
			return m, nil
		}
		m.state = stateChat
		if err := m.session.SelectModel(context.Background(), item.info.ID); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		return m, m.showToast("Model: "+item.info.Name, false)
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

// =============================================================================
// BROWSER KEYS
// =============================================================================

func (m *Model) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != confirmNone {
		return m.resolveConfirm(msg)
	}

	if m.browser.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.browser, cmd = m.browser.Update(msg)
		return m, cmd
	}

	switch {
	case msg.String() == "esc":
		m.state = stateChat
		return m, nil

	case msg.String() == "enter":
		id := m.selectedConversationID()
		if id == "" {
			return m, nil
		}
		err := m.session.LoadConversation(context.Background(), id)
		if errors.Is(err, session.ErrBusy) {
			return m, m.showToast("Wait for the current response to finish", true)
		}
		if err != nil {
			return m, m.showToast(err.Error(), true)
		}
		m.state = stateChat
		m.greeting.Cancel()
		m.refreshViewport(true)
		return m, nil

	case key.Matches(msg, browserKeys.Delete):
		if m.selectedConversationID() != "" {
			m.confirm = confirmDeleteOne
		}
		return m, nil

	case key.Matches(msg, browserKeys.DeleteAll):
		m.confirm = confirmDeleteAll
		return m, nil

	case key.Matches(msg, browserKeys.Sort):
		if err := m.toggleSortOrder(); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.browser, cmd = m.browser.Update(msg)
	return m, cmd
}

// resolveConfirm handles the y/n prompt for destructive actions.
func (m *Model) resolveConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirm := m.confirm
	m.confirm = confirmNone

	if msg.String() != "y" && msg.String() != "Y" {
		return m, nil
	}

	ctx := context.Background()
	switch confirm {
	case confirmDeleteOne:
		id := m.selectedConversationID()
		if err := m.store.Delete(ctx, id); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		if id == m.session.ConversationID() {
			m.session.Clear()
			m.refreshViewport(true)
		}
		if err := m.loadBrowser(); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		return m, m.showToast("Conversation deleted", false)

	case confirmDeleteAll:
		if err := m.store.DeleteAllExcept(ctx, m.session.ConversationID()); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		if err := m.loadBrowser(); err != nil {
			return m, m.showToast(err.Error(), true)
		}
		return m, m.showToast("Other conversations deleted", false)
	}
	return m, nil
}
