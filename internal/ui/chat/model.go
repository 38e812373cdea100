// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/jeranaias/openchat-tui/internal/config"
	"github.com/jeranaias/openchat-tui/internal/session"
	"github.com/jeranaias/openchat-tui/internal/storage"
	"github.com/jeranaias/openchat-tui/internal/typing"
)

const greetingText = "Hello! I'm your AI assistant. Ask me anything, or press ctrl+p to pick a model."

// =============================================================================
// MESSAGES
// =============================================================================

// StreamTokenMsg carries one streamed token from the session into the
// Bubble Tea loop.
type StreamTokenMsg struct {
	MessageID string
	Token     string
}

// StreamCompleteMsg signals that a response finished and was persisted.
type StreamCompleteMsg struct {
	MessageID string
}

// StreamErrorMsg signals that a request failed.
type StreamErrorMsg struct {
	MessageID string
	Err       error
}

// StreamTickMsg drives batched viewport refreshes during streaming.
type StreamTickMsg struct {
	Time time.Time
}

// toastExpireMsg clears a transient notice.
type toastExpireMsg struct {
	gen int
}

// =============================================================================
// VIEW STATE
// =============================================================================

type viewState int

const (
	stateChat viewState = iota
	statePicker
	stateBrowser
)

// pendingConfirm tracks a destructive browser action awaiting y/n.
type pendingConfirm int

const (
	confirmNone pendingConfirm = iota
	confirmDeleteOne
	confirmDeleteAll
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	session *session.ChatSession
	store   *storage.ConversationStore
	cfg     *config.Config

	viewport viewport.Model
	textarea textarea.Model
	renderer *glamour.TermRenderer

	state   viewState
	picker  list.Model
	browser list.Model
	confirm pendingConfirm

	buffer      *StreamingBuffer
	streamingID string

	thinking thinkingIndicator
	greeting *typing.Playback

	toastText string
	toastErr  bool
	toastGen  int

	sortOrder storage.SortOrder

	width  int
	height int
	ready  bool
}

// New creates the chat screen model.
func New(sess *session.ChatSession, store *storage.ConversationStore, cfg *config.Config) *Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.Prompt = "> "
	ta.CharLimit = 8000
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.Focus()

	m := &Model{
		session:   sess,
		store:     store,
		cfg:       cfg,
		textarea:  ta,
		buffer:    NewStreamingBuffer(),
		greeting:  typing.NewPlayback(cfg.UI.TypingSpeed),
		picker:    newModelPicker(sess.ModelID()),
		sortOrder: storage.SortNewestFirst,
	}
	return m
}

// Init starts the input blink and, for a fresh conversation, the typed
// greeting.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}
	if m.session.Snapshot().IsEmpty() {
		cmds = append(cmds, m.greeting.Start(greetingText))
	}
	return tea.Batch(cmds...)
}

// layout resizes components after a window size change.
func (m *Model) layout() {
	headerHeight := 1
	statusHeight := 1
	inputHeight := m.textarea.Height() + 2

	vpHeight := m.height - headerHeight - statusHeight - inputHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(m.width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(m.width - 4)

	m.picker.SetSize(m.width, m.height-2)
	m.browser.SetSize(m.width, m.height-2)

	// Markdown wraps to the viewport, minus the message border gutter.
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.markdownStyle()),
		glamour.WithWordWrap(m.width-4),
	)
	if err == nil {
		m.renderer = renderer
	}

	m.refreshViewport(true)
}

// markdownStyle resolves the configured theme, asking the terminal for
// its background when set to auto.
func (m *Model) markdownStyle() string {
	switch m.cfg.UI.Theme {
	case "light":
		return "light"
	case "dark":
		return "dark"
	default:
		if termenv.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}

// showToast displays a transient notice for three seconds.
func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastText = text
	m.toastErr = isErr
	m.toastGen++
	gen := m.toastGen
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastExpireMsg{gen: gen}
	})
}
