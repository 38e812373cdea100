// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the active conversation and the single in-flight
// chat request.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/jeranaias/openchat-tui/internal/catalog"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/openrouter"
	"github.com/jeranaias/openchat-tui/internal/reasoning"
	"github.com/jeranaias/openchat-tui/internal/storage"
)

// Sampling temperatures. Reasoning responses need to follow the section
// markers, so they run cooler.
const (
	TemperatureReasoning = 0.7
	TemperatureDefault   = 0.9
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("a response is already in progress")

	// ErrEmptyMessage is returned for blank or whitespace-only input.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrUnknownModel is returned when selecting a model not in the catalog.
	ErrUnknownModel = errors.New("unknown model")

	// ErrReasoningUnsupported is returned when enabling reasoning mode on
	// a model without the reasoning capability.
	ErrReasoningUnsupported = errors.New("selected model does not support reasoning")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session is closed")
)

// =============================================================================
// EVENTS
// =============================================================================

// Events holds callbacks fired during streaming. They are invoked from
// the request goroutine; UI layers should forward them onto their own
// event loop. Nil callbacks are skipped.
type Events struct {
	// OnToken fires for each content token appended to a message.
	OnToken func(messageID, token string)

	// OnComplete fires when a response finishes and is persisted.
	OnComplete func(messageID string)

	// OnError fires when a request fails. The message may have been
	// finalized with partial content or removed entirely; check the
	// conversation snapshot.
	OnError func(messageID string, err error)
}

// inflight is the single-slot handle for the active request. Holding
// the cancel function here ties abort to both explicit cancellation and
// session teardown.
type inflight struct {
	cancel    context.CancelFunc
	messageID string
}

// =============================================================================
// CHAT SESSION
// =============================================================================

// ChatSession drives one conversation against the chat API. At most one
// request is in flight at a time; submissions while busy are rejected
// rather than queued.
type ChatSession struct {
	mu sync.Mutex

	client *openrouter.Client
	store  *storage.ConversationStore
	events Events

	conv          *model.Conversation
	modelID       string
	reasoningMode bool
	maxTokens     int

	inflight *inflight

	// rootCtx parents every request context, so Close aborts any
	// stream still running.
	rootCtx    context.Context
	rootCancel context.CancelFunc
	closed     bool
}

// NewChatSession creates a session with a fresh conversation. Persisted
// preferences and the previous conversation are picked up by Restore.
func NewChatSession(client *openrouter.Client, store *storage.ConversationStore, modelID string, reasoningMode bool, maxTokens int, events Events) *ChatSession {
	if _, ok := catalog.ByID(modelID); !ok {
		modelID = catalog.DefaultModelID
	}
	if !catalog.SupportsReasoning(modelID) {
		reasoningMode = false
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatSession{
		client:        client,
		store:         store,
		events:        events,
		conv:          model.NewConversation(),
		modelID:       modelID,
		reasoningMode: reasoningMode,
		maxTokens:     maxTokens,
		rootCtx:       ctx,
		rootCancel:    cancel,
	}
}

// Restore loads persisted preferences and resumes the conversation the
// current-conversation pointer names. Missing records are not errors.
func (s *ChatSession) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if modelPref, err := s.store.Pref(ctx, storage.PrefModel); err != nil {
		return err
	} else if _, ok := catalog.ByID(modelPref); ok {
		s.modelID = modelPref
	}

	if reasoningPref, err := s.store.Pref(ctx, storage.PrefReasoningMode); err != nil {
		return err
	} else if reasoningPref == "true" && catalog.SupportsReasoning(s.modelID) {
		s.reasoningMode = true
	} else if reasoningPref == "false" {
		s.reasoningMode = false
	}

	currentID, err := s.store.Current(ctx)
	if err != nil {
		return err
	}
	if currentID == "" {
		return nil
	}
	conv, err := s.store.Load(ctx, currentID)
	if errors.Is(err, storage.ErrConversationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	s.conv = conv
	return nil
}

// Close tears the session down, aborting any in-flight stream.
func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.rootCancel()
}

// =============================================================================
// SUBMISSION AND STREAMING
// =============================================================================

// SubmitUserMessage appends the user message, creates a streaming
// assistant placeholder, and starts the request. It returns the IDs of
// both messages. Submissions are rejected with ErrBusy while a request
// is in flight and with ErrEmptyMessage for blank input.
func (s *ChatSession) SubmitUserMessage(content string) (userID, assistantID string, err error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", "", ErrEmptyMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", "", ErrClosed
	}
	if s.inflight != nil {
		return "", "", ErrBusy
	}

	wantReasoning := s.reasoningMode && catalog.SupportsReasoning(s.modelID)

	userMsg := s.conv.AddUserMessage(content)
	asstMsg := s.conv.AddAssistantMessage(wantReasoning)
	s.conv.Model = s.modelID

	req := s.buildRequest(wantReasoning)

	ctx, cancel := context.WithCancel(s.rootCtx)
	s.inflight = &inflight{cancel: cancel, messageID: asstMsg.ID}

	go s.stream(ctx, cancel, req, asstMsg.ID, wantReasoning)

	return userMsg.ID, asstMsg.ID, nil
}

// buildRequest assembles the API request from the conversation history.
// Caller holds the lock. The streaming placeholder at the tail is
// excluded; prior messages go over as bare role and content.
func (s *ChatSession) buildRequest(wantReasoning bool) openrouter.ChatRequest {
	systemPrompt := reasoning.SystemPrompt
	temperature := TemperatureDefault
	if wantReasoning {
		systemPrompt += reasoning.ReasoningPrompt
		temperature = TemperatureReasoning
	}

	messages := []openrouter.ChatMessage{openrouter.NewSystemMessage(systemPrompt)}
	for _, msg := range s.conv.Messages {
		if msg.IsStreaming || msg.Role == model.RoleSystem || msg.IsEmpty() {
			continue
		}
		messages = append(messages, openrouter.ChatMessage{
			Role:    msg.Role.String(),
			Content: msg.GetDisplayContent(),
		})
	}

	return openrouter.ChatRequest{
		Model:       s.modelID,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   s.maxTokens,
	}
}

// stream runs the request and routes its lifecycle back into the
// session state.
func (s *ChatSession) stream(ctx context.Context, cancel context.CancelFunc, req openrouter.ChatRequest, messageID string, wantReasoning bool) {
	defer cancel()

	err := s.client.ChatStream(ctx, req, func(chunk openrouter.StreamChunk) {
		token := chunk.GetContent()
		if token == "" {
			return
		}
		s.mu.Lock()
		if msg := s.conv.GetMessageByID(messageID); msg != nil {
			msg.AppendToken(token)
			if wantReasoning {
				// Re-split the accumulator on every append so the
				// reasoning section surfaces as soon as both headings
				// have arrived.
				msg.SetStreamSections(reasoning.Split(msg.StreamedContent()))
			}
		}
		s.mu.Unlock()
		if s.events.OnToken != nil {
			s.events.OnToken(messageID, token)
		}
	})

	s.mu.Lock()
	if s.inflight != nil && s.inflight.messageID == messageID {
		s.inflight = nil
	}

	msg := s.conv.GetMessageByID(messageID)
	if msg == nil {
		// Cleared mid-stream; nothing to finalize.
		s.mu.Unlock()
		return
	}

	if err == nil {
		s.finalizeLocked(msg, wantReasoning)
		s.persistLocked()
		s.mu.Unlock()
		if s.events.OnComplete != nil {
			s.events.OnComplete(messageID)
		}
		return
	}

	// A mid-stream failure keeps whatever content arrived; a request
	// that produced nothing leaves no empty placeholder behind.
	if msg.StreamedContent() != "" {
		s.finalizeLocked(msg, wantReasoning)
		s.persistLocked()
	} else {
		s.conv.RemoveMessage(messageID)
	}
	s.mu.Unlock()

	if s.events.OnError != nil {
		s.events.OnError(messageID, err)
	}
}

// finalizeLocked splits reasoning sections and completes streaming.
// Caller holds the lock.
func (s *ChatSession) finalizeLocked(msg *model.Message, wantReasoning bool) {
	raw := msg.StreamedContent()
	content, steps := raw, ""
	if wantReasoning {
		content, steps = reasoning.Split(raw)
	}
	msg.FinalizeStream(content, steps)
}

// persistLocked saves the conversation and updates the current pointer.
// Caller holds the lock. Persistence failures are logged, not fatal;
// the in-memory conversation stays usable.
func (s *ChatSession) persistLocked() {
	if _, err := s.store.Save(s.rootCtx, s.conv); err != nil {
		log.Printf("failed to save conversation: %v", err)
		return
	}
	if err := s.store.SetCurrent(s.rootCtx, s.conv.ID); err != nil {
		log.Printf("failed to set current conversation: %v", err)
	}
}

// CancelInflight aborts the active request, if any. Returns true when
// a request was canceled.
func (s *ChatSession) CancelInflight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == nil {
		return false
	}
	s.inflight.cancel()
	return true
}

// IsStreaming reports whether a request is in flight.
func (s *ChatSession) IsStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight != nil
}

// =============================================================================
// CONVERSATION OPERATIONS
// =============================================================================

// ToggleReasoningExpansion flips the expansion state of a message's
// reasoning section and persists it. Returns the new state.
func (s *ChatSession) ToggleReasoningExpansion(messageID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := s.conv.GetMessageByID(messageID)
	if msg == nil {
		return false, errors.New("message not found: " + messageID)
	}
	if !msg.HasReasoning() {
		return false, nil
	}
	msg.ToggleReasoning()
	s.persistLocked()
	return msg.IsReasoningExpanded, nil
}

// Clear abandons the current conversation and starts a fresh one. An
// in-flight request is canceled; its tokens land in the old
// conversation and are dropped.
func (s *ChatSession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != nil {
		s.inflight.cancel()
		s.inflight = nil
	}
	s.conv = model.NewConversation()
	if err := s.store.ClearCurrent(s.rootCtx); err != nil {
		log.Printf("failed to clear current conversation: %v", err)
	}
}

// LoadConversation switches to a stored conversation. Rejected with
// ErrBusy while a request is streaming into the current one.
func (s *ChatSession) LoadConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight != nil {
		return ErrBusy
	}
	conv, err := s.store.Load(ctx, id)
	if err != nil {
		return err
	}
	s.conv = conv
	if conv.Model != "" {
		if _, ok := catalog.ByID(conv.Model); ok {
			s.modelID = conv.Model
			if !catalog.SupportsReasoning(s.modelID) {
				s.reasoningMode = false
			}
		}
	}
	return s.store.SetCurrent(ctx, id)
}

// Snapshot returns a deep copy of the conversation safe to read while
// a stream is appending tokens.
func (s *ChatSession) Snapshot() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Clone()
}

// ConversationID returns the active conversation's ID.
func (s *ChatSession) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.ID
}

// =============================================================================
// MODEL AND REASONING SETTINGS
// =============================================================================

// SelectModel switches the active model and persists the choice.
// Reasoning mode follows the model's capability: switching to a
// reasoning-capable model turns it on, switching to an incapable one
// turns it off. The change applies to the next request.
func (s *ChatSession) SelectModel(ctx context.Context, id string) error {
	if _, ok := catalog.ByID(id); !ok {
		return ErrUnknownModel
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.modelID = id
	if want := catalog.SupportsReasoning(id); want != s.reasoningMode {
		s.reasoningMode = want
		value := "false"
		if want {
			value = "true"
		}
		if err := s.store.SetPref(ctx, storage.PrefReasoningMode, value); err != nil {
			log.Printf("failed to save reasoning preference: %v", err)
		}
	}
	return s.store.SetPref(ctx, storage.PrefModel, id)
}

// SetReasoningMode turns structured reasoning on or off and persists
// the choice. Enabling fails with ErrReasoningUnsupported when the
// active model lacks the capability.
func (s *ChatSession) SetReasoningMode(ctx context.Context, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if on && !catalog.SupportsReasoning(s.modelID) {
		return ErrReasoningUnsupported
	}
	s.reasoningMode = on
	value := "false"
	if on {
		value = "true"
	}
	return s.store.SetPref(ctx, storage.PrefReasoningMode, value)
}

// ModelID returns the active model.
func (s *ChatSession) ModelID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modelID
}

// ReasoningMode reports whether structured reasoning is enabled.
func (s *ChatSession) ReasoningMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reasoningMode
}

// ReasoningAvailable reports whether the active model can reason.
func (s *ChatSession) ReasoningAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return catalog.SupportsReasoning(s.modelID)
}
