// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jeranaias/openchat-tui/internal/catalog"
	"github.com/jeranaias/openchat-tui/internal/model"
	"github.com/jeranaias/openchat-tui/internal/openrouter"
	"github.com/jeranaias/openchat-tui/internal/reasoning"
	"github.com/jeranaias/openchat-tui/internal/storage"
)

const reasoningModelID = "deepseek/deepseek-r1:free"

// sseServer streams the given tokens as SSE frames and records the
// request body it received.
func sseServer(t *testing.T, tokens []string) (*httptest.Server, *openrouter.ChatRequest) {
	t.Helper()
	var captured openrouter.ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, token := range tokens {
			data, _ := json.Marshal(token)
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%s}}]}\n\n", data)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

type testEnv struct {
	session  *ChatSession
	store    *storage.ConversationStore
	complete chan string
	failed   chan error
	tokens   chan string
}

func newTestEnv(t *testing.T, serverURL, modelID string, reasoningMode bool) *testEnv {
	t.Helper()

	kv, err := storage.OpenKV(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenKV failed: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	store := storage.NewConversationStore(kv)

	env := &testEnv{
		store:    store,
		complete: make(chan string, 1),
		failed:   make(chan error, 1),
		tokens:   make(chan string, 64),
	}
	client := openrouter.NewClient("sk-or-test").WithBaseURL(serverURL)
	env.session = NewChatSession(client, store, modelID, reasoningMode, 4000, Events{
		OnToken:    func(_, token string) { env.tokens <- token },
		OnComplete: func(id string) { env.complete <- id },
		OnError:    func(_ string, err error) { env.failed <- err },
	})
	t.Cleanup(env.session.Close)
	return env
}

func (e *testEnv) waitComplete(t *testing.T) string {
	t.Helper()
	select {
	case id := <-e.complete:
		return id
	case err := <-e.failed:
		t.Fatalf("request failed: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
	return ""
}

func (e *testEnv) waitError(t *testing.T) error {
	t.Helper()
	select {
	case err := <-e.failed:
		return err
	case <-e.complete:
		t.Fatal("request unexpectedly completed")
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error")
	}
	return nil
}

func TestSubmitStreamsAndPersists(t *testing.T) {
	srv, captured := sseServer(t, []string{"4"})
	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	userID, asstID, err := env.session.SubmitUserMessage("What is 2+2?")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	if userID == "" || asstID == "" {
		t.Fatal("both message IDs should be set")
	}

	if got := env.waitComplete(t); got != asstID {
		t.Errorf("completed ID = %q, want %q", got, asstID)
	}

	snap := env.session.Snapshot()
	if snap.MessageCount() != 2 {
		t.Fatalf("message count = %d, want 2", snap.MessageCount())
	}
	asst := snap.GetLastAssistantMessage()
	if asst.Content != "4" {
		t.Errorf("content = %q, want %q", asst.Content, "4")
	}
	if asst.IsStreaming {
		t.Error("message should no longer be streaming")
	}

	// The default model runs without reasoning.
	if captured.Temperature != TemperatureDefault {
		t.Errorf("temperature = %v, want %v", captured.Temperature, TemperatureDefault)
	}
	if captured.Messages[0].Content != reasoning.SystemPrompt {
		t.Errorf("system prompt = %q", captured.Messages[0].Content)
	}

	// Conversation persisted and marked current.
	currentID, err := env.store.Current(context.Background())
	if err != nil || currentID == "" {
		t.Fatalf("Current = (%q, %v)", currentID, err)
	}
	loaded, err := env.store.Load(context.Background(), currentID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.GetLastAssistantMessage().Content != "4" {
		t.Error("persisted conversation missing assistant content")
	}
}

func TestSubmitWithReasoningSplitsSections(t *testing.T) {
	srv, captured := sseServer(t, []string{
		"### My Reasoning ",
		"Process:\nStep A\nStep B\n",
		"### Answer:\n42",
	})
	env := newTestEnv(t, srv.URL, reasoningModelID, true)

	_, asstID, err := env.session.SubmitUserMessage("what is the answer?")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.waitComplete(t)

	snap := env.session.Snapshot()
	asst := snap.GetMessageByID(asstID)
	if asst.Content != "42" {
		t.Errorf("content = %q, want %q", asst.Content, "42")
	}
	if asst.ReasoningSteps != "Step A\nStep B" {
		t.Errorf("steps = %q, want %q", asst.ReasoningSteps, "Step A\nStep B")
	}
	if !asst.ReasoningRequested {
		t.Error("ReasoningRequested should be recorded")
	}
	if asst.IsReasoningExpanded {
		t.Error("reasoning starts collapsed")
	}

	if captured.Temperature != TemperatureReasoning {
		t.Errorf("temperature = %v, want %v", captured.Temperature, TemperatureReasoning)
	}
	if captured.Messages[0].Content != reasoning.SystemPrompt+reasoning.ReasoningPrompt {
		t.Errorf("system prompt = %q", captured.Messages[0].Content)
	}
}

func TestReasoningSectionsSurfaceMidStream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"### My Reasoning Process:\\nStep A\\n### Answer:\\n42\"}}]}\n\n")
		flusher.Flush()
		<-release
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, reasoningModelID, true)

	_, asstID, err := env.session.SubmitUserMessage("what is the answer?")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}

	select {
	case <-env.tokens:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first token")
	}

	// Both headings have arrived, so the split is visible while the
	// stream is still open.
	asst := env.session.Snapshot().GetMessageByID(asstID)
	if !asst.IsStreaming {
		t.Fatal("message should still be streaming")
	}
	if asst.ReasoningSteps != "Step A" {
		t.Errorf("mid-stream steps = %q, want %q", asst.ReasoningSteps, "Step A")
	}
	if got := asst.GetDisplayContent(); got != "42" {
		t.Errorf("mid-stream display content = %q, want %q", got, "42")
	}

	close(release)
	env.waitComplete(t)

	asst = env.session.Snapshot().GetMessageByID(asstID)
	if asst.Content != "42" || asst.ReasoningSteps != "Step A" {
		t.Errorf("final split = (%q, %q)", asst.Content, asst.ReasoningSteps)
	}
}

func TestSubmitRejectsEmptyAndBusy(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	if _, _, err := env.session.SubmitUserMessage("   \n  "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("err = %v, want ErrEmptyMessage", err)
	}

	if _, _, err := env.session.SubmitUserMessage("first"); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, _, err := env.session.SubmitUserMessage("second"); !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}

	if !env.session.CancelInflight() {
		t.Error("CancelInflight should find the active request")
	}
	env.waitError(t)

	// The slot is free again after cancellation.
	if env.session.IsStreaming() {
		t.Error("in-flight slot should be cleared")
	}
}

func TestFailedRequestRemovesEmptyPlaceholder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	_, asstID, err := env.session.SubmitUserMessage("hello")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}

	if err := env.waitError(t); !errors.Is(err, openrouter.ErrAuthFailed) {
		t.Errorf("err = %v, want ErrAuthFailed", err)
	}

	snap := env.session.Snapshot()
	if snap.GetMessageByID(asstID) != nil {
		t.Error("empty placeholder should be removed on failure")
	}
	if snap.MessageCount() != 1 {
		t.Errorf("message count = %d, want just the user message", snap.MessageCount())
	}
}

func TestCanceledStreamKeepsPartialContent(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial answer\"}}]}\n\n")
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	_, asstID, err := env.session.SubmitUserMessage("go on")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}

	// Wait for the token to arrive before canceling.
	select {
	case <-env.tokens:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first token")
	}
	env.session.CancelInflight()

	if err := env.waitError(t); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}

	snap := env.session.Snapshot()
	asst := snap.GetMessageByID(asstID)
	if asst == nil {
		t.Fatal("partial message should be kept")
	}
	if asst.Content != "partial answer" {
		t.Errorf("content = %q, want partial content", asst.Content)
	}
	if asst.IsStreaming {
		t.Error("canceled message must not stay in streaming state")
	}
}

func TestCloseAbortsStream(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	if _, _, err := env.session.SubmitUserMessage("hi"); err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.session.Close()

	if err := env.waitError(t); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled in chain", err)
	}
	if _, _, err := env.session.SubmitUserMessage("again"); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestToggleReasoningExpansion(t *testing.T) {
	srv, _ := sseServer(t, []string{"### My Reasoning Process:\nStep A\n### Answer:\nok"})
	env := newTestEnv(t, srv.URL, reasoningModelID, true)

	_, asstID, err := env.session.SubmitUserMessage("why?")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.waitComplete(t)

	expanded, err := env.session.ToggleReasoningExpansion(asstID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !expanded {
		t.Error("first toggle should expand")
	}

	expanded, err = env.session.ToggleReasoningExpansion(asstID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if expanded {
		t.Error("second toggle should collapse")
	}

	if _, err := env.session.ToggleReasoningExpansion("missing"); err == nil {
		t.Error("unknown message ID should error")
	}
}

func TestToggleIgnoresMessagesWithoutReasoning(t *testing.T) {
	srv, _ := sseServer(t, []string{"plain"})
	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	_, asstID, err := env.session.SubmitUserMessage("hi")
	if err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.waitComplete(t)

	expanded, err := env.session.ToggleReasoningExpansion(asstID)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if expanded {
		t.Error("message without reasoning cannot expand")
	}
}

func TestClearStartsFreshConversation(t *testing.T) {
	srv, _ := sseServer(t, []string{"hello"})
	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	if _, _, err := env.session.SubmitUserMessage("hi"); err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.waitComplete(t)
	oldID := env.session.ConversationID()

	env.session.Clear()

	if env.session.ConversationID() == oldID {
		t.Error("Clear should start a new conversation")
	}
	if !env.session.Snapshot().IsEmpty() {
		t.Error("new conversation should be empty")
	}
	current, err := env.store.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if current != "" {
		t.Error("Clear should drop the current pointer")
	}
}

func TestSelectModelAndReasoningMode(t *testing.T) {
	srv, _ := sseServer(t, nil)
	env := newTestEnv(t, srv.URL, reasoningModelID, true)
	ctx := context.Background()

	if err := env.session.SelectModel(ctx, "not/a-model"); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("err = %v, want ErrUnknownModel", err)
	}

	// Switching to a model without reasoning support drops the mode.
	if err := env.session.SelectModel(ctx, catalog.DefaultModelID); err != nil {
		t.Fatalf("SelectModel failed: %v", err)
	}
	if env.session.ReasoningMode() {
		t.Error("reasoning mode should switch off with an incapable model")
	}
	if env.session.ReasoningAvailable() {
		t.Error("default model should not report reasoning support")
	}

	if err := env.session.SetReasoningMode(ctx, true); !errors.Is(err, ErrReasoningUnsupported) {
		t.Errorf("err = %v, want ErrReasoningUnsupported", err)
	}

	// Preferences were persisted.
	modelPref, err := env.store.Pref(ctx, storage.PrefModel)
	if err != nil || modelPref != catalog.DefaultModelID {
		t.Errorf("model pref = (%q, %v)", modelPref, err)
	}
	reasoningPref, err := env.store.Pref(ctx, storage.PrefReasoningMode)
	if err != nil || reasoningPref != "false" {
		t.Errorf("reasoning pref = (%q, %v)", reasoningPref, err)
	}

	// Switching to a reasoning-capable model turns the mode back on.
	if err := env.session.SelectModel(ctx, reasoningModelID); err != nil {
		t.Fatalf("SelectModel failed: %v", err)
	}
	if !env.session.ReasoningMode() {
		t.Error("reasoning mode should auto-enable with a capable model")
	}
	reasoningPref, err = env.store.Pref(ctx, storage.PrefReasoningMode)
	if err != nil || reasoningPref != "true" {
		t.Errorf("reasoning pref = (%q, %v), want \"true\"", reasoningPref, err)
	}
}

func TestRestorePrefsAndConversation(t *testing.T) {
	srv, _ := sseServer(t, nil)
	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)
	ctx := context.Background()

	conv := model.NewConversation()
	conv.AddUserMessage("remembered")
	id, err := env.store.Save(ctx, conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := env.store.SetCurrent(ctx, id); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}
	if err := env.store.SetPref(ctx, storage.PrefModel, reasoningModelID); err != nil {
		t.Fatalf("SetPref failed: %v", err)
	}
	if err := env.store.SetPref(ctx, storage.PrefReasoningMode, "true"); err != nil {
		t.Fatalf("SetPref failed: %v", err)
	}

	if err := env.session.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if env.session.ModelID() != reasoningModelID {
		t.Errorf("model = %q, want %q", env.session.ModelID(), reasoningModelID)
	}
	if !env.session.ReasoningMode() {
		t.Error("reasoning mode should be restored")
	}
	if env.session.ConversationID() != id {
		t.Error("current conversation should be resumed")
	}
	if env.session.Snapshot().Messages[0].Content != "remembered" {
		t.Error("restored conversation missing its message")
	}
}

func TestRestoreIgnoresDanglingCurrentPointer(t *testing.T) {
	srv, _ := sseServer(t, nil)
	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)
	ctx := context.Background()

	if err := env.store.SetCurrent(ctx, "gone"); err != nil {
		t.Fatalf("SetCurrent failed: %v", err)
	}
	if err := env.session.Restore(ctx); err != nil {
		t.Fatalf("Restore should tolerate a dangling pointer: %v", err)
	}
	if !env.session.Snapshot().IsEmpty() {
		t.Error("session should fall back to a fresh conversation")
	}
}

func TestLoadConversationWhileBusy(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)
	ctx := context.Background()

	other := model.NewConversation()
	other.AddUserMessage("elsewhere")
	otherID, err := env.store.Save(ctx, other)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, _, err := env.session.SubmitUserMessage("streaming"); err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	if err := env.session.LoadConversation(ctx, otherID); !errors.Is(err, ErrBusy) {
		t.Errorf("err = %v, want ErrBusy", err)
	}

	env.session.CancelInflight()
	env.waitError(t)

	if err := env.session.LoadConversation(ctx, otherID); err != nil {
		t.Fatalf("LoadConversation failed: %v", err)
	}
	if env.session.ConversationID() != otherID {
		t.Error("session should switch to the loaded conversation")
	}
}

func TestHistorySentOnFollowUp(t *testing.T) {
	srv, captured := sseServer(t, []string{"again"})
	env := newTestEnv(t, srv.URL, catalog.DefaultModelID, false)

	if _, _, err := env.session.SubmitUserMessage("first question"); err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.waitComplete(t)

	if _, _, err := env.session.SubmitUserMessage("follow up"); err != nil {
		t.Fatalf("SubmitUserMessage failed: %v", err)
	}
	env.waitComplete(t)

	// system + user + assistant + user
	if len(captured.Messages) != 4 {
		t.Fatalf("message count = %d, want 4", len(captured.Messages))
	}
	if captured.Messages[1].Content != "first question" || captured.Messages[2].Content != "again" {
		t.Errorf("history out of order: %+v", captured.Messages)
	}
	if captured.Messages[3].Content != "follow up" {
		t.Errorf("latest message = %q", captured.Messages[3].Content)
	}
}
