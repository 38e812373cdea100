// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/openchat-tui/internal/model"
)

// =============================================================================
// KEY SCHEME
// =============================================================================

const (
	// conversationKeyPrefix namespaces per-conversation records.
	conversationKeyPrefix = "conversation_"

	// indexKey holds the JSON array of conversation IDs. Keeping an
	// explicit index record (instead of scanning keys by prefix) makes
	// listing cheap and keeps membership transactional with the records.
	indexKey = "conversation_index"

	// currentKey holds the ID of the active conversation.
	currentKey = "current_conversation"

	// prefKeyPrefix namespaces user preference records.
	prefKeyPrefix = "pref_"
)

// Preference names used by the application.
const (
	PrefModel         = "model"
	PrefReasoningMode = "reasoning_mode"
	PrefSortOrder     = "sort_order"
)

// SortOrder controls LoadAll ordering.
type SortOrder string

const (
	SortNewestFirst SortOrder = "newest"
	SortOldestFirst SortOrder = "oldest"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is supports errors.Is comparison against ConversationError values.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// STORED RECORD TYPES
// =============================================================================

// storedConversation is the JSON payload under a conversation_<id> key.
type storedConversation struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Model     string          `json:"model,omitempty"`
	Messages  []storedMessage `json:"messages"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// storedMessage is the persisted form of a message.
type storedMessage struct {
	ID                  string    `json:"id"`
	Role                string    `json:"role"`
	Content             string    `json:"content"`
	ReasoningSteps      string    `json:"reasoningSteps,omitempty"`
	ReasoningRequested  bool      `json:"reasoningRequested,omitempty"`
	IsReasoningExpanded bool      `json:"isReasoningExpanded,omitempty"`
	Timestamp           time.Time `json:"timestamp"`
}

func toStored(conv *model.Conversation) storedConversation {
	sc := storedConversation{
		ID:        conv.ID,
		Title:     conv.Title,
		Model:     conv.Model,
		UpdatedAt: conv.UpdatedAt,
		Messages:  make([]storedMessage, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		sc.Messages = append(sc.Messages, storedMessage{
			ID:                  msg.ID,
			Role:                string(msg.Role),
			Content:             msg.GetDisplayContent(),
			ReasoningSteps:      msg.ReasoningSteps,
			ReasoningRequested:  msg.ReasoningRequested,
			IsReasoningExpanded: msg.IsReasoningExpanded,
			Timestamp:           msg.Timestamp,
		})
	}
	return sc
}

func (sc storedConversation) toModel() *model.Conversation {
	conv := &model.Conversation{
		ID:        sc.ID,
		Title:     sc.Title,
		Model:     sc.Model,
		UpdatedAt: sc.UpdatedAt,
		Messages:  make([]*model.Message, 0, len(sc.Messages)),
	}
	for _, sm := range sc.Messages {
		conv.Messages = append(conv.Messages, &model.Message{
			ID:                  sm.ID,
			Role:                model.Role(sm.Role),
			Content:             sm.Content,
			ReasoningSteps:      sm.ReasoningSteps,
			ReasoningRequested:  sm.ReasoningRequested,
			IsReasoningExpanded: sm.IsReasoningExpanded,
			Timestamp:           sm.Timestamp,
		})
	}
	return conv
}

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// ConversationStore persists conversations in the key-value store.
type ConversationStore struct {
	kv *KV
}

// NewConversationStore creates a store over an open KV database.
func NewConversationStore(kv *KV) *ConversationStore {
	return &ConversationStore{kv: kv}
}

func conversationKey(id string) string {
	return conversationKeyPrefix + id
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save upserts a conversation and ensures its ID is in the index, in a
// single transaction. A missing ID is assigned; the title defaults to the
// first user message; UpdatedAt is stamped.
func (s *ConversationStore) Save(ctx context.Context, conv *model.Conversation) (string, error) {
	if conv.ID == "" {
		conv.ID = model.GenerateID()
	}
	if conv.Title == "" {
		for _, msg := range conv.Messages {
			if msg.Role == model.RoleUser {
				conv.SetTitle(msg.Preview(model.TitleMaxRunes))
				break
			}
		}
	}
	conv.UpdatedAt = time.Now()

	data, err := json.Marshal(toStored(conv))
	if err != nil {
		return "", err
	}

	err = s.kv.WithTx(ctx, func(tx *sql.Tx) error {
		if err := txSet(tx, conversationKey(conv.ID), string(data)); err != nil {
			return err
		}
		ids, err := readIndexTx(tx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if id == conv.ID {
				return nil // already indexed
			}
		}
		return writeIndexTx(tx, append(ids, conv.ID))
	})
	if err != nil {
		return "", err
	}
	return conv.ID, nil
}

// Load returns one conversation by ID.
func (s *ConversationStore) Load(ctx context.Context, id string) (*model.Conversation, error) {
	value, ok, err := s.kv.Get(ctx, conversationKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConversationNotFound
	}

	var sc storedConversation
	if err := json.Unmarshal([]byte(value), &sc); err != nil {
		return nil, &ConversationError{Message: "conversation record corrupted: " + id}
	}
	return sc.toModel(), nil
}

// LoadAll returns every conversation in the index, sorted by UpdatedAt.
// Records that are missing or fail to parse are skipped and pruned from
// the index so it self-heals. A zero UpdatedAt falls back to now so a
// damaged record still sorts somewhere sensible.
func (s *ConversationStore) LoadAll(ctx context.Context, order SortOrder) ([]*model.Conversation, error) {
	var conversations []*model.Conversation

	err := s.kv.WithTx(ctx, func(tx *sql.Tx) error {
		ids, err := readIndexTx(tx)
		if err != nil {
			return err
		}

		healthy := make([]string, 0, len(ids))
		for _, id := range ids {
			value, ok, err := txGet(tx, conversationKey(id))
			if err != nil {
				return err
			}
			if !ok {
				log.Printf("pruning missing conversation %s from index", id)
				continue
			}
			var sc storedConversation
			if err := json.Unmarshal([]byte(value), &sc); err != nil {
				log.Printf("skipping corrupted conversation %s: %v", id, err)
				continue
			}
			if sc.UpdatedAt.IsZero() {
				sc.UpdatedAt = time.Now()
			}
			healthy = append(healthy, id)
			conversations = append(conversations, sc.toModel())
		}

		if len(healthy) != len(ids) {
			return writeIndexTx(tx, healthy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		if order == SortOldestFirst {
			return conversations[i].UpdatedAt.Before(conversations[j].UpdatedAt)
		}
		return conversations[i].UpdatedAt.After(conversations[j].UpdatedAt)
	})
	return conversations, nil
}

// =============================================================================
// DELETE
// =============================================================================

// Delete removes a conversation and its index entry. If the current
// pointer referenced the deleted conversation it is cleared. Deleting a
// missing ID is a no-op.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	return s.kv.WithTx(ctx, func(tx *sql.Tx) error {
		if err := txDelete(tx, conversationKey(id)); err != nil {
			return err
		}

		ids, err := readIndexTx(tx)
		if err != nil {
			return err
		}
		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		if err := writeIndexTx(tx, kept); err != nil {
			return err
		}

		current, ok, err := txGet(tx, currentKey)
		if err != nil {
			return err
		}
		if ok && current == id {
			return txDelete(tx, currentKey)
		}
		return nil
	})
}

// DeleteAllExcept removes every conversation except the one with keepID.
// An empty keepID clears everything. The index is rewritten accordingly
// and the current pointer is cleared unless it points at keepID.
func (s *ConversationStore) DeleteAllExcept(ctx context.Context, keepID string) error {
	return s.kv.WithTx(ctx, func(tx *sql.Tx) error {
		ids, err := readIndexTx(tx)
		if err != nil {
			return err
		}

		var kept []string
		for _, id := range ids {
			if keepID != "" && id == keepID {
				kept = append(kept, id)
				continue
			}
			if err := txDelete(tx, conversationKey(id)); err != nil {
				return err
			}
		}
		if kept == nil {
			kept = []string{}
		}
		if err := writeIndexTx(tx, kept); err != nil {
			return err
		}

		current, ok, err := txGet(tx, currentKey)
		if err != nil {
			return err
		}
		if ok && (keepID == "" || current != keepID) {
			return txDelete(tx, currentKey)
		}
		return nil
	})
}

// =============================================================================
// SEARCH
// =============================================================================

// Search returns conversations whose title or any message content
// contains the query, case-insensitively. An empty query returns all
// conversations. Results are sorted newest first.
func (s *ConversationStore) Search(ctx context.Context, query string) ([]*model.Conversation, error) {
	all, err := s.LoadAll(ctx, SortNewestFirst)
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all, nil
	}

	var matches []*model.Conversation
	for _, conv := range all {
		if strings.Contains(strings.ToLower(conv.Title), query) {
			matches = append(matches, conv)
			continue
		}
		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				matches = append(matches, conv)
				break
			}
		}
	}
	return matches, nil
}

// =============================================================================
// CURRENT POINTER AND PREFERENCES
// =============================================================================

// SetCurrent records the active conversation ID.
func (s *ConversationStore) SetCurrent(ctx context.Context, id string) error {
	return s.kv.Set(ctx, currentKey, id)
}

// Current returns the active conversation ID, or "" when none is set.
func (s *ConversationStore) Current(ctx context.Context) (string, error) {
	value, _, err := s.kv.Get(ctx, currentKey)
	return value, err
}

// ClearCurrent removes the active conversation pointer.
func (s *ConversationStore) ClearCurrent(ctx context.Context) error {
	return s.kv.Delete(ctx, currentKey)
}

// SetPref stores a user preference.
func (s *ConversationStore) SetPref(ctx context.Context, name, value string) error {
	return s.kv.Set(ctx, prefKeyPrefix+name, value)
}

// Pref returns a user preference, or "" when unset.
func (s *ConversationStore) Pref(ctx context.Context, name string) (string, error) {
	value, _, err := s.kv.Get(ctx, prefKeyPrefix+name)
	return value, err
}

// =============================================================================
// INDEX HELPERS
// =============================================================================

func readIndexTx(tx *sql.Tx) ([]string, error) {
	value, ok, err := txGet(tx, indexKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		// A corrupted index is rebuilt from scratch rather than
		// poisoning every operation.
		log.Printf("conversation index corrupted, resetting: %v", err)
		return nil, nil
	}
	return ids, nil
}

func writeIndexTx(tx *sql.Tx, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return txSet(tx, indexKey, string(data))
}
