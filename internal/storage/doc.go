// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversations, the current-conversation
// pointer, and user preferences in a single-file SQLite key-value
// database.
//
// The key scheme is flat and namespaced by prefix:
//
//	conversation_<id>    JSON-encoded conversation record
//	conversation_index   JSON array of conversation IDs
//	current_conversation ID of the active conversation
//	pref_<name>          user preference value
//
// Membership is tracked through the explicit index record rather than
// key-prefix scans, so listing and deletion stay O(index) and the index
// can self-heal when records go missing or fail to parse.
package storage
