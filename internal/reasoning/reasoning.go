// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package reasoning splits structured model output into an answer and the
// reasoning steps that produced it.
//
// When reasoning mode is active the model is instructed to write its chain
// of thought under a "### My Reasoning Process:" heading followed by the
// final answer under "### Answer:". Split recovers the two sections so the
// UI can show the answer and collapse the reasoning behind a toggle.
package reasoning

import "strings"

// =============================================================================
// PROMPTS
// =============================================================================

// SystemPrompt is the base instruction sent with every request.
const SystemPrompt = "You are a helpful, friendly AI assistant. Provide clear, accurate, and concise responses."

// ReasoningPrompt is appended to the system prompt when reasoning mode is
// active. The headings it mandates are the markers Split looks for.
const ReasoningPrompt = "\n\nWhen answering, think step by step. First write your reasoning under a heading '### My Reasoning Process:' listing each step on its own line, then write your final answer under a heading '### Answer:'."

// =============================================================================
// MARKERS
// =============================================================================

const (
	reasoningMarker = "### My Reasoning Process:"
	answerMarker    = "### Answer:"
)

// =============================================================================
// SPLIT
// =============================================================================

// Split separates raw model output into the final answer and the reasoning
// steps. It looks for the first occurrence of each marker. Both markers
// must be present, with the reasoning marker before the answer marker;
// otherwise the raw text is returned unchanged as the answer and steps is
// empty. Split never errors and never loses text it cannot classify.
func Split(raw string) (content, steps string) {
	ri := strings.Index(raw, reasoningMarker)
	if ri < 0 {
		return raw, ""
	}
	ai := strings.Index(raw, answerMarker)
	if ai < 0 || ai < ri {
		return raw, ""
	}

	steps = strings.TrimSpace(raw[ri+len(reasoningMarker) : ai])
	content = strings.TrimSpace(raw[ai+len(answerMarker):])
	return content, steps
}

// HasMarkers reports whether raw contains a well-formed reasoning section.
func HasMarkers(raw string) bool {
	ri := strings.Index(raw, reasoningMarker)
	if ri < 0 {
		return false
	}
	ai := strings.Index(raw, answerMarker)
	return ai >= 0 && ai > ri
}
