// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive chat view: the message
// viewport, input area, model picker, and conversation browser.
//
// Streaming tokens arrive as Bubble Tea messages pumped in from the
// session's event callbacks. They are batched through a StreamingBuffer
// and rendered on a capped-rate tick so fast streams stay smooth
// without redrawing the viewport per token.
package chat
