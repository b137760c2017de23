// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// The Conversation type is the single owner of chat history. Outside of
// Replace (used by /load) it supports three structural mutations (append,
// remove-last-if-user, clear) and a provisional-message protocol used while a
// request is in flight:
//
//	conv := model.NewConversation()
//	msg, err := conv.AppendProvisional("Hello")
//	// ... later, on success:
//	conv.Acknowledge()
//	conv.Append(model.NewAssistantMessage("Hi!", ""))
//	// ... or on failure:
//	conv.Rollback()
//
// # Key Types
//
//   - Conversation: ordered history with at most one provisional message
//   - Message: immutable entry with role, content, optional reasoning
//   - Role: user, assistant, or system (system is request-only)
//   - Stats: counts reported by the /stats command
package model
