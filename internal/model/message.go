// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns the short label used in message headers.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "AI"
	case RoleSystem:
		return "System"
	default:
		return string(r)
	}
}

// Valid reports whether r is a role that may appear in stored history.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the conversation history.
// Messages are values; once appended to a Conversation they are never edited.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Reasoning string    `json:"reasoning,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates an assistant message carrying an optional
// reasoning segment. An empty reasoning string means none.
func NewAssistantMessage(content, reasoning string) Message {
	msg := NewMessage(RoleAssistant, content)
	msg.Reasoning = reasoning
	return msg
}

// HasReasoning reports whether the message carries a reasoning segment.
func (m Message) HasReasoning() bool {
	return m.Reasoning != ""
}

// IsEmpty returns true if the message has no visible content.
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == "" && m.Reasoning == ""
}

// Chars returns the character count of the message, reasoning included.
func (m Message) Chars() int {
	return len([]rune(m.Content)) + len([]rune(m.Reasoning))
}

// Preview returns the first maxLen runes of the content on a single line.
func (m Message) Preview(maxLen int) string {
	content := strings.Join(strings.Fields(m.Content), " ")
	runes := []rune(content)
	if maxLen <= 0 || len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// Clock returns the local HH:MM:SS timestamp shown in message headers.
func (m Message) Clock() string {
	return m.CreatedAt.Local().Format("15:04:05")
}

func generateID() string {
	return "msg_" + uuid.NewString()
}
