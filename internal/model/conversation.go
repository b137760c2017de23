// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"errors"
	"fmt"
)

// ErrProvisionalPending is returned when a provisional user message is
// appended while another one is still awaiting resolution.
var ErrProvisionalPending = errors.New("a provisional message is already pending")

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation owns the ordered message history. Insertion order is display
// order. The zero value is an empty conversation ready to use.
//
// Conversation is not safe for concurrent use; it is mutated only by the
// event loop.
type Conversation struct {
	messages []Message

	// provisional is true while the last message is a user message that
	// has been sent but not yet answered.
	provisional bool
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{messages: make([]Message, 0, 16)}
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds an acknowledged message to the end of the history.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// AppendProvisional appends a user message that may later be rolled back.
// Only one provisional message may exist at a time.
func (c *Conversation) AppendProvisional(content string) (Message, error) {
	if c.provisional {
		return Message{}, ErrProvisionalPending
	}
	msg := NewUserMessage(content)
	c.messages = append(c.messages, msg)
	c.provisional = true
	return msg, nil
}

// Acknowledge commits the pending provisional message. It returns false if
// nothing was pending.
func (c *Conversation) Acknowledge() bool {
	if !c.provisional {
		return false
	}
	c.provisional = false
	return true
}

// Rollback removes the pending provisional message. It returns false if
// nothing was pending.
func (c *Conversation) Rollback() bool {
	if !c.provisional {
		return false
	}
	c.provisional = false
	return c.RemoveLastIfUser()
}

// RemoveLastIfUser removes the last message only when it was sent by the
// user, and reports whether anything was removed.
func (c *Conversation) RemoveLastIfUser() bool {
	n := len(c.messages)
	if n == 0 || c.messages[n-1].Role != RoleUser {
		return false
	}
	c.messages[n-1] = Message{}
	c.messages = c.messages[:n-1]
	c.provisional = false
	return true
}

// Clear removes all messages.
func (c *Conversation) Clear() {
	c.messages = c.messages[:0]
	c.provisional = false
}

// Replace swaps the whole history, as done when a saved conversation is
// loaded. Messages with roles other than user or assistant are rejected.
func (c *Conversation) Replace(msgs []Message) error {
	for i, msg := range msgs {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d: invalid role %q", i, msg.Role)
		}
	}
	c.messages = append(make([]Message, 0, len(msgs)), msgs...)
	c.provisional = false
	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty reports whether the conversation has no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// Pending reports whether a provisional message is awaiting resolution.
func (c *Conversation) Pending() bool {
	return c.provisional
}

// At returns the message at index i.
func (c *Conversation) At(i int) Message {
	return c.messages[i]
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// LastOf returns the most recent message with the given role.
func (c *Conversation) LastOf(role Role) (Message, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == role {
			return c.messages[i], true
		}
	}
	return Message{}, false
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats summarizes the conversation for the /stats command.
type Stats struct {
	Messages  int
	User      int
	Assistant int
	Chars     int
	Tokens    int
}

// String formats the stats as shown in the status line.
func (s Stats) String() string {
	return fmt.Sprintf("Messages: %d (U:%d A:%d) | %d chars | ~%d tokens",
		s.Messages, s.User, s.Assistant, s.Chars, s.Tokens)
}

// Stats computes message and size counts over the whole history.
func (c *Conversation) Stats() Stats {
	var s Stats
	for _, msg := range c.messages {
		s.Messages++
		switch msg.Role {
		case RoleUser:
			s.User++
		case RoleAssistant:
			s.Assistant++
		}
		s.Chars += msg.Chars()
	}
	s.Tokens = (s.Chars + 3) / 4
	return s
}
