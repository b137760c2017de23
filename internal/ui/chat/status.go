// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/jeranaias/hfchat-tui/internal/cloud"
	"github.com/jeranaias/hfchat-tui/internal/orchestrator"
	"github.com/jeranaias/hfchat-tui/internal/storage"
)

// =============================================================================
// STATUS LINE
// =============================================================================

// Severity selects the status line color and symbol.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Status is the one-line message under the conversation.
type Status struct {
	Text     string
	Severity Severity
}

func info(text string) Status    { return Status{Text: text, Severity: SeverityInfo} }
func success(text string) Status { return Status{Text: text, Severity: SeveritySuccess} }
func warning(text string) Status { return Status{Text: text, Severity: SeverityWarning} }
func failure(text string) Status { return Status{Text: text, Severity: SeverityError} }

// Status texts shared by handlers and tests.
const (
	statusWelcome       = "Welcome! Press 'i' to start typing, 'h' for help, 'q' to quit"
	statusEmptyInput    = "Cannot send empty message"
	statusSending       = "Sending message..."
	statusReceived      = "Response received"
	statusBusy          = "Still waiting for the previous response"
	statusHelpToggled   = "Help toggled"
	statusCleared       = "Conversation cleared"
	statusConnection    = "Connection Error: Cannot reach API"
	statusTimeout       = "Connection Error: Request timed out"
	statusAuth          = "Error 401: Invalid API key"
	statusNotFound      = "Error 404: API endpoint not found"
	statusRateLimit     = "Error 429: Rate limit exceeded"
	statusConnLost      = "API connection lost"
	statusThinkingShown = "Thinking tokens: visible"
	statusThinkingHide  = "Thinking tokens: hidden"
)

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// ErrorKind groups errors by how they are reported to the user.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindConnection
	KindAuth
	KindNotFound
	KindRateLimit
	KindEmptyInput
	KindPersistence
	KindParseDegradation
)

// String returns the kind name used in logs.
func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "ConnectionError"
	case KindAuth:
		return "AuthError"
	case KindNotFound:
		return "NotFoundError"
	case KindRateLimit:
		return "RateLimitError"
	case KindEmptyInput:
		return "EmptyInputError"
	case KindPersistence:
		return "PersistenceError"
	case KindParseDegradation:
		return "ParseDegradation"
	default:
		return "UnknownError"
	}
}

// Classify maps err onto an ErrorKind. Sentinel and typed errors are
// checked first; the message text is the fallback for errors from other
// backends.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}

	var convErr *storage.ConversationError
	switch {
	case errors.As(err, &convErr):
		return KindPersistence
	case errors.Is(err, orchestrator.ErrEmptyMessage):
		return KindEmptyInput
	case errors.Is(err, cloud.ErrAuthFailed):
		return KindAuth
	case errors.Is(err, cloud.ErrModelNotFound):
		return KindNotFound
	case errors.Is(err, cloud.ErrRateLimited):
		return KindRateLimit
	case errors.Is(err, cloud.ErrConnection),
		errors.Is(err, orchestrator.ErrTimeout),
		errors.Is(err, orchestrator.ErrChannelClosed):
		return KindConnection
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "401"), strings.Contains(msg, "unauthorized"):
		return KindAuth
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"):
		return KindNotFound
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"):
		return KindRateLimit
	case strings.Contains(msg, "connection"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "refused"):
		return KindConnection
	}
	return KindUnknown
}

// ErrorStatus returns the status line for a failed request. Blank input is
// only a warning.
func ErrorStatus(err error) Status {
	switch {
	case errors.Is(err, orchestrator.ErrChannelClosed):
		return failure(statusConnLost)
	case errors.Is(err, orchestrator.ErrTimeout):
		return failure(statusTimeout)
	}

	switch Classify(err) {
	case KindEmptyInput:
		return warning(statusEmptyInput)
	case KindAuth:
		return failure(statusAuth)
	case KindNotFound:
		return failure(statusNotFound)
	case KindRateLimit:
		return failure(statusRateLimit)
	case KindConnection:
		return failure(statusConnection)
	default:
		return failure("Error: " + err.Error())
	}
}
