// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/transform"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 120 * time.Second

var (
	// ErrBusy is returned by Send while a response is still pending.
	ErrBusy = errors.New("still waiting for the previous response")

	// ErrChannelClosed is reported when the result channel closes without
	// delivering a result.
	ErrChannelClosed = errors.New("API connection lost")

	// ErrEmptyMessage is returned by Send for blank text.
	ErrEmptyMessage = errors.New("cannot send empty message")

	// ErrNoCompleter is returned by Send when no backend is configured.
	ErrNoCompleter = errors.New("no completion backend configured")

	// ErrTimeout wraps context.DeadlineExceeded for a request that ran
	// past its timeout.
	ErrTimeout = errors.New("request timed out")
)

// Completer produces one assistant reply for a conversation history.
type Completer interface {
	Complete(ctx context.Context, history []model.Message) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, history []model.Message) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, history []model.Message) (string, error) {
	return f(ctx, history)
}

// result is the single value delivered by a request goroutine.
type result struct {
	text string
	err  error
}

// =============================================================================
// OUTCOME
// =============================================================================

// Outcome describes what a Poll call observed.
type Outcome struct {
	// Done is false when nothing was pending or the response is still
	// outstanding.
	Done bool

	// Message is the appended assistant message on success.
	Message model.Message

	// Result is the transformer output for the reply.
	Result transform.Result

	// Err is set when the request failed and the user message was rolled
	// back.
	Err error

	// Elapsed is the time between Send and delivery.
	Elapsed time.Duration
}

// Failed reports whether the outcome carries an error.
func (o Outcome) Failed() bool { return o.Done && o.Err != nil }

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator runs at most one completion request at a time against a
// Conversation. Send and Poll must be called from the same goroutine; the
// request goroutine only writes to its result channel.
type Orchestrator struct {
	conv      *model.Conversation
	completer Completer
	logger    pslog.Logger
	timeout   time.Duration
	now       func() time.Time

	state   LoadingState
	results chan result
	cancel  context.CancelFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l pslog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an idle orchestrator for conv.
func New(conv *model.Conversation, completer Completer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		conv:      conv,
		completer: completer,
		logger:    discardLogger(),
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func discardLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
}

// State returns the current loading state.
func (o *Orchestrator) State() LoadingState { return o.state }

// Busy reports whether a response is pending.
func (o *Orchestrator) Busy() bool { return o.state.Awaiting() }

// SetCompleter swaps the completion backend. It takes effect on the next
// Send.
func (o *Orchestrator) SetCompleter(c Completer) { o.completer = c }

// Send appends text as a provisional user message and starts the request
// in the background. Blank text fails with ErrEmptyMessage and ErrBusy is
// returned while another request is pending, both without side effects.
func (o *Orchestrator) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if o.state.Awaiting() {
		return ErrBusy
	}
	if o.completer == nil {
		return ErrNoCompleter
	}
	if _, err := o.conv.AppendProvisional(text); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}

	history := o.conv.Messages()
	ctx := context.Background()
	cancel := context.CancelFunc(func() {})
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
	}
	ctx = pslog.ContextWithLogger(ctx, o.logger)

	results := make(chan result, 1)
	o.results = results
	o.cancel = cancel
	o.state = awaiting(o.now())

	o.logger.Info("request started", "messages", len(history), "timeout", o.timeout)

	go func(c Completer) {
		defer cancel()
		text, err := c.Complete(ctx, history)
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		results <- result{text: text, err: err}
	}(o.completer)

	return nil
}

// Poll checks for a delivered result without blocking and applies it to
// the conversation. It returns an Outcome with Done set when a request
// finished during this call.
func (o *Orchestrator) Poll() Outcome {
	if !o.state.Awaiting() || o.results == nil {
		return Outcome{}
	}

	var (
		res result
		ok  bool
	)
	select {
	case res, ok = <-o.results:
		if !ok {
			res = result{err: ErrChannelClosed}
		}
	default:
		return Outcome{}
	}

	elapsed := o.now().Sub(o.state.StartedAt)
	o.finish()

	if res.err != nil {
		o.conv.Rollback()
		o.logger.Warn("request failed", "err", res.err, "elapsed", elapsed)
		return Outcome{Done: true, Err: res.err, Elapsed: elapsed}
	}

	tr := transform.Transform(res.text)
	msg := model.NewAssistantMessage(tr.Body, tr.Reasoning)
	o.conv.Acknowledge()
	o.conv.Append(msg)

	o.logger.Info("request completed",
		"elapsed", elapsed,
		"chars", len(res.text),
		"reasoning", tr.Marker.String(),
		"degraded", tr.Degraded,
	)
	return Outcome{Done: true, Message: msg, Result: tr, Elapsed: elapsed}
}

// Tick advances the loading animation by one frame.
func (o *Orchestrator) Tick() {
	if o.state.Awaiting() {
		o.state.Frame = (o.state.Frame + 1) % FrameCount
	}
}

// Close cancels a pending request. The conversation is left as is.
func (o *Orchestrator) Close() {
	if o.cancel != nil {
		o.cancel()
	}
}

func (o *Orchestrator) finish() {
	o.state = LoadingState{}
	o.results = nil
	o.cancel = nil
}
