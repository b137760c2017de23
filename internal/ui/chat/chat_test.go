// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hfchat-tui/internal/cloud"
	"github.com/jeranaias/hfchat-tui/internal/commands"
	"github.com/jeranaias/hfchat-tui/internal/config"
	"github.com/jeranaias/hfchat-tui/internal/logging"
	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/orchestrator"
	"github.com/jeranaias/hfchat-tui/internal/storage"
	"github.com/jeranaias/hfchat-tui/internal/ui/components"
	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// HELPERS
// =============================================================================

type harness struct {
	store   *storage.ConversationStore
	copied  string
	copyErr error
}

func newTestModel(t *testing.T, c orchestrator.Completer) (Model, *harness) {
	t.Helper()
	store, err := storage.NewConversationStoreWithDir(t.TempDir())
	require.NoError(t, err)

	h := &harness{store: store}
	m := New(Options{
		Config:    config.Default(),
		Completer: c,
		Store:     store,
		Theme:     styles.NewTheme(),
		Clipboard: func(s string) error {
			if h.copyErr != nil {
				return h.copyErr
			}
			h.copied = s
			return nil
		},
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, h
}

func reply(text string) orchestrator.Completer {
	return orchestrator.CompleterFunc(func(ctx context.Context, history []model.Message) (string, error) {
		return text, nil
	})
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok, "Update must return a chat.Model")
	return out
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var enter = tea.KeyMsg{Type: tea.KeyEnter}

// submitText enters Editing mode, types text and presses enter.
func submitText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = update(t, m, keyRunes("i"))
	require.Equal(t, ModeEditing, m.Mode())
	if text != "" {
		m = update(t, m, keyRunes(text))
	}
	return update(t, m, enter)
}

// waitIdle ticks until the pending request has been delivered.
func waitIdle(t *testing.T, m Model) Model {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for m.Busy() {
		require.True(t, time.Now().Before(deadline), "response never delivered")
		m = update(t, m, TickMsg(time.Now()))
		time.Sleep(time.Millisecond)
	}
	return m
}

func seed(t *testing.T, m Model, n int) Model {
	t.Helper()
	msgs := make([]model.Message, 0, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			msgs = append(msgs, model.NewUserMessage(fmt.Sprintf("question %d", i)))
		} else {
			msgs = append(msgs, model.NewAssistantMessage(fmt.Sprintf("answer %d", i), ""))
		}
	}
	require.NoError(t, m.conv.Replace(msgs))
	m.layout()
	return m
}

// =============================================================================
// SEND SCENARIOS
// =============================================================================

func TestSend_Success(t *testing.T) {
	m, _ := newTestModel(t, reply("I'm doing well!"))

	m = submitText(t, m, "Hello, how are you?")
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, info(statusSending), m.Status())
	assert.Equal(t, 1, m.Conversation().Len())
	assert.Equal(t, components.Bottom(), m.viewport.State())

	m = waitIdle(t, m)

	msgs := m.Conversation().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "Hello, how are you?", msgs[0].Content)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "I'm doing well!", msgs[1].Content)
	assert.Equal(t, "Idle", m.orch.State().String())
	assert.Equal(t, success(statusReceived), m.Status())
	assert.Contains(t, m.View(), "I'm doing well!")
}

func TestSend_AlternatingHistory(t *testing.T) {
	m, _ := newTestModel(t, reply("ok"))

	for i := 0; i < 3; i++ {
		m = submitText(t, m, fmt.Sprintf("message %d", i))
		m = waitIdle(t, m)
	}

	msgs := m.Conversation().Messages()
	require.Len(t, msgs, 6)
	for i, msg := range msgs {
		want := model.RoleUser
		if i%2 == 1 {
			want = model.RoleAssistant
		}
		assert.Equal(t, want, msg.Role, "message %d", i)
	}
}

func TestSend_AuthFailureRollsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid credentials"}}`))
	}))
	defer srv.Close()

	cfg := cloud.DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Token = "hf_bad"
	m, _ := newTestModel(t, cloud.NewClient(cfg))

	m = submitText(t, m, "hi")
	m = waitIdle(t, m)

	assert.Equal(t, 0, m.Conversation().Len())
	assert.False(t, m.Conversation().Pending())
	assert.Equal(t, failure(statusAuth), m.Status())
}

func TestSend_EmptyInput(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))

	for _, text := range []string{"", "   "} {
		m = submitText(t, m, text)
		assert.Equal(t, warning(statusEmptyInput), m.Status())
		assert.Equal(t, ModeEditing, m.Mode(), "empty send stays in Editing")
		assert.Equal(t, 0, m.Conversation().Len())
		assert.False(t, m.Busy())
		m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	}
}

func TestSend_Reasoning(t *testing.T) {
	m, _ := newTestModel(t, reply("<thinking>analyzing...</thinking>\n\nDone."))

	m = waitIdle(t, submitText(t, m, "think"))

	last, ok := m.Conversation().LastOf(model.RoleAssistant)
	require.True(t, ok)
	assert.Equal(t, "analyzing...", last.Reasoning)
	assert.Equal(t, "Done.", last.Content)
	assert.Contains(t, m.View(), "analyzing...")

	m = update(t, m, keyRunes("t"))
	assert.Equal(t, info(statusThinkingHide), m.Status())
	view := m.View()
	assert.NotContains(t, view, "analyzing...")
	assert.Contains(t, view, components.ReasoningHiddenHint)

	m = update(t, m, keyRunes("t"))
	assert.Equal(t, info(statusThinkingShown), m.Status())
}

type gate struct {
	release chan struct{}
}

func (g *gate) Complete(ctx context.Context, history []model.Message) (string, error) {
	select {
	case <-g.release:
		return "released", nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func TestSend_RefusedWhileBusy(t *testing.T) {
	g := &gate{release: make(chan struct{})}
	m, _ := newTestModel(t, g)

	m = submitText(t, m, "first")
	require.True(t, m.Busy())

	m = submitText(t, m, "second")
	assert.Equal(t, warning(statusBusy), m.Status())
	assert.Equal(t, ModeEditing, m.Mode())
	assert.Equal(t, "second", m.input.Value(), "buffer is kept")
	assert.Equal(t, 1, m.Conversation().Len())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = submitText(t, m, "/clear")
	assert.Equal(t, SeverityWarning, m.Status().Severity)
	assert.Equal(t, 1, m.Conversation().Len())

	close(g.release)
	m = waitIdle(t, m)
	assert.Equal(t, 2, m.Conversation().Len())
}

func TestSend_EscapedSlash(t *testing.T) {
	m, _ := newTestModel(t, reply("ok"))

	m = waitIdle(t, submitText(t, m, "//etc/hosts"))

	first := m.Conversation().At(0)
	assert.Equal(t, "/etc/hosts", first.Content)
}

func TestEditing_NewlineAndCancel(t *testing.T) {
	m, _ := newTestModel(t, reply("ok"))

	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("a"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
	m = update(t, m, keyRunes("b"))
	assert.Equal(t, "a\nb", m.input.Value())
	assert.Equal(t, ModeEditing, m.Mode())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, 0, m.Conversation().Len())
}

// =============================================================================
// COMMANDS
// =============================================================================

func TestCommands(t *testing.T) {
	tests := []struct {
		input string
		want  Status
	}{
		{"/stats", info("Messages: 0 (U:0 A:0) | 0 chars | ~0 tokens")},
		{"/s", info("Messages: 0 (U:0 A:0) | 0 chars | ~0 tokens")},
		{"/help", info(statusHelpToggled)},
		{"/clear", success(statusCleared)},
		{"/foo", warning("Unknown command: /foo")},
		{"/quit", warning("Unknown command: /quit")},
		{"/save a b", warning("/save: too many arguments (got: 2) - expected: /save [name]")},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			m, _ := newTestModel(t, reply("never"))

			m = submitText(t, m, tc.input)
			assert.Equal(t, tc.want, m.Status())
			assert.Equal(t, ModeNormal, m.Mode())
			assert.Equal(t, "", m.input.Value())
			assert.Equal(t, 0, m.Conversation().Len(), "commands are never sent")
			assert.False(t, m.Busy())
		})
	}
}

func TestCommands_SaveAndLoad(t *testing.T) {
	m, h := newTestModel(t, reply("never"))
	m = seed(t, m, 4)

	m = submitText(t, m, "/save notes")
	assert.Equal(t, success("Saved conversation to notes.json"), m.Status())

	m = submitText(t, m, "/clear")
	require.Equal(t, 0, m.Conversation().Len())

	m.viewport.Top()
	m = submitText(t, m, "/load notes")
	assert.Equal(t, success("Loaded conversation from notes.json"), m.Status())
	assert.Equal(t, 4, m.Conversation().Len())
	assert.Equal(t, components.Bottom(), m.viewport.State())

	m = submitText(t, m, "/load missing")
	assert.Equal(t, SeverityError, m.Status().Severity)
	assert.True(t, strings.HasPrefix(m.Status().Text, "Failed to load: "), m.Status().Text)
	assert.Equal(t, 4, m.Conversation().Len(), "failed load keeps history")

	saved, err := h.store.Load("notes")
	require.NoError(t, err)
	assert.Len(t, saved, 4)
}

func TestQuickSave(t *testing.T) {
	m, h := newTestModel(t, reply("never"))
	m = seed(t, m, 2)

	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("draft"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Equal(t, success("Saved conversation to conversation.json"), m.Status())
	assert.Equal(t, ModeEditing, m.Mode())
	assert.Equal(t, "draft", m.input.Value())

	saved, err := h.store.Load(storage.DefaultName)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestSave_SkipsProvisionalMessage(t *testing.T) {
	g := &gate{release: make(chan struct{})}
	m, h := newTestModel(t, g)
	m = seed(t, m, 2)

	m = submitText(t, m, "pending")
	require.True(t, m.Busy())
	m = submitText(t, m, "/save")

	saved, err := h.store.Load(storage.DefaultName)
	require.NoError(t, err)
	assert.Len(t, saved, 2)

	close(g.release)
	waitIdle(t, m)
}

func TestTabCompletion(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))

	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("/cl"))
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/clear", m.input.Value())

	m = update(t, m, enter)
	assert.Equal(t, success(statusCleared), m.Status())
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestScrolling(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))
	m = seed(t, m, 12)
	total := m.viewport.TotalLines()
	height := m.viewport.Height()
	require.Greater(t, total, height+components.PageStep)

	assert.Equal(t, components.Bottom(), m.viewport.State())

	m = update(t, m, keyRunes("g"))
	assert.Equal(t, components.Fixed(0), m.viewport.State())
	assert.Contains(t, m.View(), "[MSG 1/12]")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.Equal(t, components.Fixed(components.PageStep), m.viewport.State())

	m = update(t, m, keyRunes("G"))
	assert.Equal(t, components.Bottom(), m.viewport.State())
	assert.Contains(t, m.View(), "[BOTTOM ↓]")

	m = update(t, m, keyRunes("k"))
	assert.Equal(t, components.Fixed(total-height-1), m.viewport.State())

	m = update(t, m, tea.MouseMsg{Type: tea.MouseWheelDown})
	assert.Equal(t, components.Fixed(total-height), m.viewport.State(), "scrolling down stays Fixed")
}

func TestScrolling_FixedSurvivesResponse(t *testing.T) {
	g := &gate{release: make(chan struct{})}
	m, _ := newTestModel(t, g)
	m = seed(t, m, 12)

	m = submitText(t, m, "more")
	m = update(t, m, keyRunes("g"))
	close(g.release)
	m = waitIdle(t, m)

	assert.Equal(t, components.Fixed(0), m.viewport.State())
}

// plainView renders the screen without ANSI styling.
func plainView(m Model) string {
	return ansi.Strip(m.View())
}

func TestHelpOverlay(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))

	m = update(t, m, keyRunes("?"))
	require.True(t, m.showHelp)
	assert.Contains(t, plainView(m), "Normal mode")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.showHelp)

	m = update(t, m, keyRunes("h"))
	assert.True(t, m.showHelp)
}

func TestHelpOverlay_Scrolls(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))
	m = seed(t, m, 30)
	before := m.viewport.State()

	m = update(t, m, keyRunes("?"))
	require.Greater(t, m.helpPort.TotalLines(), m.helpPort.Height(), "help should overflow an 80x24 screen")
	top := plainView(m)
	assert.Contains(t, top, "[more ↓]")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	assert.NotEqual(t, top, plainView(m))

	m = update(t, m, keyRunes("G"))
	bottom := plainView(m)
	assert.Contains(t, bottom, "/load")
	assert.NotContains(t, bottom, "[more ↓]")

	m = update(t, m, keyRunes("g"))
	assert.Equal(t, top, plainView(m))

	m = update(t, m, tea.MouseMsg{Type: tea.MouseWheelDown})
	assert.Equal(t, components.Fixed(3), m.helpPort.State())

	// The conversation keeps its own position while help is open.
	assert.Equal(t, before, m.viewport.State())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = update(t, m, keyRunes("?"))
	assert.Equal(t, components.Fixed(0), m.helpPort.State(), "reopening starts at the top")
}

func TestHelpOverlay_ReachesEveryCommand(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))
	m = update(t, m, keyRunes("?"))

	var seen strings.Builder
	for i := 0; i < m.helpPort.TotalLines(); i++ {
		seen.WriteString(plainView(m))
		m = update(t, m, keyRunes("j"))
	}
	for _, want := range []string{"Normal mode", "Editing mode", "Commands", "/help", "/clear", "/stats", "/save", "/load"} {
		assert.Contains(t, seen.String(), want)
	}
}

func TestHelpMarkdown(t *testing.T) {
	md := helpMarkdown(commands.NewRegistry(), DefaultKeyMap())
	for _, want := range []string{"/help", "/clear", "/stats", "/save [name]", "/load [name]", "C-s", "M-Enter/C-j"} {
		assert.Contains(t, md, want)
	}
}

func TestCopyLastResponse(t *testing.T) {
	m, h := newTestModel(t, reply("never"))

	m = update(t, m, keyRunes("y"))
	assert.Equal(t, warning("No response to copy"), m.Status())

	m = seed(t, m, 2)
	m = update(t, m, keyRunes("y"))
	assert.Equal(t, "answer 1", h.copied)
	assert.Equal(t, success("Copied response to clipboard (8 chars)"), m.Status())

	h.copyErr = errors.New("no clipboard utility")
	m = update(t, m, keyRunes("y"))
	assert.Equal(t, failure("Failed to copy: no clipboard utility"), m.Status())
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))

	for _, k := range []tea.KeyMsg{keyRunes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd)
		_, ok := cmd().(tea.QuitMsg)
		assert.True(t, ok, "%s should quit", k)
	}

	// q is text while editing; ctrl+c still quits.
	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("q"))
	assert.Equal(t, ModeEditing, m.Mode())
	assert.Equal(t, "q", m.input.Value())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestView_InputTitle(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))
	assert.Contains(t, m.View(), "Press 'i' to edit")

	m = update(t, m, keyRunes("i"))
	m = update(t, m, keyRunes("héllo"))
	assert.Contains(t, m.View(), "Input (5 chars)")
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestConfigReload(t *testing.T) {
	m, _ := newTestModel(t, reply("never"))

	next := config.Default()
	next.UI.ShowThinking = false
	m = update(t, m, ConfigReloadedMsg{Config: next})
	assert.Equal(t, success("Config reloaded"), m.Status())
	assert.False(t, m.renderer.ShowReasoning())

	next = config.Default()
	next.UI.ShowThinking = false
	next.Endpoint.Model = "other-model"
	m = update(t, m, ConfigReloadedMsg{Config: next})
	assert.Equal(t, SeverityWarning, m.Status().Severity)
	assert.Equal(t, config.Default().Endpoint.Model, m.cfg.Endpoint.Model, "endpoint changes wait for a restart")

	m = update(t, m, ConfigReloadedMsg{Err: errors.New("bad toml")})
	assert.Equal(t, failure("Config reload failed: bad toml"), m.Status())
}

func TestConfigReload_SystemPromptRebuildsCompleter(t *testing.T) {
	var prompts []string
	m := New(Options{
		Config:    config.Default(),
		Completer: reply("old"),
		Theme:     styles.NewTheme(),
		NewCompleter: func(cfg *config.Config) orchestrator.Completer {
			prompts = append(prompts, cfg.Endpoint.SystemPrompt)
			return reply("new")
		},
	})

	next := config.Default()
	next.Endpoint.SystemPrompt = "Be brief."
	m = update(t, m, ConfigReloadedMsg{Config: next})
	assert.Equal(t, []string{"Be brief."}, prompts)

	m = waitIdle(t, submitText(t, m, "hi"))
	last, _ := m.Conversation().LastOf(model.RoleAssistant)
	assert.Equal(t, "new", last.Content)
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindUnknown},
		{"auth sentinel", fmt.Errorf("chat: %w", cloud.ErrAuthFailed), KindAuth},
		{"api error 404", &cloud.APIError{StatusCode: 404}, KindNotFound},
		{"rate limit sentinel", cloud.ErrRateLimited, KindRateLimit},
		{"connection sentinel", fmt.Errorf("%w: dial tcp", cloud.ErrConnection), KindConnection},
		{"timeout", fmt.Errorf("%w: %w", orchestrator.ErrTimeout, context.DeadlineExceeded), KindConnection},
		{"closed channel", orchestrator.ErrChannelClosed, KindConnection},
		{"empty input", orchestrator.ErrEmptyMessage, KindEmptyInput},
		{"storage", &storage.ConversationError{Op: "load", Name: "x.json", Err: storage.ErrConversationNotFound}, KindPersistence},
		{"text 401", errors.New("HTTP 401"), KindAuth},
		{"text unauthorized", errors.New("Unauthorized request"), KindAuth},
		{"text not found", errors.New("model not found"), KindNotFound},
		{"text 429", errors.New("status 429"), KindRateLimit},
		{"text refused", errors.New("dial tcp: connection refused"), KindConnection},
		{"text timeout", errors.New("i/o timeout"), KindConnection},
		{"other", errors.New("boom"), KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{cloud.ErrAuthFailed, statusAuth},
		{cloud.ErrModelNotFound, statusNotFound},
		{cloud.ErrRateLimited, statusRateLimit},
		{cloud.ErrConnection, statusConnection},
		{orchestrator.ErrTimeout, statusTimeout},
		{orchestrator.ErrChannelClosed, statusConnLost},
		{errors.New("boom"), "Error: boom"},
	}

	for _, tc := range tests {
		got := ErrorStatus(tc.err)
		assert.Equal(t, failure(tc.want), got, "%v", tc.err)
	}
}

func TestErrorStatus_EmptyInputIsWarning(t *testing.T) {
	assert.Equal(t, warning(statusEmptyInput), ErrorStatus(orchestrator.ErrEmptyMessage))
}

func TestSend_DegradedMarkupIsLoggedOnly(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWriter(&buf, "debug")
	require.NoError(t, err)

	m := New(Options{
		Config:    config.Default(),
		Completer: reply("some **bold that never closes"),
		Logger:    logger,
		Theme:     styles.NewTheme(),
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m = submitText(t, m, "hi")
	m = waitIdle(t, m)

	assert.Equal(t, success(statusReceived), m.Status())
	require.Equal(t, 2, m.Conversation().Len())
	assert.Contains(t, m.Conversation().At(1).Content, "**bold")
	assert.Contains(t, buf.String(), KindParseDegradation.String())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "AuthError", KindAuth.String())
	assert.Equal(t, "EmptyInputError", KindEmptyInput.String())
	assert.Equal(t, "ParseDegradation", KindParseDegradation.String())
	assert.Equal(t, "UnknownError", ErrorKind(99).String())
}
