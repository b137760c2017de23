// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/commands"
	"github.com/jeranaias/hfchat-tui/internal/config"
	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/orchestrator"
	"github.com/jeranaias/hfchat-tui/internal/storage"
	"github.com/jeranaias/hfchat-tui/internal/ui/components"
	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// INPUT MODE
// =============================================================================

// Mode is the input controller state.
type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
)

// String returns "Normal" or "Editing".
func (m Mode) String() string {
	if m == ModeEditing {
		return "Editing"
	}
	return "Normal"
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Persister stores named conversations.
type Persister interface {
	Save(name string, msgs []model.Message) (string, error)
	Load(name string) ([]model.Message, error)
}

// lister is implemented by persisters that can enumerate saved files for
// tab completion.
type lister interface {
	List() ([]storage.ConversationMeta, error)
}

// Options configures a chat Model. Zero values get defaults.
type Options struct {
	Config    *config.Config
	Completer orchestrator.Completer
	Store     Persister
	Logger    pslog.Logger
	Theme     *styles.Theme

	// NewCompleter rebuilds the backend after a live system prompt change.
	NewCompleter func(*config.Config) orchestrator.Completer

	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error

	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// =============================================================================
// MODEL
// =============================================================================

// Layout rows outside the message area: header, message title, message
// border, status, input title, input border and the textarea itself.
const (
	inputHeight  = 3
	chromeHeight = 1 + 1 + 2 + 1 + 1 + 2 + inputHeight
	minWidth     = 20
)

// Model is the chat screen.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	cfg    *config.Config
	logger pslog.Logger
	now    func() time.Time

	conv         *model.Conversation
	orch         *orchestrator.Orchestrator
	store        Persister
	newCompleter func(*config.Config) orchestrator.Completer
	clipboard    func(string) error

	renderer *components.MessageRenderer
	viewport *components.Viewport
	input    textarea.Model
	mode     Mode

	parser     *commands.Parser
	completer  *commands.Completer
	completion *commands.CompletionState

	help     *helpView
	helpPort *components.Viewport
	showHelp bool
	status   Status

	width  int
	height int
}

// New creates the chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	theme.WithCodeTheme(cfg.UI.CodeTheme)
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	conv := model.NewConversation()
	orch := orchestrator.New(conv, opts.Completer,
		orchestrator.WithTimeout(cfg.Endpoint.RequestTimeout.Duration),
		orchestrator.WithLogger(logger),
		orchestrator.WithClock(now),
	)

	renderer := components.NewMessageRenderer(theme)
	renderer.SetShowReasoning(cfg.UI.ShowThinking)

	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)
	if l, ok := opts.Store.(lister); ok {
		completer.ConversationsFn = conversationNames(l)
	}

	m := Model{
		theme:        theme,
		keys:         DefaultKeyMap(),
		cfg:          cfg,
		logger:       logger,
		now:          now,
		conv:         conv,
		orch:         orch,
		store:        opts.Store,
		newCompleter: opts.NewCompleter,
		clipboard:    opts.Clipboard,
		renderer:     renderer,
		viewport:     components.NewViewport(0),
		input:        newInput(),
		parser:       commands.NewParser(registry),
		completer:    completer,
		completion:   commands.NewCompletionState(),
		help:         newHelpView(theme, registry, DefaultKeyMap()),
		helpPort:     components.NewViewport(0),
		status:       info(statusWelcome),
		width:        80,
		height:       24,
	}
	m.layout()
	return m
}

func newInput() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Type a message, / for commands"
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	// Enter sends; newlines come from alt+enter and ctrl+j.
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Blur()
	return ta
}

func conversationNames(l lister) func() []string {
	return func() []string {
		metas, err := l.List()
		if err != nil {
			return nil
		}
		names := make([]string, 0, len(metas))
		for _, meta := range metas {
			names = append(names, meta.Name)
		}
		return names
	}
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.tickInterval()), textarea.Blink)
}

// Update routes messages to their handlers.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil

	case TickMsg:
		return m.handleTick()

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode == ModeEditing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// =============================================================================
// EVENT LOOP
// =============================================================================

// handleTick polls the orchestrator, advances the animation and schedules
// the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if out := m.orch.Poll(); out.Done {
		m.applyOutcome(out)
	}
	m.orch.Tick()
	return m, tickCmd(m.tickInterval())
}

func (m *Model) applyOutcome(out orchestrator.Outcome) {
	switch {
	case out.Failed():
		m.status = ErrorStatus(out.Err)
		m.logger.Warn("request failed", "kind", Classify(out.Err).String(), "err", out.Err)
	case out.Result.Degraded:
		// Never surfaced; the markup renders as literal text.
		m.logger.Debug("response markup degraded", "kind", KindParseDegradation.String(), "id", out.Message.ID)
		m.status = success(statusReceived)
	default:
		m.status = success(statusReceived)
	}
	m.layout()
}

func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.status = failure("Config reload failed: " + msg.Err.Error())
		m.logger.Warn("config reload failed", "err", msg.Err)
		return m, nil
	}

	next := m.cfg.Clone()
	restart := config.NeedsRestart(m.cfg, msg.Config)

	if msg.Config.UI.ShowThinking != m.cfg.UI.ShowThinking {
		next.UI.ShowThinking = msg.Config.UI.ShowThinking
		m.renderer.SetShowReasoning(next.UI.ShowThinking)
	}
	if msg.Config.UI.CodeTheme != m.cfg.UI.CodeTheme {
		next.UI.CodeTheme = msg.Config.UI.CodeTheme
		m.theme.WithCodeTheme(next.UI.CodeTheme)
		m.renderer.SetTheme(m.theme)
	}
	if msg.Config.Endpoint.SystemPrompt != m.cfg.Endpoint.SystemPrompt {
		next.Endpoint.SystemPrompt = msg.Config.Endpoint.SystemPrompt
		if m.newCompleter != nil {
			m.orch.SetCompleter(m.newCompleter(next))
		}
	}
	m.cfg = next
	m.refresh()

	m.logger.Info("config reloaded", "restart_needed", restart)
	if restart {
		m.status = warning("Config reloaded, restart hfchat to apply endpoint changes")
	} else {
		m.status = success("Config reloaded")
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.MouseWheelUp:
		m.scrollTarget().ScrollUp(3)
	case tea.MouseWheelDown:
		m.scrollTarget().ScrollDown(3)
	}
	return m, nil
}

// scrollTarget is the help text while it is open, the conversation
// otherwise.
func (m Model) scrollTarget() *components.Viewport {
	if m.showHelp {
		return m.helpPort
	}
	return m.viewport
}

func (m Model) tickInterval() time.Duration {
	if d := m.cfg.UI.TickInterval.Duration; d > 0 {
		return d
	}
	return 100 * time.Millisecond
}

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the textarea and viewport for the current terminal and
// re-renders the conversation.
func (m *Model) layout() {
	width := m.width
	if width < minWidth {
		width = minWidth
	}
	m.input.SetWidth(width - 2)

	height := m.height - chromeHeight
	if m.orch.Busy() {
		height--
	}
	if height < 1 {
		height = 1
	}
	m.viewport.SetHeight(height)
	m.helpPort.SetHeight(height)
	m.renderer.SetWidth(width - 2)
	m.refresh()
	if m.showHelp {
		m.refreshHelp()
	}
}

// refresh re-renders the conversation into the viewport.
func (m *Model) refresh() {
	m.viewport.SetLines(m.renderer.Render(m.conv.Messages()), m.conv.Len())
}

// refreshHelp renders the help text into its viewport. HelpBox adds a
// border and one cell of padding on each side.
func (m *Model) refreshHelp() {
	width := m.width
	if width < minWidth {
		width = minWidth
	}
	rendered := strings.Split(m.help.Render(width-4), "\n")
	lines := make([]components.Line, len(rendered))
	for i, text := range rendered {
		lines[i] = components.Line{Text: text}
	}
	m.helpPort.SetLines(lines, 0)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Mode returns the input mode.
func (m Model) Mode() Mode { return m.mode }

// Status returns the current status line.
func (m Model) Status() Status { return m.status }

// Conversation returns the conversation store.
func (m Model) Conversation() *model.Conversation { return m.conv }

// Busy reports whether a response is pending.
func (m Model) Busy() bool { return m.orch.Busy() }

// Close cancels a pending request.
func (m Model) Close() { m.orch.Close() }
