// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/cloud"
	"github.com/jeranaias/hfchat-tui/internal/config"
	"github.com/jeranaias/hfchat-tui/internal/logging"
	"github.com/jeranaias/hfchat-tui/internal/orchestrator"
	"github.com/jeranaias/hfchat-tui/internal/ui/chat"
	"github.com/jeranaias/hfchat-tui/internal/ui/styles"
)

// =============================================================================
// TUI STARTUP
// =============================================================================

// runTUI loads configuration, wires the chat model to its collaborators
// and runs the Bubble Tea program until the user quits.
func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !IsTTY() || !IsStdoutTTY() {
		return errNotTerminal
	}

	cfg, err := opts.load()
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	ctx, cancel := context.WithCancel(pslog.ContextWithLogger(cmd.Context(), logger))
	defer cancel()
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open conversation store: %w", err)
	}

	client := cloud.NewClient(cfg.ClientConfig())
	logger.Info("hfchat starting",
		"version", Version,
		"model", client.Model(),
		"base_url", client.BaseURL(),
		"key", client.KeyFingerprint(),
		"conversations", store.BaseDir,
	)

	m := chat.New(chat.Options{
		Config:    cfg,
		Completer: client,
		Store:     store,
		Logger:    logger,
		Theme:     styles.NewTheme(),
		NewCompleter: func(c *config.Config) orchestrator.Completer {
			return cloud.NewClient(c.ClientConfig())
		},
		Clipboard: clipboard.WriteAll,
	})

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen && !opts.noAltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if cfg.UI.Mouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	program := tea.NewProgram(m, programOpts...)

	watchConfig(ctx, opts, program, logger)

	final, err := program.Run()
	if fm, ok := final.(chat.Model); ok {
		fm.Close()
	}
	if err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	logger.Info("hfchat stopped")
	return nil
}

// watchConfig forwards config file changes into the program. Flag
// overrides are re-applied so they survive a reload.
func watchConfig(ctx context.Context, opts *rootOptions, program *tea.Program, logger pslog.Logger) {
	path, err := opts.path()
	if err != nil {
		logger.Warn("config watch disabled", "err", err)
		return
	}
	if !fileExists(filepath.Dir(path)) {
		logger.Debug("config watch disabled", "dir", filepath.Dir(path))
		return
	}

	err = config.Watch(ctx, path, func(cfg *config.Config, err error) {
		if cfg != nil {
			opts.apply(cfg)
		}
		program.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		logger.Warn("config watch disabled", "err", err)
		return
	}
	logger.Debug("watching config", "path", path)
}
