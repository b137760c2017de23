// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured file logger used by hfchat.
//
// The terminal belongs to the TUI, so log output always goes to a file
// (logging.file, default ~/.hfchat/hfchat.log).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/config"
)

// Options returns pslog options for level. Unknown levels are an error.
func Options(level string) (pslog.Options, error) {
	opts := pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
	}
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "", "info":
		opts.MinLevel = pslog.InfoLevel
	case "warn", "warning":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		return opts, fmt.Errorf("unknown log level %q", level)
	}
	return opts, nil
}

// NewWriter returns a structured logger writing to w.
func NewWriter(w io.Writer, level string) (pslog.Logger, error) {
	opts, err := Options(level)
	if err != nil {
		return nil, err
	}
	return pslog.NewWithOptions(w, opts), nil
}

// New opens the configured log file in append mode and returns a logger
// writing to it. The caller closes the returned Closer on exit.
func New(cfg *config.Config) (pslog.Logger, io.Closer, error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger, err := NewWriter(f, cfg.Logging.Level)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return logger.With("app", "hfchat", "pid", os.Getpid()), f, nil
}

// Discard returns a logger that drops everything.
func Discard() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, NoColor: true})
}
