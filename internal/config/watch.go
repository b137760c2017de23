// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of events an editor save produces.
const reloadDebounce = 150 * time.Millisecond

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// Watch reloads path whenever it is written or replaced and passes the
// result to fn. The parent directory is watched so atomic renames are
// seen. fn runs on the watcher goroutine; it receives a nil Config and a
// non-nil error when the new file does not load.
//
// Watching stops when ctx is cancelled.
func Watch(ctx context.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	go watchLoop(ctx, watcher, filepath.Clean(path), fn)
	return nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, fn func(*Config, error)) {
	defer watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cfg, err := LoadFromPath(path)
			fn(cfg, err)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fn(nil, fmt.Errorf("config watcher: %w", err))
		}
	}
}

// NeedsRestart reports whether moving from old to next changes settings
// that are only read at startup. The live settings are ui.show_thinking,
// ui.code_theme and endpoint.system_prompt.
func NeedsRestart(old, next *Config) bool {
	if old == nil || next == nil {
		return false
	}
	a, b := *old, *next
	a.UI.ShowThinking, b.UI.ShowThinking = false, false
	a.UI.CodeTheme, b.UI.CodeTheme = "", ""
	a.Endpoint.SystemPrompt, b.Endpoint.SystemPrompt = "", ""
	return a != b
}
