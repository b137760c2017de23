// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hfchat-tui/internal/config"
	"github.com/jeranaias/hfchat-tui/internal/model"
	"github.com/jeranaias/hfchat-tui/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

// isolate points HOME at a temp dir and clears hfchat's environment.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{"HF_BASE_URL", "HUGGINGFACE_TOKEN", "HF_MODEL", "SYSTEM_PROMPT", "HFCHAT_LOG_LEVEL", "FORCE_COLOR"} {
		t.Setenv(k, "")
	}
	return home
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedConversation(t *testing.T, home, name string) {
	t.Helper()
	store, err := storage.NewConversationStoreWithDir(filepath.Join(home, ".hfchat", "conversations"))
	require.NoError(t, err)
	_, err = store.Save(name, []model.Message{
		model.NewUserMessage("What is Go?"),
		model.NewAssistantMessage("A programming language.", "short answer"),
	})
	require.NoError(t, err)
}

// =============================================================================
// ROOT
// =============================================================================

func TestVersion(t *testing.T) {
	isolate(t)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hfchat "+Version), out)

	out, err = run(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, Version)
}

func TestRoot_RequiresTerminal(t *testing.T) {
	isolate(t)
	if IsTTY() && IsStdoutTTY() {
		t.Skip("test run attached to a terminal")
	}

	_, err := run(t)
	assert.ErrorIs(t, err, errNotTerminal)
}

func TestRoot_RejectsArgs(t *testing.T) {
	isolate(t)

	_, err := run(t, "hello")
	assert.Error(t, err)
}

func TestExecute_ExitCodes(t *testing.T) {
	isolate(t)

	assert.Equal(t, 0, Execute(context.Background(), []string{"config", "keys"}))
	assert.Equal(t, 1, Execute(context.Background(), []string{"no-such-command"}))
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigPath(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".hfchat", "config.toml"), strings.TrimSpace(out))

	out, err = run(t, "config", "path", "--config", "/tmp/other.toml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.toml", strings.TrimSpace(out))
}

func TestConfigInit(t *testing.T) {
	home := isolate(t)
	path := filepath.Join(home, ".hfchat", "config.toml")

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	_, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfigSetGet(t *testing.T) {
	isolate(t)

	_, err := run(t, "config", "set", "ui.code_theme", "dracula")
	require.NoError(t, err)

	out, err := run(t, "config", "get", "ui.code_theme")
	require.NoError(t, err)
	assert.Equal(t, "dracula", strings.TrimSpace(out))

	_, err = run(t, "config", "set", "endpoint.request_timeout", "45s")
	require.NoError(t, err)
	out, err = run(t, "config", "get", "endpoint.request_timeout")
	require.NoError(t, err)
	assert.Equal(t, "45s", strings.TrimSpace(out))

	_, err = run(t, "config", "set", "endpoint.temperature", "5")
	assert.ErrorContains(t, err, "temperature")

	_, err = run(t, "config", "set", "endpoint.nope", "1")
	assert.Error(t, err)
}

func TestConfigSet_DoesNotPersistEnv(t *testing.T) {
	home := isolate(t)
	t.Setenv("HF_MODEL", "env-model")

	_, err := run(t, "config", "set", "ui.mouse", "false")
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, config.LoadTOML(cfg, filepath.Join(home, ".hfchat", "config.toml")))
	assert.False(t, cfg.UI.Mouse)
	assert.Equal(t, config.Default().Endpoint.Model, cfg.Endpoint.Model)
}

func TestConfigGet_RedactsToken(t *testing.T) {
	isolate(t)
	t.Setenv("HUGGINGFACE_TOKEN", "hf_secret")

	out, err := run(t, "config", "get", "endpoint.token")
	require.NoError(t, err)
	assert.Equal(t, "[REDACTED]", strings.TrimSpace(out))

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, "hf_secret")
}

func TestConfigShow_FlagOverrides(t *testing.T) {
	isolate(t)

	out, err := run(t, "config", "get", "endpoint.model", "--model", "qwen2.5")
	require.NoError(t, err)
	assert.Equal(t, "qwen2.5", strings.TrimSpace(out))
}

func TestConfigKeys(t *testing.T) {
	isolate(t)

	out, err := run(t, "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "endpoint.base_url")
	assert.Contains(t, out, "ui.tick_interval")
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func TestList(t *testing.T) {
	home := isolate(t)

	out, err := run(t, "list")
	require.NoError(t, err)
	assert.Equal(t, "No saved conversations.\n", out)

	seedConversation(t, home, "notes")
	out, err = run(t, "ls")
	require.NoError(t, err)
	assert.Contains(t, out, "notes.json")
	assert.Contains(t, out, "What is Go?")
}

func TestShow(t *testing.T) {
	home := isolate(t)
	seedConversation(t, home, "notes")

	out, err := run(t, "show", "notes", "--raw")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# notes\n"), out)
	assert.Contains(t, out, "> short answer")
	assert.Contains(t, out, "A programming language.")

	out, err = run(t, "show", "notes.json")
	require.NoError(t, err)
	assert.Contains(t, out, "A programming language.")
	assert.NotContains(t, out, "\x1b[", "piped output is not colored")
}

func TestShow_Missing(t *testing.T) {
	isolate(t)

	_, err := run(t, "show", "missing")
	assert.ErrorIs(t, err, storage.ErrConversationNotFound)

	_, err = run(t, "show", "../escape")
	assert.ErrorIs(t, err, storage.ErrInvalidName)
}

func TestDelete(t *testing.T) {
	home := isolate(t)
	seedConversation(t, home, "notes")

	out, err := run(t, "delete", "notes")
	require.NoError(t, err)
	assert.Equal(t, "Deleted notes.json\n", out)

	_, err = run(t, "delete", "notes")
	assert.ErrorIs(t, err, storage.ErrConversationNotFound)
}

// =============================================================================
// MODELS
// =============================================================================

func TestModels(t *testing.T) {
	isolate(t)
	t.Setenv("HUGGINGFACE_TOKEN", "hf_test")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"zeta","owned_by":"org"},{"id":"alpha","owned_by":"org"}]}`))
	}))
	defer srv.Close()

	out, err := run(t, "models", "--base-url", srv.URL, "--model", "zeta")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  alpha"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "* zeta"), lines[1])
}

func TestModels_AuthError(t *testing.T) {
	isolate(t)
	t.Setenv("HUGGINGFACE_TOKEN", "hf_bad")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := run(t, "models", "--base-url", srv.URL)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), srv.URL)
}
