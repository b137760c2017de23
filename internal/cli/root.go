// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/config"
	"github.com/jeranaias/hfchat-tui/internal/storage"
)

// Version information (set at build time)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// errNotTerminal is returned when the TUI is started without a terminal.
var errNotTerminal = errors.New("hfchat needs an interactive terminal; use 'hfchat list' or 'hfchat show' for scripted access")

// =============================================================================
// ROOT COMMAND
// =============================================================================

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath  string
	model       string
	baseURL     string
	logLevel    string
	noAltScreen bool
}

// NewRootCmd builds the hfchat command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "hfchat",
		Short:         "Terminal chat client for OpenAI-compatible endpoints",
		Long:          "hfchat is a terminal chat client for Hugging Face, Ollama and any OpenAI-compatible chat completions endpoint.",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("hfchat {{.Version}} (commit %s, built %s)\n", GitCommit, BuildDate))

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default ~/.hfchat/config.toml)")
	flags.StringVarP(&opts.model, "model", "m", "", "model to request")
	flags.StringVar(&opts.baseURL, "base-url", "", "chat completions base URL")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	root.Flags().BoolVar(&opts.noAltScreen, "no-alt-screen", false, "run inline instead of on the alternate screen")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newShowCmd(opts))
	root.AddCommand(newDeleteCmd(opts))
	root.AddCommand(newModelsCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("hfchat command failed")
		return 1
	}
	return 0
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// path returns the config file in use.
func (o *rootOptions) path() (string, error) {
	if o.configPath != "" {
		return o.configPath, nil
	}
	return config.ConfigPathTOML()
}

// load reads the configuration and applies flag overrides.
func (o *rootOptions) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	o.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// apply overlays command line flags onto cfg.
func (o *rootOptions) apply(cfg *config.Config) {
	if o.model != "" {
		cfg.Endpoint.Model = o.model
	}
	if o.baseURL != "" {
		cfg.Endpoint.BaseURL = o.baseURL
	}
	if o.logLevel != "" {
		cfg.Logging.Level = strings.ToLower(o.logLevel)
	}
	cfg.SetDefaults()
}

// openStore opens the conversation store for cfg.
func openStore(cfg *config.Config) (*storage.ConversationStore, error) {
	dir, err := cfg.ConversationsDir()
	if err != nil {
		return nil, err
	}
	return storage.NewConversationStoreWithDir(dir)
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "hfchat %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
			return err
		},
	}
}
