// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/config"
)

// =============================================================================
// CONFIG COMMAND
// =============================================================================

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the configuration file",
	}

	cmd.AddCommand(newConfigPathCmd(opts))
	cmd.AddCommand(newConfigInitCmd(opts))
	cmd.AddCommand(newConfigShowCmd(opts))
	cmd.AddCommand(newConfigGetCmd(opts))
	cmd.AddCommand(newConfigSetCmd(opts))
	cmd.AddCommand(newConfigKeysCmd())

	return cmd
}

func newConfigPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.path()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.path()
			if err != nil {
				return err
			}
			if fileExists(path) && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}
			if err := config.Save(config.Default(), path); err != nil {
				return err
			}
			pslog.Ctx(cmd.Context()).Debug("config written", "path", path)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with the token redacted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cfg.String())
			return err
		},
	}
}

func newConfigGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one effective setting, for example ui.code_theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			if isTokenKey(args[0]) && value != "" && value != "unused" {
				value = "[REDACTED]"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), value)
			return err
		},
	}
}

// newConfigSetCmd edits the file itself. Environment overrides are not
// applied, so they never end up persisted.
func newConfigSetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting in the config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.path()
			if err != nil {
				return err
			}

			cfg := config.Default()
			if fileExists(path) {
				if err := config.LoadTOML(cfg, path); err != nil {
					return fmt.Errorf("failed to load config from %s: %w", path, err)
				}
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			check := cfg.Clone()
			check.SetDefaults()
			if err := check.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return err
			}

			pslog.Ctx(cmd.Context()).Debug("config updated", "path", path, "key", args[0])
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", strings.ToLower(args[0]), path)
			return err
		},
	}
}

func newConfigKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every setting name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.Keys(), "\n"))
			return err
		},
	}
}

func isTokenKey(key string) bool {
	return strings.EqualFold(strings.TrimSpace(key), "endpoint.token")
}
