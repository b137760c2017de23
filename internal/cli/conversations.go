// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/storage"
)

// =============================================================================
// LIST
// =============================================================================

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved conversations",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			metas, err := store.List()
			if err != nil {
				return err
			}

			out := storage.FormatList(metas)
			if !strings.HasSuffix(out, "\n") {
				out += "\n"
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
}

// =============================================================================
// SHOW
// =============================================================================

func newShowCmd(opts *rootOptions) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a saved conversation",
		Long:  "Print a saved conversation as Markdown. Output is rendered for the terminal unless --raw is given or stdout is not a terminal.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			msgs, err := store.Load(args[0])
			if err != nil {
				return err
			}

			name, _ := storage.NormalizeName(args[0])
			md := storage.ExportMarkdown(strings.TrimSuffix(name, ".json"), msgs)
			out := cmd.OutOrStdout()
			if !raw {
				md = renderMarkdown(out, md, pslog.Ctx(cmd.Context()))
			}
			_, err = io.WriteString(out, md)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print Markdown without terminal rendering")
	return cmd
}

// renderMarkdown renders md for w. Terminals get the dark or light style,
// anything else the plain style. The source is returned unchanged when
// rendering fails.
func renderMarkdown(w io.Writer, md string, logger pslog.Logger) string {
	style := styles.NoTTYStyle
	if colorsEnabled(w) {
		style = styles.LightStyle
		if hasDarkBackground(w) {
			style = styles.DarkStyle
		}
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(terminalWidth(w)),
	)
	if err != nil {
		logger.Debug("markdown renderer unavailable", "err", err)
		return md
	}
	rendered, err := r.Render(md)
	if err != nil {
		logger.Debug("markdown render failed", "err", err)
		return md
	}
	return rendered
}

// =============================================================================
// DELETE
// =============================================================================

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a saved conversation",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			if err := store.Delete(args[0]); err != nil {
				return err
			}
			name, _ := storage.NormalizeName(args[0])
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", name)
			return err
		},
	}
}
