// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/cloud"
	"github.com/jeranaias/hfchat-tui/internal/util"
)

// modelsTimeout bounds the model listing request.
const modelsTimeout = 15 * time.Second

func newModelsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List models advertised by the endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			client := cloud.NewClient(cfg.ClientConfig())
			ctx, cancel := context.WithTimeout(cmd.Context(), modelsTimeout)
			defer cancel()

			models, err := client.ListModels(ctx)
			if err != nil {
				return fmt.Errorf("list models at %s: %w", client.BaseURL(), err)
			}
			pslog.Ctx(cmd.Context()).Debug("models listed", "count", len(models), "base_url", client.BaseURL())

			sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
			out := cmd.OutOrStdout()
			for _, m := range models {
				marker := " "
				if m.ID == cfg.Endpoint.Model {
					marker = "*"
				}
				if _, err := fmt.Fprintf(out, "%s %s %s\n", marker, util.PadRight(m.ID, 40), m.OwnedBy); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
