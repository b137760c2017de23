// hfchat - a terminal chat client for OpenAI-compatible endpoints.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"os"

	"pkt.systems/psi"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/cli"
)

func main() {
	psi.Run(submain)
}

// submain logs to stderr until the TUI swaps in its file logger.
func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	return cli.Execute(ctx, os.Args[1:])
}
