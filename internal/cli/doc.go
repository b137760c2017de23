// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the hfchat command line.
//
// The root command starts the chat TUI. Subcommands work on saved
// conversations and the configuration file without opening the TUI:
//
//	hfchat                      start the chat
//	hfchat list                 list saved conversations
//	hfchat show <name>          print a saved conversation
//	hfchat delete <name>        remove a saved conversation
//	hfchat models               list models advertised by the endpoint
//	hfchat config path|init|show|get|set|keys
//	hfchat version
//
// Flags on the root command override the config file and the environment
// for a single run.
package cli
