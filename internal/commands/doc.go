// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// This package parses slash commands typed into the input box, holds the
// registry of built-in commands, and provides Tab completion.
//
// # Key Types
//
//   - Registry: Command registry with all available commands
//   - ParseResult: Parsed command with name and arguments
//   - Completer: Tab completion for commands and arguments
//
// # Built-in Commands
//
//   - /help (/h, /?): Toggle the help overlay
//   - /clear (/c): Clear the conversation
//   - /stats (/s): Show conversation statistics
//   - /save [name]: Save the conversation
//   - /load [name]: Load a saved conversation
//
// Input starting with "//" is not a command; it is sent with the first
// slash removed.
//
// # Usage
//
//	result := parser.Parse(input)
//	switch {
//	case !result.IsCommand:
//	    send(result.Text)
//	case result.Unknown():
//	    warn("Unknown command: " + result.CommandName)
//	default:
//	    dispatch(result.Command.ID, result.Args)
//	}
package commands
