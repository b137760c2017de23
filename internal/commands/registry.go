// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// ID identifies a built-in command. The chat model dispatches on it.
type ID int

const (
	IDHelp ID = iota + 1
	IDClear
	IDStats
	IDSave
	IDLoad
)

// Command represents a slash command that can be executed.
type Command struct {
	// ID is what the chat model switches on
	ID ID

	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/save [name]")
	Usage string

	// Args defines the accepted arguments
	Args []ArgDef

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString       ArgType = iota // Free-form string
	ArgTypeConversation                // Saved conversation name
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		ID:          IDHelp,
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Toggle the help overlay",
		Category:    "Navigation",
	})

	r.Register(&Command{
		ID:          IDClear,
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the conversation",
		Category:    "Conversation",
	})

	r.Register(&Command{
		ID:          IDStats,
		Name:        "/stats",
		Aliases:     []string{"/s"},
		Description: "Show conversation statistics",
		Category:    "Conversation",
	})

	r.Register(&Command{
		ID:          IDSave,
		Name:        "/save",
		Description: "Save the conversation",
		Usage:       "/save [name]",
		Args: []ArgDef{
			{Name: "name", Type: ArgTypeConversation, Description: "File name, default conversation.json"},
		},
		Category: "Files",
	})

	r.Register(&Command{
		ID:          IDLoad,
		Name:        "/load",
		Description: "Load a saved conversation",
		Usage:       "/load [name]",
		Args: []ArgDef{
			{Name: "name", Type: ArgTypeConversation, Description: "File name, default conversation.json"},
		},
		Category: "Files",
	})
}
