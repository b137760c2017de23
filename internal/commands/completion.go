// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry

	// ConversationsFn returns saved conversation names for /save and /load.
	ConversationsFn func() []string
}

// NewCompleter creates a new completer with the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{
		registry: registry,
	}
}

// Complete returns completions for input. Each completion Value is the
// whole replacement input line.
func (c *Completer) Complete(input string) []Completion {
	if !IsCommand(input) {
		return nil
	}
	input = strings.TrimLeft(input, " \t")

	parts := splitCommandLine(input)
	if len(parts) == 1 && !strings.HasSuffix(input, " ") {
		return c.completeCommands(parts[0])
	}

	cmd := c.registry.Get(strings.ToLower(parts[0]))
	if cmd == nil {
		return nil
	}

	argIndex := len(parts) - 2
	partial := ""
	if strings.HasSuffix(input, " ") {
		argIndex++
	} else {
		partial = parts[len(parts)-1]
	}

	prefix := strings.Join(parts[:argIndex+1], " ") + " "
	completions := c.completeArg(cmd, argIndex, partial)
	for i := range completions {
		completions[i].Value = prefix + completions[i].Value
	}
	return completions
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

// completeCommands returns completions for command names.
func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion

	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}

		if strings.HasPrefix(cmd.Name, partial) {
			value := cmd.Name
			if len(cmd.Args) > 0 {
				value += " "
			}
			completions = append(completions, Completion{
				Value:       value,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}

		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) && partial != "/" {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10, // Slightly lower score for aliases
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

// completeArg returns completions for a command argument.
func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeConversation:
		if c.ConversationsFn == nil {
			return nil
		}
		return completeFromList(c.ConversationsFn(), partial)
	default:
		return nil
	}
}

// completeFromList returns completions from a list of strings.
func completeFromList(values []string, partial string) []Completion {
	var completions []Completion

	lower := strings.ToLower(partial)
	for _, value := range values {
		if strings.HasPrefix(strings.ToLower(value), lower) {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}

	sortCompletions(completions)
	return completions
}

// calculateScore calculates a match score for completion ranking.
// Higher score = better match.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	score := 100

	if value == partial {
		return score + 100
	}

	if strings.HasPrefix(value, partial) {
		score += 50
		// Bonus for shorter completions
		score += 20 - len(value)
	}

	score -= len(value) / 2

	return score
}

// sortCompletions sorts completions by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState cycles through completions for repeated Tab presses.
type CompletionState struct {
	// OriginalInput is the input the completions were computed for
	OriginalInput string

	// Completions are the current candidates
	Completions []Completion

	// Selected index (-1 for none)
	Selected int
}

// NewCompletionState creates a new completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{
		Selected: -1,
	}
}

// Update replaces the candidates and selects the first one.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	if len(completions) == 0 {
		cs.Selected = -1
	}
}

// Active reports whether candidates are available.
func (cs *CompletionState) Active() bool {
	return len(cs.Completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Accept returns the selected completion value, or empty if none selected.
func (cs *CompletionState) Accept() string {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return ""
	}
	return cs.Completions[cs.Selected].Value
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value is the full input line after accepting
	Value string

	// Display text
	Display string

	// Description shown alongside
	Description string

	// Score for ranking (higher = better match)
	Score int
}
