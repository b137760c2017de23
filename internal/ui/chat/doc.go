// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat is the Bubble Tea model behind the hfchat screen.
//
// It owns the event loop: a fixed-interval tick polls the request
// orchestrator, advances the loading animation and re-schedules itself.
// Key handling is a two-state machine (Normal and Editing) over a bubbles
// textarea. Text that starts with "/" is parsed by the commands package
// and never sent to the model.
//
// Store, loading state and scroll state are only touched from Update. The
// single background goroutine is the in-flight completion request owned
// by the orchestrator.
package chat
