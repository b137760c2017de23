// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package orchestrator runs completion requests without blocking the UI.
//
// Send appends a provisional user message and starts a single background
// call. The event loop calls Poll once per tick; Poll never blocks and is
// the only place the result is applied to the conversation:
//
//	o := orchestrator.New(conv, client, orchestrator.WithTimeout(2*time.Minute))
//	if err := o.Send("hello"); err != nil { ... }
//	// on every tick
//	o.Tick()
//	if out := o.Poll(); out.Done { ... }
//
// A failed request removes the provisional message again, so the history
// only ever holds answered user messages.
package orchestrator
