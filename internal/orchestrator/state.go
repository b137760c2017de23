// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package orchestrator

import "time"

// FrameCount is the number of loading animation frames.
const FrameCount = 8

// LoadingState is Idle (the zero value) or awaiting a response that was
// requested at StartedAt. Frame is the current animation frame.
type LoadingState struct {
	StartedAt time.Time
	Frame     int
	pending   bool
}

func awaiting(at time.Time) LoadingState {
	return LoadingState{StartedAt: at, pending: true}
}

// Awaiting reports whether a response is pending.
func (s LoadingState) Awaiting() bool { return s.pending }

// Elapsed returns the wait time so far, or zero when idle.
func (s LoadingState) Elapsed(now time.Time) time.Duration {
	if !s.pending {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// String returns "Idle" or "AwaitingResponse".
func (s LoadingState) String() string {
	if s.pending {
		return "AwaitingResponse"
	}
	return "Idle"
}
