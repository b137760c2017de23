// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the hfchat packages.
//
// String Utilities:
//   - TruncateRunes, TruncateWidth: UTF-8 and cell-width safe truncation
//   - PadRight: pad to a display width
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync and rename
package util
