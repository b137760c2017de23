// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for hfchat.
//
// Conversations are saved as pretty-printed JSON arrays of messages, one
// file per name, in ~/.hfchat/conversations/ by default. A name without an
// extension gets ".json"; names containing path separators are rejected.
//
// # Usage
//
//	store, err := storage.NewConversationStore()
//	path, err := store.Save("", conv.Messages()) // conversation.json
//	msgs, err := store.Load("notes")             // notes.json
//
// Writes go through util.AtomicWriteFile and a lock file shared by all
// hfchat processes, so two instances saving at once cannot interleave.
package storage
