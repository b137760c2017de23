// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud implements the client for OpenAI-compatible chat completion
// endpoints such as the Hugging Face router or Ollama's /v1 shim.
//
// # Key Types
//
//   - Client: HTTP client with pacing, retries and a response size limit
//   - ChatRequest / ChatResponse: wire format of /chat/completions
//   - APIError: non-2xx response, matched by errors.Is against the
//     ErrAuthFailed, ErrModelNotFound and ErrRateLimited sentinels
//
// # Usage
//
//	client := cloud.NewClient(cloud.Config{
//	    BaseURL: "https://router.huggingface.co/v1",
//	    Token:   token,
//	    Model:   "meta-llama/Llama-3.2-3B-Instruct",
//	})
//	reply, err := client.Complete(ctx, history)
//
// Tokens are never logged; log lines carry a short SHA-256 fingerprint.
package cloud
