// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for hfchat.
//
// Configuration is stored as TOML, with defaults, environment variable
// overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - EndpointConfig: API endpoint, model and request settings
//   - UIConfig: Display settings
//   - ValidationError: A single invalid field
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Command-line flags (applied by the cli package)
//   - Environment variables (HF_BASE_URL, HUGGINGFACE_TOKEN, HF_MODEL,
//     SYSTEM_PROMPT, HFCHAT_LOG_LEVEL)
//   - ~/.hfchat/config.toml or the --config path
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := cloud.NewClient(cfg.ClientConfig())
//
// Reload on change:
//
//	err := config.Watch(ctx, path, func(next *config.Config, err error) {
//	    ...
//	})
package config
