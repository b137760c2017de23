// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/hfchat-tui/internal/cloud"
	"github.com/jeranaias/hfchat-tui/internal/util"
)

// =============================================================================
// CONFIGURATION STRUCTURES
// =============================================================================

// Config is the main configuration structure for hfchat.
type Config struct {
	// Endpoint describes the chat-completions API
	Endpoint EndpointConfig `toml:"endpoint" json:"endpoint"`

	// UI holds display settings
	UI UIConfig `toml:"ui" json:"ui"`

	// Storage holds conversation persistence settings
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Logging holds log file settings
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// EndpointConfig contains the OpenAI-compatible endpoint settings.
type EndpointConfig struct {
	// BaseURL is the API root, e.g. http://localhost:11434/v1
	BaseURL string `toml:"base_url" json:"base_url"`
	// Token is sent as a bearer token. "unused" for local servers.
	Token string `toml:"token" json:"token"`
	// Model is the model identifier sent with every request
	Model string `toml:"model" json:"model"`
	// SystemPrompt is prepended to every request when non-empty
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// MaxTokens caps the completion length
	MaxTokens int `toml:"max_tokens" json:"max_tokens"`
	// Temperature is the sampling temperature (0.0-2.0)
	Temperature float64 `toml:"temperature" json:"temperature"`
	// RequestTimeout bounds a single request. 0 disables the timeout.
	RequestTimeout Duration `toml:"request_timeout" json:"request_timeout"`
	// MaxContextMessages is how many recent messages are sent. 0 sends all.
	MaxContextMessages int `toml:"max_context_messages" json:"max_context_messages"`
	// MaxRetries retries connection errors and 5xx responses
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerMinute paces requests client-side. 0 is unlimited.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// ShowThinking shows reasoning sections by default
	ShowThinking bool `toml:"show_thinking" json:"show_thinking"`
	// TickInterval is the poll and spinner period
	TickInterval Duration `toml:"tick_interval" json:"tick_interval"`
	// CodeTheme is the chroma style used for code blocks
	CodeTheme string `toml:"code_theme" json:"code_theme"`
	// AltScreen runs the TUI in the alternate screen buffer
	AltScreen bool `toml:"alt_screen" json:"alt_screen"`
	// Mouse enables wheel scrolling
	Mouse bool `toml:"mouse" json:"mouse"`
}

// StorageConfig contains conversation storage settings.
type StorageConfig struct {
	// Dir is where /save and /load resolve names. Empty means ~/.hfchat/conversations.
	Dir string `toml:"dir" json:"dir"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// File is the log file path. Empty means ~/.hfchat/hfchat.log.
	File string `toml:"file" json:"file"`
}

// Duration is a time.Duration written as a string ("120s") in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "0" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// LogLevels lists the accepted logging.level values.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with all default values.
func Default() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			BaseURL:            cloud.DefaultBaseURL,
			Model:              cloud.DefaultModel,
			MaxTokens:          cloud.DefaultMaxTokens,
			Temperature:        cloud.DefaultTemperature,
			RequestTimeout:     Duration{120 * time.Second},
			MaxContextMessages: cloud.DefaultMaxContextMessages,
			MaxRetries:         0,
			RequestsPerMinute:  0,
		},
		UI: UIConfig{
			ShowThinking: true,
			TickInterval: Duration{100 * time.Millisecond},
			CodeTheme:    "monokai",
			AltScreen:    true,
			Mouse:        true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the hfchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".hfchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConversationsDir returns the directory saved conversations live in.
func (c *Config) ConversationsDir() (string, error) {
	if c.Storage.Dir != "" {
		return expandHome(c.Storage.Dir)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "conversations"), nil
}

// LogPath returns the log file path.
func (c *Config) LogPath() (string, error) {
	if c.Logging.File != "" {
		return expandHome(c.Logging.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hfchat.log"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// ensureSecurePermissions tightens a config file to 0600 since it may
// hold an API token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.hfchat/config.toml when it exists, otherwise the defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		return LoadFromPath(path)
	}
	return finish(Default())
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := LoadTOML(cfg, path); err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes path over cfg. Keys missing from the file keep the
// values already in cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to path, or to the default TOML file when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		p, err := ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# hfchat configuration file\n")
	buf.WriteString("# Environment variables HF_BASE_URL, HUGGINGFACE_TOKEN, HF_MODEL,\n")
	buf.WriteString("# SYSTEM_PROMPT and HFCHAT_LOG_LEVEL override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0o600, 0o700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns a ValidateErrors with
// every problem found.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// ==========================================================================
	// Endpoint
	// ==========================================================================

	if u, err := url.Parse(c.Endpoint.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{
			Field:   "endpoint.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an http or https URL", c.Endpoint.BaseURL),
		})
	} else if c.Endpoint.Token == "" && !cloud.IsLocalURL(c.Endpoint.BaseURL) {
		errs = append(errs, ValidationError{
			Field:   "endpoint.token",
			Message: "a token is required for remote endpoints (set HUGGINGFACE_TOKEN)",
		})
	}

	if strings.TrimSpace(c.Endpoint.Model) == "" {
		errs = append(errs, ValidationError{Field: "endpoint.model", Message: "must not be empty"})
	}
	if c.Endpoint.MaxTokens <= 0 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.max_tokens",
			Message: fmt.Sprintf("must be positive, got %d", c.Endpoint.MaxTokens),
		})
	}
	if c.Endpoint.Temperature < 0 || c.Endpoint.Temperature > 2 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.temperature",
			Message: fmt.Sprintf("must be between 0.0 and 2.0, got %g", c.Endpoint.Temperature),
		})
	}
	if c.Endpoint.RequestTimeout.Duration < 0 {
		errs = append(errs, ValidationError{Field: "endpoint.request_timeout", Message: "must not be negative"})
	}
	if c.Endpoint.MaxContextMessages < 0 {
		errs = append(errs, ValidationError{Field: "endpoint.max_context_messages", Message: "must not be negative"})
	}
	if c.Endpoint.MaxRetries < 0 || c.Endpoint.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "endpoint.max_retries",
			Message: fmt.Sprintf("must be between 0 and 10, got %d", c.Endpoint.MaxRetries),
		})
	}
	if c.Endpoint.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "endpoint.requests_per_minute", Message: "must not be negative"})
	}

	// ==========================================================================
	// UI
	// ==========================================================================

	if tick := c.UI.TickInterval.Duration; tick < 10*time.Millisecond || tick > time.Second {
		errs = append(errs, ValidationError{
			Field:   "ui.tick_interval",
			Message: fmt.Sprintf("must be between 10ms and 1s, got %s", tick),
		})
	}

	// ==========================================================================
	// Logging
	// ==========================================================================

	if !validLevel(c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: %s", c.Logging.Level, strings.Join(LogLevels, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validLevel(level string) bool {
	level = strings.ToLower(strings.TrimSpace(level))
	for _, l := range LogLevels {
		if l == level {
			return true
		}
	}
	return false
}

// SetDefaults fills in values that cannot be left empty.
func (c *Config) SetDefaults() {
	defaults := Default()

	c.Endpoint.BaseURL = strings.TrimSpace(c.Endpoint.BaseURL)
	if c.Endpoint.BaseURL == "" {
		c.Endpoint.BaseURL = defaults.Endpoint.BaseURL
	}
	if c.Endpoint.Model == "" {
		c.Endpoint.Model = defaults.Endpoint.Model
	}
	if c.Endpoint.Token == "" && cloud.IsLocalURL(c.Endpoint.BaseURL) {
		c.Endpoint.Token = "unused"
	}
	if c.UI.TickInterval.Duration == 0 {
		c.UI.TickInterval = defaults.UI.TickInterval
	}
	if c.UI.CodeTheme == "" {
		c.UI.CodeTheme = defaults.UI.CodeTheme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	c.Logging.Level = strings.ToLower(c.Logging.Level)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides.
//
// Supported variables:
//   - HF_BASE_URL: overrides endpoint.base_url
//   - HUGGINGFACE_TOKEN: overrides endpoint.token
//   - HF_MODEL: overrides endpoint.model
//   - SYSTEM_PROMPT: overrides endpoint.system_prompt
//   - HFCHAT_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if baseURL := os.Getenv("HF_BASE_URL"); baseURL != "" {
		c.Endpoint.BaseURL = baseURL
	}
	if token := os.Getenv("HUGGINGFACE_TOKEN"); token != "" {
		c.Endpoint.Token = token
	}
	if model := os.Getenv("HF_MODEL"); model != "" {
		c.Endpoint.Model = model
	}
	if prompt := os.Getenv("SYSTEM_PROMPT"); prompt != "" {
		c.Endpoint.SystemPrompt = prompt
	}
	if level := os.Getenv("HFCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// ClientConfig converts the endpoint section into a cloud.Config.
func (c *Config) ClientConfig() cloud.Config {
	return cloud.Config{
		BaseURL:            c.Endpoint.BaseURL,
		Token:              c.Endpoint.Token,
		Model:              c.Endpoint.Model,
		SystemPrompt:       c.Endpoint.SystemPrompt,
		MaxTokens:          c.Endpoint.MaxTokens,
		Temperature:        c.Endpoint.Temperature,
		MaxContextMessages: c.Endpoint.MaxContextMessages,
		MaxRetries:         c.Endpoint.MaxRetries,
		RequestsPerMinute:  c.Endpoint.RequestsPerMinute,
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

var durationType = reflect.TypeOf(Duration{})

// Get retrieves a configuration value using dot notation (e.g., "ui.code_theme").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "endpoint.temperature").
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct || field.Type() == durationType {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		if field.Type() == durationType {
			var d Duration
			if err := d.UnmarshalText([]byte(strVal)); err != nil {
				return err
			}
			field.Set(reflect.ValueOf(d))
			return nil
		}
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && field.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Keys returns every configuration key in dot notation.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		sectionName := strings.Split(section.Tag.Get("toml"), ",")[0]
		for j := 0; j < section.Type.NumField(); j++ {
			name := strings.Split(section.Type.Field(j).Tag.Get("toml"), ",")[0]
			keys = append(keys, sectionName+"."+name)
		}
	}
	return keys
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// String returns a JSON representation with the token redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Endpoint.Token != "" && safe.Endpoint.Token != "unused" {
		safe.Endpoint.Token = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
