// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"pkt.systems/pslog"

	"github.com/jeranaias/hfchat-tui/internal/model"
)

// Configuration constants for the chat completions API.
const (
	// DefaultBaseURL is Ollama's OpenAI-compatible endpoint.
	DefaultBaseURL = "http://localhost:11434/v1"

	// DefaultModel is the model requested when none is configured.
	DefaultModel = "llama3.2"

	// DefaultMaxTokens caps the reply length.
	DefaultMaxTokens = 500

	// DefaultTemperature is the sampling temperature.
	DefaultTemperature = 0.7

	// DefaultMaxContextMessages is how many history messages are sent after
	// the system prompt.
	DefaultMaxContextMessages = 20

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit

	userAgent = "hfchat/1.0"
)

// sharedHTTPClient pools connections across requests. It has no overall
// timeout; each request is bounded by its context.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// Error variables for common API errors.
var (
	// ErrNotConfigured indicates the base URL or model is missing.
	ErrNotConfigured = errors.New("completion endpoint not configured")

	// ErrAuthFailed indicates authentication failed (invalid or expired token).
	ErrAuthFailed = errors.New("unauthorized")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrModelNotFound indicates the endpoint or model does not exist.
	ErrModelNotFound = errors.New("not found")

	// ErrConnection indicates the endpoint could not be reached.
	ErrConnection = errors.New("connection failed")

	// ErrEmptyResponse indicates a response without any choices.
	ErrEmptyResponse = errors.New("empty response")
)

// =============================================================================
// ERRORS
// =============================================================================

// APIError is a non-2xx response from the endpoint.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Code != "" {
		return fmt.Sprintf("API error %d [%s]: %s", e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("API error %d: %s", e.StatusCode, msg)
}

// Is maps status codes onto the package sentinels so callers can use
// errors.Is(err, ErrAuthFailed) and friends.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthFailed:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrModelNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// Temporary reports whether the request may succeed on retry.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// =============================================================================
// WIRE TYPES
// =============================================================================

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// ChatRequest represents a request to the chat completions endpoint.
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

// ChatResponse represents a response from the chat completions endpoint.
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetContent returns the content of the first choice, or empty string if none.
func (r *ChatResponse) GetContent() string {
	if len(r.Choices) > 0 {
		return r.Choices[0].Message.Content
	}
	return ""
}

// ModelInfo represents a model advertised by the endpoint.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
}

type modelsResponse struct {
	Data []ModelInfo `json:"data"`
}

// apiErrorResponse covers both {"error":{"message":...}} and
// {"error":"..."} bodies.
type apiErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

type apiErrorDetail struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Config holds the settings for a Client.
type Config struct {
	BaseURL            string
	Token              string
	Model              string
	SystemPrompt       string
	MaxTokens          int
	Temperature        float64
	MaxContextMessages int

	// MaxRetries retries connection errors and 5xx responses.
	MaxRetries int

	// RequestsPerMinute paces requests client side. Zero is unlimited.
	RequestsPerMinute int

	// HTTPClient overrides the shared pooled client.
	HTTPClient *http.Client
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		BaseURL:            DefaultBaseURL,
		Token:              "unused",
		Model:              DefaultModel,
		MaxTokens:          DefaultMaxTokens,
		Temperature:        DefaultTemperature,
		MaxContextMessages: DefaultMaxContextMessages,
	}
}

// Client talks to an OpenAI-compatible chat completions endpoint.
// A Client is safe for concurrent use.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for cfg.
func NewClient(cfg Config) *Client {
	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: cfg.HTTPClient,
	}
	c.cfg.Token = strings.TrimSpace(cfg.Token)
	if c.httpClient == nil {
		c.httpClient = sharedHTTPClient
	}
	if cfg.RequestsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

// BaseURL returns the endpoint base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// IsLocal reports whether the endpoint is on the loopback interface.
func (c *Client) IsLocal() bool {
	return IsLocalURL(c.baseURL)
}

// IsLocalURL reports whether raw points at localhost or a loopback address.
func IsLocalURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// KeyFingerprint returns a short hash of the token for log lines. The
// token itself is never logged.
func (c *Client) KeyFingerprint() string {
	if c.cfg.Token == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.cfg.Token))
	return hex.EncodeToString(h[:4])
}

// BuildRequest converts history into a request body: the system prompt
// first, then at most MaxContextMessages of the most recent messages.
func (c *Client) BuildRequest(history []model.Message) ChatRequest {
	msgs := make([]ChatMessage, 0, len(history)+1)
	if prompt := strings.TrimSpace(c.cfg.SystemPrompt); prompt != "" {
		msgs = append(msgs, ChatMessage{Role: string(model.RoleSystem), Content: prompt})
	}

	start := 0
	if limit := c.cfg.MaxContextMessages; limit > 0 && len(history) > limit {
		start = len(history) - limit
	}
	for _, m := range history[start:] {
		if m.Role == model.RoleSystem {
			continue
		}
		msgs = append(msgs, ChatMessage{Role: string(m.Role), Content: m.Content})
	}

	return ChatRequest{
		Model:       c.cfg.Model,
		Messages:    msgs,
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
		Stream:      false,
	}
}

// Complete sends history and returns the assistant reply text.
func (c *Client) Complete(ctx context.Context, history []model.Message) (string, error) {
	resp, err := c.Chat(ctx, c.BuildRequest(history))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.GetContent(), nil
}

// Chat performs a chat completion request, retrying transient failures up
// to MaxRetries times with exponential backoff.
func (c *Client) Chat(ctx context.Context, reqBody ChatRequest) (*ChatResponse, error) {
	if c.baseURL == "" || reqBody.Model == "" {
		return nil, ErrNotConfigured
	}

	log := pslog.Ctx(ctx).With("model", reqBody.Model, "key", c.KeyFingerprint())
	endpoint := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt)
			log.Debug("api retry", "attempt", attempt, "delay", delay, "err", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		start := time.Now()
		resp, err := c.doRequest(ctx, endpoint, reqBody)
		if err == nil {
			log.Debug("api response", "elapsed", time.Since(start), "tokens", resp.Usage.TotalTokens)
			return resp, nil
		}
		if !isRetryable(ctx, err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
}

// doRequest performs a single POST to the chat completions endpoint.
func (c *Client) doRequest(ctx context.Context, endpoint string, reqBody ChatRequest) (*ChatResponse, error) {
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	pslog.Ctx(ctx).Debug("api request", "method", req.Method, "path", req.URL.Path, "messages", len(reqBody.Messages))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &chatResp, nil
}

// handleErrorResponse converts an HTTP error response into an *APIError.
func handleErrorResponse(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var parsed apiErrorResponse
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Error) > 0 {
		var detail apiErrorDetail
		var plain string
		switch {
		case json.Unmarshal(parsed.Error, &detail) == nil && detail.Message != "":
			apiErr.Message = detail.Message
			if detail.Code != nil {
				apiErr.Code = fmt.Sprint(detail.Code)
			}
		case json.Unmarshal(parsed.Error, &plain) == nil:
			apiErr.Message = plain
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
		if len(apiErr.Message) > 200 {
			apiErr.Message = apiErr.Message[:200] + "..."
		}
	}
	return apiErr
}

// isRetryable determines if an error should trigger a retry.
func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return errors.Is(err, ErrConnection)
}

// calculateBackoff returns the delay to wait before the next retry.
func calculateBackoff(attempt int) time.Duration {
	// Exponential backoff: 500ms, 1000ms, 2000ms, etc.
	delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}

// ListModels retrieves the models advertised at {base}/models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	var modelsResp modelsResponse
	if err := json.Unmarshal(body, &modelsResp); err != nil {
		return nil, fmt.Errorf("failed to parse models response: %w", err)
	}
	return modelsResp.Data, nil
}
