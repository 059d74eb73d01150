package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alnah/go-panelsplit/internal/apierr"
)

// DeepSeek API configuration.
const (
	defaultDeepSeekBaseURL     = "https://api.deepseek.com"
	defaultDeepSeekModel       = "deepseek-chat"
	defaultDeepSeekHTTPTimeout = 2 * time.Minute
)

// httpDoer abstracts HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance check.
var _ Completer = (*DeepSeekCompleter)(nil)

// DeepSeekCompleter calls DeepSeek's OpenAI-compatible chat completion API.
type DeepSeekCompleter struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpTimeout     time.Duration
	httpClient      httpDoer
}

// DeepSeekOption configures a DeepSeekCompleter.
type DeepSeekOption func(*DeepSeekCompleter)

// WithDeepSeekModel sets the model.
func WithDeepSeekModel(model string) DeepSeekOption {
	return func(c *DeepSeekCompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// WithDeepSeekBaseURL sets a custom base URL (for testing or proxies).
func WithDeepSeekBaseURL(url string) DeepSeekOption {
	return func(c *DeepSeekCompleter) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithDeepSeekHTTPTimeout sets the HTTP client timeout.
func WithDeepSeekHTTPTimeout(timeout time.Duration) DeepSeekOption {
	return func(c *DeepSeekCompleter) {
		if timeout > 0 {
			c.httpTimeout = timeout
		}
	}
}

// withDeepSeekHTTPClient sets a custom HTTP client (for testing).
func withDeepSeekHTTPClient(client httpDoer) DeepSeekOption {
	return func(c *DeepSeekCompleter) {
		c.httpClient = client
	}
}

// NewDeepSeekCompleter creates a DeepSeekCompleter.
// Returns ErrEmptyAPIKey if apiKey is empty.
func NewDeepSeekCompleter(apiKey string, opts ...DeepSeekOption) (*DeepSeekCompleter, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}

	c := &DeepSeekCompleter{
		apiKey:          apiKey,
		baseURL:         defaultDeepSeekBaseURL,
		model:           defaultDeepSeekModel,
		maxOutputTokens: defaultMaxOutputTokens,
		httpTimeout:     defaultDeepSeekHTTPTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	// Create HTTP client after options are applied (timeout may be customized)
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.httpTimeout}
	}
	return c, nil
}

// Model returns the configured model name.
func (c *DeepSeekCompleter) Model() string { return c.model }

// deepSeekRequest represents a DeepSeek chat completion request.
type deepSeekRequest struct {
	Model          string              `json:"model"`
	Messages       []deepSeekMessage   `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *deepSeekRespFormat `json:"response_format,omitempty"`
}

type deepSeekMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type deepSeekRespFormat struct {
	Type string `json:"type"`
}

// deepSeekResponse holds the fields of a chat completion response we read.
type deepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type deepSeekErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// deepSeekAPIError represents a typed DeepSeek API error.
type deepSeekAPIError struct {
	StatusCode int
	Message    string
}

func (e *deepSeekAPIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("DeepSeek API error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("DeepSeek API error %d", e.StatusCode)
}

// Complete sends prompt as a single user message in JSON mode.
func (c *DeepSeekCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.callAPI(ctx, deepSeekRequest{
		Model:          c.model,
		MaxTokens:      c.maxOutputTokens,
		Temperature:    0,
		Messages:       []deepSeekMessage{{Role: "user", Content: prompt}},
		ResponseFormat: &deepSeekRespFormat{Type: "json_object"},
	})
	if err != nil {
		return "", classifyDeepSeekError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices from DeepSeek API: %w", apierr.ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// callAPI makes an HTTP request to the DeepSeek API.
func (c *DeepSeekCompleter) callAPI(ctx context.Context, reqBody deepSeekRequest) (_ *deepSeekResponse, err error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	// Limit response size to prevent OOM from malformed responses
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseDeepSeekError(resp.StatusCode, respBody)
	}

	var result deepSeekResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %v: %w", err, apierr.ErrMalformedResponse)
	}
	return &result, nil
}

// parseDeepSeekError parses an error response from the DeepSeek API.
func parseDeepSeekError(statusCode int, body []byte) *deepSeekAPIError {
	var errResp deepSeekErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return &deepSeekAPIError{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
	}
	return &deepSeekAPIError{StatusCode: statusCode, Message: errResp.Error.Message}
}

// classifyDeepSeekError maps DeepSeek API errors to sentinel errors.
// DeepSeek answers 402 for insufficient balance.
func classifyDeepSeekError(err error) error {
	var apiErr *deepSeekAPIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, apiErr.Message)
	}
	if errors.Is(err, apierr.ErrMalformedResponse) {
		return err
	}
	return classifyTransport(err)
}
