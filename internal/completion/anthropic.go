package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/alnah/go-panelsplit/internal/apierr"
)

// messageCreator is the subset of the Anthropic messages service we use.
// *anthropic.MessageService implements this implicitly.
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// Compile-time interface compliance check.
var _ Completer = (*AnthropicCompleter)(nil)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicCompleter calls the Anthropic Messages API.
type AnthropicCompleter struct {
	messages  messageCreator
	model     string
	maxTokens int64
}

// AnthropicOption configures an AnthropicCompleter.
type AnthropicOption func(*AnthropicCompleter)

// WithAnthropicModel sets the model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *AnthropicCompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// withMessageCreator sets a custom messages service (for testing).
func withMessageCreator(m messageCreator) AnthropicOption {
	return func(c *AnthropicCompleter) {
		c.messages = m
	}
}

// NewAnthropicCompleter creates an AnthropicCompleter.
// SDK-level retries are disabled; Port owns the retry policy.
func NewAnthropicCompleter(apiKey string, opts ...AnthropicOption) (*AnthropicCompleter, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	c := &AnthropicCompleter{
		model:     defaultAnthropicModel,
		maxTokens: defaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.messages == nil {
		client := anthropic.NewClient(option.WithAPIKey(apiKey), option.WithMaxRetries(0))
		c.messages = &client.Messages
	}
	return c, nil
}

// Model returns the configured model name.
func (c *AnthropicCompleter) Model() string { return c.model }

// Complete sends prompt as a single user message and joins the text blocks of the answer.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	msg, err := c.messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: "Answer with a single JSON object and nothing else."},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyAnthropicError(err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Anthropic response: %w", apierr.ErrMalformedResponse)
	}
	return sb.String(), nil
}

// classifyAnthropicError maps Anthropic SDK errors to sentinel errors.
func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.StatusCode, "Anthropic API error")
	}
	return classifyTransport(err)
}
