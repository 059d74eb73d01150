package completion

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-panelsplit/internal/apierr"
)

// chatCompleter is an internal interface for OpenAI chat completion.
// *openai.Client implements this implicitly.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance check.
var _ Completer = (*OpenAICompleter)(nil)

// Default OpenAI model.
const defaultOpenAIModel = "gpt-4o-mini"

// OpenAICompleter calls OpenAI's chat completion API in JSON mode.
type OpenAICompleter struct {
	client          chatCompleter
	model           string
	maxOutputTokens int
}

// OpenAIOption configures an OpenAICompleter.
type OpenAIOption func(*OpenAICompleter)

// WithOpenAIModel sets the model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAICompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// WithOpenAIMaxOutputTokens sets the completion token limit.
func WithOpenAIMaxOutputTokens(n int) OpenAIOption {
	return func(c *OpenAICompleter) {
		if n > 0 {
			c.maxOutputTokens = n
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(cc chatCompleter) OpenAIOption {
	return func(c *OpenAICompleter) {
		c.client = cc
	}
}

// NewOpenAICompleter creates an OpenAICompleter with the given client.
func NewOpenAICompleter(client *openai.Client, opts ...OpenAIOption) *OpenAICompleter {
	c := &OpenAICompleter{
		client:          client,
		model:           defaultOpenAIModel,
		maxOutputTokens: defaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the configured model name.
func (c *OpenAICompleter) Model() string { return c.model }

// Complete sends prompt as a single user message.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:               c.model,
		MaxCompletionTokens: c.maxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices from OpenAI API: %w", apierr.ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps OpenAI API errors to sentinel errors.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return classifyStatus(reqErr.HTTPStatusCode, reqErr.Error())
	}
	return classifyTransport(err)
}
