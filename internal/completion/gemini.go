package completion

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/alnah/go-panelsplit/internal/apierr"
)

// contentGenerator is the subset of the genai models service we use.
// *genai.Models implements this implicitly.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Compile-time interface compliance check.
var _ Completer = (*GeminiCompleter)(nil)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiCompleter calls the Gemini API through the genai SDK.
type GeminiCompleter struct {
	models    contentGenerator
	model     string
	maxTokens int32
}

// GeminiOption configures a GeminiCompleter.
type GeminiOption func(*GeminiCompleter)

// WithGeminiModel sets the model.
func WithGeminiModel(model string) GeminiOption {
	return func(c *GeminiCompleter) {
		if model != "" {
			c.model = model
		}
	}
}

// withContentGenerator sets a custom models service (for testing).
func withContentGenerator(g contentGenerator) GeminiOption {
	return func(c *GeminiCompleter) {
		c.models = g
	}
}

// NewGeminiCompleter creates a GeminiCompleter backed by the Gemini API.
func NewGeminiCompleter(ctx context.Context, apiKey string, opts ...GeminiOption) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, ErrEmptyAPIKey
	}
	c := &GeminiCompleter{
		model:     defaultGeminiModel,
		maxTokens: defaultMaxOutputTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.models == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		c.models = client.Models
	}
	return c, nil
}

// Model returns the configured model name.
func (c *GeminiCompleter) Model() string { return c.model }

// Complete sends prompt and asks for a JSON response.
func (c *GeminiCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0)),
		MaxOutputTokens:  c.maxTokens,
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", classifyGeminiError(err)
	}
	if resp == nil {
		return "", fmt.Errorf("empty response from Gemini: %w", apierr.ErrMalformedResponse)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini: %w", apierr.ErrMalformedResponse)
	}
	return text, nil
}

// classifyGeminiError maps genai API errors to sentinel errors.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Message)
	}
	return classifyTransport(err)
}
