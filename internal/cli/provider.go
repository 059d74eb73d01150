package cli

import (
	"errors"
	"fmt"
	"strings"
)

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderDeepSeek  = "deepseek"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// API key environment variables.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvDeepSeekAPIKey  = "DEEPSEEK_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
	EnvGeminiAPIKey    = "GEMINI_API_KEY"
)

// Provider represents a validated text-completion provider.
// Zero value is invalid and must not be used.
// Use ParseProvider to create from user input, or the pre-parsed values.
type Provider struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Provider{}

// ErrInvalidProvider indicates an invalid provider name was specified.
var ErrInvalidProvider = errors.New("invalid provider")

// Pre-parsed providers for use in code.
var (
	OpenAIProvider    = Provider{name: ProviderOpenAI}
	DeepSeekProvider  = Provider{name: ProviderDeepSeek}
	AnthropicProvider = Provider{name: ProviderAnthropic}
	GeminiProvider    = Provider{name: ProviderGemini}
)

// providerKeys maps each valid provider to its API key variable.
var providerKeys = map[string]string{
	ProviderOpenAI:    EnvOpenAIAPIKey,
	ProviderDeepSeek:  EnvDeepSeekAPIKey,
	ProviderAnthropic: EnvAnthropicAPIKey,
	ProviderGemini:    EnvGeminiAPIKey,
}

// providerNames lists providers in help order.
var providerNames = []string{ProviderOpenAI, ProviderDeepSeek, ProviderAnthropic, ProviderGemini}

// ParseProvider validates and parses a provider name string.
// Returns ErrInvalidProvider if the name is not recognized.
func ParseProvider(s string) (Provider, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Provider{}, fmt.Errorf("provider cannot be empty: %w", ErrInvalidProvider)
	}
	if _, ok := providerKeys[s]; !ok {
		return Provider{}, fmt.Errorf("unknown provider %q (use %s): %w",
			s, strings.Join(providerNames, ", "), ErrInvalidProvider)
	}
	return Provider{name: s}, nil
}

// MustParseProvider parses a provider name, panicking if invalid.
// Use only for constants and tests.
func MustParseProvider(s string) Provider {
	p, err := ParseProvider(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the provider name string.
// Returns empty string for zero value.
func (p Provider) String() string {
	return p.name
}

// IsZero returns true if no provider is set.
func (p Provider) IsZero() bool {
	return p.name == ""
}

// APIKeyEnv returns the environment variable holding the provider's API key.
func (p Provider) APIKeyEnv() string {
	return providerKeys[p.OrDefault().name]
}

// OrDefault returns the provider, or OpenAIProvider if zero.
func (p Provider) OrDefault() Provider {
	if p.IsZero() {
		return OpenAIProvider
	}
	return p
}
