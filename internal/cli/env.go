package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/config"
	"github.com/alnah/go-panelsplit/internal/logger"
	"github.com/alnah/go-panelsplit/internal/store"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Now    func() time.Time
	Logger *logger.Logger

	// NewLogger builds the logger selected by the root command's flags.
	NewLogger func(mode, level string) (*logger.Logger, error)

	// Factories for domain objects
	ConfigLoader     ConfigLoader
	CompleterFactory CompleterFactory
	StoreOpener      StoreOpener
}

// ConfigLoader loads and provides access to configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// CompleterFactory creates the raw completer for a provider.
// An empty model selects the provider's default.
type CompleterFactory interface {
	NewCompleter(ctx context.Context, p Provider, apiKey, model string) (completion.Completer, error)
}

// StoreOpener opens the document store backing the response cache.
type StoreOpener interface {
	Open(dsn string) (store.Store, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *logger.Logger) EnvOption {
	return func(e *Env) {
		if l != nil {
			e.Logger = l
		}
	}
}

// WithLoggerFactory sets the function that builds the run's logger.
func WithLoggerFactory(fn func(mode, level string) (*logger.Logger, error)) EnvOption {
	return func(e *Env) {
		e.NewLogger = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithCompleterFactory sets the completer factory.
func WithCompleterFactory(f CompleterFactory) EnvOption {
	return func(e *Env) {
		e.CompleterFactory = f
	}
}

// WithStoreOpener sets the store opener.
func WithStoreOpener(o StoreOpener) EnvOption {
	return func(e *Env) {
		e.StoreOpener = o
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		Getenv:           os.Getenv,
		Now:              time.Now,
		Logger:           logger.Nop(),
		NewLogger:        logger.New,
		ConfigLoader:     &defaultConfigLoader{},
		CompleterFactory: &defaultCompleterFactory{},
		StoreOpener:      &defaultStoreOpener{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultCompleterFactory builds the provider adapters from the completion package.
type defaultCompleterFactory struct{}

func (defaultCompleterFactory) NewCompleter(ctx context.Context, p Provider, apiKey, model string) (completion.Completer, error) {
	switch p.OrDefault() {
	case OpenAIProvider:
		var opts []completion.OpenAIOption
		if model != "" {
			opts = append(opts, completion.WithOpenAIModel(model))
		}
		return completion.NewOpenAICompleter(openai.NewClient(apiKey), opts...), nil
	case DeepSeekProvider:
		var opts []completion.DeepSeekOption
		if model != "" {
			opts = append(opts, completion.WithDeepSeekModel(model))
		}
		return completion.NewDeepSeekCompleter(apiKey, opts...)
	case AnthropicProvider:
		var opts []completion.AnthropicOption
		if model != "" {
			opts = append(opts, completion.WithAnthropicModel(model))
		}
		return completion.NewAnthropicCompleter(apiKey, opts...)
	case GeminiProvider:
		var opts []completion.GeminiOption
		if model != "" {
			opts = append(opts, completion.WithGeminiModel(model))
		}
		return completion.NewGeminiCompleter(ctx, apiKey, opts...)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidProvider, p)
	}
}

// defaultStoreOpener implements StoreOpener using the store package.
type defaultStoreOpener struct{}

func (defaultStoreOpener) Open(dsn string) (store.Store, error) {
	return store.Open(config.ExpandPath(dsn))
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ CompleterFactory = (*defaultCompleterFactory)(nil)
	_ StoreOpener      = (*defaultStoreOpener)(nil)
)
