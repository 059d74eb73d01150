package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/apply"
	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/config"
	"github.com/alnah/go-panelsplit/internal/format"
	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/store"
	"github.com/alnah/go-panelsplit/internal/suggest"
)

// Default suggestion pass concurrency.
const defaultConcurrency = 4

// llmOptions holds the flags shared by commands that talk to a provider.
type llmOptions struct {
	provider    string
	model       string
	cache       string
	concurrency int
}

// addLLMFlags registers the provider flags on cmd.
func addLLMFlags(cmd *cobra.Command, opts *llmOptions) {
	cmd.Flags().StringVar(&opts.provider, "provider", "", "Completion provider: openai, deepseek, anthropic, gemini (default from config, else openai)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Provider model (default from config, else the provider default)")
	cmd.Flags().StringVar(&opts.cache, "cache", "", "Response cache: a directory, or a .db/.sqlite file (default from config)")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", defaultConcurrency, "Panels processed in parallel")
}

// session is a ready-to-use completion port plus what must be released after the run.
type session struct {
	port     *completion.Port
	provider Provider
	model    string
	cache    store.Store
}

// Close releases the response cache, if any.
func (s *session) Close() error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Close()
}

// openSession resolves provider, model, API key and cache, flags first then config.
func openSession(ctx context.Context, env *Env, cfg config.Config, opts llmOptions) (*session, error) {
	name := opts.provider
	if name == "" {
		name = cfg.Provider
	}
	provider := OpenAIProvider
	if name != "" {
		p, err := ParseProvider(name)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	apiKey := env.Getenv(provider.APIKeyEnv())
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrAPIKeyMissing, provider.APIKeyEnv())
	}

	model := opts.model
	if model == "" {
		model = cfg.Model
	}

	c, err := env.CompleterFactory.NewCompleter(ctx, provider, apiKey, model)
	if err != nil {
		return nil, fmt.Errorf("%s completer: %w", provider, err)
	}
	if m, ok := c.(interface{ Model() string }); ok {
		model = m.Model()
	}

	s := &session{provider: provider, model: model}

	dsn := opts.cache
	if dsn == "" {
		dsn = cfg.Cache
	}
	if dsn != "" {
		cache, err := env.StoreOpener.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		s.cache = cache
		c = completion.NewCachedCompleter(c, cache, provider.String()+"/"+model)
		env.Logger.Debug("response cache enabled", "cache", dsn)
	}

	s.port = completion.NewPort(c,
		completion.WithRetry(cfg.MaxRetries, 0, 0),
		completion.WithLogger(env.Logger),
	)
	return s, nil
}

// loadConfig loads configuration through the Env.
func loadConfig(env *Env) (config.Config, error) {
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// loadModule reads and parses a module document.
func loadModule(path string) (*module.Module, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	m, err := module.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// loadSuggestions reads and parses a suggestions document.
func loadSuggestions(path string) (*suggest.Suggestions, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	s, err := suggest.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, apply.ErrInvalidSuggestion, err)
	}
	return s, nil
}

// runSuggestions runs the suggestion pass over m.
func runSuggestions(ctx context.Context, env *Env, cfg config.Config, opts llmOptions, m *module.Module) (*suggest.Suggestions, error) {
	sess, err := openSession(ctx, env, cfg, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = sess.Close() }()

	label := sess.provider.String()
	if sess.model != "" {
		label += " (" + sess.model + ")"
	}
	fmt.Fprintf(env.Stderr, "Analyzing %s with %s...\n", format.Count(len(m.Slides), "slide", "slides"), label)

	start := env.Now()
	s, err := suggest.New(sess.port,
		suggest.WithPolicy(cfg.Policy),
		suggest.WithConcurrency(opts.concurrency),
		suggest.WithLogger(env.Logger),
	).Suggest(ctx, m)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(env.Stderr, "Suggestion pass finished in %s\n", format.Elapsed(env.Now().Sub(start)))
	return s, nil
}

// applyAndWrite executes suggestions against m and writes the restructured
// module plus its debug report.
func applyAndWrite(env *Env, cfg config.Config, m *module.Module, s *suggest.Suggestions, output string, force bool) error {
	out, report, err := apply.Apply(m, s, cfg.Policy)
	if err != nil {
		return err
	}

	data, err := out.Encode()
	if err != nil {
		return fmt.Errorf("encode module: %w", err)
	}
	reportData, err := report.Encode()
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if err := writeOutput(output, data, force); err != nil {
		return err
	}
	debug := debugPath(output)
	if err := writeOutput(debug, reportData, force); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Split %d of %s into %s\n", report.Split(),
		format.Count(len(m.Slides), "slide", "slides"), format.Count(len(out.Slides), "slide", "slides"))
	fmt.Fprintf(env.Stderr, "Done: %s\n", output)
	fmt.Fprintf(env.Stderr, "Report: %s\n", debug)
	return nil
}
