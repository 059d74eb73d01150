package cli

import (
	"context"
	"strings"
	"sync"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/config"
	"github.com/alnah/go-panelsplit/internal/store"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock CompleterFactory
// ---------------------------------------------------------------------------

// factoryCall records the arguments of one NewCompleter call.
type factoryCall struct {
	provider Provider
	apiKey   string
	model    string
}

type mockCompleterFactory struct {
	// Responses maps a prompt substring to the raw answer. Default answers
	// everything else.
	Responses map[string]string
	Default   string

	mu      sync.Mutex
	calls   []factoryCall
	prompts []string
}

func (m *mockCompleterFactory) NewCompleter(_ context.Context, p Provider, apiKey, model string) (completion.Completer, error) {
	m.mu.Lock()
	m.calls = append(m.calls, factoryCall{provider: p, apiKey: apiKey, model: model})
	m.mu.Unlock()
	return completion.Func(m.complete), nil
}

func (m *mockCompleterFactory) complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	for marker, answer := range m.Responses {
		if strings.Contains(prompt, marker) {
			return answer, nil
		}
	}
	return m.Default, nil
}

func (m *mockCompleterFactory) Calls() []factoryCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]factoryCall(nil), m.calls...)
}

func (m *mockCompleterFactory) Prompts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// ---------------------------------------------------------------------------
// Mock StoreOpener
// ---------------------------------------------------------------------------

// mockStoreOpener opens a real file store under Dir and records every DSN.
type mockStoreOpener struct {
	Dir string

	mu   sync.Mutex
	dsns []string
}

func (m *mockStoreOpener) Open(dsn string) (store.Store, error) {
	m.mu.Lock()
	m.dsns = append(m.dsns, dsn)
	m.mu.Unlock()
	return store.NewFileStore(m.Dir)
}

func (m *mockStoreOpener) DSNs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.dsns...)
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*mockConfigLoader)(nil)
	_ CompleterFactory = (*mockCompleterFactory)(nil)
	_ StoreOpener      = (*mockStoreOpener)(nil)
)
