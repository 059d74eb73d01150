package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-panelsplit/internal/config"
	"github.com/alnah/go-panelsplit/internal/logger"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testHarness - a fully mocked Env plus handles on its mocks
// ---------------------------------------------------------------------------

type testHarness struct {
	env     *Env
	stdout  *syncBuffer
	stderr  *syncBuffer
	config  *mockConfigLoader
	factory *mockCompleterFactory
	opener  *mockStoreOpener
}

// newHarness builds an Env whose config loader returns cfg and whose
// environment holds vars. OPENAI_API_KEY is set unless vars overrides it.
func newHarness(t *testing.T, cfg config.Config, vars map[string]string) *testHarness {
	t.Helper()

	env := map[string]string{EnvOpenAIAPIKey: "sk-test"}
	for k, v := range vars {
		env[k] = v
	}

	h := &testHarness{
		stdout:  &syncBuffer{},
		stderr:  &syncBuffer{},
		config:  &mockConfigLoader{LoadFunc: func() (config.Config, error) { return cfg, nil }},
		factory: &mockCompleterFactory{},
		opener:  &mockStoreOpener{Dir: t.TempDir()},
	}
	h.env = NewEnv(
		WithStdout(h.stdout),
		WithStderr(h.stderr),
		WithGetenv(func(k string) string { return env[k] }),
		WithNow(func() time.Time { return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC) }),
		WithLoggerFactory(func(string, string) (*logger.Logger, error) { return logger.Nop(), nil }),
		WithConfigLoader(h.config),
		WithCompleterFactory(h.factory),
		WithStoreOpener(h.opener),
	)
	return h
}

// testCmd returns a bare command carrying a background context, as RunE receives it.
func testCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", name, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error: %v", path, err)
	}
	return string(data)
}

func sentence(word string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ") + "."
}

// splitAnswer is a raw direct-split answer holding one slide per content.
func splitAnswer(t *testing.T, contents ...string) string {
	t.Helper()
	slides := make([]map[string]string, len(contents))
	for i, c := range contents {
		slides[i] = map[string]string{"header": "H", "content": c}
	}
	data, err := json.Marshal(map[string]any{"slides": slides})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	return string(data)
}

// blockDoc holds one bullet panel that splits along its blocks without a model call.
const blockDoc = `{
  "module_title": "Dosing",
  "slides": [
    {"id": "intro", "type": "engage", "items": []},
    {"id": "s1", "type": "panel", "header": "Dosing", "content": {"blocks": [
      {"type": "paragraph", "text": "Give the first dose."},
      {"type": "bullets", "items": ["weight", "age"]},
      {"type": "paragraph", "text": "Repeat after a day."}
    ]}},
    {"id": "outro", "type": "panel", "header": "End", "content": "Done."}
  ]
}`

// semanticDoc returns a module whose single panel paragraph is a followed by b.
func semanticDoc(t *testing.T, a, b string) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"module_title": "Malaria",
		"slides": []any{
			map[string]any{"id": "s1", "type": "panel", "header": "Malaria", "content": a + " " + b},
		},
	})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	return string(data)
}
