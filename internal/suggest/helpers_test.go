package suggest_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/module"
)

func sentence(word string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ") + "."
}

// fakePort answers each prompt family with a canned response.
type fakePort struct {
	mu      sync.Mutex
	split   completion.Response
	bounds  completion.Response
	review  completion.Response
	labels  completion.Response
	err     error
	prompts []string
}

func (f *fakePort) Call(_ context.Context, prompt string) (completion.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return completion.Response{}, f.err
	}
	switch {
	case strings.Contains(prompt, "PANEL SPLITTING"):
		return f.split, nil
	case strings.Contains(prompt, "engage1_item_review"):
		return f.review, nil
	case strings.Contains(prompt, "button_label_suggestions"):
		return f.labels, nil
	default:
		return f.bounds, nil
	}
}

func (f *fakePort) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func safety() map[string]any {
	return map[string]any{
		"adds_new_information":  false,
		"removes_information":   false,
		"medical_facts_changed": false,
	}
}

func splitResponse(contents ...string) completion.Response {
	slides := make([]any, len(contents))
	for i, c := range contents {
		slides[i] = map[string]any{"header": "H", "content": c}
	}
	return completion.Response{Value: map[string]any{"slides": slides}}
}

func reviewResponse(wordCount int, status string) completion.Response {
	return completion.Response{Value: map[string]any{
		"engage1_item_review": []any{
			map[string]any{"item_index": float64(0), "word_count": float64(wordCount), "status": status},
		},
		"safety": safety(),
	}}
}

func labelsResponse(target, label string) completion.Response {
	return completion.Response{Value: map[string]any{
		"button_label_suggestions": []any{
			map[string]any{"target": target, "suggested_label": label},
		},
		"safety": safety(),
	}}
}

func rejected(reason string) completion.Response {
	return completion.Response{Rejected: true, Reason: reason}
}

func panel(t *testing.T, id, header string, blocks ...module.Block) module.Slide {
	t.Helper()
	s, err := module.NewSlide(id, module.TypePanel, header, blocks...)
	if err != nil {
		t.Fatalf("NewSlide(%s) error: %v", id, err)
	}
	return s
}

func parseModule(t *testing.T, doc string) *module.Module {
	t.Helper()
	m, err := module.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return m
}
