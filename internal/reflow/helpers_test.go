package reflow_test

import (
	"context"
	"strings"
	"sync"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/reflow"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// sentence returns a sentence of n words ending with a period.
func sentence(word string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ") + "."
}

// dosing returns an n-word sentence (n > 8) whose periods inside decimals
// and abbreviations do not end it.
func dosing(n int) string {
	return "Give 2.5 mg/kg, e.g. as Dr. Mbeki advised, " + sentence("then", n-8)
}

func contents(pieces []reflow.Piece) []string {
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Content
	}
	return out
}

// joinSentences joins sentences with single spaces and returns the rune
// offset at which each one starts.
func joinSentences(sentences ...string) (string, []int) {
	var (
		sb      strings.Builder
		indexes []int
	)
	for i, s := range sentences {
		if i > 0 {
			sb.WriteByte(' ')
		}
		indexes = append(indexes, len([]rune(sb.String())))
		sb.WriteString(s)
	}
	return sb.String(), indexes
}

func spans(text string, indexes []int) []validate.Span {
	return validate.SpansFromIndexes(text, indexes)
}

// fakePort answers the direct-split and boundary prompts with canned responses.
type fakePort struct {
	mu      sync.Mutex
	split   completion.Response
	bounds  completion.Response
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
	if strings.Contains(prompt, "PANEL SPLITTING") {
		return f.split, nil
	}
	return f.bounds, nil
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

func boundsResponse(indexes ...int) completion.Response {
	list := make([]any, len(indexes))
	for i, idx := range indexes {
		list[i] = float64(idx)
	}
	return completion.Response{Value: map[string]any{
		"sentence_reflow": map[string]any{"action": "reflow", "indexes": list},
		"safety":          safety(),
	}}
}

func rejected(reason string) completion.Response {
	return completion.Response{Rejected: true, Reason: reason}
}
