package apply_test

import (
	"context"
	"strings"
	"testing"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/reflow"
	"github.com/alnah/go-panelsplit/internal/route"
	"github.com/alnah/go-panelsplit/internal/suggest"
)

func sentence(word string, n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = word
	}
	return strings.Join(words, " ") + "."
}

// splitPort answers every direct-split prompt with the same panels.
type splitPort struct {
	contents []string
}

func (p *splitPort) Call(_ context.Context, _ string) (completion.Response, error) {
	slides := make([]any, len(p.contents))
	for i, c := range p.contents {
		slides[i] = map[string]any{"header": "H", "content": c}
	}
	return completion.Response{Value: map[string]any{"slides": slides}}, nil
}

func parseModule(t *testing.T, doc string) *module.Module {
	t.Helper()
	m, err := module.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return m
}

func panel(t *testing.T, id, header string, blocks ...module.Block) module.Slide {
	t.Helper()
	s, err := module.NewSlide(id, module.TypePanel, header, blocks...)
	if err != nil {
		t.Fatalf("NewSlide(%s) error: %v", id, err)
	}
	return s
}

func suggestions(records ...suggest.Record) *suggest.Suggestions {
	s := &suggest.Suggestions{ModuleID: "M", RunID: "run-1", Slides: map[string]suggest.Record{}}
	for _, r := range records {
		s.Slides[r.SlideID] = r
	}
	return s
}

func blockRecord(id string, groups ...[]int) suggest.Record {
	return suggest.Record{SlideID: id, Routing: route.BlockSplit, Action: suggest.ActionSplit, Groups: groups}
}

func chunkRecord(id string, routing route.Decision, chunks ...reflow.Chunk) suggest.Record {
	return suggest.Record{SlideID: id, Routing: routing, Action: suggest.ActionSplit, Chunks: chunks}
}

func ids(slides []module.Slide) string {
	out := make([]string, len(slides))
	for i, s := range slides {
		out[i] = s.ID
	}
	return strings.Join(out, ",")
}
