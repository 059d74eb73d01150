package textstat_test

import (
	"errors"
	"testing"

	"github.com/alnah/go-panelsplit/internal/textstat"
)

// ---------------------------------------------------------------------------
// TestPolicy - defaults, zero filling and consistency checks
// ---------------------------------------------------------------------------

func TestPolicy(t *testing.T) {
	t.Parallel()

	t.Run("default is valid", func(t *testing.T) {
		t.Parallel()

		p := textstat.DefaultPolicy()
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate() error: %v", err)
		}
		if p.MinWords != 30 || p.MaxWords != 70 || p.BlockSplitMaxWords != 140 {
			t.Errorf("unexpected defaults: %+v", p)
		}
	})

	t.Run("OrDefault keeps explicit values", func(t *testing.T) {
		t.Parallel()

		p := textstat.Policy{MaxWords: 60}.OrDefault()
		if p.MaxWords != 60 || p.MinWords != 30 {
			t.Errorf("OrDefault() = %+v", p)
		}
	})

	t.Run("window bounds are inclusive", func(t *testing.T) {
		t.Parallel()

		p := textstat.DefaultPolicy()
		for n, want := range map[int]bool{29: false, 30: true, 70: true, 71: false} {
			if got := p.WithinWindow(n); got != want {
				t.Errorf("WithinWindow(%d) = %v, want %v", n, got, want)
			}
		}
	})

	invalid := []struct {
		name string
		mut  func(*textstat.Policy)
	}{
		{"min above max", func(p *textstat.Policy) { p.MinWords = 80 }},
		{"negative min", func(p *textstat.Policy) { p.MinWords = -1 }},
		{"block split below max", func(p *textstat.Policy) { p.BlockSplitMaxWords = 50 }},
		{"zero paragraphs per group", func(p *textstat.Policy) { p.MaxParagraphsPerGroup = 0 }},
		{"soft above hard", func(p *textstat.Policy) { p.EngageSoftLimit = 90 }},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := textstat.DefaultPolicy()
			tt.mut(&p)
			if err := p.Validate(); !errors.Is(err, textstat.ErrInvalidPolicy) {
				t.Errorf("Validate() = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}
