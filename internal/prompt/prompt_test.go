package prompt_test

// Coverage Notes:
// - Name parsing mirrors the other validated name types: empty and unknown names fail.
// - Rendered prompts must embed the source verbatim and name the JSON keys the
//   validators look for; wording beyond that is free to change.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-panelsplit/internal/prompt"
	"github.com/alnah/go-panelsplit/internal/textstat"
)

// ---------------------------------------------------------------------------
// TestParseName
// ---------------------------------------------------------------------------

func TestParseName(t *testing.T) {
	t.Parallel()

	for _, name := range prompt.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			n, err := prompt.ParseName(name)
			if err != nil {
				t.Fatalf("ParseName(%q) error: %v", name, err)
			}
			if n.String() != name || n.IsZero() {
				t.Errorf("ParseName(%q) = %q", name, n.String())
			}
		})
	}

	for _, bad := range []string{"", "panel_split", "unknown"} {
		if _, err := prompt.ParseName(bad); !errors.Is(err, prompt.ErrUnknown) {
			t.Errorf("ParseName(%q) error = %v, want ErrUnknown", bad, err)
		}
	}
}

func TestNames_ReturnsCopy(t *testing.T) {
	t.Parallel()

	names := prompt.Names()
	names[0] = "mutated"
	if prompt.Names()[0] != prompt.PanelSplit {
		t.Error("Names() exposes internal slice")
	}
}

// ---------------------------------------------------------------------------
// TestRender
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	const text = "Malaria is common. It spreads through mosquito bites. Nets reduce the risk."

	tests := []struct {
		name     string
		input    prompt.Input
		contains []string
	}{
		{
			name:     prompt.PanelSplit,
			input:    prompt.Input{Header: "Malaria", Text: text},
			contains: []string{text, `"slides"`, `"Malaria (continued)"`, "30-70 words"},
		},
		{
			name:     prompt.StrictBoundaries,
			input:    prompt.Input{Text: text},
			contains: []string{text, `"sentence_reflow"`, `"indexes"`, `"medical_facts_changed"`},
		},
		{
			name:     prompt.SemanticIndex,
			input:    prompt.Input{Text: text},
			contains: []string{"0. Malaria is common.", "2. Nets reduce the risk.", `"semantic_index"`},
		},
		{
			name:     prompt.SentenceShaping,
			input:    prompt.Input{Header: "Malaria", Text: text},
			contains: []string{text, `"sentence_shaping"`, `"sentences"`},
		},
		{
			name:     prompt.LengthAnalysis,
			input:    prompt.Input{Header: "Malaria", Text: text},
			contains: []string{text, `"panel_length_analysis"`, `"suggested_panels"`},
		},
		{
			name:     prompt.EngageReview,
			input:    prompt.Input{Items: []string{"First item", "Second item"}},
			contains: []string{"0. First item", "1. Second item", "<= 50 words (70 max)", `"engage1_item_review"`},
		},
		{
			name:     prompt.ButtonLabels,
			input:    prompt.Input{Context: "  Wash hands before eating  "},
			contains: []string{"Wash hands before eating", "<= 4 words", `"button_label_suggestions"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := prompt.MustParseName(tt.name).Render(tt.input)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() missing %q", want)
				}
			}
		})
	}
}

func TestRender_MissingInput(t *testing.T) {
	t.Parallel()

	for _, name := range prompt.Names() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := prompt.MustParseName(name).Render(prompt.Input{})
			if !errors.Is(err, prompt.ErrMissingInput) {
				t.Errorf("Render(empty) error = %v, want ErrMissingInput", err)
			}
		})
	}

	if _, err := (prompt.Name{}).Render(prompt.Input{Text: "x"}); !errors.Is(err, prompt.ErrUnknown) {
		t.Errorf("zero Name Render() error = %v, want ErrUnknown", err)
	}
}

func TestPanelSplitPrompt_UsesPolicy(t *testing.T) {
	t.Parallel()

	p := textstat.DefaultPolicy()
	p.MinWords, p.MaxWords = 20, 60
	got := prompt.PanelSplitPrompt("H", "some text", p)
	if !strings.Contains(got, "20-60 words") {
		t.Errorf("PanelSplitPrompt() ignores policy bounds:\n%s", got)
	}
}
