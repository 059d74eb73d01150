// Package prompt builds the instructions sent to the completion provider.
// Every prompt asks for JSON only and forbids the model from rewording the
// source; the answers are checked by package validate before use.
package prompt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-panelsplit/internal/textstat"
)

// ErrUnknown indicates an invalid prompt name was specified.
var ErrUnknown = errors.New("unknown prompt")

// ErrMissingInput indicates the input lacks a field the prompt needs.
var ErrMissingInput = errors.New("missing prompt input")

// Prompt name constants.
const (
	PanelSplit       = "panel-split"
	StrictBoundaries = "strict-boundaries"
	SemanticIndex    = "semantic-index"
	EngageReview     = "engage-review"
	ButtonLabels     = "button-labels"
	SentenceShaping  = "sentence-shaping"
	LengthAnalysis   = "length-analysis"
)

// ---------------------------------------------------------------------------
// Name type - represents a validated prompt name
// ---------------------------------------------------------------------------

// Name represents a validated prompt name.
// Zero value is invalid and must not be rendered.
type Name struct {
	name string
}

// Pre-parsed prompt names for use in code.
var (
	PanelSplitName       = Name{name: PanelSplit}
	StrictBoundariesName = Name{name: StrictBoundaries}
	SemanticIndexName    = Name{name: SemanticIndex}
	EngageReviewName     = Name{name: EngageReview}
	ButtonLabelsName     = Name{name: ButtonLabels}
	SentenceShapingName  = Name{name: SentenceShaping}
	LengthAnalysisName   = Name{name: LengthAnalysis}
)

// ParseName validates and parses a prompt name string.
func ParseName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("prompt name cannot be empty: %w", ErrUnknown)
	}
	if _, ok := builders[s]; !ok {
		return Name{}, fmt.Errorf("unknown prompt %q (available: %s): %w", s, strings.Join(Names(), ", "), ErrUnknown)
	}
	return Name{name: s}, nil
}

// MustParseName parses a prompt name, panicking if invalid.
// Use only for constants and tests.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// String returns the prompt name.
func (n Name) String() string { return n.name }

// IsZero reports whether no prompt was set.
func (n Name) IsZero() bool { return n.name == "" }

// Input carries everything a prompt may interpolate. Each prompt reads only
// the fields it needs.
type Input struct {
	Header    string
	Text      string
	Sentences []string
	Items     []string
	Context   string
	Policy    textstat.Policy
}

// Render builds the prompt text for in.
func (n Name) Render(in Input) (string, error) {
	if n.name == "" {
		return "", fmt.Errorf("prompt name not set: %w", ErrUnknown)
	}
	build, ok := builders[n.name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q: %w", n.name, ErrUnknown)
	}
	in.Policy = in.Policy.OrDefault()
	return build(in)
}

// order defines the canonical order for Names().
var order = []string{
	PanelSplit,
	StrictBoundaries,
	SemanticIndex,
	SentenceShaping,
	LengthAnalysis,
	EngageReview,
	ButtonLabels,
}

var builders = map[string]func(Input) (string, error){
	PanelSplit: func(in Input) (string, error) {
		if strings.TrimSpace(in.Text) == "" {
			return "", fmt.Errorf("%s needs text: %w", PanelSplit, ErrMissingInput)
		}
		return PanelSplitPrompt(in.Header, in.Text, in.Policy), nil
	},
	StrictBoundaries: func(in Input) (string, error) {
		if in.Text == "" {
			return "", fmt.Errorf("%s needs text: %w", StrictBoundaries, ErrMissingInput)
		}
		return StrictBoundariesPrompt(in.Text), nil
	},
	SemanticIndex: func(in Input) (string, error) {
		sentences := in.Sentences
		if len(sentences) == 0 {
			sentences = textstat.SplitSentences(in.Text)
		}
		if len(sentences) == 0 {
			return "", fmt.Errorf("%s needs sentences: %w", SemanticIndex, ErrMissingInput)
		}
		return SemanticIndexPrompt(sentences), nil
	},
	SentenceShaping: func(in Input) (string, error) {
		if strings.TrimSpace(in.Text) == "" {
			return "", fmt.Errorf("%s needs text: %w", SentenceShaping, ErrMissingInput)
		}
		return SentenceShapingPrompt(in.Header, in.Text), nil
	},
	LengthAnalysis: func(in Input) (string, error) {
		if strings.TrimSpace(in.Text) == "" {
			return "", fmt.Errorf("%s needs text: %w", LengthAnalysis, ErrMissingInput)
		}
		return LengthAnalysisPrompt(in.Header, in.Text, in.Policy), nil
	},
	EngageReview: func(in Input) (string, error) {
		if len(in.Items) == 0 {
			return "", fmt.Errorf("%s needs items: %w", EngageReview, ErrMissingInput)
		}
		return EngageReviewPrompt(in.Items, in.Policy), nil
	},
	ButtonLabels: func(in Input) (string, error) {
		ctx := in.Context
		if ctx == "" {
			ctx = in.Text
		}
		if strings.TrimSpace(ctx) == "" {
			return "", fmt.Errorf("%s needs context: %w", ButtonLabels, ErrMissingInput)
		}
		return ButtonLabelsPrompt(ctx), nil
	},
}

// Names returns all prompt names in canonical order.
func Names() []string {
	out := make([]string, len(order))
	copy(out, order)
	return out
}
