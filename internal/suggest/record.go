package suggest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alnah/go-panelsplit/internal/blocksplit"
	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/reflow"
	"github.com/alnah/go-panelsplit/internal/route"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// Action is what the apply pass should do with a slide.
type Action string

// Actions.
const (
	ActionKeep  Action = "keep"
	ActionSplit Action = "split"
)

// ParagraphReflow records how one paragraph of a panel was reflowed.
type ParagraphReflow struct {
	Paragraph int              `json:"paragraph"`
	Strategy  reflow.Strategy  `json:"strategy"`
	Reason    string           `json:"reason,omitempty"`
	Spans     []validate.Span  `json:"spans,omitempty"`
	Anomalies []reflow.Anomaly `json:"anomalies,omitempty"`
}

// Record is the suggestion for one slide. It is written once by the
// suggestion pass and read once by the apply pass.
type Record struct {
	SlideID         string         `json:"slide_id"`
	Header          string         `json:"header"`
	Type            module.Type    `json:"type"`
	Routing         route.Decision `json:"routing"`
	Action          Action         `json:"action"`
	Reason          string         `json:"reason"`
	SourceWordCount int            `json:"source_word_count"`

	// Block split.
	Groups   [][]int            `json:"groups,omitempty"`
	Proposal []blocksplit.Panel `json:"proposal,omitempty"`

	// Semantic split and semantic index.
	Chunks []reflow.Chunk    `json:"chunks,omitempty"`
	Reflow []ParagraphReflow `json:"reflow,omitempty"`

	// Engage slides, advisory only.
	ItemReview       []validate.ItemReview      `json:"engage1_item_review,omitempty"`
	LabelSuggestions []validate.LabelSuggestion `json:"button_label_suggestions,omitempty"`
	Advisories       []string                   `json:"advisories,omitempty"`
}

// Suggestions holds every record of one suggestion run, keyed by slide id.
type Suggestions struct {
	ModuleID string            `json:"module_id"`
	RunID    string            `json:"run_id"`
	Slides   map[string]Record `json:"slides"`
}

// Parse decodes a suggestions document.
func Parse(data []byte) (*Suggestions, error) {
	var s Suggestions
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	if s.Slides == nil {
		s.Slides = map[string]Record{}
	}
	return &s, nil
}

// Load reads and decodes a suggestions file.
func Load(path string) (*Suggestions, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("read suggestions: %w", err)
	}
	return Parse(data)
}

// Encode returns the indented JSON form of s.
func (s *Suggestions) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Proposals returns the number of records whose action is a split.
func (s *Suggestions) Proposals() int {
	n := 0
	for _, r := range s.Slides {
		if r.Action == ActionSplit {
			n++
		}
	}
	return n
}
