// Package route classifies panels into the restructuring action they need.
package route

import (
	"fmt"
	"strings"

	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/textstat"
)

// Decision is a routing action. The zero value is invalid.
type Decision struct {
	name string
}

// Routing decisions.
var (
	NoAction      = Decision{"no_action"}
	BlockSplit    = Decision{"block_split"}
	SemanticSplit = Decision{"semantic_split"}
	SemanticIndex = Decision{"semantic_index"}
)

var decisions = []Decision{NoAction, BlockSplit, SemanticSplit, SemanticIndex}

// ParseDecision converts a routing name to a Decision.
func ParseDecision(s string) (Decision, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range decisions {
		if d.name == s {
			return d, nil
		}
	}
	return Decision{}, fmt.Errorf("unknown routing %q", s)
}

// String returns the routing name used in suggestion files.
func (d Decision) String() string { return d.name }

// IsZero reports whether d is the zero value.
func (d Decision) IsZero() bool { return d.name == "" }

// MarshalText implements encoding.TextMarshaler.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Decision) UnmarshalText(b []byte) error {
	parsed, err := ParseDecision(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Classification is a decision plus the measurements it was based on.
type Classification struct {
	Decision   Decision
	Paragraphs int
	Bullets    int
	Words      int
	Reason     string
}

// Classify decides how a slide should be restructured. It is a pure function
// of the slide's shape and the policy.
func Classify(s module.Slide, policy textstat.Policy) Decision {
	return Explain(s, policy).Decision
}

// Explain classifies s and reports why.
func Explain(s module.Slide, policy textstat.Policy) Classification {
	policy = policy.OrDefault()
	c := Classification{}
	longest := 0
	for _, b := range s.Blocks {
		switch b.Kind {
		case module.KindParagraph:
			c.Paragraphs++
			wc := textstat.Words(b.Text)
			c.Words += wc
			longest = max(longest, wc)
		case module.KindBullets:
			c.Bullets++
		}
	}

	switch {
	case !s.IsPanel():
		c.Decision, c.Reason = NoAction, "non-panel"
	case len(s.Blocks) == 0:
		c.Decision, c.Reason = NoAction, "no content blocks"
	case c.Bullets > 0 && c.Paragraphs <= 1:
		c.Decision, c.Reason = NoAction, "bullets with at most one paragraph are kept intact"
	case c.Bullets > 0:
		c.Decision = BlockSplit
		c.Reason = fmt.Sprintf("%d paragraphs with bullets; split along block boundaries", c.Paragraphs)
	case c.Paragraphs > 1 && c.Words <= policy.BlockSplitMaxWords && longest <= policy.MaxWords:
		c.Decision = BlockSplit
		c.Reason = fmt.Sprintf("%d short paragraphs totaling %d words", c.Paragraphs, c.Words)
	case c.Paragraphs > 1:
		c.Decision = SemanticIndex
		c.Reason = fmt.Sprintf("%d paragraphs totaling %d words, longest %d", c.Paragraphs, c.Words, longest)
	case c.Words > policy.MaxWords:
		c.Decision = SemanticSplit
		c.Reason = fmt.Sprintf("single paragraph of %d words exceeds %d", c.Words, policy.MaxWords)
	default:
		c.Decision = NoAction
		c.Reason = fmt.Sprintf("single block of %d words fits", c.Words)
	}
	return c
}
