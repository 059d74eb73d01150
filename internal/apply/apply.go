// Package apply executes a suggestion file against a module. It is
// deterministic: no model is called, and every suggestion is re-checked
// against the slide it names before a single child slide is written.
package apply

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/reflow"
	"github.com/alnah/go-panelsplit/internal/route"
	"github.com/alnah/go-panelsplit/internal/suggest"
	"github.com/alnah/go-panelsplit/internal/textstat"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// Stage identifies the apply pass in debug reports.
const Stage = "2.6"

var (
	// ErrBoundsViolation indicates a chunk outside the word window that the
	// audit does not excuse.
	ErrBoundsViolation = errors.New("bounds violation")

	// ErrInvalidSuggestion indicates a record that does not fit its slide.
	ErrInvalidSuggestion = errors.New("invalid suggestion")
)

// Actions recorded in a Report.
const (
	ActionUntouched     = "untouched"
	ActionBlockSplit    = "block_split"
	ActionSemanticSplit = "semantic_split"
	ActionSemanticIndex = "semantic_index"
)

// Item is the report line for one input slide.
type Item struct {
	SlideID           string   `json:"slide_id"`
	Header            string   `json:"header"`
	OriginalWordCount int      `json:"original_word_count"`
	ActionTaken       string   `json:"action_taken"`
	NewSlideIDs       []string `json:"new_slide_ids"`
	Reason            string   `json:"reason"`
}

// Report is the debug report written next to the output module.
type Report struct {
	Stage string `json:"stage"`
	RunID string `json:"run_id"`
	Items []Item `json:"items"`
}

// Split returns the number of slides that were split.
func (r Report) Split() int {
	n := 0
	for _, it := range r.Items {
		if it.ActionTaken != ActionUntouched {
			n++
		}
	}
	return n
}

// Encode returns the indented JSON form of r.
func (r Report) Encode() ([]byte, error) {
	if r.Items == nil {
		r.Items = []Item{}
	}
	return json.MarshalIndent(r, "", "  ")
}

// Apply returns a new module in which every split suggestion has been
// executed. Slide order is preserved and untouched slides keep their original
// bytes. The input module is not modified.
func Apply(m *module.Module, s *suggest.Suggestions, policy textstat.Policy) (*module.Module, Report, error) {
	policy = policy.OrDefault()
	report := Report{Stage: Stage, RunID: s.RunID, Items: make([]Item, 0, len(m.Slides))}
	out := make([]module.Slide, 0, len(m.Slides))

	for _, sl := range m.Slides {
		item := Item{SlideID: sl.ID, Header: sl.Header, ActionTaken: ActionUntouched, NewSlideIDs: []string{}}
		if sl.IsPanel() {
			item.OriginalWordCount = textstat.Words(sl.ParagraphText())
		}

		children, reason, err := applySlide(sl, s.Slides, policy)
		if err != nil {
			return nil, Report{}, fmt.Errorf("slide %s: %w", sl.ID, err)
		}
		item.Reason = reason
		if len(children) == 0 {
			out = append(out, sl)
			report.Items = append(report.Items, item)
			continue
		}

		item.ActionTaken = actionFor(s.Slides[sl.ID].Routing)
		for _, c := range children {
			item.NewSlideIDs = append(item.NewSlideIDs, c.ID)
		}
		out = append(out, children...)
		report.Items = append(report.Items, item)
	}

	return m.WithSlides(out), report, nil
}

// applySlide returns the children replacing sl, or none and the reason sl is
// kept.
func applySlide(sl module.Slide, records map[string]suggest.Record, policy textstat.Policy) ([]module.Slide, string, error) {
	if !sl.IsPanel() {
		return nil, "non-panel", nil
	}
	rec, ok := records[sl.ID]
	if !ok {
		return nil, "no suggestion", nil
	}
	if rec.Action != suggest.ActionSplit {
		return nil, keepReason(rec), nil
	}

	switch rec.Routing {
	case route.BlockSplit:
		return blockSplit(sl, rec.Groups)
	case route.SemanticSplit:
		return semanticSplit(sl, rec.Chunks, []string{sl.ParagraphText()}, policy)
	case route.SemanticIndex:
		return semanticSplit(sl, rec.Chunks, sl.Paragraphs(), policy)
	default:
		return nil, "", fmt.Errorf("%w: split requested with routing %q", ErrInvalidSuggestion, rec.Routing)
	}
}

func keepReason(rec suggest.Record) string {
	if rec.Reason == "" {
		return string(rec.Action)
	}
	return rec.Reason
}

func actionFor(d route.Decision) string {
	switch d {
	case route.BlockSplit:
		return ActionBlockSplit
	case route.SemanticIndex:
		return ActionSemanticIndex
	default:
		return ActionSemanticSplit
	}
}

// blockSplit redistributes sl's blocks. Groups must cover every block
// exactly once, in order.
func blockSplit(sl module.Slide, groups [][]int) ([]module.Slide, string, error) {
	if len(groups) < 2 {
		return nil, "block split routing but insufficient groups", nil
	}
	next := 0
	for i, g := range groups {
		if len(g) == 0 {
			return nil, "", fmt.Errorf("%w: group %d is empty", ErrInvalidSuggestion, i)
		}
		for _, idx := range g {
			if idx < 0 || idx >= len(sl.Blocks) {
				return nil, "", fmt.Errorf("%w: block index %d out of range in group %d", ErrInvalidSuggestion, idx, i)
			}
			if idx != next {
				return nil, "", fmt.Errorf("%w: group %d does not continue at block %d", ErrInvalidSuggestion, i, next)
			}
			next++
		}
	}
	if next != len(sl.Blocks) {
		return nil, "", fmt.Errorf("%w: groups cover %d of %d blocks", ErrInvalidSuggestion, next, len(sl.Blocks))
	}

	children := make([]module.Slide, len(groups))
	for i, g := range groups {
		blocks := make([]module.Block, len(g))
		for j, idx := range g {
			blocks[j] = sl.Blocks[idx]
		}
		child, err := sl.Derive(childID(sl.ID, "b", i), module.ContinuationHeader(sl.Header, i), blocks)
		if err != nil {
			return nil, "", err
		}
		children[i] = child
	}
	return children, fmt.Sprintf("split into %d panels", len(children)), nil
}

// semanticSplit writes one child per chunk. Chunks are grouped by source
// paragraph; each group must rebuild its paragraph and pass the audit.
func semanticSplit(sl module.Slide, chunks []reflow.Chunk, sources []string, policy textstat.Policy) ([]module.Slide, string, error) {
	if len(chunks) < 2 {
		return nil, "left unsplit: fewer than 2 chunks", nil
	}

	groups := make([][]reflow.Piece, len(sources))
	positions := make([][]int, len(sources))
	last := -1
	for i, ch := range chunks {
		p := ch.Paragraph
		if p < 0 || p >= len(sources) {
			return nil, "", fmt.Errorf("%w: chunk %d names paragraph %d of %d", ErrInvalidSuggestion, i, p, len(sources))
		}
		if p < last {
			return nil, "", fmt.Errorf("%w: chunk %d goes back to paragraph %d", ErrInvalidSuggestion, i, p)
		}
		if strings.TrimSpace(ch.Content) == "" {
			return nil, "", fmt.Errorf("%w: chunk %d is empty", ErrInvalidSuggestion, i)
		}
		groups[p] = append(groups[p], ch.Piece())
		positions[p] = append(positions[p], i)
		last = p
	}

	var notes []string
	for p, pieces := range groups {
		var joined strings.Builder
		for _, pc := range pieces {
			joined.WriteString(pc.Content)
		}
		if textstat.StripSpace(joined.String()) != textstat.StripSpace(sources[p]) {
			return nil, "", fmt.Errorf("paragraph %d: %w", p, validate.ErrReconstructionMismatch)
		}
		anomalies := reflow.Audit(pieces, policy)
		if bad := reflow.Unexcused(anomalies); len(bad) > 0 {
			return nil, "", fmt.Errorf("%w: paragraph %d chunk %d has %d words (%s)",
				ErrBoundsViolation, p, bad[0].Chunk, bad[0].WordCount, bad[0].Reason)
		}
		for _, a := range anomalies {
			notes = append(notes, fmt.Sprintf("%s %s (%d words)",
				childID(sl.ID, "p", positions[p][a.Chunk]), a.Reason, a.WordCount))
		}
	}

	blocks := distribute(sl, chunks)
	children := make([]module.Slide, len(chunks))
	for i := range chunks {
		child, err := sl.Derive(childID(sl.ID, "p", i), module.ContinuationHeader(sl.Header, i), blocks[i])
		if err != nil {
			return nil, "", err
		}
		children[i] = child
	}
	reason := fmt.Sprintf("split into %d panels", len(children))
	if len(notes) > 0 {
		reason += "; excused: " + strings.Join(notes, ", ")
	}
	return children, reason, nil
}

// distribute builds each child's blocks: its chunk as a paragraph, followed
// by any non-paragraph block that came after the chunk's source paragraph.
// Blocks before the first paragraph go to the first child.
func distribute(sl module.Slide, chunks []reflow.Chunk) [][]module.Block {
	out := make([][]module.Block, len(chunks))
	lastOf := map[int]int{}
	for i, ch := range chunks {
		out[i] = []module.Block{module.NewParagraph(ch.Content)}
		lastOf[ch.Paragraph] = i
	}

	target, seen := 0, -1
	var lead []module.Block
	for _, b := range sl.Blocks {
		if b.IsParagraph() {
			seen++
			if i, ok := lastOf[seen]; ok {
				target = i
			}
			continue
		}
		if seen < 0 {
			lead = append(lead, b)
			continue
		}
		out[target] = append(out[target], b)
	}
	out[0] = append(lead, out[0]...)
	return out
}

func childID(parent, kind string, i int) string {
	return fmt.Sprintf("%s_%s%d", parent, kind, i+1)
}
