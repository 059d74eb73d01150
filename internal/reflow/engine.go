// Package reflow splits overlong panel text into word-bounded chunks without
// changing a single word.
//
// The engine first asks the model for a direct split and accepts it only when
// every slide is inside the word window and the words are unchanged. Otherwise
// it asks for sentence start offsets, checks that slicing at them rebuilds the
// text exactly, and packs the sentences itself. When neither works the text is
// left unsplit and the reason is recorded.
package reflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/alnah/go-panelsplit/internal/completion"
	"github.com/alnah/go-panelsplit/internal/logger"
	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/prompt"
	"github.com/alnah/go-panelsplit/internal/textstat"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// Strategy names the tier that produced a Result.
type Strategy string

// Strategies, from cheapest to most conservative.
const (
	StrategyUnchanged  Strategy = "unchanged"
	StrategyDirect     Strategy = "direct"
	StrategyBoundaries Strategy = "boundaries"
	StrategyUnsplit    Strategy = "unsplit"
)

// Chunk is one word-bounded piece of a panel's text.
// Paragraph is the index of the source paragraph the chunk came from.
// Sentences is the number of sentence spans packed into the chunk, or zero
// when the chunk did not come from sentence boundaries.
type Chunk struct {
	Header    string `json:"header"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
	Paragraph int    `json:"paragraph"`
	Sentences int    `json:"sentences,omitempty"`
}

// Result is the outcome of SplitText.
type Result struct {
	Chunks    []Chunk         `json:"chunks"`
	Strategy  Strategy        `json:"strategy"`
	Spans     []validate.Span `json:"spans,omitempty"`
	Anomalies []Anomaly       `json:"anomalies,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}

// Caller sends a prompt and returns a decoded JSON object or a rejection.
// *completion.Port implements this.
type Caller interface {
	Call(ctx context.Context, prompt string) (completion.Response, error)
}

// Compile-time interface compliance check.
var _ Caller = (*completion.Port)(nil)

// Engine runs the split tiers against one completion port.
type Engine struct {
	port   Caller
	policy textstat.Policy
	log    *logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithPolicy sets the word window.
func WithPolicy(p textstat.Policy) Option {
	return func(e *Engine) {
		e.policy = p.OrDefault()
	}
}

// WithLogger sets the logger for fallbacks and anomalies.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine over port.
func New(port Caller, opts ...Option) *Engine {
	e := &Engine{
		port:   port,
		policy: textstat.DefaultPolicy(),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ForSlide returns a copy of e whose log entries carry the slide id.
func (e *Engine) ForSlide(id string) *Engine {
	c := *e
	c.log = e.log.With("slide_id", id)
	return &c
}

// Policy returns the word window in use.
func (e *Engine) Policy() textstat.Policy { return e.policy }

// SplitText splits text into chunks. Text within the ceiling comes back as a
// single unchanged chunk. The only error is a completion failure that
// survived retries; every model problem ends in a fallback instead.
func (e *Engine) SplitText(ctx context.Context, header, text string) (Result, error) {
	text = strings.TrimSpace(text)
	wc := textstat.Words(text)
	if wc == 0 {
		return Result{Strategy: StrategyUnchanged, Reason: "empty text"}, nil
	}
	if wc <= e.policy.MaxWords {
		return Result{
			Chunks:   []Chunk{{Header: header, Content: text, WordCount: wc}},
			Strategy: StrategyUnchanged,
		}, nil
	}

	res, reason, err := e.direct(ctx, header, text)
	if err != nil || reason == "" {
		return res, err
	}
	e.log.Info("direct split discarded", "strategy", StrategyDirect, "reason", reason)

	res, reason, err = e.boundaries(ctx, header, text)
	if err != nil || reason == "" {
		return res, err
	}
	e.log.Warn("leaving text unsplit", "strategy", StrategyUnsplit, "reason", reason, "word_count", wc)

	return Result{
		Chunks:   []Chunk{{Header: header, Content: text, WordCount: wc}},
		Strategy: StrategyUnsplit,
		Reason:   reason,
	}, nil
}

// direct asks for a complete split. A non-empty reason means fall through.
func (e *Engine) direct(ctx context.Context, header, text string) (Result, string, error) {
	resp, err := e.port.Call(ctx, prompt.PanelSplitPrompt(header, text, e.policy))
	if err != nil {
		return Result{}, "", fmt.Errorf("direct split: %w", err)
	}
	if resp.Rejected {
		return Result{}, "direct split rejected: " + resp.Reason, nil
	}
	panels, err := validate.PanelSplit(resp.Value, text, e.policy)
	if err != nil {
		return Result{}, "direct split invalid: " + validate.ReasonOf(err), nil
	}

	pieces := make([]Piece, len(panels))
	for i, p := range panels {
		pieces[i] = Piece{Content: strings.TrimSpace(p.Content)}
	}
	return Result{Chunks: chunks(header, pieces), Strategy: StrategyDirect}, "", nil
}

// boundaries asks for sentence offsets and packs the sentences locally.
func (e *Engine) boundaries(ctx context.Context, header, text string) (Result, string, error) {
	resp, err := e.port.Call(ctx, prompt.StrictBoundariesPrompt(text))
	if err != nil {
		return Result{}, "", fmt.Errorf("sentence boundaries: %w", err)
	}
	if resp.Rejected {
		return Result{}, "sentence boundaries rejected: " + resp.Reason, nil
	}
	spans, err := validate.StrictSentenceBoundaries(resp.Value, text)
	if err != nil {
		return Result{}, "sentence boundaries invalid: " + validate.ReasonOf(err), nil
	}

	pieces := Pack(text, spans, e.policy)
	if len(pieces) < 2 {
		return Result{}, "sentence boundaries yield a single chunk", nil
	}
	anomalies := Audit(pieces, e.policy)
	if bad := Unexcused(anomalies); len(bad) > 0 {
		return Result{}, fmt.Sprintf("chunk %d has %d words (%s)", bad[0].Chunk, bad[0].WordCount, bad[0].Reason), nil
	}
	for _, a := range anomalies {
		e.log.Warn("chunk outside word window", "strategy", StrategyBoundaries,
			"chunk", a.Chunk, "word_count", a.WordCount, "reason", a.Reason)
	}

	return Result{
		Chunks:    chunks(header, pieces),
		Strategy:  StrategyBoundaries,
		Spans:     spans,
		Anomalies: anomalies,
	}, "", nil
}

func chunks(header string, pieces []Piece) []Chunk {
	out := make([]Chunk, len(pieces))
	for i, p := range pieces {
		out[i] = Chunk{
			Header:    module.ContinuationHeader(header, i),
			Content:   p.Content,
			WordCount: textstat.Words(p.Content),
			Sentences: p.Sentences,
		}
	}
	return out
}

// Piece returns the chunk's content and sentence count for Audit.
func (c Chunk) Piece() Piece {
	return Piece{Content: c.Content, Sentences: c.Sentences}
}
