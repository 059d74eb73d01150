// Package suggest runs the suggestion pass: it routes every panel, computes
// block groups or reflowed chunks, and reviews engage slides. Nothing is
// applied here; the output is a Suggestions document for package apply.
package suggest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-panelsplit/internal/blocksplit"
	"github.com/alnah/go-panelsplit/internal/logger"
	"github.com/alnah/go-panelsplit/internal/module"
	"github.com/alnah/go-panelsplit/internal/prompt"
	"github.com/alnah/go-panelsplit/internal/reflow"
	"github.com/alnah/go-panelsplit/internal/route"
	"github.com/alnah/go-panelsplit/internal/textstat"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// PanelError attributes a failure to the slide being processed.
type PanelError struct {
	SlideID string
	Err     error
}

func (e *PanelError) Error() string {
	return fmt.Sprintf("slide %s: %v", e.SlideID, e.Err)
}

// Unwrap returns the underlying error.
func (e *PanelError) Unwrap() error { return e.Err }

// Suggester produces Suggestions for a module.
type Suggester struct {
	port        reflow.Caller
	engine      *reflow.Engine
	policy      textstat.Policy
	concurrency int
	log         *logger.Logger
	newRunID    func() string
}

// Option configures a Suggester.
type Option func(*Suggester)

// WithPolicy sets the word windows.
func WithPolicy(p textstat.Policy) Option {
	return func(s *Suggester) {
		s.policy = p.OrDefault()
	}
}

// WithConcurrency sets how many slides are processed at once. Values below 1 mean 1.
func WithConcurrency(n int) Option {
	return func(s *Suggester) {
		s.concurrency = max(n, 1)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Suggester) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRunID replaces the run id generator.
func WithRunID(fn func() string) Option {
	return func(s *Suggester) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// New creates a Suggester that sends model calls through port.
func New(port reflow.Caller, opts ...Option) *Suggester {
	s := &Suggester{
		port:        port,
		policy:      textstat.DefaultPolicy(),
		concurrency: 1,
		log:         logger.Nop(),
		newRunID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = reflow.New(port, reflow.WithPolicy(s.policy), reflow.WithLogger(s.log))
	return s
}

// Suggest builds a record for every slide of m. The first panel failure
// cancels the run and is returned as a *PanelError.
func (s *Suggester) Suggest(ctx context.Context, m *module.Module) (*Suggestions, error) {
	seen := make(map[string]bool, len(m.Slides))
	for _, sl := range m.Slides {
		if seen[sl.ID] {
			return nil, fmt.Errorf("duplicate slide id %q: %w", sl.ID, module.ErrStructuralInput)
		}
		seen[sl.ID] = true
	}

	out := &Suggestions{
		ModuleID: m.Title,
		RunID:    s.newRunID(),
		Slides:   make(map[string]Record, len(m.Slides)),
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sl := range m.Slides {
		g.Go(func() error {
			rec, err := s.suggestSlide(gctx, sl)
			if err != nil {
				return &PanelError{SlideID: sl.ID, Err: err}
			}
			mu.Lock()
			out.Slides[sl.ID] = rec
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Info("suggestion pass complete", "module", m.Title, "run_id", out.RunID, "slides", len(out.Slides))
	return out, nil
}

func (s *Suggester) suggestSlide(ctx context.Context, sl module.Slide) (Record, error) {
	rec := Record{SlideID: sl.ID, Header: sl.Header, Type: sl.Type, Action: ActionKeep}

	switch sl.Type {
	case module.TypeEngage, module.TypeEngage2:
		rec.Routing = route.NoAction
		rec.Reason = "engage slides are never restructured"
		if err := s.reviewEngage(ctx, sl, &rec); err != nil {
			return Record{}, err
		}
		return rec, nil
	}

	c := route.Explain(sl, s.policy)
	rec.Routing = c.Decision
	rec.Reason = c.Reason
	rec.SourceWordCount = c.Words

	switch c.Decision {
	case route.BlockSplit:
		s.suggestBlockSplit(sl, &rec)
	case route.SemanticSplit:
		if err := s.suggestReflow(ctx, sl, []string{sl.ParagraphText()}, &rec); err != nil {
			return Record{}, err
		}
	case route.SemanticIndex:
		if err := s.suggestReflow(ctx, sl, sl.Paragraphs(), &rec); err != nil {
			return Record{}, err
		}
	}
	s.log.Debug("slide routed", "slide_id", sl.ID, "routing", rec.Routing, "action", rec.Action)
	return rec, nil
}

func (s *Suggester) suggestBlockSplit(sl module.Slide, rec *Record) {
	groups := blocksplit.Split(sl.Blocks, s.policy.MaxParagraphsPerGroup)
	if len(groups) < 2 {
		rec.Reason += "; block split yields a single group"
		return
	}
	rec.Action = ActionSplit
	rec.Groups = groups
	rec.Proposal = blocksplit.BuildProposal(sl.Header, blocksplit.Groups(sl.Blocks, groups))
}

// suggestReflow splits each paragraph on its own so no chunk crosses a
// paragraph boundary.
func (s *Suggester) suggestReflow(ctx context.Context, sl module.Slide, paragraphs []string, rec *Record) error {
	engine := s.engine.ForSlide(sl.ID)

	var unsplit []string
	for i, p := range paragraphs {
		res, err := engine.SplitText(ctx, sl.Header, p)
		if err != nil {
			return err
		}
		for _, ch := range res.Chunks {
			ch.Paragraph = i
			rec.Chunks = append(rec.Chunks, ch)
		}
		rec.Reflow = append(rec.Reflow, ParagraphReflow{
			Paragraph: i,
			Strategy:  res.Strategy,
			Reason:    res.Reason,
			Spans:     res.Spans,
			Anomalies: res.Anomalies,
		})
		if res.Strategy == reflow.StrategyUnsplit {
			unsplit = append(unsplit, fmt.Sprintf("paragraph %d left unsplit: %s", i, res.Reason))
		}
	}

	for i := range rec.Chunks {
		rec.Chunks[i].Header = module.ContinuationHeader(sl.Header, i)
	}
	if len(unsplit) > 0 {
		rec.Reason += "; " + strings.Join(unsplit, "; ")
	}
	if len(rec.Chunks) >= 2 {
		rec.Action = ActionSplit
	}
	return nil
}

// reviewEngage asks for item and label reviews where limits are exceeded.
// Rejections are recorded as advisories and never fail the slide.
func (s *Suggester) reviewEngage(ctx context.Context, sl module.Slide, rec *Record) error {
	if sl.Type == module.TypeEngage {
		items := make([]string, len(sl.Items))
		overLimit := false
		for i, it := range sl.Items {
			items[i] = it.Text()
			if textstat.Words(items[i]) > s.policy.EngageSoftLimit {
				overLimit = true
			}
		}
		if overLimit {
			v, err := s.ask(ctx, prompt.EngageReviewPrompt(items, s.policy), rec)
			if err != nil {
				return err
			}
			if v != nil {
				review, verr := validate.EngageItemReview(v)
				if verr != nil {
					rec.Advisories = append(rec.Advisories, "item review rejected: "+validate.ReasonOf(verr))
				} else {
					rec.ItemReview = review
				}
			}
		}
	}

	labelContext := engageLabelContext(sl)
	if labelContext == "" {
		return nil
	}
	v, err := s.ask(ctx, prompt.ButtonLabelsPrompt(labelContext), rec)
	if err != nil {
		return err
	}
	if v != nil {
		labels, verr := validate.ButtonLabelSuggestions(v)
		if verr != nil {
			rec.Advisories = append(rec.Advisories, "label suggestions rejected: "+validate.ReasonOf(verr))
		} else {
			rec.LabelSuggestions = labels
		}
	}
	return nil
}

// ask calls the port; a rejection is recorded and yields a nil value.
func (s *Suggester) ask(ctx context.Context, p string, rec *Record) (map[string]any, error) {
	resp, err := s.port.Call(ctx, p)
	if err != nil {
		return nil, err
	}
	if resp.Rejected {
		rec.Advisories = append(rec.Advisories, "model rejected: "+resp.Reason)
		return nil, nil
	}
	return resp.Value, nil
}

// engageLabelContext returns the text to label when a button label is
// invalid, or "" when every label is fine.
func engageLabelContext(sl module.Slide) string {
	switch sl.Type {
	case module.TypeEngage:
		var lines []string
		for _, it := range sl.Items {
			if textstat.ButtonLabelInvalid(it.ButtonLabel) {
				lines = append(lines, it.Text())
			}
		}
		return strings.Join(lines, "\n")
	case module.TypeEngage2:
		if textstat.ButtonLabelInvalid(sl.ButtonLabel) {
			return strings.Join(sl.Steps, " ")
		}
	}
	return ""
}
