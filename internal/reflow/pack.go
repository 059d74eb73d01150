package reflow

import (
	"strings"

	"github.com/alnah/go-panelsplit/internal/textstat"
	"github.com/alnah/go-panelsplit/internal/validate"
)

// Anomaly reasons.
const (
	AnomalyOversized  = "above ceiling"
	AnomalyUnderFloor = "below floor"
)

// Anomaly describes a chunk outside the policy word window.
// Excused anomalies are structurally unavoidable and may be applied.
type Anomaly struct {
	Chunk     int    `json:"chunk"`
	WordCount int    `json:"word_count"`
	Reason    string `json:"reason"`
	Excused   bool   `json:"excused"`
}

// Piece is one packed chunk and the number of sentence spans it joins.
type Piece struct {
	Content   string
	Sentences int
}

// Pack greedily groups the sentences described by spans into chunks of at
// most policy.MaxWords words, then folds under-floor chunks into their
// predecessor when the result stays within the ceiling. Every chunk is an
// exact, trimmed substring of text, so the chunks rebuild text verbatim.
// spans must lie within text, as returned by validate.StrictSentenceBoundaries.
func Pack(text string, spans []validate.Span, policy textstat.Policy) []Piece {
	policy = policy.OrDefault()
	runes := []rune(text)
	words := func(r validate.Span) int {
		return textstat.Words(string(runes[r.Start:r.End]))
	}

	type run struct {
		span      validate.Span
		sentences int
	}

	var ranges []run
	for _, s := range spans {
		if strings.TrimSpace(string(runes[s.Start:s.End])) == "" {
			if n := len(ranges); n > 0 {
				ranges[n-1].span.End = s.End
			}
			continue
		}
		if n := len(ranges); n > 0 {
			candidate := validate.Span{Start: ranges[n-1].span.Start, End: s.End}
			if words(candidate) <= policy.MaxWords {
				ranges[n-1].span = candidate
				ranges[n-1].sentences++
				continue
			}
		}
		ranges = append(ranges, run{span: s, sentences: 1})
	}

	merged := make([]run, 0, len(ranges))
	for _, r := range ranges {
		if n := len(merged); n > 0 && words(r.span) < policy.MinWords {
			candidate := validate.Span{Start: merged[n-1].span.Start, End: r.span.End}
			if words(candidate) <= policy.MaxWords {
				merged[n-1].span = candidate
				merged[n-1].sentences += r.sentences
				continue
			}
		}
		merged = append(merged, r)
	}

	out := make([]Piece, len(merged))
	for i, r := range merged {
		out[i] = Piece{
			Content:   strings.TrimSpace(string(runes[r.span.Start:r.span.End])),
			Sentences: r.sentences,
		}
	}
	return out
}

// Audit reports every chunk outside the policy window. An oversized chunk is
// excused when it holds exactly one sentence span. The count comes from the
// packing boundaries, not from punctuation: "2.5 mg" or "e.g." end no
// sentence. An under-floor chunk is excused when neither neighbour could
// absorb it without exceeding the ceiling.
func Audit(pieces []Piece, policy textstat.Policy) []Anomaly {
	policy = policy.OrDefault()

	counts := make([]int, len(pieces))
	for i, p := range pieces {
		counts[i] = textstat.Words(p.Content)
	}

	var out []Anomaly
	for i, wc := range counts {
		switch {
		case wc > policy.MaxWords:
			out = append(out, Anomaly{
				Chunk:     i,
				WordCount: wc,
				Reason:    AnomalyOversized,
				Excused:   pieces[i].Sentences == 1,
			})
		case wc < policy.MinWords:
			prevFits := i > 0 && counts[i-1]+wc <= policy.MaxWords
			nextFits := i+1 < len(counts) && counts[i+1]+wc <= policy.MaxWords
			out = append(out, Anomaly{
				Chunk:     i,
				WordCount: wc,
				Reason:    AnomalyUnderFloor,
				Excused:   !prevFits && !nextFits,
			})
		}
	}
	return out
}

// Unexcused returns the anomalies that may not be applied.
func Unexcused(anomalies []Anomaly) []Anomaly {
	var out []Anomaly
	for _, a := range anomalies {
		if !a.Excused {
			out = append(out, a)
		}
	}
	return out
}
