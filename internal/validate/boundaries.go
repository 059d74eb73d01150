package validate

// Span is a half-open range of rune offsets into a source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SpansFromIndexes turns sentence start offsets into spans. The last span runs
// to the end of text. Indexes are assumed sorted and in range.
func SpansFromIndexes(text string, indexes []int) []Span {
	n := len([]rune(text))
	spans := make([]Span, len(indexes))
	for i, start := range indexes {
		end := n
		if i+1 < len(indexes) {
			end = indexes[i+1]
		}
		spans[i] = Span{Start: start, End: end}
	}
	return spans
}

// Slice returns the text covered by each span.
func Slice(text string, spans []Span) []string {
	runes := []rune(text)
	out := make([]string, len(spans))
	for i, s := range spans {
		out[i] = string(runes[s.Start:s.End])
	}
	return out
}

// Reconstruct concatenates the text covered by spans.
func Reconstruct(text string, spans []Span) string {
	var b []rune
	runes := []rune(text)
	for _, s := range spans {
		b = append(b, runes[s.Start:s.End]...)
	}
	return string(b)
}

// SentenceBoundaries validates a {"sentence_boundaries": {...}} response: the
// action must be "reflow" and every index an integer strictly inside text.
// At most MaxBoundaryIndexes split points are allowed.
func SentenceBoundaries(v any, text string) ([]int, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, reject("sentence_boundaries must be object")
	}
	sb, ok := asObject(obj["sentence_boundaries"])
	if !ok {
		return nil, reject("missing sentence_boundaries object")
	}
	if sb["action"] != "reflow" {
		return nil, reject("sentence_boundaries.action must be 'reflow'")
	}
	list, ok := asList(sb["indexes"])
	if !ok {
		return nil, reject("sentence_boundaries.indexes must be list")
	}

	n := len([]rune(text))
	indexes := make([]int, 0, len(list))
	for _, e := range list {
		idx, ok := asInt(e)
		if !ok {
			return nil, reject("sentence boundary index must be integer")
		}
		if idx <= 0 || idx >= n {
			return nil, reject("sentence boundary index out of range")
		}
		indexes = append(indexes, idx)
	}
	if len(indexes) > MaxBoundaryIndexes {
		return nil, reject("maximum of %d sentences allowed", MaxBoundaryIndexes+1)
	}
	if err := safetyOf(obj); err != nil {
		return nil, err
	}
	return indexes, nil
}

// MaxBoundaryIndexes bounds a sentence_boundaries answer to three sentences.
const MaxBoundaryIndexes = 2

// StrictSentenceBoundaries validates a {"sentence_reflow": {...}} response and
// returns the sentence spans it describes.
//
// The model may answer with start offsets ("indexes": strictly increasing,
// first 0, all inside text) or explicit ranges ("spans": [[start, end], ...]).
// Either way the slices must concatenate back to text exactly; offsets count
// runes. The safety block is mandatory.
func StrictSentenceBoundaries(v any, text string) ([]Span, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, reject("strict_sentence_boundaries must be an object")
	}
	reflow, ok := asObject(obj["sentence_reflow"])
	if !ok {
		return nil, reject("missing sentence_reflow object")
	}
	if reflow["action"] != "reflow" {
		return nil, reject("sentence_reflow.action must be 'reflow'")
	}

	var (
		spans []Span
		err   error
	)
	if raw, ok := reflow["spans"]; ok && reflow["indexes"] == nil {
		spans, err = parseSpans(raw, text)
	} else {
		spans, err = parseIndexes(reflow["indexes"], text)
	}
	if err != nil {
		return nil, err
	}

	if Reconstruct(text, spans) != text {
		return nil, mismatch()
	}
	if err := safetyOf(obj); err != nil {
		return nil, err
	}
	return spans, nil
}

func parseIndexes(v any, text string) ([]Span, error) {
	list, ok := asList(v)
	if !ok || len(list) == 0 {
		return nil, reject("indexes must be a non-empty list")
	}
	n := len([]rune(text))
	indexes := make([]int, 0, len(list))
	for _, e := range list {
		idx, ok := asInt(e)
		if !ok {
			return nil, reject("indexes must be integers")
		}
		if len(indexes) > 0 && idx <= indexes[len(indexes)-1] {
			return nil, reject("indexes must be strictly increasing")
		}
		indexes = append(indexes, idx)
	}
	if indexes[0] != 0 {
		return nil, reject("first index must be 0")
	}
	if indexes[len(indexes)-1] >= n {
		return nil, reject("index out of bounds")
	}
	return SpansFromIndexes(text, indexes), nil
}

func parseSpans(v any, text string) ([]Span, error) {
	list, ok := asList(v)
	if !ok || len(list) == 0 {
		return nil, reject("spans must be a non-empty list")
	}
	n := len([]rune(text))
	spans := make([]Span, 0, len(list))
	for i, e := range list {
		pair, ok := asList(e)
		if !ok || len(pair) != 2 {
			return nil, reject("spans[%d] must be [start, end]", i)
		}
		start, ok1 := asInt(pair[0])
		end, ok2 := asInt(pair[1])
		if !ok1 || !ok2 {
			return nil, reject("spans[%d] must hold integers", i)
		}
		if start < 0 || end > n || start >= end {
			return nil, reject("spans[%d] out of bounds", i)
		}
		if len(spans) > 0 && start < spans[len(spans)-1].End {
			return nil, reject("spans[%d] overlaps the previous span", i)
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans, nil
}
