package validate

import (
	"regexp"
	"strings"

	"github.com/alnah/go-panelsplit/internal/textstat"
)

// MinShapedGroupWords is the shortest plausible sentence display block.
const MinShapedGroupWords = 5

var wordToken = regexp.MustCompile(`\b\w+\b`)

// SentenceBlock is a validated group of one or two verbatim sentences.
type SentenceBlock struct {
	Sentences []string `json:"sentences"`
	WordCount int      `json:"word_count"`
}

// SentenceShaping validates a {"sentence_shaping": {"groups": [...]}} response.
// Each group holds one or two sentences copied verbatim from text, and all
// groups together must reproduce text after whitespace normalization. A
// response without groups yields a single block of text's own sentences.
func SentenceShaping(v any, text string) ([]SentenceBlock, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, reject("sentence shaping output must be a JSON object")
	}
	shaping, ok := asObject(obj["sentence_shaping"])
	if !ok {
		return nil, reject("missing 'sentence_shaping' object")
	}

	source := textstat.NormalizeWhitespace(text)
	groups, _ := asList(shaping["groups"])
	if len(groups) == 0 {
		return []SentenceBlock{{
			Sentences: textstat.SplitSentences(source),
			WordCount: tokenCount(source),
		}}, nil
	}

	var used []string
	out := make([]SentenceBlock, 0, len(groups))
	for i, g := range groups {
		group, ok := asObject(g)
		if !ok {
			return nil, reject("group %d must be an object", i+1)
		}
		sentences, ok := asList(group["sentences"])
		if !ok {
			return nil, reject("group %d missing sentences list", i+1)
		}
		if len(sentences) < 1 || len(sentences) > 2 {
			return nil, reject("group %d has %d sentences (must be 1-2)", i+1, len(sentences))
		}

		cleaned := make([]string, 0, len(sentences))
		for _, s := range sentences {
			str, ok := nonEmpty(s)
			if !ok {
				return nil, reject("invalid sentence in group %d", i+1)
			}
			str = textstat.NormalizeWhitespace(str)
			if !strings.Contains(source, str) {
				return nil, reject("sentence not found verbatim in source text: %s", str)
			}
			cleaned = append(cleaned, str)
			used = append(used, str)
		}

		wc := tokenCount(strings.Join(cleaned, " "))
		if wc < MinShapedGroupWords {
			return nil, reject("group %d is implausibly short (%d words)", i+1, wc)
		}
		out = append(out, SentenceBlock{Sentences: cleaned, WordCount: wc})
	}

	if textstat.NormalizeWhitespace(strings.Join(used, " ")) != source {
		return nil, mismatch()
	}
	return out, nil
}

func tokenCount(text string) int {
	return len(wordToken.FindAllString(text, -1))
}
