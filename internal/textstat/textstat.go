// Package textstat counts words and sentences the way the segmentation policy
// measures them, and holds the limits for button labels and engage items.
package textstat

import (
	"regexp"
	"strings"
	"unicode"
)

// Engage item thresholds in words.
const (
	EngageSoftLimit = 50
	EngageHardLimit = 70
)

// MaxLabelWords is the longest acceptable button label.
const MaxLabelWords = 4

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// Words returns the number of whitespace-separated tokens in text.
func Words(text string) int {
	return len(strings.Fields(text))
}

// Sentences returns the number of non-blank segments between runs of
// sentence-ending punctuation.
func Sentences(text string) int {
	n := 0
	for _, part := range sentenceEnd.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}

// NormalizeWhitespace collapses runs of whitespace to a single space and trims the ends.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// SameWords reports whether a and b contain the same whitespace-separated tokens in
// the same order.
func SameWords(a, b string) bool {
	return NormalizeWhitespace(a) == NormalizeWhitespace(b)
}

// StripSpace removes every whitespace rune from text.
func StripSpace(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
}

// ButtonLabelInvalid reports whether a button label is empty, longer than
// MaxLabelWords, or contains punctuation.
func ButtonLabelInvalid(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return true
	}
	if Words(label) > MaxLabelWords {
		return true
	}
	for _, r := range label {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r) && r != '_' {
			return true
		}
	}
	return false
}

// SplitSentences splits whitespace-normalized text after every word that ends
// with '.', '!' or '?'.
func SplitSentences(text string) []string {
	var out, cur []string
	for _, w := range strings.Fields(text) {
		cur = append(cur, w)
		if strings.ContainsRune(".!?", rune(w[len(w)-1])) {
			out = append(out, strings.Join(cur, " "))
			cur = nil
		}
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}
