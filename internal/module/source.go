package module

import (
	"fmt"
	"strings"
)

// ExtractSourceText collects the instructional text of slides[start..end]
// (inclusive) for quiz generation: panel paragraphs, engage intros and engage
// item content. Bullets, buttons and images are excluded.
func ExtractSourceText(slides []Slide, start, end int) ([]string, error) {
	if start < 0 || end >= len(slides) || start > end {
		return nil, fmt.Errorf("%w: [%d, %d] for %d slides", ErrInvalidWindow, start, end, len(slides))
	}

	var out []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	for _, s := range slides[start : end+1] {
		switch s.Type {
		case TypePanel:
			for _, p := range s.Paragraphs() {
				add(p)
			}
		case TypeEngage:
			for _, line := range s.Intro {
				add(line)
			}
			for _, item := range s.Items {
				for _, line := range item.Content {
					add(line)
				}
			}
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("slides %d..%d: %w", start, end, ErrEmptySource)
	}
	return out, nil
}
