package textstat

import (
	"errors"
	"fmt"
)

// Default segmentation limits.
const (
	DefaultMinWords              = 30
	DefaultMaxWords              = 70
	DefaultBlockSplitMaxWords    = 140
	DefaultMaxParagraphsPerGroup = 1
	DefaultMaxSentencesPerPanel  = 3
)

// ErrInvalidPolicy indicates inconsistent policy limits.
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy holds the word and sentence windows every component measures against.
type Policy struct {
	MinWords              int `yaml:"min-words"`
	MaxWords              int `yaml:"max-words"`
	BlockSplitMaxWords    int `yaml:"block-split-max-words"`
	MaxParagraphsPerGroup int `yaml:"max-paragraphs-per-group"`
	MaxSentencesPerPanel  int `yaml:"max-sentences-per-panel"`
	EngageSoftLimit       int `yaml:"engage-soft-limit"`
	EngageHardLimit       int `yaml:"engage-hard-limit"`
}

// DefaultPolicy returns the 30-70 word window used in production.
func DefaultPolicy() Policy {
	return Policy{
		MinWords:              DefaultMinWords,
		MaxWords:              DefaultMaxWords,
		BlockSplitMaxWords:    DefaultBlockSplitMaxWords,
		MaxParagraphsPerGroup: DefaultMaxParagraphsPerGroup,
		MaxSentencesPerPanel:  DefaultMaxSentencesPerPanel,
		EngageSoftLimit:       EngageSoftLimit,
		EngageHardLimit:       EngageHardLimit,
	}
}

// OrDefault fills zero fields from DefaultPolicy.
func (p Policy) OrDefault() Policy {
	d := DefaultPolicy()
	if p.MinWords == 0 {
		p.MinWords = d.MinWords
	}
	if p.MaxWords == 0 {
		p.MaxWords = d.MaxWords
	}
	if p.BlockSplitMaxWords == 0 {
		p.BlockSplitMaxWords = d.BlockSplitMaxWords
	}
	if p.MaxParagraphsPerGroup == 0 {
		p.MaxParagraphsPerGroup = d.MaxParagraphsPerGroup
	}
	if p.MaxSentencesPerPanel == 0 {
		p.MaxSentencesPerPanel = d.MaxSentencesPerPanel
	}
	if p.EngageSoftLimit == 0 {
		p.EngageSoftLimit = d.EngageSoftLimit
	}
	if p.EngageHardLimit == 0 {
		p.EngageHardLimit = d.EngageHardLimit
	}
	return p
}

// Validate checks that the limits are positive and ordered.
func (p Policy) Validate() error {
	switch {
	case p.MinWords <= 0 || p.MaxWords <= 0:
		return fmt.Errorf("%w: word limits must be positive", ErrInvalidPolicy)
	case p.MinWords > p.MaxWords:
		return fmt.Errorf("%w: min-words %d exceeds max-words %d", ErrInvalidPolicy, p.MinWords, p.MaxWords)
	case p.BlockSplitMaxWords < p.MaxWords:
		return fmt.Errorf("%w: block-split-max-words %d below max-words %d",
			ErrInvalidPolicy, p.BlockSplitMaxWords, p.MaxWords)
	case p.MaxParagraphsPerGroup < 1:
		return fmt.Errorf("%w: max-paragraphs-per-group must be at least 1", ErrInvalidPolicy)
	case p.MaxSentencesPerPanel < 1:
		return fmt.Errorf("%w: max-sentences-per-panel must be at least 1", ErrInvalidPolicy)
	case p.EngageSoftLimit > p.EngageHardLimit:
		return fmt.Errorf("%w: engage-soft-limit %d exceeds engage-hard-limit %d",
			ErrInvalidPolicy, p.EngageSoftLimit, p.EngageHardLimit)
	}
	return nil
}

// WithinWindow reports whether n lies in [MinWords, MaxWords].
func (p Policy) WithinWindow(n int) bool {
	return n >= p.MinWords && n <= p.MaxWords
}
