// Package module holds the e-learning module data model: slides, their
// normalized content blocks, and the JSON boundary that reads and writes them.
//
// Input documents are untrusted. Every shape question is answered once, in
// Parse; the rest of the pipeline only sees Slide and Block values.
package module

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Module is an ordered list of slides plus the document they came from.
type Module struct {
	Title  string
	Slides []Slide

	raw   []byte
	keyed bool
}

// New returns a module built in memory.
func New(title string, slides ...Slide) *Module {
	return &Module{Title: title, Slides: slides}
}

// Parse decodes a module document. Slides may be a list or an object keyed by
// slide id; object order is preserved.
func Parse(data []byte) (*Module, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrStructuralInput)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: module must be an object", ErrStructuralInput)
	}

	m := &Module{Title: root.Get("module_title").String(), raw: data}
	slides := root.Get("slides")

	var err error
	switch {
	case slides.IsArray():
		for i, r := range slides.Array() {
			var s Slide
			if s, err = parseSlide(r, ""); err != nil {
				return nil, fmt.Errorf("slide at index %d: %w", i, err)
			}
			m.Slides = append(m.Slides, s)
		}
	case slides.IsObject():
		m.keyed = true
		slides.ForEach(func(key, value gjson.Result) bool {
			var s Slide
			if s, err = parseSlide(value, key.String()); err != nil {
				err = fmt.Errorf("slide %q: %w", key.String(), err)
				return false
			}
			m.Slides = append(m.Slides, s)
			return true
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: module slides must be a list or an object", ErrStructuralInput)
	}
	return m, nil
}

// Load reads and parses a module file.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is user-provided input file
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return m, nil
}

// WithSlides returns a copy of m holding slides instead of its own.
func (m *Module) WithSlides(slides []Slide) *Module {
	out := *m
	out.Slides = slides
	return &out
}

// Slide returns the slide with the given id.
func (m *Module) Slide(id string) (Slide, bool) {
	for _, s := range m.Slides {
		if s.ID == id {
			return s, true
		}
	}
	return Slide{}, false
}

// Encode writes the module back to JSON. Every key of the source document is
// kept; only the slides container is rebuilt from the slides' own bytes.
func (m *Module) Encode() ([]byte, error) {
	var buf bytes.Buffer
	open, end := byte('['), byte(']')
	if m.keyed {
		open, end = '{', '}'
	}
	buf.WriteByte(open)
	for i, s := range m.Slides {
		if i > 0 {
			buf.WriteByte(',')
		}
		if m.keyed {
			key, err := json.Marshal(s.ID)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
		}
		raw := s.raw
		if len(raw) == 0 {
			raw = []byte(`{}`)
		}
		buf.Write(raw)
	}
	buf.WriteByte(end)

	base := m.raw
	if len(base) == 0 {
		title, err := json.Marshal(m.Title)
		if err != nil {
			return nil, err
		}
		base = []byte(`{"module_title":` + string(title) + `}`)
	}
	out, err := sjson.SetRawBytes(base, "slides", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("encode slides: %w", err)
	}
	return out, nil
}
