package module

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Type is a slide's type tag.
type Type string

// Slide types the pipeline knows about. Any other tag passes through untouched.
const (
	TypePanel   Type = "panel"
	TypeEngage  Type = "engage"
	TypeEngage2 Type = "engage2"
)

// Shape records how a slide's content was encoded so derived slides are written back
// the same way.
type Shape int

// Content shapes.
const (
	ShapeNone   Shape = iota // no content key, or null
	ShapeBlocks              // {"blocks": [...]}
	ShapeList                // [{"type": ...}, ...]
	ShapeLegacy              // ["text", "• a\n• b", ...]
	ShapeText                // "text"
)

// String returns the shape name used in diagnostics.
func (s Shape) String() string {
	switch s {
	case ShapeBlocks:
		return "blocks"
	case ShapeList:
		return "list"
	case ShapeLegacy:
		return "legacy"
	case ShapeText:
		return "text"
	default:
		return "none"
	}
}

// EngageItem is one item of an engage slide.
type EngageItem struct {
	Content     []string
	ButtonLabel string
}

// Text joins the item's content lines with spaces.
func (it EngageItem) Text() string {
	return strings.Join(it.Content, " ")
}

// Slide is one unit of a module. Content is normalized into Blocks at decode
// time; the original JSON object is retained so unchanged slides are written
// back exactly as read.
type Slide struct {
	ID     string
	Type   Type
	Header string
	Blocks []Block
	Shape  Shape

	// Engage fields, read-only.
	Intro       []string
	Items       []EngageItem
	ButtonLabel string
	Steps       []string

	raw        []byte
	idPath     string
	headerPath string
}

// Raw returns the slide's JSON object.
func (s Slide) Raw() []byte { return s.raw }

// IsPanel reports whether the slide is a content panel.
func (s Slide) IsPanel() bool { return s.Type == TypePanel }

// Paragraphs returns the text of every paragraph block, in order.
func (s Slide) Paragraphs() []string {
	var out []string
	for _, b := range s.Blocks {
		if b.IsParagraph() {
			out = append(out, b.Text)
		}
	}
	return out
}

// ParagraphText joins all paragraph text with single spaces. Bullets are excluded.
func (s Slide) ParagraphText() string {
	var parts []string
	for _, p := range s.Paragraphs() {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// HasBullets reports whether any block is a bullet list.
func (s Slide) HasBullets() bool {
	for _, b := range s.Blocks {
		if b.IsBullets() {
			return true
		}
	}
	return false
}

// Derive returns a child slide that copies every field of s and overrides the
// id, header and content. Content is encoded in the parent's shape.
func (s Slide) Derive(id, header string, blocks []Block) (Slide, error) {
	out := s.raw
	if len(out) == 0 {
		out = []byte(`{}`)
	}
	var err error
	if out, err = sjson.SetBytes(out, s.idPath, id); err != nil {
		return Slide{}, fmt.Errorf("set id: %w", err)
	}
	if out, err = sjson.SetBytes(out, s.headerPath, header); err != nil {
		return Slide{}, fmt.Errorf("set header: %w", err)
	}
	content, err := s.encodeContent(blocks)
	if err != nil {
		return Slide{}, err
	}
	if out, err = sjson.SetRawBytes(out, "content", content); err != nil {
		return Slide{}, fmt.Errorf("set content: %w", err)
	}
	return parseSlide(gjson.ParseBytes(out), "")
}

func (s Slide) encodeContent(blocks []Block) ([]byte, error) {
	switch s.Shape {
	case ShapeLegacy:
		lines := make([]string, len(blocks))
		for i, b := range blocks {
			lines[i] = b.legacyString()
		}
		return json.Marshal(lines)
	case ShapeText:
		lines := make([]string, len(blocks))
		for i, b := range blocks {
			lines[i] = b.legacyString()
		}
		return json.Marshal(strings.Join(lines, "\n\n"))
	case ShapeList:
		return marshalBlocks(blocks)
	default:
		list, err := marshalBlocks(blocks)
		if err != nil {
			return nil, err
		}
		base := []byte(`{}`)
		if c := gjson.GetBytes(s.raw, "content"); c.IsObject() {
			base = []byte(c.Raw)
		}
		return sjson.SetRawBytes(base, "blocks", list)
	}
}

func marshalBlocks(blocks []Block) ([]byte, error) {
	if blocks == nil {
		blocks = []Block{}
	}
	return json.Marshal(blocks)
}

// parseSlide normalizes one slide object. fallbackID is used when the object
// carries no id of its own (slides keyed by id).
func parseSlide(r gjson.Result, fallbackID string) (Slide, error) {
	if !r.IsObject() {
		return Slide{}, fmt.Errorf("%w: slide must be an object", ErrStructuralInput)
	}
	s := Slide{raw: []byte(r.Raw), idPath: "id", headerPath: "header"}

	switch {
	case r.Get("id").Str != "":
		s.ID = r.Get("id").Str
	case r.Get("meta.id").Str != "":
		s.ID, s.idPath = r.Get("meta.id").Str, "meta.id"
	default:
		s.ID = fallbackID
	}
	if s.ID == "" {
		return Slide{}, fmt.Errorf("%w: slide missing both meta.id and id", ErrStructuralInput)
	}

	if h := r.Get("meta.header"); h.Str != "" {
		s.Header, s.headerPath = h.Str, "meta.header"
	} else {
		s.Header = r.Get("header").String()
	}

	s.Type = Type(strings.ToLower(firstString(r, "meta.type", "type", "slide_type")))
	if s.Type == "engage1" {
		s.Type = TypeEngage
	}

	blocks, shape, err := decodeContent(r.Get("content"))
	if err != nil {
		if s.IsPanel() {
			return Slide{}, fmt.Errorf("slide %s: %w", s.ID, err)
		}
		blocks, shape = nil, ShapeNone
	}
	s.Blocks, s.Shape = blocks, shape

	s.Intro = stringList(r.Get("intro.content"))
	for _, item := range r.Get("items").Array() {
		s.Items = append(s.Items, EngageItem{
			Content:     stringList(item.Get("content")),
			ButtonLabel: item.Get("button_label").String(),
		})
	}
	s.ButtonLabel = r.Get("button.label").String()
	s.Steps = stringList(r.Get("steps"))
	return s, nil
}

// decodeContent is the single place where the content union is resolved.
func decodeContent(c gjson.Result) ([]Block, Shape, error) {
	switch {
	case !c.Exists() || c.Type == gjson.Null:
		return nil, ShapeNone, nil
	case c.Type == gjson.String:
		return []Block{decodeLegacy(c.Str)}, ShapeText, nil
	case c.IsObject():
		list := c.Get("blocks")
		if list.Exists() && !list.IsArray() {
			return nil, ShapeNone, fmt.Errorf("%w: content.blocks must be a list", ErrStructuralInput)
		}
		blocks, err := decodeBlockList(list.Array())
		return blocks, ShapeBlocks, err
	case c.IsArray():
		elems := c.Array()
		if len(elems) > 0 && elems[0].Type == gjson.String {
			blocks := make([]Block, 0, len(elems))
			for _, e := range elems {
				if e.Type != gjson.String {
					return nil, ShapeNone, fmt.Errorf("%w: mixed legacy and block content", ErrStructuralInput)
				}
				blocks = append(blocks, decodeLegacy(e.Str))
			}
			return blocks, ShapeLegacy, nil
		}
		blocks, err := decodeBlockList(elems)
		return blocks, ShapeList, err
	default:
		return nil, ShapeNone, fmt.Errorf("%w: content must be a list, an object or a string, got %s",
			ErrStructuralInput, c.Type)
	}
}

func decodeBlockList(elems []gjson.Result) ([]Block, error) {
	blocks := make([]Block, 0, len(elems))
	for i, e := range elems {
		b, err := decodeBlock(e)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := r.Get(p); v.Str != "" {
			return v.Str
		}
	}
	return ""
}

// stringList reads a list of strings, or a single string as a one-element list.
func stringList(r gjson.Result) []string {
	if r.Type == gjson.String {
		return []string{r.Str}
	}
	var out []string
	for _, e := range r.Array() {
		if e.Type == gjson.String {
			out = append(out, e.Str)
		}
	}
	return out
}

// NewSlide builds a slide in memory with {"blocks": [...]} content.
func NewSlide(id string, typ Type, header string, blocks ...Block) (Slide, error) {
	raw, err := sjson.SetBytes([]byte(`{}`), "id", id)
	if err != nil {
		return Slide{}, err
	}
	if raw, err = sjson.SetBytes(raw, "type", string(typ)); err != nil {
		return Slide{}, err
	}
	base := Slide{raw: raw, idPath: "id", headerPath: "header", Shape: ShapeBlocks}
	return base.Derive(id, header, blocks)
}

// MustNewSlide is like NewSlide but panics on error.
func MustNewSlide(id string, typ Type, header string, blocks ...Block) Slide {
	s, err := NewSlide(id, typ, header, blocks...)
	if err != nil {
		panic(err)
	}
	return s
}

// ContinuationHeader returns the header for the i-th (0-based) slide derived
// from a slide titled header.
func ContinuationHeader(header string, i int) string {
	if i == 0 {
		return header
	}
	return strings.TrimSpace(header + " (continued)")
}
