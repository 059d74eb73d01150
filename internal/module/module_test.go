package module_test

// Coverage Notes:
// - Parse is the only place content shapes are resolved; tests cover every shape.
// - Encode of an untouched module is byte-identical to compact input.
// - Derive is checked for field preservation and shape fidelity.

import (
	"errors"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/alnah/go-panelsplit/internal/module"
)

// ---------------------------------------------------------------------------
// TestParse_ContentShapes - tagged union normalization at the boundary
// ---------------------------------------------------------------------------

func TestParse_ContentShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		wantShape module.Shape
		wantKinds []module.BlockKind
	}{
		{
			name:      "blocks object",
			content:   `{"blocks":[{"type":"paragraph","text":"a b"},{"type":"bullets","items":["x","y"]}]}`,
			wantShape: module.ShapeBlocks,
			wantKinds: []module.BlockKind{module.KindParagraph, module.KindBullets},
		},
		{
			name:      "list of block objects",
			content:   `[{"type":"paragraph","text":"a"},{"type":"image","src":"x.png"}]`,
			wantShape: module.ShapeList,
			wantKinds: []module.BlockKind{module.KindParagraph, module.KindUnknown},
		},
		{
			name:      "legacy strings",
			content:   `["plain paragraph","• one\n• two","- dash\nnot a bullet"]`,
			wantShape: module.ShapeLegacy,
			wantKinds: []module.BlockKind{module.KindParagraph, module.KindBullets, module.KindParagraph},
		},
		{
			name:      "single string",
			content:   `"just text"`,
			wantShape: module.ShapeText,
			wantKinds: []module.BlockKind{module.KindParagraph},
		},
		{
			name:      "null",
			content:   `null`,
			wantShape: module.ShapeNone,
		},
		{
			name:      "empty list",
			content:   `[]`,
			wantShape: module.ShapeList,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := `{"slides":[{"id":"s1","type":"panel","header":"H","content":` + tt.content + `}]}`
			m, err := module.Parse([]byte(doc))
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			s := m.Slides[0]
			if s.Shape != tt.wantShape {
				t.Errorf("shape = %v, want %v", s.Shape, tt.wantShape)
			}
			if len(s.Blocks) != len(tt.wantKinds) {
				t.Fatalf("got %d blocks, want %d", len(s.Blocks), len(tt.wantKinds))
			}
			for i, k := range tt.wantKinds {
				if s.Blocks[i].Kind != k {
					t.Errorf("block[%d] kind = %s, want %s", i, s.Blocks[i].Kind, k)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestParse_StructuralErrors - upstream contract violations
// ---------------------------------------------------------------------------

func TestParse_StructuralErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"slides":`},
		{"not an object", `[]`},
		{"slides scalar", `{"slides":3}`},
		{"missing id", `{"slides":[{"type":"panel"}]}`},
		{"panel content number", `{"slides":[{"id":"a","type":"panel","content":42}]}`},
		{"panel mixed legacy", `{"slides":[{"id":"a","type":"panel","content":["x",{"type":"paragraph"}]}]}`},
		{"panel blocks not list", `{"slides":[{"id":"a","type":"panel","content":{"blocks":"x"}}]}`},
		{"paragraph text number", `{"slides":[{"id":"a","type":"panel","content":[{"type":"paragraph","text":1}]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := module.Parse([]byte(tt.doc))
			if !errors.Is(err, module.ErrStructuralInput) {
				t.Errorf("Parse() error = %v, want ErrStructuralInput", err)
			}
		})
	}
}

func TestParse_NonPanelContentIgnored(t *testing.T) {
	t.Parallel()

	m, err := module.Parse([]byte(`{"slides":[{"id":"e","type":"engage","content":42}]}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Slides[0].Shape != module.ShapeNone {
		t.Errorf("shape = %v, want none", m.Slides[0].Shape)
	}
}

// ---------------------------------------------------------------------------
// TestParse_SlideFields - ids, headers and types from meta or top level
// ---------------------------------------------------------------------------

func TestParse_SlideFields(t *testing.T) {
	t.Parallel()

	doc := `{"module_title":"Child Health","slides":{
		"k1":{"type":"Panel","header":"One"},
		"k2":{"meta":{"id":"m2","type":"engage1","header":"Two"}},
		"k3":{"slide_type":"engage2","button":{"label":"Go"},"steps":["a","b"]}
	}}`
	m, err := module.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Title != "Child Health" {
		t.Errorf("title = %q", m.Title)
	}

	want := []struct {
		id     string
		typ    module.Type
		header string
	}{
		{"k1", module.TypePanel, "One"},
		{"m2", module.TypeEngage, "Two"},
		{"k3", module.TypeEngage2, ""},
	}
	for i, w := range want {
		s := m.Slides[i]
		if s.ID != w.id || s.Type != w.typ || s.Header != w.header {
			t.Errorf("slide[%d] = (%q, %q, %q), want (%q, %q, %q)",
				i, s.ID, s.Type, s.Header, w.id, w.typ, w.header)
		}
	}
	if m.Slides[2].ButtonLabel != "Go" || len(m.Slides[2].Steps) != 2 {
		t.Errorf("engage2 fields = %q %v", m.Slides[2].ButtonLabel, m.Slides[2].Steps)
	}
}

// ---------------------------------------------------------------------------
// TestEncode_Passthrough - untouched modules round-trip byte for byte
// ---------------------------------------------------------------------------

func TestEncode_Passthrough(t *testing.T) {
	t.Parallel()

	docs := []string{
		`{"module_title":"M","version":2,"slides":[{"id":"a","type":"panel","header":"H","content":{"blocks":[{"type":"paragraph","text":"x y","style":"lead"}]},"notes":"keep"},{"id":"b","type":"engage","items":[]}],"tail":true}`,
		`{"slides":{"a":{"type":"panel","content":["one"]},"b":{"type":"engage2"}}}`,
	}

	for _, doc := range docs {
		m, err := module.Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		got, err := m.Encode()
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		if string(got) != doc {
			t.Errorf("Encode() =\n%s\nwant\n%s", got, doc)
		}
	}
}

// ---------------------------------------------------------------------------
// TestDerive - children copy every field and keep the content shape
// ---------------------------------------------------------------------------

func TestDerive(t *testing.T) {
	t.Parallel()

	t.Run("blocks shape keeps block bytes and extra fields", func(t *testing.T) {
		t.Parallel()

		doc := `{"slides":[{"id":"p","type":"panel","header":"H","image":"i.png","content":{"layout":"two","blocks":[{"type":"paragraph","text":"a","style":"lead"},{"type":"bullets","items":["x"]}]}}]}`
		m, err := module.Parse([]byte(doc))
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		parent := m.Slides[0]

		child, err := parent.Derive("p_b2", "H (continued)", parent.Blocks[1:])
		if err != nil {
			t.Fatalf("Derive() error: %v", err)
		}
		if child.ID != "p_b2" || child.Header != "H (continued)" {
			t.Errorf("child = (%q, %q)", child.ID, child.Header)
		}
		raw := gjson.ParseBytes(child.Raw())
		if raw.Get("image").String() != "i.png" || raw.Get("content.layout").String() != "two" {
			t.Errorf("extra fields lost: %s", child.Raw())
		}
		if got := raw.Get("content.blocks").Raw; got != `[{"type":"bullets","items":["x"]}]` {
			t.Errorf("blocks = %s", got)
		}

		first, err := parent.Derive("p_b1", "H", parent.Blocks[:1])
		if err != nil {
			t.Fatalf("Derive() error: %v", err)
		}
		if got := gjson.GetBytes(first.Raw(), "content.blocks.0.style").String(); got != "lead" {
			t.Errorf("paragraph element not re-emitted verbatim: %s", first.Raw())
		}
	})

	t.Run("legacy shape stays legacy", func(t *testing.T) {
		t.Parallel()

		m, err := module.Parse([]byte(`{"slides":[{"id":"p","type":"panel","content":["a b c"]}]}`))
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		child, err := m.Slides[0].Derive("p_p1", "", []module.Block{module.NewParagraph("new chunk")})
		if err != nil {
			t.Fatalf("Derive() error: %v", err)
		}
		if got := gjson.GetBytes(child.Raw(), "content").Raw; got != `["new chunk"]` {
			t.Errorf("content = %s", got)
		}
		if child.Shape != module.ShapeLegacy {
			t.Errorf("shape = %v", child.Shape)
		}
	})

	t.Run("meta header is written where it was read", func(t *testing.T) {
		t.Parallel()

		m, err := module.Parse([]byte(`{"slides":[{"meta":{"id":"p","type":"panel","header":"H"},"content":[]}]}`))
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		child, err := m.Slides[0].Derive("p_b1", "H (continued)", nil)
		if err != nil {
			t.Fatalf("Derive() error: %v", err)
		}
		raw := gjson.ParseBytes(child.Raw())
		if raw.Get("meta.id").String() != "p_b1" || raw.Get("meta.header").String() != "H (continued)" {
			t.Errorf("meta not updated: %s", child.Raw())
		}
	})
}

func TestNewSlide(t *testing.T) {
	t.Parallel()

	s := module.MustNewSlide("p", module.TypePanel, "H",
		module.NewParagraph("one two"), module.NewBullets("a", "b"))
	want := `{"id":"p","type":"panel","header":"H","content":{"blocks":[{"type":"paragraph","text":"one two"},{"type":"bullets","items":["a","b"]}]}}`
	if string(s.Raw()) != want {
		t.Errorf("Raw() =\n%s\nwant\n%s", s.Raw(), want)
	}
	if !s.HasBullets() || s.ParagraphText() != "one two" {
		t.Errorf("accessors: bullets=%v text=%q", s.HasBullets(), s.ParagraphText())
	}
}

// ---------------------------------------------------------------------------
// TestExtractSourceText - inclusive window over panels and engage slides
// ---------------------------------------------------------------------------

func TestExtractSourceText(t *testing.T) {
	t.Parallel()

	doc := `{"slides":[
		{"id":"0","type":"panel","content":{"blocks":[{"type":"paragraph","text":"outside"}]}},
		{"id":"1","type":"panel","content":{"blocks":[{"type":"paragraph","text":" p1 "},{"type":"bullets","items":["b"]}]}},
		{"id":"2","type":"engage","intro":{"content":["intro"]},"items":[{"content":["item a"],"button_label":"A"}]},
		{"id":"3","type":"engage2","steps":["step"]},
		{"id":"4","type":"panel","content":{"blocks":[{"type":"paragraph","text":"p4"}]}}
	]}`
	m, err := module.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	got, err := module.ExtractSourceText(m.Slides, 1, 4)
	if err != nil {
		t.Fatalf("ExtractSourceText() error: %v", err)
	}
	if want := "p1|intro|item a|p4"; strings.Join(got, "|") != want {
		t.Errorf("got %q, want %q", strings.Join(got, "|"), want)
	}

	if _, err := module.ExtractSourceText(m.Slides, 3, 3); !errors.Is(err, module.ErrEmptySource) {
		t.Errorf("empty window error = %v, want ErrEmptySource", err)
	}
	if _, err := module.ExtractSourceText(m.Slides, 2, 9); !errors.Is(err, module.ErrInvalidWindow) {
		t.Errorf("out of range window error = %v, want ErrInvalidWindow", err)
	}
}
