package module

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// BlockKind tags a content block.
type BlockKind string

// Block kinds. Unknown blocks are carried verbatim and never inspected.
const (
	KindParagraph BlockKind = "paragraph"
	KindBullets   BlockKind = "bullets"
	KindUnknown   BlockKind = "unknown"
)

var bulletMarkers = []string{"•", "-", "*"}

// Block is one content block of a slide: a paragraph, a bullet list, or an
// unrecognized element kept as-is.
//
// Blocks decoded from a document keep their original JSON so that
// redistributing them into new slides re-emits them byte for byte.
type Block struct {
	Kind  BlockKind
	Text  string
	Items []string

	raw    json.RawMessage
	legacy string
}

// NewParagraph returns a paragraph block.
func NewParagraph(text string) Block {
	return Block{Kind: KindParagraph, Text: text}
}

// NewBullets returns a bullet-list block.
func NewBullets(items ...string) Block {
	return Block{Kind: KindBullets, Items: items}
}

// IsParagraph reports whether b is a paragraph.
func (b Block) IsParagraph() bool { return b.Kind == KindParagraph }

// IsBullets reports whether b is a bullet list.
func (b Block) IsBullets() bool { return b.Kind == KindBullets }

// Raw returns the block's original JSON element, or nil for constructed blocks.
func (b Block) Raw() json.RawMessage { return b.raw }

// MarshalJSON emits the original element when there is one, otherwise the
// canonical {"type": ...} object.
func (b Block) MarshalJSON() ([]byte, error) {
	if b.raw != nil {
		return b.raw, nil
	}
	switch b.Kind {
	case KindParagraph:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{"paragraph", b.Text})
	case KindBullets:
		items := b.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(struct {
			Type  string   `json:"type"`
			Items []string `json:"items"`
		}{"bullets", items})
	default:
		return nil, fmt.Errorf("%w: unknown block without source element", ErrStructuralInput)
	}
}

// UnmarshalJSON decodes a block element the same way Parse does.
func (b *Block) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid block JSON", ErrStructuralInput)
	}
	out, err := decodeBlock(gjson.ParseBytes(data))
	if err != nil {
		return err
	}
	*b = out
	return nil
}

// legacyString renders the block as a legacy content string.
func (b Block) legacyString() string {
	if b.legacy != "" {
		return b.legacy
	}
	switch b.Kind {
	case KindBullets:
		lines := make([]string, len(b.Items))
		for i, item := range b.Items {
			lines[i] = "• " + item
		}
		return strings.Join(lines, "\n")
	case KindUnknown:
		return string(b.raw)
	default:
		return b.Text
	}
}

// decodeBlock normalizes one element of a block list.
func decodeBlock(r gjson.Result) (Block, error) {
	if !r.IsObject() {
		return Block{}, fmt.Errorf("%w: block must be an object, got %s", ErrStructuralInput, r.Type)
	}
	raw := json.RawMessage(r.Raw)
	switch strings.ToLower(r.Get("type").String()) {
	case "paragraph":
		text := r.Get("text")
		if text.Exists() && text.Type != gjson.String {
			return Block{}, fmt.Errorf("%w: paragraph text must be a string", ErrStructuralInput)
		}
		return Block{Kind: KindParagraph, Text: text.Str, raw: raw}, nil
	case "bullets":
		items := r.Get("items")
		if items.Exists() && !items.IsArray() {
			return Block{}, fmt.Errorf("%w: bullet items must be a list", ErrStructuralInput)
		}
		var out []string
		for _, item := range items.Array() {
			if item.Type != gjson.String {
				return Block{}, fmt.Errorf("%w: bullet item must be a string", ErrStructuralInput)
			}
			out = append(out, item.Str)
		}
		return Block{Kind: KindBullets, Items: out, raw: raw}, nil
	default:
		return Block{Kind: KindUnknown, raw: raw}, nil
	}
}

// decodeLegacy turns a legacy content string into a block. A string whose
// non-empty lines all start with a bullet marker is a bullet list.
func decodeLegacy(s string) Block {
	var items []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		item, ok := trimBulletMarker(line)
		if !ok {
			return Block{Kind: KindParagraph, Text: s, legacy: s}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return Block{Kind: KindParagraph, Text: s, legacy: s}
	}
	return Block{Kind: KindBullets, Items: items, legacy: s}
}

func trimBulletMarker(line string) (string, bool) {
	for _, m := range bulletMarkers {
		if strings.HasPrefix(line, m) {
			return strings.TrimSpace(strings.TrimPrefix(line, m)), true
		}
	}
	return "", false
}
