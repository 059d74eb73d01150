package validate

import (
	"strings"

	"github.com/alnah/go-panelsplit/internal/textstat"
)

// Panel length analysis actions.
const (
	ActionNone   = "none"
	ActionReflow = "reflow"
	ActionSplit  = "split"
)

// LengthAnalysis is a validated panel_length_analysis answer.
type LengthAnalysis struct {
	Action string     `json:"action"`
	Reason string     `json:"reason"`
	Panels [][]string `json:"panels,omitempty"`
}

// PanelLengthAnalysis validates a {"panel_length_analysis": {...}} response.
// A split must propose at least two panels, each inside the policy word window
// and at most MaxSentencesPerPanel sentences long.
func PanelLengthAnalysis(v any, policy textstat.Policy) (LengthAnalysis, error) {
	policy = policy.OrDefault()
	obj, ok := asObject(v)
	if !ok {
		return LengthAnalysis{}, reject("panel_length_analysis must be an object")
	}
	pla, ok := asObject(obj["panel_length_analysis"])
	if !ok {
		return LengthAnalysis{}, reject("missing panel_length_analysis object")
	}

	action, _ := asString(pla["action"])
	switch action {
	case ActionNone, ActionReflow, ActionSplit:
	default:
		return LengthAnalysis{}, reject("invalid panel_length_analysis.action")
	}
	reason, ok := nonEmpty(pla["reason"])
	if !ok {
		return LengthAnalysis{}, reject("panel_length_analysis.reason must be non-empty")
	}
	out := LengthAnalysis{Action: action, Reason: reason}

	if action == ActionSplit {
		panels, ok := asList(pla["suggested_panels"])
		if !ok || len(panels) < 2 {
			return LengthAnalysis{}, reject("split requires >= 2 suggested_panels")
		}
		for i, p := range panels {
			po, ok := asObject(p)
			if !ok {
				return LengthAnalysis{}, reject("suggested_panels[%d] must be object", i)
			}
			lines, ok := stringList(po["content"])
			if !ok {
				return LengthAnalysis{}, reject("suggested_panels[%d].content must be list[str]", i)
			}
			text := strings.Join(lines, " ")
			if !policy.WithinWindow(textstat.Words(text)) {
				return LengthAnalysis{}, reject("suggested_panels[%d] violates %d-%d words",
					i, policy.MinWords, policy.MaxWords)
			}
			if textstat.Sentences(text) > policy.MaxSentencesPerPanel {
				return LengthAnalysis{}, reject("suggested_panels[%d] exceeds %d sentences",
					i, policy.MaxSentencesPerPanel)
			}
			out.Panels = append(out.Panels, lines)
		}
	}

	if err := safetyOf(obj); err != nil {
		return LengthAnalysis{}, err
	}
	return out, nil
}

// SplitPanel is one panel of a validated direct split.
type SplitPanel struct {
	Header  string `json:"header"`
	Content string `json:"content"`
}

// PanelSplit validates a {"slides": [{header, content}, ...]} direct split of
// text. At least two slides are required, each inside the policy word window,
// and their contents must carry exactly the words of text in order.
func PanelSplit(v any, text string, policy textstat.Policy) ([]SplitPanel, error) {
	policy = policy.OrDefault()
	obj, ok := asObject(v)
	if !ok {
		return nil, reject("panel split must be an object")
	}
	slides, ok := asList(obj["slides"])
	if !ok || len(slides) < 2 {
		return nil, reject("panel split requires >= 2 slides")
	}

	out := make([]SplitPanel, 0, len(slides))
	contents := make([]string, 0, len(slides))
	for i, s := range slides {
		so, ok := asObject(s)
		if !ok {
			return nil, reject("slides[%d] must be object", i)
		}
		content, ok := asText(so["content"])
		if !ok || textstat.Words(content) == 0 {
			return nil, reject("slides[%d].content must be non-empty text", i)
		}
		if wc := textstat.Words(content); !policy.WithinWindow(wc) {
			return nil, reject("slides[%d] has %d words, outside %d-%d",
				i, wc, policy.MinWords, policy.MaxWords)
		}
		header, _ := asString(so["header"])
		out = append(out, SplitPanel{Header: header, Content: content})
		contents = append(contents, content)
	}

	if !textstat.SameWords(strings.Join(contents, " "), text) {
		return nil, mismatch()
	}
	return out, nil
}

func stringList(v any) ([]string, bool) {
	list, ok := asList(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		s, ok := asString(e)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
