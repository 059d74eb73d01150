package validate

import "github.com/alnah/go-panelsplit/internal/textstat"

// Engage item review statuses.
const (
	StatusOK               = "ok"
	StatusExceedsSoftLimit = "exceeds_soft_limit"
	StatusExceedsHardLimit = "exceeds_hard_limit"
)

// Button label targets.
const (
	TargetEngage1Item = "engage1_item"
	TargetEngage2     = "engage2"
)

// ItemReview is one validated engage item length review.
type ItemReview struct {
	ItemIndex int    `json:"item_index"`
	WordCount int    `json:"word_count"`
	Status    string `json:"status"`
}

// LabelSuggestion is one validated button label suggestion.
type LabelSuggestion struct {
	Target         string `json:"target"`
	SuggestedLabel string `json:"suggested_label"`
}

// EngageItemReview validates an {"engage1_item_review": [...]} response.
func EngageItemReview(v any) ([]ItemReview, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, reject("engage1_item_review output must be an object")
	}
	list, ok := asList(obj["engage1_item_review"])
	if !ok {
		return nil, reject("missing engage1_item_review list")
	}

	out := make([]ItemReview, 0, len(list))
	for i, e := range list {
		r, ok := asObject(e)
		if !ok {
			return nil, reject("engage1_item_review[%d] must be object", i)
		}
		idx, ok := asInt(r["item_index"])
		if !ok {
			return nil, reject("item_index must be int")
		}
		wc, ok := asInt(r["word_count"])
		if !ok {
			return nil, reject("word_count must be int")
		}
		status, _ := asString(r["status"])
		switch status {
		case StatusOK, StatusExceedsSoftLimit, StatusExceedsHardLimit:
		default:
			return nil, reject("invalid engage item status")
		}
		out = append(out, ItemReview{ItemIndex: idx, WordCount: wc, Status: status})
	}

	if err := safetyOf(obj); err != nil {
		return nil, err
	}
	return out, nil
}

// ButtonLabelSuggestions validates a {"button_label_suggestions": [...]} response.
// Every suggested label must itself be a valid button label.
func ButtonLabelSuggestions(v any) ([]LabelSuggestion, error) {
	obj, ok := asObject(v)
	if !ok {
		return nil, reject("button_label_suggestions output must be an object")
	}
	list, ok := asList(obj["button_label_suggestions"])
	if !ok {
		return nil, reject("missing button_label_suggestions list")
	}

	out := make([]LabelSuggestion, 0, len(list))
	for _, e := range list {
		s, ok := asObject(e)
		if !ok {
			return nil, reject("button_label_suggestion must be object")
		}
		target, _ := asString(s["target"])
		if target != TargetEngage1Item && target != TargetEngage2 {
			return nil, reject("invalid button_label target")
		}
		label, ok := asString(s["suggested_label"])
		if !ok || textstat.ButtonLabelInvalid(label) {
			return nil, reject("invalid button label")
		}
		out = append(out, LabelSuggestion{Target: target, SuggestedLabel: label})
	}

	if err := safetyOf(obj); err != nil {
		return nil, err
	}
	return out, nil
}
