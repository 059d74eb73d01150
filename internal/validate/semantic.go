package validate

// Grouping is a validated semantic_index answer: sentence indexes grouped into panels.
type Grouping struct {
	Groups [][]int `json:"groups"`
	Reason string  `json:"reason"`
}

// SemanticIndex validates a {"semantic_index": {...}} response against a text
// of sentenceCount sentences. Every sentence index must appear exactly once and
// in order across the groups.
func SemanticIndex(v any, sentenceCount int) (Grouping, error) {
	obj, ok := asObject(v)
	if !ok {
		return Grouping{}, reject("semantic_index output must be an object")
	}
	si, ok := asObject(obj["semantic_index"])
	if !ok {
		return Grouping{}, reject("missing semantic_index object")
	}
	groups, ok := asList(si["groups"])
	if !ok || len(groups) == 0 {
		return Grouping{}, reject("semantic_index.groups must be a non-empty list")
	}
	reason, ok := nonEmpty(si["reason"])
	if !ok {
		return Grouping{}, reject("semantic_index.reason must be a non-empty string")
	}

	out := Grouping{Reason: reason}
	next := 0
	for i, g := range groups {
		list, ok := asList(g)
		if !ok || len(list) == 0 {
			return Grouping{}, reject("groups[%d] must be a non-empty list", i)
		}
		group := make([]int, 0, len(list))
		for _, e := range list {
			idx, ok := asInt(e)
			if !ok {
				return Grouping{}, reject("groups[%d] contains non-integer index", i)
			}
			if idx < 0 || idx >= sentenceCount {
				return Grouping{}, reject("groups[%d] contains invalid sentence index %d", i, idx)
			}
			if idx != next {
				return Grouping{}, reject("semantic_index.groups must contain each sentence index exactly once, in order: want %d, got %d", next, idx)
			}
			next++
			group = append(group, idx)
		}
		out.Groups = append(out.Groups, group)
	}
	if next != sentenceCount {
		return Grouping{}, reject("semantic_index.groups cover %d of %d sentences", next, sentenceCount)
	}

	if err := safetyOf(obj); err != nil {
		return Grouping{}, err
	}
	return out, nil
}
