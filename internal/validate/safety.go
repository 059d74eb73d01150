package validate

import "sort"

// SafetyKeys are the flags every safety block must carry.
var SafetyKeys = []string{"adds_new_information", "removes_information", "medical_facts_changed"}

// Safety checks a safety block: the required flags must be present, boolean
// and false. Any additional flag must also be a false boolean.
func Safety(v any) error {
	m, ok := asObject(v)
	if !ok {
		return unsafe("missing safety object")
	}
	for _, k := range SafetyKeys {
		val, ok := m[k]
		if !ok {
			return unsafe("safety missing key: %s", k)
		}
		if err := falseFlag(k, val); err != nil {
			return err
		}
	}

	extra := make([]string, 0, len(m))
	for k := range m {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	for _, k := range extra {
		if err := falseFlag(k, m[k]); err != nil {
			return err
		}
	}
	return nil
}

func falseFlag(key string, v any) error {
	b, ok := v.(bool)
	if !ok {
		return unsafe("safety.%s must be boolean", key)
	}
	if b {
		return unsafe("safety.%s must be false", key)
	}
	return nil
}

func safetyOf(obj map[string]any) error {
	return Safety(obj["safety"])
}
