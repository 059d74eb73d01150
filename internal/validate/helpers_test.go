package validate_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

const safeBlock = `"safety":{"adds_new_information":false,"removes_information":false,"medical_facts_changed":false}`

// decode parses a response the way the completion port does.
func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}
