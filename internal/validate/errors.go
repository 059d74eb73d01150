// Package validate gatekeeps every LLM response before the pipeline acts on it.
//
// Each validator takes the decoded JSON document as an untrusted value and
// returns either a typed result or a *Rejection. Validators never panic and
// never trust a field they have not checked.
package validate

import (
	"errors"
	"fmt"
)

// Rejection kinds. Use errors.Is on a returned error to tell them apart.
var (
	// ErrRejected covers schema and bounds failures.
	ErrRejected = errors.New("llm output rejected")

	// ErrReconstructionMismatch indicates the model's positions do not rebuild the source text.
	ErrReconstructionMismatch = errors.New("reconstruction mismatch")

	// ErrUnsafe indicates a missing, malformed or raised safety flag.
	ErrUnsafe = errors.New("unsafe llm output")
)

// Rejection is the failure result of a validator. Reason is safe to record in
// suggestion files and debug reports.
type Rejection struct {
	Reason string
	Kind   error
}

func (r *Rejection) Error() string { return r.Reason }

// Unwrap returns the rejection kind.
func (r *Rejection) Unwrap() error { return r.Kind }

func reject(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...), Kind: ErrRejected}
}

func unsafe(format string, args ...any) error {
	return &Rejection{Reason: fmt.Sprintf(format, args...), Kind: ErrUnsafe}
}

func mismatch() error {
	return &Rejection{Reason: "text mismatch", Kind: ErrReconstructionMismatch}
}

// ReasonOf returns the rejection reason carried by err, or err's message.
func ReasonOf(err error) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
