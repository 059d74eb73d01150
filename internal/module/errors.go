package module

import "errors"

// ErrStructuralInput indicates the document does not have the shape a component requires.
// It signals an upstream contract violation and aborts the run.
var ErrStructuralInput = errors.New("structural input error")

// ErrEmptySource indicates a quiz source window produced no instructional text.
var ErrEmptySource = errors.New("no source text in window")

// ErrInvalidWindow indicates a slide window outside the module or with start after end.
var ErrInvalidWindow = errors.New("invalid slide window")
