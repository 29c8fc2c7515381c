package numeric

import "errors"

// Sentinel kinds for numeric errors.
var (
	ErrLengthMismatch = errors.New("input slices differ in length")
	ErrTooFewPoints   = errors.New("too few points")
	ErrDegenerate     = errors.New("degenerate input")
)
