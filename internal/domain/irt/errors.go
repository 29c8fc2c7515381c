package irt

import "errors"

// Sentinel kinds for rejected sub-models. None of them abort a fit.
var (
	ErrInsufficientData  = errors.New("insufficient data")
	ErrDegenerateOutcome = errors.New("degenerate outcome")
	ErrUnreliableFit     = errors.New("unreliable fit")
)

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrDegenerateOutcome):
		return "degenerate_outcome"
	case errors.Is(err, ErrUnreliableFit):
		return "unreliable_fit"
	default:
		return "unknown"
	}
}
