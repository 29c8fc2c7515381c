package contest

import "errors"

// Sentinel kinds for contest errors.
var (
	ErrInvalidContest   = errors.New("invalid contest")
	ErrInvalidStandings = errors.New("invalid standings")
	ErrUnknownKind      = errors.New("unknown contest kind")
)
