package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrUnratedContest      = errors.New("contest type has no rating parameters")
	ErrDuplicateContestant = errors.New("contestant listed twice")
)
