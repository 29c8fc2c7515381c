package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidLimit  = errors.New("invalid leaderboard limit")
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrStoreClosed   = errors.New("store closed")
)
