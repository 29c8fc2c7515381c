package ingest

import "errors"

var (
	// ErrNoInput is returned when no contest source is configured.
	ErrNoInput = errors.New("no contest input")
	// ErrDecode wraps malformed contest documents.
	ErrDecode = errors.New("decode contests")
)
