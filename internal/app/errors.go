package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoStore    = errors.New("no model store")
	ErrRunActive  = errors.New("estimation already running")
	ErrEnqueueJob = errors.New("enqueue fit job")
)
