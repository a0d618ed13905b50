package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrClosed = errors.New("regrade queue closed")
	ErrFull   = errors.New("regrade queue full")
)
