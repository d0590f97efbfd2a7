package app

import "errors"

// ErrInvalidPointerEvent and related errors describe validation failures.
var (
	ErrInvalidPointerEvent = errors.New("invalid pointer event")
	ErrInvalidDimensions   = errors.New("invalid grid dimensions")
)
