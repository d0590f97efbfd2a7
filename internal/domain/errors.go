package domain

import "errors"

var (
	ErrOutOfBounds    = errors.New("coordinate out of bounds")
	ErrNotMergeClosed = errors.New("selection partially covers a merged cell")
	ErrNoSelection    = errors.New("no active selection")
)
