package bake

import "errors"

var (
	// ErrEmptyRange is returned when the requested frame range holds no frames.
	ErrEmptyRange = errors.New("bake range is empty")

	// ErrFrameFailed is returned when evaluating a frame panicked.
	ErrFrameFailed = errors.New("bake frame failed")
)
