package model

import "errors"

var (
	// ErrClipNotFound is returned when a clip id, name or path is not registered.
	ErrClipNotFound = errors.New("clip not found")

	// ErrBoneNotFound is returned when a skeleton has no joint with the requested name.
	ErrBoneNotFound = errors.New("bone not found")
)
