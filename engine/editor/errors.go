package editor

import "errors"

var (
	// ErrNoSkeleton is returned when an operation needs an entity with a joint hierarchy.
	ErrNoSkeleton = errors.New("entity has no skeleton")

	// ErrNoClip is returned when an operation needs an entity with an editable clip.
	ErrNoClip = errors.New("entity has no clip")

	// ErrNotBindable is returned when an entity kind cannot back a composition row.
	ErrNotBindable = errors.New("entity kind cannot be bound to a timeline row")
)
