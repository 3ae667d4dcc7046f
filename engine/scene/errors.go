package scene

import "errors"

// ErrEntityNotFound is returned when an entity ID is not registered with the scene.
var ErrEntityNotFound = errors.New("entity not found")
