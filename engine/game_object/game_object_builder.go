package game_object

import (
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id int) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithName sets the display name of the GameObject.
//
// Parameters:
//   - name: the object name
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the name
func WithName(name string) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.name = name
	}
}

// WithKind sets what the GameObject represents.
//
// Parameters:
//   - kind: the object kind
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the kind
func WithKind(kind Kind) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.kind = kind
	}
}

// WithEnabled sets whether the GameObject takes part in playback.
//
// Parameters:
//   - enabled: true to animate the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithSkeleton attaches the joint hierarchy the object's clips drive.
//
// Parameters:
//   - s: the skeleton
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the skeleton
func WithSkeleton(s *model.Skeleton) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.skeleton = s
	}
}

// WithClip sets the object's editable clip.
//
// Parameters:
//   - c: the clip
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the clip
func WithClip(c *model.AnimationClip) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.clip = c
	}
}

// WithLocal sets the initial local transform.
//
// Parameters:
//   - m: the local transform
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the local transform
func WithLocal(m mgl32.Mat4) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.local = m
	}
}
