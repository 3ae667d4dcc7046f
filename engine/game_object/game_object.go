package game_object

import (
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Kind classifies what an entity represents on a composition timeline.
type Kind int

const (
	KindActor Kind = iota
	KindCamera
	KindLight
	KindMesh
	KindOther
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindActor:
		return "actor"
	case KindCamera:
		return "camera"
	case KindLight:
		return "light"
	case KindMesh:
		return "mesh"
	default:
		return "other"
	}
}

type gameObject struct {
	id       int
	name     string
	kind     Kind
	enabled  atomic.Bool
	skeleton *model.Skeleton
	clip     *model.AnimationClip
	local    mgl32.Mat4
}

// GameObject defines the interface for a scene entity that timelines can reference by ID.
// Tracks never hold a GameObject directly; they resolve it through a Scene each tick.
type GameObject interface {
	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - int: the object ID, or 0 before the object is added to a Scene
	ID() int

	// SetID assigns the object's identifier. Called by the Scene when the object is added without one.
	//
	// Parameters:
	//   - id: the identifier to assign
	SetID(id int)

	// Name returns the object's display name. Actor names double as the bone name for transform
	// keyframes written into the object's clip.
	//
	// Returns:
	//   - string: the name
	Name() string

	// Kind returns what the object represents.
	//
	// Returns:
	//   - Kind: the object kind
	Kind() Kind

	// Enabled returns whether this object takes part in playback.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled toggles participation in playback.
	//
	// Parameters:
	//   - enabled: the new state
	SetEnabled(enabled bool)

	// Skeleton returns the joint hierarchy driven by this object's clips, or nil for objects
	// without one (cameras, lights).
	//
	// Returns:
	//   - *model.Skeleton: the skeleton or nil
	Skeleton() *model.Skeleton

	// Clip returns the object's own editable clip used for keyframe capture, or nil.
	//
	// Returns:
	//   - *model.AnimationClip: the clip or nil
	Clip() *model.AnimationClip

	// SetClip replaces the object's editable clip.
	//
	// Parameters:
	//   - clip: the clip to use, may be nil
	SetClip(clip *model.AnimationClip)

	// Local returns the object's local transform relative to its parent.
	//
	// Returns:
	//   - mgl32.Mat4: the local transform
	Local() mgl32.Mat4

	// SetLocal replaces the object's local transform.
	//
	// Parameters:
	//   - m: the new local transform
	SetLocal(m mgl32.Mat4)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject with the provided options.
// Objects default to enabled, KindActor and an identity local transform.
//
// Parameters:
//   - options: functional options for configuring the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		kind:  KindActor,
		local: mgl32.Ident4(),
	}
	obj.enabled.Store(true)

	for _, opt := range options {
		opt(obj)
	}

	return obj
}

func (o *gameObject) ID() int {
	return o.id
}

func (o *gameObject) SetID(id int) {
	o.id = id
}

func (o *gameObject) Name() string {
	return o.name
}

func (o *gameObject) Kind() Kind {
	return o.kind
}

func (o *gameObject) Enabled() bool {
	return o.enabled.Load()
}

func (o *gameObject) SetEnabled(enabled bool) {
	o.enabled.Store(enabled)
}

func (o *gameObject) Skeleton() *model.Skeleton {
	return o.skeleton
}

func (o *gameObject) Clip() *model.AnimationClip {
	return o.clip
}

func (o *gameObject) SetClip(clip *model.AnimationClip) {
	o.clip = clip
}

func (o *gameObject) Local() mgl32.Mat4 {
	return o.local
}

func (o *gameObject) SetLocal(m mgl32.Mat4) {
	o.local = m
}
