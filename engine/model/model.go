package model

import (
	"fmt"
	"slices"
	"strings"
)

// model implements the Model interface.
type model struct {
	name       string
	skeleton   *Skeleton
	animations []*AnimationClip
}

// Model defines the interface for an animatable rig.
// A Model pairs one skeleton with the animation clips authored for it. Importers produce models;
// documents consume them by registering the clips with a Library and handing the skeleton to the
// entities that play them.
type Model interface {
	// Name returns the rig name.
	Name() string

	// Skinned reports whether this model has a skeleton with at least one joint.
	//
	// Returns:
	//   - bool: true if the model can be posed
	Skinned() bool

	// Skeleton returns the joint hierarchy, or nil for a static prop.
	Skeleton() *Skeleton

	// Animations returns the clip bundle in import order.
	Animations() []*AnimationClip

	// AnimationCount returns the size of the clip bundle.
	AnimationCount() int

	// AnimationNames returns the clip names in bundle order.
	AnimationNames() []string

	// GetAnimationIndex finds a clip by name.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - int: the clip's position in Animations, or -1
	GetAnimationIndex(name string) int

	// Animation finds a clip by name, ignoring case.
	//
	// Parameters:
	//   - name: the clip name
	//
	// Returns:
	//   - *AnimationClip: the clip
	//   - error: ErrClipNotFound if the model has no such clip
	Animation(name string) (*AnimationClip, error)

	// Register adds every clip to lib, writing the skeleton's bind poses into each clip first so
	// bones keyed later in authoring start from the rest pose.
	//
	// Parameters:
	//   - lib: the clip library
	//
	// Returns:
	//   - []int: the library id of each clip, in bundle order
	Register(lib *Library) []int
}

var _ Model = &model{}

// NewModel builds a rig from options. A rig with no options is an unnamed static prop.
func NewModel(opts ...ModelBuilderOption) Model {
	r := &model{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *model) Name() string { return r.name }

func (r *model) Skeleton() *Skeleton { return r.skeleton }

func (r *model) Animations() []*AnimationClip { return r.animations }

func (r *model) AnimationCount() int { return len(r.animations) }

func (r *model) Skinned() bool {
	return r.skeleton != nil && slices.ContainsFunc(r.skeleton.Joints, func(j Joint) bool { return j.IsJoint() })
}

func (r *model) AnimationNames() []string {
	names := make([]string, 0, len(r.animations))
	for _, clip := range r.animations {
		names = append(names, clip.Name)
	}
	return names
}

func (r *model) GetAnimationIndex(name string) int {
	return slices.IndexFunc(r.animations, func(clip *AnimationClip) bool { return clip.Name == name })
}

func (r *model) Animation(name string) (*AnimationClip, error) {
	i := slices.IndexFunc(r.animations, func(clip *AnimationClip) bool { return strings.EqualFold(clip.Name, name) })
	if i < 0 {
		return nil, fmt.Errorf("model %q has no clip %q: %w", r.name, name, ErrClipNotFound)
	}
	return r.animations[i], nil
}

func (r *model) Register(lib *Library) []int {
	ids := make([]int, len(r.animations))
	for i, clip := range r.animations {
		if r.skeleton != nil {
			for _, j := range r.skeleton.Joints {
				if j.IsJoint() {
					clip.SetBindpose(j.Name, j.Bindpose)
				}
			}
		}
		ids[i], _ = lib.Register(clip)
	}
	return ids
}
