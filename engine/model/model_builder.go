package model

// ModelBuilderOption configures a rig built by NewModel.
type ModelBuilderOption func(*model)

// WithName names the rig. Documents refer to a rig's clips by this name when they are imported.
//
// Parameters:
//   - name: the rig name
//
// Returns:
//   - ModelBuilderOption: sets the rig name
func WithName(name string) ModelBuilderOption {
	return func(r *model) {
		r.name = name
	}
}

// WithSkeleton attaches the joint hierarchy the rig's clips are authored against.
//
// Parameters:
//   - skel: the joint hierarchy, or nil for a static prop
//
// Returns:
//   - ModelBuilderOption: sets the rig skeleton
func WithSkeleton(skel *Skeleton) ModelBuilderOption {
	return func(r *model) {
		r.skeleton = skel
	}
}

// WithAnimations appends clips to the rig's bundle in order, skipping nil entries.
func WithAnimations(clips ...*AnimationClip) ModelBuilderOption {
	return func(r *model) {
		for _, clip := range clips {
			if clip != nil {
				r.animations = append(r.animations, clip)
			}
		}
	}
}
