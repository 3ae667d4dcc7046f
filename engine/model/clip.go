package model

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"
)

// NoOwner marks a clip that is not bound to any entity.
const NoOwner = -1

// AnimationClip represents a single animation (walk, run, wave, etc.) as a set of per-bone curves.
// A clip is assigned a stable ID when it is registered with a Library; until then ID is -1.
type AnimationClip struct {
	// ID is the library-assigned identifier.
	ID int

	// Name is the animation identifier shown to users.
	Name string

	// Path is the source the clip was imported from. Re-registering a known path keeps the old ID.
	Path string

	// FPS is the sample rate the clip was authored at.
	FPS float32

	// OwnerID is the entity the clip was created for, or NoOwner.
	OwnerID int

	// RootBoneName names the skeleton root joint the clip was authored against.
	RootBoneName string

	bones     map[string]*BoneTrack
	order     []string
	bindposes map[string]mgl32.Mat4
	logger    *slog.Logger
}

// NewAnimationClip creates an empty, unregistered clip.
//
// Parameters:
//   - name: the clip name
//   - path: the import source used for duplicate detection; may be empty
//   - fps: the authored frame rate
//
// Returns:
//   - *AnimationClip: the new clip
func NewAnimationClip(name, path string, fps float32) *AnimationClip {
	return &AnimationClip{
		ID:        -1,
		Name:      name,
		Path:      path,
		FPS:       fps,
		OwnerID:   NoOwner,
		bones:     make(map[string]*BoneTrack),
		bindposes: make(map[string]mgl32.Mat4),
		logger:    slog.Default(),
	}
}

// SetLogger replaces the logger used for authoring diagnostics. A nil logger is ignored.
func (c *AnimationClip) SetLogger(logger *slog.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// AddBone adds or replaces the track for track.Name.
//
// Parameters:
//   - track: the bone track to store
func (c *AnimationClip) AddBone(track *BoneTrack) {
	if track == nil {
		panic("model: AnimationClip.AddBone requires a track")
	}
	if _, ok := c.bones[track.Name]; !ok {
		c.order = append(c.order, track.Name)
	}
	c.bones[track.Name] = track
}

// FindBone returns the track animating the named bone.
//
// Parameters:
//   - name: the bone name
//
// Returns:
//   - *BoneTrack: the track, or nil
//   - bool: false if the clip does not animate that bone
func (c *AnimationClip) FindBone(name string) (*BoneTrack, bool) {
	b, ok := c.bones[name]
	return b, ok
}

// Bones returns the clip's tracks in insertion order.
func (c *AnimationClip) Bones() []*BoneTrack {
	out := make([]*BoneTrack, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.bones[name])
	}
	return out
}

// SetBindpose records the bind pose used when authoring creates a track for a bone the clip does
// not animate yet.
//
// Parameters:
//   - name: the bone name
//   - bindpose: the bone's rest-pose local transform
func (c *AnimationClip) SetBindpose(name string, bindpose mgl32.Mat4) {
	c.bindposes[name] = bindpose
}

// Duration returns the greatest last-key time across all bones, or 0 for an empty clip.
func (c *AnimationClip) Duration() float32 {
	var d float32
	for _, b := range c.bones {
		if t := b.LastTime(); t > d {
			d = t
		}
	}
	return d
}

// AddAndReplaceBone captures transform as a keyframe on the named bone at time.
// If the bone has no track yet, one is created from the recorded bind pose and keyed at both frame
// 0 and time so the new pose holds across the clip.
//
// Parameters:
//   - name: the bone name
//   - transform: the local transform to capture
//   - time: the frame to write at
func (c *AnimationClip) AddAndReplaceBone(name string, transform mgl32.Mat4, time float32) {
	if b, ok := c.bones[name]; ok {
		c.logger.Debug("replacing bone keyframe", "clip", c.Name, "bone", name, "time", time)
		b.AddOrReplaceKeyframe(transform, time, false)
		return
	}

	c.logger.Debug("bone not found, creating track", "clip", c.Name, "bone", name, "time", time)
	bindpose, ok := c.bindposes[name]
	if !ok {
		bindpose = mgl32.Ident4()
	}
	b := NewBoneTrack(name, bindpose)
	c.AddBone(b)
	b.AddOrReplaceKeyframe(transform, 0, true)
	b.AddOrReplaceKeyframe(transform, time, true)
}

// DeleteBoneKeyframe removes the key at time from the named bone.
//
// Returns:
//   - bool: true if the bone existed and held a key at that time
func (c *AnimationClip) DeleteBoneKeyframe(name string, time float32) bool {
	b, ok := c.bones[name]
	if !ok {
		return false
	}
	return b.DeleteKeyframe(time, false)
}

// ReplaceBone rewrites the key at time on the named bone, dropping it when it is redundant.
// Unknown bones are ignored.
func (c *AnimationClip) ReplaceBone(name string, transform mgl32.Mat4, time float32) {
	if b, ok := c.bones[name]; ok {
		b.ReplaceOrDeleteKeyframe(transform, time)
	}
}
