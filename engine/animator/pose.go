package animator

import (
	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Palette is one matrix per skinning slot.
type Palette [model.MaxBones]mgl32.Mat4

// identityPalette returns a palette of identity matrices.
func identityPalette() Palette {
	var p Palette
	for i := range p {
		p[i] = mgl32.Ident4()
	}
	return p
}

// Pose is the resolved output for one skeleton.
type Pose struct {
	// Local holds the blended local transform per bone slot.
	Local Palette

	// Model holds each joint's model-space transform after propagation.
	Model Palette

	// Final holds the skinning matrices uploaded to the renderer.
	Final Palette
}

// NewPose returns a pose with every matrix set to identity.
func NewPose() *Pose {
	p := &Pose{}
	p.Reset()
	return p
}

// Reset sets every matrix back to identity.
func (p *Pose) Reset() {
	p.Local = identityPalette()
	p.Model = identityPalette()
	p.Final = identityPalette()
}

// RootLocal returns the blended local transform of the skeleton's root joint, or identity when
// the skeleton has none.
func (p *Pose) RootLocal(skel *model.Skeleton) mgl32.Mat4 {
	if skel == nil || skel.RootJointID < 0 || skel.RootJointID >= model.MaxBones {
		return mgl32.Ident4()
	}
	return p.Local[skel.RootJointID]
}

// SampleLocals evaluates one instance across every joint of skel at timeline time t.
// Joints the instance does not animate, and every joint while t lies outside the instance, get an
// identity local. With rootMotion, root-motion joints keep only their 3x3 part.
//
// Parameters:
//   - skel: the joint hierarchy
//   - inst: the clip placement
//   - t: the timeline time
//   - rootMotion: strip translation from root-motion joints
//
// Returns:
//   - Palette: local transforms per bone slot
func SampleLocals(skel *model.Skeleton, inst *StackedClipInstance, t float32, rootMotion bool) Palette {
	if !inst.Contains(t) {
		return identityPalette()
	}
	return ClipLocals(skel, inst.Clip, inst.LocalTime(t), rootMotion)
}

// ClipLocals evaluates clip across every joint of skel at clip time t without wrapping, so times
// before the first key or past the last one clamp to that key.
// Joints the clip does not animate get an identity local. With rootMotion, root-motion joints keep
// only their 3x3 part.
func ClipLocals(skel *model.Skeleton, clip *model.AnimationClip, t float32, rootMotion bool) Palette {
	locals := identityPalette()
	for i := range skel.Joints {
		j := &skel.Joints[i]
		if !j.IsJoint() || j.BoneID >= model.MaxBones {
			continue
		}
		bone, ok := clip.FindBone(j.Name)
		if !ok || !bone.HasKeys() {
			continue
		}
		m := bone.LocalTransform(t)
		if rootMotion && skel.IsRootMotionJoint(i) {
			m = common.StripTranslation(m)
		}
		locals[j.BoneID] = m
	}
	return locals
}

// Fold blends every instance into one set of locals.
// The earliest-starting instance seeds the result, then the instances are folded in start order
// with the factor from BlendFactor against their predecessor, shaped by shape when non-nil.
//
// Parameters:
//   - skel: the joint hierarchy
//   - instances: the active placements, in any order; must not be empty
//   - t: the timeline time
//   - rootMotion: strip translation from root-motion joints
//   - shape: optional easing applied to factors strictly between 0 and 1
//
// Returns:
//   - Palette: blended locals per bone slot
func Fold(skel *model.Skeleton, instances []*StackedClipInstance, t float32, rootMotion bool, shape func(float32) float32) Palette {
	sorted := make([]*StackedClipInstance, len(instances))
	copy(sorted, instances)
	sortByStart(sorted)

	acc := SampleLocals(skel, sorted[0], t, rootMotion)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		factor := BlendFactor(prev, cur, t)
		if shape != nil && factor > 0 && factor < 1 {
			factor = shape(factor)
		}

		locals := SampleLocals(skel, cur, t, rootMotion)
		for b := range acc {
			acc[b] = common.Interpolate(acc[b], locals[b], factor)
			if rootMotion && b == skel.RootJointID {
				acc[b] = common.StripTranslation(acc[b])
			}
		}
	}
	return acc
}

// Propagate walks the hierarchy depth-first from every root and writes model and skinning
// matrices into pose from pose.Local.
// For a joint: world = parent * bindpose * local and final = world * inverse bind offset.
// Non-joint nodes pass their parent's world through. Slots at or above model.MaxBones only receive
// the bind pose, and each slot is written at most once.
//
// Parameters:
//   - skel: the joint hierarchy
//   - pose: the pose whose Local palette is propagated
func Propagate(skel *model.Skeleton, pose *Pose) {
	var written [model.MaxBones]bool

	var walk func(i int, parent mgl32.Mat4)
	walk = func(i int, parent mgl32.Mat4) {
		j := &skel.Joints[i]
		world := parent
		if j.IsJoint() {
			world = world.Mul4(j.Bindpose)
			if id := j.BoneID; id < model.MaxBones && !written[id] {
				written[id] = true
				world = world.Mul4(pose.Local[id])
				pose.Model[id] = world
				pose.Final[id] = world.Mul4(j.InverseBindOffset)
			}
		}
		for _, c := range j.Children {
			walk(c, world)
		}
	}

	for _, r := range skel.RootIndices {
		walk(r, mgl32.Ident4())
	}
}
