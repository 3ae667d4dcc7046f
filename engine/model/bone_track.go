package model

import (
	"math"
	"sort"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	defaultPosition = mgl32.Vec3{0, 0, 0}
	defaultRotation = mgl32.QuatIdent()
	defaultScale    = mgl32.Vec3{1, 1, 1}
)

// BoneTrack holds the position, rotation and scale curves for one named bone, plus the bone's
// bind pose.
type BoneTrack struct {
	// Name is the bone the curves animate.
	Name string

	// Positions, Rotations and Scales are the per-attribute curves.
	Positions VectorCurve
	Rotations QuaternionCurve
	Scales    VectorCurve

	// Bindpose is the bone's local transform at bind time.
	Bindpose mgl32.Mat4

	// TimeFactor divides authored frame numbers into key times. Zero is treated as 1.
	TimeFactor float32
}

// NewBoneTrack creates an empty BoneTrack with the given name and bind pose.
//
// Parameters:
//   - name: the bone name
//   - bindpose: the bone's rest-pose local transform
//
// Returns:
//   - *BoneTrack: the new track
func NewBoneTrack(name string, bindpose mgl32.Mat4) *BoneTrack {
	return &BoneTrack{
		Name:       name,
		Bindpose:   bindpose,
		TimeFactor: 1,
	}
}

// Sample evaluates all three curves at time and returns the decomposed local transform.
// Each attribute clamps to its end keys; rotation uses shortest-arc slerp.
//
// Parameters:
//   - time: the query time
//
// Returns:
//   - common.Transform: the interpolated translation, rotation and scale
func (b *BoneTrack) Sample(time float32) common.Transform {
	p0, p1 := b.Positions.Bracket(time, defaultPosition)
	r0, r1 := b.Rotations.Bracket(time, defaultRotation)
	s0, s1 := b.Scales.Bracket(time, defaultScale)

	return common.Transform{
		Translation: common.LerpVec3(p0.Value, p1.Value, BlendFactor(p0.Time, p1.Time, time)),
		Rotation:    common.SlerpShortest(r0.Value, r1.Value, BlendFactor(r0.Time, r1.Time, time)),
		Scale:       common.LerpVec3(s0.Value, s1.Value, BlendFactor(s0.Time, s1.Time, time)),
	}
}

// LocalTransform evaluates the bone at time and composes translate * rotate * scale.
//
// Parameters:
//   - time: the query time
//
// Returns:
//   - mgl32.Mat4: the local transform
func (b *BoneTrack) LocalTransform(time float32) mgl32.Mat4 {
	return common.Compose(b.Sample(time))
}

// HasKeys reports whether any of the three curves holds a key.
func (b *BoneTrack) HasKeys() bool {
	return b.Positions.Len() > 0 || b.Rotations.Len() > 0 || b.Scales.Len() > 0
}

// LastTime returns the greatest key time across all three curves, or 0 when empty.
func (b *BoneTrack) LastTime() float32 {
	var last float32
	if k, ok := b.Positions.Last(); ok && k.Time > last {
		last = k.Time
	}
	if k, ok := b.Rotations.Last(); ok && k.Time > last {
		last = k.Time
	}
	if k, ok := b.Scales.Last(); ok && k.Time > last {
		last = k.Time
	}
	return last
}

// Times returns the sorted union of key times across all three curves.
func (b *BoneTrack) Times() []float32 {
	seen := make(map[float32]struct{})
	for _, k := range b.Positions.keys {
		seen[k.Time] = struct{}{}
	}
	for _, k := range b.Rotations.keys {
		seen[k.Time] = struct{}{}
	}
	for _, k := range b.Scales.keys {
		seen[k.Time] = struct{}{}
	}
	out := make([]float32, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// stamp converts an authored frame into a key time.
func (b *BoneTrack) stamp(time float32) float32 {
	f := b.TimeFactor
	if f == 0 {
		f = 1
	}
	return float32(math.Floor(float64(time))) / f
}

// AddOrReplaceKeyframe writes the decomposed transform into the curves at the frame time.
// Each attribute is written only if it already has a key at that time, differs from the value the
// curve currently evaluates to by at least common.KeyEpsilon on some axis, or its curve is empty.
// With ignoreEpsilon every attribute is written unconditionally.
//
// Parameters:
//   - transform: the local transform to capture
//   - time: the frame to write at, floored and divided by TimeFactor
//   - ignoreEpsilon: skip the comparison against the evaluated curve
//
// Returns:
//   - bool: true if any attribute was written
func (b *BoneTrack) AddOrReplaceKeyframe(transform mgl32.Mat4, time float32, ignoreEpsilon bool) bool {
	ts := b.stamp(time)
	cur := common.Decompose(transform)

	tChanged, rChanged, sChanged := true, true, true
	if !ignoreEpsilon {
		ref := b.Sample(ts)
		tChanged = !common.WithinEpsilon(cur.Translation, ref.Translation, common.KeyEpsilon)
		rChanged = !common.WithinEpsilon(common.QuatAxes(cur.Rotation), common.QuatAxes(ref.Rotation), common.KeyEpsilon)
		sChanged = !common.WithinEpsilon(cur.Scale, ref.Scale, common.KeyEpsilon)
	}

	added := false
	if b.Positions.Has(ts) || tChanged || b.Positions.Len() == 0 {
		b.Positions.Set(ts, cur.Translation)
		added = true
	}
	if b.Rotations.Has(ts) || rChanged || b.Rotations.Len() == 0 {
		b.Rotations.Set(ts, cur.Rotation)
		added = true
	}
	if b.Scales.Has(ts) || sChanged || b.Scales.Len() == 0 {
		b.Scales.Set(ts, cur.Scale)
		added = true
	}
	return added
}

// DeleteKeyframe removes the key at the frame time from all three curves.
//
// Parameters:
//   - time: the frame to remove
//   - animationTime: if true time is used as the key time directly instead of being stamped
//
// Returns:
//   - bool: true if any curve held a key at that time
func (b *BoneTrack) DeleteKeyframe(time float32, animationTime bool) bool {
	ts := b.stamp(time)
	if animationTime {
		ts = time
	}
	erased := b.Positions.Delete(ts)
	erased = b.Rotations.Delete(ts) || erased
	erased = b.Scales.Delete(ts) || erased
	return erased
}

// ReplaceOrDeleteKeyframe removes the key at the frame time and writes transform back only when the
// pose the curves evaluate to without that key differs from it, or when the frame is 0.
//
// Parameters:
//   - transform: the local transform to keep at the frame
//   - time: the frame to update
func (b *BoneTrack) ReplaceOrDeleteKeyframe(transform mgl32.Mat4, time float32) {
	ts := b.stamp(time)
	cur := common.Decompose(transform)

	b.DeleteKeyframe(time, false)
	after := b.Sample(ts)

	changed := !common.WithinEpsilon(cur.Translation, after.Translation, common.KeyEpsilon) ||
		!common.WithinEpsilon(common.QuatAxes(cur.Rotation), common.QuatAxes(after.Rotation), common.KeyEpsilon) ||
		!common.WithinEpsilon(cur.Scale, after.Scale, common.KeyEpsilon)
	if changed || ts == 0 {
		b.AddOrReplaceKeyframe(transform, time, ts == 0)
	}
}
