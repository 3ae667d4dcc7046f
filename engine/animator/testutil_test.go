package animator

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/require"
)

// newRig returns an armature node owning hip (slot 0) with spine (slot 1) below it.
func newRig(t *testing.T) *model.Skeleton {
	t.Helper()
	skel, err := model.NewSkeleton([]model.Joint{
		{Name: "armature", BoneID: model.NoBone, ParentIndex: -1, Bindpose: mgl32.Ident4(), InverseBindOffset: mgl32.Ident4()},
		{Name: "hip", BoneID: 0, ParentIndex: 0, Bindpose: mgl32.Ident4(), InverseBindOffset: mgl32.Ident4()},
		{Name: "spine", BoneID: 1, ParentIndex: 1, Bindpose: mgl32.Translate3D(0, 1, 0), InverseBindOffset: mgl32.Translate3D(0, -1, 0)},
	})
	require.NoError(t, err)
	return skel
}

// positionClip returns a clip moving hip linearly between two positions.
func positionClip(name string, duration float32, from, to mgl32.Vec3) *model.AnimationClip {
	c := model.NewAnimationClip(name, name+".glb", 30)
	hip := model.NewBoneTrack("hip", mgl32.Ident4())
	hip.Positions.Set(0, from)
	hip.Positions.Set(duration, to)
	c.AddBone(hip)
	return c
}

func translation(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}
