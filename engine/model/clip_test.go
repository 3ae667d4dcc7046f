package model

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClipFindBoneUnknownName(t *testing.T) {
	c := NewAnimationClip("walk", "walk.fbx", 30)
	c.AddBone(twoKeyTrack())

	b, ok := c.FindBone("hip")
	require.True(t, ok)
	assert.Equal(t, "hip", b.Name)

	_, ok = c.FindBone("tail")
	assert.False(t, ok)
}

func TestClipDurationIsMaxLastKey(t *testing.T) {
	c := NewAnimationClip("walk", "", 30)
	assert.Equal(t, float32(0), c.Duration())

	a := NewBoneTrack("a", mgl32.Ident4())
	a.Positions.Set(12, mgl32.Vec3{})
	b := NewBoneTrack("b", mgl32.Ident4())
	b.Rotations.Set(30, mgl32.QuatIdent())
	c.AddBone(a)
	c.AddBone(b)

	assert.Equal(t, float32(30), c.Duration())
}

func TestAddAndReplaceBoneCreatesTrackFromBindpose(t *testing.T) {
	c := NewAnimationClip("pose", "", 30)
	bind := mgl32.Translate3D(0, 1, 0)
	c.SetBindpose("head", bind)

	c.AddAndReplaceBone("head", mgl32.Translate3D(0, 0, 4), 12)

	b, ok := c.FindBone("head")
	require.True(t, ok)
	assert.Equal(t, bind, b.Bindpose)
	assert.Equal(t, []float32{0, 12}, b.Times())
	assert.InDelta(t, 4, b.Sample(6).Translation[2], 1e-5)
}

func TestAddAndReplaceBoneUpdatesExistingTrack(t *testing.T) {
	c := NewAnimationClip("walk", "", 30)
	c.AddBone(twoKeyTrack())

	c.AddAndReplaceBone("hip", mgl32.Translate3D(0, 7, 0), 10)

	b, _ := c.FindBone("hip")
	assert.InDelta(t, 7, b.Sample(10).Translation[1], 1e-5)
	assert.Len(t, c.Bones(), 1)
}

func TestDeleteBoneKeyframe(t *testing.T) {
	c := NewAnimationClip("walk", "", 30)
	c.AddBone(twoKeyTrack())

	assert.True(t, c.DeleteBoneKeyframe("hip", 10))
	assert.False(t, c.DeleteBoneKeyframe("missing", 10))
	assert.Equal(t, float32(0), c.Duration())
}

func TestLibraryRegisterAssignsSequentialIDs(t *testing.T) {
	l := NewLibrary(nil)

	id0, dup0 := l.Register(NewAnimationClip("walk", "walk.fbx", 30))
	id1, dup1 := l.Register(NewAnimationClip("wave", "wave.fbx", 30))

	assert.Equal(t, 0, id0)
	assert.Equal(t, 1, id1)
	assert.False(t, dup0)
	assert.False(t, dup1)
}

func TestLibraryRegisterPreservesIDOnPathMatch(t *testing.T) {
	l := NewLibrary(nil)
	l.Register(NewAnimationClip("walk", "walk.fbx", 30))
	l.Register(NewAnimationClip("wave", "wave.fbx", 30))

	again := NewAnimationClip("walk v2", "walk.fbx", 30)
	id, dup := l.Register(again)

	assert.True(t, dup)
	assert.Equal(t, 0, id)
	assert.Equal(t, 0, again.ID)
	assert.Equal(t, 2, l.Len())

	stored, err := l.Clip(0)
	require.NoError(t, err)
	assert.Equal(t, "walk", stored.Name)
}

func TestLibraryLookupErrors(t *testing.T) {
	l := NewLibrary(nil)

	_, err := l.Clip(3)
	assert.True(t, errors.Is(err, ErrClipNotFound))

	_, err = l.ClipByPath("nope.fbx")
	assert.True(t, errors.Is(err, ErrClipNotFound))

	_, err = l.ClipByName("nope")
	assert.True(t, errors.Is(err, ErrClipNotFound))
}

func TestLibraryRemoveAndReuseAfterEmpty(t *testing.T) {
	l := NewLibrary(nil)
	id, _ := l.Register(NewAnimationClip("walk", "walk.fbx", 30))

	assert.True(t, l.Remove(id))
	assert.False(t, l.Remove(id))

	next, dup := l.Register(NewAnimationClip("walk", "walk.fbx", 30))
	assert.False(t, dup)
	assert.Equal(t, 0, next)
}
