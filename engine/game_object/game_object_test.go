package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestNewGameObjectDefaults(t *testing.T) {
	obj := NewGameObject(WithName("hero"))

	assert.Equal(t, 0, obj.ID())
	assert.Equal(t, "hero", obj.Name())
	assert.Equal(t, KindActor, obj.Kind())
	assert.True(t, obj.Enabled())
	assert.Nil(t, obj.Skeleton())
	assert.Nil(t, obj.Clip())
	assert.Equal(t, mgl32.Ident4(), obj.Local())
}

func TestGameObjectOptionsAndSetters(t *testing.T) {
	clip := model.NewAnimationClip("cam", "", 0)
	obj := NewGameObject(
		WithID(7),
		WithName("cam"),
		WithKind(KindCamera),
		WithEnabled(false),
		WithClip(clip),
		WithLocal(mgl32.Translate3D(1, 2, 3)),
	)

	assert.Equal(t, 7, obj.ID())
	assert.Equal(t, KindCamera, obj.Kind())
	assert.False(t, obj.Enabled())
	assert.Same(t, clip, obj.Clip())
	assert.Equal(t, mgl32.Vec4{1, 2, 3, 1}, obj.Local().Col(3))

	obj.SetID(9)
	obj.SetEnabled(true)
	obj.SetClip(nil)
	obj.SetLocal(mgl32.Ident4())
	assert.Equal(t, 9, obj.ID())
	assert.True(t, obj.Enabled())
	assert.Nil(t, obj.Clip())
	assert.Equal(t, mgl32.Ident4(), obj.Local())
}

func TestKindString(t *testing.T) {
	tests := map[Kind]string{
		KindActor:  "actor",
		KindCamera: "camera",
		KindLight:  "light",
		KindMesh:   "mesh",
		KindOther:  "other",
		Kind(42):   "other",
	}
	for kind, want := range tests {
		assert.Equal(t, want, kind.String())
	}
}
