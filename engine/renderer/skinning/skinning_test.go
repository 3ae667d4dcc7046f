package skinning

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteLayout(t *testing.T) {
	pose := animator.NewPose()
	pose.Final[1] = mgl32.Translate3D(4, 5, 6)
	g := FromPose(pose)

	assert.Equal(t, PaletteSize, g.Size())
	data := g.Marshal()
	require.Len(t, data, model.MaxBones*64)

	// Column-major: the translation of slot 1 sits in floats 12..14 of the second matrix.
	var back GPUPalette
	require.NoError(t, back.Unmarshal(data))
	assert.Equal(t, float32(4), back.Bones[1][12])
	assert.Equal(t, mgl32.Translate3D(4, 5, 6), back.Matrix(1))
	assert.Equal(t, mgl32.Ident4(), back.Matrix(model.MaxBones-1))

	assert.Error(t, back.Unmarshal(data[:100]))
	assert.True(t, strings.Contains(GPUPaletteSource, "array<mat4x4<f32>, 128>"))
}

func TestMemorySinkKeepsLatestUpload(t *testing.T) {
	s := NewMemorySink()
	pose := animator.NewPose()

	require.NoError(t, s.Upload(3, pose))
	pose.Final[0] = mgl32.Translate3D(1, 0, 0)
	require.NoError(t, s.Upload(3, pose))

	g, ok := s.Palette(3)
	require.True(t, ok)
	assert.Equal(t, mgl32.Translate3D(1, 0, 0), g.Matrix(0))
	assert.Equal(t, 2, s.Uploads())

	s.Release(3)
	_, ok = s.Palette(3)
	assert.False(t, ok)
}
