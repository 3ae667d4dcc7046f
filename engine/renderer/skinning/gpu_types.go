package skinning

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// GPUPaletteSource is the canonical WGSL definition of the Palette struct.
// Matches GPUPalette layout exactly (8192 bytes, std430 aligned).
//
//go:embed assets/palette.wgsl
var GPUPaletteSource string

// PaletteSize is the byte size of one marshaled palette.
const PaletteSize = model.MaxBones * 64

// GPUPalette is the GPU-aligned representation of one skeleton's skinning matrices.
// Size: 8192 bytes (128 column-major mat4x4<f32>).
type GPUPalette struct {
	Bones [model.MaxBones][16]float32
}

// FromPose copies the final skinning matrices of a pose.
//
// Parameters:
//   - pose: the resolved pose
//
// Returns:
//   - GPUPalette: the palette
func FromPose(pose *animator.Pose) GPUPalette {
	var g GPUPalette
	for i, m := range pose.Final {
		g.Bones[i] = [16]float32(m)
	}
	return g
}

// Size returns the size of the GPUPalette struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUPalette) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUPalette struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 8192-byte buffer ready for GPU upload.
func (g *GPUPalette) Marshal() []byte {
	buf := make([]byte, PaletteSize)
	g.MarshalInto(buf)
	return buf
}

// MarshalInto writes the palette into buf, which must hold at least PaletteSize bytes.
// Reusing one staging buffer per frame avoids a heap allocation per upload.
func (g *GPUPalette) MarshalInto(buf []byte) {
	_ = buf[PaletteSize-1]
	for b := range g.Bones {
		base := b * 64
		for i := range 16 {
			binary.LittleEndian.PutUint32(buf[base+i*4:base+(i+1)*4], math.Float32bits(g.Bones[b][i]))
		}
	}
}

// Unmarshal reads a palette written by Marshal.
//
// Parameters:
//   - data: at least PaletteSize bytes
//
// Returns:
//   - error: an error if data is too short
func (g *GPUPalette) Unmarshal(data []byte) error {
	if len(data) < PaletteSize {
		return fmt.Errorf("palette needs %d bytes, got %d", PaletteSize, len(data))
	}
	for b := range g.Bones {
		base := b * 64
		for i := range 16 {
			g.Bones[b][i] = math.Float32frombits(binary.LittleEndian.Uint32(data[base+i*4 : base+(i+1)*4]))
		}
	}
	return nil
}

// Matrix returns bone slot i as a matrix.
func (g *GPUPalette) Matrix(i int) mgl32.Mat4 {
	return mgl32.Mat4(g.Bones[i])
}
