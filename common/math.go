package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// KeyEpsilon is the per-axis tolerance used when deciding whether a captured pose differs from the
// value already evaluated from a curve.
const KeyEpsilon float32 = 1e-3

// --- Transform Types ---

// Transform represents a decomposed affine transform used for interpolation.
// Matrices are composed as T * R * S, column-major (OpenGL/WebGPU convention).
type Transform struct {
	// Translation is the position offset.
	Translation mgl32.Vec3

	// Rotation is the orientation as a unit quaternion.
	Rotation mgl32.Quat

	// Scale is the scale factor along each axis.
	Scale mgl32.Vec3
}

// IdentityTransform returns a Transform with zero translation, identity rotation and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Translation: mgl32.Vec3{0, 0, 0},
		Rotation:    mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
	}
}

// Mat4 recomposes the transform into a 4x4 matrix as translate * rotate * scale.
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func (t Transform) Mat4() mgl32.Mat4 {
	return Compose(t)
}

// --- Decomposition ---

// Decompose splits an affine matrix into translation, rotation and scale.
// The input is not modified; a reflected basis is folded into a negative X scale.
//
// Parameters:
//   - m: the affine matrix to decompose
//
// Returns:
//   - Transform: the decomposed translation, rotation and scale
func Decompose(m mgl32.Mat4) Transform {
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	scale := mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}
	if m.Mat3().Det() < 0 {
		scale[0] = -scale[0]
	}

	rot := mgl32.Ident4()
	if scale[0] != 0 {
		rot.SetCol(0, c0.Mul(1/scale[0]).Vec4(0))
	}
	if scale[1] != 0 {
		rot.SetCol(1, c1.Mul(1/scale[1]).Vec4(0))
	}
	if scale[2] != 0 {
		rot.SetCol(2, c2.Mul(1/scale[2]).Vec4(0))
	}

	return Transform{
		Translation: m.Col(3).Vec3(),
		Rotation:    mgl32.Mat4ToQuat(rot).Normalize(),
		Scale:       scale,
	}
}

// Compose builds translate(t) * rotate(r) * scale(s).
//
// Parameters:
//   - t: the transform to compose
//
// Returns:
//   - mgl32.Mat4: the composed matrix
func Compose(t Transform) mgl32.Mat4 {
	tr := mgl32.Translate3D(t.Translation[0], t.Translation[1], t.Translation[2])
	sc := mgl32.Scale3D(t.Scale[0], t.Scale[1], t.Scale[2])
	return tr.Mul4(t.Rotation.Normalize().Mat4()).Mul4(sc)
}

// --- Interpolation ---

// LerpVec3 linearly interpolates between a and b.
//
// Parameters:
//   - a: the start value
//   - b: the end value
//   - t: the interpolation amount, 0 returns a and 1 returns b
//
// Returns:
//   - mgl32.Vec3: the interpolated vector
func LerpVec3(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// SlerpShortest spherically interpolates between two rotations along the shortest arc.
// When the quaternions lie in opposite hemispheres b is negated first, so the result is the same
// as interpolating towards -b.
//
// Parameters:
//   - a: the start rotation
//   - b: the end rotation
//   - t: the interpolation amount
//
// Returns:
//   - mgl32.Quat: the normalized interpolated rotation
func SlerpShortest(a, b mgl32.Quat, t float32) mgl32.Quat {
	a, b = a.Normalize(), b.Normalize()
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	if 1-a.Dot(b) < 1e-6 {
		return mgl32.QuatNlerp(a, b, t)
	}
	return mgl32.QuatSlerp(a, b, t).Normalize()
}

// InterpolateTransform blends two decomposed transforms.
//
// Parameters:
//   - a: the start transform
//   - b: the end transform
//   - t: the interpolation amount
//
// Returns:
//   - Transform: the blended transform
func InterpolateTransform(a, b Transform, t float32) Transform {
	return Transform{
		Translation: LerpVec3(a.Translation, b.Translation, t),
		Rotation:    SlerpShortest(a.Rotation, b.Rotation, t),
		Scale:       LerpVec3(a.Scale, b.Scale, t),
	}
}

// Interpolate blends two affine matrices by decomposing both, mixing translation and scale,
// slerping rotation and recomposing.
//
// Parameters:
//   - a: the start matrix
//   - b: the end matrix
//   - t: the interpolation amount
//
// Returns:
//   - mgl32.Mat4: the blended matrix
func Interpolate(a, b mgl32.Mat4, t float32) mgl32.Mat4 {
	return Compose(InterpolateTransform(Decompose(a), Decompose(b), t))
}

// StripTranslation keeps only the upper 3x3 part of m, discarding translation.
//
// Parameters:
//   - m: the source matrix
//
// Returns:
//   - mgl32.Mat4: m without its translation column
func StripTranslation(m mgl32.Mat4) mgl32.Mat4 {
	return m.Mat3().Mat4()
}

// --- Comparison ---

// WithinEpsilon reports whether every component of a lies strictly within eps of b.
//
// Parameters:
//   - a: the first vector
//   - b: the second vector
//   - eps: the per-axis tolerance
//
// Returns:
//   - bool: true if all three axes are within tolerance
func WithinEpsilon(a, b mgl32.Vec3, eps float32) bool {
	for i := 0; i < 3; i++ {
		if !(b[i]-eps < a[i] && a[i] < b[i]+eps) {
			return false
		}
	}
	return true
}

// QuatAxes returns the vector part of q. Rotation keys are compared on x, y and z only.
func QuatAxes(q mgl32.Quat) mgl32.Vec3 {
	return q.V
}

// Fmod returns the floating point remainder of x / y using the sign of x, matching C fmod.
// A zero divisor returns x unchanged.
//
// Parameters:
//   - x: the dividend
//   - y: the divisor
//
// Returns:
//   - float32: the remainder
func Fmod(x, y float32) float32 {
	if y == 0 {
		return x
	}
	return float32(math.Mod(float64(x), float64(y)))
}
