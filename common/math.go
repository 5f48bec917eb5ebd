package common

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// BuildModelMatrix constructs a local-to-world matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll), so the full product is T * Ry * Rx * Rz * S.
//
// Parameters:
//   - pos: translation in world space
//   - rot: rotation angles in radians around each axis
//   - scale: scale factors along each axis
//
// Returns:
//   - mgl32.Mat4: the column-major model matrix
func BuildModelMatrix(pos, rot, scale mgl32.Vec3) mgl32.Mat4 {
	r := mgl32.HomogRotate3DY(rot[1]).
		Mul4(mgl32.HomogRotate3DX(rot[0])).
		Mul4(mgl32.HomogRotate3DZ(rot[2]))
	return mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

// Invert returns the inverse of m.
// A singular matrix (determinant exactly zero) yields the zero matrix and false.
//
// Parameters:
//   - m: the matrix to invert
//
// Returns:
//   - mgl32.Mat4: the inverse, or the zero matrix when m is singular
//   - bool: true if m was invertible
func Invert(m mgl32.Mat4) (mgl32.Mat4, bool) {
	if m.Det() == 0 {
		return mgl32.Mat4{}, false
	}
	return m.Inv(), true
}

// TransformPoint applies an affine 4x4 matrix to a point (w = 1) and returns the
// xyz part of the result. No perspective divide is performed.
//
// Parameters:
//   - m: column-major transform
//   - p: point to transform
//
// Returns:
//   - mgl32.Vec3: the transformed point
func TransformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
	}
}
