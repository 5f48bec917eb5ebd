// Package mesh holds the triangle mesh representation consumed by the shadow pipeline,
// the position-keyed vertex welder, mesh sources (static and skinned) and a few
// primitive generators.
package mesh

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrIndexCount is returned when the index buffer length is not a multiple of three.
	ErrIndexCount = errors.New("mesh: index count is not a multiple of 3")

	// ErrIndexOutOfRange is returned when a triangle references a vertex that does not exist.
	ErrIndexOutOfRange = errors.New("mesh: index out of range")
)

// Mesh is an indexed triangle list. Every three consecutive entries of Indices form one
// triangle whose winding defines the outward normal (v2-v1)x(v3-v1).
type Mesh struct {
	Vertices []mgl32.Vec3
	Indices  []uint32
}

// TriangleCount returns the number of complete triangles in the index buffer.
//
// Returns:
//   - int: len(Indices) / 3
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Validate checks that the index buffer describes whole triangles and that every index
// references an existing vertex.
//
// Returns:
//   - error: ErrIndexCount or ErrIndexOutOfRange (wrapped with the offending position), or nil
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: got %d indices", ErrIndexCount, len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d] = %d, vertex count %d", ErrIndexOutOfRange, i, idx, n)
		}
	}
	return nil
}

// Clone returns a deep copy of the mesh.
//
// Returns:
//   - *Mesh: a mesh with its own vertex and index storage
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Vertices: append([]mgl32.Vec3(nil), m.Vertices...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
}
