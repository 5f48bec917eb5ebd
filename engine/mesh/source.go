package mesh

import "github.com/go-gl/mathgl/mgl32"

// BakeFunc produces the current deformed positions of a skinned mesh.
// The result must have the same layout as bind (one entry per bind vertex).
type BakeFunc func(dst, bind []mgl32.Vec3) []mgl32.Vec3

// Source provides the local-space geometry of a shadow caster.
//
// Static sources return the same positions forever. Skinned sources deform each frame and
// must be re-baked before every evaluation.
type Source interface {
	// Mesh returns the rest (bind pose) mesh. Its topology never changes.
	//
	// Returns:
	//   - *Mesh: the rest mesh, owned by the source
	Mesh() *Mesh

	// Skinned reports whether the positions change over time and must be re-baked.
	//
	// Returns:
	//   - bool: true for skinned sources
	Skinned() bool

	// Bake writes the current local-space positions into dst, laid out like Mesh().Vertices.
	//
	// Parameters:
	//   - dst: destination buffer, reused when it has enough capacity
	//
	// Returns:
	//   - []mgl32.Vec3: the baked positions
	Bake(dst []mgl32.Vec3) []mgl32.Vec3
}

type staticSource struct {
	mesh *Mesh
}

type skinnedSource struct {
	mesh *Mesh
	bake BakeFunc
}

var _ Source = &staticSource{}
var _ Source = &skinnedSource{}

// NewStaticSource wraps a mesh whose positions never change.
//
// Parameters:
//   - m: the mesh (must not be nil)
//
// Returns:
//   - Source: a static source
func NewStaticSource(m *Mesh) Source {
	if m == nil {
		panic("mesh: NewStaticSource requires a non-nil mesh")
	}
	return &staticSource{mesh: m}
}

// NewSkinnedSource wraps a deforming mesh. bake is called on every Bake with the bind
// positions of m and must return the deformed positions in the same layout.
//
// Parameters:
//   - m: the bind pose mesh (must not be nil)
//   - bake: the deformation callback (must not be nil)
//
// Returns:
//   - Source: a skinned source
func NewSkinnedSource(m *Mesh, bake BakeFunc) Source {
	if m == nil || bake == nil {
		panic("mesh: NewSkinnedSource requires a non-nil mesh and bake function")
	}
	return &skinnedSource{mesh: m, bake: bake}
}

func (s *staticSource) Mesh() *Mesh {
	return s.mesh
}

func (s *staticSource) Skinned() bool {
	return false
}

func (s *staticSource) Bake(dst []mgl32.Vec3) []mgl32.Vec3 {
	return append(dst[:0], s.mesh.Vertices...)
}

func (s *skinnedSource) Mesh() *Mesh {
	return s.mesh
}

func (s *skinnedSource) Skinned() bool {
	return true
}

func (s *skinnedSource) Bake(dst []mgl32.Vec3) []mgl32.Vec3 {
	return s.bake(dst[:0], s.mesh.Vertices)
}
