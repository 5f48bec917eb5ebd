package shadow

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// SilhouetteExtractor finds the silhouette edges of a closed mesh as seen from a
// directional light.
type SilhouetteExtractor interface {
	// Extract clears the extractor's edge set and toggles the three edges of every
	// light-facing triangle. A triangle is light-facing when its unit normal
	// (v2-v1)x(v3-v1) has a negative dot product with lightDir. Zero-area triangles have
	// no normal and are never light-facing. Surviving edges keep the winding of the
	// light-facing triangle that owns them.
	//
	// On a watertight 2-manifold mesh every interior edge of the light-facing region is
	// toggled twice and cancels, leaving exactly the boundary between light-facing and
	// non-light-facing triangles. Other meshes produce a set that is not a true silhouette;
	// this is not reported as an error.
	//
	// Parameters:
	//   - indices: triangle list of the welded mesh
	//   - world: world-space positions addressed by indices
	//   - lightDir: the light vector in world space
	//
	// Returns:
	//   - *EdgeSet: the extractor's edge set, valid until the next Extract
	Extract(indices []uint32, world []mgl32.Vec3, lightDir mgl32.Vec3) *EdgeSet
}

type silhouetteExtractor struct {
	edges *EdgeSet
}

var _ SilhouetteExtractor = &silhouetteExtractor{}

// NewSilhouetteExtractor creates an extractor with room for capacity silhouette edges.
//
// Parameters:
//   - capacity: initial edge set capacity
//
// Returns:
//   - SilhouetteExtractor: the new extractor
func NewSilhouetteExtractor(capacity int) SilhouetteExtractor {
	return &silhouetteExtractor{edges: NewEdgeSet(capacity)}
}

func (s *silhouetteExtractor) Extract(indices []uint32, world []mgl32.Vec3, lightDir mgl32.Vec3) *EdgeSet {
	s.edges.Clear()
	for t := 0; t+2 < len(indices); t += 3 {
		i1, i2, i3 := indices[t], indices[t+1], indices[t+2]
		if !lightFacing(world[i1], world[i2], world[i3], lightDir) {
			continue
		}
		s.edges.Toggle(Edge{A: i1, B: i2})
		s.edges.Toggle(Edge{A: i2, B: i3})
		s.edges.Toggle(Edge{A: i3, B: i1})
	}
	return s.edges
}

// lightFacing reports whether the triangle (v1, v2, v3) faces the light.
func lightFacing(v1, v2, v3, lightDir mgl32.Vec3) bool {
	n := v2.Sub(v1).Cross(v3.Sub(v1))
	length := math32.Sqrt(n.Dot(n))
	if length == 0 {
		return false
	}
	return n.Mul(1/length).Dot(lightDir) < 0
}
