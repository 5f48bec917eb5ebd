package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// cubeCorners lists the eight corners of a unit cube centered at the origin, scaled by the
// half extent at construction.
var cubeCorners = [8]mgl32.Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// cubeFaces holds two counter-clockwise (outward) triangles per face in +Z, -Z, +X, -X,
// +Y, -Y order.
var cubeFaces = [6][6]uint32{
	{4, 5, 6, 4, 6, 7},
	{1, 0, 3, 1, 3, 2},
	{5, 1, 2, 5, 2, 6},
	{0, 4, 7, 0, 7, 3},
	{7, 6, 2, 7, 2, 3},
	{0, 1, 5, 0, 5, 4},
}

// NewCube builds a closed cube with eight shared corners and twelve outward-facing triangles.
//
// Parameters:
//   - half: half the edge length
//
// Returns:
//   - *Mesh: the cube mesh
func NewCube(half float32) *Mesh {
	m := &Mesh{
		Vertices: make([]mgl32.Vec3, 0, len(cubeCorners)),
		Indices:  make([]uint32, 0, 36),
	}
	for _, c := range cubeCorners {
		m.Vertices = append(m.Vertices, c.Mul(half))
	}
	for _, f := range cubeFaces {
		m.Indices = append(m.Indices, f[:]...)
	}
	return m
}

// NewSplitCube builds the same cube as NewCube but with four private vertices per face, the
// layout an exporter produces when faces carry their own normals. Welding it yields the
// eight-corner cube.
//
// Parameters:
//   - half: half the edge length
//
// Returns:
//   - *Mesh: the split cube mesh (24 vertices, 36 indices)
func NewSplitCube(half float32) *Mesh {
	m := &Mesh{
		Vertices: make([]mgl32.Vec3, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range cubeFaces {
		local := make(map[uint32]uint32, 4)
		for _, corner := range f {
			idx, ok := local[corner]
			if !ok {
				idx = uint32(len(m.Vertices))
				local[corner] = idx
				m.Vertices = append(m.Vertices, cubeCorners[corner].Mul(half))
			}
			m.Indices = append(m.Indices, idx)
		}
	}
	return m
}

// NewUVSphere builds a closed latitude/longitude sphere with a single vertex at each pole and
// no seam duplicates, so the result is already a watertight 2-manifold.
//
// Parameters:
//   - radius: sphere radius
//   - rings: number of latitude bands (clamped to at least 2)
//   - slices: number of longitude segments (clamped to at least 3)
//
// Returns:
//   - *Mesh: the sphere mesh
func NewUVSphere(radius float32, rings, slices int) *Mesh {
	rings = max(rings, 2)
	slices = max(slices, 3)

	m := &Mesh{
		Vertices: make([]mgl32.Vec3, 0, (rings-1)*slices+2),
		Indices:  make([]uint32, 0, 6*slices*(rings-1)),
	}

	m.Vertices = append(m.Vertices, mgl32.Vec3{0, radius, 0})
	for i := 1; i < rings; i++ {
		phi := math32.Pi * float32(i) / float32(rings)
		y := radius * math32.Cos(phi)
		r := radius * math32.Sin(phi)
		for j := 0; j < slices; j++ {
			theta := 2 * math32.Pi * float32(j) / float32(slices)
			m.Vertices = append(m.Vertices, mgl32.Vec3{r * math32.Cos(theta), y, r * math32.Sin(theta)})
		}
	}
	bottom := uint32(len(m.Vertices))
	m.Vertices = append(m.Vertices, mgl32.Vec3{0, -radius, 0})

	ring := func(i, j int) uint32 {
		return uint32(1 + (i-1)*slices + j%slices)
	}

	for j := 0; j < slices; j++ {
		m.Indices = append(m.Indices, 0, ring(1, j+1), ring(1, j))
	}
	for i := 1; i < rings-1; i++ {
		for j := 0; j < slices; j++ {
			p00, p01 := ring(i, j), ring(i, j+1)
			p10, p11 := ring(i+1, j), ring(i+1, j+1)
			m.Indices = append(m.Indices, p00, p01, p10, p01, p11, p10)
		}
	}
	last := rings - 1
	for j := 0; j < slices; j++ {
		m.Indices = append(m.Indices, ring(last, j), ring(last, j+1), bottom)
	}
	return m
}
