package shadow

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildVolume runs extraction and extrusion for m placed by localToWorld.
func buildVolume(m *mesh.Mesh, localToWorld mgl32.Mat4, lightDir mgl32.Vec3, distance float32) (*EdgeSet, *Volume) {
	world := NewTransformer(nil, 0).Transform(nil, m.Vertices, localToWorld)
	edges := NewSilhouetteExtractor(0).Extract(m.Indices, world, lightDir)
	vol := NewVolumeBuilder(len(m.Vertices), edges.Len()).Build(VolumeInput{
		Edges:           edges,
		Local:           m.Vertices,
		World:           world,
		LightDir:        lightDir,
		LocalToWorld:    localToWorld,
		WorldToLocal:    localToWorld.Inv(),
		ExtrudeDistance: distance,
		OffsetScale:     1,
	})
	return edges, vol
}

// assertClosed checks that every directed edge of the volume is matched by its reverse, which
// holds for a closed, consistently wound surface.
func assertClosed(t *testing.T, vol *Volume) {
	t.Helper()
	count := make(map[Edge]int)
	for i := 0; i < len(vol.Indices); i += 3 {
		a, b, c := vol.Indices[i], vol.Indices[i+1], vol.Indices[i+2]
		count[Edge{a, b}]++
		count[Edge{b, c}]++
		count[Edge{c, a}]++
	}
	for e, n := range count {
		assert.Equal(t, n, count[Edge{e.B, e.A}], "edge %v", e)
	}
}

func distinctEndpoints(edges *EdgeSet) int {
	seen := make(map[uint32]struct{})
	for _, e := range edges.Edges() {
		seen[e.A] = struct{}{}
		seen[e.B] = struct{}{}
	}
	return len(seen)
}

func TestBuildCube(t *testing.T) {
	cube := mesh.NewCube(1)
	edges, vol := buildVolume(cube, mgl32.Ident4(), mgl32.Vec3{0, 1, 0}, 1)

	require.Equal(t, 4, edges.Len())
	assert.Len(t, vol.Vertices, 14)
	assert.Equal(t, 16, vol.TriangleCount())
	assert.Equal(t, cube.Vertices, vol.Vertices[:8])
	assert.InDeltaSlice(t, []float32{0, -1, 0}, vol.Vertices[8][:], 1e-6, "far apex")
	assert.InDeltaSlice(t, []float32{0, 0, 0}, vol.Vertices[9][:], 1e-6, "near apex")

	for i, e := range edges.Edges() {
		o1, o2 := e.A, e.B
		tri := vol.Indices[12*i : 12*i+12]
		e1, e2 := tri[5], tri[8]
		assert.Equal(t, []uint32{o2, o1, 9, o1, o2, e1, e1, o2, e2, e1, e2, 8}, tri)
		want1 := cube.Vertices[o1].Sub(mgl32.Vec3{0, 1, 0})
		want2 := cube.Vertices[o2].Sub(mgl32.Vec3{0, 1, 0})
		assert.InDeltaSlice(t, want1[:], vol.Vertices[e1][:], 1e-6)
		assert.InDeltaSlice(t, want2[:], vol.Vertices[e2][:], 1e-6)
	}
	assertClosed(t, vol)
}

func TestBuildCounts(t *testing.T) {
	sphere := mesh.Weld(mesh.NewUVSphere(2, 10, 16))
	m := mgl32.Translate3D(4, -2, 1).Mul4(mgl32.HomogRotate3DX(0.4)).Mul4(mgl32.Scale3D(1.5, 1.5, 1.5))

	for _, dir := range lightDirections {
		edges, vol := buildVolume(sphere, m, dir.Normalize(), 5)

		assert.Len(t, vol.Vertices, len(sphere.Vertices)+2+distinctEndpoints(edges))
		assert.Len(t, vol.Indices, 12*edges.Len())
		assertClosed(t, vol)
	}
}

func TestBuildExtrudesInWorldSpace(t *testing.T) {
	cube := mesh.NewCube(1)
	// scaled by 2 and shifted, an extrusion of 4 world units is 2 local units
	m := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2))
	edges, vol := buildVolume(cube, m, mgl32.Vec3{0, 1, 0}, 4)

	require.Equal(t, 4, edges.Len())
	for _, v := range vol.Vertices[10:] {
		assert.InDelta(t, -3, v.Y(), 1e-5)
	}
	assert.InDeltaSlice(t, []float32{0, -2, 0}, vol.Vertices[8][:], 1e-5)
}

func TestBuildEmpty(t *testing.T) {
	cube := mesh.NewCube(1)
	b := NewVolumeBuilder(len(cube.Vertices), 0)
	vol := b.Build(VolumeInput{
		Edges:        NewEdgeSet(0),
		Local:        cube.Vertices,
		World:        cube.Vertices,
		LightDir:     mgl32.Vec3{0, 1, 0},
		LocalToWorld: mgl32.Ident4(),
		WorldToLocal: mgl32.Ident4(),
		OffsetScale:  0.98,
	})

	assert.True(t, vol.Empty())
	assert.Len(t, vol.Vertices, len(cube.Vertices)+2)
	assert.Empty(t, vol.IndexData())
	assert.Equal(t, float32(0.98), vol.OffsetScale)
}

func TestBuildReusesBuffers(t *testing.T) {
	cube := mesh.NewCube(1)
	edges := NewSilhouetteExtractor(0).Extract(cube.Indices, cube.Vertices, mgl32.Vec3{0, 1, 0})
	in := VolumeInput{
		Edges:           edges,
		Local:           cube.Vertices,
		World:           cube.Vertices,
		LightDir:        mgl32.Vec3{0, 1, 0},
		LocalToWorld:    mgl32.Ident4(),
		WorldToLocal:    mgl32.Ident4(),
		ExtrudeDistance: 1,
	}

	b := NewVolumeBuilder(len(cube.Vertices), edges.Len())
	first := b.Build(in)
	firstIndices := append([]uint32(nil), first.Indices...)
	second := b.Build(in)
	assert.Same(t, first, second)
	assert.Equal(t, firstIndices, second.Indices)

	b.Release()
	third := b.Build(in)
	assert.NotSame(t, first, third)
	assert.Equal(t, firstIndices, third.Indices)
}

func TestVolumeByteViews(t *testing.T) {
	vol := &Volume{
		Vertices: []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}},
		Indices:  []uint32{0, 1, 0},
	}
	assert.Len(t, vol.VertexData(), 2*12)
	assert.Len(t, vol.IndexData(), 3*4)
	assert.False(t, vol.Empty())
	assert.Equal(t, 1, vol.TriangleCount())
}
