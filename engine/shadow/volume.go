package shadow

import (
	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Volume is a closed shadow volume mesh in the caster's local space.
//
// The first len(local) vertices are the caster's welded local positions, followed by the far
// apex, the near apex and one extruded copy of every silhouette endpoint. A Volume returned
// by a caster stays valid until the caster's next Evaluate or Dispose.
type Volume struct {
	Vertices []mgl32.Vec3
	Indices  []uint32

	// OffsetScale is the uniform scale the renderer applies to the volume to push it slightly
	// off the caster's surface.
	OffsetScale float32
}

// Empty reports whether the volume has no triangles.
func (v *Volume) Empty() bool {
	return len(v.Indices) == 0
}

// TriangleCount returns the number of triangles in the volume.
func (v *Volume) TriangleCount() int {
	return len(v.Indices) / 3
}

// VertexData returns the vertex buffer as tightly packed float32 xyz triples, ready for a GPU
// upload. The bytes alias Vertices.
//
// Returns:
//   - []byte: a byte view over Vertices
func (v *Volume) VertexData() []byte {
	return common.SliceToBytes(v.Vertices)
}

// IndexData returns the index buffer as little-endian uint32 values. The bytes alias Indices.
//
// Returns:
//   - []byte: a byte view over Indices
func (v *Volume) IndexData() []byte {
	return common.SliceToBytes(v.Indices)
}

// VolumeInput bundles everything the builder needs for one frame.
type VolumeInput struct {
	// Edges is the silhouette edge set produced by the extractor.
	Edges *EdgeSet
	// Local holds the welded local-space positions. Edge indices address this slice.
	Local []mgl32.Vec3
	// World holds Local transformed by LocalToWorld.
	World []mgl32.Vec3
	// LightDir is the same light vector given to the extractor.
	LightDir mgl32.Vec3

	LocalToWorld mgl32.Mat4
	WorldToLocal mgl32.Mat4

	// ExtrudeDistance is how far, in world units, silhouette vertices are pushed away from
	// the light. It is not validated.
	ExtrudeDistance float32
	OffsetScale     float32
}

// VolumeBuilder extrudes a silhouette edge set into a closed shadow volume.
type VolumeBuilder interface {
	// Build assembles the volume for one frame into the builder's retained buffers:
	//
	//  1. the output starts with the local positions, then the far apex
	//     W2L(L2W(0) - lightDir*d) and the near apex W2L(L2W(0));
	//  2. every silhouette endpoint not yet extruded gets W2L(world[i] - lightDir*d) appended;
	//  3. every edge (o1, o2) with extrusions (e1, e2) adds the triangles (o2, o1, nearApex),
	//     (o1, o2, e1), (e1, o2, e2) and (e1, e2, farApex).
	//
	// An empty edge set yields a volume with no triangles.
	//
	// Parameters:
	//   - in: the frame's inputs
	//
	// Returns:
	//   - *Volume: the builder's volume, valid until the next Build or Release
	Build(in VolumeInput) *Volume

	// Release drops the retained buffers.
	Release()
}

type volumeBuilder struct {
	volume   *Volume
	extruded map[uint32]uint32
}

var _ VolumeBuilder = &volumeBuilder{}

// NewVolumeBuilder creates a builder with storage reserved for a mesh of vertexCount welded
// vertices and up to edgeCapacity silhouette edges.
//
// Parameters:
//   - vertexCount: welded vertex count of the caster
//   - edgeCapacity: expected number of silhouette edges
//
// Returns:
//   - VolumeBuilder: the new builder
func NewVolumeBuilder(vertexCount, edgeCapacity int) VolumeBuilder {
	b := &volumeBuilder{}
	b.reserve(vertexCount, edgeCapacity)
	return b
}

func (b *volumeBuilder) reserve(vertexCount, edgeCapacity int) {
	b.volume = &Volume{
		Vertices: make([]mgl32.Vec3, 0, vertexCount+2+2*edgeCapacity),
		Indices:  make([]uint32, 0, 12*edgeCapacity),
	}
	b.extruded = make(map[uint32]uint32, 2*edgeCapacity)
}

func (b *volumeBuilder) Release() {
	b.volume = nil
	b.extruded = nil
}

func (b *volumeBuilder) Build(in VolumeInput) *Volume {
	if b.volume == nil {
		b.reserve(len(in.Local), in.Edges.Len())
	}
	vol := b.volume
	clear(b.extruded)
	vol.Vertices = append(vol.Vertices[:0], in.Local...)
	vol.Indices = vol.Indices[:0]
	vol.OffsetScale = in.OffsetScale

	push := in.LightDir.Mul(-in.ExtrudeDistance)
	origin := common.TransformPoint(in.LocalToWorld, mgl32.Vec3{})

	farApex := uint32(len(vol.Vertices))
	vol.Vertices = append(vol.Vertices, common.TransformPoint(in.WorldToLocal, origin.Add(push)))
	nearApex := uint32(len(vol.Vertices))
	vol.Vertices = append(vol.Vertices, common.TransformPoint(in.WorldToLocal, origin))

	edges := in.Edges.Edges()
	for _, e := range edges {
		for _, idx := range [2]uint32{e.A, e.B} {
			if _, ok := b.extruded[idx]; ok {
				continue
			}
			b.extruded[idx] = uint32(len(vol.Vertices))
			vol.Vertices = append(vol.Vertices, common.TransformPoint(in.WorldToLocal, in.World[idx].Add(push)))
		}
	}

	for _, e := range edges {
		o1, o2 := e.A, e.B
		e1, e2 := b.extruded[o1], b.extruded[o2]
		vol.Indices = append(vol.Indices,
			o2, o1, nearApex,
			o1, o2, e1,
			e1, o2, e2,
			e1, e2, farApex,
		)
	}
	return vol
}
