package mesh

import "github.com/go-gl/mathgl/mgl32"

// WeldMap records how a mesh's vertices collapse when positions are merged.
type WeldMap struct {
	// Remap[i] is the welded index of original vertex i.
	Remap []uint32
	// Representatives[j] is the first original vertex that produced welded vertex j.
	Representatives []uint32
}

// NewWeldMap scans the vertices of m in order. The first occurrence of a position takes
// the next welded index and every later occurrence of the exact same position resolves
// to it. Positions compare with float32 equality, so +0 and -0 merge and NaN never does.
//
// Parameters:
//   - m: the mesh to analyze (not modified)
//
// Returns:
//   - *WeldMap: the remap table and the welded representatives
func NewWeldMap(m *Mesh) *WeldMap {
	wm := &WeldMap{
		Remap:           make([]uint32, len(m.Vertices)),
		Representatives: make([]uint32, 0, len(m.Vertices)),
	}
	seen := make(map[mgl32.Vec3]uint32, len(m.Vertices))
	for i, v := range m.Vertices {
		idx, ok := seen[v]
		if !ok {
			idx = uint32(len(wm.Representatives))
			seen[v] = idx
			wm.Representatives = append(wm.Representatives, uint32(i))
		}
		wm.Remap[i] = idx
	}
	return wm
}

// VertexCount returns the number of vertices after welding.
func (wm *WeldMap) VertexCount() int {
	return len(wm.Representatives)
}

// Apply collapses src, a vertex buffer laid out like the mesh the map was built from,
// into dst using the recorded representatives. dst is grown or truncated to
// VertexCount and returned.
//
// Parameters:
//   - dst: destination buffer, reused when it has enough capacity
//   - src: unwelded vertex buffer with at least as many entries as the original mesh
//
// Returns:
//   - []mgl32.Vec3: the welded vertex buffer
func (wm *WeldMap) Apply(dst, src []mgl32.Vec3) []mgl32.Vec3 {
	dst = dst[:0]
	for _, r := range wm.Representatives {
		dst = append(dst, src[r])
	}
	return dst
}

// RemapIndices rewrites indices through the weld map into dst and returns it.
func (wm *WeldMap) RemapIndices(dst, indices []uint32) []uint32 {
	dst = dst[:0]
	for _, idx := range indices {
		dst = append(dst, wm.Remap[idx])
	}
	return dst
}

// Weld merges vertices that share the exact same position and rewrites the index buffer
// accordingly. Winding and triangle count are preserved, the first occurrence of each
// position keeps its relative order, and welding an already welded mesh returns an
// identical copy. The input is not modified.
//
// Parameters:
//   - m: the mesh to weld
//
// Returns:
//   - *Mesh: a new welded mesh
func Weld(m *Mesh) *Mesh {
	wm := NewWeldMap(m)
	return &Mesh{
		Vertices: wm.Apply(make([]mgl32.Vec3, 0, wm.VertexCount()), m.Vertices),
		Indices:  wm.RemapIndices(make([]uint32, 0, len(m.Indices)), m.Indices),
	}
}
