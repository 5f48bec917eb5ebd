package loader

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrNoTriangles is returned when a document contains no triangle geometry.
var ErrNoTriangles = errors.New("glTF document contains no triangle primitives")

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor flattens the geometry of a parsed glTF document into a single mesh.
type gltfMeshExtractor interface {
	// ExtractMesh extracts the triangle primitives of a single glTF mesh in its own space.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - *mesh.Mesh: the merged primitives
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) (*mesh.Mesh, error)

	// ExtractScene walks the default scene (or the first scene when none is marked) and merges
	// every triangle primitive into one mesh with node transforms baked into the positions.
	// Documents without scenes merge every mesh untransformed.
	//
	// Returns:
	//   - *mesh.Mesh: the merged mesh
	//   - error: ErrNoTriangles when nothing could be merged, or an accessor error
	ExtractScene() (*mesh.Mesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*mesh.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	out := &mesh.Mesh{}
	if err := e.appendMesh(out, meshIndex, mgl32.Ident4()); err != nil {
		return nil, err
	}
	if len(out.Indices) == 0 {
		return nil, ErrNoTriangles
	}
	return out, nil
}

func (e *gltfMeshExtractorImpl) ExtractScene() (*mesh.Mesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	out := &mesh.Mesh{}
	if len(doc.Scenes) == 0 {
		for i := range doc.Meshes {
			if err := e.appendMesh(out, i, mgl32.Ident4()); err != nil {
				return nil, err
			}
		}
	} else {
		sceneIndex := 0
		if doc.Scene != nil {
			sceneIndex = *doc.Scene
		}
		if sceneIndex < 0 || sceneIndex >= len(doc.Scenes) {
			return nil, fmt.Errorf("scene index %d out of range", sceneIndex)
		}

		visited := make([]bool, len(doc.Nodes))
		for _, root := range doc.Scenes[sceneIndex].Nodes {
			if err := e.appendNode(out, root, mgl32.Ident4(), visited); err != nil {
				return nil, err
			}
		}
	}

	if len(out.Indices) == 0 {
		return nil, ErrNoTriangles
	}
	return out, nil
}

// appendNode merges the node's mesh under parent·local and recurses into its children.
// Each node is visited at most once, so malformed cyclic hierarchies terminate.
func (e *gltfMeshExtractorImpl) appendNode(out *mesh.Mesh, nodeIndex int, parent mgl32.Mat4, visited []bool) error {
	doc := e.parser.Document()
	if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
		return fmt.Errorf("node index %d out of range", nodeIndex)
	}
	if visited[nodeIndex] {
		return nil
	}
	visited[nodeIndex] = true

	node := &doc.Nodes[nodeIndex]
	world := parent.Mul4(gltfNodeMatrix(node))

	if node.Mesh != nil {
		if err := e.appendMesh(out, *node.Mesh, world); err != nil {
			return fmt.Errorf("node %d: %w", nodeIndex, err)
		}
	}
	for _, child := range node.Children {
		if err := e.appendNode(out, child, world, visited); err != nil {
			return err
		}
	}
	return nil
}

// appendMesh appends every triangle primitive of a mesh to out, transforming positions by m.
// A transform with a negative determinant mirrors the geometry, so the winding is reversed to
// keep normals pointing outward.
func (e *gltfMeshExtractorImpl) appendMesh(out *mesh.Mesh, meshIndex int, m mgl32.Mat4) error {
	doc := e.parser.Document()
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", meshIndex)
	}
	flip := m.Det() < 0

	for primIdx := range doc.Meshes[meshIndex].Primitives {
		prim := &doc.Meshes[meshIndex].Primitives[primIdx]
		if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
			continue
		}

		posAccessor, ok := prim.Attributes["POSITION"]
		if !ok {
			return fmt.Errorf("mesh %d primitive %d: missing POSITION attribute", meshIndex, primIdx)
		}
		positions, err := e.parser.ReadPositions(posAccessor)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d positions: %w", meshIndex, primIdx, err)
		}

		var indices []uint32
		if prim.Indices != nil {
			indices, err = e.parser.ReadIndices(*prim.Indices)
			if err != nil {
				return fmt.Errorf("mesh %d primitive %d indices: %w", meshIndex, primIdx, err)
			}
		} else {
			indices = make([]uint32, len(positions))
			for i := range indices {
				indices[i] = uint32(i)
			}
		}
		if len(indices)%3 != 0 {
			return fmt.Errorf("mesh %d primitive %d: %w: got %d indices", meshIndex, primIdx, mesh.ErrIndexCount, len(indices))
		}

		base := uint32(len(out.Vertices))
		for _, p := range positions {
			out.Vertices = append(out.Vertices, m.Mul4x1(p.Vec4(1)).Vec3())
		}
		for t := 0; t < len(indices); t += 3 {
			i1, i2, i3 := indices[t], indices[t+1], indices[t+2]
			if flip {
				i2, i3 = i3, i2
			}
			for _, idx := range [3]uint32{i1, i2, i3} {
				if int(idx) >= len(positions) {
					return fmt.Errorf("mesh %d primitive %d: %w: index %d, vertex count %d", meshIndex, primIdx, mesh.ErrIndexOutOfRange, idx, len(positions))
				}
			}
			out.Indices = append(out.Indices, base+i1, base+i2, base+i3)
		}
	}
	return nil
}

// gltfNodeMatrix returns the node's local transform: its matrix when present, else T·R·S.
func gltfNodeMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}

	m := mgl32.Ident4()
	if t := node.Translation; t != nil {
		m = m.Mul4(mgl32.Translate3D(t[0], t[1], t[2]))
	}
	if r := node.Rotation; r != nil {
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if s := node.Scale; s != nil {
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}
