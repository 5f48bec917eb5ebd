package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
)

// loaderBackend defines the generic interface for loading meshes from files or streams.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the triangle geometry of a file as one mesh.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *mesh.Mesh: the imported mesh
	//   - error: error if loading fails
	Load(path string) (*mesh.Mesh, error)

	// LoadReader imports the triangle geometry of a stream as one mesh.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data, false for text-based formats
	//
	// Returns:
	//   - *mesh.Mesh: the imported mesh
	//   - error: error if loading fails
	LoadReader(r io.Reader, isGLB bool) (*mesh.Mesh, error)
}
