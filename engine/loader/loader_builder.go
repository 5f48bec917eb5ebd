package loader

import "github.com/Carmen-Shannon/oxy-shadow/engine/mesh"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithMesh is an option builder that pre-populates the mesh cache, e.g. with a procedural
// primitive that should be reachable by name alongside loaded files. The cache keeps its
// own copy, so later edits to m do not reach it. A nil mesh is ignored.
//
// Parameters:
//   - key: the cache key for the mesh
//   - m: the mesh to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the mesh option to a loader
func WithMesh(key string, m *mesh.Mesh) LoaderBuilderOption {
	return func(l *loader) {
		if m == nil {
			return
		}
		l.meshCache[key] = m.Clone()
	}
}
