// Package loader imports caster geometry from glTF 2.0 (.gltf) and GLB (.glb) files.
//
// Only the data a shadow caster needs survives the import: the POSITION attribute and the
// triangle indices of every primitive in the default scene, with node transforms baked in.
// Materials, skins and animations are ignored.
package loader

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
)

// ErrUnsupportedFormat is returned by Load for file extensions no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	meshCache map[string]*mesh.Mesh

	backend loaderBackend
}

// Loader defines the public-facing interface for loading and caching caster meshes.
// It abstracts the file format behind a backend and keeps every loaded mesh by name.
// Cached meshes are shared; callers that need to edit one should Clone it first.
type Loader interface {
	// Load imports a model file and caches the result by path.
	// If the path is already cached, the cached mesh is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - *mesh.Mesh: the loaded mesh
	//   - error: ErrUnsupportedFormat, ErrNoTriangles or a parse error
	Load(path string) (*mesh.Mesh, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded mesh
	//   - r: the reader providing model data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *mesh.Mesh: the loaded mesh
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, isGLB bool) (*mesh.Mesh, error)

	// LoadSource loads a mesh like Load and wraps it as a static mesh.Source for a caster.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - mesh.Source: a static source over the loaded mesh
	//   - error: error if loading fails
	LoadSource(path string) (mesh.Source, error)

	// Get retrieves a cached mesh by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *mesh.Mesh: the cached mesh or nil
	Get(name string) *mesh.Mesh

	// Meshes returns a copy of the cache map.
	//
	// Returns:
	//   - map[string]*mesh.Mesh: all cached meshes keyed by name
	Meshes() map[string]*mesh.Mesh
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		meshCache: make(map[string]*mesh.Mesh),
	}

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend()
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (*mesh.Mesh, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	m, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.store(path, m), nil
}

func (l *loader) LoadReader(name string, r io.Reader, isGLB bool) (*mesh.Mesh, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}
	if l.backend == nil {
		return nil, fmt.Errorf("%w: no backend configured", ErrUnsupportedFormat)
	}

	m, err := l.backend.LoadReader(r, isGLB)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	return l.store(name, m), nil
}

func (l *loader) LoadSource(path string) (mesh.Source, error) {
	m, err := l.Load(path)
	if err != nil {
		return nil, err
	}
	return mesh.NewStaticSource(m), nil
}

func (l *loader) Get(name string) *mesh.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.meshCache[name]
}

func (l *loader) Meshes() map[string]*mesh.Mesh {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return maps.Clone(l.meshCache)
}

// store caches m under key unless a concurrent load got there first, in which case the
// earlier mesh wins so every caller sees the same pointer.
func (l *loader) store(key string, m *mesh.Mesh) *mesh.Mesh {
	l.mu.Lock()
	defer l.mu.Unlock()
	if existing, ok := l.meshCache[key]; ok {
		return existing
	}
	l.meshCache[key] = m
	common.Logger().Debug("loader: cached mesh", "key", key, "vertices", len(m.Vertices), "triangles", m.TriangleCount())
	return m
}

// resolveBackend selects an appropriate loader backend based on the file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend != nil {
			return l.backend, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}
