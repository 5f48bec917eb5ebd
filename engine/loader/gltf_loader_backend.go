package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct{}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// Every call gets a fresh parser, so one backend can serve concurrent loads.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend() gltfLoaderBackend {
	return &gltfLoaderBackendImpl{}
}

func (b *gltfLoaderBackendImpl) Load(path string) (*mesh.Mesh, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, err
	}
	return newGLTFMeshExtractor(parser).ExtractScene()
}

func (b *gltfLoaderBackendImpl) LoadReader(r io.Reader, isGLB bool) (*mesh.Mesh, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, err
	}
	return newGLTFMeshExtractor(parser).ExtractScene()
}
