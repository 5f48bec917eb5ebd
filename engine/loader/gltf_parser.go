package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Common errors returned by the parser
var (
	errInvalidGLTFVersion    = errors.New("invalid glTF version: must be 2.x")
	errInvalidGLBMagic       = errors.New("invalid GLB magic number")
	errInvalidGLBVersion     = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk      = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI      = errors.New("invalid buffer URI")
	errBufferSizeMismatch    = errors.New("buffer size mismatch")
	errAccessorOutOfBounds   = errors.New("accessor reads past the end of its buffer")
	errSparseAccessor        = errors.New("sparse accessors are not supported")
	errUnexpectedAccessorType = errors.New("unexpected accessor type")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF/GLB document and reads typed accessor data out of it.
// This is internal to the loader package.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// GLB is detected from the .glb extension or the magic number.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if parsing fails
	Parse(path string) error

	// ParseReader parses a glTF document from a reader. External buffer URIs are resolved
	// relative to the working directory.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool) error

	// Document returns the parsed glTF document, or nil before a successful parse.
	Document() *gltfDocument

	// ReadPositions reads a VEC3 FLOAT accessor.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []mgl32.Vec3: the positions
	//   - error: error if the accessor is missing, mistyped or out of bounds
	ReadPositions(accessorIndex int) ([]mgl32.Vec3, error)

	// ReadIndices reads a SCALAR index accessor of unsigned byte, short or int components.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the indices widened to uint32
	//   - error: error if the accessor is missing, mistyped or out of bounds
	ReadIndices(accessorIndex int) ([]uint32, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic) {
		return p.parseGLB(data)
	}
	return p.decode(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	if isGLB {
		return p.parseGLB(data)
	}
	return p.decode(data)
}

// decode unmarshals the JSON document, checks its version and resolves its buffers.
func (p *gltfParserImpl) decode(jsonData []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}
	p.document = &doc
	return nil
}

// parseGLB splits a GLB container into its JSON and BIN chunks and decodes the JSON.
func (p *gltfParserImpl) parseGLB(data []byte) error {
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonData []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = body
		}
	}
	if jsonData == nil {
		return errMissingJSONChunk
	}
	return p.decode(jsonData)
}

// loadBuffers fills every buffer's Data from its URI or, for the first URI-less buffer,
// the GLB binary chunk.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI != "":
			data, err := p.loadBufferURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		case i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		default:
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// loadBufferURI loads buffer data from a base64 data URI or a path relative to the document.
func (p *gltfParserImpl) loadBufferURI(uri string) ([]byte, error) {
	if rest, ok := strings.CutPrefix(uri, "data:"); ok {
		header, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, errInvalidBufferURI
		}
		if !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: unsupported encoding %q", errInvalidBufferURI, header)
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}
	return data, nil
}

// accessorElements returns the backing bytes of an accessor together with the stride between
// elements and the size of one element.
func (p *gltfParserImpl) accessorElements(accessorIndex int) (*gltfAccessor, []byte, int, int, error) {
	if p.document == nil {
		return nil, nil, 0, 0, errors.New("no document loaded")
	}
	doc := p.document
	if accessorIndex < 0 || accessorIndex >= len(doc.Accessors) {
		return nil, nil, 0, 0, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	acc := &doc.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return nil, nil, 0, 0, errSparseAccessor
	}
	if acc.BufferView == nil || *acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews) {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d has no valid bufferView", accessorIndex)
	}
	bv := &doc.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, nil, 0, 0, fmt.Errorf("bufferView %d references missing buffer %d", *acc.BufferView, bv.Buffer)
	}

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	data := doc.Buffers[bv.Buffer].Data
	start := bv.ByteOffset + acc.ByteOffset
	end := start
	if acc.Count > 0 {
		end = start + (acc.Count-1)*stride + elementSize
	}
	if elementSize == 0 || acc.Count < 0 || start < 0 || end > len(data) || end > bv.ByteOffset+bv.ByteLength {
		return nil, nil, 0, 0, fmt.Errorf("accessor %d: %w", accessorIndex, errAccessorOutOfBounds)
	}
	return acc, data[start:], stride, elementSize, nil
}

func (p *gltfParserImpl) ReadPositions(accessorIndex int) ([]mgl32.Vec3, error) {
	acc, data, stride, _, err := p.accessorElements(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeVec3 || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("%w: want VEC3 FLOAT, got %s/%d", errUnexpectedAccessorType, acc.Type, acc.ComponentType)
	}

	out := make([]mgl32.Vec3, acc.Count)
	for i := range out {
		e := data[i*stride:]
		out[i] = mgl32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(e[0:4])),
			math.Float32frombits(binary.LittleEndian.Uint32(e[4:8])),
			math.Float32frombits(binary.LittleEndian.Uint32(e[8:12])),
		}
	}
	return out, nil
}

func (p *gltfParserImpl) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc, data, stride, _, err := p.accessorElements(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("%w: want SCALAR indices, got %s", errUnexpectedAccessorType, acc.Type)
	}

	out := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range out {
			out[i] = uint32(data[i*stride])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(data[i*stride:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(data[i*stride:])
		}
	default:
		return nil, fmt.Errorf("%w: unsupported index component type %d", errUnexpectedAccessorType, acc.ComponentType)
	}
	return out, nil
}

// gltfComponentTypeSize returns the byte size of a component type.
func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

// gltfAccessorTypeComponentCount returns the number of components for an accessor type.
func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	case gltfAccessorTypeMat4:
		return 16
	default:
		return 0
	}
}
