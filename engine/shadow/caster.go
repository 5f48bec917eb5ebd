// Package shadow builds stencil shadow volumes for triangle meshes lit by a directional light.
//
// A ShadowCaster owns the whole per-object pipeline: the welded local mesh, the world-space
// positions, the silhouette edge set and the volume buffers. Each Evaluate transforms the
// mesh to world space when its transform changed, extracts the silhouette by toggling the
// edges of light-facing triangles and extrudes that silhouette into a closed volume.
package shadow

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
)

// State is the lifecycle state of a ShadowCaster.
type State int32

const (
	StateUninitialized State = iota
	StateReady
	StateEvaluating
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateEvaluating:
		return "evaluating"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Transform is the placement of a caster in the world. game_object.GameObject implements it.
type Transform interface {
	// LocalToWorld returns the model matrix.
	LocalToWorld() mgl32.Mat4
	// WorldToLocal returns the inverse of the model matrix.
	WorldToLocal() mgl32.Mat4
	// HasChanged reports whether the transform moved since the last ClearChanged.
	HasChanged() bool
	// ClearChanged acknowledges the current transform.
	ClearChanged()
}

// ShadowCaster produces the shadow volume of one mesh.
type ShadowCaster interface {
	// Initialize validates and welds the source mesh and reserves every per-frame buffer.
	// It must be called once before Evaluate.
	//
	// Returns:
	//   - error: ErrMissingMeshSource, a wrapped mesh validation error, ErrAlreadyInitialized,
	//     ErrDisposed, or nil
	Initialize() error

	// Evaluate computes the shadow volume for the current frame.
	//
	// Skinned sources are re-baked on every call, even for static casters that already hold
	// a volume. A static caster that already holds a volume then returns it untouched,
	// without looking at the transform or the light. Otherwise the world-space positions are recomputed when this is the first evaluation,
	// the transform reports a change or the source was re-baked, after which the silhouette
	// is extracted and extruded away from the light.
	//
	// Parameters:
	//   - tr: the caster's transform
	//   - l: the directional light; Direction is the direction the light travels
	//
	// Returns:
	//   - *Volume: the caster's volume, valid until the next Evaluate or Dispose
	//   - error: ErrInactive (wrapped) for a nil transform or a nil or disabled light,
	//     ErrBakeSize (wrapped) when a bake returns fewer positions than the source mesh,
	//     ErrNotInitialized, ErrDisposed, ErrEvaluationInProgress, or nil
	Evaluate(tr Transform, l light.Light) (*Volume, error)

	// Dispose releases every buffer. Disposing twice is a no-op.
	//
	// Returns:
	//   - error: ErrEvaluationInProgress if an evaluation is running, otherwise nil
	Dispose() error

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - State: the state
	State() State

	// Volume returns the most recent volume, or nil if none has been built. A call made while
	// Evaluate runs waits for it to finish. The volume's buffers are rewritten by the next
	// Evaluate.
	//
	// Returns:
	//   - *Volume: the last volume
	Volume() *Volume

	// Silhouette returns a copy of the edge set used for the most recent volume, for debug
	// drawing. Edge indices address the welded local mesh. Like Volume, it waits for a
	// running Evaluate.
	//
	// Returns:
	//   - []Edge: the silhouette edges in iteration order
	Silhouette() []Edge

	// Mesh returns the welded mesh after Initialize, or nil before.
	//
	// Returns:
	//   - *mesh.Mesh: the welded local mesh; for skinned sources the vertices are the latest bake
	Mesh() *mesh.Mesh

	// Static reports whether the caster caches its first volume.
	//
	// Returns:
	//   - bool: true for static casters
	Static() bool
}

type shadowCaster struct {
	source mesh.Source
	state  atomic.Int32

	extrudeDistance float32
	offsetScale     float32
	static          bool
	batchSize       int
	pool            worker.DynamicWorkerPool

	weldMap *mesh.WeldMap
	welded  *mesh.Mesh
	baked   []mgl32.Vec3
	world   []mgl32.Vec3

	localToWorld mgl32.Mat4
	worldToLocal mgl32.Mat4

	transformer Transformer
	extractor   SilhouetteExtractor
	builder     VolumeBuilder

	// outMu is held for a whole Evaluate so Volume and Silhouette never observe a
	// half-built result.
	outMu     sync.Mutex
	edges     *EdgeSet
	volume    *Volume
	hasWorld  bool
	hasShadow bool
}

var _ ShadowCaster = &shadowCaster{}

// NewShadowCaster creates an uninitialized caster for the given source. A nil source is
// accepted here and reported by Initialize.
//
// Parameters:
//   - source: the mesh source
//   - opts: variadic list of CasterBuilderOption functions to configure the caster
//
// Returns:
//   - ShadowCaster: a new caster in StateUninitialized
func NewShadowCaster(source mesh.Source, opts ...CasterBuilderOption) ShadowCaster {
	c := &shadowCaster{
		source:          source,
		extrudeDistance: DefaultExtrudeDistance,
		offsetScale:     DefaultOffsetScale,
		batchSize:       DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *shadowCaster) Initialize() error {
	switch State(c.state.Load()) {
	case StateDisposed:
		return ErrDisposed
	case StateUninitialized:
	default:
		return ErrAlreadyInitialized
	}
	if c.source == nil {
		return ErrMissingMeshSource
	}
	src := c.source.Mesh()
	if src == nil {
		return ErrMissingMeshSource
	}
	if err := src.Validate(); err != nil {
		return fmt.Errorf("invalid caster mesh: %w", err)
	}

	c.weldMap = mesh.NewWeldMap(src)
	c.welded = &mesh.Mesh{
		Vertices: c.weldMap.Apply(make([]mgl32.Vec3, 0, c.weldMap.VertexCount()), src.Vertices),
		Indices:  c.weldMap.RemapIndices(make([]uint32, 0, len(src.Indices)), src.Indices),
	}
	vertexCount := c.weldMap.VertexCount()
	// A silhouette can never hold more edges than the mesh has.
	edgeCapacity := len(src.Indices)

	if c.source.Skinned() {
		c.baked = make([]mgl32.Vec3, 0, len(src.Vertices))
	}
	c.world = make([]mgl32.Vec3, 0, vertexCount)
	c.transformer = NewTransformer(c.pool, common.Coalesce(c.batchSize, DefaultBatchSize))
	c.extractor = NewSilhouetteExtractor(edgeCapacity)
	c.builder = NewVolumeBuilder(vertexCount, edgeCapacity)

	if !c.state.CompareAndSwap(int32(StateUninitialized), int32(StateReady)) {
		return ErrAlreadyInitialized
	}
	return nil
}

func (c *shadowCaster) Evaluate(tr Transform, l light.Light) (*Volume, error) {
	if !c.state.CompareAndSwap(int32(StateReady), int32(StateEvaluating)) {
		switch State(c.state.Load()) {
		case StateUninitialized:
			return nil, ErrNotInitialized
		case StateDisposed:
			return nil, ErrDisposed
		default:
			return nil, ErrEvaluationInProgress
		}
	}
	defer c.state.Store(int32(StateReady))
	c.outMu.Lock()
	defer c.outMu.Unlock()

	rebaked := false
	if c.source.Skinned() {
		c.baked = c.source.Bake(c.baked)
		if len(c.baked) < len(c.weldMap.Remap) {
			return nil, fmt.Errorf("%w: got %d positions, mesh has %d", ErrBakeSize, len(c.baked), len(c.weldMap.Remap))
		}
		c.welded.Vertices = c.weldMap.Apply(c.welded.Vertices, c.baked)
		rebaked = true
	}

	if c.static && c.hasShadow {
		return c.volume, nil
	}

	if tr == nil {
		return nil, fmt.Errorf("%w: no transform", ErrInactive)
	}
	if l == nil {
		return nil, fmt.Errorf("%w: no light", ErrInactive)
	}
	if !l.Enabled() {
		return nil, fmt.Errorf("%w: light disabled", ErrInactive)
	}

	if !c.hasWorld || tr.HasChanged() || rebaked {
		c.localToWorld = tr.LocalToWorld()
		c.worldToLocal = tr.WorldToLocal()
		c.world = c.transformer.Transform(c.world, c.welded.Vertices, c.localToWorld)
		tr.ClearChanged()
		c.hasWorld = true
	}

	toLight := light.ToLight(l)
	c.edges = c.extractor.Extract(c.welded.Indices, c.world, toLight)
	c.volume = c.builder.Build(VolumeInput{
		Edges:           c.edges,
		Local:           c.welded.Vertices,
		World:           c.world,
		LightDir:        toLight,
		LocalToWorld:    c.localToWorld,
		WorldToLocal:    c.worldToLocal,
		ExtrudeDistance: c.extrudeDistance,
		OffsetScale:     c.offsetScale,
	})
	c.hasShadow = true
	return c.volume, nil
}

func (c *shadowCaster) Dispose() error {
	for {
		s := State(c.state.Load())
		if s == StateDisposed {
			return nil
		}
		if s == StateEvaluating {
			return ErrEvaluationInProgress
		}
		if c.state.CompareAndSwap(int32(s), int32(StateDisposed)) {
			break
		}
	}
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.builder != nil {
		c.builder.Release()
	}
	c.weldMap = nil
	c.welded = nil
	c.baked = nil
	c.world = nil
	c.transformer = nil
	c.extractor = nil
	c.builder = nil
	c.edges = nil
	c.volume = nil
	c.hasWorld = false
	c.hasShadow = false
	return nil
}

func (c *shadowCaster) State() State {
	return State(c.state.Load())
}

func (c *shadowCaster) Volume() *Volume {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.State() == StateDisposed {
		return nil
	}
	return c.volume
}

func (c *shadowCaster) Silhouette() []Edge {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	if c.edges == nil {
		return nil
	}
	return append([]Edge(nil), c.edges.Edges()...)
}

func (c *shadowCaster) Mesh() *mesh.Mesh {
	return c.welded
}

func (c *shadowCaster) Static() bool {
	return c.static
}
