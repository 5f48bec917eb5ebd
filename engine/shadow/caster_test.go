package shadow

import (
	"bytes"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransform struct {
	localToWorld mgl32.Mat4
	changed      bool
	clears       int
}

func newFakeTransform(m mgl32.Mat4) *fakeTransform {
	return &fakeTransform{localToWorld: m, changed: true}
}

func (f *fakeTransform) LocalToWorld() mgl32.Mat4 { return f.localToWorld }
func (f *fakeTransform) WorldToLocal() mgl32.Mat4 { return f.localToWorld.Inv() }
func (f *fakeTransform) HasChanged() bool         { return f.changed }
func (f *fakeTransform) ClearChanged()            { f.changed = false; f.clears++ }

func (f *fakeTransform) move(m mgl32.Mat4) {
	f.localToWorld = m
	f.changed = true
}

func newReadyCaster(t *testing.T, src mesh.Source, opts ...CasterBuilderOption) ShadowCaster {
	t.Helper()
	c := NewShadowCaster(src, opts...)
	require.NoError(t, c.Initialize())
	return c
}

func TestCasterCubeEndToEnd(t *testing.T) {
	for name, m := range map[string]*mesh.Mesh{"shared": mesh.NewCube(1), "split": mesh.NewSplitCube(1)} {
		t.Run(name, func(t *testing.T) {
			c := newReadyCaster(t, mesh.NewStaticSource(m))
			assert.Len(t, c.Mesh().Vertices, 8)

			vol, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), light.NewLight())
			require.NoError(t, err)

			assert.Len(t, vol.Vertices, 14)
			assert.Equal(t, 16, vol.TriangleCount())
			assert.Equal(t, DefaultOffsetScale, vol.OffsetScale)
			assert.Len(t, c.Silhouette(), 4)
			assert.Same(t, vol, c.Volume())
			for _, v := range vol.Vertices[10:] {
				assert.InDelta(t, -1-DefaultExtrudeDistance, v.Y(), 1e-6, "extruded away from the light")
			}
			assertClosed(t, vol)
		})
	}
}

func TestCasterOptions(t *testing.T) {
	c := newReadyCaster(t, mesh.NewStaticSource(mesh.NewCube(1)),
		WithExtrudeDistance(3),
		WithOffsetScale(0.5),
	)
	assert.False(t, c.Static())

	vol, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), light.NewLight())
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), vol.OffsetScale)
	for _, v := range vol.Vertices[10:] {
		assert.InDelta(t, -4, v.Y(), 1e-6)
	}
}

func TestCasterFollowsLightDirection(t *testing.T) {
	c := newReadyCaster(t, mesh.NewStaticSource(mesh.NewCube(1)))
	l := light.NewLight(light.WithDirection(1, 0, 0))

	vol, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), l)
	require.NoError(t, err)
	require.Len(t, c.Silhouette(), 4)
	for _, v := range vol.Vertices[10:] {
		assert.InDelta(t, 2, v.X(), 1e-6)
	}
}

func TestCasterSkipsTransformWhenUnchanged(t *testing.T) {
	c := newReadyCaster(t, mesh.NewStaticSource(mesh.NewCube(1)))
	tr := newFakeTransform(mgl32.Ident4())
	l := light.NewLight()

	vol, err := c.Evaluate(tr, l)
	require.NoError(t, err)
	assert.False(t, tr.changed)
	assert.Equal(t, 1, tr.clears)
	before := bytes.Clone(vol.VertexData())

	// moved without raising the changed flag: the cached world positions are reused
	tr.localToWorld = mgl32.Translate3D(0, 5, 0)
	vol, err = c.Evaluate(tr, l)
	require.NoError(t, err)
	assert.Equal(t, before, vol.VertexData())
	assert.Equal(t, 1, tr.clears)

	tr.move(mgl32.Translate3D(0, 5, 0).Mul4(mgl32.Scale3D(2, 2, 2)))
	vol, err = c.Evaluate(tr, l)
	require.NoError(t, err)
	assert.NotEqual(t, before, vol.VertexData())
	assert.Equal(t, 2, tr.clears)
}

func TestCasterStaticCache(t *testing.T) {
	c := newReadyCaster(t, mesh.NewStaticSource(mesh.NewCube(1)), WithStatic(true))
	assert.True(t, c.Static())
	tr := newFakeTransform(mgl32.Ident4())
	l := light.NewLight()

	first, err := c.Evaluate(tr, l)
	require.NoError(t, err)
	vertexBytes := bytes.Clone(first.VertexData())
	indexBytes := bytes.Clone(first.IndexData())
	silhouette := c.Silhouette()

	tr.move(mgl32.Translate3D(3, 0, 0).Mul4(mgl32.HomogRotate3DZ(1)))
	l.SetDirection(0.4, -0.2, 0.9)

	second, err := c.Evaluate(tr, l)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, vertexBytes, second.VertexData())
	assert.Equal(t, indexBytes, second.IndexData())
	assert.Equal(t, silhouette, c.Silhouette())
	assert.True(t, tr.changed, "a cached evaluation leaves the transform untouched")
}

// shiftingBake returns a bake function that moves every vertex up by the number of bakes so far.
func shiftingBake(calls *atomic.Int32) mesh.BakeFunc {
	return func(dst, bind []mgl32.Vec3) []mgl32.Vec3 {
		n := float32(calls.Add(1))
		for _, v := range bind {
			dst = append(dst, v.Add(mgl32.Vec3{0, n, 0}))
		}
		return dst
	}
}

func TestCasterSkinnedRebake(t *testing.T) {
	var calls atomic.Int32
	c := newReadyCaster(t, mesh.NewSkinnedSource(mesh.NewSplitCube(1), shiftingBake(&calls)))
	tr := newFakeTransform(mgl32.Ident4())
	l := light.NewLight()

	vol, err := c.Evaluate(tr, l)
	require.NoError(t, err)
	require.Len(t, vol.Vertices, 14)
	assert.InDelta(t, 0, vol.Vertices[0].Y(), 1e-6, "bottom corner raised by the first bake")

	vol, err = c.Evaluate(tr, l)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.InDelta(t, 1, vol.Vertices[0].Y(), 1e-6)
	assert.InDelta(t, 0, vol.Vertices[10].Y(), 1e-6, "extrusion follows the new bake")
	assert.Len(t, c.Mesh().Vertices, 8)
}

func TestCasterStaticSkinnedStillRebakes(t *testing.T) {
	var calls atomic.Int32
	c := newReadyCaster(t, mesh.NewSkinnedSource(mesh.NewCube(1), shiftingBake(&calls)), WithStatic(true))
	tr := newFakeTransform(mgl32.Ident4())
	l := light.NewLight()

	first, err := c.Evaluate(tr, l)
	require.NoError(t, err)
	vertexBytes := bytes.Clone(first.VertexData())

	second, err := c.Evaluate(tr, l)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Same(t, first, second)
	assert.Equal(t, vertexBytes, second.VertexData())
	assert.InDelta(t, 1, c.Mesh().Vertices[0].Y(), 1e-6, "local mesh holds the latest bake")
}

func TestCasterWorkerPoolMatchesInline(t *testing.T) {
	pool := worker.NewDynamicWorkerPool(4, 32, time.Second)
	defer pool.Stop()

	sphere := mesh.NewUVSphere(1, 16, 24)
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DY(0.3))
	l := light.NewLight(light.WithDirection(0.3, -1, 0.2))

	inline := newReadyCaster(t, mesh.NewStaticSource(sphere))
	pooled := newReadyCaster(t, mesh.NewStaticSource(sphere), WithWorkerPool(pool), WithBatchSize(8))

	want, err := inline.Evaluate(newFakeTransform(m), l)
	require.NoError(t, err)
	got, err := pooled.Evaluate(newFakeTransform(m), l)
	require.NoError(t, err)

	assert.Equal(t, want.Vertices, got.Vertices)
	assert.Equal(t, want.Indices, got.Indices)
}

func TestCasterInactive(t *testing.T) {
	c := newReadyCaster(t, mesh.NewStaticSource(mesh.NewCube(1)))
	tr := newFakeTransform(mgl32.Ident4())

	_, err := c.Evaluate(nil, light.NewLight())
	assert.ErrorIs(t, err, ErrInactive)

	_, err = c.Evaluate(tr, nil)
	assert.ErrorIs(t, err, ErrInactive)

	_, err = c.Evaluate(tr, light.NewLight(light.WithEnabled(false)))
	assert.ErrorIs(t, err, ErrInactive)

	assert.Equal(t, StateReady, c.State())
	assert.Nil(t, c.Volume())
	assert.True(t, tr.changed)
}

func TestCasterStaticReusesVolumeWithoutLight(t *testing.T) {
	c := newReadyCaster(t, mesh.NewStaticSource(mesh.NewCube(1)), WithStatic(true))
	first, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), light.NewLight())
	require.NoError(t, err)

	got, err := c.Evaluate(nil, nil)
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = c.Evaluate(newFakeTransform(mgl32.Ident4()), light.NewLight(light.WithEnabled(false)))
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestCasterShortBake(t *testing.T) {
	short := func(dst, bind []mgl32.Vec3) []mgl32.Vec3 {
		return append(dst[:0], bind[:4]...)
	}
	c := newReadyCaster(t, mesh.NewSkinnedSource(mesh.NewCube(1), short))

	vol, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), light.NewLight())
	assert.ErrorIs(t, err, ErrBakeSize)
	assert.Nil(t, vol)
	assert.Equal(t, StateReady, c.State())
	assert.Nil(t, c.Volume())
	assert.Len(t, c.Mesh().Vertices, 8, "welded mesh keeps the bind pose")
}

func TestCasterReadersWaitForEvaluate(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	bake := func(dst, bind []mgl32.Vec3) []mgl32.Vec3 {
		close(started)
		<-release
		return append(dst, bind...)
	}
	c := newReadyCaster(t, mesh.NewSkinnedSource(mesh.NewCube(1), bake))

	done := make(chan error, 1)
	go func() {
		_, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), light.NewLight())
		done <- err
	}()
	<-started

	edges := make(chan []Edge, 1)
	go func() { edges <- c.Silhouette() }()

	select {
	case <-edges:
		t.Fatal("Silhouette returned while Evaluate was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, <-edges, 4)
	require.NotNil(t, c.Volume())
	assert.Equal(t, 16, c.Volume().TriangleCount())
}

func TestCasterInitializeErrors(t *testing.T) {
	assert.ErrorIs(t, NewShadowCaster(nil).Initialize(), ErrMissingMeshSource)

	bad := &mesh.Mesh{Vertices: []mgl32.Vec3{{0, 0, 0}}, Indices: []uint32{0, 0, 3}}
	err := NewShadowCaster(mesh.NewStaticSource(bad)).Initialize()
	assert.ErrorIs(t, err, mesh.ErrIndexOutOfRange)

	err = NewShadowCaster(mesh.NewStaticSource(&mesh.Mesh{Indices: []uint32{0}})).Initialize()
	assert.ErrorIs(t, err, mesh.ErrIndexCount)
}

func TestCasterLifecycle(t *testing.T) {
	c := NewShadowCaster(mesh.NewStaticSource(mesh.NewCube(1)))
	tr := newFakeTransform(mgl32.Ident4())
	l := light.NewLight()

	assert.Equal(t, StateUninitialized, c.State())
	assert.Nil(t, c.Mesh())
	_, err := c.Evaluate(tr, l)
	assert.ErrorIs(t, err, ErrNotInitialized)

	require.NoError(t, c.Initialize())
	assert.Equal(t, StateReady, c.State())
	assert.ErrorIs(t, c.Initialize(), ErrAlreadyInitialized)

	_, err = c.Evaluate(tr, l)
	require.NoError(t, err)

	require.NoError(t, c.Dispose())
	assert.Equal(t, StateDisposed, c.State())
	assert.Nil(t, c.Volume())
	assert.Nil(t, c.Silhouette())
	assert.NoError(t, c.Dispose())

	_, err = c.Evaluate(tr, l)
	assert.ErrorIs(t, err, ErrDisposed)
	assert.ErrorIs(t, c.Initialize(), ErrDisposed)
}

func TestCasterEvaluationInProgress(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	bake := func(dst, bind []mgl32.Vec3) []mgl32.Vec3 {
		close(started)
		<-release
		return append(dst, bind...)
	}
	c := newReadyCaster(t, mesh.NewSkinnedSource(mesh.NewCube(1), bake))
	l := light.NewLight()

	done := make(chan error, 1)
	go func() {
		_, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), l)
		done <- err
	}()
	<-started

	assert.Equal(t, StateEvaluating, c.State())
	_, err := c.Evaluate(newFakeTransform(mgl32.Ident4()), l)
	assert.ErrorIs(t, err, ErrEvaluationInProgress)
	assert.ErrorIs(t, c.Dispose(), ErrEvaluationInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateReady, c.State())
	assert.NoError(t, c.Dispose())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "disposed", StateDisposed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
