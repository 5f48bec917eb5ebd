package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-shadow/common"
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/Carmen-Shannon/oxy-shadow/engine/shadow"
	"github.com/go-gl/mathgl/mgl32"
)

type gameObject struct {
	id      uint64
	enabled atomic.Bool
	changed atomic.Bool

	mu            sync.RWMutex
	position      [3]float32
	scale         [3]float32
	rotation      [3]float32
	rotationSpeed [3]float32

	// matrices are rebuilt lazily after a transform setter runs
	matricesDirty bool
	localToWorld  mgl32.Mat4
	worldToLocal  mgl32.Mat4

	source mesh.Source
	caster shadow.ShadowCaster
}

// GameObject defines the interface for a shadow-casting scene entity.
//
// A GameObject owns its transform (position, Euler rotation in radians, scale), the mesh
// source describing its geometry and the ShadowCaster that turns that geometry into a shadow
// volume. It implements shadow.Transform: every transform setter marks the object as changed
// until the caster acknowledges the new placement with ClearChanged.
type GameObject interface {
	shadow.Transform

	// ID returns the object's unique identifier.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// Enabled returns whether this object takes part in shadow evaluation.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// Position returns the object's world-space position.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// Rotation returns the object's Euler rotation in radians.
	//
	// Returns:
	//   - rx, ry, rz: rotation angles
	Rotation() (rx, ry, rz float32)

	// RotationSpeed returns the angular velocity applied by Advance, in radians per second.
	//
	// Returns:
	//   - rx, ry, rz: rotation speed values
	RotationSpeed() (rx, ry, rz float32)

	// Scale returns the object's scale factors.
	//
	// Returns:
	//   - sx, sy, sz: scale components
	Scale() (sx, sy, sz float32)

	// TransformData reads all transform data under a single lock.
	//
	// Returns:
	//   - pos: position as [3]float32 (x, y, z)
	//   - scale: scale as [3]float32 (x, y, z)
	//   - rot: rotation as [3]float32 (rx, ry, rz)
	//   - rotSpeed: rotation speed as [3]float32 (rx, ry, rz)
	TransformData() (pos, scale, rot, rotSpeed [3]float32)

	// MeshSource returns the geometry source of this object, or nil if not set.
	//
	// Returns:
	//   - mesh.Source: the mesh source or nil
	MeshSource() mesh.Source

	// Caster returns the ShadowCaster attached to this object, or nil if none is set.
	//
	// Returns:
	//   - shadow.ShadowCaster: the attached caster or nil
	Caster() shadow.ShadowCaster

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// SetEnabled sets whether the object takes part in shadow evaluation.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetPosition updates the object's position and marks the transform changed.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// SetRotation updates the object's rotation and marks the transform changed.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation angles in radians
	SetRotation(rx, ry, rz float32)

	// SetRotationSpeed updates the angular velocity applied by Advance.
	//
	// Parameters:
	//   - rx, ry, rz: new rotation speed values in radians per second
	SetRotationSpeed(rx, ry, rz float32)

	// SetScale updates the object's scale and marks the transform changed.
	//
	// Parameters:
	//   - sx, sy, sz: new scale factors
	SetScale(sx, sy, sz float32)

	// SetMeshSource assigns the geometry source. It must be set before the caster is
	// initialized.
	//
	// Parameters:
	//   - src: the mesh source
	SetMeshSource(src mesh.Source)

	// SetCaster attaches a ShadowCaster. Pass nil to detach.
	//
	// Parameters:
	//   - c: the caster to attach, or nil to detach
	SetCaster(c shadow.ShadowCaster)

	// Advance integrates the rotation speed over dt seconds. Objects with zero rotation speed
	// are left untouched and do not report a change.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Advance(dt float32)
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject configured with the given options.
// The object starts enabled, at the origin, with unit scale and its transform marked changed.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	obj := &gameObject{
		scale:         [3]float32{1, 1, 1},
		matricesDirty: true,
	}
	obj.enabled.Store(true)
	obj.changed.Store(true)
	for _, option := range options {
		option(obj)
	}
	return obj
}

func (g *gameObject) ID() uint64 {
	return g.id
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) Rotation() (rx, ry, rz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotation[0], g.rotation[1], g.rotation[2]
}

func (g *gameObject) RotationSpeed() (rx, ry, rz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.rotationSpeed[0], g.rotationSpeed[1], g.rotationSpeed[2]
}

func (g *gameObject) Scale() (sx, sy, sz float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scale[0], g.scale[1], g.scale[2]
}

func (g *gameObject) TransformData() (pos, scale, rot, rotSpeed [3]float32) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.position, g.scale, g.rotation, g.rotationSpeed
}

func (g *gameObject) MeshSource() mesh.Source {
	return g.source
}

func (g *gameObject) Caster() shadow.ShadowCaster {
	return g.caster
}

func (g *gameObject) SetID(id uint64) {
	g.id = id
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	g.position = [3]float32{x, y, z}
	g.markChangedLocked()
	g.mu.Unlock()
}

func (g *gameObject) SetRotation(rx, ry, rz float32) {
	g.mu.Lock()
	g.rotation = [3]float32{rx, ry, rz}
	g.markChangedLocked()
	g.mu.Unlock()
}

func (g *gameObject) SetRotationSpeed(rx, ry, rz float32) {
	g.mu.Lock()
	g.rotationSpeed = [3]float32{rx, ry, rz}
	g.mu.Unlock()
}

func (g *gameObject) SetScale(sx, sy, sz float32) {
	g.mu.Lock()
	g.scale = [3]float32{sx, sy, sz}
	g.markChangedLocked()
	g.mu.Unlock()
}

func (g *gameObject) SetMeshSource(src mesh.Source) {
	g.source = src
}

func (g *gameObject) SetCaster(c shadow.ShadowCaster) {
	g.caster = c
}

func (g *gameObject) Advance(dt float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.rotationSpeed == [3]float32{} || dt == 0 {
		return
	}
	for i := range g.rotation {
		g.rotation[i] += g.rotationSpeed[i] * dt
	}
	g.markChangedLocked()
}

func (g *gameObject) LocalToWorld() mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rebuildLocked()
	return g.localToWorld
}

func (g *gameObject) WorldToLocal() mgl32.Mat4 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rebuildLocked()
	return g.worldToLocal
}

func (g *gameObject) HasChanged() bool {
	return g.changed.Load()
}

func (g *gameObject) ClearChanged() {
	g.changed.Store(false)
}

func (g *gameObject) markChangedLocked() {
	g.matricesDirty = true
	g.changed.Store(true)
}

// rebuildLocked recomputes both matrices when a setter ran since the last rebuild.
// A singular model matrix (zero scale on any axis) leaves worldToLocal zeroed.
func (g *gameObject) rebuildLocked() {
	if !g.matricesDirty {
		return
	}
	g.localToWorld = common.BuildModelMatrix(mgl32.Vec3(g.position), mgl32.Vec3(g.rotation), mgl32.Vec3(g.scale))
	g.worldToLocal, _ = common.Invert(g.localToWorld)
	g.matricesDirty = false
}
