package game_object

import (
	"github.com/Carmen-Shannon/oxy-shadow/engine/mesh"
	"github.com/Carmen-Shannon/oxy-shadow/engine/shadow"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithID sets the ID of the GameObject.
//
// Parameters:
//   - id: unique identifier for the GameObject
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the ID
func WithID(id uint64) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.id = id
	}
}

// WithEnabled sets whether the GameObject takes part in shadow evaluation.
//
// Parameters:
//   - enabled: true to evaluate the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithPosition sets the initial position of the GameObject.
//
// Parameters:
//   - x: the x position
//   - y: the y position
//   - z: the z position
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [3]float32{x, y, z}
	}
}

// WithScale sets the initial scale of the GameObject.
//
// Parameters:
//   - sx: the x scale factor
//   - sy: the y scale factor
//   - sz: the z scale factor
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial scale
func WithScale(sx, sy, sz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = [3]float32{sx, sy, sz}
	}
}

// WithRotation sets the initial rotation of the GameObject in radians.
//
// Parameters:
//   - rx: the x rotation angle
//   - ry: the y rotation angle
//   - rz: the z rotation angle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation
func WithRotation(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = [3]float32{rx, ry, rz}
	}
}

// WithRotationSpeed sets the angular velocity applied by Advance, in radians per second.
//
// Parameters:
//   - rx: the x rotation speed
//   - ry: the y rotation speed
//   - rz: the z rotation speed
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the initial rotation speed
func WithRotationSpeed(rx, ry, rz float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotationSpeed = [3]float32{rx, ry, rz}
	}
}

// WithMeshSource sets the geometry source of the GameObject.
//
// Parameters:
//   - src: the mesh source
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the mesh source
func WithMeshSource(src mesh.Source) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.source = src
	}
}

// WithCaster attaches a ShadowCaster to the GameObject. When the object is added to a scene
// without a caster, the scene creates one from the mesh source.
//
// Parameters:
//   - c: the caster to attach
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the caster
func WithCaster(c shadow.ShadowCaster) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.caster = c
	}
}
