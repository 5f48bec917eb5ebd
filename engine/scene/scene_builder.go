package scene

import (
	"github.com/Carmen-Shannon/oxy-shadow/engine/game_object"
	"github.com/Carmen-Shannon/oxy-shadow/engine/light"
	"github.com/Carmen-Shannon/oxy-shadow/engine/shadow"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithLight sets the scene's directional light.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLight(l light.Light) SceneBuilderOption {
	return func(s *scene) {
		s.lgt = l
	}
}

// WithObjects adds initial objects to the scene, exactly as if Add had been called for each
// one after construction. Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		s.pending = append(s.pending, objects...)
	}
}

// WithCasterOptions sets the options used for casters the scene creates on Add.
// The scene always supplies its transform pool first, so a WithWorkerPool here overrides it.
//
// Parameters:
//   - opts: caster options
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCasterOptions(opts ...shadow.CasterBuilderOption) SceneBuilderOption {
	return func(s *scene) {
		s.casterOpts = append(s.casterOpts, opts...)
	}
}

// WithComputeWorkers sets the number of worker goroutines that evaluate casters during Update.
// Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of compute workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithComputeWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.computeWorkers = n
	}
}

// WithTransformWorkers sets the number of worker goroutines that run world-space transform
// batches for the casters the scene creates. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of transform workers (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTransformWorkers(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.transformWorkers = n
	}
}
