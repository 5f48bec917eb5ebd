package shadow

import "github.com/Carmen-Shannon/automation/tools/worker"

// DefaultExtrudeDistance is how far, in world units, silhouette edges are extruded when no
// distance is configured.
const DefaultExtrudeDistance float32 = 1.0

// DefaultOffsetScale is the uniform scale applied to volumes when no offset is configured.
const DefaultOffsetScale float32 = 1.0

// CasterBuilderOption is a function that configures a ShadowCaster during construction.
type CasterBuilderOption func(*shadowCaster)

// WithExtrudeDistance is an option builder that sets how far silhouette edges are pushed away
// from the light. The value is used as given; zero or negative distances produce degenerate
// or inverted volumes.
//
// Parameters:
//   - distance: extrusion length in world units
//
// Returns:
//   - CasterBuilderOption: a function that applies the extrude distance option to a shadowCaster
func WithExtrudeDistance(distance float32) CasterBuilderOption {
	return func(c *shadowCaster) {
		c.extrudeDistance = distance
	}
}

// WithStatic is an option builder that marks the caster as static. A static caster builds its
// volume once and returns the retained volume from every later Evaluate, ignoring transform
// and light changes.
//
// Parameters:
//   - static: true to cache the first volume
//
// Returns:
//   - CasterBuilderOption: a function that applies the static option to a shadowCaster
func WithStatic(static bool) CasterBuilderOption {
	return func(c *shadowCaster) {
		c.static = static
	}
}

// WithOffsetScale is an option builder that sets the uniform scale carried on every volume so
// the renderer can push the volume slightly off the caster surface.
//
// Parameters:
//   - scale: the offset scale
//
// Returns:
//   - CasterBuilderOption: a function that applies the offset scale option to a shadowCaster
func WithOffsetScale(scale float32) CasterBuilderOption {
	return func(c *shadowCaster) {
		c.offsetScale = scale
	}
}

// WithBatchSize is an option builder that sets how many vertices each world-space transform
// task handles. Non-positive values fall back to DefaultBatchSize.
//
// Parameters:
//   - size: vertices per task
//
// Returns:
//   - CasterBuilderOption: a function that applies the batch size option to a shadowCaster
func WithBatchSize(size int) CasterBuilderOption {
	return func(c *shadowCaster) {
		c.batchSize = size
	}
}

// WithWorkerPool is an option builder that sets the pool used for world-space transform
// batches. Without a pool the transform runs on the evaluating goroutine.
// The pool must not be the one that runs Evaluate itself, since Evaluate blocks until its
// batches finish.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - CasterBuilderOption: a function that applies the worker pool option to a shadowCaster
func WithWorkerPool(pool worker.DynamicWorkerPool) CasterBuilderOption {
	return func(c *shadowCaster) {
		c.pool = pool
	}
}
