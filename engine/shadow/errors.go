package shadow

import "errors"

var (
	// ErrMissingMeshSource is returned by Initialize when the caster has no mesh source.
	ErrMissingMeshSource = errors.New("shadow: missing mesh source")

	// ErrInactive is returned by Evaluate when there is nothing to cast a shadow from,
	// such as a missing or disabled light or a missing transform.
	ErrInactive = errors.New("shadow: caster inactive")

	// ErrBakeSize is returned by Evaluate when a skinned source bakes fewer positions than
	// its bind mesh has vertices.
	ErrBakeSize = errors.New("shadow: baked vertex count does not match the mesh")

	// ErrNotInitialized is returned by Evaluate before Initialize succeeded.
	ErrNotInitialized = errors.New("shadow: caster not initialized")

	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("shadow: caster already initialized")

	// ErrDisposed is returned by any operation on a disposed caster.
	ErrDisposed = errors.New("shadow: caster disposed")

	// ErrEvaluationInProgress is returned when another goroutine is evaluating the same caster.
	ErrEvaluationInProgress = errors.New("shadow: evaluation in progress")
)
