// Package light provides the directional light that shadow casters extrude their volumes from.
package light

import (
	"sync"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	mu           sync.RWMutex
	direction    mgl32.Vec3
	enabled      bool
	castsShadows bool
}

// Light defines the interface for the scene's directional light.
//
// A directional light has no position, only the direction its rays travel, which is the
// model used for distant sources like the sun. Shadow volumes extend along that direction.
// Accessors are safe for concurrent use so the light can be re-aimed while casters are
// being evaluated on worker goroutines.
type Light interface {
	// Direction returns the normalized direction the light travels.
	//
	// Returns:
	//   - mgl32.Vec3: normalized direction, or the zero vector if it was set to zero
	Direction() mgl32.Vec3

	// Enabled returns whether this light is active.
	// Casters evaluated against a disabled light report ErrInactive.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether the scene should build shadow volumes for this light.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the scene builds shadow volumes for this light.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new directional Light pointing along DefaultDirection, enabled and
// casting shadows, with any provided options applied.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		direction:    DefaultDirection,
		enabled:      true,
		castsShadows: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() mgl32.Vec3 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.direction
}

func (l *lightImpl) Enabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.castsShadows
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.castsShadows = castsShadows
}

// normalize3 normalizes a 3-component vector. Returns a zero vector if the input
// has zero length.
func normalize3(x, y, z float32) mgl32.Vec3 {
	length := math32.Sqrt(x*x + y*y + z*z)
	if length == 0 {
		return mgl32.Vec3{}
	}
	inv := 1.0 / length
	return mgl32.Vec3{x * inv, y * inv, z * inv}
}
