package light

import "github.com/go-gl/mathgl/mgl32"

// DefaultDirection is the direction of a newly created light: straight down.
var DefaultDirection = mgl32.Vec3{0, -1, 0}

// ToLight returns the unit vector pointing from any surface toward the light, the negation of
// the direction the light travels. Silhouette extraction and extrusion work with this vector,
// so volumes extend away from the light.
//
// Parameters:
//   - l: the light
//
// Returns:
//   - mgl32.Vec3: -l.Direction()
func ToLight(l Light) mgl32.Vec3 {
	return l.Direction().Mul(-1)
}
