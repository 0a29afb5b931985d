// Package pose provides the rigid and affine poses shapes are queried
// under. A pose is an sdf.M44 from github.com/deadsy/sdfx mapping local
// shape coordinates to world coordinates.
package pose

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	unitX = v3.Vec{X: 1}
	unitY = v3.Vec{Y: 1}
	unitZ = v3.Vec{Z: 1}
)

// Identity returns the pose that leaves a shape where it is.
func Identity() sdf.M44 {
	return sdf.Identity3d()
}

// Translate returns a pose moving a shape by (x, y, z).
func Translate(x, y, z float64) sdf.M44 {
	return sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
}

// Rotate returns a pose rotating a shape by Euler angles (degrees) around
// the X, Y and Z axes, applied in that order.
func Rotate(x, y, z float64) sdf.M44 {
	xRad := x * math.Pi / 180.0
	yRad := y * math.Pi / 180.0
	zRad := z * math.Pi / 180.0

	return sdf.RotateZ(zRad).Mul(sdf.RotateY(yRad)).Mul(sdf.RotateX(xRad))
}

// Compose returns the pose applying inner first and then outer.
func Compose(outer, inner sdf.M44) sdf.M44 {
	return outer.Mul(inner)
}

// Apply maps a local-space point to world space.
func Apply(m sdf.M44, p v3.Vec) v3.Vec {
	return m.MulPosition(p)
}

// Direction maps a local-space direction to world space. Only the linear
// part of m acts on it.
func Direction(m sdf.M44, d v3.Vec) v3.Vec {
	return m.MulPosition(d).Sub(m.MulPosition(v3.Vec{}))
}

// LocalDirection maps a world-space query direction into the local frame
// of a shape posed by m. It applies the transpose of the linear part A of
// m, which is the inverse rotation for rigid poses and, for any affine
// pose, satisfies support(A·S+b, d) = A·support(S, Aᵀd) + b.
func LocalDirection(m sdf.M44, d v3.Vec) v3.Vec {
	origin := m.MulPosition(v3.Vec{})
	return v3.Vec{
		X: d.Dot(m.MulPosition(unitX).Sub(origin)),
		Y: d.Dot(m.MulPosition(unitY).Sub(origin)),
		Z: d.Dot(m.MulPosition(unitZ).Sub(origin)),
	}
}

// Support evaluates a local-space support function for a shape posed by m
// and returns the world-space support point along the world direction d.
func Support(m sdf.M44, d v3.Vec, local func(v3.Vec) v3.Vec) v3.Vec {
	return Apply(m, local(LocalDirection(m, d)))
}
