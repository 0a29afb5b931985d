// Package refshape holds reference convex shapes that exercise every part of
// the support-mapping contract: a rounded shape, a shape with flat faces, a
// shape with a rounded flat band, and a bare vertex cloud. Each shape
// documents its tie-break rule and its zero-direction fallback.
//
// Shapes are immutable after construction and safe for concurrent queries.
package refshape

import (
	"math"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/supportmap"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shape is a convex shape posed by an sdf.M44.
type Shape = supportmap.SupportMap[v3.Vec, sdf.M44]

// Unit is a unit direction in 3D.
type Unit = supportmap.Unit[v3.Vec]

// Implicit is implemented by shapes with an implicit description in a
// geometry kernel.
type Implicit interface {
	Solid(k kernel.Kernel) (kernel.Solid, error)
}

// Vertexer is implemented by shapes that are the convex hull of a finite
// vertex set.
type Vertexer interface {
	Vertices() []v3.Vec
}

// sign returns +1 for non-negative values (including -0) and -1 otherwise,
// so ties on an axis resolve to the positive side.
func sign(x float64) float64 {
	if x >= 0 || math.IsNaN(x) {
		return 1
	}
	return -1
}

// localUnit normalizes a local direction, substituting +X for a zero
// vector.
func localUnit(d v3.Vec) v3.Vec {
	l := d.Length()
	if l == 0 || math.IsNaN(l) {
		return v3.Vec{X: 1}
	}
	return v3.Vec{X: d.X / l, Y: d.Y / l, Z: d.Z / l}
}
