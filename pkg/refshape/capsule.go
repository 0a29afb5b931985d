package refshape

import (
	"fmt"
	"math"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/pose"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Capsule is a segment along the local Z axis, from -HalfHeight to
// +HalfHeight, swept by a ball of radius Radius.
//
// A direction perpendicular to the axis ties along the whole side of the
// capsule; the tie resolves to the +Z cap. A zero direction yields the
// point on +X of the +Z cap.
type Capsule struct {
	HalfHeight float64
	Radius     float64
}

// NewCapsule returns a capsule with the given half height and radius.
func NewCapsule(halfHeight, radius float64) (Capsule, error) {
	if !(halfHeight >= 0) || !(radius > 0) {
		return Capsule{}, fmt.Errorf("refshape: capsule half height %v and radius %v out of range", halfHeight, radius)
	}
	return Capsule{HalfHeight: halfHeight, Radius: radius}, nil
}

// SupportPoint returns the point of the capsule furthest along dir.
func (c Capsule) SupportPoint(m sdf.M44, dir v3.Vec) v3.Vec {
	return pose.Support(m, dir, func(l v3.Vec) v3.Vec {
		return c.extreme(l, sign(l.Z))
	})
}

func (c Capsule) extreme(l v3.Vec, end float64) v3.Vec {
	return v3.Vec{Z: end * c.HalfHeight}.Add(localUnit(l).MulScalar(c.Radius))
}

// SupportAreaToward appends the support point and, when dir is within
// angle of perpendicular to the posed axis, the matching point on the
// opposite cap. Those two points bound the flat band of extreme points
// along the capsule's side. The angle is measured in world space.
func (c Capsule) SupportAreaToward(m sdf.M44, dir Unit, angle float64, dst []v3.Vec) []v3.Vec {
	d := dir.Vec()
	l := pose.LocalDirection(m, d)
	end := sign(l.Z)
	dst = append(dst, pose.Apply(m, c.extreme(l, end)))
	if c.HalfHeight > 0 {
		axis := pose.Direction(m, v3.Vec{Z: 2 * c.HalfHeight})
		if math.Abs(d.Dot(axis)) <= sinClamped(angle)*axis.Length() {
			dst = append(dst, pose.Apply(m, c.extreme(l, -end)))
		}
	}
	return dst
}

// Solid describes the capsule in k.
func (c Capsule) Solid(k kernel.Kernel) (kernel.Solid, error) {
	return k.Capsule(c.HalfHeight, c.Radius)
}

func (c Capsule) String() string {
	return fmt.Sprintf("capsule(h=%g, r=%g)", c.HalfHeight, c.Radius)
}
