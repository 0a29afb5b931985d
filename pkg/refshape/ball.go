package refshape

import (
	"fmt"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/pose"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ball is a sphere centred on its local origin.
//
// Every direction has a unique support point, so Ball keeps the default
// single-point area sampling. A zero direction yields the point on +X.
type Ball struct {
	Radius float64
}

// NewBall returns a ball of the given radius.
func NewBall(radius float64) (Ball, error) {
	if !(radius > 0) {
		return Ball{}, fmt.Errorf("refshape: ball radius %v must be positive", radius)
	}
	return Ball{Radius: radius}, nil
}

// SupportPoint returns the point of the ball furthest along dir.
func (b Ball) SupportPoint(m sdf.M44, dir v3.Vec) v3.Vec {
	return pose.Support(m, dir, func(l v3.Vec) v3.Vec {
		return localUnit(l).MulScalar(b.Radius)
	})
}

// Solid describes the ball in k.
func (b Ball) Solid(k kernel.Kernel) (kernel.Solid, error) {
	return k.Sphere(b.Radius)
}

func (b Ball) String() string {
	return fmt.Sprintf("ball(r=%g)", b.Radius)
}
