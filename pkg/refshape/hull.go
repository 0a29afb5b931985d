package refshape

import (
	"errors"
	"fmt"

	"github.com/chazu/supportmap/pkg/pose"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Hull is the convex hull of a vertex cloud. Points need not all be hull
// vertices; interior points never win a support query.
//
// Ties go to the lowest index, so a zero direction yields the first point.
// Hull has no area refinement and samples a single point.
type Hull struct {
	points []v3.Vec
}

// NewHull returns the hull of a copy of points.
func NewHull(points ...v3.Vec) (*Hull, error) {
	if len(points) == 0 {
		return nil, errors.New("refshape: hull needs at least one point")
	}
	return &Hull{points: append([]v3.Vec(nil), points...)}, nil
}

// SupportPoint returns the first point of the cloud with maximal
// projection on dir.
func (h *Hull) SupportPoint(m sdf.M44, dir v3.Vec) v3.Vec {
	return pose.Support(m, dir, func(l v3.Vec) v3.Vec {
		best := 0
		bestValue := h.points[0].Dot(l)
		for i := 1; i < len(h.points); i++ {
			if value := h.points[i].Dot(l); value > bestValue {
				best = i
				bestValue = value
			}
		}
		return h.points[best]
	})
}

// Vertices returns a copy of the local-space point cloud.
func (h *Hull) Vertices() []v3.Vec {
	return append([]v3.Vec(nil), h.points...)
}

func (h *Hull) String() string {
	return fmt.Sprintf("hull(%d points)", len(h.points))
}
