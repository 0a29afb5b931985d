package refshape

import (
	"fmt"
	"math"
	"sort"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/pose"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Cuboid is an axis-aligned box centred on its local origin.
//
// The support point is the vertex whose coordinate signs match the local
// direction; a zero component picks the positive side, so a zero
// direction yields the (+,+,+) vertex.
type Cuboid struct {
	HalfExtents v3.Vec
}

// NewCuboid returns a box with the given half extents.
func NewCuboid(hx, hy, hz float64) (Cuboid, error) {
	if !(hx > 0 && hy > 0 && hz > 0) {
		return Cuboid{}, fmt.Errorf("refshape: cuboid half extents (%v, %v, %v) must be positive", hx, hy, hz)
	}
	return Cuboid{HalfExtents: v3.Vec{X: hx, Y: hy, Z: hz}}, nil
}

// SupportPoint returns the vertex of the box furthest along dir.
func (c Cuboid) SupportPoint(m sdf.M44, dir v3.Vec) v3.Vec {
	return pose.Support(m, dir, c.vertex)
}

func (c Cuboid) vertex(l v3.Vec) v3.Vec {
	h := c.HalfExtents
	return v3.Vec{X: sign(l.X) * h.X, Y: sign(l.Y) * h.Y, Z: sign(l.Z) * h.Z}
}

// SupportAreaToward appends the vertices of the face, edge or single vertex
// of the box that supports dir within angle.
//
// Releasing an axis adds the vertices across that axis's edge. Axes are
// released in order of increasing world-space tilt of their edge against
// the supporting plane, as long as every added vertex falls short of the
// support point by at most sin(angle) times its world distance from it.
// Tilts are measured in world space. The axis with the steepest edge is
// never released. The
// first appended point is always the support point. For a direction equal
// to a face normal this yields the face's four vertices.
func (c Cuboid) SupportAreaToward(m sdf.M44, dir Unit, angle float64, dst []v3.Vec) []v3.Vec {
	d := dir.Vec()
	base := c.vertex(pose.LocalDirection(m, d))

	var (
		edges [3]v3.Vec
		drops [3]float64
		tilts [3]float64
	)
	for axis := range edges {
		edges[axis] = pose.Direction(m, flip(base, axis).Sub(base))
		drops[axis] = -d.Dot(edges[axis])
		if n := edges[axis].Length(); n > 0 {
			tilts[axis] = drops[axis] / n
		}
	}
	order := []int{0, 1, 2}
	sort.SliceStable(order, func(i, j int) bool { return tilts[order[i]] < tilts[order[j]] })

	limit := sinClamped(angle)
	var free []int
	for _, axis := range order[:2] {
		next := append(append([]int(nil), free...), axis)
		if !withinTilt(next, edges, drops, limit) {
			break
		}
		free = next
	}
	sort.Ints(free)

	for mask := 0; mask < 1<<len(free); mask++ {
		p := base
		for bit, axis := range free {
			if mask&(1<<bit) != 0 {
				p = flip(p, axis)
			}
		}
		dst = append(dst, pose.Apply(m, p))
	}
	return dst
}

// withinTilt reports whether every vertex reached by flipping a non-empty
// subset of axes drops at most limit times its distance from the base
// vertex.
func withinTilt(axes []int, edges [3]v3.Vec, drops [3]float64, limit float64) bool {
	for mask := 1; mask < 1<<len(axes); mask++ {
		var offset v3.Vec
		var drop float64
		for bit, axis := range axes {
			if mask&(1<<bit) != 0 {
				offset = offset.Add(edges[axis])
				drop += drops[axis]
			}
		}
		if drop > limit*offset.Length() {
			return false
		}
	}
	return true
}

// Solid describes the box in k.
func (c Cuboid) Solid(k kernel.Kernel) (kernel.Solid, error) {
	h := c.HalfExtents
	return k.Box(h.X, h.Y, h.Z)
}

func (c Cuboid) String() string {
	h := c.HalfExtents
	return fmt.Sprintf("cuboid(%g, %g, %g)", h.X, h.Y, h.Z)
}

func flip(p v3.Vec, axis int) v3.Vec {
	switch axis {
	case 0:
		p.X = -p.X
	case 1:
		p.Y = -p.Y
	default:
		p.Z = -p.Z
	}
	return p
}

// sinClamped returns sin(angle) for angle in [0, π/2], clamping outside.
func sinClamped(angle float64) float64 {
	switch {
	case !(angle > 0):
		return 0
	case angle >= math.Pi/2:
		return 1
	}
	return math.Sin(angle)
}
