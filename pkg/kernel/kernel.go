// Package kernel defines the abstract geometry kernel used to describe
// shapes implicitly. An implicit description is independent of a shape's
// support mapping, so points sampled from it can confirm that a support
// point really is extremal. Implementations (sdfx) sit behind this
// interface.
package kernel

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
	// Distance returns the signed distance from p to the surface,
	// negative inside.
	Distance(p v3.Vec) float64
}

// Kernel is the abstract geometry kernel interface.
// All primitives are centred on the origin.
type Kernel interface {
	// Primitives
	Sphere(radius float64) (Solid, error)
	Box(hx, hy, hz float64) (Solid, error)
	Capsule(halfHeight, radius float64) (Solid, error) // axis along Z

	// Transforms
	Transform(s Solid, m sdf.M44) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}

// Sample places s under pose m, tessellates it and returns the mesh
// vertices as boundary samples together with the distance tolerance those
// samples carry. A sample may sit up to one cell diagonal off the true
// surface.
func Sample(k Kernel, s Solid, m sdf.M44) ([]v3.Vec, float64, error) {
	mesh, err := k.ToMesh(k.Transform(s, m))
	if err != nil {
		return nil, 0, fmt.Errorf("kernel: sample: %w", err)
	}
	if mesh.IsEmpty() {
		return nil, 0, fmt.Errorf("kernel: sample: empty mesh")
	}
	return mesh.Points(), mesh.Resolution * math.Sqrt(3), nil
}
