package scene

import (
	"context"
	"fmt"
	"runtime"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/pose"
	"github.com/chazu/supportmap/pkg/refshape"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"golang.org/x/sync/errgroup"
)

// VertexTolerance is the sampling tolerance for shapes sampled at their
// exact vertices.
const VertexTolerance = 1e-9

// Samples are world-space boundary points of one body, obtained without
// its support mapping. Each point lies within Tolerance of the surface.
type Samples struct {
	Points    []v3.Vec
	Tolerance float64
}

// SampleBody samples the boundary of b. Shapes with an implicit
// description are tessellated by k; vertex clouds contribute their
// vertices. ok is false for shapes offering neither.
func SampleBody(b *Body, k kernel.Kernel) (samples Samples, ok bool, err error) {
	switch s := b.Shape.(type) {
	case refshape.Implicit:
		solid, err := s.Solid(k)
		if err != nil {
			return Samples{}, false, fmt.Errorf("scene: body %q: %w", b.Name, err)
		}
		pts, tol, err := kernel.Sample(k, solid, b.Pose)
		if err != nil {
			return Samples{}, false, fmt.Errorf("scene: body %q: %w", b.Name, err)
		}
		return Samples{Points: pts, Tolerance: tol}, true, nil

	case refshape.Vertexer:
		local := s.Vertices()
		pts := make([]v3.Vec, 0, len(local))
		for _, p := range local {
			pts = append(pts, pose.Apply(b.Pose, p))
		}
		return Samples{Points: pts, Tolerance: VertexTolerance}, true, nil

	default:
		return Samples{}, false, nil
	}
}

// Sample samples every body of s that can be sampled, tessellating in
// parallel. The result is keyed by body ID; bodies without a boundary
// description are absent. The kernel must be safe for concurrent use.
func Sample(ctx context.Context, s *Scene, k kernel.Kernel) (map[BodyID]Samples, error) {
	bodies := s.Bodies()
	results := make([]Samples, len(bodies))
	found := make([]bool, len(bodies))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, b := range bodies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			samples, ok, err := SampleBody(b, k)
			if err != nil {
				return err
			}
			results[i], found[i] = samples, ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[BodyID]Samples, len(bodies))
	for i, b := range bodies {
		if found[i] {
			out[b.ID] = results[i]
		}
	}
	return out, nil
}
