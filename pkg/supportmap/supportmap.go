package supportmap

// SupportMap is implemented by every convex shape.
//
// SupportPoint returns the point of the shape, placed under pose m, that
// maximizes its dot product with dir. The result is in world space. dir
// need not be normalized but must be non-zero; the result for a zero
// direction is whatever the shape documents.
//
// When several points tie for the maximal projection (a face aligned with
// dir), the shape picks one of them. The choice must be deterministic:
// identical inputs always yield the identical point.
type SupportMap[V Vector[V], M any] interface {
	SupportPoint(m M, dir V) V
}

// TowardSupporter is implemented by shapes that answer unit-direction
// queries faster than the general query. The result must be exactly the
// result of SupportPoint(m, dir.Vec()).
type TowardSupporter[V Vector[V], M any] interface {
	SupportPointToward(m M, dir Unit[V]) V
}

// AreaSupporter is implemented by shapes with a flat or rounded region of
// extreme points, so contact generation can collect more than one point.
//
// SupportAreaToward appends one or more world-space points to dst and
// returns the extended slice. Every appended point lies within angle
// (radians) of the maximal projection along dir. Entries already in dst are
// never modified or removed.
type AreaSupporter[V Vector[V], M any] interface {
	SupportAreaToward(m M, dir Unit[V], angle float64, dst []V) []V
}

// Full is a shape exposing all three operations directly.
type Full[V Vector[V], M any] interface {
	SupportMap[V, M]
	TowardSupporter[V, M]
	AreaSupporter[V, M]
}

// SupportPointToward returns the support point of s along the unit
// direction dir. It uses the shape's TowardSupporter refinement when there
// is one and otherwise calls s.SupportPoint(m, dir.Vec()).
func SupportPointToward[V Vector[V], M any](s SupportMap[V, M], m M, dir Unit[V]) V {
	if t, ok := s.(TowardSupporter[V, M]); ok {
		return t.SupportPointToward(m, dir)
	}
	return s.SupportPoint(m, dir.Vec())
}

// SupportAreaToward appends the support area of s along dir to dst and
// returns the extended slice. Shapes without an AreaSupporter refinement
// contribute exactly one point, SupportPointToward(s, m, dir), whatever the
// angle.
//
// Pass buf[:0] to reuse one buffer across queries.
func SupportAreaToward[V Vector[V], M any](s SupportMap[V, M], m M, dir Unit[V], angle float64, dst []V) []V {
	if a, ok := s.(AreaSupporter[V, M]); ok {
		return a.SupportAreaToward(m, dir, angle, dst)
	}
	return append(dst, SupportPointToward(s, m, dir))
}

// Complete returns s as a Full. Operations s does not refine use the
// defaults of SupportPointToward and SupportAreaToward.
func Complete[V Vector[V], M any](s SupportMap[V, M]) Full[V, M] {
	if f, ok := s.(Full[V, M]); ok {
		return f
	}
	return complete[V, M]{s: s}
}

type complete[V Vector[V], M any] struct {
	s SupportMap[V, M]
}

func (c complete[V, M]) SupportPoint(m M, dir V) V {
	return c.s.SupportPoint(m, dir)
}

func (c complete[V, M]) SupportPointToward(m M, dir Unit[V]) V {
	return SupportPointToward(c.s, m, dir)
}

func (c complete[V, M]) SupportAreaToward(m M, dir Unit[V], angle float64, dst []V) []V {
	return SupportAreaToward(c.s, m, dir, angle, dst)
}

// Func adapts an ordinary function to the SupportMap interface.
type Func[V Vector[V], M any] func(m M, dir V) V

// SupportPoint calls f(m, dir).
func (f Func[V, M]) SupportPoint(m M, dir V) V {
	return f(m, dir)
}

// Posed pairs a shape with the pose it is queried under.
type Posed[V Vector[V], M any] struct {
	Shape SupportMap[V, M]
	Pose  M
}

// AppendAreas appends the support areas of several posed shapes along dir,
// in order, to one accumulator. Contact builders use it to gather candidate
// points of every shape in a pair with a single buffer.
func AppendAreas[V Vector[V], M any](dst []V, dir Unit[V], angle float64, shapes ...Posed[V, M]) []V {
	for _, p := range shapes {
		dst = SupportAreaToward(p.Shape, p.Pose, dir, angle, dst)
	}
	return dst
}
