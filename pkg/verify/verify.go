// Package verify checks that a shape honours the support-mapping contract.
// Each check runs a set of query directions against one posed shape and
// returns the violations it found; an empty result means the property
// held for every direction tried. Checks never panic on misbehaving shapes
// short of the shape itself panicking.
package verify

import (
	"fmt"
	"math"

	"github.com/chazu/supportmap/pkg/supportmap"
)

// Point is the vector algebra the checks need on top of the contract's.
type Point[V any] interface {
	comparable
	supportmap.Vector[V]
	Sub(V) V
}

// Check names.
const (
	CheckEquivalence = "equivalence"
	CheckDeterminism = "determinism"
	CheckDefaultArea = "default-area"
	CheckAppendOnly  = "append-only"
	CheckAreaBound   = "area-bound"
	CheckExtremal    = "extremal"
	CheckConcurrent  = "concurrent"
)

// Violation is one failed property for one query direction.
type Violation struct {
	Check   string `json:"check"`
	Index   int    `json:"index"` // index of the direction, -1 when not direction-specific
	Message string `json:"message"`
}

func (v Violation) Error() string {
	if v.Index < 0 {
		return fmt.Sprintf("%s: %s", v.Check, v.Message)
	}
	return fmt.Sprintf("%s: direction %d: %s", v.Check, v.Index, v.Message)
}

// Equivalence checks that the unit-direction query returns exactly the
// general query's point for the same unit vector.
func Equivalence[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V) []Violation {
	var out []Violation
	for i, d := range dirs {
		u, ok := supportmap.NewUnit(d)
		if !ok {
			continue
		}
		toward := supportmap.SupportPointToward(s, m, u)
		general := s.SupportPoint(m, u.Vec())
		if toward != general {
			out = append(out, Violation{
				Check:   CheckEquivalence,
				Index:   i,
				Message: fmt.Sprintf("toward %v != general %v", toward, general),
			})
		}
	}
	return out
}

// Determinism repeats every query rounds times and checks that each
// repetition returns the identical point.
func Determinism[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V, rounds int) []Violation {
	var out []Violation
	for i, d := range dirs {
		first := s.SupportPoint(m, d)
		for r := 1; r < rounds; r++ {
			if p := s.SupportPoint(m, d); p != first {
				out = append(out, Violation{
					Check:   CheckDeterminism,
					Index:   i,
					Message: fmt.Sprintf("round %d returned %v, first returned %v", r, p, first),
				})
				break
			}
		}
	}
	return out
}

// DefaultArea checks the fallback area sampling of a shape without an
// AreaSupporter refinement: exactly one point, equal to the unit-direction
// support point, for every angle. Shapes with a refinement are skipped.
func DefaultArea[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V, angles []float64) []Violation {
	if _, ok := s.(supportmap.AreaSupporter[V, M]); ok {
		return nil
	}
	var out []Violation
	for i, d := range dirs {
		u, ok := supportmap.NewUnit(d)
		if !ok {
			continue
		}
		want := supportmap.SupportPointToward(s, m, u)
		for _, a := range angles {
			got := supportmap.SupportAreaToward(s, m, u, a, nil)
			if len(got) != 1 || got[0] != want {
				out = append(out, Violation{
					Check:   CheckDefaultArea,
					Index:   i,
					Message: fmt.Sprintf("angle %g: got %v, want [%v]", a, got, want),
				})
			}
		}
	}
	return out
}

// AreaAppendOnly checks that area sampling appends at least one point to a
// non-empty accumulator and leaves its earlier entries untouched.
func AreaAppendOnly[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V, angle float64) []Violation {
	var out []Violation
	for i, d := range dirs {
		u, ok := supportmap.NewUnit(d)
		if !ok {
			continue
		}
		prefix := []V{
			s.SupportPoint(m, dirs[(i+1)%len(dirs)]),
			s.SupportPoint(m, dirs[(i+len(dirs)/2)%len(dirs)]),
		}
		// Spare capacity lets a misbehaving shape write in place.
		dst := make([]V, len(prefix), len(prefix)+16)
		copy(dst, prefix)

		got := supportmap.SupportAreaToward(s, m, u, angle, dst)
		switch {
		case len(got) <= len(prefix):
			out = append(out, Violation{
				Check:   CheckAppendOnly,
				Index:   i,
				Message: fmt.Sprintf("accumulator grew from %d to %d entries", len(prefix), len(got)),
			})
		case got[0] != prefix[0] || got[1] != prefix[1] || dst[0] != prefix[0] || dst[1] != prefix[1]:
			out = append(out, Violation{
				Check:   CheckAppendOnly,
				Index:   i,
				Message: "earlier accumulator entries were modified",
			})
		}
	}
	return out
}

// AreaExtremal checks that every point appended by area sampling is no
// further along dir than the support point, and falls short of it by no
// more than angle allows: the drop in projection is at most
// sin(angle)·|q−p| (plus eps) for a sample q and support point p.
func AreaExtremal[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V, angle, eps float64) []Violation {
	slope := math.Sin(math.Min(math.Max(angle, 0), math.Pi/2))
	var out []Violation
	for i, d := range dirs {
		u, ok := supportmap.NewUnit(d)
		if !ok {
			continue
		}
		p := supportmap.SupportPointToward(s, m, u)
		hp := u.Vec().Dot(p)
		for j, q := range supportmap.SupportAreaToward(s, m, u, angle, nil) {
			gap := hp - u.Vec().Dot(q)
			if gap < -eps {
				out = append(out, Violation{
					Check:   CheckAreaBound,
					Index:   i,
					Message: fmt.Sprintf("sample %d %v lies %g beyond the support point %v", j, q, -gap, p),
				})
				break
			}
			if bound := slope*q.Sub(p).Length() + eps; gap > bound {
				out = append(out, Violation{
					Check:   CheckAreaBound,
					Index:   i,
					Message: fmt.Sprintf("sample %d %v falls %g short of the support point, bound %g", j, q, gap, bound),
				})
				break
			}
		}
	}
	return out
}

// Extremal checks the support point of every direction against boundary
// samples of the posed shape obtained independently of the support
// mapping. A sample may project past the support point by at most tol
// (per unit of direction length).
func Extremal[V Point[V], M any](s supportmap.SupportMap[V, M], m M, dirs []V, samples []V, tol float64) []Violation {
	var out []Violation
	for i, d := range dirs {
		l := d.Length()
		if l == 0 {
			continue
		}
		p := s.SupportPoint(m, d)
		hp := d.Dot(p)

		worst, worstIdx := 0.0, -1
		for j, q := range samples {
			if excess := (d.Dot(q) - hp) / l; excess > tol && excess > worst {
				worst, worstIdx = excess, j
			}
		}
		if worstIdx >= 0 {
			out = append(out, Violation{
				Check:   CheckExtremal,
				Index:   i,
				Message: fmt.Sprintf("sample %v projects %g past support point %v (tolerance %g)", samples[worstIdx], worst, p, tol),
			})
		}
	}
	return out
}
