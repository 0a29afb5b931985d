package supportmap

import (
	"fmt"
	"math"
)

// Vector is the algebra the contract needs from a point/direction type.
// Points and directions share one type; the scalar is float64.
// deadsy/sdfx v2.Vec and v3.Vec satisfy it.
type Vector[V any] interface {
	Dot(V) float64
	Length() float64
	Normalize() V
}

// Unit is a direction guaranteed to have unit length.
// The zero value is not a valid Unit.
type Unit[V Vector[V]] struct {
	v V
}

// NewUnit normalizes v. It reports false when v has zero, NaN or infinite
// length, since no direction can be derived from it.
func NewUnit[V Vector[V]](v V) (Unit[V], bool) {
	l := v.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return Unit[V]{}, false
	}
	return Unit[V]{v: v.Normalize()}, true
}

// MustUnit is like NewUnit but panics when v cannot be normalized.
// Intended for constant directions.
func MustUnit[V Vector[V]](v V) Unit[V] {
	u, ok := NewUnit(v)
	if !ok {
		panic(fmt.Sprintf("supportmap: cannot normalize %v", v))
	}
	return u
}

// UnitUnchecked wraps v as a Unit without normalizing it.
// The caller guarantees that v already has unit length.
func UnitUnchecked[V Vector[V]](v V) Unit[V] {
	return Unit[V]{v: v}
}

// Vec returns the underlying unit-length vector.
func (u Unit[V]) Vec() V {
	return u.v
}

func (u Unit[V]) String() string {
	return fmt.Sprintf("unit%v", u.v)
}
