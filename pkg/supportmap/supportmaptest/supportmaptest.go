// Package supportmaptest implements conformance checks for shapes that
// implement the support-mapping contract. Shape packages call these from
// their own tests:
//
//	func TestConformance(t *testing.T) {
//		supportmaptest.Run(t, myShape, poses, dirs)
//	}
package supportmaptest

import (
	"context"
	"fmt"
	"testing"

	"github.com/chazu/supportmap/pkg/supportmap"
	"github.com/chazu/supportmap/pkg/verify"
)

// Angles are the angular tolerances tried by the area checks.
var Angles = []float64{0, 0.05, 0.3, 1}

// DefaultWorkers is the goroutine count used by Run's concurrency check.
const DefaultWorkers = 8

// Eps is the absolute slack allowed by the area bound check.
const Eps = 1e-9

func report(t testing.TB, violations []verify.Violation) {
	t.Helper()
	for _, v := range violations {
		t.Errorf("%v", v)
	}
}

// CheckEquivalence reports unit-direction queries that differ from the
// general query.
func CheckEquivalence[V verify.Point[V], M any](t testing.TB, s supportmap.SupportMap[V, M], m M, dirs []V) {
	t.Helper()
	report(t, verify.Equivalence(s, m, dirs))
}

// CheckDeterminism reports queries whose repetitions disagree.
func CheckDeterminism[V verify.Point[V], M any](t testing.TB, s supportmap.SupportMap[V, M], m M, dirs []V) {
	t.Helper()
	report(t, verify.Determinism(s, m, dirs, 4))
}

// CheckDefaultArea reports fallback area sampling that does not return
// exactly the support point. Shapes refining area sampling pass trivially.
func CheckDefaultArea[V verify.Point[V], M any](t testing.TB, s supportmap.SupportMap[V, M], m M, dirs []V) {
	t.Helper()
	report(t, verify.DefaultArea(s, m, dirs, Angles))
}

// CheckArea reports area sampling that modifies earlier accumulator
// entries, appends nothing, or appends points outside the angular bound.
func CheckArea[V verify.Point[V], M any](t testing.TB, s supportmap.SupportMap[V, M], m M, dirs []V, angle float64) {
	t.Helper()
	report(t, verify.AreaAppendOnly(s, m, dirs, angle))
	report(t, verify.AreaExtremal(s, m, dirs, angle, Eps))
}

// CheckExtremal reports support points beaten by an independent boundary
// sample by more than tol.
func CheckExtremal[V verify.Point[V], M any](t testing.TB, s supportmap.SupportMap[V, M], m M, dirs, samples []V, tol float64) {
	t.Helper()
	if len(samples) == 0 {
		t.Fatal("supportmaptest: no boundary samples")
	}
	report(t, verify.Extremal(s, m, dirs, samples, tol))
}

// CheckConcurrent reports disagreement between concurrent and sequential
// queries of the same shape.
func CheckConcurrent[V verify.Point[V], M any](t testing.TB, s supportmap.SupportMap[V, M], m M, dirs []V, workers int) {
	t.Helper()
	report(t, verify.Concurrent(context.Background(), s, m, dirs, workers))
}

// Run executes every sample-free check for each pose in its own subtest.
func Run[V verify.Point[V], M any](t *testing.T, s supportmap.SupportMap[V, M], poses []M, dirs []V) {
	t.Helper()
	for i, m := range poses {
		t.Run(fmt.Sprintf("pose-%d", i), func(t *testing.T) {
			t.Run("equivalence", func(t *testing.T) { CheckEquivalence(t, s, m, dirs) })
			t.Run("determinism", func(t *testing.T) { CheckDeterminism(t, s, m, dirs) })
			t.Run("default-area", func(t *testing.T) { CheckDefaultArea(t, s, m, dirs) })
			t.Run("area", func(t *testing.T) {
				for _, a := range Angles {
					CheckArea(t, s, m, dirs, a)
				}
			})
			t.Run("concurrent", func(t *testing.T) { CheckConcurrent(t, s, m, dirs, DefaultWorkers) })
		})
	}
}
