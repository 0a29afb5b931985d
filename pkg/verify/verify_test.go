package verify_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/chazu/supportmap/pkg/pose"
	"github.com/chazu/supportmap/pkg/refshape"
	"github.com/chazu/supportmap/pkg/supportmap"
	"github.com/chazu/supportmap/pkg/verify"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drifting returns a different point on every call.
type drifting struct {
	calls atomic.Int64
}

func (d *drifting) SupportPoint(_ sdf.M44, _ v3.Vec) v3.Vec {
	return v3.Vec{X: float64(d.calls.Add(1))}
}

// skewedToward overrides the unit query with an inconsistent answer.
type skewedToward struct{ refshape.Ball }

func (s skewedToward) SupportPointToward(m sdf.M44, dir refshape.Unit) v3.Vec {
	return s.SupportPoint(m, dir.Vec()).Add(v3.Vec{X: 1e-9})
}

// overwritingArea clobbers the accumulator before appending.
type overwritingArea struct{ refshape.Ball }

func (o overwritingArea) SupportAreaToward(m sdf.M44, dir refshape.Unit, _ float64, dst []v3.Vec) []v3.Vec {
	p := o.SupportPoint(m, dir.Vec())
	if len(dst) > 0 {
		dst[0] = p
	}
	return append(dst, p)
}

// silentArea appends nothing.
type silentArea struct{ refshape.Ball }

func (silentArea) SupportAreaToward(_ sdf.M44, _ refshape.Unit, _ float64, dst []v3.Vec) []v3.Vec {
	return dst
}

// overshootingArea appends a point beyond the support plane.
type overshootingArea struct{ refshape.Ball }

func (o overshootingArea) SupportAreaToward(m sdf.M44, dir refshape.Unit, _ float64, dst []v3.Vec) []v3.Vec {
	return append(dst, o.SupportPoint(m, dir.Vec()).Add(dir.Vec()))
}

// wideArea appends a far point well below the support plane.
type wideArea struct{ refshape.Ball }

func (w wideArea) SupportAreaToward(m sdf.M44, dir refshape.Unit, _ float64, dst []v3.Vec) []v3.Vec {
	p := w.SupportPoint(m, dir.Vec())
	return append(dst, p, p.Sub(dir.Vec().MulScalar(w.Radius)))
}

var ball = refshape.Ball{Radius: 1.5}

func TestReferenceShapesPass(t *testing.T) {
	hull, err := refshape.NewHull(v3.Vec{X: 1}, v3.Vec{Y: 1}, v3.Vec{Z: 1}, v3.Vec{X: -1, Y: -1, Z: -1})
	require.NoError(t, err)
	shapes := map[string]refshape.Shape{
		"ball":    ball,
		"cuboid":  refshape.Cuboid{HalfExtents: v3.Vec{X: 1, Y: 2, Z: 3}},
		"capsule": refshape.Capsule{HalfHeight: 2, Radius: 0.5},
		"hull":    hull,
	}
	rigid := pose.Compose(pose.Translate(1, -2, 3), pose.Rotate(15, 30, 45))
	poses := map[string]sdf.M44{
		"rigid":     rigid,
		"stretched": pose.Compose(rigid, sdf.Scale3d(v3.Vec{X: 1, Y: 3, Z: 0.2})),
		"sheared":   pose.Compose(rigid, pose.Compose(sdf.Scale3d(v3.Vec{X: 5, Y: 1, Z: 1}), pose.Rotate(0, 0, 30))),
	}
	dirs := verify.Directions(64)

	for name, s := range shapes {
		for poseName, m := range poses {
			t.Run(name+"/"+poseName, func(t *testing.T) {
				assert.Empty(t, verify.Equivalence(s, m, dirs))
				assert.Empty(t, verify.Determinism(s, m, dirs, 3))
				assert.Empty(t, verify.DefaultArea(s, m, dirs, []float64{0, 0.1, 1}))
				assert.Empty(t, verify.AreaAppendOnly(s, m, dirs, 0.2))
				assert.Empty(t, verify.AreaExtremal(s, m, dirs, 0.2, 1e-9))
				assert.Empty(t, verify.Concurrent(context.Background(), s, m, dirs, 8))
			})
		}
	}
}

func TestEquivalenceDetectsSkewedOverride(t *testing.T) {
	got := verify.Equivalence[v3.Vec, sdf.M44](skewedToward{ball}, pose.Identity(), verify.Directions(8))
	require.NotEmpty(t, got)
	assert.Equal(t, verify.CheckEquivalence, got[0].Check)
}

func TestEquivalenceSkipsZeroDirection(t *testing.T) {
	got := verify.Equivalence[v3.Vec, sdf.M44](skewedToward{ball}, pose.Identity(), []v3.Vec{{}})
	assert.Empty(t, got)
}

func TestDeterminismDetectsDrift(t *testing.T) {
	got := verify.Determinism[v3.Vec, sdf.M44](&drifting{}, pose.Identity(), verify.Directions(0), 2)
	assert.Len(t, got, 14)
}

func TestDefaultAreaSkipsRefinedShapes(t *testing.T) {
	got := verify.DefaultArea[v3.Vec, sdf.M44](silentArea{ball}, pose.Identity(), verify.Directions(4), []float64{0.5})
	assert.Empty(t, got)
}

func TestAreaAppendOnly(t *testing.T) {
	dirs := verify.Directions(4)
	tests := []struct {
		name  string
		shape refshape.Shape
		want  string
	}{
		{"overwrites", overwritingArea{ball}, "modified"},
		{"appends nothing", silentArea{ball}, "grew from 2 to 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := verify.AreaAppendOnly(tt.shape, pose.Identity(), dirs, 0.1)
			require.NotEmpty(t, got)
			assert.Equal(t, verify.CheckAppendOnly, got[0].Check)
			assert.Contains(t, got[0].Message, tt.want)
		})
	}
}

func TestAreaExtremal(t *testing.T) {
	dirs := verify.Directions(4)
	t.Run("beyond", func(t *testing.T) {
		got := verify.AreaExtremal[v3.Vec, sdf.M44](overshootingArea{ball}, pose.Identity(), dirs, 0.1, 1e-9)
		require.NotEmpty(t, got)
		assert.Contains(t, got[0].Message, "beyond")
	})
	t.Run("too far below", func(t *testing.T) {
		got := verify.AreaExtremal[v3.Vec, sdf.M44](wideArea{ball}, pose.Identity(), dirs, 0.1, 1e-9)
		require.NotEmpty(t, got)
		assert.Contains(t, got[0].Message, "short")
	})
	t.Run("right angle admits anything below", func(t *testing.T) {
		got := verify.AreaExtremal[v3.Vec, sdf.M44](wideArea{ball}, pose.Identity(), dirs, 3, 1e-9)
		assert.Empty(t, got)
	})
}

func TestExtremal(t *testing.T) {
	c := refshape.Cuboid{HalfExtents: v3.Vec{X: 1, Y: 2, Z: 3}}
	corners := []v3.Vec{
		{X: 1, Y: 2, Z: 3}, {X: -1, Y: 2, Z: 3}, {X: 1, Y: -2, Z: 3}, {X: 1, Y: 2, Z: -3},
		{X: -1, Y: -2, Z: 3}, {X: -1, Y: 2, Z: -3}, {X: 1, Y: -2, Z: -3}, {X: -1, Y: -2, Z: -3},
	}
	dirs := verify.Directions(32)

	assert.Empty(t, verify.Extremal[v3.Vec, sdf.M44](c, pose.Identity(), dirs, corners, 1e-12))

	// A point outside the box must be caught for the directions it beats.
	outside := append(corners, v3.Vec{X: 5})
	got := verify.Extremal[v3.Vec, sdf.M44](c, pose.Identity(), dirs, outside, 1e-12)
	require.NotEmpty(t, got)
	assert.Equal(t, verify.CheckExtremal, got[0].Check)
	assert.Equal(t, 0, got[0].Index, "+X is the first direction")
}

func TestConcurrentDetectsDrift(t *testing.T) {
	got := verify.Concurrent[v3.Vec, sdf.M44](context.Background(), &drifting{}, pose.Identity(), verify.Directions(2), 4)
	require.Len(t, got, 1)
	assert.Equal(t, -1, got[0].Index)
	assert.Contains(t, got[0].Error(), "concurrent")
}

func TestFingerprintStable(t *testing.T) {
	dirs := verify.Directions(16)
	m := pose.Rotate(10, 0, 0)
	a := verify.Fingerprint[v3.Vec, sdf.M44](ball, m, dirs)
	b := verify.Fingerprint[v3.Vec, sdf.M44](ball, m, dirs)
	assert.Equal(t, a, b)

	other := verify.Fingerprint[v3.Vec, sdf.M44](refshape.Ball{Radius: 1.5000001}, m, dirs)
	assert.NotEqual(t, a, other)
}

func TestDirections(t *testing.T) {
	dirs := verify.Directions(10)
	require.Len(t, dirs, 24)
	for i, d := range dirs[14:] {
		assert.InDelta(t, 1, d.Length(), 1e-12, "lattice direction %d", i)
	}
	assert.Equal(t, dirs, verify.Directions(10))
}

// Func adapters plug into the checks like any shape.
func TestFuncShape(t *testing.T) {
	origin := supportmap.Func[v3.Vec, sdf.M44](func(m sdf.M44, _ v3.Vec) v3.Vec {
		return pose.Apply(m, v3.Vec{})
	})
	assert.Empty(t, verify.DefaultArea[v3.Vec, sdf.M44](origin, pose.Translate(1, 1, 1), verify.Directions(4), []float64{0, 1}))
}
