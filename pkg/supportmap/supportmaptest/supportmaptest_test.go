package supportmaptest_test

import (
	"fmt"
	"testing"

	"github.com/chazu/supportmap/pkg/pose"
	"github.com/chazu/supportmap/pkg/refshape"
	"github.com/chazu/supportmap/pkg/supportmap/supportmaptest"
	"github.com/chazu/supportmap/pkg/verify"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
)

// recorder collects failures instead of failing the enclosing test.
type recorder struct {
	testing.TB
	errs []string
}

func (r *recorder) Helper() {}

func (r *recorder) Errorf(format string, args ...any) {
	r.errs = append(r.errs, fmt.Sprintf(format, args...))
}

type lyingToward struct{ refshape.Ball }

func (l lyingToward) SupportPointToward(m sdf.M44, _ refshape.Unit) v3.Vec {
	return pose.Apply(m, v3.Vec{})
}

type shrinkingArea struct{ refshape.Ball }

func (shrinkingArea) SupportAreaToward(_ sdf.M44, _ refshape.Unit, _ float64, dst []v3.Vec) []v3.Vec {
	return dst[:0]
}

var poses = []sdf.M44{
	pose.Identity(),
	pose.Translate(5, 0, -2),
	pose.Compose(pose.Translate(-1, 4, 2), pose.Rotate(30, -60, 10)),
}

func TestRunReferenceShapes(t *testing.T) {
	hull, err := refshape.NewHull(v3.Vec{X: 2}, v3.Vec{Y: 1}, v3.Vec{X: -1, Y: -1}, v3.Vec{Z: 3}, v3.Vec{})
	if err != nil {
		t.Fatal(err)
	}
	dirs := verify.Directions(48)

	t.Run("ball", func(t *testing.T) { supportmaptest.Run[v3.Vec, sdf.M44](t, refshape.Ball{Radius: 2}, poses, dirs) })
	t.Run("cuboid", func(t *testing.T) {
		supportmaptest.Run[v3.Vec, sdf.M44](t, refshape.Cuboid{HalfExtents: v3.Vec{X: 0.5, Y: 1, Z: 4}}, poses, dirs)
	})
	t.Run("capsule", func(t *testing.T) {
		supportmaptest.Run[v3.Vec, sdf.M44](t, refshape.Capsule{HalfHeight: 1, Radius: 0.25}, poses, dirs)
	})
	t.Run("hull", func(t *testing.T) { supportmaptest.Run[v3.Vec, sdf.M44](t, hull, poses, dirs) })
}

func TestCheckEquivalenceReports(t *testing.T) {
	r := &recorder{TB: t}
	supportmaptest.CheckEquivalence[v3.Vec, sdf.M44](r, lyingToward{refshape.Ball{Radius: 1}}, pose.Identity(), verify.Directions(0))
	assert.Len(t, r.errs, 14)
	assert.Contains(t, r.errs[0], verify.CheckEquivalence)
}

func TestCheckAreaReports(t *testing.T) {
	r := &recorder{TB: t}
	supportmaptest.CheckArea[v3.Vec, sdf.M44](r, shrinkingArea{refshape.Ball{Radius: 1}}, pose.Identity(), verify.Directions(0), 0.1)
	assert.NotEmpty(t, r.errs)
	assert.Contains(t, r.errs[0], verify.CheckAppendOnly)
}

func TestCheckExtremal(t *testing.T) {
	c := refshape.Cuboid{HalfExtents: v3.Vec{X: 1, Y: 1, Z: 1}}
	inside := []v3.Vec{{X: 1, Y: 1, Z: 1}, {X: -1, Y: -1, Z: -1}, {X: 0.5}}

	r := &recorder{TB: t}
	supportmaptest.CheckExtremal[v3.Vec, sdf.M44](r, c, pose.Identity(), verify.Directions(16), inside, 1e-12)
	assert.Empty(t, r.errs)

	r = &recorder{TB: t}
	supportmaptest.CheckExtremal[v3.Vec, sdf.M44](r, c, pose.Identity(), verify.Directions(16), []v3.Vec{{X: 3}}, 1e-12)
	assert.NotEmpty(t, r.errs)
}
