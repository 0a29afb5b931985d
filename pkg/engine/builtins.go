package engine

import (
	"context"
	"fmt"
	"math"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/pose"
	"github.com/chazu/supportmap/pkg/refshape"
	"github.com/chazu/supportmap/pkg/scene"
	"github.com/chazu/supportmap/pkg/supportmap"
	"github.com/chazu/supportmap/pkg/verify"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// Settings of the `check` builtin.
const (
	DefaultCheckAngle = 0.1 // angular tolerance for area sampling
	CheckWorkers      = 4   // goroutines racing in the concurrency check
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a v3.Vec.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a shape so it can be returned from `ball`, `cuboid`,
// `capsule` and `hull` and consumed by `body`.
type sexpShape struct {
	shape refshape.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %s)", s.shape)
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// sexpPose wraps a pose.
type sexpPose struct {
	m    sdf.M44
	desc string
}

func (p *sexpPose) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pose %s)", p.desc)
}
func (p *sexpPose) Type() *zygo.RegisteredType { return nil }

// sexpBodyRef wraps a scene.BodyID so it can be passed between builtins.
type sexpBodyRef struct {
	id   scene.BodyID
	name string // human-readable name for error messages
}

func (b *sexpBodyRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(body %q)", b.name)
}
func (b *sexpBodyRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toVec3 extracts a v3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toVec3Args accepts either a single vec3 or three numbers.
func toVec3Args(args []zygo.Sexp) (v3.Vec, error) {
	switch len(args) {
	case 1:
		return toVec3(args[0])
	case 3:
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return v3.Vec{}, err
			}
			xyz[i] = f
		}
		return v3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
	}
	return v3.Vec{}, fmt.Errorf("expected a vec3 or three numbers, got %d arguments", len(args))
}

// toShape extracts a shape from a sexpShape.
func toShape(s zygo.Sexp) (refshape.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// toPose extracts a pose from a sexpPose.
func toPose(s zygo.Sexp) (*sexpPose, error) {
	if p, ok := s.(*sexpPose); ok {
		return p, nil
	}
	return nil, fmt.Errorf("expected pose, got %T (%s)", s, s.SexpString(nil))
}

// toDirection extracts a query direction and rejects the zero vector and
// non-finite components, for which no support point is defined.
func toDirection(s zygo.Sexp) (v3.Vec, error) {
	d, err := toVec3(s)
	if err != nil {
		return v3.Vec{}, err
	}
	l := d.Length()
	if l == 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return v3.Vec{}, fmt.Errorf("direction %v must be finite and non-zero", d)
	}
	return d, nil
}

func vecList(points []v3.Vec) zygo.Sexp {
	items := make([]zygo.Sexp, 0, len(points))
	for _, p := range points {
		items = append(items, &sexpVec3{vec: p})
	}
	return zygo.MakeList(items)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// probe is the state builtins share during one evaluation.
type probe struct {
	report    *Report
	kernel    kernel.Kernel
	dirs      []v3.Vec
	tolerance float64
	log       *zap.Logger
}

// body resolves a body reference against the scene.
func (p *probe) body(s zygo.Sexp) (*scene.Body, error) {
	ref, ok := s.(*sexpBodyRef)
	if !ok {
		return nil, fmt.Errorf("expected body reference, got %T (%s)", s, s.SexpString(nil))
	}
	b := p.report.Scene.Get(ref.id)
	if b == nil {
		return nil, fmt.Errorf("unknown body %q", ref.name)
	}
	return b, nil
}

// check runs the named checks on b and returns the violations found and
// the number of boundary samples used.
func (p *probe) check(b *scene.Body, angle float64, only string) ([]verify.Violation, int, error) {
	var out []verify.Violation
	want := func(name string) bool { return only == "" || only == name }

	if want(verify.CheckEquivalence) {
		out = append(out, verify.Equivalence(b.Shape, b.Pose, p.dirs)...)
	}
	if want(verify.CheckDeterminism) {
		out = append(out, verify.Determinism(b.Shape, b.Pose, p.dirs, 2)...)
	}
	if want(verify.CheckDefaultArea) {
		out = append(out, verify.DefaultArea(b.Shape, b.Pose, p.dirs, []float64{0, angle})...)
	}
	if want(verify.CheckAppendOnly) {
		out = append(out, verify.AreaAppendOnly(b.Shape, b.Pose, p.dirs, angle)...)
	}
	if want(verify.CheckAreaBound) {
		out = append(out, verify.AreaExtremal(b.Shape, b.Pose, p.dirs, angle, p.tolerance)...)
	}

	if want(verify.CheckConcurrent) {
		out = append(out, verify.Concurrent(context.Background(), b.Shape, b.Pose, p.dirs, CheckWorkers)...)
	}

	var n int
	if want(verify.CheckExtremal) {
		samples, ok, err := scene.SampleBody(b, p.kernel)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			n = len(samples.Points)
			out = append(out, verify.Extremal(b.Shape, b.Pose, p.dirs, samples.Points, samples.Tolerance+p.tolerance)...)
		}
	}
	return out, n, nil
}

// registerBuiltins installs all probe builtins into a zygomys environment.
// The builtins operate on the probe's scene and report, populating them
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *probe) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		v, err := toVec3Args(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: %w", err)
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (dot (vec3 1 0 0) (vec3 2 3 4))
	// -----------------------------------------------------------------------
	env.AddFunction("dot", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("dot requires exactly 2 arguments, got %d", len(args))
		}
		a, err := toVec3(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dot: %w", err)
		}
		b, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("dot: %w", err)
		}
		return &zygo.SexpFloat{Val: a.Dot(b)}, nil
	})

	// -----------------------------------------------------------------------
	// (ball :radius 2)
	// -----------------------------------------------------------------------
	env.AddFunction("ball", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ball: %w", err)
		}
		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("ball requires :radius")
		}
		r, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ball: radius: %w", err)
		}
		b, err := refshape.NewBall(r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: b}, nil
	})

	// -----------------------------------------------------------------------
	// (cuboid :half-extents (vec3 1 2 3))
	// -----------------------------------------------------------------------
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: %w", err)
		}
		v, ok := pa.kw["half-extents"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("cuboid requires :half-extents")
		}
		h, err := toVec3(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cuboid: half-extents: %w", err)
		}
		c, err := refshape.NewCuboid(h.X, h.Y, h.Z)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: c}, nil
	})

	// -----------------------------------------------------------------------
	// (capsule :half-height 2 :radius 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("capsule", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: %w", err)
		}
		var hh, r float64
		if v, ok := pa.kw["half-height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("capsule: half-height: %w", err)
			}
			hh = f
		}
		v, ok := pa.kw["radius"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("capsule requires :radius")
		}
		r, err = toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("capsule: radius: %w", err)
		}
		c, err := refshape.NewCapsule(hh, r)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: c}, nil
	})

	// -----------------------------------------------------------------------
	// (hull (vec3 1 0 0) (vec3 0 1 0) ...) or (hull (list ...))
	// -----------------------------------------------------------------------
	env.AddFunction("hull", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		items := args
		if len(args) == 1 {
			if list, err := listItems(args[0]); err == nil {
				items = list
			}
		}
		points := make([]v3.Vec, 0, len(items))
		for i, item := range items {
			v, err := toVec3(item)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("hull: point %d: %w", i, err)
			}
			points = append(points, v)
		}
		h, err := refshape.NewHull(points...)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpShape{shape: h}, nil
	})

	// -----------------------------------------------------------------------
	// (identity)
	// -----------------------------------------------------------------------
	env.AddFunction("identity", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &sexpPose{m: pose.Identity(), desc: "identity"}, nil
	})

	// -----------------------------------------------------------------------
	// (translate (vec3 5 0 0)) or (translate 5 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toVec3Args(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		return &sexpPose{
			m:    pose.Translate(v.X, v.Y, v.Z),
			desc: fmt.Sprintf("translate %g %g %g", v.X, v.Y, v.Z),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (rotate (vec3 0 0 90)) or (rotate 0 0 90), degrees about X, Y, Z
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := toVec3Args(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		return &sexpPose{
			m:    pose.Rotate(v.X, v.Y, v.Z),
			desc: fmt.Sprintf("rotate %g %g %g", v.X, v.Y, v.Z),
		}, nil
	})

	// -----------------------------------------------------------------------
	// (compose outer ... inner): the rightmost pose applies first
	// -----------------------------------------------------------------------
	env.AddFunction("compose", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		out := &sexpPose{m: pose.Identity(), desc: "compose"}
		for i, a := range args {
			ps, err := toPose(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("compose: argument %d: %w", i, err)
			}
			out.m = pose.Compose(out.m, ps.m)
			out.desc += " (" + ps.desc + ")"
		}
		return out, nil
	})

	// -----------------------------------------------------------------------
	// (body "name" shape :pose p)
	// -----------------------------------------------------------------------
	env.AddFunction("body", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: %w", err)
		}
		if len(pa.positional) < 2 {
			return zygo.SexpNull, fmt.Errorf("body requires a name and a shape")
		}

		bodyName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: name: %w", err)
		}
		shape, err := toShape(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("body: %w", err)
		}
		m := pose.Identity()
		if v, ok := pa.kw["pose"]; ok {
			ps, err := toPose(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("body: pose: %w", err)
			}
			m = ps.m
		}

		b, err := p.report.Scene.AddBody(bodyName, shape, m)
		if err != nil {
			return zygo.SexpNull, err
		}
		p.log.Debug("body added", zap.String("body", b.Name), zap.Stringer("id", b.ID), zap.String("shape", b.Describe()))
		return &sexpBodyRef{id: b.ID, name: b.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (lookup "name")
	// -----------------------------------------------------------------------
	env.AddFunction("lookup", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return zygo.SexpNull, fmt.Errorf("lookup requires a name argument")
		}
		bodyName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("lookup: name: %w", err)
		}
		b := p.report.Scene.Lookup(bodyName)
		if b == nil {
			return zygo.SexpNull, fmt.Errorf("lookup: no body named %q", bodyName)
		}
		return &sexpBodyRef{id: b.ID, name: b.Name}, nil
	})

	// -----------------------------------------------------------------------
	// (support b (vec3 1 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("support", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("support requires a body and a direction")
		}
		b, err := p.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support: %w", err)
		}
		d, err := toDirection(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support: %w", err)
		}

		pt := b.Shape.SupportPoint(b.Pose, d)
		p.report.record(Query{Body: b.Name, Op: OpSupport, Direction: &d, Points: []v3.Vec{pt}})
		return &sexpVec3{vec: pt}, nil
	})

	// -----------------------------------------------------------------------
	// (support-toward b (vec3 0 0 1)): the direction is normalized first
	// -----------------------------------------------------------------------
	env.AddFunction("support_toward", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("support-toward requires a body and a direction")
		}
		b, err := p.body(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support-toward: %w", err)
		}
		d, err := toDirection(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support-toward: %w", err)
		}

		u := supportmap.MustUnit(d)
		pt := supportmap.SupportPointToward(b.Shape, b.Pose, u)
		ud := u.Vec()
		p.report.record(Query{Body: b.Name, Op: OpSupportToward, Direction: &ud, Points: []v3.Vec{pt}})
		return &sexpVec3{vec: pt}, nil
	})

	// -----------------------------------------------------------------------
	// (support-area b (vec3 0 0 1) :angle 0.1)
	// -----------------------------------------------------------------------
	env.AddFunction("support_area", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support-area: %w", err)
		}
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("support-area requires a body and a direction")
		}
		b, err := p.body(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support-area: %w", err)
		}
		d, err := toDirection(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("support-area: %w", err)
		}
		var angle float64
		if v, ok := pa.kw["angle"]; ok {
			angle, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("support-area: angle: %w", err)
			}
		}

		u := supportmap.MustUnit(d)
		pts := supportmap.SupportAreaToward(b.Shape, b.Pose, u, angle, nil)
		ud := u.Vec()
		p.report.record(Query{Body: b.Name, Op: OpSupportArea, Direction: &ud, Angle: angle, Points: pts})
		return vecList(pts), nil
	})

	// -----------------------------------------------------------------------
	// (check b :angle 0.1 :only :extremal): returns the violation count
	// -----------------------------------------------------------------------
	env.AddFunction("check", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa, err := parseArgs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("check: %w", err)
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("check requires a body")
		}
		b, err := p.body(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("check: %w", err)
		}
		angle := DefaultCheckAngle
		if v, ok := pa.kw["angle"]; ok {
			angle, err = toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("check: angle: %w", err)
			}
		}
		var only string
		if v, ok := pa.kw["only"]; ok {
			only, err = toKeywordString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("check: only: %w", err)
			}
			if !knownCheck(only) {
				return zygo.SexpNull, fmt.Errorf("check: unknown check %q", only)
			}
		}

		violations, samples, err := p.check(b, angle, only)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("check: %w", err)
		}
		p.report.record(Query{Body: b.Name, Op: OpCheck, Angle: angle, Samples: samples, Violations: violations})
		p.log.Debug("check finished",
			zap.String("body", b.Name),
			zap.Int("samples", samples),
			zap.Int("violations", len(violations)))
		return &zygo.SexpInt{Val: int64(len(violations))}, nil
	})
}

func knownCheck(name string) bool {
	switch name {
	case verify.CheckEquivalence, verify.CheckDeterminism, verify.CheckDefaultArea,
		verify.CheckAppendOnly, verify.CheckAreaBound, verify.CheckConcurrent,
		verify.CheckExtremal:
		return true
	}
	return false
}
