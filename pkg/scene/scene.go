// Package scene holds named, posed bodies: the shapes a probe script
// builds and queries. A scene is built once per evaluation and treated as
// immutable afterwards; each evaluation produces a new scene.
package scene

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/chazu/supportmap/pkg/refshape"
	"github.com/deadsy/sdfx/sdf"
)

// BodyID is a content-addressed identifier for a body.
type BodyID uint64

// NewBodyID hashes a body name and shape description into an ID.
func NewBodyID(name, shape string) BodyID {
	h := xxhash.New()
	h.WriteString(name)
	h.Write([]byte{0})
	h.WriteString(shape)
	return BodyID(h.Sum64())
}

// IsZero reports whether the ID is unset.
func (id BodyID) IsZero() bool {
	return id == 0
}

func (id BodyID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// Short returns the first eight hex digits, for logs and messages.
func (id BodyID) Short() string {
	return id.String()[:8]
}

// Body is a shape placed in the scene under a pose.
type Body struct {
	ID    BodyID         `json:"id"`
	Name  string         `json:"name"`
	Shape refshape.Shape `json:"-"`
	Pose  sdf.M44        `json:"-"`
}

// Describe returns the body's shape description.
func (b *Body) Describe() string {
	return describe(b.Shape)
}

func describe(s refshape.Shape) string {
	if st, ok := s.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", s)
}

// Errors returned by AddBody.
var (
	ErrNoName    = errors.New("scene: body name is empty")
	ErrNoShape   = errors.New("scene: body has no shape")
	ErrDuplicate = errors.New("scene: duplicate body name")
)

// Scene is an ordered set of uniquely named bodies.
type Scene struct {
	bodies    map[BodyID]*Body
	order     []BodyID
	nameIndex map[string]BodyID
}

// New creates an empty Scene.
func New() *Scene {
	return &Scene{
		bodies:    make(map[BodyID]*Body),
		nameIndex: make(map[string]BodyID),
	}
}

// AddBody places shape in the scene under pose m and returns the new body.
func (s *Scene) AddBody(name string, shape refshape.Shape, m sdf.M44) (*Body, error) {
	if name == "" {
		return nil, ErrNoName
	}
	if shape == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoShape, name)
	}
	if _, ok := s.nameIndex[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicate, name)
	}

	b := &Body{
		ID:    NewBodyID(name, describe(shape)),
		Name:  name,
		Shape: shape,
		Pose:  m,
	}
	s.bodies[b.ID] = b
	s.order = append(s.order, b.ID)
	s.nameIndex[name] = b.ID
	return b, nil
}

// Lookup returns the body with the given name, or nil.
func (s *Scene) Lookup(name string) *Body {
	id, ok := s.nameIndex[name]
	if !ok {
		return nil
	}
	return s.bodies[id]
}

// MustLookup returns the body with the given name, or panics.
func (s *Scene) MustLookup(name string) *Body {
	b := s.Lookup(name)
	if b == nil {
		panic(fmt.Sprintf("scene: no body named %q", name))
	}
	return b
}

// Get returns the body with the given ID, or nil.
func (s *Scene) Get(id BodyID) *Body {
	return s.bodies[id]
}

// Bodies returns every body in insertion order.
func (s *Scene) Bodies() []*Body {
	bodies := make([]*Body, 0, len(s.order))
	for _, id := range s.order {
		bodies = append(bodies, s.bodies[id])
	}
	return bodies
}

// Len returns the number of bodies.
func (s *Scene) Len() int {
	return len(s.order)
}
