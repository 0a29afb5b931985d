package scene

import (
	"fmt"
	"math"

	"github.com/chazu/supportmap/pkg/pose"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Severity indicates whether a finding makes a body unusable or is merely
// informational.
type Severity int

const (
	SeverityError   Severity = iota // queries on the body are meaningless
	SeverityWarning                 // informational
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	BodyID   BodyID   // which body has the problem
	Name     string   // body name
	Message  string   // human-readable description
	Severity Severity // error or warning
}

func (e ValidationError) Error() string {
	if e.BodyID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] body %s (%s): %s", e.Severity, e.Name, e.BodyID.Short(), e.Message)
}

// Validate checks every body's pose and returns the findings. An empty
// slice means the scene is valid. It never mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	for _, b := range s.Bodies() {
		errs = append(errs, validatePose(b)...)
	}
	return errs
}

// validatePose flags poses with non-finite entries, which poison every
// query, and poses whose linear part is singular, which flatten the shape.
func validatePose(b *Body) []ValidationError {
	origin := pose.Apply(b.Pose, v3.Vec{})
	ax := pose.Direction(b.Pose, v3.Vec{X: 1})
	ay := pose.Direction(b.Pose, v3.Vec{Y: 1})
	az := pose.Direction(b.Pose, v3.Vec{Z: 1})

	for _, v := range []v3.Vec{origin, ax, ay, az} {
		if !finite(v) {
			return []ValidationError{{
				BodyID:   b.ID,
				Name:     b.Name,
				Message:  "pose has non-finite entries",
				Severity: SeverityError,
			}}
		}
	}

	if det := ax.Dot(ay.Cross(az)); det == 0 {
		return []ValidationError{{
			BodyID:   b.ID,
			Name:     b.Name,
			Message:  "pose is singular; the shape is flattened",
			Severity: SeverityWarning,
		}}
	}
	return nil
}

func finite(v v3.Vec) bool {
	for _, x := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
