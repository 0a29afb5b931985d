package engine

import (
	"github.com/chazu/supportmap/pkg/scene"
	"github.com/chazu/supportmap/pkg/verify"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Query operations recorded in a Report.
const (
	OpSupport       = "support"
	OpSupportToward = "support-toward"
	OpSupportArea   = "support-area"
	OpCheck         = "check"
)

// Query records one builtin call against a body.
type Query struct {
	Body       string             `json:"body"`
	Op         string             `json:"op"`
	Direction  *v3.Vec            `json:"direction,omitempty"`
	Angle      float64            `json:"angle,omitempty"`
	Points     []v3.Vec           `json:"points,omitempty"`
	Samples    int                `json:"samples,omitempty"`
	Violations []verify.Violation `json:"violations,omitempty"`
}

// Passed reports whether a check query found no violations. Other
// queries always pass.
func (q Query) Passed() bool {
	return len(q.Violations) == 0
}

// Report is the outcome of one evaluation: the scene the source built and
// the queries it made, in order.
type Report struct {
	Scene    *scene.Scene  `json:"-"`
	Queries  []Query       `json:"queries"`
	Warnings []EvalWarning `json:"warnings,omitempty"`
}

func newReport() *Report {
	return &Report{Scene: scene.New()}
}

func (r *Report) record(q Query) {
	r.Queries = append(r.Queries, q)
}

// Failed returns the check queries that found violations.
func (r *Report) Failed() []Query {
	var failed []Query
	for _, q := range r.Queries {
		if !q.Passed() {
			failed = append(failed, q)
		}
	}
	return failed
}
