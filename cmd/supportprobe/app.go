package main

import (
	"fmt"
	"io"

	"github.com/chazu/supportmap/pkg/config"
	"github.com/chazu/supportmap/pkg/engine"
	"github.com/chazu/supportmap/pkg/kernel/sdfx"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"go.uber.org/zap"
)

// App runs probe scripts with one configured engine.
type App struct {
	engine *engine.Engine
	log    *zap.Logger
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// BodyData describes one body of the evaluated scene.
type BodyData struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Shape string `json:"shape"`
}

// EvalResult is the full result of running one script.
type EvalResult struct {
	Bodies   []BodyData           `json:"bodies"`
	Queries  []engine.Query       `json:"queries"`
	Errors   []EvalErrorData      `json:"errors"`
	Warnings []engine.EvalWarning `json:"warnings"`
	Failed   int                  `json:"failed"`
}

// OK reports whether the script ran without errors and every check passed.
func (r EvalResult) OK() bool {
	return len(r.Errors) == 0 && r.Failed == 0
}

// NewApp creates an App from cfg.
func NewApp(cfg config.Config, log *zap.Logger) *App {
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.Probe.Timeout),
			engine.WithLogger(log),
			engine.WithKernel(sdfx.New(sdfx.WithCells(cfg.Kernel.Cells))),
			engine.WithDirections(cfg.Check.Directions),
			engine.WithTolerance(cfg.Check.Tolerance),
		),
		log: log,
	}
}

// Evaluate runs probe source and returns its result.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Bodies:   []BodyData{},
		Queries:  []engine.Query{},
		Errors:   []EvalErrorData{},
		Warnings: []engine.EvalWarning{},
	}

	r, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, b := range r.Scene.Bodies() {
		result.Bodies = append(result.Bodies, BodyData{
			ID:    b.ID.String(),
			Name:  b.Name,
			Shape: b.Describe(),
		})
	}
	result.Queries = append(result.Queries, r.Queries...)
	result.Warnings = append(result.Warnings, r.Warnings...)
	result.Failed = len(r.Failed())
	return result
}

// writeText prints result for a terminal.
func writeText(w io.Writer, result EvalResult) {
	for _, e := range result.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "error: line %d: %s\n", e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "error: %s\n", e.Message)
		}
	}
	for _, b := range result.Bodies {
		fmt.Fprintf(w, "body %-12s %s  %s\n", b.Name, b.ID[:8], b.Shape)
	}
	for _, q := range result.Queries {
		switch q.Op {
		case engine.OpCheck:
			status := "ok"
			if !q.Passed() {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%-14s %-12s %s (%d samples)\n", q.Op, q.Body, status, q.Samples)
			for _, v := range q.Violations {
				fmt.Fprintf(w, "    %v\n", v)
			}
		default:
			fmt.Fprintf(w, "%-14s %-12s dir %s ->", q.Op, q.Body, formatVec(q.Direction))
			for _, p := range q.Points {
				fmt.Fprintf(w, " %s", formatVec(&p))
			}
			fmt.Fprintln(w)
		}
	}
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", warn.Body, warn.Message)
	}
}

func formatVec(v *v3.Vec) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
