// Package engine provides the Lisp probe engine. It wraps zygomys in a
// sandboxed environment, builds a scene of posed shapes from user source
// and records every support query the source makes.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/supportmap/pkg/kernel"
	"github.com/chazu/supportmap/pkg/kernel/sdfx"
	"github.com/chazu/supportmap/pkg/scene"
	"github.com/chazu/supportmap/pkg/verify"
	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Col     int    `json:"col,omitempty"`
	Message string `json:"message"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal finding about the scene a script built.
type EvalWarning struct {
	Body    string `json:"body,omitempty"`
	Message string `json:"message"`
}

// Defaults for a new Engine.
const (
	DefaultDirections = 64
	DefaultTolerance  = 1e-9
)

// Engine wraps the zygomys interpreter for probe evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout    time.Duration
	log        *zap.Logger
	kernel     kernel.Kernel
	directions int
	tolerance  float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for a single evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithKernel sets the geometry kernel that samples bodies for `check`.
func WithKernel(k kernel.Kernel) Option {
	return func(e *Engine) {
		if k != nil {
			e.kernel = k
		}
	}
}

// WithDirections sets the size of the direction lattice used by `check`.
func WithDirections(n int) Option {
	return func(e *Engine) {
		if n >= 0 {
			e.directions = n
		}
	}
}

// WithTolerance sets the slack `check` allows on top of the sampling
// tolerance.
func WithTolerance(tol float64) Option {
	return func(e *Engine) {
		if tol >= 0 {
			e.tolerance = tol
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:    EvalTimeout,
		log:        zap.NewNop(),
		kernel:     sdfx.New(),
		directions: DefaultDirections,
		tolerance:  DefaultTolerance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs probe source and returns the resulting report.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns report + nil errors + nil error
//   - On parse/eval failure: returns nil report + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Report, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	log := e.log.With(zap.Uint64("generation", gen))
	log.Debug("evaluation started", zap.Int("bytes", len(source)))
	start := time.Now()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		r, evalErrs, err := e.evaluate(source, log)
		ch <- evalResult{report: r, errors: evalErrs, err: err}
	}()

	r, evalErrs, err := waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
	switch {
	case err != nil:
		log.Warn("evaluation failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
	case len(evalErrs) > 0:
		log.Debug("evaluation errors", zap.Int("errors", len(evalErrs)), zap.Duration("elapsed", time.Since(start)))
	default:
		log.Debug("evaluation finished",
			zap.Int("bodies", r.Scene.Len()),
			zap.Int("queries", len(r.Queries)),
			zap.Duration("elapsed", time.Since(start)))
	}
	return r, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, log *zap.Logger) (*Report, []EvalError, error) {
	r := newReport()

	// Empty source is a valid program that produces an empty report.
	if strings.TrimSpace(source) == "" {
		return r, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &probe{
		report:    r,
		kernel:    e.kernel,
		dirs:      verify.Directions(e.directions),
		tolerance: e.tolerance,
		log:       log,
	})

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}

	var evalErrs []EvalError
	for _, v := range scene.Validate(r.Scene) {
		if v.Severity == scene.SeverityError {
			evalErrs = append(evalErrs, EvalError{Message: v.Error()})
			continue
		}
		r.Warnings = append(r.Warnings, EvalWarning{Body: v.Name, Message: v.Message})
	}
	if len(evalErrs) > 0 {
		return nil, evalErrs, nil
	}
	return r, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
