package taskz

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Trace configures step-by-step diagnostic output for pipeline execution.
// It is an explicit object installed on the context with WithTrace rather
// than process-global state, so two pipelines in the same process can
// trace to different sinks with different settings.
//
// Each executed step emits one structured line carrying the step name, the
// nesting level (both numeric and rendered as an indentation prefix), the
// execution direction, a per-execution run id, and the fan-out argument
// index where applicable.
type Trace struct {
	// Writer receives the structured trace lines. A nil Writer mutes
	// tracing entirely.
	Writer io.Writer

	// Indent is the number of spaces per nesting level in each line's
	// rendered prefix. Values below 1 default to 2.
	Indent int

	// MaxDepth limits how many nesting levels are logged: lines at level
	// MaxDepth or deeper are suppressed. Zero means unlimited.
	MaxDepth int
}

type traceCtxKey struct{}

// WithTrace installs the trace configuration on the context. Contexts
// without a trace installed mute all diagnostic output.
func WithTrace(ctx context.Context, t Trace) context.Context {
	indent := t.Indent
	if indent < 1 {
		indent = 2
	}
	logger := zerolog.Nop()
	if t.Writer != nil {
		logger = zerolog.New(t.Writer)
	}
	return context.WithValue(ctx, traceCtxKey{}, &traceState{
		logger:   logger,
		indent:   indent,
		maxDepth: t.MaxDepth,
	})
}

// traceState is the resolved trace carried down the call chain: the
// configured sink plus the current nesting level and run id. States are
// immutable; nesting derives a copy one level deeper.
type traceState struct {
	logger   zerolog.Logger
	runID    string
	indent   int
	maxDepth int
	level    int
}

func traceFrom(ctx context.Context) *traceState {
	state, _ := ctx.Value(traceCtxKey{}).(*traceState)
	return state
}

// ensureRunID stamps a fresh run id on the trace the first time an
// execution enters a pipeline, so every line of one top-level Run or
// Invert shares the same id. Nested pipelines inherit the parent's id.
func ensureRunID(ctx context.Context) context.Context {
	state := traceFrom(ctx)
	if state == nil || state.runID != "" {
		return ctx
	}
	next := *state
	next.runID = uuid.NewString()
	return context.WithValue(ctx, traceCtxKey{}, &next)
}

// nextLevel derives a context whose trace sits one nesting level deeper.
// Used when a folded task or a fan-out branch runs inside a parent step.
func nextLevel(ctx context.Context) context.Context {
	state := traceFrom(ctx)
	if state == nil {
		return ctx
	}
	next := *state
	next.level++
	return context.WithValue(ctx, traceCtxKey{}, &next)
}

func (s *traceState) enabled() bool {
	if s == nil {
		return false
	}
	return s.maxDepth == 0 || s.level < s.maxDepth
}

func (s *traceState) line(inverse bool) *zerolog.Event {
	return s.logger.Info().
		Str("run_id", s.runID).
		Int("depth", s.level).
		Str("prefix", strings.Repeat(" ", s.level*s.indent)).
		Str("direction", directionLabel(inverse))
}

// step emits the trace line for one pipeline step.
func (s *traceState) step(identity Identity, inverse bool) {
	if !s.enabled() {
		return
	}
	s.line(inverse).Str("component", identity.String()).Msg(runMessage(inverse))
}

// branch emits the trace line for one fan-out branch, identifying which
// positional argument it consumes.
func (s *traceState) branch(identity Identity, inverse bool, argument int) {
	if !s.enabled() {
		return
	}
	s.line(inverse).
		Str("task", identity.String()).
		Int("argument", argument).
		Msg(runMessage(inverse))
}

func runMessage(inverse bool) string {
	if inverse {
		return "inversely running"
	}
	return "running"
}

func directionLabel(inverse bool) string {
	if inverse {
		return "inverse"
	}
	return "forward"
}
