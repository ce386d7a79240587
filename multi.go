package taskz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for MultiComponent.
const (
	// Metrics.
	MultiRunsTotal        = metricz.Key("multi.runs.total")
	MultiInversionsTotal  = metricz.Key("multi.inversions.total")
	MultiSuccessesTotal   = metricz.Key("multi.successes.total")
	MultiFailuresTotal    = metricz.Key("multi.failures.total")
	MultiBranchesComplete = metricz.Key("multi.branches.completed")
	MultiBranchesTotal    = metricz.Key("multi.branches.total")
	MultiDurationMs       = metricz.Key("multi.duration.ms")

	// Spans.
	MultiProcessSpan = tracez.Key("multi.process")
	MultiBranchSpan  = tracez.Key("multi.branch")

	// Tags.
	MultiTagBranchCount = tracez.Tag("multi.branch_count")
	MultiTagArgument    = tracez.Tag("multi.argument")
	MultiTagTaskName    = tracez.Tag("multi.task_name")
	MultiTagDirection   = tracez.Tag("multi.direction")
	MultiTagSuccess     = tracez.Tag("multi.success")
	MultiTagError       = tracez.Tag("multi.error")

	// Hook event keys.
	MultiEventBranchComplete = hookz.Key("multi.branch_complete")
	MultiEventAllComplete    = hookz.Key("multi.all_complete")
)

// MultiEvent represents a fan-out execution event, emitted via hookz as
// each branch completes and once when every branch has finished.
type MultiEvent struct {
	Name              Name          // MultiComponent name
	Task              Name          // Name of the branch task
	Argument          int           // Positional argument the branch consumed
	TotalBranches     int           // Number of held tasks
	Inverse           bool          // Whether the fan-out ran backward
	Success           bool          // Whether the branch succeeded
	Err               error         // Error if the branch failed
	Duration          time.Duration // How long this branch took
	CompletedBranches int           // Branches completed (for all_complete)
	TotalDuration     time.Duration // Total fan-out time (for all_complete)
	Timestamp         time.Time     // When the event occurred
}

// MultiComponent dispatches N positional arguments to N sub-tasks: the
// i-th argument is run through the i-th task, sequentially in index order,
// and the N results are collected into an output tuple in the same order.
// Inversion mirrors this with each task's Invert. MultiComponent is
// immutable after construction.
//
// Each held task runs one nesting level deeper than the fan-out itself, so
// trace indentation reflects the branch structure.
type MultiComponent struct {
	identity Identity
	tasks    []*Task
	clock    clockz.Clock
	metrics  *metricz.Registry
	tracer   *tracez.Tracer
	hooks    *hookz.Hooks[MultiEvent]
}

// NewMulti creates a MultiComponent from one variadic part per expected
// positional argument. Every part is normalized to a task: a *Component
// becomes a singleton task, a *ComponentList is promoted, a *Task passes
// through, and nil becomes the no-op identity task. Any other value fails
// with ErrUnsupportedType.
//
//	m, err := taskz.NewMulti(taskz.NewIdentity("split", ""),
//	    scaleChain,  // *ComponentList, handles argument 0
//	    nil,         // argument 1 passes through untouched
//	)
func NewMulti(identity Identity, parts ...any) (*MultiComponent, error) {
	tasks := make([]*Task, len(parts))
	for i, part := range parts {
		task, err := coerceToTask(part)
		if err != nil {
			return nil, err
		}
		tasks[i] = task
	}

	metrics := metricz.New()
	metrics.Counter(MultiRunsTotal)
	metrics.Counter(MultiInversionsTotal)
	metrics.Counter(MultiSuccessesTotal)
	metrics.Counter(MultiFailuresTotal)
	metrics.Gauge(MultiBranchesComplete)
	metrics.Gauge(MultiBranchesTotal)
	metrics.Gauge(MultiDurationMs)

	return &MultiComponent{
		identity: identity,
		tasks:    tasks,
		metrics:  metrics,
		tracer:   tracez.New(),
		hooks:    hookz.New[MultiEvent](),
	}, nil
}

// Run fans the argument tuple out over the held tasks. The number of
// supplied arguments must equal the number of tasks; otherwise Run fails
// with ErrArityMismatch before any branch executes. Each branch's result
// is collapsed (a one-element tuple becomes its sole value) and collected
// into the output tuple at the branch's index.
func (m *MultiComponent) Run(ctx context.Context, args Args) (Args, error) {
	return m.execute(ctx, args, false)
}

// Invert mirrors Run, inverting each held task against its paired
// argument instead.
func (m *MultiComponent) Invert(ctx context.Context, args Args) (Args, error) {
	return m.execute(ctx, args, true)
}

func (m *MultiComponent) execute(ctx context.Context, args Args, inverse bool) (result Args, err error) {
	defer recoverFromPanic(&result, &err, m.identity, args)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ensureRunID(ctx)
	clock := m.getClock()

	if inverse {
		m.metrics.Counter(MultiInversionsTotal).Inc()
	} else {
		m.metrics.Counter(MultiRunsTotal).Inc()
	}
	m.metrics.Gauge(MultiBranchesTotal).Set(float64(len(m.tasks)))
	start := clock.Now()

	ctx, span := m.tracer.StartSpan(ctx, MultiProcessSpan)
	span.SetTag(MultiTagBranchCount, strconv.Itoa(len(m.tasks)))
	span.SetTag(MultiTagDirection, directionLabel(inverse))
	defer func() {
		m.metrics.Gauge(MultiDurationMs).Set(float64(clock.Since(start).Milliseconds()))
		if err == nil {
			span.SetTag(MultiTagSuccess, "true")
			m.metrics.Counter(MultiSuccessesTotal).Inc()
		} else {
			span.SetTag(MultiTagSuccess, "false")
			span.SetTag(MultiTagError, err.Error())
			m.metrics.Counter(MultiFailuresTotal).Inc()
		}
		span.Finish()
	}()

	if len(args) != len(m.tasks) {
		return nil, &Error{
			Err:       fmt.Errorf("%w: %d arguments for %d tasks", ErrArityMismatch, len(args), len(m.tasks)),
			InputData: args,
			Path:      []Name{m.identity.Name()},
			Inverse:   inverse,
			Timestamp: clock.Now(),
		}
	}

	trace := traceFrom(ctx)
	outputs := make(Args, len(m.tasks))
	completed := 0

	for i, task := range m.tasks {
		select {
		case <-ctx.Done():
			return nil, contextError(ctx, m.identity, args, inverse)
		default:
		}

		trace.branch(task.identity, inverse, i)

		branchCtx, branchSpan := m.tracer.StartSpan(ctx, MultiBranchSpan)
		branchSpan.SetTag(MultiTagArgument, strconv.Itoa(i))
		branchSpan.SetTag(MultiTagTaskName, task.identity.Name())

		branchStart := clock.Now()
		var out Args
		if inverse {
			out, err = task.Invert(nextLevel(branchCtx), Args{args[i]})
		} else {
			out, err = task.Run(nextLevel(branchCtx), Args{args[i]})
		}
		branchDuration := clock.Since(branchStart)
		branchSpan.Finish()

		_ = m.hooks.Emit(ctx, MultiEventBranchComplete, MultiEvent{ //nolint:errcheck
			Name:          m.identity.Name(),
			Task:          task.identity.Name(),
			Argument:      i,
			TotalBranches: len(m.tasks),
			Inverse:       inverse,
			Success:       err == nil,
			Err:           err,
			Duration:      branchDuration,
			Timestamp:     clock.Now(),
		})

		if err != nil {
			return nil, wrapStepError(err, m.identity, args, clock.Since(start), inverse)
		}

		outputs[i] = out.Collapse()
		completed++
		m.metrics.Gauge(MultiBranchesComplete).Set(float64(completed))
	}

	_ = m.hooks.Emit(ctx, MultiEventAllComplete, MultiEvent{ //nolint:errcheck
		Name:              m.identity.Name(),
		TotalBranches:     len(m.tasks),
		CompletedBranches: completed,
		Inverse:           inverse,
		Success:           true,
		TotalDuration:     clock.Since(start),
		Timestamp:         clock.Now(),
	})

	return outputs, nil
}

// AsComponent folds the fan-out into a single component named
// "multicomponent <name>", or the bare word when unnamed, so it can sit as
// one step inside an enclosing chain.
func (m *MultiComponent) AsComponent() *Component {
	name := "multicomponent"
	if m.identity.Name() != "" {
		name += " " + m.identity.Name()
	}
	return Wrap(NewIdentity(name, m.identity.Description()), m.Run, m.Invert)
}

// Tasks returns the held tasks in argument order.
func (m *MultiComponent) Tasks() []*Task {
	tasks := make([]*Task, len(m.tasks))
	copy(tasks, m.tasks)
	return tasks
}

// Len returns the number of held tasks, which is also the exact number of
// positional arguments Run and Invert require.
func (m *MultiComponent) Len() int {
	return len(m.tasks)
}

// Identity returns the fan-out's display metadata.
func (m *MultiComponent) Identity() Identity {
	return m.identity
}

// String returns the fan-out's display name.
func (m *MultiComponent) String() string {
	return m.identity.String()
}

// Metrics returns the metrics registry for this fan-out.
func (m *MultiComponent) Metrics() *metricz.Registry {
	return m.metrics
}

// Tracer returns the tracer for this fan-out.
func (m *MultiComponent) Tracer() *tracez.Tracer {
	return m.tracer
}

// OnBranchComplete registers a handler called asynchronously each time a
// branch finishes, whether it succeeds or fails.
func (m *MultiComponent) OnBranchComplete(handler func(context.Context, MultiEvent) error) error {
	_, err := m.hooks.Hook(MultiEventBranchComplete, handler)
	return err
}

// OnAllComplete registers a handler called asynchronously after every
// branch finishes without errors.
func (m *MultiComponent) OnAllComplete(handler func(context.Context, MultiEvent) error) error {
	_, err := m.hooks.Hook(MultiEventAllComplete, handler)
	return err
}

// WithClock sets a custom clock for testing.
func (m *MultiComponent) WithClock(clock clockz.Clock) *MultiComponent {
	m.clock = clock
	return m
}

func (m *MultiComponent) getClock() clockz.Clock {
	if m.clock == nil {
		return clockz.RealClock
	}
	return m.clock
}

// Close gracefully shuts down observability components.
func (m *MultiComponent) Close() error {
	if m.tracer != nil {
		m.tracer.Close()
	}
	m.hooks.Close()
	return nil
}

func (m *MultiComponent) toList() *ComponentList {
	return m.AsComponent().AsList()
}
