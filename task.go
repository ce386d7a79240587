package taskz

import (
	"context"
	"strconv"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for Task.
const (
	// Metrics.
	TaskRunsTotal       = metricz.Key("task.runs.total")
	TaskInversionsTotal = metricz.Key("task.inversions.total")
	TaskSuccessesTotal  = metricz.Key("task.successes.total")
	TaskFailuresTotal   = metricz.Key("task.failures.total")
	TaskStepsCompleted  = metricz.Key("task.steps.completed")
	TaskStepsTotal      = metricz.Key("task.steps.total")
	TaskDurationMs      = metricz.Key("task.duration.ms")

	// Spans.
	TaskRunSpan    = tracez.Key("task.run")
	TaskInvertSpan = tracez.Key("task.invert")
	TaskStepSpan   = tracez.Key("task.step")

	// Tags.
	TaskTagStepCount     = tracez.Tag("task.step_count")
	TaskTagStepNumber    = tracez.Tag("task.step_number")
	TaskTagComponentName = tracez.Tag("task.component_name")
	TaskTagDirection     = tracez.Tag("task.direction")
	TaskTagSuccess       = tracez.Tag("task.success")
	TaskTagError         = tracez.Tag("task.error")

	// Hook event keys.
	TaskEventStepComplete = hookz.Key("task.step_complete")
	TaskEventAllComplete  = hookz.Key("task.all_complete")
)

// TaskEvent represents a task execution event, emitted via hookz as each
// step completes and once when the whole chain has finished.
type TaskEvent struct {
	Name           Name          // Task name
	Step           Name          // Name of the step component
	StepNumber     int           // Current step number (1-based)
	TotalSteps     int           // Total number of steps
	Inverse        bool          // Whether the chain ran backward
	Success        bool          // Whether the step succeeded
	Err            error         // Error if the step failed
	Duration       time.Duration // How long this step took
	CompletedSteps int           // Steps completed (for all_complete)
	TotalDuration  time.Duration // Total chain time (for all_complete)
	Timestamp      time.Time     // When the event occurred
}

// Task is a named, executable pipeline over a ComponentList. Running it
// walks the list first to last, threading each step's returned argument
// tuple into the next step; inverting it walks last to first applying each
// step's inverse operation instead. Tasks are immutable once created.
//
// A task folds back into a single Component with AsComponent, which lets
// an entire pipeline sit as one step inside an enclosing chain.
//
// # Observability
//
// Each Task carries its own metrics registry, tracer, and hook emitter:
//
// Metrics:
//   - task.runs.total / task.inversions.total: operation counters
//   - task.successes.total / task.failures.total: outcome counters
//   - task.steps.completed / task.steps.total: step gauges
//   - task.duration.ms: gauge of the last execution's duration
//
// Traces:
//   - task.run / task.invert: parent span per execution
//   - task.step: child span per step
//
// Events (via hooks):
//   - task.step_complete: fired as each step completes
//   - task.all_complete: fired when the whole chain succeeds
type Task struct {
	identity   Identity
	components *ComponentList
	clock      clockz.Clock
	metrics    *metricz.Registry
	tracer     *tracez.Tracer
	hooks      *hookz.Hooks[TaskEvent]
}

// NewTask creates a Task executing the given component list.
//
//	task := taskz.NewTask(taskz.NewIdentity("normalize", "scale and shift"),
//	    scale.Then(shift))
func NewTask(identity Identity, components *ComponentList) *Task {
	metrics := metricz.New()
	metrics.Counter(TaskRunsTotal)
	metrics.Counter(TaskInversionsTotal)
	metrics.Counter(TaskSuccessesTotal)
	metrics.Counter(TaskFailuresTotal)
	metrics.Gauge(TaskStepsCompleted)
	metrics.Gauge(TaskStepsTotal)
	metrics.Gauge(TaskDurationMs)

	return &Task{
		identity:   identity,
		components: components,
		metrics:    metrics,
		tracer:     tracez.New(),
		hooks:      hookz.New[TaskEvent](),
	}
}

// Run executes the chain forward: the supplied tuple feeds the first
// component, each component's returned tuple feeds the next, and the last
// component's return value is the overall result, uncoerced.
//
// The context is checked before each step; a canceled or expired context
// stops execution with an *Error flagged accordingly. Argument arity is
// never pre-validated: a tuple that does not fit a component's expectation
// fails inside the wrapped callable itself, and that failure propagates
// with the original error reachable through errors.Is and errors.As.
func (t *Task) Run(ctx context.Context, args Args) (Args, error) {
	return t.execute(ctx, args, false)
}

// Invert executes the chain backward, walking the list last to first and
// applying each component's inverse operation. The library does not verify
// that inverses undo their forward counterparts; when they are true
// mathematical inverses pairwise, Invert(Run(x)) reproduces x.
func (t *Task) Invert(ctx context.Context, args Args) (Args, error) {
	return t.execute(ctx, args, true)
}

func (t *Task) execute(ctx context.Context, args Args, inverse bool) (result Args, err error) {
	defer recoverFromPanic(&result, &err, t.identity, args)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ensureRunID(ctx)
	clock := t.getClock()

	var components []*Component
	var spanKey tracez.Key
	if inverse {
		components = t.components.Reversed()
		spanKey = TaskInvertSpan
		t.metrics.Counter(TaskInversionsTotal).Inc()
	} else {
		components = t.components.Components()
		spanKey = TaskRunSpan
		t.metrics.Counter(TaskRunsTotal).Inc()
	}
	t.metrics.Gauge(TaskStepsTotal).Set(float64(len(components)))
	start := clock.Now()

	ctx, span := t.tracer.StartSpan(ctx, spanKey)
	span.SetTag(TaskTagStepCount, strconv.Itoa(len(components)))
	span.SetTag(TaskTagDirection, directionLabel(inverse))
	defer func() {
		t.metrics.Gauge(TaskDurationMs).Set(float64(clock.Since(start).Milliseconds()))
		if err == nil {
			span.SetTag(TaskTagSuccess, "true")
			t.metrics.Counter(TaskSuccessesTotal).Inc()
		} else {
			span.SetTag(TaskTagSuccess, "false")
			span.SetTag(TaskTagError, err.Error())
			t.metrics.Counter(TaskFailuresTotal).Inc()
		}
		span.Finish()
	}()

	trace := traceFrom(ctx)
	result = args
	completed := 0

	for i, comp := range components {
		select {
		case <-ctx.Done():
			return result, contextError(ctx, t.identity, args, inverse)
		default:
		}

		trace.step(comp.identity, inverse)

		stepCtx, stepSpan := t.tracer.StartSpan(ctx, TaskStepSpan)
		stepSpan.SetTag(TaskTagStepNumber, strconv.Itoa(i+1))
		stepSpan.SetTag(TaskTagComponentName, comp.identity.Name())

		stepStart := clock.Now()
		if inverse {
			result, err = comp.Invert(stepCtx, result)
		} else {
			result, err = comp.Run(stepCtx, result)
		}
		stepDuration := clock.Since(stepStart)
		stepSpan.Finish()

		_ = t.hooks.Emit(ctx, TaskEventStepComplete, TaskEvent{ //nolint:errcheck
			Name:       t.identity.Name(),
			Step:       comp.identity.Name(),
			StepNumber: i + 1,
			TotalSteps: len(components),
			Inverse:    inverse,
			Success:    err == nil,
			Err:        err,
			Duration:   stepDuration,
			Timestamp:  clock.Now(),
		})

		if err != nil {
			return result, wrapStepError(err, t.identity, args, clock.Since(start), inverse)
		}

		completed++
		t.metrics.Gauge(TaskStepsCompleted).Set(float64(completed))
	}

	_ = t.hooks.Emit(ctx, TaskEventAllComplete, TaskEvent{ //nolint:errcheck
		Name:           t.identity.Name(),
		TotalSteps:     len(components),
		CompletedSteps: completed,
		Inverse:        inverse,
		Success:        true,
		TotalDuration:  clock.Since(start),
		Timestamp:      clock.Now(),
	})

	return result, nil
}

// AsComponent folds the whole task into a single component whose forward
// operation runs the task and whose inverse operation inverts it, one
// nesting level deeper than the enclosing chain. The component is named
// "subtask <name>", or the bare word when the task is unnamed.
func (t *Task) AsComponent() *Component {
	name := "subtask"
	if t.identity.Name() != "" {
		name += " " + t.identity.Name()
	}
	return Wrap(NewIdentity(name, t.identity.Description()),
		func(ctx context.Context, args Args) (Args, error) {
			return t.Run(nextLevel(ctx), args)
		},
		func(ctx context.Context, args Args) (Args, error) {
			return t.Invert(nextLevel(ctx), args)
		})
}

// Components returns the task's component list.
func (t *Task) Components() *ComponentList {
	return t.components
}

// Names returns the display names of the task's steps in forward order.
func (t *Task) Names() []Name {
	return t.components.Names()
}

// Identity returns the task's display metadata.
func (t *Task) Identity() Identity {
	return t.identity
}

// String returns the task's display name.
func (t *Task) String() string {
	return t.identity.String()
}

// Metrics returns the metrics registry for this task.
func (t *Task) Metrics() *metricz.Registry {
	return t.metrics
}

// Tracer returns the tracer for this task.
func (t *Task) Tracer() *tracez.Tracer {
	return t.tracer
}

// OnStepComplete registers a handler called asynchronously each time a
// step finishes, whether it succeeds or fails.
func (t *Task) OnStepComplete(handler func(context.Context, TaskEvent) error) error {
	_, err := t.hooks.Hook(TaskEventStepComplete, handler)
	return err
}

// OnAllComplete registers a handler called asynchronously after the whole
// chain finishes without errors.
func (t *Task) OnAllComplete(handler func(context.Context, TaskEvent) error) error {
	_, err := t.hooks.Hook(TaskEventAllComplete, handler)
	return err
}

// WithClock sets a custom clock for testing.
func (t *Task) WithClock(clock clockz.Clock) *Task {
	t.clock = clock
	return t
}

func (t *Task) getClock() clockz.Clock {
	if t.clock == nil {
		return clockz.RealClock
	}
	return t.clock
}

// Close gracefully shuts down observability components.
func (t *Task) Close() error {
	if t.tracer != nil {
		t.tracer.Close()
	}
	t.hooks.Close()
	return nil
}

func (t *Task) toList() *ComponentList {
	return t.AsComponent().AsList()
}
