package taskz

import (
	"context"
	"time"
)

// Agg runs several tasks over the same input: every held task receives the
// full argument tuple, and the results are collected into an output tuple
// in task order. Use it to compute several derived outputs from one input.
//
// Agg holds no state beyond its task list and defines no inversion of its
// own; folded into a chain, its inverse is the identity pass-through. The
// held tasks carry their own metrics, spans, and hooks.
type Agg struct {
	identity Identity
	tasks    []*Task
}

// NewAgg creates an Agg from one or more parts, each normalized to a task
// the same way NewMulti normalizes its parts.
//
//	derive, err := taskz.NewAgg(taskz.NewIdentity("derive", ""),
//	    product, quotient)
//	// derive.Run(ctx, Args{2, 3}) == Args{6, 2.0 / 3.0}
func NewAgg(identity Identity, parts ...any) (*Agg, error) {
	tasks := make([]*Task, len(parts))
	for i, part := range parts {
		task, err := coerceToTask(part)
		if err != nil {
			return nil, err
		}
		tasks[i] = task
	}
	return &Agg{identity: identity, tasks: tasks}, nil
}

// Run executes every held task against the full argument tuple,
// sequentially in task order, and returns the collapsed results.
func (a *Agg) Run(ctx context.Context, args Args) (result Args, err error) {
	defer recoverFromPanic(&result, &err, a.identity, args)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ensureRunID(ctx)
	trace := traceFrom(ctx)
	start := time.Now()

	outputs := make(Args, len(a.tasks))
	for i, task := range a.tasks {
		trace.step(task.identity, false)

		out, err := task.Run(nextLevel(ctx), args)
		if err != nil {
			return nil, wrapStepError(err, a.identity, args, time.Since(start), false)
		}
		outputs[i] = out.Collapse()
	}
	return outputs, nil
}

// AsComponent folds the aggregation into a single forward-only component;
// inverting it passes arguments through unchanged.
func (a *Agg) AsComponent() *Component {
	name := "agg"
	if a.identity.Name() != "" {
		name += " " + a.identity.Name()
	}
	return Wrap(NewIdentity(name, a.identity.Description()), a.Run, nil)
}

// Tasks returns the held tasks in order.
func (a *Agg) Tasks() []*Task {
	tasks := make([]*Task, len(a.tasks))
	copy(tasks, a.tasks)
	return tasks
}

// Identity returns the aggregation's display metadata.
func (a *Agg) Identity() Identity {
	return a.identity
}

// String returns the aggregation's display name.
func (a *Agg) String() string {
	return a.identity.String()
}

func (a *Agg) toList() *ComponentList {
	return a.AsComponent().AsList()
}

// Each runs one task once per positional argument: argument i produces
// result i, collected into an output tuple in argument order. Use it to
// map a single operation over several inputs uniformly.
//
// Like Agg, Each defines no inversion of its own; folded into a chain, its
// inverse is the identity pass-through.
type Each struct {
	identity Identity
	task     *Task
}

// NewEach creates an Each from a single part, normalized to a task the
// same way NewMulti normalizes its parts.
//
//	mapped, err := taskz.NewEach(taskz.NewIdentity("bump", ""), add)
//	// mapped.Run(ctx, Args{2, 3}) == Args{4, 5}  (with add = +2)
func NewEach(identity Identity, part any) (*Each, error) {
	task, err := coerceToTask(part)
	if err != nil {
		return nil, err
	}
	return &Each{identity: identity, task: task}, nil
}

// Run executes the held task once per supplied argument, sequentially in
// argument order, and returns the collapsed results. Any number of
// arguments is accepted, including none.
func (e *Each) Run(ctx context.Context, args Args) (result Args, err error) {
	defer recoverFromPanic(&result, &err, e.identity, args)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx = ensureRunID(ctx)
	trace := traceFrom(ctx)
	start := time.Now()

	outputs := make(Args, len(args))
	for i, arg := range args {
		trace.branch(e.task.identity, false, i)

		out, err := e.task.Run(nextLevel(ctx), Args{arg})
		if err != nil {
			return nil, wrapStepError(err, e.identity, args, time.Since(start), false)
		}
		outputs[i] = out.Collapse()
	}
	return outputs, nil
}

// AsComponent folds the mapping into a single forward-only component;
// inverting it passes arguments through unchanged.
func (e *Each) AsComponent() *Component {
	name := "each"
	if e.identity.Name() != "" {
		name += " " + e.identity.Name()
	}
	return Wrap(NewIdentity(name, e.identity.Description()), e.Run, nil)
}

// Task returns the held task.
func (e *Each) Task() *Task {
	return e.task
}

// Identity returns the mapping's display metadata.
func (e *Each) Identity() Identity {
	return e.identity
}

// String returns the mapping's display name.
func (e *Each) String() string {
	return e.identity.String()
}

func (e *Each) toList() *ComponentList {
	return e.AsComponent().AsList()
}
