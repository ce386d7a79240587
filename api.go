// Package taskz provides a small library for composing arbitrary callables
// into sequential pipelines that can be run forward and, when each step
// supplies an inverse, backward.
//
// # Overview
//
// taskz wraps units of work ("components") into an ordered chain
// ("component list"), promotes the chain to a named executable pipeline
// ("task"), and fans independent pipelines out over paired arguments
// ("multi-component"). A task folds back into a single component, so whole
// pipelines nest inside other pipelines uniformly.
//
// # Core Concepts
//
// Everything executable implements a single interface:
//
//	type Runnable interface {
//	    Run(context.Context, Args) (Args, error)
//	    Invert(context.Context, Args) (Args, error)
//	    Identity() Identity
//	}
//
// Key components:
//   - Component: an atomic step with a forward and an inverse function,
//     created with adapter functions (Wrap, Apply, Instance)
//   - ComponentList: an immutable ordered sequence of components built with
//     Then, AddAfter, AddBefore, and Concat
//   - Task: a named pipeline that threads each step's output tuple into the
//     next step, forward or in reverse
//   - MultiComponent: a fixed-arity dispatcher running one sub-task per
//     positional argument
//   - Agg / Each: auxiliary fan-out forms over one shared input or over
//     each of several inputs
//
// Design philosophy:
//   - Components and lists are immutable values; chaining returns new lists
//   - Arguments are untyped tuples (Args) threaded between steps; arity may
//     change from step to step and is never pre-validated
//   - Execution is synchronous and strictly sequential, fan-out included
//   - Errors from wrapped callables propagate intact; errors.Is and
//     errors.As reach the original failure through *Error
//
// # Quick Start
//
//	double := taskz.Apply(taskz.NewIdentity("double", ""),
//	    func(_ context.Context, args taskz.Args) (taskz.Args, error) {
//	        return taskz.Args{args[0].(int) * 2}, nil
//	    })
//	succ := taskz.Apply(taskz.NewIdentity("succ", ""),
//	    func(_ context.Context, args taskz.Args) (taskz.Args, error) {
//	        return taskz.Args{args[0].(int) + 1}, nil
//	    })
//
//	task := double.Then(succ).ToTask(taskz.NewIdentity("double-succ", ""))
//	out, err := task.Run(context.Background(), taskz.Args{20})
//	// out: Args{41}, err: nil
//
// # Inversion
//
// Running a task backward walks the chain last to first applying each
// component's inverse function. The library guarantees only the walk order;
// whether an inverse actually undoes its forward step is up to whoever
// built the component. Components built without an inverse pass their
// arguments through unchanged when inverted.
//
// # Observability
//
// Tasks and multi-components carry per-instance metrics (metricz), spans
// (tracez), and async completion events (hookz), exposed through Metrics(),
// Tracer(), OnStepComplete(), and OnAllComplete(). Step-by-step diagnostic
// trace lines are emitted through an explicit trace context installed with
// WithTrace; absent a trace context, tracing is muted.
package taskz

import "context"

// Name is a type alias for component and task names.
// Using this type encourages storing names as constants rather than
// using inline strings throughout your code.
type Name = string

// Args is the untyped argument tuple threaded between pipeline steps.
// Each step receives the previous step's returned tuple; the tuple's arity
// may grow or shrink from step to step.
type Args []any

// Collapse reduces a one-element tuple to its sole element. Tuples of any
// other length are returned as-is ([]any). Fan-out forms use this to
// report each branch's raw result rather than a wrapped one-tuple.
func (a Args) Collapse() any {
	if len(a) == 1 {
		return a[0]
	}
	return []any(a)
}

// Identity carries display metadata for a component or task: a short name
// and a human-readable description. Identity never participates in
// execution logic; it only appears in trace lines, error paths, and events.
type Identity struct {
	name        Name
	description string
}

// NewIdentity creates an Identity with the given name and description.
func NewIdentity(name Name, description string) Identity {
	return Identity{name: name, description: description}
}

// Name returns the identity's short name.
func (i Identity) Name() Name {
	return i.name
}

// Description returns the identity's human-readable description.
func (i Identity) Description() string {
	return i.description
}

// String returns the name, or a placeholder when the identity is unnamed.
func (i Identity) String() string {
	if i.name == "" {
		return unnamedPlaceholder
	}
	return i.name
}

// unnamedPlaceholder stands in for unnamed components in display output.
const unnamedPlaceholder = "<component>"

// Func is the shape of a forward or inverse operation: it receives the
// current argument tuple and returns the next one. A Func that only
// produces a single value wraps it in a one-element Args.
type Func func(context.Context, Args) (Args, error)

// Runnable is the uniform execution capability. Component, Task, and
// MultiComponent all implement it, which lets a folded pipeline sit inside
// an enclosing chain without the chain inspecting what kind of step it is.
type Runnable interface {
	// Run executes the forward operation.
	Run(context.Context, Args) (Args, error)
	// Invert executes the inverse operation.
	Invert(context.Context, Args) (Args, error)
	// Identity returns display metadata for trace lines and error paths.
	Identity() Identity
}

// Composable is the closed set of values that participate in chaining:
// *Component, *ComponentList, *Task, *MultiComponent, and the fan-out
// forms *Agg and *Each. Chaining any of them with Then produces a new
// *ComponentList; none of the operands are modified.
type Composable interface {
	// toList renders the value as a component list for splicing.
	toList() *ComponentList
}
