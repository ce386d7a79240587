package taskz

import (
	"context"
	"time"
)

// Component is the atomic unit of a pipeline: a forward operation paired
// with an inverse operation, plus display metadata. Components are
// immutable values; the same component may appear in any number of lists.
//
// Components are created through the adapter functions Wrap, Apply, and
// Instance rather than struct literals, keeping error attribution and the
// identity-inverse default in one place.
type Component struct {
	identity Identity
	forward  Func
	inverse  Func
}

// Passthrough is the identity operation: it returns its argument tuple
// unchanged. It is the default inverse for components built without one
// and the body of the no-op task that stands in for nil fan-out slots.
func Passthrough(_ context.Context, args Args) (Args, error) {
	return args, nil
}

// Wrap creates a Component from an explicit forward/inverse pair.
// A nil inverse defaults to Passthrough, so inverting the component leaves
// its arguments untouched.
//
// Pre-binding configuration happens with ordinary closures:
//
//	func adder(n int) *taskz.Component {
//	    return taskz.Wrap(taskz.NewIdentity("add", "add a constant"),
//	        func(_ context.Context, args taskz.Args) (taskz.Args, error) {
//	            return taskz.Args{args[0].(int) + n}, nil
//	        },
//	        func(_ context.Context, args taskz.Args) (taskz.Args, error) {
//	            return taskz.Args{args[0].(int) - n}, nil
//	        })
//	}
func Wrap(identity Identity, forward, inverse Func) *Component {
	if inverse == nil {
		inverse = Passthrough
	}
	return &Component{
		identity: identity,
		forward:  forward,
		inverse:  inverse,
	}
}

// Apply creates a Component from a forward operation alone. Its inverse is
// the identity pass-through. Use Apply for steps that have no meaningful
// undo, or that only ever run forward.
func Apply(identity Identity, forward Func) *Component {
	return Wrap(identity, forward, nil)
}

// Caller is a stateful unit of work: an object whose Call method is the
// forward operation. Fitted models, cursors, and other parameterized state
// participate in pipelines by implementing Caller.
type Caller interface {
	Call(context.Context, Args) (Args, error)
}

// Inverter is optionally implemented by a Caller whose work can be undone.
type Inverter interface {
	Inverse(context.Context, Args) (Args, error)
}

// Instance creates a Component bound to a stateful object. The component's
// forward operation is obj.Call; its inverse is obj.Inverse when obj
// implements Inverter, and the identity pass-through otherwise.
func Instance(identity Identity, obj Caller) *Component {
	var inverse Func
	if inv, ok := obj.(Inverter); ok {
		inverse = inv.Inverse
	}
	return Wrap(identity, obj.Call, inverse)
}

// Run executes the forward operation. A failure is attributed to this
// component: plain errors are wrapped in an *Error carrying the component
// name, input tuple, and elapsed time, while an *Error bubbling out of a
// nested pipeline gets this component's name prepended to its path. The
// original error stays reachable through errors.Is and errors.As.
func (c *Component) Run(ctx context.Context, args Args) (result Args, err error) {
	defer recoverFromPanic(&result, &err, c.identity, args)

	start := time.Now()
	result, err = c.forward(ctx, args)
	if err != nil {
		return nil, wrapStepError(err, c.identity, args, time.Since(start), false)
	}
	return result, nil
}

// Invert executes the inverse operation, with the same error attribution
// as Run.
func (c *Component) Invert(ctx context.Context, args Args) (result Args, err error) {
	defer recoverFromPanic(&result, &err, c.identity, args)

	start := time.Now()
	result, err = c.inverse(ctx, args)
	if err != nil {
		return nil, wrapStepError(err, c.identity, args, time.Since(start), true)
	}
	return result, nil
}

// Identity returns the component's display metadata.
func (c *Component) Identity() Identity {
	return c.identity
}

// String returns the component's display name.
func (c *Component) String() string {
	return c.identity.String()
}

// AsList returns a single-element list containing this component.
func (c *Component) AsList() *ComponentList {
	return &ComponentList{components: []*Component{c}}
}

// Then chains this component with the next composable value, returning a
// new list spanning both. Neither operand is modified.
//
//	chain := foo.Then(bar).Then(baz) // foo -> bar -> baz
func (c *Component) Then(next Composable) *ComponentList {
	return c.AsList().Concat(next.toList())
}

// ToTask promotes this component to a single-step task.
func (c *Component) ToTask(identity Identity) *Task {
	return NewTask(identity, c.AsList())
}

func (c *Component) toList() *ComponentList {
	return c.AsList()
}
