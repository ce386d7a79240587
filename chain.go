package taskz

import (
	"fmt"
)

// Chain builds a ComponentList from a heterogeneous sequence of composable
// values, splicing them left to right. It is the untyped counterpart of
// Then for callers assembling pipelines from dynamic input.
//
// Accepted operands are the Composable values: *Component, *ComponentList,
// *Task, *MultiComponent, *Agg, and *Each. Anything else fails with
// ErrUnsupportedOperand.
func Chain(parts ...any) (*ComponentList, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: no operands", ErrUnsupportedOperand)
	}

	var list *ComponentList
	for _, part := range parts {
		composable, ok := part.(Composable)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedOperand, part)
		}
		if list == nil {
			list = composable.toList()
			continue
		}
		list = list.Concat(composable.toList())
	}
	return list, nil
}

// coerceToTask is the single normalization point for the polymorphic
// values accepted by the fan-out constructors: a component becomes a
// singleton task, a list is promoted, a task passes through, a folded
// multi-component is re-promoted, and nil becomes the no-op identity task.
// Anything else fails with ErrUnsupportedType.
func coerceToTask(v any) (*Task, error) {
	switch part := v.(type) {
	case nil:
		return identityTask(), nil
	case *Component:
		return NewTask(part.identity, part.AsList()), nil
	case *ComponentList:
		return NewTask(Identity{}, part), nil
	case *Task:
		return part, nil
	case *MultiComponent:
		folded := part.AsComponent()
		return NewTask(folded.identity, folded.AsList()), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

// identityTask returns a task that does nothing: its single step passes
// the argument tuple through unchanged, forward and inverse alike.
func identityTask() *Task {
	identity := NewIdentity("identity", "do nothing")
	return NewTask(identity, Wrap(identity, Passthrough, Passthrough).AsList())
}
