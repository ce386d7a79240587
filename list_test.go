package taskz

import (
	"context"
	"testing"
)

func TestComponentList(t *testing.T) {
	t.Run("Display Joins Names With Arrows", func(t *testing.T) {
		list := foo(2).Then(bar()).Then(baz())
		if list.String() != "foo -> bar -> baz" {
			t.Errorf("unexpected display: %q", list.String())
		}
	})

	t.Run("Display Substitutes Placeholder", func(t *testing.T) {
		unnamed := Apply(Identity{}, Passthrough)
		list := unnamed.Then(baz())
		if list.String() != "<component> -> baz" {
			t.Errorf("unexpected display: %q", list.String())
		}
	})

	t.Run("Chaining Is Associative On Display", func(t *testing.T) {
		left := foo(2).Then(bar()).Then(baz())
		right := foo(2).Then(bar().Then(baz()))
		if left.String() != right.String() {
			t.Errorf("%q != %q", left.String(), right.String())
		}
	})

	t.Run("Reversed Is Exact Reverse Of Forward", func(t *testing.T) {
		list := foo(2).Then(bar()).Then(baz())

		forward := list.Components()
		backward := list.Reversed()
		if len(forward) != len(backward) {
			t.Fatalf("length mismatch: %d vs %d", len(forward), len(backward))
		}
		for i := range forward {
			if forward[i] != backward[len(backward)-1-i] {
				t.Errorf("order mismatch at %d", i)
			}
		}
	})

	t.Run("First Last Len", func(t *testing.T) {
		a, b := foo(2), bar()
		list := a.Then(b)

		if list.First() != a || list.Last() != b {
			t.Error("unexpected endpoints")
		}
		if list.Len() != 2 {
			t.Errorf("expected len 2, got %d", list.Len())
		}
		single := a.AsList()
		if single.First() != single.Last() {
			t.Error("single-element list endpoints must coincide")
		}
	})

	t.Run("Grow Operations Are Persistent", func(t *testing.T) {
		base := foo(2).Then(bar())
		baseDisplay := base.String()

		appended := base.AddAfter(baz())
		prepended := base.AddBefore(baz())
		concatenated := base.Concat(baz().AsList())

		if base.String() != baseDisplay || base.Len() != 2 {
			t.Error("grow operation mutated the original list")
		}
		if appended.String() != "foo -> bar -> baz" {
			t.Errorf("unexpected AddAfter display: %q", appended.String())
		}
		if prepended.String() != "baz -> foo -> bar" {
			t.Errorf("unexpected AddBefore display: %q", prepended.String())
		}
		if concatenated.String() != "foo -> bar -> baz" {
			t.Errorf("unexpected Concat display: %q", concatenated.String())
		}
	})

	t.Run("Component Reusable Across Lists", func(t *testing.T) {
		shared := add(1)
		first := shared.Then(add(2))
		second := subtract(3).Then(shared)

		if first.Len() != 2 || second.Len() != 2 {
			t.Fatal("unexpected list lengths")
		}
		if first.First() != shared || second.Last() != shared {
			t.Error("shared component lost between lists")
		}
	})

	t.Run("Names", func(t *testing.T) {
		names := foo(2).Then(bar()).Names()
		if len(names) != 2 || names[0] != "foo" || names[1] != "bar" {
			t.Errorf("expected [foo bar], got %v", names)
		}
	})

	t.Run("New Component List", func(t *testing.T) {
		list := NewComponentList(foo(2), bar(), baz())
		if list.Len() != 3 {
			t.Errorf("expected len 3, got %d", list.Len())
		}
		if list.String() != "foo -> bar -> baz" {
			t.Errorf("unexpected display: %q", list.String())
		}
	})

	t.Run("To Task Executes In Order", func(t *testing.T) {
		task := NewComponentList(foo(3), bar(), baz()).ToTask(NewIdentity("list-task", ""))
		defer task.Close()

		out, err := task.Run(context.Background(), Args{1, 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0] != 45 {
			t.Errorf("expected 45, got %v", out[0])
		}
	})
}
