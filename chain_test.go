package taskz

import (
	"context"
	"errors"
	"testing"
)

func TestChain(t *testing.T) {
	t.Run("Splices Heterogeneous Operands", func(t *testing.T) {
		list := foo(2).Then(bar())
		task := baz().ToTask(NewIdentity("tail", ""))
		defer task.Close()

		chained, err := Chain(add(1), list, task)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chained.Len() != 4 {
			t.Errorf("expected 4 components, got %d", chained.Len())
		}
		if chained.String() != "add -> foo -> bar -> subtask tail" {
			t.Errorf("unexpected display: %q", chained.String())
		}
	})

	t.Run("Chained Task Still Executes", func(t *testing.T) {
		inner := add(2).ToTask(NewIdentity("inner", ""))
		defer inner.Close()

		chained, err := Chain(add(1), inner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		task := chained.ToTask(NewIdentity("outer", ""))
		defer task.Close()

		out, err := task.Run(context.Background(), Args{0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0] != 3 {
			t.Errorf("expected 3, got %v", out[0])
		}
	})

	t.Run("Rejects Unsupported Operand", func(t *testing.T) {
		_, err := Chain(add(1), 42)
		if !errors.Is(err, ErrUnsupportedOperand) {
			t.Errorf("expected ErrUnsupportedOperand, got %v", err)
		}
	})

	t.Run("Rejects Nil Operand", func(t *testing.T) {
		_, err := Chain(add(1), nil)
		if !errors.Is(err, ErrUnsupportedOperand) {
			t.Errorf("expected ErrUnsupportedOperand, got %v", err)
		}
	})

	t.Run("Rejects Empty Call", func(t *testing.T) {
		_, err := Chain()
		if !errors.Is(err, ErrUnsupportedOperand) {
			t.Errorf("expected ErrUnsupportedOperand, got %v", err)
		}
	})

	t.Run("Accepts Fan Out Forms", func(t *testing.T) {
		multi, err := NewMulti(NewIdentity("pair", ""), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		defer multi.Close()

		agg, err := NewAgg(NewIdentity("derive", ""), add(1))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		chained, err := Chain(multi, agg)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if chained.String() != "multicomponent pair -> agg derive" {
			t.Errorf("unexpected display: %q", chained.String())
		}
	})
}
