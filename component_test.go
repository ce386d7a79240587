package taskz

import (
	"context"
	"errors"
	"testing"
)

// offset is a stateful unit whose constructor binds an increment ahead of
// time; it participates in pipelines through Instance.
type offset struct {
	n int
}

func (o *offset) Call(_ context.Context, args Args) (Args, error) {
	return Args{args[0].(int) + o.n}, nil
}

func (o *offset) Inverse(_ context.Context, args Args) (Args, error) {
	return Args{args[0].(int) - o.n}, nil
}

// counter is a stateful unit without an inverse of its own.
type counter struct {
	calls int
}

func (c *counter) Call(_ context.Context, args Args) (Args, error) {
	c.calls++
	return args, nil
}

func TestComponent(t *testing.T) {
	t.Run("Wrap Runs Forward And Inverse", func(t *testing.T) {
		comp := add(3)

		out, err := comp.Run(context.Background(), Args{4})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0] != 7 {
			t.Errorf("expected 7, got %v", out[0])
		}

		back, err := comp.Invert(context.Background(), out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back[0] != 4 {
			t.Errorf("expected 4, got %v", back[0])
		}
	})

	t.Run("Apply Defaults To Identity Inverse", func(t *testing.T) {
		comp := foo(3)

		back, err := comp.Invert(context.Background(), Args{1, 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(back) != 2 || back[0] != 1 || back[1] != 2 {
			t.Errorf("expected pass-through, got %v", back)
		}
	})

	t.Run("Instance Binds State", func(t *testing.T) {
		comp := Instance(NewIdentity("offset", "shift by a fitted amount"), &offset{n: 10})

		out, err := comp.Run(context.Background(), Args{5})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0] != 15 {
			t.Errorf("expected 15, got %v", out[0])
		}

		back, err := comp.Invert(context.Background(), out)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if back[0] != 5 {
			t.Errorf("expected 5, got %v", back[0])
		}
	})

	t.Run("Instance Without Inverter Passes Through", func(t *testing.T) {
		c := &counter{}
		comp := Instance(NewIdentity("counter", ""), c)

		if _, err := comp.Run(context.Background(), Args{1}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		back, err := comp.Invert(context.Background(), Args{1, 2})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(back) != 2 {
			t.Errorf("expected pass-through, got %v", back)
		}
		if c.calls != 1 {
			t.Errorf("expected one forward call, got %d", c.calls)
		}
	})

	t.Run("Run Attributes Failures", func(t *testing.T) {
		errBad := errors.New("bad input")
		comp := Apply(NewIdentity("validate", ""),
			func(_ context.Context, _ Args) (Args, error) {
				return nil, errBad
			})

		_, err := comp.Run(context.Background(), Args{1})
		if !errors.Is(err, errBad) {
			t.Errorf("original error not reachable: %v", err)
		}

		var compErr *Error
		if !errors.As(err, &compErr) {
			t.Fatal("expected *Error")
		}
		if len(compErr.Path) != 1 || compErr.Path[0] != "validate" {
			t.Errorf("expected path [validate], got %v", compErr.Path)
		}
		if compErr.Inverse {
			t.Error("expected forward direction")
		}
	})

	t.Run("Invert Flags Direction", func(t *testing.T) {
		errBad := errors.New("cannot undo")
		comp := Wrap(NewIdentity("oneway", ""), Passthrough,
			func(_ context.Context, _ Args) (Args, error) {
				return nil, errBad
			})

		_, err := comp.Invert(context.Background(), Args{1})
		var compErr *Error
		if !errors.As(err, &compErr) {
			t.Fatal("expected *Error")
		}
		if !compErr.Inverse {
			t.Error("expected inverse direction")
		}
	})

	t.Run("Panic Recovery", func(t *testing.T) {
		comp := Apply(NewIdentity("panicky", ""),
			func(_ context.Context, _ Args) (Args, error) {
				panic("test panic in component")
			})

		result, err := comp.Run(context.Background(), Args{"test"})
		if result != nil {
			t.Errorf("expected nil result, got %v", result)
		}

		var compErr *Error
		if !errors.As(err, &compErr) {
			t.Fatal("expected *Error")
		}
		var pErr *panicError
		if !errors.As(compErr.Err, &pErr) {
			t.Fatal("expected panicError")
		}
		if pErr.sanitized != "panic occurred: test panic in component" {
			t.Errorf("unexpected message: %q", pErr.sanitized)
		}
	})

	t.Run("String Uses Placeholder When Unnamed", func(t *testing.T) {
		named := add(1)
		if named.String() != "add" {
			t.Errorf("expected 'add', got %q", named.String())
		}
		unnamed := Apply(Identity{}, Passthrough)
		if unnamed.String() != "<component>" {
			t.Errorf("expected placeholder, got %q", unnamed.String())
		}
	})

	t.Run("To Task", func(t *testing.T) {
		task := add(5).ToTask(NewIdentity("single", ""))
		defer task.Close()

		out, err := task.Run(context.Background(), Args{1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out[0] != 6 {
			t.Errorf("expected 6, got %v", out[0])
		}
	})

	t.Run("Identity Metadata", func(t *testing.T) {
		id := NewIdentity("my-step", "a description")
		if id.Name() != "my-step" {
			t.Errorf("Name() = %q", id.Name())
		}
		if id.Description() != "a description" {
			t.Errorf("Description() = %q", id.Description())
		}
		if id.String() != "my-step" {
			t.Errorf("String() = %q", id.String())
		}
	})
}

func TestArgsCollapse(t *testing.T) {
	t.Run("Single Element", func(t *testing.T) {
		if got := (Args{5}).Collapse(); got != 5 {
			t.Errorf("expected 5, got %v", got)
		}
	})

	t.Run("Multiple Elements", func(t *testing.T) {
		got, ok := (Args{1, 2}).Collapse().([]any)
		if !ok || len(got) != 2 {
			t.Errorf("expected []any of len 2, got %v", got)
		}
	})
}
