package taskz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for the composition algebra.
var (
	// ErrArityMismatch is returned when a fan-out form receives a number of
	// positional arguments different from the number of tasks it holds.
	ErrArityMismatch = errors.New("argument count must match task count")

	// ErrUnsupportedType is returned when a fan-out constructor receives a
	// value that cannot be normalized to a task.
	ErrUnsupportedType = errors.New("value must be a Component, ComponentList, Task, or nil")

	// ErrUnsupportedOperand is returned when Chain receives an operand that
	// is not a composable value.
	ErrUnsupportedOperand = errors.New("operand does not support chaining")
)

// Error provides rich context about pipeline execution failures. It wraps
// the underlying error with information about where and when the failure
// occurred, what data was being processed, which direction the pipeline
// was running, and whether the failure was due to timeout or cancellation.
//
// The underlying error is never rewritten: Unwrap returns it exactly as
// the wrapped callable produced it, so errors.Is and errors.As work
// against the caller's own sentinel values.
type Error struct {
	InputData Args
	Timestamp time.Time
	Err       error
	Path      []Name
	Duration  time.Duration
	Inverse   bool
	Timeout   bool
	Canceled  bool
}

// Error implements the error interface, providing a detailed error message.
func (e *Error) Error() string {
	location := strings.Join(e.Path, " -> ")
	if location == "" {
		location = unnamedPlaceholder
	}

	direction := ""
	if e.Inverse {
		direction = "inverse of "
	}
	if e.Timeout {
		return fmt.Sprintf("%s%s timed out after %v: %v", direction, location, e.Duration, e.Err)
	}
	if e.Canceled {
		return fmt.Sprintf("%s%s canceled after %v: %v", direction, location, e.Duration, e.Err)
	}
	return fmt.Sprintf("%s%s failed after %v: %v", direction, location, e.Duration, e.Err)
}

// Unwrap returns the underlying error, supporting error wrapping patterns.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsTimeout returns true if the error was caused by a timeout.
func (e *Error) IsTimeout() bool {
	return e.Timeout || errors.Is(e.Err, context.DeadlineExceeded)
}

// IsCanceled returns true if the error was caused by cancellation.
func (e *Error) IsCanceled() bool {
	return e.Canceled || errors.Is(e.Err, context.Canceled)
}

// panicError wraps a recovered panic value with a sanitized message so
// arbitrary panic payloads never leak internals into logs verbatim.
type panicError struct {
	value     any
	sanitized string
}

func (p *panicError) Error() string {
	return p.sanitized
}

// recoverFromPanic converts a panic inside a wrapped callable into an
// *Error attributed to the named step, leaving result zeroed. Install with
// defer before invoking user code.
func recoverFromPanic(result *Args, err *error, identity Identity, input Args) {
	r := recover()
	if r == nil {
		return
	}
	*result = nil
	*err = &Error{
		Path:      []Name{identity.Name()},
		InputData: input,
		Err: &panicError{
			value:     r,
			sanitized: fmt.Sprintf("panic occurred: %v", r),
		},
		Timestamp: time.Now(),
	}
}

// wrapStepError attributes err to the named enclosing scope. An *Error
// already carrying a path gets the scope prepended; anything else is
// wrapped fresh with the original error intact underneath.
func wrapStepError(err error, scope Identity, input Args, elapsed time.Duration, inverse bool) *Error {
	var stepErr *Error
	if errors.As(err, &stepErr) {
		stepErr.Path = append([]Name{scope.Name()}, stepErr.Path...)
		return stepErr
	}
	return &Error{
		Path:      []Name{scope.Name()},
		InputData: input,
		Err:       err,
		Timestamp: time.Now(),
		Duration:  elapsed,
		Inverse:   inverse,
		Timeout:   errors.Is(err, context.DeadlineExceeded),
		Canceled:  errors.Is(err, context.Canceled),
	}
}

// contextError builds the *Error returned when ctx is already done before
// a step starts.
func contextError(ctx context.Context, scope Identity, input Args, inverse bool) *Error {
	return &Error{
		Err:       ctx.Err(),
		InputData: input,
		Path:      []Name{scope.Name()},
		Inverse:   inverse,
		Timeout:   errors.Is(ctx.Err(), context.DeadlineExceeded),
		Canceled:  errors.Is(ctx.Err(), context.Canceled),
		Timestamp: time.Now(),
	}
}
