package sched

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by RunSync when a synchronous action is already
// executing. The scheduler is strictly single-threaded and non-reentrant.
var ErrBusy = errors.New("sched: synchronous action already running")

// TaskError wraps an error produced by a queued task. Queue-driven execution
// is fault-isolated: a TaskError is delivered to the error sink and never
// propagates to the code that submitted the task.
type TaskError struct {
	Err       error
	Kind      TaskKind
	Seq       uint64
	Unhandled bool // rejected continuation with no failure handler attached
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.Unhandled {
		return fmt.Sprintf("unhandled rejection (seq %d): %v", e.Seq, e.Err)
	}
	return fmt.Sprintf("%s %d: %v", e.Kind, e.Seq, e.Err)
}

// Unwrap returns the underlying cause for use with [errors.Is] and [errors.As].
func (e *TaskError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from an action, so that a panicking
// callback is routed through the same fault policy as an error return.
type PanicError struct {
	Value any
}

// Error implements the error interface.
func (e PanicError) Error() string {
	return fmt.Sprintf("action panicked: %v", e.Value)
}

// Unwrap returns the underlying error if the panic value is an error type,
// enabling [errors.Is] and [errors.As] matching through the cause chain.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ErrorSink receives every fault raised by queued tasks. A sink must never
// panic; it is invoked from within the drain and tick phases.
type ErrorSink func(err *TaskError)
