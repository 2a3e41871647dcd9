package stealpool

import (
	"errors"
	"fmt"
)

var (
	// ErrNilTask is returned when Submit is called with a nil Task.
	ErrNilTask = errors.New("stealpool: task is nil")

	// ErrPoolClosed is returned once shutdown has begun.
	ErrPoolClosed = errors.New("stealpool: pool is closed")

	// ErrInvalidWorkers is returned when Options.Workers exceeds MaxWorkers.
	ErrInvalidWorkers = errors.New("stealpool: invalid worker count")

	// ErrStartup wraps every failure reported by a worker while it
	// was preparing its thread.
	ErrStartup = errors.New("stealpool: worker startup failed")

	// ErrPinUnsupported is returned by PinToCPU on platforms without
	// thread affinity support.
	ErrPinUnsupported = errors.New("stealpool: cpu pinning is not supported on this platform")

	// ErrShutdownFromWorker is returned when Shutdown is called from a
	// task running on the pool being shut down. Shutdown is initiated
	// but not awaited.
	ErrShutdownFromWorker = errors.New("stealpool: shutdown called from a pool worker")
)

// TaskPanicError carries a value recovered from a panicking task.
type TaskPanicError struct {
	// Worker is the index of the worker that ran the task.
	Worker int
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack captured at recovery.
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("stealpool: task panicked on worker %d: %v", e.Worker, e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
