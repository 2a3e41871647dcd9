package stealpool

import "context"

// Task is a unit of work with no result.
//
// The context passed to a running task identifies the worker executing
// it. Handing that same context back to Submit places the new task on
// the front of that worker's own queue.
type Task func(ctx context.Context)

// Func adapts a plain closure to a Task.
func Func(fn func()) Task {
	if fn == nil {
		return nil
	}
	return func(context.Context) { fn() }
}

type workerKey struct{}

// WorkerIndex reports the index of the worker whose task received ctx.
func WorkerIndex(ctx context.Context) (int, bool) {
	w := workerFromContext(ctx)
	if w == nil {
		return 0, false
	}
	return w.index, true
}

func workerFromContext(ctx context.Context) *worker {
	if ctx == nil {
		return nil
	}
	w, _ := ctx.Value(workerKey{}).(*worker)
	return w
}
