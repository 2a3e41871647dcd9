package stealpool

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
)

// worker owns one locked OS thread and one task queue.
type worker struct {
	index int
	pool  *Pool
	queue taskQueue

	// ctx marks tasks run by this worker; see Submit.
	ctx context.Context
}

// run is the worker goroutine. It reports on ready once its thread is
// prepared, then schedules until the pool's shutdown flag is set.
func (w *worker) run(ready chan<- error) {
	p := w.pool
	defer p.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if p.opts.PinWorkers {
		cpu := p.opts.cpuFor(w.index)
		if err := PinToCPU(cpu); err != nil {
			err = fmt.Errorf("worker %d: pin to cpu %d: %w", w.index, cpu, err)
			p.reportStartupError(w.index, err)
			ready <- err
			return
		}
	}
	w.ctx = context.WithValue(p.ctx, workerKey{}, w)
	ready <- nil

	for !p.shutdown.Load() {
		epoch := p.epoch.Load()

		if task, from, ok := w.find(); ok {
			w.execute(task, from)
			continue
		}
		p.park(epoch)
	}
}

// find looks for work in order: own queue front, overflow back, then
// the back of every peer starting at the next index.
func (w *worker) find() (Task, QueueKind, bool) {
	if task, ok := w.queue.popFront(); ok {
		return task, QueueLocal, true
	}
	p := w.pool
	if task, ok := p.overflow.popBack(); ok {
		return task, QueueOverflow, true
	}
	n := len(p.workers)
	for i := 1; i < n; i++ {
		victim := p.workers[(w.index+i)%n]
		if task, ok := victim.queue.popBack(); ok {
			return task, QueuePeer, true
		}
	}
	return nil, 0, false
}

// execute runs a task with no queue lock held. A panic is recovered and
// reported; the worker keeps scheduling.
func (w *worker) execute(task Task, from QueueKind) {
	p := w.pool
	defer p.pending.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.reportTaskError(&TaskPanicError{
				Worker: w.index,
				Value:  r,
				Stack:  debug.Stack(),
			})
		}
		p.metrics.IncExecuted(from)
	}()
	task(w.ctx)
}
