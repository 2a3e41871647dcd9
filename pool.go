package stealpool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
	"go.uber.org/multierr"
)

const (
	idlePollInitial = time.Millisecond
	idlePollMax     = 50 * time.Millisecond
)

// Pool is a fixed set of workers balancing tasks by stealing.
//
// Tasks submitted from outside the pool go to a shared overflow queue.
// Tasks submitted with the context of a running task go to the front of
// the submitting worker's own queue.
type Pool struct {
	opts    Options
	metrics MetricsPolicy

	workers  []*worker
	overflow taskQueue

	ctx    context.Context
	cancel context.CancelFunc

	// wake signal: epoch advances on every push and on shutdown,
	// both under wakeMu.
	wakeMu sync.Mutex
	wake   *sync.Cond
	epoch  atomic.Uint64

	shutdown atomic.Bool
	pending  atomic.Int64

	wg       sync.WaitGroup
	stopOnce sync.Once
	done     chan struct{}
}

// NewPool creates a pool with one worker per CPU and default options.
func NewPool() (*Pool, error) {
	return NewPoolFromOptions(Options{})
}

// NewPoolFromOptions creates a pool and starts every worker.
//
// It returns once each worker has prepared its thread. If any worker
// fails, the others are stopped and the combined error is returned.
func NewPoolFromOptions(opts Options) (*Pool, error) {
	opts.FillDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		opts:    opts,
		metrics: opts.Metrics,
		workers: make([]*worker, opts.Workers),
		done:    make(chan struct{}),
	}
	p.ctx, p.cancel = context.WithCancel(opts.Context)
	p.wake = sync.NewCond(&p.wakeMu)
	for i := range p.workers {
		p.workers[i] = &worker{index: i, pool: p}
	}

	ready := make(chan error, len(p.workers))
	for _, w := range p.workers {
		p.wg.Add(1)
		go w.run(ready)
	}

	var errs error
	for i := 0; i < len(p.workers); i++ {
		errs = multierr.Append(errs, <-ready)
	}
	if errs != nil {
		_ = p.Close()
		return nil, fmt.Errorf("%w: %w", ErrStartup, errs)
	}

	lg.FromContext(p.ctx).Info("pool started",
		lg.Int("workers", len(p.workers)),
		lg.Any("pinned", opts.PinWorkers),
	)
	return p, nil
}

// Submit schedules task.
//
// If ctx is the context of a task running on this pool, task goes to
// the front of that worker's queue and runs before older local work.
// Otherwise it goes to the front of the overflow queue. Either way every
// parked worker is woken.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return ErrNilTask
	}
	if p.shutdown.Load() {
		return ErrPoolClosed
	}

	p.pending.Add(1)
	if w := workerFromContext(ctx); w != nil && w.pool == p {
		w.queue.pushFront(task)
		p.metrics.IncSubmitted(QueueLocal)
	} else {
		p.overflow.pushFront(task)
		p.metrics.IncSubmitted(QueueOverflow)
	}
	p.signal()
	return nil
}

// signal advances the wake epoch and wakes every parked worker.
func (p *Pool) signal() {
	p.wakeMu.Lock()
	p.epoch.Add(1)
	p.wake.Broadcast()
	p.wakeMu.Unlock()
}

// park blocks until the epoch moves past seen or shutdown begins.
// A push between the caller's scan and this call is never missed.
func (p *Pool) park(seen uint64) {
	p.wakeMu.Lock()
	if p.epoch.Load() == seen && !p.shutdown.Load() {
		p.metrics.IncParked()
		for p.epoch.Load() == seen && !p.shutdown.Load() {
			p.wake.Wait()
		}
	}
	p.wakeMu.Unlock()
}

// Shutdown stops the pool without draining it.
//
// Each worker finishes the task it is running and exits; tasks still
// queued are discarded. Worker contexts are canceled so long tasks may
// notice. If ctx expires first, Shutdown returns ctx.Err() and the
// workers keep exiting in the background; see Done.
//
// Called from a task of this pool, Shutdown only initiates the stop
// and returns ErrShutdownFromWorker.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.wakeMu.Lock()
		p.shutdown.Store(true)
		p.epoch.Add(1)
		p.wake.Broadcast()
		p.wakeMu.Unlock()
		p.cancel()

		go func() {
			p.wg.Wait()
			p.discard()
			close(p.done)
		}()
	})

	if w := workerFromContext(ctx); w != nil && w.pool == p {
		return ErrShutdownFromWorker
	}
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close blocks until every worker has exited.
func (p *Pool) Close() error { return p.Shutdown(context.Background()) }

// Done is closed once every worker has exited and the queues were discarded.
func (p *Pool) Done() <-chan struct{} { return p.done }

// discard empties every queue after the workers are gone.
func (p *Pool) discard() {
	dropped := p.overflow.drain()
	for _, w := range p.workers {
		dropped += w.queue.drain()
	}
	p.pending.Add(-int64(dropped))
	p.metrics.AddDropped(int64(dropped))

	lg.FromContext(p.ctx).Info("pool stopped",
		lg.Int("workers", len(p.workers)),
		lg.Int("dropped", dropped),
	)
}

// WaitIdle blocks until every accepted task has finished.
//
// It returns ErrPoolClosed if shutdown begins first and ctx.Err() when
// ctx expires. It must not be called from a task: the caller's own task
// counts as pending.
func (p *Pool) WaitIdle(ctx context.Context) error {
	bo := boff.New(idlePollInitial, idlePollMax, time.Now().UnixNano())
	for {
		if p.pending.Load() == 0 {
			return nil
		}
		if p.shutdown.Load() {
			return ErrPoolClosed
		}
		timer := time.NewTimer(bo.Next())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// Workers returns the fixed number of workers.
func (p *Pool) Workers() int { return len(p.workers) }

// Pending returns the number of accepted tasks that have not finished.
func (p *Pool) Pending() int64 { return p.pending.Load() }

// Metrics returns the pool's MetricsPolicy.
func (p *Pool) Metrics() MetricsPolicy { return p.metrics }
