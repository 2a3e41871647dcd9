package stealpool

import (
	"context"
	"runtime"
)

// MaxWorkers bounds Options.Workers.
const MaxWorkers = 1 << 16

// Options configure a Pool.
//
// All zero values are replaced with defaults in FillDefaults.
// NewPool uses the zero Options.
type Options struct {
	// Workers is the fixed number of workers. Defaults to runtime.NumCPU().
	Workers int

	// PinWorkers restricts each worker's OS thread to a single CPU.
	// Linux only; elsewhere pool construction fails.
	PinWorkers bool

	// CPUs lists the CPUs workers are pinned to, worker i using
	// CPUs[i%len(CPUs)]. Empty means worker i uses CPU i%runtime.NumCPU().
	CPUs []int

	// Context is the parent of every worker context and carries the
	// logger. Defaults to context.Background().
	Context context.Context

	// Metrics receives scheduling events. Defaults to NoopMetrics.
	Metrics MetricsPolicy

	// OnTaskError receives a *TaskPanicError for every panicking task.
	OnTaskError func(error)
}

func (o *Options) FillDefaults() {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Metrics == nil {
		o.Metrics = &NoopMetrics{}
	}
}

func (o *Options) validate() error {
	if o.Workers > MaxWorkers {
		return ErrInvalidWorkers
	}
	return nil
}

// cpuFor returns the CPU the i-th worker is pinned to.
func (o *Options) cpuFor(i int) int {
	if len(o.CPUs) > 0 {
		return o.CPUs[i%len(o.CPUs)]
	}
	return i % runtime.NumCPU()
}
