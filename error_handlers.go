package stealpool

import (
	lg "github.com/Andrej220/go-utils/zlog"
)

// reportTaskError reports a recovered task panic.
//
// Task errors do not stop the worker. The error is logged and handed
// to Options.OnTaskError when one is registered.
func (p *Pool) reportTaskError(err *TaskPanicError) {
	p.metrics.IncPanicked()
	lg.FromContext(p.ctx).Error("task panicked",
		lg.Int("worker", err.Worker),
		lg.Any("panic", err.Value),
		lg.String("stack", string(err.Stack)),
	)
	if p.opts.OnTaskError != nil {
		p.opts.OnTaskError(err)
	}
}

// reportStartupError logs a worker that could not prepare its thread.
func (p *Pool) reportStartupError(index int, err error) {
	lg.FromContext(p.ctx).Error("worker startup failed",
		lg.Int("worker", index),
		lg.Any("error", err),
	)
}
