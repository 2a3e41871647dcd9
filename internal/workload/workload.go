// Package workload floods a stealpool.Pool with randomized tasks that
// sleep and sometimes resubmit a child through their own context.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/Andrej220/go-utils/stealpool"
)

const (
	DefaultTasks       = 10000
	DefaultProducers   = 1
	DefaultMaxSleep    = 100 * time.Millisecond
	DefaultRespawnProb = 0.5
	DefaultDuration    = 10 * time.Second

	progressInitial = 10 * time.Millisecond
	progressMax     = time.Second
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("workload: invalid config")

// Config describes one run.
type Config struct {
	// Tasks is the number of root tasks submitted from outside the pool.
	Tasks int `koanf:"tasks"`
	// Producers is the number of goroutines sharing the submissions.
	Producers int `koanf:"producers"`
	// MaxSleep bounds the random sleep of every task.
	MaxSleep time.Duration `koanf:"max_sleep"`
	// RespawnProb is the chance a root task submits one child.
	RespawnProb float64 `koanf:"respawn"`
	// Duration is how long Run lets the pool work before returning.
	// Ignored when Wait is set.
	Duration time.Duration `koanf:"duration"`
	// Wait makes Run return once every task has finished instead.
	Wait bool `koanf:"wait"`
}

// Default is the stock load: ten thousand tasks sleeping up to
// 100ms, half of them spawning a child, then a hard stop after 10s.
func Default() Config {
	return Config{
		Tasks:       DefaultTasks,
		Producers:   DefaultProducers,
		MaxSleep:    DefaultMaxSleep,
		RespawnProb: DefaultRespawnProb,
		Duration:    DefaultDuration,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Tasks < 0:
		return fmt.Errorf("%w: tasks must not be negative", ErrInvalidConfig)
	case c.Producers <= 0:
		return fmt.Errorf("%w: producers must be positive", ErrInvalidConfig)
	case c.MaxSleep < 0:
		return fmt.Errorf("%w: max sleep must not be negative", ErrInvalidConfig)
	case c.RespawnProb < 0 || c.RespawnProb > 1:
		return fmt.Errorf("%w: respawn probability must be within [0, 1]", ErrInvalidConfig)
	case !c.Wait && c.Duration <= 0:
		return fmt.Errorf("%w: duration must be positive unless waiting", ErrInvalidConfig)
	}
	return nil
}

// Report summarizes a run as seen by the generator.
type Report struct {
	Submitted int64
	Spawned   int64
	Finished  int64
	Elapsed   time.Duration
}

type counters struct {
	submitted atomic.Int64
	spawned   atomic.Int64
	finished  atomic.Int64
}

// Run submits cfg.Tasks root tasks from cfg.Producers goroutines, then
// either waits for the pool to go idle or sleeps cfg.Duration. It does
// not close the pool.
func Run(ctx context.Context, pool *stealpool.Pool, cfg Config) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	logger := lg.FromContext(ctx)
	start := time.Now()
	var c counters

	g, gctx := errgroup.WithContext(ctx)
	for p := range cfg.Producers {
		n := share(cfg.Tasks, cfg.Producers, p)
		g.Go(func() error {
			rng := rand.New(rand.NewPCG(uint64(start.UnixNano()), uint64(p)))
			for range n {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := pool.Submit(gctx, rootTask(pool, cfg, rng.Uint64(), &c)); err != nil {
					return err
				}
				c.submitted.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c.report(start), err
	}
	logger.Info("workload submitted",
		lg.Int("tasks", cfg.Tasks),
		lg.Int("producers", cfg.Producers),
	)

	if cfg.Wait {
		err := waitProgress(ctx, pool, &c)
		return c.report(start), err
	}

	timer := time.NewTimer(cfg.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return c.report(start), ctx.Err()
	}
	return c.report(start), nil
}

// rootTask sleeps and maybe submits a child through its own context, so
// the child lands on the same worker's queue.
func rootTask(pool *stealpool.Pool, cfg Config, seed uint64, c *counters) stealpool.Task {
	return func(ctx context.Context) {
		defer c.finished.Add(1)
		rng := rand.New(rand.NewPCG(seed, seed>>1))
		sleep(cfg.MaxSleep, rng)

		if rng.Float64() < cfg.RespawnProb {
			child := func(context.Context) {
				defer c.finished.Add(1)
				sleep(cfg.MaxSleep, rand.New(rand.NewPCG(seed, seed<<1)))
			}
			if err := pool.Submit(ctx, child); err == nil {
				c.spawned.Add(1)
			}
		}
	}
}

func sleep(limit time.Duration, rng *rand.Rand) {
	if limit > 0 {
		time.Sleep(time.Duration(rng.Int64N(int64(limit))))
	}
}

// waitProgress logs progress until the pool has no pending task.
func waitProgress(ctx context.Context, pool *stealpool.Pool, c *counters) error {
	logger := lg.FromContext(ctx)
	bo := boff.New(progressInitial, progressMax, time.Now().UnixNano())
	for pool.Pending() > 0 {
		timer := time.NewTimer(bo.Next())
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		logger.Info("workload progress",
			lg.Any("pending", pool.Pending()),
			lg.Any("finished", c.finished.Load()),
		)
	}
	return nil
}

func (c *counters) report(start time.Time) Report {
	return Report{
		Submitted: c.submitted.Load(),
		Spawned:   c.spawned.Load(),
		Finished:  c.finished.Load(),
		Elapsed:   time.Since(start),
	}
}

// share splits total across n producers; the first total%n get one extra.
func share(total, n, i int) int {
	q := total / n
	if i < total%n {
		q++
	}
	return q
}
