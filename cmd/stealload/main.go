// stealload floods a work-stealing pool with sleeping tasks that randomly
// resubmit a child, then stops the pool and prints its counters.
//
// Usage:
//
//	stealload [--config file.yaml] [--workers N] [--tasks N] [--wait]
//
// Without --wait the pool runs for --duration and is then stopped hard:
// tasks still queued are dropped.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/urfave/cli/v3"

	"github.com/Andrej220/go-utils/stealpool"
	"github.com/Andrej220/go-utils/stealpool/internal/workload"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "stealload",
		Usage: "drive a work-stealing pool with a randomized workload",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML or JSON config file"},
			&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "worker count (0 = one per CPU)"},
			&cli.BoolFlag{Name: "pin", Usage: "pin each worker to a CPU (linux)"},
			&cli.IntFlag{Name: "tasks", Aliases: []string{"n"}, Usage: "root tasks to submit", Value: workload.DefaultTasks},
			&cli.IntFlag{Name: "producers", Usage: "goroutines submitting root tasks", Value: workload.DefaultProducers},
			&cli.DurationFlag{Name: "max-sleep", Usage: "upper bound of each task's sleep", Value: workload.DefaultMaxSleep},
			&cli.FloatFlag{Name: "respawn", Usage: "probability a task submits a child", Value: workload.DefaultRespawnProb},
			&cli.DurationFlag{Name: "duration", Aliases: []string{"d"}, Usage: "run time before the hard stop", Value: workload.DefaultDuration},
			&cli.BoolFlag{Name: "wait", Usage: "wait for every task instead of stopping after --duration"},
		},
		Action: runLoad,
	}
}

func runLoad(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	metrics := &stealpool.AtomicMetrics{}
	pool, err := stealpool.NewPoolFromOptions(stealpool.Options{
		Workers:    cfg.Pool.Workers,
		PinWorkers: cfg.Pool.Pin,
		CPUs:       cfg.Pool.CPUs,
		Context:    ctx,
		Metrics:    metrics,
	})
	if err != nil {
		return err
	}

	rep, runErr := workload.Run(ctx, pool, cfg.Workload)
	closeErr := pool.Close()

	lg.FromContext(ctx).Info("workload finished",
		lg.Any("submitted", rep.Submitted),
		lg.Any("spawned", rep.Spawned),
		lg.Any("finished", rep.Finished),
		lg.String("elapsed", rep.Elapsed.String()),
	)
	fmt.Fprintf(cmd.Writer, "workers=%d elapsed=%s\n", pool.Workers(), rep.Elapsed)
	fmt.Fprintf(cmd.Writer, "workload: submitted=%d spawned=%d finished=%d\n", rep.Submitted, rep.Spawned, rep.Finished)
	fmt.Fprintf(cmd.Writer, "pool: %s\n", metrics.Snapshot())

	if runErr != nil {
		return runErr
	}
	return closeErr
}

// applyFlags overrides file values with flags given on the command line.
func applyFlags(cmd *cli.Command, cfg *config) {
	if cmd.IsSet("workers") {
		cfg.Pool.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("pin") {
		cfg.Pool.Pin = cmd.Bool("pin")
	}
	w := &cfg.Workload
	if cmd.IsSet("tasks") {
		w.Tasks = cmd.Int("tasks")
	}
	if cmd.IsSet("producers") {
		w.Producers = cmd.Int("producers")
	}
	if cmd.IsSet("max-sleep") {
		w.MaxSleep = cmd.Duration("max-sleep")
	}
	if cmd.IsSet("respawn") {
		w.RespawnProb = cmd.Float("respawn")
	}
	if cmd.IsSet("duration") {
		w.Duration = cmd.Duration("duration")
	}
	if cmd.IsSet("wait") {
		w.Wait = cmd.Bool("wait")
	}
}
