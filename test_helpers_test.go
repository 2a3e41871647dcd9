package stealpool_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sp "github.com/Andrej220/go-utils/stealpool"
)

func newTestPool(t testing.TB, workers int) (*sp.Pool, *sp.AtomicMetrics) {
	t.Helper()

	m := &sp.AtomicMetrics{}
	p, err := sp.NewPoolFromOptions(sp.Options{Workers: workers, Metrics: m})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p, m
}

func waitIdle(t testing.TB, p *sp.Pool) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, p.WaitIdle(ctx))
}

func waitClosed(t testing.TB, ch <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("%s: timed out", what)
	}
}

// runLog records task ids and the worker each ran on.
type runLog struct {
	mu      sync.Mutex
	ids     []int
	workers map[int]int
}

func newRunLog() *runLog {
	return &runLog{workers: make(map[int]int)}
}

func (l *runLog) record(ctx context.Context, id int) {
	w, _ := sp.WorkerIndex(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.ids = append(l.ids, id)
	l.workers[id] = w
}

func (l *runLog) snapshot() ([]int, map[int]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids := append([]int(nil), l.ids...)
	workers := make(map[int]int, len(l.workers))
	for k, v := range l.workers {
		workers[k] = v
	}
	return ids, workers
}
