package stealpool

import (
	"fmt"
	"sync/atomic"
)

// QueueKind names the queue a task was pushed to or taken from.
type QueueKind uint8

const (
	// QueueLocal is a worker's own queue.
	QueueLocal QueueKind = iota
	// QueueOverflow is the shared queue fed by non-worker goroutines.
	QueueOverflow
	// QueuePeer is another worker's queue, reached by stealing.
	QueuePeer
)

func (k QueueKind) String() string {
	switch k {
	case QueueLocal:
		return "local"
	case QueueOverflow:
		return "overflow"
	case QueuePeer:
		return "peer"
	default:
		return "unknown"
	}
}

// MetricsPolicy defines hooks used by the pool to report scheduling
// activity.
//
// Implementations must be safe for concurrent use.
// All methods are expected to be lightweight and non-blocking.
type MetricsPolicy interface {
	// IncSubmitted counts an accepted task and the queue it went to
	// (QueueLocal or QueueOverflow).
	IncSubmitted(k QueueKind)

	// IncExecuted counts a finished task and the queue it came from.
	// Panicking tasks are counted too.
	IncExecuted(k QueueKind)

	// IncPanicked counts a task that panicked.
	IncPanicked()

	// IncParked counts a worker blocking on the wake signal.
	IncParked()

	// AddDropped adds n tasks discarded at shutdown.
	AddDropped(n int64)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submittedLocal    atomic.Uint64
	submittedOverflow atomic.Uint64

	_ [48]byte // padding to avoid false sharing

	executed [3]atomic.Uint64

	_ [40]byte

	panicked atomic.Uint64
	parked   atomic.Uint64
	dropped  atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of AtomicMetrics.
type MetricsSnapshot struct {
	SubmittedLocal    uint64
	SubmittedOverflow uint64
	ExecutedLocal     uint64
	ExecutedOverflow  uint64
	Stolen            uint64
	Panicked          uint64
	Parked            uint64
	Dropped           int64
}

// Executed returns the total number of finished tasks.
func (s MetricsSnapshot) Executed() uint64 {
	return s.ExecutedLocal + s.ExecutedOverflow + s.Stolen
}

func (s MetricsSnapshot) String() string {
	return fmt.Sprintf(
		"submitted local=%d overflow=%d / executed local=%d overflow=%d stolen=%d / panicked=%d parked=%d dropped=%d",
		s.SubmittedLocal, s.SubmittedOverflow,
		s.ExecutedLocal, s.ExecutedOverflow, s.Stolen,
		s.Panicked, s.Parked, s.Dropped,
	)
}

// Snapshot returns the current counter values.
func (m *AtomicMetrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		SubmittedLocal:    m.submittedLocal.Load(),
		SubmittedOverflow: m.submittedOverflow.Load(),
		ExecutedLocal:     m.executed[QueueLocal].Load(),
		ExecutedOverflow:  m.executed[QueueOverflow].Load(),
		Stolen:            m.executed[QueuePeer].Load(),
		Panicked:          m.panicked.Load(),
		Parked:            m.parked.Load(),
		Dropped:           m.dropped.Load(),
	}
}

func (m *AtomicMetrics) IncSubmitted(k QueueKind) {
	if k == QueueLocal {
		m.submittedLocal.Add(1)
		return
	}
	m.submittedOverflow.Add(1)
}

func (m *AtomicMetrics) IncExecuted(k QueueKind) {
	if int(k) < len(m.executed) {
		m.executed[k].Add(1)
	}
}

func (m *AtomicMetrics) IncPanicked() { m.panicked.Add(1) }

func (m *AtomicMetrics) IncParked() { m.parked.Add(1) }

func (m *AtomicMetrics) AddDropped(n int64) { m.dropped.Add(n) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted(QueueKind) {}
func (m *NoopMetrics) IncExecuted(QueueKind)  {}
func (m *NoopMetrics) IncPanicked()           {}
func (m *NoopMetrics) IncParked()             {}
func (m *NoopMetrics) AddDropped(int64)       {}
