package stealpool

import "sync"

const (
	initialDequeCapacity = 64
)

// taskQueue is an unbounded double-ended queue of tasks guarded by
// its own mutex.
//
// Owners push and pop at the front; thieves and overflow consumers pop
// at the back. The lock is held only for the structural change and is
// never held while a task runs.
type taskQueue struct {
	mu   sync.Mutex
	buf  []Task // circular buffer
	head int    // index of the front element
	size int    // number of tasks currently buffered
}

// pushFront inserts a task at the front, growing the buffer if full.
func (q *taskQueue) pushFront(t Task) {
	q.mu.Lock()
	if q.size == len(q.buf) {
		q.grow()
	}
	q.head--
	if q.head < 0 {
		q.head = len(q.buf) - 1
	}
	q.buf[q.head] = t
	q.size++
	q.mu.Unlock()
}

// popFront removes and returns the newest task.
func (q *taskQueue) popFront() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}
	t := q.buf[q.head]
	q.buf[q.head] = nil
	q.head++
	if q.head == len(q.buf) {
		q.head = 0
	}
	q.size--
	return t, true
}

// popBack removes and returns the oldest task.
func (q *taskQueue) popBack() (Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == 0 {
		return nil, false
	}
	i := q.index(q.size - 1)
	t := q.buf[i]
	q.buf[i] = nil
	q.size--
	return t, true
}

// len returns the number of queued tasks.
func (q *taskQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// drain empties the queue and returns how many tasks were discarded.
func (q *taskQueue) drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.size
	clear(q.buf)
	q.head, q.size = 0, 0
	return n
}

func (q *taskQueue) index(i int) int {
	return (q.head + i) % len(q.buf)
}

// grow doubles the buffer and unrolls the ring so head is 0 again.
// Callers must hold q.mu.
func (q *taskQueue) grow() {
	n := max(2*len(q.buf), initialDequeCapacity)
	buf := make([]Task, n)
	for i := 0; i < q.size; i++ {
		buf[i] = q.buf[q.index(i)]
	}
	q.buf = buf
	q.head = 0
}
