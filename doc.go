// Package stealpool provides a fixed-size, lock-based work-stealing
// worker pool.
//
// Architecture overview
//
// A Pool owns a fixed set of workers created at construction, one per
// CPU unless configured otherwise. Each worker runs on its own goroutine
// locked to a dedicated OS thread and owns a private double-ended task
// queue. The pool also owns one shared overflow queue.
//
//   1. Submission
//      Submit routes a task by the context it is given. The context
//      passed to a running task identifies its worker; submitting with
//      it pushes to the front of that worker's queue. Any other context
//      pushes to the front of the overflow queue. Every push wakes all
//      parked workers.
//
//   2. Scheduling
//      An idle worker pops the front of its own queue, then the back of
//      the overflow queue, then steals from the back of each peer's
//      queue starting at the next index. With nothing found it parks on
//      the wake signal.
//
//   3. Shutdown
//      Shutdown is a hard stop. Each worker finishes the task it is
//      running and exits; tasks still queued are discarded and counted
//      as dropped.
//
// Ordering
//
// Tasks a worker spawns on itself run LIFO, depth-first, while thieves
// take the oldest tasks from the back. Tasks from outside the pool are
// taken oldest first. There is no global ordering.
//
// Locking
//
// Every queue has its own mutex, held only for the push or pop. Tasks
// run with no lock held, so a long task blocks only its own worker.
// The wake lock guards waiting and notifying, never queue contents.
//
// Error handling
//
// A panicking task is recovered at the task boundary, logged, counted,
// and passed to Options.OnTaskError as a *TaskPanicError. The worker
// keeps running. Construction fails as a whole if any worker cannot
// prepare its thread, for example when CPU pinning is rejected.
//
// There is no process-wide pool. Tasks that resubmit work capture the
// *Pool they belong to.
package stealpool
