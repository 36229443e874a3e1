package condition

import (
	"fmt"
	"runtime"
	"sync"
)

// Executor schedules asynchronous condition work.
//
// Implementations pass the executing unit's identity to the task so
// outcomes can record which worker ran them.
type Executor interface {
	// Submit schedules fn for execution. Returns false if the executor
	// has shut down and cannot accept the task.
	Submit(fn func(unit string)) bool

	// Name identifies the executor in execution logs.
	Name() string
}

// Pool is a bounded worker pool with an unbounded FIFO task queue.
//
// The queue is unbounded so dispatch never blocks the evaluating
// goroutine; the worker count bounds how much leaf work runs at once.
// Pool slots gate leaf work only: composite orchestration dispatched to a
// pool runs on a dedicated goroutine (see Node.MatchesAsync), keeping a
// bounded pool from hosting waiter logic that could deadlock nested
// composites sharing a single worker.
//
// Thread-safety: Submit may be called from any goroutine.
type Pool struct {
	name  string
	queue *taskQueue
	wg    sync.WaitGroup
}

// NewPool creates a pool named name with the given number of workers.
// Worker counts below one are raised to one.
func NewPool(name string, workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{name: name, queue: newTaskQueue()}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work(fmt.Sprintf("%s/%d", name, i))
	}
	return p
}

// Name implements Executor.
func (p *Pool) Name() string { return p.name }

// Submit implements Executor. Returns false after Close.
func (p *Pool) Submit(fn func(unit string)) bool {
	return p.queue.Enqueue(fn)
}

// Len returns the number of queued, not-yet-started tasks.
// Useful for monitoring and testing.
func (p *Pool) Len() int { return p.queue.Len() }

// Close stops accepting tasks, drains the queue, and waits for workers to
// exit.
func (p *Pool) Close() {
	p.queue.Close()
	p.wg.Wait()
}

// work is one worker's loop: drain tasks in FIFO order until the queue is
// closed and empty.
func (p *Pool) work(unit string) {
	defer p.wg.Done()
	for {
		fn, ok := p.queue.Dequeue()
		if !ok {
			return
		}
		fn(unit)
	}
}

var (
	defaultPoolOnce sync.Once
	defaultPool     *Pool
)

// DefaultPool returns the lazily created process-wide pool that backs
// async nodes with no assigned executor. It is sized to the number of CPUs
// and is never closed.
func DefaultPool() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool("default", runtime.NumCPU())
	})
	return defaultPool
}

type task func(unit string)

// taskQueue is a thread-safe FIFO queue of pending tasks.
//
// Unbounded so cascading dispatches never block producers. Unlike a
// single-consumer signal channel, a condition variable wakes exactly one
// of many blocked workers per enqueue, so a multi-worker pool never
// strands a queued task behind an idle worker.
type taskQueue struct {
	mu     sync.Mutex
	ready  *sync.Cond
	tasks  []task
	closed bool
}

func newTaskQueue() *taskQueue {
	q := &taskQueue{tasks: make([]task, 0, 16)}
	q.ready = sync.NewCond(&q.mu)
	return q
}

// Enqueue adds a task to the back of the queue and wakes one worker.
// Returns false if the queue is closed.
func (q *taskQueue) Enqueue(fn task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.tasks = append(q.tasks, fn)
	q.ready.Signal()
	return true
}

// Dequeue removes and returns the front task, blocking until one is
// available. Returns (nil, false) once the queue is closed and empty.
func (q *taskQueue) Dequeue() (task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.tasks) == 0 {
		if q.closed {
			return nil, false
		}
		q.ready.Wait()
	}

	fn := q.tasks[0]

	// Nil out the slot so the backing array releases the closure.
	q.tasks[0] = nil
	if len(q.tasks) == 1 {
		q.tasks = q.tasks[:0]
	} else {
		q.tasks = q.tasks[1:]
	}

	return fn, true
}

// Len returns the current queue length.
func (q *taskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Close signals that no more tasks will be enqueued and wakes all blocked
// workers; they drain the remaining tasks and exit.
func (q *taskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	q.ready.Broadcast()
}
