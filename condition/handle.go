package condition

import (
	"sync"
	"sync/atomic"
	"time"
)

// Handle is a single-resolution future for an in-flight asynchronous
// evaluation.
//
// A handle resolves exactly once, with either a boolean or an error.
// Completion callbacks registered before resolution run on the resolving
// goroutine, in registration order; callbacks registered after resolution
// run immediately on the registering goroutine. This callback discipline is
// what lets a composite race many pending children without blocking a
// worker per child.
//
// Thread-safety: all methods are safe for concurrent use.
type Handle struct {
	node *Node

	cancelled atomic.Bool
	started   atomic.Bool

	mu        sync.Mutex
	done      bool
	matched   bool
	err       error
	doneCh    chan struct{}
	callbacks []func(matched bool, err error)
}

func newHandle(n *Node) *Handle {
	return &Handle{node: n, doneCh: make(chan struct{})}
}

// Node returns the condition this handle evaluates.
func (h *Handle) Node() *Node { return h.node }

// Wait blocks until the evaluation resolves and returns its result.
func (h *Handle) Wait() (bool, error) {
	<-h.doneCh
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.matched, h.err
}

// Done returns a channel that is closed when the evaluation resolves.
func (h *Handle) Done() <-chan struct{} { return h.doneCh }

// Cancel marks the pending evaluation cancelled. Best-effort and
// non-preemptive: a task that has not started resolves as Cancelled when
// its executor drains it; a task already executing runs to completion and
// resolves with its natural result.
func (h *Handle) Cancel() {
	h.cancelled.Store(true)
}

// onComplete registers fn to run when the handle resolves, or immediately
// if it already has.
func (h *Handle) onComplete(fn func(matched bool, err error)) {
	h.mu.Lock()
	if h.done {
		matched, err := h.matched, h.err
		h.mu.Unlock()
		fn(matched, err)
		return
	}
	h.callbacks = append(h.callbacks, fn)
	h.mu.Unlock()
}

// complete resolves the handle. Later calls are no-ops; the first result
// wins, which is exactly the "first decisive result" rule composites rely
// on.
func (h *Handle) complete(matched bool, err error) {
	h.mu.Lock()
	if h.done {
		h.mu.Unlock()
		return
	}
	h.done = true
	h.matched = matched
	h.err = err
	cbs := h.callbacks
	h.callbacks = nil
	close(h.doneCh)
	h.mu.Unlock()

	for _, fn := range cbs {
		fn(matched, err)
	}
}

// runTask is the dispatched body of an asynchronous evaluation. A task
// cancelled before this point logs a single Cancelled outcome and resolves
// with CancelledError; otherwise the node's normal orchestration runs and
// logs its own outcome.
func (h *Handle) runTask(ctx *Context, unit string) {
	n := h.node
	if h.cancelled.Load() {
		err := &CancelledError{Alias: n.Alias()}
		now := time.Now()
		ctx.log.append(Outcome{
			Kind:    OutcomeCancelled,
			Err:     err,
			NodeID:  n.id,
			Alias:   n.Alias(),
			Async:   n.attrs.Async,
			Unit:    unit,
			Delay:   n.attrs.Delay,
			Timeout: n.attrs.Timeout,
			Start:   now,
			End:     now,
		})
		h.complete(false, err)
		return
	}
	h.started.Store(true)
	matched, err := n.match(ctx, unit)
	h.complete(matched, err)
}

// reject resolves a handle whose executor refused the task (shut down).
// The dispatch was observable, so a Cancelled outcome is still logged.
func (h *Handle) reject(ctx *Context, unit string) {
	n := h.node
	err := &CancelledError{Alias: n.Alias()}
	now := time.Now()
	ctx.log.append(Outcome{
		Kind:    OutcomeCancelled,
		Err:     err,
		NodeID:  n.id,
		Alias:   n.Alias(),
		Async:   n.attrs.Async,
		Unit:    unit,
		Delay:   n.attrs.Delay,
		Timeout: n.attrs.Timeout,
		Start:   now,
		End:     now,
	})
	h.complete(false, err)
}
